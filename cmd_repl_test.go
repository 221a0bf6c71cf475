package main

import (
	"testing"

	"crispy/lexer"
	"crispy/token"
)

func scanFor(t *testing.T, src string) []token.Token {
	t.Helper()
	toks, err := lexer.New(src, token.NewTable()).Scan()
	if err != nil {
		t.Fatalf("lex(%q): %v", src, err)
	}
	return toks
}

func TestBraceBalancedOnCompleteBlock(t *testing.T) {
	if !braceBalanced(scanFor(t, "function f() { return 1; }")) {
		t.Errorf("expected a fully closed block to be balanced")
	}
}

func TestBraceBalancedOnOpenBlock(t *testing.T) {
	if braceBalanced(scanFor(t, "function f() { return 1;")) {
		t.Errorf("expected an unclosed block to be unbalanced")
	}
}

func TestBraceBalancedOnSourceWithNoBraces(t *testing.T) {
	if !braceBalanced(scanFor(t, "var x = 1;")) {
		t.Errorf("expected brace-free source to be considered balanced")
	}
}
