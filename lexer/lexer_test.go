package lexer

import (
	"testing"

	"crispy/token"
)

func scan(t *testing.T, src string) []token.Token {
	t.Helper()
	toks, err := New(src, token.NewTable()).Scan()
	if err != nil {
		t.Fatalf("Scan(%q): %v", src, err)
	}
	return toks
}

func TestScanKeywordsIdentsAndPunct(t *testing.T) {
	toks := scan(t, "var x = 1 + 2;")
	wantKinds := []token.Kind{
		token.KEYWORD, token.IDENT, token.PUNCT, token.INT,
		token.PUNCT, token.INT, token.PUNCT, token.EOF,
	}
	if len(toks) != len(wantKinds) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(wantKinds), toks)
	}
	for i, k := range wantKinds {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Kind, k)
		}
	}
}

func TestScanIdempotentOnSameSource(t *testing.T) {
	a := scan(t, "function f(a, b) { return a + b; }")
	b := scan(t, "function f(a, b) { return a + b; }")
	if len(a) != len(b) {
		t.Fatalf("length mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Kind != b[i].Kind {
			t.Errorf("token %d kind mismatch: %s vs %s", i, a[i].Kind, b[i].Kind)
		}
	}
}

func TestInterningAcrossOccurrences(t *testing.T) {
	ids := token.NewTable()
	toks, err := New("x x x", ids).Scan()
	if err != nil {
		t.Fatal(err)
	}
	if toks[0].Ident != toks[1].Ident || toks[1].Ident != toks[2].Ident {
		t.Fatalf("expected all three occurrences of x to share one *Ident")
	}
}

func TestHexAndBinaryLiterals(t *testing.T) {
	toks := scan(t, "0xff 0b101")
	if toks[0].Int != 255 {
		t.Errorf("0xff: got %d, want 255", toks[0].Int)
	}
	if toks[1].Int != 5 {
		t.Errorf("0b101: got %d, want 5", toks[1].Int)
	}
}

func TestStringEscapes(t *testing.T) {
	toks := scan(t, `"a\nb\t\"\\c"`)
	want := "a\nb\t\"\\c"
	if toks[0].Str != want {
		t.Errorf("got %q, want %q", toks[0].Str, want)
	}
}

func TestUnterminatedStringErrors(t *testing.T) {
	_, err := New(`"abc`, token.NewTable()).Scan()
	if err == nil {
		t.Fatalf("expected an error for an unterminated string")
	}
}

func TestLineCommentsAndBlockComments(t *testing.T) {
	toks := scan(t, "var x = 1; # trailing comment\n/* block\ncomment */ var y = 2;")
	var kinds []token.Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	if kinds[len(kinds)-1] != token.EOF {
		t.Fatalf("expected trailing EOF, got %v", kinds)
	}
}

func TestTwoByteOperatorsDoNotCollideWithOneByte(t *testing.T) {
	toks := scan(t, "== = != <= < >= >")
	want := []token.Punct{
		token.EQUAL_EQUAL, token.ASSIGN, token.NOT_EQUAL,
		token.LESS_EQUAL, token.LESS, token.GREATER_EQUAL, token.GREATER,
	}
	for i, p := range want {
		if toks[i].Punct != p {
			t.Errorf("token %d: got %v, want %v", i, toks[i].Punct, p)
		}
	}
}
