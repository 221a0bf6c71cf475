package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"crispy/lexer"
	"crispy/parser"
	"crispy/sema"
	"crispy/token"
)

// replCmd is a parse/analyze exploration tool, not an executor: the
// source language is whole-program-compiled, so there is no
// interpreter to drive line by line. It lexes and parses each
// line/block the user types and pretty-prints the resulting AST as
// JSON, the way informatter-nilan's repl echoes a tree-walked AST —
// it never compiles or runs what it reads.
type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "interactively parse source and print its AST" }
func (*replCmd) Usage() string {
	return `repl:
  Start an interactive parse/analyze exploration session. Each line or
  balanced block typed is parsed and its AST printed as JSON; nothing is
  compiled or executed.
`
}
func (*replCmd) SetFlags(f *flag.FlagSet) {}

func (*replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Println("crispy repl — parses and prints AST, does not run code. Ctrl-D to exit.")

	rl, err := readline.New(">>> ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 %v\n", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	runREPL(rl)
	return subcommands.ExitSuccess
}

func runREPL(rl *readline.Instance) {
	var buf strings.Builder
	for {
		if buf.Len() == 0 {
			rl.SetPrompt(">>> ")
		} else {
			rl.SetPrompt("... ")
		}
		line, err := rl.Readline()
		if err == io.EOF || err == readline.ErrInterrupt {
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥 %v\n", err)
			return
		}

		if buf.Len() > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(line)
		source := buf.String()

		ids := token.NewTable()
		lex := lexer.New(source, ids)
		tokens, lexErr := lex.Scan()
		if lexErr != nil {
			continue // wait for more input; the error may just be an unterminated literal
		}
		if !braceBalanced(tokens) {
			continue
		}

		p := parser.New(source, tokens)
		root, parseErr := p.ParseModule()
		buf.Reset()
		if parseErr != nil {
			fmt.Fprintln(os.Stderr, parseErr)
			continue
		}
		if semaErr := sema.New(source).Analyze(root); semaErr != nil {
			fmt.Fprintln(os.Stderr, semaErr)
			continue
		}
		out, err := parser.PrintJSON(root)
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥 %v\n", err)
			continue
		}
		fmt.Println(string(out))
	}
}

// braceBalanced reports whether tokens contains no unmatched `{`, so
// the REPL knows to keep reading a multi-line block rather than
// attempt to parse a truncated one.
func braceBalanced(tokens []token.Token) bool {
	depth := 0
	for _, t := range tokens {
		if t.Kind != token.PUNCT {
			continue
		}
		switch t.Punct {
		case token.LBRACE:
			depth++
		case token.RBRACE:
			depth--
		}
	}
	return depth <= 0
}
