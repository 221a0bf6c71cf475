package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"crispy/codegen"
	"crispy/driver"
	"crispy/parser"
)

// emitCmd runs lex/parse/analyze and optionally dumps the generated C
// translation unit and/or the AST as JSON, without invoking the C
// compiler — mirroring informatter-nilan's cmd_emit_bytecode.go.
type emitCmd struct {
	emitC     bool
	emitAST   bool
	annotate  bool
}

func (*emitCmd) Name() string     { return "emit" }
func (*emitCmd) Synopsis() string { return "lex, parse, and analyze a source file without compiling it" }
func (*emitCmd) Usage() string {
	return `emit <file> [-c] [-ast]:
  Run the front end and, depending on the flags given, write the
  generated C translation unit and/or the AST as JSON next to <file>.
`
}

func (cmd *emitCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.emitC, "c", true, "write the generated C translation unit to <file>.c")
	f.BoolVar(&cmd.emitAST, "ast", false, "write the analyzed AST as JSON to <file>.ast.json")
	f.BoolVar(&cmd.annotate, "annotate", false, "interleave `// line N` comments in the generated C")
}

func (cmd *emitCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 file not provided\n")
		return subcommands.ExitUsageError
	}
	filename := args[0]
	stem := strings.TrimSuffix(filename, ".crispy")

	mod, root, err := driver.Frontend(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 %v\n", err)
		return subcommands.ExitFailure
	}

	if cmd.emitAST {
		if err := parser.WriteJSON(root, stem+".ast.json"); err != nil {
			fmt.Fprintf(os.Stderr, "💥 writing AST JSON: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	if cmd.emitC {
		src, err := codegen.GenerateWith(mod, root, cmd.annotate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥 %v\n", err)
			return subcommands.ExitFailure
		}
		if err := os.WriteFile(stem+".c", []byte(src), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "💥 writing generated C: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	return subcommands.ExitSuccess
}
