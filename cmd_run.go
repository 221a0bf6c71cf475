package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"crispy/driver"
)

// runCmd is build followed immediately by execution, forwarding the
// compiled program's exit code. It is the primary command, but it is
// not selected by default: it must be named on the command line
// (`run <file>`), like every other subcommand.
type runCmd struct {
	cacheDir string
	cc       string
	verbose  bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "compile and run a source file" }
func (*runCmd) Usage() string {
	return `run <file> [args...]:
  Build <file> and execute the resulting binary, forwarding its exit code.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.cacheDir, "cache", "", "cache directory override (default $HOME/.crispy)")
	f.StringVar(&c.cc, "cc", "", "C compiler binary override (default cc)")
	f.BoolVar(&c.verbose, "verbose", false, "log pipeline stage timings to stderr")
}

func (c *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 file not provided\n")
		return subcommands.ExitUsageError
	}

	opts := driver.Options{CacheDir: c.cacheDir, CC: c.cc, Verbose: c.verbose}
	code, err := driver.Run(opts, args[0], args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 %v\n", err)
		return subcommands.ExitFailure
	}
	os.Exit(code)
	return subcommands.ExitSuccess
}
