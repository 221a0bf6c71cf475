package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"crispy/driver"
)

// buildCmd runs the full pipeline and leaves the linked executable in
// the cache directory, printing its path.
type buildCmd struct {
	cacheDir string
	cc       string
	verbose  bool
}

func (*buildCmd) Name() string     { return "build" }
func (*buildCmd) Synopsis() string { return "compile a source file to a cached executable" }
func (*buildCmd) Usage() string {
	return `build <file>:
  Lex, parse, analyze and lower <file> to C, then invoke the system C
  compiler, leaving the linked executable in the cache directory.
`
}

func (c *buildCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.cacheDir, "cache", "", "cache directory override (default $HOME/.crispy)")
	f.StringVar(&c.cc, "cc", "", "C compiler binary override (default cc)")
	f.BoolVar(&c.verbose, "verbose", false, "log pipeline stage timings to stderr")
}

func (c *buildCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 file not provided\n")
		return subcommands.ExitUsageError
	}

	opts := driver.Options{CacheDir: c.cacheDir, CC: c.cc, Verbose: c.verbose}
	exePath, err := driver.Build(opts, args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println(exePath)
	return subcommands.ExitSuccess
}
