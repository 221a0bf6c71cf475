// Package driver is the pipeline's external collaborator: it owns the
// on-disk cache directory, turns a source file into a lowered C
// translation unit by running the lex/parse/analyze/generate stages in
// order, and shells out to the system C compiler to link and run the
// result. Nothing downstream of the generator knows the cache
// directory exists; nothing upstream of it knows a C compiler does.
package driver

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"crispy/ast"
	"crispy/codegen"
	"crispy/lexer"
	"crispy/parser"
	"crispy/runtime"
	"crispy/sema"
	"crispy/token"
)

// Options configures the driver the way a subcommand's flag set
// populates it: where the cache lives, which C compiler to invoke, and
// any extra flags to pass it, plus whether to log stage timings.
type Options struct {
	CacheDir   string
	CC         string
	ExtraFlags []string
	Verbose    bool
}

// DefaultCacheDir is $HOME/.crispy, matching the original build.c.
func DefaultCacheDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("driver: %w", err)
	}
	return filepath.Join(home, ".crispy"), nil
}

func (o *Options) cacheDir() (string, error) {
	if o.CacheDir != "" {
		return o.CacheDir, nil
	}
	return DefaultCacheDir()
}

func (o *Options) cc() string {
	if o.CC != "" {
		return o.CC
	}
	return "cc"
}

func (o *Options) logf(format string, args ...any) {
	if o.Verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// PathID derives a filesystem-safe identifier from a source path: every
// alphanumeric byte passes through unchanged, every other byte becomes
// "_" followed by two letters spelling its high and low nibble in
// A-P rather than 0-F, matching original_source/src/main.c's
// create_path_id exactly so generated filenames collide the same way
// the original implementation's would.
func PathID(path string) string {
	var b strings.Builder
	for i := 0; i < len(path); i++ {
		c := path[i]
		if isAlnum(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('_')
		b.WriteByte('A' + (c >> 4))
		b.WriteByte('A' + (c & 0xf))
	}
	return b.String()
}

func isAlnum(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// Frontend runs lex/parse/analyze over the source at filename and
// returns the resulting module, without generating C or touching the
// cache directory. build/run/emit all start here.
func Frontend(filename string) (*ast.Module, *ast.Block, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open input file: %w", err)
	}

	ids := token.NewTable()
	lex := lexer.New(string(data), ids)
	tokens, err := lex.Scan()
	if err != nil {
		return nil, nil, err
	}

	p := parser.New(string(data), tokens)
	root, err := p.ParseModule()
	if err != nil {
		return nil, nil, err
	}

	an := sema.New(string(data))
	if err := an.Analyze(root); err != nil {
		return nil, nil, err
	}

	mod := &ast.Module{
		Filename: filename,
		PathID:   PathID(filename),
		Source:   data,
		Tokens:   tokens,
		Body:     root,
	}
	return mod, root, nil
}

// Generate runs the frontend and lowers the result to C, without
// writing anything to disk.
func Generate(filename string) (*ast.Module, string, error) {
	mod, root, err := Frontend(filename)
	if err != nil {
		return nil, "", err
	}
	src, err := codegen.Generate(mod, root)
	if err != nil {
		return nil, "", err
	}
	return mod, src, nil
}

// ensureCache creates the cache directory and copies the embedded
// runtime sources into it, returning the runtime.c path the compiler
// needs on its command line.
func (o *Options) ensureCache() (cacheDir, runtimeCPath string, err error) {
	cacheDir, err = o.cacheDir()
	if err != nil {
		return "", "", err
	}
	if err := os.MkdirAll(cacheDir, 0o700); err != nil {
		return "", "", fmt.Errorf("driver: creating cache directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(cacheDir, runtime.HeaderName), runtime.Header, 0o644); err != nil {
		return "", "", fmt.Errorf("driver: writing runtime header: %w", err)
	}
	runtimeCPath = filepath.Join(cacheDir, runtime.SourceName)
	if err := os.WriteFile(runtimeCPath, runtime.Source, 0o644); err != nil {
		return "", "", fmt.Errorf("driver: writing runtime source: %w", err)
	}
	return cacheDir, runtimeCPath, nil
}

// Build runs the full pipeline for filename and links an executable in
// the cache directory, returning its path.
func Build(opts Options, filename string) (string, error) {
	start := time.Now()
	cacheDir, runtimeCPath, err := opts.ensureCache()
	if err != nil {
		return "", err
	}
	opts.logf("cache ready in %s", time.Since(start))

	stage := time.Now()
	mod, csrc, err := Generate(filename)
	if err != nil {
		return "", err
	}
	opts.logf("frontend + codegen in %s", time.Since(stage))

	mod.COutPath = filepath.Join(cacheDir, mod.PathID+".c")
	if err := os.WriteFile(mod.COutPath, []byte(csrc), 0o644); err != nil {
		return "", fmt.Errorf("driver: writing generated C: %w", err)
	}

	exePath := filepath.Join(cacheDir, mod.PathID)
	args := append([]string{"-o", exePath, "-std=c17", "-pedantic-errors"}, opts.ExtraFlags...)
	args = append(args, runtimeCPath, mod.COutPath)

	stage = time.Now()
	cmd := exec.Command(opts.cc(), args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("C compiler failed: %w\n%s", err, stderr.String())
	}
	opts.logf("%s in %s", opts.cc(), time.Since(stage))

	return exePath, nil
}

// Run builds filename and executes the resulting binary, forwarding
// its stdio and exit code.
func Run(opts Options, filename string, args []string) (int, error) {
	exePath, err := Build(opts, filename)
	if err != nil {
		return 1, err
	}
	cmd := exec.Command(exePath, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), nil
		}
		return 1, fmt.Errorf("driver: running %s: %w", exePath, err)
	}
	return 0, nil
}
