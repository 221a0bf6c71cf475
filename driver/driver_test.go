package driver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPathIDPassesAlnumThrough(t *testing.T) {
	got := PathID("abcXYZ019")
	if got != "abcXYZ019" {
		t.Errorf("got %q, want unchanged alnum run", got)
	}
}

func TestPathIDEncodesSeparatorsWithLetterNibbles(t *testing.T) {
	// '/' is 0x2f: high nibble 2 -> 'A'+2='C', low nibble 15 -> 'A'+15='P'.
	got := PathID("/")
	if got != "_CP" {
		t.Errorf("got %q, want _CP", got)
	}
}

func TestPathIDIsStableAndFilesystemSafe(t *testing.T) {
	got := PathID("examples/hello.crispy")
	if strings.ContainsAny(got, "/.") {
		t.Errorf("expected no path separators or dots in %q", got)
	}
	if got != PathID("examples/hello.crispy") {
		t.Errorf("PathID is not deterministic")
	}
}

func TestDefaultCacheDirUnderHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available in this environment")
	}
	dir, err := DefaultCacheDir()
	if err != nil {
		t.Fatalf("DefaultCacheDir: %v", err)
	}
	want := filepath.Join(home, ".crispy")
	if dir != want {
		t.Errorf("got %q, want %q", dir, want)
	}
}

func TestFrontendRejectsMissingFile(t *testing.T) {
	_, _, err := Frontend(filepath.Join(t.TempDir(), "does-not-exist.crispy"))
	if err == nil {
		t.Fatalf("expected an error opening a missing file")
	}
}

func TestFrontendAndGenerateOnValidSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.crispy")
	if err := os.WriteFile(path, []byte(`var x = 1; print x;`), 0o644); err != nil {
		t.Fatal(err)
	}

	mod, root, err := Frontend(path)
	if err != nil {
		t.Fatalf("Frontend: %v", err)
	}
	if mod.PathID != PathID(path) {
		t.Errorf("Module.PathID not set via PathID(filename)")
	}
	if len(root.Stmts) != 2 {
		t.Errorf("expected 2 top-level statements, got %d", len(root.Stmts))
	}

	_, csrc, err := Generate(path)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(csrc, "int main(void)") {
		t.Errorf("expected generated C to define main, got:\n%s", csrc)
	}
}

func TestFrontendPropagatesSyntaxErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.crispy")
	if err := os.WriteFile(path, []byte(`var x = ;`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, err := Frontend(path)
	if err == nil {
		t.Fatalf("expected a syntax error")
	}
}

func TestFrontendPropagatesSemanticErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.crispy")
	if err := os.WriteFile(path, []byte(`return 1;`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, err := Frontend(path)
	if err == nil {
		t.Fatalf("expected a semantic error for a top-level return")
	}
}
