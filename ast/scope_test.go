package ast

import (
	"testing"

	"crispy/token"
)

func ident(name string) *token.Ident { return &token.Ident{Name: name} }

func TestDeclareRejectsDuplicateInSameScope(t *testing.T) {
	s := NewScope(nil, 0)
	x := ident("x")
	a := &Decl{Ident: x}
	b := &Decl{Ident: x}
	if !s.Declare(a) {
		t.Fatalf("first declaration of x should succeed")
	}
	if s.Declare(b) {
		t.Fatalf("second declaration of x in the same scope should fail")
	}
	if s.DeclCount() != 1 {
		t.Errorf("got %d decls, want 1", s.DeclCount())
	}
}

func TestLookupWalksToAncestors(t *testing.T) {
	outer := NewScope(nil, 0)
	inner := NewScope(outer, 1)
	x := &Decl{Ident: ident("x")}
	outer.Declare(x)

	if got := Lookup(x.Ident, inner); got != x {
		t.Errorf("expected Lookup to find x via the ancestor chain, got %v", got)
	}
	if got := inner.LookupFlat(x.Ident); got != nil {
		t.Errorf("LookupFlat should not see ancestor declarations, got %v", got)
	}
}

func TestHostingFuncIsInheritedThenOverridden(t *testing.T) {
	global := NewScope(nil, 0)
	fn := &Decl{Ident: ident("f")}
	body := NewScope(global, 1)
	body.HostingFunc = fn
	nested := NewScope(body, 2)

	if nested.HostingFunc != fn {
		t.Errorf("expected nested scope to inherit its parent's hosting function")
	}
	if !global.IsGlobal() {
		t.Errorf("expected a scope with no parent to be global")
	}
	if body.IsGlobal() {
		t.Errorf("expected a scope with a parent not to be global")
	}
}

func TestNextTempAllocatesIncreasingIDs(t *testing.T) {
	s := NewScope(nil, 0)
	if s.TmpCount() != 0 {
		t.Fatalf("expected a fresh scope to have no temporaries")
	}
	ids := []int64{s.NextTemp(), s.NextTemp(), s.NextTemp()}
	for i, id := range ids {
		if id != int64(i+1) {
			t.Errorf("temp %d: got %d, want %d", i, id, i+1)
		}
	}
	if s.TmpCount() != 3 {
		t.Errorf("got TmpCount %d, want 3", s.TmpCount())
	}
}

func TestAddCaptureDeduplicates(t *testing.T) {
	fn := &Decl{Ident: ident("f")}
	x := &Decl{Ident: ident("x")}
	fn.AddCapture(x)
	fn.AddCapture(x)
	if len(fn.Captures) != 1 {
		t.Errorf("expected AddCapture to deduplicate, got %d entries", len(fn.Captures))
	}
}
