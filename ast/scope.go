package ast

import "crispy/token"

// Scope is one lexical environment: a parent pointer, its ordered
// declaration list, and the bookkeeping the analyzer and code generator
// need — the scope ID that names its C frame struct, the hosting
// function for capture classification, the "a side-effecting expression
// has already been seen here" flag that drives init-deferral, and a
// per-scope counter for temporary staging slots.
type Scope struct {
	Parent         *Scope
	Decls          []*Decl
	ScopeID        int64
	HostingFunc    *Decl // nil at the global scope
	HadSideEffects bool
	tmpCount       int64
}

// NewScope creates a child scope of parent with the given scope ID.
// HostingFunc is inherited from parent; funcdecl bodies override it
// once parsed (see Parser.funcDeclaration).
func NewScope(parent *Scope, scopeID int64) *Scope {
	s := &Scope{Parent: parent, ScopeID: scopeID}
	if parent != nil {
		s.HostingFunc = parent.HostingFunc
	}
	return s
}

// DeclCount is the number of declarations directly in this scope — the
// field count of its generated C frame struct.
func (s *Scope) DeclCount() int { return len(s.Decls) }

// LookupFlat finds a declaration by interned identifier in this scope
// only, without walking to ancestors.
func (s *Scope) LookupFlat(id *token.Ident) *Decl {
	for _, d := range s.Decls {
		if d.Ident == id {
			return d
		}
	}
	return nil
}

// Lookup walks outward from s through ancestor scopes and returns the
// first declaration matching id, or nil if none resolves.
func Lookup(id *token.Ident, s *Scope) *Decl {
	for scope := s; scope != nil; scope = scope.Parent {
		if d := scope.LookupFlat(id); d != nil {
			return d
		}
	}
	return nil
}

// Declare adds decl to s, rejecting a same-scope duplicate identifier.
// Declarations within one scope must have unique interned handles.
func (s *Scope) Declare(decl *Decl) bool {
	if s.LookupFlat(decl.Ident) != nil {
		return false
	}
	decl.Scope = s
	s.Decls = append(s.Decls, decl)
	return true
}

// NextTemp allocates the next temporary-staging slot ID in this scope.
func (s *Scope) NextTemp() int64 {
	s.tmpCount++
	return s.tmpCount
}

// TmpCount is the number of temporary slots allocated in this scope.
func (s *Scope) TmpCount() int64 { return s.tmpCount }

// IsGlobal reports whether s has no parent.
func (s *Scope) IsGlobal() bool { return s.Parent == nil }
