package ast

import "crispy/token"

// Decl is a `var` or `function` declaration. Declarations are distinct
// from references: a Decl lives once in its owning Scope's list and is
// pointed to by every VarExpr that resolves to it.
type Decl struct {
	Ident    *token.Ident
	IdentTok token.Token // the identifier token, for position/text
	End      token.Token // end-of-declaration token, for forward-ref checks
	Scope    *Scope      // owning scope, set by Scope.Declare

	IsFunction   bool
	InitDeferred bool

	// Variable declarations.
	Init        Expression
	IsParameter bool

	// Function declarations.
	Body     *Block
	Params   []*Decl // parameter decls, also present in Body.Scope.Decls
	FuncID   int64
	Captures []*Decl // per-function captured-outer-variable set
}

// AddCapture records decl as captured by this function declaration,
// deduplicating against the existing set.
func (d *Decl) AddCapture(decl *Decl) {
	for _, c := range d.Captures {
		if c == decl {
			return
		}
	}
	d.Captures = append(d.Captures, decl)
}

// Name is the declaration's spelling, for diagnostics and codegen.
func (d *Decl) Name() string { return d.Ident.Name }
