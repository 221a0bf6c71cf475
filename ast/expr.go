package ast

import "crispy/token"

// OpLevel is the binary-operator precedence tier: comparisons bind
// loosest, then additive, then multiplicative.
type OpLevel int

const (
	LevelCmp OpLevel = iota
	LevelAdd
	LevelMul
)

// ExprBase holds the fields every expression carries regardless of kind:
// its source anchor, owning scope, and the flags the parser and analyzer
// set as they fold constants and stage temporaries.
type ExprBase struct {
	Anchor     token.Token
	Scope      *Scope
	IsConst    bool
	IsLvalue   bool
	HasTmps    bool
	TmpID      int64 // 0 means "no staging slot"
}

func (b *ExprBase) Base() *ExprBase { return b }

// NullExpr is the literal `null`.
type NullExpr struct{ ExprBase }

func (e *NullExpr) Accept(v ExpressionVisitor) any { return v.VisitNull(e) }

// BoolExpr is a literal `true` or `false`.
type BoolExpr struct {
	ExprBase
	Value bool
}

func (e *BoolExpr) Accept(v ExpressionVisitor) any { return v.VisitBool(e) }

// IntExpr is a decimal, hex, or binary integer literal.
type IntExpr struct {
	ExprBase
	Value int64
}

func (e *IntExpr) Accept(v ExpressionVisitor) any { return v.VisitInt(e) }

// StringExpr is a decoded string literal.
type StringExpr struct {
	ExprBase
	Value string
}

func (e *StringExpr) Accept(v ExpressionVisitor) any { return v.VisitString(e) }

// CaptureKind classifies how a resolved VarExpr reaches its declaration,
// as decided by the analyzer (§4.3): a same-frame access, a capture of
// an enclosing function's local, or an unresolved name deferred to a
// runtime error. This is a cache of the classification, not part of the
// resolution algorithm itself.
type CaptureKind int

const (
	RefUnresolved CaptureKind = iota
	RefLocal
	RefCapture
)

// VarExpr references a name. Decl is filled in by the analyzer; it stays
// nil when the name never resolves, which is realized as a runtime error
// by the code generator rather than a compile-time failure.
type VarExpr struct {
	ExprBase
	Ident          *token.Ident
	Decl           *Decl
	Classification CaptureKind
}

func (e *VarExpr) Accept(v ExpressionVisitor) any { return v.VisitVar(e) }

// UnaryExpr is a prefix `+` or `-` applied to an integer sub-expression.
type UnaryExpr struct {
	ExprBase
	Op  token.Token
	Sub Expression
}

func (e *UnaryExpr) Accept(v ExpressionVisitor) any { return v.VisitUnary(e) }

// BinaryExpr is a left-associative binary operator at one of the three
// precedence levels.
type BinaryExpr struct {
	ExprBase
	Op    token.Token
	Level OpLevel
	Left  Expression
	Right Expression
}

func (e *BinaryExpr) Accept(v ExpressionVisitor) any { return v.VisitBinary(e) }

// CallExpr invokes Callee with Args. Always carries a nonzero TmpID: a
// call may allocate, so its result must be staged into a rooted slot
// before the surrounding expression can reference it.
type CallExpr struct {
	ExprBase
	Callee Expression
	Args   []Expression
}

func (e *CallExpr) Accept(v ExpressionVisitor) any { return v.VisitCall(e) }

// ArrayExpr is an array literal. Always carries a nonzero TmpID for the
// same reason as CallExpr: constructing the array allocates.
type ArrayExpr struct {
	ExprBase
	Items []Expression
}

func (e *ArrayExpr) Accept(v ExpressionVisitor) any { return v.VisitArray(e) }

// SubscriptExpr is `array[index]`; always an l-value.
type SubscriptExpr struct {
	ExprBase
	Array Expression
	Index Expression
}

func (e *SubscriptExpr) Accept(v ExpressionVisitor) any { return v.VisitSubscript(e) }
