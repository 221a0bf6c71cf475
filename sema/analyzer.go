// Package sema implements the analyzer: the single post-parse tree walk
// that resolves every variable reference to its declaration, classifies
// each reference as a same-frame access or an enclosing-function
// capture, builds each function's captured-variable set, and continues
// the constant folding the parser could not finish on the first pass.
package sema

import (
	"strings"

	"crispy/ast"
	"crispy/token"
)

// Analyzer carries the one piece of state the walk needs beyond the AST
// itself: the scope currently being visited. The "current function" the
// specification describes falls out of that for free, since every
// scope already knows its hosting function.
type Analyzer struct {
	lines []string
	scope *ast.Scope
}

// New creates an Analyzer over src, the source the AST in Analyze was
// parsed from, used only to render error excerpts.
func New(src string) *Analyzer {
	return &Analyzer{lines: strings.Split(src, "\n")}
}

// Analyze walks root in place, resolving references and folding what it
// can, returning the first Error encountered.
func (a *Analyzer) Analyze(root *ast.Block) error {
	a.scope = root.Scope
	return a.block(root)
}

func (a *Analyzer) block(b *ast.Block) error {
	prev := a.scope
	a.scope = b.Scope
	defer func() { a.scope = prev }()

	for _, stmt := range b.Stmts {
		if err := a.stmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) stmt(s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.VarDeclStmt:
		if n.Decl.Init != nil {
			folded, err := a.expr(n.Decl.Init)
			if err != nil {
				return err
			}
			n.Decl.Init = folded
		}
		return nil

	case *ast.FuncDeclStmt:
		return a.funcDecl(n.Decl)

	case *ast.AssignStmt:
		target, err := a.expr(n.Target)
		if err != nil {
			return err
		}
		n.Target = target
		if !target.Base().IsLvalue {
			return a.fatalf(target.Base().Anchor, "invalid assignment target")
		}
		value, err := a.expr(n.Value)
		if err != nil {
			return err
		}
		n.Value = value
		return nil

	case *ast.PrintStmt:
		for i, v := range n.Values {
			folded, err := a.expr(v)
			if err != nil {
				return err
			}
			n.Values[i] = folded
		}
		return nil

	case *ast.CallStmt:
		folded, err := a.expr(n.Call)
		if err != nil {
			return err
		}
		n.Call = folded
		return nil

	case *ast.ReturnStmt:
		if a.scope.HostingFunc == nil {
			return a.fatalf(n.Base().Start, "return outside a function")
		}
		if n.Value != nil {
			folded, err := a.expr(n.Value)
			if err != nil {
				return err
			}
			n.Value = folded
		}
		return nil

	case *ast.IfStmt:
		cond, err := a.expr(n.Cond)
		if err != nil {
			return err
		}
		n.Cond = cond
		if err := a.block(n.Body); err != nil {
			return err
		}
		if n.Else != nil {
			if err := a.block(n.Else); err != nil {
				return err
			}
		}
		return nil

	case *ast.WhileStmt:
		cond, err := a.expr(n.Cond)
		if err != nil {
			return err
		}
		n.Cond = cond
		return a.block(n.Body)

	default:
		return nil
	}
}

func (a *Analyzer) funcDecl(decl *ast.Decl) error {
	return a.block(decl.Body)
}

// expr resolves and, where possible, folds e, returning the node that
// should replace it in its parent.
func (a *Analyzer) expr(e ast.Expression) (ast.Expression, error) {
	switch n := e.(type) {
	case *ast.NullExpr, *ast.BoolExpr, *ast.IntExpr, *ast.StringExpr:
		return e, nil

	case *ast.VarExpr:
		if err := a.resolveVar(n); err != nil {
			return nil, err
		}
		return n, nil

	case *ast.UnaryExpr:
		sub, err := a.expr(n.Sub)
		if err != nil {
			return nil, err
		}
		n.Sub = sub
		n.HasTmps = sub.Base().HasTmps
		if i, ok := sub.(*ast.IntExpr); ok && i.Base().IsConst {
			v := i.Value
			if n.Op.Punct == token.SUB {
				v = -v
			}
			return &ast.IntExpr{ExprBase: ast.ExprBase{Anchor: n.Anchor, Scope: n.Scope, IsConst: true}, Value: v}, nil
		}
		return n, nil

	case *ast.BinaryExpr:
		left, err := a.expr(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := a.expr(n.Right)
		if err != nil {
			return nil, err
		}
		n.Left, n.Right = left, right
		n.HasTmps = left.Base().HasTmps || right.Base().HasTmps
		if isArithmeticOp(n.Op.Punct) && (isStringOrArray(left) || isStringOrArray(right)) {
			return nil, a.fatalf(n.Op, "string or array operand to arithmetic operator %s", n.Op)
		}
		if folded, ok := foldConstBinary(n.Op, left, right); ok {
			return folded, nil
		}
		return n, nil

	case *ast.CallExpr:
		callee, err := a.expr(n.Callee)
		if err != nil {
			return nil, err
		}
		n.Callee = callee
		for i, arg := range n.Args {
			folded, err := a.expr(arg)
			if err != nil {
				return nil, err
			}
			n.Args[i] = folded
		}
		return n, nil

	case *ast.ArrayExpr:
		for i, item := range n.Items {
			folded, err := a.expr(item)
			if err != nil {
				return nil, err
			}
			n.Items[i] = folded
		}
		return n, nil

	case *ast.SubscriptExpr:
		arr, err := a.expr(n.Array)
		if err != nil {
			return nil, err
		}
		idx, err := a.expr(n.Index)
		if err != nil {
			return nil, err
		}
		n.Array, n.Index = arr, idx
		n.HasTmps = arr.Base().HasTmps || idx.Base().HasTmps

		if arrLit, ok := arr.(*ast.ArrayExpr); ok {
			if idxLit, ok := idx.(*ast.IntExpr); ok && idxLit.Base().IsConst {
				if idxLit.Value >= 0 && int(idxLit.Value) < len(arrLit.Items) {
					return arrLit.Items[idxLit.Value], nil
				}
			}
		}
		return n, nil

	default:
		return e, nil
	}
}

// resolveVar implements §4.3's three-way scope comparison.
func (a *Analyzer) resolveVar(ve *ast.VarExpr) error {
	decl := ast.Lookup(ve.Ident, a.scope)
	if decl == nil {
		ve.Decl = nil
		ve.Classification = ast.RefUnresolved
		return nil
	}
	ve.Decl = decl

	sameScope := decl.Scope == a.scope
	forwardRef := ve.Anchor.Precedes(decl.End)

	if sameScope && forwardRef {
		return a.fatalf(ve.Anchor, "%s is declared later", decl.Name())
	}
	if !sameScope && forwardRef && !decl.Scope.IsGlobal() {
		return a.fatalf(ve.Anchor, "variable %s declared later in enclosing scope", decl.Name())
	}
	if !decl.Scope.IsGlobal() && a.scope.HostingFunc != decl.Scope.HostingFunc {
		a.propagateCapture(decl)
		ve.Classification = ast.RefCapture
		return nil
	}
	ve.Classification = ast.RefLocal
	return nil
}

// propagateCapture records decl as captured by every function between
// the reference at a.scope and decl's own hosting function, not just
// the innermost one. A reference three or more closures deep needs
// each intermediate function to relay the cell through its own
// enclosed[] array, since the generated C function for the innermost
// closure has no way to reach an outer ancestor's stack frame directly.
func (a *Analyzer) propagateCapture(decl *ast.Decl) {
	declHost := decl.Scope.HostingFunc
	var last *ast.Decl
	for s := a.scope; s != nil && s.HostingFunc != declHost; s = s.Parent {
		if s.HostingFunc != nil && s.HostingFunc != last {
			s.HostingFunc.AddCapture(decl)
			last = s.HostingFunc
		}
	}
}

func isArithmeticOp(pn token.Punct) bool {
	return pn == token.ADD || pn == token.SUB || pn == token.MUL || pn == token.MOD
}

func isStringOrArray(e ast.Expression) bool {
	switch e.(type) {
	case *ast.StringExpr, *ast.ArrayExpr:
		return true
	}
	return false
}

// foldConstBinary folds a binary operator whose operands became
// constant only after analysis-time subscript folding (the parser
// already folded what it could see in one left-to-right pass).
func foldConstBinary(op token.Token, left, right ast.Expression) (ast.Expression, bool) {
	if !left.Base().IsConst || !right.Base().IsConst {
		return nil, false
	}
	li, lok := left.(*ast.IntExpr)
	ri, rok := right.(*ast.IntExpr)
	if lok && rok {
		switch op.Punct {
		case token.ADD:
			return intLit(op, li.Value+ri.Value), true
		case token.SUB:
			return intLit(op, li.Value-ri.Value), true
		case token.MUL:
			return intLit(op, li.Value*ri.Value), true
		case token.MOD:
			if ri.Value != 0 {
				return intLit(op, li.Value%ri.Value), true
			}
		case token.EQUAL_EQUAL:
			return boolLit(op, li.Value == ri.Value), true
		case token.NOT_EQUAL:
			return boolLit(op, li.Value != ri.Value), true
		case token.LESS:
			return boolLit(op, li.Value < ri.Value), true
		case token.LESS_EQUAL:
			return boolLit(op, li.Value <= ri.Value), true
		case token.GREATER:
			return boolLit(op, li.Value > ri.Value), true
		case token.GREATER_EQUAL:
			return boolLit(op, li.Value >= ri.Value), true
		}
	}
	return nil, false
}

func intLit(anchor token.Token, v int64) ast.Expression {
	return &ast.IntExpr{ExprBase: ast.ExprBase{Anchor: anchor, IsConst: true}, Value: v}
}

func boolLit(anchor token.Token, v bool) ast.Expression {
	return &ast.BoolExpr{ExprBase: ast.ExprBase{Anchor: anchor, IsConst: true}, Value: v}
}
