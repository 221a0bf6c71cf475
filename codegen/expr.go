package codegen

import (
	"fmt"

	"crispy/ast"
	"crispy/token"
)

// stageTemps walks e and, for every CallExpr or ArrayExpr it finds
// (depth-first, left to right), emits the runtime call that allocates
// its value and assigns the result into that node's staging field.
// After stageTemps runs, exprRef can treat every staged node as a bare
// field reference instead of re-evaluating it — which matters because
// a call's argument list and an array's item list must only execute
// once, and because the staged slot is what keeps the allocation
// rooted for the collector between here and the statement that
// consumes it.
func (g *Generator) stageTemps(e ast.Expression, indent string) {
	switch n := e.(type) {
	case *ast.UnaryExpr:
		g.stageTemps(n.Sub, indent)

	case *ast.BinaryExpr:
		g.stageTemps(n.Left, indent)
		g.stageTemps(n.Right, indent)

	case *ast.SubscriptExpr:
		g.stageTemps(n.Array, indent)
		g.stageTemps(n.Index, indent)

	case *ast.CallExpr:
		g.stageTemps(n.Callee, indent)
		for _, a := range n.Args {
			g.stageTemps(a, indent)
		}
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = g.exprRef(a)
		}
		call := fmt.Sprintf("call(%d, %s, %d%s)", n.Anchor.Line, g.exprRef(n.Callee), len(n.Args), joinArgs(args))
		fmt.Fprintf(&g.buf, "%s%s.%s = %s;\n", indent, scopeVar(n.Scope.ScopeID), tmpField(n.TmpID), call)

	case *ast.ArrayExpr:
		for _, it := range n.Items {
			g.stageTemps(it, indent)
		}
		items := make([]string, len(n.Items))
		for i, it := range n.Items {
			items[i] = g.exprRef(it)
		}
		arr := fmt.Sprintf("new_array(%d%s)", len(n.Items), joinArgs(items))
		fmt.Fprintf(&g.buf, "%s%s.%s = %s;\n", indent, scopeVar(n.Scope.ScopeID), tmpField(n.TmpID), arr)

	default:
		// literals and variable references never allocate.
	}
}

// exprRef returns the C expression that reads e's value, assuming
// stageTemps has already been run over e. A node carrying a TmpID was
// staged, so its value lives in that scope's staging field; everything
// else is built inline from its operands.
func (g *Generator) exprRef(e ast.Expression) string {
	if tmp := e.Base().TmpID; tmp != 0 {
		return fmt.Sprintf("%s.%s", scopeVar(e.Base().Scope.ScopeID), tmpField(tmp))
	}

	switch n := e.(type) {
	case *ast.NullExpr:
		return "mk_null()"
	case *ast.BoolExpr:
		if n.Value {
			return "mk_bool(1)"
		}
		return "mk_bool(0)"
	case *ast.IntExpr:
		return fmt.Sprintf("mk_int(%d)", n.Value)
	case *ast.StringExpr:
		return fmt.Sprintf("mk_string(%s)", cStringLit(n.Value))
	case *ast.VarExpr:
		return g.varRef(n)
	case *ast.UnaryExpr:
		return g.unaryRef(n)
	case *ast.BinaryExpr:
		return g.binaryRef(n)
	case *ast.SubscriptExpr:
		return fmt.Sprintf("(*subscript(%d, %s, %s))", n.Anchor.Line, g.exprRef(n.Array), g.exprRef(n.Index))
	default:
		return fmt.Sprintf("/* unhandled expression %T */ mk_null()", e)
	}
}

func (g *Generator) varRef(n *ast.VarExpr) string {
	if n.Decl == nil {
		return fmt.Sprintf("unresolved_var(%d, %s)", n.Anchor.Line, cStringLit(n.Ident.Name))
	}
	name := cStringLit(n.Decl.Name())
	if n.Classification == ast.RefCapture {
		return fmt.Sprintf("check_var(%d, enclosed[%d], %s)", n.Anchor.Line, g.captureIndex[n.Decl], name)
	}
	return fmt.Sprintf("check_var(%d, &%s.%s, %s)", n.Anchor.Line, scopeVar(n.Decl.Scope.ScopeID), fieldName(n.Decl), name)
}

// varCellRef names the Value* backing t, resolved one level of uplift
// indirection — the lvalue form used by assignment.
func (g *Generator) varCellRef(t *ast.VarExpr) string {
	if t.Classification == ast.RefCapture {
		return fmt.Sprintf("(*var_cell(enclosed[%d]))", g.captureIndex[t.Decl])
	}
	return fmt.Sprintf("(*var_cell(&%s.%s))", scopeVar(t.Decl.Scope.ScopeID), fieldName(t.Decl))
}

func (g *Generator) unaryRef(n *ast.UnaryExpr) string {
	fn := "value_pos"
	if n.Op.Punct == token.SUB {
		fn = "value_neg"
	}
	return fmt.Sprintf("%s(%d, %s)", fn, n.Anchor.Line, g.exprRef(n.Sub))
}

var binaryRuntimeFunc = map[token.Punct]string{
	token.ADD:           "value_add",
	token.SUB:           "value_sub",
	token.MUL:           "value_mul",
	token.MOD:           "value_mod",
	token.EQUAL_EQUAL:   "value_eq",
	token.NOT_EQUAL:     "value_ne",
	token.LESS:          "value_lt",
	token.LESS_EQUAL:    "value_le",
	token.GREATER:       "value_gt",
	token.GREATER_EQUAL: "value_ge",
}

func (g *Generator) binaryRef(n *ast.BinaryExpr) string {
	fn := binaryRuntimeFunc[n.Op.Punct]
	return fmt.Sprintf("%s(%d, %s, %s)", fn, n.Anchor.Line, g.exprRef(n.Left), g.exprRef(n.Right))
}
