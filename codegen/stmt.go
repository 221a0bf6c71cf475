package codegen

import (
	"fmt"

	"crispy/ast"
)

func (g *Generator) stmt(s ast.Stmt, indent string) error {
	if g.Annotate {
		fmt.Fprintf(&g.buf, "%s// line %d\n", indent, s.Base().Start.Line)
	}
	switch n := s.(type) {
	case *ast.VarDeclStmt:
		g.varDeclStmt(n, indent)
		return nil
	case *ast.FuncDeclStmt:
		g.funcDeclStmt(n, indent)
		return nil
	case *ast.AssignStmt:
		return g.assignStmt(n, indent)
	case *ast.PrintStmt:
		g.printStmt(n, indent)
		return nil
	case *ast.CallStmt:
		g.stageTemps(n.Call, indent)
		return nil
	case *ast.ReturnStmt:
		g.returnStmt(n, indent)
		return nil
	case *ast.IfStmt:
		return g.ifStmt(n, indent)
	case *ast.WhileStmt:
		return g.whileStmt(n, indent)
	default:
		return fmt.Errorf("codegen: unhandled statement %T", s)
	}
}

// varDeclStmt emits the runtime-side half of a deferred initializer.
// A non-deferred declaration is fully handled by the scope struct's
// static initializer and needs nothing here. A deferred declaration
// with no initializer at all still needs an explicit null assignment
// at its program point, so that an earlier sibling's side effect can't
// observe it as anything but freshly declared.
func (g *Generator) varDeclStmt(s *ast.VarDeclStmt, indent string) {
	d := s.Decl
	if !d.InitDeferred {
		return
	}
	if d.Init == nil {
		fmt.Fprintf(&g.buf, "%s%s.%s = mk_null();\n", indent, scopeVar(d.Scope.ScopeID), fieldName(d))
		return
	}
	g.stageTemps(d.Init, indent)
	fmt.Fprintf(&g.buf, "%s%s.%s = %s;\n", indent, scopeVar(d.Scope.ScopeID), fieldName(d), g.exprRef(d.Init))
}

// funcDeclStmt constructs the closure Value at the declaration's
// program point. A captured variable hosted directly by the function
// currently being generated is uplifted in place here — idempotent if
// some earlier closure already uplifted it — and handed to new_function
// as a fresh heap pointer. A variable captured transitively (its home
// scope belongs to some more distant ancestor function) was already
// uplifted and relayed into the current function's own enclosed[] by
// the analyzer's capture propagation, so its cell is read from there:
// the current C function has no way to reach an unrelated ancestor
// function's stack frame directly.
func (g *Generator) funcDeclStmt(s *ast.FuncDeclStmt, indent string) {
	d := s.Decl
	capArgs := make([]string, len(d.Captures))
	for i, c := range d.Captures {
		if c.Scope.HostingFunc == g.curFunc {
			fmt.Fprintf(&g.buf, "%suplift_var(&%s.%s);\n", indent, scopeVar(c.Scope.ScopeID), fieldName(c))
			capArgs[i] = fmt.Sprintf("var_cell(&%s.%s)", scopeVar(c.Scope.ScopeID), fieldName(c))
		} else {
			capArgs[i] = fmt.Sprintf("enclosed[%d]", g.captureIndex[c])
		}
	}
	fmt.Fprintf(&g.buf, "%s%s.%s = new_function(%s, %d, %d%s);\n",
		indent, scopeVar(d.Scope.ScopeID), fieldName(d), funcCName(d), len(d.Params), len(d.Captures), joinArgs(capArgs))
}

func (g *Generator) assignStmt(s *ast.AssignStmt, indent string) error {
	switch t := s.Target.(type) {
	case *ast.VarExpr:
		if t.Decl == nil {
			fmt.Fprintf(&g.buf, "%sunresolved_var(%d, %s);\n", indent, t.Anchor.Line, cStringLit(t.Ident.Name))
			return nil
		}
		g.stageTemps(s.Value, indent)
		fmt.Fprintf(&g.buf, "%s%s = %s;\n", indent, g.varCellRef(t), g.exprRef(s.Value))

	case *ast.SubscriptExpr:
		g.stageTemps(t.Array, indent)
		g.stageTemps(t.Index, indent)
		g.stageTemps(s.Value, indent)
		fmt.Fprintf(&g.buf, "%s*subscript(%d, %s, %s) = %s;\n",
			indent, t.Anchor.Line, g.exprRef(t.Array), g.exprRef(t.Index), g.exprRef(s.Value))

	default:
		return fmt.Errorf("codegen: unsupported assignment target %T", t)
	}
	return nil
}

func (g *Generator) printStmt(s *ast.PrintStmt, indent string) {
	for _, v := range s.Values {
		g.stageTemps(v, indent)
	}
	refs := make([]string, len(s.Values))
	for i, v := range s.Values {
		refs[i] = g.exprRef(v)
	}
	fmt.Fprintf(&g.buf, "%sprint(%d%s);\n", indent, len(s.Values), joinArgs(refs))
}

// returnStmt pops every ScopeFrame opened since the enclosing
// function's own push — one per nested block still open at this
// point — before handing control back with a plain C return.
func (g *Generator) returnStmt(s *ast.ReturnStmt, indent string) {
	valRef := "mk_null()"
	if s.Value != nil {
		g.stageTemps(s.Value, indent)
		valRef = g.exprRef(s.Value)
	}
	for i := 0; i < g.openFrames; i++ {
		fmt.Fprintf(&g.buf, "%spop_scope();\n", indent)
	}
	fmt.Fprintf(&g.buf, "%sreturn %s;\n", indent, valRef)
}

func (g *Generator) ifStmt(s *ast.IfStmt, indent string) error {
	g.stageTemps(s.Cond, indent)
	fmt.Fprintf(&g.buf, "%sif (truthy(%s)) {\n", indent, g.exprRef(s.Cond))
	if err := g.writeBlock(s.Body, indent+"\t"); err != nil {
		return err
	}
	if s.Else == nil {
		fmt.Fprintf(&g.buf, "%s}\n", indent)
		return nil
	}
	fmt.Fprintf(&g.buf, "%s} else {\n", indent)
	if err := g.writeBlock(s.Else, indent+"\t"); err != nil {
		return err
	}
	fmt.Fprintf(&g.buf, "%s}\n", indent)
	return nil
}

// whileStmt restages the condition's temporaries once more just before
// the loop body closes, so the native `while` re-check at the bottom
// of the C loop reads a freshly computed value rather than the one
// staged before the first iteration.
func (g *Generator) whileStmt(s *ast.WhileStmt, indent string) error {
	g.stageTemps(s.Cond, indent)
	fmt.Fprintf(&g.buf, "%swhile (truthy(%s)) {\n", indent, g.exprRef(s.Cond))
	if err := g.writeBlock(s.Body, indent+"\t"); err != nil {
		return err
	}
	g.stageTemps(s.Cond, indent+"\t")
	fmt.Fprintf(&g.buf, "%s}\n", indent)
	return nil
}
