package parser

import (
	"encoding/json"
	"os"

	"crispy/ast"
)

// jsonPrinter implements both AST visitor interfaces and builds a
// JSON-friendly representation out of plain maps and slices, the way
// informatter-nilan's astPrinter does for its tree-walked AST. It
// exists purely for diagnostics: the `emit -ast` and `repl` subcommands
// use it to show what the parser and analyzer produced.
type jsonPrinter struct{}

func (p jsonPrinter) VisitNull(*ast.NullExpr) any { return nil }
func (p jsonPrinter) VisitBool(e *ast.BoolExpr) any { return e.Value }
func (p jsonPrinter) VisitInt(e *ast.IntExpr) any { return e.Value }
func (p jsonPrinter) VisitString(e *ast.StringExpr) any { return e.Value }

func (p jsonPrinter) VisitVar(e *ast.VarExpr) any {
	m := map[string]any{"type": "Var", "name": e.Ident.Name}
	switch e.Classification {
	case ast.RefLocal:
		m["binding"] = "local"
	case ast.RefCapture:
		m["binding"] = "capture"
	default:
		m["binding"] = "unresolved"
	}
	return m
}

func (p jsonPrinter) VisitUnary(e *ast.UnaryExpr) any {
	return map[string]any{"type": "Unary", "op": e.Op.String(), "sub": e.Sub.Accept(p)}
}

func (p jsonPrinter) VisitBinary(e *ast.BinaryExpr) any {
	return map[string]any{"type": "Binary", "op": e.Op.String(), "left": e.Left.Accept(p), "right": e.Right.Accept(p)}
}

func (p jsonPrinter) VisitCall(e *ast.CallExpr) any {
	args := make([]any, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.Accept(p)
	}
	return map[string]any{"type": "Call", "callee": e.Callee.Accept(p), "args": args}
}

func (p jsonPrinter) VisitArray(e *ast.ArrayExpr) any {
	items := make([]any, len(e.Items))
	for i, it := range e.Items {
		items[i] = it.Accept(p)
	}
	return map[string]any{"type": "Array", "items": items}
}

func (p jsonPrinter) VisitSubscript(e *ast.SubscriptExpr) any {
	return map[string]any{"type": "Subscript", "array": e.Array.Accept(p), "index": e.Index.Accept(p)}
}

func (p jsonPrinter) VisitVarDecl(s *ast.VarDeclStmt) any {
	m := map[string]any{"type": "VarDecl", "name": s.Decl.Name()}
	if s.Decl.Init != nil {
		m["init"] = s.Decl.Init.Accept(p)
	}
	return m
}

func (p jsonPrinter) VisitFuncDecl(s *ast.FuncDeclStmt) any {
	params := make([]string, len(s.Decl.Params))
	for i, param := range s.Decl.Params {
		params[i] = param.Name()
	}
	return map[string]any{
		"type":   "FuncDecl",
		"name":   s.Decl.Name(),
		"params": params,
		"body":   p.block(s.Decl.Body),
	}
}

func (p jsonPrinter) VisitAssign(s *ast.AssignStmt) any {
	return map[string]any{"type": "Assign", "target": s.Target.Accept(p), "value": s.Value.Accept(p)}
}

func (p jsonPrinter) VisitPrint(s *ast.PrintStmt) any {
	values := make([]any, len(s.Values))
	for i, v := range s.Values {
		values[i] = v.Accept(p)
	}
	return map[string]any{"type": "Print", "values": values}
}

func (p jsonPrinter) VisitCallStmt(s *ast.CallStmt) any {
	return map[string]any{"type": "CallStmt", "call": s.Call.Accept(p)}
}

func (p jsonPrinter) VisitReturn(s *ast.ReturnStmt) any {
	m := map[string]any{"type": "Return"}
	if s.Value != nil {
		m["value"] = s.Value.Accept(p)
	}
	return m
}

func (p jsonPrinter) VisitIf(s *ast.IfStmt) any {
	m := map[string]any{"type": "If", "cond": s.Cond.Accept(p), "body": p.block(s.Body)}
	if s.Else != nil {
		m["else"] = p.block(s.Else)
	}
	return m
}

func (p jsonPrinter) VisitWhile(s *ast.WhileStmt) any {
	return map[string]any{"type": "While", "cond": s.Cond.Accept(p), "body": p.block(s.Body)}
}

func (p jsonPrinter) block(b *ast.Block) any {
	stmts := make([]any, len(b.Stmts))
	for i, s := range b.Stmts {
		stmts[i] = s.Accept(p)
	}
	return stmts
}

// PrintJSON renders root as an indented JSON document.
func PrintJSON(root *ast.Block) ([]byte, error) {
	printer := jsonPrinter{}
	return json.MarshalIndent(printer.block(root), "", "  ")
}

// WriteJSON renders root and writes it to path.
func WriteJSON(root *ast.Block, path string) error {
	data, err := PrintJSON(root)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
