// Package codegen lowers an analyzed AST to one C translation unit
// targeting the crispy/runtime library: a frame struct per scope, a C
// function per source-level function, temporary staging for every
// allocating sub-expression, and the uplift sequence that turns a
// captured stack cell into a shared heap reference at closure
// construction time.
package codegen

import (
	"fmt"
	"strings"

	"crispy/ast"
)

// Generator walks one module's AST and accumulates generated C text.
// It holds the bookkeeping state that changes as it descends into
// function bodies: which function (if any) is being emitted, the
// C expression naming its own ScopeFrame (for funcframe linkage), how
// many ScopeFrames are currently open on the path to the statement
// being emitted (for `return`'s pop count), and the current function's
// captured-variable index table.
type Generator struct {
	buf splitBuffer

	// Annotate, when set before Generate runs, interleaves a "// line N"
	// comment above each statement's lowering. Diagnostic only — it
	// never changes the emitted program's semantics.
	Annotate bool

	funcs []*ast.Decl

	curFunc      *ast.Decl
	funcFrameVar string
	openFrames   int
	captureIndex map[*ast.Decl]int
}

// splitBuffer is a strings.Builder by another name; kept as its own
// type so the rest of the package reads as "the generator's output"
// rather than a raw builder.
type splitBuffer = strings.Builder

// Generate lowers root, the parsed and analyzed body of mod, to a
// complete C translation unit.
func Generate(mod *ast.Module, root *ast.Block) (string, error) {
	return GenerateWith(mod, root, false)
}

// GenerateWith is Generate with the disassemble annotation mode
// exposed, for the `emit` subcommand's diagnostic output.
func GenerateWith(mod *ast.Module, root *ast.Block, annotate bool) (string, error) {
	g := &Generator{Annotate: annotate}
	g.collectFuncs(root)

	g.writeHeader(mod)
	g.writePrototypes()
	g.writeScopeStruct(root.Scope, "", true)

	for _, fn := range g.funcs {
		if err := g.writeFunction(fn); err != nil {
			return "", err
		}
	}
	if err := g.writeMain(root); err != nil {
		return "", err
	}
	return g.buf.String(), nil
}

func (g *Generator) writeHeader(mod *ast.Module) {
	fmt.Fprintf(&g.buf, "// generated from %s — do not edit.\n", mod.Filename)
	fmt.Fprintf(&g.buf, "#include \"runtime.h\"\n")
}

func (g *Generator) writePrototypes() {
	for _, fn := range g.funcs {
		fmt.Fprintf(&g.buf, "Value %s(Value **enclosed, va_list args);\n", funcCName(fn))
	}
}

// collectFuncs finds every function declaration reachable from root,
// in program order, so prototypes can be emitted before any call site
// and so every nested function gets its own top-level C function.
func (g *Generator) collectFuncs(b *ast.Block) {
	for _, s := range b.Stmts {
		switch n := s.(type) {
		case *ast.FuncDeclStmt:
			g.funcs = append(g.funcs, n.Decl)
			g.collectFuncs(n.Decl.Body)
		case *ast.IfStmt:
			g.collectFuncs(n.Body)
			if n.Else != nil {
				g.collectFuncs(n.Else)
			}
		case *ast.WhileStmt:
			g.collectFuncs(n.Body)
		}
	}
}

// --- naming ---

func scopeVar(id int64) string { return fmt.Sprintf("scope%d", id) }
func frameVar(id int64) string { return fmt.Sprintf("frame%d", id) }
func fieldName(d *ast.Decl) string { return "m_" + d.Name() }
func tmpField(id int64) string { return fmt.Sprintf("tmp_%d", id) }
func funcCName(d *ast.Decl) string { return fmt.Sprintf("func%d_%s", d.FuncID, d.Name()) }

func joinArgs(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return ", " + strings.Join(args, ", ")
}

func cStringLit(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// --- scope frame struct ---

// writeScopeStruct emits the field-per-declaration struct for scope,
// plus one Value field per staged temporary, with a compile-time
// constant initializer for each field (§4.4's scope-materialization
// rule). A scope with no fields at all still needs one, since C forbids
// an empty struct.
func (g *Generator) writeScopeStruct(scope *ast.Scope, indent string, isStatic bool) {
	var fields, inits []string
	for _, d := range scope.Decls {
		fields = append(fields, fmt.Sprintf("Value %s;", fieldName(d)))
		inits = append(inits, fieldInit(d))
	}
	for i := int64(1); i <= scope.TmpCount(); i++ {
		fields = append(fields, fmt.Sprintf("Value %s;", tmpField(i)))
		inits = append(inits, "UNINITIALIZED_INIT")
	}
	if len(fields) == 0 {
		fields = append(fields, "Value _unused;")
		inits = append(inits, "UNINITIALIZED_INIT")
	}

	qualifier := ""
	if isStatic {
		qualifier = "static "
	}
	fmt.Fprintf(&g.buf, "%s%sstruct {\n", indent, qualifier)
	for _, f := range fields {
		fmt.Fprintf(&g.buf, "%s\t%s\n", indent, f)
	}
	fmt.Fprintf(&g.buf, "%s} %s = { %s };\n", indent, scopeVar(scope.ScopeID), strings.Join(inits, ", "))
}

// frameLength is the GC root count passed to push_scope: the scope
// struct is laid out as a flat run of Value fields (declarations, then
// temporaries), so casting it to Value* and covering that many entries
// roots both at once.
func frameLength(scope *ast.Scope) int {
	n := scope.DeclCount() + int(scope.TmpCount())
	if n == 0 {
		return 1
	}
	return n
}

func fieldInit(d *ast.Decl) string {
	if d.IsParameter || d.InitDeferred {
		return "UNINITIALIZED_INIT"
	}
	if d.Init != nil {
		return constInit(d.Init)
	}
	return "NULL_VALUE_INIT"
}

func constInit(e ast.Expression) string {
	switch n := e.(type) {
	case *ast.NullExpr:
		return "NULL_VALUE_INIT"
	case *ast.BoolExpr:
		if n.Value {
			return "BOOL_VALUE_INIT(1)"
		}
		return "BOOL_VALUE_INIT(0)"
	case *ast.IntExpr:
		return fmt.Sprintf("INT_VALUE_INIT(%d)", n.Value)
	case *ast.StringExpr:
		return fmt.Sprintf("STRING_VALUE_INIT(%s)", cStringLit(n.Value))
	default:
		return "UNINITIALIZED_INIT"
	}
}

// --- functions ---

func (g *Generator) writeFunction(decl *ast.Decl) error {
	prevFunc, prevFrameVar, prevOpen, prevCapIdx := g.curFunc, g.funcFrameVar, g.openFrames, g.captureIndex
	g.curFunc = decl
	g.captureIndex = make(map[*ast.Decl]int, len(decl.Captures))
	for i, c := range decl.Captures {
		g.captureIndex[c] = i
	}
	g.openFrames = 0

	indent := "\t"
	fmt.Fprintf(&g.buf, "\nValue %s(Value **enclosed, va_list args) {\n", funcCName(decl))

	bodyScope := decl.Body.Scope
	g.writeScopeStruct(bodyScope, indent, false)
	for _, p := range decl.Params {
		fmt.Fprintf(&g.buf, "%s%s.%s = va_arg(args, Value);\n", indent, scopeVar(bodyScope.ScopeID), fieldName(p))
	}

	frame := frameVar(bodyScope.ScopeID)
	g.funcFrameVar = "&" + frame
	fmt.Fprintf(&g.buf, "%sScopeFrame %s;\n", indent, frame)
	fmt.Fprintf(&g.buf, "%spush_scope(&%s, cur_scope_frame, &%s, (Value *)&%s, %d, %s);\n",
		indent, frame, frame, scopeVar(bodyScope.ScopeID), frameLength(bodyScope), cStringLit(decl.Name()))
	g.openFrames++

	for _, stmt := range decl.Body.Stmts {
		if err := g.stmt(stmt, indent); err != nil {
			return err
		}
	}

	fmt.Fprintf(&g.buf, "%spop_scope();\n", indent)
	fmt.Fprintf(&g.buf, "%sreturn mk_null();\n", indent)
	fmt.Fprintf(&g.buf, "}\n")

	g.curFunc, g.funcFrameVar, g.openFrames, g.captureIndex = prevFunc, prevFrameVar, prevOpen, prevCapIdx
	return nil
}

func (g *Generator) writeMain(root *ast.Block) error {
	g.curFunc = nil
	g.captureIndex = nil
	g.openFrames = 0

	indent := "\t"
	fmt.Fprintf(&g.buf, "\nint main(void) {\n")

	frame := "frame0"
	g.funcFrameVar = "&" + frame
	fmt.Fprintf(&g.buf, "%sScopeFrame %s;\n", indent, frame)
	fmt.Fprintf(&g.buf, "%spush_scope(&%s, NULL, &%s, (Value *)&%s, %d, NULL);\n",
		indent, frame, frame, scopeVar(root.Scope.ScopeID), frameLength(root.Scope))
	g.openFrames++

	for _, stmt := range root.Stmts {
		if err := g.stmt(stmt, indent); err != nil {
			return err
		}
	}

	fmt.Fprintf(&g.buf, "%spop_scope();\n", indent)
	fmt.Fprintf(&g.buf, "%sreturn 0;\n", indent)
	fmt.Fprintf(&g.buf, "}\n")
	return nil
}

// --- block ---

// writeBlock emits a nested (if/while) block's scope struct and frame
// push only when it declares something or stages a temporary into its
// own scope; a block with neither needs no runtime frame, since every
// reference inside it resolves through some ancestor scope that is
// already on the stack.
func (g *Generator) writeBlock(b *ast.Block, indent string) error {
	scope := b.Scope
	pushed := scope.DeclCount() > 0 || scope.TmpCount() > 0
	if pushed {
		g.writeScopeStruct(scope, indent, false)
		frame := frameVar(scope.ScopeID)
		fmt.Fprintf(&g.buf, "%sScopeFrame %s;\n", indent, frame)
		fmt.Fprintf(&g.buf, "%spush_scope(&%s, cur_scope_frame, %s, (Value *)&%s, %d, NULL);\n",
			indent, frame, g.funcFrameVar, scopeVar(scope.ScopeID), frameLength(scope))
		g.openFrames++
	}

	for _, stmt := range b.Stmts {
		if err := g.stmt(stmt, indent); err != nil {
			return err
		}
	}

	if pushed {
		fmt.Fprintf(&g.buf, "%spop_scope();\n", indent)
		g.openFrames--
	}
	return nil
}
