package codegen

import (
	"strings"
	"testing"

	"crispy/ast"
	"crispy/lexer"
	"crispy/parser"
	"crispy/sema"
	"crispy/token"
)

func compile(t *testing.T, src string) (*ast.Module, string) {
	t.Helper()
	toks, err := lexer.New(src, token.NewTable()).Scan()
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	root, err := parser.New(src, toks).ParseModule()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := sema.New(src).Analyze(root); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	mod := &ast.Module{Filename: "test.crispy", Body: root}
	c, err := Generate(mod, root)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return mod, c
}

func TestEmptyModuleStillDefinesMain(t *testing.T) {
	_, c := compile(t, "")
	if !strings.Contains(c, "int main(void) {") {
		t.Errorf("expected a main function, got:\n%s", c)
	}
	if !strings.Contains(c, "#include \"runtime.h\"") {
		t.Errorf("expected the runtime header include, got:\n%s", c)
	}
}

func TestZeroFieldScopeGetsDummyField(t *testing.T) {
	_, c := compile(t, "print 1;")
	if !strings.Contains(c, "Value _unused;") {
		t.Errorf("expected a dummy field for the empty global scope, got:\n%s", c)
	}
}

func TestGlobalVarGetsScopeField(t *testing.T) {
	_, c := compile(t, "var x = 1;")
	if !strings.Contains(c, "Value m_x;") {
		t.Errorf("expected a field for x, got:\n%s", c)
	}
	if !strings.Contains(c, "INT_VALUE_INIT(1)") {
		t.Errorf("expected a static int initializer for x, got:\n%s", c)
	}
}

func TestNestedBlockWithNoDeclsOrTempsSkipsFramePush(t *testing.T) {
	_, c := compile(t, "var x = 1; if x { print x; }")
	if strings.Count(c, "push_scope") != 1 {
		t.Errorf("expected exactly one push_scope (main's own), got:\n%s", c)
	}
}

func TestNestedBlockWithDeclGetsFramePush(t *testing.T) {
	_, c := compile(t, "if true { var y = 1; print y; }")
	if strings.Count(c, "push_scope") != 2 {
		t.Errorf("expected two push_scope calls (main + the if body), got:\n%s", c)
	}
}

func TestCallExpressionIsStagedBeforeUse(t *testing.T) {
	_, c := compile(t, "function f() { return 1; } var x = f();")
	if !strings.Contains(c, "= call(") {
		t.Errorf("expected a staged call(), got:\n%s", c)
	}
}

func TestFunctionGetsPrototypeAndDefinition(t *testing.T) {
	_, c := compile(t, "function f(a) { return a; }")
	if !strings.Contains(c, "Value func0_f(Value **enclosed, va_list args);") {
		t.Errorf("expected a forward declaration, got:\n%s", c)
	}
	if !strings.Contains(c, "Value func0_f(Value **enclosed, va_list args) {") {
		t.Errorf("expected a function definition, got:\n%s", c)
	}
}

func TestReturnPopsEveryOpenFrame(t *testing.T) {
	_, c := compile(t, "function f() { if true { var t = 1; return t; } return 2; }")
	idx := strings.Index(c, "return ")
	if idx == -1 {
		t.Fatalf("expected to find the nested return, got:\n%s", c)
	}
	before := c[:idx]
	lines := strings.Split(strings.TrimRight(before, "\n\t"), "\n")
	popCount := 0
	for i := len(lines) - 1; i >= 0 && strings.Contains(lines[i], "pop_scope"); i-- {
		popCount++
	}
	if popCount != 2 {
		t.Errorf("expected 2 consecutive pop_scope calls before the nested return, got %d in:\n%s", popCount, before)
	}
}

func TestCapturedVariableIsUplifted(t *testing.T) {
	_, c := compile(t, "function outer() { var x = 1; function inner() { return x; } return inner; }")
	if !strings.Contains(c, "uplift_var(&") {
		t.Errorf("expected an uplift_var call for the captured variable, got:\n%s", c)
	}
	if !strings.Contains(c, "enclosed[0]") {
		t.Errorf("expected the capture to be read through enclosed[0], got:\n%s", c)
	}
}

func TestTransitiveCaptureRelaysThroughIntermediateEnclosed(t *testing.T) {
	_, c := compile(t, "function f1() { var x = 1; function f2() { function f3() { return x; } return f3; } return f2; }")

	f2Start := strings.Index(c, "func1_f2(Value **enclosed, va_list args) {")
	f3Start := strings.Index(c, "func2_f3(Value **enclosed, va_list args) {")
	if f2Start == -1 || f3Start == -1 {
		t.Fatalf("expected both func1_f2 and func2_f3 definitions, got:\n%s", c)
	}
	f2Body := c[f2Start:f3Start]

	if !strings.Contains(f2Body, "new_function(func2_f3, 0, 1, enclosed[0])") {
		t.Errorf("expected f2 to build f3's closure from its own enclosed[0], got:\n%s", f2Body)
	}
	if strings.Contains(f2Body, "uplift_var(") || strings.Contains(f2Body, ".m_x") {
		t.Errorf("f2 must not reach into f1's unreachable scope struct for x, got:\n%s", f2Body)
	}

	f1Body := c[:f2Start]
	if !strings.Contains(f1Body, "uplift_var(&scope") || !strings.Contains(f1Body, ".m_x);") {
		t.Errorf("expected f1 to uplift its own local x, got:\n%s", f1Body)
	}
	// f2 itself needs to capture x too, one level removed, so it can relay
	// it into f3 — f1 constructs f2's closure with that one capture.
	if !strings.Contains(f1Body, "new_function(func1_f2, 0, 1, var_cell(&scope") {
		t.Errorf("expected f1's closure construction for f2 to pass x's uplifted cell, got:\n%s", f1Body)
	}
}

func TestUnresolvedVariableLowersToRuntimeHelper(t *testing.T) {
	_, c := compile(t, "print nope;")
	if !strings.Contains(c, "unresolved_var(") {
		t.Errorf("expected an unresolved_var call, got:\n%s", c)
	}
}

func TestWhileRestagesConditionBeforeLoopCloses(t *testing.T) {
	_, c := compile(t, "function f() { return 1; } while f() { print 1; }")
	if strings.Count(c, "= call(") < 2 {
		t.Errorf("expected the call to be staged twice (before the loop and before each re-check), got:\n%s", c)
	}
}

func TestAnnotateModeInterleavesLineComments(t *testing.T) {
	toks, err := lexer.New("print 1;", token.NewTable()).Scan()
	if err != nil {
		t.Fatal(err)
	}
	root, err := parser.New("print 1;", toks).ParseModule()
	if err != nil {
		t.Fatal(err)
	}
	if err := sema.New("print 1;").Analyze(root); err != nil {
		t.Fatal(err)
	}
	mod := &ast.Module{Filename: "t.crispy", Body: root}
	c, err := GenerateWith(mod, root, true)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(c, "// line 1") {
		t.Errorf("expected an annotated line comment, got:\n%s", c)
	}
}

func TestBinaryOperatorsLowerToRuntimeFunctions(t *testing.T) {
	_, c := compile(t, "var x = f(); var y = x + x;")
	// x is a variable reference, so x + x is never constant-folded and
	// value_add survives to codegen.
	if !strings.Contains(c, "value_add(") {
		t.Errorf("expected value_add in generated C, got:\n%s", c)
	}
}
