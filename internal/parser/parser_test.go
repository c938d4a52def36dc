package parser

import (
	"testing"

	"github.com/cwbudde/go-dws/internal/ast"
	"github.com/cwbudde/go-dws/internal/lexer"
	"github.com/cwbudde/go-dws/internal/types"
)

func parseProgram(t *testing.T, input string) *ast.Program {
	t.Helper()
	l := lexer.New(input)
	p := New(l)
	prog := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}
	return prog
}

func TestParseHelloWorld(t *testing.T) {
	prog := parseProgram(t, `fun main() : nothing { writeString("hello\n"); }`)
	if prog.Main.Header.Name != "main" {
		t.Fatalf("expected function name 'main', got %q", prog.Main.Header.Name)
	}
	if prog.Main.Header.ReturnType != types.Nothing {
		t.Fatalf("expected nothing return type")
	}
	if len(prog.Main.Body.Stmts) != 1 {
		t.Fatalf("expected one statement, got %d", len(prog.Main.Body.Stmts))
	}
	stmt := prog.Main.Body.Stmts[0]
	if stmt.Kind != ast.StmtCall || stmt.Call.Name != "writeString" {
		t.Fatalf("expected writeString call statement, got %+v", stmt)
	}
}

func TestParseNestedFunctionAndRecursion(t *testing.T) {
	src := `
fun main() : nothing {
  fun fact(n : int) : int {
    if n <= 1 then return 1;
    return n * fact(n - 1);
  }
  writeInteger(fact(5));
}`
	prog := parseProgram(t, src)
	if len(prog.Main.Locals) != 1 || prog.Main.Locals[0].Func == nil {
		t.Fatalf("expected one nested function local")
	}
	fact := prog.Main.Locals[0].Func
	if fact.Header.Name != "fact" || len(fact.Header.Params) != 1 {
		t.Fatalf("unexpected fact() header: %+v", fact.Header)
	}
	if fact.Header.Params[0].Mode != types.ByValue {
		t.Fatalf("expected by-value parameter")
	}
}

func TestParseRefArrayParamWithOpenLeadingDimension(t *testing.T) {
	src := `
fun main() : nothing {
  fun sum(ref a : int[]; n : int) : int {
    var i : int; var s : int;
    i <- 0; s <- 0;
    while i < n do { s <- s + a[i]; i <- i + 1; }
    return s;
  }
  var v : int[3];
  v[0] <- 1;
  writeInteger(sum(v, 3));
}`
	prog := parseProgram(t, src)
	sum := prog.Main.Locals[0].Func
	aParam := sum.Header.Params[0]
	if aParam.Mode != types.ByReference {
		t.Fatalf("expected by-reference parameter for 'a'")
	}
	if !aParam.Shape.Open || len(aParam.Shape.Dims) != 1 {
		t.Fatalf("expected open single-dimension shape, got %+v", aParam.Shape)
	}

	vDecl := prog.Main.Locals[1].Var
	if vDecl.Shape.Open || vDecl.Shape.Dims[0] != 3 {
		t.Fatalf("expected fixed shape [3] for 'v', got %+v", vDecl.Shape)
	}
}

func TestParseShortCircuitPrecedence(t *testing.T) {
	src := `fun main() : nothing {
  if 0 and sideEffect() > 0 then writeString("Y");
}`
	prog := parseProgram(t, src)
	ifStmt := prog.Main.Body.Stmts[0]
	cond := ifStmt.CondExpr
	if cond.Kind != ast.ExprBinary || cond.Op != "and" {
		t.Fatalf("expected top-level 'and', got %+v", cond)
	}
	// Right side of 'and' should itself be the '>' comparison, since
	// relational operators bind tighter than 'and'.
	if cond.Right.Kind != ast.ExprBinary || cond.Right.Op != ">" {
		t.Fatalf("expected right operand to be '>' comparison, got %+v", cond.Right)
	}
}

func TestForwardDeclarationThenDefinition(t *testing.T) {
	src := `
fun main() : nothing {
  fun helper(x : int) : int;
  fun helper(x : int) : int { return x; }
  writeInteger(helper(1));
}`
	prog := parseProgram(t, src)
	if len(prog.Main.Locals) != 2 {
		t.Fatalf("expected two locals (decl + def), got %d", len(prog.Main.Locals))
	}
	if prog.Main.Locals[0].Func.IsDefinition() {
		t.Fatalf("expected first helper to be a forward declaration")
	}
	if !prog.Main.Locals[1].Func.IsDefinition() {
		t.Fatalf("expected second helper to be a full definition")
	}
}
