package semantic

import (
	"testing"

	"github.com/cwbudde/go-dws/internal/lexer"
	"github.com/cwbudde/go-dws/internal/parser"
)

func mustParse(t *testing.T, src string) *parser.Parser {
	t.Helper()
	l := lexer.New(src)
	p := parser.New(l)
	return p
}

func TestAnalyzeHelloWorld(t *testing.T) {
	p := mustParse(t, `fun main() : nothing { writeString("hello\n"); }`)
	prog := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("parse errors: %v", p.Errors())
	}
	if err := Analyze(prog); err != nil {
		t.Fatalf("unexpected semantic error: %v", err)
	}
}

func TestAnalyzeFactorialRecursion(t *testing.T) {
	src := `
fun main() : nothing {
  fun fact(n : int) : int {
    if n <= 1 then return 1;
    return n * fact(n - 1);
  }
  writeInteger(fact(5));
}`
	p := mustParse(t, src)
	prog := p.ParseProgram()
	if err := Analyze(prog); err != nil {
		t.Fatalf("unexpected semantic error: %v", err)
	}
}

func TestAnalyzeOpenLeadingDimensionArrayParam(t *testing.T) {
	src := `
fun main() : nothing {
  fun sum(ref a : int[]; n : int) : int {
    var i : int; var s : int;
    i <- 0; s <- 0;
    while i < n do { s <- s + a[i]; i <- i + 1; }
    return s;
  }
  var v : int[3];
  v[0] <- 1; v[1] <- 2; v[2] <- 3;
  writeInteger(sum(v, 3));
}`
	p := mustParse(t, src)
	prog := p.ParseProgram()
	if err := Analyze(prog); err != nil {
		t.Fatalf("unexpected semantic error: %v", err)
	}
}

func TestUndeclaredFunctionCallIsFatal(t *testing.T) {
	p := mustParse(t, `fun main() : nothing { foo(); }`)
	prog := p.ParseProgram()
	err := Analyze(prog)
	if err == nil {
		t.Fatalf("expected a semantic error for undeclared function")
	}
	semErr, ok := err.(*Error)
	if !ok || semErr.Type != ErrFunctionNotDeclared {
		t.Fatalf("expected ErrFunctionNotDeclared, got %+v", err)
	}
	if semErr.Pos.Line != 1 {
		t.Fatalf("expected error on line 1, got %d", semErr.Pos.Line)
	}
}

func TestRValueToByReferenceParamRejected(t *testing.T) {
	src := `
fun main() : nothing {
  fun bump(ref x : int) : nothing { x <- x + 1; }
  bump(1);
}`
	p := mustParse(t, src)
	prog := p.ParseProgram()
	err := Analyze(prog)
	if err == nil {
		t.Fatalf("expected r-value-to-by-reference error")
	}
	if err.(*Error).Type != ErrRValueByReference {
		t.Fatalf("expected ErrRValueByReference, got %+v", err)
	}
}

func TestMissingReturnRejected(t *testing.T) {
	src := `
fun main() : nothing {
  fun f() : int { writeInteger(1); }
  writeInteger(f());
}`
	p := mustParse(t, src)
	prog := p.ParseProgram()
	err := Analyze(prog)
	if err == nil {
		t.Fatalf("expected missing-return error")
	}
	if err.(*Error).Type != ErrMissingReturn {
		t.Fatalf("expected ErrMissingReturn, got %+v", err)
	}
}

func TestUndefinedFunctionAtScopeCloseRejected(t *testing.T) {
	src := `
fun main() : nothing {
  fun f() : int;
  writeInteger(1);
}`
	p := mustParse(t, src)
	prog := p.ParseProgram()
	err := Analyze(prog)
	if err == nil {
		t.Fatalf("expected undefined-function error")
	}
	if err.(*Error).Type != ErrUndefinedAtClose {
		t.Fatalf("expected ErrUndefinedAtClose, got %+v", err)
	}
}

func TestArrayShapeMismatchRejected(t *testing.T) {
	src := `
fun main() : nothing {
  fun sum2(ref a : int[2]) : nothing { }
  var v : int[3];
  sum2(v);
}`
	p := mustParse(t, src)
	prog := p.ParseProgram()
	err := Analyze(prog)
	if err == nil {
		t.Fatalf("expected array shape mismatch error")
	}
	if err.(*Error).Type != ErrArrayShapeMismatch {
		t.Fatalf("expected ErrArrayShapeMismatch, got %+v", err)
	}
}

func TestArrayPassedByValueRejected(t *testing.T) {
	src := `fun main() : nothing { fun f(a : int[3]) : nothing { } }`
	p := mustParse(t, src)
	prog := p.ParseProgram()
	err := Analyze(prog)
	if err == nil {
		t.Fatalf("expected array-by-value error")
	}
	if err.(*Error).Type != ErrArrayByValue {
		t.Fatalf("expected ErrArrayByValue, got %+v", err)
	}
}

func TestOutermostFunctionMustReturnNothing(t *testing.T) {
	p := mustParse(t, `fun main() : int { return 0; }`)
	prog := p.ParseProgram()
	err := Analyze(prog)
	if err == nil || err.(*Error).Type != ErrMainSignature {
		t.Fatalf("expected ErrMainSignature, got %+v", err)
	}
}

func TestExpressionPositionCallToNothingFunctionRejected(t *testing.T) {
	src := `
fun main() : nothing {
  fun p() : nothing { }
  writeInteger(p());
}`
	p := mustParse(t, src)
	prog := p.ParseProgram()
	err := Analyze(prog)
	if err == nil {
		t.Fatalf("expected error calling nothing-returning function in expression position")
	}
}
