package codegen

import (
	"strings"
	"testing"

	"github.com/cwbudde/go-dws/internal/lexer"
	"github.com/cwbudde/go-dws/internal/parser"
	"github.com/cwbudde/go-dws/internal/semantic"
)

func generateIR(t *testing.T, src string) string {
	t.Helper()
	l := lexer.New(src)
	p := parser.New(l)
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	if err := semantic.Analyze(prog); err != nil {
		t.Fatalf("unexpected semantic error: %v", err)
	}
	ctx := NewContext("test.grc")
	module, err := ctx.Generate(prog)
	if err != nil {
		t.Fatalf("unexpected codegen error: %v", err)
	}
	return module.String()
}

func TestGenerateHelloWorld(t *testing.T) {
	ir := generateIR(t, `fun main() : nothing { writeString("hello\n"); }`)
	for _, want := range []string{
		"define void @user_main()",
		"declare void @writeString(",
		"call void @writeString(",
		"define i32 @main()",
		"call void @user_main()",
		`c"hello\0A\00"`,
	} {
		if !strings.Contains(ir, want) {
			t.Fatalf("expected IR to contain %q, got:\n%s", want, ir)
		}
	}
}

func TestGenerateFactorialRecursion(t *testing.T) {
	src := `
fun main() : nothing {
  fun fact(n : int) : int {
    if n <= 1 then return 1;
    return n * fact(n - 1);
  }
  writeInteger(fact(5));
}`
	ir := generateIR(t, src)
	if !strings.Contains(ir, "define i32 @user_fact(i32 %n)") {
		t.Fatalf("expected fact to lower with no trailing captures, got:\n%s", ir)
	}
	if !strings.Contains(ir, "call i32 @user_fact(") {
		t.Fatalf("expected a recursive call to user_fact, got:\n%s", ir)
	}
}

func TestGenerateArrayParamOpenLeadingDimension(t *testing.T) {
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
	ir := generateIR(t, src)
	if !strings.Contains(ir, "define i32 @user_sum(i32* %a, i32 %n, [3 x i32]* %v)") {
		t.Fatalf("expected sum's open-leading array parameter to lower to a bare i32*, got:\n%s", ir)
	}
	if !strings.Contains(ir, "alloca [3 x i32]") {
		t.Fatalf("expected v to be allocated as a fixed [3 x i32] aggregate, got:\n%s", ir)
	}
}

func TestGenerateCapturedOuterVariable(t *testing.T) {
	src := `
fun main() : nothing {
  var x : int;
  fun bump() : nothing { x <- x + 1; }
  x <- 0; bump(); bump(); writeInteger(x);
}`
	ir := generateIR(t, src)
	if !strings.Contains(ir, "define void @user_bump(i32* %x)") {
		t.Fatalf("expected bump to gain one trailing by-reference parameter for x, got:\n%s", ir)
	}
	if strings.Count(ir, "call void @user_bump(") != 2 {
		t.Fatalf("expected two forwarded calls to user_bump, got:\n%s", ir)
	}
}

func TestGenerateGrandparentCapture(t *testing.T) {
	src := `
fun main() : nothing {
  var x : int;
  fun outer() : nothing {
    fun inner() : nothing { x <- x + 1; }
    inner();
  }
  x <- 0; outer(); writeInteger(x);
}`
	ir := generateIR(t, src)
	if !strings.Contains(ir, "define void @user_inner(i32* %x)") {
		t.Fatalf("expected inner to capture x directly, got:\n%s", ir)
	}
	if !strings.Contains(ir, "define void @user_outer(i32* %x)") {
		t.Fatalf("expected outer to re-export x as its own trailing parameter, got:\n%s", ir)
	}
}

func TestGenerateShortCircuitDoesNotCallRHS(t *testing.T) {
	src := `
fun main() : nothing {
  fun sideEffect() : int { writeString("X"); return 1; }
  if 0 and sideEffect() > 0 then writeString("Y");
  writeString(".");
}`
	ir := generateIR(t, src)
	if !strings.Contains(ir, "br i1") {
		t.Fatalf("expected a conditional branch gating the right operand, got:\n%s", ir)
	}
	if !strings.Contains(ir, "phi i32") {
		t.Fatalf("expected the and/or lowering to merge through a phi, got:\n%s", ir)
	}
}

func TestGenerateDivMod(t *testing.T) {
	src := `
fun main() : nothing {
  var q : int; var r : int;
  q <- 17 div 5;
  r <- 17 mod 5;
  writeInteger(q); writeInteger(r);
}`
	ir := generateIR(t, src)
	if !strings.Contains(ir, "sdiv i32") {
		t.Fatalf("expected 'div' to lower to sdiv, got:\n%s", ir)
	}
	if !strings.Contains(ir, "srem i32") {
		t.Fatalf("expected 'mod' to lower to srem, got:\n%s", ir)
	}
}

func TestGenerateAsciiThunkCallsOrd(t *testing.T) {
	ir := generateIR(t, `fun main() : nothing { writeInteger(ascii('a')); }`)
	if !strings.Contains(ir, "define i32 @ascii(i8 %ch)") {
		t.Fatalf("expected ascii to be defined as a thunk, got:\n%s", ir)
	}
	if !strings.Contains(ir, "call i32 @ord(") {
		t.Fatalf("expected the ascii thunk to call ord, got:\n%s", ir)
	}
}
