package errors

import (
	"strings"
	"testing"

	"github.com/cwbudde/go-dws/internal/lexer"
)

func TestCompilerErrorFormat(t *testing.T) {
	src := "fun main() : nothing {\n  foo();\n}"
	err := NewCompilerError(lexer.Position{Line: 2, Column: 3}, "function 'foo' not declared", src, "prog.grc")

	got := err.Format(false)
	if !strings.Contains(got, "prog.grc:2:3") {
		t.Fatalf("expected header with file:line:col, got %q", got)
	}
	if !strings.Contains(got, "foo();") {
		t.Fatalf("expected source line in output, got %q", got)
	}
	if !strings.Contains(got, "function 'foo' not declared") {
		t.Fatalf("expected message in output, got %q", got)
	}
}

func TestCompilerErrorWithoutFile(t *testing.T) {
	err := NewCompilerError(lexer.Position{Line: 1, Column: 1}, "boom", "", "")
	got := err.Error()
	if !strings.HasPrefix(got, "line 1:1: error: boom") {
		t.Fatalf("unexpected error string: %q", got)
	}
}
