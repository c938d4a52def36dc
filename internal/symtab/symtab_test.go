package symtab

import (
	"testing"

	"github.com/cwbudde/go-dws/internal/lexer"
	"github.com/cwbudde/go-dws/internal/types"
)

func TestInsertAndLookupInnermostWins(t *testing.T) {
	tab := New()
	tab.OpenScope(types.Nothing)
	if err := tab.InsertVariable("x", types.Int, types.Shape{}, lexer.Position{Line: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tab.OpenScope(types.Nothing)
	if err := tab.InsertVariable("x", types.Char, types.Shape{}, lexer.Position{Line: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entry := tab.Lookup("x")
	if entry == nil || entry.Type != types.Char {
		t.Fatalf("expected innermost 'x' (char), got %+v", entry)
	}

	if err := tab.CloseScope(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}

	entry = tab.Lookup("x")
	if entry == nil || entry.Type != types.Int {
		t.Fatalf("expected outer 'x' (int) after inner scope closed, got %+v", entry)
	}
}

func TestDuplicateDeclarationInSameScopeFails(t *testing.T) {
	tab := New()
	tab.OpenScope(types.Nothing)
	if err := tab.InsertVariable("x", types.Int, types.Shape{}, lexer.Position{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tab.InsertVariable("x", types.Int, types.Shape{}, lexer.Position{}); err == nil {
		t.Fatalf("expected duplicate declaration error")
	}
}

func TestNonPositiveArrayDimensionRejected(t *testing.T) {
	tab := New()
	tab.OpenScope(types.Nothing)
	err := tab.InsertVariable("a", types.Int, types.Shape{Dims: []int{0}}, lexer.Position{})
	if err == nil {
		t.Fatalf("expected error for non-positive dimension")
	}
}

func TestUndefinedFunctionAtScopeCloseIsFatal(t *testing.T) {
	tab := New()
	tab.OpenScope(types.Nothing)
	if err := tab.InsertFunctionDeclaration("foo", types.Int, nil, lexer.Position{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tab.CloseScope(); err == nil {
		t.Fatalf("expected undefined-function error on scope close")
	}
}

func TestDeclarationThenMatchingDefinitionClears(t *testing.T) {
	tab := New()
	tab.OpenScope(types.Nothing)
	params := []types.Param{{Elem: types.Int, Mode: types.ByValue}}
	if err := tab.InsertFunctionDeclaration("foo", types.Int, params, lexer.Position{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tab.InsertFunctionDefinition("foo", types.Int, params, lexer.Position{}); err != nil {
		t.Fatalf("unexpected error matching definition: %v", err)
	}
	if err := tab.CloseScope(); err != nil {
		t.Fatalf("unexpected error on close: %v", err)
	}
}

func TestMismatchedDefinitionRejected(t *testing.T) {
	tab := New()
	tab.OpenScope(types.Nothing)
	if err := tab.InsertFunctionDeclaration("foo", types.Int, nil, lexer.Position{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	badParams := []types.Param{{Elem: types.Char, Mode: types.ByValue}}
	if err := tab.InsertFunctionDefinition("foo", types.Int, badParams, lexer.Position{}); err == nil {
		t.Fatalf("expected mismatch error")
	}
}

func TestReturnExistsObligation(t *testing.T) {
	tab := New()
	tab.OpenScope(types.Int)
	if err := tab.CheckReturnExists(lexer.Position{}); err == nil {
		t.Fatalf("expected missing-return error for int function with no return")
	}
	tab.SetReturnExists()
	if err := tab.CheckReturnExists(lexer.Position{}); err != nil {
		t.Fatalf("unexpected error after SetReturnExists: %v", err)
	}
}

func TestNothingFunctionHasNoReturnObligation(t *testing.T) {
	tab := New()
	tab.OpenScope(types.Nothing)
	if err := tab.CheckReturnExists(lexer.Position{}); err != nil {
		t.Fatalf("nothing-returning function should have no obligation: %v", err)
	}
}

func TestInitLibraryFunctions(t *testing.T) {
	tab := New()
	tab.OpenScope(types.Nothing)
	tab.InitLibraryFunctions()

	if !tab.WasDeclared("writeInteger") {
		t.Fatalf("expected writeInteger to be declared")
	}
	entry := tab.Lookup("writeString")
	if entry == nil || entry.Undefined {
		t.Fatalf("library functions must be pre-defined, not forward declarations")
	}
}

func TestScopeBalanceAcrossNesting(t *testing.T) {
	tab := New()
	tab.OpenScope(types.Nothing)
	tab.OpenScope(types.Int)
	tab.OpenScope(types.Nothing)
	for i := 0; i < 3; i++ {
		if err := tab.CloseScope(); err != nil {
			t.Fatalf("unexpected close error: %v", err)
		}
	}
	if len(tab.scopes) != 0 {
		t.Fatalf("expected zero open scopes, got %d", len(tab.scopes))
	}
}
