// Package semantic implements Grace's semantic pass: a recursive walk over
// the parsed AST that populates each expression's (type, shape, is_rvalue)
// decorations, enforces the type/shape/scope contracts from the
// specification, and reports the first violation as a fatal diagnostic.
// Semantic analysis always completes in full before code generation
// begins; codegen relies on the decorations this pass leaves behind but
// never consults the symbol table directly.
package semantic

import (
	"github.com/cwbudde/go-dws/internal/ast"
	"github.com/cwbudde/go-dws/internal/lexer"
	"github.com/cwbudde/go-dws/internal/symtab"
	"github.com/cwbudde/go-dws/internal/types"
)

// Analyzer walks a parsed Program and decorates it in place.
type Analyzer struct {
	table *symtab.Table
}

// NewAnalyzer creates an Analyzer with a fresh symbol table.
func NewAnalyzer() *Analyzer {
	return &Analyzer{table: symtab.New()}
}

// Analyze runs the semantic pass over prog. It returns the first
// violation encountered, or nil if the program is well-formed. On success
// every Expr in the tree carries accurate Type/Shape/IsRValue/Entry
// decorations.
func Analyze(prog *ast.Program) error {
	a := NewAnalyzer()
	return a.analyzeOutermost(prog.Main)
}

// analyzeOutermost analyzes the program's single outermost function. It
// must return Nothing and take no parameters, and it captures no
// enclosing locals — trivially true since it has no enclosing scope.
func (a *Analyzer) analyzeOutermost(fn *ast.FuncDecl) error {
	if fn.Header.ReturnType != types.Nothing {
		return newError(ErrMainSignature, fn.Header.Pos, "outermost function '%s' must return 'nothing'", fn.Header.Name)
	}
	if len(fn.Header.Params) != 0 {
		return newError(ErrMainSignature, fn.Header.Pos, "outermost function '%s' must take no parameters", fn.Header.Name)
	}

	a.table.OpenScope(types.Nothing)
	a.table.InitLibraryFunctions()
	if err := a.analyzeFuncDecl(fn); err != nil {
		return err
	}
	if err := a.table.CloseScope(); err != nil {
		return newError(ErrUndefinedAtClose, fn.Header.Pos, "%s", err.Error())
	}
	return nil
}

// analyzeFuncDecl analyzes one function header plus, if present, its
// locals and body. The caller is responsible for the scope this function
// declares/defines into; analyzeFuncDecl opens and closes the scope that
// corresponds to the function's own body.
func (a *Analyzer) analyzeFuncDecl(fn *ast.FuncDecl) error {
	h := fn.Header
	params := make([]types.Param, len(h.Params))
	for i, p := range h.Params {
		params[i] = types.Param{Elem: p.Elem, Mode: p.Mode, Shape: p.Shape}
		if p.Shape.IsArray() && p.Mode == types.ByValue {
			return newError(ErrArrayByValue, p.Pos, "array parameter '%s' must be passed by reference", p.Name)
		}
	}

	if fn.IsDefinition() {
		if err := a.table.InsertFunctionDefinition(h.Name, h.ReturnType, params, h.Pos); err != nil {
			return wrapSymtabError(err, h.Pos)
		}
	} else {
		if err := a.table.InsertFunctionDeclaration(h.Name, h.ReturnType, params, h.Pos); err != nil {
			return wrapSymtabError(err, h.Pos)
		}
		return nil
	}

	a.table.OpenScope(h.ReturnType)
	for _, p := range h.Params {
		if err := a.table.InsertParameter(p.Name, p.Elem, p.Mode, p.Shape, p.Pos); err != nil {
			return wrapSymtabError(err, p.Pos)
		}
	}

	for _, local := range fn.Locals {
		if local.Var != nil {
			if err := a.table.InsertVariable(local.Var.Name, local.Var.Elem, local.Var.Shape, local.Var.Pos); err != nil {
				return wrapSymtabError(err, local.Var.Pos)
			}
			continue
		}
		if err := a.analyzeFuncDecl(local.Func); err != nil {
			return err
		}
	}

	if err := a.analyzeStmt(fn.Body); err != nil {
		return err
	}

	if err := a.table.CheckReturnExists(h.Pos); err != nil {
		return newError(ErrMissingReturn, h.Pos, "function '%s' %s", h.Name, err.Error())
	}

	if err := a.table.CloseScope(); err != nil {
		return newError(ErrUndefinedAtClose, h.Pos, "%s", err.Error())
	}
	return nil
}

func wrapSymtabError(err error, pos lexer.Position) *Error {
	return newError(ErrDuplicateDeclaration, pos, "%s", err.Error())
}
