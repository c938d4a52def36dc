package semantic

import (
	"github.com/cwbudde/go-dws/internal/ast"
	"github.com/cwbudde/go-dws/internal/symtab"
	"github.com/cwbudde/go-dws/internal/types"
)

// comparisonOps produce an int-typed 0/1 result; the analyzer accepts
// that result wherever an int is accepted, not only in conditions.
// Everything else preserves its operand type.
var comparisonOps = map[string]bool{
	"=": true, "#": true, "<": true, ">": true, "<=": true, ">=": true,
	"and": true, "or": true,
}

// analyzeExpr walks one expression, populating Type/Shape/IsRValue/Entry.
func (a *Analyzer) analyzeExpr(e *ast.Expr) error {
	switch e.Kind {
	case ast.ExprIntLit:
		e.Type, e.IsRValue = types.Int, true
		return nil

	case ast.ExprCharLit:
		e.Type, e.IsRValue = types.Char, true
		return nil

	case ast.ExprStringLit:
		// A string literal already denotes a reference to fixed storage
		// (its only use is binding to a by-reference char array
		// parameter, e.g. writeString("hi")), so it is not treated as an
		// r-value the way a scalar constant is: IsRValue stays false.
		e.Type = types.Char
		e.Shape = types.Shape{Dims: []int{len(e.StrValue) + 1}, Open: true}
		e.IsRValue = false
		return nil

	case ast.ExprIdent:
		return a.analyzeIdent(e)

	case ast.ExprIndex:
		return a.analyzeIndex(e)

	case ast.ExprCall:
		return a.analyzeCall(e, false)

	case ast.ExprUnaryMinus:
		if err := a.analyzeExpr(e.Right); err != nil {
			return err
		}
		if e.Right.Entry == ast.EntryFunction {
			return newError(ErrNotAFunction, e.Pos, "unary '-' operand must not be a function")
		}
		e.Type, e.Shape, e.IsRValue = e.Right.Type, e.Right.Shape, true
		return nil

	case ast.ExprNot:
		if err := a.analyzeExpr(e.Right); err != nil {
			return err
		}
		if e.Right.Shape.IsArray() {
			return newError(ErrNotAnArray, e.Pos, "operand of 'not' must be a scalar")
		}
		e.Type, e.IsRValue = types.Int, true
		return nil

	case ast.ExprBinary:
		return a.analyzeBinary(e)
	}
	return nil
}

func (a *Analyzer) analyzeIdent(e *ast.Expr) error {
	entry := a.table.Lookup(e.Name)
	if entry == nil {
		return newError(ErrIdentifierNotFound, e.Pos, "'%s' is not declared", e.Name)
	}
	if entry.Kind == symtab.EntryFunction {
		e.Entry = ast.EntryFunction
		e.Type = entry.ReturnType
		e.IsRValue = false
		return nil
	}
	e.Entry = ast.EntryNonFunction
	e.Type = entry.Type
	e.Shape = entry.Shape
	e.IsRValue = false
	return nil
}

func (a *Analyzer) analyzeIndex(e *ast.Expr) error {
	if err := a.analyzeExpr(e.Base); err != nil {
		return err
	}
	if !e.Base.Shape.IsArray() {
		return newError(ErrNotAnArray, e.Pos, "cannot index a non-array expression")
	}
	if err := a.analyzeExpr(e.Index); err != nil {
		return err
	}
	if e.Index.Type != types.Int || e.Index.Shape.IsArray() {
		return newError(ErrTypeMismatch, e.Pos, "array index must be of type 'int'")
	}
	e.Type = e.Base.Type
	e.Shape = e.Base.Shape.Tail()
	e.IsRValue = false
	e.Entry = ast.EntryNonFunction
	return nil
}

// analyzeCall analyzes a function-call expression. allowNothing permits a
// call to a Nothing-returning function; it is true only when the call
// appears directly as a function-call statement. A Nothing-returning call
// used inside a larger expression has no value to plug in, so it is
// rejected everywhere else.
func (a *Analyzer) analyzeCall(e *ast.Expr, allowNothing bool) error {
	entry := a.table.Lookup(e.Name)
	if entry == nil {
		return newError(ErrFunctionNotDeclared, e.Pos, "function '%s' is not declared", e.Name)
	}
	if entry.Kind != symtab.EntryFunction {
		return newError(ErrNotAFunction, e.Pos, "'%s' is not a function", e.Name)
	}
	if !allowNothing && entry.ReturnType == types.Nothing {
		return newError(ErrTypeMismatch, e.Pos, "call to '%s' cannot be used in an expression: it returns 'nothing'", e.Name)
	}
	if len(e.Args) != len(entry.Params) {
		return newError(ErrArgumentCount, e.Pos, "function '%s' expects %d argument(s), got %d", e.Name, len(entry.Params), len(e.Args))
	}

	for i, arg := range e.Args {
		if err := a.analyzeExpr(arg); err != nil {
			return err
		}
		param := entry.Params[i]
		if param.Mode == types.ByReference && arg.IsRValue {
			return newError(ErrRValueByReference, arg.Pos, "argument %d to '%s' must be an l-value (parameter is by-reference)", i+1, e.Name)
		}
		if err := a.typeCheck(arg, param.Elem, param.Shape); err != nil {
			return err
		}
	}

	e.Type = entry.ReturnType
	// The call's result is an ordinary value, not a reference to the
	// function itself, so downstream "must not be a function" checks
	// (unary minus, binary operands) must not reject it.
	e.Entry = ast.EntryNonFunction
	e.IsRValue = true
	return nil
}

func (a *Analyzer) analyzeBinary(e *ast.Expr) error {
	if err := a.analyzeExpr(e.Left); err != nil {
		return err
	}
	if err := a.analyzeExpr(e.Right); err != nil {
		return err
	}
	if e.Left.Entry == ast.EntryFunction || e.Right.Entry == ast.EntryFunction {
		return newError(ErrNotAFunction, e.Pos, "operand of '%s' must not be a function", e.Op)
	}
	if err := a.typeCheck(e.Right, e.Left.Type, e.Left.Shape); err != nil {
		return err
	}
	e.IsRValue = true
	if comparisonOps[e.Op] {
		e.Type = types.Int
		return nil
	}
	e.Type = e.Left.Type
	e.Shape = e.Left.Shape
	return nil
}

// typeCheck checks e against an expected type and shape: scalar-vs-scalar
// requires equal types; array-vs-array requires equal element types and
// shapes that match per Shape.Matches (open leading dimension on either
// side is skipped); mixing an array with a scalar is always an error.
func (a *Analyzer) typeCheck(e *ast.Expr, expectedType types.Primitive, expectedShape types.Shape) error {
	if e.Shape.IsArray() != expectedShape.IsArray() {
		return newError(ErrArrayShapeMismatch, e.Pos, "cannot mix an array and a scalar value")
	}
	if e.Type != expectedType {
		return newError(ErrTypeMismatch, e.Pos, "type mismatch: expected '%s', got '%s'", expectedType, e.Type)
	}
	if e.Shape.IsArray() && !e.Shape.Matches(expectedShape) {
		return newError(ErrArrayShapeMismatch, e.Pos, "array shape mismatch: expected %s, got %s", expectedShape, e.Shape)
	}
	return nil
}
