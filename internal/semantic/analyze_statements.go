package semantic

import (
	"github.com/cwbudde/go-dws/internal/ast"
	"github.com/cwbudde/go-dws/internal/types"
)

// analyzeStmt walks one statement, recursing into nested statements and
// expressions and enforcing each statement form's type and scope rules.
func (a *Analyzer) analyzeStmt(s *ast.Stmt) error {
	switch s.Kind {
	case ast.StmtBlock:
		for _, inner := range s.Stmts {
			if err := a.analyzeStmt(inner); err != nil {
				return err
			}
		}
		return nil

	case ast.StmtIf:
		if err := a.analyzeExpr(s.CondExpr); err != nil {
			return err
		}
		if err := a.typeCheck(s.CondExpr, types.Int, types.Shape{}); err != nil {
			return err
		}
		if err := a.analyzeStmt(s.Then); err != nil {
			return err
		}
		if s.Else != nil {
			return a.analyzeStmt(s.Else)
		}
		return nil

	case ast.StmtWhile:
		if err := a.analyzeExpr(s.CondExpr); err != nil {
			return err
		}
		if err := a.typeCheck(s.CondExpr, types.Int, types.Shape{}); err != nil {
			return err
		}
		return a.analyzeStmt(s.Then)

	case ast.StmtAssign:
		return a.analyzeAssign(s)

	case ast.StmtReturn:
		return a.analyzeReturn(s)

	case ast.StmtCall:
		if s.Call.Kind != ast.ExprCall {
			return newError(ErrTypeMismatch, s.Pos, "expression statement must be a function call")
		}
		return a.analyzeCall(s.Call, true)

	case ast.StmtEmpty:
		return nil
	}
	return nil
}

func (a *Analyzer) analyzeAssign(s *ast.Stmt) error {
	if err := a.analyzeExpr(s.Target); err != nil {
		return err
	}
	if s.Target.IsRValue {
		return newError(ErrTypeMismatch, s.Pos, "left-hand side of assignment is not an l-value")
	}
	if s.Target.Entry == ast.EntryFunction {
		return newError(ErrNotAFunction, s.Pos, "cannot assign to function '%s'", s.Target.Name)
	}
	if err := a.analyzeExpr(s.Value); err != nil {
		return err
	}
	return a.typeCheck(s.Value, s.Target.Type, s.Target.Shape)
}

// analyzeReturn enforces the return contract: a bare `return;` requires
// the enclosing function's return type to be Nothing; `return expr;`
// requires expr's type to match. Either form satisfies the enclosing
// scope's return-presence obligation.
func (a *Analyzer) analyzeReturn(s *ast.Stmt) error {
	expected := a.table.ReturnType()
	if s.Value == nil {
		if expected != types.Nothing {
			return newError(ErrReturnTypeWrong, s.Pos, "return with no value in a function returning '%s'", expected)
		}
		a.table.SetReturnExists()
		return nil
	}
	if expected == types.Nothing {
		return newError(ErrReturnTypeWrong, s.Pos, "return with a value in a function returning 'nothing'")
	}
	if err := a.analyzeExpr(s.Value); err != nil {
		return err
	}
	if err := a.typeCheck(s.Value, expected, types.Shape{}); err != nil {
		return err
	}
	a.table.SetReturnExists()
	return nil
}
