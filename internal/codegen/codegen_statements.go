package codegen

import (
	"github.com/cwbudde/go-dws/internal/ast"
)

// lowerStmt lowers one statement. It reports whether the statement always
// terminates its current block (a return, or an if whose every arm
// terminates) so callers know not to append a fallthrough branch and not
// to keep lowering statements into an already-terminated block, matching
// the convention the reference LLVM codegen uses for dead-code-after-
// return.
func (c *Context) lowerStmt(s *ast.Stmt) (bool, error) {
	switch s.Kind {
	case ast.StmtBlock:
		for _, inner := range s.Stmts {
			terminated, err := c.lowerStmt(inner)
			if err != nil {
				return false, err
			}
			if terminated {
				return true, nil
			}
		}
		return false, nil

	case ast.StmtIf:
		return c.lowerIf(s)

	case ast.StmtWhile:
		return c.lowerWhile(s)

	case ast.StmtAssign:
		return false, c.lowerAssign(s)

	case ast.StmtReturn:
		return true, c.lowerReturn(s)

	case ast.StmtCall:
		_, err := c.lowerCall(s.Call)
		return false, err

	case ast.StmtEmpty:
		return false, nil
	}
	return false, nil
}

func (c *Context) lowerAssign(s *ast.Stmt) error {
	addr, err := c.addressOf(s.Target)
	if err != nil {
		return err
	}
	val, err := c.lowerExpr(s.Value)
	if err != nil {
		return err
	}
	c.block().NewStore(val, addr)
	return nil
}

func (c *Context) lowerReturn(s *ast.Stmt) error {
	if s.Value == nil {
		c.block().NewRet(nil)
		return nil
	}
	v, err := c.lowerExpr(s.Value)
	if err != nil {
		return err
	}
	c.block().NewRet(v)
	return nil
}

func (c *Context) lowerIf(s *ast.Stmt) (bool, error) {
	cond, err := c.lowerExpr(s.CondExpr)
	if err != nil {
		return false, err
	}
	boolCond := c.toBool(cond)

	fn := c.current().fn
	thenBlock := fn.NewBlock("")
	elseBlock := fn.NewBlock("")
	endBlock := fn.NewBlock("")
	c.block().NewCondBr(boolCond, thenBlock, elseBlock)

	c.setBlock(thenBlock)
	thenTerminated, err := c.lowerStmt(s.Then)
	if err != nil {
		return false, err
	}
	if !thenTerminated {
		c.block().NewBr(endBlock)
	}

	c.setBlock(elseBlock)
	elseTerminated := false
	if s.Else != nil {
		elseTerminated, err = c.lowerStmt(s.Else)
		if err != nil {
			return false, err
		}
	}
	if !elseTerminated {
		c.block().NewBr(endBlock)
	}

	c.setBlock(endBlock)
	if thenTerminated && elseTerminated {
		endBlock.NewUnreachable()
		return true, nil
	}
	return false, nil
}

func (c *Context) lowerWhile(s *ast.Stmt) (bool, error) {
	fn := c.current().fn
	condBlock := fn.NewBlock("")
	bodyBlock := fn.NewBlock("")
	endBlock := fn.NewBlock("")

	c.block().NewBr(condBlock)

	c.setBlock(condBlock)
	cond, err := c.lowerExpr(s.CondExpr)
	if err != nil {
		return false, err
	}
	c.block().NewCondBr(c.toBool(cond), bodyBlock, endBlock)

	c.setBlock(bodyBlock)
	bodyTerminated, err := c.lowerStmt(s.Then)
	if err != nil {
		return false, err
	}
	if !bodyTerminated {
		c.block().NewBr(condBlock)
	}

	c.setBlock(endBlock)
	return false, nil
}
