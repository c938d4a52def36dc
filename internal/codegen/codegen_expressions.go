package codegen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/cwbudde/go-dws/internal/ast"
)

// toBool normalizes any Grace int value to an i1 truth value: nonzero is
// true. Comparisons and and/or results are already clean 0/1, but any
// int-valued expression (a loop counter, a flag variable) is a legal
// condition too, so every branch site routes through here rather than
// assuming the value is already boolean.
func (c *Context) toBool(v value.Value) value.Value {
	zero := constant.NewInt(v.Type().(*types.IntType), 0)
	return c.block().NewICmp(enum.IPredNE, v, zero)
}

// lowerExpr lowers one expression to its LLVM value, loading through an
// address for every l-value form.
func (c *Context) lowerExpr(e *ast.Expr) (value.Value, error) {
	switch e.Kind {
	case ast.ExprIntLit:
		return constant.NewInt(c.i32, int64(e.IntValue)), nil

	case ast.ExprCharLit:
		return constant.NewInt(c.i8, int64(e.CharValue)), nil

	case ast.ExprStringLit:
		return c.lowerStringLiteral(e.StrValue)

	case ast.ExprIdent:
		return c.lowerIdentLoad(e)

	case ast.ExprIndex:
		addr, err := c.addressOf(e)
		if err != nil {
			return nil, err
		}
		return c.block().NewLoad(c.llvmElemType(e.Type), addr), nil

	case ast.ExprCall:
		return c.lowerCall(e)

	case ast.ExprUnaryMinus:
		v, err := c.lowerExpr(e.Right)
		if err != nil {
			return nil, err
		}
		zero := constant.NewInt(v.Type().(*types.IntType), 0)
		return c.block().NewSub(zero, v), nil

	case ast.ExprNot:
		v, err := c.lowerExpr(e.Right)
		if err != nil {
			return nil, err
		}
		b := c.toBool(v)
		notB := c.block().NewXor(b, constant.NewInt(types.I1, 1))
		return c.block().NewZExt(notB, c.i32), nil

	case ast.ExprBinary:
		return c.lowerBinary(e)
	}
	return nil, fmt.Errorf("codegen: unsupported expression kind %d", e.Kind)
}

// lowerIdentLoad loads an identifier's current value. A function name
// used as a value never reaches codegen (semantic analysis rejects any
// use of a bare function identifier outside a call).
func (c *Context) lowerIdentLoad(e *ast.Expr) (value.Value, error) {
	slot, ok := c.resolve(e.Name)
	if !ok {
		return nil, fmt.Errorf("codegen: unresolved identifier '%s'", e.Name)
	}
	if slot.isAggregate {
		// A bare array identifier used as a value (e.g. passed whole as
		// an argument) denotes its address, not a loaded scalar.
		return slot.ptr, nil
	}
	return c.block().NewLoad(c.llvmElemType(slot.elem), slot.ptr), nil
}

// lowerStringLiteral materializes a NUL-terminated char array as a
// module-level constant and returns a pointer to its first element, so
// a string literal has the same bare-pointer representation as any other
// by-reference open-leading-dimension char array.
func (c *Context) lowerStringLiteral(s string) (value.Value, error) {
	data := constant.NewCharArrayFromString(s + "\x00")
	g := c.Module.NewGlobalDef("", data)
	g.Immutable = true
	zero := constant.NewInt(c.i32, 0)
	return c.block().NewGetElementPtr(data.Type(), g, zero, zero), nil
}

// lowerBinary lowers every binary operator. Arithmetic and comparison
// operators are ordinary eager lowering; "and"/"or" are lowered
// separately with real branches so the right operand is genuinely
// skipped when the left one already determines the result.
func (c *Context) lowerBinary(e *ast.Expr) (value.Value, error) {
	switch e.Op {
	case "and":
		return c.lowerShortCircuit(e, true)
	case "or":
		return c.lowerShortCircuit(e, false)
	}

	l, err := c.lowerExpr(e.Left)
	if err != nil {
		return nil, err
	}
	r, err := c.lowerExpr(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case "+":
		return c.block().NewAdd(l, r), nil
	case "-":
		return c.block().NewSub(l, r), nil
	case "*":
		return c.block().NewMul(l, r), nil
	case "div":
		return c.block().NewSDiv(l, r), nil
	case "mod":
		return c.block().NewSRem(l, r), nil
	case "=":
		return c.block().NewZExt(c.block().NewICmp(enum.IPredEQ, l, r), c.i32), nil
	case "#":
		return c.block().NewZExt(c.block().NewICmp(enum.IPredNE, l, r), c.i32), nil
	case "<":
		return c.block().NewZExt(c.block().NewICmp(enum.IPredSLT, l, r), c.i32), nil
	case "<=":
		return c.block().NewZExt(c.block().NewICmp(enum.IPredSLE, l, r), c.i32), nil
	case ">":
		return c.block().NewZExt(c.block().NewICmp(enum.IPredSGT, l, r), c.i32), nil
	case ">=":
		return c.block().NewZExt(c.block().NewICmp(enum.IPredSGE, l, r), c.i32), nil
	}
	return nil, fmt.Errorf("codegen: unsupported binary operator %q", e.Op)
}

// lowerShortCircuit lowers "and" (isAnd true) and "or" (isAnd false)
// with a two-block-plus-phi pattern: the right operand's block is only
// reached when the left operand doesn't already decide the result.
func (c *Context) lowerShortCircuit(e *ast.Expr, isAnd bool) (value.Value, error) {
	l, err := c.lowerExpr(e.Left)
	if err != nil {
		return nil, err
	}
	lBool := c.toBool(l)
	entryBlock := c.block()

	f := c.current().fn
	rhsBlock := f.NewBlock("")
	endBlock := f.NewBlock("")

	if isAnd {
		entryBlock.NewCondBr(lBool, rhsBlock, endBlock)
	} else {
		entryBlock.NewCondBr(lBool, endBlock, rhsBlock)
	}

	c.setBlock(rhsBlock)
	r, err := c.lowerExpr(e.Right)
	if err != nil {
		return nil, err
	}
	r = c.block().NewZExt(c.toBool(r), c.i32)
	rhsEndBlock := c.block()
	rhsEndBlock.NewBr(endBlock)

	c.setBlock(endBlock)
	shortCircuitValue := int64(0)
	if !isAnd {
		shortCircuitValue = 1
	}
	phi := endBlock.NewPhi(
		ir.NewIncoming(constant.NewInt(c.i32, shortCircuitValue), entryBlock),
		ir.NewIncoming(r, rhsEndBlock),
	)
	return phi, nil
}
