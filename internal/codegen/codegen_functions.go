package codegen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/cwbudde/go-dws/internal/ast"
	gracetypes "github.com/cwbudde/go-dws/internal/types"
)

// funcInfo is what a call site needs to know about a declared function:
// its lowered signature, its original header (for per-argument passing
// mode), and its trailing-capture list (for forwarding enclosing locals).
type funcInfo struct {
	irFunc   *ir.Func
	header   *ast.FuncHeader
	trailing []captureSpec
}

func (c *Context) pushFuncScope() {
	c.funcScopes = append(c.funcScopes, make(map[string]*funcInfo))
}

func (c *Context) popFuncScope() {
	c.funcScopes = c.funcScopes[:len(c.funcScopes)-1]
}

func (c *Context) lookupFunc(name string) (*funcInfo, bool) {
	for i := len(c.funcScopes) - 1; i >= 0; i-- {
		if info, ok := c.funcScopes[i][name]; ok {
			return info, true
		}
	}
	return nil, false
}

// Generate lowers an entire analyzed program to an LLVM module: the
// outermost function becomes "user_<name>" (its declared name is left
// free for the synthesized C-callable entry point, since Grace programs
// conventionally name their outermost function "main" too), and a real
// `main` is emitted that calls it and returns 0.
func (c *Context) Generate(prog *ast.Program) (*ir.Module, error) {
	c.pushFuncScope()
	defer c.popFuncScope()

	h := prog.Main.Header
	irFunc := c.Module.NewFunc(userPrefix+h.Name, c.llvmReturnType(h.ReturnType))
	info := &funcInfo{irFunc: irFunc, header: h}
	c.funcScopes[len(c.funcScopes)-1][h.Name] = info

	if err := c.generateBody(prog.Main, info); err != nil {
		return nil, err
	}
	c.synthesizeEntryPoint(irFunc)
	return c.Module, nil
}

func (c *Context) synthesizeEntryPoint(userMain *ir.Func) {
	realMain := c.Module.NewFunc("main", c.i32)
	entry := realMain.NewBlock("entry")
	entry.NewCall(userMain)
	entry.NewRet(constant.NewInt(c.i32, 0))
}

// declareHeader builds a function's full LLVM signature: its own declared
// parameters followed by one pointer parameter per trailing capture, all
// threaded by reference as the closure-conversion pass requires.
func (c *Context) declareHeader(h *ast.FuncHeader, trailing []captureSpec) *ir.Func {
	params := make([]*ir.Param, 0, len(h.Params)+len(trailing))
	for _, p := range h.Params {
		params = append(params, ir.NewParam(p.Name, c.paramLLVMType(p.Elem, p.Mode, p.Shape)))
	}
	for _, capture := range trailing {
		params = append(params, ir.NewParam(capture.name, c.paramLLVMType(capture.elem, gracetypes.ByReference, capture.shape)))
	}
	return c.Module.NewFunc(userPrefix+h.Name, c.llvmReturnType(h.ReturnType), params...)
}

// generateBody lowers one function's full body: binds its own parameters
// and trailing captures, allocates its own local variables, declares and
// lowers its nested functions (a two-pass declare-then-generate sweep so
// mutual and self recursion resolve regardless of textual order), then
// lowers its statements and synthesizes a fallback terminator if control
// can fall off the end.
func (c *Context) generateBody(fn *ast.FuncDecl, info *funcInfo) error {
	irFunc := info.irFunc
	entry := irFunc.NewBlock("entry")
	fr := c.pushFrame(irFunc, entry, info.trailing)
	defer c.popFrame()

	for i, p := range fn.Header.Params {
		irParam := irFunc.Params[i]
		if p.Shape.IsArray() || p.Mode == gracetypes.ByReference {
			fr.locals[p.Name] = &localSlot{
				ptr: irParam, elem: p.Elem, shape: p.Shape,
				isAggregate: p.Shape.IsArray() && !p.Shape.Open,
			}
			continue
		}
		alloca := entry.NewAlloca(c.llvmElemType(p.Elem))
		entry.NewStore(irParam, alloca)
		fr.locals[p.Name] = &localSlot{ptr: alloca, elem: p.Elem}
	}

	paramCount := len(fn.Header.Params)
	for i, capture := range info.trailing {
		if _, own := fr.locals[capture.name]; own {
			continue
		}
		irParam := irFunc.Params[paramCount+i]
		fr.locals[capture.name] = &localSlot{
			ptr: irParam, elem: capture.elem, shape: capture.shape,
			isAggregate: capture.shape.IsArray() && !capture.shape.Open,
		}
	}

	ownLocals := make([]captureSpec, 0, len(fn.Header.Params)+len(fn.Locals))
	for _, p := range fn.Header.Params {
		ownLocals = append(ownLocals, captureSpec{name: p.Name, elem: p.Elem, shape: p.Shape})
	}
	for _, local := range fn.Locals {
		if local.Var == nil {
			continue
		}
		v := local.Var
		var slot *localSlot
		if v.Shape.IsArray() {
			alloca := entry.NewAlloca(c.aggregateType(v.Elem, v.Shape.Dims))
			slot = &localSlot{ptr: alloca, elem: v.Elem, shape: v.Shape, isAggregate: true}
		} else {
			alloca := entry.NewAlloca(c.llvmElemType(v.Elem))
			slot = &localSlot{ptr: alloca, elem: v.Elem}
		}
		fr.locals[v.Name] = slot
		ownLocals = append(ownLocals, captureSpec{name: v.Name, elem: v.Elem, shape: v.Shape})
	}

	childTrailing := make([]captureSpec, 0, len(ownLocals)+len(info.trailing))
	childTrailing = append(childTrailing, ownLocals...)
	childTrailing = append(childTrailing, info.trailing...)

	c.pushFuncScope()
	scope := c.funcScopes[len(c.funcScopes)-1]
	for _, local := range fn.Locals {
		if local.Func == nil {
			continue
		}
		h := local.Func.Header
		if _, exists := scope[h.Name]; exists {
			continue
		}
		scope[h.Name] = &funcInfo{irFunc: c.declareHeader(h, childTrailing), header: h, trailing: childTrailing}
	}
	for _, local := range fn.Locals {
		if local.Func == nil || local.Func.Body == nil {
			continue
		}
		childInfo := scope[local.Func.Header.Name]
		if err := c.generateBody(local.Func, childInfo); err != nil {
			c.popFuncScope()
			return err
		}
	}
	c.popFuncScope()

	c.setBlock(entry)
	terminated, err := c.lowerStmt(fn.Body)
	if err != nil {
		return err
	}
	if !terminated {
		c.finishFunction(fn.Header.ReturnType)
	}
	return nil
}

// finishFunction synthesizes a fallback terminator for a function whose
// body can fall off the end without an explicit return. Semantic
// analysis only checks that a reachable return exists somewhere, not
// that every control path is covered, so codegen still owes LLVM a
// well-formed terminator on every block.
func (c *Context) finishFunction(ret gracetypes.Primitive) {
	if ret == gracetypes.Nothing {
		c.block().NewRet(nil)
		return
	}
	c.block().NewRet(constant.NewInt(c.llvmElemType(ret).(*types.IntType), 0))
}

func (c *Context) argumentAddress(a *ast.Expr) (value.Value, error) {
	if a.Kind == ast.ExprStringLit {
		return c.lowerExpr(a)
	}
	return c.addressOf(a)
}

// lowerCall lowers a function-call expression: runtime library calls
// bind by the fixed prototypes in Context.runtime; user calls resolve
// through the lexically scoped function table and append one forwarded
// pointer per trailing capture after the caller's own explicit arguments.
func (c *Context) lowerCall(e *ast.Expr) (value.Value, error) {
	if rt := c.runtime.lookup(e.Name); rt != nil {
		args := make([]value.Value, len(e.Args))
		for i, a := range e.Args {
			if _, isPtr := rt.Params[i].Type().(*types.PointerType); isPtr {
				addr, err := c.argumentAddress(a)
				if err != nil {
					return nil, err
				}
				args[i] = addr
				continue
			}
			v, err := c.lowerExpr(a)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return c.block().NewCall(rt, args...), nil
	}

	info, ok := c.lookupFunc(e.Name)
	if !ok {
		return nil, fmt.Errorf("codegen: call to undeclared function '%s'", e.Name)
	}

	args := make([]value.Value, 0, len(e.Args)+len(info.trailing))
	for i, a := range e.Args {
		param := info.header.Params[i]
		if param.Mode == gracetypes.ByReference {
			addr, err := c.argumentAddress(a)
			if err != nil {
				return nil, err
			}
			args = append(args, addr)
			continue
		}
		v, err := c.lowerExpr(a)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	for _, capture := range info.trailing {
		slot, ok := c.resolve(capture.name)
		if !ok {
			return nil, fmt.Errorf("codegen: trailing capture '%s' of '%s' not visible at call site", capture.name, e.Name)
		}
		args = append(args, slot.ptr)
	}

	return c.block().NewCall(info.irFunc, args...), nil
}
