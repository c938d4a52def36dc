// Package codegen lowers a semantically analyzed Grace AST to an LLVM IR
// module using github.com/llir/llvm. Every source function becomes a flat
// top-level routine named with a "user_" prefix (to avoid colliding with
// the runtime library names and the synthesized "main"); nested functions
// are flattened by closure conversion via argument threading: each inner
// function gains one trailing by-reference parameter per local visible
// in its lexical parent, and every call site rewrites its arguments
// through a per-function name-translation table built while that
// function's header is lowered.
//
// Codegen never consults the symbol table. It relies entirely on the
// Type/Shape/IsRValue/Entry decorations the semantic pass already
// attached to the AST, plus its own parallel per-function name
// environment built during lowering.
package codegen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	gracetypes "github.com/cwbudde/go-dws/internal/types"
)

// userPrefix distinguishes emitted user routines from the library
// prototypes and the synthesized "main".
const userPrefix = "user_"

// frame is the per-function lowering environment: a real-name -> storage
// mapping ("name-translation table"), live for the
// duration of that function's lowering.
type frame struct {
	fn     *ir.Func
	block  *ir.Block
	locals map[string]*localSlot

	// trailing is this function's own trailing-capture list, in the
	// exact order its IR parameters were appended; call sites to this
	// function must supply arguments in this order.
	trailing []captureSpec
}

// localSlot records how to reach one name's storage, plus enough type
// information to address and load/store it without re-deriving from the
// AST every time.
type localSlot struct {
	ptr          value.Value
	elem         gracetypes.Primitive
	shape        gracetypes.Shape
	isAggregate  bool // true: ptr points to the full array aggregate type
}

// captureSpec is one entry in a function's trailing-parameter list: the
// real name of a captured enclosing local, plus its type/shape so the
// callee's signature and the caller's forwarding argument can both be
// built.
type captureSpec struct {
	name  string
	elem  gracetypes.Primitive
	shape gracetypes.Shape
}

// Context is the single, process-wide mutable state of the code
// generator: the IR module/builder, a small LLVM type cache, the runtime
// library prototypes, and the stack of per-function frames currently
// being lowered. The stack is one frame deeper per level of function
// nesting: a nested function's body is lowered to completion inside its
// parent's lowering, before the parent's own statements, and only the
// top frame is consulted while it is being lowered.
type Context struct {
	Module *ir.Module

	i32 *types.IntType
	i8  *types.IntType

	runtime *runtimeFuncs

	frames     []*frame
	funcScopes []map[string]*funcInfo
}

// NewContext creates an empty module with the runtime library declared.
func NewContext(sourceFile string) *Context {
	m := ir.NewModule()
	m.SourceFilename = sourceFile
	c := &Context{
		Module: m,
		i32:    types.I32,
		i8:     types.I8,
	}
	c.runtime = declareRuntime(c)
	return c
}

func (c *Context) current() *frame {
	return c.frames[len(c.frames)-1]
}

func (c *Context) pushFrame(fn *ir.Func, block *ir.Block, trailing []captureSpec) *frame {
	f := &frame{fn: fn, block: block, locals: make(map[string]*localSlot), trailing: trailing}
	c.frames = append(c.frames, f)
	return f
}

func (c *Context) popFrame() {
	c.frames = c.frames[:len(c.frames)-1]
}

// block returns the current insertion block for the active frame.
func (c *Context) block() *ir.Block { return c.current().block }

func (c *Context) setBlock(b *ir.Block) { c.current().block = b }

// llvmElemType maps a Grace primitive to its LLVM scalar type. Nothing
// has no element representation and must never reach this function.
func (c *Context) llvmElemType(p gracetypes.Primitive) types.Type {
	switch p {
	case gracetypes.Int:
		return c.i32
	case gracetypes.Char:
		return c.i8
	default:
		panic(fmt.Sprintf("codegen: no LLVM element type for %s", p))
	}
}

// llvmReturnType maps a Grace return type, including Nothing -> void.
func (c *Context) llvmReturnType(p gracetypes.Primitive) types.Type {
	if p == gracetypes.Nothing {
		return types.Void
	}
	return c.llvmElemType(p)
}

// aggregateType builds the right-to-left nested array type for a fully
// known shape: [d1 x [d2 x ... [dn x T]]].
func (c *Context) aggregateType(elem gracetypes.Primitive, dims []int) types.Type {
	t := c.llvmElemType(elem)
	for i := len(dims) - 1; i >= 0; i-- {
		t = types.NewArray(uint64(dims[i]), t)
	}
	return t
}

// rowType builds the aggregate type for every dimension but the first —
// the "unit" a bare open-leading-dimension pointer advances by.
func (c *Context) rowType(elem gracetypes.Primitive, shape gracetypes.Shape) types.Type {
	if len(shape.Dims) <= 1 {
		return c.llvmElemType(elem)
	}
	return c.aggregateType(elem, shape.Dims[1:])
}

// paramLLVMType computes the LLVM parameter type for one Grace parameter:
// by-value scalar passes by value; by-reference scalar passes
// pointer-to-element; by-reference array with a fully known shape passes
// pointer-to-aggregate; by-reference array with an open leading
// dimension passes a bare pointer-to-element-type.
func (c *Context) paramLLVMType(elem gracetypes.Primitive, mode gracetypes.PassingMode, shape gracetypes.Shape) types.Type {
	if !shape.IsArray() {
		if mode == gracetypes.ByReference {
			return types.NewPointer(c.llvmElemType(elem))
		}
		return c.llvmElemType(elem)
	}
	if shape.Open {
		return types.NewPointer(c.llvmElemType(elem))
	}
	return types.NewPointer(c.aggregateType(elem, shape.Dims))
}
