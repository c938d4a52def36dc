package codegen

import (
	"fmt"

	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/value"

	"github.com/cwbudde/go-dws/internal/ast"
)

// gatherIndices walks an ExprIndex chain (e.g. a[i][j] parses as
// Index(Index(a, i), j)) down to its root identifier, collecting the
// index expressions in source order.
func gatherIndices(e *ast.Expr) (root *ast.Expr, indices []*ast.Expr) {
	if e.Kind != ast.ExprIndex {
		return e, nil
	}
	root, indices = gatherIndices(e.Base)
	return root, append(indices, e.Index)
}

// addressOf computes the storage address of an l-value expression: an
// identifier or a (possibly multi-step) index into one. Indexing into a
// known aggregate lowers to one GetElementPtr with a leading zero plus
// one index per dimension consumed; indexing into a bare pointer (an
// open-leading-dimension array) lowers to row-major pointer arithmetic
// with no leading zero.
func (c *Context) addressOf(e *ast.Expr) (value.Value, error) {
	root, indices := gatherIndices(e)
	if root.Kind != ast.ExprIdent {
		return nil, fmt.Errorf("codegen: l-value root must be an identifier, got kind %d", root.Kind)
	}
	slot, ok := c.resolve(root.Name)
	if !ok {
		return nil, fmt.Errorf("codegen: unresolved identifier '%s'", root.Name)
	}
	if len(indices) == 0 {
		return slot.ptr, nil
	}

	idxVals := make([]value.Value, len(indices))
	for i, ix := range indices {
		v, err := c.lowerExpr(ix)
		if err != nil {
			return nil, err
		}
		idxVals[i] = v
	}

	if slot.isAggregate {
		zero := constant.NewInt(c.i32, 0)
		gepIdx := append([]value.Value{zero}, idxVals...)
		aggType := c.aggregateType(slot.elem, slot.shape.Dims)
		return c.block().NewGetElementPtr(aggType, slot.ptr, gepIdx...), nil
	}

	// Bare pointer into a flattened open-leading-dimension array: fold
	// the supplied indices into one row-major linear offset using the
	// declared shape's trailing-dimension strides.
	offset := c.linearOffset(slot.shape.Dims, idxVals)
	return c.block().NewGetElementPtr(c.llvmElemType(slot.elem), slot.ptr, offset), nil
}

// strideOf returns the number of elements spanned by one step of
// dimension index i (0-based) in a row-major layout described by dims.
func strideOf(dims []int, i int) int {
	stride := 1
	for _, d := range dims[i+1:] {
		stride *= d
	}
	return stride
}

// linearOffset folds a chain of per-dimension indices into one row-major
// linear element offset: sum(idx[k] * stride(k)) for k in 0..len(idx)-1.
func (c *Context) linearOffset(dims []int, idx []value.Value) value.Value {
	total := idx[0]
	if stride := strideOf(dims, 0); stride != 1 {
		total = c.block().NewMul(idx[0], constant.NewInt(c.i32, int64(stride)))
	}
	for k := 1; k < len(idx); k++ {
		term := idx[k]
		if stride := strideOf(dims, k); stride != 1 {
			term = c.block().NewMul(idx[k], constant.NewInt(c.i32, int64(stride)))
		}
		total = c.block().NewAdd(total, term)
	}
	return total
}

// resolve finds a name's storage slot in the active frame. The frame's
// map holds its own parameters and locals as well as its trailing
// captures, with an own name taking precedence over a capture of the
// same name — mirroring the symbol table's innermost-first lookup at the
// codegen layer.
func (c *Context) resolve(name string) (*localSlot, bool) {
	f := c.current()
	if slot, ok := f.locals[name]; ok {
		return slot, true
	}
	return nil, false
}
