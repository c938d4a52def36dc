package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
)

// runtimeFuncs holds the LLVM prototypes for Grace's fixed runtime
// library. Everything but ascii is declared (never defined) in every
// module; the final executable is linked against a small C runtime
// implementing them, named to match exactly so the linker resolves
// them. ord and ascii are synonyms: ord is the one real extern, and
// ascii is emitted as a defined thunk that calls it, so both names are
// usable from Grace source without the linker needing to know about
// ascii at all.
type runtimeFuncs struct {
	writeInteger *ir.Func
	writeChar    *ir.Func
	writeString  *ir.Func
	readInteger  *ir.Func
	readChar     *ir.Func
	readString   *ir.Func
	ord          *ir.Func
	ascii        *ir.Func
	chr          *ir.Func
	strlen       *ir.Func
	strcmp       *ir.Func
	strcpy       *ir.Func
	strcat       *ir.Func
}

// declareRuntime declares one external prototype per entry in the fixed
// runtime library, using the same pointer-to-i8 ABI codegen uses
// elsewhere for by-reference open-leading-dimension char arrays, then
// defines the ascii-over-ord thunk.
func declareRuntime(c *Context) *runtimeFuncs {
	strPtr := types.NewPointer(c.i8)
	m := c.Module

	r := &runtimeFuncs{
		writeInteger: m.NewFunc("writeInteger", types.Void, ir.NewParam("n", c.i32)),
		writeChar:    m.NewFunc("writeChar", types.Void, ir.NewParam("ch", c.i8)),
		writeString:  m.NewFunc("writeString", types.Void, ir.NewParam("s", strPtr)),
		readInteger:  m.NewFunc("readInteger", c.i32),
		readChar:     m.NewFunc("readChar", c.i8),
		readString:   m.NewFunc("readString", types.Void, ir.NewParam("n", c.i32), ir.NewParam("s", strPtr)),
		ord:          m.NewFunc("ord", c.i32, ir.NewParam("ch", c.i8)),
		chr:          m.NewFunc("chr", c.i8, ir.NewParam("n", c.i32)),
		strlen:       m.NewFunc("strlen", c.i32, ir.NewParam("s", strPtr)),
		strcmp:       m.NewFunc("strcmp", c.i32, ir.NewParam("s1", strPtr), ir.NewParam("s2", strPtr)),
		strcpy:       m.NewFunc("strcpy", types.Void, ir.NewParam("dst", strPtr), ir.NewParam("src", strPtr)),
		strcat:       m.NewFunc("strcat", types.Void, ir.NewParam("dst", strPtr), ir.NewParam("src", strPtr)),
	}

	r.ascii = defineAsciiThunk(m, r.ord, c.i8)
	return r
}

// defineAsciiThunk emits `define i32 @ascii(i8 %ch) { ret i32 call @ord(%ch) }`.
func defineAsciiThunk(m *ir.Module, ord *ir.Func, i8 *types.IntType) *ir.Func {
	fn := m.NewFunc("ascii", ord.Sig.RetType, ir.NewParam("ch", i8))
	entry := fn.NewBlock("")
	call := entry.NewCall(ord, fn.Params[0])
	entry.NewRet(call)
	return fn
}

// lookup returns the runtime prototype for a library function name, or
// nil if name does not name one.
func (r *runtimeFuncs) lookup(name string) *ir.Func {
	switch name {
	case "writeInteger":
		return r.writeInteger
	case "writeChar":
		return r.writeChar
	case "writeString":
		return r.writeString
	case "readInteger":
		return r.readInteger
	case "readChar":
		return r.readChar
	case "readString":
		return r.readString
	case "ord":
		return r.ord
	case "ascii":
		return r.ascii
	case "chr":
		return r.chr
	case "strlen":
		return r.strlen
	case "strcmp":
		return r.strcmp
	case "strcpy":
		return r.strcpy
	case "strcat":
		return r.strcat
	default:
		return nil
	}
}
