package ast

import (
	"github.com/cwbudde/go-dws/internal/lexer"
	"github.com/cwbudde/go-dws/internal/types"
)

// ParamDecl is one formal parameter of a function header.
type ParamDecl struct {
	Name string
	Elem types.Primitive
	Shape types.Shape
	Mode  types.PassingMode
	Pos   lexer.Position
}

// FuncHeader is a function's name, return type, and ordered parameter
// list — everything that can be known from a forward declaration alone.
type FuncHeader struct {
	Name       string
	ReturnType types.Primitive
	Params     []*ParamDecl
	Pos        lexer.Position
}

// VarDecl declares one local variable (scalar or array).
type VarDecl struct {
	Name  string
	Elem  types.Primitive
	Shape types.Shape
	Pos   lexer.Position
}

// LocalDecl is one entry in a function's local-declarations section: it is
// either a variable definition or a nested function (declaration or full
// definition with its own locals and body).
type LocalDecl struct {
	Var  *VarDecl
	Func *FuncDecl
}

// FuncDecl is a function header optionally paired with a body. A header
// with Body == nil is a forward declaration; once the matching definition
// is parsed, the declaration's symbol-table entry transitions from
// undefined to defined (see the symtab package).
type FuncDecl struct {
	Header *FuncHeader
	Locals []*LocalDecl
	Body   *Stmt // nil for a forward declaration
	Pos    lexer.Position
}

// IsDefinition reports whether this FuncDecl carries a body.
func (f *FuncDecl) IsDefinition() bool { return f.Body != nil }
