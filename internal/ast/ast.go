// Package ast defines the typed AST for Grace programs. Following a
// tagged-variant design rather than a class hierarchy per node kind, each
// syntactic category (expressions, statements, declarations) is a single
// struct with a Kind tag; passes dispatch with a switch on Kind instead of
// virtual calls. Decoration fields (Type, Shape, IsRValue, ...) start zero
// and are filled in by the semantic pass; nothing downstream of semantics
// should read them before analysis has run.
package ast

import (
	"github.com/cwbudde/go-dws/internal/lexer"
	"github.com/cwbudde/go-dws/internal/types"
)

// ExprKind tags the variant held by an Expr node.
type ExprKind int

const (
	ExprIntLit ExprKind = iota
	ExprCharLit
	ExprStringLit
	ExprIdent
	ExprIndex
	ExprCall
	ExprUnaryMinus
	ExprNot
	ExprBinary
)

// EntryKind records whether a resolved name refers to a function or to a
// plain (variable/parameter) storage location. Code that needs the finer
// distinction between variable and parameter consults the symbol table
// entry itself; the AST only needs function-vs-not to police call sites
// and r-value/l-value rules.
type EntryKind int

const (
	EntryUnknown EntryKind = iota
	EntryNonFunction
	EntryFunction
)

// Expr is every Grace expression form. Only the fields relevant to Kind
// are populated; see the ExprKind constants for which fields apply.
type Expr struct {
	Kind ExprKind
	Pos  lexer.Position

	// ExprIntLit
	IntValue int32
	// ExprCharLit
	CharValue byte
	// ExprStringLit
	StrValue string

	// ExprIdent (identifier), ExprCall (callee name); an ExprIndex keeps
	// its base expression in Base instead
	Name string

	// ExprIndex: Base[Index]
	Base  *Expr
	Index *Expr

	// ExprCall: arguments
	Args []*Expr

	// ExprUnaryMinus, ExprNot: operand held in Right
	// ExprBinary: Left Op Right
	Left  *Expr
	Right *Expr
	Op    string

	// Decorations populated by the semantic pass.
	Type     types.Primitive
	Shape    types.Shape
	Entry    EntryKind // entry kind of the resolved identifier/call target
	IsRValue bool
}

// Program is the root of a Grace compilation unit: its single outermost
// function definition.
type Program struct {
	Main *FuncDecl
}
