// Package symtab implements Grace's hashed, scoped symbol table: a single
// hash table shared across all live scopes, with entries tagged by scope
// number so closing a scope can remove exactly the entries it owns.
// Buckets chain with insertion-at-head, so lookup naturally finds the
// innermost match first.
package symtab

import (
	"fmt"

	"github.com/cwbudde/go-dws/internal/lexer"
	"github.com/cwbudde/go-dws/internal/types"
)

// EntryKind tags what kind of name an Entry represents.
type EntryKind int

const (
	EntryFunction EntryKind = iota
	EntryVariable
	EntryParameter
)

// Entry is one symbol-table entry. Not every field is meaningful for every
// Kind; see the Entry* constructors.
type Entry struct {
	Kind        EntryKind
	Name        string
	ScopeNumber int
	Pos         lexer.Position

	// EntryFunction
	ReturnType types.Primitive
	Params     []types.Param
	Undefined  bool // true iff declared but not yet defined

	// EntryVariable, EntryParameter
	Type  types.Primitive
	Shape types.Shape
	Mode  types.PassingMode // meaningful only for EntryParameter

	next *Entry // next entry in this bucket's chain (older insertion)
}

// scope tracks one open lexical scope: its number, the return type in
// effect (Nothing outside any function), and whether a return has been
// observed for that function yet.
type scope struct {
	number       int
	returnType   types.Primitive
	returnExists bool
}

const defaultBuckets = 1009 // prime bucket count, chosen to keep load factor low and avoid the cache-unfriendly collisions of a round number

// Table is the hashed, scoped symbol table.
type Table struct {
	buckets    []*Entry
	scopes     []scope
	nextScope  int
}

// New creates an empty symbol table with the default bucket count.
func New() *Table {
	return &Table{buckets: make([]*Entry, defaultBuckets)}
}

func (t *Table) hash(name string) int {
	h := 0
	for i := 0; i < len(name); i++ {
		h = h*31 + int(name[i])
	}
	h %= len(t.buckets)
	if h < 0 {
		h += len(t.buckets)
	}
	return h
}

// OpenScope pushes a new scope with a fresh, monotonically increasing
// scope number, in effect for returnType (Nothing if this scope is not a
// function body).
func (t *Table) OpenScope(returnType types.Primitive) {
	t.nextScope++
	t.scopes = append(t.scopes, scope{number: t.nextScope, returnType: returnType})
}

// CurrentScopeNumber returns the scope number of the innermost open scope.
func (t *Table) CurrentScopeNumber() int {
	return t.scopes[len(t.scopes)-1].number
}

// ReturnType returns the return type in effect for the innermost scope.
func (t *Table) ReturnType() types.Primitive {
	return t.scopes[len(t.scopes)-1].returnType
}

// CloseScope runs the undefined-function check (any function entry owned
// by this scope still marked Undefined is fatal — a forward declaration
// that was never matched with a definition), then removes every entry
// owned by the closing scope from every bucket it touches. Returns an
// error rather than aborting so callers control diagnostic formatting.
func (t *Table) CloseScope() error {
	closing := t.scopes[len(t.scopes)-1].number

	for _, head := range t.buckets {
		for e := head; e != nil; e = e.next {
			if e.ScopeNumber == closing && e.Kind == EntryFunction && e.Undefined {
				return fmt.Errorf("function '%s' is declared but never defined", e.Name)
			}
		}
	}

	for i, head := range t.buckets {
		t.buckets[i] = removeScope(head, closing)
	}

	t.scopes = t.scopes[:len(t.scopes)-1]
	return nil
}

func removeScope(head *Entry, scopeNumber int) *Entry {
	if head == nil {
		return nil
	}
	if head.ScopeNumber == scopeNumber {
		return removeScope(head.next, scopeNumber)
	}
	head.next = removeScope(head.next, scopeNumber)
	return head
}

// Lookup returns the innermost visible entry for name, or nil if name is
// unresolved. Because insertion prepends within a bucket and scopes only
// ever grow in scope number while open, the first match in chain order is
// always the most recently opened (innermost) one.
func (t *Table) Lookup(name string) *Entry {
	idx := t.hash(name)
	for e := t.buckets[idx]; e != nil; e = e.next {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// WasDeclared reports whether a function named name exists in any visible
// scope.
func (t *Table) WasDeclared(name string) bool {
	e := t.Lookup(name)
	return e != nil && e.Kind == EntryFunction
}

func (t *Table) declaredInCurrentScope(name string) bool {
	e := t.Lookup(name)
	return e != nil && e.ScopeNumber == t.CurrentScopeNumber()
}

func (t *Table) insert(e *Entry) {
	idx := t.hash(e.Name)
	e.next = t.buckets[idx]
	t.buckets[idx] = e
}

// InsertVariable adds a variable entry to the current scope. It is an
// error to redeclare a name already present in this scope, or to declare
// a non-positive array dimension.
func (t *Table) InsertVariable(name string, typ types.Primitive, shape types.Shape, pos lexer.Position) error {
	if t.declaredInCurrentScope(name) {
		return fmt.Errorf("'%s' is already declared in this scope", name)
	}
	for _, d := range shape.Dims {
		if d <= 0 {
			return fmt.Errorf("array dimension for '%s' must be positive", name)
		}
	}
	t.insert(&Entry{
		Kind: EntryVariable, Name: name, ScopeNumber: t.CurrentScopeNumber(),
		Type: typ, Shape: shape, Pos: pos,
	})
	return nil
}

// InsertParameter adds a parameter entry to the current scope.
func (t *Table) InsertParameter(name string, typ types.Primitive, mode types.PassingMode, shape types.Shape, pos lexer.Position) error {
	if t.declaredInCurrentScope(name) {
		return fmt.Errorf("'%s' is already declared in this scope", name)
	}
	t.insert(&Entry{
		Kind: EntryParameter, Name: name, ScopeNumber: t.CurrentScopeNumber(),
		Type: typ, Mode: mode, Shape: shape, Pos: pos,
	})
	return nil
}

// InsertFunctionDeclaration adds a forward declaration: a function entry
// marked Undefined, which must be matched by a later InsertFunctionDefinition
// in the same scope before that scope closes.
func (t *Table) InsertFunctionDeclaration(name string, ret types.Primitive, params []types.Param, pos lexer.Position) error {
	if t.declaredInCurrentScope(name) {
		return fmt.Errorf("'%s' is already declared in this scope", name)
	}
	t.insert(&Entry{
		Kind: EntryFunction, Name: name, ScopeNumber: t.CurrentScopeNumber(),
		ReturnType: ret, Params: params, Undefined: true, Pos: pos,
	})
	return nil
}

// InsertFunctionDefinition records a full definition. If a forward
// declaration of the same name exists in this scope, its signature must
// match exactly and its Undefined flag is cleared; otherwise this call
// inserts a brand-new, already-defined function entry.
func (t *Table) InsertFunctionDefinition(name string, ret types.Primitive, params []types.Param, pos lexer.Position) error {
	if t.declaredInCurrentScope(name) {
		existing := t.Lookup(name)
		if existing.Kind != EntryFunction {
			return fmt.Errorf("'%s' is already declared as a non-function symbol", name)
		}
		if !existing.Undefined {
			return fmt.Errorf("function '%s' is already defined", name)
		}
		if existing.ReturnType != ret {
			return fmt.Errorf("definition of '%s' does not match its declared return type", name)
		}
		if !paramsEqual(existing.Params, params) {
			return fmt.Errorf("definition of '%s' does not match its declaration's parameters", name)
		}
		existing.Undefined = false
		return nil
	}
	t.insert(&Entry{
		Kind: EntryFunction, Name: name, ScopeNumber: t.CurrentScopeNumber(),
		ReturnType: ret, Params: params, Undefined: false, Pos: pos,
	})
	return nil
}

func paramsEqual(a, b []types.Param) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// SetReturnExists marks that the innermost scope has observed a reachable
// return statement matching its function's return type.
func (t *Table) SetReturnExists() {
	t.scopes[len(t.scopes)-1].returnExists = true
}

// CheckReturnExists verifies a non-Nothing function's obligation to have
// at least one reachable return; it is a no-op for Nothing-returning
// scopes.
func (t *Table) CheckReturnExists(pos lexer.Position) error {
	s := t.scopes[len(t.scopes)-1]
	if s.returnType != types.Nothing && !s.returnExists {
		return fmt.Errorf("function is missing a return statement")
	}
	return nil
}

// libraryFunctions is the fixed runtime library signature table, injected
// into the outermost scope by InitLibraryFunctions so programs can call
// these names without declaring them.
var libraryFunctions = []struct {
	name   string
	ret    types.Primitive
	params []types.Param
}{
	{"writeInteger", types.Nothing, []types.Param{{Elem: types.Int, Mode: types.ByValue}}},
	{"writeChar", types.Nothing, []types.Param{{Elem: types.Char, Mode: types.ByValue}}},
	{"writeString", types.Nothing, []types.Param{{Elem: types.Char, Mode: types.ByReference, Shape: types.Shape{Dims: []int{1}, Open: true}}}},
	{"readInteger", types.Int, nil},
	{"readChar", types.Char, nil},
	{"readString", types.Nothing, []types.Param{
		{Elem: types.Int, Mode: types.ByValue},
		{Elem: types.Char, Mode: types.ByReference, Shape: types.Shape{Dims: []int{1}, Open: true}},
	}},
	{"ord", types.Int, []types.Param{{Elem: types.Char, Mode: types.ByValue}}},
	{"ascii", types.Int, []types.Param{{Elem: types.Char, Mode: types.ByValue}}},
	{"chr", types.Char, []types.Param{{Elem: types.Int, Mode: types.ByValue}}},
	{"strlen", types.Int, []types.Param{{Elem: types.Char, Mode: types.ByReference, Shape: types.Shape{Dims: []int{1}, Open: true}}}},
	{"strcmp", types.Int, []types.Param{
		{Elem: types.Char, Mode: types.ByReference, Shape: types.Shape{Dims: []int{1}, Open: true}},
		{Elem: types.Char, Mode: types.ByReference, Shape: types.Shape{Dims: []int{1}, Open: true}},
	}},
	{"strcpy", types.Nothing, []types.Param{
		{Elem: types.Char, Mode: types.ByReference, Shape: types.Shape{Dims: []int{1}, Open: true}},
		{Elem: types.Char, Mode: types.ByReference, Shape: types.Shape{Dims: []int{1}, Open: true}},
	}},
	{"strcat", types.Nothing, []types.Param{
		{Elem: types.Char, Mode: types.ByReference, Shape: types.Shape{Dims: []int{1}, Open: true}},
		{Elem: types.Char, Mode: types.ByReference, Shape: types.Shape{Dims: []int{1}, Open: true}},
	}},
}

// InitLibraryFunctions seeds the outermost scope with the fixed runtime
// library signatures so the whole program can call them unqualified,
// without ever declaring them itself.
func (t *Table) InitLibraryFunctions() {
	for _, lf := range libraryFunctions {
		// Ignore the error: the library table itself never collides and
		// is only ever installed once, into a fresh outermost scope.
		_ = t.InsertFunctionDeclaration(lf.name, lf.ret, lf.params, lexer.Position{})
		t.Lookup(lf.name).Undefined = false
	}
}
