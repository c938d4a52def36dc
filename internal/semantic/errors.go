package semantic

import (
	"fmt"

	"github.com/cwbudde/go-dws/internal/lexer"
)

// ErrorType classifies a semantic diagnostic along the taxonomy from the
// Grace specification (symbol errors, type/shape errors, control errors,
// main-function errors).
type ErrorType string

const (
	ErrDuplicateDeclaration ErrorType = "duplicate_declaration"
	ErrIdentifierNotFound   ErrorType = "identifier_not_found"
	ErrFunctionNotDeclared  ErrorType = "function_not_declared"
	ErrNotAFunction         ErrorType = "not_a_function"
	ErrFunctionRedefined    ErrorType = "function_already_defined"

	ErrTypeMismatch       ErrorType = "type_mismatch"
	ErrNotAnArray         ErrorType = "not_an_array"
	ErrArrayShapeMismatch ErrorType = "array_shape_mismatch"
	ErrInvalidArraySize   ErrorType = "invalid_array_size"
	ErrArrayByValue       ErrorType = "array_passed_by_value"
	ErrRValueByReference  ErrorType = "rvalue_to_reference_param"
	ErrArgumentCount      ErrorType = "argument_count"

	ErrMissingReturn    ErrorType = "missing_return"
	ErrReturnTypeWrong  ErrorType = "return_type_mismatch"
	ErrUndefinedAtClose ErrorType = "function_undefined_at_scope_close"

	ErrMainSignature ErrorType = "invalid_main_signature"
)

// Error is one fatal semantic diagnostic. Analysis stops at the first one
// encountered.
type Error struct {
	Type    ErrorType
	Message string
	Pos     lexer.Position
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s", e.Message, e.Pos)
}

func newError(typ ErrorType, pos lexer.Position, format string, args ...interface{}) *Error {
	return &Error{Type: typ, Message: fmt.Sprintf(format, args...), Pos: pos}
}
