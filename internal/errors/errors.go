// Package errors formats Grace compiler diagnostics with source context:
// a message, a file:line:column header, and a caret pointing at the
// offending column. Grace aborts at the first error it detects, so every
// diagnostic in this package describes exactly one failure.
package errors

import (
	"fmt"
	"strings"

	"github.com/cwbudde/go-dws/internal/lexer"
)

// CompilerError is a single fatal diagnostic with enough context to print
// the originating source line.
type CompilerError struct {
	Message string
	Source  string
	File    string
	Pos     lexer.Position
}

// NewCompilerError creates a CompilerError at the given position.
func NewCompilerError(pos lexer.Position, message, source, file string) *CompilerError {
	return &CompilerError{Pos: pos, Message: message, Source: source, File: file}
}

// Error implements the error interface.
func (e *CompilerError) Error() string {
	return e.Format(false)
}

// Format renders the error with its source line and a caret under the
// failing column. If color is true, ANSI codes highlight the caret.
func (e *CompilerError) Format(color bool) string {
	var sb strings.Builder

	if e.File != "" {
		sb.WriteString(fmt.Sprintf("%s:%d:%d: error: ", e.File, e.Pos.Line, e.Pos.Column))
	} else {
		sb.WriteString(fmt.Sprintf("line %d:%d: error: ", e.Pos.Line, e.Pos.Column))
	}
	sb.WriteString(e.Message)

	sourceLine := e.getSourceLine(e.Pos.Line)
	if sourceLine != "" {
		sb.WriteString("\n")
		lineNumStr := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(lineNumStr)
		sb.WriteString(sourceLine)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(lineNumStr)+e.Pos.Column-1))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
	}

	return sb.String()
}

// getSourceLine extracts a 1-indexed line from the source text.
func (e *CompilerError) getSourceLine(lineNum int) string {
	if e.Source == "" {
		return ""
	}
	lines := strings.Split(e.Source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}
