package parser

import (
	"errors"
	"fmt"
	"strings"

	"kestrel/interpreter-go/pkg/ast"
)

// SourceLocation captures a source position for parser diagnostics.
type SourceLocation struct {
	Line   int
	Column int
}

// ParseError includes a message plus a best-effort source location.
type ParseError struct {
	Message  string
	Origin   string
	Location SourceLocation
}

func (e *ParseError) Error() string {
	if e.Origin != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.Origin, e.Location.Line, e.Location.Column, e.Message)
	}
	return fmt.Sprintf("line %d:%d: %s", e.Location.Line, e.Location.Column, e.Message)
}

func errorAt(pos ast.Position, format string, args ...any) *ParseError {
	return &ParseError{
		Message:  fmt.Sprintf(format, args...),
		Location: SourceLocation{Line: pos.Line, Column: pos.Column},
	}
}

func describeToken(tok Token) string {
	switch tok.Kind {
	case TokenEOF:
		return "end of input"
	case TokenString:
		return fmt.Sprintf("string %q", tok.Text)
	default:
		return fmt.Sprintf("%q", tok.Text)
	}
}

// IsIncomplete reports whether err was caused by the input ending early, as
// when an interactive line leaves a block open.
func IsIncomplete(err error) bool {
	var perr *ParseError
	if !errors.As(err, &perr) {
		return false
	}
	return strings.Contains(perr.Message, "end of input") || strings.HasPrefix(perr.Message, "unterminated")
}
