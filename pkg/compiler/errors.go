package compiler

import (
	"fmt"

	"github.com/pkg/errors"

	"kestrel/interpreter-go/pkg/ast"
)

type CompileErrorKind int

const (
	ErrStatementOutsideLoop CompileErrorKind = iota
	ErrTailCallOutsideSub
	ErrDuplicateSubroutine
	ErrUnsupported
)

func (k CompileErrorKind) String() string {
	switch k {
	case ErrStatementOutsideLoop:
		return "StatementOutsideLoop"
	case ErrTailCallOutsideSub:
		return "TailCallOutsideSub"
	case ErrDuplicateSubroutine:
		return "DuplicateSubroutine"
	case ErrUnsupported:
		return "Unsupported"
	default:
		return fmt.Sprintf("CompileErrorKind(%d)", int(k))
	}
}

// CompileError rejects a unit before any code is generated for it.
type CompileError struct {
	Kind     CompileErrorKind
	Message  string
	Location ast.Span
	Origin   string
}

func (e *CompileError) Error() string {
	loc := e.Location.String()
	switch {
	case loc == "":
		return e.Message
	case e.Origin != "":
		return fmt.Sprintf("%s:%s: %s", e.Origin, loc, e.Message)
	default:
		return fmt.Sprintf("line %s: %s", loc, e.Message)
	}
}

func newCompileError(kind CompileErrorKind, node ast.Node, format string, args ...any) *CompileError {
	err := &CompileError{Kind: kind, Message: fmt.Sprintf(format, args...)}
	if node != nil {
		err.Location = node.Span()
	}
	return err
}

func statementOutsideLoop(stmt *ast.ControlFlowStatement) *CompileError {
	return newCompileError(ErrStatementOutsideLoop, stmt, "%s statement used outside of a loop", stmt.Kind)
}

func unsupported(node ast.Node, format string, args ...any) *CompileError {
	return newCompileError(ErrUnsupported, node, format, args...)
}

// IsCompileErrorKind reports whether err wraps a CompileError of kind.
func IsCompileErrorKind(err error, kind CompileErrorKind) bool {
	var cerr *CompileError
	if errors.As(err, &cerr) {
		return cerr.Kind == kind
	}
	return false
}
