package runtime

import (
	"fmt"

	"github.com/pkg/errors"

	"kestrel/interpreter-go/pkg/ast"
)

var (
	// ErrChannelOccupied is returned by SignalChannel.Register when a marker
	// is already pending. Generated code never triggers it.
	ErrChannelOccupied = errors.New("signal channel already holds a pending marker")
	// ErrTrampolineOccupied is the trampoline counterpart.
	ErrTrampolineOccupied = errors.New("trampoline slot already holds a pending tail call")
)

type RuntimeErrorKind int

const (
	ErrUnmatchedLabel RuntimeErrorKind = iota
	ErrCallDepthExceeded
	ErrUndefinedVariable
	ErrNotCallable
	ErrArity
	ErrType
)

func (k RuntimeErrorKind) String() string {
	switch k {
	case ErrUnmatchedLabel:
		return "UnmatchedLabel"
	case ErrCallDepthExceeded:
		return "CallDepthExceeded"
	case ErrUndefinedVariable:
		return "UndefinedVariable"
	case ErrNotCallable:
		return "NotCallable"
	case ErrArity:
		return "Arity"
	case ErrType:
		return "Type"
	default:
		return fmt.Sprintf("RuntimeErrorKind(%d)", int(k))
	}
}

// CallSite is a call expression an error unwound through.
type CallSite struct {
	Origin   string
	Location ast.Span
}

// MaxCallSites caps the call sites recorded on one error.
const MaxCallSites = 8

// RuntimeError is a fatal guest-level failure.
type RuntimeError struct {
	Kind     RuntimeErrorKind
	Label    string
	Message  string
	Location ast.Span
	Origin   string
	// CallSites runs from the innermost caller outwards.
	CallSites []CallSite
}

// Summary is the error text without its location.
func (e *RuntimeError) Summary() string {
	if e.Kind == ErrUnmatchedLabel {
		return fmt.Sprintf("can't find label %s", e.Label)
	}
	return e.Message
}

// AddCallSite records a caller while the error unwinds.
func (e *RuntimeError) AddCallSite(origin string, loc ast.Span) {
	if len(e.CallSites) >= MaxCallSites || loc.IsZero() {
		return
	}
	e.CallSites = append(e.CallSites, CallSite{Origin: origin, Location: loc})
}

func (e *RuntimeError) Error() string {
	msg := e.Summary()
	if loc := e.Location.String(); loc != "" {
		if e.Origin != "" {
			return fmt.Sprintf("%s at %s:%s", msg, e.Origin, loc)
		}
		return fmt.Sprintf("%s at line %s", msg, loc)
	}
	return msg
}

// UnmatchedLabel builds the error for a marker that reached the top frame.
func UnmatchedLabel(marker ControlFlowMarker) *RuntimeError {
	return &RuntimeError{
		Kind:     ErrUnmatchedLabel,
		Label:    marker.Target,
		Location: marker.Location,
		Origin:   marker.Origin,
	}
}

// NewRuntimeError formats a RuntimeError of the given kind.
func NewRuntimeError(kind RuntimeErrorKind, format string, args ...any) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsRuntimeErrorKind reports whether err wraps a RuntimeError of kind.
func IsRuntimeErrorKind(err error, kind RuntimeErrorKind) bool {
	var rerr *RuntimeError
	if errors.As(err, &rerr) {
		return rerr.Kind == kind
	}
	return false
}
