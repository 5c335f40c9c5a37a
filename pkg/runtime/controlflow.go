package runtime

import (
	"fmt"

	"kestrel/interpreter-go/pkg/ast"
)

// MarkerKind is the closed set of non-local control-flow events.
type MarkerKind int

const (
	MarkerExit MarkerKind = iota
	MarkerContinue
	MarkerRestart
	MarkerJump
)

func (k MarkerKind) String() string {
	switch k {
	case MarkerExit:
		return "last"
	case MarkerContinue:
		return "next"
	case MarkerRestart:
		return "redo"
	case MarkerJump:
		return "goto"
	default:
		return fmt.Sprintf("unknown_marker_%d", int(k))
	}
}

// Action maps the marker kind to the dispatcher action that consumes it.
func (k MarkerKind) Action() DispatchAction {
	switch k {
	case MarkerExit:
		return ActionExit
	case MarkerContinue:
		return ActionContinue
	case MarkerRestart:
		return ActionRestart
	case MarkerJump:
		return ActionJump
	default:
		panic(fmt.Sprintf("runtime: unhandled marker kind %d", int(k)))
	}
}

// MarkerKindFor converts a parsed control-flow verb.
func MarkerKindFor(kind ast.ControlFlowKind) (MarkerKind, error) {
	switch kind {
	case ast.ControlFlowLast:
		return MarkerExit, nil
	case ast.ControlFlowNext:
		return MarkerContinue, nil
	case ast.ControlFlowRedo:
		return MarkerRestart, nil
	case ast.ControlFlowGoto:
		return MarkerJump, nil
	default:
		return 0, fmt.Errorf("unknown control flow verb %q", kind)
	}
}

// ControlFlowMarker is a pending non-local last/next/redo/goto. It is a plain
// value; the channel hands out copies.
type ControlFlowMarker struct {
	Kind     MarkerKind
	Target   string
	Location ast.Span
	Origin   string
}

func (m ControlFlowMarker) String() string {
	if m.Target == "" {
		return m.Kind.String()
	}
	return m.Kind.String() + " " + m.Target
}

// DispatchAction is the outcome of a dispatcher consulting the channel.
type DispatchAction int

const (
	ActionNone DispatchAction = iota
	ActionExit
	ActionContinue
	ActionRestart
	ActionJump
	ActionPendingOther
)

func (a DispatchAction) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionExit:
		return "exit"
	case ActionContinue:
		return "continue"
	case ActionRestart:
		return "restart"
	case ActionJump:
		return "jump"
	case ActionPendingOther:
		return "pending_other"
	default:
		return fmt.Sprintf("unknown_action_%d", int(a))
	}
}
