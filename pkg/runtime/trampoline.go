package runtime

// TailCall is a pending `goto &callee` request.
type TailCall struct {
	Target Value
	Args   []Value
}

// Trampoline is the per-thread slot a tail call is parked in while the
// requesting frame returns.
type Trampoline struct {
	pending bool
	call    TailCall
}

type trampolineContinueValue struct{}

func (trampolineContinueValue) Kind() Kind { return KindUndef }

// TrampolineContinue is returned by a frame that parked a tail call.
var TrampolineContinue Value = trampolineContinueValue{}

// IsTrampolineContinue reports whether v is the trampoline sentinel.
func IsTrampolineContinue(v Value) bool {
	_, ok := v.(trampolineContinueValue)
	return ok
}

// RequestContinue parks the next callee and its arguments.
func (t *Trampoline) RequestContinue(target Value, args []Value) error {
	if t.pending {
		return ErrTrampolineOccupied
	}
	t.call = TailCall{Target: target, Args: args}
	t.pending = true
	return nil
}

// Drain empties the slot.
func (t *Trampoline) Drain() (TailCall, bool) {
	if !t.pending {
		return TailCall{}, false
	}
	call := t.call
	t.call = TailCall{}
	t.pending = false
	return call, true
}

// Pending reports whether a tail call is parked and not yet drained.
func (t *Trampoline) Pending() bool {
	return t.pending
}
