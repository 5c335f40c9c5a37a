package interpreter

import (
	"github.com/pkg/errors"

	"kestrel/interpreter-go/pkg/compiler"
	"kestrel/interpreter-go/pkg/runtime"
)

// execSignal registers a non-local marker. The caller then leaves the frame.
func (f *frame) execSignal(instr *compiler.Instruction) error {
	marker := *instr.Marker
	if err := f.thread.channel.Register(marker); err != nil {
		return errors.Wrapf(err, "register %s", marker)
	}
	f.thread.logger.Debug("marker registered", "marker", marker.String(), "unit", f.unit.Name, "at", marker.Location.String())
	return nil
}

// execDispatch is one dispatch point. With nothing pending it falls through;
// otherwise it consumes a marker aimed at its label or passes it on.
func (f *frame) execDispatch(table *compiler.DispatchTable) {
	ch := f.thread.channel
	if !ch.HasPending() {
		f.ip++
		return
	}
	action := ch.CheckAndConsume(table.Label)
	if action != runtime.ActionPendingOther {
		f.thread.logger.Debug("marker consumed", "label", table.Label, "action", action.String(), "unit", f.unit.Name)
	}
	f.jump(table.Target(action))
}

// landAfterCall abandons the current statement when the callee returned with
// a marker pending, continuing at the call's landing target.
func (f *frame) landAfterCall(landing *compiler.JumpTarget) bool {
	if !f.thread.channel.HasPending() {
		return false
	}
	f.jump(landing)
	return true
}
