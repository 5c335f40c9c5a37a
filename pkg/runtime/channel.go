package runtime

import "sync/atomic"

// SignalChannel holds at most one pending ControlFlowMarker for a single
// interpreter thread. Only HasPending may be called from other goroutines;
// every other method, Peek included, belongs to the owning thread.
type SignalChannel struct {
	pending atomic.Bool
	marker  ControlFlowMarker
}

// NewSignalChannel returns an empty channel.
func NewSignalChannel() *SignalChannel {
	return &SignalChannel{}
}

// Register stores the marker. It fails with ErrChannelOccupied when a marker
// is already pending.
func (c *SignalChannel) Register(marker ControlFlowMarker) error {
	if c.pending.Load() {
		return ErrChannelOccupied
	}
	c.marker = marker
	c.pending.Store(true)
	return nil
}

// HasPending is the dispatcher fast path.
func (c *SignalChannel) HasPending() bool {
	return c.pending.Load()
}

// Peek returns the pending marker without consuming it. The marker itself is
// not synchronized, so only the owning thread may call Peek.
func (c *SignalChannel) Peek() (ControlFlowMarker, bool) {
	if !c.pending.Load() {
		return ControlFlowMarker{}, false
	}
	return c.marker, true
}

// CheckAndConsume consumes the pending marker when it targets label and
// reports the matching action. A marker for any other label is left intact
// and reported as ActionPendingOther. An empty label never consumes.
func (c *SignalChannel) CheckAndConsume(label string) DispatchAction {
	if !c.pending.Load() {
		return ActionNone
	}
	if label == "" || c.marker.Target != label {
		return ActionPendingOther
	}
	action := c.marker.Kind.Action()
	c.marker = ControlFlowMarker{}
	c.pending.Store(false)
	return action
}

// Clear drops the pending marker, returning it.
func (c *SignalChannel) Clear() (ControlFlowMarker, bool) {
	if !c.pending.Load() {
		return ControlFlowMarker{}, false
	}
	marker := c.marker
	c.marker = ControlFlowMarker{}
	c.pending.Store(false)
	return marker, true
}
