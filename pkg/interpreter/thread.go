package interpreter

import (
	"context"
	"io"
	"log/slog"

	"github.com/pkg/errors"

	"kestrel/interpreter-go/pkg/compiler"
	"kestrel/interpreter-go/pkg/runtime"
)

// Thread is one logical execution thread. It is not safe for concurrent use;
// run independent scripts on separate threads.
type Thread struct {
	interp     *Interpreter
	id         int64
	logger     *slog.Logger
	out        io.Writer
	globals    *runtime.Environment
	channel    *runtime.SignalChannel
	trampoline runtime.Trampoline

	ctx       context.Context
	depth     int
	peakDepth int
	steps     int
}

func newThread(interp *Interpreter, id int64, out io.Writer) *Thread {
	t := &Thread{
		interp:  interp,
		id:      id,
		logger:  interp.logger.With("thread", id),
		out:     out,
		globals: runtime.NewEnvironment(nil),
		channel: runtime.NewSignalChannel(),
		ctx:     context.Background(),
	}
	installBuiltins(t.globals)
	return t
}

func (t *Thread) ID() int64 { return t.id }

// Channel exposes the thread's signal channel for inspection.
func (t *Thread) Channel() *runtime.SignalChannel { return t.channel }

// Globals is the thread's top-level environment.
func (t *Thread) Globals() *runtime.Environment { return t.globals }

// PeakDepth is the deepest ordinary call nesting seen so far.
func (t *Thread) PeakDepth() int { return t.peakDepth }

// Load defines the program's named subroutines in the thread's globals.
func (t *Thread) Load(program *compiler.Program) {
	for name, unit := range program.Subs {
		t.globals.Define(name, &runtime.SubroutineValue{
			Name:    name,
			Params:  unit.Params,
			Closure: t.globals,
			Code:    unit,
			Span:    unit.Span,
		})
	}
}

// Run loads program and executes its main chunk. A marker still pending when
// the main chunk returns is reported as an unmatched label.
func (t *Thread) Run(ctx context.Context, program *compiler.Program) (runtime.Value, error) {
	if program == nil || program.Main == nil {
		return nil, errors.New("interpreter: missing program")
	}
	t.Load(program)
	return t.top(ctx, func() (runtime.Value, error) {
		return t.runFrame(program.Main, t.globals, nil)
	})
}

// Call invokes a global subroutine by name from the host.
func (t *Thread) Call(ctx context.Context, name string, args ...runtime.Value) (runtime.Value, error) {
	callee, err := t.globals.Get(name)
	if err != nil {
		return nil, runtime.NewRuntimeError(runtime.ErrUndefinedVariable, "undefined subroutine '%s'", name)
	}
	return t.top(ctx, func() (runtime.Value, error) {
		return t.invoke(callee, args)
	})
}

func (t *Thread) top(ctx context.Context, fn func() (runtime.Value, error)) (runtime.Value, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	t.ctx = ctx
	t.steps = 0
	result, err := fn()
	if err != nil {
		// A failed run must not leak state into the next one on this thread.
		t.channel.Clear()
		t.trampoline.Drain()
		t.depth = 0
		return nil, err
	}
	if marker, ok := t.channel.Clear(); ok {
		t.logger.Debug("unmatched label at top frame", "marker", marker.String(), "origin", marker.Origin, "at", marker.Location.String())
		return nil, runtime.UnmatchedLabel(marker)
	}
	return result, nil
}

// checkpoint polls the context every CheckpointInterval instructions.
func (t *Thread) checkpoint() error {
	t.steps++
	if t.steps%t.interp.opts.CheckpointInterval != 0 {
		return nil
	}
	if err := t.ctx.Err(); err != nil {
		return errors.Wrap(err, "interrupted")
	}
	return nil
}
