package interpreter

import (
	"github.com/pkg/errors"

	"kestrel/interpreter-go/pkg/compiler"
	"kestrel/interpreter-go/pkg/runtime"
)

func (f *frame) execCall(instr *compiler.Instruction) error {
	args := f.popN(instr.Argc)
	callee := f.pop()
	result, err := f.thread.invoke(callee, args)
	if err != nil {
		err = f.wrap(instr, err)
		var rerr *runtime.RuntimeError
		if errors.As(err, &rerr) && rerr.Location != instr.Span {
			rerr.AddCallSite(f.unit.Origin, instr.Span)
		}
		return err
	}
	if f.landAfterCall(instr.Target) {
		return nil
	}
	f.push(result)
	f.ip++
	return nil
}

// execTailCall parks the next callee on the trampoline; the frame then
// returns runtime.TrampolineContinue to invoke.
func (f *frame) execTailCall(instr *compiler.Instruction) error {
	var args []runtime.Value
	if instr.Reuse {
		args = f.args
	} else {
		args = f.popN(instr.Argc)
	}
	callee := f.pop()
	if err := f.thread.trampoline.RequestContinue(callee, args); err != nil {
		return errors.Wrap(err, "tail call")
	}
	return nil
}

// invoke runs callee to completion. Tail calls re-enter the loop with a
// fresh frame instead of nesting, and do not count toward the depth limit.
func (t *Thread) invoke(callee runtime.Value, args []runtime.Value) (runtime.Value, error) {
	t.depth++
	defer func() { t.depth-- }()
	if t.depth > t.peakDepth {
		t.peakDepth = t.depth
	}
	if limit := t.interp.opts.MaxCallDepth; limit > 0 && t.depth > limit {
		return nil, runtime.NewRuntimeError(runtime.ErrCallDepthExceeded, "maximum call depth %d exceeded", limit)
	}
	for {
		result, err := t.invokeOnce(callee, args)
		if err != nil {
			return nil, err
		}
		if !runtime.IsTrampolineContinue(result) {
			return result, nil
		}
		call, ok := t.trampoline.Drain()
		if !ok {
			return nil, errors.New("trampoline continue without a pending tail call")
		}
		callee, args = call.Target, call.Args
	}
}

func (t *Thread) invokeOnce(callee runtime.Value, args []runtime.Value) (runtime.Value, error) {
	switch fn := callee.(type) {
	case *runtime.SubroutineValue:
		unit, ok := fn.Code.(*compiler.Unit)
		if !ok {
			return nil, runtime.NewRuntimeError(runtime.ErrNotCallable, "subroutine %s has no code", fn.Name)
		}
		env := fn.Closure.Extend()
		for idx, param := range unit.Params {
			if idx < len(args) {
				env.Define(param, args[idx])
			} else {
				env.Define(param, runtime.Undef)
			}
		}
		return t.runFrame(unit, env, args)
	case runtime.NativeFunctionValue:
		if fn.Arity >= 0 && len(args) != fn.Arity {
			return nil, runtime.NewRuntimeError(runtime.ErrArity, "%s expects %d argument(s), got %d", fn.Name, fn.Arity, len(args))
		}
		return fn.Impl(&runtime.NativeCallContext{Out: t.out}, args)
	default:
		return nil, runtime.NewRuntimeError(runtime.ErrNotCallable, "value of kind %s is not callable", kindOf(callee))
	}
}

func kindOf(v runtime.Value) string {
	if v == nil {
		return "undef"
	}
	return v.Kind().String()
}
