package interpreter

import (
	"fmt"

	"kestrel/interpreter-go/pkg/compiler"
	"kestrel/interpreter-go/pkg/runtime"
)

// frame is the activation record of one unit. Guest calls nest Go calls to
// run, so a frame returns to its caller by returning from run.
type frame struct {
	thread    *Thread
	unit      *compiler.Unit
	env       *runtime.Environment
	baseDepth int
	args      []runtime.Value
	stack     []runtime.Value
	iters     []*iterator
	result    runtime.Value
	ip        int
}

type iterator struct {
	elements []runtime.Value
	pos      int
	current  runtime.Value
}

func (t *Thread) runFrame(unit *compiler.Unit, env *runtime.Environment, args []runtime.Value) (runtime.Value, error) {
	f := &frame{
		thread:    t,
		unit:      unit,
		env:       env,
		baseDepth: env.Depth(),
		args:      args,
		stack:     make([]runtime.Value, 0, 8),
		result:    runtime.Undef,
	}
	return f.run()
}

func (f *frame) run() (runtime.Value, error) {
	instructions := f.unit.Instructions
	for {
		if f.ip == compiler.ExitIP {
			return runtime.Undef, nil
		}
		if f.ip < 0 || f.ip >= len(instructions) {
			return nil, fmt.Errorf("bytecode ip %d out of range in %s", f.ip, f.unit.Name)
		}
		if err := f.thread.checkpoint(); err != nil {
			return nil, err
		}
		instr := &instructions[f.ip]
		switch instr.Op {
		case compiler.OpConst:
			f.push(instr.Value)
			f.ip++
		case compiler.OpLoad:
			val, err := f.env.Get(instr.Name)
			if err != nil {
				return nil, f.errorAt(instr, runtime.ErrUndefinedVariable, "undefined variable '%s'", instr.Name)
			}
			f.push(val)
			f.ip++
		case compiler.OpDeclare:
			val := f.pop()
			f.env.Define(instr.Name, val)
			f.push(val)
			f.ip++
		case compiler.OpStore:
			val := f.pop()
			if !f.env.AssignExisting(instr.Name, val) {
				f.thread.globals.Define(instr.Name, val)
			}
			f.push(val)
			f.ip++
		case compiler.OpDup:
			f.push(f.peek())
			f.ip++
		case compiler.OpDup2:
			n := len(f.stack)
			f.stack = append(f.stack, f.stack[n-2], f.stack[n-1])
			f.ip++
		case compiler.OpPop:
			f.pop()
			f.ip++
		case compiler.OpPopResult:
			f.result = f.pop()
			f.ip++
		case compiler.OpResult:
			f.push(f.result)
			f.ip++
		case compiler.OpBinary:
			right := f.pop()
			left := f.pop()
			val, err := binaryOp(instr.Name, left, right)
			if err != nil {
				return nil, f.wrap(instr, err)
			}
			f.push(val)
			f.ip++
		case compiler.OpUnary:
			val, err := unaryOp(instr.Name, f.pop())
			if err != nil {
				return nil, f.wrap(instr, err)
			}
			f.push(val)
			f.ip++
		case compiler.OpMakeArray:
			n := len(f.stack) - instr.Argc
			elements := make([]runtime.Value, instr.Argc)
			copy(elements, f.stack[n:])
			f.stack = f.stack[:n]
			f.push(&runtime.ArrayValue{Elements: elements})
			f.ip++
		case compiler.OpIndexGet:
			index := f.pop()
			object := f.pop()
			val, err := indexGet(object, index)
			if err != nil {
				return nil, f.wrap(instr, err)
			}
			f.push(val)
			f.ip++
		case compiler.OpIndexSet:
			val := f.pop()
			index := f.pop()
			object := f.pop()
			if err := indexSet(object, index, val); err != nil {
				return nil, f.wrap(instr, err)
			}
			f.push(val)
			f.ip++
		case compiler.OpBranch:
			f.ip = instr.Target.IP
		case compiler.OpBranchIfFalse:
			if runtime.Truthy(f.pop()) {
				f.ip++
			} else {
				f.ip = instr.Target.IP
			}
		case compiler.OpBranchIfTrue:
			if runtime.Truthy(f.pop()) {
				f.ip = instr.Target.IP
			} else {
				f.ip++
			}
		case compiler.OpEnterScope:
			f.env = f.env.Extend()
			f.ip++
		case compiler.OpExitScope:
			f.env = f.env.Parent()
			f.ip++
		case compiler.OpIterInit:
			f.iters = append(f.iters, newIterator(f.pop()))
			f.ip++
		case compiler.OpIterNext:
			it := f.iters[len(f.iters)-1]
			if it.pos >= len(it.elements) {
				f.ip = instr.Target.IP
				continue
			}
			it.current = it.elements[it.pos]
			it.pos++
			f.ip++
		case compiler.OpIterBind:
			f.env.Define(instr.Name, f.iters[len(f.iters)-1].current)
			f.ip++
		case compiler.OpIterPop:
			f.iters[len(f.iters)-1] = nil
			f.iters = f.iters[:len(f.iters)-1]
			f.ip++
		case compiler.OpMakeSub:
			f.push(&runtime.SubroutineValue{
				Params:  instr.Sub.Params,
				Closure: f.env,
				Code:    instr.Sub,
				Span:    instr.Sub.Span,
			})
			f.ip++
		case compiler.OpCall:
			if err := f.execCall(instr); err != nil {
				return nil, err
			}
		case compiler.OpTailCall:
			if err := f.execTailCall(instr); err != nil {
				return nil, err
			}
			return runtime.TrampolineContinue, nil
		case compiler.OpReturn:
			return f.pop(), nil
		case compiler.OpJump:
			f.jump(instr.Target)
		case compiler.OpSignal:
			if err := f.execSignal(instr); err != nil {
				return nil, err
			}
			return runtime.Undef, nil
		case compiler.OpDispatch:
			f.execDispatch(instr.Dispatch)
		default:
			return nil, fmt.Errorf("unknown bytecode op %v", instr.Op)
		}
	}
}

// jump moves to target, restoring its scope and iterator depths. The operand
// stack is empty at every statement boundary, so it is reset too.
func (f *frame) jump(target *compiler.JumpTarget) {
	f.env = f.env.Unwind(f.baseDepth + target.ScopeDepth)
	if len(f.iters) > target.IterDepth {
		for i := target.IterDepth; i < len(f.iters); i++ {
			f.iters[i] = nil
		}
		f.iters = f.iters[:target.IterDepth]
	}
	f.stack = f.stack[:0]
	f.ip = target.IP
}

func (f *frame) push(val runtime.Value) {
	f.stack = append(f.stack, val)
}

func (f *frame) pop() runtime.Value {
	last := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	return last
}

func (f *frame) peek() runtime.Value {
	return f.stack[len(f.stack)-1]
}

func (f *frame) popN(n int) []runtime.Value {
	start := len(f.stack) - n
	out := make([]runtime.Value, n)
	copy(out, f.stack[start:])
	f.stack = f.stack[:start]
	return out
}

func (f *frame) errorAt(instr *compiler.Instruction, kind runtime.RuntimeErrorKind, format string, args ...any) error {
	err := runtime.NewRuntimeError(kind, format, args...)
	err.Location = instr.Span
	err.Origin = f.unit.Origin
	return err
}

// wrap attaches the instruction's location to a RuntimeError that has none.
func (f *frame) wrap(instr *compiler.Instruction, err error) error {
	if rerr, ok := err.(*runtime.RuntimeError); ok && rerr.Location.IsZero() {
		rerr.Location = instr.Span
		rerr.Origin = f.unit.Origin
	}
	return err
}

func newIterator(val runtime.Value) *iterator {
	switch v := val.(type) {
	case *runtime.ArrayValue:
		elements := make([]runtime.Value, len(v.Elements))
		copy(elements, v.Elements)
		return &iterator{elements: elements}
	case runtime.UndefValue, nil:
		return &iterator{}
	default:
		return &iterator{elements: []runtime.Value{val}}
	}
}
