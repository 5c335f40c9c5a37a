package interpreter

import (
	"fmt"
	"strings"

	"kestrel/interpreter-go/pkg/runtime"
)

func installBuiltins(env *runtime.Environment) {
	for _, fn := range builtins {
		env.Define(fn.Name, fn)
	}
}

var builtins = []runtime.NativeFunctionValue{
	{Name: "print", Arity: -1, Impl: builtinPrint},
	{Name: "say", Arity: -1, Impl: builtinSay},
	{Name: "len", Arity: 1, Impl: builtinLen},
	{Name: "push", Arity: -1, Impl: builtinPush},
	{Name: "join", Arity: 2, Impl: builtinJoin},
	{Name: "str", Arity: 1, Impl: builtinStr},
	{Name: "int", Arity: 1, Impl: builtinInt},
}

func joinArgs(args []runtime.Value) string {
	var sb strings.Builder
	for _, arg := range args {
		sb.WriteString(runtime.Stringify(arg))
	}
	return sb.String()
}

func builtinPrint(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	if _, err := fmt.Fprint(ctx.Out, joinArgs(args)); err != nil {
		return nil, err
	}
	return runtime.IntegerValue{Val: 1}, nil
}

func builtinSay(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	if _, err := fmt.Fprintln(ctx.Out, joinArgs(args)); err != nil {
		return nil, err
	}
	return runtime.IntegerValue{Val: 1}, nil
}

func builtinLen(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	switch v := args[0].(type) {
	case *runtime.ArrayValue:
		return runtime.IntegerValue{Val: int64(len(v.Elements))}, nil
	case runtime.UndefValue:
		return runtime.IntegerValue{Val: 0}, nil
	default:
		return runtime.IntegerValue{Val: int64(len([]rune(runtime.Stringify(v))))}, nil
	}
}

func builtinPush(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	if len(args) == 0 {
		return nil, runtime.NewRuntimeError(runtime.ErrArity, "push expects an array")
	}
	arr, ok := args[0].(*runtime.ArrayValue)
	if !ok {
		return nil, runtime.NewRuntimeError(runtime.ErrType, "push expects an array, got %s", kindOf(args[0]))
	}
	arr.Elements = append(arr.Elements, args[1:]...)
	return runtime.IntegerValue{Val: int64(len(arr.Elements))}, nil
}

func builtinJoin(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	arr, ok := args[1].(*runtime.ArrayValue)
	if !ok {
		return runtime.StringValue{Val: runtime.Stringify(args[1])}, nil
	}
	parts := make([]string, len(arr.Elements))
	for i, el := range arr.Elements {
		parts[i] = runtime.Stringify(el)
	}
	return runtime.StringValue{Val: strings.Join(parts, runtime.Stringify(args[0]))}, nil
}

func builtinStr(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	return runtime.StringValue{Val: runtime.Stringify(args[0])}, nil
}

func builtinInt(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	i, _, _ := runtime.ToNumber(args[0])
	return runtime.IntegerValue{Val: i}, nil
}
