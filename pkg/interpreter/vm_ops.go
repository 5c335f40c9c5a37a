package interpreter

import (
	"math"
	"strings"

	"kestrel/interpreter-go/pkg/runtime"
)

// Range literals larger than this are rejected.
const maxRangeLength = 1 << 24

func binaryOp(op string, left, right runtime.Value) (runtime.Value, error) {
	switch op {
	case ".":
		return runtime.StringValue{Val: runtime.Stringify(left) + runtime.Stringify(right)}, nil
	case "==", "!=", "<", "<=", ">", ">=":
		return compareOp(op, left, right), nil
	case "..":
		return rangeOp(left, right)
	case "+", "-", "*", "/", "%":
		return arithmeticOp(op, left, right)
	default:
		return nil, runtime.NewRuntimeError(runtime.ErrType, "unsupported operator %s", op)
	}
}

func arithmeticOp(op string, left, right runtime.Value) (runtime.Value, error) {
	li, lf, lint := runtime.ToNumber(left)
	ri, rf, rint := runtime.ToNumber(right)
	if lint && rint {
		switch op {
		case "+":
			return runtime.IntegerValue{Val: li + ri}, nil
		case "-":
			return runtime.IntegerValue{Val: li - ri}, nil
		case "*":
			return runtime.IntegerValue{Val: li * ri}, nil
		case "/":
			if ri == 0 {
				return nil, runtime.NewRuntimeError(runtime.ErrType, "division by zero")
			}
			if li%ri == 0 {
				return runtime.IntegerValue{Val: li / ri}, nil
			}
			return runtime.FloatValue{Val: lf / rf}, nil
		case "%":
			if ri == 0 {
				return nil, runtime.NewRuntimeError(runtime.ErrType, "modulus by zero")
			}
			return runtime.IntegerValue{Val: li % ri}, nil
		}
	}
	switch op {
	case "+":
		return runtime.FloatValue{Val: lf + rf}, nil
	case "-":
		return runtime.FloatValue{Val: lf - rf}, nil
	case "*":
		return runtime.FloatValue{Val: lf * rf}, nil
	case "/":
		if rf == 0 {
			return nil, runtime.NewRuntimeError(runtime.ErrType, "division by zero")
		}
		return runtime.FloatValue{Val: lf / rf}, nil
	default:
		if rf == 0 {
			return nil, runtime.NewRuntimeError(runtime.ErrType, "modulus by zero")
		}
		return runtime.FloatValue{Val: math.Mod(lf, rf)}, nil
	}
}

// compareOp compares strings lexically when both sides are strings and
// numerically otherwise.
func compareOp(op string, left, right runtime.Value) runtime.Value {
	var cmp int
	ls, lok := left.(runtime.StringValue)
	rs, rok := right.(runtime.StringValue)
	if lok && rok {
		cmp = strings.Compare(ls.Val, rs.Val)
	} else {
		_, lf, _ := runtime.ToNumber(left)
		_, rf, _ := runtime.ToNumber(right)
		switch {
		case lf < rf:
			cmp = -1
		case lf > rf:
			cmp = 1
		}
	}
	var result bool
	switch op {
	case "==":
		result = cmp == 0
	case "!=":
		result = cmp != 0
	case "<":
		result = cmp < 0
	case "<=":
		result = cmp <= 0
	case ">":
		result = cmp > 0
	case ">=":
		result = cmp >= 0
	}
	return runtime.BoolValue{Val: result}
}

func rangeOp(left, right runtime.Value) (runtime.Value, error) {
	from, _, _ := runtime.ToNumber(left)
	to, _, _ := runtime.ToNumber(right)
	if to < from {
		return &runtime.ArrayValue{}, nil
	}
	if to-from >= maxRangeLength {
		return nil, runtime.NewRuntimeError(runtime.ErrType, "range %d..%d too large", from, to)
	}
	elements := make([]runtime.Value, 0, to-from+1)
	for n := from; n <= to; n++ {
		elements = append(elements, runtime.IntegerValue{Val: n})
	}
	return &runtime.ArrayValue{Elements: elements}, nil
}

func unaryOp(op string, operand runtime.Value) (runtime.Value, error) {
	switch op {
	case "!":
		return runtime.BoolValue{Val: !runtime.Truthy(operand)}, nil
	case "-":
		i, f, isInt := runtime.ToNumber(operand)
		if isInt {
			return runtime.IntegerValue{Val: -i}, nil
		}
		return runtime.FloatValue{Val: -f}, nil
	default:
		return nil, runtime.NewRuntimeError(runtime.ErrType, "unsupported unary operator %s", op)
	}
}

func arrayIndex(arr *runtime.ArrayValue, index runtime.Value) (int, bool) {
	idx, _, _ := runtime.ToNumber(index)
	if idx < 0 {
		idx += int64(len(arr.Elements))
	}
	if idx < 0 {
		return 0, false
	}
	return int(idx), true
}

func indexGet(object, index runtime.Value) (runtime.Value, error) {
	switch obj := object.(type) {
	case *runtime.ArrayValue:
		idx, ok := arrayIndex(obj, index)
		if !ok || idx >= len(obj.Elements) {
			return runtime.Undef, nil
		}
		return obj.Elements[idx], nil
	case runtime.StringValue:
		idx, _, _ := runtime.ToNumber(index)
		runes := []rune(obj.Val)
		if idx < 0 {
			idx += int64(len(runes))
		}
		if idx < 0 || idx >= int64(len(runes)) {
			return runtime.Undef, nil
		}
		return runtime.StringValue{Val: string(runes[idx])}, nil
	default:
		return nil, runtime.NewRuntimeError(runtime.ErrType, "cannot index a value of kind %s", kindOf(object))
	}
}

func indexSet(object, index, val runtime.Value) error {
	arr, ok := object.(*runtime.ArrayValue)
	if !ok {
		return runtime.NewRuntimeError(runtime.ErrType, "cannot assign into a value of kind %s", kindOf(object))
	}
	idx, ok := arrayIndex(arr, index)
	if !ok {
		return runtime.NewRuntimeError(runtime.ErrType, "array index out of range")
	}
	if idx >= maxRangeLength {
		return runtime.NewRuntimeError(runtime.ErrType, "array index %d too large", idx)
	}
	for len(arr.Elements) <= idx {
		arr.Elements = append(arr.Elements, runtime.Undef)
	}
	arr.Elements[idx] = val
	return nil
}
