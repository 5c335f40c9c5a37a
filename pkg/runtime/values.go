package runtime

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"kestrel/interpreter-go/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindUndef Kind = iota
	KindString
	KindBool
	KindInteger
	KindFloat
	KindArray
	KindSubroutine
	KindNativeFunction
)

func (k Kind) String() string {
	switch k {
	case KindUndef:
		return "undef"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindArray:
		return "array"
	case KindSubroutine:
		return "sub"
	case KindNativeFunction:
		return "native_function"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type UndefValue struct{}

func (UndefValue) Kind() Kind { return KindUndef }

// Undef is the canonical undef value.
var Undef Value = UndefValue{}

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

type IntegerValue struct {
	Val int64
}

func (v IntegerValue) Kind() Kind { return KindInteger }

type FloatValue struct {
	Val float64
}

func (v FloatValue) Kind() Kind { return KindFloat }

//-----------------------------------------------------------------------------
// Aggregates and callables
//-----------------------------------------------------------------------------

// ArrayValue has reference semantics: copies of the Value share Elements.
type ArrayValue struct {
	Elements []Value
}

func (v *ArrayValue) Kind() Kind { return KindArray }

// SubroutineValue is a named subroutine or a closure. Code holds the
// interpreter's compiled unit.
type SubroutineValue struct {
	Name    string
	Params  []string
	Closure *Environment
	Code    any
	Span    ast.Span
}

func (v *SubroutineValue) Kind() Kind { return KindSubroutine }

// NativeCallContext is handed to builtins.
type NativeCallContext struct {
	Out io.Writer
}

type NativeFunc func(*NativeCallContext, []Value) (Value, error)

// NativeFunctionValue is a host builtin. Arity < 0 means variadic.
type NativeFunctionValue struct {
	Name  string
	Arity int
	Impl  NativeFunc
}

func (v NativeFunctionValue) Kind() Kind { return KindNativeFunction }

//-----------------------------------------------------------------------------
// Conversions
//-----------------------------------------------------------------------------

// Truthy applies the language's truthiness: undef, 0, 0.0, "", "0" and empty
// arrays are false.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case nil, UndefValue:
		return false
	case BoolValue:
		return val.Val
	case IntegerValue:
		return val.Val != 0
	case FloatValue:
		return val.Val != 0
	case StringValue:
		return val.Val != "" && val.Val != "0"
	case *ArrayValue:
		return len(val.Elements) > 0
	default:
		return true
	}
}

// Stringify renders a value the way print and concatenation see it.
func Stringify(v Value) string {
	switch val := v.(type) {
	case nil, UndefValue:
		return ""
	case StringValue:
		return val.Val
	case BoolValue:
		if val.Val {
			return "1"
		}
		return ""
	case IntegerValue:
		return strconv.FormatInt(val.Val, 10)
	case FloatValue:
		if val.Val == math.Trunc(val.Val) && math.Abs(val.Val) < 1e15 {
			return strconv.FormatInt(int64(val.Val), 10)
		}
		return strconv.FormatFloat(val.Val, 'g', -1, 64)
	case *ArrayValue:
		parts := make([]string, len(val.Elements))
		for i, el := range val.Elements {
			parts[i] = Stringify(el)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *SubroutineValue:
		if val.Name != "" {
			return "sub " + val.Name
		}
		return "sub {...}"
	case NativeFunctionValue:
		return "builtin " + val.Name
	default:
		return fmt.Sprintf("<%v>", v.Kind())
	}
}

// ToNumber coerces a value for arithmetic. The boolean result reports
// whether the number is integral.
func ToNumber(v Value) (int64, float64, bool) {
	switch val := v.(type) {
	case nil, UndefValue:
		return 0, 0, true
	case IntegerValue:
		return val.Val, float64(val.Val), true
	case FloatValue:
		return int64(val.Val), val.Val, false
	case BoolValue:
		if val.Val {
			return 1, 1, true
		}
		return 0, 0, true
	case StringValue:
		s := strings.TrimSpace(val.Val)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, float64(i), true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(f), f, false
		}
		return 0, 0, true
	case *ArrayValue:
		n := int64(len(val.Elements))
		return n, float64(n), true
	default:
		return 0, 0, true
	}
}
