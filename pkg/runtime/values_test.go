package runtime

import "testing"

func TestTruthy(t *testing.T) {
	falsy := []Value{
		Undef,
		IntegerValue{Val: 0},
		FloatValue{Val: 0},
		StringValue{Val: ""},
		StringValue{Val: "0"},
		BoolValue{Val: false},
		&ArrayValue{},
	}
	for _, v := range falsy {
		if Truthy(v) {
			t.Fatalf("expected %#v to be false", v)
		}
	}
	truthy := []Value{
		IntegerValue{Val: -1},
		StringValue{Val: "00"},
		StringValue{Val: "0.0"},
		&ArrayValue{Elements: []Value{Undef}},
		&SubroutineValue{Name: "f"},
	}
	for _, v := range truthy {
		if !Truthy(v) {
			t.Fatalf("expected %#v to be true", v)
		}
	}
}

func TestStringify(t *testing.T) {
	arr := &ArrayValue{Elements: []Value{IntegerValue{Val: 1}, StringValue{Val: "a"}, FloatValue{Val: 2.5}}}
	if got := Stringify(arr); got != "[1, a, 2.5]" {
		t.Fatalf("unexpected array rendering %q", got)
	}
	if got := Stringify(FloatValue{Val: 3}); got != "3" {
		t.Fatalf("expected integral float to render as 3, got %q", got)
	}
	if got := Stringify(Undef); got != "" {
		t.Fatalf("expected undef to render empty, got %q", got)
	}
}

func TestEnvironmentUnwind(t *testing.T) {
	root := NewEnvironment(nil)
	root.Define("x", IntegerValue{Val: 1})
	inner := root.Extend().Extend()
	if inner.Depth() != 2 {
		t.Fatalf("expected depth 2, got %d", inner.Depth())
	}
	inner.Define("y", IntegerValue{Val: 2})
	if err := inner.Assign("x", IntegerValue{Val: 5}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	back := inner.Unwind(0)
	if back != root {
		t.Fatalf("expected unwind to reach root")
	}
	if back.Has("y") {
		t.Fatalf("inner binding leaked into root")
	}
	val, err := back.Get("x")
	if err != nil || val.(IntegerValue).Val != 5 {
		t.Fatalf("expected x=5, got %#v (%v)", val, err)
	}
}

func TestRuntimeErrorMessages(t *testing.T) {
	err := UnmatchedLabel(ControlFlowMarker{Kind: MarkerExit, Target: "Z"})
	if err.Error() != "can't find label Z" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !IsRuntimeErrorKind(err, ErrUnmatchedLabel) {
		t.Fatalf("expected kind UnmatchedLabel")
	}
}
