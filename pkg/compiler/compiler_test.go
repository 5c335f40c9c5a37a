package compiler

import (
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/kylelemons/godebug/diff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kestrel/interpreter-go/pkg/ast"
)

func compileModule(t *testing.T, stmts ...ast.Statement) *Program {
	t.Helper()
	program, err := Compile(ast.Mod(stmts...), Options{Origin: "test.kst"})
	require.NoError(t, err)
	return program
}

func assertDisassembly(t *testing.T, unit *Unit, want string) {
	t.Helper()
	got := FormatDisassembly(unit)
	want = strings.TrimLeft(want, "\n")
	if got != want {
		t.Fatalf("disassembly mismatch (-want +got):\n%s", diff.Diff(want, got))
	}
}

func TestCompileLocalAndNonLocalVerbs(t *testing.T) {
	program := compileModule(t,
		ast.Sub("f", nil, ast.Last("OUTER")),
		ast.While("OUTER", ast.Int(1), ast.Next("")),
	)

	assertDisassembly(t, program.Main, `
main:
   0  const           1
   1  branch_if_false -> 7
   2  enter_scope
   3  jump            -> 0/s0/i0
   4  dispatch        OUTER last 7/s0/i0 next 0/s0/i0 redo 2/s0/i0 goto 0/s0/i0 else exit
   5  exit_scope
   6  branch          -> 0
   7  result
   8  return
`)
	assertDisassembly(t, program.Subs["f"], `
f:
   0  signal          last OUTER
   1  const           undef
   2  return
`)
}

// Every verb with a lexically visible target compiles to exactly one jump
// and nothing that consults the signal channel.
func TestCompileLocalVerbsNeverTouchChannel(t *testing.T) {
	verbs := []*ast.ControlFlowStatement{
		ast.Last(""), ast.Next(""), ast.Redo(""),
		ast.Last("A"), ast.Next("A"), ast.Redo("A"), ast.Goto("A"),
		ast.Last("B"), ast.Redo("B"), ast.Goto("B"),
	}
	body := make([]ast.Statement, 0, len(verbs))
	for _, v := range verbs {
		body = append(body, ast.If(ast.ID("cond"), v))
	}
	program := compileModule(t,
		ast.Sub("walk", []string{"xs"},
			ast.Foreach("A", "x", ast.ID("xs"),
				ast.Bare("B",
					ast.For("", ast.My("i", ast.Int(0)), ast.Bin("<", ast.ID("i"), ast.Int(3)),
						ast.AssignOp(ast.AssignmentAdd, ast.ID("i"), ast.Int(1)),
						body...,
					),
				),
			),
		),
	)

	unit := program.Subs["walk"]
	jumps := 0
	for _, instr := range unit.Instructions {
		assert.NotEqual(t, OpSignal, instr.Op, "local verbs must not register markers")
		if instr.Op == OpJump {
			jumps++
		}
	}
	assert.Equal(t, len(verbs), jumps, "one jump per local verb:\n%s", FormatDisassembly(unit))

	for _, v := range verbs {
		class, ok := unit.Resolution.Classify(v)
		require.True(t, ok)
		assert.Equal(t, Local, class.Kind, spew.Sdump(v))
	}
}

func TestCompileJumpTargetsRestoreDepths(t *testing.T) {
	exitOuter := ast.Last("A")
	program := compileModule(t,
		ast.Sub("walk", []string{"xs"},
			ast.Foreach("A", "x", ast.ID("xs"),
				ast.Foreach("", "y", ast.ID("xs"),
					ast.If(ast.ID("y"), exitOuter),
				),
			),
		),
	)
	unit := program.Subs["walk"]
	var jump *Instruction
	for i := range unit.Instructions {
		if unit.Instructions[i].Op == OpJump {
			jump = &unit.Instructions[i]
		}
	}
	require.NotNil(t, jump)
	assert.Equal(t, 0, jump.Target.ScopeDepth)
	assert.Equal(t, 0, jump.Target.IterDepth, "leaving A closes both iterators")
	after := unit.Instructions[jump.Target.IP]
	assert.Equal(t, OpConst, after.Op, "last A lands after the outer loop")
}

func TestCompileCallLandsOnEnclosingDispatch(t *testing.T) {
	program := compileModule(t,
		ast.Sub("g", nil,
			ast.While("L", ast.Int(1),
				ast.Call("f"),
				ast.Call("say", ast.Str("after")),
			),
		),
	)
	unit := program.Subs["g"]
	var calls []Instruction
	for _, instr := range unit.Instructions {
		if instr.Op == OpCall {
			calls = append(calls, instr)
		}
	}
	require.Len(t, calls, 2)
	for _, call := range calls {
		land := unit.Instructions[call.Target.IP]
		assert.Equal(t, OpDispatch, land.Op)
		assert.Equal(t, "L", land.Dispatch.Label)
		assert.Equal(t, 1, call.Target.ScopeDepth)
	}
	assert.NotEqual(t, calls[0].Target.IP, calls[1].Target.IP, "each statement closes with its own dispatch")
}

func TestCompileCallOutsideDispatchScopeLandsOnExit(t *testing.T) {
	program := compileModule(t, ast.Sub("g", nil, ast.Call("f")))
	for _, instr := range program.Subs["g"].Instructions {
		if instr.Op == OpCall {
			assert.Equal(t, ExitIP, instr.Target.IP)
		}
	}
}

func TestCompileLabeledLoopHeaderDispatch(t *testing.T) {
	program := compileModule(t,
		ast.While("L", ast.Call("more")),
	)
	main := program.Main
	var call Instruction
	dispatches := 0
	for _, instr := range main.Instructions {
		switch instr.Op {
		case OpCall:
			call = instr
		case OpDispatch:
			dispatches++
		}
	}
	assert.Equal(t, 2, dispatches, "empty labeled body dispatch plus header dispatch:\n%s", FormatDisassembly(main))
	assert.Equal(t, OpDispatch, main.Instructions[call.Target.IP].Op)
}

func TestCompileRejectsWithoutGeneratingCode(t *testing.T) {
	program, err := Compile(ast.Mod(
		ast.Sub("g", nil, ast.Last("")),
	), Options{})
	require.Error(t, err)
	assert.Nil(t, program)
	assert.True(t, IsCompileErrorKind(err, ErrStatementOutsideLoop))
}

func TestCompileTailCallOutsideSub(t *testing.T) {
	_, err := Compile(ast.Mod(ast.TailCall("f")), Options{})
	assert.True(t, IsCompileErrorKind(err, ErrTailCallOutsideSub), "got %v", err)
}

func TestCompileDuplicateSubroutine(t *testing.T) {
	_, err := Compile(ast.Mod(
		ast.Sub("f", nil),
		ast.Sub("f", nil),
	), Options{})
	assert.True(t, IsCompileErrorKind(err, ErrDuplicateSubroutine), "got %v", err)
}

func TestCompileNestedSubDoesNotSeeOuterLabels(t *testing.T) {
	program := compileModule(t,
		ast.While("OUTER", ast.Int(1),
			ast.My("cb", ast.Lambda(nil, ast.Last("OUTER"))),
		),
	)
	require.Len(t, program.Anonymous, 1)
	closure := program.Anonymous[0]
	assert.Equal(t, OpSignal, closure.Instructions[0].Op)

	report := program.LabelReport()
	require.Len(t, report, 1)
	assert.Equal(t, LabelStat{Label: "OUTER", Definitions: 1, NonLocal: 1}, report[0])
}

func TestCompileTailCallForms(t *testing.T) {
	program := compileModule(t,
		ast.Sub("loop", []string{"n"},
			ast.TailCall("loop", ast.Bin("-", ast.ID("n"), ast.Int(1))),
		),
		ast.Sub("again", nil, ast.TailCallReuse("loop")),
	)
	assertDisassembly(t, program.Subs["loop"], `
loop:
   0  load            loop
   1  load            n
   2  const           1
   3  binary          -
   4  tail_call       1
   5  const           undef
   6  return
`)
	assertDisassembly(t, program.Subs["again"], `
again:
   0  load            loop
   1  tail_call       reuse
   2  const           undef
   3  return
`)
}
