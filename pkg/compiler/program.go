package compiler

import (
	"fmt"
	"sort"

	"kestrel/interpreter-go/pkg/ast"
	"kestrel/interpreter-go/pkg/runtime"
)

type Op int

const (
	OpConst Op = iota
	OpLoad
	OpDeclare
	OpStore
	OpDup
	OpDup2
	OpPop
	OpPopResult
	OpResult
	OpBinary
	OpUnary
	OpMakeArray
	OpIndexGet
	OpIndexSet
	OpBranch
	OpBranchIfFalse
	OpBranchIfTrue
	OpEnterScope
	OpExitScope
	OpIterInit
	OpIterNext
	OpIterBind
	OpIterPop
	OpCall
	OpMakeSub
	OpReturn
	OpJump
	OpSignal
	OpDispatch
	OpTailCall
)

var opNames = [...]string{
	OpConst:         "const",
	OpLoad:          "load",
	OpDeclare:       "declare",
	OpStore:         "store",
	OpDup:           "dup",
	OpDup2:          "dup2",
	OpPop:           "pop",
	OpPopResult:     "pop_result",
	OpResult:        "result",
	OpBinary:        "binary",
	OpUnary:         "unary",
	OpMakeArray:     "make_array",
	OpIndexGet:      "index_get",
	OpIndexSet:      "index_set",
	OpBranch:        "branch",
	OpBranchIfFalse: "branch_if_false",
	OpBranchIfTrue:  "branch_if_true",
	OpEnterScope:    "enter_scope",
	OpExitScope:     "exit_scope",
	OpIterInit:      "iter_init",
	OpIterNext:      "iter_next",
	OpIterBind:      "iter_bind",
	OpIterPop:       "iter_pop",
	OpCall:          "call",
	OpMakeSub:       "make_sub",
	OpReturn:        "return",
	OpJump:          "jump",
	OpSignal:        "signal",
	OpDispatch:      "dispatch",
	OpTailCall:      "tail_call",
}

func (op Op) String() string {
	if int(op) >= 0 && int(op) < len(opNames) && opNames[op] != "" {
		return opNames[op]
	}
	return fmt.Sprintf("op_%d", int(op))
}

// ExitIP as a jump target leaves the frame, returning undef.
const ExitIP = -1

// JumpTarget is an instruction address plus the frame-relative scope and
// iterator depths that hold there. Jumping restores both depths and empties
// the operand stack.
type JumpTarget struct {
	IP         int
	ScopeDepth int
	IterDepth  int
}

func (t JumpTarget) String() string {
	if t.IP == ExitIP {
		return "exit"
	}
	return fmt.Sprintf("%d/s%d/i%d", t.IP, t.ScopeDepth, t.IterDepth)
}

// DispatchTable is the operand of OpDispatch. Exit, Continue, Restart and
// Jump are nil for unlabeled loops, which never consume a marker.
type DispatchTable struct {
	Label     string
	Exit      *JumpTarget
	Continue  *JumpTarget
	Restart   *JumpTarget
	Jump      *JumpTarget
	Propagate *JumpTarget
}

// Target returns the continuation for a consuming action.
func (d *DispatchTable) Target(action runtime.DispatchAction) *JumpTarget {
	switch action {
	case runtime.ActionExit:
		return d.Exit
	case runtime.ActionContinue:
		return d.Continue
	case runtime.ActionRestart:
		return d.Restart
	case runtime.ActionJump:
		return d.Jump
	case runtime.ActionPendingOther:
		return d.Propagate
	default:
		return nil
	}
}

type Instruction struct {
	Op       Op
	Value    runtime.Value
	Name     string
	Argc     int
	Reuse    bool
	Target   *JumpTarget
	Dispatch *DispatchTable
	Marker   *runtime.ControlFlowMarker
	Sub      *Unit
	Span     ast.Span
}

// Unit is one compiled body: the main chunk, a named sub or a closure.
type Unit struct {
	Name         string
	Params       []string
	IsSub        bool
	Instructions []Instruction
	Resolution   *Resolution
	Span         ast.Span
	Origin       string
}

type Program struct {
	Main      *Unit
	Subs      map[string]*Unit
	Anonymous []*Unit
	Warnings  []string
	Origin    string
}

// Units lists every unit, main first, then named subs by name, then closures
// in source order.
func (p *Program) Units() []*Unit {
	units := []*Unit{p.Main}
	names := make([]string, 0, len(p.Subs))
	for name := range p.Subs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		units = append(units, p.Subs[name])
	}
	return append(units, p.Anonymous...)
}

// LabelReport merges per-unit label statistics.
func (p *Program) LabelReport() []LabelStat {
	merged := map[string]*LabelStat{}
	for _, unit := range p.Units() {
		if unit.Resolution == nil {
			continue
		}
		for _, stat := range unit.Resolution.Stats() {
			entry, ok := merged[stat.Label]
			if !ok {
				entry = &LabelStat{Label: stat.Label}
				merged[stat.Label] = entry
			}
			entry.Definitions += stat.Definitions
			entry.Local += stat.Local
			entry.NonLocal += stat.NonLocal
		}
	}
	out := make([]LabelStat, 0, len(merged))
	for _, stat := range merged {
		out = append(out, *stat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}
