package compiler

import (
	"fmt"
	"strings"

	"kestrel/interpreter-go/pkg/runtime"
)

type DisasmLine struct {
	Index    int
	Op       string
	Operands string
}

// Disassemble renders a unit one instruction per line.
func Disassemble(unit *Unit) []DisasmLine {
	lines := make([]DisasmLine, 0, len(unit.Instructions))
	for idx, instr := range unit.Instructions {
		lines = append(lines, DisasmLine{Index: idx, Op: instr.Op.String(), Operands: operands(instr)})
	}
	return lines
}

// FormatDisassembly renders Disassemble output as plain text.
func FormatDisassembly(unit *Unit) string {
	var sb strings.Builder
	name := unit.Name
	if name == "" {
		name = "<anon>"
	}
	fmt.Fprintf(&sb, "%s:\n", name)
	for _, line := range Disassemble(unit) {
		if line.Operands == "" {
			fmt.Fprintf(&sb, "%4d  %s\n", line.Index, line.Op)
			continue
		}
		fmt.Fprintf(&sb, "%4d  %-15s %s\n", line.Index, line.Op, line.Operands)
	}
	return sb.String()
}

func operands(instr Instruction) string {
	switch instr.Op {
	case OpConst:
		return constString(instr.Value)
	case OpLoad, OpDeclare, OpStore, OpBinary, OpUnary, OpIterBind:
		return instr.Name
	case OpMakeArray:
		return fmt.Sprintf("%d", instr.Argc)
	case OpBranch, OpBranchIfFalse, OpBranchIfTrue, OpIterNext:
		return fmt.Sprintf("-> %d", instr.Target.IP)
	case OpJump:
		return "-> " + instr.Target.String()
	case OpCall:
		return fmt.Sprintf("%s/%d land %s", instr.Name, instr.Argc, instr.Target)
	case OpTailCall:
		if instr.Reuse {
			return "reuse"
		}
		return fmt.Sprintf("%d", instr.Argc)
	case OpSignal:
		return instr.Marker.String()
	case OpDispatch:
		d := instr.Dispatch
		if d.Label == "" {
			return "* else " + d.Propagate.String()
		}
		return fmt.Sprintf("%s last %s next %s redo %s goto %s else %s",
			d.Label, d.Exit, d.Continue, d.Restart, d.Jump, d.Propagate)
	case OpMakeSub:
		if instr.Sub != nil && instr.Sub.Name != "" {
			return instr.Sub.Name
		}
		return "<anon>"
	default:
		return ""
	}
}

func constString(v runtime.Value) string {
	switch val := v.(type) {
	case runtime.StringValue:
		return fmt.Sprintf("%q", val.Val)
	case runtime.UndefValue, nil:
		return "undef"
	default:
		return runtime.Stringify(v)
	}
}
