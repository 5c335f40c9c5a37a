package compiler

import (
	"kestrel/interpreter-go/pkg/ast"
	"kestrel/interpreter-go/pkg/runtime"
)

// LoopBoundaryDescriptor describes one loop or labeled block during
// compilation. Local jumps and dispatch tables hold pointers handed out by
// ref; the lowering pass fills in the addresses once the scope is emitted.
type LoopBoundaryDescriptor struct {
	Label   string
	ScopeID int
	IsLoop  bool
	Node    ast.LoopStatement
	Parent  *LoopBoundaryDescriptor

	After     JumpTarget
	Recheck   JumpTarget
	BodyStart JumpTarget
	Entry     JumpTarget

	refs     map[runtime.MarkerKind][]*JumpTarget
	resolved bool
}

// DispatchMode reports how the scope checks the signal channel.
func (d *LoopBoundaryDescriptor) DispatchMode() DispatchMode {
	switch {
	case d.Label != "":
		return DispatchPerStatement
	case d.IsLoop:
		return DispatchLoopEnd
	default:
		return DispatchNone
	}
}

// ref returns a target that will hold the continuation for kind.
func (d *LoopBoundaryDescriptor) ref(kind runtime.MarkerKind) *JumpTarget {
	target := &JumpTarget{}
	if d.resolved {
		*target = d.continuation(kind)
		return target
	}
	if d.refs == nil {
		d.refs = make(map[runtime.MarkerKind][]*JumpTarget)
	}
	d.refs[kind] = append(d.refs[kind], target)
	return target
}

// continuation maps a verb to its address. A block that runs once treats
// next like last.
func (d *LoopBoundaryDescriptor) continuation(kind runtime.MarkerKind) JumpTarget {
	switch kind {
	case runtime.MarkerExit:
		return d.After
	case runtime.MarkerContinue:
		if !d.IsLoop {
			return d.After
		}
		return d.Recheck
	case runtime.MarkerRestart:
		return d.BodyStart
	case runtime.MarkerJump:
		return d.Entry
	default:
		panic("compiler: unhandled marker kind " + kind.String())
	}
}

func (d *LoopBoundaryDescriptor) resolve() {
	d.resolved = true
	for kind, targets := range d.refs {
		addr := d.continuation(kind)
		for _, target := range targets {
			*target = addr
		}
	}
	d.refs = nil
}

// landingPad collects the targets of calls and dispatchers that must land
// on the next enclosing dispatch point.
type landingPad struct {
	refs []*JumpTarget
}

func (p *landingPad) ref() *JumpTarget {
	target := &JumpTarget{}
	p.refs = append(p.refs, target)
	return target
}

func (p *landingPad) resolve(target JumpTarget) {
	for _, ref := range p.refs {
		*ref = target
	}
	p.refs = nil
}
