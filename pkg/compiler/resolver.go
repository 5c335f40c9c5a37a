package compiler

import (
	"fmt"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"

	"kestrel/interpreter-go/pkg/ast"
	"kestrel/interpreter-go/pkg/runtime"
)

type ClassificationKind int

const (
	Local ClassificationKind = iota
	NonLocal
)

func (k ClassificationKind) String() string {
	if k == Local {
		return "local"
	}
	return "nonlocal"
}

// Classification is the resolver's verdict for one last/next/redo/goto.
// Boundary is set for Local; Label for NonLocal.
type Classification struct {
	Kind     ClassificationKind
	Marker   runtime.MarkerKind
	Label    string
	Boundary *LoopBoundaryDescriptor
}

type DispatchMode int

const (
	DispatchNone DispatchMode = iota
	DispatchLoopEnd
	DispatchPerStatement
)

func (m DispatchMode) String() string {
	switch m {
	case DispatchLoopEnd:
		return "loop-end"
	case DispatchPerStatement:
		return "per-statement"
	default:
		return "none"
	}
}

type ResolveOptions struct {
	// InSub permits tail calls.
	InSub  bool
	Origin string
}

// LabelStat summarises how one label is used inside a unit.
type LabelStat struct {
	Label       string
	Definitions int
	Local       int
	NonLocal    int
}

// Resolution maps every control-flow statement of one unit to its
// classification and every loop or block to its boundary descriptor.
type Resolution struct {
	classes  map[*ast.ControlFlowStatement]Classification
	scopes   map[ast.LoopStatement]*LoopBoundaryDescriptor
	labels   mapset.Set[string]
	stats    map[string]*LabelStat
	Warnings []string
}

// Classify returns the classification recorded for stmt.
func (r *Resolution) Classify(stmt *ast.ControlFlowStatement) (Classification, bool) {
	c, ok := r.classes[stmt]
	return c, ok
}

// Boundary returns the descriptor for a loop or block.
func (r *Resolution) Boundary(node ast.LoopStatement) *LoopBoundaryDescriptor {
	return r.scopes[node]
}

// DispatchMode reports the dispatch strategy for a loop or block.
func (r *Resolution) DispatchMode(node ast.LoopStatement) DispatchMode {
	if desc := r.scopes[node]; desc != nil {
		return desc.DispatchMode()
	}
	return DispatchNone
}

// Labels lists the labels defined in the unit, sorted.
func (r *Resolution) Labels() []string {
	labels := r.labels.ToSlice()
	sort.Strings(labels)
	return labels
}

func (r *Resolution) Stats() []LabelStat {
	out := make([]LabelStat, 0, len(r.stats))
	for _, stat := range r.stats {
		out = append(out, *stat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

func (r *Resolution) stat(label string) *LabelStat {
	s, ok := r.stats[label]
	if !ok {
		s = &LabelStat{Label: label}
		r.stats[label] = s
	}
	return s
}

type resolver struct {
	opts    ResolveOptions
	res     *Resolution
	stack   []*LoopBoundaryDescriptor
	nextID  int
	visible mapset.Set[string]
}

// Resolve classifies the control-flow statements of one unit body. Nested
// subroutine bodies are separate units and are not entered.
func Resolve(body []ast.Statement, opts ResolveOptions) (*Resolution, error) {
	r := &resolver{
		opts: opts,
		res: &Resolution{
			classes: make(map[*ast.ControlFlowStatement]Classification),
			scopes:  make(map[ast.LoopStatement]*LoopBoundaryDescriptor),
			labels:  mapset.NewThreadUnsafeSet[string](),
			stats:   make(map[string]*LabelStat),
		},
		visible: mapset.NewThreadUnsafeSet[string](),
	}
	if err := r.statements(body); err != nil {
		return nil, err
	}
	return r.res, nil
}

func (r *resolver) statements(stmts []ast.Statement) error {
	for _, stmt := range stmts {
		if err := r.statement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) block(block *ast.Block) error {
	if block == nil {
		return nil
	}
	return r.statements(block.Body)
}

func (r *resolver) statement(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case nil:
		return nil
	case *ast.ControlFlowStatement:
		return r.controlFlow(s)
	case *ast.TailCallStatement:
		if !r.opts.InSub {
			return r.withOrigin(newCompileError(ErrTailCallOutsideSub, s, "goto &%s used outside of a subroutine", calleeName(s.Callee)))
		}
		return nil
	case ast.LoopStatement:
		return r.loop(s)
	case *ast.Block:
		return r.block(s)
	case *ast.IfStatement:
		if err := r.block(s.Then); err != nil {
			return err
		}
		for _, clause := range s.ElseIfs {
			if err := r.block(clause.Body); err != nil {
				return err
			}
		}
		return r.block(s.Else)
	default:
		return nil
	}
}

func (r *resolver) loop(node ast.LoopStatement) error {
	label := node.LoopLabel()
	desc := &LoopBoundaryDescriptor{
		Label:   label,
		ScopeID: r.nextID,
		IsLoop:  node.IsLoop(),
		Node:    node,
	}
	r.nextID++
	if len(r.stack) > 0 {
		desc.Parent = r.stack[len(r.stack)-1]
	}
	r.res.scopes[node] = desc

	shadowed := false
	if label != "" {
		r.res.labels.Add(label)
		r.res.stat(label).Definitions++
		if r.visible.Contains(label) {
			shadowed = true
			r.res.Warnings = append(r.res.Warnings, r.located(node, fmt.Sprintf("label %s shadows an enclosing label of the same name", label)))
		}
		r.visible.Add(label)
	}

	r.stack = append(r.stack, desc)
	if f, ok := node.(*ast.ForLoop); ok && f.Init != nil {
		if err := r.statement(f.Init); err != nil {
			return err
		}
	}
	err := r.block(node.LoopBody())
	r.stack = r.stack[:len(r.stack)-1]

	if label != "" && !shadowed {
		r.visible.Remove(label)
	}
	return err
}

func (r *resolver) controlFlow(stmt *ast.ControlFlowStatement) error {
	kind, err := runtime.MarkerKindFor(stmt.Kind)
	if err != nil {
		return r.withOrigin(unsupported(stmt, "%s", err))
	}
	label := stmt.TargetLabel()
	if label == "" {
		for i := len(r.stack) - 1; i >= 0; i-- {
			if r.stack[i].IsLoop {
				r.res.classes[stmt] = Classification{Kind: Local, Marker: kind, Boundary: r.stack[i]}
				return nil
			}
		}
		return r.withOrigin(statementOutsideLoop(stmt))
	}
	for i := len(r.stack) - 1; i >= 0; i-- {
		if r.stack[i].Label == label {
			r.res.classes[stmt] = Classification{Kind: Local, Marker: kind, Label: label, Boundary: r.stack[i]}
			r.res.stat(label).Local++
			return nil
		}
	}
	r.res.classes[stmt] = Classification{Kind: NonLocal, Marker: kind, Label: label}
	r.res.stat(label).NonLocal++
	return nil
}

func (r *resolver) withOrigin(err *CompileError) *CompileError {
	err.Origin = r.opts.Origin
	return err
}

func (r *resolver) located(node ast.Node, msg string) string {
	loc := node.Span().String()
	if loc == "" {
		return msg
	}
	if r.opts.Origin != "" {
		return fmt.Sprintf("%s:%s: %s", r.opts.Origin, loc, msg)
	}
	return fmt.Sprintf("line %s: %s", loc, msg)
}

func calleeName(expr ast.Expression) string {
	if id, ok := expr.(*ast.Identifier); ok {
		return id.Name
	}
	return "<expr>"
}
