package compiler

import (
	"kestrel/interpreter-go/pkg/ast"
	"kestrel/interpreter-go/pkg/runtime"
)

// emitControlFlow lowers last/next/redo/goto. A Local verb becomes a single
// OpJump; a NonLocal verb registers a marker and leaves the frame.
func (c *Compiler) emitControlFlow(ctx *loweringContext, stmt *ast.ControlFlowStatement) error {
	class, ok := ctx.res.Classify(stmt)
	if !ok {
		return unsupported(stmt, "unresolved %s statement", stmt.Kind)
	}
	switch class.Kind {
	case Local:
		c.emitLocalJump(ctx, class, stmt.Span())
	case NonLocal:
		c.emitSignal(ctx, class, stmt.Span())
	}
	return nil
}

func (c *Compiler) emitLocalJump(ctx *loweringContext, class Classification, span ast.Span) {
	ctx.emit(Instruction{Op: OpJump, Target: class.Boundary.ref(class.Marker), Span: span})
}

func (c *Compiler) emitSignal(ctx *loweringContext, class Classification, span ast.Span) {
	marker := &runtime.ControlFlowMarker{
		Kind:     class.Marker,
		Target:   class.Label,
		Location: span,
		Origin:   ctx.origin,
	}
	ctx.emit(Instruction{Op: OpSignal, Marker: marker, Span: span})
}

// emitDispatch emits one dispatch point for desc. Markers it does not
// consume continue at the enclosing landing pad.
func (c *Compiler) emitDispatch(ctx *loweringContext, desc *LoopBoundaryDescriptor) {
	table := &DispatchTable{Label: desc.Label, Propagate: ctx.landing.ref()}
	if desc.Label != "" {
		table.Exit = desc.ref(runtime.MarkerExit)
		table.Continue = desc.ref(runtime.MarkerContinue)
		table.Restart = desc.ref(runtime.MarkerRestart)
		table.Jump = desc.ref(runtime.MarkerJump)
	}
	ctx.emit(Instruction{Op: OpDispatch, Dispatch: table, Span: desc.Node.Span()})
}

// emitScopeBody lowers a loop or block body together with its dispatch
// points. Calls inside each statement land on the dispatch that closes it.
func (c *Compiler) emitScopeBody(ctx *loweringContext, desc *LoopBoundaryDescriptor, body *ast.Block) error {
	var stmts []ast.Statement
	if body != nil {
		stmts = body.Body
	}
	switch desc.DispatchMode() {
	case DispatchPerStatement:
		if len(stmts) == 0 {
			c.emitDispatch(ctx, desc)
			return nil
		}
		for _, stmt := range stmts {
			pad := &landingPad{}
			outer := ctx.landing
			ctx.landing = pad
			err := c.emitStatement(ctx, stmt)
			ctx.landing = outer
			if err != nil {
				return err
			}
			pad.resolve(ctx.at())
			c.emitDispatch(ctx, desc)
		}
	case DispatchLoopEnd:
		pad := &landingPad{}
		outer := ctx.landing
		ctx.landing = pad
		for _, stmt := range stmts {
			if err := c.emitStatement(ctx, stmt); err != nil {
				ctx.landing = outer
				return err
			}
		}
		ctx.landing = outer
		pad.resolve(ctx.at())
		c.emitDispatch(ctx, desc)
	default:
		for _, stmt := range stmts {
			if err := c.emitStatement(ctx, stmt); err != nil {
				return err
			}
		}
	}
	return nil
}

// headerPad returns the landing pad for calls in a loop header. Labeled
// loops get their own pad, closed later by emitHeaderDispatch.
func (c *Compiler) headerPad(ctx *loweringContext, desc *LoopBoundaryDescriptor) *landingPad {
	if desc.Label == "" {
		return ctx.landing
	}
	return &landingPad{}
}

func (c *Compiler) emitHeaderDispatch(ctx *loweringContext, desc *LoopBoundaryDescriptor, pad *landingPad) {
	if pad == ctx.landing || len(pad.refs) == 0 {
		return
	}
	pad.resolve(ctx.at())
	c.emitDispatch(ctx, desc)
}

func (c *Compiler) withLanding(ctx *loweringContext, pad *landingPad, fn func() error) error {
	outer := ctx.landing
	ctx.landing = pad
	err := fn()
	ctx.landing = outer
	return err
}

func (c *Compiler) boundary(ctx *loweringContext, node ast.LoopStatement) (*LoopBoundaryDescriptor, error) {
	desc := ctx.res.Boundary(node)
	if desc == nil {
		return nil, unsupported(node, "unresolved %s", node.NodeType())
	}
	return desc, nil
}

func (c *Compiler) emitWhile(ctx *loweringContext, loop *ast.WhileLoop) error {
	desc, err := c.boundary(ctx, loop)
	if err != nil {
		return err
	}
	desc.Entry = ctx.at()
	desc.Recheck = ctx.at()
	header := c.headerPad(ctx, desc)
	exitBranch := -1
	err = c.withLanding(ctx, header, func() error {
		if err := c.emitExpression(ctx, loop.Condition); err != nil {
			return err
		}
		if loop.Until {
			ctx.emit(Instruction{Op: OpUnary, Name: string(ast.UnaryOperatorNot)})
		}
		exitBranch = ctx.branch(OpBranchIfFalse)
		return nil
	})
	if err != nil {
		return err
	}

	desc.BodyStart = ctx.at()
	ctx.enterScope()
	if err := c.emitScopeBody(ctx, desc, loop.Body); err != nil {
		return err
	}
	ctx.exitScope()
	ctx.emit(Instruction{Op: OpBranch, Target: &JumpTarget{IP: desc.Recheck.IP}})
	c.emitHeaderDispatch(ctx, desc, header)

	ctx.patchBranch(exitBranch, ctx.here())
	desc.After = ctx.at()
	desc.resolve()
	return nil
}

func (c *Compiler) emitFor(ctx *loweringContext, loop *ast.ForLoop) error {
	desc, err := c.boundary(ctx, loop)
	if err != nil {
		return err
	}
	desc.Entry = ctx.at()
	outerDepth := ctx.scopeDepth
	ctx.enterScope()
	header := c.headerPad(ctx, desc)

	exitBranch := -1
	condStart := 0
	err = c.withLanding(ctx, header, func() error {
		if loop.Init != nil {
			if err := c.emitDiscarded(ctx, loop.Init); err != nil {
				return err
			}
		}
		condStart = ctx.here()
		if loop.Condition != nil {
			if err := c.emitExpression(ctx, loop.Condition); err != nil {
				return err
			}
			exitBranch = ctx.branch(OpBranchIfFalse)
		}
		return nil
	})
	if err != nil {
		return err
	}

	desc.BodyStart = ctx.at()
	ctx.enterScope()
	if err := c.emitScopeBody(ctx, desc, loop.Body); err != nil {
		return err
	}
	ctx.exitScope()

	desc.Recheck = ctx.at()
	if loop.Step != nil {
		err = c.withLanding(ctx, header, func() error {
			return c.emitDiscarded(ctx, loop.Step)
		})
		if err != nil {
			return err
		}
	}
	ctx.emit(Instruction{Op: OpBranch, Target: &JumpTarget{IP: condStart}})
	c.emitHeaderDispatch(ctx, desc, header)

	if exitBranch >= 0 {
		ctx.patchBranch(exitBranch, ctx.here())
	}
	ctx.exitScope()
	if ctx.scopeDepth != outerDepth {
		return unsupported(loop, "unbalanced scopes in for loop")
	}
	desc.After = ctx.at()
	desc.resolve()
	return nil
}

func (c *Compiler) emitForeach(ctx *loweringContext, loop *ast.ForeachLoop) error {
	desc, err := c.boundary(ctx, loop)
	if err != nil {
		return err
	}
	desc.Entry = ctx.at()
	if err := c.emitExpression(ctx, loop.Iterable); err != nil {
		return err
	}
	ctx.emit(Instruction{Op: OpIterInit, Span: loop.Span()})
	ctx.iterDepth++

	desc.Recheck = ctx.at()
	exhausted := ctx.branch(OpIterNext)

	desc.BodyStart = ctx.at()
	ctx.enterScope()
	ctx.emit(Instruction{Op: OpIterBind, Name: loop.Variable.Name})
	if err := c.emitScopeBody(ctx, desc, loop.Body); err != nil {
		return err
	}
	ctx.exitScope()
	ctx.emit(Instruction{Op: OpBranch, Target: &JumpTarget{IP: desc.Recheck.IP}})

	ctx.patchBranch(exhausted, ctx.here())
	ctx.emit(Instruction{Op: OpIterPop})
	ctx.iterDepth--
	desc.After = ctx.at()
	desc.resolve()
	return nil
}

func (c *Compiler) emitBareBlock(ctx *loweringContext, block *ast.BareBlock) error {
	desc, err := c.boundary(ctx, block)
	if err != nil {
		return err
	}
	desc.Entry = ctx.at()
	desc.BodyStart = ctx.at()
	ctx.enterScope()
	if err := c.emitScopeBody(ctx, desc, block.Body); err != nil {
		return err
	}
	ctx.exitScope()
	desc.After = ctx.at()
	desc.Recheck = desc.After
	desc.resolve()
	return nil
}

// emitTailCall lowers `goto &callee(args)`. The callee is evaluated at run
// time in the current frame.
func (c *Compiler) emitTailCall(ctx *loweringContext, stmt *ast.TailCallStatement) error {
	if !ctx.unit.IsSub {
		err := newCompileError(ErrTailCallOutsideSub, stmt, "goto &%s used outside of a subroutine", calleeName(stmt.Callee))
		err.Origin = ctx.origin
		return err
	}
	if err := c.emitExpression(ctx, stmt.Callee); err != nil {
		return err
	}
	if !stmt.ReuseArgs {
		for _, arg := range stmt.Arguments {
			if err := c.emitExpression(ctx, arg); err != nil {
				return err
			}
		}
	}
	ctx.emit(Instruction{Op: OpTailCall, Argc: len(stmt.Arguments), Reuse: stmt.ReuseArgs, Span: stmt.Span()})
	return nil
}
