package compiler

import (
	"kestrel/interpreter-go/pkg/ast"
	"kestrel/interpreter-go/pkg/runtime"
)

type loweringContext struct {
	program      *Program
	unit         *Unit
	res          *Resolution
	instructions []Instruction
	scopeDepth   int
	iterDepth    int
	landing      *landingPad
	origin       string
}

func (c *Compiler) lowerUnit(program *Program, name string, params []*ast.Identifier, body []ast.Statement, isSub bool, span ast.Span) (*Unit, error) {
	res, err := Resolve(body, ResolveOptions{InSub: isSub, Origin: c.opts.Origin})
	if err != nil {
		return nil, err
	}
	program.Warnings = append(program.Warnings, res.Warnings...)

	unit := &Unit{Name: name, IsSub: isSub, Resolution: res, Span: span, Origin: c.opts.Origin}
	for _, p := range params {
		unit.Params = append(unit.Params, p.Name)
	}
	root := &landingPad{}
	ctx := &loweringContext{
		program:      program,
		unit:         unit,
		res:          res,
		instructions: make([]Instruction, 0, len(body)*4),
		landing:      root,
		origin:       c.opts.Origin,
	}
	for _, stmt := range body {
		if err := c.emitStatement(ctx, stmt); err != nil {
			return nil, err
		}
	}
	if isSub {
		ctx.emit(Instruction{Op: OpConst, Value: runtime.Undef})
	} else {
		ctx.emit(Instruction{Op: OpResult})
	}
	ctx.emit(Instruction{Op: OpReturn})
	root.resolve(JumpTarget{IP: ExitIP})
	unit.Instructions = ctx.instructions
	return unit, nil
}

func (ctx *loweringContext) emit(instr Instruction) int {
	ctx.instructions = append(ctx.instructions, instr)
	return len(ctx.instructions) - 1
}

func (ctx *loweringContext) here() int {
	return len(ctx.instructions)
}

// at captures the current address with the depths that hold there.
func (ctx *loweringContext) at() JumpTarget {
	return JumpTarget{IP: ctx.here(), ScopeDepth: ctx.scopeDepth, IterDepth: ctx.iterDepth}
}

// branch emits a plain intra-statement branch; patch with patchBranch.
func (ctx *loweringContext) branch(op Op) int {
	return ctx.emit(Instruction{Op: op, Target: &JumpTarget{IP: ExitIP}})
}

func (ctx *loweringContext) patchBranch(idx int, ip int) {
	ctx.instructions[idx].Target.IP = ip
}

func (ctx *loweringContext) enterScope() {
	ctx.emit(Instruction{Op: OpEnterScope})
	ctx.scopeDepth++
}

func (ctx *loweringContext) exitScope() {
	ctx.emit(Instruction{Op: OpExitScope})
	ctx.scopeDepth--
}

func (c *Compiler) emitStatement(ctx *loweringContext, stmt ast.Statement) error {
	switch s := stmt.(type) {
	case nil:
		return nil
	case *ast.SubroutineDefinition:
		return c.defineSubroutine(ctx.program, s)
	case *ast.Block:
		return c.emitBlock(ctx, s)
	case *ast.IfStatement:
		return c.emitIf(ctx, s)
	case *ast.WhileLoop:
		return c.emitWhile(ctx, s)
	case *ast.ForLoop:
		return c.emitFor(ctx, s)
	case *ast.ForeachLoop:
		return c.emitForeach(ctx, s)
	case *ast.BareBlock:
		return c.emitBareBlock(ctx, s)
	case *ast.ControlFlowStatement:
		return c.emitControlFlow(ctx, s)
	case *ast.TailCallStatement:
		return c.emitTailCall(ctx, s)
	case *ast.ReturnStatement:
		if s.Argument != nil {
			if err := c.emitExpression(ctx, s.Argument); err != nil {
				return err
			}
		} else {
			ctx.emit(Instruction{Op: OpConst, Value: runtime.Undef})
		}
		ctx.emit(Instruction{Op: OpReturn, Span: s.Span()})
		return nil
	case ast.Expression:
		if err := c.emitExpression(ctx, s); err != nil {
			return err
		}
		if ctx.unit.IsSub {
			ctx.emit(Instruction{Op: OpPop})
		} else {
			ctx.emit(Instruction{Op: OpPopResult})
		}
		return nil
	default:
		return unsupported(stmt, "statement %T", stmt)
	}
}

func (c *Compiler) emitBlock(ctx *loweringContext, block *ast.Block) error {
	if block == nil {
		return nil
	}
	ctx.enterScope()
	for _, stmt := range block.Body {
		if err := c.emitStatement(ctx, stmt); err != nil {
			return err
		}
	}
	ctx.exitScope()
	return nil
}

func (c *Compiler) emitIf(ctx *loweringContext, stmt *ast.IfStatement) error {
	var endJumps []int
	emitArm := func(cond ast.Expression, negate bool, body *ast.Block) error {
		if err := c.emitExpression(ctx, cond); err != nil {
			return err
		}
		if negate {
			ctx.emit(Instruction{Op: OpUnary, Name: string(ast.UnaryOperatorNot)})
		}
		skip := ctx.branch(OpBranchIfFalse)
		if err := c.emitBlock(ctx, body); err != nil {
			return err
		}
		endJumps = append(endJumps, ctx.branch(OpBranch))
		ctx.patchBranch(skip, ctx.here())
		return nil
	}
	if err := emitArm(stmt.Condition, stmt.Negate, stmt.Then); err != nil {
		return err
	}
	for _, clause := range stmt.ElseIfs {
		if err := emitArm(clause.Condition, false, clause.Body); err != nil {
			return err
		}
	}
	if stmt.Else != nil {
		if err := c.emitBlock(ctx, stmt.Else); err != nil {
			return err
		}
	}
	for _, idx := range endJumps {
		ctx.patchBranch(idx, ctx.here())
	}
	return nil
}

func (c *Compiler) defineSubroutine(program *Program, def *ast.SubroutineDefinition) error {
	name := def.ID.Name
	if _, exists := program.Subs[name]; exists {
		err := newCompileError(ErrDuplicateSubroutine, def, "subroutine %s already defined", name)
		err.Origin = c.opts.Origin
		return err
	}
	// Reserve the name first so recursive definitions see it.
	program.Subs[name] = nil
	unit, err := c.lowerUnit(program, name, def.Params, def.Body.Body, true, def.Span())
	if err != nil {
		return err
	}
	program.Subs[name] = unit
	return nil
}
