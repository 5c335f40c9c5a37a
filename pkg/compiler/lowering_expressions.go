package compiler

import (
	"kestrel/interpreter-go/pkg/ast"
	"kestrel/interpreter-go/pkg/runtime"
)

// emitDiscarded evaluates a statement for its side effects only.
func (c *Compiler) emitDiscarded(ctx *loweringContext, stmt ast.Statement) error {
	expr, ok := stmt.(ast.Expression)
	if !ok {
		return unsupported(stmt, "expected expression, got %T", stmt)
	}
	if err := c.emitExpression(ctx, expr); err != nil {
		return err
	}
	ctx.emit(Instruction{Op: OpPop})
	return nil
}

func (c *Compiler) emitExpression(ctx *loweringContext, expr ast.Expression) error {
	switch e := expr.(type) {
	case nil:
		ctx.emit(Instruction{Op: OpConst, Value: runtime.Undef})
	case *ast.IntegerLiteral:
		ctx.emit(Instruction{Op: OpConst, Value: runtime.IntegerValue{Val: e.Value}})
	case *ast.FloatLiteral:
		ctx.emit(Instruction{Op: OpConst, Value: runtime.FloatValue{Val: e.Value}})
	case *ast.StringLiteral:
		ctx.emit(Instruction{Op: OpConst, Value: runtime.StringValue{Val: e.Value}})
	case *ast.UndefLiteral:
		ctx.emit(Instruction{Op: OpConst, Value: runtime.Undef})
	case *ast.Identifier:
		ctx.emit(Instruction{Op: OpLoad, Name: e.Name, Span: e.Span()})
	case *ast.ArrayLiteral:
		for _, el := range e.Elements {
			if err := c.emitExpression(ctx, el); err != nil {
				return err
			}
		}
		ctx.emit(Instruction{Op: OpMakeArray, Argc: len(e.Elements)})
	case *ast.IndexExpression:
		if err := c.emitExpression(ctx, e.Object); err != nil {
			return err
		}
		if err := c.emitExpression(ctx, e.Index); err != nil {
			return err
		}
		ctx.emit(Instruction{Op: OpIndexGet, Span: e.Span()})
	case *ast.UnaryExpression:
		if err := c.emitExpression(ctx, e.Operand); err != nil {
			return err
		}
		ctx.emit(Instruction{Op: OpUnary, Name: string(e.Operator), Span: e.Span()})
	case *ast.BinaryExpression:
		return c.emitBinary(ctx, e)
	case *ast.AssignmentExpression:
		return c.emitAssignment(ctx, e)
	case *ast.FunctionCall:
		return c.emitCall(ctx, e)
	case *ast.SubExpression:
		unit, err := c.lowerUnit(ctx.program, "", e.Params, e.Body.Body, true, e.Span())
		if err != nil {
			return err
		}
		ctx.program.Anonymous = append(ctx.program.Anonymous, unit)
		ctx.emit(Instruction{Op: OpMakeSub, Sub: unit, Span: e.Span()})
	default:
		return unsupported(expr, "expression %T", expr)
	}
	return nil
}

func (c *Compiler) emitBinary(ctx *loweringContext, expr *ast.BinaryExpression) error {
	switch expr.Operator {
	case "&&", "||":
		if err := c.emitExpression(ctx, expr.Left); err != nil {
			return err
		}
		ctx.emit(Instruction{Op: OpDup})
		op := OpBranchIfFalse
		if expr.Operator == "||" {
			op = OpBranchIfTrue
		}
		shortCircuit := ctx.branch(op)
		ctx.emit(Instruction{Op: OpPop})
		if err := c.emitExpression(ctx, expr.Right); err != nil {
			return err
		}
		ctx.patchBranch(shortCircuit, ctx.here())
		return nil
	}
	if err := c.emitExpression(ctx, expr.Left); err != nil {
		return err
	}
	if err := c.emitExpression(ctx, expr.Right); err != nil {
		return err
	}
	ctx.emit(Instruction{Op: OpBinary, Name: expr.Operator, Span: expr.Span()})
	return nil
}

func (c *Compiler) emitAssignment(ctx *loweringContext, expr *ast.AssignmentExpression) error {
	if expr.Operator == ast.AssignmentDeclare {
		id, ok := expr.Left.(*ast.Identifier)
		if !ok {
			return unsupported(expr, "my requires a variable name")
		}
		if err := c.emitExpression(ctx, expr.Right); err != nil {
			return err
		}
		ctx.emit(Instruction{Op: OpDeclare, Name: id.Name, Span: expr.Span()})
		return nil
	}
	binOp, compound := expr.Operator.BinaryOperator()
	switch target := expr.Left.(type) {
	case *ast.Identifier:
		if compound {
			ctx.emit(Instruction{Op: OpLoad, Name: target.Name, Span: target.Span()})
		}
		if err := c.emitExpression(ctx, expr.Right); err != nil {
			return err
		}
		if compound {
			ctx.emit(Instruction{Op: OpBinary, Name: binOp, Span: expr.Span()})
		}
		ctx.emit(Instruction{Op: OpStore, Name: target.Name, Span: expr.Span()})
	case *ast.IndexExpression:
		if err := c.emitExpression(ctx, target.Object); err != nil {
			return err
		}
		if err := c.emitExpression(ctx, target.Index); err != nil {
			return err
		}
		if compound {
			ctx.emit(Instruction{Op: OpDup2})
			ctx.emit(Instruction{Op: OpIndexGet, Span: target.Span()})
		}
		if err := c.emitExpression(ctx, expr.Right); err != nil {
			return err
		}
		if compound {
			ctx.emit(Instruction{Op: OpBinary, Name: binOp, Span: expr.Span()})
		}
		ctx.emit(Instruction{Op: OpIndexSet, Span: expr.Span()})
	default:
		return unsupported(expr, "invalid assignment target %T", expr.Left)
	}
	return nil
}

// emitCall lowers a call. Its landing target is where execution continues
// when the callee returns with a marker pending.
func (c *Compiler) emitCall(ctx *loweringContext, call *ast.FunctionCall) error {
	if err := c.emitExpression(ctx, call.Callee); err != nil {
		return err
	}
	for _, arg := range call.Arguments {
		if err := c.emitExpression(ctx, arg); err != nil {
			return err
		}
	}
	ctx.emit(Instruction{
		Op:     OpCall,
		Argc:   len(call.Arguments),
		Name:   calleeName(call.Callee),
		Target: ctx.landing.ref(),
		Span:   call.Span(),
	})
	return nil
}
