package ast

// Identifier and literal helpers.

func ID(name string) *Identifier {
	return NewIdentifier(name)
}

func Str(value string) *StringLiteral {
	return NewStringLiteral(value)
}

func Int(value int64) *IntegerLiteral {
	return NewIntegerLiteral(value)
}

func Flt(value float64) *FloatLiteral {
	return NewFloatLiteral(value)
}

func Undef() *UndefLiteral {
	return NewUndefLiteral()
}

func Arr(elements ...Expression) *ArrayLiteral {
	return NewArrayLiteral(elements)
}

func Index(object Expression, index Expression) *IndexExpression {
	return NewIndexExpression(object, index)
}

// Operators.

func Bin(op string, left Expression, right Expression) *BinaryExpression {
	return NewBinaryExpression(op, left, right)
}

func Un(op UnaryOperator, operand Expression) *UnaryExpression {
	return NewUnaryExpression(op, operand)
}

func My(name string, value Expression) *AssignmentExpression {
	return NewAssignmentExpression(AssignmentDeclare, ID(name), value)
}

func Assign(target Expression, value Expression) *AssignmentExpression {
	return NewAssignmentExpression(AssignmentAssign, target, value)
}

func AssignOp(op AssignmentOperator, target Expression, value Expression) *AssignmentExpression {
	return NewAssignmentExpression(op, target, value)
}

// Calls and subroutines.

func Call(name string, args ...Expression) *FunctionCall {
	return NewFunctionCall(ID(name), args)
}

func CallExpr(callee Expression, args ...Expression) *FunctionCall {
	return NewFunctionCall(callee, args)
}

func Sub(name string, params []string, statements ...Statement) *SubroutineDefinition {
	return NewSubroutineDefinition(ID(name), identifiers(params), BlockOf(statements...))
}

func Lambda(params []string, statements ...Statement) *SubExpression {
	return NewSubExpression(identifiers(params), BlockOf(statements...))
}

func Ret(value Expression) *ReturnStatement {
	return NewReturnStatement(value)
}

// Blocks and loops. Label arguments accept "" for an unlabeled statement.

func BlockOf(statements ...Statement) *Block {
	return NewBlock(statements)
}

func Bare(label string, statements ...Statement) *BareBlock {
	return NewBareBlock(labelPtr(label), BlockOf(statements...))
}

func While(label string, condition Expression, statements ...Statement) *WhileLoop {
	return NewWhileLoop(labelPtr(label), condition, false, BlockOf(statements...))
}

func Until(label string, condition Expression, statements ...Statement) *WhileLoop {
	return NewWhileLoop(labelPtr(label), condition, true, BlockOf(statements...))
}

func For(label string, init Statement, condition Expression, step Expression, statements ...Statement) *ForLoop {
	return NewForLoop(labelPtr(label), init, condition, step, BlockOf(statements...))
}

func Foreach(label string, variable string, iterable Expression, statements ...Statement) *ForeachLoop {
	return NewForeachLoop(labelPtr(label), ID(variable), iterable, BlockOf(statements...))
}

func If(condition Expression, statements ...Statement) *IfStatement {
	return NewIfStatement(condition, false, BlockOf(statements...), nil, nil)
}

func IfElse(condition Expression, then *Block, elseBody *Block) *IfStatement {
	return NewIfStatement(condition, false, then, nil, elseBody)
}

// Control flow verbs.

func Last(label string) *ControlFlowStatement {
	return NewControlFlowStatement(ControlFlowLast, labelPtr(label))
}

func Next(label string) *ControlFlowStatement {
	return NewControlFlowStatement(ControlFlowNext, labelPtr(label))
}

func Redo(label string) *ControlFlowStatement {
	return NewControlFlowStatement(ControlFlowRedo, labelPtr(label))
}

func Goto(label string) *ControlFlowStatement {
	return NewControlFlowStatement(ControlFlowGoto, labelPtr(label))
}

func TailCall(name string, args ...Expression) *TailCallStatement {
	return NewTailCallStatement(ID(name), args, false)
}

func TailCallReuse(name string) *TailCallStatement {
	return NewTailCallStatement(ID(name), nil, true)
}

func Mod(statements ...Statement) *Module {
	return NewModule(statements)
}

func labelPtr(label string) *Identifier {
	if label == "" {
		return nil
	}
	return ID(label)
}

func identifiers(names []string) []*Identifier {
	if len(names) == 0 {
		return nil
	}
	out := make([]*Identifier, len(names))
	for i, name := range names {
		out[i] = ID(name)
	}
	return out
}
