package ast

type NodeType string

const (
	NodeIdentifier           NodeType = "Identifier"
	NodeStringLiteral        NodeType = "StringLiteral"
	NodeIntegerLiteral       NodeType = "IntegerLiteral"
	NodeFloatLiteral         NodeType = "FloatLiteral"
	NodeUndefLiteral         NodeType = "UndefLiteral"
	NodeArrayLiteral         NodeType = "ArrayLiteral"
	NodeIndexExpression      NodeType = "IndexExpression"
	NodeUnaryExpression      NodeType = "UnaryExpression"
	NodeBinaryExpression     NodeType = "BinaryExpression"
	NodeAssignmentExpression NodeType = "AssignmentExpression"
	NodeFunctionCall         NodeType = "FunctionCall"
	NodeSubExpression        NodeType = "SubExpression"
	NodeBlock                NodeType = "Block"
	NodeBareBlock            NodeType = "BareBlock"
	NodeWhileLoop            NodeType = "WhileLoop"
	NodeForLoop              NodeType = "ForLoop"
	NodeForeachLoop          NodeType = "ForeachLoop"
	NodeIfStatement          NodeType = "IfStatement"
	NodeControlFlowStatement NodeType = "ControlFlowStatement"
	NodeTailCallStatement    NodeType = "TailCallStatement"
	NodeReturnStatement      NodeType = "ReturnStatement"
	NodeSubroutineDefinition NodeType = "SubroutineDefinition"
	NodeModule               NodeType = "Module"
)

type Node interface {
	NodeType() NodeType
	Span() Span
	isNode()
}

type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type nodeImpl struct {
	Type NodeType `json:"type"`
	span Span
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (n nodeImpl) Span() Span         { return n.span }
func (nodeImpl) isNode()              {}
func (n *nodeImpl) setSpan(span Span) { n.span = span }

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
	statementNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

// LoopStatement is implemented by every statement that can carry a label and
// act as the target of last/next/redo/goto. IsLoop reports whether the body
// repeats; a bare block runs once.
type LoopStatement interface {
	Statement
	LoopLabel() string
	LoopBody() *Block
	IsLoop() bool
}

//-----------------------------------------------------------------------------
// Expressions
//-----------------------------------------------------------------------------

type Identifier struct {
	nodeImpl
	expressionMarker
	statementMarker

	Name string `json:"name"`
}

func NewIdentifier(name string) *Identifier {
	return &Identifier{nodeImpl: newNodeImpl(NodeIdentifier), Name: name}
}

type StringLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker

	Value string `json:"value"`
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStringLiteral), Value: value}
}

type IntegerLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker

	Value int64 `json:"value"`
}

func NewIntegerLiteral(value int64) *IntegerLiteral {
	return &IntegerLiteral{nodeImpl: newNodeImpl(NodeIntegerLiteral), Value: value}
}

type FloatLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker

	Value float64 `json:"value"`
}

func NewFloatLiteral(value float64) *FloatLiteral {
	return &FloatLiteral{nodeImpl: newNodeImpl(NodeFloatLiteral), Value: value}
}

type UndefLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
}

func NewUndefLiteral() *UndefLiteral {
	return &UndefLiteral{nodeImpl: newNodeImpl(NodeUndefLiteral)}
}

type ArrayLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker

	Elements []Expression `json:"elements"`
}

func NewArrayLiteral(elements []Expression) *ArrayLiteral {
	return &ArrayLiteral{nodeImpl: newNodeImpl(NodeArrayLiteral), Elements: elements}
}

type IndexExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Object Expression `json:"object"`
	Index  Expression `json:"index"`
}

func NewIndexExpression(object Expression, index Expression) *IndexExpression {
	return &IndexExpression{nodeImpl: newNodeImpl(NodeIndexExpression), Object: object, Index: index}
}

type UnaryOperator string

const (
	UnaryOperatorNegate UnaryOperator = "-"
	UnaryOperatorNot    UnaryOperator = "!"
)

type UnaryExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator UnaryOperator `json:"operator"`
	Operand  Expression    `json:"operand"`
}

func NewUnaryExpression(operator UnaryOperator, operand Expression) *UnaryExpression {
	return &UnaryExpression{nodeImpl: newNodeImpl(NodeUnaryExpression), Operator: operator, Operand: operand}
}

type BinaryExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator string     `json:"operator"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func NewBinaryExpression(operator string, left Expression, right Expression) *BinaryExpression {
	return &BinaryExpression{nodeImpl: newNodeImpl(NodeBinaryExpression), Operator: operator, Left: left, Right: right}
}

type AssignmentOperator string

const (
	AssignmentDeclare AssignmentOperator = "my"
	AssignmentAssign  AssignmentOperator = "="
	AssignmentAdd     AssignmentOperator = "+="
	AssignmentSub     AssignmentOperator = "-="
	AssignmentConcat  AssignmentOperator = ".="
)

// BinaryOperator returns the arithmetic operator a compound assignment applies.
func (op AssignmentOperator) BinaryOperator() (string, bool) {
	switch op {
	case AssignmentAdd:
		return "+", true
	case AssignmentSub:
		return "-", true
	case AssignmentConcat:
		return ".", true
	default:
		return "", false
	}
}

// AssignmentExpression covers `my x = v`, `x = v`, `a[i] = v` and the compound
// forms. Right is nil for a bare `my x;`.
type AssignmentExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator AssignmentOperator `json:"operator"`
	Left     Expression         `json:"left"`
	Right    Expression         `json:"right"`
}

func NewAssignmentExpression(operator AssignmentOperator, left Expression, right Expression) *AssignmentExpression {
	return &AssignmentExpression{nodeImpl: newNodeImpl(NodeAssignmentExpression), Operator: operator, Left: left, Right: right}
}

type FunctionCall struct {
	nodeImpl
	expressionMarker
	statementMarker

	Callee    Expression   `json:"callee"`
	Arguments []Expression `json:"arguments"`
}

func NewFunctionCall(callee Expression, arguments []Expression) *FunctionCall {
	return &FunctionCall{nodeImpl: newNodeImpl(NodeFunctionCall), Callee: callee, Arguments: arguments}
}

// SubExpression is an anonymous subroutine (closure) literal.
type SubExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Params []*Identifier `json:"params"`
	Body   *Block        `json:"body"`
}

func NewSubExpression(params []*Identifier, body *Block) *SubExpression {
	return &SubExpression{nodeImpl: newNodeImpl(NodeSubExpression), Params: params, Body: body}
}

//-----------------------------------------------------------------------------
// Statements
//-----------------------------------------------------------------------------

// Block is a plain statement sequence with its own lexical scope.
type Block struct {
	nodeImpl
	statementMarker

	Body []Statement `json:"body"`
}

func NewBlock(body []Statement) *Block {
	return &Block{nodeImpl: newNodeImpl(NodeBlock), Body: body}
}

// BareBlock is `LABEL: { ... }`, a block that runs once but still answers to
// last/next/redo/goto when labeled.
type BareBlock struct {
	nodeImpl
	statementMarker

	Label *Identifier `json:"label,omitempty"`
	Body  *Block      `json:"body"`
}

func NewBareBlock(label *Identifier, body *Block) *BareBlock {
	return &BareBlock{nodeImpl: newNodeImpl(NodeBareBlock), Label: label, Body: body}
}

func (b *BareBlock) LoopLabel() string { return labelName(b.Label) }
func (b *BareBlock) LoopBody() *Block  { return b.Body }
func (b *BareBlock) IsLoop() bool      { return false }

// WhileLoop is `while (cond) { }`; Until negates the condition.
type WhileLoop struct {
	nodeImpl
	statementMarker

	Label     *Identifier `json:"label,omitempty"`
	Condition Expression  `json:"condition"`
	Until     bool        `json:"until,omitempty"`
	Body      *Block      `json:"body"`
}

func NewWhileLoop(label *Identifier, condition Expression, until bool, body *Block) *WhileLoop {
	return &WhileLoop{nodeImpl: newNodeImpl(NodeWhileLoop), Label: label, Condition: condition, Until: until, Body: body}
}

func (w *WhileLoop) LoopLabel() string { return labelName(w.Label) }
func (w *WhileLoop) LoopBody() *Block  { return w.Body }
func (w *WhileLoop) IsLoop() bool      { return true }

// ForLoop is the C-style `for (init; cond; step) { }`. Any clause may be nil.
type ForLoop struct {
	nodeImpl
	statementMarker

	Label     *Identifier `json:"label,omitempty"`
	Init      Statement   `json:"init,omitempty"`
	Condition Expression  `json:"condition,omitempty"`
	Step      Expression  `json:"step,omitempty"`
	Body      *Block      `json:"body"`
}

func NewForLoop(label *Identifier, init Statement, condition Expression, step Expression, body *Block) *ForLoop {
	return &ForLoop{nodeImpl: newNodeImpl(NodeForLoop), Label: label, Init: init, Condition: condition, Step: step, Body: body}
}

func (f *ForLoop) LoopLabel() string { return labelName(f.Label) }
func (f *ForLoop) LoopBody() *Block  { return f.Body }
func (f *ForLoop) IsLoop() bool      { return true }

// ForeachLoop is `foreach my x (list) { }`.
type ForeachLoop struct {
	nodeImpl
	statementMarker

	Label    *Identifier `json:"label,omitempty"`
	Variable *Identifier `json:"variable"`
	Iterable Expression  `json:"iterable"`
	Body     *Block      `json:"body"`
}

func NewForeachLoop(label *Identifier, variable *Identifier, iterable Expression, body *Block) *ForeachLoop {
	return &ForeachLoop{nodeImpl: newNodeImpl(NodeForeachLoop), Label: label, Variable: variable, Iterable: iterable, Body: body}
}

func (f *ForeachLoop) LoopLabel() string { return labelName(f.Label) }
func (f *ForeachLoop) LoopBody() *Block  { return f.Body }
func (f *ForeachLoop) IsLoop() bool      { return true }

type ElseIfClause struct {
	Condition Expression `json:"condition"`
	Body      *Block     `json:"body"`
}

type IfStatement struct {
	nodeImpl
	statementMarker

	Condition Expression      `json:"condition"`
	Negate    bool            `json:"negate,omitempty"`
	Then      *Block          `json:"then"`
	ElseIfs   []*ElseIfClause `json:"elseIfs,omitempty"`
	Else      *Block          `json:"else,omitempty"`
}

func NewIfStatement(condition Expression, negate bool, then *Block, elseIfs []*ElseIfClause, elseBody *Block) *IfStatement {
	return &IfStatement{nodeImpl: newNodeImpl(NodeIfStatement), Condition: condition, Negate: negate, Then: then, ElseIfs: elseIfs, Else: elseBody}
}

type ControlFlowKind string

const (
	ControlFlowLast ControlFlowKind = "last"
	ControlFlowNext ControlFlowKind = "next"
	ControlFlowRedo ControlFlowKind = "redo"
	ControlFlowGoto ControlFlowKind = "goto"
)

// ControlFlowStatement is one of last/next/redo/goto with an optional label.
type ControlFlowStatement struct {
	nodeImpl
	statementMarker

	Kind  ControlFlowKind `json:"kind"`
	Label *Identifier     `json:"label,omitempty"`
}

func NewControlFlowStatement(kind ControlFlowKind, label *Identifier) *ControlFlowStatement {
	return &ControlFlowStatement{nodeImpl: newNodeImpl(NodeControlFlowStatement), Kind: kind, Label: label}
}

// TargetLabel returns the label name or "" when the statement is unlabeled.
func (c *ControlFlowStatement) TargetLabel() string { return labelName(c.Label) }

// TailCallStatement is `goto &callee(args)`; ReuseArgs marks the `goto &callee;`
// form that passes the current arguments through.
type TailCallStatement struct {
	nodeImpl
	statementMarker

	Callee    Expression   `json:"callee"`
	Arguments []Expression `json:"arguments"`
	ReuseArgs bool         `json:"reuseArgs,omitempty"`
}

func NewTailCallStatement(callee Expression, arguments []Expression, reuseArgs bool) *TailCallStatement {
	return &TailCallStatement{nodeImpl: newNodeImpl(NodeTailCallStatement), Callee: callee, Arguments: arguments, ReuseArgs: reuseArgs}
}

type ReturnStatement struct {
	nodeImpl
	statementMarker

	Argument Expression `json:"argument,omitempty"`
}

func NewReturnStatement(argument Expression) *ReturnStatement {
	return &ReturnStatement{nodeImpl: newNodeImpl(NodeReturnStatement), Argument: argument}
}

type SubroutineDefinition struct {
	nodeImpl
	statementMarker

	ID     *Identifier   `json:"id"`
	Params []*Identifier `json:"params"`
	Body   *Block        `json:"body"`
}

func NewSubroutineDefinition(id *Identifier, params []*Identifier, body *Block) *SubroutineDefinition {
	return &SubroutineDefinition{nodeImpl: newNodeImpl(NodeSubroutineDefinition), ID: id, Params: params, Body: body}
}

type Module struct {
	nodeImpl

	Body []Statement `json:"body"`
}

func NewModule(body []Statement) *Module {
	return &Module{nodeImpl: newNodeImpl(NodeModule), Body: body}
}

func labelName(id *Identifier) string {
	if id == nil {
		return ""
	}
	return id.Name
}
