package parser

import (
	"strconv"

	"kestrel/interpreter-go/pkg/ast"
)

// Binding powers for infix operators; higher binds tighter.
var infixPrecedence = map[string]int{
	"||": 1,
	"&&": 2,
	"==": 3, "!=": 3, "<": 3, "<=": 3, ">": 3, ">=": 3,
	"..": 4,
	"+":  5, "-": 5, ".": 5,
	"*": 6, "/": 6, "%": 6,
}

const prefixPrecedence = 7

var assignmentOperators = map[string]ast.AssignmentOperator{
	"=":  ast.AssignmentAssign,
	"+=": ast.AssignmentAdd,
	"-=": ast.AssignmentSub,
	".=": ast.AssignmentConcat,
}

func (ctx *parseContext) parseExpression() (ast.Expression, error) {
	start := ctx.peek().Pos
	if ctx.acceptKeyword("my") {
		name, err := ctx.expectIdent("variable name after 'my'")
		if err != nil {
			return nil, err
		}
		var value ast.Expression
		if ctx.acceptPunct("=") {
			value, err = ctx.parseExpression()
			if err != nil {
				return nil, err
			}
		}
		expr := ast.NewAssignmentExpression(ast.AssignmentDeclare, name, value)
		ctx.finish(expr, start)
		return expr, nil
	}

	left, err := ctx.parseBinary(0)
	if err != nil {
		return nil, err
	}
	tok := ctx.peek()
	if tok.Kind != TokenPunct {
		return left, nil
	}
	op, ok := assignmentOperators[tok.Text]
	if !ok {
		return left, nil
	}
	switch left.(type) {
	case *ast.Identifier, *ast.IndexExpression:
	default:
		return nil, errorAt(tok.Pos, "invalid assignment target")
	}
	ctx.advance()
	right, err := ctx.parseExpression()
	if err != nil {
		return nil, err
	}
	expr := ast.NewAssignmentExpression(op, left, right)
	ctx.finish(expr, start)
	return expr, nil
}

func (ctx *parseContext) parseBinary(minPrec int) (ast.Expression, error) {
	start := ctx.peek().Pos
	left, err := ctx.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok := ctx.peek()
		if tok.Kind != TokenPunct {
			return left, nil
		}
		prec, ok := infixPrecedence[tok.Text]
		if !ok || prec <= minPrec {
			return left, nil
		}
		ctx.advance()
		right, err := ctx.parseBinary(prec)
		if err != nil {
			return nil, err
		}
		bin := ast.NewBinaryExpression(tok.Text, left, right)
		ctx.finish(bin, start)
		left = bin
	}
}

func (ctx *parseContext) parseUnary() (ast.Expression, error) {
	tok := ctx.peek()
	if tok.Is(TokenPunct, "-") || tok.Is(TokenPunct, "!") {
		ctx.advance()
		operand, err := ctx.parseBinary(prefixPrecedence)
		if err != nil {
			return nil, err
		}
		expr := ast.NewUnaryExpression(ast.UnaryOperator(tok.Text), operand)
		ctx.finish(expr, tok.Pos)
		return expr, nil
	}
	return ctx.parsePostfix()
}

func (ctx *parseContext) parsePostfix() (ast.Expression, error) {
	start := ctx.peek().Pos
	expr, err := ctx.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case ctx.atPunct("("):
			args, err := ctx.parseArguments()
			if err != nil {
				return nil, err
			}
			call := ast.NewFunctionCall(expr, args)
			ctx.finish(call, start)
			expr = call
		case ctx.atPunct("["):
			ctx.advance()
			index, err := ctx.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := ctx.expectPunct("]"); err != nil {
				return nil, err
			}
			idx := ast.NewIndexExpression(expr, index)
			ctx.finish(idx, start)
			expr = idx
		default:
			return expr, nil
		}
	}
}

func (ctx *parseContext) parseArguments() ([]ast.Expression, error) {
	if _, err := ctx.expectPunct("("); err != nil {
		return nil, err
	}
	var args []ast.Expression
	for !ctx.atPunct(")") {
		arg, err := ctx.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !ctx.acceptPunct(",") {
			break
		}
	}
	if _, err := ctx.expectPunct(")"); err != nil {
		return nil, err
	}
	return args, nil
}

func (ctx *parseContext) parsePrimary() (ast.Expression, error) {
	tok := ctx.peek()
	switch tok.Kind {
	case TokenInt:
		ctx.advance()
		val, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			return nil, errorAt(tok.Pos, "integer literal %s out of range", tok.Text)
		}
		lit := ast.NewIntegerLiteral(val)
		ctx.finish(lit, tok.Pos)
		return lit, nil
	case TokenFloat:
		ctx.advance()
		val, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, errorAt(tok.Pos, "invalid float literal %s", tok.Text)
		}
		lit := ast.NewFloatLiteral(val)
		ctx.finish(lit, tok.Pos)
		return lit, nil
	case TokenString:
		ctx.advance()
		lit := ast.NewStringLiteral(tok.Text)
		ctx.finish(lit, tok.Pos)
		return lit, nil
	case TokenIdent:
		return ctx.expectIdent("identifier")
	case TokenKeyword:
		switch tok.Text {
		case "undef":
			ctx.advance()
			lit := ast.NewUndefLiteral()
			ctx.finish(lit, tok.Pos)
			return lit, nil
		case "sub":
			return ctx.parseSubExpression()
		}
	case TokenPunct:
		switch tok.Text {
		case "(":
			ctx.advance()
			expr, err := ctx.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := ctx.expectPunct(")"); err != nil {
				return nil, err
			}
			return expr, nil
		case "[":
			return ctx.parseArrayLiteral()
		}
	}
	return nil, errorAt(tok.Pos, "unexpected %s in expression", describeToken(tok))
}

func (ctx *parseContext) parseArrayLiteral() (ast.Expression, error) {
	start := ctx.advance().Pos
	var elements []ast.Expression
	for !ctx.atPunct("]") {
		el, err := ctx.parseExpression()
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
		if !ctx.acceptPunct(",") {
			break
		}
	}
	if _, err := ctx.expectPunct("]"); err != nil {
		return nil, err
	}
	lit := ast.NewArrayLiteral(elements)
	ctx.finish(lit, start)
	return lit, nil
}

func (ctx *parseContext) parseSubExpression() (ast.Expression, error) {
	start := ctx.advance().Pos
	params, err := ctx.parseParams()
	if err != nil {
		return nil, err
	}
	body, err := ctx.parseBlock()
	if err != nil {
		return nil, err
	}
	expr := ast.NewSubExpression(params, body)
	ctx.finish(expr, start)
	return expr, nil
}
