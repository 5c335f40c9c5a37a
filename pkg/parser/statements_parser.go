package parser

import (
	"kestrel/interpreter-go/pkg/ast"
)

func (ctx *parseContext) parseStatement() (ast.Statement, error) {
	tok := ctx.peek()

	if tok.Kind == TokenIdent && ctx.peekAt(1).Is(TokenPunct, ":") {
		return ctx.parseLabeledStatement()
	}
	if tok.Is(TokenPunct, "{") {
		return ctx.parseBareBlock(nil, tok.Pos)
	}
	if tok.Kind == TokenKeyword {
		switch tok.Text {
		case "sub":
			if ctx.peekAt(1).Kind == TokenIdent {
				return ctx.parseSubroutineDefinition()
			}
		case "while", "until":
			return ctx.parseWhile(nil, tok.Pos)
		case "for":
			return ctx.parseFor(nil, tok.Pos)
		case "foreach":
			return ctx.parseForeach(nil, tok.Pos)
		case "if", "unless":
			return ctx.parseIf()
		}
	}

	stmt, err := ctx.parseSimpleStatement()
	if err != nil {
		return nil, err
	}
	return ctx.parseModifierAndTerminator(stmt, tok.Pos)
}

// parseSimpleStatement covers everything that may take a statement modifier.
func (ctx *parseContext) parseSimpleStatement() (ast.Statement, error) {
	tok := ctx.peek()
	if tok.Kind == TokenKeyword {
		switch tok.Text {
		case "last", "next", "redo":
			ctx.advance()
			var label *ast.Identifier
			if ctx.peek().Kind == TokenIdent {
				label, _ = ctx.expectIdent("label")
			}
			stmt := ast.NewControlFlowStatement(ast.ControlFlowKind(tok.Text), label)
			ctx.finish(stmt, tok.Pos)
			return stmt, nil
		case "goto":
			return ctx.parseGoto()
		case "return":
			ctx.advance()
			var arg ast.Expression
			if !ctx.atStatementEnd() {
				expr, err := ctx.parseExpression()
				if err != nil {
					return nil, err
				}
				arg = expr
			}
			stmt := ast.NewReturnStatement(arg)
			ctx.finish(stmt, tok.Pos)
			return stmt, nil
		}
	}
	return ctx.parseExpression()
}

func (ctx *parseContext) atStatementEnd() bool {
	return ctx.atPunct(";") || ctx.atPunct("}") || ctx.atEOF() || ctx.atKeyword("if") || ctx.atKeyword("unless")
}

func (ctx *parseContext) parseGoto() (ast.Statement, error) {
	start := ctx.advance().Pos
	if ctx.acceptPunct("&") {
		callee, err := ctx.expectIdent("subroutine name after 'goto &'")
		if err != nil {
			return nil, err
		}
		var stmt *ast.TailCallStatement
		if ctx.atPunct("(") {
			args, err := ctx.parseArguments()
			if err != nil {
				return nil, err
			}
			stmt = ast.NewTailCallStatement(callee, args, false)
		} else {
			stmt = ast.NewTailCallStatement(callee, nil, true)
		}
		ctx.finish(stmt, start)
		return stmt, nil
	}
	label, err := ctx.expectIdent("label after 'goto'")
	if err != nil {
		return nil, err
	}
	stmt := ast.NewControlFlowStatement(ast.ControlFlowGoto, label)
	ctx.finish(stmt, start)
	return stmt, nil
}

// parseModifierAndTerminator handles `stmt if cond;` and `stmt unless cond;`.
func (ctx *parseContext) parseModifierAndTerminator(stmt ast.Statement, start ast.Position) (ast.Statement, error) {
	if ctx.atKeyword("if") || ctx.atKeyword("unless") {
		negate := ctx.advance().Text == "unless"
		cond, err := ctx.parseExpression()
		if err != nil {
			return nil, err
		}
		body := ast.NewBlock([]ast.Statement{stmt})
		ast.SetSpan(body, stmt.Span())
		wrapped := ast.NewIfStatement(cond, negate, body, nil, nil)
		ctx.finish(wrapped, start)
		stmt = wrapped
	}
	if ctx.acceptPunct(";") || ctx.atPunct("}") || ctx.atEOF() {
		return stmt, nil
	}
	tok := ctx.peek()
	return nil, errorAt(tok.Pos, "expected ';' after statement, found %s", describeToken(tok))
}

func (ctx *parseContext) parseLabeledStatement() (ast.Statement, error) {
	start := ctx.peek().Pos
	label, err := ctx.expectIdent("label")
	if err != nil {
		return nil, err
	}
	ctx.advance() // ':'
	tok := ctx.peek()
	switch {
	case tok.Is(TokenPunct, "{"):
		return ctx.parseBareBlock(label, start)
	case tok.Is(TokenKeyword, "while"), tok.Is(TokenKeyword, "until"):
		return ctx.parseWhile(label, start)
	case tok.Is(TokenKeyword, "for"):
		return ctx.parseFor(label, start)
	case tok.Is(TokenKeyword, "foreach"):
		return ctx.parseForeach(label, start)
	default:
		return nil, errorAt(tok.Pos, "label %s must precede a loop or block, found %s", label.Name, describeToken(tok))
	}
}

func (ctx *parseContext) parseBlock() (*ast.Block, error) {
	open, err := ctx.expectPunct("{")
	if err != nil {
		return nil, err
	}
	var body []ast.Statement
	for !ctx.atPunct("}") {
		if ctx.atEOF() {
			return nil, errorAt(open.Pos, "unterminated block")
		}
		if ctx.acceptPunct(";") {
			continue
		}
		stmt, err := ctx.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	ctx.advance()
	block := ast.NewBlock(body)
	ctx.finish(block, open.Pos)
	return block, nil
}

func (ctx *parseContext) parseBareBlock(label *ast.Identifier, start ast.Position) (ast.Statement, error) {
	body, err := ctx.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := ast.NewBareBlock(label, body)
	ctx.finish(stmt, start)
	return stmt, nil
}

func (ctx *parseContext) parseCondition() (ast.Expression, error) {
	if _, err := ctx.expectPunct("("); err != nil {
		return nil, err
	}
	cond, err := ctx.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := ctx.expectPunct(")"); err != nil {
		return nil, err
	}
	return cond, nil
}

func (ctx *parseContext) parseWhile(label *ast.Identifier, start ast.Position) (ast.Statement, error) {
	until := ctx.advance().Text == "until"
	cond, err := ctx.parseCondition()
	if err != nil {
		return nil, err
	}
	body, err := ctx.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := ast.NewWhileLoop(label, cond, until, body)
	ctx.finish(stmt, start)
	return stmt, nil
}

func (ctx *parseContext) parseFor(label *ast.Identifier, start ast.Position) (ast.Statement, error) {
	ctx.advance()
	// `for my x (list)` is accepted as a foreach spelling.
	if ctx.atKeyword("my") {
		return ctx.parseForeachTail(label, start)
	}
	if _, err := ctx.expectPunct("("); err != nil {
		return nil, err
	}
	var init ast.Statement
	if !ctx.atPunct(";") {
		expr, err := ctx.parseExpression()
		if err != nil {
			return nil, err
		}
		init = expr
	}
	if _, err := ctx.expectPunct(";"); err != nil {
		return nil, err
	}
	var cond ast.Expression
	if !ctx.atPunct(";") {
		expr, err := ctx.parseExpression()
		if err != nil {
			return nil, err
		}
		cond = expr
	}
	if _, err := ctx.expectPunct(";"); err != nil {
		return nil, err
	}
	var step ast.Expression
	if !ctx.atPunct(")") {
		expr, err := ctx.parseExpression()
		if err != nil {
			return nil, err
		}
		step = expr
	}
	if _, err := ctx.expectPunct(")"); err != nil {
		return nil, err
	}
	body, err := ctx.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := ast.NewForLoop(label, init, cond, step, body)
	ctx.finish(stmt, start)
	return stmt, nil
}

func (ctx *parseContext) parseForeach(label *ast.Identifier, start ast.Position) (ast.Statement, error) {
	ctx.advance()
	return ctx.parseForeachTail(label, start)
}

func (ctx *parseContext) parseForeachTail(label *ast.Identifier, start ast.Position) (ast.Statement, error) {
	if _, err := ctx.expectKeyword("my"); err != nil {
		return nil, err
	}
	variable, err := ctx.expectIdent("loop variable")
	if err != nil {
		return nil, err
	}
	iterable, err := ctx.parseCondition()
	if err != nil {
		return nil, err
	}
	body, err := ctx.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := ast.NewForeachLoop(label, variable, iterable, body)
	ctx.finish(stmt, start)
	return stmt, nil
}

func (ctx *parseContext) parseIf() (ast.Statement, error) {
	start := ctx.peek().Pos
	negate := ctx.advance().Text == "unless"
	cond, err := ctx.parseCondition()
	if err != nil {
		return nil, err
	}
	then, err := ctx.parseBlock()
	if err != nil {
		return nil, err
	}
	var elseIfs []*ast.ElseIfClause
	for ctx.acceptKeyword("elsif") {
		c, err := ctx.parseCondition()
		if err != nil {
			return nil, err
		}
		b, err := ctx.parseBlock()
		if err != nil {
			return nil, err
		}
		elseIfs = append(elseIfs, &ast.ElseIfClause{Condition: c, Body: b})
	}
	var elseBody *ast.Block
	if ctx.acceptKeyword("else") {
		elseBody, err = ctx.parseBlock()
		if err != nil {
			return nil, err
		}
	}
	stmt := ast.NewIfStatement(cond, negate, then, elseIfs, elseBody)
	ctx.finish(stmt, start)
	return stmt, nil
}

func (ctx *parseContext) parseSubroutineDefinition() (ast.Statement, error) {
	start := ctx.advance().Pos
	name, err := ctx.expectIdent("subroutine name")
	if err != nil {
		return nil, err
	}
	params, err := ctx.parseParams()
	if err != nil {
		return nil, err
	}
	body, err := ctx.parseBlock()
	if err != nil {
		return nil, err
	}
	def := ast.NewSubroutineDefinition(name, params, body)
	ctx.finish(def, start)
	return def, nil
}

// parseParams reads an optional `(a, b)` list.
func (ctx *parseContext) parseParams() ([]*ast.Identifier, error) {
	if !ctx.acceptPunct("(") {
		return nil, nil
	}
	var params []*ast.Identifier
	for !ctx.atPunct(")") {
		id, err := ctx.expectIdent("parameter name")
		if err != nil {
			return nil, err
		}
		params = append(params, id)
		if !ctx.acceptPunct(",") {
			break
		}
	}
	if _, err := ctx.expectPunct(")"); err != nil {
		return nil, err
	}
	return params, nil
}
