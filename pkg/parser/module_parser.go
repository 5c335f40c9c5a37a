package parser

import (
	"kestrel/interpreter-go/pkg/ast"
)

// ModuleParser turns Kestrel source into an *ast.Module.
type ModuleParser struct {
	origin string
}

// NewModuleParser constructs a parser. Origin, when set, prefixes error
// locations.
func NewModuleParser() (*ModuleParser, error) {
	return &ModuleParser{}, nil
}

// WithOrigin records the file name used in diagnostics.
func (p *ModuleParser) WithOrigin(origin string) *ModuleParser {
	p.origin = origin
	return p
}

// Close releases parser resources.
func (p *ModuleParser) Close() {}

// ParseModule parses a complete source file.
func (p *ModuleParser) ParseModule(source []byte) (*ast.Module, error) {
	tokens, err := Tokenize(string(source))
	if err != nil {
		return nil, p.withOrigin(err)
	}
	ctx := &parseContext{tokens: tokens}
	var body []ast.Statement
	for !ctx.atEOF() {
		if ctx.acceptPunct(";") {
			continue
		}
		stmt, err := ctx.parseStatement()
		if err != nil {
			return nil, p.withOrigin(err)
		}
		body = append(body, stmt)
	}
	mod := ast.NewModule(body)
	if len(tokens) > 0 {
		ast.SetSpan(mod, ast.Span{Start: tokens[0].Pos, End: tokens[len(tokens)-1].End})
	}
	return mod, nil
}

func (p *ModuleParser) withOrigin(err error) error {
	if perr, ok := err.(*ParseError); ok && p.origin != "" {
		perr.Origin = p.origin
	}
	return err
}

// parseContext is a cursor over the token stream.
type parseContext struct {
	tokens []Token
	pos    int
}

func (ctx *parseContext) peek() Token {
	return ctx.tokens[ctx.pos]
}

func (ctx *parseContext) peekAt(offset int) Token {
	idx := ctx.pos + offset
	if idx >= len(ctx.tokens) {
		return ctx.tokens[len(ctx.tokens)-1]
	}
	return ctx.tokens[idx]
}

func (ctx *parseContext) advance() Token {
	tok := ctx.tokens[ctx.pos]
	if tok.Kind != TokenEOF {
		ctx.pos++
	}
	return tok
}

func (ctx *parseContext) prevEnd() ast.Position {
	if ctx.pos == 0 {
		return ctx.tokens[0].Pos
	}
	return ctx.tokens[ctx.pos-1].End
}

func (ctx *parseContext) atEOF() bool {
	return ctx.peek().Kind == TokenEOF
}

func (ctx *parseContext) atPunct(text string) bool {
	return ctx.peek().Is(TokenPunct, text)
}

func (ctx *parseContext) atKeyword(text string) bool {
	return ctx.peek().Is(TokenKeyword, text)
}

func (ctx *parseContext) acceptPunct(text string) bool {
	if ctx.atPunct(text) {
		ctx.advance()
		return true
	}
	return false
}

func (ctx *parseContext) acceptKeyword(text string) bool {
	if ctx.atKeyword(text) {
		ctx.advance()
		return true
	}
	return false
}

func (ctx *parseContext) expectPunct(text string) (Token, error) {
	tok := ctx.peek()
	if !tok.Is(TokenPunct, text) {
		return tok, errorAt(tok.Pos, "expected %q, found %s", text, describeToken(tok))
	}
	return ctx.advance(), nil
}

func (ctx *parseContext) expectKeyword(text string) (Token, error) {
	tok := ctx.peek()
	if !tok.Is(TokenKeyword, text) {
		return tok, errorAt(tok.Pos, "expected %q, found %s", text, describeToken(tok))
	}
	return ctx.advance(), nil
}

func (ctx *parseContext) expectIdent(what string) (*ast.Identifier, error) {
	tok := ctx.peek()
	if tok.Kind != TokenIdent {
		return nil, errorAt(tok.Pos, "expected %s, found %s", what, describeToken(tok))
	}
	ctx.advance()
	id := ast.NewIdentifier(tok.Text)
	ast.SetSpan(id, ast.Span{Start: tok.Pos, End: tok.End})
	return id, nil
}

func (ctx *parseContext) finish(node ast.Node, start ast.Position) {
	ast.SetSpan(node, ast.Span{Start: start, End: ctx.prevEnd()})
}
