package parser

import (
	"strings"
	"unicode"

	"kestrel/interpreter-go/pkg/ast"
)

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenIdent
	TokenKeyword
	TokenInt
	TokenFloat
	TokenString
	TokenPunct
)

func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "EOF"
	case TokenIdent:
		return "identifier"
	case TokenKeyword:
		return "keyword"
	case TokenInt:
		return "integer"
	case TokenFloat:
		return "float"
	case TokenString:
		return "string"
	case TokenPunct:
		return "punctuation"
	default:
		return "unknown"
	}
}

type Token struct {
	Kind TokenKind
	Text string
	Pos  ast.Position
	End  ast.Position
}

func (t Token) Is(kind TokenKind, text string) bool {
	return t.Kind == kind && t.Text == text
}

var keywords = map[string]struct{}{
	"sub": {}, "my": {}, "return": {}, "if": {}, "elsif": {}, "else": {}, "unless": {},
	"while": {}, "until": {}, "for": {}, "foreach": {},
	"last": {}, "next": {}, "redo": {}, "goto": {}, "undef": {},
}

// Longest operators first.
var punctuators = []string{
	"..", "==", "!=", "<=", ">=", "&&", "||", "+=", "-=", ".=",
	"(", ")", "{", "}", "[", "]", ";", ",", ":",
	"+", "-", "*", "/", "%", ".", "<", ">", "!", "=", "&",
}

type lexer struct {
	src  []rune
	pos  int
	line int
	col  int
}

// Tokenize splits source into tokens, ending with a TokenEOF.
func Tokenize(source string) ([]Token, error) {
	lx := &lexer{src: []rune(source), line: 1, col: 1}
	var tokens []Token
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == TokenEOF {
			return tokens, nil
		}
	}
}

func (lx *lexer) position() ast.Position {
	return ast.Position{Line: lx.line, Column: lx.col}
}

func (lx *lexer) peekRune(offset int) rune {
	idx := lx.pos + offset
	if idx >= len(lx.src) {
		return 0
	}
	return lx.src[idx]
}

func (lx *lexer) advance() rune {
	r := lx.src[lx.pos]
	lx.pos++
	if r == '\n' {
		lx.line++
		lx.col = 1
	} else {
		lx.col++
	}
	return r
}

func (lx *lexer) skipSpaceAndComments() {
	for lx.pos < len(lx.src) {
		r := lx.src[lx.pos]
		switch {
		case unicode.IsSpace(r):
			lx.advance()
		case r == '#':
			for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
				lx.advance()
			}
		default:
			return
		}
	}
}

func (lx *lexer) next() (Token, error) {
	lx.skipSpaceAndComments()
	start := lx.position()
	if lx.pos >= len(lx.src) {
		return Token{Kind: TokenEOF, Pos: start, End: start}, nil
	}
	r := lx.src[lx.pos]
	switch {
	case r == '_' || unicode.IsLetter(r):
		return lx.lexWord(start), nil
	case unicode.IsDigit(r):
		return lx.lexNumber(start), nil
	case r == '"' || r == '\'':
		return lx.lexString(start, r)
	}
	for _, p := range punctuators {
		if lx.hasPrefix(p) {
			for range p {
				lx.advance()
			}
			return Token{Kind: TokenPunct, Text: p, Pos: start, End: lx.position()}, nil
		}
	}
	return Token{}, errorAt(start, "unexpected character %q", r)
}

func (lx *lexer) hasPrefix(p string) bool {
	i := 0
	for _, r := range p {
		if lx.peekRune(i) != r {
			return false
		}
		i++
	}
	return true
}

func (lx *lexer) lexWord(start ast.Position) Token {
	var sb strings.Builder
	for lx.pos < len(lx.src) {
		r := lx.src[lx.pos]
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		sb.WriteRune(lx.advance())
	}
	text := sb.String()
	kind := TokenIdent
	if _, ok := keywords[text]; ok {
		kind = TokenKeyword
	}
	return Token{Kind: kind, Text: text, Pos: start, End: lx.position()}
}

func (lx *lexer) lexNumber(start ast.Position) Token {
	var sb strings.Builder
	kind := TokenInt
	for lx.pos < len(lx.src) && (unicode.IsDigit(lx.src[lx.pos]) || lx.src[lx.pos] == '_') {
		r := lx.advance()
		if r != '_' {
			sb.WriteRune(r)
		}
	}
	// `1..5` is a range, not a float.
	if lx.peekRune(0) == '.' && unicode.IsDigit(lx.peekRune(1)) {
		kind = TokenFloat
		sb.WriteRune(lx.advance())
		for lx.pos < len(lx.src) && unicode.IsDigit(lx.src[lx.pos]) {
			sb.WriteRune(lx.advance())
		}
	}
	return Token{Kind: kind, Text: sb.String(), Pos: start, End: lx.position()}
}

func (lx *lexer) lexString(start ast.Position, quote rune) (Token, error) {
	lx.advance()
	var sb strings.Builder
	for {
		if lx.pos >= len(lx.src) {
			return Token{}, errorAt(start, "unterminated string literal")
		}
		r := lx.advance()
		if r == quote {
			break
		}
		if r == '\\' && lx.pos < len(lx.src) {
			esc := lx.advance()
			switch esc {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case '\\', '"', '\'':
				sb.WriteRune(esc)
			default:
				sb.WriteRune('\\')
				sb.WriteRune(esc)
			}
			continue
		}
		sb.WriteRune(r)
	}
	return Token{Kind: TokenString, Text: sb.String(), Pos: start, End: lx.position()}, nil
}
