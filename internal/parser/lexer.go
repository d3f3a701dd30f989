package parser

import (
	"fmt"
	"unicode/utf8"

	"github.com/scintirete/protodts/internal/schema"
)

type TokenKind uint8

const (
	TokenEOF TokenKind = iota
	TokenIllegal

	TokenIdent
	TokenInt
	TokenString

	TokenLBrace
	TokenRBrace
	TokenLParen
	TokenRParen
	TokenLBracket
	TokenRBracket
	TokenLAngle
	TokenRAngle
	TokenEq
	TokenSemi
	TokenComma
	TokenDot
)

func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "EOF"
	case TokenIllegal:
		return "ILLEGAL"
	case TokenIdent:
		return "IDENT"
	case TokenInt:
		return "INT"
	case TokenString:
		return "STRING"
	case TokenLBrace:
		return "'{'"
	case TokenRBrace:
		return "'}'"
	case TokenLParen:
		return "'('"
	case TokenRParen:
		return "')'"
	case TokenLBracket:
		return "'['"
	case TokenRBracket:
		return "']'"
	case TokenLAngle:
		return "'<'"
	case TokenRAngle:
		return "'>'"
	case TokenEq:
		return "'='"
	case TokenSemi:
		return "';'"
	case TokenComma:
		return "','"
	case TokenDot:
		return "'.'"
	default:
		return fmt.Sprintf("TokenKind(%d)", uint8(k))
	}
}

var punctuation = map[byte]TokenKind{
	'{': TokenLBrace,
	'}': TokenRBrace,
	'(': TokenLParen,
	')': TokenRParen,
	'[': TokenLBracket,
	']': TokenRBracket,
	'<': TokenLAngle,
	'>': TokenRAngle,
	'=': TokenEq,
	';': TokenSemi,
	',': TokenComma,
	'.': TokenDot,
}

// Token is a lexical unit. Text is the exact source slice of the token.
type Token struct {
	Kind TokenKind
	Text string
	Pos  schema.Pos
}

// Lexer splits schema source into tokens. Whitespace and comments are
// dropped. It never fails: bytes it cannot classify become TokenIllegal.
type Lexer struct {
	src    []byte
	offset int
	line   int
	column int
}

func NewLexer(src []byte) *Lexer {
	return &Lexer{
		src:    src,
		line:   1,
		column: 1,
	}
}

// Next returns the next token, or a TokenEOF token once the source is
// exhausted.
func (l *Lexer) Next() Token {
	l.skipSpaceAndComments()
	if l.offset >= len(l.src) {
		return Token{Kind: TokenEOF, Pos: l.pos()}
	}

	start := l.offset
	pos := l.pos()
	c := l.src[l.offset]

	if kind, ok := punctuation[c]; ok {
		l.advance(1)
		return Token{Kind: kind, Text: string(c), Pos: pos}
	}

	switch {
	case isIdentStart(c):
		l.advance(1)
		for l.offset < len(l.src) && isIdentPart(l.src[l.offset]) {
			l.advance(1)
		}
		return Token{Kind: TokenIdent, Text: string(l.src[start:l.offset]), Pos: pos}
	case isDigit(c) || (c == '-' && l.offset+1 < len(l.src) && isDigit(l.src[l.offset+1])):
		return l.nextInt(start, pos)
	case c == '"' || c == '\'':
		return l.nextString(start, pos, c)
	}

	_, size := utf8.DecodeRune(l.src[l.offset:])
	l.advance(size)
	return Token{Kind: TokenIllegal, Text: string(l.src[start:l.offset]), Pos: pos}
}

// Tokenize returns every token of src, ending with a TokenEOF token.
func Tokenize(src []byte) []Token {
	lexer := NewLexer(src)
	var tokens []Token
	for {
		tok := lexer.Next()
		tokens = append(tokens, tok)
		if tok.Kind == TokenEOF {
			return tokens
		}
	}
}

func (l *Lexer) nextInt(start int, pos schema.Pos) Token {
	if l.src[l.offset] == '-' {
		l.advance(1)
	}
	if l.hasPrefix("0x") || l.hasPrefix("0X") {
		l.advance(2)
		for l.offset < len(l.src) && isHexDigit(l.src[l.offset]) {
			l.advance(1)
		}
	} else {
		for l.offset < len(l.src) && isDigit(l.src[l.offset]) {
			l.advance(1)
		}
	}
	// 12abc is a single malformed token, not an int followed by an ident.
	if l.offset < len(l.src) && isIdentPart(l.src[l.offset]) {
		for l.offset < len(l.src) && isIdentPart(l.src[l.offset]) {
			l.advance(1)
		}
		return Token{Kind: TokenIllegal, Text: string(l.src[start:l.offset]), Pos: pos}
	}
	return Token{Kind: TokenInt, Text: string(l.src[start:l.offset]), Pos: pos}
}

func (l *Lexer) nextString(start int, pos schema.Pos, quote byte) Token {
	l.advance(1)
	escaped := false
	for l.offset < len(l.src) {
		c := l.src[l.offset]
		if c == '\n' {
			break
		}
		l.advance(1)
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if c == quote {
			return Token{Kind: TokenString, Text: string(l.src[start:l.offset]), Pos: pos}
		}
	}
	return Token{Kind: TokenIllegal, Text: string(l.src[start:l.offset]), Pos: pos}
}

func (l *Lexer) skipSpaceAndComments() {
	for l.offset < len(l.src) {
		c := l.src[l.offset]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == '\v':
			l.advance(1)
		case l.hasPrefix("//"):
			for l.offset < len(l.src) && l.src[l.offset] != '\n' {
				l.advance(1)
			}
		case l.hasPrefix("/*"):
			l.advance(2)
			for l.offset < len(l.src) && !l.hasPrefix("*/") {
				l.advance(1)
			}
			if l.offset < len(l.src) {
				l.advance(2)
			}
		default:
			return
		}
	}
}

func (l *Lexer) advance(n int) {
	for i := 0; i < n && l.offset < len(l.src); i++ {
		c := l.src[l.offset]
		l.offset++
		if c == '\n' {
			l.line++
			l.column = 1
		} else if c&0xC0 != 0x80 {
			l.column++
		}
	}
}

func (l *Lexer) hasPrefix(prefix string) bool {
	return len(l.src)-l.offset >= len(prefix) && string(l.src[l.offset:l.offset+len(prefix)]) == prefix
}

func (l *Lexer) pos() schema.Pos {
	return schema.Pos{Line: l.line, Column: l.column}
}

func isIdentStart(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '_'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
