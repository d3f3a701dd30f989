// Package parser reads the supported schema subset (top-level enums,
// messages and services with unary rpcs) into a schema.Model.
//
// Parsing is permissive. A construct that does not match the expected shape
// is left out of the model and reported as a Diagnostic instead of failing
// the whole parse; callers decide whether diagnostics are fatal.
package parser

import (
	"errors"
	"strconv"
	"strings"

	"github.com/scintirete/protodts/internal/schema"
)

// Result is the outcome of a parse: the model of every construct that
// matched, plus a diagnostic for every construct that was skipped.
type Result struct {
	Model   *schema.Model
	Skipped []Diagnostic
}

// Err joins the skipped diagnostics into a single error, or returns nil when
// nothing was skipped.
func (r *Result) Err() error {
	if len(r.Skipped) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Skipped))
	for _, d := range r.Skipped {
		errs = append(errs, d)
	}
	return errors.Join(errs...)
}

// Parse never fails. Unmatched constructs end up in Result.Skipped.
func Parse(src []byte) *Result {
	p := &parser{
		tokens: Tokenize(src),
		model:  &schema.Model{},
	}
	p.limit = len(p.tokens) - 1
	p.parseFile()
	return &Result{Model: p.model, Skipped: p.skipped}
}

// ParseStrict is Parse with every skipped construct turned into an error.
// The partial model is returned alongside the error.
func ParseStrict(src []byte) (*schema.Model, error) {
	res := Parse(src)
	return res.Model, res.Err()
}

const (
	kwEnum    = "enum"
	kwMessage = "message"
	kwService = "service"
	kwRPC     = "rpc"
	kwReturns = "returns"
	kwStream  = "stream"
)

// Statements accepted and dropped without a diagnostic.
var ignoredTopLevel = map[string]bool{
	"syntax":  true,
	"edition": true,
	"package": true,
	"import":  true,
	"option":  true,
}

var ignoredMember = map[string]bool{
	"option":     true,
	"reserved":   true,
	"extensions": true,
}

var nestedKeywords = map[string]bool{
	kwEnum:    true,
	kwMessage: true,
	"oneof":   true,
	"extend":  true,
	kwService: true,
}

var labels = map[string]schema.Cardinality{
	"required": schema.Required,
	"optional": schema.Optional,
	"repeated": schema.Repeated,
}

type parser struct {
	tokens  []Token
	pos     int
	limit   int // index of the token that ends the current scope
	model   *schema.Model
	skipped []Diagnostic
}

func (p *parser) parseFile() {
	for !p.done() {
		tok := p.peek()
		if tok.Kind == TokenSemi {
			p.pos++
			continue
		}
		if tok.Kind == TokenIdent {
			switch tok.Text {
			case kwEnum:
				if enum, ok := p.parseEnum(); ok {
					p.model.Enums = append(p.model.Enums, enum)
				}
				continue
			case kwMessage:
				if msg, ok := p.parseMessage(); ok {
					p.model.Messages = append(p.model.Messages, msg)
				}
				continue
			case kwService:
				if svc, ok := p.parseService(); ok {
					p.model.Services = append(p.model.Services, svc)
				}
				continue
			}
			if ignoredTopLevel[tok.Text] {
				p.skipStatement()
				continue
			}
		}
		p.skip(tok.Pos, "declaration", tok.Text, "unsupported top-level construct")
		p.skipConstruct(true)
	}
}

// parseHeader reads `<keyword> <Name> {` and locates the matching brace. On
// success the parser is positioned on the first body token and the index of
// the closing brace is returned.
func (p *parser) parseHeader(kind string) (string, schema.Pos, int, bool) {
	kw := p.next()
	name, ok := p.ident()
	if !ok {
		p.skip(kw.Pos, kind, "", "missing name")
		p.skipConstruct(true)
		return "", kw.Pos, 0, false
	}
	if p.peek().Kind != TokenLBrace {
		p.skip(kw.Pos, kind, name, "expected '{' after name, found "+p.describe(p.peek()))
		p.skipConstruct(true)
		return "", kw.Pos, 0, false
	}
	closing := p.matchingBrace(p.pos)
	p.pos++
	if closing < 0 {
		// Resume right after the opening brace so declarations written
		// after an unclosed block are still found.
		p.skip(kw.Pos, kind, name, "unterminated block")
		return "", kw.Pos, 0, false
	}
	return name, kw.Pos, closing, true
}

func (p *parser) parseEnum() (schema.Enum, bool) {
	name, pos, closing, ok := p.parseHeader(kwEnum)
	if !ok {
		return schema.Enum{}, false
	}
	enum := schema.Enum{Name: name, Pos: pos}
	p.body(closing, func() {
		if value, ok := p.parseEnumValue(name); ok {
			enum.Values = append(enum.Values, value)
		}
	})
	return enum, true
}

func (p *parser) parseEnumValue(enumName string) (schema.EnumValue, bool) {
	start := p.peek()
	valueName, ok := p.ident()
	if !ok {
		return schema.EnumValue{}, p.skipMember(start, "enum value", enumName, "expected value name")
	}
	if !p.accept(TokenEq) {
		return schema.EnumValue{}, p.skipMember(start, "enum value", enumName+"."+valueName, "expected '='")
	}
	number, ok := p.integer()
	if !ok {
		return schema.EnumValue{}, p.skipMember(start, "enum value", enumName+"."+valueName, "expected integer value")
	}
	if !p.optionsAndSemi() {
		return schema.EnumValue{}, p.skipMember(start, "enum value", enumName+"."+valueName, "expected ';'")
	}
	return schema.EnumValue{Name: valueName, Number: number}, true
}

func (p *parser) parseMessage() (schema.Message, bool) {
	name, pos, closing, ok := p.parseHeader(kwMessage)
	if !ok {
		return schema.Message{}, false
	}
	msg := schema.Message{Name: name, Pos: pos}
	p.body(closing, func() {
		if field, ok := p.parseField(name); ok {
			msg.Fields = append(msg.Fields, field)
		}
	})
	return msg, true
}

func (p *parser) parseField(msgName string) (schema.Field, bool) {
	start := p.peek()
	if start.Kind == TokenIdent && start.Text == "map" && p.peekAt(1).Kind == TokenLAngle {
		return schema.Field{}, p.skipMember(start, "field", msgName, "map fields are not supported")
	}

	field := schema.Field{Cardinality: schema.Required}
	if start.Kind == TokenIdent {
		if card, ok := labels[start.Text]; ok {
			field.Cardinality = card
			p.pos++
		}
	}

	typ, ok := p.typeName()
	if !ok {
		return schema.Field{}, p.skipMember(start, "field", msgName, "expected field type")
	}
	field.Type = typ

	name, ok := p.ident()
	if !ok {
		return schema.Field{}, p.skipMember(start, "field", msgName, "expected field name")
	}
	field.Name = name
	qualified := msgName + "." + name

	if !p.accept(TokenEq) {
		return schema.Field{}, p.skipMember(start, "field", qualified, "expected '='")
	}
	number, ok := p.integer()
	if !ok || number <= 0 {
		return schema.Field{}, p.skipMember(start, "field", qualified, "expected positive field number")
	}
	field.Number = number

	if !p.optionsAndSemi() {
		return schema.Field{}, p.skipMember(start, "field", qualified, "expected ';'")
	}
	return field, true
}

func (p *parser) parseService() (schema.Service, bool) {
	name, pos, closing, ok := p.parseHeader(kwService)
	if !ok {
		return schema.Service{}, false
	}
	svc := schema.Service{Name: name, Pos: pos}
	p.body(closing, func() {
		if method, ok := p.parseRPC(name); ok {
			svc.Methods = append(svc.Methods, method)
		}
	})
	return svc, true
}

func (p *parser) parseRPC(svcName string) (schema.Method, bool) {
	start := p.peek()
	if start.Kind != TokenIdent || start.Text != kwRPC {
		return schema.Method{}, p.skipMember(start, "rpc", svcName, "expected 'rpc'")
	}
	p.pos++

	name, ok := p.ident()
	if !ok {
		return schema.Method{}, p.skipMember(start, "rpc", svcName, "expected method name")
	}
	qualified := svcName + "." + name

	req, reason := p.rpcType()
	if reason != "" {
		return schema.Method{}, p.skipMember(start, "rpc", qualified, "request: "+reason)
	}
	if tok := p.peek(); tok.Kind != TokenIdent || tok.Text != kwReturns {
		return schema.Method{}, p.skipMember(start, "rpc", qualified, "expected 'returns'")
	}
	p.pos++
	resp, reason := p.rpcType()
	if reason != "" {
		return schema.Method{}, p.skipMember(start, "rpc", qualified, "response: "+reason)
	}

	switch p.peek().Kind {
	case TokenSemi:
		p.pos++
	case TokenLBrace:
		// Option body: { option (...) = ...; }
		closing := p.matchingBrace(p.pos)
		if closing < 0 || closing > p.limit {
			return schema.Method{}, p.skipMember(start, "rpc", qualified, "unterminated option body")
		}
		p.pos = closing + 1
		p.accept(TokenSemi)
	default:
		return schema.Method{}, p.skipMember(start, "rpc", qualified, "expected ';'")
	}

	return schema.Method{Name: name, RequestType: req, ResponseType: resp}, true
}

// rpcType reads `( Type )`. The returned reason is empty on success.
func (p *parser) rpcType() (string, string) {
	if !p.accept(TokenLParen) {
		return "", "expected '('"
	}
	if tok := p.peek(); tok.Kind == TokenIdent && tok.Text == kwStream && p.peekAt(1).Kind == TokenIdent {
		return "", "streaming is not supported"
	}
	typ, ok := p.typeName()
	if !ok {
		return "", "expected type name"
	}
	if !p.accept(TokenRParen) {
		return "", "expected ')'"
	}
	return typ, ""
}

// body runs member for each member of a block whose closing brace is at
// index closing, then moves past the brace. Members that open a nested
// block or start with an ignored keyword are handled here.
func (p *parser) body(closing int, member func()) {
	outer := p.limit
	p.limit = closing
	for !p.done() {
		tok := p.peek()
		switch {
		case tok.Kind == TokenSemi:
			p.pos++
		case tok.Kind == TokenIdent && ignoredMember[tok.Text]:
			p.skipStatement()
		case tok.Kind == TokenIdent && nestedKeywords[tok.Text] && p.peekAt(1).Kind == TokenIdent:
			p.skipMember(tok, "declaration", p.peekAt(1).Text, "nested "+tok.Text+" is not supported")
		default:
			before := p.pos
			member()
			if p.pos == before {
				p.pos++
			}
		}
	}
	p.limit = outer
	p.pos = closing + 1
}

// skipMember records a diagnostic and moves past the rest of a member: up to
// and including the next ';' or a whole nested block. It always reports
// false so callers can return it as the ok value.
func (p *parser) skipMember(start Token, kind, name, reason string) bool {
	p.skip(start.Pos, kind, name, reason)
	p.skipConstruct(false)
	return false
}

// skipConstruct consumes tokens up to and including a ';' or a balanced
// block. At top level it stops before a declaration keyword so a stray token
// cannot swallow the declaration that follows it. An unterminated block only
// consumes its opening brace.
func (p *parser) skipConstruct(topLevel bool) {
	for !p.done() {
		tok := p.peek()
		switch tok.Kind {
		case TokenSemi:
			p.pos++
			return
		case TokenLBrace:
			closing := p.matchingBrace(p.pos)
			if closing < 0 || closing > p.limit {
				p.pos++
				return
			}
			p.pos = closing + 1
			return
		case TokenRBrace:
			// Stray closing brace.
			p.pos++
			return
		case TokenIdent:
			if topLevel && (tok.Text == kwEnum || tok.Text == kwMessage || tok.Text == kwService) {
				return
			}
		}
		p.pos++
	}
}

// skipStatement consumes an ignored statement such as `option x = 1;`.
func (p *parser) skipStatement() {
	for !p.done() {
		tok := p.next()
		if tok.Kind == TokenSemi {
			return
		}
		if tok.Kind == TokenLBrace {
			p.pos--
			p.skipConstruct(false)
			return
		}
	}
}

// optionsAndSemi accepts an optional `[ ... ]` option list followed by ';'.
func (p *parser) optionsAndSemi() bool {
	if p.peek().Kind == TokenLBracket {
		depth := 0
		for !p.done() {
			tok := p.next()
			if tok.Kind == TokenLBracket {
				depth++
			} else if tok.Kind == TokenRBracket {
				depth--
				if depth == 0 {
					break
				}
			} else if tok.Kind == TokenSemi || tok.Kind == TokenLBrace || tok.Kind == TokenRBrace {
				p.pos--
				return false
			}
		}
		if depth != 0 {
			return false
		}
	}
	return p.accept(TokenSemi)
}

// typeName reads an identifier or a dotted qualified identifier with an
// optional leading dot, such as google.protobuf.Struct.
func (p *parser) typeName() (string, bool) {
	var b strings.Builder
	if p.peek().Kind == TokenDot {
		p.pos++
		b.WriteByte('.')
	}
	part, ok := p.ident()
	if !ok {
		return "", false
	}
	b.WriteString(part)
	for p.peek().Kind == TokenDot && p.peekAt(1).Kind == TokenIdent {
		p.pos++
		b.WriteByte('.')
		b.WriteString(p.next().Text)
	}
	return b.String(), true
}

func (p *parser) ident() (string, bool) {
	tok := p.peek()
	if tok.Kind != TokenIdent {
		return "", false
	}
	p.pos++
	return tok.Text, true
}

func (p *parser) integer() (int, bool) {
	tok := p.peek()
	if tok.Kind != TokenInt {
		return 0, false
	}
	n, err := strconv.ParseInt(tok.Text, 0, 64)
	if err != nil {
		return 0, false
	}
	p.pos++
	return int(n), true
}

func (p *parser) accept(kind TokenKind) bool {
	if p.peek().Kind != kind {
		return false
	}
	p.pos++
	return true
}

// matchingBrace returns the index of the '}' closing the '{' at open, or -1
// when the source ends first.
func (p *parser) matchingBrace(open int) int {
	depth := 0
	for i := open; i < len(p.tokens); i++ {
		switch p.tokens[i].Kind {
		case TokenLBrace:
			depth++
		case TokenRBrace:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func (p *parser) done() bool {
	return p.pos >= p.limit
}

// peek returns the current token, or EOF past the scope limit.
func (p *parser) peek() Token {
	return p.peekAt(0)
}

func (p *parser) peekAt(n int) Token {
	i := p.pos + n
	if i >= p.limit {
		return Token{Kind: TokenEOF, Pos: p.tokens[p.limit].Pos}
	}
	return p.tokens[i]
}

func (p *parser) next() Token {
	tok := p.peek()
	if p.pos < p.limit {
		p.pos++
	}
	return tok
}

func (p *parser) describe(tok Token) string {
	if tok.Kind == TokenIdent || tok.Kind == TokenInt || tok.Kind == TokenIllegal {
		return strconv.Quote(tok.Text)
	}
	return tok.Kind.String()
}

func (p *parser) skip(pos schema.Pos, kind, name, reason string) {
	p.skipped = append(p.skipped, Diagnostic{
		Pos:    pos,
		Kind:   kind,
		Name:   name,
		Reason: reason,
	})
}
