package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/scintirete/protodts/internal/schema"
)

func TestTokenize(t *testing.T) {
	t.Parallel()

	src := "message Foo {\n  repeated .a.B x = 0x1F; // tail\n  /* c */ int32 y = -2 [d = \"s\"];\n}"
	want := []Token{
		{Kind: TokenIdent, Text: "message", Pos: schema.Pos{Line: 1, Column: 1}},
		{Kind: TokenIdent, Text: "Foo", Pos: schema.Pos{Line: 1, Column: 9}},
		{Kind: TokenLBrace, Text: "{", Pos: schema.Pos{Line: 1, Column: 13}},
		{Kind: TokenIdent, Text: "repeated", Pos: schema.Pos{Line: 2, Column: 3}},
		{Kind: TokenDot, Text: ".", Pos: schema.Pos{Line: 2, Column: 12}},
		{Kind: TokenIdent, Text: "a", Pos: schema.Pos{Line: 2, Column: 13}},
		{Kind: TokenDot, Text: ".", Pos: schema.Pos{Line: 2, Column: 14}},
		{Kind: TokenIdent, Text: "B", Pos: schema.Pos{Line: 2, Column: 15}},
		{Kind: TokenIdent, Text: "x", Pos: schema.Pos{Line: 2, Column: 17}},
		{Kind: TokenEq, Text: "=", Pos: schema.Pos{Line: 2, Column: 19}},
		{Kind: TokenInt, Text: "0x1F", Pos: schema.Pos{Line: 2, Column: 21}},
		{Kind: TokenSemi, Text: ";", Pos: schema.Pos{Line: 2, Column: 25}},
		{Kind: TokenIdent, Text: "int32", Pos: schema.Pos{Line: 3, Column: 11}},
		{Kind: TokenIdent, Text: "y", Pos: schema.Pos{Line: 3, Column: 17}},
		{Kind: TokenEq, Text: "=", Pos: schema.Pos{Line: 3, Column: 19}},
		{Kind: TokenInt, Text: "-2", Pos: schema.Pos{Line: 3, Column: 21}},
		{Kind: TokenLBracket, Text: "[", Pos: schema.Pos{Line: 3, Column: 24}},
		{Kind: TokenIdent, Text: "d", Pos: schema.Pos{Line: 3, Column: 25}},
		{Kind: TokenEq, Text: "=", Pos: schema.Pos{Line: 3, Column: 27}},
		{Kind: TokenString, Text: "\"s\"", Pos: schema.Pos{Line: 3, Column: 29}},
		{Kind: TokenRBracket, Text: "]", Pos: schema.Pos{Line: 3, Column: 32}},
		{Kind: TokenSemi, Text: ";", Pos: schema.Pos{Line: 3, Column: 33}},
		{Kind: TokenRBrace, Text: "}", Pos: schema.Pos{Line: 4, Column: 1}},
		{Kind: TokenEOF, Pos: schema.Pos{Line: 4, Column: 2}},
	}

	if diff := cmp.Diff(want, Tokenize([]byte(src))); diff != "" {
		t.Errorf("Tokenize mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenizeIllegal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []TokenKind
	}{
		{"DigitsThenLetters", "12abc", []TokenKind{TokenIllegal, TokenEOF}},
		{"UnterminatedString", "\"open\nx", []TokenKind{TokenIllegal, TokenIdent, TokenEOF}},
		{"UnknownByte", "a @ b", []TokenKind{TokenIdent, TokenIllegal, TokenIdent, TokenEOF}},
		{"LoneMinus", "- 1", []TokenKind{TokenIllegal, TokenInt, TokenEOF}},
		{"UnterminatedComment", "a /* b", []TokenKind{TokenIdent, TokenEOF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got []TokenKind
			for _, tok := range Tokenize([]byte(tt.input)) {
				got = append(got, tok.Kind)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("kinds mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestColumnsCountRunes(t *testing.T) {
	t.Parallel()

	tokens := Tokenize([]byte("é x"))
	if got, want := tokens[1].Pos, (schema.Pos{Line: 1, Column: 3}); got != want {
		t.Fatalf("Pos = %v, want %v", got, want)
	}
}

func TestTokenKindString(t *testing.T) {
	t.Parallel()

	if got := TokenLBrace.String(); got != "'{'" {
		t.Errorf("TokenLBrace.String() = %q", got)
	}
	if got := TokenKind(200).String(); got != "TokenKind(200)" {
		t.Errorf("TokenKind(200).String() = %q", got)
	}
}
