// Package schema defines the model produced by the parser and consumed by the
// generators. A Model is built once per run and never mutated afterwards.
package schema

import "fmt"

// Cardinality describes how many values a message field holds.
type Cardinality int

const (
	Required Cardinality = iota
	Optional
	Repeated
)

func (c Cardinality) String() string {
	switch c {
	case Required:
		return "required"
	case Optional:
		return "optional"
	case Repeated:
		return "repeated"
	default:
		return fmt.Sprintf("Cardinality(%d)", int(c))
	}
}

// Pos is a 1-based line and column in the schema source.
type Pos struct {
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type EnumValue struct {
	Name   string
	Number int
}

// Enum keeps its values in declaration order, not sorted by number.
type Enum struct {
	Name   string
	Values []EnumValue
	Pos    Pos
}

// Field is a message field. Type holds the raw schema type token; mapping to
// a target type system is left to the generators.
type Field struct {
	Name        string
	Type        string
	Number      int
	Cardinality Cardinality
}

type Message struct {
	Name   string
	Fields []Field
	Pos    Pos
}

// Method is a unary RPC.
type Method struct {
	Name         string
	RequestType  string
	ResponseType string
}

type Service struct {
	Name    string
	Methods []Method
	Pos     Pos
}

// Model is the parsed schema. Each list keeps first-appearance order within
// its kind. Duplicate names are kept as they appear.
type Model struct {
	Enums    []Enum
	Messages []Message
	Services []Service
}

// Declared reports whether name is declared as an enum or a message.
func (m *Model) Declared(name string) bool {
	for _, e := range m.Enums {
		if e.Name == name {
			return true
		}
	}
	for _, msg := range m.Messages {
		if msg.Name == name {
			return true
		}
	}
	return false
}
