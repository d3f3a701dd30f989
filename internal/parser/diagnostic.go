package parser

import (
	"fmt"

	"github.com/scintirete/protodts/internal/schema"
)

// Diagnostic describes a construct the parser skipped. It implements error
// so strict callers can return it directly.
type Diagnostic struct {
	Pos    schema.Pos
	Kind   string // "enum", "message", "service", "field", "enum value", "rpc", "declaration"
	Name   string // best-effort name of the skipped construct, may be empty
	Reason string
}

func (d Diagnostic) String() string {
	if d.Name == "" {
		return fmt.Sprintf("%s: skipped %s: %s", d.Pos, d.Kind, d.Reason)
	}
	return fmt.Sprintf("%s: skipped %s %s: %s", d.Pos, d.Kind, d.Name, d.Reason)
}

func (d Diagnostic) Error() string {
	return d.String()
}
