package parser

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/scintirete/protodts/internal/schema"
	"github.com/scintirete/protodts/internal/test"
)

// dump renders a result in the line format used by testdata/parser.txtar.
func dump(res *Result) string {
	var b strings.Builder
	for _, e := range res.Model.Enums {
		fmt.Fprintf(&b, "enum %s\n", e.Name)
		for _, v := range e.Values {
			fmt.Fprintf(&b, "  %s = %d\n", v.Name, v.Number)
		}
	}
	for _, m := range res.Model.Messages {
		fmt.Fprintf(&b, "message %s\n", m.Name)
		for _, f := range m.Fields {
			fmt.Fprintf(&b, "  %s %s %s = %d\n", f.Cardinality, f.Type, f.Name, f.Number)
		}
	}
	for _, s := range res.Model.Services {
		fmt.Fprintf(&b, "service %s\n", s.Name)
		for _, m := range s.Methods {
			fmt.Fprintf(&b, "  rpc %s(%s) returns (%s)\n", m.Name, m.RequestType, m.ResponseType)
		}
	}
	for _, d := range res.Skipped {
		fmt.Fprintf(&b, "! %s\n", d)
	}
	return b.String()
}

func TestParseFixtures(t *testing.T) {
	t.Parallel()

	cases := test.ReadArchive(t, "parser.txtar")
	names := make([]string, 0, len(cases))
	for name := range cases {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		tc := cases[name]
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := dump(Parse([]byte(tc.Input)))
			if diff := cmp.Diff(tc.Want, got); diff != "" {
				t.Errorf("Parse mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseMalformedTrailingBlock(t *testing.T) {
	t.Parallel()

	res := Parse([]byte("message Foo { string a = 1; }\nmessage Bar {"))

	want := &schema.Model{
		Messages: []schema.Message{
			{
				Name: "Foo",
				Pos:  schema.Pos{Line: 1, Column: 1},
				Fields: []schema.Field{
					{Name: "a", Type: "string", Number: 1, Cardinality: schema.Required},
				},
			},
		},
	}
	if diff := cmp.Diff(want, res.Model); diff != "" {
		t.Errorf("model mismatch (-want +got):\n%s", diff)
	}
	if len(res.Skipped) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %v", len(res.Skipped), res.Skipped)
	}
	if d := res.Skipped[0]; d.Kind != "message" || d.Name != "Bar" {
		t.Errorf("diagnostic = %v, want skipped message Bar", d)
	}
}

func TestParseCardinality(t *testing.T) {
	t.Parallel()

	res := Parse([]byte(`message Mixed {
  optional int32 x = 1;
  repeated string y = 2;
  string z = 3;
  required bool w = 4;
}`))

	if len(res.Skipped) != 0 {
		t.Fatalf("unexpected diagnostics: %v", res.Skipped)
	}
	want := []schema.Field{
		{Name: "x", Type: "int32", Number: 1, Cardinality: schema.Optional},
		{Name: "y", Type: "string", Number: 2, Cardinality: schema.Repeated},
		{Name: "z", Type: "string", Number: 3, Cardinality: schema.Required},
		{Name: "w", Type: "bool", Number: 4, Cardinality: schema.Required},
	}
	if diff := cmp.Diff(want, res.Model.Messages[0].Fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDeclarationPositions(t *testing.T) {
	t.Parallel()

	res := Parse([]byte("syntax = \"proto3\";\n\n  enum A { X = 0; }\nmessage B {}\n\tservice C {}\n"))

	if got, want := res.Model.Enums[0].Pos, (schema.Pos{Line: 3, Column: 3}); got != want {
		t.Errorf("enum pos = %v, want %v", got, want)
	}
	if got, want := res.Model.Messages[0].Pos, (schema.Pos{Line: 4, Column: 1}); got != want {
		t.Errorf("message pos = %v, want %v", got, want)
	}
	if got, want := res.Model.Services[0].Pos, (schema.Pos{Line: 5, Column: 2}); got != want {
		t.Errorf("service pos = %v, want %v", got, want)
	}
}

func TestParseDuplicateNamesKept(t *testing.T) {
	t.Parallel()

	res := Parse([]byte("message A {}\nmessage A { string s = 1; }"))
	if got := len(res.Model.Messages); got != 2 {
		t.Fatalf("got %d messages, want 2", got)
	}
}

func TestParseStrict(t *testing.T) {
	t.Parallel()

	t.Run("Clean", func(t *testing.T) {
		t.Parallel()

		m, err := ParseStrict([]byte("enum E { A = 0; }"))
		if err != nil {
			t.Fatalf("ParseStrict returned error: %v", err)
		}
		if len(m.Enums) != 1 {
			t.Fatalf("got %d enums, want 1", len(m.Enums))
		}
	})

	t.Run("Skipped", func(t *testing.T) {
		t.Parallel()

		m, err := ParseStrict([]byte("message A { map<string, int32> m = 1; string s = 2; }\nmessage B {"))
		if err == nil {
			t.Fatal("ParseStrict returned nil error")
		}

		var d Diagnostic
		if !errors.As(err, &d) {
			t.Fatalf("error %v does not wrap a Diagnostic", err)
		}
		msg := err.Error()
		for _, want := range []string{"map fields are not supported", "skipped message B: unterminated block"} {
			if !strings.Contains(msg, want) {
				t.Errorf("error %q does not mention %q", msg, want)
			}
		}
		// The partial model is still returned.
		if len(m.Messages) != 1 || len(m.Messages[0].Fields) != 1 {
			t.Errorf("partial model = %+v", m)
		}
	})
}

func TestResultErrNil(t *testing.T) {
	t.Parallel()

	if err := Parse(nil).Err(); err != nil {
		t.Fatalf("Err() = %v, want nil", err)
	}
}
