// Package check compiles a schema with a complete protobuf compiler. It is a
// cross-check for the permissive parser: it reports grammar errors the
// parser tolerates and top-level declarations the parser dropped.
package check

import (
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/jhump/protoreflect/desc/protoparse"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/scintirete/protodts/internal/schema"
)

// Declaration is a top-level declaration seen by the compiler.
type Declaration struct {
	Kind string // "enum", "message" or "service"
	Name string
}

type Report struct {
	// Errors holds every error the compiler reported, in source order.
	Errors []error
	// Declarations is empty when Errors is not.
	Declarations []Declaration
}

// OK reports whether the compiler accepted the schema.
func (r *Report) OK() bool {
	return len(r.Errors) == 0
}

// Missing returns the compiler's declarations that are absent from m.
func (r *Report) Missing(m *schema.Model) []Declaration {
	seen := make(map[Declaration]bool)
	for _, e := range m.Enums {
		seen[Declaration{Kind: "enum", Name: e.Name}] = true
	}
	for _, msg := range m.Messages {
		seen[Declaration{Kind: "message", Name: msg.Name}] = true
	}
	for _, svc := range m.Services {
		seen[Declaration{Kind: "service", Name: svc.Name}] = true
	}

	var missing []Declaration
	for _, d := range r.Declarations {
		if !seen[d] {
			missing = append(missing, d)
		}
	}
	return missing
}

// Check compiles src as the file at path. Imports other than the standard
// google/protobuf files are not resolved. The returned error is only set when
// the compiler could not run; schema problems are reported in Report.Errors.
func Check(path string, src []byte) (*Report, error) {
	name := filepath.Base(path)
	if name == "." || name == "-" || name == string(filepath.Separator) {
		name = "schema.proto"
	}

	report := &Report{}
	parser := protoparse.Parser{
		Accessor: func(filename string) (io.ReadCloser, error) {
			if filename == name {
				return io.NopCloser(strings.NewReader(string(src))), nil
			}
			// Not found lets the compiler fall back to its standard imports.
			return nil, &fs.PathError{Op: "open", Path: filename, Err: fs.ErrNotExist}
		},
		ErrorReporter: func(err protoparse.ErrorWithPos) error {
			report.Errors = append(report.Errors, err)
			return nil
		},
	}

	fds, err := parser.ParseFiles(name)
	if err != nil {
		if len(report.Errors) > 0 {
			return report, nil
		}
		return nil, fmt.Errorf("failed to compile %s: %w", path, err)
	}
	if len(fds) == 0 {
		return nil, fmt.Errorf("failed to compile %s: no file descriptor produced", path)
	}

	report.Declarations = declarations(fds[0].AsFileDescriptorProto())
	return report, nil
}

func declarations(fd *descriptorpb.FileDescriptorProto) []Declaration {
	var out []Declaration
	for _, e := range fd.GetEnumType() {
		out = append(out, Declaration{Kind: "enum", Name: e.GetName()})
	}
	for _, m := range fd.GetMessageType() {
		out = append(out, Declaration{Kind: "message", Name: m.GetName()})
	}
	for _, s := range fd.GetService() {
		out = append(out, Declaration{Kind: "service", Name: s.GetName()})
	}
	return out
}
