// Package typemap maps schema primitive type names to target type names.
package typemap

import "strings"

// StructType is the well-known dynamic structured value type.
const StructType = "google.protobuf.Struct"

// Table maps schema type names to target type names. Names missing from the
// table map to themselves, which is how references to declared messages and
// enums pass through.
type Table map[string]string

var typeScript = Table{
	"string":   "string",
	"int32":    "number",
	"int64":    "number",
	"uint32":   "number",
	"uint64":   "number",
	"sint32":   "number",
	"sint64":   "number",
	"fixed32":  "number",
	"fixed64":  "number",
	"sfixed32": "number",
	"sfixed64": "number",
	"float":    "number",
	"double":   "number",
	"bool":     "boolean",
	"bytes":    "Uint8Array",
	StructType: "Record<string, any>",
}

// TypeScript returns a copy of the default TypeScript table.
func TypeScript() Table {
	return typeScript.With(nil)
}

// Map returns the target type for name. It never fails.
func (t Table) Map(name string) string {
	name = strings.TrimPrefix(name, ".")
	if mapped, ok := t[name]; ok {
		return mapped
	}
	return name
}

// With returns a copy of t with overrides applied on top.
func (t Table) With(overrides map[string]string) Table {
	out := make(Table, len(t)+len(overrides))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range overrides {
		out[strings.TrimPrefix(k, ".")] = v
	}
	return out
}

// IsScalar reports whether name is a primitive of the schema language, as
// opposed to a reference to a declared type.
func IsScalar(name string) bool {
	_, ok := typeScript[strings.TrimPrefix(name, ".")]
	return ok
}
