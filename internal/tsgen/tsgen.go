// Package tsgen renders a schema.Model as TypeScript declarations.
package tsgen

import (
	"strconv"
	"strings"
	"time"

	"github.com/scintirete/protodts/internal/schema"
	"github.com/scintirete/protodts/internal/typemap"
)

const (
	DefaultClientSuffix  = "Client"
	DefaultResultWrapper = "Promise"

	bannerEnums    = "// ==================== Enums ===================="
	bannerMessages = "// ==================== Messages ===================="
	bannerServices = "// ==================== Services ===================="
	bannerClients  = "// ==================== Clients ===================="
)

type Options struct {
	// Source is the schema path noted in the header.
	Source string
	// Timestamp is written to the header unless OmitTimestamp is set.
	Timestamp     time.Time
	OmitTimestamp bool
	// Types maps field types. Defaults to typemap.TypeScript().
	Types typemap.Table
	// ClientSuffix is appended to service names for the client interfaces.
	ClientSuffix string
	// ResultWrapper wraps method response types, as in Promise<Resp>.
	ResultWrapper string
}

func (o Options) withDefaults() Options {
	if o.Types == nil {
		o.Types = typemap.TypeScript()
	}
	if o.ClientSuffix == "" {
		o.ClientSuffix = DefaultClientSuffix
	}
	if o.ResultWrapper == "" {
		o.ResultWrapper = DefaultResultWrapper
	}
	return o
}

// Generate renders the whole declaration document. For a given model and
// options the output only varies in the timestamp line.
func Generate(m *schema.Model, opts Options) string {
	opts = opts.withDefaults()

	var builder strings.Builder
	writeHeader(&builder, opts)

	enums := make([]string, 0, len(m.Enums))
	for _, e := range m.Enums {
		enums = append(enums, GenerateEnum(e))
	}
	messages := make([]string, 0, len(m.Messages))
	for _, msg := range m.Messages {
		messages = append(messages, GenerateInterface(msg, opts.Types))
	}
	services := make([]string, 0, len(m.Services))
	clients := make([]string, 0, len(m.Services))
	for _, svc := range m.Services {
		services = append(services, GenerateServiceInterface(svc, opts.ResultWrapper))
		clients = append(clients, GenerateClientInterface(svc, opts.ClientSuffix, opts.ResultWrapper))
	}

	writeSection(&builder, bannerEnums, enums)
	writeSection(&builder, bannerMessages, messages)
	writeSection(&builder, bannerServices, services)
	writeSection(&builder, bannerClients, clients)

	return strings.TrimSuffix(builder.String(), "\n") + "\n"
}

func writeHeader(builder *strings.Builder, opts Options) {
	builder.WriteString("// Code generated by protodts. DO NOT EDIT.\n")
	if !opts.OmitTimestamp {
		builder.WriteString("// Generated at: ")
		builder.WriteString(opts.Timestamp.UTC().Format(time.RFC3339))
		builder.WriteString("\n")
	}
	if opts.Source != "" {
		builder.WriteString("// Source: ")
		builder.WriteString(opts.Source)
		builder.WriteString("\n")
	}
	builder.WriteString("\n")
}

func writeSection(builder *strings.Builder, banner string, decls []string) {
	builder.WriteString(banner)
	builder.WriteString("\n\n")
	for _, decl := range decls {
		builder.WriteString(decl)
		builder.WriteString("\n\n")
	}
}

// GenerateEnum renders `export enum Name { A = 1, ... }` with values in
// declaration order.
func GenerateEnum(e schema.Enum) string {
	if len(e.Values) == 0 {
		return "export enum " + e.Name + " {}"
	}

	var builder strings.Builder
	builder.WriteString("export enum ")
	builder.WriteString(e.Name)
	builder.WriteString(" {\n")
	for i, v := range e.Values {
		builder.WriteString("  ")
		builder.WriteString(v.Name)
		builder.WriteString(" = ")
		builder.WriteString(strconv.Itoa(v.Number))
		if i < len(e.Values)-1 {
			builder.WriteString(",")
		}
		builder.WriteString("\n")
	}
	builder.WriteString("}")
	return builder.String()
}

// GenerateInterface renders a message as a record interface. Optional fields
// get a `?`, repeated fields an array type.
func GenerateInterface(msg schema.Message, types typemap.Table) string {
	if len(msg.Fields) == 0 {
		return "export interface " + msg.Name + " {}"
	}

	var builder strings.Builder
	builder.WriteString("export interface ")
	builder.WriteString(msg.Name)
	builder.WriteString(" {\n")
	for _, field := range msg.Fields {
		fieldType := types.Map(field.Type)
		if field.Cardinality == schema.Repeated {
			fieldType = arrayOf(fieldType)
		}

		builder.WriteString("  ")
		builder.WriteString(field.Name)
		if field.Cardinality == schema.Optional {
			builder.WriteString("?")
		}
		builder.WriteString(": ")
		builder.WriteString(fieldType)
		builder.WriteString(";\n")
	}
	builder.WriteString("}")
	return builder.String()
}

// GenerateServiceInterface renders the plain service interface.
func GenerateServiceInterface(svc schema.Service, wrapper string) string {
	return writeInterface(svc.Name, svc.Methods, wrapper)
}

// GenerateClientInterface renders the client interface: the same methods as
// the service, under the suffixed name.
func GenerateClientInterface(svc schema.Service, suffix, wrapper string) string {
	return writeInterface(svc.Name+suffix, svc.Methods, wrapper)
}

func writeInterface(name string, methods []schema.Method, wrapper string) string {
	if len(methods) == 0 {
		return "export interface " + name + " {}"
	}

	var builder strings.Builder
	builder.WriteString("export interface ")
	builder.WriteString(name)
	builder.WriteString(" {\n")
	for _, method := range methods {
		builder.WriteString("  ")
		builder.WriteString(method.Name)
		builder.WriteString("(request: ")
		builder.WriteString(typeRef(method.RequestType))
		builder.WriteString("): ")
		builder.WriteString(wrapper)
		builder.WriteString("<")
		builder.WriteString(typeRef(method.ResponseType))
		builder.WriteString(">;\n")
	}
	builder.WriteString("}")
	return builder.String()
}

// typeRef renders a request or response type name. A fully-qualified name
// loses its leading dot, as field types do in typemap.
func typeRef(name string) string {
	return strings.TrimPrefix(name, ".")
}

// arrayOf appends [] to a type, parenthesizing types with a top-level union,
// intersection or function arrow so the brackets bind to the whole type.
func arrayOf(t string) string {
	depth := 0
	var prev rune
	for _, r := range t {
		switch r {
		case '<', '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '>':
			if prev == '=' {
				if depth == 0 {
					return "(" + t + ")[]"
				}
			} else {
				depth--
			}
		case '|', '&':
			if depth == 0 {
				return "(" + t + ")[]"
			}
		}
		prev = r
	}
	return t + "[]"
}
