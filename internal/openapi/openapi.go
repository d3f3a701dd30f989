// Package openapi renders a schema.Model as an OpenAPI 3 document: messages
// and enums become component schemas, every rpc becomes a POST operation.
package openapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/scintirete/protodts/internal/schema"
	"github.com/scintirete/protodts/internal/strcase"
	"github.com/scintirete/protodts/internal/typemap"
)

const (
	Version = "3.0.3"

	componentPrefix = "#/components/schemas/"
)

type Options struct {
	Title   string
	Version string
	// Source is recorded in the info description.
	Source string
}

// Generate builds and validates the document. Duplicate declaration names
// collapse to the last declaration since component names are map keys.
func Generate(ctx context.Context, m *schema.Model, opts Options) (*openapi3.T, error) {
	if opts.Title == "" {
		opts.Title = "protodts"
	}
	if opts.Version == "" {
		opts.Version = "0.0.0"
	}

	doc := &openapi3.T{
		OpenAPI: Version,
		Info: &openapi3.Info{
			Title:   opts.Title,
			Version: opts.Version,
		},
		Paths: openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{},
		},
	}
	if opts.Source != "" {
		doc.Info.Description = "Generated from " + opts.Source
	}

	b := &builder{components: make(map[string]*openapi3.Schema)}

	// Allocate every component first so references resolve regardless of
	// declaration order.
	for _, e := range m.Enums {
		b.components[e.Name] = enumSchema(e)
	}
	for _, msg := range m.Messages {
		b.components[msg.Name] = openapi3.NewObjectSchema()
	}
	for _, msg := range m.Messages {
		b.fillMessage(b.components[msg.Name], msg)
	}
	for name, s := range b.components {
		doc.Components.Schemas[name] = openapi3.NewSchemaRef("", s)
	}

	for _, svc := range m.Services {
		for _, method := range svc.Methods {
			path := "/" + strcase.ToSnakeCase(svc.Name) + "/" + strcase.ToSnakeCase(method.Name)
			doc.Paths.Set(path, &openapi3.PathItem{Post: b.operation(svc, method)})
		}
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("generated document is invalid: %w", err)
	}
	return doc, nil
}

type builder struct {
	components map[string]*openapi3.Schema
}

func (b *builder) fillMessage(s *openapi3.Schema, msg schema.Message) {
	for _, field := range msg.Fields {
		ref := b.fieldSchema(field.Type)
		if field.Cardinality == schema.Repeated {
			arr := openapi3.NewArraySchema()
			arr.Items = ref
			ref = openapi3.NewSchemaRef("", arr)
		}
		s.Properties[field.Name] = ref
		if field.Cardinality == schema.Required {
			s.Required = append(s.Required, field.Name)
		}
	}
}

func (b *builder) operation(svc schema.Service, method schema.Method) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = svc.Name + "_" + method.Name
	op.Tags = []string{svc.Name}
	op.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().
			WithRequired(true).
			WithJSONSchemaRef(b.fieldSchema(method.RequestType)),
	}
	op.Responses = openapi3.NewResponses(openapi3.WithStatus(200, &openapi3.ResponseRef{
		Value: openapi3.NewResponse().
			WithDescription("OK").
			WithJSONSchemaRef(b.fieldSchema(method.ResponseType)),
	}))
	return op
}

// fieldSchema resolves a schema type name to an inline scalar schema or a
// reference to a component.
func (b *builder) fieldSchema(typeName string) *openapi3.SchemaRef {
	name := strings.TrimPrefix(typeName, ".")
	if s := scalarSchema(name); s != nil {
		return openapi3.NewSchemaRef("", s)
	}
	if s, ok := b.components[name]; ok {
		return openapi3.NewSchemaRef(componentPrefix+name, s)
	}
	return openapi3.NewSchemaRef("", &openapi3.Schema{
		Description: "unresolved type " + name,
	})
}

func scalarSchema(name string) *openapi3.Schema {
	switch name {
	case "string":
		return openapi3.NewStringSchema()
	case "int32", "uint32", "sint32", "fixed32", "sfixed32":
		return openapi3.NewInt32Schema()
	case "int64", "uint64", "sint64", "fixed64", "sfixed64":
		return openapi3.NewInt64Schema()
	case "float", "double":
		return openapi3.NewFloat64Schema()
	case "bool":
		return openapi3.NewBoolSchema()
	case "bytes":
		return openapi3.NewBytesSchema()
	case typemap.StructType:
		return openapi3.NewObjectSchema()
	}
	return nil
}

func enumSchema(e schema.Enum) *openapi3.Schema {
	s := openapi3.NewIntegerSchema()
	names := make([]string, 0, len(e.Values))
	for _, v := range e.Values {
		s.Enum = append(s.Enum, float64(v.Number))
		names = append(names, fmt.Sprintf("%s = %d", v.Name, v.Number))
	}
	if len(names) > 0 {
		s.Description = strings.Join(names, ", ")
	}
	return s
}
