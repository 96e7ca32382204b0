package field

import (
	"errors"
	"path/filepath"

	"github.com/syssam/schemafield/dialect/sqlschema"
	"github.com/syssam/schemafield/schemadoc"
)

// JSONSchema returns a new JSON field whose values must validate against
// a JSON Schema document.
//
//	field.JSONSchema("information").
//	    Schema(map[string]any{
//	        "type":     "object",
//	        "required": []any{"name"},
//	    })
func JSONSchema(name string) *jsonSchemaBuilder {
	return &jsonSchemaBuilder{desc: &Descriptor{
		Name: name,
		Type: TypeJSON,
	}}
}

// jsonSchemaBuilder is the builder for JSON schema fields.
type jsonSchemaBuilder struct {
	desc *Descriptor
	doc  any
	err  error
}

// Schema sets the schema document. It accepts a map, raw JSON bytes,
// any value that encodes to a JSON object, or a *schemadoc.Document.
func (b *jsonSchemaBuilder) Schema(doc any) *jsonSchemaBuilder {
	b.doc = doc
	b.err = nil
	return b
}

// SchemaFile loads the schema document from a JSON or YAML file.
func (b *jsonSchemaBuilder) SchemaFile(path string) *jsonSchemaBuilder {
	doc, err := schemadoc.Load(path)
	if err != nil {
		b.doc, b.err = nil, err
		return b
	}
	b.doc, b.err = doc, nil
	return b
}

// Draft sets the dialect assumed when the schema has no "$schema" keyword.
func (b *jsonSchemaBuilder) Draft(d schemadoc.Draft) *jsonSchemaBuilder {
	b.desc.Draft = d
	return b
}

// StrictDialect makes the checks pass warn about schemas without "$schema".
func (b *jsonSchemaBuilder) StrictDialect() *jsonSchemaBuilder {
	b.desc.StrictDialect = true
	return b
}

// Optional allows empty values ({}, [] and "").
func (b *jsonSchemaBuilder) Optional() *jsonSchemaBuilder {
	b.desc.Optional = true
	return b
}

// Nillable allows NULL values. A nil value is stored as NULL and skips
// schema validation.
func (b *jsonSchemaBuilder) Nillable() *jsonSchemaBuilder {
	b.desc.Nillable = true
	return b
}

// Default sets the default value. Prefer a func so that map and slice
// values are not shared between instances.
func (b *jsonSchemaBuilder) Default(v any) *jsonSchemaBuilder {
	b.desc.Default = v
	return b
}

// Validate adds a validator that runs after the schema validation.
func (b *jsonSchemaBuilder) Validate(fn func(any) error) *jsonSchemaBuilder {
	b.desc.Validators = append(b.desc.Validators, fn)
	return b
}

// Comment sets the column comment.
func (b *jsonSchemaBuilder) Comment(c string) *jsonSchemaBuilder {
	b.desc.Comment = c
	return b
}

// Annotations adds SQL annotations to the field.
func (b *jsonSchemaBuilder) Annotations(annotations ...sqlschema.Annotation) *jsonSchemaBuilder {
	b.desc.Annotations = append(b.desc.Annotations, annotations...)
	return b
}

// Descriptor implements the Builder interface by returning its descriptor.
// The schema is parsed and compiled here; problems are kept on the
// descriptor and reported by Check.
func (b *jsonSchemaBuilder) Descriptor() *Descriptor {
	d := *b.desc
	d.Validators = append([]func(any) error(nil), b.desc.Validators...)
	d.Annotations = append([]sqlschema.Annotation(nil), b.desc.Annotations...)
	if b.err != nil {
		d.schemaErr = &schemadoc.InvalidError{Err: b.err}
		return &d
	}
	doc, err := schemadoc.Parse(b.doc)
	switch {
	case errors.Is(err, schemadoc.ErrMissing):
		d.schemaErr = schemadoc.ErrMissing
		return &d
	case err != nil:
		d.schemaErr = &schemadoc.InvalidError{Err: err}
		return &d
	}
	d.schema = doc
	opts := []schemadoc.Option{schemadoc.WithDraft(d.Draft)}
	if src := doc.Source(); src != "" {
		if abs, err := filepath.Abs(src); err == nil {
			opts = append(opts, schemadoc.WithLocation("file://"+filepath.ToSlash(abs)))
		}
	}
	d.compiled, d.schemaErr = schemadoc.Compile(doc, opts...)
	return &d
}
