// Package mixin provides reusable sets of fields and indexes for models.
//
// To create a custom mixin, embed Schema and override the methods you need:
//
//	type Owned struct {
//	    mixin.Schema
//	}
//
//	func (Owned) Fields() []field.Builder {
//	    return []field.Builder{
//	        field.UUID("owner_id").Default(uuid.New),
//	    }
//	}
//
// Using mixins:
//
//	model.New("Document", fields...).Mixin(Owned{}, mixin.Metadata{})
package mixin

import (
	"github.com/syssam/schemafield/dialect/sqlschema"
	"github.com/syssam/schemafield/schema/field"
	"github.com/syssam/schemafield/schema/index"
)

// Mixin is a reusable set of fields and indexes.
type Mixin interface {
	Fields() []field.Builder
	Indexes() []*index.Builder
}

// Schema is the default implementation of Mixin. It should be embedded in
// custom mixins.
type Schema struct{}

// Fields of the mixin.
func (Schema) Fields() []field.Builder { return nil }

// Indexes of the mixin.
func (Schema) Indexes() []*index.Builder { return nil }

var _ Mixin = (*Schema)(nil)

// MetadataSchema is the default schema of the metadata field: a flat
// object of string values.
var MetadataSchema = map[string]any{
	"$schema":              "https://json-schema.org/draft/2020-12/schema",
	"type":                 "object",
	"additionalProperties": map[string]any{"type": "string", "maxLength": 1024},
}

// Metadata adds a nullable "metadata" JSON field validated against
// JSONSchema, or MetadataSchema when JSONSchema is nil.
type Metadata struct {
	Schema
	JSONSchema any
}

// Fields of the Metadata mixin.
func (m Metadata) Fields() []field.Builder {
	s := m.JSONSchema
	if s == nil {
		s = MetadataSchema
	}
	return []field.Builder{
		field.JSONSchema("metadata").
			Schema(s).
			Optional().
			Nillable().
			Comment("free form key/value metadata"),
	}
}

// AnnotateFields wraps a mixin and adds annotations to all its fields.
//
//	mixin.AnnotateFields(mixin.Metadata{}, sqlschema.ColumnType("text"))
func AnnotateFields(m Mixin, annotations ...sqlschema.Annotation) Mixin {
	return fieldAnnotator{Mixin: m, annotations: annotations}
}

type fieldAnnotator struct {
	Mixin
	annotations []sqlschema.Annotation
}

type annotated struct {
	field.Builder
	annotations []sqlschema.Annotation
}

func (a annotated) Descriptor() *field.Descriptor {
	d := a.Builder.Descriptor()
	d.Annotations = append(d.Annotations, a.annotations...)
	return d
}

func (a fieldAnnotator) Fields() []field.Builder {
	fields := a.Mixin.Fields()
	for i := range fields {
		fields[i] = annotated{Builder: fields[i], annotations: a.annotations}
	}
	return fields
}
