// Package model groups field descriptors into models that can be checked,
// cleaned and persisted.
package model

import (
	"fmt"

	"github.com/go-openapi/inflect"

	"github.com/syssam/schemafield/check"
	"github.com/syssam/schemafield/dialect/sqlschema"
	"github.com/syssam/schemafield/schema/field"
	"github.com/syssam/schemafield/schema/index"
	"github.com/syssam/schemafield/schema/mixin"
)

// Model check IDs.
const (
	// CheckDuplicateField is reported when two fields share a name.
	CheckDuplicateField = "models.E001"
	// CheckIndexField is reported when an index refers to an unknown field.
	CheckIndexField = "models.E012"
)

// IDColumn is the name of the integer primary key column.
const IDColumn = "id"

// Model describes a table and its fields.
type Model struct {
	name        string
	fields      []*field.Descriptor
	indexes     []*index.Descriptor
	annotations []sqlschema.Annotation
}

// New returns a model with the given fields. Field descriptors are built
// here and labeled with the model name.
//
//	model.New("UserInformation",
//	    field.UUID("user_id").Default(uuid.New).Unique(),
//	    field.JSONSchema("information").Schema(infoSchema),
//	)
func New(name string, fields ...field.Builder) *Model {
	m := &Model{name: name}
	m.addFields(fields)
	return m
}

func (m *Model) addFields(fields []field.Builder) {
	for _, b := range fields {
		fd := b.Descriptor()
		fd.Model = m.name
		m.fields = append(m.fields, fd)
	}
}

// Mixin appends the fields and indexes of the given mixins to the model.
func (m *Model) Mixin(mixins ...mixin.Mixin) *Model {
	for _, mx := range mixins {
		m.addFields(mx.Fields())
		m.Indexes(mx.Indexes()...)
	}
	return m
}

// Indexes adds composite indexes to the model.
func (m *Model) Indexes(indexes ...*index.Builder) *Model {
	for _, b := range indexes {
		m.indexes = append(m.indexes, b.Descriptor())
	}
	return m
}

// Annotations adds SQL annotations to the model.
func (m *Model) Annotations(annotations ...sqlschema.Annotation) *Model {
	m.annotations = append(m.annotations, annotations...)
	return m
}

// Name returns the model name.
func (m *Model) Name() string { return m.name }

// String implements fmt.Stringer.
func (m *Model) String() string { return m.name }

// Table returns the table name. It defaults to the pluralized snake case
// model name, e.g. "user_informations" for "UserInformation".
func (m *Model) Table() string {
	if t := sqlschema.Merge(m.annotations...).Table; t != "" {
		return t
	}
	return inflect.Pluralize(inflect.Underscore(m.name))
}

// Comment returns the table comment, if any.
func (m *Model) Comment() string {
	return sqlschema.Merge(m.annotations...).Comment
}

// Fields returns the field descriptors in declaration order.
func (m *Model) Fields() []*field.Descriptor {
	return m.fields
}

// IndexDescriptors returns the index descriptors in declaration order.
func (m *Model) IndexDescriptors() []*index.Descriptor {
	return m.indexes
}

// Field returns the field descriptor with the given name.
func (m *Model) Field(name string) (*field.Descriptor, bool) {
	for _, fd := range m.fields {
		if fd.Name == name {
			return fd, true
		}
	}
	return nil, false
}

// Check runs the field checks and the model level checks.
func (m *Model) Check() []check.Message {
	var msgs []check.Message
	seen := make(map[string]bool, len(m.fields))
	for _, fd := range m.fields {
		msgs = append(msgs, fd.Check()...)
		switch {
		case fd.Name == IDColumn:
			msgs = append(msgs, check.NewError(
				fmt.Sprintf("The field name %q is reserved for the primary key.", IDColumn), fd,
				check.WithID(CheckDuplicateField),
			))
		case seen[fd.Name]:
			msgs = append(msgs, check.NewError(
				fmt.Sprintf("The field %q clashes with another field of the model.", fd.Name), fd,
				check.WithID(CheckDuplicateField),
			))
		}
		seen[fd.Name] = true
	}
	for _, idx := range m.indexes {
		if len(idx.Fields) == 0 {
			msgs = append(msgs, check.NewError("Index has no fields.", m, check.WithID(CheckIndexField)))
		}
		for _, f := range idx.Fields {
			if !seen[f] && f != IDColumn {
				msgs = append(msgs, check.NewError(
					fmt.Sprintf("Index %q refers to the nonexistent field %q.", idx.Name(m.Table()), f), m,
					check.WithID(CheckIndexField),
				))
			}
		}
	}
	return msgs
}

var _ check.Checker = (*Model)(nil)
