// Package index provides fluent builders for composite model indexes.
//
//	model.New("Membership", fields...).
//	    Indexes(
//	        index.Fields("user_id", "group_id").Unique(),
//	    )
package index

import "github.com/syssam/schemafield/dialect/sqlschema"

// A Descriptor for index configuration.
type Descriptor struct {
	Fields      []string               // indexed fields
	Unique      bool                   // unique index
	StorageKey  string                 // custom index name
	Annotations []sqlschema.Annotation // SQL annotations
}

// Builder for indexes.
type Builder struct {
	desc *Descriptor
}

// Fields creates an index on the given fields.
func Fields(fields ...string) *Builder {
	return &Builder{desc: &Descriptor{Fields: fields}}
}

// Unique sets the index to be a unique index.
func (b *Builder) Unique() *Builder {
	b.desc.Unique = true
	return b
}

// StorageKey sets the storage key of the index. In SQL dialects, it's the
// index name.
func (b *Builder) StorageKey(key string) *Builder {
	b.desc.StorageKey = key
	return b
}

// Annotations adds SQL annotations to the index.
func (b *Builder) Annotations(annotations ...sqlschema.Annotation) *Builder {
	b.desc.Annotations = append(b.desc.Annotations, annotations...)
	return b
}

// Descriptor returns a copy of the index descriptor.
func (b *Builder) Descriptor() *Descriptor {
	d := *b.desc
	d.Fields = append([]string(nil), b.desc.Fields...)
	if len(b.desc.Annotations) > 0 {
		d.Annotations = append([]sqlschema.Annotation(nil), b.desc.Annotations...)
	}
	return &d
}

// Name returns the storage key, or a name derived from the table and the
// fields, e.g. "user_profiles_first_last" or "users_email_key" for unique
// indexes.
func (d *Descriptor) Name(table string) string {
	if d.StorageKey != "" {
		return d.StorageKey
	}
	name := table
	for _, f := range d.Fields {
		name += "_" + f
	}
	if d.Unique {
		name += "_key"
	}
	return name
}
