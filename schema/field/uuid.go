package field

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/syssam/schemafield"
	"github.com/syssam/schemafield/dialect/sqlschema"
)

// UUID returns a new UUID field.
//
//	field.UUID("user_id").Default(uuid.New).Unique()
func UUID(name string) *uuidBuilder {
	return &uuidBuilder{&Descriptor{
		Name: name,
		Type: TypeUUID,
	}}
}

// uuidBuilder is the builder for uuid fields.
type uuidBuilder struct {
	desc *Descriptor
}

// Unique makes the field unique within all rows in the table.
func (b *uuidBuilder) Unique() *uuidBuilder {
	b.desc.Unique = true
	return b
}

// Optional allows the zero UUID.
func (b *uuidBuilder) Optional() *uuidBuilder {
	b.desc.Optional = true
	return b
}

// Nillable allows NULL values.
func (b *uuidBuilder) Nillable() *uuidBuilder {
	b.desc.Nillable = true
	return b
}

// Default sets the function that is used to generate the default value,
// e.g. uuid.New.
func (b *uuidBuilder) Default(fn any) *uuidBuilder {
	if _, ok := fn.(func() uuid.UUID); !ok {
		b.desc.Err = errors.New("expect type (func() uuid.UUID) for uuid default value")
		return b
	}
	b.desc.Default = fn
	return b
}

// Comment sets the column comment.
func (b *uuidBuilder) Comment(c string) *uuidBuilder {
	b.desc.Comment = c
	return b
}

// Annotations adds SQL annotations to the field.
func (b *uuidBuilder) Annotations(annotations ...sqlschema.Annotation) *uuidBuilder {
	b.desc.Annotations = append(b.desc.Annotations, annotations...)
	return b
}

// Descriptor implements the Builder interface by returning its descriptor.
func (b *uuidBuilder) Descriptor() *Descriptor {
	d := *b.desc
	d.Annotations = append([]sqlschema.Annotation(nil), b.desc.Annotations...)
	return &d
}

func (d *Descriptor) cleanUUID(v any) (any, error) {
	var (
		u   uuid.UUID
		err error
	)
	switch v := v.(type) {
	case uuid.UUID:
		u = v
	case *uuid.UUID:
		if v == nil {
			return nil, &schemafield.ValidationError{Name: d.Name, Code: schemafield.CodeNull, Msg: "This field cannot be null."}
		}
		u = *v
	case string:
		u, err = uuid.Parse(v)
	case []byte:
		u, err = uuid.ParseBytes(v)
	default:
		err = fmt.Errorf("unexpected type %T", v)
	}
	if err != nil {
		return nil, &schemafield.ValidationError{
			Name:   d.Name,
			Code:   schemafield.CodeInvalid,
			Msg:    "{value} is not a valid UUID.",
			Params: map[string]any{"value": fmt.Sprint(v)},
			Err:    err,
		}
	}
	if u == uuid.Nil && !d.Optional {
		return nil, &schemafield.ValidationError{Name: d.Name, Code: schemafield.CodeBlank, Msg: "This field cannot be blank."}
	}
	return u, nil
}
