package field

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"

	"github.com/syssam/schemafield"
	"github.com/syssam/schemafield/check"
	"github.com/syssam/schemafield/dialect/sqlschema"
	"github.com/syssam/schemafield/schemadoc"
)

// A Type represents a field type.
type Type uint8

// List of field types.
const (
	TypeInvalid Type = iota
	TypeJSON
	TypeUUID
)

// String returns the string representation of a type.
func (t Type) String() string {
	switch t {
	case TypeJSON:
		return "json"
	case TypeUUID:
		return "uuid"
	default:
		return "invalid"
	}
}

// Check identifiers reported by Descriptor.Check.
const (
	CheckInvalidName    = "fields.E001"
	CheckBuilderError   = "fields.E002"
	CheckSchemaMissing  = "fields.E100"
	CheckSchemaInvalid  = "fields.E101"
	CheckMutableDefault = "fields.W010"
	CheckNoDialect      = "fields.W100"
	CheckUnknownDialect = "fields.W101"
)

// Builder is implemented by all field builders.
type Builder interface {
	Descriptor() *Descriptor
}

// A Descriptor for field configuration. Descriptors are immutable once built.
type Descriptor struct {
	Name        string                 // field name, also the column name
	Model       string                 // owning model, set when attached to a model
	Type        Type                   // field type
	Optional    bool                   // empty values are allowed
	Nillable    bool                   // NULL values are allowed
	Unique      bool                   // unique column
	Default     any                    // default value or func() T
	Validators  []func(any) error      // validators run after the builtin stages
	Comment     string                 // column comment
	Annotations []sqlschema.Annotation // SQL annotations
	Err         error                  // builder error, reported by Check

	// JSON schema configuration.
	Draft         schemadoc.Draft // dialect assumed when "$schema" is absent
	StrictDialect bool            // warn when "$schema" is absent

	schema    *schemadoc.Document
	compiled  *schemadoc.Schema
	schemaErr error
}

// String returns the qualified field name, e.g. "UserInformation.information".
func (d *Descriptor) String() string {
	if d.Model != "" {
		return d.Model + "." + d.Name
	}
	return d.Name
}

// Schema returns the schema document, or nil when the field has none or
// when it could not be parsed.
func (d *Descriptor) Schema() *schemadoc.Document {
	return d.schema
}

// SchemaErr returns the problem found with the schema while building the
// descriptor, or nil when the schema is valid.
func (d *Descriptor) SchemaErr() error {
	return d.schemaErr
}

// DefaultValue returns the default value, calling the default func if needed.
func (d *Descriptor) DefaultValue() (any, bool) {
	if d.Default == nil {
		return nil, false
	}
	rv := reflect.ValueOf(d.Default)
	if rv.Kind() == reflect.Func {
		if rv.Type().NumIn() != 0 || rv.Type().NumOut() != 1 {
			return nil, false
		}
		return rv.Call(nil)[0].Interface(), true
	}
	return d.Default, true
}

var validNameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Check verifies the field configuration as part of the checks pass.
// A JSON field whose schema is missing or is not a valid JSON Schema reports
// exactly one error.
func (d *Descriptor) Check() []check.Message {
	var msgs []check.Message
	if len(d.Name) > 63 || !validNameRe.MatchString(d.Name) {
		msgs = append(msgs, check.NewError(
			fmt.Sprintf("Field name %q is not a valid column identifier.", d.Name), d,
			check.WithID(CheckInvalidName),
		))
	}
	if d.Err != nil {
		msgs = append(msgs, check.NewError(d.Err.Error(), d, check.WithID(CheckBuilderError)))
	}
	if d.Type != TypeJSON {
		return msgs
	}
	if d.Default != nil {
		switch reflect.ValueOf(d.Default).Kind() {
		case reflect.Map, reflect.Slice, reflect.Pointer:
			msgs = append(msgs, check.NewWarning(
				"JSONSchema default should be a func instead of an instance so that it's not shared between all field instances.", d,
				check.WithID(CheckMutableDefault),
				check.WithHint("Use a func, e.g. func() map[string]any { return map[string]any{} }."),
			))
		}
	}
	switch {
	case d.schemaMissing():
		msgs = append(msgs, check.NewError(
			msgSchemaMissing, d,
			check.WithID(CheckSchemaMissing),
		))
	case d.schemaErr != nil:
		msgs = append(msgs, check.NewError(
			"Given 'schema' is not a valid json schema.", d,
			check.WithID(CheckSchemaInvalid),
			check.WithHint(d.schemaErr.Error()),
		))
	case d.StrictDialect && d.schema != nil && d.schema.Dialect() == "":
		msgs = append(msgs, check.NewWarning(
			"Schema does not declare its dialect.", d,
			check.WithID(CheckNoDialect),
			check.WithHint(fmt.Sprintf(`Add a "$schema" keyword; draft %s is assumed.`, d.Draft)),
		))
	case d.compiled.UnknownDialect():
		msgs = append(msgs, check.NewWarning(
			fmt.Sprintf("Schema declares the unknown dialect %q; draft 2020-12 is assumed.", d.schema.Dialect()), d,
			check.WithID(CheckUnknownDialect),
		))
	}
	return msgs
}

const msgSchemaMissing = "JSONSchemaFields must define a 'schema' attribute."

// schemaMissing reports whether no schema was attached, including
// descriptors declared as struct literals.
func (d *Descriptor) schemaMissing() bool {
	return errors.Is(d.schemaErr, schemadoc.ErrMissing) || d.schemaErr == nil && d.compiled == nil
}

// configError converts the schema problem to a ConfigError.
func (d *Descriptor) configError() error {
	if d.schemaMissing() {
		return &schemafield.ConfigError{Name: d.Name, ID: CheckSchemaMissing, Msg: msgSchemaMissing}
	}
	return &schemafield.ConfigError{Name: d.Name, ID: CheckSchemaInvalid, Msg: fmt.Sprintf("Given 'schema' is not a valid json schema: %v", d.schemaErr)}
}

// Clean validates a candidate value in two stages: the base checks for
// null, blank and JSON encodability, then the type specific checks (schema
// validation for JSON fields). Custom validators run last. It returns the
// cleaned value, which is the given value for JSON fields.
//
// Schema violations are reported as a *schemafield.ValidationError with code
// schemafield.CodeInvalidContent. A JSON field without a valid schema returns
// a *schemafield.ConfigError.
func (d *Descriptor) Clean(v any) (any, error) {
	if v == nil {
		if d.Nillable {
			return nil, nil
		}
		return nil, &schemafield.ValidationError{Name: d.Name, Code: schemafield.CodeNull, Msg: "This field cannot be null."}
	}
	if isEmpty(v) {
		if d.Optional {
			return v, nil
		}
		return nil, &schemafield.ValidationError{Name: d.Name, Code: schemafield.CodeBlank, Msg: "This field cannot be blank."}
	}
	var err error
	switch d.Type {
	case TypeJSON:
		err = d.cleanJSON(v)
	case TypeUUID:
		v, err = d.cleanUUID(v)
	default:
		err = fmt.Errorf("field: unknown type %v for field %q", d.Type, d.Name)
	}
	if err != nil {
		return nil, err
	}
	for _, fn := range d.Validators {
		if err := fn(v); err != nil {
			return nil, schemafield.NewValidationError(d.Name, err)
		}
	}
	return v, nil
}

func (d *Descriptor) cleanJSON(v any) error {
	inst, err := schemadoc.Normalize(v)
	if err != nil {
		return &schemafield.ValidationError{Name: d.Name, Code: schemafield.CodeInvalid, Msg: "Value must be valid JSON.", Err: err}
	}
	if d.compiled == nil {
		return d.configError()
	}
	err = d.compiled.Validate(inst)
	var cerr *schemadoc.ContentError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &cerr):
		return &schemafield.ValidationError{
			Name:   d.Name,
			Code:   schemafield.CodeInvalidContent,
			Msg:    "Invalid json content: {value}",
			Params: map[string]any{"value": cerr.Error(), "instance": v},
			Err:    cerr,
		}
	default:
		return &schemafield.ValidationError{Name: d.Name, Code: schemafield.CodeInvalid, Msg: "Value must be valid JSON.", Err: err}
	}
}

func isEmpty(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() == 0
	default:
		return false
	}
}
