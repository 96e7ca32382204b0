package schemafield

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("schemafield: entity not found")

// Validation error codes.
const (
	// CodeInvalidContent is set on errors raised when a value does not
	// validate against the field schema.
	CodeInvalidContent = "invalid_content"
	// CodeNull is set when a nil value is given to a non-nillable field.
	CodeNull = "null"
	// CodeBlank is set when an empty value is given to a non-optional field.
	CodeBlank = "blank"
	// CodeInvalid is set when a value cannot be represented as JSON,
	// or when a custom validator rejects it.
	CodeInvalid = "invalid"
)

// NotFoundError represents an error when an entity is not found.
type NotFoundError struct {
	label string
	id    any
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.id != nil {
		return fmt.Sprintf("schemafield: %s not found (id=%v)", e.label, e.id)
	}
	return fmt.Sprintf("schemafield: %s not found", e.label)
}

// Is reports whether the target error matches NotFoundError.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Label returns the model label.
func (e *NotFoundError) Label() string {
	return e.label
}

// ID returns the ID that was searched for, if available.
func (e *NotFoundError) ID() any {
	return e.id
}

// NewNotFoundError returns a new NotFoundError with the ID that was searched for.
func NewNotFoundError(label string, id any) *NotFoundError {
	return &NotFoundError{label: label, id: id}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// ValidationError is returned when a field value is rejected. It carries a
// stable machine-readable code and a message template whose {name}
// placeholders are filled from Params.
type ValidationError struct {
	Name   string         // Field name
	Code   string         // Machine-readable code, e.g. "invalid_content"
	Msg    string         // Message template
	Params map[string]any // Template parameters
	Err    error          // Underlying error
}

// Message returns the interpolated message.
func (e *ValidationError) Message() string {
	if len(e.Params) == 0 {
		return e.Msg
	}
	keys := make([]string, 0, len(e.Params))
	for k := range e.Params {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", fmt.Sprint(e.Params[k]))
	}
	return strings.NewReplacer(pairs...).Replace(e.Msg)
}

// Error returns the error string.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("schemafield: validator failed for field %q: %s", e.Name, e.Message())
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError returns a new ValidationError for the given field
// using the error text as message and CodeInvalid as code.
func NewValidationError(name string, err error) *ValidationError {
	return &ValidationError{Name: name, Code: CodeInvalid, Msg: err.Error(), Err: err}
}

// IsValidationError returns true if the error is a ValidationError.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var e *ValidationError
	return errors.As(err, &e)
}

// ValidationErrors returns all ValidationErrors held by err, looking inside
// AggregateError values.
func ValidationErrors(err error) []*ValidationError {
	if err == nil {
		return nil
	}
	var agg *AggregateError
	if errors.As(err, &agg) {
		var all []*ValidationError
		for _, e := range agg.Errors {
			all = append(all, ValidationErrors(e)...)
		}
		return all
	}
	var e *ValidationError
	if errors.As(err, &e) {
		return []*ValidationError{e}
	}
	return nil
}

// ConfigError is returned when a field definition is improperly configured,
// for example when its schema is missing or is not a valid JSON Schema.
// The same problems are reported by the checks pass before any value is saved.
type ConfigError struct {
	Name string // Field name
	ID   string // Check identifier, e.g. "fields.E101"
	Msg  string
}

// Error returns the error string.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("schemafield: improperly configured field %q: %s", e.Name, e.Msg)
}

// IsConfigError returns true if the error is a ConfigError.
func IsConfigError(err error) bool {
	if err == nil {
		return false
	}
	var e *ConfigError
	return errors.As(err, &e)
}

// AggregateError represents multiple errors collected during an operation.
type AggregateError struct {
	Errors []error
}

// Error returns the error string.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 0 {
		return "schemafield: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("schemafield: multiple errors:")
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  [%d] %v", i+1, err)
	}
	return sb.String()
}

// Unwrap returns the collected errors.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// NewAggregateError returns a new AggregateError if there are errors,
// otherwise returns nil.
func NewAggregateError(errs ...error) error {
	var filtered []error
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &AggregateError{Errors: filtered}
}

// QueryError wraps a query error with additional context.
type QueryError struct {
	Entity string // Model being queried
	Op     string // Operation (e.g., "select")
	Err    error  // Underlying error
}

// Error returns the error string.
func (e *QueryError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("schemafield: querying %s (%s): %v", e.Entity, e.Op, e.Err)
	}
	return fmt.Sprintf("schemafield: querying %s: %v", e.Entity, e.Err)
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// NewQueryError returns a new QueryError.
func NewQueryError(entity, op string, err error) *QueryError {
	return &QueryError{Entity: entity, Op: op, Err: err}
}

// MutationError wraps a mutation error with additional context.
type MutationError struct {
	Entity string // Model being mutated
	Op     string // Operation (e.g., "create", "update")
	Err    error  // Underlying error
}

// Error returns the error string.
func (e *MutationError) Error() string {
	return fmt.Sprintf("schemafield: %s %s: %v", e.Op, e.Entity, e.Err)
}

// Unwrap returns the underlying error.
func (e *MutationError) Unwrap() error {
	return e.Err
}

// NewMutationError returns a new MutationError.
func NewMutationError(entity, op string, err error) *MutationError {
	return &MutationError{Entity: entity, Op: op, Err: err}
}

// IsMutationError returns true if the error is a MutationError.
func IsMutationError(err error) bool {
	if err == nil {
		return false
	}
	var e *MutationError
	return errors.As(err, &e)
}
