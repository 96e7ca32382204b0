// Package schemadoc parses JSON Schema documents, checks that they are valid
// schemas for the dialect they declare, and validates JSON values against
// them. Validation itself is delegated to santhosh-tekuri/jsonschema.
package schemadoc

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

var (
	// ErrMissing is returned when no schema document was given.
	ErrMissing = errors.New("schemadoc: missing schema")
	// ErrNotObject is returned when the schema document is not a JSON object.
	ErrNotObject = errors.New("schemadoc: schema is not a json object")
)

// InvalidError is returned when a document is not a valid JSON Schema.
type InvalidError struct {
	Source string
	Err    error
}

// Error returns the error string.
func (e *InvalidError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("schemadoc: invalid schema %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("schemadoc: invalid schema: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *InvalidError) Unwrap() error {
	return e.Err
}

// Document is a parsed schema document. It is immutable: callers receive
// copies of the underlying value.
type Document struct {
	raw     []byte
	dialect string
	source  string
}

// Parse parses a schema document. It accepts JSON text ([]byte,
// json.RawMessage) or any value that encodes to a JSON object, such as
// map[string]any literals.
func Parse(v any) (*Document, error) {
	switch v := v.(type) {
	case nil:
		return nil, ErrMissing
	case *Document:
		if v == nil {
			return nil, ErrMissing
		}
		return v, nil
	case string:
		return nil, ErrNotObject
	}
	raw, ok := asBytes(v)
	if ok {
		raw = bytes.Clone(raw)
	} else {
		b, err := gojson.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("schemadoc: encode schema: %w", err)
		}
		raw = b
	}
	value, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("schemadoc: parse schema: %w", err)
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	doc := &Document{raw: raw}
	if s, ok := obj["$schema"].(string); ok {
		doc.dialect = s
	}
	return doc, nil
}

// Load reads a schema document from a .json, .yaml or .yml file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schemadoc: read %s: %w", path, err)
	}
	var doc *Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("schemadoc: parse %s: %w", path, err)
		}
		if v == nil {
			return nil, ErrMissing
		}
		if _, ok := v.(map[string]any); !ok {
			return nil, ErrNotObject
		}
		doc, err = Parse(v)
	default:
		doc, err = Parse(data)
	}
	if err != nil {
		return nil, err
	}
	doc.source = path
	return doc, nil
}

// Value returns a fresh copy of the document as a decoded JSON object.
func (d *Document) Value() map[string]any {
	v, err := jsonschema.UnmarshalJSON(bytes.NewReader(d.raw))
	if err != nil {
		return nil
	}
	obj, _ := v.(map[string]any)
	return obj
}

// Dialect returns the value of the "$schema" keyword, or "" when the
// document does not declare its dialect.
func (d *Document) Dialect() string {
	return d.dialect
}

// Source returns the file the document was loaded from, if any.
func (d *Document) Source() string {
	return d.source
}

// MarshalJSON implements json.Marshaler.
func (d *Document) MarshalJSON() ([]byte, error) {
	return bytes.Clone(d.raw), nil
}

// String returns the document as JSON text.
func (d *Document) String() string {
	return string(d.raw)
}

func asBytes(v any) ([]byte, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
		return rv.Bytes(), true
	}
	return nil, false
}
