package schemadoc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Draft selects the JSON Schema dialect used for documents that do not
// declare one with "$schema".
type Draft int

// Supported dialects.
const (
	Draft2020 Draft = iota
	Draft2019
	Draft7
	Draft6
	Draft4
)

var drafts = map[Draft]struct {
	name string
	lib  *jsonschema.Draft
}{
	Draft2020: {"2020-12", jsonschema.Draft2020},
	Draft2019: {"2019-09", jsonschema.Draft2019},
	Draft7:    {"7", jsonschema.Draft7},
	Draft6:    {"6", jsonschema.Draft6},
	Draft4:    {"4", jsonschema.Draft4},
}

// String returns the draft name, e.g. "2020-12".
func (d Draft) String() string {
	if v, ok := drafts[d]; ok {
		return v.name
	}
	return fmt.Sprintf("Draft(%d)", int(d))
}

// ParseDraft parses a draft name as returned by Draft.String.
func ParseDraft(s string) (Draft, error) {
	for d, v := range drafts {
		if v.name == s || "draft"+v.name == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("schemadoc: unknown draft %q", s)
}

const defaultLocation = "mem:///schemafield/schema.json"

type compileConfig struct {
	draft    Draft
	location string
}

// Option configures schema compilation.
type Option func(*compileConfig)

// WithDraft sets the dialect used when the document has no "$schema".
// Default is Draft2020.
func WithDraft(d Draft) Option {
	return func(c *compileConfig) {
		c.draft = d
	}
}

// WithLocation sets the resource URL the document is registered under.
// Relative references inside the document are resolved against it.
func WithLocation(loc string) Option {
	return func(c *compileConfig) {
		c.location = loc
	}
}

// Schema is a compiled schema. It is safe for concurrent use.
type Schema struct {
	doc      *Document
	sch      *jsonschema.Schema
	fallback bool
}

// Compile checks the document against the meta-schema of its dialect and
// compiles it. Format assertions are always enabled, so keywords such as
// "format": "email" reject malformed values. A document declaring a "$schema"
// that is not a known dialect is compiled as Draft2020 and reports
// UnknownDialect.
func Compile(doc *Document, opts ...Option) (*Schema, error) {
	if doc == nil {
		return nil, ErrMissing
	}
	cfg := compileConfig{draft: Draft2020, location: defaultLocation}
	for _, opt := range opts {
		opt(&cfg)
	}
	d, ok := drafts[cfg.draft]
	if !ok {
		return nil, fmt.Errorf("schemadoc: unknown draft %v", cfg.draft)
	}
	value, fallback := doc.Value(), false
	if dialect := doc.Dialect(); dialect != "" && !knownDialect(dialect) {
		delete(value, "$schema")
		d, fallback = drafts[Draft2020], true
	}
	c := jsonschema.NewCompiler()
	c.DefaultDraft(d.lib)
	c.AssertFormat()
	if err := c.AddResource(cfg.location, value); err != nil {
		return nil, &InvalidError{Source: doc.source, Err: err}
	}
	sch, err := c.Compile(cfg.location)
	if err != nil {
		return nil, &InvalidError{Source: doc.source, Err: err}
	}
	return &Schema{doc: doc, sch: sch, fallback: fallback}, nil
}

func knownDialect(u string) bool {
	norm := func(u string) string {
		u = strings.TrimSuffix(u, "#")
		if rest, ok := strings.CutPrefix(u, "http://"); ok {
			return rest
		}
		return strings.TrimPrefix(u, "https://")
	}
	u = norm(u)
	if u == "json-schema.org/schema" {
		return true
	}
	for _, d := range drafts {
		if norm(d.lib.String()) == u {
			return true
		}
	}
	return false
}

// UnknownDialect reports whether the document declared a "$schema" that is
// not a known dialect and was compiled as Draft2020 instead.
func (s *Schema) UnknownDialect() bool {
	return s.fallback
}

// Check reports whether v is a valid schema document. It returns nil when
// valid, ErrMissing when v is nil, and an *InvalidError otherwise.
func Check(v any, opts ...Option) error {
	doc, err := Parse(v)
	switch {
	case errors.Is(err, ErrMissing):
		return ErrMissing
	case err != nil:
		return &InvalidError{Err: err}
	}
	_, err = Compile(doc, opts...)
	return err
}

// Document returns the source document.
func (s *Schema) Document() *Document {
	return s.doc
}

// Validate validates v against the schema. Values that are not raw JSON
// (structs, typed maps and slices) are converted through a JSON round trip
// first. A schema violation is reported as a *ContentError.
func (s *Schema) Validate(v any) error {
	inst, err := Normalize(v)
	if err != nil {
		return err
	}
	err = s.sch.Validate(inst)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if errors.As(err, &verr) {
		return newContentError(verr, inst)
	}
	return fmt.Errorf("schemadoc: validate: %w", err)
}

// Normalize converts v to the generic JSON representation
// (map[string]any, []any, string, bool, numbers and nil).
func Normalize(v any) (any, error) {
	if isRaw(v) {
		return v, nil
	}
	b, err := gojson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("schemadoc: encode value: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("schemadoc: decode value: %w", err)
	}
	return inst, nil
}

func isRaw(v any) bool {
	switch v := v.(type) {
	case nil, bool, string, json.Number, float64, float32,
		int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case []any:
		for _, e := range v {
			if !isRaw(e) {
				return false
			}
		}
		return true
	case map[string]any:
		for _, e := range v {
			if !isRaw(e) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
