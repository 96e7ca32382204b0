package schemadoc

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Violation is a single schema violation.
type Violation struct {
	// Location is the JSON pointer of the offending value; "" is the root.
	Location string
	// Keyword is the path of the failing keyword in the schema,
	// e.g. "/properties/email/format".
	Keyword string
	// Message explains the violation, e.g. "'x' is not of type 'boolean'".
	Message string
}

// ContentError is returned when a value does not validate against a schema.
type ContentError struct {
	Violations []Violation
	// Instance is the rejected value in its generic JSON representation.
	Instance any
	Err      *jsonschema.ValidationError
}

// Error returns the message of the most relevant violation: the one closest
// to the root of the value, ties broken by location and keyword path.
func (e *ContentError) Error() string {
	if len(e.Violations) == 0 {
		return "value does not match the schema"
	}
	return e.Violations[0].Message
}

// Unwrap returns the validation error of the underlying library.
func (e *ContentError) Unwrap() error {
	return e.Err
}

func newContentError(verr *jsonschema.ValidationError, inst any) *ContentError {
	cerr := &ContentError{Instance: inst, Err: verr}
	all := leaves(verr, nil)
	// The library collects object errors in map order.
	slices.SortStableFunc(all, func(a, b *jsonschema.ValidationError) int {
		return cmp.Or(
			cmp.Compare(len(a.InstanceLocation), len(b.InstanceLocation)),
			slices.Compare(a.InstanceLocation, b.InstanceLocation),
			slices.Compare(a.ErrorKind.KeywordPath(), b.ErrorKind.KeywordPath()),
		)
	})
	for _, leaf := range all {
		cerr.Violations = append(cerr.Violations, Violation{
			Location: pointer(leaf.InstanceLocation),
			Keyword:  pointer(leaf.ErrorKind.KeywordPath()),
			Message:  describe(leaf.ErrorKind, lookup(inst, leaf.InstanceLocation)),
		})
	}
	return cerr
}

func leaves(e *jsonschema.ValidationError, out []*jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(e.Causes) == 0 {
		return append(out, e)
	}
	for _, c := range e.Causes {
		out = leaves(c, out)
	}
	return out
}

func describe(k jsonschema.ErrorKind, v any) string {
	switch k := k.(type) {
	case *kind.Type:
		return fmt.Sprintf("%s is not of type %s", repr(v), quoteAll(k.Want))
	case *kind.Format:
		return fmt.Sprintf("%s is not a %s", repr(v), quote(k.Want))
	case *kind.Required:
		if len(k.Missing) == 1 {
			return fmt.Sprintf("%s is a required property", quote(k.Missing[0]))
		}
		return fmt.Sprintf("%s are required properties", quoteAll(k.Missing))
	case *kind.AdditionalProperties:
		verb := "was"
		if len(k.Properties) > 1 {
			verb = "were"
		}
		return fmt.Sprintf("Additional properties are not allowed (%s %s unexpected)", quoteAll(k.Properties), verb)
	case *kind.Enum:
		return fmt.Sprintf("%s is not one of %s", repr(v), repr(k.Want))
	case *kind.Const:
		return fmt.Sprintf("%s was expected", repr(k.Want))
	case *kind.MinLength:
		return fmt.Sprintf("%s is too short", repr(v))
	case *kind.MaxLength:
		return fmt.Sprintf("%s is too long", repr(v))
	case *kind.Pattern:
		return fmt.Sprintf("%s does not match %s", repr(v), quote(k.Want))
	case *kind.FalseSchema:
		return fmt.Sprintf("False schema does not allow %s", repr(v))
	}
	return k.LocalizedString(printer)
}

func lookup(v any, loc []string) any {
	for _, tok := range loc {
		switch c := v.(type) {
		case map[string]any:
			v = c[tok]
		case []any:
			i, err := strconv.Atoi(tok)
			if err != nil || i < 0 || i >= len(c) {
				return nil
			}
			v = c[i]
		default:
			return nil
		}
	}
	return v
}

func pointer(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteByte('/')
		t = strings.ReplaceAll(t, "~", "~0")
		sb.WriteString(strings.ReplaceAll(t, "/", "~1"))
	}
	return sb.String()
}

func quote(s string) string {
	return "'" + s + "'"
}

func quoteAll(ss []string) string {
	q := make([]string, len(ss))
	for i, s := range ss {
		q[i] = quote(s)
	}
	return strings.Join(q, ", ")
}

// repr formats a JSON value for messages: strings are single quoted,
// everything else is rendered as compact JSON.
func repr(v any) string {
	switch v := v.(type) {
	case string:
		return quote(v)
	case json.Number:
		return v.String()
	}
	b, err := gojson.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
