package field

import (
	"bytes"
	"database/sql/driver"
	"fmt"

	gojson "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Encode converts a cleaned value to its column representation.
// JSON values are stored as their JSON text and UUIDs in canonical form.
func (d *Descriptor) Encode(v any) (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	switch d.Type {
	case TypeJSON:
		b, err := gojson.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("field: encode %s: %w", d, err)
		}
		return string(b), nil
	case TypeUUID:
		switch u := v.(type) {
		case uuid.UUID:
			return u.String(), nil
		case string:
			return u, nil
		}
		return nil, fmt.Errorf("field: encode %s: unexpected type %T", d, v)
	}
	return nil, fmt.Errorf("field: encode %s: unknown type %v", d, d.Type)
}

// Decode converts a column value read from the database. JSON columns
// decode to the generic representation (map[string]any, []any, string, ...)
// with numbers kept exact as json.Number.
func (d *Descriptor) Decode(src any) (any, error) {
	if src == nil {
		return nil, nil
	}
	var b []byte
	switch src := src.(type) {
	case []byte:
		b = src
	case string:
		b = []byte(src)
	default:
		return nil, fmt.Errorf("field: decode %s: unexpected column type %T", d, src)
	}
	switch d.Type {
	case TypeJSON:
		dec := gojson.NewDecoder(bytes.NewReader(b))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("field: decode %s: %w", d, err)
		}
		return v, nil
	case TypeUUID:
		u, err := uuid.ParseBytes(b)
		if err != nil {
			return nil, fmt.Errorf("field: decode %s: %w", d, err)
		}
		return u, nil
	}
	return nil, fmt.Errorf("field: decode %s: unknown type %v", d, d.Type)
}
