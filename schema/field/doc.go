// Package field provides fluent builders for model fields.
//
// The main field type is JSONSchema, a JSON column whose values must
// validate against a JSON Schema document:
//
//	field.JSONSchema("information").
//	    Schema(map[string]any{
//	        "$schema": "https://json-schema.org/draft/2020-12/schema",
//	        "type":    "object",
//	        "properties": map[string]any{
//	            "name":  map[string]any{"type": "string", "maxLength": 255},
//	            "email": map[string]any{"type": "string", "format": "email"},
//	        },
//	        "required":             []any{"name", "email"},
//	        "additionalProperties": false,
//	    }).
//	    Default(func() map[string]any { return map[string]any{} })
//
// The schema is compiled when the descriptor is built. A missing or invalid
// schema does not panic; it is reported by the checks pass:
//
//	for _, msg := range fd.Check() {
//	    fmt.Println(msg) // UserInformation.information: (fields.E100) ...
//	}
//
// # Validation
//
// Clean runs the base validation (null, blank and JSON encodability) and
// then validates the value against the schema with format assertions
// enabled. Schema violations are returned as *schemafield.ValidationError
// with code "invalid_content":
//
//	_, err := fd.Clean(map[string]any{"email": "nope"})
//	// Invalid json content: 'nope' is not a 'email'
//
// # Nullability
//
//	// Optional: empty values ({}, [], "") skip validation
//	field.JSONSchema("settings").Schema(s).Optional()
//
//	// Nillable: nil is stored as NULL and skips validation
//	field.JSONSchema("extra").Schema(s).Nillable()
package field
