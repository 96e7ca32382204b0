// Package schemafield provides a JSON column field type whose values are
// validated against a JSON Schema document before they are persisted.
//
// A field is declared with the fluent builders of the field package:
//
//	field.JSONSchema("information").
//	    Schema(map[string]any{
//	        "$schema":  "https://json-schema.org/draft/2020-12/schema",
//	        "type":     "object",
//	        "required": []any{"name", "email"},
//	        "properties": map[string]any{
//	            "name":  map[string]any{"type": "string", "maxLength": 255},
//	            "email": map[string]any{"type": "string", "format": "email"},
//	        },
//	    })
//
// # Checks
//
// The schema itself is verified by the checks pass (package check), not on
// every save. A field without a schema, or with a document that is not a
// valid JSON Schema, reports exactly one error:
//
//	reg := check.NewRegistry()
//	reg.RegisterChecker(model)
//	res, _ := reg.Run(ctx)
//	if res.HasErrors() {
//	    log.Fatal(res)
//	}
//
// # Validation
//
// Saving a model instance runs its full clean first. Values that do not
// satisfy the schema are rejected with a *ValidationError whose Code is
// CodeInvalidContent and whose message embeds the validator explanation:
//
//	err := inst.Save(ctx, drv)
//	for _, verr := range schemafield.ValidationErrors(err) {
//	    fmt.Println(verr.Code, verr.Message())
//	}
//
// Sub-packages:
//
//   - schemadoc: schema documents, compilation and content validation
//   - check: the static checks pass
//   - schema/field: field builders and descriptors
//   - model: models, full clean and persistence
//   - dialect, dialect/sql, dialect/sql/schema: drivers and migrations
package schemafield
