// Package sqlschema provides SQL-specific annotations for fields and models.
//
//	field.JSONSchema("information").
//	    Schema(infoSchema).
//	    Annotations(sqlschema.ColumnType("jsonb"))
//
//	model.New("UserInformation", fields...).
//	    Annotations(sqlschema.Table("user_information"))
package sqlschema

// AnnotationName is the name used for SQL annotations.
const AnnotationName = "sql"

// Annotation holds SQL-specific settings for fields and models.
type Annotation struct {
	// Table overrides the database table name of a model.
	Table string

	// ColumnType sets a custom database column type.
	ColumnType string

	// ColumnTypes sets dialect-specific column types.
	// Map from dialect name to column type.
	ColumnTypes map[string]string

	// Comment is stored as the column or table comment.
	Comment string
}

// Name describes the annotation name.
func (Annotation) Name() string {
	return AnnotationName
}

// Table returns an annotation that overrides the table name.
func Table(name string) Annotation {
	return Annotation{Table: name}
}

// ColumnType returns an annotation that sets the column type for all dialects.
func ColumnType(typ string) Annotation {
	return Annotation{ColumnType: typ}
}

// ColumnTypeFor returns an annotation that sets the column type for one dialect.
func ColumnTypeFor(dialect, typ string) Annotation {
	return Annotation{ColumnTypes: map[string]string{dialect: typ}}
}

// Comment returns an annotation that sets the column or table comment.
func Comment(c string) Annotation {
	return Annotation{Comment: c}
}

// GetColumnType returns the column type for the dialect, or "" when unset.
func (a Annotation) GetColumnType(dialect string) string {
	if t, ok := a.ColumnTypes[dialect]; ok {
		return t
	}
	return a.ColumnType
}

// Merge merges annotations. Later values override earlier ones.
func Merge(annotations ...Annotation) Annotation {
	var m Annotation
	for _, a := range annotations {
		if a.Table != "" {
			m.Table = a.Table
		}
		if a.ColumnType != "" {
			m.ColumnType = a.ColumnType
		}
		if a.Comment != "" {
			m.Comment = a.Comment
		}
		for d, t := range a.ColumnTypes {
			if m.ColumnTypes == nil {
				m.ColumnTypes = make(map[string]string)
			}
			m.ColumnTypes[d] = t
		}
	}
	return m
}
