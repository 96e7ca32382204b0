package schema

import (
	"fmt"
	"strings"

	"ariga.io/atlas/sql/schema"
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Table   string
	Column  string
	Message string
	// Breaking indicates if this is a breaking change.
	Breaking bool
}

func (e *ValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s.%s: %s", e.Table, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Table, e.Message)
}

// ValidationResult holds the results of schema validation.
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []*ValidationError
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// HasBreakingChanges returns true if there are any breaking changes.
func (r *ValidationResult) HasBreakingChanges() bool {
	for _, e := range r.Errors {
		if e.Breaking {
			return true
		}
	}
	for _, w := range r.Warnings {
		if w.Breaking {
			return true
		}
	}
	return false
}

// String returns a human-readable summary of the validation result.
func (r *ValidationResult) String() string {
	var sb strings.Builder
	write := func(title string, errs []*ValidationError) {
		if len(errs) == 0 {
			return
		}
		sb.WriteString(title)
		sb.WriteString(":\n")
		for _, e := range errs {
			sb.WriteString("  - ")
			sb.WriteString(e.Error())
			if e.Breaking {
				sb.WriteString(" [BREAKING]")
			}
			sb.WriteString("\n")
		}
	}
	write("Errors", r.Errors)
	write("Warnings", r.Warnings)
	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}
	return sb.String()
}

// ValidateOption configures change validation.
type ValidateOption func(*validateConfig)

type validateConfig struct {
	allowDropColumn    bool
	allowDropTable     bool
	allowDropIndex     bool
	allowNullToNotNull bool
}

// AllowDropColumn allows dropping columns without error.
func AllowDropColumn() ValidateOption {
	return func(c *validateConfig) {
		c.allowDropColumn = true
	}
}

// AllowDropTable allows dropping tables without error.
func AllowDropTable() ValidateOption {
	return func(c *validateConfig) {
		c.allowDropTable = true
	}
}

// AllowDropIndex allows dropping indexes without error.
func AllowDropIndex() ValidateOption {
	return func(c *validateConfig) {
		c.allowDropIndex = true
	}
}

// AllowNullToNotNull allows changing nullable columns to not null.
func AllowNullToNotNull() ValidateOption {
	return func(c *validateConfig) {
		c.allowNullToNotNull = true
	}
}

// ValidateChanges validates a changeset computed by Atlas. It returns errors
// for breaking changes and warnings for potentially dangerous operations.
//
//	changes, _ := m.Diff(ctx, models...)
//	if r := schema.ValidateChanges(changes); r.HasBreakingChanges() {
//	    log.Fatal("Breaking changes detected:", r)
//	}
func ValidateChanges(changes []schema.Change, opts ...ValidateOption) *ValidationResult {
	cfg := &validateConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	result := &ValidationResult{}
	add := func(allowed bool, err *ValidationError) {
		if allowed {
			result.Warnings = append(result.Warnings, err)
		} else {
			result.Errors = append(result.Errors, err)
		}
	}
	for _, c := range changes {
		switch c := c.(type) {
		case *schema.DropTable:
			add(cfg.allowDropTable, &ValidationError{Table: c.T.Name, Message: "table will be dropped", Breaking: true})
		case *schema.ModifyTable:
			validateTableChanges(c.T, c.Changes, cfg, result, add)
		}
	}
	return result
}

func validateTableChanges(t *schema.Table, changes []schema.Change, cfg *validateConfig, result *ValidationResult, add func(bool, *ValidationError)) {
	for _, c := range changes {
		switch c := c.(type) {
		case *schema.DropColumn:
			add(cfg.allowDropColumn, &ValidationError{Table: t.Name, Column: c.C.Name, Message: "column will be dropped", Breaking: true})
		case *schema.DropIndex:
			add(cfg.allowDropIndex, &ValidationError{Table: t.Name, Message: fmt.Sprintf("index %q will be dropped", c.I.Name)})
		case *schema.AddColumn:
			if !c.C.Type.Null && c.C.Default == nil {
				result.Warnings = append(result.Warnings, &ValidationError{
					Table:   t.Name,
					Column:  c.C.Name,
					Message: "new NOT NULL column without default value may fail if table has data",
				})
			}
		case *schema.AddIndex:
			if c.I.Unique {
				result.Warnings = append(result.Warnings, &ValidationError{
					Table:   t.Name,
					Message: fmt.Sprintf("adding unique index %q may fail if duplicate values exist", c.I.Name),
				})
			}
		case *schema.ModifyColumn:
			if c.Change.Is(schema.ChangeType) {
				result.Warnings = append(result.Warnings, &ValidationError{
					Table:   t.Name,
					Column:  c.To.Name,
					Message: fmt.Sprintf("column type changing from %s to %s", typeName(c.From), typeName(c.To)),
				})
			}
			if c.Change.Is(schema.ChangeNull) && c.From.Type.Null && !c.To.Type.Null {
				add(cfg.allowNullToNotNull, &ValidationError{
					Table:    t.Name,
					Column:   c.To.Name,
					Message:  "column changing from NULL to NOT NULL may fail if column has NULL values",
					Breaking: true,
				})
			}
		}
	}
}

func typeName(c *schema.Column) string {
	if c.Type == nil {
		return "?"
	}
	if c.Type.Raw != "" {
		return c.Type.Raw
	}
	return fmt.Sprintf("%T", c.Type.Type)
}

// ValidateTable validates a single table definition.
func ValidateTable(t *schema.Table) *ValidationResult {
	result := &ValidationResult{}

	if t.PrimaryKey == nil || len(t.PrimaryKey.Parts) == 0 {
		result.Warnings = append(result.Warnings, &ValidationError{
			Table:   t.Name,
			Message: "table has no primary key",
		})
	}

	colNames := make(map[string]bool)
	for _, c := range t.Columns {
		if colNames[c.Name] {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name,
				Column:  c.Name,
				Message: "duplicate column name",
			})
		}
		colNames[c.Name] = true
	}

	idxNames := make(map[string]bool)
	for _, idx := range t.Indexes {
		if idxNames[idx.Name] {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name,
				Message: fmt.Sprintf("duplicate index name: %s", idx.Name),
			})
		}
		idxNames[idx.Name] = true

		for _, p := range idx.Parts {
			if p.C != nil && !colNames[p.C.Name] {
				result.Errors = append(result.Errors, &ValidationError{
					Table:   t.Name,
					Message: fmt.Sprintf("index %q references non-existent column %q", idx.Name, p.C.Name),
				})
			}
		}
	}
	return result
}

// ValidateTables validates all tables before they are migrated.
func ValidateTables(tables []*schema.Table) *ValidationResult {
	result := &ValidationResult{}
	tableNames := make(map[string]bool)
	for _, t := range tables {
		if tableNames[t.Name] {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name,
				Message: "duplicate table name",
			})
		}
		tableNames[t.Name] = true

		r := ValidateTable(t)
		result.Errors = append(result.Errors, r.Errors...)
		result.Warnings = append(result.Warnings, r.Warnings...)
	}
	return result
}
