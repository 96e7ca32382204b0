// Package schema creates and updates the database tables of models using
// Atlas for inspection, diffing and planning.
package schema

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"

	"github.com/syssam/schemafield/dialect"
	"github.com/syssam/schemafield/dialect/sql"
	"github.com/syssam/schemafield/dialect/sqlschema"
	"github.com/syssam/schemafield/model"
	"github.com/syssam/schemafield/schema/field"
)

// MigrateOption allows configuring Migrate using functional arguments.
type MigrateOption func(*Migrate)

// WithDropColumn sets the columns dropping option to the migration.
// By default, dropping a column is rejected.
func WithDropColumn(b bool) MigrateOption {
	return func(m *Migrate) {
		m.dropColumns = b
	}
}

// WithDropIndex sets the indexes dropping option to the migration.
// By default, dropping an index is rejected.
func WithDropIndex(b bool) MigrateOption {
	return func(m *Migrate) {
		m.dropIndexes = b
	}
}

// WithSchemaName sets the database schema the tables are created in.
// Default is the schema of the connection.
func WithSchemaName(name string) MigrateOption {
	return func(m *Migrate) {
		m.schema = name
	}
}

// WithLogger sets the logger used to report planned changes.
func WithLogger(l *slog.Logger) MigrateOption {
	return func(m *Migrate) {
		m.logger = l
	}
}

// Migrate runs the migration logic for the SQL dialects.
type Migrate struct {
	drv         *sql.Driver
	atlas       migrate.Driver
	schema      string
	dropColumns bool
	dropIndexes bool
	logger      *slog.Logger
}

// NewMigrate creates a migration structure for the given SQL driver.
func NewMigrate(drv *sql.Driver, opts ...MigrateOption) (*Migrate, error) {
	m := &Migrate{drv: drv, logger: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	var err error
	switch d := drv.Dialect(); d {
	case dialect.SQLite:
		m.atlas, err = sqlite.Open(drv.DB())
	case dialect.MySQL:
		m.atlas, err = mysql.Open(drv.DB())
	case dialect.Postgres:
		m.atlas, err = postgres.Open(drv.DB())
	default:
		return nil, fmt.Errorf("sql/schema: unsupported dialect %q", d)
	}
	if err != nil {
		return nil, fmt.Errorf("sql/schema: open atlas driver: %w", err)
	}
	return m, nil
}

// Create creates or updates the tables of the given models.
// Running it again with the same models is a no-op.
func Create(ctx context.Context, drv *sql.Driver, models ...*model.Model) error {
	m, err := NewMigrate(drv)
	if err != nil {
		return err
	}
	return m.Create(ctx, models...)
}

// Create computes the changes between the database and the models and
// applies them.
func (m *Migrate) Create(ctx context.Context, models ...*model.Model) error {
	changes, err := m.Diff(ctx, models...)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		m.logger.DebugContext(ctx, "schema is up to date")
		return nil
	}
	if r := ValidateChanges(changes, m.validateOptions()...); r.HasErrors() {
		return fmt.Errorf("sql/schema: refusing to apply changes:\n%s", r)
	}
	m.logger.InfoContext(ctx, "applying schema changes", "changes", len(changes))
	if err := m.atlas.ApplyChanges(ctx, changes); err != nil {
		return fmt.Errorf("sql/schema: apply changes: %w", err)
	}
	return nil
}

// Diff returns the changes needed to bring the database in line with the models.
func (m *Migrate) Diff(ctx context.Context, models ...*model.Model) ([]schema.Change, error) {
	tables, err := Tables(m.drv.Dialect(), models...)
	if err != nil {
		return nil, err
	}
	if r := ValidateTables(tables); r.HasErrors() {
		return nil, fmt.Errorf("sql/schema: invalid tables:\n%s", r)
	}
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}
	current, err := m.atlas.InspectSchema(ctx, m.schema, &schema.InspectOptions{
		Mode:   schema.InspectSchemas | schema.InspectTables,
		Tables: names,
	})
	if err != nil {
		return nil, fmt.Errorf("sql/schema: inspect schema: %w", err)
	}
	desired := schema.New(current.Name).AddTables(tables...)
	desired.Attrs = current.Attrs
	changes, err := m.atlas.SchemaDiff(current, desired)
	if err != nil {
		return nil, fmt.Errorf("sql/schema: diff schema: %w", err)
	}
	return changes, nil
}

func (m *Migrate) validateOptions() []ValidateOption {
	var opts []ValidateOption
	if m.dropColumns {
		opts = append(opts, AllowDropColumn())
	}
	if m.dropIndexes {
		opts = append(opts, AllowDropIndex())
	}
	return opts
}

// Tables returns the Atlas tables of the models for the given dialect.
func Tables(d string, models ...*model.Model) ([]*schema.Table, error) {
	tables := make([]*schema.Table, 0, len(models))
	for _, mdl := range models {
		t, err := table(d, mdl)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func table(d string, mdl *model.Model) (*schema.Table, error) {
	t := schema.NewTable(mdl.Table())
	if c := mdl.Comment(); c != "" && d != dialect.SQLite {
		t.SetComment(c)
	}
	id, err := idColumn(d)
	if err != nil {
		return nil, err
	}
	t.AddColumns(id)
	t.SetPrimaryKey(schema.NewPrimaryKey(id))
	for _, fd := range mdl.Fields() {
		c, err := column(d, fd)
		if err != nil {
			return nil, fmt.Errorf("sql/schema: column %s: %w", fd, err)
		}
		t.AddColumns(c)
		if fd.Unique {
			t.AddIndexes(schema.NewUniqueIndex(t.Name + "_" + fd.Name + "_key").AddColumns(c))
		}
	}
	for _, desc := range mdl.IndexDescriptors() {
		idx := schema.NewIndex(desc.Name(t.Name)).SetUnique(desc.Unique)
		for _, f := range desc.Fields {
			c, ok := t.Column(f)
			if !ok {
				return nil, fmt.Errorf("sql/schema: index %s: unknown column %q", idx.Name, f)
			}
			idx.AddColumns(c)
		}
		t.AddIndexes(idx)
	}
	return t, nil
}

func idColumn(d string) (*schema.Column, error) {
	switch d {
	case dialect.SQLite:
		return schema.NewIntColumn(model.IDColumn, "integer").AddAttrs(&sqlite.AutoIncrement{}), nil
	case dialect.MySQL:
		return schema.NewIntColumn(model.IDColumn, "bigint").AddAttrs(&mysql.AutoIncrement{}), nil
	case dialect.Postgres:
		return schema.NewIntColumn(model.IDColumn, "bigint").AddAttrs(&postgres.Identity{Generation: "BY DEFAULT"}), nil
	}
	return nil, fmt.Errorf("sql/schema: unsupported dialect %q", d)
}

// columnTypes holds the default column type per field type and dialect.
var columnTypes = map[field.Type]map[string]string{
	field.TypeJSON: {
		dialect.SQLite:   "json",
		dialect.MySQL:    "json",
		dialect.Postgres: "jsonb",
	},
	field.TypeUUID: {
		dialect.SQLite:   "uuid",
		dialect.MySQL:    "char(36)",
		dialect.Postgres: "uuid",
	},
}

// ColumnType returns the column type of the field in the given dialect.
func ColumnType(d string, fd *field.Descriptor) (string, error) {
	if typ := sqlschema.Merge(fd.Annotations...).GetColumnType(d); typ != "" {
		return typ, nil
	}
	if typ, ok := columnTypes[fd.Type][d]; ok {
		return typ, nil
	}
	return "", fmt.Errorf("no column type for %s in dialect %q", fd.Type, d)
}

func column(d string, fd *field.Descriptor) (*schema.Column, error) {
	raw, err := ColumnType(d, fd)
	if err != nil {
		return nil, err
	}
	typ, err := parseType(d, raw)
	if err != nil {
		return nil, err
	}
	c := schema.NewColumn(fd.Name).SetType(typ).SetNull(fd.Nillable)
	if fd.Comment != "" && d != dialect.SQLite {
		c.SetComment(fd.Comment)
	}
	return c, nil
}

func parseType(d, raw string) (schema.Type, error) {
	switch d {
	case dialect.SQLite:
		return sqlite.ParseType(raw)
	case dialect.MySQL:
		return mysql.ParseType(raw)
	case dialect.Postgres:
		return postgres.ParseType(raw)
	}
	return nil, errors.New("unsupported dialect " + d)
}
