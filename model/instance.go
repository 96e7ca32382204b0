package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/syssam/schemafield"
	"github.com/syssam/schemafield/dialect"
	"github.com/syssam/schemafield/dialect/sql"
)

// Instance is a row of a model.
type Instance struct {
	model  *Model
	id     int64
	values map[string]any
}

// NewInstance returns an unsaved instance. Fields missing from values get
// their default value.
func (m *Model) NewInstance(values map[string]any) *Instance {
	inst := &Instance{model: m, values: make(map[string]any, len(m.fields))}
	for _, fd := range m.fields {
		if v, ok := values[fd.Name]; ok {
			inst.values[fd.Name] = v
			continue
		}
		if v, ok := fd.DefaultValue(); ok {
			inst.values[fd.Name] = v
		}
	}
	return inst
}

// Model returns the model of the instance.
func (i *Instance) Model() *Model { return i.model }

// ID returns the primary key, or 0 if the instance was never saved.
func (i *Instance) ID() int64 { return i.id }

// Get returns the value of a field.
func (i *Instance) Get(name string) any { return i.values[name] }

// Set sets the value of a field.
func (i *Instance) Set(name string, v any) { i.values[name] = v }

// FullClean cleans every field and returns all validation errors as a
// single *schemafield.AggregateError. Configuration errors are returned as is.
func (i *Instance) FullClean() error {
	var errs []error
	for _, fd := range i.model.fields {
		v, err := fd.Clean(i.values[fd.Name])
		if err != nil {
			if schemafield.IsConfigError(err) {
				return err
			}
			errs = append(errs, err)
			continue
		}
		i.values[fd.Name] = v
	}
	return schemafield.NewAggregateError(errs...)
}

// Save cleans the instance and inserts or updates its row in a transaction.
// No transaction is started when validation fails.
func (i *Instance) Save(ctx context.Context, drv dialect.Driver) error {
	op := "create"
	if i.id != 0 {
		op = "update"
	}
	if err := i.FullClean(); err != nil {
		return schemafield.NewMutationError(i.model.name, op, err)
	}
	var (
		d       = drv.Dialect()
		columns = make([]string, 0, len(i.model.fields))
		args    = make([]any, 0, len(i.model.fields)+1)
	)
	for _, fd := range i.model.fields {
		v, err := fd.Encode(i.values[fd.Name])
		if err != nil {
			return schemafield.NewMutationError(i.model.name, op, err)
		}
		columns = append(columns, dialect.Quote(d, fd.Name))
		args = append(args, v)
	}
	err := sql.WithTx(ctx, drv, func(tx dialect.Tx) error {
		if op == "create" {
			return i.insert(ctx, tx, d, columns, args)
		}
		return i.update(ctx, tx, d, columns, args)
	})
	if err != nil {
		if op == "create" {
			i.id = 0
		}
		return schemafield.NewMutationError(i.model.name, op, err)
	}
	return nil
}

func (i *Instance) insert(ctx context.Context, drv dialect.ExecQuerier, d string, columns []string, args []any) error {
	marks := make([]string, len(args))
	for j := range args {
		marks[j] = dialect.Placeholder(d, j+1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		dialect.Quote(d, i.model.Table()), strings.Join(columns, ", "), strings.Join(marks, ", "))
	if d == dialect.Postgres {
		var rows sql.Rows
		if err := drv.Query(ctx, query+" RETURNING "+dialect.Quote(d, IDColumn), args, &rows); err != nil {
			return err
		}
		defer rows.Close()
		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return err
			}
			return fmt.Errorf("model: insert %s: no id returned", i.model.name)
		}
		return rows.Scan(&i.id)
	}
	var res sql.Result
	if err := drv.Exec(ctx, query, args, &res); err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("model: insert %s: last insert id: %w", i.model.name, err)
	}
	i.id = id
	return nil
}

func (i *Instance) update(ctx context.Context, drv dialect.ExecQuerier, d string, columns []string, args []any) error {
	sets := make([]string, len(columns))
	for j, c := range columns {
		sets[j] = c + " = " + dialect.Placeholder(d, j+1)
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		dialect.Quote(d, i.model.Table()), strings.Join(sets, ", "),
		dialect.Quote(d, IDColumn), dialect.Placeholder(d, len(args)+1))
	var res sql.Result
	if err := drv.Exec(ctx, query, append(args, i.id), &res); err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("model: update %s: rows affected: %w", i.model.name, err)
	}
	if n == 0 {
		return schemafield.NewNotFoundError(i.model.name, i.id)
	}
	return nil
}

// Get loads the instance with the given id. It returns a
// *schemafield.NotFoundError if no such row exists.
func (m *Model) Get(ctx context.Context, drv dialect.Driver, id int64) (*Instance, error) {
	d := drv.Dialect()
	columns := make([]string, 0, len(m.fields)+1)
	columns = append(columns, dialect.Quote(d, IDColumn))
	for _, fd := range m.fields {
		columns = append(columns, dialect.Quote(d, fd.Name))
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s",
		strings.Join(columns, ", "), dialect.Quote(d, m.Table()),
		dialect.Quote(d, IDColumn), dialect.Placeholder(d, 1))
	var rows sql.Rows
	if err := drv.Query(ctx, query, []any{id}, &rows); err != nil {
		return nil, schemafield.NewQueryError(m.name, "get", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, schemafield.NewQueryError(m.name, "get", err)
		}
		return nil, schemafield.NewNotFoundError(m.name, id)
	}
	inst := &Instance{model: m, values: make(map[string]any, len(m.fields))}
	raw := make([]any, len(m.fields))
	dest := make([]any, 0, len(m.fields)+1)
	dest = append(dest, &inst.id)
	for j := range raw {
		dest = append(dest, &raw[j])
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, schemafield.NewQueryError(m.name, "get", err)
	}
	for j, fd := range m.fields {
		v, err := fd.Decode(raw[j])
		if err != nil {
			return nil, schemafield.NewQueryError(m.name, "get", err)
		}
		inst.values[fd.Name] = v
	}
	return inst, nil
}
