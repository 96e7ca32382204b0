package schema

import (
	"context"
	stdsql "database/sql"
	"encoding/json"
	"testing"

	"ariga.io/atlas/sql/schema"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/syssam/schemafield/dialect"
	"github.com/syssam/schemafield/dialect/sql"
	"github.com/syssam/schemafield/dialect/sqlschema"
	"github.com/syssam/schemafield/model"
	"github.com/syssam/schemafield/schema/field"
	"github.com/syssam/schemafield/schema/index"
	"github.com/syssam/schemafield/schema/mixin"
)

var profileSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"name": map[string]any{"type": "string"},
	},
	"required": []any{"name"},
}

func newProfile(extra ...field.Builder) *model.Model {
	fields := append([]field.Builder{
		field.UUID("user_id").Default(uuid.New).Unique(),
		field.JSONSchema("profile").Schema(profileSchema),
	}, extra...)
	return model.New("UserProfile", fields...)
}

func openSQLite(t *testing.T) *sql.Driver {
	t.Helper()
	db, err := stdsql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared&_pragma=foreign_keys(1)")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return sql.OpenDB(dialect.SQLite, db)
}

func TestTables(t *testing.T) {
	tests := []struct {
		dialect  string
		id       string
		json     schema.Type
		uuidType schema.Type
	}{
		{dialect.SQLite, "integer", &schema.JSONType{T: "json"}, &schema.UUIDType{T: "uuid"}},
		{dialect.MySQL, "bigint", &schema.JSONType{T: "json"}, &schema.StringType{T: "char", Size: 36}},
		{dialect.Postgres, "bigint", &schema.JSONType{T: "jsonb"}, &schema.UUIDType{T: "uuid"}},
	}
	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			tables, err := Tables(tt.dialect, newProfile())
			require.NoError(t, err)
			require.Len(t, tables, 1)
			tbl := tables[0]
			assert.Equal(t, "user_profiles", tbl.Name)
			require.Len(t, tbl.Columns, 3)
			assert.Equal(t, "id", tbl.Columns[0].Name)
			assert.Equal(t, tt.id, tbl.Columns[0].Type.Type.(*schema.IntegerType).T)
			assert.NotEmpty(t, tbl.Columns[0].Attrs)
			assert.Equal(t, tt.uuidType, tbl.Columns[1].Type.Type)
			assert.Equal(t, tt.json, tbl.Columns[2].Type.Type)
			assert.False(t, tbl.Columns[2].Type.Null)
			require.NotNil(t, tbl.PrimaryKey)
			require.Len(t, tbl.Indexes, 1)
			assert.Equal(t, "user_profiles_user_id_key", tbl.Indexes[0].Name)
			assert.True(t, tbl.Indexes[0].Unique)
		})
	}

	_, err := Tables("oracle", newProfile())
	assert.Error(t, err)
}

func TestColumnType(t *testing.T) {
	fd := field.JSONSchema("data").
		Schema(profileSchema).
		Nillable().
		Annotations(sqlschema.ColumnType("text"), sqlschema.ColumnTypeFor(dialect.Postgres, "json")).
		Descriptor()
	typ, err := ColumnType(dialect.Postgres, fd)
	require.NoError(t, err)
	assert.Equal(t, "json", typ)
	typ, err = ColumnType(dialect.MySQL, fd)
	require.NoError(t, err)
	assert.Equal(t, "text", typ)

	tables, err := Tables(dialect.SQLite, model.New("Doc", field.JSONSchema("data").Schema(profileSchema).Nillable()))
	require.NoError(t, err)
	assert.True(t, tables[0].Columns[1].Type.Null)
}

func TestTables_Indexes(t *testing.T) {
	m := newProfile().
		Mixin(mixin.Metadata{}).
		Indexes(index.Fields("user_id", "metadata").Unique(), index.Fields("profile").StorageKey("profile_idx"))
	tables, err := Tables(dialect.Postgres, m)
	require.NoError(t, err)
	tbl := tables[0]
	require.Len(t, tbl.Columns, 4)
	assert.True(t, tbl.Columns[3].Type.Null)
	require.Len(t, tbl.Indexes, 3)
	assert.Equal(t, "user_profiles_user_id_metadata_key", tbl.Indexes[1].Name)
	assert.True(t, tbl.Indexes[1].Unique)
	require.Len(t, tbl.Indexes[1].Parts, 2)
	assert.Equal(t, "metadata", tbl.Indexes[1].Parts[1].C.Name)
	assert.Equal(t, "profile_idx", tbl.Indexes[2].Name)
	assert.False(t, tbl.Indexes[2].Unique)

	_, err = Tables(dialect.Postgres, newProfile().Indexes(index.Fields("missing")))
	assert.ErrorContains(t, err, `unknown column "missing"`)
}

func TestCreate_Indexes(t *testing.T) {
	ctx := context.Background()
	drv := openSQLite(t)
	m := newProfile().
		Mixin(mixin.Metadata{}).
		Indexes(index.Fields("user_id", "metadata").Unique())
	require.NoError(t, Create(ctx, drv, m))

	mg, err := NewMigrate(drv)
	require.NoError(t, err)
	changes, err := mg.Diff(ctx, m)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestCreate_SQLite(t *testing.T) {
	ctx := context.Background()
	drv := openSQLite(t)
	profiles := newProfile()

	require.NoError(t, Create(ctx, drv, profiles))
	// Idempotent.
	require.NoError(t, Create(ctx, drv, profiles))

	m, err := NewMigrate(drv)
	require.NoError(t, err)
	changes, err := m.Diff(ctx, profiles)
	require.NoError(t, err)
	assert.Empty(t, changes)

	inst := profiles.NewInstance(map[string]any{"profile": map[string]any{"name": "foo"}})
	require.NoError(t, inst.Save(ctx, drv))
	got, err := profiles.Get(ctx, drv, inst.ID())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "foo"}, got.Get("profile"))
	assert.Equal(t, inst.Get("user_id"), got.Get("user_id"))

	// A unique index is created for user_id.
	dup := profiles.NewInstance(map[string]any{
		"user_id": inst.Get("user_id"),
		"profile": map[string]any{"name": "bar"},
	})
	assert.Error(t, dup.Save(ctx, drv))
}

func TestCreate_LargeIntegers(t *testing.T) {
	ctx := context.Background()
	drv := openSQLite(t)
	counters := model.New("Counter", field.JSONSchema("data").Schema(map[string]any{
		"type":                 "object",
		"additionalProperties": map[string]any{"type": "integer"},
	}))
	require.NoError(t, Create(ctx, drv, counters))

	inst := counters.NewInstance(map[string]any{"data": map[string]any{"big": int64(9007199254740993), "n": 1}})
	require.NoError(t, inst.Save(ctx, drv))
	got, err := counters.Get(ctx, drv, inst.ID())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"big": json.Number("9007199254740993"), "n": json.Number("1")}, got.Get("data"))

	// The reloaded value validates and saves again unchanged.
	require.NoError(t, got.Save(ctx, drv))
	again, err := counters.Get(ctx, drv, inst.ID())
	require.NoError(t, err)
	assert.Equal(t, got.Get("data"), again.Get("data"))
}

func TestCreate_AddColumn(t *testing.T) {
	ctx := context.Background()
	drv := openSQLite(t)
	require.NoError(t, Create(ctx, drv, newProfile()))

	extended := newProfile(field.JSONSchema("settings").Schema(map[string]any{"type": "object"}).Nillable())
	require.NoError(t, Create(ctx, drv, extended))
	inst := extended.NewInstance(map[string]any{"profile": map[string]any{"name": "foo"}})
	require.NoError(t, inst.Save(ctx, drv))

	got, err := extended.Get(ctx, drv, inst.ID())
	require.NoError(t, err)
	assert.Nil(t, got.Get("settings"))
}

func TestCreate_DropColumn(t *testing.T) {
	ctx := context.Background()
	drv := openSQLite(t)
	extended := newProfile(field.JSONSchema("settings").Schema(map[string]any{"type": "object"}).Nillable())
	require.NoError(t, Create(ctx, drv, extended))

	err := Create(ctx, drv, newProfile())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user_profiles.settings: column will be dropped")
}

func TestCreate_InvalidTables(t *testing.T) {
	drv := openSQLite(t)
	err := Create(context.Background(), drv, newProfile(), newProfile())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate table name")
}

func TestNewMigrate_UnsupportedDialect(t *testing.T) {
	db, err := stdsql.Open("sqlite", "file:unsupported?mode=memory")
	require.NoError(t, err)
	defer db.Close()
	_, err = NewMigrate(sql.OpenDB("oracle", db))
	assert.Error(t, err)
}
