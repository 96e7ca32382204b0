package schema

import (
	"testing"

	"ariga.io/atlas/sql/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usersTable() *schema.Table {
	id := schema.NewIntColumn("id", "integer")
	name := schema.NewStringColumn("name", "text")
	return schema.NewTable("users").
		AddColumns(id, name).
		SetPrimaryKey(schema.NewPrimaryKey(id)).
		AddIndexes(schema.NewUniqueIndex("users_name_key").AddColumns(name))
}

func TestValidateTables(t *testing.T) {
	r := ValidateTables([]*schema.Table{usersTable()})
	assert.False(t, r.HasErrors())
	assert.False(t, r.HasWarnings())
	assert.Equal(t, "No issues found", r.String())

	r = ValidateTables([]*schema.Table{usersTable(), usersTable()})
	require.Len(t, r.Errors, 1)
	assert.Equal(t, "users: duplicate table name", r.Errors[0].Error())

	noPK := schema.NewTable("logs").AddColumns(schema.NewStringColumn("line", "text"))
	r = ValidateTables([]*schema.Table{noPK})
	assert.False(t, r.HasErrors())
	require.Len(t, r.Warnings, 1)
	assert.Contains(t, r.String(), "table has no primary key")
}

func TestValidateTable(t *testing.T) {
	tbl := usersTable()
	tbl.AddColumns(schema.NewStringColumn("name", "text"))
	tbl.AddIndexes(
		schema.NewUniqueIndex("users_name_key"),
		schema.NewIndex("users_email").AddColumns(schema.NewStringColumn("email", "text")),
	)
	r := ValidateTable(tbl)
	require.Len(t, r.Errors, 3)
	assert.Equal(t, "users.name: duplicate column name", r.Errors[0].Error())
	assert.Equal(t, "users: duplicate index name: users_name_key", r.Errors[1].Error())
	assert.Equal(t, `users: index "users_email" references non-existent column "email"`, r.Errors[2].Error())
}

func TestValidateChanges(t *testing.T) {
	tbl := usersTable()
	nullable := schema.NewNullStringColumn("bio", "text")
	notNull := schema.NewStringColumn("bio", "text")
	changes := []schema.Change{
		&schema.DropTable{T: schema.NewTable("legacy")},
		&schema.ModifyTable{T: tbl, Changes: []schema.Change{
			&schema.DropColumn{C: schema.NewStringColumn("nickname", "text")},
			&schema.DropIndex{I: schema.NewIndex("users_nickname")},
			&schema.AddColumn{C: schema.NewStringColumn("email", "text")},
			&schema.AddIndex{I: schema.NewUniqueIndex("users_email_key")},
			&schema.ModifyColumn{From: nullable, To: notNull, Change: schema.ChangeNull},
		}},
	}

	r := ValidateChanges(changes)
	assert.True(t, r.HasBreakingChanges())
	require.Len(t, r.Errors, 4)
	assert.Equal(t, "legacy: table will be dropped", r.Errors[0].Error())
	assert.Equal(t, "users.nickname: column will be dropped", r.Errors[1].Error())
	assert.Len(t, r.Warnings, 2)
	assert.Contains(t, r.String(), "[BREAKING]")

	r = ValidateChanges(changes, AllowDropTable(), AllowDropColumn(), AllowDropIndex(), AllowNullToNotNull())
	assert.False(t, r.HasErrors())
	assert.Len(t, r.Warnings, 6)
	assert.True(t, r.HasBreakingChanges())
}
