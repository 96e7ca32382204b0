package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const settingsSchema = `
type: object
properties:
  theme:
    type: string
    enum: [light, dark]
  email:
    type: string
    format: email
additionalProperties: false
`

func TestValidateCmd(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "settings.yaml", settingsSchema)
	cfg := writeFile(t, dir, "schemafield.yaml", "log:\n  level: error\n")
	good := writeFile(t, dir, "good.json", `{"theme": "dark", "email": "foo@bar.com"}`)
	bad := writeFile(t, dir, "bad.json", `{"theme": "blue", "email": "not_a_valid_email_address"}`)
	broken := writeFile(t, dir, "broken.json", `{"theme": `)

	out, err := execute(t, "--config", cfg, "validate", "--schema", schemaPath, good)
	require.NoError(t, err)
	assert.Equal(t, good+": ok\n", out)

	out, err = execute(t, "--config", cfg, "validate", "--schema", schemaPath, good, bad, broken)
	require.ErrorIs(t, err, errInvalidDocuments)
	assert.Contains(t, out, good+": ok")
	assert.Contains(t, out, bad+`: /email: 'not_a_valid_email_address' is not a 'email'`)
	assert.Contains(t, out, bad+`: /theme: 'blue' is not one of ["light","dark"]`)
	assert.Contains(t, out, broken+": not valid JSON")

	_, err = execute(t, "--config", cfg, "validate", good)
	assert.Error(t, err)
}

func TestCheckCmd(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "settings.yaml", settingsSchema)
	writeFile(t, dir, "invalid.yaml", "type: object\nproperties:\n  theme: not a schema\n")

	cfg := writeFile(t, dir, "ok.yaml", `
log:
  level: error
fields:
  - model: Profile
    name: settings
    schema_file: settings.yaml
`)
	out, err := execute(t, "--config", cfg, "check")
	require.NoError(t, err)
	assert.Equal(t, "System check identified no issues.\n", out)

	cfg = writeFile(t, dir, "broken.yaml", `
log:
  level: error
fields:
  - model: Profile
    name: settings
    schema_file: settings.yaml
    strict_dialect: true
  - model: Profile
    name: extra
  - model: Account
    name: preferences
    schema_file: invalid.yaml
`)
	out, err = execute(t, "--config", cfg, "check", "--examples=false")
	require.ErrorIs(t, err, errChecksFailed)
	assert.Contains(t, out, "System check identified 3 issue(s):")
	assert.Contains(t, out, "WARNING Profile.settings: (fields.W100)")
	assert.Contains(t, out, "ERROR Profile.extra: (fields.E100) JSONSchemaFields must define a 'schema' attribute.")
	assert.Contains(t, out, "ERROR Account.preferences: (fields.E101) Given 'schema' is not a valid json schema.")

	cfg = writeFile(t, dir, "draft.yaml", "fields:\n  - model: Profile\n    name: settings\n    schema_file: settings.yaml\n    draft: \"3\"\n")
	_, err = execute(t, "--config", cfg, "check")
	assert.ErrorContains(t, err, "unknown draft")
}

func TestMigrateCmd(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "schemafield.yaml", "log:\n  level: error\n")
	dsn := "file:" + filepath.Join(dir, "test.db") + "?_pragma=foreign_keys(1)"

	out, err := execute(t, "--config", cfg, "--dsn", dsn, "migrate")
	require.NoError(t, err)
	assert.Equal(t, "Migration applied.\n", out)

	out, err = execute(t, "--config", cfg, "--dsn", dsn, "migrate", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "No issues found")
	assert.Contains(t, out, "0 change(s) pending.")

	_, err = execute(t, "--config", cfg, "--dialect", "oracle", "migrate")
	assert.Error(t, err)
}

func TestCreateCmd(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "schemafield.yaml", "log:\n  level: error\n")
	dsn := "file:" + filepath.Join(dir, "test.db") + "?_pragma=foreign_keys(1)"
	good := writeFile(t, dir, "good.json", `{"json_field_with_schema": {"string_property": "foo", "email_property": "foo@bar.com"}}`)
	bad := writeFile(t, dir, "bad.json", `{"json_field_with_schema": {"string_property": "foo", "boolean_property": "not_bool_property"}}`)

	_, err := execute(t, "--config", cfg, "--dsn", dsn, "migrate")
	require.NoError(t, err)

	out, err := execute(t, "--config", cfg, "--dsn", dsn, "create", "TestModel", good)
	require.NoError(t, err)
	assert.Equal(t, "Created TestModel 1.\n", out)

	out, err = execute(t, "--config", cfg, "--dsn", dsn, "--log-level", "debug", "create", "TestModel", good)
	require.NoError(t, err)
	assert.Contains(t, out, `msg="begin transaction"`)
	assert.Contains(t, out, `msg="tx exec" sql="INSERT INTO \"json_schema_field_test_models\"`)
	assert.Contains(t, out, "Created TestModel 2.")

	out, err = execute(t, "--config", cfg, "--dsn", dsn, "create", "TestModel", bad)
	require.ErrorIs(t, err, errInvalidInstance)
	assert.Equal(t, "json_field_with_schema: Invalid json content: 'not_bool_property' is not of type 'boolean' (invalid_content)\n", out)

	_, err = execute(t, "--config", cfg, "--dsn", dsn, "create", "Unknown", good)
	assert.ErrorContains(t, err, `unknown model "Unknown"`)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "schemafield.yaml", `
database:
  dialect: postgres
log:
  level: debug
fields:
  - model: Profile
    name: settings
    schema_file: schemas/settings.yaml
    draft: 7
`)
	t.Setenv("SCHEMAFIELD_DATABASE_DSN", "postgres://localhost/app")

	cfg, err := loadConfig(newViper(), path)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Dialect)
	assert.Equal(t, "postgres://localhost/app", cfg.Database.DSN)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 10, cfg.Log.MaxSizeMB)
	require.Len(t, cfg.Fields, 1)
	assert.Equal(t, filepath.Join(dir, "schemas", "settings.yaml"), cfg.Fields[0].SchemaFile)
	assert.Equal(t, "7", cfg.Fields[0].Draft)
	assert.Equal(t, []string{filepath.Join(dir, "schemas", "settings.yaml")}, cfg.SchemaFiles())

	_, err = loadConfig(newViper(), filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	_, _, err := newLogger(&bytes.Buffer{}, LogConfig{Level: "loud"})
	assert.Error(t, err)

	var buf bytes.Buffer
	logger, closer, err := newLogger(&buf, LogConfig{Level: "warn"})
	require.NoError(t, err)
	assert.Nil(t, closer)
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	path := filepath.Join(t.TempDir(), "schemafield.log")
	logger, closer, err = newLogger(&buf, LogConfig{Level: "debug", File: path, MaxSizeMB: 1})
	require.NoError(t, err)
	require.NotNil(t, closer)
	logger.Debug("to file", slog.String("k", "v"))
	require.NoError(t, closer.Close())
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "to file")
}
