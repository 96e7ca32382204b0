package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/syssam/schemafield/model"
	"github.com/syssam/schemafield/schema/field"
	"github.com/syssam/schemafield/schemadoc"
)

// Config is the configuration file layout.
//
//	database:
//	  dialect: postgres
//	  dsn: postgres://localhost/app?sslmode=disable
//	log:
//	  level: debug
//	fields:
//	  - model: Profile
//	    name: settings
//	    schema_file: schemas/settings.yaml
//	    draft: 2020-12
//	    strict_dialect: true
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Fields   []FieldConfig  `mapstructure:"fields"`
}

// DatabaseConfig selects the database used by the migrate command.
type DatabaseConfig struct {
	Dialect string `mapstructure:"dialect"`
	DSN     string `mapstructure:"dsn"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// FieldConfig declares a JSON schema field whose schema lives in a file.
type FieldConfig struct {
	Model         string `mapstructure:"model"`
	Name          string `mapstructure:"name"`
	SchemaFile    string `mapstructure:"schema_file"`
	Draft         string `mapstructure:"draft"`
	StrictDialect bool   `mapstructure:"strict_dialect"`
}

// loadConfig reads the configuration from path, or from ./schemafield.yaml
// when path is empty and the file exists. Relative schema files are resolved
// against the directory of the config file.
func loadConfig(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("schemafield")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if used := v.ConfigFileUsed(); used != "" {
		dir := filepath.Dir(used)
		for i, f := range cfg.Fields {
			if f.SchemaFile != "" && !filepath.IsAbs(f.SchemaFile) {
				cfg.Fields[i].SchemaFile = filepath.Join(dir, f.SchemaFile)
			}
		}
	}
	return cfg, nil
}

// Models builds the models declared in the configuration. Fields are grouped
// by model in declaration order.
func (c *Config) Models() ([]*model.Model, error) {
	var (
		order  []string
		fields = make(map[string][]field.Builder)
	)
	for _, f := range c.Fields {
		b := field.JSONSchema(f.Name)
		if f.SchemaFile != "" {
			b.SchemaFile(f.SchemaFile)
		}
		if f.Draft != "" {
			d, err := schemadoc.ParseDraft(f.Draft)
			if err != nil {
				return nil, fmt.Errorf("field %s.%s: %w", f.Model, f.Name, err)
			}
			b.Draft(d)
		}
		if f.StrictDialect {
			b.StrictDialect()
		}
		if _, ok := fields[f.Model]; !ok {
			order = append(order, f.Model)
		}
		fields[f.Model] = append(fields[f.Model], b)
	}
	models := make([]*model.Model, 0, len(order))
	for _, name := range order {
		models = append(models, model.New(name, fields[name]...))
	}
	return models, nil
}

// SchemaFiles returns the schema files referenced by the configuration.
func (c *Config) SchemaFiles() []string {
	var files []string
	for _, f := range c.Fields {
		if f.SchemaFile != "" {
			files = append(files, f.SchemaFile)
		}
	}
	return files
}
