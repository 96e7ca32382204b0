package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

// app holds the state shared by the commands.
type app struct {
	v      *viper.Viper
	cfg    *Config
	logger *slog.Logger
	closer io.Closer
}

func newRootCmd() *cobra.Command {
	a := &app{v: newViper()}
	cmd := &cobra.Command{
		Use:           "schemafield",
		Short:         "Check and validate JSON schema fields",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.closer != nil {
				return a.closer.Close()
			}
			return nil
		},
	}
	f := cmd.PersistentFlags()
	f.String("config", "", "config file (default ./schemafield.yaml)")
	f.String("log-level", "info", "log level (debug, info, warn, error)")
	f.String("log-file", "", "write logs to a rotated file instead of stderr")
	f.String("dialect", "sqlite", "database dialect (sqlite, mysql, postgres)")
	f.String("dsn", "file:schemafield.db?_pragma=foreign_keys(1)", "database source name")
	for flag, key := range map[string]string{
		"log-level": "log.level",
		"log-file":  "log.file",
		"dialect":   "database.dialect",
		"dsn":       "database.dsn",
	} {
		_ = a.v.BindPFlag(key, f.Lookup(flag))
	}
	cmd.AddCommand(
		newCheckCmd(a),
		newValidateCmd(a),
		newMigrateCmd(a),
		newCreateCmd(a),
	)
	return cmd
}

// newViper returns a viper instance reading SCHEMAFIELD_ prefixed
// environment variables, e.g. SCHEMAFIELD_DATABASE_DSN for database.dsn.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("SCHEMAFIELD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	v.SetDefault("database.dialect", "sqlite")
	v.SetDefault("database.dsn", "file:schemafield.db?_pragma=foreign_keys(1)")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	return v
}

func (a *app) init(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := loadConfig(a.v, path)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger, a.closer, err = newLogger(cmd.ErrOrStderr(), cfg.Log)
	if err != nil {
		return err
	}
	slog.SetDefault(a.logger)
	return nil
}

// newLogger returns a text logger writing to w, or to a rotated file when
// a log file is configured.
func newLogger(w io.Writer, cfg LogConfig) (*slog.Logger, io.Closer, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	var closer io.Closer
	if cfg.File != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			Compress:   true,
		}
		w, closer = lj, lj
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closer, nil
}
