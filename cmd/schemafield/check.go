package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/syssam/schemafield/check"
	"github.com/syssam/schemafield/examples/models"
)

// errChecksFailed is returned when the checks pass reports errors.
var errChecksFailed = errors.New("checks failed")

func newCheckCmd(a *app) *cobra.Command {
	var (
		watch    bool
		examples bool
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run the checks pass on the configured fields",
		Long: `Build the fields declared in the configuration and report
schema problems: missing schemas (fields.E100), invalid schemas (fields.E101)
and warnings such as schemas without a declared dialect.

With --watch, the checks rerun whenever a schema file changes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			run := func() error {
				return a.runChecks(cmd.Context(), cmd.OutOrStdout(), examples)
			}
			if !watch {
				return run()
			}
			if err := run(); err != nil && !errors.Is(err, errChecksFailed) {
				return err
			}
			return a.watch(cmd.Context(), run)
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "rerun the checks when schema files change")
	cmd.Flags().BoolVar(&examples, "examples", true, "include the example models")
	return cmd
}

func (a *app) runChecks(ctx context.Context, w io.Writer, examples bool) error {
	mdls, err := a.cfg.Models()
	if err != nil {
		return err
	}
	r := check.NewRegistry()
	for _, m := range mdls {
		r.RegisterChecker(m, check.TagModels, check.TagFields)
	}
	if examples {
		models.Register(r)
	}
	res, err := r.Run(ctx)
	if err != nil {
		return err
	}
	if len(res.Messages) == 0 {
		fmt.Fprintln(w, "System check identified no issues.")
		return nil
	}
	fmt.Fprintf(w, "System check identified %d issue(s):\n", len(res.Messages))
	for _, m := range res.Messages {
		fmt.Fprintf(w, "%s %s\n", m.Level, m)
	}
	if res.HasErrors() {
		return errChecksFailed
	}
	return nil
}

// watch reruns fn when one of the configured schema files is written,
// created or renamed. Editors often replace files, so the parent
// directories are watched.
func (a *app) watch(ctx context.Context, fn func() error) error {
	files := a.cfg.SchemaFiles()
	if len(files) == 0 {
		return errors.New("watch: no schema files configured")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()
	watched := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("watch: %w", err)
		}
		watched[abs] = true
		if err := w.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("watch %s: %w", f, err)
		}
	}
	a.logger.Info("watching schema files", "files", len(files))

	const debounce = 200 * time.Millisecond
	var (
		timer  *time.Timer
		rerun  = make(chan struct{}, 1)
		notify = func() {
			select {
			case rerun <- struct{}{}:
			default:
			}
		}
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if abs, err := filepath.Abs(event.Name); err != nil || !watched[abs] {
				continue
			}
			a.logger.Debug("schema file changed", "file", event.Name, "op", event.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, notify)
		case <-rerun:
			if err := fn(); err != nil && !errors.Is(err, errChecksFailed) {
				return err
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn("watcher error", "error", err)
		}
	}
}
