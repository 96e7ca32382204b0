package main

import (
	"errors"
	"fmt"
	"os"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/syssam/schemafield"
	"github.com/syssam/schemafield/dialect/sql"
	"github.com/syssam/schemafield/examples/models"
	"github.com/syssam/schemafield/model"
)

var errInvalidInstance = errors.New("invalid instance")

func newCreateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create MODEL FILE",
		Short: "Validate and store a row of an example model",
		Long: "Reads a JSON object mapping field names to values from FILE, " +
			"validates it and inserts it. Statements are logged at debug level.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mdl, err := lookupModel(args[0])
			if err != nil {
				return err
			}
			b, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			var values map[string]any
			if err := gojson.Unmarshal(b, &values); err != nil {
				return fmt.Errorf("decode %s: %w", args[1], err)
			}
			db := a.cfg.Database
			drv, err := sql.Open(db.Dialect, db.DSN)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer drv.Close()

			out := cmd.OutOrStdout()
			inst := mdl.NewInstance(values)
			err = inst.Save(cmd.Context(), sql.NewDebugDriver(drv, sql.DebugWithLogger(a.logger)))
			if verrs := schemafield.ValidationErrors(err); len(verrs) > 0 {
				for _, verr := range verrs {
					fmt.Fprintf(out, "%s: %s (%s)\n", verr.Name, verr.Message(), verr.Code)
				}
				return errInvalidInstance
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Created %s %d.\n", mdl, inst.ID())
			return nil
		},
	}
}

func lookupModel(name string) (*model.Model, error) {
	for _, m := range models.All() {
		if m.Name() == name {
			return m, nil
		}
	}
	return nil, fmt.Errorf("unknown model %q", name)
}
