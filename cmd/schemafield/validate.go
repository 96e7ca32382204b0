package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/syssam/schemafield/schemadoc"
)

var errInvalidDocuments = errors.New("invalid documents")

func newValidateCmd(a *app) *cobra.Command {
	var (
		schemaPath string
		draft      string
	)
	cmd := &cobra.Command{
		Use:   "validate --schema FILE DOC...",
		Short: "Validate JSON documents against a schema",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := schemadoc.Load(schemaPath)
			if err != nil {
				return err
			}
			d, err := schemadoc.ParseDraft(draft)
			if err != nil {
				return err
			}
			sch, err := schemadoc.Compile(doc, schemadoc.WithDraft(d))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			invalid := 0
			for _, path := range args {
				b, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				if !gojson.Valid(b) {
					invalid++
					fmt.Fprintf(out, "%s: not valid JSON\n", path)
					continue
				}
				err = sch.Validate(json.RawMessage(b))
				var cerr *schemadoc.ContentError
				switch {
				case err == nil:
					fmt.Fprintf(out, "%s: ok\n", path)
				case errors.As(err, &cerr):
					invalid++
					for _, v := range cerr.Violations {
						loc := v.Location
						if loc == "" {
							loc = "/"
						}
						fmt.Fprintf(out, "%s: %s: %s\n", path, loc, v.Message)
					}
				default:
					return err
				}
			}
			a.logger.Debug("validated documents", "schema", schemaPath, "documents", len(args), "invalid", invalid)
			if invalid > 0 {
				return fmt.Errorf("%w: %d of %d", errInvalidDocuments, invalid, len(args))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&schemaPath, "schema", "", "schema file (JSON or YAML)")
	cmd.Flags().StringVar(&draft, "draft", schemadoc.Draft2020.String(), "dialect assumed when the schema has no $schema")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}
