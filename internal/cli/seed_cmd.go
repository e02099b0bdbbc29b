package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/taxonomy/internal/cli/formatter"
	tmpl "github.com/alexanderramin/taxonomy/internal/template"
	"github.com/spf13/cobra"
)

func newSeedCmd(app *App) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "seed FILE",
		Short: "Fill empty taxonomies from a JSON template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			schema, err := tmpl.LoadSchema(args[0])
			if err != nil {
				return err
			}
			if errs := tmpl.ValidateSchema(schema); len(errs) > 0 {
				fmt.Fprintln(out, formatter.Fail(fmt.Sprintf("%s is invalid", schema.DisplayName())))
				for _, e := range errs {
					fmt.Fprintf(out, "  %s\n", formatter.Dim(e.Error()))
				}
				return fmt.Errorf("template %s has %s", schema.DisplayName(), formatter.Plural(len(errs), "error", "errors"))
			}
			if check {
				fmt.Fprintln(out, formatter.Success(schema.DisplayName()+" is valid"))
				return nil
			}

			report, err := app.Seed.Seed(cmd.Context(), schema)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(report.Created))
			for _, tx := range schema.Taxonomies {
				typ, _ := parseTypeArg(tx.Type)
				if n, ok := report.Created[typ]; ok {
					rows = append(rows, []string{formatter.TypeBadge(typ), fmt.Sprintf("%d", n)})
				}
			}
			if len(rows) > 0 {
				fmt.Fprintln(out, formatter.Success("Seeded "+schema.DisplayName()))
				fmt.Fprint(out, formatter.RenderTable([]string{"TYPE", "NODES"}, rows, formatter.AlignRight(1)))
			}
			if len(report.Skipped) > 0 {
				names := make([]string, len(report.Skipped))
				for i, typ := range report.Skipped {
					names[i] = string(typ)
				}
				fmt.Fprintln(out, formatter.Warn("Skipped non-empty: "+strings.Join(names, ", ")))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Validate the template without writing")

	return cmd
}
