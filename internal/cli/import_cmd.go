package cli

import (
	"fmt"

	"github.com/alexanderramin/taxonomy/internal/cli/formatter"
	"github.com/alexanderramin/taxonomy/internal/domain"
	"github.com/alexanderramin/taxonomy/internal/importer"
	"github.com/alexanderramin/taxonomy/internal/service"
	"github.com/spf13/cobra"
)

func newImportCmd(app *App) *cobra.Command {
	var typ domain.NodeType
	var yes, dryRun bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import service points from a spreadsheet (.xlsx or .csv)",
		Long: `Import service points from a spreadsheet.

The file is parsed and planned first: the governorates and districts it
references that do not exist yet are listed. After confirmation they are
created and the rows are written in chunks.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			matrix, err := importer.ReadMatrix(args[0])
			if err != nil {
				return err
			}
			plan, err := app.Import.Plan(ctx, typ, matrix)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, formatter.RenderPlan(plan))

			if plan.Valid == 0 {
				fmt.Fprint(out, formatter.RenderOutcome(&service.ConfirmResult{}))
				return nil
			}
			if dryRun {
				return nil
			}

			ok, err := confirmOrRequireYes(app, yes, fmt.Sprintf("Import %s?", formatter.Plural(plan.Valid, "row", "rows")))
			if err != nil {
				return err
			}
			if !ok {
				return errAborted
			}

			stop := func() {}
			if app.interactive() {
				stop = formatter.StartSpinner(cmd.ErrOrStderr(), "Importing")
			}
			res, err := app.Import.Confirm(ctx, plan.Missing, plan.Rows)
			stop()

			if res != nil {
				fmt.Fprint(out, formatter.RenderOutcome(res))
			}
			if err != nil {
				return err
			}
			if res.Outcome() == service.OutcomePartialFailure {
				return errPartialImport
			}
			return nil
		},
	}

	cmd.Flags().Var(newNodeTypeValue(domain.TypeLocation, &typ), "type", "Taxonomy the rows reference ("+typeNames()+")")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the plan without writing anything")

	return cmd
}
