package cli

import (
	"fmt"

	"github.com/alexanderramin/taxonomy/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newTreeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:               "tree TYPE",
		Short:             "Show a taxonomy as a tree",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeTypes,
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := parseTypeArg(args[0])
			if err != nil {
				return err
			}
			forest, err := app.Nodes.Tree(cmd.Context(), typ)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.Header(string(typ)))
			if len(forest) == 0 {
				fmt.Fprintln(out, formatter.Dim("No nodes yet. Add one with: taxonomy node add "+string(typ)+" NAME"))
				return nil
			}
			fmt.Fprint(out, formatter.RenderTree(formatter.NodeTreeItems(forest)))
			return nil
		},
	}
}
