package cli

import (
	"fmt"

	"github.com/alexanderramin/taxonomy/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newReorderCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder TYPE DRAGGED TARGET",
		Short: "Move DRAGGED to TARGET's position among their siblings",
		Long: `Move DRAGGED to the position TARGET holds among their siblings.
Both nodes must share a parent. Dragging downward lands after TARGET and
dragging upward lands before it.

Each run reloads the stored order before moving, so the command is not
idempotent: running it again with the same arguments moves DRAGGED again,
relative to where the previous run left it.`,
		Args:              cobra.ExactArgs(3),
		ValidArgsFunction: completeTypes,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			typ, err := parseTypeArg(args[0])
			if err != nil {
				return err
			}
			dragged, err := resolveNodeID(ctx, app, typ, args[1])
			if err != nil {
				return err
			}
			target, err := resolveNodeID(ctx, app, typ, args[2])
			if err != nil {
				return err
			}

			if err := app.Reorder.ReorderStored(ctx, typ, dragged, target); err != nil {
				return err
			}

			forest, err := app.Nodes.Tree(ctx, typ)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.Success("Reordered "+formatter.ShortID(dragged)))
			fmt.Fprint(out, formatter.RenderTree(formatter.NodeTreeItems(forest)))
			return nil
		},
	}
}
