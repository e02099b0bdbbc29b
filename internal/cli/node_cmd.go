package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/taxonomy/internal/cli/formatter"
	"github.com/alexanderramin/taxonomy/internal/domain"
	"github.com/alexanderramin/taxonomy/internal/repository"
	"github.com/alexanderramin/taxonomy/internal/service"
	"github.com/spf13/cobra"
)

func newNodeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Manage taxonomy nodes",
	}

	cmd.AddCommand(
		newNodeAddCmd(app),
		newNodeShowCmd(app),
		newNodeEditCmd(app),
		newNodeDeleteCmd(app),
	)

	return cmd
}

func newNodeAddCmd(app *App) *cobra.Command {
	var parent string
	var required bool

	cmd := &cobra.Command{
		Use:               "add TYPE NAME",
		Short:             "Append a node to the end of its sibling group",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeTypes,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			typ, err := parseTypeArg(args[0])
			if err != nil {
				return err
			}

			var parentID *string
			if parent != "" {
				if !typ.Hierarchical() {
					return fmt.Errorf("%s is a flat list; --parent is not allowed", typ)
				}
				id, err := resolveNodeID(ctx, app, typ, parent)
				if err != nil {
					return err
				}
				parentID = &id
			}

			n, err := app.Nodes.Add(ctx, typ, args[1], parentID, service.AddOptions{IsRequired: required})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(fmt.Sprintf("Added %s %s (%s)", typ, n.Name, formatter.ShortID(n.ID))))
			return nil
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "Parent node ID or ID prefix")
	cmd.Flags().BoolVar(&required, "required", false, "Require a deeper selection under this node")

	return cmd
}

func newNodeShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:               "show TYPE ID",
		Short:             "Show node details",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeTypes,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			typ, err := parseTypeArg(args[0])
			if err != nil {
				return err
			}
			id, err := resolveNodeID(ctx, app, typ, args[1])
			if err != nil {
				return err
			}
			n, err := app.Nodes.Get(ctx, typ, id)
			if err != nil {
				return err
			}

			var parent *domain.Node
			if !n.IsRoot() {
				parent, err = app.Nodes.Get(ctx, typ, *n.ParentID)
				if err != nil && !errors.Is(err, domain.ErrNotFound) {
					return err
				}
			}

			forest, err := app.Nodes.Tree(ctx, typ)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.RenderNode(n, parent, childrenOf(forest, id)))
			return nil
		},
	}
}

// childrenOf returns the children of id in forest, or nil if absent.
func childrenOf(forest []*domain.Node, id string) []*domain.Node {
	for _, n := range forest {
		if n.ID == id {
			return n.Children
		}
		if c := childrenOf(n.Children, id); c != nil {
			return c
		}
	}
	return nil
}

func newNodeEditCmd(app *App) *cobra.Command {
	var name string
	var required bool
	var order int

	cmd := &cobra.Command{
		Use:               "edit TYPE ID",
		Short:             "Rename a node or change its attributes",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeTypes,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			typ, err := parseTypeArg(args[0])
			if err != nil {
				return err
			}
			id, err := resolveNodeID(ctx, app, typ, args[1])
			if err != nil {
				return err
			}

			var patch repository.NodePatch
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("required") {
				patch.IsRequired = &required
			}
			if cmd.Flags().Changed("order") {
				patch.SortOrder = &order
			}
			if patch.Empty() {
				return errors.New("nothing to change: pass --name, --required or --order")
			}

			if err := app.Nodes.Update(ctx, typ, id, patch); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("Updated "+formatter.ShortID(id)))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().BoolVar(&required, "required", false, "Require a deeper selection under this node")
	cmd.Flags().IntVar(&order, "order", 0, "Sort order within the sibling group")

	return cmd
}

func newNodeDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:               "delete TYPE ID",
		Short:             "Delete a node and everything below it",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeTypes,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			typ, err := parseTypeArg(args[0])
			if err != nil {
				return err
			}
			id, err := resolveNodeID(ctx, app, typ, args[1])
			if err != nil {
				return err
			}
			n, err := app.Nodes.Get(ctx, typ, id)
			if err != nil {
				return err
			}

			ok, err := confirmOrRequireYes(app, yes, fmt.Sprintf("Delete %q and all of its descendants?", n.Name))
			if err != nil {
				return err
			}
			if !ok {
				return errAborted
			}

			report, err := app.Nodes.Delete(ctx, typ, id)
			out := cmd.OutOrStdout()
			if report != nil && len(report.Failed) > 0 {
				fmt.Fprintln(out, formatter.Fail(fmt.Sprintf("Deleted %s, %s could not be deleted",
					formatter.Plural(len(report.Deleted), "node", "nodes"), formatter.Plural(len(report.Failed), "node", "nodes"))))
				for _, fid := range report.Failed {
					fmt.Fprintf(out, "  %s\n", formatter.TruncID(fid))
				}
				return fmt.Errorf("%w: %w", errPartialCascade, err)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(out, formatter.Success(fmt.Sprintf("Deleted %s", formatter.Plural(len(report.Deleted), "node", "nodes"))))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
