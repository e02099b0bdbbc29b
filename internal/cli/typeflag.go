package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/taxonomy/internal/cli/formatter"
	"github.com/alexanderramin/taxonomy/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// nodeTypeValue is a pflag.Value restricted to the known taxonomy types.
type nodeTypeValue domain.NodeType

var _ pflag.Value = (*nodeTypeValue)(nil)

func newNodeTypeValue(def domain.NodeType, p *domain.NodeType) *nodeTypeValue {
	*p = def
	return (*nodeTypeValue)(p)
}

func (v *nodeTypeValue) String() string { return string(*v) }

func (v *nodeTypeValue) Set(s string) error {
	t, err := domain.ParseNodeType(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return err
	}
	*v = nodeTypeValue(t)
	return nil
}

func (v *nodeTypeValue) Type() string { return "type" }

func typeNames() string {
	names := make([]string, len(domain.NodeTypes))
	for i, t := range domain.NodeTypes {
		names[i] = string(t)
	}
	return strings.Join(names, "|")
}

// parseTypeArg validates a positional TYPE argument.
func parseTypeArg(arg string) (domain.NodeType, error) {
	t, err := domain.ParseNodeType(strings.ToLower(strings.TrimSpace(arg)))
	if err != nil {
		return "", fmt.Errorf("%w (expected %s)", err, typeNames())
	}
	return t, nil
}

func completeTypes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	for _, t := range domain.NodeTypes {
		if strings.HasPrefix(string(t), toComplete) {
			out = append(out, string(t))
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func newTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the taxonomy types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0, len(domain.NodeTypes))
			for _, t := range domain.NodeTypes {
				shape := "flat"
				if t.Hierarchical() {
					shape = "tree"
				}
				rows = append(rows, []string{string(t), formatter.TypeBadge(t), shape})
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderTable([]string{"TYPE", "LABEL", "SHAPE"}, rows))
			return nil
		},
	}
}
