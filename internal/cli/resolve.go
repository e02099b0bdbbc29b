package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/taxonomy/internal/domain"
	"github.com/alexanderramin/taxonomy/internal/taxonomy"
)

// resolveNodeID resolves a node identifier which can be:
//   - A full UUID (passed through when it exists)
//   - A unique UUID prefix, as printed by the tree view
func resolveNodeID(ctx context.Context, app *App, typ domain.NodeType, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("%w: empty node id", domain.ErrNotFound)
	}

	if n, err := app.Nodes.Get(ctx, typ, input); err == nil {
		return n.ID, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}

	forest, err := app.Nodes.Tree(ctx, typ)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, n := range taxonomy.Flatten(forest) {
		if strings.HasPrefix(n.ID, input) {
			matches = append(matches, n.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s %q", domain.ErrNotFound, typ, input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("ambiguous id %q matches %d %s nodes", input, len(matches), typ)
	}
}
