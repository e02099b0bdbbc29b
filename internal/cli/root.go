package cli

import (
	"errors"

	"github.com/alexanderramin/taxonomy/internal/service"
	"github.com/spf13/cobra"
)

var (
	errNeedsYes       = errors.New("confirmation required: pass --yes when not running in a terminal")
	errAborted        = errors.New("aborted")
	errPartialImport  = errors.New("import finished with failures")
	errPartialCascade = errors.New("delete finished with failures")
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Nodes   service.NodeService
	Reorder service.ReorderService
	Import  service.ImportService
	Seed    service.SeedService

	// IsInteractive reports whether stdin is a terminal that can answer
	// prompts. Nil means never.
	IsInteractive func() bool
	// Confirm asks a yes/no question. Defaults to a huh form.
	Confirm func(title string) (bool, error)
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "taxonomy" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	if app.Confirm == nil {
		app.Confirm = confirmPrompt
	}

	root := &cobra.Command{
		Use:          "taxonomy",
		Short:        "Manage call-center taxonomies and import service points",
		SilenceUsage: true,
	}

	root.AddCommand(
		newTypesCmd(),
		newTreeCmd(app),
		newNodeCmd(app),
		newReorderCmd(app),
		newImportCmd(app),
		newSeedCmd(app),
	)

	return root
}
