package cli

import (
	"github.com/alexanderramin/taxonomy/internal/cli/formatter"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// taxonomyHuhTheme returns a huh theme using the formatter palette.
func taxonomyHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// confirmPrompt shows a yes/no form and returns the answer.
func confirmPrompt(title string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).WithTheme(taxonomyHuhTheme()).WithShowHelp(false)
	if err := form.Run(); err != nil {
		return false, err
	}
	return ok, nil
}

// confirmOrRequireYes asks title when the terminal is interactive. Without a
// terminal the caller must have passed --yes.
func confirmOrRequireYes(app *App, yes bool, title string) (bool, error) {
	if yes {
		return true, nil
	}
	if !app.interactive() {
		return false, errNeedsYes
	}
	return app.Confirm(title)
}
