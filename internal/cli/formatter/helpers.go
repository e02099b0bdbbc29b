package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/taxonomy/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		inner := titleRendered + "\n\n" + content
		return boxStyle.Render(inner)
	}

	return boxStyle.Render(content)
}

// HumanTimestamp returns a human-friendly relative timestamp string.
func HumanTimestamp(t time.Time) string {
	return HumanTimestampFrom(t, time.Now())
}

func HumanTimestampFrom(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < 0:
		return t.Format("Jan 2, 2006")
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case t.Year() == now.Year():
		return t.Format("Jan 2")
	default:
		return t.Format("Jan 2, 2006")
	}
}

// ShortID returns the first 8 characters of an ID.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// TruncID returns ShortID(id), dimmed.
func TruncID(id string) string {
	return StyleDim.Render(ShortID(id))
}

// Plural formats n with the singular or plural noun.
func Plural(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}

// RenderNode renders the detail card of a single node.
func RenderNode(n *domain.Node, parent *domain.Node, children []*domain.Node) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n\n", Bold(n.Name), TypeBadge(n.Type))
	fmt.Fprintf(&b, "  %s  %s\n", Dim("ID      "), n.ID)
	if parent != nil {
		fmt.Fprintf(&b, "  %s  %s %s\n", Dim("PARENT  "), parent.Name, TruncID(parent.ID))
	}
	fmt.Fprintf(&b, "  %s  %d\n", Dim("ORDER   "), n.SortOrder)
	if n.IsRequired {
		fmt.Fprintf(&b, "  %s  %s\n", Dim("REQUIRED"), StyleYellow.Render("yes"))
	}
	fmt.Fprintf(&b, "  %s  %s\n", Dim("UPDATED "), HumanTimestamp(n.UpdatedAt))

	if len(children) > 0 {
		b.WriteString("\n")
		b.WriteString(Header("Children"))
		b.WriteString("\n")
		rows := make([][]string, 0, len(children))
		for _, c := range children {
			rows = append(rows, []string{TruncID(c.ID), c.Name, fmt.Sprintf("%d", c.SortOrder)})
		}
		b.WriteString(RenderTable([]string{"ID", "NAME", "ORDER"}, rows, AlignRight(2)))
	}

	return RenderBox("Node", b.String())
}
