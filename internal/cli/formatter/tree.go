package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/taxonomy/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// TreeItem represents a single node in a tree display.
type TreeItem struct {
	Title    string
	ID       string // shown dimmed before the title when set
	Level    int
	IsLast   bool
	Guides   []bool // per ancestor level below the root: true if a pipe continues
	Required bool
	Detail   string
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
	treeBlank  = "   "
)

// NodeTreeItems flattens a forest into tree items in display order.
func NodeTreeItems(forest []*domain.Node) []TreeItem {
	var items []TreeItem
	seen := make(map[string]bool)
	var walk func(level []*domain.Node, depth int, guides []bool)
	walk = func(level []*domain.Node, depth int, guides []bool) {
		for i, n := range level {
			if seen[n.ID] {
				continue
			}
			seen[n.ID] = true
			last := i == len(level)-1
			item := TreeItem{
				Title:    n.Name,
				ID:       ShortID(n.ID),
				Level:    depth,
				IsLast:   last,
				Guides:   append([]bool(nil), guides...),
				Required: n.IsRequired,
			}
			if len(n.Children) > 0 {
				item.Detail = Plural(len(n.Children), "child", "children")
			}
			items = append(items, item)

			next := guides
			if depth > 0 {
				next = append(append([]bool(nil), guides...), !last)
			}
			walk(n.Children, depth+1, next)
		}
	}
	walk(forest, 0, nil)
	return items
}

// RenderTree renders a list of TreeItems as an indented tree using
// box-drawing characters for connectors. Required nodes get a yellow marker
// and detail badges are right-aligned.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	type lineInfo struct {
		content string
		badge   string
	}

	lines := make([]lineInfo, len(items))
	maxContentWidth := 0

	// Pass 1: build each line's content and track max visible width.
	for idx, item := range items {
		var prefix strings.Builder
		if item.Level > 0 {
			for i := 1; i < item.Level; i++ {
				if i-1 < len(item.Guides) && !item.Guides[i-1] {
					prefix.WriteString(treeBlank)
				} else {
					prefix.WriteString(treePipe)
				}
			}
			if item.IsLast {
				prefix.WriteString(treeCorner)
			} else {
				prefix.WriteString(treeBranch)
			}
		}

		title := item.Title
		if item.Level == 0 {
			title = Bold(title)
		}
		if item.ID != "" {
			title = StyleDim.Render(item.ID+" ") + title
		}
		if item.Required {
			title += " " + RequiredMark()
		}

		content := StyleDim.Render(prefix.String()) + title
		lines[idx].content = content
		if item.Detail != "" {
			lines[idx].badge = StyleBlue.Render(fmt.Sprintf("[ %s ]", item.Detail))
		}
		if w := lipgloss.Width(content); w > maxContentWidth {
			maxContentWidth = w
		}
	}

	// Pass 2: render with right-aligned badges.
	var b strings.Builder
	for _, li := range lines {
		if li.badge != "" {
			pad := max(maxContentWidth-lipgloss.Width(li.content), 0)
			b.WriteString(li.content + strings.Repeat(" ", pad) + "  " + li.badge + "\n")
		} else {
			b.WriteString(li.content + "\n")
		}
	}

	return b.String()
}
