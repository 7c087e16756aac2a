package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rpggio/plantree/internal/domain/object"
	"github.com/rpggio/plantree/internal/numbering"
)

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
	treeSpace  = "   "
)

// RenderOutline renders a labeled pre-order outline as an indented tree with
// box-drawing connectors. Dates are right-aligned as a badge.
func RenderOutline(items []numbering.Labeled) string {
	if len(items) == 0 {
		return ""
	}

	last := lastSiblings(items)
	lastAt := map[int]bool{}

	contents := make([]string, len(items))
	badges := make([]string, len(items))
	maxWidth := 0
	for i, item := range items {
		lastAt[item.Depth] = last[i]

		var prefix strings.Builder
		if item.Depth > 0 {
			for level := 1; level < item.Depth; level++ {
				if lastAt[level] {
					prefix.WriteString(treeSpace)
				} else {
					prefix.WriteString(treePipe)
				}
			}
			if last[i] {
				prefix.WriteString(treeCorner)
			} else {
				prefix.WriteString(treeBranch)
			}
		}

		contents[i] = prefix.String() + Dim(item.Label+" ") + outlineTitle(item.Object)
		badges[i] = dateBadge(item.Object)
		if w := lipgloss.Width(contents[i]); w > maxWidth {
			maxWidth = w
		}
	}

	var b strings.Builder
	for i, content := range contents {
		b.WriteString(content)
		if badges[i] != "" {
			b.WriteString(strings.Repeat(" ", maxWidth-lipgloss.Width(content)+colGap))
			b.WriteString(badges[i])
		}
		b.WriteString("\n")
	}
	return b.String()
}

func outlineTitle(obj object.Object) string {
	title := obj.Name
	if obj.Kind == object.KindMilestone {
		title = "◆ " + title
	}
	switch obj.Status {
	case object.StatusDone:
		return render(StyleGreen, "✔ ") + Dim(title)
	case object.StatusInProgress:
		return render(StyleYellow, "▶ "+title)
	case object.StatusClosed:
		return Dim(title)
	}
	return title
}

func dateBadge(obj object.Object) string {
	if obj.StartDate == nil && obj.EndDate == nil {
		return ""
	}
	start, end := "?", "?"
	if obj.StartDate != nil {
		start = obj.StartDate.Format(DateLayout)
	}
	if obj.EndDate != nil {
		end = obj.EndDate.Format(DateLayout)
	}
	if obj.Kind == object.KindMilestone {
		return render(StyleBlue, "[ "+start+" ]")
	}
	return render(StyleBlue, "[ "+start+" → "+end+" ]")
}

// lastSiblings reports, per item, whether no later sibling follows it.
func lastSiblings(items []numbering.Labeled) []bool {
	last := make([]bool, len(items))
	seen := map[int]bool{}
	for i := len(items) - 1; i >= 0; i-- {
		d := items[i].Depth
		last[i] = !seen[d]
		seen[d] = true
		for k := range seen {
			if k > d {
				delete(seen, k)
			}
		}
	}
	return last
}
