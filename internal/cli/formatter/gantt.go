package formatter

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rpggio/plantree/internal/timeline"
)

const (
	ganttLabelWidth = 28
	milestoneMark   = "◆"
)

// RenderGantt draws the layout as a text Gantt chart with a track of width
// cells spanning the layout's time range, followed by its dependencies.
func RenderGantt(l *timeline.Layout, width int) string {
	if l == nil || len(l.Bars) == 0 {
		return Dim("No scheduled objects.") + "\n"
	}
	if width < 10 {
		width = 10
	}

	span := l.End.Sub(l.Start)
	if span <= 0 {
		span = 24 * time.Hour
	}
	col := func(t time.Time, round func(float64) float64) int {
		c := int(round(float64(t.Sub(l.Start)) / float64(span) * float64(width)))
		return min(max(c, 0), width)
	}

	var b strings.Builder
	startLabel := l.Start.Format(DateLayout)
	endLabel := l.End.Format(DateLayout)
	gap := max(width-len(startLabel)-len(endLabel), 1)
	b.WriteString(strings.Repeat(" ", ganttLabelWidth+1))
	b.WriteString(Dim(startLabel + strings.Repeat(" ", gap) + endLabel))
	b.WriteString("\n")

	labels := make(map[string]string, len(l.Bars))
	for _, bar := range l.Bars {
		labels[bar.ObjectID] = bar.Label
		name := strings.Repeat("  ", bar.Depth) + bar.Label + " " + bar.Name
		b.WriteString(pad(Truncate(name, ganttLabelWidth), ganttLabelWidth))
		b.WriteString("│")

		style := StatusStyle(bar.Status)
		from := col(bar.Start, math.Floor)
		if bar.IsMilestone() {
			from = min(from, width-1)
			b.WriteString(strings.Repeat(" ", from))
			b.WriteString(render(style, milestoneMark))
			b.WriteString(strings.Repeat(" ", width-from-1))
		} else {
			to := max(col(bar.End, math.Ceil), from+1)
			to = min(to, width)
			from = min(from, to-1)
			cells := to - from
			done := cells * min(max(bar.Progress, 0), 100) / 100
			b.WriteString(strings.Repeat(" ", from))
			b.WriteString(render(style, strings.Repeat(filledBlock, done)+strings.Repeat(emptyBlock, cells-done)))
			b.WriteString(strings.Repeat(" ", width-to))
		}
		b.WriteString("│\n")
	}

	if len(l.Curves) > 0 {
		b.WriteString("\n")
		b.WriteString(Header("Dependencies"))
		b.WriteString("\n")
		for _, c := range l.Curves {
			fmt.Fprintf(&b, "%s → %s  %s\n", labels[c.FromID], labels[c.ToID], Dim(string(c.Type)))
		}
	}
	return b.String()
}
