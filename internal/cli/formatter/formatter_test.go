package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/rpggio/plantree/internal/domain/dependency"
	"github.com/rpggio/plantree/internal/domain/object"
	"github.com/rpggio/plantree/internal/numbering"
	"github.com/rpggio/plantree/internal/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plain(t *testing.T) {
	t.Helper()
	SetColor(false)
	t.Cleanup(func() { SetColor(true) })
}

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func labeled(name, label string, depth int) numbering.Labeled {
	return numbering.Labeled{
		Object: object.Object{Name: name, Kind: object.KindTask, Status: object.StatusOpen},
		Label:  label,
		Depth:  depth,
	}
}

func TestRenderOutline_Connectors(t *testing.T) {
	plain(t)

	out := RenderOutline([]numbering.Labeled{
		labeled("Design", "1", 0),
		labeled("Wireframes", "1.1", 1),
		labeled("Mockups", "1.2", 1),
		labeled("Review", "1.2.1", 2),
		labeled("Build", "2", 0),
	})

	assert.Equal(t, strings.Join([]string{
		"1 Design",
		"├─ 1.1 Wireframes",
		"└─ 1.2 Mockups",
		"   └─ 1.2.1 Review",
		"2 Build",
		"",
	}, "\n"), out)
}

func TestRenderOutline_MarkersAndDates(t *testing.T) {
	plain(t)

	start, end := day(2), day(5)
	done := labeled("Design", "1", 0)
	done.Status = object.StatusDone
	done.StartDate, done.EndDate = &start, &end

	launch := labeled("Launch", "2", 0)
	launch.Kind = object.KindMilestone
	launch.StartDate = &end

	out := RenderOutline([]numbering.Labeled{done, launch})
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "✔ Design")
	assert.True(t, strings.HasSuffix(lines[0], "[ 2024-01-02 → 2024-01-05 ]"))
	assert.Contains(t, lines[1], "◆ Launch")
	assert.True(t, strings.HasSuffix(lines[1], "[ 2024-01-05 ]"))
}

func TestRenderOutline_Empty(t *testing.T) {
	assert.Empty(t, RenderOutline(nil))
}

func TestRenderTable_Aligns(t *testing.T) {
	plain(t)

	out := RenderTable([]string{"#", "NAME"}, [][]string{{"1", "Design"}, {"1.10", "Wireframes"}})
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "#     NAME", lines[0])
	assert.Equal(t, "────  ──────────", lines[1])
	assert.Equal(t, "1     Design", lines[2])
	assert.Equal(t, "1.10  Wireframes", lines[3])
}

func TestRenderGantt(t *testing.T) {
	plain(t)

	l := &timeline.Layout{
		Start: day(1),
		End:   day(11),
		Bars: []timeline.Bar{
			{ObjectID: "a", Label: "1", Name: "Design", Kind: object.KindTask, Start: day(1), End: day(6), Progress: 50},
			{ObjectID: "m", Label: "2", Name: "Launch", Kind: object.KindMilestone, Start: day(11), End: day(11)},
		},
		Curves: []timeline.Curve{{FromID: "a", ToID: "m", Type: dependency.TypeFinishStart}},
	}

	out := RenderGantt(l, 10)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 6)

	assert.Contains(t, lines[0], "2024-01-01")
	assert.Contains(t, lines[0], "2024-01-11")
	assert.True(t, strings.HasPrefix(lines[1], "1 Design"))
	assert.True(t, strings.HasSuffix(lines[1], "│██░░░     │"))
	assert.True(t, strings.HasSuffix(lines[2], "│         ◆│"))
	assert.Contains(t, out, "1 → 2  FS")
}

func TestRenderGantt_Empty(t *testing.T) {
	plain(t)
	assert.Equal(t, "No scheduled objects.\n", RenderGantt(&timeline.Layout{}, 40))
}

func TestRenderProgress(t *testing.T) {
	plain(t)

	assert.Equal(t, "[█████░░░░░]  50%", RenderProgress(50, 10))
	assert.Equal(t, "[░░░░░░░░░░]   0%", RenderProgress(-5, 10))
	assert.Equal(t, "[██████████] 100%", RenderProgress(140, 10))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Design", Truncate("Design", 10))
	assert.Equal(t, "Des…", Truncate("Design", 4))
	assert.Equal(t, "…", Truncate("Design", 1))
}
