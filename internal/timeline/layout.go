package timeline

import (
	"time"

	"github.com/rpggio/plantree/internal/domain/dependency"
	"github.com/rpggio/plantree/internal/domain/object"
	"github.com/rpggio/plantree/internal/observability"
)

// Curve is a directed dependency line between two bars.
type Curve struct {
	FromID string          `json:"from_id"`
	ToID   string          `json:"to_id"`
	Type   dependency.Type `json:"type"`
	Start  Point           `json:"start"`
	End    Point           `json:"end"`
	Path   string          `json:"path"`
}

// Layout is the full drawable timeline of a project.
type Layout struct {
	ViewMode ViewMode  `json:"view_mode"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Width    float64   `json:"width"`
	Height   float64   `json:"height"`
	Bars     []Bar     `json:"bars"`
	Curves   []Curve   `json:"curves"`
	Marker   Marker    `json:"marker"`
	Scale    Scale     `json:"-"`
	Config   Config    `json:"-"`
}

// Build lays out objects and their dependencies on a surface. Objects
// without a start date and edges touching them are left out; Build never fails.
func Build(objects []object.Object, edges []dependency.Edge, cfg Config) *Layout {
	if !cfg.ViewMode.IsValid() {
		cfg.ViewMode = ViewDay
	}
	bars, excluded := Bars(objects)
	observability.RecordTimelineExcluded("bar", excluded)

	layout := &Layout{
		ViewMode: cfg.ViewMode,
		Bars:     bars,
		Marker:   Arrowhead,
		Config:   cfg,
	}
	if len(bars) == 0 {
		layout.Height = cfg.HeaderHeight
		layout.Curves = []Curve{}
		return layout
	}

	first, last := bars[0].Start, bars[0].End
	for _, b := range bars[1:] {
		if b.Start.Before(first) {
			first = b.Start
		}
		if b.End.After(last) {
			last = b.End
		}
	}
	origin := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, first.Location())
	scale := Scale{Origin: origin, Unit: cfg.ViewMode.Unit(), ColumnWidth: cfg.columnWidth()}

	rowHeight := cfg.BarHeight + cfg.Padding
	for i := range layout.Bars {
		b := &layout.Bars[i]
		x := scale.X(b.Start)
		width := scale.X(b.End) - x
		if b.IsMilestone() {
			width = 0
		}
		b.Rect = Rect{
			X:      x,
			Y:      cfg.HeaderHeight + cfg.Padding/2 + float64(i)*rowHeight,
			Width:  width,
			Height: cfg.BarHeight,
		}
	}

	layout.Start = origin
	layout.End = last
	layout.Scale = scale
	layout.Width = scale.X(last) + scale.ColumnWidth
	layout.Height = cfg.HeaderHeight + float64(len(bars))*rowHeight + cfg.Padding/2
	layout.Curves = Curves(layout.Bars, edges)
	return layout
}

// Curves returns one curve per logical edge whose endpoints both have bars.
// Only predecessor rows are used, so mirrored successor rows never double a curve.
func Curves(bars []Bar, edges []dependency.Edge) []Curve {
	rects := make(map[string]Rect, len(bars))
	for _, b := range bars {
		rects[b.ObjectID] = b.Rect
	}

	curves := []Curve{}
	skipped := 0
	for _, e := range edges {
		if e.Role != dependency.RolePredecessor {
			continue
		}
		from, okFrom := rects[e.ObjectID]
		to, okTo := rects[e.RelatedObjectID]
		if !okFrom || !okTo {
			skipped++
			continue
		}
		start, end := Anchors(e.Type, from, to)
		curves = append(curves, Curve{
			FromID: e.ObjectID,
			ToID:   e.RelatedObjectID,
			Type:   e.Type,
			Start:  start,
			End:    end,
			Path:   CurvePath(start, end),
		})
	}
	observability.RecordTimelineExcluded("curve", skipped)
	return curves
}
