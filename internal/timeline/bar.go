// Package timeline derives drawable Gantt geometry from objects and dependencies.
package timeline

import (
	"time"

	"github.com/rpggio/plantree/internal/domain/object"
	"github.com/rpggio/plantree/internal/numbering"
)

// Bar is the timeline row of one scheduled object.
type Bar struct {
	ObjectID    string        `json:"object_id"`
	Name        string        `json:"name"`
	Label       string        `json:"label"`
	Depth       int           `json:"depth"`
	Kind        object.Kind   `json:"kind"`
	Status      object.Status `json:"status"`
	Start       time.Time     `json:"start"`
	End         time.Time     `json:"end"`
	Progress    int           `json:"progress"`
	StatusClass string        `json:"status_class"`
	TypeClass   string        `json:"type_class"`
	HasChildren bool          `json:"has_children"`
	CustomClass string        `json:"custom_class"`
	Rect        Rect          `json:"rect"`
}

// IsMilestone reports whether the bar is drawn as a point.
func (b Bar) IsMilestone() bool {
	return b.Kind == object.KindMilestone
}

// StatusClass maps a status onto its bar class.
func StatusClass(s object.Status) string {
	switch s {
	case object.StatusDone:
		return "status-done"
	case object.StatusInProgress:
		return "status-progress"
	case object.StatusClosed:
		return "status-closed"
	default:
		return "status-open"
	}
}

// TypeClass maps a kind onto its bar class.
func TypeClass(k object.Kind) string {
	if k == object.KindMilestone {
		return "milestone"
	}
	return "task"
}

func childrenClass(hasChildren bool) string {
	if hasChildren {
		return "has-children"
	}
	return "no-children"
}

// Bars returns one bar per object with a start date, in outline order.
// The second result counts the objects left out.
func Bars(objects []object.Object) ([]Bar, int) {
	outline := numbering.Outline(objects)
	parents := map[string]bool{}
	for _, item := range outline {
		if item.ParentID != nil {
			parents[*item.ParentID] = true
		}
	}

	bars := make([]Bar, 0, len(outline))
	for _, item := range outline {
		if item.StartDate == nil {
			continue
		}
		start := *item.StartDate
		end := start
		if item.Kind != object.KindMilestone && item.EndDate != nil && !item.EndDate.Before(start) {
			end = *item.EndDate
		}

		hasChildren := parents[item.ID]
		status, typ := StatusClass(item.Status), TypeClass(item.Kind)
		bars = append(bars, Bar{
			ObjectID:    item.ID,
			Name:        item.Name,
			Label:       item.Label,
			Depth:       item.Depth,
			Kind:        item.Kind,
			Status:      item.Status,
			Start:       start,
			End:         end,
			Progress:    item.Progress,
			StatusClass: status,
			TypeClass:   typ,
			HasChildren: hasChildren,
			CustomClass: status + "-" + typ + "-" + childrenClass(hasChildren),
		})
	}
	return bars, len(objects) - len(bars)
}
