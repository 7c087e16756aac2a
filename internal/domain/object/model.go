package object

import "time"

// Kind distinguishes tasks from milestones.
type Kind string

const (
	KindTask      Kind = "task"
	KindMilestone Kind = "milestone"
)

// Status is the workflow state of an object.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusClosed     Status = "closed"
)

// Priority is an ordered urgency level.
type Priority string

const (
	PriorityLowest  Priority = "lowest"
	PriorityLow     Priority = "low"
	PriorityMedium  Priority = "medium"
	PriorityHigh    Priority = "high"
	PriorityHighest Priority = "highest"
)

var priorityRank = map[Priority]int{
	PriorityLowest:  1,
	PriorityLow:     2,
	PriorityMedium:  3,
	PriorityHigh:    4,
	PriorityHighest: 5,
}

// Rank returns 1 (lowest) to 5 (highest), or 0 for an unknown priority.
func (p Priority) Rank() int {
	return priorityRank[p]
}

// Object is a task or milestone inside a project hierarchy.
// Number is unique among siblings sharing ParentID within ProjectID.
type Object struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	ParentID    *string    `json:"parent_id,omitempty"`
	Number      int        `json:"number"`
	Kind        Kind       `json:"kind"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	Progress    int        `json:"progress"`
	Members     []string   `json:"members,omitempty"`
	CreatorID   string     `json:"creator_id"`
	Version     int64      `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsRoot reports whether the object sits at the top level.
func (o Object) IsRoot() bool {
	return o.ParentID == nil
}

// SameParent reports whether o and other share a parent.
func (o Object) SameParent(other Object) bool {
	if o.ParentID == nil || other.ParentID == nil {
		return o.ParentID == nil && other.ParentID == nil
	}
	return *o.ParentID == *other.ParentID
}

// EffectiveEnd returns the end used for scheduling: milestones end where they start.
func (o Object) EffectiveEnd() *time.Time {
	if o.Kind == KindMilestone {
		return o.StartDate
	}
	return o.EndDate
}

// Summary is the display reference to an object.
type Summary struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
	Name   string `json:"name"`
}

// Summarize returns the display reference for o.
func (o Object) Summarize() Summary {
	return Summary{ID: o.ID, Number: o.Number, Name: o.Name}
}

// NumberChange is a single renumbering write.
type NumberChange struct {
	ID     string
	Number int
}

// SearchResult is a full-text hit with relevance.
type SearchResult struct {
	Object  Summary `json:"object"`
	Label   string  `json:"label,omitempty"`
	Rank    float64 `json:"rank"`
	Snippet string  `json:"snippet,omitempty"`
}
