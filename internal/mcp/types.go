package mcp

import (
	"strings"
	"time"

	"github.com/rpggio/plantree/internal/domain"
	"github.com/rpggio/plantree/internal/domain/activity"
	"github.com/rpggio/plantree/internal/domain/dependency"
	"github.com/rpggio/plantree/internal/domain/object"
	"github.com/rpggio/plantree/internal/domain/project"
	"github.com/rpggio/plantree/internal/numbering"
)

// DateLayout is the calendar date format accepted and produced by the tools.
const DateLayout = "2006-01-02"

type CreateProjectParams struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
}

type GetProjectParams struct {
	ID string `json:"id"`
}

type AddMemberParams struct {
	ProjectID string       `json:"project_id"`
	UserID    string       `json:"user_id"`
	Role      project.Role `json:"role,omitempty"`
}

type RemoveMemberParams struct {
	ProjectID string `json:"project_id"`
	UserID    string `json:"user_id"`
}

type ProjectParams struct {
	ProjectID string `json:"project_id"`
}

type CreateObjectParams struct {
	ProjectID   string          `json:"project_id"`
	ParentID    *string         `json:"parent_id,omitempty"`
	Kind        object.Kind     `json:"kind,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	StartDate   string          `json:"start_date,omitempty"`
	EndDate     string          `json:"end_date,omitempty"`
	Status      object.Status   `json:"status,omitempty"`
	Priority    object.Priority `json:"priority,omitempty"`
	Progress    *int            `json:"progress,omitempty"`
	Members     []string        `json:"members,omitempty"`
}

type ObjectParams struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id,omitempty"`
}

type UpdateObjectParams struct {
	ID             string           `json:"id"`
	ProjectID      string           `json:"project_id,omitempty"`
	Version        int64            `json:"version"`
	Name           *string          `json:"name,omitempty"`
	Description    *string          `json:"description,omitempty"`
	Kind           *object.Kind     `json:"kind,omitempty"`
	StartDate      string           `json:"start_date,omitempty"`
	EndDate        string           `json:"end_date,omitempty"`
	ClearStartDate bool             `json:"clear_start_date,omitempty"`
	ClearEndDate   bool             `json:"clear_end_date,omitempty"`
	Status         *object.Status   `json:"status,omitempty"`
	Priority       *object.Priority `json:"priority,omitempty"`
	Progress       *int             `json:"progress,omitempty"`
	Number         *int             `json:"number,omitempty"`
	ParentID       *string          `json:"parent_id,omitempty"`
	MoveToRoot     bool             `json:"move_to_root,omitempty"`
	Members        []string         `json:"members,omitempty"`
}

type DependencyParams struct {
	FromID string          `json:"from_id"`
	ToID   string          `json:"to_id"`
	Type   dependency.Type `json:"type,omitempty"`
}

type ObjectDependenciesParams struct {
	ObjectID  string `json:"object_id"`
	ProjectID string `json:"project_id,omitempty"`
}

type TimelineParams struct {
	ProjectID string `json:"project_id"`
	View      string `json:"view,omitempty"`
}

type SearchObjectsParams struct {
	ProjectID string `json:"project_id"`
	Query     string `json:"query"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

type RecentActivityParams struct {
	ProjectID string          `json:"project_id"`
	ObjectID  string          `json:"object_id,omitempty"`
	Types     []activity.Type `json:"types,omitempty"`
	Limit     int             `json:"limit,omitempty"`
	Offset    int             `json:"offset,omitempty"`
}

// OutlineResponse is a project's objects in tree order with display labels.
type OutlineResponse struct {
	ProjectID string              `json:"project_id"`
	Objects   []numbering.Labeled `json:"objects"`
}

// DeleteResponse acknowledges a delete.
type DeleteResponse struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id,omitempty"`
}

// ParseDate parses a calendar date or an RFC 3339 timestamp. An empty value
// yields nil.
func ParseDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(DateLayout, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, domain.NewValidationError(field, "must be a date like 2024-01-31")
	}
	t = t.UTC()
	return &t, nil
}
