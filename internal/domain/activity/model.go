package activity

import "time"

// Type represents the type of activity event
type Type string

const (
	TypeObjectCreated     Type = "object_created"
	TypeObjectUpdated     Type = "object_updated"
	TypeObjectDeleted     Type = "object_deleted"
	TypeObjectsRenumbered Type = "objects_renumbered"
	TypeDependencyCreated Type = "dependency_created"
	TypeDependencyUpdated Type = "dependency_updated"
	TypeDependencyDeleted Type = "dependency_deleted"
)

// Entry represents an event in the activity log
type Entry struct {
	ID        int64     `json:"id"`
	ProjectID string    `json:"project_id"`
	ObjectID  *string   `json:"object_id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Type      Type      `json:"type"`
	Summary   string    `json:"summary"`
	Details   string    `json:"details,omitempty"` // JSON string
	CreatedAt time.Time `json:"created_at"`
}
