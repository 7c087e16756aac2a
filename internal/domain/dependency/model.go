package dependency

import (
	"time"

	"github.com/rpggio/plantree/internal/domain/object"
)

// Type names the bar endpoints a dependency links.
type Type string

const (
	TypeStartStart   Type = "SS"
	TypeFinishFinish Type = "FF"
	TypeStartFinish  Type = "SF"
	TypeFinishStart  Type = "FS"
)

// IsValid reports whether t is one of the four relation types.
func (t Type) IsValid() bool {
	switch t {
	case TypeStartStart, TypeFinishFinish, TypeStartFinish, TypeFinishStart:
		return true
	}
	return false
}

// Role tells which side of a logical edge a stored row describes.
type Role string

const (
	RolePredecessor Role = "predecessor"
	RoleSuccessor   Role = "successor"
)

// Edge is one stored row of a logical dependency, seen from ObjectID.
// A predecessor row means ObjectID precedes RelatedObjectID.
type Edge struct {
	ObjectID        string          `json:"object_id"`
	RelatedObjectID string          `json:"related_object_id"`
	Role            Role            `json:"role"`
	Type            Type            `json:"type"`
	CreatedAt       time.Time       `json:"created_at"`
	Related         *object.Summary `json:"related,omitempty"`
}

// Link is a logical edge: FromID precedes ToID.
type Link struct {
	FromID string
	ToID   string
	Type   Type
}

// Rows returns the two mirrored rows that store l.
func (l Link) Rows(createdAt time.Time) [2]Edge {
	return [2]Edge{
		{ObjectID: l.FromID, RelatedObjectID: l.ToID, Role: RolePredecessor, Type: l.Type, CreatedAt: createdAt},
		{ObjectID: l.ToID, RelatedObjectID: l.FromID, Role: RoleSuccessor, Type: l.Type, CreatedAt: createdAt},
	}
}

// Link returns the logical edge a row belongs to.
func (e Edge) Link() Link {
	if e.Role == RoleSuccessor {
		return Link{FromID: e.RelatedObjectID, ToID: e.ObjectID, Type: e.Type}
	}
	return Link{FromID: e.ObjectID, ToID: e.RelatedObjectID, Type: e.Type}
}
