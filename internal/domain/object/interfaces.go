package object

import (
	"context"

	"github.com/rpggio/plantree/internal/domain/activity"
	"github.com/rpggio/plantree/internal/domain/project"
)

// Repository provides persistence for objects.
type Repository interface {
	Create(ctx context.Context, obj *Object) error
	Get(ctx context.Context, id string) (*Object, error)
	ListByProject(ctx context.Context, projectID string) ([]Object, error)
	ListChildren(ctx context.Context, projectID string, parentID *string) ([]Object, error)
	MaxNumber(ctx context.Context, projectID string, parentID *string) (int, error)
	Update(ctx context.Context, obj *Object, expectedVersion int64) error
	// Delete removes the object, every edge touching it, and moves its
	// children to the top level, all in one transaction.
	Delete(ctx context.Context, id string) error
}

// SearchRepository performs full-text search over objects.
type SearchRepository interface {
	Search(ctx context.Context, projectID, query string, opts SearchOptions) ([]SearchResult, error)
}

// ProjectAccess answers project lookups and owner-or-member checks.
type ProjectAccess interface {
	Lookup(ctx context.Context, projectID string) (*project.Project, error)
	CheckAccess(ctx context.Context, projectID, userID string) error
	IsParticipant(ctx context.Context, projectID, userID string) (bool, error)
}

// Renumberer resyncs sibling numbers of a project after a structural change
// and labels objects the way the outline does.
type Renumberer interface {
	Resync(ctx context.Context, projectID string) (int, error)
	Labels(objects []Object) map[string]string
}

// ActivityRepository logs object activities.
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.Entry) error
}
