package dependency

import (
	"context"

	"github.com/rpggio/plantree/internal/domain/activity"
	"github.com/rpggio/plantree/internal/domain/object"
)

// Repository persists logical edges as mirrored row pairs.
// Every pair method runs in a single transaction.
type Repository interface {
	CreatePair(ctx context.Context, rows [2]Edge) error
	// DeletePair removes both rows of the logical edge between fromID and
	// toID, addressed in either direction. It returns the stored direction
	// and how many rows were removed.
	DeletePair(ctx context.Context, fromID, toID string) (Link, int, error)
	// UpdatePairType sets typ on both rows, addressed like DeletePair.
	UpdatePairType(ctx context.Context, fromID, toID string, typ Type) (Link, int, error)
	ListForObject(ctx context.Context, objectID string) ([]Edge, error)
	ListForProject(ctx context.Context, projectID string) ([]Edge, error)
}

// ObjectReader loads edge endpoints.
type ObjectReader interface {
	Get(ctx context.Context, id string) (*object.Object, error)
}

// ProjectAccess answers owner-or-member checks.
type ProjectAccess interface {
	CheckAccess(ctx context.Context, projectID, userID string) error
}

// ActivityRepository logs dependency activities.
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.Entry) error
}
