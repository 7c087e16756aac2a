package dependency

import (
	"fmt"

	"github.com/rpggio/plantree/internal/domain"
)

var (
	// ErrSelfEdge rejects an edge from an object to itself.
	ErrSelfEdge = domain.NewValidationError("to_id", "an object cannot depend on itself")
	// ErrUnknownType rejects a relation type outside SS, FF, SF and FS.
	ErrUnknownType = domain.NewValidationError("type", "must be one of SS FF SF FS")
	// ErrEdgeNotFound indicates no row of the logical edge exists.
	ErrEdgeNotFound = fmt.Errorf("dependency %w", domain.ErrNotFound)
	// ErrDuplicateEdge indicates the logical edge already exists.
	ErrDuplicateEdge = fmt.Errorf("dependency already exists: %w", domain.ErrConflict)
)
