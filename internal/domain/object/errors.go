package object

import (
	"fmt"

	"github.com/rpggio/plantree/internal/domain"
)

var (
	// ErrObjectNotFound indicates the object doesn't exist.
	ErrObjectNotFound = fmt.Errorf("object %w", domain.ErrNotFound)
	// ErrDuplicateNumber indicates a sibling already holds the number.
	ErrDuplicateNumber = fmt.Errorf("number already taken by a sibling: %w", domain.ErrConflict)
	// ErrStaleVersion indicates the object was modified since it was read.
	ErrStaleVersion = fmt.Errorf("object modified concurrently: %w", domain.ErrConflict)
	// ErrNotDeletable indicates the requester is neither project owner nor creator.
	ErrNotDeletable = fmt.Errorf("only the project owner or the creator may delete: %w", domain.ErrAccessDenied)
)
