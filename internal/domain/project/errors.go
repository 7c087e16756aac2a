package project

import (
	"fmt"

	"github.com/rpggio/plantree/internal/domain"
)

var (
	// ErrProjectNotFound indicates the project doesn't exist.
	ErrProjectNotFound = fmt.Errorf("project %w", domain.ErrNotFound)
	// ErrUserNotFound indicates the referenced user doesn't exist.
	ErrUserNotFound = fmt.Errorf("user %w", domain.ErrNotFound)
	// ErrInvalidInput indicates invalid project input.
	ErrInvalidInput = fmt.Errorf("invalid project input: %w", domain.ErrValidation)
	// ErrAccessDenied indicates the requester is neither owner nor member.
	ErrAccessDenied = fmt.Errorf("project %w", domain.ErrAccessDenied)
	// ErrNotOwner indicates an owner-only operation was attempted by someone else.
	ErrNotOwner = fmt.Errorf("only the project owner may do this: %w", domain.ErrAccessDenied)
	// ErrMemberExists indicates the user is already a member.
	ErrMemberExists = fmt.Errorf("member already exists: %w", domain.ErrConflict)
)
