package activity

import "context"

// Repository provides persistence operations for activity entries.
type Repository interface {
	Log(ctx context.Context, entry *Entry) error
	List(ctx context.Context, opts ListOptions) ([]Entry, error)
}

// AccessChecker verifies owner-or-member access to a project.
type AccessChecker interface {
	CheckAccess(ctx context.Context, projectID, userID string) error
}
