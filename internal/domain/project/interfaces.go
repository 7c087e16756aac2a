package project

import "context"

// Repository provides persistence for projects and their members.
type Repository interface {
	Create(ctx context.Context, proj *Project) error
	Get(ctx context.Context, id string) (*Project, error)
	ListForUser(ctx context.Context, userID string) ([]ProjectSummary, error)
	AddMember(ctx context.Context, member *Member) error
	RemoveMember(ctx context.Context, projectID, userID string) error
	ListMembers(ctx context.Context, projectID string) ([]Member, error)
	IsMember(ctx context.Context, projectID, userID string) (bool, error)
}

// UserRepository provides persistence for users.
type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
}
