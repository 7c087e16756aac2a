package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/plantree/internal/domain/object"
	"github.com/rpggio/plantree/internal/domain/project"
	"github.com/rpggio/plantree/internal/sqlite"
	"github.com/stretchr/testify/require"
)

// Date returns midnight UTC of the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// SeedUser inserts a user named after id.
func SeedUser(t testing.TB, db *sqlite.DB, id string) *project.User {
	t.Helper()
	user := &project.User{ID: id, Name: id, CreatedAt: time.Now().UTC()}
	require.NoError(t, sqlite.NewProjectRepository(db).CreateUser(context.Background(), user))
	return user
}

// SeedProject inserts a project owned by ownerID.
func SeedProject(t testing.TB, db *sqlite.DB, ownerID string) *project.Project {
	t.Helper()
	proj := &project.Project{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      "Project " + ownerID,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, sqlite.NewProjectRepository(db).Create(context.Background(), proj))
	return proj
}

// ObjectOption customizes NewObject.
type ObjectOption func(*object.Object)

// WithParent places the object under parentID.
func WithParent(parentID string) ObjectOption {
	return func(o *object.Object) { o.ParentID = &parentID }
}

// WithDates sets the schedule.
func WithDates(start, end time.Time) ObjectOption {
	return func(o *object.Object) {
		o.StartDate = &start
		o.EndDate = &end
	}
}

// WithKind sets the kind.
func WithKind(k object.Kind) ObjectOption {
	return func(o *object.Object) { o.Kind = k }
}

// NewObject builds an open medium-priority task.
func NewObject(projectID, creatorID, name string, number int, opts ...ObjectOption) *object.Object {
	now := time.Now().UTC()
	obj := &object.Object{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Number:    number,
		Kind:      object.KindTask,
		Name:      name,
		Status:    object.StatusOpen,
		Priority:  object.PriorityMedium,
		CreatorID: creatorID,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(obj)
	}
	return obj
}

// SeedObject inserts an object built by NewObject.
func SeedObject(t testing.TB, db *sqlite.DB, projectID, creatorID, name string, number int, opts ...ObjectOption) *object.Object {
	t.Helper()
	obj := NewObject(projectID, creatorID, name, number, opts...)
	require.NoError(t, sqlite.NewObjectRepository(db).Create(context.Background(), obj))
	return obj
}
