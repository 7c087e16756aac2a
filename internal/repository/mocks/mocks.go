package mocks

import (
	"context"

	"github.com/rpggio/plantree/internal/domain/activity"
	"github.com/rpggio/plantree/internal/domain/dependency"
	"github.com/rpggio/plantree/internal/domain/object"
	"github.com/rpggio/plantree/internal/domain/project"
	"github.com/rpggio/plantree/internal/numbering"
	"github.com/stretchr/testify/mock"
)

var (
	_ project.Repository      = (*ProjectRepository)(nil)
	_ project.UserRepository  = (*ProjectRepository)(nil)
	_ object.Repository       = (*ObjectRepository)(nil)
	_ numbering.Store         = (*ObjectRepository)(nil)
	_ object.SearchRepository = (*SearchRepository)(nil)
	_ object.ProjectAccess    = (*ProjectAccess)(nil)
	_ object.Renumberer       = (*Renumberer)(nil)
	_ dependency.Repository   = (*EdgeRepository)(nil)
	_ activity.Repository     = (*ActivityRepository)(nil)
)

// ProjectRepository is a mock for project.Repository and project.UserRepository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	args := m.Called(ctx, proj)
	return args.Error(0)
}

func (m *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	args := m.Called(ctx, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) ListForUser(ctx context.Context, userID string) ([]project.ProjectSummary, error) {
	args := m.Called(ctx, userID)
	if list, ok := args.Get(0).([]project.ProjectSummary); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) AddMember(ctx context.Context, member *project.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *ProjectRepository) RemoveMember(ctx context.Context, projectID, userID string) error {
	args := m.Called(ctx, projectID, userID)
	return args.Error(0)
}

func (m *ProjectRepository) ListMembers(ctx context.Context, projectID string) ([]project.Member, error) {
	args := m.Called(ctx, projectID)
	if list, ok := args.Get(0).([]project.Member); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) IsMember(ctx context.Context, projectID, userID string) (bool, error) {
	args := m.Called(ctx, projectID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *ProjectRepository) CreateUser(ctx context.Context, user *project.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *ProjectRepository) GetUser(ctx context.Context, id string) (*project.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*project.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

// ProjectAccess is a mock for object.ProjectAccess.
type ProjectAccess struct {
	mock.Mock
}

func (m *ProjectAccess) Lookup(ctx context.Context, projectID string) (*project.Project, error) {
	args := m.Called(ctx, projectID)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectAccess) CheckAccess(ctx context.Context, projectID, userID string) error {
	args := m.Called(ctx, projectID, userID)
	return args.Error(0)
}

func (m *ProjectAccess) IsParticipant(ctx context.Context, projectID, userID string) (bool, error) {
	args := m.Called(ctx, projectID, userID)
	return args.Bool(0), args.Error(1)
}

// ObjectRepository is a mock for object.Repository and numbering.Store.
type ObjectRepository struct {
	mock.Mock
}

func (m *ObjectRepository) Create(ctx context.Context, obj *object.Object) error {
	args := m.Called(ctx, obj)
	return args.Error(0)
}

func (m *ObjectRepository) Get(ctx context.Context, id string) (*object.Object, error) {
	args := m.Called(ctx, id)
	if obj, ok := args.Get(0).(*object.Object); ok {
		return obj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ObjectRepository) ListByProject(ctx context.Context, projectID string) ([]object.Object, error) {
	args := m.Called(ctx, projectID)
	if list, ok := args.Get(0).([]object.Object); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ObjectRepository) ListChildren(ctx context.Context, projectID string, parentID *string) ([]object.Object, error) {
	args := m.Called(ctx, projectID, parentID)
	if list, ok := args.Get(0).([]object.Object); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ObjectRepository) MaxNumber(ctx context.Context, projectID string, parentID *string) (int, error) {
	args := m.Called(ctx, projectID, parentID)
	return args.Int(0), args.Error(1)
}

func (m *ObjectRepository) Update(ctx context.Context, obj *object.Object, expectedVersion int64) error {
	args := m.Called(ctx, obj, expectedVersion)
	return args.Error(0)
}

func (m *ObjectRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ObjectRepository) ApplyNumbers(ctx context.Context, projectID string, plan numbering.PlanFunc) ([]object.Object, int, error) {
	args := m.Called(ctx, projectID, plan)
	list, _ := args.Get(0).([]object.Object)
	return list, args.Int(1), args.Error(2)
}

// SearchRepository is a mock for object.SearchRepository.
type SearchRepository struct {
	mock.Mock
}

func (m *SearchRepository) Search(ctx context.Context, projectID, query string, opts object.SearchOptions) ([]object.SearchResult, error) {
	args := m.Called(ctx, projectID, query, opts)
	if list, ok := args.Get(0).([]object.SearchResult); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// Renumberer is a mock for object.Renumberer.
type Renumberer struct {
	mock.Mock
}

func (m *Renumberer) Resync(ctx context.Context, projectID string) (int, error) {
	args := m.Called(ctx, projectID)
	return args.Int(0), args.Error(1)
}

func (m *Renumberer) Labels(objects []object.Object) map[string]string {
	args := m.Called(objects)
	if labels, ok := args.Get(0).(map[string]string); ok {
		return labels
	}
	return nil
}

// EdgeRepository is a mock for dependency.Repository.
type EdgeRepository struct {
	mock.Mock
}

func (m *EdgeRepository) CreatePair(ctx context.Context, rows [2]dependency.Edge) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *EdgeRepository) DeletePair(ctx context.Context, fromID, toID string) (dependency.Link, int, error) {
	args := m.Called(ctx, fromID, toID)
	return args.Get(0).(dependency.Link), args.Int(1), args.Error(2)
}

func (m *EdgeRepository) UpdatePairType(ctx context.Context, fromID, toID string, typ dependency.Type) (dependency.Link, int, error) {
	args := m.Called(ctx, fromID, toID, typ)
	return args.Get(0).(dependency.Link), args.Int(1), args.Error(2)
}

func (m *EdgeRepository) ListForObject(ctx context.Context, objectID string) ([]dependency.Edge, error) {
	args := m.Called(ctx, objectID)
	if list, ok := args.Get(0).([]dependency.Edge); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EdgeRepository) ListForProject(ctx context.Context, projectID string) ([]dependency.Edge, error) {
	args := m.Called(ctx, projectID)
	if list, ok := args.Get(0).([]dependency.Edge); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListOptions) ([]activity.Entry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
