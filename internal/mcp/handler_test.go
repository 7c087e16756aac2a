package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/rpggio/plantree/internal/app"
	"github.com/rpggio/plantree/internal/domain"
	"github.com/rpggio/plantree/internal/domain/activity"
	"github.com/rpggio/plantree/internal/domain/dependency"
	"github.com/rpggio/plantree/internal/domain/object"
	"github.com/rpggio/plantree/internal/domain/project"
	"github.com/rpggio/plantree/internal/testutil"
	"github.com/rpggio/plantree/internal/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type projectStub struct {
	ProjectService
	getFn func(context.Context, string, string) (*project.Project, error)
}

func (p projectStub) Get(ctx context.Context, projectID, requesterID string) (*project.Project, error) {
	return p.getFn(ctx, projectID, requesterID)
}

type objectStub struct {
	ObjectService
	updateFn func(context.Context, object.UpdateRequest) (*object.Object, error)
}

func (o objectStub) Update(ctx context.Context, req object.UpdateRequest) (*object.Object, error) {
	return o.updateFn(ctx, req)
}

func newTestServices(t *testing.T) (Services, string) {
	t.Helper()
	db := testutil.NewTestDB(t)
	testutil.SeedUser(t, db, "owner")
	testutil.SeedUser(t, db, "stranger")
	a := app.New(db, timeline.DefaultConfig(), nil)
	proj, err := a.Projects.Create(context.Background(), "owner", project.CreateRequest{
		Name:      "Launch",
		StartDate: ptr(testutil.Date(2024, 1, 1)),
		EndDate:   ptr(testutil.Date(2024, 1, 31)),
	})
	require.NoError(t, err)
	return Services{
		Projects:     a.Projects,
		Objects:      a.Objects,
		Numbering:    a.Numbering,
		Dependencies: a.Dependencies,
		Timeline:     a.Timeline,
		Activity:     a.Activity,
	}, proj.ID
}

func ptr[T any](v T) *T { return &v }

func call[T any](t *testing.T, h *Handler, userID, method string, params any) T {
	t.Helper()
	result, err := h.Handle(context.Background(), userID, method, mustJSON(t, params))
	require.NoError(t, err, method)
	out, ok := result.(T)
	require.True(t, ok, "%s returned %T", method, result)
	return out
}

func TestHandler_ObjectLifecycle(t *testing.T) {
	svc, projectID := newTestServices(t)
	h := NewHandler(svc)

	design := call[*object.Object](t, h, "owner", "create_object", CreateObjectParams{ProjectID: projectID, Name: "Design"})
	build := call[*object.Object](t, h, "owner", "create_object", CreateObjectParams{
		ProjectID: projectID,
		Name:      "Build",
		StartDate: "2024-01-10",
		EndDate:   "2024-01-20",
	})
	sub := call[*object.Object](t, h, "owner", "create_object", CreateObjectParams{ProjectID: projectID, ParentID: &build.ID, Name: "Wire"})

	assert.Equal(t, 1, design.Number)
	assert.Equal(t, 2, build.Number)
	assert.True(t, testutil.Date(2024, 1, 1).Equal(*design.StartDate), "defaults to project dates")

	outline := call[OutlineResponse](t, h, "owner", "get_outline", ProjectParams{ProjectID: projectID})
	require.Len(t, outline.Objects, 3)
	assert.Equal(t, "2.1", outline.Objects[2].Label)
	assert.Equal(t, sub.ID, outline.Objects[2].ID)

	renamed := call[*object.Object](t, h, "owner", "update_object", UpdateObjectParams{
		ID:      design.ID,
		Version: design.Version,
		Name:    ptr("Design review"),
	})
	assert.Equal(t, "Design review", renamed.Name)

	_, err := h.Handle(context.Background(), "owner", "update_object", mustJSON(t, UpdateObjectParams{
		ID:      design.ID,
		Version: design.Version,
		Name:    ptr("stale"),
	}))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, CodeConflict, apiErr.Code)

	edge := call[*dependency.Edge](t, h, "owner", "create_dependency", DependencyParams{FromID: design.ID, ToID: build.ID})
	assert.Equal(t, dependency.TypeFinishStart, edge.Type)

	layout := call[*timeline.Layout](t, h, "owner", "get_timeline", TimelineParams{ProjectID: projectID, View: "day"})
	assert.Len(t, layout.Bars, 3)
	assert.Len(t, layout.Curves, 1)

	call[DeleteResponse](t, h, "owner", "delete_object", ObjectParams{ID: build.ID})
	objects := call[[]object.Object](t, h, "owner", "list_objects", ProjectParams{ProjectID: projectID})
	require.Len(t, objects, 2)
	assert.Equal(t, "Design review", objects[0].Name)
	assert.Equal(t, "Wire", objects[1].Name)
	assert.Equal(t, 2, objects[1].Number, "orphan appended after the top level")

	edges := call[[]dependency.Edge](t, h, "owner", "list_project_dependencies", ProjectParams{ProjectID: projectID})
	assert.Empty(t, edges)

	entries := call[[]activity.Entry](t, h, "owner", "get_recent_activity", RecentActivityParams{ProjectID: projectID})
	assert.NotEmpty(t, entries)
}

func TestHandler_AccessAndValidationErrors(t *testing.T) {
	svc, projectID := newTestServices(t)
	h := NewHandler(svc)

	tests := []struct {
		name   string
		user   string
		method string
		params any
		code   string
	}{
		{"stranger lists objects", "stranger", "list_objects", ProjectParams{ProjectID: projectID}, CodeAccessDenied},
		{"missing project", "owner", "get_project", GetProjectParams{ID: "nope"}, CodeNotFound},
		{"blank name", "owner", "create_object", CreateObjectParams{ProjectID: projectID, Name: "  "}, CodeValidation},
		{"bad date", "owner", "create_object", CreateObjectParams{ProjectID: projectID, Name: "x", StartDate: "31/01/2024"}, CodeValidation},
		{"bad view", "owner", "get_timeline", TimelineParams{ProjectID: projectID, View: "week"}, CodeValidation},
		{"unknown method", "owner", "drop_tables", nil, CodeUnknownMethod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Handle(context.Background(), tt.user, tt.method, mustJSON(t, tt.params))
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.code, apiErr.Code)
		})
	}
}

func TestHandler_MalformedParams(t *testing.T) {
	h := NewHandler(Services{})

	_, err := h.Handle(context.Background(), "owner", "get_object", json.RawMessage(`{"id": 7}`))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, CodeValidation, apiErr.Code)
	assert.Equal(t, map[string]string{"field": "params"}, apiErr.Details)
}

func TestHandler_ErrorMapping(t *testing.T) {
	h := NewHandler(Services{
		Projects: projectStub{getFn: func(context.Context, string, string) (*project.Project, error) {
			return nil, domain.Storage("getting project", errors.New("disk I/O error"))
		}},
		Objects: objectStub{updateFn: func(_ context.Context, req object.UpdateRequest) (*object.Object, error) {
			assert.Equal(t, "dev", req.RequesterID)
			return nil, fmt.Errorf("object %s: %w", req.ID, domain.ErrConflict)
		}},
	})

	_, err := h.Handle(context.Background(), "dev", "get_project", mustJSON(t, GetProjectParams{ID: "p1"}))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, CodeStorage, apiErr.Code)
	assert.NotContains(t, apiErr.Message, "disk", "storage causes stay in the server log")

	_, err = h.Handle(context.Background(), "dev", "update_object", mustJSON(t, UpdateObjectParams{ID: "o1", Version: 3}))
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, CodeConflict, apiErr.Code)
}

func TestMapError(t *testing.T) {
	assert.Nil(t, MapError(nil))
	assert.Nil(t, MapError(errors.New("boom")))

	apiErr := MapError(domain.NewValidationError("name", "is required"))
	require.NotNil(t, apiErr)
	assert.Equal(t, CodeValidation, apiErr.Code)
	assert.Equal(t, map[string]string{"field": "name"}, apiErr.Details)

	assert.Equal(t, CodeAccessDenied, MapError(project.ErrAccessDenied).Code)
	assert.Equal(t, CodeNotFound, MapError(project.ErrProjectNotFound).Code)
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("start_date", "")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ParseDate("start_date", "2024-03-05")
	require.NoError(t, err)
	assert.True(t, testutil.Date(2024, 3, 5).Equal(*got))

	got, err = ParseDate("start_date", "2024-03-05T10:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, 8, got.Hour())

	_, err = ParseDate("start_date", "tomorrow")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}
