package dependency

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/rpggio/plantree/internal/domain"
	"github.com/rpggio/plantree/internal/domain/activity"
	"github.com/rpggio/plantree/internal/domain/object"
	"github.com/rpggio/plantree/internal/observability"
	"github.com/rpggio/plantree/internal/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("plantree.dependency")

const component = "dependency"

// Service manages the dependency graph between objects.
type Service struct {
	edges      Repository
	objects    ObjectReader
	projects   ProjectAccess
	activities ActivityRepository
	logger     *slog.Logger
}

// NewService creates a new dependency service.
func NewService(edges Repository, objects ObjectReader, projects ProjectAccess, activities ActivityRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		edges:      edges,
		objects:    objects,
		projects:   projects,
		activities: activities,
		logger:     logger,
	}
}

// EdgeRequest addresses the logical edge FromID -> ToID.
type EdgeRequest struct {
	FromID      string `json:"from_id" validate:"notblank"`
	ToID        string `json:"to_id" validate:"notblank"`
	Type        Type   `json:"type,omitempty"`
	RequesterID string `json:"requester_id" validate:"required"`
}

// CreateEdge stores both rows of a new logical edge. An empty type means FS.
func (s *Service) CreateEdge(ctx context.Context, req EdgeRequest) (edge *Edge, err error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "dependency.CreateEdge", trace.WithAttributes(
		attribute.String("edge.from", req.FromID),
		attribute.String("edge.to", req.ToID),
	))
	defer func() {
		observability.ObserveOperation(component, "create", start, err)
		observability.EndSpan(span, err)
	}()

	if req.Type == "" {
		req.Type = TypeFinishStart
	}
	if err := validateEdge(req); err != nil {
		return nil, err
	}

	from, to, err := s.endpoints(ctx, req)
	if err != nil {
		return nil, err
	}

	link := Link{FromID: from.ID, ToID: to.ID, Type: req.Type}
	rows := link.Rows(time.Now().UTC())
	if err := s.edges.CreatePair(ctx, rows); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrDuplicateEdge
		case errors.Is(err, repository.ErrForeignKeyViolation):
			return nil, object.ErrObjectNotFound
		case errors.Is(err, repository.ErrInvalidInput):
			return nil, domain.NewValidationError("type", "is not a known dependency type")
		}
		return nil, domain.Storage("creating dependency", err)
	}

	s.logActivity(ctx, from, req.RequesterID, activity.TypeDependencyCreated,
		fmt.Sprintf("%q %s %q", from.Name, link.Type, to.Name))
	s.logger.Info("dependency created", "from", link.FromID, "to", link.ToID, "type", link.Type)

	created := rows[0]
	related := to.Summarize()
	created.Related = &related
	return &created, nil
}

// DeleteEdge removes both rows of the logical edge, addressed in either
// direction. A lone surviving row is removed as well; no rows at all is
// ErrEdgeNotFound.
func (s *Service) DeleteEdge(ctx context.Context, req EdgeRequest) (err error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "dependency.DeleteEdge", trace.WithAttributes(
		attribute.String("edge.from", req.FromID),
		attribute.String("edge.to", req.ToID),
	))
	defer func() {
		observability.ObserveOperation(component, "delete", start, err)
		observability.EndSpan(span, err)
	}()

	req.Type = ""
	if err := validateEdge(req); err != nil {
		return err
	}
	from, to, err := s.endpoints(ctx, req)
	if err != nil {
		return err
	}

	link, removed, err := s.edges.DeletePair(ctx, from.ID, to.ID)
	if err != nil {
		return domain.Storage("deleting dependency", err)
	}
	if removed == 0 {
		return ErrEdgeNotFound
	}
	from, to = orient(link, from, to)
	if removed == 1 {
		s.logger.Warn("dependency had a single row", "from", from.ID, "to", to.ID)
	}

	s.logActivity(ctx, from, req.RequesterID, activity.TypeDependencyDeleted,
		fmt.Sprintf("%q no longer precedes %q", from.Name, to.Name))
	return nil
}

// UpdateEdgeType changes the relation type on both rows. Roles never change,
// so an edge addressed in reverse keeps its stored direction.
func (s *Service) UpdateEdgeType(ctx context.Context, req EdgeRequest) (edge *Edge, err error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "dependency.UpdateEdgeType", trace.WithAttributes(
		attribute.String("edge.from", req.FromID),
		attribute.String("edge.to", req.ToID),
		attribute.String("edge.type", string(req.Type)),
	))
	defer func() {
		observability.ObserveOperation(component, "update", start, err)
		observability.EndSpan(span, err)
	}()

	if req.Type == "" {
		return nil, domain.NewValidationError("type", "is required")
	}
	if err := validateEdge(req); err != nil {
		return nil, err
	}
	from, to, err := s.endpoints(ctx, req)
	if err != nil {
		return nil, err
	}

	link, updated, err := s.edges.UpdatePairType(ctx, from.ID, to.ID, req.Type)
	if err != nil {
		return nil, domain.Storage("updating dependency", err)
	}
	if updated == 0 {
		return nil, ErrEdgeNotFound
	}
	from, to = orient(link, from, to)

	s.logActivity(ctx, from, req.RequesterID, activity.TypeDependencyUpdated,
		fmt.Sprintf("%q %s %q", from.Name, req.Type, to.Name))

	related := to.Summarize()
	return &Edge{
		ObjectID:        from.ID,
		RelatedObjectID: to.ID,
		Role:            RolePredecessor,
		Type:            req.Type,
		Related:         &related,
	}, nil
}

// ListForObject returns every row stored for objectID, both roles.
func (s *Service) ListForObject(ctx context.Context, objectID, requesterID string) ([]Edge, error) {
	obj, err := s.load(ctx, objectID)
	if err != nil {
		return nil, err
	}
	if err := s.projects.CheckAccess(ctx, obj.ProjectID, requesterID); err != nil {
		return nil, err
	}
	edges, err := s.edges.ListForObject(ctx, objectID)
	if err != nil {
		return nil, domain.Storage("listing dependencies", err)
	}
	return edges, nil
}

// ListForProject returns every row whose endpoints both belong to projectID.
func (s *Service) ListForProject(ctx context.Context, projectID, requesterID string) (edges []Edge, err error) {
	start := time.Now()
	defer func() { observability.ObserveOperation(component, "list_project", start, err) }()

	if err := s.projects.CheckAccess(ctx, projectID, requesterID); err != nil {
		return nil, err
	}
	edges, err = s.edges.ListForProject(ctx, projectID)
	if err != nil {
		return nil, domain.Storage("listing project dependencies", err)
	}
	return edges, nil
}

// orient returns a and b ordered as the stored link.
func orient(link Link, a, b *object.Object) (*object.Object, *object.Object) {
	if link.FromID == b.ID && link.ToID == a.ID {
		return b, a
	}
	return a, b
}

// endpoints loads both objects and checks the requester can reach each project.
func (s *Service) endpoints(ctx context.Context, req EdgeRequest) (*object.Object, *object.Object, error) {
	from, err := s.load(ctx, req.FromID)
	if err != nil {
		return nil, nil, err
	}
	to, err := s.load(ctx, req.ToID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.projects.CheckAccess(ctx, from.ProjectID, req.RequesterID); err != nil {
		return nil, nil, err
	}
	if to.ProjectID != from.ProjectID {
		if err := s.projects.CheckAccess(ctx, to.ProjectID, req.RequesterID); err != nil {
			return nil, nil, err
		}
	}
	return from, to, nil
}

func (s *Service) load(ctx context.Context, id string) (*object.Object, error) {
	obj, err := s.objects.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, object.ErrObjectNotFound
		}
		return nil, domain.Storage("loading object", err)
	}
	return obj, nil
}

func (s *Service) logActivity(ctx context.Context, from *object.Object, userID string, typ activity.Type, summary string) {
	if s.activities == nil {
		return
	}
	id := from.ID
	if err := s.activities.Log(ctx, &activity.Entry{
		ProjectID: from.ProjectID,
		ObjectID:  &id,
		UserID:    userID,
		Type:      typ,
		Summary:   summary,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		s.logger.Warn("activity log failed", "object_id", from.ID, "error", err)
	}
}
