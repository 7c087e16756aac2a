package numbering

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/rpggio/plantree/internal/domain"
	"github.com/rpggio/plantree/internal/domain/activity"
	"github.com/rpggio/plantree/internal/domain/object"
	"github.com/rpggio/plantree/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("plantree.numbering")

const component = "numbering"

// PlanFunc computes the number writes for the objects read inside a transaction.
type PlanFunc func(current []object.Object) []object.NumberChange

// Store reads project objects and applies number plans transactionally.
type Store interface {
	ListByProject(ctx context.Context, projectID string) ([]object.Object, error)
	// ApplyNumbers reloads the project's objects, asks plan for changes and
	// writes them in the returned order, bumping each object's version, all
	// in one transaction. It returns the objects as committed and the number
	// of rows written.
	ApplyNumbers(ctx context.Context, projectID string, plan PlanFunc) ([]object.Object, int, error)
}

// AccessChecker answers owner-or-member checks.
type AccessChecker interface {
	CheckAccess(ctx context.Context, projectID, userID string) error
}

// ActivityRepository logs renumbering activities.
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.Entry) error
}

// Service renumbers projects and produces labeled outlines.
type Service struct {
	store      Store
	projects   AccessChecker
	activities ActivityRepository
	logger     *slog.Logger
}

// NewService creates a new numbering service.
func NewService(store Store, projects AccessChecker, activities ActivityRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{store: store, projects: projects, activities: activities, logger: logger}
}

// RenumberObjects renumbers every sibling group of the project and returns
// the tree-ordered, labeled result.
func (s *Service) RenumberObjects(ctx context.Context, projectID, requesterID string) (out []Labeled, err error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "numbering.RenumberObjects", trace.WithAttributes(
		attribute.String("project.id", projectID),
	))
	defer func() {
		observability.ObserveOperation(component, "renumber", start, err)
		observability.EndSpan(span, err)
	}()

	if err := s.projects.CheckAccess(ctx, projectID, requesterID); err != nil {
		return nil, err
	}
	objects, writes, err := s.apply(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if writes > 0 && s.activities != nil {
		if err := s.activities.Log(ctx, &activity.Entry{
			ProjectID: projectID,
			UserID:    requesterID,
			Type:      activity.TypeObjectsRenumbered,
			Summary:   fmt.Sprintf("renumbered %d objects", writes),
			CreatedAt: time.Now().UTC(),
		}); err != nil {
			s.logger.Warn("activity log failed", "project_id", projectID, "error", err)
		}
	}
	return Outline(objects), nil
}

// Resync renumbers the project without an access check. Object mutations
// call it after they commit. It returns the number of rows written.
func (s *Service) Resync(ctx context.Context, projectID string) (int, error) {
	_, writes, err := s.apply(ctx, projectID)
	return writes, err
}

// Outline returns the project's labeled outline without writing.
func (s *Service) Outline(ctx context.Context, projectID, requesterID string) ([]Labeled, error) {
	if err := s.projects.CheckAccess(ctx, projectID, requesterID); err != nil {
		return nil, err
	}
	objects, err := s.store.ListByProject(ctx, projectID)
	if err != nil {
		return nil, domain.Storage("listing objects", err)
	}
	return Outline(objects), nil
}

// Labels maps object IDs to their outline labels. Objects left out of the
// outline get no entry.
func (s *Service) Labels(objects []object.Object) map[string]string {
	labeled := Outline(objects)
	out := make(map[string]string, len(labeled))
	for _, l := range labeled {
		out[l.Object.ID] = l.Label
	}
	return out
}

func (s *Service) apply(ctx context.Context, projectID string) ([]object.Object, int, error) {
	objects, writes, err := s.store.ApplyNumbers(ctx, projectID, func(current []object.Object) []object.NumberChange {
		return Changes(current, Renumber(current))
	})
	if err != nil {
		return nil, 0, domain.Storage("renumbering objects", err)
	}
	observability.RecordRenumberWrites(writes)
	if writes > 0 {
		s.logger.Debug("objects renumbered", "project_id", projectID, "writes", writes)
	}
	return objects, writes, nil
}
