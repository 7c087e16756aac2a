package timeline

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/rpggio/plantree/internal/domain"
	"github.com/rpggio/plantree/internal/domain/dependency"
	"github.com/rpggio/plantree/internal/domain/object"
	"github.com/rpggio/plantree/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("plantree.timeline")

// ObjectSource lists a project's objects.
type ObjectSource interface {
	ListByProject(ctx context.Context, projectID string) ([]object.Object, error)
}

// EdgeSource lists a project's dependency rows.
type EdgeSource interface {
	ListForProject(ctx context.Context, projectID string) ([]dependency.Edge, error)
}

// AccessChecker answers owner-or-member checks.
type AccessChecker interface {
	CheckAccess(ctx context.Context, projectID, userID string) error
}

// Service builds project timelines.
type Service struct {
	objects  ObjectSource
	edges    EdgeSource
	projects AccessChecker
	config   Config
	logger   *slog.Logger
}

// NewService creates a timeline service drawing with cfg.
func NewService(objects ObjectSource, edges EdgeSource, projects AccessChecker, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{objects: objects, edges: edges, projects: projects, config: cfg, logger: logger}
}

// Layout lays out the project. An empty mode uses the configured one.
func (s *Service) Layout(ctx context.Context, projectID, requesterID string, mode ViewMode) (layout *Layout, err error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "timeline.Layout", trace.WithAttributes(
		attribute.String("project.id", projectID),
		attribute.String("timeline.view", string(mode)),
	))
	defer func() {
		observability.ObserveOperation("timeline", "layout", start, err)
		observability.EndSpan(span, err)
	}()

	cfg := s.config
	if mode != "" {
		if !mode.IsValid() {
			return nil, domain.NewValidationError("view", "must be one of day month year")
		}
		if mode != cfg.ViewMode {
			cfg.ColumnWidth = 0
		}
		cfg.ViewMode = mode
	}

	if err := s.projects.CheckAccess(ctx, projectID, requesterID); err != nil {
		return nil, err
	}
	objects, err := s.objects.ListByProject(ctx, projectID)
	if err != nil {
		return nil, domain.Storage("listing objects", err)
	}
	edges, err := s.edges.ListForProject(ctx, projectID)
	if err != nil {
		return nil, domain.Storage("listing dependencies", err)
	}

	layout = Build(objects, edges, cfg)
	s.logger.Debug("timeline built", "project_id", projectID, "bars", len(layout.Bars), "curves", len(layout.Curves))
	return layout, nil
}
