package activity

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/rpggio/plantree/internal/domain"
)

const defaultLimit = 50

// Service handles activity log operations.
type Service struct {
	repo     Repository
	projects AccessChecker
	logger   *slog.Logger
}

// NewService creates a new activity service.
func NewService(repo Repository, projects AccessChecker, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{repo: repo, projects: projects, logger: logger}
}

// LogActivity logs an activity entry with the current timestamp if missing.
func (s *Service) LogActivity(ctx context.Context, entry *Entry) error {
	if entry == nil || entry.ProjectID == "" {
		return domain.NewValidationError("project_id", "is required")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if err := s.repo.Log(ctx, entry); err != nil {
		s.logger.Warn("activity log failed", "project_id", entry.ProjectID, "type", entry.Type, "error", err)
		return fmt.Errorf("logging activity: %w", err)
	}
	return nil
}

// GetRecentActivity lists activity entries of a project the requester can access.
func (s *Service) GetRecentActivity(ctx context.Context, requesterID string, opts ListOptions) ([]Entry, error) {
	if opts.ProjectID == "" {
		return nil, domain.NewValidationError("project_id", "is required")
	}
	if err := s.projects.CheckAccess(ctx, opts.ProjectID, requesterID); err != nil {
		return nil, err
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultLimit
	}
	entries, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, domain.Storage("listing activity", err)
	}
	return entries, nil
}
