package project

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/plantree/internal/domain"
	"github.com/rpggio/plantree/internal/repository"
)

// Service handles project operations.
type Service struct {
	repo   Repository
	users  UserRepository
	logger *slog.Logger
}

// NewService creates a new project service.
func NewService(repo Repository, users UserRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{repo: repo, users: users, logger: logger}
}

// CreateRequest defines project creation inputs.
type CreateRequest struct {
	ID          string
	Name        string
	Description string
	StartDate   *time.Time
	EndDate     *time.Time
}

// AddMemberRequest defines member addition inputs.
type AddMemberRequest struct {
	UserID string
	Role   Role
}

// Create creates a new project owned by ownerID.
func (s *Service) Create(ctx context.Context, ownerID string, req CreateRequest) (*Project, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, domain.NewValidationError("name", "is required")
	}
	if strings.TrimSpace(ownerID) == "" {
		return nil, domain.NewValidationError("owner_id", "is required")
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, domain.NewValidationError("end_date", "must not be before start_date")
	}

	id := req.ID
	if strings.TrimSpace(id) == "" {
		id = uuid.NewString()
	}

	proj := &Project{
		ID:          id,
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, proj); err != nil {
		if errors.Is(err, repository.ErrForeignKeyViolation) {
			return nil, ErrUserNotFound
		}
		return nil, domain.Storage("creating project", err)
	}

	s.logger.Info("project created", "project_id", proj.ID, "owner_id", ownerID)
	return proj, nil
}

// Get fetches a project with members after checking that requesterID may see it.
func (s *Service) Get(ctx context.Context, projectID, requesterID string) (*Project, error) {
	proj, err := s.Lookup(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.checkAccess(ctx, proj, requesterID); err != nil {
		return nil, err
	}

	members, err := s.repo.ListMembers(ctx, projectID)
	if err != nil {
		return nil, domain.Storage("listing members", err)
	}
	proj.Members = members
	return proj, nil
}

// Lookup fetches a project without any access check.
func (s *Service) Lookup(ctx context.Context, projectID string) (*Project, error) {
	proj, err := s.repo.Get(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, domain.Storage("getting project", err)
	}
	return proj, nil
}

// List returns summaries of projects the user owns or belongs to.
func (s *Service) List(ctx context.Context, userID string) ([]ProjectSummary, error) {
	summaries, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, domain.Storage("listing projects", err)
	}
	return summaries, nil
}

// CheckAccess returns nil when userID owns or belongs to the project.
func (s *Service) CheckAccess(ctx context.Context, projectID, userID string) error {
	proj, err := s.Lookup(ctx, projectID)
	if err != nil {
		return err
	}
	return s.checkAccess(ctx, proj, userID)
}

// IsParticipant reports whether userID is the owner or a member of the project.
func (s *Service) IsParticipant(ctx context.Context, projectID, userID string) (bool, error) {
	err := s.CheckAccess(ctx, projectID, userID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrAccessDenied):
		return false, nil
	default:
		return false, err
	}
}

// AddMember adds a user to the project. Only the owner may add members.
func (s *Service) AddMember(ctx context.Context, projectID, requesterID string, req AddMemberRequest) (*Member, error) {
	proj, err := s.Lookup(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if proj.OwnerID != requesterID {
		return nil, ErrNotOwner
	}
	if strings.TrimSpace(req.UserID) == "" {
		return nil, domain.NewValidationError("user_id", "is required")
	}
	role := req.Role
	if role == "" {
		role = RoleDeveloper
	}
	if !role.IsValid() {
		return nil, domain.NewValidationError("role", "unknown role %q", role)
	}

	member := &Member{
		ProjectID: projectID,
		UserID:    req.UserID,
		Role:      role,
		AddedAt:   time.Now().UTC(),
	}
	if err := s.repo.AddMember(ctx, member); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrMemberExists
		case errors.Is(err, repository.ErrForeignKeyViolation):
			return nil, ErrUserNotFound
		}
		return nil, domain.Storage("adding member", err)
	}

	s.logger.Info("member added", "project_id", projectID, "user_id", req.UserID, "role", role)
	return member, nil
}

// RemoveMember removes a user from the project. Only the owner may remove members.
func (s *Service) RemoveMember(ctx context.Context, projectID, requesterID, userID string) error {
	proj, err := s.Lookup(ctx, projectID)
	if err != nil {
		return err
	}
	if proj.OwnerID != requesterID {
		return ErrNotOwner
	}
	if err := s.repo.RemoveMember(ctx, projectID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("member %s: %w", userID, domain.ErrNotFound)
		}
		return domain.Storage("removing member", err)
	}
	return nil
}

// RegisterUser creates a user record.
func (s *Service) RegisterUser(ctx context.Context, name, email string) (*User, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domain.NewValidationError("name", "is required")
	}
	user := &User{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		Email:     strings.TrimSpace(email),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("email %s already registered: %w", email, domain.ErrConflict)
		}
		return nil, domain.Storage("creating user", err)
	}
	return user, nil
}

// GetUser fetches a user by ID.
func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, domain.Storage("getting user", err)
	}
	return user, nil
}

func (s *Service) checkAccess(ctx context.Context, proj *Project, userID string) error {
	if userID == "" {
		return ErrAccessDenied
	}
	if proj.OwnerID == userID {
		return nil
	}
	ok, err := s.repo.IsMember(ctx, proj.ID, userID)
	if err != nil {
		return domain.Storage("checking membership", err)
	}
	if !ok {
		s.logger.Debug("project access denied", "project_id", proj.ID, "user_id", userID)
		return ErrAccessDenied
	}
	return nil
}
