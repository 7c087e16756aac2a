package object

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
	"github.com/rpggio/plantree/internal/domain/activity"
	"github.com/rpggio/plantree/internal/domain/project"
	"github.com/rpggio/plantree/internal/observability"
	"github.com/rpggio/plantree/internal/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("plantree.object")

const component = "object"

// Service handles object business logic.
type Service struct {
	objects    Repository
	search     SearchRepository
	projects   ProjectAccess
	renumber   Renumberer
	activities ActivityRepository
	logger     *slog.Logger
}

// NewService creates a new object service.
func NewService(
	objects Repository,
	search SearchRepository,
	projects ProjectAccess,
	renumber Renumberer,
	activities ActivityRepository,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		objects:    objects,
		search:     search,
		projects:   projects,
		renumber:   renumber,
		activities: activities,
		logger:     logger,
	}
}

// CreateRequest describes an object creation request.
type CreateRequest struct {
	ProjectID   string     `json:"project_id" validate:"required"`
	ParentID    *string    `json:"parent_id,omitempty" validate:"omitempty,notblank"`
	Kind        Kind       `json:"kind,omitempty" validate:"omitempty,oneof=task milestone"`
	Name        string     `json:"name" validate:"notblank,max=255"`
	Description string     `json:"description,omitempty" validate:"max=10000"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Status      Status     `json:"status,omitempty" validate:"omitempty,oneof=open in_progress done closed"`
	Priority    Priority   `json:"priority,omitempty" validate:"omitempty,oneof=lowest low medium high highest"`
	Progress    *int       `json:"progress,omitempty" validate:"omitempty,min=0,max=100"`
	Members     []string   `json:"members,omitempty" validate:"dive,notblank"`
	CreatorID   string     `json:"creator_id" validate:"required"`
}

// UpdateRequest describes a field-level patch. Nil fields are left unchanged.
type UpdateRequest struct {
	ID             string     `json:"id" validate:"required"`
	RequesterID    string     `json:"requester_id" validate:"required"`
	Version        int64      `json:"version" validate:"gt=0"`
	Name           *string    `json:"name,omitempty" validate:"omitempty,notblank,max=255"`
	Description    *string    `json:"description,omitempty" validate:"omitempty,max=10000"`
	Kind           *Kind      `json:"kind,omitempty" validate:"omitempty,oneof=task milestone"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	ClearStartDate bool       `json:"clear_start_date,omitempty"`
	ClearEndDate   bool       `json:"clear_end_date,omitempty"`
	Status         *Status    `json:"status,omitempty" validate:"omitempty,oneof=open in_progress done closed"`
	Priority       *Priority  `json:"priority,omitempty" validate:"omitempty,oneof=lowest low medium high highest"`
	Progress       *int       `json:"progress,omitempty" validate:"omitempty,min=0,max=100"`
	Number         *int       `json:"number,omitempty" validate:"omitempty,gt=0"`
	ParentID       *string    `json:"parent_id,omitempty" validate:"omitempty,notblank"`
	MoveToRoot     bool       `json:"move_to_root,omitempty"`
	Members        []string   `json:"members,omitempty" validate:"omitempty,dive,notblank"`
}

// Create creates a new object numbered after its current siblings.
func (s *Service) Create(ctx context.Context, req CreateRequest) (obj *Object, err error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "object.Create", trace.WithAttributes(
		attribute.String("project.id", req.ProjectID),
	))
	defer func() {
		observability.ObserveOperation(component, "create", start, err)
		observability.EndSpan(span, err)
	}()

	if err := ValidateCreateInput(req); err != nil {
		return nil, err
	}

	proj, err := s.projects.Lookup(ctx, req.ProjectID)
	if err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			return nil, domain.NewValidationError("project_id", "project %s does not exist", req.ProjectID)
		}
		return nil, err
	}
	if err := s.projects.CheckAccess(ctx, proj.ID, req.CreatorID); err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		if _, err := s.loadParent(ctx, proj.ID, *req.ParentID); err != nil {
			return nil, err
		}
	}

	kind := req.Kind
	if kind == "" {
		kind = KindTask
	}
	startDate, endDate := req.StartDate, req.EndDate
	if startDate == nil {
		startDate = proj.StartDate
	}
	if endDate == nil {
		endDate = proj.EndDate
	}
	startDate, endDate = normalizeSchedule(kind, startDate, endDate)
	if err := ValidateSchedule(kind, startDate, endDate); err != nil {
		return nil, err
	}

	members, err := s.checkMembers(ctx, proj.ID, req.Members)
	if err != nil {
		return nil, err
	}

	number, err := s.nextNumber(ctx, proj.ID, req.ParentID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	obj = &Object{
		ID:          uuid.NewString(),
		ProjectID:   proj.ID,
		ParentID:    req.ParentID,
		Number:      number,
		Kind:        kind,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		StartDate:   startDate,
		EndDate:     endDate,
		Status:      valueOr(req.Status, StatusOpen),
		Priority:    valueOr(req.Priority, PriorityMedium),
		Progress:    intOr(req.Progress, 0),
		Members:     members,
		CreatorID:   req.CreatorID,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.objects.Create(ctx, obj); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrDuplicateNumber
		case errors.Is(err, repository.ErrForeignKeyViolation):
			return nil, domain.NewValidationError("parent_id", "parent or member reference is invalid")
		case errors.Is(err, repository.ErrInvalidInput):
			return nil, domain.NewValidationError("", "object fields out of range")
		}
		return nil, domain.Storage("creating object", err)
	}

	s.logActivity(ctx, obj, req.CreatorID, activity.TypeObjectCreated, fmt.Sprintf("created %s %q", obj.Kind, obj.Name))
	s.logger.Info("object created", "object_id", obj.ID, "project_id", obj.ProjectID, "number", obj.Number)

	return s.resync(ctx, obj), nil
}

// Get returns an object the requester can access.
func (s *Service) Get(ctx context.Context, id, requesterID string) (*Object, error) {
	obj, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.projects.CheckAccess(ctx, obj.ProjectID, requesterID); err != nil {
		return nil, err
	}
	return obj, nil
}

// ListByProject returns the project's objects, parents-first then by number.
func (s *Service) ListByProject(ctx context.Context, projectID, requesterID string) (list []Object, err error) {
	start := time.Now()
	defer func() { observability.ObserveOperation(component, "list", start, err) }()

	if err := s.projects.CheckAccess(ctx, projectID, requesterID); err != nil {
		return nil, err
	}
	list, err = s.objects.ListByProject(ctx, projectID)
	if err != nil {
		return nil, domain.Storage("listing objects", err)
	}
	return list, nil
}

// Update applies a field patch guarded by the object's version.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (obj *Object, err error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "object.Update", trace.WithAttributes(
		attribute.String("object.id", req.ID),
	))
	defer func() {
		observability.ObserveOperation(component, "update", start, err)
		observability.EndSpan(span, err)
	}()

	if err := ValidateUpdateInput(req); err != nil {
		return nil, err
	}

	current, err := s.load(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if err := s.projects.CheckAccess(ctx, current.ProjectID, req.RequesterID); err != nil {
		return nil, err
	}
	if current.Version != req.Version {
		return nil, ErrStaleVersion
	}

	updated := *current
	if req.Name != nil {
		updated.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updated.Description = *req.Description
	}
	if req.Kind != nil {
		updated.Kind = *req.Kind
	}
	if req.Status != nil {
		updated.Status = *req.Status
	}
	if req.Priority != nil {
		updated.Priority = *req.Priority
	}
	if req.Progress != nil {
		updated.Progress = *req.Progress
	}

	switch {
	case req.ClearStartDate:
		updated.StartDate = nil
	case req.StartDate != nil:
		updated.StartDate = req.StartDate
	}
	switch {
	case req.ClearEndDate:
		updated.EndDate = nil
	case req.EndDate != nil:
		updated.EndDate = req.EndDate
	}
	updated.StartDate, updated.EndDate = normalizeSchedule(updated.Kind, updated.StartDate, updated.EndDate)
	if err := ValidateSchedule(updated.Kind, updated.StartDate, updated.EndDate); err != nil {
		return nil, err
	}

	if req.Members != nil {
		members, err := s.checkMembers(ctx, current.ProjectID, req.Members)
		if err != nil {
			return nil, err
		}
		updated.Members = members
	}

	if err := s.applyPlacement(ctx, current, &updated, req); err != nil {
		return nil, err
	}

	updated.Version = current.Version + 1
	updated.UpdatedAt = time.Now().UTC()

	if err := s.objects.Update(ctx, &updated, current.Version); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return nil, ErrStaleVersion
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrDuplicateNumber
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrObjectNotFound
		case errors.Is(err, repository.ErrInvalidInput):
			return nil, domain.NewValidationError("", "object fields out of range")
		}
		return nil, domain.Storage("updating object", err)
	}

	s.logActivity(ctx, &updated, req.RequesterID, activity.TypeObjectUpdated, fmt.Sprintf("updated %q", updated.Name))
	return s.resync(ctx, &updated), nil
}

// Delete removes an object. Only the project owner or the object's creator may delete.
// Edges touching the object are removed and its children move to the top level.
func (s *Service) Delete(ctx context.Context, id, requesterID string) (err error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "object.Delete", trace.WithAttributes(
		attribute.String("object.id", id),
	))
	defer func() {
		observability.ObserveOperation(component, "delete", start, err)
		observability.EndSpan(span, err)
	}()

	obj, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	proj, err := s.projects.Lookup(ctx, obj.ProjectID)
	if err != nil {
		return err
	}
	if requesterID == "" || (requesterID != proj.OwnerID && requesterID != obj.CreatorID) {
		return ErrNotDeletable
	}

	if err := s.objects.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrObjectNotFound
		}
		return domain.Storage("deleting object", err)
	}

	s.logActivity(ctx, obj, requesterID, activity.TypeObjectDeleted, fmt.Sprintf("deleted %q", obj.Name))
	s.logger.Info("object deleted", "object_id", id, "project_id", obj.ProjectID)
	s.resync(ctx, obj)
	return nil
}

// Search runs a full-text search over names and descriptions.
func (s *Service) Search(ctx context.Context, projectID, requesterID, query string, opts SearchOptions) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.NewValidationError("query", "is required")
	}
	if s.search == nil {
		return nil, fmt.Errorf("search repository not configured")
	}
	if err := s.projects.CheckAccess(ctx, projectID, requesterID); err != nil {
		return nil, err
	}
	results, err := s.search.Search(ctx, projectID, query, opts)
	if err != nil {
		return nil, domain.Storage("searching objects", err)
	}
	if len(results) == 0 || s.renumber == nil {
		return results, nil
	}

	all, err := s.objects.ListByProject(ctx, projectID)
	if err != nil {
		return nil, domain.Storage("listing objects", err)
	}
	labels := s.renumber.Labels(all)
	for i := range results {
		results[i].Label = labels[results[i].Object.ID]
	}
	return results, nil
}

// applyPlacement resolves parent and number changes on updated.
func (s *Service) applyPlacement(ctx context.Context, current, updated *Object, req UpdateRequest) error {
	moved := false
	switch {
	case req.MoveToRoot && current.ParentID != nil:
		updated.ParentID = nil
		moved = true
	case req.ParentID != nil && (current.ParentID == nil || *current.ParentID != *req.ParentID):
		if err := s.checkReparent(ctx, current, *req.ParentID); err != nil {
			return err
		}
		parentID := *req.ParentID
		updated.ParentID = &parentID
		moved = true
	}

	if req.Number != nil {
		if !moved && *req.Number == current.Number {
			return nil
		}
		siblings, err := s.objects.ListChildren(ctx, current.ProjectID, updated.ParentID)
		if err != nil {
			return domain.Storage("listing siblings", err)
		}
		for _, sib := range siblings {
			if sib.ID != current.ID && sib.Number == *req.Number {
				return ErrDuplicateNumber
			}
		}
		updated.Number = *req.Number
		return nil
	}

	if moved {
		number, err := s.nextNumber(ctx, current.ProjectID, updated.ParentID)
		if err != nil {
			return err
		}
		updated.Number = number
	}
	return nil
}

// checkReparent rejects parents outside the project and moves that would create a cycle.
func (s *Service) checkReparent(ctx context.Context, obj *Object, parentID string) error {
	if parentID == obj.ID {
		return domain.NewValidationError("parent_id", "an object cannot be its own parent")
	}
	if _, err := s.loadParent(ctx, obj.ProjectID, parentID); err != nil {
		return err
	}

	all, err := s.objects.ListByProject(ctx, obj.ProjectID)
	if err != nil {
		return domain.Storage("listing objects", err)
	}
	parents := make(map[string]*string, len(all))
	for _, o := range all {
		parents[o.ID] = o.ParentID
	}

	seen := map[string]bool{}
	for cur := &parentID; cur != nil; cur = parents[*cur] {
		if *cur == obj.ID {
			return domain.NewValidationError("parent_id", "object %s is a descendant of %s", parentID, obj.ID)
		}
		if seen[*cur] {
			break
		}
		seen[*cur] = true
	}
	return nil
}

func (s *Service) loadParent(ctx context.Context, projectID, parentID string) (*Object, error) {
	parent, err := s.objects.Get(ctx, parentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewValidationError("parent_id", "parent %s does not exist", parentID)
		}
		return nil, domain.Storage("loading parent", err)
	}
	if parent.ProjectID != projectID {
		return nil, domain.NewValidationError("parent_id", "parent %s belongs to another project", parentID)
	}
	return parent, nil
}

func (s *Service) load(ctx context.Context, id string) (*Object, error) {
	obj, err := s.objects.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrObjectNotFound
		}
		return nil, domain.Storage("loading object", err)
	}
	return obj, nil
}

func (s *Service) nextNumber(ctx context.Context, projectID string, parentID *string) (int, error) {
	highest, err := s.objects.MaxNumber(ctx, projectID, parentID)
	if err != nil {
		return 0, domain.Storage("reading max number", err)
	}
	return highest + 1, nil
}

// checkMembers verifies every member belongs to the project and drops duplicates.
func (s *Service) checkMembers(ctx context.Context, projectID string, members []string) ([]string, error) {
	if len(members) == 0 {
		return nil, nil
	}
	seen := make(map[string]bool, len(members))
	out := make([]string, 0, len(members))
	for _, m := range members {
		if seen[m] {
			continue
		}
		seen[m] = true
		ok, err := s.projects.IsParticipant(ctx, projectID, m)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.NewValidationError("members", "user %s is not a member of the project", m)
		}
		out = append(out, m)
	}
	return out, nil
}

// resync renumbers the project after a committed write and returns obj
// refreshed when its number moved. Failures are logged, not returned.
func (s *Service) resync(ctx context.Context, obj *Object) *Object {
	if s.renumber == nil {
		return obj
	}
	changed, err := s.renumber.Resync(ctx, obj.ProjectID)
	if err != nil {
		observability.RecordResyncFailure()
		s.logger.Warn("renumber resync failed", "project_id", obj.ProjectID, "error", err)
		return obj
	}
	if changed == 0 {
		return obj
	}
	fresh, err := s.objects.Get(ctx, obj.ID)
	if err != nil {
		return obj
	}
	return fresh
}

func (s *Service) logActivity(ctx context.Context, obj *Object, userID string, typ activity.Type, summary string) {
	if s.activities == nil {
		return
	}
	id := obj.ID
	if err := s.activities.Log(ctx, &activity.Entry{
		ProjectID: obj.ProjectID,
		ObjectID:  &id,
		UserID:    userID,
		Type:      typ,
		Summary:   summary,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		s.logger.Warn("activity log failed", "object_id", obj.ID, "error", err)
	}
}

// normalizeSchedule collapses a milestone to its start.
func normalizeSchedule(kind Kind, start, end *time.Time) (*time.Time, *time.Time) {
	if kind == KindMilestone {
		return start, start
	}
	return start, end
}

func valueOr[T ~string](v, def T) T {
	if v == "" {
		return def
	}
	return v
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
