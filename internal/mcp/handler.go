package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rpggio/plantree/internal/domain"
	"github.com/rpggio/plantree/internal/domain/activity"
	"github.com/rpggio/plantree/internal/domain/dependency"
	"github.com/rpggio/plantree/internal/domain/object"
	"github.com/rpggio/plantree/internal/domain/project"
	"github.com/rpggio/plantree/internal/numbering"
	"github.com/rpggio/plantree/internal/timeline"
)

// ProjectService defines project operations needed by MCP.
type ProjectService interface {
	Create(ctx context.Context, ownerID string, req project.CreateRequest) (*project.Project, error)
	List(ctx context.Context, userID string) ([]project.ProjectSummary, error)
	Get(ctx context.Context, projectID, requesterID string) (*project.Project, error)
	AddMember(ctx context.Context, projectID, requesterID string, req project.AddMemberRequest) (*project.Member, error)
	RemoveMember(ctx context.Context, projectID, requesterID, userID string) error
}

// ObjectService defines object operations needed by MCP.
type ObjectService interface {
	Create(ctx context.Context, req object.CreateRequest) (*object.Object, error)
	Get(ctx context.Context, id, requesterID string) (*object.Object, error)
	ListByProject(ctx context.Context, projectID, requesterID string) ([]object.Object, error)
	Update(ctx context.Context, req object.UpdateRequest) (*object.Object, error)
	Delete(ctx context.Context, id, requesterID string) error
	Search(ctx context.Context, projectID, requesterID, query string, opts object.SearchOptions) ([]object.SearchResult, error)
}

// NumberingService defines renumbering operations needed by MCP.
type NumberingService interface {
	RenumberObjects(ctx context.Context, projectID, requesterID string) ([]numbering.Labeled, error)
	Outline(ctx context.Context, projectID, requesterID string) ([]numbering.Labeled, error)
}

// DependencyService defines dependency operations needed by MCP.
type DependencyService interface {
	CreateEdge(ctx context.Context, req dependency.EdgeRequest) (*dependency.Edge, error)
	UpdateEdgeType(ctx context.Context, req dependency.EdgeRequest) (*dependency.Edge, error)
	DeleteEdge(ctx context.Context, req dependency.EdgeRequest) error
	ListForObject(ctx context.Context, objectID, requesterID string) ([]dependency.Edge, error)
	ListForProject(ctx context.Context, projectID, requesterID string) ([]dependency.Edge, error)
}

// TimelineService defines timeline operations needed by MCP.
type TimelineService interface {
	Layout(ctx context.Context, projectID, requesterID string, mode timeline.ViewMode) (*timeline.Layout, error)
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, requesterID string, opts activity.ListOptions) ([]activity.Entry, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Projects     ProjectService
	Objects      ObjectService
	Numbering    NumberingService
	Dependencies DependencyService
	Timeline     TimelineService
	Activity     ActivityService
}

// Handler dispatches MCP commands.
type Handler struct {
	svc Services
}

// NewHandler creates a new MCP handler.
func NewHandler(svc Services) *Handler {
	return &Handler{svc: svc}
}

// Handle dispatches a named operation on behalf of userID. Domain errors are
// returned as *APIError.
func (h *Handler) Handle(ctx context.Context, userID, method string, params json.RawMessage) (any, error) {
	result, err := h.dispatch(ctx, userID, method, params)
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

func (h *Handler) dispatch(ctx context.Context, userID, method string, params json.RawMessage) (any, error) {
	switch method {
	case "create_project":
		var req CreateProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		start, err := ParseDate("start_date", req.StartDate)
		if err != nil {
			return nil, err
		}
		end, err := ParseDate("end_date", req.EndDate)
		if err != nil {
			return nil, err
		}
		return h.svc.Projects.Create(ctx, userID, project.CreateRequest{
			ID:          req.ID,
			Name:        req.Name,
			Description: req.Description,
			StartDate:   start,
			EndDate:     end,
		})
	case "list_projects":
		projects, err := h.svc.Projects.List(ctx, userID)
		if err != nil {
			return nil, err
		}
		if projects == nil {
			projects = []project.ProjectSummary{}
		}
		return projects, nil
	case "get_project":
		var req GetProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.svc.Projects.Get(ctx, req.ID, userID)
	case "add_project_member":
		var req AddMemberParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.svc.Projects.AddMember(ctx, req.ProjectID, userID, project.AddMemberRequest{
			UserID: req.UserID,
			Role:   req.Role,
		})
	case "remove_project_member":
		var req RemoveMemberParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.svc.Projects.RemoveMember(ctx, req.ProjectID, userID, req.UserID); err != nil {
			return nil, err
		}
		return DeleteResponse{Deleted: true, ID: req.UserID}, nil

	case "create_object":
		var req CreateObjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		start, err := ParseDate("start_date", req.StartDate)
		if err != nil {
			return nil, err
		}
		end, err := ParseDate("end_date", req.EndDate)
		if err != nil {
			return nil, err
		}
		return h.svc.Objects.Create(ctx, object.CreateRequest{
			ProjectID:   req.ProjectID,
			ParentID:    req.ParentID,
			Kind:        req.Kind,
			Name:        req.Name,
			Description: req.Description,
			StartDate:   start,
			EndDate:     end,
			Status:      req.Status,
			Priority:    req.Priority,
			Progress:    req.Progress,
			Members:     req.Members,
			CreatorID:   userID,
		})
	case "get_object":
		var req ObjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		obj, err := h.svc.Objects.Get(ctx, req.ID, userID)
		if err != nil {
			return nil, err
		}
		if req.ProjectID != "" && obj.ProjectID != req.ProjectID {
			return nil, object.ErrObjectNotFound
		}
		return obj, nil
	case "list_objects":
		var req ProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		objects, err := h.svc.Objects.ListByProject(ctx, req.ProjectID, userID)
		if err != nil {
			return nil, err
		}
		if objects == nil {
			objects = []object.Object{}
		}
		return objects, nil
	case "get_outline":
		var req ProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		labeled, err := h.svc.Numbering.Outline(ctx, req.ProjectID, userID)
		if err != nil {
			return nil, err
		}
		return outlineResponse(req.ProjectID, labeled), nil
	case "update_object":
		var req UpdateObjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.inProject(ctx, req.ProjectID, req.ID, userID); err != nil {
			return nil, err
		}
		start, err := ParseDate("start_date", req.StartDate)
		if err != nil {
			return nil, err
		}
		end, err := ParseDate("end_date", req.EndDate)
		if err != nil {
			return nil, err
		}
		return h.svc.Objects.Update(ctx, object.UpdateRequest{
			ID:             req.ID,
			RequesterID:    userID,
			Version:        req.Version,
			Name:           req.Name,
			Description:    req.Description,
			Kind:           req.Kind,
			StartDate:      start,
			EndDate:        end,
			ClearStartDate: req.ClearStartDate,
			ClearEndDate:   req.ClearEndDate,
			Status:         req.Status,
			Priority:       req.Priority,
			Progress:       req.Progress,
			Number:         req.Number,
			ParentID:       req.ParentID,
			MoveToRoot:     req.MoveToRoot,
			Members:        req.Members,
		})
	case "delete_object":
		var req ObjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.inProject(ctx, req.ProjectID, req.ID, userID); err != nil {
			return nil, err
		}
		if err := h.svc.Objects.Delete(ctx, req.ID, userID); err != nil {
			return nil, err
		}
		return DeleteResponse{Deleted: true, ID: req.ID}, nil
	case "renumber_objects":
		var req ProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		labeled, err := h.svc.Numbering.RenumberObjects(ctx, req.ProjectID, userID)
		if err != nil {
			return nil, err
		}
		return outlineResponse(req.ProjectID, labeled), nil
	case "search_objects":
		var req SearchObjectsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		results, err := h.svc.Objects.Search(ctx, req.ProjectID, userID, req.Query, object.SearchOptions{
			Limit:  req.Limit,
			Offset: req.Offset,
		})
		if err != nil {
			return nil, err
		}
		if results == nil {
			results = []object.SearchResult{}
		}
		return results, nil

	case "create_dependency", "update_dependency", "delete_dependency":
		var req DependencyParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		edgeReq := dependency.EdgeRequest{FromID: req.FromID, ToID: req.ToID, Type: req.Type, RequesterID: userID}
		switch method {
		case "create_dependency":
			return h.svc.Dependencies.CreateEdge(ctx, edgeReq)
		case "update_dependency":
			return h.svc.Dependencies.UpdateEdgeType(ctx, edgeReq)
		}
		if err := h.svc.Dependencies.DeleteEdge(ctx, edgeReq); err != nil {
			return nil, err
		}
		return DeleteResponse{Deleted: true}, nil
	case "list_object_dependencies":
		var req ObjectDependenciesParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.inProject(ctx, req.ProjectID, req.ObjectID, userID); err != nil {
			return nil, err
		}
		return edgesOrEmpty(h.svc.Dependencies.ListForObject(ctx, req.ObjectID, userID))
	case "list_project_dependencies":
		var req ProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return edgesOrEmpty(h.svc.Dependencies.ListForProject(ctx, req.ProjectID, userID))

	case "get_timeline":
		var req TimelineParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		var mode timeline.ViewMode
		if req.View != "" {
			m, err := timeline.ParseViewMode(req.View)
			if err != nil {
				return nil, domain.NewValidationError("view", "%v", err)
			}
			mode = m
		}
		return h.svc.Timeline.Layout(ctx, req.ProjectID, userID, mode)

	case "get_recent_activity":
		var req RecentActivityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		opts := activity.ListOptions{
			ProjectID: req.ProjectID,
			Types:     req.Types,
			Limit:     req.Limit,
			Offset:    req.Offset,
		}
		if req.ObjectID != "" {
			opts.ObjectID = &req.ObjectID
		}
		entries, err := h.svc.Activity.GetRecentActivity(ctx, userID, opts)
		if err != nil {
			return nil, err
		}
		if entries == nil {
			entries = []activity.Entry{}
		}
		return entries, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
}

// inProject reports ErrObjectNotFound when projectID is given and objectID
// lives elsewhere.
func (h *Handler) inProject(ctx context.Context, projectID, objectID, userID string) error {
	if projectID == "" {
		return nil
	}
	obj, err := h.svc.Objects.Get(ctx, objectID, userID)
	if err != nil {
		return err
	}
	if obj.ProjectID != projectID {
		return object.ErrObjectNotFound
	}
	return nil
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 || string(params) == "null" {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return domain.NewValidationError("params", "%v", err)
	}
	return nil
}

func outlineResponse(projectID string, labeled []numbering.Labeled) OutlineResponse {
	if labeled == nil {
		labeled = []numbering.Labeled{}
	}
	return OutlineResponse{ProjectID: projectID, Objects: labeled}
}

func edgesOrEmpty(edges []dependency.Edge, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	if edges == nil {
		edges = []dependency.Edge{}
	}
	return edges, nil
}
