package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rpggio/plantree/internal/mcp"
	"github.com/rpggio/plantree/internal/timeline"
)

// maxBodyBytes bounds REST request bodies.
const maxBodyBytes = 1 << 20

func (s *Server) routeAPI(r chi.Router) {
	r.Post("/projects", s.rest("create_project", http.StatusCreated))
	r.Get("/projects", s.rest("list_projects", http.StatusOK))

	r.Route("/projects/{projectID}", func(r chi.Router) {
		r.Get("/", s.rest("get_project", http.StatusOK, pathParam("projectID", "id")))
		r.Post("/members", s.rest("add_project_member", http.StatusCreated, pathParam("projectID", "project_id")))
		r.Delete("/members/{userID}", s.rest("remove_project_member", http.StatusOK,
			pathParam("projectID", "project_id"), pathParam("userID", "user_id")))

		r.Post("/objects", s.rest("create_object", http.StatusCreated, pathParam("projectID", "project_id")))
		r.Get("/objects", s.rest("list_objects", http.StatusOK, pathParam("projectID", "project_id")))
		r.Get("/objects/{objectID}", s.rest("get_object", http.StatusOK,
			pathParam("projectID", "project_id"), pathParam("objectID", "id")))
		r.Patch("/objects/{objectID}", s.rest("update_object", http.StatusOK,
			pathParam("projectID", "project_id"), pathParam("objectID", "id")))
		r.Delete("/objects/{objectID}", s.rest("delete_object", http.StatusOK,
			pathParam("projectID", "project_id"), pathParam("objectID", "id")))
		r.Get("/objects/{objectID}/dependencies", s.rest("list_object_dependencies", http.StatusOK,
			pathParam("projectID", "project_id"), pathParam("objectID", "object_id")))

		r.Get("/outline", s.rest("get_outline", http.StatusOK, pathParam("projectID", "project_id")))
		r.Post("/renumber", s.rest("renumber_objects", http.StatusOK, pathParam("projectID", "project_id")))
		r.Get("/dependencies", s.rest("list_project_dependencies", http.StatusOK, pathParam("projectID", "project_id")))

		r.Get("/timeline", s.rest("get_timeline", http.StatusOK,
			pathParam("projectID", "project_id"), queryParam("view", "view")))
		r.Get("/timeline.svg", s.handleTimelineSVG)
		r.Get("/search", s.rest("search_objects", http.StatusOK, pathParam("projectID", "project_id"),
			queryParam("q", "query"), intQueryParam("limit"), intQueryParam("offset")))
		r.Get("/activity", s.rest("get_recent_activity", http.StatusOK, pathParam("projectID", "project_id"),
			queryParam("object_id", "object_id"), listQueryParam("type", "types"),
			intQueryParam("limit"), intQueryParam("offset")))
	})

	r.Post("/dependencies", s.rest("create_dependency", http.StatusCreated))
	r.Patch("/dependencies", s.rest("update_dependency", http.StatusOK))
	r.Delete("/dependencies", s.rest("delete_dependency", http.StatusOK))
}

// paramFunc copies one request value into the operation parameters.
type paramFunc func(r *http.Request, params map[string]any) error

func pathParam(name, key string) paramFunc {
	return func(r *http.Request, params map[string]any) error {
		params[key] = chi.URLParam(r, name)
		return nil
	}
}

func queryParam(name, key string) paramFunc {
	return func(r *http.Request, params map[string]any) error {
		if v := r.URL.Query().Get(name); v != "" {
			params[key] = v
		}
		return nil
	}
}

func listQueryParam(name, key string) paramFunc {
	return func(r *http.Request, params map[string]any) error {
		if vs := r.URL.Query()[name]; len(vs) > 0 {
			params[key] = vs
		}
		return nil
	}
}

func intQueryParam(name string) paramFunc {
	return func(r *http.Request, params map[string]any) error {
		v := r.URL.Query().Get(name)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("query parameter %s must be a non-negative integer", name)
		}
		params[name] = n
		return nil
	}
}

// rest adapts a named operation to an HTTP endpoint. The JSON body, when
// present, supplies the parameters; path and query values override it.
func (s *Server) rest(method string, status int, extract ...paramFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := s.call(r, method, extract...)
		if err != nil {
			s.writeError(w, method, err)
			return
		}
		writeJSON(w, status, result)
	}
}

func (s *Server) handleTimelineSVG(w http.ResponseWriter, r *http.Request) {
	result, err := s.call(r, "get_timeline", pathParam("projectID", "project_id"), queryParam("view", "view"))
	if err != nil {
		s.writeError(w, "get_timeline", err)
		return
	}
	layout, ok := result.(*timeline.Layout)
	if !ok {
		s.writeError(w, "get_timeline", fmt.Errorf("unexpected timeline result %T", result))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	if err := timeline.WriteSVG(w, layout); err != nil {
		s.logger.Error("writing timeline svg", "error", err)
	}
}

func (s *Server) call(r *http.Request, method string, extract ...paramFunc) (any, error) {
	userID, ok := UserFromContext(r.Context())
	if !ok || userID == "" {
		return nil, ErrUnauthorized
	}

	params := map[string]any{}
	if r.Body != nil && r.ContentLength != 0 {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			return nil, badRequest("reading body: %v", err)
		}
		if len(body) > 0 {
			if err := json.Unmarshal(body, &params); err != nil {
				return nil, badRequest("body must be a JSON object")
			}
		}
	}
	for _, fn := range extract {
		if err := fn(r, params); err != nil {
			return nil, badRequest("%v", err)
		}
	}

	raw, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	return s.handler.Handle(r.Context(), userID, method, raw)
}

type errorBody struct {
	Error *mcp.APIError `json:"error"`
}

func badRequest(format string, args ...any) *mcp.APIError {
	return &mcp.APIError{Code: mcp.CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func (s *Server) writeError(w http.ResponseWriter, method string, err error) {
	if errors.Is(err, ErrUnauthorized) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var apiErr *mcp.APIError
	if !errors.As(err, &apiErr) {
		s.logger.Error("request failed", "method", method, "error", err)
		apiErr = &mcp.APIError{Code: "INTERNAL_ERROR", Message: "internal error"}
	}
	writeJSON(w, httpStatus(apiErr.Code), errorBody{Error: apiErr})
}

// httpStatus maps an API error code to an HTTP status.
func httpStatus(code string) int {
	switch code {
	case mcp.CodeValidation:
		return http.StatusBadRequest
	case mcp.CodeAccessDenied:
		return http.StatusForbidden
	case mcp.CodeNotFound, mcp.CodeUnknownMethod:
		return http.StatusNotFound
	case mcp.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
