package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rpggio/plantree/internal/mcp"
)

// Dispatcher runs a named operation on behalf of a user.
type Dispatcher interface {
	Handle(ctx context.Context, userID, method string, params json.RawMessage) (any, error)
}

// Options configures the router.
type Options struct {
	// Auth authenticates /api and /rpc. Nil leaves them open, which only
	// makes sense in tests.
	Auth func(http.Handler) http.Handler
	// MCP is mounted at /mcp when set. It authenticates on its own.
	MCP http.Handler
	// Metrics is mounted at MetricsPath when set.
	Metrics     http.Handler
	MetricsPath string
	Logger      *slog.Logger
}

// Server wires HTTP handlers.
type Server struct {
	handler Dispatcher
	logger  *slog.Logger
}

// NewServer creates an HTTP server router with middleware.
func NewServer(handler Dispatcher, opts Options) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	srv := &Server{handler: handler, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", srv.handleHealth)
	if opts.Metrics != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, opts.Metrics)
	}
	if opts.MCP != nil {
		r.Handle("/mcp", opts.MCP)
	}

	r.Group(func(r chi.Router) {
		if opts.Auth != nil {
			r.Use(opts.Auth)
		}
		r.Post("/rpc", srv.handleRPC)
		r.Route("/api", srv.routeAPI)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	req, err := ParseRequest(r.Body)
	if err != nil {
		if errors.Is(err, errParse) {
			WriteError(w, nil, ErrParseCode, "parse error", nil)
			return
		}
		WriteError(w, nil, ErrInvalidReq, "invalid request", nil)
		return
	}

	userID, ok := UserFromContext(r.Context())
	if !ok || userID == "" {
		http.Error(w, "missing user", http.StatusUnauthorized)
		return
	}

	result, err := s.handler.Handle(r.Context(), userID, req.Method, req.Params)
	if err != nil {
		var apiErr *mcp.APIError
		if errors.As(err, &apiErr) {
			WriteError(w, req.ID, rpcCode(apiErr.Code), apiErr.Message, apiErr)
			return
		}
		s.logger.Error("rpc failed", "method", req.Method, "error", err)
		WriteError(w, req.ID, ErrInternal, "internal error", nil)
		return
	}

	WriteResult(w, req.ID, result)
}
