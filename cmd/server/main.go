package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rpggio/plantree/internal/app"
	"github.com/rpggio/plantree/internal/config"
	"github.com/rpggio/plantree/internal/domain/project"
	"github.com/rpggio/plantree/internal/mcp"
	"github.com/rpggio/plantree/internal/observability"
	"github.com/rpggio/plantree/internal/transport"
	"golang.org/x/sync/errgroup"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == config.TransportStdio {
		logWriter = os.Stderr
	}
	if cfg.Log.Path != "" {
		fileWriter, file, err := newLogFileWriter(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer file.Close()
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	if cfg.Tracing.Enabled {
		// Spans go to stderr so they never mix with stdio JSON-RPC.
		shutdown, err := observability.SetupTracing(os.Stderr)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				logger.Error("tracer shutdown", "error", err)
			}
		}()
	}

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		return fmt.Errorf("preparing database path: %w", err)
	}
	a, err := app.Open(cfg.DB.Path, cfg.Timeline.Surface(), logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if !cfg.Auth.Enabled || cfg.Transport.Mode == config.TransportStdio {
		defaultUser := &project.User{ID: cfg.Auth.DefaultUser, Name: cfg.Auth.DefaultUser, CreatedAt: time.Now().UTC()}
		if err := a.Users.EnsureUser(context.Background(), defaultUser); err != nil {
			return fmt.Errorf("registering default user: %w", err)
		}
	}

	services := mcp.Services{
		Projects:     a.Projects,
		Objects:      a.Objects,
		Numbering:    a.Numbering,
		Dependencies: a.Dependencies,
		Timeline:     a.Timeline,
		Activity:     a.Activity,
	}
	mcpServer := mcp.NewServer(mcp.Config{
		Services:      services,
		Resolver:      a.APIKeys,
		AuthEnabled:   cfg.Auth.Enabled,
		DefaultUser:   cfg.Auth.DefaultUser,
		TransportMode: cfg.Transport.Mode,
		Version:       version,
		Logger:        logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Transport.Mode == config.TransportStdio {
		logger.Info("starting stdio transport", "auth", "disabled", "user", cfg.Auth.DefaultUser)
		// Run blocks until stdin closes or ctx is canceled.
		return mcpServer.Run(ctx, &sdkmcp.StdioTransport{})
	}
	return runHTTP(ctx, cfg, logger, a, mcp.NewHandler(services), mcpServer)
}

func runHTTP(ctx context.Context, cfg config.Config, logger *slog.Logger, a *app.App, handler *mcp.Handler, mcpServer *sdkmcp.Server) error {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			SessionTimeout: 30 * time.Minute,
		},
	)

	opts := transport.Options{
		MCP:    mcpHandler,
		Logger: logger,
	}
	if cfg.Auth.Enabled {
		opts.Auth = transport.AuthMiddleware(a.APIKeys)
	} else {
		opts.Auth = transport.DefaultUserMiddleware(cfg.Auth.DefaultUser)
	}
	if cfg.Metrics.Enabled {
		opts.Metrics = promhttp.Handler()
		opts.MetricsPath = cfg.Metrics.Path
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           transport.NewServer(handler, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", "addr", addr, "auth", cfg.Auth.Enabled, "metrics", cfg.Metrics.Enabled)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return waitForShutdown(gctx, logger, httpServer)
	})
	return g.Wait()
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(ctx context.Context, logger *slog.Logger, server *http.Server) error {
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

const (
	maxLogSizeBytes  = 6 * 1024 * 1024
	keepLogSizeBytes = 5 * 1024 * 1024
)

// logFileWriter appends to a log file and trims it back to its newest
// keepLogSizeBytes once it grows past maxLogSizeBytes.
type logFileWriter struct {
	mu   sync.Mutex
	file *os.File
}

func newLogFileWriter(path string) (*logFileWriter, *os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, err
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	w := &logFileWriter{file: file}
	if err := w.trim(); err != nil {
		file.Close()
		return nil, nil, err
	}
	return w, file, nil
}

func (w *logFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := w.file.Write(p)
	if err != nil {
		return n, err
	}
	return n, w.trim()
}

func (w *logFileWriter) trim() error {
	info, err := w.file.Stat()
	if err != nil {
		return err
	}
	size := info.Size()
	if size <= maxLogSizeBytes {
		return nil
	}

	tail := make([]byte, keepLogSizeBytes)
	n, err := w.file.ReadAt(tail, size-keepLogSizeBytes)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if err := w.file.Truncate(0); err != nil {
		return err
	}
	// O_APPEND writes land at the new end regardless of the offset.
	_, err = w.file.Write(tail[:n])
	return err
}
