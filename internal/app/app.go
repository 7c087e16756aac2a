// Package app wires the SQLite repositories into the domain services shared
// by the server, the CLI and the functional test server.
package app

import (
	"io"
	"log/slog"

	"github.com/rpggio/plantree/internal/domain/activity"
	"github.com/rpggio/plantree/internal/domain/dependency"
	"github.com/rpggio/plantree/internal/domain/object"
	"github.com/rpggio/plantree/internal/domain/project"
	"github.com/rpggio/plantree/internal/numbering"
	"github.com/rpggio/plantree/internal/sqlite"
	"github.com/rpggio/plantree/internal/timeline"
)

// App holds every domain service built over one database.
type App struct {
	DB           *sqlite.DB
	Projects     *project.Service
	Objects      *object.Service
	Dependencies *dependency.Service
	Numbering    *numbering.Service
	Timeline     *timeline.Service
	Activity     *activity.Service
	APIKeys      *sqlite.APIKeyRepository
	Users        *sqlite.ProjectRepository
}

// New builds the services over db. The database must already be migrated.
func New(db *sqlite.DB, timelineCfg timeline.Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	projectRepo := sqlite.NewProjectRepository(db)
	objectRepo := sqlite.NewObjectRepository(db)
	edgeRepo := sqlite.NewEdgeRepository(db)
	activityRepo := sqlite.NewActivityRepository(db)
	searchRepo := sqlite.NewSearchRepository(db)

	projects := project.NewService(projectRepo, projectRepo, logger.With("component", "project"))
	renumber := numbering.NewService(objectRepo, projects, activityRepo, logger.With("component", "numbering"))

	return &App{
		DB:           db,
		Projects:     projects,
		Objects:      object.NewService(objectRepo, searchRepo, projects, renumber, activityRepo, logger.With("component", "object")),
		Dependencies: dependency.NewService(edgeRepo, objectRepo, projects, activityRepo, logger.With("component", "dependency")),
		Numbering:    renumber,
		Timeline:     timeline.NewService(objectRepo, edgeRepo, projects, timelineCfg, logger.With("component", "timeline")),
		Activity:     activity.NewService(activityRepo, projects, logger.With("component", "activity")),
		APIKeys:      sqlite.NewAPIKeyRepository(db),
		Users:        projectRepo,
	}
}

// Open opens and migrates the database at path, then wires the services.
func Open(path string, timelineCfg timeline.Config, logger *slog.Logger) (*App, error) {
	db, err := sqlite.New(path)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, err
	}
	return New(db, timelineCfg, logger), nil
}

// Close releases the database.
func (a *App) Close() error {
	return a.DB.Close()
}
