// Package cli implements the plantree command line over a local database.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rpggio/plantree/internal/app"
	"github.com/rpggio/plantree/internal/cli/formatter"
	"github.com/rpggio/plantree/internal/domain/project"
	"github.com/rpggio/plantree/internal/timeline"
	"github.com/spf13/cobra"
)

// Options holds the defaults the root command starts from.
type Options struct {
	DBPath   string
	User     string
	Color    bool
	Timeline timeline.Config
	Logger   *slog.Logger
}

// Env is the state shared by every command of one invocation. The database
// is opened lazily before the first command runs.
type Env struct {
	opts    Options
	app     *app.App
	user    string
	dbPath  string
	noColor bool
}

// NewEnv returns an Env that opens the database described by opts on demand.
func NewEnv(opts Options) *Env {
	if opts.Timeline == (timeline.Config{}) {
		opts.Timeline = timeline.DefaultConfig()
	}
	return &Env{opts: opts}
}

// Close releases the database, if it was opened.
func (e *Env) Close() error {
	if e.app == nil {
		return nil
	}
	err := e.app.Close()
	e.app = nil
	return err
}

func (e *Env) open(ctx context.Context) error {
	formatter.SetColor(e.opts.Color && !e.noColor)
	if e.app != nil {
		return nil
	}
	if strings.TrimSpace(e.user) == "" {
		return fmt.Errorf("--user is required")
	}

	a, err := app.Open(e.dbPath, e.opts.Timeline, e.opts.Logger)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	if err := a.Users.EnsureUser(ctx, &project.User{ID: e.user, Name: e.user, CreatedAt: time.Now().UTC()}); err != nil {
		a.Close()
		return fmt.Errorf("registering user %s: %w", e.user, err)
	}
	e.app = a
	return nil
}

// NewRootCmd creates the top-level "plantree" command and registers all
// subcommands against env.
func NewRootCmd(env *Env) *cobra.Command {
	root := &cobra.Command{
		Use:           "plantree",
		Short:         "Hierarchical project planner with numbered outlines and timelines",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return env.open(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&env.dbPath, "db", env.opts.DBPath, "SQLite database path")
	root.PersistentFlags().StringVar(&env.user, "user", env.opts.User, "Acting user ID")
	root.PersistentFlags().BoolVar(&env.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(
		newProjectCmd(env),
		newUserCmd(env),
		newKeyCmd(env),
		newObjectCmd(env),
		newOutlineCmd(env),
		newRenumberCmd(env),
		newDepCmd(env),
		newTimelineCmd(env),
	)

	return root
}

// Execute runs the CLI with args and releases the database afterwards.
func Execute(ctx context.Context, opts Options, args []string) error {
	env := NewEnv(opts)
	defer env.Close()

	root := NewRootCmd(env)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
