package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/rpggio/plantree/internal/cli"
	"github.com/rpggio/plantree/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	user := os.Getenv("PLANTREE_USER")
	if user == "" {
		user = cfg.Auth.DefaultUser
	}

	// Color only when writing to a terminal and NO_COLOR is unset.
	fd := os.Stdout.Fd()
	color := (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) && os.Getenv("NO_COLOR") == ""

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.Execute(ctx, cli.Options{
		DBPath:   cfg.DB.Path,
		User:     user,
		Color:    color,
		Timeline: cfg.Timeline.Surface(),
	}, os.Args[1:])
}
