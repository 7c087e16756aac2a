package cli

import (
	"fmt"
	"os"

	"github.com/rpggio/plantree/internal/cli/formatter"
	"github.com/rpggio/plantree/internal/timeline"
	"github.com/spf13/cobra"
)

func newOutlineCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "outline PROJECT",
		Short: "Print the numbered outline of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, env, args[0])
			if err != nil {
				return err
			}
			items, err := env.app.Numbering.Outline(ctx, projectID, env.user)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No objects found.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderOutline(items))
			return nil
		},
	}
}

func newRenumberCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "renumber PROJECT",
		Short: "Close numbering gaps so every sibling group counts 1..n",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, env, args[0])
			if err != nil {
				return err
			}
			items, err := env.app.Numbering.RenumberObjects(ctx, projectID, env.user)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Renumbered %d objects\n", len(items))
			fmt.Fprint(out, formatter.RenderOutline(items))
			return nil
		},
	}
}

func newTimelineCmd(env *Env) *cobra.Command {
	var view, svgPath string
	var width int

	cmd := &cobra.Command{
		Use:   "timeline PROJECT",
		Short: "Draw the project timeline as a Gantt chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var mode timeline.ViewMode
			if view != "" {
				m, err := timeline.ParseViewMode(view)
				if err != nil {
					return err
				}
				mode = m
			}
			projectID, err := resolveProjectID(ctx, env, args[0])
			if err != nil {
				return err
			}
			layout, err := env.app.Timeline.Layout(ctx, projectID, env.user, mode)
			if err != nil {
				return err
			}

			if svgPath != "" {
				f, err := os.Create(svgPath)
				if err != nil {
					return fmt.Errorf("creating %s: %w", svgPath, err)
				}
				if err := timeline.WriteSVG(f, layout); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bars)\n", svgPath, len(layout.Bars))
				return nil
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderGantt(layout, width))
			return nil
		},
	}
	cmd.Flags().StringVar(&view, "view", "", "day, month or year (default from config)")
	cmd.Flags().StringVar(&svgPath, "svg", "", "Write an SVG rendering to this file instead")
	cmd.Flags().IntVar(&width, "width", 60, "Chart width in columns")

	return cmd
}
