package cli

import (
	"context"
	"fmt"

	"github.com/rpggio/plantree/internal/cli/formatter"
	"github.com/rpggio/plantree/internal/domain/dependency"
	"github.com/spf13/cobra"
)

type edgeFunc func(ctx context.Context, req dependency.EdgeRequest) error

func newDepCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dep",
		Aliases: []string{"dependency"},
		Short:   "Manage dependencies between objects",
	}

	cmd.AddCommand(
		newDepEdgeCmd(env, "add FROM TO", "Make FROM a predecessor of TO", "Added",
			func(ctx context.Context, req dependency.EdgeRequest) error {
				_, err := env.app.Dependencies.CreateEdge(ctx, req)
				return err
			}),
		newDepEdgeCmd(env, "update FROM TO", "Change the type of the dependency FROM -> TO", "Updated",
			func(ctx context.Context, req dependency.EdgeRequest) error {
				_, err := env.app.Dependencies.UpdateEdgeType(ctx, req)
				return err
			}),
		newDepEdgeCmd(env, "remove FROM TO", "Delete the dependency FROM -> TO", "Removed",
			func(ctx context.Context, req dependency.EdgeRequest) error {
				return env.app.Dependencies.DeleteEdge(ctx, req)
			}),
		newDepListCmd(env),
	)

	return cmd
}

func newDepEdgeCmd(env *Env, use, short, verb string, apply edgeFunc) *cobra.Command {
	var projectRef, typ string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			fromID, err := resolveObjectID(ctx, env, projectRef, args[0])
			if err != nil {
				return err
			}
			toID, err := resolveObjectID(ctx, env, projectRef, args[1])
			if err != nil {
				return err
			}

			req := dependency.EdgeRequest{
				FromID:      fromID,
				ToID:        toID,
				Type:        dependency.Type(typ),
				RequesterID: env.user,
			}
			if err := apply(ctx, req); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s dependency %s → %s\n", verb, args[0], args[1])
			return nil
		},
	}
	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "Project to resolve outline labels in")
	cmd.Flags().StringVar(&typ, "type", "", "SS, FF, SF or FS (default FS)")

	return cmd
}

func newDepListCmd(env *Env) *cobra.Command {
	var objectRef string

	cmd := &cobra.Command{
		Use:   "list PROJECT",
		Short: "List a project's dependencies, or one object's with --object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, env, args[0])
			if err != nil {
				return err
			}

			var edges []dependency.Edge
			if objectRef != "" {
				id, err := resolveObjectID(ctx, env, projectID, objectRef)
				if err != nil {
					return err
				}
				edges, err = env.app.Dependencies.ListForObject(ctx, id, env.user)
				if err != nil {
					return err
				}
			} else {
				edges, err = env.app.Dependencies.ListForProject(ctx, projectID, env.user)
				if err != nil {
					return err
				}
				edges = predecessorRows(edges)
			}

			out := cmd.OutOrStdout()
			if len(edges) == 0 {
				fmt.Fprintln(out, "No dependencies found.")
				return nil
			}

			items, err := env.app.Numbering.Outline(ctx, projectID, env.user)
			if err != nil {
				return err
			}
			labels := make(map[string]string, len(items))
			for _, item := range items {
				labels[item.ID] = item.Label + " " + item.Name
			}

			rows := make([][]string, 0, len(edges))
			for _, e := range edges {
				link := e.Link()
				rows = append(rows, []string{labelOr(labels, link.FromID), labelOr(labels, link.ToID), string(link.Type)})
			}
			fmt.Fprint(out, formatter.RenderTable([]string{"FROM", "TO", "TYPE"}, rows))
			return nil
		},
	}
	cmd.Flags().StringVar(&objectRef, "object", "", "Only dependencies touching this object")

	return cmd
}

// predecessorRows keeps one row per logical edge.
func predecessorRows(edges []dependency.Edge) []dependency.Edge {
	out := edges[:0:0]
	for _, e := range edges {
		if e.Role == dependency.RolePredecessor {
			out = append(out, e)
		}
	}
	return out
}

func labelOr(labels map[string]string, id string) string {
	if l, ok := labels[id]; ok {
		return l
	}
	return id
}

func renderEdges(edges []dependency.Edge) string {
	rows := make([][]string, 0, len(edges))
	for _, e := range edges {
		related := e.RelatedObjectID
		if e.Related != nil {
			related = fmt.Sprintf("#%d %s", e.Related.Number, e.Related.Name)
		}
		rows = append(rows, []string{string(e.Role), related, string(e.Type)})
	}
	return formatter.RenderTable([]string{"ROLE", "RELATED", "TYPE"}, rows)
}
