package cli

import (
	"fmt"
	"strconv"

	"github.com/rpggio/plantree/internal/cli/formatter"
	"github.com/rpggio/plantree/internal/domain/project"
	"github.com/spf13/cobra"
)

func newProjectCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	cmd.AddCommand(
		newProjectCreateCmd(env),
		newProjectListCmd(env),
		newProjectShowCmd(env),
		newProjectMemberCmd(env),
	)

	return cmd
}

func newProjectCreateCmd(env *Env) *cobra.Command {
	var id, name, description, start, end string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new project owned by the acting user",
		RunE: func(cmd *cobra.Command, args []string) error {
			startDate, err := parseDateFlag("start", start)
			if err != nil {
				return err
			}
			endDate, err := parseDateFlag("end", end)
			if err != nil {
				return err
			}

			p, err := env.app.Projects.Create(cmd.Context(), env.user, project.CreateRequest{
				ID:          id,
				Name:        name,
				Description: description,
				StartDate:   startDate,
				EndDate:     endDate,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created project %s %s\n", formatter.Bold(p.Name), formatter.Dim(p.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Project ID (generated when empty)")
	cmd.Flags().StringVar(&name, "name", "", "Project name")
	cmd.Flags().StringVar(&description, "description", "", "Project description")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newProjectListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects the acting user owns or belongs to",
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := env.app.Projects.List(cmd.Context(), env.user)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(projects) == 0 {
				fmt.Fprintln(out, "No projects found.")
				return nil
			}

			rows := make([][]string, 0, len(projects))
			for _, p := range projects {
				rows = append(rows, []string{
					p.ID,
					p.Name,
					p.OwnerID,
					strconv.Itoa(p.ObjectCount),
					strconv.Itoa(p.OpenObjects),
					strconv.Itoa(p.MemberCount),
				})
			}
			fmt.Fprint(out, formatter.RenderTable(
				[]string{"ID", "NAME", "OWNER", "OBJECTS", "OPEN", "MEMBERS"}, rows))
			return nil
		},
	}
}

func newProjectShowCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "show PROJECT",
		Short: "Show project details and members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, env, args[0])
			if err != nil {
				return err
			}
			p, err := env.app.Projects.Get(ctx, projectID, env.user)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.Header(p.Name))
			fmt.Fprintf(out, "ID:     %s\n", p.ID)
			fmt.Fprintf(out, "Owner:  %s\n", p.OwnerID)
			fmt.Fprintf(out, "Dates:  %s → %s\n", formatDate(p.StartDate), formatDate(p.EndDate))
			if p.Description != "" {
				fmt.Fprintf(out, "\n%s\n", p.Description)
			}

			if len(p.Members) > 0 {
				rows := make([][]string, 0, len(p.Members))
				for _, m := range p.Members {
					rows = append(rows, []string{m.UserID, string(m.Role), m.AddedAt.Format(formatter.DateLayout)})
				}
				fmt.Fprintln(out)
				fmt.Fprint(out, formatter.RenderTable([]string{"MEMBER", "ROLE", "ADDED"}, rows))
			}
			return nil
		},
	}
}

func newProjectMemberCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage project members",
	}

	var role string
	add := &cobra.Command{
		Use:   "add PROJECT USER",
		Short: "Add a user to a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, env, args[0])
			if err != nil {
				return err
			}
			m, err := env.app.Projects.AddMember(ctx, projectID, env.user, project.AddMemberRequest{
				UserID: args[1],
				Role:   project.Role(role),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s as %s\n", m.UserID, m.Role)
			return nil
		},
	}
	add.Flags().StringVar(&role, "role", string(project.RoleDeveloper), "Member role (manager, developer, designer, tester, analyst)")

	remove := &cobra.Command{
		Use:   "remove PROJECT USER",
		Short: "Remove a user from a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, env, args[0])
			if err != nil {
				return err
			}
			if err := env.app.Projects.RemoveMember(ctx, projectID, env.user, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[1])
			return nil
		},
	}

	cmd.AddCommand(add, remove)
	return cmd
}
