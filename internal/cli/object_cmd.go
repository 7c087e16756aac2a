package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rpggio/plantree/internal/cli/formatter"
	"github.com/rpggio/plantree/internal/domain/object"
	"github.com/spf13/cobra"
)

func newObjectCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "object",
		Aliases: []string{"obj"},
		Short:   "Manage tasks and milestones",
	}

	cmd.AddCommand(
		newObjectAddCmd(env),
		newObjectListCmd(env),
		newObjectShowCmd(env),
		newObjectUpdateCmd(env),
		newObjectRemoveCmd(env),
	)

	return cmd
}

func newObjectAddCmd(env *Env) *cobra.Command {
	var (
		projectRef, parentRef, kind, name, description string
		start, end, status, priority                   string
		progress                                       int
		members                                        []string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an object, numbered after its siblings",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, env, projectRef)
			if err != nil {
				return err
			}
			startDate, err := parseDateFlag("start", start)
			if err != nil {
				return err
			}
			endDate, err := parseDateFlag("end", end)
			if err != nil {
				return err
			}

			req := object.CreateRequest{
				ProjectID:   projectID,
				Kind:        object.Kind(kind),
				Name:        name,
				Description: description,
				StartDate:   startDate,
				EndDate:     endDate,
				Status:      object.Status(status),
				Priority:    object.Priority(priority),
				Members:     members,
				CreatorID:   env.user,
			}
			if parentRef != "" {
				parentID, err := resolveObjectID(ctx, env, projectID, parentRef)
				if err != nil {
					return err
				}
				req.ParentID = &parentID
			}
			if cmd.Flags().Changed("progress") {
				req.Progress = &progress
			}

			obj, err := env.app.Objects.Create(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s %s\n", obj.Kind, formatter.Bold(obj.Name), formatter.Dim(obj.ID))
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "Project ID or name")
	cmd.Flags().StringVar(&parentRef, "parent", "", "Parent object ID or outline label")
	cmd.Flags().StringVar(&kind, "kind", string(object.KindTask), "task or milestone")
	cmd.Flags().StringVar(&name, "name", "", "Object name")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&status, "status", "", "open, in_progress, done or closed")
	cmd.Flags().StringVar(&priority, "priority", "", "lowest, low, medium, high or highest")
	cmd.Flags().IntVar(&progress, "progress", 0, "Progress percentage (0-100)")
	cmd.Flags().StringSliceVar(&members, "member", nil, "Assigned member user ID (repeatable)")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newObjectListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list PROJECT",
		Short: "List a project's objects in outline order",
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

			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No objects found.")
				return nil
			}

			rows := make([][]string, 0, len(items))
			for _, item := range items {
				rows = append(rows, []string{
					item.Label,
					strings.Repeat("  ", item.Depth) + item.Name,
					string(item.Kind),
					formatter.Status(item.Status),
					string(item.Priority),
					objectDates(item.Object),
					strconv.Itoa(item.Progress) + "%",
				})
			}
			fmt.Fprint(out, formatter.RenderTable(
				[]string{"#", "NAME", "KIND", "STATUS", "PRIORITY", "DATES", "PROGRESS"}, rows))
			return nil
		},
	}
}

func newObjectShowCmd(env *Env) *cobra.Command {
	var projectRef string

	cmd := &cobra.Command{
		Use:   "show OBJECT",
		Short: "Show object details and dependencies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveObjectID(ctx, env, projectRef, args[0])
			if err != nil {
				return err
			}
			obj, err := env.app.Objects.Get(ctx, id, env.user)
			if err != nil {
				return err
			}
			edges, err := env.app.Dependencies.ListForObject(ctx, id, env.user)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.Header(obj.Name))
			fmt.Fprintf(out, "ID:        %s\n", obj.ID)
			fmt.Fprintf(out, "Number:    %d\n", obj.Number)
			fmt.Fprintf(out, "Kind:      %s\n", obj.Kind)
			fmt.Fprintf(out, "Status:    %s\n", formatter.Status(obj.Status))
			fmt.Fprintf(out, "Priority:  %s\n", obj.Priority)
			fmt.Fprintf(out, "Dates:     %s\n", objectDates(*obj))
			fmt.Fprintf(out, "Progress:  %s\n", formatter.RenderProgress(obj.Progress, 20))
			fmt.Fprintf(out, "Version:   %d\n", obj.Version)
			if len(obj.Members) > 0 {
				fmt.Fprintf(out, "Members:   %s\n", strings.Join(obj.Members, ", "))
			}
			if obj.Description != "" {
				fmt.Fprintf(out, "\n%s\n", obj.Description)
			}
			if len(edges) > 0 {
				fmt.Fprintln(out)
				fmt.Fprint(out, renderEdges(edges))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "Project to resolve outline labels in")

	return cmd
}

func newObjectUpdateCmd(env *Env) *cobra.Command {
	var (
		projectRef, parentRef, kind, name, description string
		start, end, status, priority                   string
		progress, number                               int
		version                                        int64
		toRoot                                         bool
		members                                        []string
	)

	cmd := &cobra.Command{
		Use:   "update OBJECT",
		Short: "Update fields of an object",
		Long: `Update fields of an object. Only flags that are set change the object.
Without --version the current version is read first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveObjectID(ctx, env, projectRef, args[0])
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			req := object.UpdateRequest{ID: id, RequesterID: env.user, Version: version}
			if !flags.Changed("version") {
				current, err := env.app.Objects.Get(ctx, id, env.user)
				if err != nil {
					return err
				}
				req.Version = current.Version
			}

			if flags.Changed("name") {
				req.Name = &name
			}
			if flags.Changed("description") {
				req.Description = &description
			}
			if flags.Changed("kind") {
				k := object.Kind(kind)
				req.Kind = &k
			}
			if flags.Changed("start") {
				if start == "" {
					req.ClearStartDate = true
				} else if req.StartDate, err = parseDateFlag("start", start); err != nil {
					return err
				}
			}
			if flags.Changed("end") {
				if end == "" {
					req.ClearEndDate = true
				} else if req.EndDate, err = parseDateFlag("end", end); err != nil {
					return err
				}
			}
			if flags.Changed("status") {
				s := object.Status(status)
				req.Status = &s
			}
			if flags.Changed("priority") {
				p := object.Priority(priority)
				req.Priority = &p
			}
			if flags.Changed("progress") {
				req.Progress = &progress
			}
			if flags.Changed("number") {
				req.Number = &number
			}
			if flags.Changed("member") {
				req.Members = members
			}
			if toRoot {
				req.MoveToRoot = true
			} else if parentRef != "" {
				parentID, err := resolveObjectID(ctx, env, projectRef, parentRef)
				if err != nil {
					return err
				}
				req.ParentID = &parentID
			}

			obj, err := env.app.Objects.Update(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s (version %d)\n", formatter.Bold(obj.Name), obj.Version)
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "Project to resolve outline labels in")
	cmd.Flags().Int64Var(&version, "version", 0, "Expected current version")
	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&kind, "kind", "", "task or milestone")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD, empty clears)")
	cmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD, empty clears)")
	cmd.Flags().StringVar(&status, "status", "", "open, in_progress, done or closed")
	cmd.Flags().StringVar(&priority, "priority", "", "lowest, low, medium, high or highest")
	cmd.Flags().IntVar(&progress, "progress", 0, "Progress percentage (0-100)")
	cmd.Flags().IntVar(&number, "number", 0, "Position among siblings")
	cmd.Flags().StringVar(&parentRef, "parent", "", "Move under this parent")
	cmd.Flags().BoolVar(&toRoot, "root", false, "Move to the top level")
	cmd.Flags().StringSliceVar(&members, "member", nil, "Replace assigned members")
	cmd.MarkFlagsMutuallyExclusive("parent", "root")

	return cmd
}

func newObjectRemoveCmd(env *Env) *cobra.Command {
	var projectRef string

	cmd := &cobra.Command{
		Use:   "remove OBJECT",
		Short: "Delete an object; its children move to the top level",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveObjectID(ctx, env, projectRef, args[0])
			if err != nil {
				return err
			}
			if err := env.app.Objects.Delete(ctx, id, env.user); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			return nil
		},
	}
	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "Project to resolve outline labels in")

	return cmd
}
