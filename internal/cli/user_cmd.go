package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUserCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	var name, email string
	add := &cobra.Command{
		Use:   "add",
		Short: "Register a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := env.app.Projects.RegisterUser(cmd.Context(), name, email)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered user %s (%s)\n", u.Name, u.ID)
			return nil
		},
	}
	add.Flags().StringVar(&name, "name", "", "Display name")
	add.Flags().StringVar(&email, "email", "", "Email address")
	_ = add.MarkFlagRequired("name")

	cmd.AddCommand(add)
	return cmd
}

func newKeyCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage API keys",
	}

	var description string
	issue := &cobra.Command{
		Use:   "issue USER",
		Short: "Issue a bearer token for a user",
		Long:  "Issue a bearer token for a user. The token is printed once and only its hash is stored.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := env.app.Projects.GetUser(ctx, args[0]); err != nil {
				return err
			}
			token, err := env.app.APIKeys.Issue(ctx, args[0], description)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	issue.Flags().StringVar(&description, "description", "", "What the key is for")

	cmd.AddCommand(issue)
	return cmd
}
