package main

import (
	"fmt"

	"github.com/georgemunganga/vendor-portal/internal/modules/user"
	"github.com/spf13/cobra"
)

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage administrative accounts",
	}
	cmd.AddCommand(adminCreateCmd())
	return cmd
}

func adminCreateCmd() *cobra.Command {
	var email, password, name, role string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an admin or handler account",
		Example: `  portalctl admin create --email ops@portal.example.com --password 'long-enough-secret' --name "Dana Levi"
  portalctl admin create --email handler@portal.example.com --password '...' --role handler`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, e, err := portal(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			u, err := a.Users.RegisterUser(ctx, email, password, name, user.Role(role))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s (%s)\n", u.Role, u.Email, u.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "password, at least 10 characters")
	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&role, "role", string(user.RoleAdmin), "admin or handler")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")

	return cmd
}
