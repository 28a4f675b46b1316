package main

import (
	"fmt"

	"github.com/georgemunganga/vendor-portal/internal/modules/vendor"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func requestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "request",
		Short: "Manage vendor onboarding requests",
	}
	cmd.AddCommand(requestCreateCmd())
	cmd.AddCommand(requestDispatchCmd())
	return cmd
}

func requestCreateCmd() *cobra.Command {
	var req vendor.CreateRequest
	var dispatch bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Open a new onboarding request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, e, err := portal(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			created, err := a.Vendors.Create(ctx, req)
			if err != nil {
				return err
			}
			if dispatch {
				if created, err = a.Vendors.Dispatch(ctx, created.ID); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Request %s (%s)\nLink: %s/vendor/%s\n",
				created.ID, created.Status, a.Config.PortalURL(), created.SecureToken)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.VendorName, "vendor-name", "", "vendor business name")
	cmd.Flags().StringVar(&req.ContactEmail, "email", "", "vendor contact email")
	cmd.Flags().StringVar(&req.ContactName, "contact-name", "", "vendor contact name")
	cmd.Flags().StringVar(&req.HandlerEmail, "handler-email", "", "email notified on submission")
	cmd.Flags().StringVar(&req.PaymentTerms, "payment-terms", "", "agreed payment terms")
	cmd.Flags().BoolVar(&req.IsSensitive, "sensitive", false, "mark the vendor as sensitive")
	cmd.Flags().BoolVar(&dispatch, "dispatch", false, "email the access link right away")
	cmd.MarkFlagRequired("vendor-name")
	cmd.MarkFlagRequired("email")

	return cmd
}

func requestDispatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dispatch [request-id]",
		Short: "Email the access link and hand the request to the vendor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid request id %q: %w", args[0], err)
			}

			ctx := cmd.Context()
			a, e, err := portal(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			req, err := a.Vendors.Dispatch(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Request %s is now %s\n", req.ID, req.Status)
			return nil
		},
	}
}
