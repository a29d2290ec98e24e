// Command blogctl runs operator tasks against the blog database.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/inkwell/blog/internal/app"
	"github.com/inkwell/blog/internal/app/service/account"
	"github.com/inkwell/blog/internal/app/service/engagement"
	"github.com/inkwell/blog/internal/app/service/newsletter"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "blogctl",
		Short:        "Operator commands for the blog backend",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(createSuperuserCmd())
	rootCmd.AddCommand(sendNewsletterCmd())
	rootCmd.AddCommand(refreshTrendingCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run starts the core app, populating targets, calls fn and stops the app.
// Starting runs the schema migration.
func run(ctx context.Context, fn func(ctx context.Context) error, targets ...any) error {
	a := fx.New(app.Core, fx.NopLogger, fx.Populate(targets...))
	if err := a.Err(); err != nil {
		return err
	}
	startCtx, cancel := context.WithTimeout(ctx, app.DefaultStartTimeout)
	defer cancel()
	if err := a.Start(startCtx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	runErr := fn(ctx)

	stopCtx, cancel2 := context.WithTimeout(context.Background(), app.DefaultStopTimeout)
	defer cancel2()
	if err := a.Stop(stopCtx); err != nil && runErr == nil {
		return fmt.Errorf("stop: %w", err)
	}
	return runErr
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), func(context.Context) error {
				fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
				return nil
			})
		},
	}
}

func createSuperuserCmd() *cobra.Command {
	var email, username, password string
	cmd := &cobra.Command{
		Use:   "create-superuser",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("BLOGCTL_PASSWORD")
			}
			var svc *account.Service
			return run(cmd.Context(), func(ctx context.Context) error {
				u, err := svc.CreateSuperuser(ctx, email, username, password)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created superuser %s (%s)\n", u.Username, u.ID)
				return nil
			}, &svc)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&username, "username", "", "username")
	cmd.Flags().StringVar(&password, "password", "", "password (defaults to $BLOGCTL_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func sendNewsletterCmd() *cobra.Command {
	var req newsletter.SendRequest
	cmd := &cobra.Command{
		Use:   "send-newsletter",
		Short: "Mail a newsletter to every subscriber",
		RunE: func(cmd *cobra.Command, args []string) error {
			var svc *newsletter.Service
			return run(cmd.Context(), func(ctx context.Context) error {
				n, err := svc.Broadcast(ctx, &req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "sent to %d subscribers\n", n)
				return nil
			}, &svc)
		},
	}
	cmd.Flags().StringVar(&req.Subject, "subject", "", "subject line")
	cmd.Flags().StringVar(&req.Message, "message", "", "message body")
	_ = cmd.MarkFlagRequired("subject")
	_ = cmd.MarkFlagRequired("message")
	return cmd
}

func refreshTrendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh-trending",
		Short: "Recompute post engagement scores",
		RunE: func(cmd *cobra.Command, args []string) error {
			var svc *engagement.Service
			return run(cmd.Context(), func(ctx context.Context) error {
				n, err := svc.Refresh(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "scored %d posts\n", n)
				return nil
			}, &svc)
		},
	}
}
