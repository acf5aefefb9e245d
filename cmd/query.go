package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/notifier/internal/config"
	"github.com/shaharia-lab/notifier/internal/logger"
	"github.com/shaharia-lab/notifier/internal/notification"
)

// NewGetCmd returns the "get" subcommand that prints one notification.
func NewGetCmd(cfg *config.AppConfig) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a notification by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(output); err != nil {
				return err
			}
			ctx := commandContext(cmd)

			a, err := newApp(ctx, cfg, logger.NewConsoleLogger(cfg.SlogLevel()))
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			n, err := a.svc.GetByID(ctx, args[0])
			if err != nil {
				return err
			}
			return writeNotification(cmd.OutOrStdout(), output, n)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", formatTable, "Output format: table, json or yaml")
	return cmd
}

// NewListCmd returns the "list" subcommand that prints notification history.
func NewListCmd(cfg *config.AppConfig) *cobra.Command {
	var (
		userID string
		status string
		output string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notifications, most recent first",
		Long: `List stored notifications, most recent first.

Examples:
  notifier list
  notifier list --user u1
  notifier list --status FAILED -o yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateFormat(output); err != nil {
				return err
			}
			if userID != "" && status != "" {
				return fmt.Errorf("--user and --status cannot be combined")
			}
			ctx := commandContext(cmd)

			a, err := newApp(ctx, cfg, logger.NewConsoleLogger(cfg.SlogLevel()))
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			var list []notification.Notification
			switch {
			case userID != "":
				list, err = a.svc.ListByUser(ctx, userID)
			case status != "":
				st, perr := notification.ParseStatus(status)
				if perr != nil {
					return perr
				}
				list, err = a.svc.ListByStatus(ctx, st)
			default:
				list, err = a.svc.ListAll(ctx)
			}
			if err != nil {
				return err
			}
			return writeNotifications(cmd.OutOrStdout(), output, list)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "Only show notifications of this user")
	cmd.Flags().StringVar(&status, "status", "", "Only show notifications in this status (PENDING, SENT, FAILED)")
	cmd.Flags().StringVarP(&output, "output", "o", formatTable, "Output format: table, json or yaml")
	return cmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
