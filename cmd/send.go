package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/notifier/internal/config"
	"github.com/shaharia-lab/notifier/internal/logger"
	"github.com/shaharia-lab/notifier/internal/service"
)

// NewSendCmd returns the "send" subcommand that dispatches one notification
// in-process and prints the stored record.
func NewSendCmd(cfg *config.AppConfig) *cobra.Command {
	var (
		req    service.CreateRequest
		output string
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a single notification",
		Long: `Validate, persist and deliver one notification, then print the final record.

Examples:
  notifier send --user u1 --to a@b.com --message "Your report is ready"
  notifier send --user u2 --channel WEBHOOK --to https://example.com/hook --message hi -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateFormat(output); err != nil {
				return err
			}
			ctx := commandContext(cmd)

			a, err := newApp(ctx, cfg, logger.NewConsoleLogger(cfg.SlogLevel()))
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			n, err := a.svc.CreateAndSend(ctx, req)
			if err != nil {
				return fmt.Errorf("send failed: %w", err)
			}
			return writeNotification(cmd.OutOrStdout(), output, n)
		},
	}

	cmd.Flags().StringVar(&req.UserID, "user", "", "User id the notification belongs to")
	cmd.Flags().StringVar(&req.Channel, "channel", "EMAIL", "Delivery channel (EMAIL or WEBHOOK)")
	cmd.Flags().StringVar(&req.Recipient, "to", "", "Email address or webhook URL")
	cmd.Flags().StringVar(&req.Subject, "subject", "", "Email subject (optional)")
	cmd.Flags().StringVar(&req.Message, "message", "", "Message body")
	cmd.Flags().StringVarP(&output, "output", "o", formatTable, "Output format: table, json or yaml")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("message")
	return cmd
}
