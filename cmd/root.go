package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/notifier/internal/config"
)

// NewRootCmd builds the command tree for cfg.
func NewRootCmd(cfg *config.AppConfig) *cobra.Command {
	root := &cobra.Command{
		Use:           "notifier",
		Short:         "Notification dispatch service",
		Long:          "Send notifications over email or webhook and keep a queryable history of every delivery.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		NewServeCmd(cfg),
		NewSendCmd(cfg),
		NewGetCmd(cfg),
		NewListCmd(cfg),
		NewVersionCmd(),
	)
	return root
}

// Execute loads configuration and runs the root command.
func Execute() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := NewRootCmd(cfg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
