package cmd

import (
	"fmt"
	"os"

	"purchase-manager/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "purchase-manager",
	Short: "Purchase Manager Service",
	Long: `Purchase Manager reconciles in-app purchase transactions into entitlements:
a consumable balance, owned non-consumables and a subscription plan.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Debug level for ISO8601 timestamps; console encoding for humans.
		l, logErr := logger.New(&logger.Config{Level: "debug", Format: "console"})
		if logErr != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		l.Error("command failed", zap.Error(err))
		_ = l.Sync()
		os.Exit(1)
	}
}
