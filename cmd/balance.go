package cmd

import (
	"context"
	"fmt"

	"purchase-manager/core/kvstore"

	"github.com/spf13/cobra"
)

// balanceCmd prints the persisted consumable balance.
var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print the persisted consumable balance",
	Long:  `Reads the consumable balance from the configured store backend (database or redis).`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		if rt.cfg.Store.Backend == kvstore.BackendDatabase {
			if err := rt.connectDatabase(); err != nil {
				return err
			}
		}
		balances, err := rt.balanceStore()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		balance, err := balances.Get(ctx, rt.cfg.Store.BalanceKey)
		if err != nil {
			return fmt.Errorf("failed to read balance: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", rt.cfg.Store.BalanceKey, balance)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(balanceCmd)
}
