package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"purchase-manager/core/platform"
	"purchase-manager/core/reconcile"
	"purchase-manager/core/verifier"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for reconcile balance command
	syncBalance   bool
	dryRunBalance bool
	yesConfirm    bool
)

// reconcileCmd is the parent command for all reconcile operations.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile persisted state against the transaction history",
	Long: `Replays the transaction journal to detect drift in persisted state.
Supports an optional sync operation that repairs the drift.`,
}

// balanceReconcileCmd audits the consumable balance with optional sync.
var balanceReconcileCmd = &cobra.Command{
	Use:   "balance",
	Short: "Reconcile the consumable balance (report + optionally sync)",
	Long: `Replays every journaled consumable transaction to compute the expected
balance and compares it with the persisted one.

Examples:
  # Report only (no changes)
  purchase-manager reconcile balance

  # Preview the repair without applying it
  purchase-manager reconcile balance --sync --dry-run

  # Overwrite the persisted balance with the replayed one
  purchase-manager reconcile balance --sync --yes`,
	Args: cobra.NoArgs,
	RunE: runBalanceReconcile,
}

func init() {
	RootCmd.AddCommand(reconcileCmd)
	reconcileCmd.AddCommand(balanceReconcileCmd)

	balanceReconcileCmd.Flags().BoolVar(&syncBalance, "sync", false, "Overwrite the persisted balance when it drifted")
	balanceReconcileCmd.Flags().BoolVar(&dryRunBalance, "dry-run", false, "Show planned actions without executing them")
	balanceReconcileCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Skip confirmation prompt")
}

func runBalanceReconcile(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.close()
	l := rt.logger

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := rt.connectDatabase(); err != nil {
		return err
	}
	balances, err := rt.balanceStore()
	if err != nil {
		return err
	}
	v, err := verifier.New(rt.cfg.Verifier)
	if err != nil {
		return fmt.Errorf("failed to create transaction verifier: %w", err)
	}

	spec := rt.balanceSpec()
	opts := reconcile.ReconcileOptions{
		DoSync: syncBalance,
		DryRun: dryRunBalance,
	}

	l.Info("Planning reconciliation...")
	journal := platform.NewJournal(rt.db, l.Named("journal"))
	plan, err := reconcile.ReconcileWithPlan(ctx, spec, journal, v, balances, opts)
	if err != nil {
		return fmt.Errorf("failed to plan reconciliation: %w", err)
	}

	printReconcileReport(l, plan)

	if !syncBalance {
		if !plan.InSync() {
			l.Info("No actions requested. Use --sync to overwrite the persisted balance.")
		}
		return nil
	}

	if dryRunBalance {
		l.Info("Dry-run mode: No changes were made.")
		return nil
	}
	if len(plan.Actions) == 0 {
		l.Info("No actions required, balance is in sync.")
		return nil
	}

	if !confirmDestructiveAction(cmd.InOrStdin(), cmd.OutOrStdout()) {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}
	opts.Confirmed = true

	l.Info("Applying actions...")
	executed, err := reconcile.ApplyPlan(ctx, balances, plan, opts)
	if err != nil {
		return fmt.Errorf("failed to apply plan: %w", err)
	}

	l.Info("Successfully executed actions", zap.Int("count", executed))
	return nil
}

// printReconcileReport prints a formatted reconciliation report using logger.
func printReconcileReport(l *zap.Logger, plan *reconcile.ReconcilePlan) {
	s := plan.Summary

	l.Info("Reconciliation report",
		zap.Int("transactions", s.Transactions),
		zap.Int("consumables", s.Consumables),
		zap.Int("unverified", s.Unverified),
		zap.Int("unparseable", s.Unparseable),
		zap.Int("revoked", s.Revoked),
		zap.Int("expected", s.Expected),
		zap.Int("persisted", s.Persisted),
		zap.Int("drift", s.Drift),
	)

	// Show a sample of skipped transactions (max 5 for logger)
	shown := 0
	skipped := 0
	for _, result := range plan.Results {
		if result.Applied() {
			continue
		}
		skipped++
		if shown == 5 {
			continue
		}
		shown++
		l.Info("Skipped transaction",
			zap.String("transaction_id", result.TransactionID),
			zap.String("product_id", result.ProductID),
			zap.Strings("mismatch", result.Mismatch),
		)
	}
	if skipped > shown {
		l.Info("Additional skipped transactions not shown", zap.Int("count", skipped-shown))
	}

	for _, action := range plan.Actions {
		l.Info("Planned action",
			zap.String("type", string(action.Type)),
			zap.String("key", action.Key),
			zap.Int("value", action.Value),
			zap.String("reason", action.Reason),
		)
	}
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction(in io.Reader, out io.Writer) bool {
	if yesConfirm {
		fmt.Fprintln(out, "\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Fprint(out, "\n⚠️  Type 'yes' to confirm destructive actions: ")
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(response) == "yes"
}
