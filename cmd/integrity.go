package cmd

import (
	"context"
	"fmt"

	"purchase-manager/core/platform"
	"purchase-manager/core/storage"
	"purchase-manager/core/verifier"
	"purchase-manager/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fixFlag bool

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Perform integrity checks on storage, catalog, schema and balance",
	Long:  `Runs every integrity check and prints a combined JSON report. Use a subcommand to run a single check.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withIntegrity(cmd, func(ctx context.Context, svc *integrity.Service) error {
			return printJSON(cmd, svc.CheckAll(ctx))
		})
	},
}

// structureCmd represents the integrity structure command
var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Check and fix the catalog folders in the bucket",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withIntegrity(cmd, func(ctx context.Context, svc *integrity.Service) error {
			missing, err := svc.CheckStructure(ctx)
			if err != nil {
				return err
			}
			if len(missing) > 0 && fixFlag {
				if err := svc.FixStructure(ctx, missing); err != nil {
					return fmt.Errorf("failed to fix structure: %w", err)
				}
				return printJSON(cmd, map[string]interface{}{"status": "fixed", "fixed": missing})
			}
			return printJSON(cmd, map[string]interface{}{"status": "checked", "missing": missing})
		})
	},
}

var catalogCheckCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Check that the published catalog lists every configured product",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withIntegrity(cmd, func(ctx context.Context, svc *integrity.Service) error {
			report, err := svc.CheckCatalog(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, report)
		})
	},
}

var schemaCheckCmd = &cobra.Command{
	Use:   "schema",
	Short: "Check the journal and balance tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withIntegrity(cmd, func(ctx context.Context, svc *integrity.Service) error {
			report, err := svc.CheckSchema()
			if err != nil {
				return err
			}
			return printJSON(cmd, report)
		})
	},
}

var balanceCheckCmd = &cobra.Command{
	Use:   "balance",
	Short: "Report drift between the persisted balance and the history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withIntegrity(cmd, func(ctx context.Context, svc *integrity.Service) error {
			summary, err := svc.CheckBalance(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, summary)
		})
	},
}

func init() {
	structureCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create missing folders")
	integrityCmd.AddCommand(structureCmd, catalogCheckCmd, schemaCheckCmd, balanceCheckCmd)
	RootCmd.AddCommand(integrityCmd)
}

// withIntegrity connects every source the checks inspect. A missing verifier
// secret only disables the balance check.
func withIntegrity(cmd *cobra.Command, fn func(context.Context, *integrity.Service) error) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	if err := rt.connectDatabase(); err != nil {
		return err
	}
	balances, err := rt.balanceStore()
	if err != nil {
		return err
	}
	client, err := storage.NewClient(rt.cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}
	v, err := verifier.New(rt.cfg.Verifier)
	if err != nil {
		rt.logger.Warn("Balance check disabled", zap.Error(err))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	journal := platform.NewJournal(rt.db, rt.logger.Named("journal"))
	src := rt.integritySources(client, rt.catalogService(client), journal, v, balances)
	return fn(ctx, integrity.NewService(src, rt.logger.Named("integrity")))
}
