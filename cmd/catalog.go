package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"purchase-manager/core/storage"
	"purchase-manager/feature/catalog"

	"github.com/spf13/cobra"
)

// catalogCmd is the parent command for catalog operations.
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and publish the product catalog",
	Long: `Reads and writes the product catalog kept in object storage.

Examples:
  # Print the configured products found in the catalog
  catalog show

  # Upload a new catalog revision
  catalog publish products.json

  # List archived revisions
  catalog history`,
}

var catalogShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the configured products found in the catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCatalog(cmd, func(ctx context.Context, svc *catalog.Service, cfg catalog.Config) error {
			products, err := svc.LoadCatalog(ctx, cfg.ProductIDs)
			if err != nil {
				return err
			}
			return printJSON(cmd, products)
		})
	},
}

var catalogPublishCmd = &cobra.Command{
	Use:   "publish [file]",
	Short: "Validate and upload a catalog document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read catalog file: %w", err)
		}

		var doc catalog.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to parse catalog file: %w", err)
		}

		return withCatalog(cmd, func(ctx context.Context, svc *catalog.Service, _ catalog.Config) error {
			revision, err := svc.Publish(ctx, doc)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Published %d products as %s\n", len(doc.Products), revision)
			return nil
		})
	},
}

var catalogHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived catalog revisions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCatalog(cmd, func(ctx context.Context, svc *catalog.Service, _ catalog.Config) error {
			revisions, err := svc.History(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, revisions)
		})
	},
}

func init() {
	catalogCmd.AddCommand(catalogShowCmd, catalogPublishCmd, catalogHistoryCmd)
	RootCmd.AddCommand(catalogCmd)
}

func withCatalog(cmd *cobra.Command, fn func(context.Context, *catalog.Service, catalog.Config) error) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	client, err := storage.NewClient(rt.cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, rt.catalogService(client), rt.cfg.Catalog)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
