package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"purchase-manager/core/entitlement"
	"purchase-manager/core/loader"
	"purchase-manager/core/logger"
	"purchase-manager/core/middleware/auth"
	"purchase-manager/core/middleware/rayid"
	"purchase-manager/core/platform"
	"purchase-manager/core/storage"
	"purchase-manager/core/verifier"
	"purchase-manager/feature/catalog"
	"purchase-manager/feature/entitlements"
	"purchase-manager/feature/integrity"
	"purchase-manager/feature/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "purchase-manager/docs/swagger"
)

// @title Purchase Manager API
// @version 1.0
// @description Entitlement reconciliation for in-app purchases.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the purchase manager server",
	Long: `Starts the entitlement manager on top of the purchase journal and serves
the catalog, entitlements and notifications APIs.`,
	RunE: runStart,
}

func init() {
	RootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.close()
	zap.ReplaceGlobals(rt.logger)
	logg := rt.logger

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

	store, err := storage.NewClient(rt.cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	journal := platform.NewJournal(rt.db, logg.Named("journal"))
	catalogFeature := catalog.NewFeature(store, rt.cfg.Storage.Bucket, rt.cfg.Catalog, logg.Named("catalog"))

	manager, err := entitlement.NewManager(ctx, entitlement.Config{
		BalanceKey:           rt.cfg.Store.BalanceKey,
		ConsumableIdentifier: rt.cfg.Catalog.ConsumableIdentifier,
		SubscriptionGroupID:  rt.cfg.Catalog.SubscriptionGroupID,
		ProductIDs:           rt.cfg.Catalog.ProductIDs,
	}, journal, v, catalogFeature.Service(), balances, logg.Named("entitlement"))
	if err != nil {
		return fmt.Errorf("failed to create entitlement manager: %w", err)
	}
	manager.Start(ctx)
	defer manager.Close()

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	mgr := loader.NewManager()
	mgr.Register(catalogFeature)
	mgr.Register(entitlements.NewFeature(manager, journal, logg.Named("entitlements")))
	mgr.Register(notifications.NewFeature(journal, rt.cfg.Server.Notifications, logg.Named("notifications")))
	mgr.Register(integrity.NewFeature(
		rt.integritySources(store, catalogFeature.Service(), journal, v, balances),
		logg.Named("integrity"),
	))

	// RayID must be first so every later log line carries it.
	app.Use(rayid.New())
	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(logg, c)
		l.Info("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		return err
	})

	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Use(auth.New(auth.Config{ApiKey: rt.cfg.Server.ApiKey, Skip: []string{"/swagger"}}))

	loaded, err := mgr.LoadAll(app)
	if err != nil {
		return err
	}
	logg.Info("Loaded features", zap.Strings("features", loaded))

	listenErr := make(chan error, 1)
	go func() {
		logg.Info("Starting server", zap.String("port", rt.cfg.Server.Port))
		listenErr <- app.Listen(rt.cfg.Server.Address())
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-listenErr:
		return fmt.Errorf("server failed: %w", err)
	case <-signals:
	}

	logg.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(rt.cfg.Server.ShutdownTimeout()); err != nil {
		logg.Warn("Server shutdown incomplete", zap.Error(err))
	}
	return nil
}
