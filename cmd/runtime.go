package cmd

import (
	"fmt"

	"purchase-manager/core/cache"
	"purchase-manager/core/config"
	"purchase-manager/core/database"
	"purchase-manager/core/kvstore"
	"purchase-manager/core/logger"
	"purchase-manager/core/platform"
	"purchase-manager/core/reconcile"
	"purchase-manager/core/storage"
	"purchase-manager/core/verifier"
	"purchase-manager/feature/catalog"
	"purchase-manager/feature/integrity"
	"purchase-manager/feature/integrity/checks"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// runtime holds the connections shared by the commands.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	rdb    *redis.Client
}

func loadRuntime() (*runtime, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return &runtime{cfg: cfg, logger: l}, nil
}

// connectDatabase opens the journal database and applies its schema.
func (r *runtime) connectDatabase() error {
	db, err := database.Connect(r.cfg.Database)
	if err != nil {
		return err
	}
	if err := platform.Migrate(db); err != nil {
		return err
	}
	if err := kvstore.Migrate(db); err != nil {
		return err
	}

	r.db = db
	r.logger.Info("Connected to database", zap.String("driver", r.cfg.Database.Driver))
	return nil
}

// balanceStore opens the configured balance backend.
func (r *runtime) balanceStore() (kvstore.Store, error) {
	if r.cfg.Store.Backend == kvstore.BackendRedis && r.rdb == nil {
		rdb, err := cache.Connect(r.cfg.Redis)
		if err != nil {
			return nil, err
		}
		r.rdb = rdb
		r.logger.Info("Connected to redis", zap.String("addr", r.cfg.Redis.Addr))
	}
	return kvstore.New(r.cfg.Store, r.db, r.rdb)
}

// integritySources wires the integrity checks. The balance audit is left
// unconfigured when v is nil.
func (r *runtime) integritySources(client storage.Client, fetcher checks.CatalogFetcher, journal *platform.Journal, v *verifier.JWSVerifier, balances kvstore.Store) integrity.Sources {
	src := integrity.Sources{
		Client:  client,
		Bucket:  r.cfg.Storage.Bucket,
		Catalog: fetcher,
		Config:  r.cfg.Catalog,
		DB:      r.db,
	}
	if journal != nil && v != nil && balances != nil {
		src.Audit = checks.BalanceAudit{
			Spec:     r.balanceSpec(),
			History:  journal,
			Verifier: v,
			Store:    balances,
		}
	}
	return src
}

func (r *runtime) balanceSpec() *reconcile.Spec {
	return &reconcile.Spec{
		BalanceKey:           r.cfg.Store.BalanceKey,
		ConsumableIdentifier: r.cfg.Catalog.ConsumableIdentifier,
	}
}

// catalogService builds the catalog service on top of client.
func (r *runtime) catalogService(client storage.Client) *catalog.Service {
	return catalog.NewService(client, r.cfg.Storage.Bucket, r.cfg.Catalog, r.logger.Named("catalog"))
}

func (r *runtime) close() {
	if r.rdb != nil {
		_ = r.rdb.Close()
	}
	if r.db != nil {
		if sqlDB, err := r.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = r.logger.Sync()
}
