package integrity

import (
	"context"
	"path"

	"purchase-manager/core/reconcile"
	"purchase-manager/core/storage"
	"purchase-manager/feature/catalog"
	"purchase-manager/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Sources groups what the integrity checks inspect. DB and Audit are
// optional; their checks report an error when left unset.
type Sources struct {
	Client  storage.Client
	Bucket  string
	Catalog checks.CatalogFetcher
	Config  catalog.Config
	DB      *gorm.DB
	Audit   checks.BalanceAudit
}

// Service handles integrity checks.
type Service struct {
	src    Sources
	logger *zap.Logger
}

// NewService creates a new integrity service.
func NewService(src Sources, logger *zap.Logger) *Service {
	return &Service{
		src:    src,
		logger: logger,
	}
}

// Prefixes returns the storage folders the catalog publishes into.
func (s *Service) Prefixes() []string {
	var prefixes []string
	if dir := path.Dir(s.src.Config.Object); dir != "." && dir != "/" {
		prefixes = append(prefixes, dir)
	}
	if s.src.Config.ArchivePrefix != "" {
		prefixes = append(prefixes, s.src.Config.ArchivePrefix)
	}
	return prefixes
}

// CheckStructure returns a list of missing folders.
func (s *Service) CheckStructure(ctx context.Context) ([]string, error) {
	return checks.CheckStructure(ctx, s.src.Client, s.src.Bucket, s.Prefixes())
}

// FixStructure creates the missing folders.
func (s *Service) FixStructure(ctx context.Context, missing []string) error {
	return checks.FixStructure(ctx, s.src.Client, s.src.Bucket, s.logger, missing)
}

// CheckCatalog reports the configured products the published catalog lacks.
func (s *Service) CheckCatalog(ctx context.Context) (*checks.CatalogReport, error) {
	return checks.CheckCatalog(ctx, s.src.Catalog, s.src.Config.ProductIDs)
}

// CheckSchema verifies the journal and balance tables.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	return checks.CheckSchema(s.src.DB)
}

// CheckBalance reports the drift between the persisted balance and the history.
func (s *Service) CheckBalance(ctx context.Context) (*reconcile.PlanSummary, error) {
	return checks.CheckBalance(ctx, s.src.Audit)
}

// CheckAll runs every check. A failing check is reported in place and does
// not stop the others.
func (s *Service) CheckAll(ctx context.Context) map[string]interface{} {
	report := make(map[string]interface{})

	if missing, err := s.CheckStructure(ctx); err != nil {
		report["structure"] = failed(err)
	} else {
		report["structure"] = map[string]interface{}{"status": "ok", "missing": missing}
	}

	if catalogReport, err := s.CheckCatalog(ctx); err != nil {
		report["catalog"] = failed(err)
	} else {
		report["catalog"] = catalogReport
	}

	if schemaReport, err := s.CheckSchema(); err != nil {
		report["schema"] = failed(err)
	} else {
		report["schema"] = schemaReport
	}

	if summary, err := s.CheckBalance(ctx); err != nil {
		report["balance"] = failed(err)
	} else {
		report["balance"] = summary
	}

	return report
}

func failed(err error) map[string]interface{} {
	return map[string]interface{}{"status": "error", "error": err.Error()}
}
