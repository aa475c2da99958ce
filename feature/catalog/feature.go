package catalog

import (
	"purchase-manager/core/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new Catalog feature.
func NewFeature(client storage.Client, bucket string, cfg Config, logger *zap.Logger) *Feature {
	svc := NewService(client, bucket, cfg, logger)
	return &Feature{service: svc, handler: NewHandler(svc)}
}

// Service exposes the catalog loader shared with the entitlement manager.
func (f *Feature) Service() *Service {
	return f.service
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "catalog"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
