package catalog

import (
	"errors"

	"purchase-manager/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the catalog.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the catalog routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/catalog")
	group.Get("/", h.HandleGetCatalog)
	group.Get("/history", h.HandleGetHistory)
}

// HandleGetCatalog returns the configured products found in the catalog.
// @Summary Get Catalog
// @Description Get the purchasable products offered by the application.
// @Tags catalog
// @Produce json
// @Success 200 {array} entitlement.ProductDescriptor "Products"
// @Failure 404 {object} map[string]string "Catalog not published"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /catalog [get]
func (h *Handler) HandleGetCatalog(c *fiber.Ctx) error {
	products, err := h.service.LoadCatalog(c.Context(), h.service.cfg.ProductIDs)
	if err != nil {
		return h.fail(c, "Catalog load failed", err)
	}
	return c.JSON(products)
}

// HandleGetHistory lists archived catalog revisions.
// @Summary Get Catalog History
// @Description List every published catalog revision.
// @Tags catalog
// @Produce json
// @Success 200 {array} catalog.Revision "Revisions"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /catalog/history [get]
func (h *Handler) HandleGetHistory(c *fiber.Ctx) error {
	revisions, err := h.service.History(c.Context())
	if err != nil {
		return h.fail(c, "Catalog history failed", err)
	}
	if revisions == nil {
		revisions = []Revision{}
	}
	return c.JSON(revisions)
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	status := fiber.StatusInternalServerError
	if errors.Is(err, ErrNotPublished) {
		status = fiber.StatusNotFound
	}
	logger.WithRayID(h.service.logger, c).Error(msg, zap.Error(err))
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
