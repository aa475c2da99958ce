package entitlements

import (
	"errors"

	"purchase-manager/core/entitlement"
	"purchase-manager/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for entitlements.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the entitlement routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/entitlements")
	group.Get("/", h.HandleGetState)
	group.Get("/owned/:id", h.HandleGetOwned)
	group.Get("/transactions", h.HandleGetTransactions)
	group.Get("/products", h.HandleGetProducts)
	group.Post("/purchases", h.HandleSubmitPurchase)
	group.Post("/restore", h.HandleRestore)
}

// HandleGetState returns the balance, plan and owned products.
// @Summary Get Entitlements
// @Description Get the consumable balance, the resolved plan and every owned non-consumable.
// @Tags entitlements
// @Produce json
// @Success 200 {object} entitlements.State "Entitlement state"
// @Router /entitlements [get]
func (h *Handler) HandleGetState(c *fiber.Ctx) error {
	return c.JSON(h.service.State())
}

// HandleGetOwned reports whether a product is owned.
// @Summary Get Ownership
// @Description Check whether a non-consumable product is owned.
// @Tags entitlements
// @Produce json
// @Param id path string true "Product identifier (e.g. 'nonconsumable.removeAds')"
// @Success 200 {object} entitlements.Ownership "Ownership"
// @Router /entitlements/owned/{id} [get]
func (h *Handler) HandleGetOwned(c *fiber.Ctx) error {
	id := c.Params("id")
	return c.JSON(Ownership{ProductID: id, Owned: h.service.manager.Owns(id)})
}

// HandleGetTransactions returns the verified transaction history.
// @Summary Get Transactions
// @Description List every transaction of the history that passes verification.
// @Tags entitlements
// @Produce json
// @Success 200 {array} entitlement.PurchaseRecord "Transactions"
// @Router /entitlements/transactions [get]
func (h *Handler) HandleGetTransactions(c *fiber.Ctx) error {
	records := h.service.manager.Transactions(c.Context())
	if records == nil {
		records = []entitlement.PurchaseRecord{}
	}
	return c.JSON(records)
}

// HandleGetProducts returns the loaded products grouped for display.
// @Summary Get Products
// @Description Consumables by quantity, non-consumables by name and subscriptions by tier.
// @Tags entitlements
// @Produce json
// @Param reload query bool false "Reload the catalog first"
// @Success 200 {object} entitlements.Listings "Products"
// @Router /entitlements/products [get]
func (h *Handler) HandleGetProducts(c *fiber.Ctx) error {
	return c.JSON(h.service.Listings(c.Context(), c.QueryBool("reload")))
}

// HandleSubmitPurchase processes the result of a purchase flow.
// @Summary Submit Purchase
// @Description Report the outcome of a purchase; a success carries the signed transaction.
// @Tags entitlements
// @Accept json
// @Produce json
// @Param request body entitlements.PurchaseRequest true "Purchase result"
// @Success 200 {object} entitlements.State "Entitlement state"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 503 {object} map[string]string "Service Unavailable"
// @Router /entitlements/purchases [post]
func (h *Handler) HandleSubmitPurchase(c *fiber.Ctx) error {
	var req PurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}

	state, err := h.service.Submit(c.Context(), req)
	if err != nil {
		return h.fail(c, "Purchase submission failed", err)
	}
	return c.JSON(state)
}

// HandleRestore resynchronizes purchases with the platform.
// @Summary Restore Purchases
// @Description Sync with the platform and replay the current entitlements.
// @Tags entitlements
// @Produce json
// @Success 200 {object} entitlements.State "Entitlement state"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Failure 503 {object} map[string]string "Service Unavailable"
// @Router /entitlements/restore [post]
func (h *Handler) HandleRestore(c *fiber.Ctx) error {
	state, err := h.service.Restore(c.Context())
	if err != nil {
		return h.fail(c, "Restore failed", err)
	}
	return c.JSON(state)
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, ErrInvalidPurchase):
		status = fiber.StatusBadRequest
	case errors.Is(err, entitlement.ErrClosed):
		status = fiber.StatusServiceUnavailable
	}
	logger.WithRayID(h.service.logger, c).Error(msg, zap.Error(err))
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
