package notifications

import (
	"purchase-manager/core/entitlement"
	"purchase-manager/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles platform notifications.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the notification routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/notifications")
	group.Post("/transactions", h.HandleTransaction)
	group.Post("/statuses", h.HandleStatus)
}

// HandleTransaction ingests a signed transaction pushed by the platform.
// @Summary Ingest Transaction
// @Description Append a signed transaction to the journal and stream it to the entitlement manager.
// @Tags notifications
// @Accept json
// @Produce json
// @Param request body entitlement.SignedTransaction true "Signed transaction"
// @Success 202 {object} map[string]string "Accepted"
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /notifications/transactions [post]
func (h *Handler) HandleTransaction(c *fiber.Ctx) error {
	var tx entitlement.SignedTransaction
	if err := c.BodyParser(&tx); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}
	if err := h.service.Transaction(c.Context(), tx); err != nil {
		return h.reject(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "accepted"})
}

// HandleStatus ingests a subscription status pushed by the platform.
// @Summary Ingest Subscription Status
// @Description Append a subscription status to the journal and stream it to the entitlement manager.
// @Tags notifications
// @Accept json
// @Produce json
// @Param request body entitlement.SignedStatus true "Signed status"
// @Success 202 {object} map[string]string "Accepted"
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /notifications/statuses [post]
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	var status entitlement.SignedStatus
	if err := c.BodyParser(&status); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}
	if err := h.service.Status(c.Context(), status); err != nil {
		return h.reject(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "accepted"})
}

func (h *Handler) reject(c *fiber.Ctx, err error) error {
	logger.WithRayID(h.logger, c).Warn("Notification rejected", zap.Error(err))
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
}
