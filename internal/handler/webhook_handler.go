package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/leaps-program/leaps-api/internal/dto"
	"github.com/leaps-program/leaps-api/internal/service"
	"github.com/leaps-program/leaps-api/internal/utils"
)

// WebhookHandler receives LMS course-completion deliveries and exposes the
// stored event queue to admins.
type WebhookHandler struct {
	service service.WebhookService
	logger  zerolog.Logger
}

// NewWebhookHandler builds a webhook handler instance.
func NewWebhookHandler(service service.WebhookService, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		logger:  logger.With().Str("component", "webhook_handler").Logger(),
	}
}

// RegisterIngest attaches the public delivery endpoint. The route group is
// expected to carry the shared-secret middleware.
func (h *WebhookHandler) RegisterIngest(router fiber.Router) {
	router.Post("/lms", h.ingest)
}

// RegisterAdmin attaches the event queue endpoints for review staff.
func (h *WebhookHandler) RegisterAdmin(router fiber.Router) {
	router.Get("", h.list)
	router.Post("/:id/reprocess", h.reprocess)
}

func (h *WebhookHandler) ingest(c *fiber.Ctx) error {
	var payload dto.WebhookEventRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Ingest(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	// Providers treat any 2xx as delivered; the body carries the outcome.
	return utils.SendSuccess(c, "event "+result.Status, result)
}

func (h *WebhookHandler) reprocess(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.Reprocess(c.Context(), id, reviewActorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "event "+result.Status, result)
}

func (h *WebhookHandler) list(c *fiber.Ctx) error {
	req := dto.WebhookEventListRequest{}
	if status := c.Query("status"); status != "" {
		req.Status = &status
	}
	if page, err := parseQueryInt(c, "page"); err == nil {
		req.Page = page
	}
	if pageSize, err := parseQueryInt(c, "page_size"); err == nil {
		req.PageSize = pageSize
	}

	events, err := h.service.List(c.Context(), req)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "webhook events retrieved", events)
}

func (h *WebhookHandler) handleError(c *fiber.Ctx, err error) error {
	if handled, resp := sendDomainError(c, err); handled {
		return resp
	}
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
