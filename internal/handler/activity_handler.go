package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/leaps-program/leaps-api/internal/dto"
	"github.com/leaps-program/leaps-api/internal/models"
	"github.com/leaps-program/leaps-api/internal/utils"
)

// ActivityHandler serves the program's stage reference data.
type ActivityHandler struct{}

// NewActivityHandler builds an activity handler instance.
func NewActivityHandler() *ActivityHandler {
	return &ActivityHandler{}
}

// Register attaches the routes to the provided router group.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("", h.list)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	definitions := models.ActivityDefinitions()
	activities := make([]dto.ActivityResponse, 0, len(definitions))
	for _, def := range definitions {
		activities = append(activities, dto.ActivityResponse{
			Code:          string(def.Code),
			Name:          def.Name,
			DefaultPoints: def.DefaultPoints,
		})
	}

	return utils.SendSuccess(c, "activities retrieved", activities)
}
