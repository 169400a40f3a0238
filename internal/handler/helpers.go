package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/leaps-program/leaps-api/internal/service"
	"github.com/leaps-program/leaps-api/internal/utils"
)

func parseUintParam(c *fiber.Ctx, key string) (uint, error) {
	value := strings.TrimSpace(c.Params(key))
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.New("invalid " + key)
	}
	return uint(parsed), nil
}

func parseQueryUint(c *fiber.Ctx, key string) (*uint, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return nil, errors.New("invalid " + key)
	}
	result := uint(parsed)
	return &result, nil
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.New("invalid " + key)
	}
	return parsed, nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
		if id, ok := v.(int); ok {
			if id < 0 {
				return 0
			}
			return uint(id)
		}
	}
	return 0
}

func userRoleFromContext(c *fiber.Ctx) string {
	if v := c.Locals("user_role"); v != nil {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}

func reviewActorFromContext(c *fiber.Ctx) service.ReviewActor {
	return service.ReviewActor{
		ID:   userIDFromContext(c),
		Role: userRoleFromContext(c),
	}
}

// sendDomainError maps the service error taxonomy to HTTP statuses shared by
// every handler in this package.
func sendDomainError(c *fiber.Ctx, err error) (bool, error) {
	var (
		validationErrors validator.ValidationErrors
		invalidState     *service.InvalidStateError
		quotaExceeded    *service.QuotaExceededError
		pointAdjustment  *service.PointAdjustmentError
		schemaInvalid    *service.SchemaValidationError
	)

	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		return true, utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrUserNotFound):
		return true, utils.SendError(c, fiber.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrEventNotFound):
		return true, utils.SendError(c, fiber.StatusNotFound, "webhook event not found")
	case errors.Is(err, service.ErrActivityNotFound):
		return true, utils.SendError(c, fiber.StatusBadRequest, "unknown activity")
	case errors.Is(err, service.ErrDuplicateSubmission):
		return true, utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrIneligible):
		return true, utils.SendError(c, fiber.StatusForbidden, err.Error())
	case errors.As(err, &invalidState):
		return true, utils.SendError(c, fiber.StatusConflict, invalidState.Error())
	case errors.As(err, &quotaExceeded):
		return true, utils.SendError(c, fiber.StatusUnprocessableEntity, quotaExceeded.Error())
	case errors.As(err, &pointAdjustment):
		return true, utils.SendError(c, fiber.StatusUnprocessableEntity, pointAdjustment.Error())
	case errors.As(err, &schemaInvalid):
		return true, utils.SendError(c, fiber.StatusBadRequest, schemaInvalid.Error())
	case errors.As(err, &validationErrors):
		return true, utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	}

	return false, nil
}
