package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

func parseID(c *fiber.Ctx) (int64, error) {
	raw := c.Params("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid id", map[string]any{"id": raw})
	}
	return id, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", map[string]any{"reason": err.Error()})
	}
	return nil
}

// created writes a 201 with a Location header pointing at the new resource.
func created(c *fiber.Ctx, id int64, body any) error {
	c.Location(c.BaseURL() + strings.TrimSuffix(c.Path(), "/") + "/" + strconv.FormatInt(id, 10))
	return c.Status(fiber.StatusCreated).JSON(body)
}
