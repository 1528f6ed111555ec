package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// AuthHandler exposes the login endpoint.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Login POST /login. The token is returned in the Authorization header.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewUnauthenticated("invalid email or password")
	}
	result, err := h.service.Login(c.UserContext(), req.Email, req.Secret())
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderAuthorization, "Bearer "+result.Token)
	c.Set(fiber.HeaderAccessControlExposeHeaders, fiber.HeaderAuthorization)
	return c.JSON(fiber.Map{
		"expiresAt": result.ExpiresAt.UTC(),
		"person":    dto.NewPersonResponse(&result.Person),
	})
}
