package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hardware-store/internal/api/dto"
	"github.com/spec-kit/hardware-store/internal/auth"
	"github.com/spec-kit/hardware-store/internal/service"
	apperrors "github.com/spec-kit/hardware-store/pkg/util"
)

// AuthHandler exposes login and the current-caller view.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /hardware/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	user, token, exp, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.AuthResponse{Token: token, ExpiresAt: exp, User: dto.NewUserResponse(user)})
}

// Current handles GET /hardware/auth/current.
func (h *AuthHandler) Current(c *fiber.Ctx) error {
	sc, ok := auth.SecurityContextFrom(c.UserContext())
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	roles := make([]string, 0, len(sc.Roles()))
	for _, r := range sc.Roles() {
		roles = append(roles, string(r))
	}
	return c.JSON(dto.CurrentUserResponse{Identity: sc.Identity(), Roles: roles})
}
