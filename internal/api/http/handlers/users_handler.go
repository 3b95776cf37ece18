package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hardware-store/internal/api/dto"
	"github.com/spec-kit/hardware-store/internal/auth"
	"github.com/spec-kit/hardware-store/internal/domain"
	"github.com/spec-kit/hardware-store/internal/repository"
	"github.com/spec-kit/hardware-store/internal/service"
	apperrors "github.com/spec-kit/hardware-store/pkg/util"
)

// UsersHandler exposes the /hardware/users resource.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// Register handles POST /hardware/users.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.users.Register(c.UserContext(), service.RegisterInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		About:     req.About,
		Gender:    domain.Gender(req.Gender),
		ImageName: req.ImageName,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewUserResponse(user))
}

// Update handles PUT /hardware/users/:userId.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	var req dto.UserUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	caller, _ := auth.SecurityContextFrom(c.UserContext())
	user, err := h.users.Update(c.UserContext(), caller, c.Params("userId"), service.UpdateInput{
		Name:      req.Name,
		Password:  req.Password,
		About:     req.About,
		Gender:    domain.Gender(req.Gender),
		ImageName: req.ImageName,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

// Delete handles DELETE /hardware/users/:userId.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	if err := h.users.Delete(c.UserContext(), c.Params("userId"), callerIdentity(c)); err != nil {
		return err
	}
	return c.JSON(dto.ApiResponseMessage{
		Message: "user deleted successfully",
		Success: true,
		Status:  http.StatusOK,
	})
}

// Get handles GET /hardware/users/:userId.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	user, err := h.users.GetByID(c.UserContext(), c.Params("userId"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

// GetByEmail handles GET /hardware/users/email/:email.
func (h *UsersHandler) GetByEmail(c *fiber.Ctx) error {
	user, err := h.users.GetByEmail(c.UserContext(), c.Params("email"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

// Search handles GET /hardware/users/search/:keyword.
func (h *UsersHandler) Search(c *fiber.Ctx) error {
	users, err := h.users.Search(c.UserContext(), c.Params("keyword"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponses(users))
}

// List handles GET /hardware/users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	page, err := h.users.List(c.UserContext(), repository.PageRequest{
		Number:  c.QueryInt("pageNumber", 0),
		Size:    c.QueryInt("pageSize", 10),
		SortBy:  c.Query("sortBy", "name"),
		SortDir: c.Query("sortDir", "asc"),
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewPageableResponse(dto.NewUserResponses(page.Users), page.Page.Number, page.Page.Size, page.Total))
}

// AssignAdmin handles PUT /hardware/users/:userId/admin.
func (h *UsersHandler) AssignAdmin(c *fiber.Ctx) error {
	user, err := h.users.AssignAdmin(c.UserContext(), c.Params("userId"), callerIdentity(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

func callerIdentity(c *fiber.Ctx) string {
	if sc, ok := auth.SecurityContextFrom(c.UserContext()); ok {
		return sc.Identity()
	}
	return ""
}
