package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/contactkeeper/contact-service/internal/api/dto"
	"github.com/contactkeeper/contact-service/internal/auth"
	"github.com/contactkeeper/contact-service/internal/service"
	apperrors "github.com/contactkeeper/contact-service/pkg/util"
)

// UsersHandler exposes account endpoints.
type UsersHandler struct {
	auth *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{auth: authService}
}

// Register handles POST /api/users/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.auth.RegisterUser(c.UserContext(), req.Username, req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(dto.UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
}

// Login handles POST /api/users/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.auth.LoginUser(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.LoginResponse{AccessToken: result.AccessToken})
}

// Current handles GET /api/users/current and echoes the verified subject.
func (h *UsersHandler) Current(c *fiber.Ctx) error {
	subject, ok := auth.SubjectFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("user is not authorized", nil)
	}
	return c.JSON(dto.UserResponse{
		ID:       subject.ID,
		Username: subject.Username,
		Email:    subject.Email,
	})
}
