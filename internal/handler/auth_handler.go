package handler

import (
	"go-pharmapos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ResetPasswordRequest represents the reset password request body
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// Login handles user authentication
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, 400, "Invalid JSON")
	}

	if req.Email == "" || req.Password == "" {
		return respondError(c, 400, "Email and password are required")
	}

	response, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		// Return 401 for authentication errors
		return respondError(c, 401, err.Error())
	}

	return respondOK(c, "Login successful", response)
}

// ResetPassword handles password change
// POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, 400, "Invalid JSON")
	}

	if req.Email == "" || req.OldPassword == "" || req.NewPassword == "" {
		return respondError(c, 400, "Email, oldPassword, and newPassword are required")
	}

	if len(req.NewPassword) < 6 {
		return respondError(c, 400, "New password must be at least 6 characters")
	}

	if err := h.authService.ResetPassword(req.Email, req.OldPassword, req.NewPassword); err != nil {
		return respondError(c, 400, err.Error())
	}

	return respondOK(c, "Password updated successfully", nil)
}

func (h *AuthHandler) Heartbeat(c *fiber.Ctx) error {
	userID := c.Locals("user_id")
	if userID == nil {
		return respondError(c, 401, "Unauthorized")
	}

	id, err := uuid.Parse(userID.(string))
	if err != nil {
		return respondError(c, 400, "Invalid user ID")
	}

	if err := h.authService.Heartbeat(id); err != nil {
		return respondError(c, 500, "Failed to update heartbeat")
	}

	return respondOK(c, "Heartbeat received", fiber.Map{"status": "online"})
}

// ValidateTokenRequest represents the validate token request body
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateToken handles JWT token validation
// POST /api/v1/auth/validate-token
func (h *AuthHandler) ValidateToken(c *fiber.Ctx) error {
	var req ValidateTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, 400, "Invalid JSON")
	}

	if req.Token == "" {
		return respondError(c, 400, "Token is required")
	}

	response, err := h.authService.ValidateToken(req.Token)
	if err != nil {
		return respondError(c, 401, err.Error())
	}

	return respondOK(c, "Token valid", response)
}
