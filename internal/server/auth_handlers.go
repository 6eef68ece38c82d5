package server

import (
	"snippetly/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Signup handles POST /api/v1/auth/signup
func (s *Server) Signup(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username, email, and password are required"))
	}

	user, err := s.authService.Signup(c.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return respondData(c, fiber.StatusCreated, "Account created", user.Public())
}

// Login handles POST /api/v1/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email and password are required"))
	}

	user, tokens, err := s.authService.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return respondData(c, fiber.StatusOK, "Logged in", fiber.Map{
		"user":   user.Public(),
		"tokens": tokens,
	})
}

// Refresh handles POST /api/v1/auth/refresh
func (s *Server) Refresh(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Refresh token is required"))
	}

	tokens, err := s.authService.Refresh(c.Context(), req.RefreshToken)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return respondData(c, fiber.StatusOK, "Token refreshed", tokens)
}

// Logout handles POST /api/v1/auth/logout
func (s *Server) Logout(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Refresh token is required"))
	}

	if err := s.authService.Logout(c.Context(), req.RefreshToken); err != nil {
		return models.RespondWithAppError(c, err)
	}

	return respondData(c, fiber.StatusOK, "Logged out", nil)
}
