package server

import (
	"snippetly/internal/models"
	"snippetly/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/v1/users/current
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := s.userService.GetByID(c.Context(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return respondData(c, fiber.StatusOK, "Profile retrieved", user)
}

// UpdateMyProfile handles PUT /api/v1/users/current
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Username *string `json:"username"`
		Bio      *string `json:"bio"`
		Avatar   *string `json:"avatar"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), userID, service.ProfileUpdates{
		Username: req.Username,
		Bio:      req.Bio,
		Avatar:   req.Avatar,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return respondData(c, fiber.StatusOK, "Profile updated", user)
}

// GetUserProfile handles GET /api/v1/users/:username
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	name, err := paramName(c, "username")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	profile, renamedTo, err := s.userService.GetProfile(c.Context(), name)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if renamedTo != "" {
		return respondRenamed(c, name, renamedTo)
	}

	return respondData(c, fiber.StatusOK, "Profile retrieved", profile)
}

// GetAllUsers handles GET /api/v1/users
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	params := parseListParams(c)

	page, err := s.userService.ListUsers(c.Context(), params.Limit, params.Cursor, params.Query)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return respondPage(c, "Users retrieved", page.Items, page.NextCursor, page.Total)
}
