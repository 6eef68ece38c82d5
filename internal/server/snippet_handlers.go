package server

import (
	"snippetly/internal/models"
	"snippetly/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateSnippet handles POST /api/v1/snippets
func (s *Server) CreateSnippet(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var input service.SnippetInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	snippet, err := s.snippetService.Create(c.Context(), userID, input)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return respondData(c, fiber.StatusCreated, "Snippet created", snippet)
}

// UpdateSnippet handles PUT /api/v1/snippets/:id
func (s *Server) UpdateSnippet(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid ID"))
	}

	var input service.SnippetInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	snippet, err := s.snippetService.Update(c.Context(), userID, uint(id), input)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return respondData(c, fiber.StatusOK, "Snippet updated", snippet)
}

// DeleteSnippet handles DELETE /api/v1/snippets/:id
func (s *Server) DeleteSnippet(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid ID"))
	}

	if err := s.snippetService.Delete(c.Context(), userID, uint(id)); err != nil {
		return models.RespondWithAppError(c, err)
	}

	return respondData(c, fiber.StatusOK, "Snippet deleted", nil)
}

// GetUserSnippet handles GET /api/v1/users/:username/snippets/:slug
func (s *Server) GetUserSnippet(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	name, err := paramName(c, "username")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	slug, err := paramName(c, "slug")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	snippet, renamedTo, err := s.snippetService.GetForViewer(c.Context(), userID, name, slug)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if renamedTo != "" {
		return respondRenamed(c, name, renamedTo)
	}

	return respondData(c, fiber.StatusOK, "Snippet retrieved", snippet.PublicView())
}

// GetUserSnippets handles GET /api/v1/users/:username/snippets
func (s *Server) GetUserSnippets(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	params := parseListParams(c)

	name, err := paramName(c, "username")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	page, renamedTo, err := s.snippetService.ListForViewer(c.Context(), userID, name, params.Limit, params.Cursor)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if renamedTo != "" {
		return respondRenamed(c, name, renamedTo)
	}

	return respondPage(c, "Snippets retrieved", page.Items, page.NextCursor, page.Total)
}

// GetPublicSnippets handles GET /api/v1/snippets
func (s *Server) GetPublicSnippets(c *fiber.Ctx) error {
	params := parseListParams(c)

	page, err := s.snippetService.ListPublic(c.Context(), params.Limit, params.Cursor, params.Query)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return respondPage(c, "Snippets retrieved", page.Items, page.NextCursor, page.Total)
}

// GetTags handles GET /api/v1/tags
func (s *Server) GetTags(c *fiber.Ctx) error {
	tags, err := s.snippetService.ListTags(c.Context())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return respondData(c, fiber.StatusOK, "Tags retrieved", tags)
}
