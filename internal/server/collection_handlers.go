package server

import (
	"snippetly/internal/models"
	"snippetly/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateCollection handles POST /api/v1/collections
func (s *Server) CreateCollection(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var input service.CollectionInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	collection, err := s.collectionService.Create(c.Context(), userID, input)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return respondData(c, fiber.StatusCreated, "Collection created", collection)
}

// UpdateCollection handles PUT /api/v1/collections/:id
func (s *Server) UpdateCollection(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid ID"))
	}

	var input service.CollectionInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	collection, err := s.collectionService.Update(c.Context(), userID, uint(id), input)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return respondData(c, fiber.StatusOK, "Collection updated", collection)
}

// DeleteCollection handles DELETE /api/v1/collections/:id
func (s *Server) DeleteCollection(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid ID"))
	}

	if err := s.collectionService.Delete(c.Context(), userID, uint(id)); err != nil {
		return models.RespondWithAppError(c, err)
	}

	return respondData(c, fiber.StatusOK, "Collection deleted", nil)
}

// GetUserCollection handles GET /api/v1/users/:username/collections/:slug
func (s *Server) GetUserCollection(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	name, err := paramName(c, "username")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	slug, err := paramName(c, "slug")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	view, renamedTo, err := s.collectionService.GetForViewer(c.Context(), userID, name, slug)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if renamedTo != "" {
		return respondRenamed(c, name, renamedTo)
	}

	return respondData(c, fiber.StatusOK, "Collection retrieved", view)
}

// GetUserCollections handles GET /api/v1/users/:username/collections
func (s *Server) GetUserCollections(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	params := parseListParams(c)

	name, err := paramName(c, "username")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	page, renamedTo, err := s.collectionService.ListForViewer(c.Context(), userID, name, params.Limit, params.Cursor)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if renamedTo != "" {
		return respondRenamed(c, name, renamedTo)
	}

	return respondPage(c, "Collections retrieved", page.Items, page.NextCursor, page.Total)
}
