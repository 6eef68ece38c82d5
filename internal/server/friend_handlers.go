package server

import (
	"snippetly/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AddFriend handles PUT /api/v1/users/add-friend/:friend_name
func (s *Server) AddFriend(c *fiber.Ctx) error {
	return s.friendMutation(c, "Friend request sent",
		func(actorID uint, name string) (*models.Friendship, string, error) {
			return s.friendService.SendRequest(c.Context(), actorID, name)
		})
}

// AcceptFriend handles PUT /api/v1/users/accept-friend/:friend_name
func (s *Server) AcceptFriend(c *fiber.Ctx) error {
	return s.friendMutation(c, "Friend request accepted",
		func(actorID uint, name string) (*models.Friendship, string, error) {
			return s.friendService.AcceptRequest(c.Context(), actorID, name)
		})
}

// RejectFriend handles PUT /api/v1/users/reject-friend/:friend_name
func (s *Server) RejectFriend(c *fiber.Ctx) error {
	return s.friendMutation(c, "Friend request rejected",
		func(actorID uint, name string) (*models.Friendship, string, error) {
			return s.friendService.RejectRequest(c.Context(), actorID, name)
		})
}

// CancelFriend handles PUT /api/v1/users/cancel-friend/:friend_name
func (s *Server) CancelFriend(c *fiber.Ctx) error {
	return s.friendMutation(c, "Friend request cancelled",
		func(actorID uint, name string) (*models.Friendship, string, error) {
			return s.friendService.CancelRequest(c.Context(), actorID, name)
		})
}

// friendMutation runs one lifecycle transition: resolves the counterparty
// name from the path, redirects when the name is historical, and wraps the
// resulting edge in the mutation envelope.
func (s *Server) friendMutation(c *fiber.Ctx, message string, op func(uint, string) (*models.Friendship, string, error)) error {
	userID := c.Locals("userID").(uint)

	name, err := paramName(c, "friend_name")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	friendship, renamedTo, err := op(userID, name)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if renamedTo != "" {
		return respondRenamed(c, name, renamedTo)
	}

	return respondData(c, fiber.StatusOK, message, friendship)
}

// GetFriends handles GET /api/v1/users/current/friends
func (s *Server) GetFriends(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	params := parseListParams(c)

	page, err := s.friendService.ListFriends(c.Context(), userID, params.Limit, params.Cursor)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return respondPage(c, "Friends retrieved", page.Items, page.NextCursor, page.Total)
}

// GetInbox handles GET /api/v1/users/current/inbox
func (s *Server) GetInbox(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	params := parseListParams(c)

	page, err := s.friendService.ListInbox(c.Context(), userID, params.Limit, params.Cursor, params.Query)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return respondPage(c, "Pending requests retrieved", page.Items, page.NextCursor, page.Total)
}

// GetOutbox handles GET /api/v1/users/current/outbox
func (s *Server) GetOutbox(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	params := parseListParams(c)

	page, err := s.friendService.ListOutbox(c.Context(), userID, params.Limit, params.Cursor, params.Query)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return respondPage(c, "Sent requests retrieved", page.Items, page.NextCursor, page.Total)
}
