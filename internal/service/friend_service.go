package service

import (
	"context"
	"time"

	"snippetly/internal/middleware"
	"snippetly/internal/models"
	"snippetly/internal/pagination"
	"snippetly/internal/repository"
)

// recentSnippetsPerFriend is how many of a friend's latest snippets ride
// along on each friends-list row.
const recentSnippetsPerFriend = 3

// FriendService defines the interface for friendship business logic.
// All mutations take the acting user's id and the counterparty's username;
// a non-empty renamedTo return means the name was historical and the caller
// should redirect to the current name without performing the operation.
type FriendService interface {
	SendRequest(ctx context.Context, actorID uint, targetName string) (*models.Friendship, string, error)
	AcceptRequest(ctx context.Context, actorID uint, targetName string) (*models.Friendship, string, error)
	RejectRequest(ctx context.Context, actorID uint, targetName string) (*models.Friendship, string, error)
	CancelRequest(ctx context.Context, actorID uint, targetName string) (*models.Friendship, string, error)
	ListFriends(ctx context.Context, viewerID uint, limit int, cursor string) (*models.FriendPage, error)
	ListInbox(ctx context.Context, viewerID uint, limit int, cursor string, query string) (*models.RequestPage, error)
	ListOutbox(ctx context.Context, viewerID uint, limit int, cursor string, query string) (*models.RequestPage, error)
}

// friendService implements FriendService
type friendService struct {
	friendRepo  repository.FriendRepository
	snippetRepo repository.SnippetRepository
	userService UserService
}

// NewFriendService creates a new friend service
func NewFriendService(friendRepo repository.FriendRepository, snippetRepo repository.SnippetRepository, userService UserService) FriendService {
	return &friendService{
		friendRepo:  friendRepo,
		snippetRepo: snippetRepo,
		userService: userService,
	}
}

// resolveTarget resolves targetName and rejects self-targeting. Returns the
// target user, or the current name when targetName is historical.
func (s *friendService) resolveTarget(ctx context.Context, actorID uint, targetName string) (*models.User, string, error) {
	res, err := s.userService.ResolveName(ctx, targetName)
	if err != nil {
		return nil, "", err
	}
	if res.RenamedTo != "" {
		return nil, res.RenamedTo, nil
	}
	if res.User.ID == actorID {
		return nil, "", models.NewValidationError("You cannot send a friend request to yourself")
	}
	return res.User, "", nil
}

func (s *friendService) SendRequest(ctx context.Context, actorID uint, targetName string) (*models.Friendship, string, error) {
	target, renamedTo, err := s.resolveTarget(ctx, actorID, targetName)
	if err != nil || renamedTo != "" {
		s.observe("send", err)
		return nil, renamedTo, err
	}

	// One edge per unordered pair: a request in either direction, whatever
	// its status, blocks a new send. The directed unique index backs this
	// check up against concurrent sends.
	existing, err := s.friendRepo.GetBetweenUsers(ctx, actorID, target.ID)
	if err != nil {
		s.observe("send", err)
		return nil, "", err
	}
	if existing != nil {
		err := models.NewConflictError("Friend request already sent")
		s.observe("send", err)
		return nil, "", err
	}

	friendship := &models.Friendship{
		RequesterID: actorID,
		AddresseeID: target.ID,
		Status:      models.FriendshipStatusPending,
	}
	if err := s.friendRepo.Create(ctx, friendship); err != nil {
		s.observe("send", err)
		return nil, "", err
	}

	middleware.Logger.InfoContext(ctx, "friend request sent",
		"requester_id", actorID, "addressee_id", target.ID)
	s.observe("send", nil)
	return friendship, "", nil
}

func (s *friendService) AcceptRequest(ctx context.Context, actorID uint, targetName string) (*models.Friendship, string, error) {
	return s.transition(ctx, actorID, targetName, models.FriendshipStatusAccepted)
}

func (s *friendService) RejectRequest(ctx context.Context, actorID uint, targetName string) (*models.Friendship, string, error) {
	return s.transition(ctx, actorID, targetName, models.FriendshipStatusRejected)
}

func (s *friendService) CancelRequest(ctx context.Context, actorID uint, targetName string) (*models.Friendship, string, error) {
	return s.transition(ctx, actorID, targetName, models.FriendshipStatusCancelled)
}

// transition executes accept/reject/cancel. Accept and reject act on a
// request the target sent to the actor; cancel acts on a request the actor
// sent to the target. Only pending edges may transition.
func (s *friendService) transition(ctx context.Context, actorID uint, targetName string, status models.FriendshipStatus) (*models.Friendship, string, error) {
	name := transitionName(status)

	target, renamedTo, err := s.resolveTarget(ctx, actorID, targetName)
	if err != nil || renamedTo != "" {
		s.observe(name, err)
		return nil, renamedTo, err
	}

	requesterID, addresseeID := target.ID, actorID
	if status == models.FriendshipStatusCancelled {
		requesterID, addresseeID = actorID, target.ID
	}

	friendship, err := s.friendRepo.GetByPair(ctx, requesterID, addresseeID)
	if err != nil {
		s.observe(name, err)
		return nil, "", err
	}
	if friendship == nil {
		err := models.NewValidationError("No such friend request exists")
		s.observe(name, err)
		return nil, "", err
	}
	if !friendship.IsPending() {
		err := models.NewConflictError("Friend request is no longer pending")
		s.observe(name, err)
		return nil, "", err
	}

	now := time.Now()
	if err := s.friendRepo.Transition(ctx, friendship.ID, status, now); err != nil {
		s.observe(name, err)
		return nil, "", err
	}

	friendship.Status = status
	friendship.UpdatedAt = now
	switch status {
	case models.FriendshipStatusAccepted:
		friendship.AcceptedAt = &now
	case models.FriendshipStatusRejected:
		friendship.RejectedAt = &now
	case models.FriendshipStatusCancelled:
		friendship.CancelledAt = &now
	}

	middleware.Logger.InfoContext(ctx, "friend request "+string(status),
		"friendship_id", friendship.ID, "actor_id", actorID)
	s.observe(name, nil)
	return friendship, "", nil
}

func transitionName(status models.FriendshipStatus) string {
	switch status {
	case models.FriendshipStatusAccepted:
		return "accept"
	case models.FriendshipStatusRejected:
		return "reject"
	case models.FriendshipStatusCancelled:
		return "cancel"
	default:
		return "send"
	}
}

// observe records the transition outcome metric.
func (s *friendService) observe(transition string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	middleware.FriendshipTransitions.WithLabelValues(transition, result).Inc()
}

// other returns the counterparty of an edge from the viewer's perspective.
func other(f *models.Friendship, viewerID uint) *models.User {
	if f.RequesterID == viewerID {
		return &f.Addressee
	}
	return &f.Requester
}

func (s *friendService) ListFriends(ctx context.Context, viewerID uint, limit int, cursor string) (*models.FriendPage, error) {
	var cursorID *uint
	if cursor != "" {
		var c pagination.IDCursor
		if err := pagination.Decode(cursor, &c); err != nil {
			return nil, err
		}
		cursorID = &c.ID
	}

	friendships, err := s.friendRepo.ListAccepted(ctx, viewerID, limit+1, cursorID)
	if err != nil {
		return nil, err
	}
	total, err := s.friendRepo.CountAccepted(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	page := pagination.Paginate(friendships, limit)

	friendIDs := make([]uint, 0, len(page.Items))
	for i := range page.Items {
		friendIDs = append(friendIDs, other(&page.Items[i], viewerID).ID)
	}

	// Each friend's snippet count is scoped to that friend alone.
	counts, err := s.snippetRepo.CountByOwners(ctx, friendIDs)
	if err != nil {
		return nil, err
	}
	recent, err := s.snippetRepo.RecentByOwners(ctx, friendIDs, recentSnippetsPerFriend)
	if err != nil {
		return nil, err
	}

	items := make([]models.FriendView, 0, len(page.Items))
	for i := range page.Items {
		f := &page.Items[i]
		friend := other(f, viewerID)
		items = append(items, models.FriendView{
			User:              friend.Public(),
			RequestStatus:     f.Status,
			RequestAcceptedAt: f.AcceptedAt,
			FriendshipID:      f.ID,
			SnippetsCount:     counts[friend.ID],
			RecentSnippets:    recent[friend.ID],
		})
	}

	result := &models.FriendPage{Items: items, Total: total}
	if page.NextCursor != nil {
		token, err := pagination.Encode(pagination.IDCursor{ID: page.NextCursor.ID})
		if err != nil {
			return nil, err
		}
		result.NextCursor = &token
	}
	return result, nil
}

func (s *friendService) ListInbox(ctx context.Context, viewerID uint, limit int, cursor string, query string) (*models.RequestPage, error) {
	return s.listPending(ctx, viewerID, limit, cursor, query, true)
}

func (s *friendService) ListOutbox(ctx context.Context, viewerID uint, limit int, cursor string, query string) (*models.RequestPage, error) {
	return s.listPending(ctx, viewerID, limit, cursor, query, false)
}

func (s *friendService) listPending(ctx context.Context, viewerID uint, limit int, cursor string, query string, inbox bool) (*models.RequestPage, error) {
	var cursorID *uint
	if cursor != "" {
		var c pagination.IDCursor
		if err := pagination.Decode(cursor, &c); err != nil {
			return nil, err
		}
		cursorID = &c.ID
	}

	var (
		friendships []models.Friendship
		total       int64
		err         error
	)
	if inbox {
		friendships, err = s.friendRepo.ListInbox(ctx, viewerID, limit+1, cursorID, query)
		if err == nil {
			total, err = s.friendRepo.CountInbox(ctx, viewerID, query)
		}
	} else {
		friendships, err = s.friendRepo.ListOutbox(ctx, viewerID, limit+1, cursorID, query)
		if err == nil {
			total, err = s.friendRepo.CountOutbox(ctx, viewerID, query)
		}
	}
	if err != nil {
		return nil, err
	}

	page := pagination.Paginate(friendships, limit)

	peerIDs := make([]uint, 0, len(page.Items))
	for i := range page.Items {
		peerIDs = append(peerIDs, other(&page.Items[i], viewerID).ID)
	}
	counts, err := s.snippetRepo.CountByOwners(ctx, peerIDs)
	if err != nil {
		return nil, err
	}

	items := make([]models.FriendRequestView, 0, len(page.Items))
	for i := range page.Items {
		f := &page.Items[i]
		peer := other(f, viewerID)
		items = append(items, models.FriendRequestView{
			User:          peer.Public(),
			RequestStatus: f.Status,
			RequestSentAt: f.CreatedAt,
			SnippetsCount: counts[peer.ID],
		})
	}

	result := &models.RequestPage{Items: items, Total: total}
	if page.NextCursor != nil {
		// Inbox/outbox order and resume on the counterparty's id.
		peer := other(page.NextCursor, viewerID)
		token, err := pagination.Encode(pagination.IDCursor{ID: peer.ID})
		if err != nil {
			return nil, err
		}
		result.NextCursor = &token
	}
	return result, nil
}
