package service

import (
	"context"
	"testing"
	"time"

	"snippetly/internal/models"
	"snippetly/internal/pagination"
	"snippetly/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type friendRepoStub struct {
	createFn          func(context.Context, *models.Friendship) error
	getByPairFn       func(context.Context, uint, uint) (*models.Friendship, error)
	getBetweenUsersFn func(context.Context, uint, uint) (*models.Friendship, error)
	transitionFn      func(context.Context, uint, models.FriendshipStatus, time.Time) error
	listAcceptedFn    func(context.Context, uint, int, *uint) ([]models.Friendship, error)
	countAcceptedFn   func(context.Context, uint) (int64, error)
	listInboxFn       func(context.Context, uint, int, *uint, string) ([]models.Friendship, error)
	countInboxFn      func(context.Context, uint, string) (int64, error)
	listOutboxFn      func(context.Context, uint, int, *uint, string) ([]models.Friendship, error)
	countOutboxFn     func(context.Context, uint, string) (int64, error)
}

func (s *friendRepoStub) Create(ctx context.Context, f *models.Friendship) error {
	return s.createFn(ctx, f)
}
func (s *friendRepoStub) GetByPair(ctx context.Context, requesterID, addresseeID uint) (*models.Friendship, error) {
	return s.getByPairFn(ctx, requesterID, addresseeID)
}
func (s *friendRepoStub) GetBetweenUsers(ctx context.Context, userID1, userID2 uint) (*models.Friendship, error) {
	return s.getBetweenUsersFn(ctx, userID1, userID2)
}
func (s *friendRepoStub) Transition(ctx context.Context, id uint, status models.FriendshipStatus, at time.Time) error {
	return s.transitionFn(ctx, id, status, at)
}
func (s *friendRepoStub) ListAccepted(ctx context.Context, viewerID uint, limit int, cursorID *uint) ([]models.Friendship, error) {
	return s.listAcceptedFn(ctx, viewerID, limit, cursorID)
}
func (s *friendRepoStub) CountAccepted(ctx context.Context, viewerID uint) (int64, error) {
	return s.countAcceptedFn(ctx, viewerID)
}
func (s *friendRepoStub) ListInbox(ctx context.Context, viewerID uint, limit int, cursorID *uint, query string) ([]models.Friendship, error) {
	return s.listInboxFn(ctx, viewerID, limit, cursorID, query)
}
func (s *friendRepoStub) CountInbox(ctx context.Context, viewerID uint, query string) (int64, error) {
	return s.countInboxFn(ctx, viewerID, query)
}
func (s *friendRepoStub) ListOutbox(ctx context.Context, viewerID uint, limit int, cursorID *uint, query string) ([]models.Friendship, error) {
	return s.listOutboxFn(ctx, viewerID, limit, cursorID, query)
}
func (s *friendRepoStub) CountOutbox(ctx context.Context, viewerID uint, query string) (int64, error) {
	return s.countOutboxFn(ctx, viewerID, query)
}

func noopFriendRepo() *friendRepoStub {
	return &friendRepoStub{
		createFn:          func(context.Context, *models.Friendship) error { return nil },
		getByPairFn:       func(context.Context, uint, uint) (*models.Friendship, error) { return nil, nil },
		getBetweenUsersFn: func(context.Context, uint, uint) (*models.Friendship, error) { return nil, nil },
		transitionFn: func(context.Context, uint, models.FriendshipStatus, time.Time) error {
			return nil
		},
		listAcceptedFn: func(context.Context, uint, int, *uint) ([]models.Friendship, error) {
			return nil, nil
		},
		countAcceptedFn: func(context.Context, uint) (int64, error) { return 0, nil },
		listInboxFn: func(context.Context, uint, int, *uint, string) ([]models.Friendship, error) {
			return nil, nil
		},
		countInboxFn: func(context.Context, uint, string) (int64, error) { return 0, nil },
		listOutboxFn: func(context.Context, uint, int, *uint, string) ([]models.Friendship, error) {
			return nil, nil
		},
		countOutboxFn: func(context.Context, uint, string) (int64, error) { return 0, nil },
	}
}

type snippetRepoStub struct {
	createFn         func(context.Context, *models.Snippet) error
	getByIDFn        func(context.Context, uint) (*models.Snippet, error)
	getBySlugFn      func(context.Context, uint, string) (*models.Snippet, error)
	slugsLikeFn      func(context.Context, uint, string) ([]string, error)
	updateFn         func(context.Context, *models.Snippet) error
	countByOwnersFn  func(context.Context, []uint) (map[uint]int64, error)
	recentByOwnersFn func(context.Context, []uint, int) (map[uint][]models.SnippetSummary, error)
}

func (s *snippetRepoStub) Create(ctx context.Context, sn *models.Snippet) error {
	if s.createFn != nil {
		return s.createFn(ctx, sn)
	}
	return nil
}
func (s *snippetRepoStub) GetByID(ctx context.Context, id uint) (*models.Snippet, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return nil, models.NewNotFoundError("Snippet not found")
}
func (s *snippetRepoStub) GetBySlug(ctx context.Context, ownerID uint, slug string) (*models.Snippet, error) {
	if s.getBySlugFn != nil {
		return s.getBySlugFn(ctx, ownerID, slug)
	}
	return nil, models.NewNotFoundError("Snippet not found")
}
func (s *snippetRepoStub) SlugsLike(ctx context.Context, ownerID uint, prefix string) ([]string, error) {
	if s.slugsLikeFn != nil {
		return s.slugsLikeFn(ctx, ownerID, prefix)
	}
	return nil, nil
}
func (s *snippetRepoStub) Update(ctx context.Context, sn *models.Snippet) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, sn)
	}
	return nil
}
func (s *snippetRepoStub) Delete(context.Context, *models.Snippet) error { return nil }
func (s *snippetRepoStub) ReplaceTags(context.Context, *models.Snippet, []models.Tag) error {
	return nil
}
func (s *snippetRepoStub) ListByOwner(context.Context, uint, bool, int, *repository.TimeCursorArgs) ([]models.Snippet, error) {
	return nil, nil
}
func (s *snippetRepoStub) CountByOwner(context.Context, uint, bool) (int64, error) { return 0, nil }
func (s *snippetRepoStub) ListPublic(context.Context, int, *repository.TimeCursorArgs, string) ([]models.Snippet, error) {
	return nil, nil
}
func (s *snippetRepoStub) CountPublic(context.Context, string) (int64, error) { return 0, nil }
func (s *snippetRepoStub) CountByOwners(ctx context.Context, ownerIDs []uint) (map[uint]int64, error) {
	if s.countByOwnersFn != nil {
		return s.countByOwnersFn(ctx, ownerIDs)
	}
	return map[uint]int64{}, nil
}
func (s *snippetRepoStub) RecentByOwners(ctx context.Context, ownerIDs []uint, perOwner int) (map[uint][]models.SnippetSummary, error) {
	if s.recentByOwnersFn != nil {
		return s.recentByOwnersFn(ctx, ownerIDs, perOwner)
	}
	return map[uint][]models.SnippetSummary{}, nil
}

// namesUserService resolves from a fixed name table plus a rename table.
type namesUserService struct {
	users   map[string]*models.User
	renames map[string]string
}

func (s *namesUserService) GetByID(_ context.Context, id uint) (*models.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, models.NewNotFoundError("User not found")
}
func (s *namesUserService) ResolveName(_ context.Context, name string) (*NameResolution, error) {
	if u, ok := s.users[name]; ok {
		return &NameResolution{User: u}, nil
	}
	if to, ok := s.renames[name]; ok {
		return &NameResolution{RenamedTo: to}, nil
	}
	return nil, models.NewNotFoundError("User not found")
}
func (s *namesUserService) GetProfile(context.Context, string) (*models.PublicProfile, string, error) {
	return nil, "", nil
}
func (s *namesUserService) UpdateProfile(context.Context, uint, ProfileUpdates) (*models.User, error) {
	return nil, nil
}
func (s *namesUserService) ListUsers(context.Context, int, string, string) (*models.UserPage, error) {
	return nil, nil
}

func twoUsers() *namesUserService {
	return &namesUserService{
		users: map[string]*models.User{
			"alice": {ID: 1, Username: "alice"},
			"bob":   {ID: 2, Username: "bob"},
		},
		renames: map[string]string{"bobby": "bob"},
	}
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok, "expected *models.AppError, got %T", err)
	assert.Equal(t, code, appErr.Code)
}

func TestFriendService_SendRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending edge requester to addressee", func(t *testing.T) {
		repo := noopFriendRepo()
		var created *models.Friendship
		repo.createFn = func(_ context.Context, f *models.Friendship) error {
			created = f
			return nil
		}
		svc := NewFriendService(repo, &snippetRepoStub{}, twoUsers())

		friendship, renamedTo, err := svc.SendRequest(ctx, 1, "bob")
		require.NoError(t, err)
		assert.Empty(t, renamedTo)
		require.NotNil(t, created)
		assert.Equal(t, uint(1), created.RequesterID)
		assert.Equal(t, uint(2), created.AddresseeID)
		assert.Equal(t, models.FriendshipStatusPending, friendship.Status)
	})

	t.Run("self target is rejected", func(t *testing.T) {
		svc := NewFriendService(noopFriendRepo(), &snippetRepoStub{}, twoUsers())
		_, _, err := svc.SendRequest(ctx, 1, "alice")
		assertAppErrorCode(t, err, "VALIDATION_ERROR")
	})

	t.Run("unknown name is not found", func(t *testing.T) {
		svc := NewFriendService(noopFriendRepo(), &snippetRepoStub{}, twoUsers())
		_, _, err := svc.SendRequest(ctx, 1, "stranger")
		assertAppErrorCode(t, err, "NOT_FOUND")
	})

	t.Run("historical name signals redirect without creating", func(t *testing.T) {
		repo := noopFriendRepo()
		created := false
		repo.createFn = func(context.Context, *models.Friendship) error {
			created = true
			return nil
		}
		svc := NewFriendService(repo, &snippetRepoStub{}, twoUsers())

		friendship, renamedTo, err := svc.SendRequest(ctx, 1, "bobby")
		require.NoError(t, err)
		assert.Equal(t, "bob", renamedTo)
		assert.Nil(t, friendship)
		assert.False(t, created)
	})

	t.Run("existing edge in either direction conflicts", func(t *testing.T) {
		for _, existing := range []*models.Friendship{
			{ID: 7, RequesterID: 1, AddresseeID: 2, Status: models.FriendshipStatusPending},
			{ID: 8, RequesterID: 2, AddresseeID: 1, Status: models.FriendshipStatusPending},
			{ID: 9, RequesterID: 1, AddresseeID: 2, Status: models.FriendshipStatusCancelled},
		} {
			repo := noopFriendRepo()
			repo.getBetweenUsersFn = func(context.Context, uint, uint) (*models.Friendship, error) {
				return existing, nil
			}
			svc := NewFriendService(repo, &snippetRepoStub{}, twoUsers())

			_, _, err := svc.SendRequest(ctx, 1, "bob")
			assertAppErrorCode(t, err, "CONFLICT")
		}
	})
}

func TestFriendService_Transitions(t *testing.T) {
	ctx := context.Background()

	pendingEdge := func() *models.Friendship {
		return &models.Friendship{ID: 10, RequesterID: 1, AddresseeID: 2, Status: models.FriendshipStatusPending}
	}

	t.Run("accept looks up edge with target as requester", func(t *testing.T) {
		repo := noopFriendRepo()
		var gotRequester, gotAddressee uint
		repo.getByPairFn = func(_ context.Context, requesterID, addresseeID uint) (*models.Friendship, error) {
			gotRequester, gotAddressee = requesterID, addresseeID
			return pendingEdge(), nil
		}
		svc := NewFriendService(repo, &snippetRepoStub{}, twoUsers())

		// bob (id 2) accepts alice's request
		friendship, _, err := svc.AcceptRequest(ctx, 2, "alice")
		require.NoError(t, err)
		assert.Equal(t, uint(1), gotRequester)
		assert.Equal(t, uint(2), gotAddressee)
		assert.Equal(t, models.FriendshipStatusAccepted, friendship.Status)
		assert.NotNil(t, friendship.AcceptedAt)
		assert.Nil(t, friendship.RejectedAt)
	})

	t.Run("cancel looks up edge with actor as requester", func(t *testing.T) {
		repo := noopFriendRepo()
		var gotRequester, gotAddressee uint
		repo.getByPairFn = func(_ context.Context, requesterID, addresseeID uint) (*models.Friendship, error) {
			gotRequester, gotAddressee = requesterID, addresseeID
			return pendingEdge(), nil
		}
		svc := NewFriendService(repo, &snippetRepoStub{}, twoUsers())

		// alice (id 1) cancels her own request to bob
		friendship, _, err := svc.CancelRequest(ctx, 1, "bob")
		require.NoError(t, err)
		assert.Equal(t, uint(1), gotRequester)
		assert.Equal(t, uint(2), gotAddressee)
		assert.Equal(t, models.FriendshipStatusCancelled, friendship.Status)
		assert.NotNil(t, friendship.CancelledAt)
	})

	t.Run("reject stamps rejectedAt", func(t *testing.T) {
		repo := noopFriendRepo()
		repo.getByPairFn = func(context.Context, uint, uint) (*models.Friendship, error) {
			return pendingEdge(), nil
		}
		svc := NewFriendService(repo, &snippetRepoStub{}, twoUsers())

		friendship, _, err := svc.RejectRequest(ctx, 2, "alice")
		require.NoError(t, err)
		assert.Equal(t, models.FriendshipStatusRejected, friendship.Status)
		assert.NotNil(t, friendship.RejectedAt)
	})

	t.Run("missing edge is a bad request", func(t *testing.T) {
		svc := NewFriendService(noopFriendRepo(), &snippetRepoStub{}, twoUsers())
		_, _, err := svc.AcceptRequest(ctx, 2, "alice")
		assertAppErrorCode(t, err, "VALIDATION_ERROR")
	})

	t.Run("non-pending edge conflicts", func(t *testing.T) {
		repo := noopFriendRepo()
		repo.getByPairFn = func(context.Context, uint, uint) (*models.Friendship, error) {
			now := time.Now()
			return &models.Friendship{
				ID: 10, RequesterID: 1, AddresseeID: 2,
				Status: models.FriendshipStatusAccepted, AcceptedAt: &now,
			}, nil
		}
		svc := NewFriendService(repo, &snippetRepoStub{}, twoUsers())

		_, _, err := svc.RejectRequest(ctx, 2, "alice")
		assertAppErrorCode(t, err, "CONFLICT")

		transitioned := false
		repo.transitionFn = func(context.Context, uint, models.FriendshipStatus, time.Time) error {
			transitioned = true
			return nil
		}
		_, _, _ = svc.RejectRequest(ctx, 2, "alice")
		assert.False(t, transitioned)
	})

	t.Run("historical name signals redirect", func(t *testing.T) {
		svc := NewFriendService(noopFriendRepo(), &snippetRepoStub{}, twoUsers())
		_, renamedTo, err := svc.CancelRequest(ctx, 1, "bobby")
		require.NoError(t, err)
		assert.Equal(t, "bob", renamedTo)
	})
}

func TestFriendService_ListFriends(t *testing.T) {
	ctx := context.Background()
	users := twoUsers()

	edges := func(n int, viewerID uint) []models.Friendship {
		out := make([]models.Friendship, 0, n)
		for i := 0; i < n; i++ {
			peerID := uint(100 + i)
			out = append(out, models.Friendship{
				ID:          uint(50 - i), // descending ids, newest first
				RequesterID: viewerID,
				AddresseeID: peerID,
				Status:      models.FriendshipStatusAccepted,
				Addressee:   models.User{ID: peerID, Username: "peer"},
				Requester:   models.User{ID: viewerID, Username: "alice"},
			})
		}
		return out
	}

	t.Run("full page yields next cursor from last kept row", func(t *testing.T) {
		repo := noopFriendRepo()
		var gotLimit int
		repo.listAcceptedFn = func(_ context.Context, _ uint, limit int, _ *uint) ([]models.Friendship, error) {
			gotLimit = limit
			return edges(4, 1), nil // one more than requested limit of 3
		}
		repo.countAcceptedFn = func(context.Context, uint) (int64, error) { return 9, nil }
		svc := NewFriendService(repo, &snippetRepoStub{}, users)

		page, err := svc.ListFriends(ctx, 1, 3, "")
		require.NoError(t, err)
		assert.Equal(t, 4, gotLimit, "service should overfetch by one")
		assert.Len(t, page.Items, 3)
		assert.EqualValues(t, 9, page.Total)

		require.NotNil(t, page.NextCursor)
		var c pagination.IDCursor
		require.NoError(t, pagination.Decode(*page.NextCursor, &c))
		assert.Equal(t, uint(48), c.ID, "cursor must be the last kept edge, not the probe row")
	})

	t.Run("short page has no next cursor", func(t *testing.T) {
		repo := noopFriendRepo()
		repo.listAcceptedFn = func(context.Context, uint, int, *uint) ([]models.Friendship, error) {
			return edges(2, 1), nil
		}
		repo.countAcceptedFn = func(context.Context, uint) (int64, error) { return 2, nil }
		svc := NewFriendService(repo, &snippetRepoStub{}, users)

		page, err := svc.ListFriends(ctx, 1, 5, "")
		require.NoError(t, err)
		assert.Len(t, page.Items, 2)
		assert.Nil(t, page.NextCursor)
	})

	t.Run("snippet counts scoped per friend", func(t *testing.T) {
		repo := noopFriendRepo()
		repo.listAcceptedFn = func(context.Context, uint, int, *uint) ([]models.Friendship, error) {
			return edges(2, 1), nil
		}
		repo.countAcceptedFn = func(context.Context, uint) (int64, error) { return 2, nil }

		snippets := &snippetRepoStub{
			countByOwnersFn: func(_ context.Context, ownerIDs []uint) (map[uint]int64, error) {
				assert.ElementsMatch(t, []uint{100, 101}, ownerIDs)
				return map[uint]int64{100: 7, 101: 1}, nil
			},
			recentByOwnersFn: func(_ context.Context, _ []uint, perOwner int) (map[uint][]models.SnippetSummary, error) {
				assert.Equal(t, 3, perOwner)
				return map[uint][]models.SnippetSummary{
					100: {{Title: "a"}, {Title: "b"}},
				}, nil
			},
		}
		svc := NewFriendService(repo, snippets, users)

		page, err := svc.ListFriends(ctx, 1, 5, "")
		require.NoError(t, err)
		require.Len(t, page.Items, 2)
		assert.EqualValues(t, 7, page.Items[0].SnippetsCount)
		assert.Len(t, page.Items[0].RecentSnippets, 2)
		assert.EqualValues(t, 1, page.Items[1].SnippetsCount)
		assert.Empty(t, page.Items[1].RecentSnippets)
	})

	t.Run("bad cursor is a validation error", func(t *testing.T) {
		svc := NewFriendService(noopFriendRepo(), &snippetRepoStub{}, users)
		_, err := svc.ListFriends(ctx, 1, 5, "not-a-cursor!!!")
		assertAppErrorCode(t, err, "VALIDATION_ERROR")
	})
}

func TestFriendService_ListInbox(t *testing.T) {
	ctx := context.Background()
	users := twoUsers()

	t.Run("views carry counterparty and sent time", func(t *testing.T) {
		sent := time.Now().Add(-time.Hour)
		repo := noopFriendRepo()
		repo.listInboxFn = func(context.Context, uint, int, *uint, string) ([]models.Friendship, error) {
			return []models.Friendship{{
				ID: 3, RequesterID: 9, AddresseeID: 1,
				Status:    models.FriendshipStatusPending,
				CreatedAt: sent,
				Requester: models.User{ID: 9, Username: "sender"},
			}}, nil
		}
		repo.countInboxFn = func(context.Context, uint, string) (int64, error) { return 1, nil }
		svc := NewFriendService(repo, &snippetRepoStub{}, users)

		page, err := svc.ListInbox(ctx, 1, 10, "", "")
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "sender", page.Items[0].User.Username)
		assert.Equal(t, models.FriendshipStatusPending, page.Items[0].RequestStatus)
		assert.WithinDuration(t, sent, page.Items[0].RequestSentAt, time.Second)
	})

	t.Run("next cursor is the counterparty id", func(t *testing.T) {
		repo := noopFriendRepo()
		repo.listInboxFn = func(_ context.Context, _ uint, limit int, _ *uint, _ string) ([]models.Friendship, error) {
			out := make([]models.Friendship, 0, limit)
			for i := 0; i < limit; i++ {
				peerID := uint(200 - i)
				out = append(out, models.Friendship{
					ID: uint(300 + i), RequesterID: peerID, AddresseeID: 1,
					Status:    models.FriendshipStatusPending,
					Requester: models.User{ID: peerID},
				})
			}
			return out, nil
		}
		repo.countInboxFn = func(context.Context, uint, string) (int64, error) { return 10, nil }
		svc := NewFriendService(repo, &snippetRepoStub{}, users)

		page, err := svc.ListInbox(ctx, 1, 2, "", "")
		require.NoError(t, err)
		require.NotNil(t, page.NextCursor)

		var c pagination.IDCursor
		require.NoError(t, pagination.Decode(*page.NextCursor, &c))
		assert.Equal(t, uint(199), c.ID)
	})

	t.Run("query passes through to repository", func(t *testing.T) {
		repo := noopFriendRepo()
		var gotQuery string
		repo.listOutboxFn = func(_ context.Context, _ uint, _ int, _ *uint, query string) ([]models.Friendship, error) {
			gotQuery = query
			return nil, nil
		}
		svc := NewFriendService(repo, &snippetRepoStub{}, users)

		_, err := svc.ListOutbox(ctx, 1, 10, "", "ali")
		require.NoError(t, err)
		assert.Equal(t, "ali", gotQuery)
	})
}
