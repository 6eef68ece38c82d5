package service

import (
	"context"
	"testing"

	"snippetly/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collectionRepoStub struct {
	getByIDFn func(context.Context, uint) (*models.Collection, error)
}

func (s *collectionRepoStub) Create(context.Context, *models.Collection) error { return nil }
func (s *collectionRepoStub) GetByID(ctx context.Context, id uint) (*models.Collection, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return nil, models.NewNotFoundError("Collection not found")
}
func (s *collectionRepoStub) GetBySlug(context.Context, uint, string) (*models.Collection, error) {
	return nil, models.NewNotFoundError("Collection not found")
}
func (s *collectionRepoStub) SlugsLike(context.Context, uint, string) ([]string, error) {
	return nil, nil
}
func (s *collectionRepoStub) Update(context.Context, *models.Collection) error { return nil }
func (s *collectionRepoStub) Delete(context.Context, *models.Collection) error { return nil }
func (s *collectionRepoStub) ListByOwner(context.Context, uint, bool, int, *uint) ([]models.Collection, error) {
	return nil, nil
}
func (s *collectionRepoStub) CountByOwner(context.Context, uint, bool) (int64, error) {
	return 0, nil
}
func (s *collectionRepoStub) CountSnippets(context.Context, uint) (int64, error) { return 0, nil }

type tagRepoStub struct {
	findOrCreateFn func(context.Context, []string) ([]models.Tag, error)
}

func (s *tagRepoStub) FindOrCreate(ctx context.Context, names []string) ([]models.Tag, error) {
	if s.findOrCreateFn != nil {
		return s.findOrCreateFn(ctx, names)
	}
	tags := make([]models.Tag, 0, len(names))
	for i, name := range names {
		tags = append(tags, models.Tag{ID: uint(i + 1), Name: name})
	}
	return tags, nil
}
func (s *tagRepoStub) ListWithCounts(context.Context) ([]models.Tag, error) { return nil, nil }

func TestUniqueSlug(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "binary-search", uniqueSlug(nil, "Binary Search"))
	assert.Equal(t, "binary-search-2", uniqueSlug([]string{"binary-search"}, "Binary Search"))
	assert.Equal(t, "binary-search-3",
		uniqueSlug([]string{"binary-search", "binary-search-2"}, "Binary Search"))
	assert.Equal(t, "binary-search",
		uniqueSlug([]string{"binary-search-2"}, "Binary Search"))
	assert.Equal(t, "hello-world", uniqueSlug(nil, "  Hello, World!  "))
}

func TestNormalizeTags(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"go", "sql"}, normalizeTags([]string{" Go ", "SQL", "go"}))
	assert.Empty(t, normalizeTags([]string{"", "  "}))
	assert.Empty(t, normalizeTags(nil))
}

func newSnippetTestService(snippets *snippetRepoStub, collections *collectionRepoStub, tags *tagRepoStub) SnippetService {
	users := &namesUserService{
		users: map[string]*models.User{
			"alice": {ID: 1, Username: "alice"},
		},
		renames: map[string]string{"al": "alice"},
	}
	return NewSnippetService(snippets, collections, tags, users)
}

func TestSnippetService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns a deduplicated slug and tags", func(t *testing.T) {
		snippets := &snippetRepoStub{}
		snippets.slugsLikeFn = func(context.Context, uint, string) ([]string, error) {
			return []string{"quick-sort"}, nil
		}
		var created *models.Snippet
		snippets.createFn = func(_ context.Context, sn *models.Snippet) error {
			created = sn
			return nil
		}
		svc := newSnippetTestService(snippets, &collectionRepoStub{}, &tagRepoStub{})

		snippet, err := svc.Create(ctx, 1, SnippetInput{
			Title:    "Quick Sort",
			Language: "go",
			Code:     "func quickSort() {}",
			Tags:     []string{"Algorithms", " go "},
		})
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, "quick-sort-2", created.Slug)
		assert.Equal(t, uint(1), created.UserID)
		require.Len(t, snippet.Tags, 2)
		assert.Equal(t, "algorithms", snippet.Tags[0].Name)
		assert.Equal(t, "go", snippet.Tags[1].Name)
	})

	t.Run("rejects empty code", func(t *testing.T) {
		svc := newSnippetTestService(&snippetRepoStub{}, &collectionRepoStub{}, &tagRepoStub{})
		_, err := svc.Create(ctx, 1, SnippetInput{Title: "t t t", Language: "go", Code: "   "})
		assertAppErrorCode(t, err, "VALIDATION_ERROR")
	})

	t.Run("rejects a collection owned by someone else", func(t *testing.T) {
		colID := uint(4)
		collections := &collectionRepoStub{
			getByIDFn: func(context.Context, uint) (*models.Collection, error) {
				return &models.Collection{ID: colID, UserID: 99}, nil
			},
		}
		svc := newSnippetTestService(&snippetRepoStub{}, collections, &tagRepoStub{})

		_, err := svc.Create(ctx, 1, SnippetInput{
			Title: "t", Language: "go", Code: "x", CollectionID: &colID,
		})
		assertAppErrorCode(t, err, "VALIDATION_ERROR")
	})
}

func TestSnippetService_Update(t *testing.T) {
	ctx := context.Background()

	owned := func() *models.Snippet {
		return &models.Snippet{
			ID: 7, UserID: 1, Title: "Quick Sort", Slug: "quick-sort",
			Language: "go", Code: "old", Public: false,
		}
	}

	t.Run("keeps the slug when the title is unchanged", func(t *testing.T) {
		snippets := &snippetRepoStub{}
		snippets.getByIDFn = func(context.Context, uint) (*models.Snippet, error) { return owned(), nil }
		var updated *models.Snippet
		snippets.updateFn = func(_ context.Context, sn *models.Snippet) error {
			updated = sn
			return nil
		}
		svc := newSnippetTestService(snippets, &collectionRepoStub{}, &tagRepoStub{})

		_, err := svc.Update(ctx, 1, 7, SnippetInput{
			Title: "Quick Sort", Language: "go", Code: "new",
		})
		require.NoError(t, err)
		assert.Equal(t, "quick-sort", updated.Slug)
		assert.Equal(t, "new", updated.Code)
	})

	t.Run("regenerates the slug when the title changes", func(t *testing.T) {
		snippets := &snippetRepoStub{}
		snippets.getByIDFn = func(context.Context, uint) (*models.Snippet, error) { return owned(), nil }
		var updated *models.Snippet
		snippets.updateFn = func(_ context.Context, sn *models.Snippet) error {
			updated = sn
			return nil
		}
		svc := newSnippetTestService(snippets, &collectionRepoStub{}, &tagRepoStub{})

		_, err := svc.Update(ctx, 1, 7, SnippetInput{
			Title: "Merge Sort", Language: "go", Code: "new",
		})
		require.NoError(t, err)
		assert.Equal(t, "merge-sort", updated.Slug)
	})

	t.Run("someone else's snippet is invisible", func(t *testing.T) {
		snippets := &snippetRepoStub{}
		snippets.getByIDFn = func(context.Context, uint) (*models.Snippet, error) {
			sn := owned()
			sn.UserID = 42
			return sn, nil
		}
		svc := newSnippetTestService(snippets, &collectionRepoStub{}, &tagRepoStub{})

		_, err := svc.Update(ctx, 1, 7, SnippetInput{Title: "t", Language: "go", Code: "x"})
		assertAppErrorCode(t, err, "NOT_FOUND")
	})
}

func TestSnippetService_GetForViewer(t *testing.T) {
	ctx := context.Background()

	private := &models.Snippet{ID: 7, UserID: 1, Slug: "secret", Public: false}

	snippets := &snippetRepoStub{}
	snippets.getBySlugFn = func(_ context.Context, ownerID uint, slug string) (*models.Snippet, error) {
		if ownerID == 1 && slug == "secret" {
			return private, nil
		}
		return nil, models.NewNotFoundError("Snippet not found")
	}
	svc := newSnippetTestService(snippets, &collectionRepoStub{}, &tagRepoStub{})

	t.Run("owner sees their private snippet", func(t *testing.T) {
		snippet, renamedTo, err := svc.GetForViewer(ctx, 1, "alice", "secret")
		require.NoError(t, err)
		assert.Empty(t, renamedTo)
		assert.Equal(t, uint(7), snippet.ID)
	})

	t.Run("private snippets are hidden from others", func(t *testing.T) {
		_, _, err := svc.GetForViewer(ctx, 2, "alice", "secret")
		assertAppErrorCode(t, err, "NOT_FOUND")
	})

	t.Run("historical owner name signals redirect", func(t *testing.T) {
		snippet, renamedTo, err := svc.GetForViewer(ctx, 2, "al", "secret")
		require.NoError(t, err)
		assert.Nil(t, snippet)
		assert.Equal(t, "alice", renamedTo)
	})
}
