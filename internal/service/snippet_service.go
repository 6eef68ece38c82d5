package service

import (
	"context"
	"fmt"
	"strings"

	"snippetly/internal/models"
	"snippetly/internal/pagination"
	"snippetly/internal/repository"
	"snippetly/internal/validation"

	"github.com/gosimple/slug"
)

// SnippetInput carries the writable snippet fields.
type SnippetInput struct {
	Title        string   `json:"title"`
	Language     string   `json:"language"`
	Code         string   `json:"code"`
	Description  string   `json:"description"`
	Public       bool     `json:"public"`
	CollectionID *uint    `json:"collection_id"`
	Tags         []string `json:"tags"`
}

// SnippetService defines the interface for snippet business logic
type SnippetService interface {
	Create(ctx context.Context, ownerID uint, input SnippetInput) (*models.Snippet, error)
	GetForViewer(ctx context.Context, viewerID uint, ownerName, snippetSlug string) (*models.Snippet, string, error)
	Update(ctx context.Context, ownerID uint, snippetID uint, input SnippetInput) (*models.Snippet, error)
	Delete(ctx context.Context, ownerID uint, snippetID uint) error
	ListForViewer(ctx context.Context, viewerID uint, ownerName string, limit int, cursor string) (*models.SnippetPage, string, error)
	ListPublic(ctx context.Context, limit int, cursor string, query string) (*models.SnippetPage, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
}

// snippetService implements SnippetService
type snippetService struct {
	snippetRepo    repository.SnippetRepository
	collectionRepo repository.CollectionRepository
	tagRepo        repository.TagRepository
	userService    UserService
}

// NewSnippetService creates a new snippet service
func NewSnippetService(snippetRepo repository.SnippetRepository, collectionRepo repository.CollectionRepository, tagRepo repository.TagRepository, userService UserService) SnippetService {
	return &snippetService{
		snippetRepo:    snippetRepo,
		collectionRepo: collectionRepo,
		tagRepo:        tagRepo,
		userService:    userService,
	}
}

// uniqueSlug derives a slug from title, appending "-2", "-3", ... while the
// owner already uses it. Uniqueness is per owner, not global.
func uniqueSlug(existing []string, title string) string {
	base := slug.Make(title)
	taken := make(map[string]bool, len(existing))
	for _, s := range existing {
		taken[s] = true
	}
	if !taken[base] {
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if !taken[candidate] {
			return candidate
		}
	}
}

func (s *snippetService) validateInput(input *SnippetInput) error {
	input.Title = strings.TrimSpace(input.Title)
	input.Language = strings.TrimSpace(input.Language)
	if err := validation.ValidateSnippetTitle(input.Title); err != nil {
		return models.NewValidationError(err.Error())
	}
	if err := validation.ValidateLanguage(input.Language); err != nil {
		return models.NewValidationError(err.Error())
	}
	if strings.TrimSpace(input.Code) == "" {
		return models.NewValidationError("Code must not be empty")
	}
	return nil
}

// checkCollection verifies the target collection exists and belongs to the owner.
func (s *snippetService) checkCollection(ctx context.Context, ownerID uint, collectionID *uint) error {
	if collectionID == nil {
		return nil
	}
	collection, err := s.collectionRepo.GetByID(ctx, *collectionID)
	if err != nil {
		return err
	}
	if collection.UserID != ownerID {
		return models.NewValidationError("Collection does not belong to you")
	}
	return nil
}

func normalizeTags(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

func (s *snippetService) Create(ctx context.Context, ownerID uint, input SnippetInput) (*models.Snippet, error) {
	if err := s.validateInput(&input); err != nil {
		return nil, err
	}
	if err := s.checkCollection(ctx, ownerID, input.CollectionID); err != nil {
		return nil, err
	}

	base := slug.Make(input.Title)
	existing, err := s.snippetRepo.SlugsLike(ctx, ownerID, base)
	if err != nil {
		return nil, err
	}

	snippet := &models.Snippet{
		Title:        input.Title,
		Slug:         uniqueSlug(existing, input.Title),
		Language:     input.Language,
		Code:         input.Code,
		Description:  input.Description,
		Public:       input.Public,
		UserID:       ownerID,
		CollectionID: input.CollectionID,
	}
	if err := s.snippetRepo.Create(ctx, snippet); err != nil {
		return nil, err
	}

	if names := normalizeTags(input.Tags); len(names) > 0 {
		tags, err := s.tagRepo.FindOrCreate(ctx, names)
		if err != nil {
			return nil, err
		}
		if err := s.snippetRepo.ReplaceTags(ctx, snippet, tags); err != nil {
			return nil, err
		}
		snippet.Tags = tags
	}

	return snippet, nil
}

// GetForViewer fetches a snippet by owner name and slug, applying visibility:
// private snippets are only visible to their owner. Historical owner names
// produce a redirect signal like everywhere else names resolve.
func (s *snippetService) GetForViewer(ctx context.Context, viewerID uint, ownerName, snippetSlug string) (*models.Snippet, string, error) {
	res, err := s.userService.ResolveName(ctx, ownerName)
	if err != nil {
		return nil, "", err
	}
	if res.RenamedTo != "" {
		return nil, res.RenamedTo, nil
	}

	snippet, err := s.snippetRepo.GetBySlug(ctx, res.User.ID, snippetSlug)
	if err != nil {
		return nil, "", err
	}
	if !snippet.Public && snippet.UserID != viewerID {
		// Hide existence of private snippets from non-owners
		return nil, "", models.NewNotFoundError("Snippet not found")
	}
	return snippet, "", nil
}

func (s *snippetService) getOwned(ctx context.Context, ownerID, snippetID uint) (*models.Snippet, error) {
	snippet, err := s.snippetRepo.GetByID(ctx, snippetID)
	if err != nil {
		return nil, err
	}
	if snippet.UserID != ownerID {
		return nil, models.NewNotFoundError("Snippet not found")
	}
	return snippet, nil
}

func (s *snippetService) Update(ctx context.Context, ownerID uint, snippetID uint, input SnippetInput) (*models.Snippet, error) {
	snippet, err := s.getOwned(ctx, ownerID, snippetID)
	if err != nil {
		return nil, err
	}
	if err := s.validateInput(&input); err != nil {
		return nil, err
	}
	if err := s.checkCollection(ctx, ownerID, input.CollectionID); err != nil {
		return nil, err
	}

	// The slug follows the title so shared links break only on rename.
	if input.Title != snippet.Title {
		base := slug.Make(input.Title)
		existing, err := s.snippetRepo.SlugsLike(ctx, ownerID, base)
		if err != nil {
			return nil, err
		}
		snippet.Slug = uniqueSlug(existing, input.Title)
	}

	snippet.Title = input.Title
	snippet.Language = input.Language
	snippet.Code = input.Code
	snippet.Description = input.Description
	snippet.Public = input.Public
	snippet.CollectionID = input.CollectionID

	if err := s.snippetRepo.Update(ctx, snippet); err != nil {
		return nil, err
	}

	tags, err := s.tagRepo.FindOrCreate(ctx, normalizeTags(input.Tags))
	if err != nil {
		return nil, err
	}
	if err := s.snippetRepo.ReplaceTags(ctx, snippet, tags); err != nil {
		return nil, err
	}
	snippet.Tags = tags

	return snippet, nil
}

func (s *snippetService) Delete(ctx context.Context, ownerID uint, snippetID uint) error {
	snippet, err := s.getOwned(ctx, ownerID, snippetID)
	if err != nil {
		return err
	}
	return s.snippetRepo.Delete(ctx, snippet)
}

// cursorArgs converts a decoded wire cursor into the repository's keyset shape.
func cursorArgs(c *pagination.TimeCursor) *repository.TimeCursorArgs {
	if c == nil {
		return nil
	}
	return &repository.TimeCursorArgs{UpdatedAt: c.UpdatedAt, ID: c.ID}
}

func decodeTimeCursor(cursor string) (*pagination.TimeCursor, error) {
	if cursor == "" {
		return nil, nil
	}
	var c pagination.TimeCursor
	if err := pagination.Decode(cursor, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *snippetService) ListForViewer(ctx context.Context, viewerID uint, ownerName string, limit int, cursor string) (*models.SnippetPage, string, error) {
	res, err := s.userService.ResolveName(ctx, ownerName)
	if err != nil {
		return nil, "", err
	}
	if res.RenamedTo != "" {
		return nil, res.RenamedTo, nil
	}

	c, err := decodeTimeCursor(cursor)
	if err != nil {
		return nil, "", err
	}

	publicOnly := res.User.ID != viewerID

	snippets, err := s.snippetRepo.ListByOwner(ctx, res.User.ID, publicOnly, limit+1, cursorArgs(c))
	if err != nil {
		return nil, "", err
	}
	total, err := s.snippetRepo.CountByOwner(ctx, res.User.ID, publicOnly)
	if err != nil {
		return nil, "", err
	}

	page, err := buildSnippetPage(snippets, limit, total)
	if err != nil {
		return nil, "", err
	}
	return page, "", nil
}

func (s *snippetService) ListPublic(ctx context.Context, limit int, cursor string, query string) (*models.SnippetPage, error) {
	c, err := decodeTimeCursor(cursor)
	if err != nil {
		return nil, err
	}

	snippets, err := s.snippetRepo.ListPublic(ctx, limit+1, cursorArgs(c), query)
	if err != nil {
		return nil, err
	}
	total, err := s.snippetRepo.CountPublic(ctx, query)
	if err != nil {
		return nil, err
	}

	return buildSnippetPage(snippets, limit, total)
}

func (s *snippetService) ListTags(ctx context.Context) ([]models.Tag, error) {
	return s.tagRepo.ListWithCounts(ctx)
}

func buildSnippetPage(snippets []models.Snippet, limit int, total int64) (*models.SnippetPage, error) {
	page := pagination.Paginate(snippets, limit)

	items := make([]models.PublicSnippet, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, page.Items[i].PublicView())
	}

	result := &models.SnippetPage{Items: items, Total: total}
	if page.NextCursor != nil {
		token, err := pagination.Encode(pagination.TimeCursor{
			UpdatedAt: page.NextCursor.UpdatedAt,
			ID:        page.NextCursor.ID,
		})
		if err != nil {
			return nil, err
		}
		result.NextCursor = &token
	}
	return result, nil
}
