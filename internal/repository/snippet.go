package repository

import (
	"context"
	"errors"
	"time"

	"snippetly/internal/cache"
	"snippetly/internal/models"

	"gorm.io/gorm"
)

// SnippetRepository defines the interface for snippet data operations
type SnippetRepository interface {
	Create(ctx context.Context, snippet *models.Snippet) error
	GetByID(ctx context.Context, id uint) (*models.Snippet, error)
	GetBySlug(ctx context.Context, ownerID uint, slug string) (*models.Snippet, error)
	SlugsLike(ctx context.Context, ownerID uint, slugPrefix string) ([]string, error)
	Update(ctx context.Context, snippet *models.Snippet) error
	Delete(ctx context.Context, snippet *models.Snippet) error
	ReplaceTags(ctx context.Context, snippet *models.Snippet, tags []models.Tag) error
	ListByOwner(ctx context.Context, ownerID uint, publicOnly bool, limit int, cursor *TimeCursorArgs) ([]models.Snippet, error)
	CountByOwner(ctx context.Context, ownerID uint, publicOnly bool) (int64, error)
	ListPublic(ctx context.Context, limit int, cursor *TimeCursorArgs, query string) ([]models.Snippet, error)
	CountPublic(ctx context.Context, query string) (int64, error)
	CountByOwners(ctx context.Context, ownerIDs []uint) (map[uint]int64, error)
	RecentByOwners(ctx context.Context, ownerIDs []uint, perOwner int) (map[uint][]models.SnippetSummary, error)
}

// TimeCursorArgs carries a decoded (updated_at, id) keyset position.
type TimeCursorArgs struct {
	UpdatedAt time.Time
	ID        uint
}

// snippetRepository implements SnippetRepository
type snippetRepository struct {
	db *gorm.DB
}

// NewSnippetRepository creates a new snippet repository
func NewSnippetRepository(db *gorm.DB) SnippetRepository {
	return &snippetRepository{db: db}
}

func (r *snippetRepository) Create(ctx context.Context, snippet *models.Snippet) error {
	if err := r.db.WithContext(ctx).Create(snippet).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("A snippet with this slug already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *snippetRepository) GetByID(ctx context.Context, id uint) (*models.Snippet, error) {
	var snippet models.Snippet
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Tags").
		First(&snippet, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Snippet not found")
		}
		return nil, models.NewInternalError(err)
	}
	return &snippet, nil
}

func (r *snippetRepository) GetBySlug(ctx context.Context, ownerID uint, slug string) (*models.Snippet, error) {
	var snippet models.Snippet
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Tags").
		Where("user_id = ? AND slug = ?", ownerID, slug).
		First(&snippet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Snippet not found")
		}
		return nil, models.NewInternalError(err)
	}
	return &snippet, nil
}

// SlugsLike returns existing slugs for an owner that start with slugPrefix,
// used to pick a free numeric suffix when titles collide.
func (r *snippetRepository) SlugsLike(ctx context.Context, ownerID uint, slugPrefix string) ([]string, error) {
	var slugs []string
	if err := r.db.WithContext(ctx).
		Model(&models.Snippet{}).
		Where("user_id = ? AND slug LIKE ?", ownerID, slugPrefix+"%").
		Pluck("slug", &slugs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return slugs, nil
}

func (r *snippetRepository) Update(ctx context.Context, snippet *models.Snippet) error {
	if err := r.db.WithContext(ctx).Save(snippet).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("A snippet with this slug already exists")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateSnippet(ctx, snippet.ID)
	return nil
}

func (r *snippetRepository) Delete(ctx context.Context, snippet *models.Snippet) error {
	if err := r.db.WithContext(ctx).Delete(snippet).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateSnippet(ctx, snippet.ID)
	return nil
}

func (r *snippetRepository) ReplaceTags(ctx context.Context, snippet *models.Snippet, tags []models.Tag) error {
	if err := r.db.WithContext(ctx).Model(snippet).Association("Tags").Replace(tags); err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateTags(ctx)
	return nil
}

// applyTimeCursor adds the keyset condition for (updated_at DESC, id DESC) ordering.
func applyTimeCursor(q *gorm.DB, cursor *TimeCursorArgs) *gorm.DB {
	if cursor == nil {
		return q
	}
	return q.Where("(updated_at < ?) OR (updated_at = ? AND id < ?)",
		cursor.UpdatedAt, cursor.UpdatedAt, cursor.ID)
}

func (r *snippetRepository) ListByOwner(ctx context.Context, ownerID uint, publicOnly bool, limit int, cursor *TimeCursorArgs) ([]models.Snippet, error) {
	var snippets []models.Snippet

	q := r.db.WithContext(ctx).Where("user_id = ?", ownerID)
	if publicOnly {
		q = q.Where("public = ?", true)
	}
	q = applyTimeCursor(q, cursor)
	if err := q.
		Order("updated_at DESC, id DESC").
		Limit(limit).
		Preload("Tags").
		Find(&snippets).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return snippets, nil
}

func (r *snippetRepository) CountByOwner(ctx context.Context, ownerID uint, publicOnly bool) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Snippet{}).Where("user_id = ?", ownerID)
	if publicOnly {
		q = q.Where("public = ?", true)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *snippetRepository) ListPublic(ctx context.Context, limit int, cursor *TimeCursorArgs, query string) ([]models.Snippet, error) {
	var snippets []models.Snippet

	q := r.db.WithContext(ctx).Where("public = ?", true)
	if query != "" {
		q = q.Where("title LIKE ? OR language LIKE ?", "%"+query+"%", "%"+query+"%")
	}
	q = applyTimeCursor(q, cursor)
	if err := q.
		Order("updated_at DESC, id DESC").
		Limit(limit).
		Preload("User").
		Preload("Tags").
		Find(&snippets).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return snippets, nil
}

func (r *snippetRepository) CountPublic(ctx context.Context, query string) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Snippet{}).Where("public = ?", true)
	if query != "" {
		q = q.Where("title LIKE ? OR language LIKE ?", "%"+query+"%", "%"+query+"%")
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// ownerCount is a scan target for the grouped count query.
type ownerCount struct {
	UserID uint
	Count  int64
}

func (r *snippetRepository) CountByOwners(ctx context.Context, ownerIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return counts, nil
	}

	var rows []ownerCount
	if err := r.db.WithContext(ctx).
		Model(&models.Snippet{}).
		Select("user_id, COUNT(*) as count").
		Where("user_id IN ?", ownerIDs).
		Group("user_id").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, row := range rows {
		counts[row.UserID] = row.Count
	}
	return counts, nil
}

// RecentByOwners returns up to perOwner most recently updated snippets for
// each owner. One query fetches candidates; the per-owner trim happens here
// rather than with window functions so it works on every supported driver.
func (r *snippetRepository) RecentByOwners(ctx context.Context, ownerIDs []uint, perOwner int) (map[uint][]models.SnippetSummary, error) {
	recent := make(map[uint][]models.SnippetSummary, len(ownerIDs))
	if len(ownerIDs) == 0 || perOwner <= 0 {
		return recent, nil
	}

	var snippets []models.Snippet
	if err := r.db.WithContext(ctx).
		Where("user_id IN ?", ownerIDs).
		Order("updated_at DESC, id DESC").
		Find(&snippets).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	for _, s := range snippets {
		if len(recent[s.UserID]) >= perOwner {
			continue
		}
		recent[s.UserID] = append(recent[s.UserID], s.Summary())
	}
	return recent, nil
}
