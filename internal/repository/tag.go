package repository

import (
	"context"

	"snippetly/internal/cache"
	"snippetly/internal/models"

	"gorm.io/gorm"
)

// TagRepository defines the interface for tag data operations
type TagRepository interface {
	FindOrCreate(ctx context.Context, names []string) ([]models.Tag, error)
	ListWithCounts(ctx context.Context) ([]models.Tag, error)
}

// tagRepository implements TagRepository
type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new tag repository
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) FindOrCreate(ctx context.Context, names []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		var tag models.Tag
		if err := r.db.WithContext(ctx).
			Where("name = ?", name).
			FirstOrCreate(&tag, models.Tag{Name: name}).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
		tags = append(tags, tag)
	}
	if len(tags) > 0 {
		cache.InvalidateTags(ctx)
	}
	return tags, nil
}

// ListWithCounts returns every tag with the number of public snippets using
// it, most used first. The whole list is small enough to cache as one blob.
func (r *tagRepository) ListWithCounts(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	err := cache.Aside(ctx, cache.TagListKey, &tags, cache.TagListTTL, func() error {
		if err := r.db.WithContext(ctx).
			Model(&models.Tag{}).
			Select("tags.*, COUNT(snippets.id) as snippets_count").
			Joins("LEFT JOIN snippet_tags ON snippet_tags.tag_id = tags.id").
			Joins("LEFT JOIN snippets ON snippets.id = snippet_tags.snippet_id AND snippets.public = ? AND snippets.deleted_at IS NULL", true).
			Group("tags.id").
			Order("snippets_count DESC, tags.name ASC").
			Scan(&tags).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}
