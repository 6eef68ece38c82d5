package repository

import (
	"context"
	"errors"

	"snippetly/internal/models"

	"gorm.io/gorm"
)

// CollectionRepository defines the interface for collection data operations
type CollectionRepository interface {
	Create(ctx context.Context, collection *models.Collection) error
	GetByID(ctx context.Context, id uint) (*models.Collection, error)
	GetBySlug(ctx context.Context, ownerID uint, slug string) (*models.Collection, error)
	SlugsLike(ctx context.Context, ownerID uint, slugPrefix string) ([]string, error)
	Update(ctx context.Context, collection *models.Collection) error
	Delete(ctx context.Context, collection *models.Collection) error
	ListByOwner(ctx context.Context, ownerID uint, publicOnly bool, limit int, cursorID *uint) ([]models.Collection, error)
	CountByOwner(ctx context.Context, ownerID uint, publicOnly bool) (int64, error)
	CountSnippets(ctx context.Context, collectionID uint) (int64, error)
}

// collectionRepository implements CollectionRepository
type collectionRepository struct {
	db *gorm.DB
}

// NewCollectionRepository creates a new collection repository
func NewCollectionRepository(db *gorm.DB) CollectionRepository {
	return &collectionRepository{db: db}
}

func (r *collectionRepository) Create(ctx context.Context, collection *models.Collection) error {
	if err := r.db.WithContext(ctx).Create(collection).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("A collection with this slug already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *collectionRepository) GetByID(ctx context.Context, id uint) (*models.Collection, error) {
	var collection models.Collection
	if err := r.db.WithContext(ctx).First(&collection, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Collection not found")
		}
		return nil, models.NewInternalError(err)
	}
	return &collection, nil
}

func (r *collectionRepository) GetBySlug(ctx context.Context, ownerID uint, slug string) (*models.Collection, error) {
	var collection models.Collection
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND slug = ?", ownerID, slug).
		First(&collection).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Collection not found")
		}
		return nil, models.NewInternalError(err)
	}
	return &collection, nil
}

func (r *collectionRepository) SlugsLike(ctx context.Context, ownerID uint, slugPrefix string) ([]string, error) {
	var slugs []string
	if err := r.db.WithContext(ctx).
		Model(&models.Collection{}).
		Where("user_id = ? AND slug LIKE ?", ownerID, slugPrefix+"%").
		Pluck("slug", &slugs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return slugs, nil
}

func (r *collectionRepository) Update(ctx context.Context, collection *models.Collection) error {
	if err := r.db.WithContext(ctx).Save(collection).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("A collection with this slug already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// Delete removes the collection and detaches its snippets. Snippets survive
// their collection; only the grouping goes away.
func (r *collectionRepository) Delete(ctx context.Context, collection *models.Collection) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Snippet{}).
			Where("collection_id = ?", collection.ID).
			Update("collection_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(collection).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *collectionRepository) ListByOwner(ctx context.Context, ownerID uint, publicOnly bool, limit int, cursorID *uint) ([]models.Collection, error) {
	var collections []models.Collection

	q := r.db.WithContext(ctx).Where("user_id = ?", ownerID)
	if publicOnly {
		q = q.Where("public = ?", true)
	}
	if cursorID != nil {
		q = q.Where("id < ?", *cursorID)
	}
	if err := q.Order("id DESC").Limit(limit).Find(&collections).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return collections, nil
}

func (r *collectionRepository) CountByOwner(ctx context.Context, ownerID uint, publicOnly bool) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Collection{}).Where("user_id = ?", ownerID)
	if publicOnly {
		q = q.Where("public = ?", true)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *collectionRepository) CountSnippets(ctx context.Context, collectionID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Snippet{}).
		Where("collection_id = ?", collectionID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
