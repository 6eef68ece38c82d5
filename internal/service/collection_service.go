package service

import (
	"context"
	"strings"

	"snippetly/internal/models"
	"snippetly/internal/pagination"
	"snippetly/internal/repository"

	"github.com/gosimple/slug"
)

// CollectionInput carries the writable collection fields.
type CollectionInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
}

// CollectionService defines the interface for collection business logic
type CollectionService interface {
	Create(ctx context.Context, ownerID uint, input CollectionInput) (*models.Collection, error)
	GetForViewer(ctx context.Context, viewerID uint, ownerName, collectionSlug string) (*models.CollectionView, string, error)
	Update(ctx context.Context, ownerID uint, collectionID uint, input CollectionInput) (*models.Collection, error)
	Delete(ctx context.Context, ownerID uint, collectionID uint) error
	ListForViewer(ctx context.Context, viewerID uint, ownerName string, limit int, cursor string) (*models.CollectionPage, string, error)
}

// collectionService implements CollectionService
type collectionService struct {
	collectionRepo repository.CollectionRepository
	userService    UserService
}

// NewCollectionService creates a new collection service
func NewCollectionService(collectionRepo repository.CollectionRepository, userService UserService) CollectionService {
	return &collectionService{collectionRepo: collectionRepo, userService: userService}
}

func validateCollectionInput(input *CollectionInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return models.NewValidationError("Name must not be empty")
	}
	if len(input.Name) > 80 {
		return models.NewValidationError("Name must be at most 80 characters")
	}
	return nil
}

func (s *collectionService) Create(ctx context.Context, ownerID uint, input CollectionInput) (*models.Collection, error) {
	if err := validateCollectionInput(&input); err != nil {
		return nil, err
	}

	base := slug.Make(input.Name)
	existing, err := s.collectionRepo.SlugsLike(ctx, ownerID, base)
	if err != nil {
		return nil, err
	}

	collection := &models.Collection{
		Name:        input.Name,
		Slug:        uniqueSlug(existing, input.Name),
		Description: input.Description,
		Public:      input.Public,
		UserID:      ownerID,
	}
	if err := s.collectionRepo.Create(ctx, collection); err != nil {
		return nil, err
	}
	return collection, nil
}

func (s *collectionService) GetForViewer(ctx context.Context, viewerID uint, ownerName, collectionSlug string) (*models.CollectionView, string, error) {
	res, err := s.userService.ResolveName(ctx, ownerName)
	if err != nil {
		return nil, "", err
	}
	if res.RenamedTo != "" {
		return nil, res.RenamedTo, nil
	}

	collection, err := s.collectionRepo.GetBySlug(ctx, res.User.ID, collectionSlug)
	if err != nil {
		return nil, "", err
	}
	if !collection.Public && collection.UserID != viewerID {
		return nil, "", models.NewNotFoundError("Collection not found")
	}

	count, err := s.collectionRepo.CountSnippets(ctx, collection.ID)
	if err != nil {
		return nil, "", err
	}
	view := collection.View(count)
	return &view, "", nil
}

func (s *collectionService) getOwned(ctx context.Context, ownerID, collectionID uint) (*models.Collection, error) {
	collection, err := s.collectionRepo.GetByID(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if collection.UserID != ownerID {
		return nil, models.NewNotFoundError("Collection not found")
	}
	return collection, nil
}

func (s *collectionService) Update(ctx context.Context, ownerID uint, collectionID uint, input CollectionInput) (*models.Collection, error) {
	collection, err := s.getOwned(ctx, ownerID, collectionID)
	if err != nil {
		return nil, err
	}
	if err := validateCollectionInput(&input); err != nil {
		return nil, err
	}

	if input.Name != collection.Name {
		base := slug.Make(input.Name)
		existing, err := s.collectionRepo.SlugsLike(ctx, ownerID, base)
		if err != nil {
			return nil, err
		}
		collection.Slug = uniqueSlug(existing, input.Name)
	}

	collection.Name = input.Name
	collection.Description = input.Description
	collection.Public = input.Public

	if err := s.collectionRepo.Update(ctx, collection); err != nil {
		return nil, err
	}
	return collection, nil
}

func (s *collectionService) Delete(ctx context.Context, ownerID uint, collectionID uint) error {
	collection, err := s.getOwned(ctx, ownerID, collectionID)
	if err != nil {
		return err
	}
	return s.collectionRepo.Delete(ctx, collection)
}

func (s *collectionService) ListForViewer(ctx context.Context, viewerID uint, ownerName string, limit int, cursor string) (*models.CollectionPage, string, error) {
	res, err := s.userService.ResolveName(ctx, ownerName)
	if err != nil {
		return nil, "", err
	}
	if res.RenamedTo != "" {
		return nil, res.RenamedTo, nil
	}

	var cursorID *uint
	if cursor != "" {
		var c pagination.IDCursor
		if err := pagination.Decode(cursor, &c); err != nil {
			return nil, "", err
		}
		cursorID = &c.ID
	}

	publicOnly := res.User.ID != viewerID

	collections, err := s.collectionRepo.ListByOwner(ctx, res.User.ID, publicOnly, limit+1, cursorID)
	if err != nil {
		return nil, "", err
	}
	total, err := s.collectionRepo.CountByOwner(ctx, res.User.ID, publicOnly)
	if err != nil {
		return nil, "", err
	}

	page := pagination.Paginate(collections, limit)
	items := make([]models.CollectionView, 0, len(page.Items))
	for i := range page.Items {
		count, err := s.collectionRepo.CountSnippets(ctx, page.Items[i].ID)
		if err != nil {
			return nil, "", err
		}
		items = append(items, page.Items[i].View(count))
	}

	result := &models.CollectionPage{Items: items, Total: total}
	if page.NextCursor != nil {
		token, err := pagination.Encode(pagination.IDCursor{ID: page.NextCursor.ID})
		if err != nil {
			return nil, "", err
		}
		result.NextCursor = &token
	}
	return result, "", nil
}
