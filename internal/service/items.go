package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/mymichiganlake/lakes-server/internal/domain"
	domainerrors "github.com/mymichiganlake/lakes-server/internal/errors"
	"github.com/mymichiganlake/lakes-server/internal/id"
	"github.com/mymichiganlake/lakes-server/internal/media/images"
	"github.com/mymichiganlake/lakes-server/internal/store"
	"github.com/mymichiganlake/lakes-server/internal/validation"
)

// ItemListLimit caps how many items a listing returns.
const ItemListLimit = 200

// CreateItemRequest is the input for a new marketplace listing.
// Image is an optional data:image/...;base64 URI.
type CreateItemRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Price       string `json:"price,omitempty" validate:"max=32"`
	Description string `json:"description,omitempty" validate:"max=5000"`
	Category    string `json:"category,omitempty" validate:"max=32"`
	Image       string `json:"image,omitempty"`
}

// ItemService handles marketplace listings and their images.
type ItemService struct {
	store     store.Store
	images    *images.Processor
	validator *validation.Validator
	logger    *slog.Logger
}

// NewItemService creates a new item service.
func NewItemService(store store.Store, processor *images.Processor, validator *validation.Validator, logger *slog.Logger) *ItemService {
	return &ItemService{
		store:     store,
		images:    processor,
		validator: validator,
		logger:    logger,
	}
}

// Create stores a listing owned by owner.
func (s *ItemService) Create(ctx context.Context, owner *domain.Profile, req CreateItemRequest) (*domain.Item, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	item, err := s.prepare(ctx, owner.ID, req)
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateItem(ctx, item); err != nil {
		s.discardImage(ctx, item)
		return nil, err
	}
	item.OwnerUsername = owner.Username

	s.logger.Info("Item created", "item_id", item.ID, "owner_id", owner.ID, "category", item.Category)

	// The row is committed; failing here would invite a duplicate on retry.
	s.resolveImageOrBlank(ctx, item)
	return item, nil
}

// prepare builds an item row and stores its image. The caller must persist
// the row or call discardImage.
func (s *ItemService) prepare(ctx context.Context, ownerID string, req CreateItemRequest) (*domain.Item, error) {
	category, ok := domain.ParseItemCategory(req.Category)
	if !ok && strings.TrimSpace(req.Category) != "" {
		s.logger.Info("Unrecognized item category, using default",
			"category", req.Category,
			"default", category,
		)
	}

	item := &domain.Item{
		ID:          id.New(),
		OwnerID:     ownerID,
		Name:        req.Name,
		Price:       strings.TrimSpace(req.Price),
		Description: req.Description,
		Category:    category,
		CreatedAt:   time.Now().UTC(),
	}

	processed, err := s.images.Process(ctx, item.ID, req.Image)
	if err != nil {
		return nil, err
	}
	item.Image = processed.Ref
	item.ImageBlurHash = processed.BlurHash

	return item, nil
}

func (s *ItemService) discardImage(ctx context.Context, item *domain.Item) {
	if err := s.images.Delete(ctx, item.Image); err != nil {
		s.logger.Warn("failed to delete item image", "item_id", item.ID, "error", err)
	}
}

// resolveImageOrBlank swaps the stored reference for a loadable URL. An
// unresolvable image is logged and left empty.
func (s *ItemService) resolveImageOrBlank(ctx context.Context, item *domain.Item) {
	url, err := s.images.Resolve(ctx, item.Image)
	if err != nil {
		s.logger.Warn("failed to resolve item image", "item_id", item.ID, "error", err)
		item.Image = ""
		return
	}
	item.Image = url
}

// List returns the newest listings with image references resolved.
func (s *ItemService) List(ctx context.Context) ([]*domain.Item, error) {
	items, err := s.store.ListItems(ctx, ItemListLimit)
	if err != nil {
		return nil, err
	}

	// One unreachable object must not hide the whole listing.
	for _, item := range items {
		s.resolveImageOrBlank(ctx, item)
	}
	return items, nil
}

// Delete removes a listing and its stored image. Only its owner may do so.
func (s *ItemService) Delete(ctx context.Context, actor *domain.Profile, itemID string) error {
	if !id.Valid(itemID) {
		return domainerrors.Validation("invalid item id")
	}

	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("Item not found")
		}
		return err
	}
	if !item.IsOwnedBy(actor.ID) {
		return domainerrors.Forbidden("Not your item")
	}

	if err := s.store.DeleteItem(ctx, itemID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("Item not found")
		}
		return err
	}
	s.discardImage(ctx, item)

	s.logger.Info("Item deleted", "item_id", itemID, "owner_id", actor.ID)
	return nil
}
