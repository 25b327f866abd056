package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mymichiganlake/lakes-server/internal/domain"
	"github.com/mymichiganlake/lakes-server/internal/service"
)

func (s *Server) registerItemRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createItem",
		Method:        http.MethodPost,
		Path:          "/items",
		Summary:       "Create item",
		Description:   "Creates a marketplace listing owned by the caller. Unknown categories become other.",
		Tags:          []string{"Items"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
		MaxBodyBytes:  MaxItemBodyBytes,
	}, s.handleCreateItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "listItems",
		Method:      http.MethodGet,
		Path:        "/items",
		Summary:     "List items",
		Description: "Returns the newest marketplace listings",
		Tags:        []string{"Items"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListItems)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteItem",
		Method:        http.MethodDelete,
		Path:          "/items/{id}",
		Summary:       "Delete item",
		Description:   "Deletes a listing and its image. Only its owner may do so.",
		Tags:          []string{"Items"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteItem)
}

// === DTOs ===

// ItemResponse contains item data in API responses.
type ItemResponse struct {
	ID            string    `json:"id" doc:"Item ID"`
	Name          string    `json:"name" doc:"Listing name"`
	Price         string    `json:"price" doc:"Price as entered"`
	Description   string    `json:"description" doc:"Description"`
	Category      string    `json:"category" enum:"boat,vehicle,water_toy,equipment,other" doc:"Category"`
	Image         string    `json:"image" doc:"Data URI or presigned URL"`
	ImageBlurHash string    `json:"image_blurhash" doc:"BlurHash placeholder"`
	OwnerID       string    `json:"owner_id" doc:"Owner profile ID"`
	OwnerUsername string    `json:"owner_username" doc:"Owner username, or unknown"`
	CreatedAt     time.Time `json:"created_at" doc:"Creation time"`
}

// CreateItemRequest is the request body for creating an item.
type CreateItemRequest struct {
	Name        string `json:"name" minLength:"1" maxLength:"200" doc:"Listing name"`
	Price       string `json:"price,omitempty" maxLength:"32" doc:"Price, kept as text"`
	Description string `json:"description,omitempty" maxLength:"5000" doc:"Description"`
	Category    string `json:"category,omitempty" doc:"boat, vehicle, water_toy, equipment or other (any case)"`
	Image       string `json:"image,omitempty" doc:"data:image/<type>;base64,<payload>"`
}

func (r CreateItemRequest) toService() service.CreateItemRequest {
	return service.CreateItemRequest{
		Name:        r.Name,
		Price:       r.Price,
		Description: r.Description,
		Category:    r.Category,
		Image:       r.Image,
	}
}

// CreateItemInput wraps the create item request for Huma.
type CreateItemInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateItemRequest
}

// ItemOutput wraps a single item for Huma.
type ItemOutput struct {
	Body ItemResponse
}

// ListItemsOutput wraps the item list for Huma.
type ListItemsOutput struct {
	Body []ItemResponse
}

// DeleteItemInput contains parameters for deleting an item.
type DeleteItemInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Item ID"`
}

// === Handlers ===

func (s *Server) handleCreateItem(ctx context.Context, input *CreateItemInput) (*ItemOutput, error) {
	profile, err := s.requireProfile(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	item, err := s.services.Item.Create(ctx, profile, input.Body.toService())
	if err != nil {
		return nil, err
	}

	return &ItemOutput{Body: toItemResponse(item)}, nil
}

func (s *Server) handleListItems(ctx context.Context, input *AuthorizationInput) (*ListItemsOutput, error) {
	if _, err := s.requireProfile(ctx, input.Authorization); err != nil {
		return nil, err
	}

	items, err := s.services.Item.List(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]ItemResponse, len(items))
	for i, it := range items {
		resp[i] = toItemResponse(it)
	}
	return &ListItemsOutput{Body: resp}, nil
}

func (s *Server) handleDeleteItem(ctx context.Context, input *DeleteItemInput) (*struct{}, error) {
	profile, err := s.requireProfile(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Item.Delete(ctx, profile, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

func toItemResponse(it *domain.Item) ItemResponse {
	return ItemResponse{
		ID:            it.ID,
		Name:          it.Name,
		Price:         it.Price,
		Description:   it.Description,
		Category:      string(it.Category),
		Image:         it.Image,
		ImageBlurHash: it.ImageBlurHash,
		OwnerID:       it.OwnerID,
		OwnerUsername: usernameOrUnknown(it.OwnerUsername),
		CreatedAt:     it.CreatedAt,
	}
}
