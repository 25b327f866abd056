package domain

import (
	"strings"
	"time"
)

// ItemCategory classifies a marketplace listing.
type ItemCategory string

const (
	ItemCategoryBoat      ItemCategory = "boat"
	ItemCategoryVehicle   ItemCategory = "vehicle"
	ItemCategoryWaterToy  ItemCategory = "water_toy"
	ItemCategoryEquipment ItemCategory = "equipment"
	ItemCategoryOther     ItemCategory = "other"
)

// ParseItemCategory maps s case-insensitively onto an ItemCategory.
// Unrecognised input yields ItemCategoryOther and ok=false.
func ParseItemCategory(s string) (c ItemCategory, ok bool) {
	switch ItemCategory(strings.ToLower(strings.TrimSpace(s))) {
	case ItemCategoryBoat:
		return ItemCategoryBoat, true
	case ItemCategoryVehicle:
		return ItemCategoryVehicle, true
	case ItemCategoryWaterToy:
		return ItemCategoryWaterToy, true
	case ItemCategoryEquipment:
		return ItemCategoryEquipment, true
	case ItemCategoryOther:
		return ItemCategoryOther, true
	default:
		return ItemCategoryOther, false
	}
}

// Item is a marketplace listing.
type Item struct {
	ID          string       `json:"id"`
	OwnerID     string       `json:"owner_id"`
	Name        string       `json:"name"`
	Price       string       `json:"price"` // Decimal kept as text
	Description string       `json:"description"`
	Category    ItemCategory `json:"category"`
	// Image is either an inline data URI or an object storage reference (s3://bucket/key).
	Image         string    `json:"image"`
	ImageBlurHash string    `json:"image_blurhash"`
	CreatedAt     time.Time `json:"created_at"`

	OwnerUsername string `json:"owner_username,omitempty"`
}

// IsOwnedBy reports whether profileID owns the item.
func (i *Item) IsOwnedBy(profileID string) bool {
	return i.OwnerID == profileID
}
