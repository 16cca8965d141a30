package domain

import (
	"strconv"
	"time"
)

// ─── Collection ─────────────────────────────────────────────────────────────

// Collection types fed by the engine itself.
const (
	CollectionSpecies     = "species"
	CollectionPhotos      = "photos"
	CollectionZones       = "zones"
	CollectionDiscoveries = "discoveries"
	CollectionRelics      = "relics"
)

// CollectionEntry is one distinct (Type, ItemID) item in the inventory.
type CollectionEntry struct {
	Type            string    `json:"type" validate:"required"`
	ItemID          string    `json:"item_id" validate:"required"`
	FirstObtainedAt time.Time `json:"first_obtained_at"`
	Quantity        int       `json:"quantity" validate:"gte=1"`
	Quality         Quality   `json:"quality,omitempty" validate:"quality"`
	Rare            bool      `json:"rare,omitempty"`
}

// Key returns the identity of the entry.
func (e CollectionEntry) Key() string {
	return CollectionKey(e.Type, e.ItemID)
}

// CollectionKey builds the identity of a (type, item id) pair. Both parts
// are quoted so ids containing the separator cannot collide.
func CollectionKey(collectionType, itemID string) string {
	return strconv.Quote(collectionType) + "/" + strconv.Quote(itemID)
}
