package progression

import (
	"github.com/wildtrail/wildtrail/internal/domain"
)

// Collection owns the collectible inventory.
type Collection struct {
	s       *session
	catalog Catalog
}

// Add records one acquisition of (collectionType, itemID). A duplicate
// increments quantity, keeps the best quality and never clears the rare
// flag. Returns false when the key is incomplete.
func (c *Collection) Add(collectionType, itemID string, q domain.Quality, rare bool) (domain.CollectionEntry, bool) {
	if collectionType == "" || itemID == "" {
		c.s.reject("collection add", "empty key", "type", collectionType, "item", itemID)
		return domain.CollectionEntry{}, false
	}
	if !q.Valid() {
		q = ""
	}
	entries := c.s.state.Collection
	for i := range entries {
		if entries[i].Type != collectionType || entries[i].ItemID != itemID {
			continue
		}
		e := &entries[i]
		e.Quantity++
		if q.Rank() > e.Quality.Rank() {
			e.Quality = q
		}
		e.Rare = e.Rare || rare
		c.s.touch()
		return *e, true
	}

	entry := domain.CollectionEntry{
		Type:            collectionType,
		ItemID:          itemID,
		FirstObtainedAt: c.s.now(),
		Quantity:        1,
		Quality:         q,
		Rare:            rare,
	}
	c.s.state.Collection = append(c.s.state.Collection, entry)
	c.s.touch()
	return entry, true
}

// Distinct returns the number of distinct entries of collectionType, or of
// every type when collectionType is empty.
func (c *Collection) Distinct(collectionType string) int {
	if collectionType == "" {
		return len(c.s.state.Collection)
	}
	n := 0
	for _, e := range c.s.state.Collection {
		if e.Type == collectionType {
			n++
		}
	}
	return n
}

// Completion returns distinct entries over the catalog size as a
// percentage capped at 100. Open-ended types report 0.
func (c *Collection) Completion(collectionType string) float64 {
	size := c.catalog.CollectionSize(collectionType)
	if size <= 0 {
		return 0
	}
	pct := float64(c.Distinct(collectionType)) / float64(size) * 100.0
	if pct > 100.0 {
		pct = 100.0
	}
	return pct
}
