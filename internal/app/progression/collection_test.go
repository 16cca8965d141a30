package progression_test

import (
	"context"
	"testing"

	"github.com/wildtrail/wildtrail/internal/domain"
)

func TestAddToCollection_Duplicates(t *testing.T) {
	e, _, _ := testEngine(t)
	ctx := context.Background()

	first, ok, err := e.AddToCollection(ctx, domain.CollectionSpecies, "heron", domain.QualityFair, false)
	if err != nil || !ok {
		t.Fatalf("first add failed: ok=%v err=%v", ok, err)
	}
	if first.Quantity != 1 {
		t.Errorf("expected quantity 1, got %d", first.Quantity)
	}
	second, _, err := e.AddToCollection(ctx, domain.CollectionSpecies, "heron", domain.QualityExcellent, true)
	if err != nil {
		t.Fatal(err)
	}
	if second.Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", second.Quantity)
	}
	third, _, _ := e.AddToCollection(ctx, domain.CollectionSpecies, "heron", domain.QualityPoor, false)
	if third.Quality != domain.QualityExcellent {
		t.Errorf("best quality should be kept, got %s", third.Quality)
	}
	if !third.Rare {
		t.Error("rare flag should never clear")
	}
	if !third.FirstObtainedAt.Equal(t0) {
		t.Errorf("first obtained time should not change, got %v", third.FirstObtainedAt)
	}

	v := view(t, e)
	if len(v.Collection) != 1 {
		t.Errorf("expected 1 distinct entry, got %d", len(v.Collection))
	}
}

func TestAddToCollection_SeparatorInIDs(t *testing.T) {
	e, _, _ := testEngine(t)
	ctx := context.Background()
	if _, ok, err := e.AddToCollection(ctx, "a/b", "c", "", false); err != nil || !ok {
		t.Fatalf("first add failed: ok=%v err=%v", ok, err)
	}
	entry, ok, err := e.AddToCollection(ctx, "a", "b/c", "", false)
	if err != nil || !ok {
		t.Fatalf("second add failed: ok=%v err=%v", ok, err)
	}
	if entry.Quantity != 1 {
		t.Errorf("expected a new entry, got quantity %d", entry.Quantity)
	}
	if n := len(view(t, e).Collection); n != 2 {
		t.Errorf("expected 2 distinct entries, got %d", n)
	}
}

func TestAddToCollection_EmptyKey(t *testing.T) {
	e, _, store := testEngine(t)
	ctx := context.Background()
	if _, ok, _ := e.AddToCollection(ctx, "", "heron", "", false); ok {
		t.Error("empty type should be rejected")
	}
	if _, ok, _ := e.AddToCollection(ctx, domain.CollectionSpecies, "", "", false); ok {
		t.Error("empty item should be rejected")
	}
	if blob, _ := store.Load(ctx, "alice"); blob != nil {
		t.Error("rejected adds must not save")
	}
}

func TestCollectionCompletion(t *testing.T) {
	e, _, _ := testEngine(t)
	ctx := context.Background()
	// zones has 12 entries in the built-in catalog.
	for _, zone := range []string{"wetland", "meadow", "coast"} {
		if _, _, err := e.AddToCollection(ctx, domain.CollectionZones, zone, "", false); err != nil {
			t.Fatal(err)
		}
	}
	if _, _, err := e.AddToCollection(ctx, "pressed_flowers", "daisy", "", false); err != nil {
		t.Fatal(err)
	}

	v := view(t, e)
	if got := v.Completion[domain.CollectionZones]; got != 25 {
		t.Errorf("expected 25%% zone completion, got %f", got)
	}
	if got := v.Completion[domain.CollectionSpecies]; got != 0 {
		t.Errorf("expected 0%% species completion, got %f", got)
	}
	if got, ok := v.Completion["pressed_flowers"]; !ok || got != 0 {
		t.Errorf("open-ended type should report 0, got %f (present=%v)", got, ok)
	}
}

func TestHandleEvent_FeedsCollection(t *testing.T) {
	e, _, _ := testEngine(t)
	handle(t, e, domain.ActivityEvent{Kind: domain.EventSighting, At: t0, Context: domain.EventContext{Subject: "heron"}})
	handle(t, e, domain.ActivityEvent{Kind: domain.EventPhoto, At: t0, Context: domain.EventContext{Subject: "heron", Quality: domain.QualityGood}})
	handle(t, e, domain.ActivityEvent{Kind: domain.EventExploration, At: t0, Context: domain.EventContext{Zone: "wetland"}})
	handle(t, e, domain.ActivityEvent{Kind: domain.EventIdentification, At: t0, Context: domain.EventContext{Subject: "heron"}})

	v := view(t, e)
	for _, want := range []struct{ typ, item string }{
		{domain.CollectionSpecies, "heron"},
		{domain.CollectionPhotos, "heron"},
		{domain.CollectionZones, "wetland"},
	} {
		if !hasEntry(v, want.typ, want.item, false) {
			t.Errorf("expected %s/%s in the collection", want.typ, want.item)
		}
	}
	for _, entry := range v.Collection {
		if entry.Type == domain.CollectionSpecies && entry.Quantity != 2 {
			t.Errorf("sighting and identification of heron should give quantity 2, got %d", entry.Quantity)
		}
	}
}
