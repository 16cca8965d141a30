package catalog_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wildtrail/wildtrail/internal/domain"
	"github.com/wildtrail/wildtrail/internal/infra/catalog"
	"github.com/wildtrail/wildtrail/internal/platform/validate"
)

func TestBuiltin_TemplatesValidate(t *testing.T) {
	c := catalog.Builtin()
	for _, tmpl := range c.ChallengeTemplates() {
		if err := validate.Struct(tmpl); err != nil {
			t.Errorf("challenge %s: %v", tmpl.ID, err)
		}
	}
	for _, tmpl := range c.RouteTemplates() {
		if err := validate.Struct(tmpl); err != nil {
			t.Errorf("route %s: %v", tmpl.ID, err)
		}
	}
	for _, a := range c.Achievements() {
		if err := validate.Struct(a); err != nil {
			t.Errorf("achievement %s: %v", a.ID, err)
		}
	}
}

func TestChallengeTemplate_ReturnsCopy(t *testing.T) {
	c := catalog.Builtin()
	tmpl, ok := c.ChallengeTemplate("dawn_chorus")
	if !ok {
		t.Fatal("dawn_chorus should exist")
	}
	tmpl.Config.Categories[0] = domain.EventPhoto
	tmpl.Config.TimeWindow.StartHour = 12

	again, _ := c.ChallengeTemplate("dawn_chorus")
	if again.Config.Categories[0] != domain.EventSighting {
		t.Error("mutating a returned template must not leak into the catalog")
	}
	if again.Config.TimeWindow.StartHour != 5 {
		t.Errorf("expected start hour 5, got %d", again.Config.TimeWindow.StartHour)
	}
}

func TestRouteTemplate_ReturnsCopy(t *testing.T) {
	c := catalog.Builtin()
	tmpl, ok := c.RouteTemplate("river_trail")
	if !ok {
		t.Fatal("river_trail should exist")
	}
	tmpl.Waypoints[0].Required = append(tmpl.Waypoints[0].Required, domain.EventPhoto)

	again, _ := c.RouteTemplate("river_trail")
	if len(again.Waypoints[0].Required) != 1 {
		t.Errorf("expected 1 required activity, got %d", len(again.Waypoints[0].Required))
	}
}

func TestLookup_Unknown(t *testing.T) {
	c := catalog.Builtin()
	if _, ok := c.ChallengeTemplate("nope"); ok {
		t.Error("unknown challenge should not be found")
	}
	if _, ok := c.RouteTemplate("nope"); ok {
		t.Error("unknown route should not be found")
	}
	if n := c.CollectionSize("nope"); n != 0 {
		t.Errorf("expected 0 for unknown collection, got %d", n)
	}
}

const overlayYAML = `
challenges:
  - id: night_owl
    name: Night Owl
    kind: sighting
    config:
      objective: 4
      categories: [sighting]
      time_window: {start_hour: 21, end_hour: 3}
      duration: 48h
    reward:
      points: 200
  - id: dawn_chorus
    name: Dawn Chorus (short)
    kind: sighting
    config:
      objective: 2
      categories: [sighting]
      duration: 24h
collections:
  species: 200
`

func TestLoadFile_Overlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(overlayYAML), 0600); err != nil {
		t.Fatal(err)
	}

	c, err := catalog.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	owl, ok := c.ChallengeTemplate("night_owl")
	if !ok {
		t.Fatal("night_owl should be added")
	}
	if owl.Config.Duration != 48*time.Hour {
		t.Errorf("expected 48h, got %v", owl.Config.Duration)
	}
	if !owl.Config.TimeWindow.Contains(23) || owl.Config.TimeWindow.Contains(12) {
		t.Error("window 21-3 should wrap midnight")
	}

	dawn, _ := c.ChallengeTemplate("dawn_chorus")
	if dawn.Config.Objective != 2 {
		t.Errorf("expected replaced objective 2, got %d", dawn.Config.Objective)
	}
	if c.CollectionSize(domain.CollectionSpecies) != 200 {
		t.Errorf("expected species size 200, got %d", c.CollectionSize(domain.CollectionSpecies))
	}
	if c.CollectionSize(domain.CollectionPhotos) != 100 {
		t.Error("untouched collections keep built-in sizes")
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	c, err := catalog.LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing overlay should not fail: %v", err)
	}
	if _, ok := c.ChallengeTemplate("dawn_chorus"); !ok {
		t.Error("built-ins should be present")
	}
}

func TestApply_RejectsInvalidTemplate(t *testing.T) {
	ov, err := catalog.ParseOverlay([]byte(`
challenges:
  - id: broken
    name: Broken
    kind: sighting
    config:
      objective: 0
      duration: 1h
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	c := catalog.Builtin()
	err = c.Apply(ov)
	if !errors.Is(err, domain.ErrInvalidTemplate) {
		t.Fatalf("expected ErrInvalidTemplate, got %v", err)
	}
	if _, ok := c.ChallengeTemplate("broken"); ok {
		t.Error("invalid overlay must not be applied")
	}
}

func TestApply_RejectsUnknownEventKind(t *testing.T) {
	ov, err := catalog.ParseOverlay([]byte(`
routes:
  - id: bad_route
    name: Bad
    waypoints:
      - id: a
        order: 0
        required: [teleport]
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := catalog.Builtin().Apply(ov); !errors.Is(err, domain.ErrInvalidTemplate) {
		t.Fatalf("expected ErrInvalidTemplate, got %v", err)
	}
}

func TestParseOverlay_UnknownField(t *testing.T) {
	_, err := catalog.ParseOverlay([]byte("challengez: []\n"))
	if err == nil {
		t.Error("unknown top-level key should be rejected")
	}
}
