package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wildtrail/wildtrail/internal/domain"
	"github.com/wildtrail/wildtrail/internal/platform/validate"
)

// Overlay is the YAML document shape accepted by LoadFile. Entries add to
// or replace built-in definitions by id.
type Overlay struct {
	Challenges   []domain.ChallengeTemplate `yaml:"challenges"`
	Routes       []domain.RouteTemplate     `yaml:"routes"`
	Achievements []domain.AchievementDef    `yaml:"achievements"`
	Collections  map[string]int             `yaml:"collections"`
}

// LoadFile returns the built-in catalog with the overlay at path applied.
// An empty path or a missing file yields the built-in catalog unchanged.
func LoadFile(path string) (*Catalog, error) {
	c := Builtin()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog overlay: %w", err)
	}
	ov, err := ParseOverlay(data)
	if err != nil {
		return nil, fmt.Errorf("catalog overlay %s: %w", path, err)
	}
	if err := c.Apply(ov); err != nil {
		return nil, fmt.Errorf("catalog overlay %s: %w", path, err)
	}
	return c, nil
}

// ParseOverlay decodes a YAML overlay document. Unknown keys are rejected.
func ParseOverlay(data []byte) (Overlay, error) {
	var ov Overlay
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ov); err != nil && !errors.Is(err, io.EOF) {
		return Overlay{}, fmt.Errorf("decode yaml: %w", err)
	}
	return ov, nil
}

// Apply validates every overlay entry and merges it into the catalog.
// Nothing is applied when any entry is invalid.
func (c *Catalog) Apply(ov Overlay) error {
	for _, t := range ov.Challenges {
		if err := validate.Struct(t); err != nil {
			return fmt.Errorf("%w: challenge %q: %v", domain.ErrInvalidTemplate, t.ID, err)
		}
	}
	for _, t := range ov.Routes {
		if err := validate.Struct(t); err != nil {
			return fmt.Errorf("%w: route %q: %v", domain.ErrInvalidTemplate, t.ID, err)
		}
		seen := make(map[string]bool, len(t.Waypoints))
		for _, wp := range t.Waypoints {
			if seen[wp.ID] {
				return fmt.Errorf("%w: route %q: duplicate waypoint %q", domain.ErrInvalidTemplate, t.ID, wp.ID)
			}
			seen[wp.ID] = true
		}
	}
	for _, a := range ov.Achievements {
		if err := validate.Struct(a); err != nil {
			return fmt.Errorf("%w: achievement %q: %v", domain.ErrInvalidTemplate, a.ID, err)
		}
	}
	for k, v := range ov.Collections {
		if k == "" || v < 0 {
			return fmt.Errorf("%w: collection %q size %d", domain.ErrInvalidTemplate, k, v)
		}
	}

	for _, t := range ov.Challenges {
		c.challenges[t.ID] = t.Clone()
	}
	for _, t := range ov.Routes {
		c.routes[t.ID] = t.Clone()
	}
	for _, a := range ov.Achievements {
		c.achievements[a.ID] = a
	}
	for k, v := range ov.Collections {
		c.collections[k] = v
	}
	return nil
}
