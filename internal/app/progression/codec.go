package progression

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wildtrail/wildtrail/internal/domain"
	"github.com/wildtrail/wildtrail/internal/platform/validate"
)

// EncodeSnapshot serializes a snapshot for the store.
func EncodeSnapshot(s domain.Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses and fully validates a serialized snapshot.
// A foreign schema version fails with domain.ErrSnapshotVersion; anything
// structurally wrong or internally inconsistent fails with
// domain.ErrSnapshotMalformed.
func DecodeSnapshot(data []byte) (domain.Snapshot, error) {
	var probe struct {
		Version *int `json:"version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: %v", domain.ErrSnapshotMalformed, err)
	}
	if probe.Version == nil {
		return domain.Snapshot{}, fmt.Errorf("%w: missing version", domain.ErrSnapshotMalformed)
	}
	if *probe.Version != domain.SnapshotVersion {
		return domain.Snapshot{}, fmt.Errorf("%w: got %d, want %d", domain.ErrSnapshotVersion, *probe.Version, domain.SnapshotVersion)
	}

	var snap domain.Snapshot
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: %v", domain.ErrSnapshotMalformed, err)
	}
	normalize(&snap)

	if err := validate.Struct(snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: %v", domain.ErrSnapshotMalformed, err)
	}
	if problems := consistencyProblems(snap); len(problems) > 0 {
		return domain.Snapshot{}, fmt.Errorf("%w: %s", domain.ErrSnapshotMalformed, strings.Join(problems, "; "))
	}
	return snap, nil
}

// normalize fills nil maps so decoded state can be mutated directly.
func normalize(s *domain.Snapshot) {
	if s.Ledger == nil {
		s.Ledger = make(domain.PointLedger)
	}
	if s.Statistics.Events == nil {
		s.Statistics.Events = make(map[domain.EventKind]int)
	}
	if s.Challenges.History == nil {
		s.Challenges.History = make(map[string][]bool)
	}
	for _, book := range [][]domain.ChallengeInstance{s.Challenges.Active, s.Challenges.Completed, s.Challenges.Failed} {
		for i := range book {
			if book[i].Stats.CategoriesSeen == nil {
				book[i].Stats.CategoriesSeen = make(map[domain.EventKind]int)
			}
			if book[i].Stats.Zones == nil {
				book[i].Stats.Zones = make(map[string]int)
			}
		}
	}
	for _, book := range [][]domain.RouteInstance{s.Routes.Active, s.Routes.Completed, s.Routes.Failed} {
		for i := range book {
			for j := range book[i].Waypoints {
				if book[i].Waypoints[j].Recorded == nil {
					book[i].Waypoints[j].Recorded = make(map[domain.EventKind]int)
				}
			}
		}
	}
}
