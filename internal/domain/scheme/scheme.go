// Package scheme holds the runtime-editable scoring scheme: the ordered
// criteria and rank tiers, with every mutation validated before it is
// applied. The scheme is an explicit versioned document, not an open
// key-value structure.
package scheme

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/jobrank/internal/domain/model"
	"github.com/okian/jobrank/internal/domain/scoring"
)

// Minimum configuration sizes.
const (
	minCriteria = 1
	minRanks    = 2

	// rankStep is the resolution at which rank ranges must tile the
	// score domain: scores are rounded to 2 decimals, so adjacent
	// ranks meet at a 0.01 boundary.
	rankStep = 0.01
)

// Scheme is a snapshot of the scoring configuration.
type Scheme struct {
	Version      string            `json:"version"`
	Revision     int               `json:"revision"`
	LastModified time.Time         `json:"last_modified"`
	Criteria     []model.Criterion `json:"criteria"`
	Ranks        []model.Rank      `json:"ranks"`
}

// clone deep-copies a scheme so snapshots never alias store state.
func (s Scheme) clone() Scheme {
	out := s
	out.Criteria = make([]model.Criterion, len(s.Criteria))
	for i, c := range s.Criteria {
		cc := c
		cc.ScaleDescriptions = make(map[int]string, len(c.ScaleDescriptions))
		for k, v := range c.ScaleDescriptions {
			cc.ScaleDescriptions[k] = v
		}
		out.Criteria[i] = cc
	}
	out.Ranks = make([]model.Rank, len(s.Ranks))
	copy(out.Ranks, s.Ranks)
	return out
}

// Store guards the live scheme and applies validated mutations.
type Store struct {
	mu          sync.RWMutex
	scheme      Scheme
	subscribers []func(Scheme)
}

// NewStore creates a scheme store bootstrapped with the default
// four-criterion, three-rank scheme.
func NewStore() *Store {
	return &Store{scheme: DefaultScheme()}
}

// NewStoreFromScheme creates a store seeded with s instead of the
// default. The seed goes through the same validation as an imported
// snapshot; an invalid seed is rejected with the reason.
func NewStoreFromScheme(s Scheme) (*Store, error) {
	if err := Validate(s); err != nil {
		return nil, err
	}
	return &Store{scheme: s.clone()}, nil
}

// Subscribe registers a callback invoked with a snapshot after every
// successful mutation. Used by the session layer to revalidate weights
// when criterion membership changes.
func (st *Store) Subscribe(fn func(Scheme)) {
	if fn == nil {
		return
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.subscribers = append(st.subscribers, fn)
}

// Snapshot returns a deep copy of the current scheme.
func (st *Store) Snapshot() Scheme {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.scheme.clone()
}

// Criteria returns the criteria ordered by display order.
func (st *Store) Criteria() []model.Criterion {
	s := st.Snapshot()
	sort.SliceStable(s.Criteria, func(i, j int) bool { return s.Criteria[i].Order < s.Criteria[j].Order })
	return s.Criteria
}

// Ranks returns the ranks ordered by display order.
func (st *Store) Ranks() []model.Rank {
	s := st.Snapshot()
	sort.SliceStable(s.Ranks, func(i, j int) bool { return s.Ranks[i].Order < s.Ranks[j].Order })
	return s.Ranks
}

// DefaultWeights returns each criterion's configured default weight,
// falling back to an equal 1/N split when the configured defaults do
// not form a valid set (e.g. a freshly added criterion at weight 0).
func (st *Store) DefaultWeights() model.WeightSet {
	criteria := st.Criteria()
	w := make(model.WeightSet, len(criteria))
	for _, c := range criteria {
		w[c.ID] = c.DefaultWeight
	}
	if err := scoring.ValidateWeights(w, criteria); err != nil {
		return scoring.EqualWeights(criteria)
	}
	return w
}

// mutate validates a candidate produced by fn and swaps it in only on
// success, so failed edits leave the scheme untouched.
func (st *Store) mutate(fn func(*Scheme) error) error {
	st.mu.Lock()
	candidate := st.scheme.clone()
	if err := fn(&candidate); err != nil {
		st.mu.Unlock()
		return err
	}
	if err := Validate(candidate); err != nil {
		st.mu.Unlock()
		return err
	}
	candidate.Revision = st.scheme.Revision + 1
	candidate.LastModified = time.Now().UTC()
	st.scheme = candidate
	subs := st.subscribers
	snapshot := candidate.clone()
	st.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
	return nil
}

// AddCriterion appends an administrator-defined criterion. It starts at
// weight zero and is removable, unlike the bootstrap criteria.
func (st *Store) AddCriterion(name, description string) (model.Criterion, error) {
	var created model.Criterion
	err := st.mutate(func(s *Scheme) error {
		created = model.Criterion{
			ID:                "custom_" + uuid.NewString(),
			Name:              name,
			Description:       description,
			DefaultWeight:     0,
			ScaleDescriptions: defaultScaleDescriptions(),
			Removable:         true,
			Order:             len(s.Criteria) + 1,
		}
		s.Criteria = append(s.Criteria, created)
		return nil
	})
	if err != nil {
		return model.Criterion{}, err
	}
	return created, nil
}

// CriterionUpdate carries optional criterion field changes.
type CriterionUpdate struct {
	Name              *string
	Description       *string
	DefaultWeight     *float64
	Order             *int
	ScaleDescriptions map[int]string // merged per score value
}

// UpdateCriterion applies an update to the identified criterion.
func (st *Store) UpdateCriterion(id string, upd CriterionUpdate) error {
	return st.mutate(func(s *Scheme) error {
		for i := range s.Criteria {
			if s.Criteria[i].ID != id {
				continue
			}
			c := &s.Criteria[i]
			if upd.Name != nil {
				c.Name = *upd.Name
			}
			if upd.Description != nil {
				c.Description = *upd.Description
			}
			if upd.DefaultWeight != nil {
				c.DefaultWeight = *upd.DefaultWeight
			}
			if upd.Order != nil {
				c.Order = *upd.Order
			}
			for score, text := range upd.ScaleDescriptions {
				c.ScaleDescriptions[score] = text
			}
			return nil
		}
		return fmt.Errorf("%w: %s", ErrCriterionNotFound, id)
	})
}

// RemoveCriterion deletes a removable criterion.
func (st *Store) RemoveCriterion(id string) error {
	return st.mutate(func(s *Scheme) error {
		for i := range s.Criteria {
			if s.Criteria[i].ID != id {
				continue
			}
			if !s.Criteria[i].Removable {
				return fmt.Errorf("%w: %s", ErrNotRemovable, id)
			}
			s.Criteria = append(s.Criteria[:i], s.Criteria[i+1:]...)
			return nil
		}
		return fmt.Errorf("%w: %s", ErrCriterionNotFound, id)
	})
}

// AddRank appends a rank tier. The new set must still tile [1.0, 5.0].
func (st *Store) AddRank(name string, minScore, maxScore float64, color string) (model.Rank, error) {
	var created model.Rank
	err := st.mutate(func(s *Scheme) error {
		created = model.Rank{
			ID:       "rank_" + uuid.NewString(),
			Name:     name,
			MinScore: minScore,
			MaxScore: maxScore,
			Color:    color,
			Order:    len(s.Ranks) + 1,
		}
		s.Ranks = append(s.Ranks, created)
		return nil
	})
	if err != nil {
		return model.Rank{}, err
	}
	return created, nil
}

// RankUpdate carries optional rank field changes.
type RankUpdate struct {
	Name     *string
	MinScore *float64
	MaxScore *float64
	Color    *string
	Order    *int
}

// UpdateRank applies an update to the identified rank.
func (st *Store) UpdateRank(id string, upd RankUpdate) error {
	return st.mutate(func(s *Scheme) error {
		for i := range s.Ranks {
			if s.Ranks[i].ID != id {
				continue
			}
			r := &s.Ranks[i]
			if upd.Name != nil {
				r.Name = *upd.Name
			}
			if upd.MinScore != nil {
				r.MinScore = *upd.MinScore
			}
			if upd.MaxScore != nil {
				r.MaxScore = *upd.MaxScore
			}
			if upd.Color != nil {
				r.Color = *upd.Color
			}
			if upd.Order != nil {
				r.Order = *upd.Order
			}
			return nil
		}
		return fmt.Errorf("%w: %s", ErrRankNotFound, id)
	})
}

// RemoveRank deletes a rank tier; at least two must remain and the
// remainder must still cover the score domain.
func (st *Store) RemoveRank(id string) error {
	return st.mutate(func(s *Scheme) error {
		for i := range s.Ranks {
			if s.Ranks[i].ID != id {
				continue
			}
			s.Ranks = append(s.Ranks[:i], s.Ranks[i+1:]...)
			return nil
		}
		return fmt.Errorf("%w: %s", ErrRankNotFound, id)
	})
}

// Import replaces the whole scheme with a validated snapshot.
func (st *Store) Import(s Scheme) error {
	return st.mutate(func(dst *Scheme) error {
		imported := s.clone()
		imported.Revision = dst.Revision // mutate() bumps it
		*dst = imported
		return nil
	})
}

// ExportJSON serializes the current scheme snapshot.
func (st *Store) ExportJSON() ([]byte, error) {
	data, err := json.MarshalIndent(st.Snapshot(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export scheme: %w", err)
	}
	return data, nil
}

// ImportJSON parses and installs a scheme snapshot.
func (st *Store) ImportJSON(data []byte) error {
	var s Scheme
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScheme, err)
	}
	return st.Import(s)
}

// Validate checks scheme invariants: unique identities, score-range
// domains, and rank ranges tiling [1.0, 5.0] without gaps or overlaps.
func Validate(s Scheme) error {
	if len(s.Criteria) < minCriteria {
		return fmt.Errorf("%w: at least %d criterion required", ErrInvalidScheme, minCriteria)
	}
	seen := make(map[string]struct{}, len(s.Criteria))
	for _, c := range s.Criteria {
		if c.ID == "" {
			return fmt.Errorf("%w: criterion with empty id", ErrInvalidScheme)
		}
		if c.Name == "" {
			return fmt.Errorf("%w: criterion %q has empty name", ErrInvalidScheme, c.ID)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("%w: duplicate criterion id %q", ErrInvalidScheme, c.ID)
		}
		seen[c.ID] = struct{}{}
		if c.DefaultWeight < 0 || c.DefaultWeight > 1 {
			return fmt.Errorf("%w: criterion %q default weight %v outside [0, 1]",
				ErrInvalidScheme, c.ID, c.DefaultWeight)
		}
	}

	if len(s.Ranks) < minRanks {
		return fmt.Errorf("%w: at least %d ranks required", ErrInvalidScheme, minRanks)
	}
	seenRanks := make(map[string]struct{}, len(s.Ranks))
	for _, r := range s.Ranks {
		if r.ID == "" {
			return fmt.Errorf("%w: rank with empty id", ErrInvalidScheme)
		}
		if r.Name == "" {
			return fmt.Errorf("%w: rank %q has empty name", ErrInvalidScheme, r.ID)
		}
		if _, dup := seenRanks[r.ID]; dup {
			return fmt.Errorf("%w: duplicate rank id %q", ErrInvalidScheme, r.ID)
		}
		seenRanks[r.ID] = struct{}{}
		if r.MinScore > r.MaxScore {
			return fmt.Errorf("%w: rank %q min score %v exceeds max score %v",
				ErrInvalidScheme, r.ID, r.MinScore, r.MaxScore)
		}
	}
	return validateRankCoverage(s.Ranks)
}

// validateRankCoverage requires the rank ranges to tile [1.0, 5.0] at
// 2-decimal resolution: the lowest rank starts at 1.0, the highest ends
// at 5.0, and each rank starts one step above its predecessor's end.
// Gaps would make a reachable score unrankable (ErrRankNotFound at
// scoring time), so they are rejected at edit time.
func validateRankCoverage(ranks []model.Rank) error {
	ordered := make([]model.Rank, len(ranks))
	copy(ordered, ranks)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].MinScore < ordered[j].MinScore })

	if math.Abs(ordered[0].MinScore-scoring.DomainMin) >= rankStep/2 {
		return fmt.Errorf("%w: lowest rank %q starts at %v, want %v",
			ErrInvalidScheme, ordered[0].ID, ordered[0].MinScore, scoring.DomainMin)
	}
	if math.Abs(ordered[len(ordered)-1].MaxScore-scoring.DomainMax) >= rankStep/2 {
		return fmt.Errorf("%w: highest rank %q ends at %v, want %v",
			ErrInvalidScheme, ordered[len(ordered)-1].ID, ordered[len(ordered)-1].MaxScore, scoring.DomainMax)
	}
	for i := 1; i < len(ordered); i++ {
		prev, next := ordered[i-1], ordered[i]
		if math.Abs(next.MinScore-(prev.MaxScore+rankStep)) >= rankStep/2 {
			return fmt.Errorf("%w: rank %q starts at %v but rank %q ends at %v (ranges must be contiguous)",
				ErrInvalidScheme, next.ID, next.MinScore, prev.ID, prev.MaxScore)
		}
	}
	return nil
}
