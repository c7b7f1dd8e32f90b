package logic

import (
	"fmt"
	"slices"
	"strings"

	"github.com/slidyranks/ranks-api/internal/models"
)

// TierSchedule is the ordered list of tiers, weakest first. Like the
// category registry it is immutable once built.
type TierSchedule struct {
	registry *CategoryRegistry
	tiers    []models.Tier
}

// NewTierSchedule validates the tiers against the registry.
//
// Tiers must be listed in strictly increasing power, carry one positive
// threshold per category, and never demand a slower time than a weaker tier
// in any category. MinPower bands must not decrease.
func NewTierSchedule(reg *CategoryRegistry, tiers []models.Tier) (*TierSchedule, error) {
	if reg == nil {
		return nil, invalidf("nil category registry")
	}
	if len(tiers) == 0 {
		return nil, invalidf("no tiers defined")
	}

	s := &TierSchedule{registry: reg, tiers: make([]models.Tier, len(tiers))}
	seen := make(map[string]int, len(tiers))

	for i, t := range tiers {
		if t.Name == "" {
			return nil, invalidf("tier %d: missing name", i)
		}
		key := strings.ToLower(t.Name)
		if prev, ok := seen[key]; ok {
			return nil, invalidf("tier %q duplicates tier %d", t.Name, prev)
		}
		seen[key] = i

		if len(t.Times) != reg.Len() {
			return nil, invalidf("tier %q: %d thresholds for %d categories", t.Name, len(t.Times), reg.Len())
		}
		if t.Power <= 0 {
			return nil, invalidf("tier %q: power must be positive", t.Name)
		}
		if t.MinPower < 0 {
			return nil, invalidf("tier %q: negative min power", t.Name)
		}
		for c, limit := range t.Times {
			if limit <= 0 {
				return nil, invalidf("tier %q: non-positive threshold for %s", t.Name, reg.Category(c).Name)
			}
		}

		if i > 0 {
			prev := tiers[i-1]
			if t.Power <= prev.Power {
				return nil, invalidf("tier %q: power %d not above %q (%d)", t.Name, t.Power, prev.Name, prev.Power)
			}
			if t.MinPower < prev.MinPower {
				return nil, invalidf("tier %q: min power below %q", t.Name, prev.Name)
			}
			for c := range t.Times {
				if t.Times[c] > prev.Times[c] {
					return nil, invalidf("tier %q: %s threshold %d is slower than %q (%d)",
						t.Name, reg.Category(c).Name, t.Times[c], prev.Name, prev.Times[c])
				}
			}
		}

		t.Times = slices.Clone(t.Times)
		s.tiers[i] = t
	}

	return s, nil
}

// Registry returns the category registry the schedule was built against.
func (s *TierSchedule) Registry() *CategoryRegistry {
	return s.registry
}

// AllTiers returns the tiers in increasing power.
func (s *TierSchedule) AllTiers() []models.Tier {
	out := make([]models.Tier, len(s.tiers))
	for i, t := range s.tiers {
		out[i] = cloneTier(t)
	}
	return out
}

// TierByName finds a tier ignoring case.
func (s *TierSchedule) TierByName(name string) (models.Tier, error) {
	for _, t := range s.tiers {
		if strings.EqualFold(t.Name, name) {
			return cloneTier(t), nil
		}
	}
	return models.Tier{}, fmt.Errorf("tier %q: %w", name, ErrNotFound)
}

// NextTierAbove returns the tier following t. The second value is false
// when t is the top tier or not part of the schedule.
func (s *TierSchedule) NextTierAbove(t models.Tier) (models.Tier, bool) {
	for i, cur := range s.tiers {
		if cur.Name == t.Name && i+1 < len(s.tiers) {
			return cloneTier(s.tiers[i+1]), true
		}
	}
	return models.Tier{}, false
}

// ResultTier classifies a time in one category: the strongest tier whose
// threshold the time meets or beats. A nil time, an unknown category or a
// time slower than every threshold yields no tier.
func (s *TierSchedule) ResultTier(categoryIndex int, t *int) (models.Tier, bool) {
	i, ok := s.resultTierIndex(categoryIndex, t)
	if !ok {
		return models.Tier{}, false
	}
	return cloneTier(s.tiers[i]), true
}

func (s *TierSchedule) resultTierIndex(categoryIndex int, t *int) (int, bool) {
	if t == nil || categoryIndex < 0 || categoryIndex >= s.registry.Len() {
		return 0, false
	}
	// Walk down from the strongest tier so equal thresholds resolve upward.
	for i := len(s.tiers) - 1; i >= 0; i-- {
		if *t <= s.tiers[i].Times[categoryIndex] {
			return i, true
		}
	}
	return 0, false
}

// PowerTier returns the tier band for an aggregate power. Powers below
// every band fall into the lowest one.
func (s *TierSchedule) PowerTier(power int) models.Tier {
	for i := len(s.tiers) - 1; i > 0; i-- {
		if power >= s.tiers[i].MinPower {
			return cloneTier(s.tiers[i])
		}
	}
	return cloneTier(s.tiers[0])
}

func cloneTier(t models.Tier) models.Tier {
	t.Times = slices.Clone(t.Times)
	return t
}
