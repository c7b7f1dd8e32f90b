package logic

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/slidyranks/ranks-api/internal/models"
)

// CategoryResults keeps the results that belong to a registry category and
// tags each with its category index. Results of unranked configurations are
// dropped. The output is sorted by user, then category, then time.
func CategoryResults(reg *CategoryRegistry, results []models.Result) []models.CategoryResult {
	out := make([]models.CategoryResult, 0, len(results))
	for _, r := range results {
		i, ok := reg.IndexOf(r)
		if !ok {
			continue
		}
		out = append(out, models.CategoryResult{Result: r, CategoryIndex: i})
	}

	slices.SortStableFunc(out, func(a, b models.CategoryResult) int {
		return cmp.Or(
			cmp.Compare(a.User, b.User),
			cmp.Compare(a.CategoryIndex, b.CategoryIndex),
			cmp.Compare(a.Time, b.Time),
		)
	})
	return out
}

// BuildResultsTable reduces raw results to one personal-best row per user.
// A user may hold several results for a category (one per control scheme);
// the fastest wins. Input order does not affect the output.
func BuildResultsTable(reg *CategoryRegistry, results []models.Result) models.ResultsTable {
	table := make(models.ResultsTable)
	for _, r := range results {
		i, ok := reg.IndexOf(r)
		if !ok {
			continue
		}

		row, ok := table[r.User]
		if !ok {
			row = make(models.Row, reg.Len())
			table[r.User] = row
		}

		if row[i] == nil || r.Time < *row[i] {
			t := r.Time
			row[i] = &t
		}
	}
	return table
}

// CategoryPersonalBest returns the user's fastest time in one category, or
// nil when they have none.
func CategoryPersonalBest(c models.Category, results []models.Result, user string) *int {
	var best *int
	for _, r := range results {
		if r.User != user || !c.Matches(r) {
			continue
		}
		if best == nil || r.Time < *best {
			t := r.Time
			best = &t
		}
	}
	return best
}

// GeneralPersonalBest returns the user's fastest time on a puzzle size
// regardless of solve type or averaging length. It is used for sizes that
// are not tier-ranked.
func GeneralPersonalBest(results []models.Result, width, height int, user string) (int, error) {
	best, found := 0, false
	for _, r := range results {
		if r.User != user || r.Width != width || r.Height != height {
			continue
		}
		if !found || r.Time < best {
			best, found = r.Time, true
		}
	}
	if !found {
		return 0, fmt.Errorf("%dx%d results for %q: %w", width, height, user, ErrNoData)
	}
	return best, nil
}

// MovePersonalBests returns the user's fewest moves per averaging length,
// shortest average first. Averages without a recorded move count are left
// out.
func MovePersonalBests(results []models.Result, user string) []models.MovePB {
	best := make(map[int]int)
	for _, r := range results {
		if r.User != user || r.Moves <= 0 {
			continue
		}
		if cur, ok := best[r.AvgLen]; !ok || r.Moves < cur {
			best[r.AvgLen] = r.Moves
		}
	}

	out := make([]models.MovePB, 0, len(best))
	for avgLen, moves := range best {
		out = append(out, models.MovePB{Label: AverageLabel(avgLen), AvgLen: avgLen, Moves: moves})
	}
	slices.SortFunc(out, func(a, b models.MovePB) int {
		return cmp.Compare(a.AvgLen, b.AvgLen)
	})
	return out
}

// AverageLabel names an averaging length: "single" or "aoN".
func AverageLabel(avgLen int) string {
	if avgLen == 1 {
		return "single"
	}
	return fmt.Sprintf("ao%d", avgLen)
}
