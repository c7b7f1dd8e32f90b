package logic

import (
	"fmt"
	"slices"

	"github.com/slidyranks/ranks-api/internal/models"
)

type categoryKey struct {
	width, height int
	solveType     string
	avgLen        int
}

func keyOf(c models.Category) categoryKey {
	return categoryKey{c.Width, c.Height, c.SolveType, c.AvgLen}
}

// CategoryRegistry is the fixed, ordered list of tier-ranked categories.
// It is read-only after construction and may be shared between goroutines.
type CategoryRegistry struct {
	categories []models.Category
	index      map[categoryKey]int
	sizes      []models.Size
}

// NewCategoryRegistry validates the categories and builds the registry.
func NewCategoryRegistry(categories []models.Category) (*CategoryRegistry, error) {
	if len(categories) == 0 {
		return nil, invalidf("no categories defined")
	}

	reg := &CategoryRegistry{
		categories: slices.Clone(categories),
		index:      make(map[categoryKey]int, len(categories)),
	}

	for i, c := range reg.categories {
		if c.Width <= 0 || c.Height <= 0 {
			return nil, invalidf("category %d: invalid size %dx%d", i, c.Width, c.Height)
		}
		if c.AvgLen < 1 {
			return nil, invalidf("category %d: avglen must be at least 1", i)
		}
		if c.SolveType == "" {
			return nil, invalidf("category %d: missing solve type", i)
		}
		if c.Name == "" {
			return nil, invalidf("category %d: missing name", i)
		}
		k := keyOf(c)
		if prev, ok := reg.index[k]; ok {
			return nil, invalidf("category %d duplicates category %d (%s)", i, prev, c.Name)
		}
		reg.index[k] = i

		if !slices.Contains(reg.sizes, c.Size()) {
			reg.sizes = append(reg.sizes, c.Size())
		}
	}

	return reg, nil
}

// Len returns the number of categories.
func (r *CategoryRegistry) Len() int {
	return len(r.categories)
}

// Categories returns the categories in registry order.
func (r *CategoryRegistry) Categories() []models.Category {
	return slices.Clone(r.categories)
}

// Category returns the category at index i.
func (r *CategoryRegistry) Category(i int) models.Category {
	return r.categories[i]
}

// CategoryNames returns the display names, index-aligned with Categories.
func (r *CategoryRegistry) CategoryNames() []string {
	names := make([]string, len(r.categories))
	for i, c := range r.categories {
		names[i] = c.Name
	}
	return names
}

// Index returns the index of the category with exactly these fields.
func (r *CategoryRegistry) Index(width, height int, solveType string, avgLen int) (int, bool) {
	i, ok := r.index[categoryKey{width, height, solveType, avgLen}]
	return i, ok
}

// IndexOf returns the category index of a raw result.
func (r *CategoryRegistry) IndexOf(res models.Result) (int, bool) {
	return r.Index(res.Width, res.Height, res.SolveType, res.AvgLen)
}

// UsedSizes returns the distinct puzzle sizes that take part in tier ranking.
func (r *CategoryRegistry) UsedSizes() []models.Size {
	return slices.Clone(r.sizes)
}

// UsesSize reports whether any category has the given size.
func (r *CategoryRegistry) UsesSize(width, height int) bool {
	return slices.Contains(r.sizes, models.Size{Width: width, Height: height})
}

// ForSize returns the indices of the categories with the given size.
func (r *CategoryRegistry) ForSize(width, height int) []int {
	var out []int
	for i, c := range r.categories {
		if c.Width == width && c.Height == height {
			out = append(out, i)
		}
	}
	return out
}

// CheckTable verifies that every row has exactly one entry per category.
func (r *CategoryRegistry) CheckTable(table models.ResultsTable) error {
	for user, row := range table {
		if len(row) != len(r.categories) {
			return fmt.Errorf("row for %q has %d entries, want %d", user, len(row), len(r.categories))
		}
	}
	return nil
}
