package logic

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slidyranks/ranks-api/internal/models"
)

func TestPower(t *testing.T) {
	s := testSchedule(t)

	tests := []struct {
		name string
		row  models.Row
		want int
	}{
		{"all absent", models.Row{nil, nil, nil}, 0},
		{"empty", models.Row{}, 0},
		{"too slow everywhere", models.Row{intp(1000), intp(1000), intp(1000)}, 0},
		{"mixed", models.Row{intp(250), nil, intp(600)}, 1 + 2},
		{"gold everywhere", models.Row{intp(100), intp(150), intp(500)}, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Power(tt.row))
		})
	}
}

func rankingTable() models.ResultsTable {
	return models.ResultsTable{
		"dave":  {intp(250), nil, nil},             // 1
		"alice": {intp(100), intp(150), intp(500)}, // 12
		"carol": {intp(250), nil, intp(950)},       // 1
		"bob":   {intp(200), intp(300), nil},       // 4
		"erin":  {nil, nil, nil},                   // 0
	}
}

func TestSortTable(t *testing.T) {
	s := testSchedule(t)
	table := rankingTable()

	sorted := s.SortTable(table)

	var users []string
	for _, e := range sorted {
		users = append(users, e.User)
	}
	// carol and dave tie on power and fall back to name order.
	assert.Equal(t, []string{"alice", "bob", "carol", "dave", "erin"}, users)

	for k := 0; k+1 < len(sorted); k++ {
		assert.GreaterOrEqual(t, sorted[k].Power, sorted[k+1].Power)
	}

	assert.Equal(t, sorted, s.SortTable(table), "sorting is repeatable")
}

func TestPlace(t *testing.T) {
	s := testSchedule(t)
	table := rankingTable()

	for i, e := range s.SortTable(table) {
		pos, err := s.Place(table, e.User)
		require.NoError(t, err)
		assert.Equal(t, i+1, pos)
	}

	_, err := s.Place(table, "mallory")
	assert.True(t, errors.Is(err, ErrUserNotFound))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStanding(t *testing.T) {
	s := testSchedule(t)

	st, err := s.Standing(rankingTable(), "bob")
	require.NoError(t, err)
	assert.Equal(t, models.UserStanding{
		User:      "bob",
		Position:  2,
		Power:     4,
		PowerTier: "Silver",
		Players:   5,
	}, st)
}

func TestFormatRankedRows(t *testing.T) {
	s := testSchedule(t)

	rows := s.FormatRankedRows(models.ResultsTable{
		"bob":   {intp(200), nil, intp(0)},
		"alice": {nil, nil, nil},
	})

	require.Len(t, rows, 2)
	assert.Equal(t, models.RankedRow{User: "bob", Position: 1, Power: 2 + 4, Times: []int{200, models.NoData, 0}}, rows[0])
	assert.Equal(t, models.RankedRow{User: "alice", Position: 2, Power: 0, Times: []int{-1, -1, -1}}, rows[1])
}

func TestSingleCategoryScenario(t *testing.T) {
	reg, err := NewCategoryRegistry([]models.Category{
		{Width: 3, Height: 3, SolveType: "any", AvgLen: 1, Name: "3x3 single"},
	})
	require.NoError(t, err)
	s, err := NewTierSchedule(reg, []models.Tier{
		{Name: "Bronze", Times: []int{300}, Power: 1},
		{Name: "Silver", Times: []int{200}, Power: 2},
	})
	require.NoError(t, err)

	table := BuildResultsTable(reg, []models.Result{
		{User: "a", Width: 3, Height: 3, SolveType: "any", AvgLen: 1, Time: 250},
	})
	assert.Equal(t, models.ResultsTable{"a": {intp(250)}}, table)

	tier, ok := s.ResultTier(0, intp(250))
	require.True(t, ok)
	assert.Equal(t, "Bronze", tier.Name)

	assert.Equal(t, 1, s.Power(table["a"]))

	sorted := s.SortTable(table)
	require.Len(t, sorted, 1)
	assert.Equal(t, "a", sorted[0].User)
	assert.Equal(t, models.Row{intp(250)}, sorted[0].Row)

	pos, err := s.Place(table, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, pos)
}
