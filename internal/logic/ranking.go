package logic

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/slidyranks/ranks-api/internal/models"
)

// SortTable orders the table by descending power. Equal power is broken by
// username so repeated runs over the same snapshot agree.
func (s *TierSchedule) SortTable(table models.ResultsTable) []models.TableEntry {
	entries := make([]models.TableEntry, 0, len(table))
	for user, row := range table {
		entries = append(entries, models.TableEntry{User: user, Power: s.Power(row), Row: row})
	}

	slices.SortFunc(entries, func(a, b models.TableEntry) int {
		return cmp.Or(
			cmp.Compare(b.Power, a.Power),
			cmp.Compare(a.User, b.User),
		)
	})
	return entries
}

// Place returns the 1-based position of user in the sorted table.
func (s *TierSchedule) Place(table models.ResultsTable, user string) (int, error) {
	if _, ok := table[user]; !ok {
		return 0, fmt.Errorf("%q: %w", user, ErrUserNotFound)
	}
	for i, e := range s.SortTable(table) {
		if e.User == user {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("%q: %w", user, ErrUserNotFound)
}

// Standing returns the user's position, power and power tier.
func (s *TierSchedule) Standing(table models.ResultsTable, user string) (models.UserStanding, error) {
	pos, err := s.Place(table, user)
	if err != nil {
		return models.UserStanding{}, err
	}
	power := s.Power(table[user])
	return models.UserStanding{
		User:      user,
		Position:  pos,
		Power:     power,
		PowerTier: s.PowerTier(power).Name,
		Players:   len(table),
	}, nil
}

// FormatRankedRows flattens the sorted table for presentation, replacing
// absent times with models.NoData.
func (s *TierSchedule) FormatRankedRows(table models.ResultsTable) []models.RankedRow {
	sorted := s.SortTable(table)
	rows := make([]models.RankedRow, len(sorted))
	for i, e := range sorted {
		times := make([]int, len(e.Row))
		for j, t := range e.Row {
			if t == nil {
				times[j] = models.NoData
			} else {
				times[j] = *t
			}
		}
		rows[i] = models.RankedRow{
			User:     e.User,
			Position: i + 1,
			Power:    e.Power,
			Times:    times,
		}
	}
	return rows
}
