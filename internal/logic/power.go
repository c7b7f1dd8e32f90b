package logic

import "github.com/slidyranks/ranks-api/internal/models"

// Power sums the tier power reached in every category of the row.
// Absent entries and times below the weakest tier add nothing.
func (s *TierSchedule) Power(row models.Row) int {
	total := 0
	for i, t := range row {
		if idx, ok := s.resultTierIndex(i, t); ok {
			total += s.tiers[idx].Power
		}
	}
	return total
}
