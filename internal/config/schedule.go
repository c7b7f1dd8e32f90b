package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/slidyranks/ranks-api/internal/logic"
	"github.com/slidyranks/ranks-api/internal/models"
)

//go:embed default_schedule.yaml
var defaultSchedule []byte

// ScheduleFile is the on-disk layout of the category registry and tier
// schedule.
type ScheduleFile struct {
	Categories []models.Category `yaml:"categories"`
	Tiers      []models.Tier     `yaml:"tiers"`
}

// LoadSchedule reads the schedule from path, or the built-in schedule when
// path is empty, and validates it.
func LoadSchedule(path string) (*logic.TierSchedule, error) {
	data := defaultSchedule
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("read schedule: %w", err)
		}
	}
	return ParseSchedule(data)
}

// ParseSchedule decodes and validates a YAML schedule.
func ParseSchedule(data []byte) (*logic.TierSchedule, error) {
	var file ScheduleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse schedule: %w", err)
	}

	reg, err := logic.NewCategoryRegistry(file.Categories)
	if err != nil {
		return nil, err
	}
	return logic.NewTierSchedule(reg, file.Tiers)
}
