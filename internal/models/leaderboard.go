package models

// Row holds a user's best time per category, in registry order.
// A nil entry means the user has no qualifying result in that category.
type Row []*int

// ResultsTable maps a username to their personal-best row.
type ResultsTable map[string]Row

// NoData is the presentation sentinel for an absent time.
const NoData = -1

// TableEntry is one user row of a sorted table.
type TableEntry struct {
	User  string `json:"user"`
	Power int    `json:"power"`
	Row   Row    `json:"times"`
}

// RankedRow is the presentation form of a table row. Absent times are
// rendered as NoData.
type RankedRow struct {
	User     string `json:"user"`
	Position int    `json:"position"`
	Power    int    `json:"power"`
	Times    []int  `json:"times"`
}

// Standings is the full ranked table of a snapshot.
type Standings struct {
	Date       string      `json:"date"`
	Categories []string    `json:"categories"`
	Rows       []RankedRow `json:"rows"`
}

// UserStanding is a single user's place in a snapshot.
type UserStanding struct {
	User      string `json:"user"`
	Date      string `json:"date,omitempty"`
	Position  int    `json:"position"`
	Power     int    `json:"power"`
	PowerTier string `json:"power_tier"`
	Players   int    `json:"players"`
}

// CategoryPB is a user's best in one category of a PB report.
type CategoryPB struct {
	Category    string `json:"category"`
	Time        *int   `json:"time"`
	Tier        string `json:"tier,omitempty"`
	NextTier    string `json:"next_tier,omitempty"`
	Requirement *int   `json:"requirement,omitempty"`
}

// PBReport lists a user's personal bests for one puzzle size.
// Sizes outside the registry only carry BestTime.
type PBReport struct {
	User       string       `json:"user"`
	Width      int          `json:"width"`
	Height     int          `json:"height"`
	Tiered     bool         `json:"tiered"`
	Categories []CategoryPB `json:"categories,omitempty"`
	BestTime   *int         `json:"best_time,omitempty"`
}

// MovePB is the fewest moves for one averaging length.
type MovePB struct {
	Label  string `json:"label"`
	AvgLen int    `json:"avglen"`
	Moves  int    `json:"moves"`
}

// MovePBReport lists a user's move-count personal bests for one size.
type MovePBReport struct {
	User   string   `json:"user"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Bests  []MovePB `json:"bests"`
}

// Requirement is a tier threshold for one category.
type Requirement struct {
	Category string `json:"category"`
	Time     int    `json:"time"`
}

// RequirementReport lists a tier's thresholds for one size.
type RequirementReport struct {
	Tier         string        `json:"tier"`
	Width        int           `json:"width"`
	Height       int           `json:"height"`
	Requirements []Requirement `json:"requirements"`
}

// SnapshotList lists the stored snapshot dates, newest first.
type SnapshotList struct {
	Dates []string `json:"dates"`
}

// UpdateSummary describes one refresh of the stored results table.
type UpdateSummary struct {
	RunID    string `json:"run_id"`
	Date     string `json:"date"`
	Results  int    `json:"results"`
	Matched  int    `json:"matched"`
	Users    int    `json:"users"`
	Archived int    `json:"archived"`
}
