package models

// PB types understood by the leaderboard feed.
const (
	PBTypeTime = "time"
	PBTypeMove = "move"
)

// Result is one raw personal-best record from the leaderboard feed.
type Result struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	SolveType   string `json:"solvetype"`
	DisplayType string `json:"displaytype"`
	User        string `json:"user"`
	Time        int    `json:"time"`
	Moves       int    `json:"moves"`
	TPS         int    `json:"tps"`
	AvgLen      int    `json:"avglen"`
	Controls    string `json:"controls"`
	PBType      string `json:"pbtype"`
	Timestamp   int64  `json:"timestamp"`
}

// CategoryResult is a Result matched to a registry category.
type CategoryResult struct {
	Result
	CategoryIndex int `json:"category"`
}

// Size is a puzzle width/height pair.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Category identifies one tier-ranked puzzle configuration.
type Category struct {
	Width     int    `json:"width" yaml:"width"`
	Height    int    `json:"height" yaml:"height"`
	SolveType string `json:"solvetype" yaml:"solvetype"`
	AvgLen    int    `json:"avglen" yaml:"avglen"`
	Name      string `json:"name" yaml:"name"`
}

// Size returns the width/height pair of the category.
func (c Category) Size() Size {
	return Size{Width: c.Width, Height: c.Height}
}

// Matches reports whether r belongs to the category. All four identifying
// fields must be equal.
func (c Category) Matches(r Result) bool {
	return c.Width == r.Width &&
		c.Height == r.Height &&
		c.SolveType == r.SolveType &&
		c.AvgLen == r.AvgLen
}

// Tier is a rung of the classification schedule.
type Tier struct {
	Name     string `json:"name" yaml:"name"`
	Times    []int  `json:"times" yaml:"times"`
	Power    int    `json:"power" yaml:"power"`
	MinPower int    `json:"min_power" yaml:"min_power"`
}

// FeedQuery selects results from the leaderboard feed. Zero-valued
// dimensions are sent as "any".
type FeedQuery struct {
	Width     int
	Height    int
	SolveType string
	AvgLen    int
	User      string
	PBType    string
}
