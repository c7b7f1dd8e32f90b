package logic

import (
	"context"

	"github.com/slidyranks/ranks-api/internal/models"
)

// ResultFetcher pulls raw personal bests from the leaderboard feed.
type ResultFetcher interface {
	Fetch(ctx context.Context, q models.FeedQuery) ([]models.Result, error)
}

// SnapshotStore persists results tables keyed by date.
type SnapshotStore interface {
	Save(ctx context.Context, date string, table models.ResultsTable) error
	Latest(ctx context.Context) (string, models.ResultsTable, error)
	Dates(ctx context.Context) ([]string, error)
}

// AliasResolver maps a display handle to a canonical username.
type AliasResolver interface {
	Resolve(ctx context.Context, handle string) (string, error)
}

// ResultArchive accepts raw results for long-term storage.
type ResultArchive interface {
	Enqueue(result models.Result) bool
}

// LeaderboardService answers ranking queries over the stored snapshots.
type LeaderboardService interface {
	Update(ctx context.Context) (*models.UpdateSummary, error)
	Standings(ctx context.Context) (*models.Standings, error)
	Snapshots(ctx context.Context) (*models.SnapshotList, error)
	Rank(ctx context.Context, handle string) (*models.UserStanding, error)
	PersonalBests(ctx context.Context, width, height int, handle string) (*models.PBReport, error)
	MovePersonalBests(ctx context.Context, width, height int, handle string) (*models.MovePBReport, error)
	Requirements(width, height int, tierName string) (*models.RequirementReport, error)
	Tiers() []models.Tier
}
