package handlers

import (
	"context"

	"github.com/slidyranks/ranks-api/internal/models"
)

// MockLeaderboardService
type MockLeaderboardService struct {
	UpdateFunc            func(ctx context.Context) (*models.UpdateSummary, error)
	StandingsFunc         func(ctx context.Context) (*models.Standings, error)
	SnapshotsFunc         func(ctx context.Context) (*models.SnapshotList, error)
	RankFunc              func(ctx context.Context, handle string) (*models.UserStanding, error)
	PersonalBestsFunc     func(ctx context.Context, width, height int, handle string) (*models.PBReport, error)
	MovePersonalBestsFunc func(ctx context.Context, width, height int, handle string) (*models.MovePBReport, error)
	RequirementsFunc      func(width, height int, tierName string) (*models.RequirementReport, error)
	TiersFunc             func() []models.Tier
}

func (m *MockLeaderboardService) Update(ctx context.Context) (*models.UpdateSummary, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx)
	}
	return &models.UpdateSummary{}, nil
}

func (m *MockLeaderboardService) Standings(ctx context.Context) (*models.Standings, error) {
	if m.StandingsFunc != nil {
		return m.StandingsFunc(ctx)
	}
	return &models.Standings{}, nil
}

func (m *MockLeaderboardService) Snapshots(ctx context.Context) (*models.SnapshotList, error) {
	if m.SnapshotsFunc != nil {
		return m.SnapshotsFunc(ctx)
	}
	return &models.SnapshotList{Dates: []string{}}, nil
}

func (m *MockLeaderboardService) Rank(ctx context.Context, handle string) (*models.UserStanding, error) {
	if m.RankFunc != nil {
		return m.RankFunc(ctx, handle)
	}
	return &models.UserStanding{User: handle}, nil
}

func (m *MockLeaderboardService) PersonalBests(ctx context.Context, width, height int, handle string) (*models.PBReport, error) {
	if m.PersonalBestsFunc != nil {
		return m.PersonalBestsFunc(ctx, width, height, handle)
	}
	return &models.PBReport{User: handle, Width: width, Height: height}, nil
}

func (m *MockLeaderboardService) MovePersonalBests(ctx context.Context, width, height int, handle string) (*models.MovePBReport, error) {
	if m.MovePersonalBestsFunc != nil {
		return m.MovePersonalBestsFunc(ctx, width, height, handle)
	}
	return &models.MovePBReport{}, nil
}

func (m *MockLeaderboardService) Requirements(width, height int, tierName string) (*models.RequirementReport, error) {
	if m.RequirementsFunc != nil {
		return m.RequirementsFunc(width, height, tierName)
	}
	return &models.RequirementReport{Tier: tierName, Width: width, Height: height}, nil
}

func (m *MockLeaderboardService) Tiers() []models.Tier {
	if m.TiersFunc != nil {
		return m.TiersFunc()
	}
	return nil
}

// MockArchiveQueue
type MockArchiveQueue struct {
	Depth int
}

func (m *MockArchiveQueue) QueueDepth() int { return m.Depth }
