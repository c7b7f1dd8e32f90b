package logic

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/slidyranks/ranks-api/internal/models"
)

// SnapshotDateLayout is the key format of stored snapshots.
const SnapshotDateLayout = "2006-01-02"

var (
	updateRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slidy_leaderboard_updates_total",
		Help: "Leaderboard refresh runs by outcome",
	}, []string{"status"})

	updateDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "slidy_leaderboard_update_duration_seconds",
		Help:    "Duration of a full leaderboard refresh",
		Buckets: prometheus.DefBuckets,
	})

	rankedUsers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slidy_ranked_users",
		Help: "Users in the most recently stored results table",
	})
)

// ServiceConfig wires the leaderboard service.
type ServiceConfig struct {
	Schedule *TierSchedule
	Fetcher  ResultFetcher
	Store    SnapshotStore
	Aliases  AliasResolver
	// Archive is optional.
	Archive ResultArchive
	Logger  *zap.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

type leaderboardService struct {
	schedule *TierSchedule
	registry *CategoryRegistry
	fetcher  ResultFetcher
	store    SnapshotStore
	aliases  AliasResolver
	archive  ResultArchive
	logger   *zap.SugaredLogger
	now      func() time.Time
}

func NewLeaderboardService(cfg ServiceConfig) LeaderboardService {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &leaderboardService{
		schedule: cfg.Schedule,
		registry: cfg.Schedule.Registry(),
		fetcher:  cfg.Fetcher,
		store:    cfg.Store,
		aliases:  cfg.Aliases,
		archive:  cfg.Archive,
		logger:   logger.Sugar(),
		now:      now,
	}
}

// Update fetches the whole feed and stores today's results table.
func (s *leaderboardService) Update(ctx context.Context) (*models.UpdateSummary, error) {
	start := time.Now()
	summary := &models.UpdateSummary{
		RunID: uuid.New().String(),
		Date:  s.now().UTC().Format(SnapshotDateLayout),
	}

	results, err := s.fetcher.Fetch(ctx, models.FeedQuery{PBType: models.PBTypeTime})
	if err != nil {
		updateRuns.WithLabelValues("fetch_failed").Inc()
		return nil, fmt.Errorf("fetch leaderboard: %w", err)
	}
	summary.Results = len(results)
	summary.Matched = len(CategoryResults(s.registry, results))

	table := BuildResultsTable(s.registry, results)
	summary.Users = len(table)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.store.Save(gctx, summary.Date, table); err != nil {
			return fmt.Errorf("save snapshot %s: %w", summary.Date, err)
		}
		return nil
	})
	if s.archive != nil {
		g.Go(func() error {
			for _, r := range results {
				if s.archive.Enqueue(r) {
					summary.Archived++
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		updateRuns.WithLabelValues("store_failed").Inc()
		return nil, err
	}

	updateRuns.WithLabelValues("ok").Inc()
	updateDuration.Observe(time.Since(start).Seconds())
	rankedUsers.Set(float64(summary.Users))

	s.logger.Infow("Leaderboard updated",
		"run_id", summary.RunID,
		"date", summary.Date,
		"results", summary.Results,
		"matched", summary.Matched,
		"users", summary.Users,
		"archived", summary.Archived,
	)
	return summary, nil
}

// Standings returns the ranked rows of the latest snapshot.
func (s *leaderboardService) Standings(ctx context.Context) (*models.Standings, error) {
	date, table, err := s.latest(ctx)
	if err != nil {
		return nil, err
	}
	return &models.Standings{
		Date:       date,
		Categories: s.registry.CategoryNames(),
		Rows:       s.schedule.FormatRankedRows(table),
	}, nil
}

// Snapshots lists the dates of the stored snapshots, newest first.
func (s *leaderboardService) Snapshots(ctx context.Context) (*models.SnapshotList, error) {
	dates, err := s.store.Dates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	if dates == nil {
		dates = []string{}
	}
	return &models.SnapshotList{Dates: dates}, nil
}

// Rank returns a user's standing in the latest snapshot.
func (s *leaderboardService) Rank(ctx context.Context, handle string) (*models.UserStanding, error) {
	user, err := s.resolve(ctx, handle)
	if err != nil {
		return nil, err
	}
	date, table, err := s.latest(ctx)
	if err != nil {
		return nil, err
	}
	standing, err := s.schedule.Standing(table, user)
	if err != nil {
		return nil, err
	}
	standing.Date = date
	return &standing, nil
}

// PersonalBests reports a user's best times on one puzzle size, with tiers
// and the next requirement for tier-ranked sizes.
func (s *leaderboardService) PersonalBests(ctx context.Context, width, height int, handle string) (*models.PBReport, error) {
	user, err := s.resolve(ctx, handle)
	if err != nil {
		return nil, err
	}
	results, err := s.fetcher.Fetch(ctx, models.FeedQuery{
		Width:  width,
		Height: height,
		User:   user,
		PBType: models.PBTypeTime,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %dx%d results for %q: %w", width, height, user, err)
	}

	report := &models.PBReport{User: user, Width: width, Height: height}

	if !s.registry.UsesSize(width, height) {
		best, err := GeneralPersonalBest(results, width, height, user)
		if err != nil {
			return nil, err
		}
		report.BestTime = &best
		return report, nil
	}

	report.Tiered = true
	for _, i := range s.registry.ForSize(width, height) {
		c := s.registry.Category(i)
		pb := models.CategoryPB{
			Category: c.Name,
			Time:     CategoryPersonalBest(c, results, user),
		}

		tier, ok := s.schedule.ResultTier(i, pb.Time)
		var next models.Tier
		var hasNext bool
		if ok {
			pb.Tier = tier.Name
			next, hasNext = s.schedule.NextTierAbove(tier)
		} else {
			next, hasNext = s.schedule.AllTiers()[0], true
		}
		if hasNext {
			req := next.Times[i]
			pb.NextTier = next.Name
			pb.Requirement = &req
		}

		report.Categories = append(report.Categories, pb)
	}
	return report, nil
}

// MovePersonalBests reports a user's fewest moves per averaging length.
func (s *leaderboardService) MovePersonalBests(ctx context.Context, width, height int, handle string) (*models.MovePBReport, error) {
	user, err := s.resolve(ctx, handle)
	if err != nil {
		return nil, err
	}
	results, err := s.fetcher.Fetch(ctx, models.FeedQuery{
		Width:  width,
		Height: height,
		User:   user,
		PBType: models.PBTypeMove,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %dx%d move results for %q: %w", width, height, user, err)
	}
	return &models.MovePBReport{
		User:   user,
		Width:  width,
		Height: height,
		Bests:  MovePersonalBests(results, user),
	}, nil
}

// Requirements lists a tier's thresholds for the categories of one size.
func (s *leaderboardService) Requirements(width, height int, tierName string) (*models.RequirementReport, error) {
	tier, err := s.schedule.TierByName(tierName)
	if err != nil {
		return nil, err
	}
	indices := s.registry.ForSize(width, height)
	if len(indices) == 0 {
		return nil, fmt.Errorf("ranked categories for %dx%d: %w", width, height, ErrNotFound)
	}

	report := &models.RequirementReport{Tier: tier.Name, Width: width, Height: height}
	for _, i := range indices {
		report.Requirements = append(report.Requirements, models.Requirement{
			Category: s.registry.Category(i).Name,
			Time:     tier.Times[i],
		})
	}
	return report, nil
}

func (s *leaderboardService) Tiers() []models.Tier {
	return s.schedule.AllTiers()
}

func (s *leaderboardService) resolve(ctx context.Context, handle string) (string, error) {
	if s.aliases == nil {
		return handle, nil
	}
	user, err := s.aliases.Resolve(ctx, handle)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", handle, err)
	}
	return user, nil
}

func (s *leaderboardService) latest(ctx context.Context) (string, models.ResultsTable, error) {
	date, table, err := s.store.Latest(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("latest snapshot: %w", err)
	}
	if err := s.registry.CheckTable(table); err != nil {
		return "", nil, fmt.Errorf("snapshot %s: %w", date, err)
	}
	return date, table, nil
}
