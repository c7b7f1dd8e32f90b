package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/slidyranks/ranks-api/internal/logic"
	"github.com/slidyranks/ranks-api/internal/models"
)

const (
	snapshotPrefix = "leaderboard/data/"
	snapshotIndex  = "leaderboard/dates"
)

// SnapshotStore keeps serialized results tables in Redis. Each snapshot
// lives under leaderboard/data/<date>; a sorted set scored by day orders
// the dates so the newest can be found without scanning keys.
type SnapshotStore struct {
	client RedisClient
	logger *zap.SugaredLogger
}

func NewSnapshotStore(client RedisClient, logger *zap.Logger) *SnapshotStore {
	return &SnapshotStore{client: client, logger: logger.Sugar()}
}

func snapshotKey(date string) string {
	return snapshotPrefix + date
}

// Save stores the table under date, replacing any previous snapshot for
// that day.
func (s *SnapshotStore) Save(ctx context.Context, date string, table models.ResultsTable) error {
	day, err := time.Parse(logic.SnapshotDateLayout, date)
	if err != nil {
		return fmt.Errorf("snapshot date %q: %w", date, err)
	}

	data, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := s.client.Set(ctx, snapshotKey(date), data, 0).Err(); err != nil {
		return fmt.Errorf("store snapshot %s: %w", date, err)
	}
	if err := s.client.ZAdd(ctx, snapshotIndex, redis.Z{
		Score:  float64(day.Unix()),
		Member: date,
	}).Err(); err != nil {
		return fmt.Errorf("index snapshot %s: %w", date, err)
	}

	s.logger.Infow("Snapshot stored", "date", date, "users", len(table), "bytes", len(data))
	return nil
}

// Load returns the snapshot stored for date.
func (s *SnapshotStore) Load(ctx context.Context, date string) (models.ResultsTable, error) {
	data, err := s.client.Get(ctx, snapshotKey(date)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("snapshot %s: %w", date, logic.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", date, err)
	}

	var table models.ResultsTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", date, err)
	}
	if table == nil {
		table = models.ResultsTable{}
	}
	return table, nil
}

// Latest returns the newest snapshot and its date.
func (s *SnapshotStore) Latest(ctx context.Context) (string, models.ResultsTable, error) {
	dates, err := s.client.ZRevRange(ctx, snapshotIndex, 0, 0).Result()
	if err != nil {
		return "", nil, fmt.Errorf("list snapshots: %w", err)
	}
	if len(dates) == 0 {
		return "", nil, fmt.Errorf("snapshot: %w", logic.ErrNotFound)
	}

	table, err := s.Load(ctx, dates[0])
	if err != nil {
		return "", nil, err
	}
	return dates[0], table, nil
}

// Dates lists stored snapshot dates, newest first.
func (s *SnapshotStore) Dates(ctx context.Context) ([]string, error) {
	dates, err := s.client.ZRevRange(ctx, snapshotIndex, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return dates, nil
}
