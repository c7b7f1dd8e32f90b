// Package worker implements the buffered worker pool that archives raw
// leaderboard results in ClickHouse. Updates enqueue results and return
// immediately; workers batch them into inserts and flush on a ticker and
// on shutdown.

package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/slidyranks/ranks-api/internal/models"
)

const archiveSchema = `
	CREATE TABLE IF NOT EXISTS slidy.results (
		result_id    UUID,
		archived_at  DateTime,
		width        UInt16,
		height       UInt16,
		solve_type   LowCardinality(String),
		display_type LowCardinality(String),
		user         String,
		time_ms      Int64,
		moves        Int64,
		tps          Int64,
		avg_len      UInt16,
		controls     LowCardinality(String),
		pb_type      LowCardinality(String),
		timestamp    Int64
	) ENGINE = ReplacingMergeTree(archived_at)
	ORDER BY (user, width, height, solve_type, avg_len, pb_type, result_id)`

const insertResults = `
	INSERT INTO slidy.results (
		result_id, archived_at, width, height, solve_type, display_type, user,
		time_ms, moves, tps, avg_len, controls, pb_type, timestamp
	)`

// Prometheus metrics
var (
	resultsQueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slidy_archive_results_queued_total",
		Help: "Total number of results queued for archiving",
	})

	resultsArchived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slidy_archive_results_archived_total",
		Help: "Total number of results written to ClickHouse",
	})

	resultsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slidy_archive_results_failed_total",
		Help: "Total number of results that failed to archive",
	})

	resultsLoadShed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slidy_archive_results_load_shed_total",
		Help: "Total number of results dropped because the queue was full",
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slidy_archive_queue_depth",
		Help: "Current depth of the archive queue",
	})

	batchInsertDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "slidy_archive_batch_insert_duration_seconds",
		Help:    "Duration of batch inserts to ClickHouse",
		Buckets: prometheus.DefBuckets,
	})
)

// Job represents a unit of work for the worker pool
type Job struct {
	Result    models.Result
	Timestamp time.Time
}

// PoolConfig configures the worker pool
type PoolConfig struct {
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	ClickHouse    driver.Conn
	Logger        *zap.Logger
}

// Pool manages a pool of workers that archive results
type Pool struct {
	config   PoolConfig
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.SugaredLogger
	stopOnce sync.Once
}

// NewPool creates a new worker pool
func NewPool(cfg PoolConfig) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 50000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1000
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}

	return &Pool{
		config:   cfg,
		jobQueue: make(chan Job, cfg.QueueSize),
		logger:   cfg.Logger.Sugar(),
	}
}

// EnsureSchema creates the archive table if needed.
func (p *Pool) EnsureSchema(ctx context.Context) error {
	if err := p.config.ClickHouse.Exec(ctx, "CREATE DATABASE IF NOT EXISTS slidy"); err != nil {
		return fmt.Errorf("create database: %w", err)
	}
	if err := p.config.ClickHouse.Exec(ctx, archiveSchema); err != nil {
		return fmt.Errorf("create results table: %w", err)
	}
	return nil
}

// Start launches the worker goroutines
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	go p.reportQueueDepth()

	p.logger.Infow("Archive pool started",
		"workers", p.config.WorkerCount,
		"queueSize", p.config.QueueSize,
		"batchSize", p.config.BatchSize,
	)
}

// Stop flushes queued results and waits for the workers to exit.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.logger.Info("Stopping archive pool...")
		close(p.jobQueue)
		p.wg.Wait()
		if p.cancel != nil {
			p.cancel()
		}
		p.logger.Info("Archive pool stopped")
	})
}

// Enqueue adds a result to the queue. It never blocks: when the queue is
// full the result is dropped and false is returned.
func (p *Pool) Enqueue(result models.Result) bool {
	job := Job{
		Result:    result,
		Timestamp: time.Now(),
	}

	// Protect against sending on closed channel
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warnw("Failed to enqueue result (pool stopped)", "error", r)
		}
	}()

	select {
	case p.jobQueue <- job:
		resultsQueued.Inc()
		return true
	default:
		resultsLoadShed.Inc()
		return false
	}
}

// QueueDepth returns current queue size
func (p *Pool) QueueDepth() int {
	return len(p.jobQueue)
}

func (p *Pool) reportQueueDepth() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			queueDepth.Set(float64(len(p.jobQueue)))
		case <-p.ctx.Done():
			return
		}
	}
}

// worker processes jobs from the queue in batches
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	batch := make([]Job, 0, p.config.BatchSize)
	ticker := time.NewTicker(p.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		start := time.Now()
		if err := p.processBatch(batch); err != nil {
			p.logger.Errorw("Batch processing failed",
				"worker", id,
				"batchSize", len(batch),
				"error", err,
			)
			resultsFailed.Add(float64(len(batch)))
		} else {
			p.logger.Debugw("Batch archived", "worker", id, "batchSize", len(batch), "duration", time.Since(start))
			resultsArchived.Add(float64(len(batch)))
		}
		batchInsertDuration.Observe(time.Since(start).Seconds())

		batch = batch[:0]
	}

	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				// Channel closed, flush remaining
				flush()
				return
			}
			batch = append(batch, job)
			if len(batch) >= p.config.BatchSize {
				flush()
			}

		case <-ticker.C:
			flush()

		case <-p.ctx.Done():
			flush()
			return
		}
	}
}

// processBatch writes a batch of results to ClickHouse
func (p *Pool) processBatch(batch []Job) error {
	if len(batch) == 0 {
		return nil
	}

	ctx := context.Background()

	chBatch, err := p.config.ClickHouse.PrepareBatch(ctx, insertResults)
	if err != nil {
		return err
	}

	for _, job := range batch {
		r := job.Result
		err := chBatch.Append(
			ResultID(r),
			job.Timestamp.UTC(),
			uint16(r.Width),
			uint16(r.Height),
			r.SolveType,
			r.DisplayType,
			r.User,
			int64(r.Time),
			int64(r.Moves),
			int64(r.TPS),
			uint16(r.AvgLen),
			r.Controls,
			r.PBType,
			r.Timestamp,
		)
		if err != nil {
			p.logger.Warnw("Failed to append result to batch", "error", err, "user", r.User)
			continue
		}
	}

	if err := chBatch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// ResultID derives a stable id for a result so re-archiving the same
// personal best collapses into one row.
func ResultID(r models.Result) uuid.UUID {
	key := fmt.Sprintf("%s|%dx%d|%s|%s|%d|%s|%s|%d|%d",
		r.User, r.Width, r.Height, r.SolveType, r.DisplayType, r.AvgLen,
		r.Controls, r.PBType, r.Time, r.Timestamp)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key))
}
