// Package feed fetches raw personal bests from the slidysim leaderboard.
package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/slidyranks/ranks-api/internal/models"
)

// The leaderboard prefixes every response with a fixed banner.
const preambleLen = 19

const recordSeparator = "<br>"

// Column layout of a feed record. Column 11 carries solve data, which is
// never requested.
const (
	colWidth = iota
	colHeight
	colSolveType
	colDisplayType
	colUser
	colTime
	colMoves
	colTPS
	colAvgLen
	colControls
	colPBType
	colSolveData
	colTimestamp
	numColumns
)

var (
	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "slidy_feed_fetch_duration_seconds",
		Help:    "Duration of leaderboard feed requests",
		Buckets: prometheus.DefBuckets,
	})

	fetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slidy_feed_fetch_failures_total",
		Help: "Leaderboard feed requests that failed",
	})

	fetchedResults = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slidy_feed_results_total",
		Help: "Results parsed from the leaderboard feed",
	})
)

// Config configures the feed client.
type Config struct {
	URL     string
	Version string
	Timeout time.Duration
	// RatePerSecond limits outgoing requests. Zero disables limiting.
	RatePerSecond float64
	HTTPClient    *http.Client
	Logger        *zap.Logger
}

// Client talks to the leaderboard endpoint.
type Client struct {
	url     string
	version string
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.SugaredLogger
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Version == "" {
		cfg.Version = "28.3"
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		url:     cfg.URL,
		version: cfg.Version,
		http:    httpClient,
		limiter: limiter,
		logger:  logger.Sugar(),
	}
}

// Fetch queries the leaderboard and parses the returned records.
func (c *Client) Fetch(ctx context.Context, q models.FeedQuery) ([]models.Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() { fetchDuration.Observe(time.Since(start).Seconds()) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(c.form(q).Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		fetchFailures.Inc()
		return nil, fmt.Errorf("leaderboard request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fetchFailures.Inc()
		return nil, fmt.Errorf("read leaderboard response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		fetchFailures.Inc()
		return nil, fmt.Errorf("leaderboard returned %s", resp.Status)
	}

	results, err := Parse(string(body))
	if err != nil {
		fetchFailures.Inc()
		return nil, err
	}
	fetchedResults.Add(float64(len(results)))

	c.logger.Debugw("Fetched leaderboard",
		"width", q.Width,
		"height", q.Height,
		"user", q.User,
		"pbtype", q.PBType,
		"results", len(results),
		"duration", time.Since(start),
	)
	return results, nil
}

func (c *Client) form(q models.FeedQuery) url.Values {
	dim := func(v int) string {
		if v <= 0 {
			return "-1"
		}
		return strconv.Itoa(v)
	}
	solveType := q.SolveType
	if solveType == "" {
		solveType = "any"
	}
	pbType := q.PBType
	if pbType == "" {
		pbType = models.PBTypeTime
	}

	return url.Values{
		"width":       {dim(q.Width)},
		"height":      {dim(q.Height)},
		"solvetype":   {solveType},
		"displaytype": {"Standard"},
		"avglen":      {dim(q.AvgLen)},
		"pbtype":      {pbType},
		"sortby":      {"time"},
		"controls":    {"km"},
		"user":        {q.User},
		"solvedata":   {"0"},
		"version":     {c.version},
	}
}

// Parse decodes a leaderboard response body. A record with a non-numeric
// value in a numeric column fails the whole response.
func Parse(body string) ([]models.Result, error) {
	if len(body) < preambleLen {
		return nil, nil
	}

	// Every record is terminated by the separator; whatever follows the
	// last one is not a record.
	records := strings.Split(body[preambleLen:], recordSeparator)
	records = records[:len(records)-1]

	var results []models.Result
	for n, line := range records {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r, err := parseRecord(line)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", n+1, err)
		}
		results = append(results, r)
	}
	return results, nil
}

func parseRecord(line string) (models.Result, error) {
	f := strings.Split(line, ",")
	if len(f) < numColumns {
		return models.Result{}, fmt.Errorf("expected %d columns, got %d", numColumns, len(f))
	}

	var r models.Result
	ints := []struct {
		col int
		dst *int
	}{
		{colWidth, &r.Width},
		{colHeight, &r.Height},
		{colTime, &r.Time},
		{colMoves, &r.Moves},
		{colTPS, &r.TPS},
		{colAvgLen, &r.AvgLen},
	}
	for _, v := range ints {
		n, err := strconv.Atoi(strings.TrimSpace(f[v.col]))
		if err != nil {
			return models.Result{}, fmt.Errorf("column %d: %w", v.col, err)
		}
		*v.dst = n
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(f[colTimestamp]), 10, 64)
	if err != nil {
		return models.Result{}, fmt.Errorf("column %d: %w", colTimestamp, err)
	}

	r.SolveType = f[colSolveType]
	r.DisplayType = f[colDisplayType]
	r.User = f[colUser]
	r.Controls = f[colControls]
	r.PBType = f[colPBType]
	r.Timestamp = ts
	return r, nil
}
