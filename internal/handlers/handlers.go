package handlers

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/slidyranks/ranks-api/internal/logic"
)

// ArchiveQueue is the part of the archive worker pool the handlers report on
type ArchiveQueue interface {
	QueueDepth() int
}

// ReadyCheck pings one dependency.
type ReadyCheck func(ctx context.Context) error

type Config struct {
	Leaderboard logic.LeaderboardService
	Archive     ArchiveQueue
	ReadyChecks map[string]ReadyCheck
	AdminToken  string
	Logger      *zap.Logger
}

type Handler struct {
	leaderboard logic.LeaderboardService
	archive     ArchiveQueue
	checks      map[string]ReadyCheck
	adminToken  string
	logger      *zap.SugaredLogger
	validator   *validator.Validate
}

func New(cfg Config) *Handler {
	return &Handler{
		leaderboard: cfg.Leaderboard,
		archive:     cfg.Archive,
		checks:      cfg.ReadyChecks,
		adminToken:  cfg.AdminToken,
		logger:      cfg.Logger.Sugar(),
		validator:   validator.New(),
	}
}
