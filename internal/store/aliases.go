package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const aliasSchema = `
	CREATE TABLE IF NOT EXISTS user_aliases (
		alias      TEXT PRIMARY KEY,
		username   TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

// AliasStore resolves display handles to leaderboard usernames using a
// Postgres table. Handles without an alias resolve to themselves.
type AliasStore struct {
	pg     PgPool
	logger *zap.SugaredLogger
}

func NewAliasStore(pg PgPool, logger *zap.Logger) *AliasStore {
	return &AliasStore{pg: pg, logger: logger.Sugar()}
}

// EnsureSchema creates the alias table if it is missing.
func (s *AliasStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pg.Exec(ctx, aliasSchema); err != nil {
		return fmt.Errorf("create user_aliases: %w", err)
	}
	return nil
}

// Resolve returns the canonical username for handle.
func (s *AliasStore) Resolve(ctx context.Context, handle string) (string, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return "", errors.New("empty handle")
	}

	var username string
	err := s.pg.QueryRow(ctx,
		"SELECT username FROM user_aliases WHERE alias = $1",
		strings.ToLower(handle)).Scan(&username)
	if errors.Is(err, pgx.ErrNoRows) {
		return handle, nil
	}
	if err != nil {
		return "", fmt.Errorf("lookup alias %q: %w", handle, err)
	}

	s.logger.Debugw("Alias resolved", "handle", handle, "username", username)
	return username, nil
}

// Set maps alias (case-insensitive) to username.
func (s *AliasStore) Set(ctx context.Context, alias, username string) error {
	alias = strings.ToLower(strings.TrimSpace(alias))
	if alias == "" || username == "" {
		return errors.New("alias and username are required")
	}
	_, err := s.pg.Exec(ctx, `
		INSERT INTO user_aliases (alias, username)
		VALUES ($1, $2)
		ON CONFLICT (alias) DO UPDATE SET username = EXCLUDED.username, updated_at = now()
	`, alias, username)
	if err != nil {
		return fmt.Errorf("store alias %q: %w", alias, err)
	}
	return nil
}
