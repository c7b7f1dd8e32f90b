// aliasimport copies handle aliases from the legacy MySQL bot database into
// the Postgres user_aliases table used by the ranks API.
package main

import (
	"context"
	"database/sql"
	"log"
	"os"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/slidyranks/ranks-api/internal/store"
)

func main() {
	mysqlDSN := os.Getenv("LEGACY_MYSQL_DSN")
	pgURL := os.Getenv("POSTGRES_URL")
	if mysqlDSN == "" || pgURL == "" {
		log.Fatal("LEGACY_MYSQL_DSN and POSTGRES_URL are required")
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()
	sugar := logger.Sugar()

	legacy, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		sugar.Fatalw("Failed to open legacy database", "error", err)
	}
	defer legacy.Close()

	ctx := context.Background()
	pg, err := pgxpool.New(ctx, pgURL)
	if err != nil {
		sugar.Fatalw("Failed to connect to Postgres", "error", err)
	}
	defer pg.Close()

	aliases := store.NewAliasStore(pg, logger)
	if err := aliases.EnsureSchema(ctx); err != nil {
		sugar.Fatalw("Failed to prepare alias table", "error", err)
	}

	rows, err := ReadLegacyAliases(legacy)
	if err != nil {
		sugar.Fatalw("Failed to read legacy aliases", "error", err)
	}

	imported, skipped := 0, 0
	for _, a := range rows {
		if !IsImportable(a) {
			skipped++
			continue
		}
		if err := aliases.Set(ctx, a.Handle, a.Username); err != nil {
			sugar.Errorw("Failed to import alias", "handle", a.Handle, "error", err)
			skipped++
			continue
		}
		imported++
	}

	sugar.Infow("Alias import finished", "imported", imported, "skipped", skipped)
}
