// Command archivestats prints a summary of the raw result archive.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/ClickHouse/clickhouse-go/v2"
)

func main() {
	dsn := os.Getenv("CLICKHOUSE_URL")
	if dsn == "" {
		dsn = "clickhouse://default:@localhost:9000/slidy"
	}
	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	conn, err := clickhouse.Open(opts)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	var count, users uint64
	err = conn.QueryRow(ctx, "SELECT count(), uniqExact(user) FROM slidy.results FINAL").Scan(&count, &users)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Archived results: %d (%d users)\n", count, users)

	query := `
		SELECT width, height, pb_type, count()
		FROM slidy.results FINAL
		GROUP BY width, height, pb_type
		ORDER BY width, height, pb_type`
	var args []any
	if len(os.Args) > 1 {
		query = `
		SELECT width, height, pb_type, count()
		FROM slidy.results FINAL
		WHERE user = ?
		GROUP BY width, height, pb_type
		ORDER BY width, height, pb_type`
		args = append(args, os.Args[1])
		fmt.Printf("Results for %s:\n", os.Args[1])
	}

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		log.Fatal(err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			width, height uint16
			pbType        string
			n             uint64
		)
		if err := rows.Scan(&width, &height, &pbType, &n); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("  %dx%d %-4s %d\n", width, height, pbType, n)
	}
	if err := rows.Err(); err != nil {
		log.Fatal(err)
	}
}
