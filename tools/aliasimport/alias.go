package main

import (
	"database/sql"
	"strings"
)

// Alias is one legacy handle -> username mapping.
type Alias struct {
	Handle   string
	Username string
}

// IsImportable rejects rows the ranks API could never resolve: empty
// fields, handles with whitespace, and self-mappings.
func IsImportable(a Alias) bool {
	h := strings.TrimSpace(a.Handle)
	u := strings.TrimSpace(a.Username)
	if h == "" || u == "" || strings.ContainsAny(h, " \t\n") {
		return false
	}
	return !strings.EqualFold(h, u)
}

// ReadLegacyAliases loads the alias rows from the legacy MySQL database.
func ReadLegacyAliases(db *sql.DB) ([]Alias, error) {
	rows, err := db.Query("SELECT handle, username FROM bot_user_aliases")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Alias
	for rows.Next() {
		var a Alias
		if err := rows.Scan(&a.Handle, &a.Username); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
