package kv

import "regexp"

// Queries are written with Postgres-style $N placeholders and rewritten for
// SQLite, which binds positionally with '?'.
const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS kv_entries (
		namespace TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (namespace, key)
	)`
	selectValueSQL = `SELECT value FROM kv_entries WHERE namespace = $1 AND key = $2`
	upsertValueSQL = `INSERT INTO kv_entries (namespace, key, value) VALUES ($1, $2, $3)
		ON CONFLICT (namespace, key) DO UPDATE SET value = excluded.value`
	deleteNamespaceSQL = `DELETE FROM kv_entries WHERE namespace = $1`
)

var placeholder = regexp.MustCompile(`\$\d+`)

func positional(q string) string {
	return placeholder.ReplaceAllString(q, "?")
}
