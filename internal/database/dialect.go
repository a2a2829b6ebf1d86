package database

import (
	"database/sql"
	"regexp"
	"strconv"

	migratedb "github.com/golang-migrate/migrate/v4/database"
)

// Dialect isolates the SQL differences between supported databases.
type Dialect interface {
	// DriverName returns the driver name for sql.Open.
	DriverName() string

	DSN(config DialectConfig) string

	// RewriteQuery converts ? placeholders where the driver needs another syntax.
	RewriteQuery(query string) string

	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir names the embedded migrations directory for this dialect.
	MigrationsSubdir() string

	// MigrationDriver wraps an open pool for golang-migrate.
	MigrationDriver(db *sql.DB) (migratedb.Driver, error)

	// UpsertProgressQuery writes (storage_key, payload), replacing any existing row.
	UpsertProgressQuery() string
}

type DialectConfig struct {
	// For SQLite
	Path string

	// For PostgreSQL/MySQL
	URL string
}

var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, etc.
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}
