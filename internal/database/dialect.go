package database

import (
	"database/sql"
	"regexp"
	"strconv"
)

// Dialect defines the interface for database-specific operations
type Dialect interface {
	// DriverName returns the driver name for sql.Open
	DriverName() string

	// DSN returns the data source name for the connection
	DSN(config DialectConfig) string

	// RewriteQuery converts placeholder syntax if needed (e.g., ? to $1 for postgres)
	RewriteQuery(query string) string

	// ConfigureConnection applies any database-specific connection settings
	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir returns the subdirectory name for migrations (e.g., "sqlite", "postgres")
	MigrationsSubdir() string

	// GooseDialect returns the dialect name goose uses for its version table
	GooseDialect() string

	// InsertDayIfAbsentQuery inserts (email, day, total_intake) and does nothing
	// when the day already exists
	InsertDayIfAbsentQuery() string

	// UpsertEntryQuery inserts (email, day, food_key, amount) or adds amount to
	// the existing entry
	UpsertEntryQuery() string
}

// DialectConfig holds configuration for database connection
type DialectConfig struct {
	// For SQLite
	Path string

	// For PostgreSQL/MySQL
	URL string
}

// placeholderRegexp matches ? placeholders not inside quotes
var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, etc.
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(match string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}

// onConflictInsertDay and onConflictUpsertEntry are shared by the dialects
// that understand ON CONFLICT (SQLite 3.24+ and PostgreSQL)
const (
	onConflictInsertDay = `
		INSERT INTO day_logs (email, day, total_intake)
		VALUES (?, ?, ?)
		ON CONFLICT (email, day) DO NOTHING
	`
	onConflictUpsertEntry = `
		INSERT INTO day_entries (email, day, food_key, amount)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (email, day, food_key) DO UPDATE SET amount = day_entries.amount + excluded.amount
	`
)
