package database

import (
	"embed"
	"fmt"
	"log"
	"path"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*/*.sql
var embedMigrations embed.FS

// RunMigrations applies the embedded migrations for the connection's dialect
func (db *DB) RunMigrations() error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(db.Dialect.GooseDialect()); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	dir := path.Join("migrations", db.Dialect.MigrationsSubdir())
	if err := goose.Up(db.DB, dir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, err := goose.GetDBVersion(db.DB)
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}
	log.Printf("Database schema at version %d", version)

	return nil
}
