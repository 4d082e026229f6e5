package database

import (
	"database/sql"
	"embed"
	stderrs "errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrate brings the postgres schema at opts.URL up to date (or, if down is
// set, removes it).
func Migrate(opts *Options, down bool) error {
	opts.SetDefaults()

	db, err := sql.Open("postgres", opts.url())
	if err != nil {
		return err
	}
	defer db.Close()

	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("failed to init migration driver: %w", err)
	}
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return err
	}

	if down {
		err = m.Down()
	} else {
		err = m.Up()
	}
	if stderrs.Is(err, migrate.ErrNoChange) {
		slog.Info("Database schema already up to date")
		return nil
	} else if err != nil {
		return err
	}

	version, dirty, _ := m.Version()
	slog.Info("Migrated database schema", "version", version, "dirty", dirty, "down", down)
	return nil
}
