package main

import (
	"log/slog"

	"github.com/voidshard/wasmbuild/pkg/database"
)

const (
	docMigrate = `Apply (or with --down, remove) the postgres schema`
)

type optsMigrate struct {
	optsGeneral
	optsDatabase

	Down bool `long:"down" description:"Remove the schema rather than apply it"`
}

func (c *optsMigrate) Execute(args []string) error {
	c.setupLogging()

	dbOpts, err := c.optsDatabase.options()
	if err != nil {
		return err
	}
	if err := database.Migrate(dbOpts, c.Down); err != nil {
		return err
	}
	slog.Info("Migration complete", "down", c.Down)
	return nil
}
