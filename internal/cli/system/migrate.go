package system

import (
	"fmt"

	"github.com/julianstephens/streakline/internal/cli"
)

type MigrateCmd struct {
	Status bool `help:"Only report the schema version."`
}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	if c.Status {
		current, latest, err := ctx.Store.MigrationStatus(ctx.RunContext())
		if err != nil {
			return err
		}
		ctx.Printf("Schema version %d of %d\n", current, latest)
		return nil
	}

	current, latest, err := ctx.Store.MigrationStatus(ctx.RunContext())
	if err != nil {
		return err
	}
	if current > 0 && current < latest {
		if mgr, err := ctx.Backups(); err == nil {
			snap, err := mgr.Create(ctx.RunContext())
			if err != nil {
				return fmt.Errorf("failed to back up database before migrating: %w", err)
			}
			ctx.Printf("Backed up database to %s\n", snap.Path)
		}
	}

	count, err := ctx.Store.Migrate(ctx.RunContext(), func(msg string) {
		ctx.Println(msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		ctx.Println("No migrations to apply. Database is up to date.")
	} else {
		ctx.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}
