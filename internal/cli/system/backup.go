package system

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/streakline/internal/cli"
)

type BackupCmd struct {
	Create  BackupCreateCmd  `cmd:"" default:"1" help:"Snapshot the database."`
	List    BackupListCmd    `cmd:"" help:"List database snapshots."`
	Restore BackupRestoreCmd `cmd:"" help:"Restore the database from a snapshot."`
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	mgr, err := ctx.Backups()
	if err != nil {
		return err
	}
	snap, err := mgr.Create(ctx.RunContext())
	if err != nil {
		return err
	}
	ctx.Success("Backup written to %s", snap.Path)
	return nil
}

type BackupListCmd struct {
	JSON bool `help:"Output as JSON."`
}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr, err := ctx.Backups()
	if err != nil {
		return err
	}
	snaps, err := mgr.List()
	if err != nil {
		return err
	}
	if c.JSON {
		return ctx.JSON(snaps)
	}
	if len(snaps) == 0 {
		ctx.Printf("No backups in %s.\n", mgr.Dir())
		return nil
	}
	ctx.Println(cli.BackupTable(snaps))
	return nil
}

type BackupRestoreCmd struct {
	File string `arg:"" optional:"" help:"Snapshot file name or path. Defaults to the newest snapshot."`
	Yes  bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr, err := ctx.Backups()
	if err != nil {
		return err
	}

	path := c.File
	if path == "" {
		snaps, err := mgr.List()
		if err != nil {
			return err
		}
		if len(snaps) == 0 {
			return fmt.Errorf("no backups found in %s", mgr.Dir())
		}
		path = snaps[0].Path
	} else if filepath.Base(path) == path {
		path = filepath.Join(mgr.Dir(), path)
	}

	if !c.Yes {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Replace the database with %s?", filepath.Base(path))).
			Affirmative("Restore").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil {
			return err
		}
		if !confirmed {
			ctx.Println("Cancelled.")
			return nil
		}
	}

	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	previous, err := mgr.Restore(ctx.RunContext(), path)
	if err != nil {
		return err
	}
	ctx.Success("Restored database from %s", filepath.Base(path))
	if previous.Path != "" {
		ctx.Printf("Previous database saved to %s\n", previous.Path)
	}
	return nil
}
