package system

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/streakline/internal/cli"
	"github.com/julianstephens/streakline/internal/config"
)

type InitCmd struct {
	Force bool `help:"Overwrite an existing config file with the current settings."`
}

// Run writes the config file if there is none yet and creates (or migrates)
// the database. Running it again is safe.
func (c *InitCmd) Run(ctx *cli.Context) error {
	if ctx.ConfigPath != "" {
		path := config.ExpandHome(ctx.ConfigPath)
		_, err := os.Stat(path)
		switch {
		case errors.Is(err, os.ErrNotExist) || (err == nil && c.Force):
			if err := ctx.Config.Write(path); err != nil {
				return err
			}
			ctx.Success("Wrote config to %s", path)
		case err != nil:
			return fmt.Errorf("failed to access config file: %w", err)
		}
	}

	if err := ctx.Store.Init(ctx.RunContext()); err != nil {
		return err
	}
	ctx.Success("Initialized streakline storage at: %s", ctx.Store.GetConfigPath())
	return nil
}
