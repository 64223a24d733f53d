package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/streakline/internal/cli"
	"github.com/julianstephens/streakline/internal/cli/habit"
	"github.com/julianstephens/streakline/internal/cli/system"
	"github.com/julianstephens/streakline/internal/cli/tracking"
	"github.com/julianstephens/streakline/internal/config"
	"github.com/julianstephens/streakline/internal/constants"
	apperrors "github.com/julianstephens/streakline/internal/errors"
	"github.com/julianstephens/streakline/internal/logger"
	"github.com/julianstephens/streakline/internal/storage"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Config file path." default:"~/.config/streakline/config.yaml"`
	DB       string `name:"db" help:"SQLite database path, or a PostgreSQL connection string without a password. 'keyring' reads the connection string from the OS keyring."`
	User     string `help:"User whose habits to act on (default: the OS user)."`
	Timezone string `help:"IANA timezone that decides the current date (default: local)."`
	Debug    bool   `help:"Log debug output to stderr."`

	Init    system.InitCmd    `cmd:"" help:"Write the config file and initialize storage."`
	Migrate system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Backup  system.BackupCmd  `cmd:"" help:"Snapshot and restore the SQLite database."`
	Keyring system.KeyringCmd `cmd:"" help:"Manage the database connection string in the OS keyring."`
	Tui     system.TuiCmd     `cmd:"" help:"Launch the interactive dashboard." default:"1"`

	Habit   habit.HabitCmd      `cmd:"" help:"Manage habits."`
	Log     tracking.LogCmd     `cmd:"" help:"Log a habit completion."`
	Unlog   tracking.UnlogCmd   `cmd:"" help:"Remove a habit completion."`
	Streak  tracking.StreakCmd  `cmd:"" help:"Show a habit's streak."`
	History tracking.HistoryCmd `cmd:"" help:"Show a habit's completion history."`
	Stats   tracking.StatsCmd   `cmd:"" help:"Show habit statistics."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit tracker with recurrence-aware streaks"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		apperrors.Fatal(err)
	}
	if CLI.DB != "" {
		cfg.Database = CLI.DB
	}
	if CLI.User != "" {
		cfg.User = CLI.User
	}
	if CLI.Timezone != "" {
		cfg.Timezone = CLI.Timezone
	}
	if err := cfg.Validate(); err != nil {
		apperrors.Fatal(err)
	}

	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		Level:     cfg.LogLevel,
		ConfigDir: filepath.Dir(config.ExpandHome(CLI.Config)),
	}); err != nil {
		apperrors.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command := kctx.Command()
	var store storage.Provider
	if !strings.HasPrefix(command, "keyring") {
		if store, err = cli.OpenStore(cfg.Database); err != nil {
			apperrors.Fatal(err)
		}
	}

	appCtx, err := cli.Setup(ctx, cfg, store)
	if err != nil {
		apperrors.Fatal(err)
	}
	appCtx.ConfigPath = CLI.Config
	appCtx.Ctx = ctx

	// init creates the store and doctor reports load failures itself.
	if store != nil && command != "init" && command != "doctor" {
		if err := store.Load(ctx); err != nil {
			_ = appCtx.Close()
			apperrors.Fatal(err)
		}
	}

	err = kctx.Run(appCtx)
	if closeErr := appCtx.Close(); closeErr != nil {
		logger.Warn("Failed to close resources", "error", closeErr)
	}
	if err != nil {
		stop()
		apperrors.Fatal(err)
	}
}
