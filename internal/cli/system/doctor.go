package system

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/streakline/internal/cadence"
	"github.com/julianstephens/streakline/internal/cli"
	"github.com/julianstephens/streakline/internal/constants"
	"github.com/julianstephens/streakline/internal/habits"
	"github.com/julianstephens/streakline/internal/keyring"
	"github.com/julianstephens/streakline/internal/lock"
	"github.com/julianstephens/streakline/internal/streak"
)

type DoctorCmd struct{}

type check struct {
	name string
	run  func(*cli.Context) error
	// needsDB checks are skipped when the database is unreachable.
	needsDB bool
	// warnOnly failures do not fail the command.
	warnOnly bool
}

var checks = []check{
	{name: "Configuration", run: checkConfig},
	{name: "Database reachable", run: checkDBReachable},
	{name: "Schema version", run: checkSchemaVersion, needsDB: true},
	{name: "Clock/timezone", run: checkClockTimezone},
	{name: "Redis lock", run: checkRedis},
	{name: "Keyring", run: checkKeyring, warnOnly: true},
	{name: "Streak records", run: checkStreakRecords, needsDB: true},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	dbReachable := false
	for _, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
			if c.name == "Database reachable" {
				dbReachable = true
			}
		case c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkConfig(ctx *cli.Context) error {
	return ctx.Config.Validate()
}

func checkDBReachable(ctx *cli.Context) error {
	if ctx.Store == nil {
		return fmt.Errorf("no database configured")
	}
	if err := ctx.Store.Load(ctx.RunContext()); err != nil {
		return err
	}
	return ctx.Store.Ping(ctx.RunContext())
}

func checkSchemaVersion(ctx *cli.Context) error {
	current, latest, err := ctx.Store.MigrationStatus(ctx.RunContext())
	if err != nil {
		return err
	}
	if current < latest {
		return fmt.Errorf("schema version %d is behind %d, run 'streakline migrate'", current, latest)
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	loc, err := ctx.Config.Location()
	if err != nil {
		return err
	}
	now := time.Now()
	if now.Year() < 2000 {
		return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	if ctx.Service != nil {
		want := cadence.Day(now.In(loc))
		if today := ctx.Service.Today(); !today.Equal(want) {
			return fmt.Errorf("service date %s does not match %s in %s", today.Format(constants.DateFormat), want.Format(constants.DateFormat), loc)
		}
	}
	return nil
}

// checkRedis passes trivially when no Redis lock is configured.
func checkRedis(ctx *cli.Context) error {
	if ctx.Config.RedisURL == "" {
		return nil
	}
	pingCtx, cancel := context.WithTimeout(ctx.RunContext(), 5*time.Second)
	defer cancel()
	l, err := lock.NewRedisLocker(pingCtx, ctx.Config.RedisURL, ctx.Config.LockTTL)
	if err != nil {
		return err
	}
	defer l.Close()
	return l.Ping(pingCtx)
}

func checkKeyring(ctx *cli.Context) error {
	st := keyring.Check(keyring.DatabaseKey)
	if !st.Available {
		return keyring.ErrKeyringUnavailable
	}
	if ctx.Config.Database == cli.KeyringDatabase && !st.Stored {
		return fmt.Errorf("database is set to %q but the keyring holds no connection string", cli.KeyringDatabase)
	}
	return nil
}

// checkStreakRecords recomputes every habit's record from its logs and
// compares the parts that do not depend on today's date.
func checkStreakRecords(ctx *cli.Context) error {
	svc := ctx.Service
	today := svc.Today()
	stale := 0
	for page := 1; ; page++ {
		p, err := svc.ListHabits(ctx.RunContext(), ctx.UserID, habits.HabitFilter{
			IncludeArchived: true,
			Page:            page,
			Limit:           constants.MaxPageLimit,
		})
		if err != nil {
			return err
		}
		for _, h := range p.Habits {
			logs, err := svc.History(ctx.RunContext(), h.ID, ctx.UserID, nil, nil)
			if err != nil {
				return err
			}
			dates := make([]time.Time, len(logs))
			for i, l := range logs {
				dates[i] = l.Date
			}
			want := streak.Compute(h.Cadence, dates, today)
			if want.LongestStreak != h.LongestStreak || want.TotalCompletions != h.TotalCompletions {
				stale++
			}
		}
		if page >= p.Pagination.TotalPages {
			break
		}
	}
	if stale > 0 {
		return fmt.Errorf("%d habit(s) have streak records that do not match their logs, run 'streakline streak --refresh <habit>'", stale)
	}
	return nil
}
