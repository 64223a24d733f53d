package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/streakline/internal/cadence"
	apperrors "github.com/julianstephens/streakline/internal/errors"
	"github.com/julianstephens/streakline/internal/models"
	"github.com/julianstephens/streakline/internal/storage"
)

// TestStore_Integration runs against a real database.
// Example: POSTGRES_TEST_URL="postgres://streakline@localhost:5432/streakline_test?sslmode=disable"
func TestStore_Integration(t *testing.T) {
	connStr := os.Getenv("POSTGRES_TEST_URL")
	if connStr == "" {
		t.Skip("POSTGRES_TEST_URL not set, skipping PostgreSQL integration test")
	}

	ctx := context.Background()
	store := New(connStr)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}
	defer store.Close()

	now := time.Now().UTC().Truncate(time.Second)
	today := cadence.Day(now)
	userID := "it-" + uuid.NewString()
	habit := models.Habit{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        "Integration",
		Cadence:     cadence.Weekly{Days: cadence.NewWeekdaySet(time.Monday, time.Thursday)},
		TargetValue: 1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	t.Cleanup(func() { _ = store.DeleteHabit(ctx, userID, habit.ID) })

	err := store.WithTx(ctx, func(tx storage.Tx) error {
		if err := tx.InsertHabit(ctx, habit); err != nil {
			return err
		}
		return tx.SaveStreak(ctx, models.StreakRecord{HabitID: habit.ID, UpdatedAt: now})
	})
	if err != nil {
		t.Fatalf("Failed to insert habit: %v", err)
	}

	t.Run("LockAndUpsert", func(t *testing.T) {
		err := store.WithTx(ctx, func(tx storage.Tx) error {
			if _, err := tx.LockHabit(ctx, userID, habit.ID); err != nil {
				return err
			}
			for i := 0; i < 2; i++ {
				if _, err := tx.UpsertCompletion(ctx, models.CompletionLog{
					ID: uuid.NewString(), HabitID: habit.ID, UserID: userID, Date: today, Value: i + 1,
					CreatedAt: now, UpdatedAt: now,
				}, today); err != nil {
					return err
				}
			}
			dates, err := tx.ListCompletionDates(ctx, habit.ID)
			if err != nil {
				return err
			}
			if len(dates) != 1 || !dates[0].Equal(today) {
				t.Errorf("dates = %v, want [%v]", dates, today)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("transaction failed: %v", err)
		}
	})

	t.Run("ForeignUser", func(t *testing.T) {
		if _, err := store.GetHabit(ctx, "someone-else", habit.ID); !errors.Is(err, apperrors.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Cascade", func(t *testing.T) {
		if err := store.DeleteHabit(ctx, userID, habit.ID); err != nil {
			t.Fatalf("DeleteHabit failed: %v", err)
		}
		logs, err := store.ListCompletions(ctx, habit.ID, storage.LogRange{})
		if err != nil {
			t.Fatalf("ListCompletions failed: %v", err)
		}
		if len(logs) != 0 {
			t.Errorf("expected cascade delete, got %d logs", len(logs))
		}
	})
}
