package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/julianstephens/streakline/internal/backup"
	"github.com/julianstephens/streakline/internal/cadence"
	"github.com/julianstephens/streakline/internal/constants"
	"github.com/julianstephens/streakline/internal/models"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Width(20)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	MutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// Success prints a confirmation line prefixed with a check mark.
func (c *Context) Success(format string, args ...any) {
	c.Println(SuccessStyle.Render("✓ " + fmt.Sprintf(format, args...)))
}

func (c *Context) Warn(format string, args ...any) {
	c.Println(WarningStyle.Render("⚠ " + fmt.Sprintf(format, args...)))
}

// JSON writes v as indented JSON.
func (c *Context) JSON(v any) error {
	enc := json.NewEncoder(c.out())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func FormatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(constants.DateFormat)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// HabitTable renders habits with their streak summary.
func HabitTable(list []models.HabitWithStreak) string {
	t := newTable("ID", "Name", "Cadence", "Current", "Longest", "Last done", "")
	for _, h := range list {
		status := ""
		if h.IsArchived {
			status = "archived"
		}
		t.Row(
			h.ID,
			h.Name,
			cadence.Describe(h.Cadence),
			strconv.Itoa(h.CurrentStreak),
			strconv.Itoa(h.LongestStreak),
			FormatDate(h.LastCompleted),
			status,
		)
	}
	return t.String()
}

// LogTable renders completion logs, newest first.
func LogTable(logs []models.CompletionLog, unit string) string {
	valueHeader := "Value"
	if unit != "" {
		valueHeader += " (" + unit + ")"
	}
	t := newTable("Date", valueHeader, "Notes")
	for _, l := range logs {
		t.Row(l.Date.Format(constants.DateFormat), strconv.Itoa(l.Value), l.Notes)
	}
	return t.String()
}

// Fields renders label/value pairs one per line.
func BackupTable(snaps []backup.Snapshot) string {
	t := newTable("#", "Created", "Size", "File")
	for i, s := range snaps {
		t.Row(fmt.Sprint(i+1), s.CreatedAt.Local().Format("2006-01-02 15:04:05"), fmt.Sprintf("%.1f KB", float64(s.Size)/1024), filepath.Base(s.Path))
	}
	return t.Render()
}

func Fields(pairs ...string) string {
	lines := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		lines = append(lines, labelStyle.Render(pairs[i]+":")+" "+valueStyle.Render(pairs[i+1]))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// HabitDetails renders a single habit.
func HabitDetails(h models.Habit) string {
	pairs := []string{
		"ID", h.ID,
		"Name", h.Name,
		"Cadence", cadence.Describe(h.Cadence),
		"Target", strconv.Itoa(h.TargetValue) + " " + h.Unit,
	}
	if h.Description != "" {
		pairs = append(pairs, "Description", h.Description)
	}
	if h.Icon != "" {
		pairs = append(pairs, "Icon", h.Icon)
	}
	if h.Color != "" {
		pairs = append(pairs, "Color", lipgloss.NewStyle().Foreground(lipgloss.Color(h.Color)).Render(h.Color))
	}
	if h.ReminderEnabled {
		pairs = append(pairs, "Reminder", h.ReminderTime)
	}
	if h.IsArchived {
		pairs = append(pairs, "Archived", FormatDate(h.ArchivedAt))
	}
	pairs = append(pairs, "Created", h.CreatedAt.Local().Format(time.RFC822))
	return Fields(pairs...)
}

// StreakDetails renders a streak record.
func StreakDetails(rec models.StreakRecord) string {
	longest := strconv.Itoa(rec.LongestStreak)
	if rec.LongestStreak > 0 {
		longest += fmt.Sprintf(" (%s to %s)", FormatDate(rec.LongestStreakStart), FormatDate(rec.LongestStreakEnd))
	}
	current := strconv.Itoa(rec.CurrentStreak)
	if rec.CurrentStreak > 0 {
		current += " (since " + FormatDate(rec.CurrentStreakStart) + ")"
	}
	return Fields(
		"Current streak", current,
		"Longest streak", longest,
		"Last completed", FormatDate(rec.LastCompleted),
		"Total completions", strconv.Itoa(rec.TotalCompletions),
	)
}
