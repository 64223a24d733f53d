package constants

import "time"

const (
	AppName            = "streakline"
	DefaultKeyringUser = "default"
	DefaultConfigDir   = "~/.config/streakline"
	DefaultConfigPath  = "~/.config/streakline/config.yaml"
	DefaultDBPath      = "~/.config/streakline/streakline.db"
	Version            = "v0.1.0"

	// DateFormat is the calendar date format used for completion dates (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the reminder time format (HH:MM)
	TimeFormat = "15:04"

	// TimeFormatSeconds is the long reminder time format (HH:MM:SS)
	TimeFormatSeconds = "15:04:05"
)

// Habit field limits
const (
	MaxHabitNameLen    = 255
	MaxDescriptionLen  = 1000
	MaxIconLen         = 50
	MaxUnitLen         = 50
	MaxNotesLen        = 500
	DefaultTargetValue = 1
	DefaultLogValue    = 1
)

// Listing defaults
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
	TopStreaksLimit  = 5
)

// Mutation and read-path defaults
const (
	DefaultMutationRetries = 2
	DefaultTxTimeout       = 5 * time.Second
	DefaultLockTTL         = 10 * time.Second
	DefaultCacheSize       = 512
	RetryBackoff           = 25 * time.Millisecond
)
