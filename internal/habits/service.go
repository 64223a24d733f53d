// Package habits is the application service for habits, completion logs and
// streaks. Every mutation that can change a streak runs through the
// coordinator: per-habit lock, one store transaction, recompute, commit.
package habits

import (
	"time"

	"github.com/julianstephens/streakline/internal/cache"
	"github.com/julianstephens/streakline/internal/cadence"
	"github.com/julianstephens/streakline/internal/constants"
	"github.com/julianstephens/streakline/internal/lock"
	"github.com/julianstephens/streakline/internal/metrics"
	"github.com/julianstephens/streakline/internal/storage"
	"github.com/julianstephens/streakline/internal/streak"
)

type Options struct {
	// Locker serialises mutations per habit. Defaults to an in-process KeyedMutex.
	Locker lock.Locker
	// Cache serves GetStreak. Nil disables caching.
	Cache   *cache.StreakCache
	Metrics *metrics.Metrics
	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
	// Location decides the calendar date of "today". Defaults to time.Local.
	Location *time.Location
	// MutationRetries is how many times a conflicting mutation is retried.
	MutationRetries int
	// TxTimeout bounds each mutation attempt, lock wait included.
	TxTimeout time.Duration
}

type Service struct {
	store     storage.Provider
	engine    *streak.Engine
	locker    lock.Locker
	cache     *cache.StreakCache
	metrics   *metrics.Metrics
	now       func() time.Time
	loc       *time.Location
	retries   int
	txTimeout time.Duration
}

func New(store storage.Provider, opts Options) *Service {
	s := &Service{
		store:     store,
		engine:    streak.NewEngine(opts.Metrics),
		locker:    opts.Locker,
		cache:     opts.Cache,
		metrics:   opts.Metrics,
		now:       opts.Now,
		loc:       opts.Location,
		retries:   opts.MutationRetries,
		txTimeout: opts.TxTimeout,
	}
	if s.locker == nil {
		s.locker = lock.NewKeyedMutex()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.retries < 0 {
		s.retries = 0
	}
	if s.txTimeout <= 0 {
		s.txTimeout = constants.DefaultTxTimeout
	}
	return s
}

// Today is the current calendar date in the service's location.
func (s *Service) Today() time.Time {
	return cadence.Day(s.now().In(s.loc))
}
