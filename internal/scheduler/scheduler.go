// Package scheduler runs the background loop that fires bells at their
// scheduled time. Whether a bell fires on a given date is decided by
// bell.ShouldFire and nothing else; the loop only adds the time-of-day match
// and once-per-day deduplication.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/brewmarsh/family-bell/internal/announce"
	"github.com/brewmarsh/family-bell/internal/bell"
	"github.com/brewmarsh/family-bell/internal/persistence"
)

// ClockLayout is the time-of-day format bells are matched against.
const ClockLayout = "15:04"

// DueBells returns the bells from the snapshot that should announce at the
// given instant: their firing time equals the instant's HH:MM and
// bell.ShouldFire accepts the instant's date.
func DueBells(snap bell.Snapshot, now time.Time) []bell.Bell {
	clock := now.Format(ClockLayout)
	date := bell.DateOf(now)

	var due []bell.Bell
	for _, b := range snap.Bells {
		if b.Time != clock {
			continue
		}
		if !bell.ShouldFire(b, snap.Vacation, date) {
			continue
		}
		due = append(due, b)
	}
	return due
}

// Option configures the supervisor.
type Option func(*Supervisor)

// WithTickInterval sets how often the supervisor polls for due bells. The
// interval must stay under a minute or firing times can be skipped.
func WithTickInterval(d time.Duration) Option {
	return func(s *Supervisor) {
		s.tickInterval = d
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Supervisor) {
		s.now = now
	}
}

// Supervisor polls the persisted snapshot and dispatches announcements for
// due bells. Reloading the snapshot on every tick means a saved or deleted
// bell takes effect without any explicit re-arming.
type Supervisor struct {
	store     persistence.Store
	announcer announce.Announcer
	globalTTS bell.TTS
	log       *slog.Logger

	tickInterval time.Duration
	now          func() time.Time

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc

	// fired remembers bell ids already dispatched for the current minute so
	// a sub-minute tick interval cannot double-fire them.
	fired     map[string]bool
	firedWhen string
}

// New creates a supervisor over the given store and announcer. globalTTS is
// the administrator-configured fallback used to resolve each bell's
// effective voice at fire time.
func New(store persistence.Store, announcer announce.Announcer, globalTTS bell.TTS, opts ...Option) *Supervisor {
	s := &Supervisor{
		store:        store,
		announcer:    announcer,
		globalTTS:    globalTTS,
		log:          slog.Default(),
		tickInterval: 15 * time.Second,
		now:          time.Now,
		fired:        make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins the background loop. Non-blocking; safe to call once.
func (s *Supervisor) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.log.Warn("bell supervisor already running")
		return
	}
	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true

	go s.loop(childCtx)
	s.log.Info("bell supervisor started", "tick", s.tickInterval)
}

// Stop halts the loop.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.cancel()
	s.running = false
	s.log.Info("bell supervisor stopped")
}

func (s *Supervisor) loop(ctx context.Context) {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one poll cycle: load the snapshot, find due bells, announce any
// not yet fired this minute. Exported so tests can drive the loop directly.
func (s *Supervisor) Tick(ctx context.Context) {
	now := s.now()

	snap, err := s.store.LoadSnapshot(ctx)
	if err != nil {
		s.log.Error("loading snapshot for scheduling", "error", err)
		return
	}

	minute := now.Format("2006-01-02 " + ClockLayout)
	s.mu.Lock()
	if s.firedWhen != minute {
		s.firedWhen = minute
		s.fired = make(map[string]bool)
	}
	s.mu.Unlock()

	for _, b := range DueBells(snap, now) {
		s.mu.Lock()
		already := s.fired[b.ID]
		if !already {
			s.fired[b.ID] = true
		}
		s.mu.Unlock()
		if already {
			continue
		}

		effective := bell.Resolve(b.Overrides(), snap.LastUsed(), s.globalTTS)
		if err := s.announcer.Announce(ctx, b, effective); err != nil {
			s.log.Error("announcement failed", "bell_id", b.ID, "error", err)
			continue
		}
		s.log.Info("bell fired", "bell_id", b.ID, "name", b.Name, "time", b.Time)
	}
}
