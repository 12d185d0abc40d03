// Package persistence defines the daemon's authoritative storage contract.
//
// The daemon is the single writer; clients only ever receive full snapshots
// built from LoadSnapshot. The global TTS default is configuration, not
// data, so it is absent here and merged into the snapshot by the caller.
package persistence

import (
	"context"
	"errors"

	"github.com/brewmarsh/family-bell/internal/bell"
)

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("persistence: not found")

// Store persists bells, the vacation schedule, and the last-used TTS
// defaults.
type Store interface {
	// LoadSnapshot reads the full persisted state. GlobalTTS and Version
	// are left blank for the caller to fill in.
	LoadSnapshot(ctx context.Context) (bell.Snapshot, error)

	// SaveBell inserts or replaces a bell, keyed by id.
	SaveBell(ctx context.Context, b bell.Bell) error

	// DeleteBell removes a bell. Returns ErrNotFound when absent.
	DeleteBell(ctx context.Context, id string) error

	// SaveVacation replaces the whole vacation schedule.
	SaveVacation(ctx context.Context, v bell.VacationSchedule) error

	// SaveLastDefaults records the most recently saved TTS triple.
	SaveLastDefaults(ctx context.Context, t bell.TTS) error

	// Close releases storage resources.
	Close() error
}
