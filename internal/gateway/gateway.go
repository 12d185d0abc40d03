// Package gateway is the boundary adapter between the client engine and the
// family-bell daemon. Mutations go out, the authoritative snapshot comes
// back; the client never patches remote state incrementally.
package gateway

import (
	"context"

	"github.com/brewmarsh/family-bell/internal/bell"
)

// Gateway is the contract every sync backend must implement.
type Gateway interface {
	// GetData fetches the full authoritative snapshot.
	GetData(ctx context.Context) (bell.Snapshot, error)

	// UpdateBell creates or replaces a bell, keyed by its id. The entire
	// record is sent; there is no patch form.
	UpdateBell(ctx context.Context, b bell.Bell) error

	// DeleteBell removes the bell with the given id.
	DeleteBell(ctx context.Context, id string) error

	// UpdateVacation replaces the whole vacation schedule.
	UpdateVacation(ctx context.Context, v bell.VacationSchedule) error

	// TestBell triggers an immediate announcement of the given bell without
	// persisting it. The bell carries the reserved test id.
	TestBell(ctx context.Context, b bell.Bell) error

	// Watch delivers a payload-free signal whenever the remote data changed.
	// The correct reaction is a fresh GetData, never an incremental merge.
	// The channel closes when ctx is cancelled.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
