// Package session mediates between an in-progress bell form and the rest of
// the engine. At most one draft exists at a time, tracked by an explicit
// three-state machine (Idle, Creating, Editing); field edits touch only the
// draft, and nothing reaches the store until a save round-trips through the
// gateway and the authoritative snapshot is re-applied.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/brewmarsh/family-bell/internal/bell"
	"github.com/brewmarsh/family-bell/internal/gateway"
	"github.com/brewmarsh/family-bell/internal/store"
)

// State identifies the controller's position in the edit lifecycle.
type State int

const (
	// Idle: no draft exists.
	Idle State = iota
	// Creating: a draft exists that is not yet bound to a persisted bell.
	Creating
	// Editing: a draft exists bound to an existing bell id.
	Editing
)

// String returns the state name for logs.
func (s State) String() string {
	switch s {
	case Creating:
		return "creating"
	case Editing:
		return "editing"
	default:
		return "idle"
	}
}

var (
	// ErrMissingFields rejects a save when any required field is absent.
	// Deliberately a single condition: the form highlights nothing
	// field-specific, it just refuses to transmit.
	ErrMissingFields = errors.New("session: time, message, at least one day and one speaker are required")

	// ErrNoDraft is returned by draft operations while the controller is idle.
	ErrNoDraft = errors.New("session: no draft in progress")

	// ErrDraftInProgress rejects starting a new draft over an existing one.
	ErrDraftInProgress = errors.New("session: a draft is already in progress")
)

// Draft is the disconnected working copy of a bell's fields. It shares no
// memory with the store; only a successful save makes it visible anywhere.
type Draft struct {
	Name         string
	Time         string
	Message      string
	Days         []bell.Weekday
	Speakers     []string
	TTS          bell.TTS
	SoundEnabled bool
	Sound        bell.Sound
}

// Option configures the controller.
type Option func(*Controller)

// WithIDGenerator overrides how ids are assigned to newly created bells.
func WithIDGenerator(next func() string) Option {
	return func(c *Controller) {
		c.newID = next
	}
}

// WithLogger sets the controller's logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Controller) {
		c.log = log
	}
}

// Controller owns the single draft and reconciles it with the store through
// the gateway. It is event-driven and not safe for concurrent use: drive it
// from one goroutine, the way a UI event loop would.
type Controller struct {
	gw    gateway.Gateway
	bells *store.Store
	newID func() string
	log   *slog.Logger

	state     State
	editingID string
	draft     *Draft

	vacation  bell.VacationSchedule
	globalTTS bell.TTS
	lastUsed  *bell.TTS
	version   string
}

// NewController creates a controller over the given gateway and store.
func NewController(gw gateway.Gateway, bells *store.Store, opts ...Option) *Controller {
	c := &Controller{
		gw:    gw,
		bells: bells,
		newID: uuid.NewString,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current lifecycle state.
func (c *Controller) State() State { return c.state }

// EditingID returns the bound bell id while Editing, otherwise "".
func (c *Controller) EditingID() string { return c.editingID }

// Vacation returns the last applied vacation schedule.
func (c *Controller) Vacation() bell.VacationSchedule { return c.vacation.Clone() }

// GlobalTTS returns the administrator-configured default triple.
func (c *Controller) GlobalTTS() bell.TTS { return c.globalTTS }

// LastUsed returns the most recently saved TTS triple, zero when none.
func (c *Controller) LastUsed() bell.TTS {
	if c.lastUsed == nil {
		return bell.TTS{}
	}
	return *c.lastUsed
}

// Version returns the daemon version from the last snapshot.
func (c *Controller) Version() string { return c.version }

// Draft returns a copy of the current draft.
func (c *Controller) Draft() (Draft, error) {
	if c.draft == nil {
		return Draft{}, ErrNoDraft
	}
	return c.copyDraft(), nil
}

// Refresh fetches the authoritative snapshot and applies it wholesale. A
// refresh superseded by a newer one needs no special handling: whichever
// response is applied last wins.
func (c *Controller) Refresh(ctx context.Context) error {
	snap, err := c.gw.GetData(ctx)
	if err != nil {
		return fmt.Errorf("session: refresh: %w", err)
	}
	c.apply(snap)
	return nil
}

func (c *Controller) apply(snap bell.Snapshot) {
	c.bells.ReplaceAll(snap.Bells)
	c.vacation = snap.Vacation.Clone()
	c.globalTTS = snap.GlobalTTS
	if snap.LastDefaults != nil {
		last := *snap.LastDefaults
		c.lastUsed = &last
	}
	if snap.Version != "" {
		c.version = snap.Version
	}
}

// BeginCreate starts a new-bell draft. The TTS triple is pre-filled through
// the resolution chain, preferring the last-used defaults over the global
// ones.
func (c *Controller) BeginCreate() error {
	if c.state != Idle {
		return ErrDraftInProgress
	}
	c.state = Creating
	c.editingID = ""
	c.draft = &Draft{
		TTS: bell.Resolve(bell.TTS{}, c.LastUsed(), c.globalTTS),
	}
	return nil
}

// BeginEdit starts (or replaces) a draft bound to an existing bell. The
// bell's fields are copied, and its TTS overrides are re-resolved against
// the global default only — edit mode intentionally skips the last-used
// defaults so the form shows what the bell will actually use.
func (c *Controller) BeginEdit(id string) error {
	b, err := c.bells.FindByID(id)
	if err != nil {
		return fmt.Errorf("session: edit %s: %w", id, err)
	}

	c.state = Editing
	c.editingID = id
	draft := &Draft{
		Name:     b.Name,
		Time:     b.Time,
		Message:  b.Message,
		Days:     append([]bell.Weekday(nil), b.Days...),
		Speakers: append([]string(nil), b.Speakers...),
		TTS:      bell.Resolve(b.Overrides(), bell.TTS{}, c.globalTTS),
	}
	if b.Sound != nil {
		draft.SoundEnabled = true
		draft.Sound = *b.Sound
	}
	c.draft = draft
	return nil
}

// Cancel discards the draft and returns to Idle.
func (c *Controller) Cancel() {
	c.state = Idle
	c.editingID = ""
	c.draft = nil
}

// SetName updates the draft's display label.
func (c *Controller) SetName(name string) error { return c.editDraft(func(d *Draft) { d.Name = name }) }

// SetTime updates the draft's firing time.
func (c *Controller) SetTime(clock string) error {
	return c.editDraft(func(d *Draft) { d.Time = clock })
}

// SetMessage updates the draft's announcement text.
func (c *Controller) SetMessage(msg string) error {
	return c.editDraft(func(d *Draft) { d.Message = msg })
}

// SetTTS replaces the draft's TTS triple.
func (c *Controller) SetTTS(t bell.TTS) error { return c.editDraft(func(d *Draft) { d.TTS = t }) }

// ToggleDay adds the weekday to the draft, or removes it when present.
func (c *Controller) ToggleDay(day bell.Weekday) error {
	if !bell.IsValidWeekday(day) {
		return fmt.Errorf("%w: %q", bell.ErrInvalidDay, day)
	}
	return c.editDraft(func(d *Draft) {
		for i, existing := range d.Days {
			if existing == day {
				d.Days = append(d.Days[:i], d.Days[i+1:]...)
				return
			}
		}
		d.Days = append(d.Days, day)
	})
}

// ToggleSpeaker adds the speaker to the draft, or removes it when present.
func (c *Controller) ToggleSpeaker(id string) error {
	return c.editDraft(func(d *Draft) {
		for i, existing := range d.Speakers {
			if existing == id {
				d.Speakers = append(d.Speakers[:i], d.Speakers[i+1:]...)
				return
			}
		}
		d.Speakers = append(d.Speakers, id)
	})
}

// SetSound enables the pre-announcement sound with the given reference.
func (c *Controller) SetSound(s bell.Sound) error {
	return c.editDraft(func(d *Draft) {
		d.SoundEnabled = true
		d.Sound = s
	})
}

// ClearSound disables the pre-announcement sound.
func (c *Controller) ClearSound() error {
	return c.editDraft(func(d *Draft) {
		d.SoundEnabled = false
		d.Sound = bell.Sound{}
	})
}

func (c *Controller) editDraft(mutate func(*Draft)) error {
	if c.draft == nil {
		return ErrNoDraft
	}
	mutate(c.draft)
	return nil
}

// Save validates the draft, builds the full bell record, and transmits it.
// On acknowledgement the saved TTS triple becomes the last-used default, the
// session returns to Idle, and the store is refreshed from the authoritative
// snapshot. On failure nothing changes: state, draft, and store all stay as
// they were.
func (c *Controller) Save(ctx context.Context) (bell.Bell, error) {
	if c.draft == nil {
		return bell.Bell{}, ErrNoDraft
	}
	d := c.draft

	// Validation happens before any transport call is issued.
	if d.Time == "" || d.Message == "" || len(d.Days) == 0 || len(d.Speakers) == 0 {
		return bell.Bell{}, ErrMissingFields
	}

	b := bell.Bell{
		ID:       c.editingID,
		Name:     d.Name,
		Time:     d.Time,
		Message:  d.Message,
		Days:     append([]bell.Weekday(nil), d.Days...),
		Speakers: append([]string(nil), d.Speakers...),
		Enabled:  true,
	}
	if c.state == Creating {
		b.ID = c.newID()
	}

	// Normalize the TTS triple through the chain one last time so a field
	// the user blanked still resolves the same way the draft was seeded.
	effective := c.resolveDraftTTS(d.TTS)
	b.SetTTS(effective)

	if d.SoundEnabled && d.Sound.MediaID != "" {
		sound := d.Sound
		if sound.DeviceID != "" && !b.HasSpeaker(sound.DeviceID) {
			b.Speakers = append(b.Speakers, sound.DeviceID)
		}
		b.Sound = &sound
	}
	b.Normalize()

	if err := b.Validate(); err != nil {
		return bell.Bell{}, err
	}

	if err := c.gw.UpdateBell(ctx, b); err != nil {
		// Draft and state survive so the user can retry manually.
		return bell.Bell{}, fmt.Errorf("session: save: %w", err)
	}

	c.lastUsed = &effective
	c.Cancel()

	if err := c.Refresh(ctx); err != nil {
		c.log.Warn("saved but refresh failed", "bell_id", b.ID, "error", err)
		return b, fmt.Errorf("session: saved, refresh pending: %w", err)
	}
	return b, nil
}

func (c *Controller) resolveDraftTTS(override bell.TTS) bell.TTS {
	if c.state == Editing {
		return bell.Resolve(override, bell.TTS{}, c.globalTTS)
	}
	return bell.Resolve(override, c.LastUsed(), c.globalTTS)
}

// Test dispatches the current draft as an immediate announcement under the
// reserved sentinel id. Fire-and-forget: the store is never touched and the
// result is not awaited.
func (c *Controller) Test(ctx context.Context) error {
	if c.draft == nil {
		return ErrNoDraft
	}
	d := c.draft
	if d.Message == "" || len(d.Speakers) == 0 {
		return ErrMissingFields
	}

	clock := d.Time
	if clock == "" {
		clock = "00:00"
	}
	b := bell.Bell{
		ID:       bell.TestBellID,
		Name:     "Test Bell",
		Time:     clock,
		Message:  d.Message,
		Speakers: append([]string(nil), d.Speakers...),
		Enabled:  true,
	}
	b.SetTTS(c.resolveDraftTTS(d.TTS))
	if d.SoundEnabled && d.Sound.MediaID != "" {
		sound := d.Sound
		b.Sound = &sound
	}

	go func() {
		if err := c.gw.TestBell(ctx, b); err != nil {
			c.log.Warn("test announcement failed", "error", err)
		}
	}()
	return nil
}

// Delete removes a bell. When the deleted bell is the one being edited, the
// session resets to Idle; the store is then refreshed.
func (c *Controller) Delete(ctx context.Context, id string) error {
	if err := c.gw.DeleteBell(ctx, id); err != nil {
		return fmt.Errorf("session: delete %s: %w", id, err)
	}
	if c.state == Editing && c.editingID == id {
		c.Cancel()
	}
	return c.Refresh(ctx)
}

// SetEnabled flips a bell's enabled flag by resending the full record, then
// refreshes.
func (c *Controller) SetEnabled(ctx context.Context, id string, enabled bool) error {
	b, err := c.bells.FindByID(id)
	if err != nil {
		return fmt.Errorf("session: toggle %s: %w", id, err)
	}
	b.Enabled = enabled
	if err := c.gw.UpdateBell(ctx, b); err != nil {
		return fmt.Errorf("session: toggle %s: %w", id, err)
	}
	return c.Refresh(ctx)
}

// SetVacationEnabled toggles the vacation schedule and replaces it remotely.
func (c *Controller) SetVacationEnabled(ctx context.Context, enabled bool) error {
	next := c.vacation.Clone()
	next.Enabled = enabled
	return c.pushVacation(ctx, next)
}

// AddVacationRange inserts a range (kept sorted by start) and replaces the
// schedule remotely.
func (c *Controller) AddVacationRange(ctx context.Context, r bell.DateRange) error {
	next := c.vacation.Clone()
	if err := next.AddRange(r); err != nil {
		return err
	}
	return c.pushVacation(ctx, next)
}

// RemoveVacationRange deletes the range at index i and replaces the schedule
// remotely.
func (c *Controller) RemoveVacationRange(ctx context.Context, i int) error {
	next := c.vacation.Clone()
	next.RemoveRange(i)
	return c.pushVacation(ctx, next)
}

func (c *Controller) pushVacation(ctx context.Context, next bell.VacationSchedule) error {
	if err := c.gw.UpdateVacation(ctx, next); err != nil {
		// The local schedule keeps its prior value.
		return fmt.Errorf("session: vacation update: %w", err)
	}
	c.vacation = next
	return nil
}

func (c *Controller) copyDraft() Draft {
	d := *c.draft
	d.Days = append([]bell.Weekday(nil), c.draft.Days...)
	d.Speakers = append([]string(nil), c.draft.Speakers...)
	return d
}
