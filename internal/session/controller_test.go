package session

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/brewmarsh/family-bell/internal/bell"
	"github.com/brewmarsh/family-bell/internal/store"
)

// fakeGateway mimics the daemon: update_bell upserts by id, get_data returns
// the resulting snapshot. Errors can be injected per operation.
type fakeGateway struct {
	mu       sync.Mutex
	snap     bell.Snapshot
	updates  int
	fetches  int
	failNext error

	testBells chan bell.Bell
}

func newFakeGateway(global bell.TTS) *fakeGateway {
	return &fakeGateway{
		snap:      bell.Snapshot{GlobalTTS: global, Version: "test"},
		testBells: make(chan bell.Bell, 4),
	}
}

func (g *fakeGateway) takeFailure() error {
	err := g.failNext
	g.failNext = nil
	return err
}

func (g *fakeGateway) GetData(ctx context.Context) (bell.Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.takeFailure(); err != nil {
		return bell.Snapshot{}, err
	}
	g.fetches++
	return g.snap.Clone(), nil
}

func (g *fakeGateway) UpdateBell(ctx context.Context, b bell.Bell) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.takeFailure(); err != nil {
		return err
	}
	g.updates++
	for i := range g.snap.Bells {
		if g.snap.Bells[i].ID == b.ID {
			g.snap.Bells[i] = b
			return nil
		}
	}
	g.snap.Bells = append(g.snap.Bells, b)
	return nil
}

func (g *fakeGateway) DeleteBell(ctx context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.takeFailure(); err != nil {
		return err
	}
	kept := g.snap.Bells[:0]
	for _, b := range g.snap.Bells {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	g.snap.Bells = kept
	return nil
}

func (g *fakeGateway) UpdateVacation(ctx context.Context, v bell.VacationSchedule) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.takeFailure(); err != nil {
		return err
	}
	g.snap.Vacation = v
	return nil
}

func (g *fakeGateway) TestBell(ctx context.Context, b bell.Bell) error {
	g.testBells <- b
	return nil
}

func (g *fakeGateway) Watch(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{})
	close(ch)
	return ch, nil
}

func (g *fakeGateway) updateCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.updates
}

func newTestController(t *testing.T, gw *fakeGateway) (*Controller, *store.Store) {
	t.Helper()
	s := store.New()
	ids := 0
	c := NewController(gw, s, WithIDGenerator(func() string {
		ids++
		return "id-" + strconv.Itoa(ids)
	}))
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("initial refresh: %v", err)
	}
	return c, s
}

func fillDraft(t *testing.T, c *Controller) {
	t.Helper()
	if err := c.SetTime("07:30"); err != nil {
		t.Fatalf("set time: %v", err)
	}
	if err := c.SetMessage("Wake up"); err != nil {
		t.Fatalf("set message: %v", err)
	}
	for _, d := range []bell.Weekday{bell.Monday, bell.Wednesday, bell.Friday} {
		if err := c.ToggleDay(d); err != nil {
			t.Fatalf("toggle day: %v", err)
		}
	}
	if err := c.ToggleSpeaker("media_player.kitchen"); err != nil {
		t.Fatalf("toggle speaker: %v", err)
	}
}

func TestSaveRejectedBeforeTransport(t *testing.T) {
	gw := newFakeGateway(bell.TTS{Provider: "p1"})
	c, _ := newTestController(t, gw)

	if err := c.BeginCreate(); err != nil {
		t.Fatalf("begin create: %v", err)
	}

	// Missing everything.
	if _, err := c.Save(context.Background()); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}

	// Days present, speakers absent.
	_ = c.SetTime("07:30")
	_ = c.SetMessage("Wake up")
	_ = c.ToggleDay(bell.Monday)
	if _, err := c.Save(context.Background()); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}

	if gw.updateCount() != 0 {
		t.Fatalf("transport called %d times before validation passed", gw.updateCount())
	}
	if c.State() != Creating {
		t.Fatalf("rejected save changed state to %s", c.State())
	}
}

func TestCreateSaveScenario(t *testing.T) {
	global := bell.TTS{Provider: "p1", Voice: "v1", Language: "en"}
	gw := newFakeGateway(global)
	c, s := newTestController(t, gw)

	if err := c.BeginCreate(); err != nil {
		t.Fatalf("begin create: %v", err)
	}

	// With no last-used defaults the draft inherits the global triple.
	d, err := c.Draft()
	if err != nil {
		t.Fatalf("draft: %v", err)
	}
	if d.TTS != global {
		t.Fatalf("draft TTS not resolved from global: %+v", d.TTS)
	}

	fillDraft(t, c)
	saved, err := c.Save(context.Background())
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if saved.Overrides() != global {
		t.Fatalf("saved TTS triple %+v, want %+v", saved.Overrides(), global)
	}
	if c.LastUsed() != global {
		t.Fatalf("lastUsed not updated: %+v", c.LastUsed())
	}
	if c.State() != Idle {
		t.Fatalf("state after save: %s", c.State())
	}
	if _, err := c.Draft(); !errors.Is(err, ErrNoDraft) {
		t.Fatal("draft survived a successful save")
	}

	// The store was refreshed from the authoritative response.
	got, err := s.FindByID(saved.ID)
	if err != nil {
		t.Fatalf("saved bell missing from store: %v", err)
	}
	if got.Message != "Wake up" || got.Time != "07:30" {
		t.Fatalf("unexpected stored bell: %+v", got)
	}
	if got.Name != "Bell 07:30" {
		t.Fatalf("name not derived from time: %q", got.Name)
	}
}

func TestSaveIdempotentPerID(t *testing.T) {
	gw := newFakeGateway(bell.TTS{Provider: "p1"})
	c, s := newTestController(t, gw)

	_ = c.BeginCreate()
	fillDraft(t, c)
	saved, err := c.Save(context.Background())
	if err != nil {
		t.Fatalf("first save: %v", err)
	}

	// Re-save the same record unchanged through an edit session.
	if err := c.BeginEdit(saved.ID); err != nil {
		t.Fatalf("begin edit: %v", err)
	}
	if _, err := c.Save(context.Background()); err != nil {
		t.Fatalf("second save: %v", err)
	}

	if s.Len() != 1 {
		t.Fatalf("expected exactly one bell for id %s, store has %d", saved.ID, s.Len())
	}
}

func TestEditResolvesAgainstGlobalOnly(t *testing.T) {
	global := bell.TTS{Provider: "gp", Voice: "gv", Language: "en"}
	gw := newFakeGateway(global)
	lu := bell.TTS{Provider: "lp", Voice: "lv", Language: "fr"}
	gw.snap.LastDefaults = &lu
	gw.snap.Bells = []bell.Bell{{
		ID: "b1", Time: "07:00", Message: "m",
		Days: []bell.Weekday{bell.Monday}, Speakers: []string{"media_player.kitchen"},
		Enabled: true, TTSVoice: "custom",
	}}
	c, _ := newTestController(t, gw)

	if err := c.BeginEdit("b1"); err != nil {
		t.Fatalf("begin edit: %v", err)
	}
	d, _ := c.Draft()

	// The bell's own override wins, everything else falls back to the
	// global default — never to the last-used one.
	want := bell.TTS{Provider: "gp", Voice: "custom", Language: "en"}
	if d.TTS != want {
		t.Fatalf("edit draft TTS %+v, want %+v", d.TTS, want)
	}
}

func TestCreateDraftPrefersLastUsed(t *testing.T) {
	gw := newFakeGateway(bell.TTS{Provider: "gp", Voice: "gv", Language: "en"})
	lu := bell.TTS{Provider: "lp", Language: "fr"}
	gw.snap.LastDefaults = &lu
	c, _ := newTestController(t, gw)

	_ = c.BeginCreate()
	d, _ := c.Draft()
	want := bell.TTS{Provider: "lp", Voice: "gv", Language: "fr"}
	if d.TTS != want {
		t.Fatalf("create draft TTS %+v, want %+v", d.TTS, want)
	}
}

func TestTransportFailureKeepsDraft(t *testing.T) {
	gw := newFakeGateway(bell.TTS{})
	c, s := newTestController(t, gw)

	_ = c.BeginCreate()
	fillDraft(t, c)

	gw.failNext = errors.New("connection refused")
	if _, err := c.Save(context.Background()); err == nil {
		t.Fatal("expected transport error")
	}

	if c.State() != Creating {
		t.Fatalf("state after failed save: %s", c.State())
	}
	d, err := c.Draft()
	if err != nil {
		t.Fatalf("draft lost after failed save: %v", err)
	}
	if d.Message != "Wake up" {
		t.Fatalf("draft mutated after failed save: %+v", d)
	}
	if s.Len() != 0 {
		t.Fatal("failed save reached the store")
	}

	// Manual retry succeeds with the intact draft.
	if _, err := c.Save(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("retry did not persist, store has %d", s.Len())
	}
}

func TestTestUsesSentinelAndSkipsStore(t *testing.T) {
	gw := newFakeGateway(bell.TTS{Provider: "p1"})
	c, s := newTestController(t, gw)

	_ = c.BeginCreate()
	_ = c.SetMessage("Check check")
	_ = c.ToggleSpeaker("media_player.kitchen")

	if err := c.Test(context.Background()); err != nil {
		t.Fatalf("test: %v", err)
	}

	select {
	case b := <-gw.testBells:
		if b.ID != bell.TestBellID {
			t.Fatalf("test bell id %q, want sentinel %q", b.ID, bell.TestBellID)
		}
		if b.Time != "00:00" {
			t.Fatalf("blank time not defaulted: %q", b.Time)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("test dispatch never reached the gateway")
	}

	if s.Len() != 0 {
		t.Fatal("test announcement mutated the store")
	}
	if c.State() != Creating {
		t.Fatalf("test changed session state to %s", c.State())
	}
}

func TestTestRequiresMessageAndSpeakers(t *testing.T) {
	gw := newFakeGateway(bell.TTS{})
	c, _ := newTestController(t, gw)

	_ = c.BeginCreate()
	if err := c.Test(context.Background()); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
}

func TestSoundDeviceForcedIntoSpeakers(t *testing.T) {
	gw := newFakeGateway(bell.TTS{Provider: "p"})
	c, _ := newTestController(t, gw)

	_ = c.BeginCreate()
	fillDraft(t, c)
	_ = c.SetSound(bell.Sound{MediaID: "chime.mp3", DeviceID: "media_player.hall"})

	saved, err := c.Save(context.Background())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !saved.HasSpeaker("media_player.hall") {
		t.Fatalf("sound device missing from speakers: %+v", saved.Speakers)
	}
	if saved.Sound == nil || saved.Sound.MediaID != "chime.mp3" {
		t.Fatalf("sound not persisted: %+v", saved.Sound)
	}
}

func TestDeleteClearsMatchingEditSession(t *testing.T) {
	gw := newFakeGateway(bell.TTS{})
	gw.snap.Bells = []bell.Bell{{
		ID: "b1", Time: "07:00", Message: "m",
		Days: []bell.Weekday{bell.Monday}, Speakers: []string{"s"}, Enabled: true,
	}}
	c, s := newTestController(t, gw)

	if err := c.BeginEdit("b1"); err != nil {
		t.Fatalf("begin edit: %v", err)
	}
	if err := c.Delete(context.Background(), "b1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if c.State() != Idle {
		t.Fatalf("session not cleared after deleting the edited bell: %s", c.State())
	}
	if s.Len() != 0 {
		t.Fatal("bell survived delete")
	}
}

func TestBeginCreateRejectedWhileDrafting(t *testing.T) {
	gw := newFakeGateway(bell.TTS{})
	c, _ := newTestController(t, gw)

	_ = c.BeginCreate()
	if err := c.BeginCreate(); !errors.Is(err, ErrDraftInProgress) {
		t.Fatalf("expected ErrDraftInProgress, got %v", err)
	}
}

func TestSetEnabledResendsFullRecord(t *testing.T) {
	gw := newFakeGateway(bell.TTS{})
	gw.snap.Bells = []bell.Bell{{
		ID: "b1", Time: "07:00", Message: "m",
		Days: []bell.Weekday{bell.Monday}, Speakers: []string{"s"}, Enabled: true,
	}}
	c, s := newTestController(t, gw)

	if err := c.SetEnabled(context.Background(), "b1", false); err != nil {
		t.Fatalf("disable: %v", err)
	}
	got, err := s.FindByID("b1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Enabled {
		t.Fatal("bell still enabled after toggle")
	}
}

func TestVacationFailureKeepsPriorSchedule(t *testing.T) {
	gw := newFakeGateway(bell.TTS{})
	c, _ := newTestController(t, gw)

	start, _ := bell.ParseDate("2024-07-01")
	end, _ := bell.ParseDate("2024-07-10")

	gw.failNext = errors.New("network down")
	if err := c.AddVacationRange(context.Background(), bell.DateRange{Start: start, End: end}); err == nil {
		t.Fatal("expected transport error")
	}
	if len(c.Vacation().Ranges) != 0 {
		t.Fatal("failed vacation update mutated local schedule")
	}

	if err := c.AddVacationRange(context.Background(), bell.DateRange{Start: start, End: end}); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if len(c.Vacation().Ranges) != 1 {
		t.Fatal("vacation range not applied after successful update")
	}

	if err := c.SetVacationEnabled(context.Background(), true); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if !c.Vacation().Enabled {
		t.Fatal("vacation not enabled")
	}
}
