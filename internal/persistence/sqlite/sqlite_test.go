package sqlite

import (
	"context"
	"testing"

	"github.com/brewmarsh/family-bell/internal/bell"
	"github.com/brewmarsh/family-bell/internal/persistence"
)

func openTest(t *testing.T) *Storage {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleBell(id string) bell.Bell {
	return bell.Bell{
		ID:       id,
		Name:     "Bell 07:30",
		Time:     "07:30",
		Message:  "Wake up",
		Days:     []bell.Weekday{bell.Monday, bell.Friday},
		Speakers: []string{"media_player.kitchen", "media_player.hall"},
		Enabled:  true,
		TTSVoice: "v1",
		Sound:    &bell.Sound{MediaID: "chime.mp3", DeviceID: "media_player.hall"},
	}
}

func TestSaveBellRoundTrip(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	want := sampleBell("b1")
	if err := s.SaveBell(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	snap, err := s.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Bells) != 1 {
		t.Fatalf("expected 1 bell, got %d", len(snap.Bells))
	}
	got := snap.Bells[0]
	if got.ID != want.ID || got.Time != want.Time || got.Message != want.Message || got.TTSVoice != "v1" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if len(got.Days) != 2 || got.Days[0] != bell.Monday {
		t.Fatalf("days lost: %+v", got.Days)
	}
	if got.Sound == nil || got.Sound.MediaID != "chime.mp3" || got.Sound.DeviceID != "media_player.hall" {
		t.Fatalf("sound lost: %+v", got.Sound)
	}
}

func TestSaveBellUpsertsByID(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	b := sampleBell("b1")
	if err := s.SaveBell(ctx, b); err != nil {
		t.Fatalf("save: %v", err)
	}
	b.Message = "Updated"
	b.Sound = nil
	if err := s.SaveBell(ctx, b); err != nil {
		t.Fatalf("resave: %v", err)
	}

	snap, err := s.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Bells) != 1 {
		t.Fatalf("upsert duplicated the bell: %d records", len(snap.Bells))
	}
	if snap.Bells[0].Message != "Updated" || snap.Bells[0].Sound != nil {
		t.Fatalf("update not applied: %+v", snap.Bells[0])
	}
}

func TestDeleteBell(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	if err := s.SaveBell(ctx, sampleBell("b1")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.DeleteBell(ctx, "b1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteBell(ctx, "b1"); err != persistence.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	snap, _ := s.LoadSnapshot(ctx)
	if len(snap.Bells) != 0 {
		t.Fatalf("bell survived delete: %+v", snap.Bells)
	}
}

func TestVacationReplaceWholesale(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	start1, _ := bell.ParseDate("2024-07-01")
	end1, _ := bell.ParseDate("2024-07-10")
	start2, _ := bell.ParseDate("2024-08-01")
	end2, _ := bell.ParseDate("2024-08-05")

	v := bell.VacationSchedule{
		Enabled: true,
		Ranges: []bell.DateRange{
			{Start: start1, End: end1},
			{Start: start2, End: end2},
		},
	}
	if err := s.SaveVacation(ctx, v); err != nil {
		t.Fatalf("save vacation: %v", err)
	}

	snap, err := s.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !snap.Vacation.Enabled || len(snap.Vacation.Ranges) != 2 {
		t.Fatalf("vacation not persisted: %+v", snap.Vacation)
	}
	if snap.Vacation.Ranges[0].Start.String() != "2024-07-01" {
		t.Fatalf("range order lost: %+v", snap.Vacation.Ranges)
	}

	// Replacing with a smaller schedule drops the old ranges.
	v.Ranges = v.Ranges[1:]
	v.Enabled = false
	if err := s.SaveVacation(ctx, v); err != nil {
		t.Fatalf("replace vacation: %v", err)
	}
	snap, _ = s.LoadSnapshot(ctx)
	if snap.Vacation.Enabled || len(snap.Vacation.Ranges) != 1 {
		t.Fatalf("schedule not replaced wholesale: %+v", snap.Vacation)
	}
}

func TestLastDefaults(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	snap, _ := s.LoadSnapshot(ctx)
	if snap.LastDefaults != nil {
		t.Fatalf("fresh store has last defaults: %+v", snap.LastDefaults)
	}

	want := bell.TTS{Provider: "p1", Voice: "v1", Language: "en"}
	if err := s.SaveLastDefaults(ctx, want); err != nil {
		t.Fatalf("save defaults: %v", err)
	}
	snap, err := s.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.LastDefaults == nil || *snap.LastDefaults != want {
		t.Fatalf("last defaults mismatch: %+v", snap.LastDefaults)
	}
}
