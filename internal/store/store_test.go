package store

import (
	"testing"

	"github.com/brewmarsh/family-bell/internal/bell"
)

func mkBell(id, clock string) bell.Bell {
	return bell.Bell{
		ID:       id,
		Time:     clock,
		Message:  "msg " + id,
		Days:     []bell.Weekday{bell.Monday},
		Speakers: []string{"media_player.kitchen"},
		Enabled:  true,
	}
}

func TestReplaceAllSortsByTime(t *testing.T) {
	s := New()
	s.ReplaceAll([]bell.Bell{
		mkBell("late", "20:00"),
		mkBell("early", "06:15"),
		mkBell("mid", "12:30"),
	})

	got := s.List()
	wantOrder := []string{"early", "mid", "late"}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, got[i].ID)
		}
	}
}

func TestReplaceAllStableOnEqualTimes(t *testing.T) {
	s := New()
	s.ReplaceAll([]bell.Bell{
		mkBell("z-first", "08:00"),
		mkBell("a-second", "08:00"),
		mkBell("m-third", "08:00"),
	})

	got := s.List()
	wantOrder := []string{"z-first", "a-second", "m-third"}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s (tie-break not stable)", i, id, got[i].ID)
		}
	}
}

func TestReplaceAllSwapsEverything(t *testing.T) {
	s := New()
	s.ReplaceAll([]bell.Bell{mkBell("b1", "07:00"), mkBell("b2", "08:00")})
	s.ReplaceAll([]bell.Bell{mkBell("b3", "09:00")})

	if s.Len() != 1 {
		t.Fatalf("expected 1 bell after replace, got %d", s.Len())
	}
	if _, err := s.FindByID("b1"); err != ErrNotFound {
		t.Fatalf("stale bell survived replace: %v", err)
	}
}

func TestFindByIDRoundTrip(t *testing.T) {
	fetched := []bell.Bell{mkBell("b1", "07:00"), mkBell("b2", "08:00"), mkBell("b3", "06:00")}
	s := New()
	s.ReplaceAll(fetched)

	for _, want := range fetched {
		got, err := s.FindByID(want.ID)
		if err != nil {
			t.Fatalf("find %s: %v", want.ID, err)
		}
		if got.ID != want.ID || got.Time != want.Time || got.Message != want.Message {
			t.Fatalf("record changed in round trip: %+v != %+v", got, want)
		}
	}

	if _, err := s.FindByID("missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListReturnsDetachedCopies(t *testing.T) {
	s := New()
	s.ReplaceAll([]bell.Bell{mkBell("b1", "07:00")})

	got := s.List()
	got[0].Speakers[0] = "media_player.garage"

	again, err := s.FindByID("b1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if again.Speakers[0] != "media_player.kitchen" {
		t.Fatal("List exposed internal state")
	}
}
