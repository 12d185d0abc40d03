package inventory

import (
	"testing"

	"github.com/brewmarsh/family-bell/internal/config"
)

func testDirectory() *Directory {
	return FromConfig(
		[]config.SpeakerConfig{
			{ID: "media_player.kitchen", Name: "Kitchen"},
			{ID: "media_player.hall", Name: "Hallway"},
			{ID: "media_player.attic"},
		},
		[]config.ProviderConfig{
			{
				ID: "tts.cloud", Name: "Cloud",
				Languages: []string{"en", "fr"},
				Voices:    map[string][]string{"en": {"amy", "brian"}, "fr": {"celine"}},
			},
		},
	)
}

func TestSpeakersSortedByName(t *testing.T) {
	got := testDirectory().Speakers()
	if len(got) != 3 {
		t.Fatalf("expected 3 speakers, got %d", len(got))
	}
	// Sorted: Hallway, Kitchen, media_player.attic (id stands in for the name).
	if got[0].Name != "Hallway" || got[1].Name != "Kitchen" || got[2].Name != "media_player.attic" {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestFilterSpeakers(t *testing.T) {
	d := testDirectory()
	if got := d.FilterSpeakers("KITCH"); len(got) != 1 || got[0].ID != "media_player.kitchen" {
		t.Fatalf("unexpected filter result: %+v", got)
	}
	if got := d.FilterSpeakers(""); len(got) != 3 {
		t.Fatalf("empty query should match all, got %+v", got)
	}
}

func TestVoices(t *testing.T) {
	d := testDirectory()

	en, err := d.Voices("tts.cloud", "en")
	if err != nil {
		t.Fatal(err)
	}
	if len(en) != 2 || en[0] != "amy" {
		t.Fatalf("unexpected voices: %v", en)
	}

	all, err := d.Voices("tts.cloud", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected full catalogue, got %v", all)
	}

	if _, err := d.Voices("tts.nope", "en"); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
