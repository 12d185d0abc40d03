package announce

import (
	"testing"

	"github.com/brewmarsh/family-bell/internal/bell"
)

func TestBuildSpeakRequest(t *testing.T) {
	b := bell.Bell{
		ID:       "b1",
		Message:  "Dinner time",
		Speakers: []string{"media_player.kitchen", "media_player.hall"},
	}
	req := BuildSpeakRequest(b, bell.TTS{Provider: "tts.cloud", Voice: "v1", Language: "en"})

	if req.EntityID != "tts.cloud" || req.Message != "Dinner time" || req.Language != "en" {
		t.Fatalf("unexpected request: %+v", req)
	}
	if req.Options == nil || req.Options.Voice != "v1" {
		t.Fatalf("voice option missing: %+v", req.Options)
	}
	if len(req.MediaPlayers) != 2 {
		t.Fatalf("speakers lost: %+v", req.MediaPlayers)
	}

	// No voice selected: the options block is omitted entirely.
	req = BuildSpeakRequest(b, bell.TTS{Provider: "tts.cloud"})
	if req.Options != nil {
		t.Fatalf("expected no options for blank voice, got %+v", req.Options)
	}
}
