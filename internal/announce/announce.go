// Package announce turns a due bell into an actual announcement: the
// optional pre-announcement sound followed by a spoken message on every
// target speaker.
//
// The package deliberately stops at the service-call boundary — speech
// synthesis and audio playback belong to the speech service behind it.
package announce

import (
	"context"

	"github.com/brewmarsh/family-bell/internal/bell"
)

// Announcer delivers one announcement. The TTS triple is the already
// resolved, effective configuration; blank fields mean the speech service's
// own defaults apply.
type Announcer interface {
	Announce(ctx context.Context, b bell.Bell, tts bell.TTS) error
}

// SpeakRequest is the wire shape of a speak service call.
type SpeakRequest struct {
	// EntityID selects the TTS provider entity.
	EntityID string `json:"entity_id,omitempty"`

	// Message is the text to synthesize.
	Message string `json:"message"`

	// Language is the ISO-639-1 synthesis language.
	Language string `json:"language,omitempty"`

	// Options carries provider-specific extras (currently just the voice).
	Options *SpeakOptions `json:"options,omitempty"`

	// MediaPlayers lists the playback targets.
	MediaPlayers []string `json:"media_player_entity_id"`
}

// SpeakOptions holds optional synthesis parameters.
type SpeakOptions struct {
	Voice string `json:"voice,omitempty"`
}

// PlayRequest is the wire shape of a pre-announcement sound call.
type PlayRequest struct {
	// EntityID is the device that plays the sound.
	EntityID string `json:"entity_id"`

	// MediaContentID references the sound to play.
	MediaContentID string `json:"media_content_id"`
}

// BuildSpeakRequest assembles the speak call for a bell.
func BuildSpeakRequest(b bell.Bell, tts bell.TTS) SpeakRequest {
	req := SpeakRequest{
		EntityID:     tts.Provider,
		Message:      b.Message,
		Language:     tts.Language,
		MediaPlayers: append([]string(nil), b.Speakers...),
	}
	if tts.Voice != "" {
		req.Options = &SpeakOptions{Voice: tts.Voice}
	}
	return req
}
