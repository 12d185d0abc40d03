// Package bell defines the core data types of the family-bell engine: the
// bell records themselves, the vacation schedule that suppresses them, and
// the TTS configuration resolution chain.
//
// Types here are shared between the daemon (persistence, scheduler, API) and
// the client engine (store, session controller), so the JSON field names are
// the wire contract.
package bell

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// TestBellID is the reserved identifier carried by test announcements.
// It must never match a persisted bell.
const TestBellID = "test"

// Weekday is a lowercase three-letter weekday tag ("mon" .. "sun").
type Weekday string

// The fixed weekday vocabulary, in display order.
const (
	Monday    Weekday = "mon"
	Tuesday   Weekday = "tue"
	Wednesday Weekday = "wed"
	Thursday  Weekday = "thu"
	Friday    Weekday = "fri"
	Saturday  Weekday = "sat"
	Sunday    Weekday = "sun"
)

// Weekdays lists all weekday tags in canonical display order (Monday first).
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// WeekdayOf converts a time.Weekday into its tag.
func WeekdayOf(d time.Weekday) Weekday {
	switch d {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	default:
		return Sunday
	}
}

// IsValidWeekday reports whether tag is part of the fixed vocabulary.
func IsValidWeekday(tag Weekday) bool {
	for _, d := range Weekdays {
		if d == tag {
			return true
		}
	}
	return false
}

// Validation errors for persisted bells.
var (
	ErrEmptyID      = errors.New("bell: id is required")
	ErrInvalidTime  = errors.New("bell: time must be HH:MM")
	ErrEmptyMessage = errors.New("bell: message is required")
	ErrNoDays       = errors.New("bell: at least one weekday is required")
	ErrNoSpeakers   = errors.New("bell: at least one speaker is required")
	ErrInvalidDay   = errors.New("bell: unknown weekday tag")
	ErrSoundDevice  = errors.New("bell: sound playback device must be one of the speakers")
)

// Sound is a pre-announcement sound reference: a media identifier plus the
// device that plays it. The wire form is polymorphic (historically either a
// plain string or an object); UnmarshalJSON normalizes both into this one
// representation so nothing downstream branches on shape.
type Sound struct {
	MediaID  string `json:"media_content_id"`
	DeviceID string `json:"entity_id,omitempty"`
}

// UnmarshalJSON accepts either a plain media-id string or the object form.
func (s *Sound) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		*s = Sound{MediaID: plain}
		return nil
	}

	type soundObject Sound
	var obj soundObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("bell: decoding sound: %w", err)
	}
	*s = Sound(obj)
	return nil
}

// Bell is a scheduled announcement: a time of day, the weekdays it repeats
// on, the message to speak, and the target speakers. TTS override fields are
// blank when the bell inherits the default configuration.
type Bell struct {
	// ID is assigned by the client at creation time and never changes.
	ID string `json:"id"`

	// Name is a display label, defaulted from Time but freely editable.
	Name string `json:"name"`

	// Time is the 24-hour firing time, "HH:MM".
	Time string `json:"time"`

	// Message is the text to announce.
	Message string `json:"message"`

	// Days holds the weekday tags the bell repeats on.
	Days []Weekday `json:"days"`

	// Speakers lists the target media-player entity ids.
	Speakers []string `json:"speakers"`

	// Enabled bells fire; disabled bells are retained but silent.
	Enabled bool `json:"enabled"`

	// TTS overrides. Blank means "inherit" (see Resolve).
	TTSProvider string `json:"tts_provider,omitempty"`
	TTSVoice    string `json:"tts_voice,omitempty"`
	TTSLanguage string `json:"tts_language,omitempty"`

	// Sound is the optional pre-announcement sound. Nil when not set.
	Sound *Sound `json:"sound,omitempty"`
}

// ParseClock splits a "HH:MM" time-of-day string.
func ParseClock(clock string) (hour, minute int, err error) {
	if len(clock) != 5 || clock[2] != ':' {
		return 0, 0, ErrInvalidTime
	}
	if _, err := fmt.Sscanf(clock, "%02d:%02d", &hour, &minute); err != nil {
		return 0, 0, ErrInvalidTime
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, ErrInvalidTime
	}
	return hour, minute, nil
}

// Normalize cleans up boundary artifacts after decoding: a sound reference
// without a media id collapses to no sound, and a missing name is derived
// from the firing time.
func (b *Bell) Normalize() {
	if b.Sound != nil && b.Sound.MediaID == "" {
		b.Sound = nil
	}
	if b.Name == "" && b.Time != "" {
		b.Name = "Bell " + b.Time
	}
}

// Validate checks the invariants required of a persisted bell.
func (b *Bell) Validate() error {
	if b.ID == "" {
		return ErrEmptyID
	}
	if _, _, err := ParseClock(b.Time); err != nil {
		return err
	}
	if b.Message == "" {
		return ErrEmptyMessage
	}
	if len(b.Days) == 0 {
		return ErrNoDays
	}
	seen := make(map[Weekday]bool, len(b.Days))
	for _, d := range b.Days {
		if !IsValidWeekday(d) {
			return fmt.Errorf("%w: %q", ErrInvalidDay, d)
		}
		if seen[d] {
			return fmt.Errorf("%w: duplicate %q", ErrInvalidDay, d)
		}
		seen[d] = true
	}
	if len(b.Speakers) == 0 {
		return ErrNoSpeakers
	}
	if b.Sound != nil && b.Sound.DeviceID != "" && !b.HasSpeaker(b.Sound.DeviceID) {
		return ErrSoundDevice
	}
	return nil
}

// HasSpeaker reports whether id is among the bell's target speakers.
func (b *Bell) HasSpeaker(id string) bool {
	for _, s := range b.Speakers {
		if s == id {
			return true
		}
	}
	return false
}

// HasDay reports whether the bell repeats on the given weekday.
func (b *Bell) HasDay(day Weekday) bool {
	for _, d := range b.Days {
		if d == day {
			return true
		}
	}
	return false
}

// Overrides returns the bell's TTS override triple (fields may be blank).
func (b *Bell) Overrides() TTS {
	return TTS{Provider: b.TTSProvider, Voice: b.TTSVoice, Language: b.TTSLanguage}
}

// SetTTS writes a TTS triple onto the bell's override fields.
func (b *Bell) SetTTS(t TTS) {
	b.TTSProvider = t.Provider
	b.TTSVoice = t.Voice
	b.TTSLanguage = t.Language
}

// Clone returns a deep copy, detached from the receiver's slices.
func (b *Bell) Clone() Bell {
	out := *b
	out.Days = append([]Weekday(nil), b.Days...)
	out.Speakers = append([]string(nil), b.Speakers...)
	if b.Sound != nil {
		sound := *b.Sound
		out.Sound = &sound
	}
	return out
}
