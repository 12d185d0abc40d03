// Package inventory exposes the configured speaker and voice directories the
// editing UI picks from.
package inventory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/brewmarsh/family-bell/internal/config"
)

// Speaker is a playback device announcements can target.
type Speaker struct {
	ID   string `json:"entity_id"`
	Name string `json:"name"`
}

// Provider is a TTS engine with a voice catalogue.
type Provider struct {
	ID        string   `json:"entity_id"`
	Name      string   `json:"name"`
	Languages []string `json:"languages,omitempty"`
}

// Directory answers what speakers, providers, and voices exist. Contents come
// from configuration and never change at runtime.
type Directory struct {
	speakers  []Speaker
	providers []Provider
	voices    map[string]map[string][]string // provider id -> language -> voice names
}

// FromConfig builds a directory from the daemon configuration. Speakers and
// providers are sorted by display name.
func FromConfig(speakers []config.SpeakerConfig, providers []config.ProviderConfig) *Directory {
	d := &Directory{voices: make(map[string]map[string][]string)}

	for _, s := range speakers {
		name := s.Name
		if name == "" {
			name = s.ID
		}
		d.speakers = append(d.speakers, Speaker{ID: s.ID, Name: name})
	}
	sort.Slice(d.speakers, func(i, j int) bool { return d.speakers[i].Name < d.speakers[j].Name })

	for _, p := range providers {
		name := p.Name
		if name == "" {
			name = p.ID
		}
		d.providers = append(d.providers, Provider{ID: p.ID, Name: name, Languages: p.Languages})
		byLang := make(map[string][]string, len(p.Voices))
		for lang, voices := range p.Voices {
			byLang[lang] = append([]string(nil), voices...)
		}
		d.voices[p.ID] = byLang
	}
	sort.Slice(d.providers, func(i, j int) bool { return d.providers[i].Name < d.providers[j].Name })

	return d
}

// Speakers returns all configured speakers.
func (d *Directory) Speakers() []Speaker {
	return append([]Speaker(nil), d.speakers...)
}

// HasSpeaker reports whether id names a configured speaker.
func (d *Directory) HasSpeaker(id string) bool {
	for _, s := range d.speakers {
		if s.ID == id {
			return true
		}
	}
	return false
}

// FilterSpeakers returns the speakers whose id or name contains the query,
// case-insensitively. An empty query matches everything.
func (d *Directory) FilterSpeakers(query string) []Speaker {
	if query == "" {
		return d.Speakers()
	}
	q := strings.ToLower(query)
	var out []Speaker
	for _, s := range d.speakers {
		if strings.Contains(strings.ToLower(s.ID), q) || strings.Contains(strings.ToLower(s.Name), q) {
			out = append(out, s)
		}
	}
	return out
}

// Providers returns all configured TTS providers.
func (d *Directory) Providers() []Provider {
	return append([]Provider(nil), d.providers...)
}

// Voices returns the voice names a provider offers for a language. An empty
// language returns the provider's full catalogue across languages.
func (d *Directory) Voices(provider, language string) ([]string, error) {
	byLang, ok := d.voices[provider]
	if !ok {
		return nil, fmt.Errorf("inventory: unknown provider %q", provider)
	}
	if language != "" {
		return append([]string(nil), byLang[language]...), nil
	}
	var all []string
	for _, voices := range byLang {
		all = append(all, voices...)
	}
	sort.Strings(all)
	return all, nil
}
