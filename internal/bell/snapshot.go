package bell

// Snapshot is the full authoritative state served by the daemon and applied
// wholesale by clients. There is no partial form: every successful fetch
// replaces everything a client knows.
type Snapshot struct {
	// Bells is the canonical bell collection.
	Bells []Bell `json:"bells"`

	// Vacation is the global suppression schedule.
	Vacation VacationSchedule `json:"vacation"`

	// GlobalTTS is the administrator-configured fallback TTS triple.
	GlobalTTS TTS `json:"global_tts"`

	// LastDefaults is the TTS triple most recently saved on any bell, used
	// to pre-fill new drafts. Nil until the first save.
	LastDefaults *TTS `json:"last_defaults,omitempty"`

	// Version identifies the daemon build serving the snapshot.
	Version string `json:"version,omitempty"`
}

// Normalize runs boundary normalization over every bell in the snapshot.
func (s *Snapshot) Normalize() {
	for i := range s.Bells {
		s.Bells[i].Normalize()
	}
}

// LastUsed returns the last-used defaults, or a zero triple when none exist.
func (s *Snapshot) LastUsed() TTS {
	if s.LastDefaults == nil {
		return TTS{}
	}
	return *s.LastDefaults
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() Snapshot {
	out := Snapshot{
		Vacation:  s.Vacation.Clone(),
		GlobalTTS: s.GlobalTTS,
		Version:   s.Version,
	}
	if s.LastDefaults != nil {
		last := *s.LastDefaults
		out.LastDefaults = &last
	}
	out.Bells = make([]Bell, len(s.Bells))
	for i := range s.Bells {
		out.Bells[i] = s.Bells[i].Clone()
	}
	return out
}
