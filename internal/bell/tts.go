package bell

// TTS is a {provider, voice, language} configuration triple. A blank field
// means "unset"; at announcement time a fully blank triple falls through to
// the system default voice.
type TTS struct {
	Provider string `json:"provider,omitempty"`
	Voice    string `json:"voice,omitempty"`
	Language string `json:"language,omitempty"`
}

// IsZero reports whether every field is blank.
func (t TTS) IsZero() bool {
	return t.Provider == "" && t.Voice == "" && t.Language == ""
}

// Resolve computes the effective TTS triple for a bell. Each field resolves
// independently: the override wins when non-blank, then the last-used
// default, then the global default. A field blank at every level stays
// blank.
//
// The scheduler, the test dispatch, and the edit session all use this one
// chain; there is intentionally no other defaulting path.
func Resolve(override, lastUsed, global TTS) TTS {
	return TTS{
		Provider: firstNonBlank(override.Provider, lastUsed.Provider, global.Provider),
		Voice:    firstNonBlank(override.Voice, lastUsed.Voice, global.Voice),
		Language: firstNonBlank(override.Language, lastUsed.Language, global.Language),
	}
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
