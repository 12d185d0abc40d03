package announce

import (
	"context"
	"log/slog"

	"github.com/brewmarsh/family-bell/internal/bell"
)

// LogAnnouncer logs announcements instead of dispatching them. Used for
// dry-run mode and in tests.
type LogAnnouncer struct{}

var _ Announcer = LogAnnouncer{}

// Announce writes the would-be announcement to the log.
func (LogAnnouncer) Announce(ctx context.Context, b bell.Bell, tts bell.TTS) error {
	slog.Info("announcement (dry run)",
		"bell_id", b.ID,
		"message", b.Message,
		"speakers", b.Speakers,
		"provider", tts.Provider,
		"voice", tts.Voice,
		"language", tts.Language,
	)
	return nil
}
