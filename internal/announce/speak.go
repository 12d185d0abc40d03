package announce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/brewmarsh/family-bell/internal/bell"
)

// ServiceCaller announces by posting service calls to a speech service over
// HTTP: an optional play call for the pre-announcement sound, then the speak
// call.
type ServiceCaller struct {
	baseURL string
	token   string
	http    *http.Client
}

var _ Announcer = (*ServiceCaller)(nil)

// NewServiceCaller creates an announcer against the speech service at
// baseURL. The token, when non-empty, authenticates every call.
func NewServiceCaller(baseURL, token string) *ServiceCaller {
	return &ServiceCaller{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Announce plays the bell's sound (when set) and speaks its message.
func (a *ServiceCaller) Announce(ctx context.Context, b bell.Bell, tts bell.TTS) error {
	if b.Sound != nil {
		device := b.Sound.DeviceID
		if device == "" && len(b.Speakers) > 0 {
			device = b.Speakers[0]
		}
		play := PlayRequest{EntityID: device, MediaContentID: b.Sound.MediaID}
		if err := a.post(ctx, "/services/media_player/play_media", play); err != nil {
			// The announcement still goes out without its chime.
			slog.Warn("pre-announcement sound failed", "bell_id", b.ID, "error", err)
		}
	}

	speak := BuildSpeakRequest(b, tts)
	if err := a.post(ctx, "/services/tts/speak", speak); err != nil {
		return fmt.Errorf("announce: speak %s: %w", b.ID, err)
	}
	slog.Info("announcement dispatched",
		"bell_id", b.ID, "speakers", len(b.Speakers), "provider", tts.Provider)
	return nil
}

func (a *ServiceCaller) post(ctx context.Context, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}
