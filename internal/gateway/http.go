package gateway

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/brewmarsh/family-bell/internal/bell"
)

// Client talks to the family-bell daemon over HTTP/JSON. It implements
// Gateway.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

var _ Gateway = (*Client)(nil)

// NewClient creates a gateway client for the daemon at baseURL. The token,
// when non-empty, is sent as a bearer credential on every request.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// GetData fetches the full authoritative snapshot.
func (c *Client) GetData(ctx context.Context) (bell.Snapshot, error) {
	var snap bell.Snapshot
	if err := c.do(ctx, http.MethodGet, "/api/data", nil, &snap); err != nil {
		return bell.Snapshot{}, err
	}
	snap.Normalize()
	return snap, nil
}

// UpdateBell creates or replaces a bell.
func (c *Client) UpdateBell(ctx context.Context, b bell.Bell) error {
	return c.do(ctx, http.MethodPost, "/api/bell", b, nil)
}

// DeleteBell removes a bell by id.
func (c *Client) DeleteBell(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/bell/"+url.PathEscape(id), nil, nil)
}

// UpdateVacation replaces the whole vacation schedule.
func (c *Client) UpdateVacation(ctx context.Context, v bell.VacationSchedule) error {
	return c.do(ctx, http.MethodPut, "/api/vacation", v, nil)
}

// TestBell triggers an immediate, non-persisted announcement.
func (c *Client) TestBell(ctx context.Context, b bell.Bell) error {
	return c.do(ctx, http.MethodPost, "/api/bell/test", b, nil)
}

// Watch subscribes to the daemon's change feed (server-sent events) and
// forwards a payload-free tick for every "changed" event. The channel closes
// when the context is cancelled or the stream ends.
func (c *Client) Watch(ctx context.Context) (<-chan struct{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/events", nil)
	if err != nil {
		return nil, fmt.Errorf("gateway: watch request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	c.authorize(req)

	// No client timeout on the event stream; lifetime is the context's.
	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway: watch connect: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("gateway: watch connect: status %d", resp.StatusCode)
	}

	events := make(chan struct{}, 1)
	go func() {
		defer close(events)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			select {
			case events <- struct{}{}:
			case <-ctx.Done():
				return
			default:
				// A pending tick already requests a refetch; collapsing
				// bursts is correct because the payload carries nothing.
			}
		}
		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			slog.Warn("event stream ended", "error", err)
		}
	}()
	return events, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("gateway: encoding request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("gateway: building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gateway: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("gateway: %s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("gateway: decoding response: %w", err)
		}
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
