// Package api implements the HTTP surface of the family-bell daemon.
//
// It exposes a REST API for bell and vacation management, a test-announcement
// endpoint, speaker and voice directories for the editing UI, and a
// server-sent-events stream that notifies connected clients whenever the
// household schedule changes.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/brewmarsh/family-bell/internal/announce"
	"github.com/brewmarsh/family-bell/internal/bell"
	"github.com/brewmarsh/family-bell/internal/inventory"
	"github.com/brewmarsh/family-bell/internal/persistence"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// Server serves the family-bell REST API.
type Server struct {
	port      int
	token     string
	version   string
	store     persistence.Store
	directory *inventory.Directory
	announcer announce.Announcer
	globalTTS bell.TTS

	hub    *hub
	server *http.Server
}

// New creates an API server on the given port. token, when non-empty, is
// required as a bearer credential on every request; version is the daemon
// build version reported in every snapshot.
func New(port int, token, version string, store persistence.Store, directory *inventory.Directory, announcer announce.Announcer, globalTTS bell.TTS) *Server {
	return &Server{
		port:      port,
		token:     token,
		version:   version,
		store:     store,
		directory: directory,
		announcer: announcer,
		globalTTS: globalTTS,
		hub:       newHub(),
	}
}

// Handler builds the route table. Split out so tests can drive the server
// through httptest without opening a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/data", s.handleGetData)
	mux.HandleFunc("POST /api/bell", s.handleUpdateBell)
	mux.HandleFunc("DELETE /api/bell/{id}", s.handleDeleteBell)
	mux.HandleFunc("POST /api/bell/test", s.handleTestBell)
	mux.HandleFunc("PUT /api/vacation", s.handleUpdateVacation)
	mux.HandleFunc("GET /api/events", s.handleEvents)

	mux.HandleFunc("GET /api/speakers", s.handleSpeakers)
	mux.HandleFunc("GET /api/providers", s.handleProviders)
	mux.HandleFunc("GET /api/voices", s.handleVoices)

	// Swagger UI — serves the generated OpenAPI docs.
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return s.authenticate(mux)
}

// ListenAndServe starts the API server. It blocks until the context is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("api server listening", "port", s.port)

	go func() {
		<-ctx.Done()
		slog.Info("api server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("api listen: %w", err)
	}
	return nil
}

// authenticate enforces the bearer token when one is configured. The swagger
// UI stays open so the docs remain browsable.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" && !strings.HasPrefix(r.URL.Path, "/swagger/") {
			if r.Header.Get("Authorization") != "Bearer "+s.token {
				writeError(w, http.StatusUnauthorized, "invalid or missing token")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// bump records a mutation by poking every connected event stream.
func (s *Server) bump() {
	s.hub.broadcast()
}

// hub fans a change signal out to the connected SSE streams.
type hub struct {
	mu   sync.Mutex
	subs map[chan struct{}]bool
}

func newHub() *hub {
	return &hub{subs: make(map[chan struct{}]bool)}
}

func (h *hub) subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	h.mu.Lock()
	h.subs[ch] = true
	h.mu.Unlock()
	return ch
}

func (h *hub) unsubscribe(ch chan struct{}) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

func (h *hub) broadcast() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default: // subscriber already has a pending signal
		}
	}
}
