package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/brewmarsh/family-bell/internal/bell"
	"github.com/brewmarsh/family-bell/internal/persistence"
)

// handleGetData returns the full authoritative snapshot.
//
// @Summary     Fetch the household schedule
// @Description Returns every bell, the vacation schedule, the global TTS defaults, and the snapshot version.
// @Description Clients replace their local state with this snapshot wholesale; there is no incremental form.
// @Tags        bells
// @Produce     json
// @Success     200  {object}  bell.Snapshot
// @Failure     500  {string}  string  "Storage error"
// @Router      /api/data [get]
func (s *Server) handleGetData(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r.Context())
	if err != nil {
		slog.Error("loading snapshot", "error", err)
		writeError(w, http.StatusInternalServerError, "loading snapshot")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleUpdateBell creates or replaces a bell.
//
// @Summary     Create or replace a bell
// @Description Upserts the full bell record keyed by its id. The record is validated before it is stored;
// @Description a non-empty TTS selection on the bell becomes the new "last used" default for future bells.
// @Tags        bells
// @Accept      json
// @Produce     json
// @Param       bell  body      bell.Bell  true  "Complete bell record"
// @Success     200   {object}  bell.Bell  "Stored bell"
// @Failure     400   {string}  string     "Invalid bell"
// @Failure     500   {string}  string     "Storage error"
// @Router      /api/bell [post]
func (s *Server) handleUpdateBell(w http.ResponseWriter, r *http.Request) {
	var b bell.Bell
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	if b.ID == bell.TestBellID {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("bell id %q is reserved", bell.TestBellID))
		return
	}

	b.Normalize()
	if err := b.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.SaveBell(r.Context(), b); err != nil {
		slog.Error("saving bell", "bell_id", b.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "saving bell")
		return
	}

	// A bell saved with an explicit voice selection seeds the defaults the
	// next new bell starts from.
	if triple := b.Overrides(); !triple.IsZero() {
		if err := s.store.SaveLastDefaults(r.Context(), triple); err != nil {
			slog.Warn("saving last-used defaults", "error", err)
		}
	}

	s.bump()
	slog.Info("bell saved", "bell_id", b.ID, "name", b.Name, "time", b.Time)
	writeJSON(w, http.StatusOK, b)
}

// handleDeleteBell removes a bell.
//
// @Summary     Delete a bell
// @Tags        bells
// @Produce     json
// @Param       id   path      string  true  "Bell id"
// @Success     204  "Deleted"
// @Failure     404  {string}  string  "Unknown bell id"
// @Failure     500  {string}  string  "Storage error"
// @Router      /api/bell/{id} [delete]
func (s *Server) handleDeleteBell(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.store.DeleteBell(r.Context(), id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			writeError(w, http.StatusNotFound, "unknown bell id")
			return
		}
		slog.Error("deleting bell", "bell_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "deleting bell")
		return
	}

	s.bump()
	slog.Info("bell deleted", "bell_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// handleTestBell announces a bell immediately without persisting it.
//
// @Summary     Test-fire a bell
// @Description Dispatches the announcement right away. Nothing is stored: the bell carries the reserved
// @Description test id and never enters the schedule.
// @Tags        bells
// @Accept      json
// @Produce     json
// @Param       bell  body      bell.Bell  true  "Bell to announce (message and speakers are required)"
// @Success     202   {object}  statusResponse
// @Failure     400   {string}  string  "Missing message or speakers"
// @Router      /api/bell/test [post]
func (s *Server) handleTestBell(w http.ResponseWriter, r *http.Request) {
	var b bell.Bell
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	if b.Message == "" || len(b.Speakers) == 0 {
		writeError(w, http.StatusBadRequest, "a test needs a message and at least one speaker")
		return
	}
	b.ID = bell.TestBellID

	snap, err := s.snapshot(r.Context())
	if err != nil {
		slog.Error("loading snapshot for test", "error", err)
		writeError(w, http.StatusInternalServerError, "loading snapshot")
		return
	}
	effective := bell.Resolve(b.Overrides(), snap.LastUsed(), s.globalTTS)

	// Fire and forget: the announcement outlives the request.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.announcer.Announce(ctx, b, effective); err != nil {
			slog.Warn("test announcement failed", "error", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, statusResponse{Status: "queued"})
}

// handleUpdateVacation replaces the vacation schedule.
//
// @Summary     Replace the vacation schedule
// @Description The whole schedule (enabled flag plus every range) is replaced in one call.
// @Tags        vacation
// @Accept      json
// @Produce     json
// @Param       vacation  body      bell.VacationSchedule  true  "Complete vacation schedule"
// @Success     200       {object}  bell.VacationSchedule
// @Failure     400       {string}  string  "Invalid date range"
// @Failure     500       {string}  string  "Storage error"
// @Router      /api/vacation [put]
func (s *Server) handleUpdateVacation(w http.ResponseWriter, r *http.Request) {
	var v bell.VacationSchedule
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	for _, rng := range v.Ranges {
		if err := rng.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	if err := s.store.SaveVacation(r.Context(), v); err != nil {
		slog.Error("saving vacation schedule", "error", err)
		writeError(w, http.StatusInternalServerError, "saving vacation schedule")
		return
	}

	s.bump()
	slog.Info("vacation schedule replaced", "enabled", v.Enabled, "ranges", len(v.Ranges))
	writeJSON(w, http.StatusOK, v)
}

// handleEvents streams change notifications as server-sent events.
//
// @Summary     Subscribe to change notifications
// @Description Emits a "changed" event whenever a bell or the vacation schedule is modified. The event
// @Description carries no payload; clients react by refetching /api/data.
// @Tags        events
// @Produce     text/event-stream
// @Success     200  {string}  string  "Event stream"
// @Router      /api/events [get]
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	// Subscribe before the greeting so a mutation racing the handshake is
	// never missed.
	sub := s.hub.subscribe()
	defer s.hub.unsubscribe(sub)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprint(w, "data: connected\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-sub:
			fmt.Fprint(w, "data: changed\n\n")
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}

// handleSpeakers lists the playback devices.
//
// @Summary     List speakers
// @Tags        inventory
// @Produce     json
// @Param       q  query     string  false  "Filter by id or name, case-insensitive"
// @Success     200  {array}  inventory.Speaker
// @Router      /api/speakers [get]
func (s *Server) handleSpeakers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.directory.FilterSpeakers(r.URL.Query().Get("q")))
}

// handleProviders lists the TTS providers.
//
// @Summary     List TTS providers
// @Tags        inventory
// @Produce     json
// @Success     200  {array}  inventory.Provider
// @Router      /api/providers [get]
func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.directory.Providers())
}

// handleVoices lists the voices a provider offers.
//
// @Summary     List voices
// @Tags        inventory
// @Produce     json
// @Param       provider  query     string  true   "Provider id"
// @Param       language  query     string  false  "ISO-639-1 language code; empty returns the full catalogue"
// @Success     200  {array}   string
// @Failure     400  {string}  string  "Unknown provider"
// @Router      /api/voices [get]
func (s *Server) handleVoices(w http.ResponseWriter, r *http.Request) {
	voices, err := s.directory.Voices(r.URL.Query().Get("provider"), r.URL.Query().Get("language"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, voices)
}

// snapshot assembles the wire snapshot: persisted state plus the configured
// global defaults and the current version.
func (s *Server) snapshot(ctx context.Context) (bell.Snapshot, error) {
	snap, err := s.store.LoadSnapshot(ctx)
	if err != nil {
		return bell.Snapshot{}, err
	}
	snap.GlobalTTS = s.globalTTS
	snap.Version = s.version
	snap.Normalize()
	return snap, nil
}
