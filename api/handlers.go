/*
handlers.go - HTTP API handlers for the scenario game

PURPOSE:
  Exposes the scenario engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the engine and HUD.

ENDPOINTS:
  GET    /api/meta                 Segments, moods and profile defaults
  POST   /api/start                Start a session, returns day 1 offers
  GET    /api/offers?session_id=   Offers awaiting commit
  POST   /api/commit               Settle a day, returns the next day's offers
  GET    /api/state?session_id=    Day, balance, recent history, HUD, plans
  POST   /api/simulate             Headless run with the default policy
  GET    /api/sessions?limit=      Archived sessions, most recent first
  GET    /api/sessions/{id}/events Archived events of one session
  DELETE /api/sessions/{id}        Drop a session, live and archived

  A session id that is not live is restored from the archive when possible
  (see archive.go), so games survive eviction and restarts.

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Catalog: Shared, read-only scenario catalog
  - Engine: Engine settings from config
  - Sessions: Live sessions, one engine and one HUD each
  - Archive: Write-behind session and event log

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Lock the session and call the engine
  4. Fold committed events into the HUD, archive them
  5. Serialize response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid JSON, invalid profile, invalid day count
  - 404: Unknown session, day not awaiting commit
  - 409: Archived session no longer replays against this catalog
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - sessions.go: Session registry
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/scenario-engine/config"
	"github.com/warp/scenario-engine/engine"
	"github.com/warp/scenario-engine/hud"
	"github.com/warp/scenario-engine/profile"
	"github.com/warp/scenario-engine/store/sqlite"
)

const (
	// HistoryLimit is how many committed events /api/state returns.
	HistoryLimit = 100

	// MaxSimulationDays bounds /api/simulate.
	MaxSimulationDays = 3650

	// MaxListSessions bounds /api/sessions.
	MaxListSessions = 1000

	defaultSimulationDays = 30
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Catalog  *engine.Catalog
	Engine   config.EngineConfig
	Sessions *SessionStore
	Archive  Archive
}

// NewHandler creates a handler. A nil archive disables archiving.
func NewHandler(cat *engine.Catalog, cfg config.EngineConfig, archive Archive) *Handler {
	if archive == nil {
		archive = NoopArchive{}
	}
	return &Handler{
		Catalog:  cat,
		Engine:   cfg,
		Sessions: NewSessionStore(),
		Archive:  archive,
	}
}

func (h *Handler) seed(requested *int64) int64 {
	switch {
	case requested != nil:
		return *requested
	case h.Engine.Seed != 0:
		return h.Engine.Seed
	default:
		return rand.Int63()
	}
}

// =============================================================================
// META
// =============================================================================

// Meta lists the profile enumerations and defaults.
func (h *Handler) Meta(w http.ResponseWriter, r *http.Request) {
	segments := make(map[string]MetaSegmentDTO, len(profile.Segments))
	for _, key := range profile.SegmentKeys() {
		seg := profile.Segments[key]
		segments[string(key)] = MetaSegmentDTO{Name: seg.Name, Description: seg.Description}
	}
	moods := make([]string, 0, len(profile.Moods))
	for _, key := range profile.MoodKeys() {
		moods = append(moods, string(key))
	}

	writeJSON(w, http.StatusOK, MetaResponse{
		Segments:  segments,
		Moods:     moods,
		Defaults:  defaultProfileRequest(),
		Scenarios: h.Catalog.Len(),
	})
}

// =============================================================================
// SESSION HANDLERS
// =============================================================================

// Start creates a session and returns the offers of day 1.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	req := StartRequest{ProfileRequest: defaultProfileRequest()}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON", err)
		return
	}

	seed := h.seed(req.Seed)
	p := req.profile()
	e := engine.New(h.Catalog, h.Engine.Options(seed)...)
	offers, err := e.Start(p)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	s := h.Sessions.Add(e, hud.New(e.Balance()), seed)
	log.Printf("[Session] Started %s (segment=%s mood=%s seed=%d)", s.ID, p.Segment, p.Mood, seed)

	s.mu.Lock()
	defer s.mu.Unlock()
	h.archiveSession(r.Context(), s)

	writeJSON(w, http.StatusOK, StartResponse{
		SessionID: s.ID,
		Day:       e.Day(),
		Balance:   num(e.Balance()),
		Offers:    toOfferDTOs(offers),
		HUD:       s.hud.Snapshot(e.Day()),
		User:      req.ProfileRequest,
		Seed:      seed,
	})
}

// Offers returns the offers awaiting commit.
func (h *Handler) Offers(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r, r.URL.Query().Get("session_id"))
	if !ok {
		return
	}
	defer s.mu.Unlock()

	offers, err := s.engine.Propose(s.engine.Day())
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, OffersResponse{
		Day:     s.engine.Day(),
		Balance: num(s.engine.Balance()),
		Offers:  toOfferDTOs(offers),
		HUD:     s.hud.Snapshot(s.engine.Day()),
	})
}

// Commit settles a day and proposes the next one.
func (h *Handler) Commit(w http.ResponseWriter, r *http.Request) {
	var req CommitRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON", err)
		return
	}

	s, ok := h.session(w, r, req.SessionID)
	if !ok {
		return
	}
	defer s.mu.Unlock()

	day := req.Day
	if day == 0 {
		day = s.engine.Day()
	}

	committed, err := s.engine.Commit(day, req.Choices)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	s.hud.Apply(committed)

	next, err := s.engine.Propose(s.engine.Day())
	if err != nil {
		writeEngineError(w, err)
		return
	}

	if err := h.Archive.AppendEvents(r.Context(), s.ID, committed); err != nil {
		log.Printf("[Session] Archive events for %s day %d: %v", s.ID, day, err)
	}
	h.archiveSession(r.Context(), s)

	writeJSON(w, http.StatusOK, CommitResponse{
		Committed:  toEventDTOs(committed),
		Balance:    num(s.engine.Balance()),
		Day:        s.engine.Day(),
		NextOffers: toOfferDTOs(next),
		HUD:        s.hud.Snapshot(s.engine.Day()),
	})
}

// State returns the session summary with the last HistoryLimit events.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r, r.URL.Query().Get("session_id"))
	if !ok {
		return
	}
	defer s.mu.Unlock()

	e := s.engine
	writeJSON(w, http.StatusOK, StateResponse{
		Day:           e.Day(),
		Balance:       num(e.Balance()),
		History:       toEventDTOs(e.History(HistoryLimit)),
		HUD:           s.hud.Snapshot(e.Day()),
		Plans:         toPlanDTOs(e.Plans()),
		PendingSpawns: len(e.PendingSpawns()),
	})
}

// =============================================================================
// SIMULATION
// =============================================================================

// Simulate plays a headless session with engine.DefaultPolicy.
func (h *Handler) Simulate(w http.ResponseWriter, r *http.Request) {
	req := SimulateRequest{ProfileRequest: defaultProfileRequest(), Days: defaultSimulationDays}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON", err)
		return
	}
	if req.Days < 1 || req.Days > MaxSimulationDays {
		writeError(w, http.StatusBadRequest, "days must be between 1 and 3650", nil)
		return
	}

	seed := h.seed(req.Seed)
	e := engine.New(h.Catalog, h.Engine.Options(seed)...)
	rows, err := engine.Run(e, req.profile(), req.Days, engine.DefaultPolicy)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SimulateResponse{
		Days:         req.Days,
		Seed:         seed,
		FinalBalance: num(e.Balance()),
		Rows:         toRowDTOs(rows),
	})
}

// =============================================================================
// ARCHIVE
// =============================================================================

// ListSessions lists archived sessions, flagging the ones that are live.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxListSessions {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 1000", err)
			return
		}
		limit = n
	}

	recs, err := h.Archive.ListSessions(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions", err)
		return
	}

	out := make([]ArchivedSessionDTO, len(recs))
	for i, rec := range recs {
		out[i] = toArchivedSessionDTO(rec, h.isLive(rec.ID))
	}
	writeJSON(w, http.StatusOK, SessionsResponse{Sessions: out})
}

// SessionEvents returns every archived event of a session in commit order.
func (h *Handler) SessionEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := h.Archive.GetSession(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load session", err)
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "not found", ErrSessionNotFound)
		return
	}

	events, err := h.Archive.LoadEvents(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load events", err)
		return
	}
	writeJSON(w, http.StatusOK, EventsResponse{
		Session: toArchivedSessionDTO(*rec, h.isLive(id)),
		Events:  toEventDTOs(events),
	})
}

// DeleteSession drops a live session and its archive.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	live := h.isLive(id)

	rec, err := h.Archive.GetSession(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load session", err)
		return
	}
	if !live && rec == nil {
		writeError(w, http.StatusNotFound, "not found", ErrSessionNotFound)
		return
	}

	h.Sessions.Delete(id)
	if rec != nil {
		if err := h.Archive.DeleteSession(r.Context(), id); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to delete session", err)
			return
		}
	}
	log.Printf("[Session] Deleted %s", id)
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) isLive(id string) bool {
	_, err := h.Sessions.Get(id)
	return err == nil
}

// session looks up and locks a session, restoring it from the archive when
// it is not live. On failure it writes the response and returns false; on
// success the caller must unlock.
func (h *Handler) session(w http.ResponseWriter, r *http.Request, id string) (*Session, bool) {
	if id == "" {
		writeError(w, http.StatusBadRequest, "session_id is required", nil)
		return nil, false
	}
	s, err := h.Sessions.Get(id)
	if errors.Is(err, ErrSessionNotFound) {
		s, err = h.restore(r.Context(), id)
	}
	switch {
	case errors.Is(err, ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "not found", err)
		return nil, false
	case errors.Is(err, ErrReplayDiverged):
		log.Printf("[Session] Restore %s: %v", id, err)
		writeError(w, http.StatusConflict, "Session cannot be restored", err)
		return nil, false
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
		return nil, false
	}
	s.mu.Lock()
	s.touch(time.Now())
	return s, true
}

func (h *Handler) archiveSession(ctx context.Context, s *Session) {
	rec := sqlite.SessionRecord{
		ID:      s.ID,
		Profile: s.engine.Profile(),
		Seed:    s.Seed,
		Day:     s.engine.Day(),
		Balance: s.engine.Balance(),
	}
	if err := h.Archive.SaveSession(ctx, rec); err != nil {
		log.Printf("[Session] Archive session %s: %v", s.ID, err)
	}
}

func decodeBody(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func writeEngineError(w http.ResponseWriter, err error) {
	var perr *profile.Error
	switch {
	case errors.As(err, &perr):
		writeError(w, http.StatusBadRequest, "Invalid profile", err)
	case errors.Is(err, engine.ErrDayNotProposed):
		writeError(w, http.StatusNotFound, "not found", err)
	case errors.Is(err, engine.ErrInvalidDay):
		writeError(w, http.StatusBadRequest, "Invalid day", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
