/*
archive.go - Session archive and replay

PURPOSE:
  Live sessions sit in memory and disappear on eviction or restart. The
  archive keeps every session row and committed day, so a session can be
  listed, inspected and brought back.

REPLAY:
  An engine is a pure function of catalog, engine options, seed, profile and
  the options chosen each day. Restoring a session starts a fresh engine with
  the archived seed and profile and commits every archived day again with the
  archived option codes, matched to offers by position. Event ids come from
  the seeded random source, so each replayed event must carry the archived
  id; any mismatch means the catalog or engine settings changed and the
  replay is abandoned with ErrReplayDiverged.

  Days that committed no events are not archived; replay commits them empty.

SEE ALSO:
  - store/sqlite/sqlite.go: The SQLite implementation
  - handlers.go: Falls back to restore for unknown session ids
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/warp/scenario-engine/engine"
	"github.com/warp/scenario-engine/hud"
	"github.com/warp/scenario-engine/store/sqlite"
)

// ErrReplayDiverged is returned when archived events cannot be reproduced.
var ErrReplayDiverged = errors.New("archived session diverged on replay")

// Archive records sessions and committed days. Writes are best effort: a
// failed write is logged and never fails the request.
type Archive interface {
	SaveSession(ctx context.Context, rec sqlite.SessionRecord) error
	AppendEvents(ctx context.Context, sessionID string, events []engine.CommittedEvent) error

	// GetSession returns nil, nil for unknown ids.
	GetSession(ctx context.Context, id string) (*sqlite.SessionRecord, error)
	ListSessions(ctx context.Context, limit int) ([]sqlite.SessionRecord, error)
	LoadEvents(ctx context.Context, sessionID string) ([]engine.CommittedEvent, error)
	DeleteSession(ctx context.Context, id string) error
}

// NoopArchive is used when no database is configured. It stores nothing
// and finds nothing.
type NoopArchive struct{}

func (NoopArchive) SaveSession(context.Context, sqlite.SessionRecord) error { return nil }

func (NoopArchive) AppendEvents(context.Context, string, []engine.CommittedEvent) error { return nil }

func (NoopArchive) GetSession(context.Context, string) (*sqlite.SessionRecord, error) {
	return nil, nil
}

func (NoopArchive) ListSessions(context.Context, int) ([]sqlite.SessionRecord, error) {
	return nil, nil
}

func (NoopArchive) LoadEvents(context.Context, string) ([]engine.CommittedEvent, error) {
	return nil, nil
}

func (NoopArchive) DeleteSession(context.Context, string) error { return nil }

var _ Archive = (*sqlite.Store)(nil)

// =============================================================================
// RESTORE
// =============================================================================

// restore rebuilds an archived session and registers it as live.
func (h *Handler) restore(ctx context.Context, id string) (*Session, error) {
	rec, err := h.Archive.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrSessionNotFound
	}
	events, err := h.Archive.LoadEvents(ctx, id)
	if err != nil {
		return nil, err
	}

	e := engine.New(h.Catalog, h.Engine.Options(rec.Seed)...)
	if _, err := e.Start(rec.Profile); err != nil {
		return nil, err
	}
	status := hud.New(e.Balance())

	for _, day := range engine.Days(events) {
		for e.Day() < day[0].Day {
			if err := replayDay(e, status, nil); err != nil {
				return nil, err
			}
		}
		if err := replayDay(e, status, day); err != nil {
			return nil, err
		}
	}
	for e.Day() < rec.Day {
		if err := replayDay(e, status, nil); err != nil {
			return nil, err
		}
	}

	log.Printf("[Session] Restored %s at day %d from %d archived events", id, e.Day(), len(events))
	return h.Sessions.Adopt(id, e, status, rec.Seed), nil
}

// replayDay commits the engine's current day choosing the archived option of
// each offer. A nil archived slice means the day committed nothing.
func replayDay(e *engine.Engine, status *hud.State, archived []engine.CommittedEvent) error {
	day := e.Day()
	offers, err := e.Propose(day)
	if err != nil {
		return err
	}
	if len(offers) != len(archived) {
		return fmt.Errorf("%w: day %d has %d offers, %d archived", ErrReplayDiverged, day, len(offers), len(archived))
	}
	if len(archived) > 0 && archived[0].Day != day {
		return fmt.Errorf("%w: day %d archived as day %d", ErrReplayDiverged, day, archived[0].Day)
	}

	choices := make(map[string]string, len(offers))
	for i, o := range offers {
		choices[o.ID] = archived[i].Option
	}
	committed, err := e.Commit(day, choices)
	if err != nil {
		return err
	}
	for i, ev := range committed {
		if ev.ID != archived[i].ID {
			return fmt.Errorf("%w: day %d event %s archived as %s", ErrReplayDiverged, day, ev.ID, archived[i].ID)
		}
	}
	status.Apply(committed)
	return nil
}
