/*
Package sqlite archives game sessions and their committed events in SQLite.

PURPOSE:
  The engine keeps every session in memory. The archive is a write-behind
  record: one row per session (profile, seed, current day and balance) and
  one row per committed event, so finished games can be inspected or replayed
  after the server restarts.

APPEND-ONLY ENFORCEMENT:
  - Events are never updated or deleted individually
  - An event id can be written once per session; a second write is
    ErrDuplicateEvent
  - Session rows are upserted as the game advances

KEY TABLES:
  sessions:  One row per game session
  events:    Committed events, ordered by (day, seq)

CONCURRENCY:
  Uses sync.RWMutex plus a single connection, so ":memory:" databases are
  shared by every call on the same Store.

USAGE:
  store, err := sqlite.New("./data/sessions.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - api/archive.go: Archive interface the API writes through
  - engine/types.go: CommittedEvent
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/scenario-engine/engine"
	"github.com/warp/scenario-engine/profile"
)

// ErrDuplicateEvent is returned when an event id was already archived.
var ErrDuplicateEvent = errors.New("event already archived")

// Store implements the session archive using SQLite.
type Store struct {
	db *sqlx.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		profile_json TEXT NOT NULL,
		seed INTEGER NOT NULL,
		day INTEGER NOT NULL,
		balance TEXT NOT NULL,
		started_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Committed events (append-only)
	CREATE TABLE IF NOT EXISTS events (
		id TEXT NOT NULL,
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		day INTEGER NOT NULL,
		seq INTEGER NOT NULL,
		scenario_id TEXT NOT NULL,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		tags_json TEXT NOT NULL,
		description TEXT NOT NULL,
		deterministic INTEGER NOT NULL,
		proposed_amount TEXT NOT NULL,
		amount TEXT NOT NULL,
		option_code TEXT NOT NULL,
		option_label TEXT NOT NULL,
		probability REAL NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (session_id, id)
	);

	CREATE INDEX IF NOT EXISTS idx_events_session_day
		ON events(session_id, day, seq);
	CREATE INDEX IF NOT EXISTS idx_sessions_updated
		ON sessions(updated_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SESSIONS
// =============================================================================

// SessionRecord is the archived state of one session.
type SessionRecord struct {
	ID        string
	Profile   profile.Profile
	Seed      int64
	Day       int
	Balance   decimal.Decimal
	StartedAt time.Time
	UpdatedAt time.Time
}

type sessionRow struct {
	ID          string          `db:"id"`
	ProfileJSON string          `db:"profile_json"`
	Seed        int64           `db:"seed"`
	Day         int             `db:"day"`
	Balance     decimal.Decimal `db:"balance"`
	StartedAt   string          `db:"started_at"`
	UpdatedAt   string          `db:"updated_at"`
}

func (r sessionRow) record() (SessionRecord, error) {
	rec := SessionRecord{ID: r.ID, Seed: r.Seed, Day: r.Day, Balance: r.Balance}
	if err := json.Unmarshal([]byte(r.ProfileJSON), &rec.Profile); err != nil {
		return SessionRecord{}, fmt.Errorf("session %s: bad profile: %w", r.ID, err)
	}
	rec.StartedAt, _ = time.Parse(time.RFC3339, r.StartedAt)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339, r.UpdatedAt)
	return rec, nil
}

// SaveSession inserts the session or advances its day and balance.
func (s *Store) SaveSession(ctx context.Context, rec SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profileJSON, err := json.Marshal(rec.Profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	now := time.Now().UTC()
	started := rec.StartedAt
	if started.IsZero() {
		started = now
	}

	query := `
		INSERT INTO sessions (id, profile_json, seed, day, balance, started_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			day = excluded.day,
			balance = excluded.balance,
			updated_at = excluded.updated_at
	`
	_, err = s.db.ExecContext(ctx, query,
		rec.ID, string(profileJSON), rec.Seed, rec.Day, rec.Balance.String(),
		started.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// GetSession returns nil, nil when the session is not archived.
func (s *Store) GetSession(ctx context.Context, id string) (*SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var row sessionRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM sessions WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rec, err := row.record()
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListSessions returns the most recently updated sessions first.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	var rows []sessionRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT * FROM sessions ORDER BY updated_at DESC, id LIMIT ?", limit)
	if err != nil {
		return nil, err
	}

	out := make([]SessionRecord, 0, len(rows))
	for _, r := range rows {
		rec, err := r.record()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// DeleteSession removes a session and its events.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM events WHERE session_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// =============================================================================
// EVENTS
// =============================================================================

type eventRow struct {
	ID             string          `db:"id"`
	SessionID      string          `db:"session_id"`
	Day            int             `db:"day"`
	Seq            int             `db:"seq"`
	ScenarioID     string          `db:"scenario_id"`
	Name           string          `db:"name"`
	Type           string          `db:"type"`
	TagsJSON       string          `db:"tags_json"`
	Description    string          `db:"description"`
	Deterministic  bool            `db:"deterministic"`
	ProposedAmount decimal.Decimal `db:"proposed_amount"`
	Amount         decimal.Decimal `db:"amount"`
	OptionCode     string          `db:"option_code"`
	OptionLabel    string          `db:"option_label"`
	Probability    float64         `db:"probability"`
	CreatedAt      string          `db:"created_at"`
}

func (r eventRow) event() engine.CommittedEvent {
	ev := engine.CommittedEvent{
		ID:             r.ID,
		Day:            r.Day,
		ScenarioID:     engine.ScenarioID(r.ScenarioID),
		Name:           r.Name,
		Category:       engine.Category(r.Type),
		Description:    r.Description,
		Deterministic:  r.Deterministic,
		ProposedAmount: r.ProposedAmount,
		Amount:         r.Amount,
		Option:         r.OptionCode,
		OptionLabel:    r.OptionLabel,
		Probability:    r.Probability,
	}
	_ = json.Unmarshal([]byte(r.TagsJSON), &ev.Tags)
	return ev
}

// AppendEvents archives one committed day atomically. Events keep their
// slice order within the day.
func (s *Store) AppendEvents(ctx context.Context, sessionID string, events []engine.CommittedEvent) error {
	if len(events) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO events
		(id, session_id, day, seq, scenario_id, name, type, tags_json, description,
		 deterministic, proposed_amount, amount, option_code, option_label, probability, created_at)
		VALUES
		(:id, :session_id, :day, :seq, :scenario_id, :name, :type, :tags_json, :description,
		 :deterministic, :proposed_amount, :amount, :option_code, :option_label, :probability, :created_at)
	`
	now := time.Now().UTC().Format(time.RFC3339)
	for i, ev := range events {
		tags := ev.Tags
		if tags == nil {
			tags = []string{}
		}
		tagsJSON, _ := json.Marshal(tags)

		row := eventRow{
			ID:             ev.ID,
			SessionID:      sessionID,
			Day:            ev.Day,
			Seq:            i,
			ScenarioID:     string(ev.ScenarioID),
			Name:           ev.Name,
			Type:           string(ev.Category),
			TagsJSON:       string(tagsJSON),
			Description:    ev.Description,
			Deterministic:  ev.Deterministic,
			ProposedAmount: ev.ProposedAmount,
			Amount:         ev.Amount,
			OptionCode:     ev.Option,
			OptionLabel:    ev.OptionLabel,
			Probability:    ev.Probability,
			CreatedAt:      now,
		}
		if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
			if isUniqueConstraintError(err) {
				return fmt.Errorf("%w: %s", ErrDuplicateEvent, ev.ID)
			}
			return fmt.Errorf("failed to append event: %w", err)
		}
	}

	return tx.Commit()
}

// LoadEvents returns a session's events in commit order.
func (s *Store) LoadEvents(ctx context.Context, sessionID string) ([]engine.CommittedEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []eventRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT * FROM events WHERE session_id = ? ORDER BY day, seq", sessionID)
	if err != nil {
		return nil, err
	}

	out := make([]engine.CommittedEvent, len(rows))
	for i, r := range rows {
		out[i] = r.event()
	}
	return out, nil
}

// Reset clears every table.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM events; DELETE FROM sessions;")
	return err
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "PRIMARY KEY"))
}
