package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/relabs-tech/affect_computer/internal/affect"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id          TEXT PRIMARY KEY,
	started_at  TEXT NOT NULL,
	source      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS emotions (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id    TEXT NOT NULL,
	ts            TEXT NOT NULL,
	emotion       TEXT NOT NULL,
	confidence    REAL NOT NULL,
	factors_json  TEXT NOT NULL,
	FOREIGN KEY (session_id) REFERENCES sessions(id)
);

CREATE TABLE IF NOT EXISTS states (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT NOT NULL,
	ts          TEXT NOT NULL,
	arousal     REAL NOT NULL,
	valence     REAL NOT NULL,
	stress      REAL NOT NULL,
	focus       REAL NOT NULL,
	FOREIGN KEY (session_id) REFERENCES sessions(id)
);

CREATE INDEX IF NOT EXISTS idx_emotions_session ON emotions(session_id, id);
CREATE INDEX IF NOT EXISTS idx_states_session ON states(session_id, id);
`

// tsLayout keeps a fixed fraction width so stored timestamps sort as text.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Session is one recording run of the engine or the offline replay.
type Session struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Source    string    `json:"source"`
}

// EmotionRecord is a stored classification.
type EmotionRecord struct {
	Timestamp time.Time `json:"ts"`
	affect.DetectedEmotion
}

// StateRecord is a stored aggregated state.
type StateRecord struct {
	Timestamp time.Time `json:"ts"`
	affect.AffectiveState
}

// Store persists pipeline results in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the SQLite database at path and runs migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// one writer; avoids SQLITE_BUSY between the engine goroutines
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// StartSession creates a new session labelled with the sample source.
func (s *Store) StartSession(source string) (Session, error) {
	sess := Session{
		ID:        uuid.New().String(),
		StartedAt: s.now().UTC(),
		Source:    source,
	}
	_, err := s.db.Exec(
		`INSERT INTO sessions (id, started_at, source) VALUES (?, ?, ?)`,
		sess.ID, sess.StartedAt.Format(tsLayout), sess.Source,
	)
	if err != nil {
		return Session{}, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

// SaveResult stores the emotion and state of one pipeline result.
func (s *Store) SaveResult(sessionID string, r affect.Result) error {
	factors := r.Emotion.Factors
	if factors == nil {
		factors = affect.Factors{}
	}
	factorsJSON, err := json.Marshal(factors)
	if err != nil {
		return fmt.Errorf("marshal factors: %w", err)
	}
	ts := r.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}
	tsStr := ts.UTC().Format(tsLayout)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO emotions (session_id, ts, emotion, confidence, factors_json)
		 VALUES (?, ?, ?, ?, ?)`,
		sessionID, tsStr, string(r.Emotion.Emotion), r.Emotion.Confidence, string(factorsJSON),
	)
	if err != nil {
		return fmt.Errorf("insert emotion: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO states (session_id, ts, arousal, valence, stress, focus)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID, tsStr, r.State.Arousal, r.State.Valence, r.State.Stress, r.State.Focus,
	)
	if err != nil {
		return fmt.Errorf("insert state: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Sessions lists all sessions, newest first.
func (s *Store) Sessions() ([]Session, error) {
	rows, err := s.db.Query(`SELECT id, started_at, source FROM sessions ORDER BY started_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var sess Session
		var started string
		if err := rows.Scan(&sess.ID, &started, &sess.Source); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if sess.StartedAt, err = parseTS(started); err != nil {
			return nil, fmt.Errorf("session %s: %w", sess.ID, err)
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// Emotions returns the stored classifications of a session in
// recording order.
func (s *Store) Emotions(sessionID string) ([]EmotionRecord, error) {
	rows, err := s.db.Query(
		`SELECT ts, emotion, confidence, factors_json FROM emotions
		 WHERE session_id = ? ORDER BY id`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query emotions: %w", err)
	}
	defer rows.Close()

	var out []EmotionRecord
	for rows.Next() {
		var rec EmotionRecord
		var ts, emotion, factorsJSON string
		if err := rows.Scan(&ts, &emotion, &rec.Confidence, &factorsJSON); err != nil {
			return nil, fmt.Errorf("scan emotion: %w", err)
		}
		if rec.Timestamp, err = parseTS(ts); err != nil {
			return nil, fmt.Errorf("emotion row: %w", err)
		}
		rec.Emotion, err = affect.ParseEmotion(emotion)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(factorsJSON), &rec.Factors); err != nil {
			return nil, fmt.Errorf("unmarshal factors: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// States returns the stored aggregated states of a session in
// recording order.
func (s *Store) States(sessionID string) ([]StateRecord, error) {
	rows, err := s.db.Query(
		`SELECT ts, arousal, valence, stress, focus FROM states
		 WHERE session_id = ? ORDER BY id`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query states: %w", err)
	}
	defer rows.Close()

	var out []StateRecord
	for rows.Next() {
		var rec StateRecord
		var ts string
		if err := rows.Scan(&ts, &rec.Arousal, &rec.Valence, &rec.Stress, &rec.Focus); err != nil {
			return nil, fmt.Errorf("scan state: %w", err)
		}
		if rec.Timestamp, err = parseTS(ts); err != nil {
			return nil, fmt.Errorf("state row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func parseTS(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse ts: %w", err)
	}
	return t, nil
}
