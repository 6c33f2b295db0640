package session

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"

	"github.com/vti-labs/recruit-assistant/internal/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	session_id TEXT NOT NULL REFERENCES sessions(session_id) ON DELETE CASCADE,
	user_id    TEXT NOT NULL DEFAULT '',
	input      TEXT NOT NULL,
	response   TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_session ON runs(session_id, created_at);
`

// SQLiteStore keeps sessions and runs in a local SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// OpenSQLite opens (creating if needed) the session database at path.
func OpenSQLite(path string, logger *zap.Logger) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("session database path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// The foreign-keys pragma is per-connection in SQLite; setting it through
	// the DSN makes the driver apply it to every connection in the pool, so
	// the runs cascade fires no matter which connection serves the delete.
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open session database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create session schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger,
		now:    time.Now,
	}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) AppendRun(ctx context.Context, run *Run) error {
	if run == nil {
		return fmt.Errorf("run is required")
	}
	if strings.TrimSpace(run.SessionID) == "" {
		return fmt.Errorf("session id is required")
	}

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (session_id, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (session_id) DO UPDATE SET updated_at = excluded.updated_at`,
		run.SessionID, run.UserID, run.CreatedAt, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, session_id, user_id, input, response, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.SessionID, run.UserID, run.Input, run.Response, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	committed = true
	return tx.Commit()
}

func (s *SQLiteStore) GetRuns(ctx context.Context, sessionID, userID string, limit int) ([]*Run, error) {
	if limit <= 0 {
		return nil, nil
	}

	// Take the newest rows, then flip them into chronological order.
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, user_id, input, response, created_at
		FROM runs
		WHERE session_id = ? AND (? = '' OR user_id = ?)
		ORDER BY created_at DESC, id DESC
		LIMIT ?`,
		sessionID, userID, userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		if err := rows.Scan(&run.ID, &run.SessionID, &run.UserID, &run.Input, &run.Response, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	for i, j := 0, len(runs)-1; i < j; i, j = i+1, j-1 {
		runs[i], runs[j] = runs[j], runs[i]
	}

	return runs, nil
}

func (s *SQLiteStore) ListSessions(ctx context.Context, userID string) ([]*Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.session_id, s.user_id, s.created_at, s.updated_at, COUNT(r.id)
		FROM sessions s
		LEFT JOIN runs r ON r.session_id = s.session_id
		WHERE (? = '' OR s.user_id = ?)
		GROUP BY s.session_id
		ORDER BY s.updated_at DESC`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		session := &Session{}
		if err := rows.Scan(&session.SessionID, &session.UserID, &session.CreatedAt, &session.UpdatedAt, &session.RunCount); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	return sessions, nil
}

func (s *SQLiteStore) DeleteSession(ctx context.Context, sessionID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err == nil && deleted == 0 {
		s.logger.Debug("delete of unknown session", zap.String(logger.FieldSession, sessionID))
	}

	return nil
}
