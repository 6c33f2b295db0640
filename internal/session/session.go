package session

import (
	"context"
	"time"
)

// Run is one completed exchange: what the user said and what the
// assistant answered.
type Run struct {
	ID        string
	SessionID string
	UserID    string
	Input     string
	Response  string
	CreatedAt time.Time
}

// Session summarizes one conversation thread for a user.
type Session struct {
	SessionID string
	UserID    string
	CreatedAt time.Time
	UpdatedAt time.Time
	RunCount  int
}

// Store persists conversation history across process restarts.
type Store interface {
	// AppendRun records a finished exchange, creating the session row on
	// first use.
	AppendRun(ctx context.Context, run *Run) error
	// GetRuns returns up to limit most recent runs of the session in
	// chronological order.
	GetRuns(ctx context.Context, sessionID, userID string, limit int) ([]*Run, error)
	// ListSessions returns the sessions of a user, most recently active
	// first. An empty userID lists all sessions.
	ListSessions(ctx context.Context, userID string) ([]*Session, error)
	// DeleteSession removes a session and its runs.
	DeleteSession(ctx context.Context, sessionID string) error
}
