package storage

import (
	"context"
	"errors"
	"time"
)

var ErrClosed = errors.New("storage closed")

// Config selects a backend.
//
// Driver values:
//   - "file": JSON Lines file, no dependencies
//   - "sqlite": SQLite database file
//
// Empty or "none" disables storage.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Firing records one dispatched arrival of a timer.
type Firing struct {
	Timer      string    `json:"timer"`
	Expression string    `json:"expression"`
	Occurrence time.Time `json:"occurrence"`
	// At is when the host loop observed the arrival.
	At     time.Time `json:"at"`
	Action string    `json:"action,omitempty"`
	OK     bool      `json:"ok"`
	Error  string    `json:"error,omitempty"`
	TookMS int64     `json:"took_ms"`
}

// Store keeps an append-only history of firings. Tracker state itself is
// never stored.
type Store interface {
	AppendFiring(ctx context.Context, f Firing) error
	// RecentFirings returns up to n firings, newest first. An empty timer
	// matches every timer.
	RecentFirings(ctx context.Context, timer string, n int) ([]Firing, error)
	Close() error
}
