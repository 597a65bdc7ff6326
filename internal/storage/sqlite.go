package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"cronjob/pkg/logx"
)

//go:embed migrations.sql
var migrations string

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required for the sqlite driver")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer keeps SQLite away from SQLITE_BUSY storms.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.BusyTimeout > 0 {
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if _, err := db.ExecContext(context.Background(), migrations); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Debug("sqlite store opened", logx.String("path", path))
	return &sqliteStore{db: db, log: log}, nil
}

func (s *sqliteStore) AppendFiring(ctx context.Context, f Firing) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO firings(timer, expression, occurrence, at, action, ok, err, took_ms)
		 VALUES(?,?,?,?,?,?,?,?)`,
		f.Timer, f.Expression, f.Occurrence.Format(time.RFC3339Nano), f.At.Format(time.RFC3339Nano),
		nullStr(f.Action), boolInt(f.OK), nullStr(f.Error), f.TookMS,
	)
	return err
}

func (s *sqliteStore) RecentFirings(ctx context.Context, timer string, n int) ([]Firing, error) {
	if n <= 0 {
		return nil, nil
	}
	q := `SELECT timer, expression, occurrence, at, action, ok, err, took_ms FROM firings`
	args := []any{}
	if timer != "" {
		q += ` WHERE timer = ?`
		args = append(args, timer)
	}
	q += ` ORDER BY id DESC LIMIT ?`
	args = append(args, n)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Firing
	for rows.Next() {
		var (
			f               Firing
			occ, at         string
			action, errText sql.NullString
			ok              int
		)
		if err := rows.Scan(&f.Timer, &f.Expression, &occ, &at, &action, &ok, &errText, &f.TookMS); err != nil {
			return nil, err
		}
		f.Occurrence, _ = time.Parse(time.RFC3339Nano, occ)
		f.At, _ = time.Parse(time.RFC3339Nano, at)
		f.Action, f.Error, f.OK = action.String, errText.String, ok != 0
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *sqliteStore) Close() error { return s.db.Close() }

func nullStr(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
