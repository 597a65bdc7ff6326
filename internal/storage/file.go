package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"cronjob/pkg/logx"
)

// fileStore appends firings to <prefix>.firings.jsonl, one JSON object per
// line. Reads scan the whole file.
type fileStore struct {
	log  logx.Logger
	path string

	mu sync.Mutex
	f  *os.File
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required for the file driver")
	}
	dir := filepath.Dir(path)
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	full := filepath.Join(dir, base) + ".firings.jsonl"
	f, err := os.OpenFile(full, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0o600)
	if err != nil {
		return nil, err
	}
	log.Debug("file store opened", logx.String("path", full))
	return &fileStore{log: log, path: full, f: f}, nil
}

func (s *fileStore) AppendFiring(_ context.Context, fr Firing) error {
	b, err := json.Marshal(fr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return ErrClosed
	}
	_, err = s.f.Write(append(b, '\n'))
	return err
}

func (s *fileStore) RecentFirings(ctx context.Context, timer string, n int) ([]Firing, error) {
	if n <= 0 {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil, ErrClosed
	}

	r, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var last []Firing
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		if line%1024 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var fr Firing
		if err := json.Unmarshal(sc.Bytes(), &fr); err != nil {
			// A torn last line after a crash is skipped.
			s.log.Debug("skipping bad history line", logx.Int("line", line), logx.Err(err))
			continue
		}
		if timer != "" && fr.Timer != timer {
			continue
		}
		last = append(last, fr)
		if len(last) > n {
			last = last[1:]
		}
	}
	if err := sc.Err(); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read history: %w", err)
	}

	out := make([]Firing, len(last))
	for i, fr := range last {
		out[len(last)-1-i] = fr
	}
	return out, nil
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}
