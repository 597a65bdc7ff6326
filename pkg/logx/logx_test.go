package logx

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"
)

func TestZeroLoggerIsNoop(t *testing.T) {
	t.Parallel()
	var l Logger
	l.Info("ignored", String("k", "v"))
	l.With(Int("n", 1)).Error("ignored", Err(errors.New("x")))
	Nop().Warn("ignored")
}

func TestFileSinkWritesJSON(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "out.log")
	svc, log := New(Config{Level: "debug", File: FileConfig{Enabled: true, Path: path}}, nil)

	log.With(String("timer", "heartbeat")).Info("arrived", Int("n", 3), Duration("lag", 2*time.Millisecond))
	log.Debug("details")
	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), raw)
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &m); err != nil {
		t.Fatalf("line is not JSON: %v", err)
	}
	if m["message"] != "arrived" || m["timer"] != "heartbeat" || m["n"] != float64(3) {
		t.Fatalf("unexpected fields: %v", m)
	}
	if c, _ := m["caller"].(string); !strings.HasPrefix(c, "logx_test.go:") {
		t.Fatalf("caller = %q", c)
	}
}

func TestApplyRaisesLevel(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "out.log")
	cfg := Config{Level: "info", File: FileConfig{Enabled: true, Path: path}}
	svc, log := New(cfg, nil)
	defer svc.Close()

	if !log.Enabled(LevelInfo) {
		t.Fatal("info should be enabled")
	}
	cfg.Level = "error"
	svc.Apply(cfg)
	if log.Enabled(LevelWarn) {
		t.Fatal("warn should be disabled after Apply")
	}
}

type captureSender struct {
	mu   sync.Mutex
	msgs []string
	got  chan struct{}
}

func (c *captureSender) SendText(_ context.Context, text string) error {
	c.mu.Lock()
	c.msgs = append(c.msgs, text)
	c.mu.Unlock()
	c.got <- struct{}{}
	return nil
}

func TestForwardOnlyAboveMinLevel(t *testing.T) {
	t.Parallel()
	sender := &captureSender{got: make(chan struct{}, 4)}
	svc, log := New(Config{
		Level:   "debug",
		Forward: ForwardConfig{Enabled: true, MinLevel: "warn", RatePerSec: 10},
	}, sender)
	defer svc.Close()

	log.Info("quiet")
	log.Error("job failed", String("timer", "backup"))

	select {
	case <-sender.got:
	case <-time.After(2 * time.Second):
		t.Fatal("forwarded line never arrived")
	}
	sender.mu.Lock()
	defer sender.mu.Unlock()
	if len(sender.msgs) != 1 {
		t.Fatalf("forwarded %d lines, want 1", len(sender.msgs))
	}
	msg := sender.msgs[0]
	if !strings.HasPrefix(msg, "[ERROR] job failed") || !strings.Contains(msg, "- timer=backup") {
		t.Fatalf("forwarded = %q", msg)
	}
}

func TestRenderLine(t *testing.T) {
	t.Parallel()
	got := renderLine([]byte(`{"level":"warn","time":"x","message":"slow","b":2,"a":"one"}`))
	want := "[WARN] slow\n- a=one\n- b=2"
	if got != want {
		t.Fatalf("renderLine = %q, want %q", got, want)
	}
	if got := renderLine([]byte("  plain text \n")); got != "plain text" {
		t.Fatalf("renderLine(plain) = %q", got)
	}
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	t.Parallel()
	if got := truncate("abcdéfgh", 8); got != "abcd..." {
		t.Fatalf("truncate = %q", got)
	}
	got := truncate(strings.Repeat("ß", 50), 21)
	if !utf8.ValidString(got) || len(got) > 21 {
		t.Fatalf("truncate = %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	tests := map[string]Level{"DEBUG": LevelDebug, " warning ": LevelWarn, "error": LevelError, "bogus": LevelInfo}
	for in, want := range tests {
		if got := ParseLevel(in, LevelInfo); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
