package logx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

type Config struct {
	Level   string
	Console bool
	File    FileConfig
	Forward ForwardConfig
}

type FileConfig struct {
	Enabled bool
	Path    string
}

// ForwardConfig mirrors high-severity log lines to a chat via a TextSender.
type ForwardConfig struct {
	Enabled    bool
	MinLevel   string
	RatePerSec int
}

// TextSender delivers a rendered log line somewhere outside the process.
type TextSender interface {
	SendText(ctx context.Context, text string) error
}

const (
	defaultLogPath = "./cronjob.log"
	forwardQueue   = 128
	forwardMaxLen  = 3500
)

// Service owns the sinks and lets them be swapped at runtime.
type Service struct {
	mu   sync.Mutex
	root atomic.Value // zerolog.Logger
	file *os.File

	sender   TextSender
	queue    chan string
	once     sync.Once
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	limiter  *rate.Limiter
	minLevel zerolog.Level
}

// New builds the service, applies cfg and returns the root logger.
// sender may be nil; forwarding is then a no-op.
func New(cfg Config, sender TextSender) (*Service, Logger) {
	setGlobals()
	s := &Service{sender: sender, queue: make(chan string, forwardQueue)}
	s.root.Store(zerolog.New(consoleWriter(Stdout())).Level(ParseLevel(cfg.Level, LevelInfo)).With().Timestamp().Logger())
	s.Apply(cfg)
	return s, Logger{svc: s}
}

func (s *Service) Logger() Logger { return Logger{svc: s} }

func (s *Service) current() zerolog.Logger {
	zl, ok := s.root.Load().(zerolog.Logger)
	if !ok {
		return zerolog.Nop()
	}
	return zl
}

// Apply swaps levels and sinks. Safe for concurrent use.
func (s *Service) Apply(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file != nil {
		_ = s.file.Close()
		s.file = nil
	}

	writers := make([]io.Writer, 0, 3)
	if cfg.Console {
		writers = append(writers, consoleWriter(Stdout()))
	}
	if cfg.File.Enabled {
		path := strings.TrimSpace(cfg.File.Path)
		if path == "" {
			path = defaultLogPath
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(Stderr(), "logx: open %q: %v\n", path, err)
		} else {
			s.file = f
			writers = append(writers, zerolog.SyncWriter(f))
		}
	}
	if cfg.Forward.Enabled && s.sender != nil {
		rps := cfg.Forward.RatePerSec
		if rps < 1 {
			rps = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), rps)
		s.minLevel = ParseLevel(cfg.Forward.MinLevel, LevelWarn)
		s.once.Do(s.startForwarder)
		writers = append(writers, &forwardWriter{svc: s})
	}
	if len(writers) == 0 {
		writers = append(writers, consoleWriter(Stdout()))
	}

	zl := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(ParseLevel(cfg.Level, LevelInfo)).
		With().Timestamp().Logger()
	s.root.Store(zl)
}

// Close stops the forwarder and closes the log file.
func (s *Service) Close() error {
	s.mu.Lock()
	f, cancel := s.file, s.cancel
	s.file, s.cancel = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		s.wg.Wait()
	}
	if f != nil {
		return f.Close()
	}
	return nil
}

func (s *Service) startForwarder() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-s.queue:
				_ = s.sender.SendText(ctx, msg)
			}
		}
	}()
}

type forwardWriter struct{ svc *Service }

func (w *forwardWriter) Write(p []byte) (int, error) { return w.WriteLevel(zerolog.InfoLevel, p) }

// WriteLevel never blocks the logging call: lines are rate limited and
// dropped when the queue is full.
func (w *forwardWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	s := w.svc
	s.mu.Lock()
	lim, min := s.limiter, s.minLevel
	s.mu.Unlock()

	if level < min || lim == nil || !lim.Allow() {
		return len(p), nil
	}
	if msg := renderLine(p); msg != "" {
		select {
		case s.queue <- msg:
		default:
		}
	}
	return len(p), nil
}

// renderLine turns a zerolog JSON line into "[LEVEL] message" plus one
// "- key=value" line per field, keys sorted.
func renderLine(p []byte) string {
	var m map[string]any
	if err := json.Unmarshal(p, &m); err != nil {
		return truncate(strings.TrimSpace(string(p)), forwardMaxLen)
	}
	var b strings.Builder
	if lvl, _ := m["level"].(string); lvl != "" {
		b.WriteString("[" + strings.ToUpper(lvl) + "] ")
	}
	msg, _ := m[zerolog.MessageFieldName].(string)
	b.WriteString(msg)

	keys := make([]string, 0, len(m))
	for k := range m {
		switch k {
		case "level", "time", zerolog.MessageFieldName:
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString("\n- " + k + "=")
		b.WriteString(truncate(fmt.Sprint(m[k]), 600))
	}
	return truncate(b.String(), forwardMaxLen)
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	cut := n - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

var globalsOnce sync.Once

func setGlobals() {
	globalsOnce.Do(func() {
		zerolog.ErrorFieldName = "err"
		zerolog.TimeFieldFormat = timeFormat
	})
}

func consoleWriter(w io.Writer) io.Writer {
	return zerolog.ConsoleWriter{Out: w, TimeFormat: timeFormat}
}

func Stdout() io.Writer { return os.Stdout }
func Stderr() io.Writer { return os.Stderr }
