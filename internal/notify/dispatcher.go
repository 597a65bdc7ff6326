package notify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"cronjob/internal/eventbus"
	"cronjob/internal/storage"
	"cronjob/pkg/logx"
)

// Job is what to do when a timer arrives.
type Job struct {
	Name     string
	Log      string
	Command  string
	Timeout  time.Duration
	Telegram string
}

const (
	defaultCommandTimeout = time.Minute
	defaultWorkers        = 4
	maxOutputLog          = 2000
)

// Dispatcher consumes ScheduleArrived events and runs the matching job's
// actions. Each arrival is recorded in the store when one is set.
type Dispatcher struct {
	log     logx.Logger
	store   storage.Store
	msg     Messenger
	workers int

	mu   sync.RWMutex
	jobs map[string]Job
}

type Option func(*Dispatcher)

func WithStore(s storage.Store) Option { return func(d *Dispatcher) { d.store = s } }
func WithMessenger(m Messenger) Option { return func(d *Dispatcher) { d.msg = m } }
func WithWorkers(n int) Option { return func(d *Dispatcher) { d.workers = n } }
func WithLogger(l logx.Logger) Option { return func(d *Dispatcher) { d.log = l } }

func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{jobs: map[string]Job{}, workers: defaultWorkers}
	for _, o := range opts {
		o(d)
	}
	if d.workers < 1 {
		d.workers = 1
	}
	return d
}

// SetJobs replaces the job table. Arrivals already running keep the job
// they started with.
func (d *Dispatcher) SetJobs(jobs []Job) {
	m := make(map[string]Job, len(jobs))
	for _, j := range jobs {
		m[j.Name] = j
	}
	d.mu.Lock()
	d.jobs = m
	d.mu.Unlock()
}

// SetMessenger swaps the telegram messenger; nil disables telegram actions.
func (d *Dispatcher) SetMessenger(m Messenger) {
	d.mu.Lock()
	d.msg = m
	d.mu.Unlock()
}

// Run handles events until ch is closed or ctx is done, with at most
// workers arrivals in flight. It waits for in-flight work before returning.
func (d *Dispatcher) Run(ctx context.Context, ch <-chan eventbus.ScheduleArrived) error {
	sem := make(chan struct{}, d.workers)
	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return ctx.Err()
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer func() { <-sem }()
				d.Handle(ctx, ev)
			}()
		}
	}
}

// Handle runs every action of the event's job and records the result.
func (d *Dispatcher) Handle(ctx context.Context, ev eventbus.ScheduleArrived) storage.Firing {
	d.mu.RLock()
	job, known := d.jobs[ev.Timer]
	msg := d.msg
	d.mu.RUnlock()

	start := time.Now()
	log := d.log.With(logx.String("timer", ev.Timer), logx.Time("occurrence", ev.Occurrence))
	var (
		actions []string
		errs    []error
	)
	if !known {
		log.Warn("arrival for unknown job")
		errs = append(errs, errors.New("unknown job"))
	} else {
		vars := expander(ev)

		actions = append(actions, "log")
		text := job.Log
		if text == "" {
			text = "schedule arrived"
		}
		log.Info(vars.Replace(text), logx.String("expression", ev.Expression), logx.Duration("lag", ev.At.Sub(ev.Occurrence)))

		if job.Command != "" {
			actions = append(actions, "command")
			if err := d.runCommand(ctx, log, job, ev); err != nil {
				errs = append(errs, err)
			}
		}
		if job.Telegram != "" {
			actions = append(actions, "telegram")
			switch {
			case msg == nil:
				errs = append(errs, errors.New("telegram: no messenger configured"))
			default:
				if err := msg.SendText(ctx, vars.Replace(job.Telegram)); err != nil {
					errs = append(errs, fmt.Errorf("telegram: %w", err))
				}
			}
		}
	}

	err := errors.Join(errs...)
	f := storage.Firing{
		Timer:      ev.Timer,
		Expression: ev.Expression,
		Occurrence: ev.Occurrence,
		At:         ev.At,
		Action:     strings.Join(actions, ","),
		OK:         err == nil,
		TookMS:     time.Since(start).Milliseconds(),
	}
	if err != nil {
		f.Error = err.Error()
		log.Error("job failed", logx.Err(err), logx.Int64("took_ms", f.TookMS))
	}
	if d.store != nil {
		if serr := d.store.AppendFiring(context.WithoutCancel(ctx), f); serr != nil {
			log.Warn("history append failed", logx.Err(serr))
		}
	}
	return f
}

func (d *Dispatcher) runCommand(ctx context.Context, log logx.Logger, job Job, ev eventbus.ScheduleArrived) error {
	timeout := job.Timeout
	if timeout <= 0 {
		timeout = defaultCommandTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, "sh", "-c", job.Command)
	// Children of sh may keep the output pipe open after sh is killed.
	cmd.WaitDelay = time.Second
	cmd.Env = append(os.Environ(),
		"CRONJOB_TIMER="+ev.Timer,
		"CRONJOB_EXPRESSION="+ev.Expression,
		"CRONJOB_OCCURRENCE="+ev.Occurrence.Format(time.RFC3339),
	)
	out, err := cmd.CombinedOutput()
	output := strings.TrimSpace(string(out))
	output = clip(output, maxOutputLog)
	if err != nil {
		if errors.Is(cctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s", timeout)
		}
		log.Warn("command failed", logx.String("command", job.Command), logx.String("output", output), logx.Err(err))
		return fmt.Errorf("command: %w", err)
	}
	log.Debug("command done", logx.String("command", job.Command), logx.String("output", output))
	return nil
}

// expander fills {timer}, {expression}, {occurrence} and {at}.
func expander(ev eventbus.ScheduleArrived) *strings.Replacer {
	return strings.NewReplacer(
		"{timer}", ev.Timer,
		"{expression}", ev.Expression,
		"{occurrence}", ev.Occurrence.Format(time.RFC3339),
		"{at}", ev.At.Format(time.RFC3339),
	)
}
