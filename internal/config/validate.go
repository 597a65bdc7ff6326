package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cronjob/pkg/presets"
	"cronjob/pkg/recurrence"
	"cronjob/pkg/trigger"
)

// DefaultInterval is the poll cadence when loop.interval is omitted.
const DefaultInterval = time.Second / 60

var (
	ErrNoJobs            = errors.New("no jobs configured")
	ErrScheduleAndPreset = errors.New("schedule and preset are mutually exclusive")
	ErrNoSchedule        = errors.New("one of schedule or preset is required")
	ErrUnknownPreset     = errors.New("unknown preset")
)

// JobError ties a validation failure to one job.
type JobError struct {
	Index int
	Name  string
	Err   error
}

func (e *JobError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("jobs[%d]: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("jobs[%d] %q: %v", e.Index, e.Name, e.Err)
}

func (e *JobError) Unwrap() error { return e.Err }

// Location resolves loop.timezone.
func (c *Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Loop.Timezone)
	switch strings.ToLower(tz) {
	case "", "local":
		return time.Local, nil
	case "utc":
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("loop.timezone: %w", err)
	}
	return loc, nil
}

func (c *Config) Engine() (recurrence.Engine, error) {
	e, err := recurrence.ParseEngine(c.Loop.Engine)
	if err != nil {
		return "", fmt.Errorf("loop.engine: %w", err)
	}
	return e, nil
}

func (c *Config) LoopInterval() (time.Duration, error) {
	return ParseDurationOrDefault("loop.interval", c.Loop.Interval, DefaultInterval)
}

// TriggerOptions returns the tracker options shared by every job.
func (c *Config) TriggerOptions() ([]trigger.Option, error) {
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}
	eng, err := c.Engine()
	if err != nil {
		return nil, err
	}
	return []trigger.Option{trigger.WithLocation(loc), trigger.WithEngine(eng)}, nil
}

// StorageDriver returns the normalized driver name, "none" when unset.
func (c *Config) StorageDriver() string {
	if c.Storage == nil {
		return "none"
	}
	d := strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	if d == "" {
		return "none"
	}
	return d
}

// Expression returns the job's schedule, resolving a preset name.
func (j JobConfig) Expression() (string, error) {
	sched := strings.TrimSpace(j.Schedule)
	preset := strings.TrimSpace(j.Preset)
	switch {
	case sched != "" && preset != "":
		return "", ErrScheduleAndPreset
	case sched != "":
		return sched, nil
	case preset != "":
		expr, ok := presets.Lookup(preset)
		if !ok {
			return "", fmt.Errorf("%w %q", ErrUnknownPreset, preset)
		}
		return expr, nil
	}
	return "", ErrNoSchedule
}

// Validate checks everything that can fail at startup, compiling every job
// schedule. All problems are reported together.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	var errs []error

	if _, err := cfg.LoopInterval(); err != nil {
		errs = append(errs, err)
	}
	opts, err := cfg.TriggerOptions()
	if err != nil {
		errs = append(errs, err)
	}

	switch cfg.StorageDriver() {
	case "none":
	case "file", "sqlite":
		if _, err := ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout); err != nil {
			errs = append(errs, err)
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver: unknown driver %q (use none, file or sqlite)", cfg.Storage.Driver))
	}

	if tg := cfg.Telegram; tg != nil {
		if strings.TrimSpace(tg.Token) == "" {
			errs = append(errs, errors.New("telegram.token is required"))
		}
		if tg.ChatID == 0 {
			errs = append(errs, errors.New("telegram.chat_id is required"))
		}
		if _, err := ParseDurationField("telegram.timeout", tg.Timeout); err != nil {
			errs = append(errs, err)
		}
	}
	if cfg.Logging.Forward.Enabled && cfg.Telegram == nil {
		errs = append(errs, errors.New("logging.forward requires a telegram section"))
	}

	if len(cfg.Jobs) == 0 {
		errs = append(errs, ErrNoJobs)
	}
	seen := make(map[string]int, len(cfg.Jobs))
	for i, j := range cfg.Jobs {
		name := strings.TrimSpace(j.Name)
		fail := func(err error) { errs = append(errs, &JobError{Index: i, Name: name, Err: err}) }

		if name == "" {
			fail(errors.New("name is required"))
		} else if prev, dup := seen[name]; dup {
			fail(fmt.Errorf("duplicate name (also jobs[%d])", prev))
		} else {
			seen[name] = i
		}

		if _, err := ParseDurationField("action.timeout", j.Action.Timeout); err != nil {
			fail(err)
		}
		if j.Action.Telegram != "" && cfg.Telegram == nil {
			fail(errors.New("action.telegram requires a telegram section"))
		}

		expr, err := j.Expression()
		if err != nil {
			fail(err)
			continue
		}
		if opts == nil {
			continue
		}
		if _, err := trigger.New(expr, opts...); err != nil {
			fail(err)
		}
	}
	return errors.Join(errs...)
}
