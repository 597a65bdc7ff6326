package app

import (
	"time"

	"cronjob/internal/config"
	"cronjob/internal/timers"
	"cronjob/pkg/logx"
)

// Preview loads and validates path without starting anything and lists
// every job with its next n occurrences after now.
func Preview(path string, now time.Time, n int) ([]timers.Status, error) {
	cfg, err := config.NewManager(path).Load()
	if err != nil {
		return nil, err
	}
	opts, err := cfg.TriggerOptions()
	if err != nil {
		return nil, err
	}
	specs, _, err := mapJobs(cfg)
	if err != nil {
		return nil, err
	}
	reg := timers.New(nil, logx.Nop(), opts...)
	if err := reg.Replace(specs); err != nil {
		return nil, err
	}
	return reg.Snapshot(now, n), nil
}
