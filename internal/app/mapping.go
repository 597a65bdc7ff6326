package app

import (
	"strings"
	"time"

	"cronjob/internal/config"
	"cronjob/internal/notify"
	"cronjob/internal/storage"
	"cronjob/internal/timers"
	"cronjob/pkg/logx"
)

func mapLogConfig(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
		Forward: logx.ForwardConfig{
			Enabled:    cfg.Logging.Forward.Enabled,
			MinLevel:   cfg.Logging.Forward.MinLevel,
			RatePerSec: cfg.Logging.Forward.RatePerSec,
		},
	}
}

func mapStorageConfig(cfg *config.Config) (storage.Config, error) {
	driver := cfg.StorageDriver()
	if driver == "none" {
		return storage.Config{}, nil
	}
	busy, err := config.ParseDurationOrDefault("storage.busy_timeout", cfg.Storage.BusyTimeout, time.Second)
	if err != nil {
		return storage.Config{}, err
	}
	path := strings.TrimSpace(cfg.Storage.Path)
	if path == "" {
		path = "./cronjob_store"
	}
	return storage.Config{Driver: driver, Path: path, BusyTimeout: busy}, nil
}

func mapTelegramConfig(cfg *config.Config) (notify.TelegramConfig, bool, error) {
	tg := cfg.Telegram
	if tg == nil {
		return notify.TelegramConfig{}, false, nil
	}
	timeout, err := config.ParseDurationOrDefault("telegram.timeout", tg.Timeout, 10*time.Second)
	if err != nil {
		return notify.TelegramConfig{}, false, err
	}
	return notify.TelegramConfig{
		Token:      tg.Token,
		ChatID:     tg.ChatID,
		ThreadID:   tg.ThreadID,
		RatePerSec: tg.RatePerSec,
		Timeout:    timeout,
	}, true, nil
}

// mapJobs splits validated job configs into timer specs and dispatcher jobs.
func mapJobs(cfg *config.Config) ([]timers.Spec, []notify.Job, error) {
	specs := make([]timers.Spec, 0, len(cfg.Jobs))
	jobs := make([]notify.Job, 0, len(cfg.Jobs))
	for _, j := range cfg.Jobs {
		name := strings.TrimSpace(j.Name)
		expr, err := j.Expression()
		if err != nil {
			return nil, nil, err
		}
		timeout, err := config.ParseDurationField("action.timeout", j.Action.Timeout)
		if err != nil {
			return nil, nil, err
		}
		specs = append(specs, timers.Spec{Name: name, Expression: expr})
		jobs = append(jobs, notify.Job{
			Name:     name,
			Log:      j.Action.Log,
			Command:  j.Action.Command,
			Timeout:  timeout,
			Telegram: j.Action.Telegram,
		})
	}
	return specs, jobs, nil
}
