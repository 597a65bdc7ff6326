package app

import (
	"context"
	"reflect"
	"strings"

	"cronjob/internal/config"
	"cronjob/internal/timers"
	"cronjob/pkg/logx"
)

// validateReload runs the checks config.Validate cannot: everything New
// would build from the file, short of opening storage.
func validateReload(_ context.Context, cfg *config.Config) error {
	if _, err := mapStorageConfig(cfg); err != nil {
		return err
	}
	if _, err := buildTelegram(cfg); err != nil {
		return err
	}
	opts, err := cfg.TriggerOptions()
	if err != nil {
		return err
	}
	specs, _, err := mapJobs(cfg)
	if err != nil {
		return err
	}
	return timers.New(nil, logx.Nop(), opts...).Replace(specs)
}

// apply fans a committed config out to the running components. Timers whose
// expression is unchanged keep their state unless the timezone or engine
// changed, which rebuilds every tracker.
func (a *App) apply(cfg *config.Config) {
	a.mu.Lock()
	old := a.applied
	a.mu.Unlock()

	if a.logs != nil {
		a.logs.Apply(mapLogConfig(cfg))
	}

	specs, jobs, err := mapJobs(cfg)
	if err != nil {
		a.log.Error("reload: jobs", logx.Err(err))
		return
	}
	if sameLoopOptions(old, cfg) {
		err = a.reg.Replace(specs)
	} else {
		opts, oerr := cfg.TriggerOptions()
		if oerr != nil {
			a.log.Error("reload: loop options", logx.Err(oerr))
			return
		}
		err = a.reg.Reconfigure(specs, opts...)
	}
	if err != nil {
		a.log.Error("reload: timers", logx.Err(err))
		return
	}
	a.disp.SetJobs(jobs)

	if !reflect.DeepEqual(old.Telegram, cfg.Telegram) {
		tg, err := buildTelegram(cfg)
		if err != nil {
			a.log.Error("reload: telegram", logx.Err(err))
		} else {
			a.relay.set(tg)
			if tg != nil {
				a.disp.SetMessenger(tg)
			} else {
				a.disp.SetMessenger(nil)
			}
			a.log.Info("telegram updated", logx.Bool("enabled", tg != nil))
		}
	}

	if d, err := cfg.LoopInterval(); err == nil && d != a.loop.Interval() {
		a.loop.SetInterval(d)
		a.log.Info("loop interval updated", logx.Duration("interval", d))
	}

	if !reflect.DeepEqual(old.Storage, cfg.Storage) {
		a.log.Warn("storage change requires restart", logx.String("driver", cfg.StorageDriver()))
	}

	a.mu.Lock()
	a.applied = cfg
	a.mu.Unlock()
}

func sameLoopOptions(a, b *config.Config) bool {
	return strings.EqualFold(strings.TrimSpace(a.Loop.Timezone), strings.TrimSpace(b.Loop.Timezone)) &&
		strings.EqualFold(strings.TrimSpace(a.Loop.Engine), strings.TrimSpace(b.Loop.Engine))
}
