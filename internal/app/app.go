package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"cronjob/internal/config"
	"cronjob/internal/eventbus"
	"cronjob/internal/notify"
	"cronjob/internal/runloop"
	"cronjob/internal/runtime/supervisor"
	"cronjob/internal/storage"
	"cronjob/internal/timers"
	"cronjob/pkg/logx"
)

const eventBuffer = 256

type App struct {
	cfgm *config.Manager
	sup  *supervisor.Supervisor

	log  logx.Logger
	logs *logx.Service

	bus   *eventbus.Bus
	store storage.Store
	reg   *timers.Registry
	disp  *notify.Dispatcher
	loop  *runloop.Loop
	relay *relay

	mu      sync.Mutex
	applied *config.Config
	unsub   func()
}

// New loads and validates the config file and wires every component.
// Nothing runs until Start.
func New(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	rl := &relay{}
	tg, err := buildTelegram(cfg)
	if err != nil {
		return nil, err
	}
	rl.set(tg)

	logs, log := logx.New(mapLogConfig(cfg), rl)
	cfgm.SetLogger(log.With(logx.String("comp", "config")))

	opts, err := cfg.TriggerOptions()
	if err != nil {
		return nil, err
	}
	specs, jobs, err := mapJobs(cfg)
	if err != nil {
		return nil, err
	}
	interval, err := cfg.LoopInterval()
	if err != nil {
		return nil, err
	}

	bus := eventbus.New()
	reg := timers.New(bus, log.With(logx.String("comp", "timers")), opts...)
	if err := reg.Replace(specs); err != nil {
		return nil, err
	}

	sc, err := mapStorageConfig(cfg)
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(sc, log.With(logx.String("comp", "storage")))
	if err != nil {
		return nil, err
	}

	dopts := []notify.Option{notify.WithLogger(log.With(logx.String("comp", "dispatcher")))}
	if store != nil {
		dopts = append(dopts, notify.WithStore(store))
	}
	if tg != nil {
		dopts = append(dopts, notify.WithMessenger(tg))
	}
	disp := notify.NewDispatcher(dopts...)
	disp.SetJobs(jobs)

	loop := runloop.New(reg,
		runloop.WithInterval(interval),
		runloop.WithLogger(log.With(logx.String("comp", "runloop"))),
	)

	return &App{
		cfgm:    cfgm,
		log:     log,
		logs:    logs,
		bus:     bus,
		store:   store,
		reg:     reg,
		disp:    disp,
		loop:    loop,
		relay:   rl,
		applied: cfg,
	}, nil
}

// Done is closed when the supervisor context is canceled (fatal error or Stop).
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal error observed by the supervisor.
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

func (a *App) Logger() logx.Logger { return a.log }

// Timers reports every registered timer with up to preview upcoming
// occurrences after now.
func (a *App) Timers(now time.Time, preview int) []timers.Status {
	return a.reg.Snapshot(now, preview)
}

// History returns recent firings, newest first. It is empty when storage is
// disabled.
func (a *App) History(ctx context.Context, timer string, n int) ([]storage.Firing, error) {
	if a.store == nil {
		return nil, nil
	}
	return a.store.RecentFirings(ctx, timer, n)
}

func (a *App) Start(ctx context.Context) error {
	if a.sup != nil {
		return errors.New("app already started")
	}
	a.sup = supervisor.New(ctx, supervisor.WithLogger(a.log), supervisor.WithCancelOnError(true))

	// validate reloads before commit/publish
	a.cfgm.SetValidator(validateReload)

	events, unsub := a.bus.Subscribe(eventBuffer)
	a.unsub = unsub
	a.sup.Go("dispatcher", func(c context.Context) error { return a.disp.Run(c, events) })

	a.sup.GoRestart("runloop", a.loop.Run,
		supervisor.WithRestartBackoff(100*time.Millisecond, 5*time.Second),
		supervisor.WithMaxRestarts(10),
	)

	updates := a.cfgm.Subscribe(1)
	a.sup.GoRestart("config.watch", a.cfgm.Watch, supervisor.WithRestartBackoff(time.Second, 30*time.Second))
	a.sup.Go("config.reload", func(c context.Context) error {
		defer a.cfgm.Unsubscribe(updates)
		for {
			select {
			case <-c.Done():
				return nil
			case cfg, ok := <-updates:
				if !ok {
					return nil
				}
				a.apply(cfg)
			}
		}
	})

	cfg := a.config()
	a.log.Info("started",
		logx.Int("jobs", a.reg.Len()),
		logx.Duration("interval", a.loop.Interval()),
		logx.String("storage", cfg.StorageDriver()),
		logx.Bool("telegram", cfg.Telegram != nil),
	)
	return nil
}

func (a *App) config() *config.Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.applied
}

// Stop cancels every goroutine and closes components in order, each step
// bounded so one component cannot stall the whole stop.
func (a *App) Stop(ctx context.Context, reason StopReason) error {
	if a.sup == nil {
		return nil
	}
	a.log.Info("stopping", logx.String("reason", string(reason)))

	step := func(name string, max time.Duration, fn func(context.Context) error) {
		start := time.Now()
		if dl, ok := ctx.Deadline(); ok {
			if rem := time.Until(dl); rem < max {
				max = rem
			}
		}
		if max <= 0 {
			a.log.Warn("stop step skipped", logx.String("name", name))
			return
		}
		stepCtx, cancel := context.WithTimeout(ctx, max)
		defer cancel()

		done := make(chan error, 1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					done <- fmt.Errorf("panic in stop step %s: %v", name, r)
				}
			}()
			done <- fn(stepCtx)
		}()

		select {
		case err := <-done:
			if err != nil {
				a.log.Warn("stop step error", logx.String("name", name), logx.Err(err))
			}
			a.log.Debug("stop step end", logx.String("name", name), logx.Duration("took", time.Since(start)))
		case <-stepCtx.Done():
			a.log.Warn("stop step deadline reached (continuing)",
				logx.String("name", name),
				logx.Duration("elapsed", time.Since(start)),
			)
		}
	}

	// Commands may still be running under their own timeouts; give them a
	// moment before the store goes away.
	step("supervisor", 5*time.Second, a.sup.Stop)
	step("eventbus", time.Second, func(context.Context) error {
		if a.unsub != nil {
			a.unsub()
		}
		return nil
	})
	step("storage", time.Second, func(context.Context) error {
		if a.store != nil {
			return a.store.Close()
		}
		return nil
	})

	ticks, fired := a.loop.Stats()
	a.log.Info("stopped",
		logx.Int64("ticks", int64(ticks)),
		logx.Int64("fired", int64(fired)),
		logx.Int64("dropped", int64(a.bus.Dropped())),
	)
	if a.logs != nil {
		_ = a.logs.Close()
	}
	return nil
}

// relay lets the log forwarder follow telegram config reloads.
type relay struct {
	cur atomic.Pointer[notify.Telegram]
}

func (r *relay) set(tg *notify.Telegram) { r.cur.Store(tg) }

func (r *relay) SendText(ctx context.Context, text string) error {
	tg := r.cur.Load()
	if tg == nil {
		return nil
	}
	return tg.SendText(ctx, text)
}

func buildTelegram(cfg *config.Config) (*notify.Telegram, error) {
	tc, ok, err := mapTelegramConfig(cfg)
	if err != nil || !ok {
		return nil, err
	}
	return notify.NewTelegram(tc)
}
