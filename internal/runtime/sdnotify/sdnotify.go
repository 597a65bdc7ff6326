// Package sdnotify reports daemon state to systemd when running as a
// Type=notify unit. Every call is a no-op outside systemd.
package sdnotify

import (
	"context"
	"fmt"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"cronjob/pkg/logx"
)

func Ready(log logx.Logger) { send(log, daemon.SdNotifyReady) }

func Stopping(log logx.Logger) { send(log, daemon.SdNotifyStopping) }

// Status sets the free-form status line shown by systemctl status.
func Status(log logx.Logger, format string, args ...any) {
	send(log, "STATUS="+fmt.Sprintf(format, args...))
}

func send(log logx.Logger, state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		log.Warn("sd_notify failed", logx.String("state", state), logx.Err(err))
		return
	}
	if sent {
		log.Debug("sd_notify", logx.String("state", state))
	}
}

// Watchdog pings systemd at half the configured WatchdogSec until ctx is
// done. healthy is consulted before each ping; a false result skips it so
// systemd can restart a wedged daemon. It returns immediately when the
// watchdog is not enabled.
func Watchdog(ctx context.Context, log logx.Logger, healthy func() bool) error {
	every, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		return err
	}
	if every <= 0 {
		return nil
	}
	every /= 2
	log.Info("systemd watchdog enabled", logx.Duration("every", every))

	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if healthy != nil && !healthy() {
				log.Warn("watchdog ping skipped: unhealthy")
				continue
			}
			send(log, daemon.SdNotifyWatchdog)
		}
	}
}
