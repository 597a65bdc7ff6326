package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cronjob/internal/app"
	"cronjob/internal/runtime/sdnotify"
)

func main() {
	var (
		cfgPath string
		check   bool
		preview int
	)
	flag.StringVar(&cfgPath, "config", "./cronjob.yaml", "path to config (json or yaml)")
	flag.BoolVar(&check, "check", false, "validate the config, print upcoming runs and exit")
	flag.IntVar(&preview, "n", 5, "occurrences per job printed by -check")
	flag.Parse()

	if check {
		os.Exit(runCheck(cfgPath, preview))
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
	log := a.Logger()

	if err := a.Start(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "fatal start:", err)
		os.Exit(1)
	}
	sdnotify.Ready(log)
	sdnotify.Status(log, "%d jobs scheduled", len(a.Timers(time.Now(), 0)))

	go func() {
		healthy := func() bool { return a.Err() == nil }
		if err := sdnotify.Watchdog(ctx, log, healthy); err != nil {
			fmt.Fprintln(os.Stderr, "watchdog:", err)
		}
	}()

	reason := app.StopUnknown
	select {
	case s := <-sigs:
		if s == syscall.SIGTERM {
			reason = app.StopSIGTERM
		} else {
			reason = app.StopSIGINT
		}
	case <-a.Done():
		reason = app.StopFatalError
	}

	sdnotify.Stopping(log)
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	_ = a.Stop(stopCtx, reason)
	cancel()

	if err := a.Err(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func runCheck(cfgPath string, n int) int {
	st, err := app.Preview(cfgPath, time.Now(), n)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid config:", err)
		return 1
	}
	for _, s := range st {
		fmt.Printf("%s  %s", s.Name, s.Expression)
		if s.Source != s.Expression {
			fmt.Printf("  (%s)", s.Source)
		}
		fmt.Println()
		if len(s.Next) == 0 {
			fmt.Println("  no upcoming occurrences")
			continue
		}
		next := make([]string, len(s.Next))
		for i, t := range s.Next {
			next[i] = "  " + t.Format(time.RFC3339)
		}
		fmt.Println(strings.Join(next, "\n"))
	}
	fmt.Printf("ok: %d jobs\n", len(st))
	return 0
}
