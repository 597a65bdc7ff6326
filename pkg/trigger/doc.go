// Package trigger converts a cron schedule into a due detector.
//
// A Tracker is polled by its owner at whatever cadence the host loop runs:
//
//	tr, err := trigger.New("every 5 seconds", trigger.WithUTC())
//	...
//	if tr.Poll(time.Now()) {
//		// run the job
//	}
//
// The first poll fires immediately when an occurrence falls at or before
// now. Later polls fire at most once each and coalesce occurrences that
// were missed between polls. An exhausted schedule simply never fires
// again. Poll never fails; all errors surface from New.
//
// A Tracker holds a single mutable field and does no locking. Hosts that
// poll one tracker from several goroutines must serialize the calls.
package trigger
