// Package cronexpr normalizes schedule expressions into canonical cron syntax.
//
// Two input forms are accepted:
//   - canonical cron: "sec min hour dom month dow [year]", passed through as-is
//   - a restricted English phrase ("every 5 seconds", "every day at 9 am"),
//     translated by a fixed rule table
//
// Classification is lexical: any ASCII letter makes the input English. A cron
// string with month or weekday names (or a stray comment) is therefore handed
// to the translator and usually rejected; feed such strings to the recurrence
// parser directly instead.
package cronexpr
