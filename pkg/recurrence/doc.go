// Package recurrence parses canonical cron expressions into rules that can
// answer next-occurrence queries.
//
// The time fields are evaluated by a pluggable cron library (robfig/cron by
// default, adhocore/gronx as an alternative). This package owns the parts
// both libraries disagree on: day-of-week numbering (1 = Sunday), the "?"
// placeholder, "a/n" steps and the optional 1970-2100 year field.
package recurrence
