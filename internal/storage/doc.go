// Package storage keeps the firing history of scheduled jobs, either as a
// JSON Lines file or in SQLite.
package storage
