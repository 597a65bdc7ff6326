// Package notify runs the actions attached to a job when its schedule
// arrives: a log line, a shell command and a Telegram message.
package notify
