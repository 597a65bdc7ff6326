// Package logx is cronjob's structured logging wrapper over zerolog.
//
// Console output is human readable with a short file:line caller, the log
// file is JSON lines, and warnings and errors can optionally be mirrored to
// a chat through a rate-limited TextSender.
package logx
