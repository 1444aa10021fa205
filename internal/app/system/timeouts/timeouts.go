// Package timeouts provides centralized timeout values for handler
// operations. They are used with context.WithTimeout around database work
// so a slow Mongo never pins an HTTP worker.
//
// Guidelines:
//   - Ping: health checks and connectivity verification
//   - Short: single-document reads or lookups
//   - Medium: list queries, single writes
//   - Long: lending workflow steps that touch books, users, and
//     transactions in one sequence
package timeouts

import "time"

const (
	ping   = 2 * time.Second
	short  = 5 * time.Second
	medium = 10 * time.Second
	long   = 30 * time.Second
)

// Ping returns the timeout for health checks.
func Ping() time.Duration { return ping }

// Short returns the timeout for simple single-document operations.
func Short() time.Duration { return short }

// Medium returns the timeout for list queries and moderate writes.
func Medium() time.Duration { return medium }

// Long returns the timeout for multi-collection workflow sequences.
func Long() time.Duration { return long }
