// Package bench drives round-trip latency measurement over a single
// stream connection.
//
// A run executes twice the configured number of rounds: the first half
// warms the transport up (congestion ramp-up would otherwise skew early
// samples) and is discarded, the second half is recorded. Connecting is
// retried forever with a fixed delay around the dialer's own bounded
// backoff; a failed transfer mid-run aborts the whole run instead, since
// a desynchronized ping-pong stream cannot be resumed.
package bench
