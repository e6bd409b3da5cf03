package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

const (
	// DefaultMaxAttempts bounds a single connect cycle.
	DefaultMaxAttempts = 5
	// DefaultBackoffBase is the delay after the first failed attempt;
	// it doubles after each subsequent failure.
	DefaultBackoffBase = time.Second
)

// ExhaustedError reports that every connect attempt of one cycle failed.
// Callers that want to keep trying (the driver's outer loop does) detect
// it with errors.As and restart the whole cycle.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("no connection after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// Dialer produces a live Conn to a fixed peer, retrying transient connect
// failures with exponential backoff. Each attempt uses a fresh socket; a
// descriptor from a failed attempt is closed before the next one.
type Dialer struct {
	Addr        Addr
	MaxAttempts int           // 0 means DefaultMaxAttempts
	BackoffBase time.Duration // 0 means DefaultBackoffBase
	Logger      zerolog.Logger

	// test seams
	connect func() (*Conn, error)
	sleep   func(ctx context.Context, d time.Duration) error
}

// Dial runs one bounded connect cycle. It returns the established Conn,
// ctx.Err if the context fired during a backoff wait, or an
// *ExhaustedError carrying the last failure.
func (d *Dialer) Dial(ctx context.Context) (*Conn, error) {
	attempts := d.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	base := d.BackoffBase
	if base <= 0 {
		base = DefaultBackoffBase
	}
	connect := d.connect
	if connect == nil {
		connect = d.dialOnce
	}
	sleep := d.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var last error
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		conn, err := connect()
		if err == nil {
			return conn, nil
		}
		last = err
		d.Logger.Warn().Err(err).Int("attempt", i+1).Int("max_attempts", attempts).
			Stringer("peer", d.Addr).Msg("connect failed")

		// Don't wait after the last attempt.
		if i < attempts-1 {
			if err := sleep(ctx, base<<uint(i)); err != nil {
				return nil, err
			}
		}
	}
	return nil, &ExhaustedError{Attempts: attempts, Last: last}
}

// dialOnce allocates a fresh socket and connects it. Socket-creation
// failure is an ordinary failed attempt, it consumes retry budget like
// a refused connect.
func (d *Dialer) dialOnce() (*Conn, error) {
	family, err := d.Addr.family()
	if err != nil {
		return nil, err
	}
	sa, err := d.Addr.sockaddr()
	if err != nil {
		return nil, err
	}
	fd, err := unix.Socket(family, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, fmt.Errorf("create socket: %w", err)
	}
	if err := unix.Connect(fd, sa); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("connect %s: %w", d.Addr, err)
	}
	return newConn(fd), nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
