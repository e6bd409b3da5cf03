package bench

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/vsocklat/vsocklat/internal/transport"
)

// Conn is the established connection a run measures over. The driver is
// its exclusive owner: it lends the buffers to the transfer loops one
// call at a time and closes the connection when the run ends.
type Conn interface {
	transport.Socket
	Close() error
}

// Dialer produces one live connection per connect cycle.
type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
}

// Recorder receives one latency sample per measured round.
type Recorder interface {
	Record(latency time.Duration)
}

// Options configure a benchmark run.
type Options struct {
	Rounds       int // measured rounds; the driver executes 2x this many
	PayloadBytes int // bytes exchanged per direction per round
	Dialer       Dialer
	Recorder     Recorder
	Logger       zerolog.Logger

	// RoundsPerSec caps round pacing (0 means unpaced).
	RoundsPerSec int

	// RetryDelay is the fixed wait between connect cycles.
	RetryDelay time.Duration

	// Progress receives the inline percentage lines.
	Progress io.Writer

	// LimiterFactory is an optional injection for tests.
	LimiterFactory func(rps int) *rate.Limiter

	// test seam
	sleep func(ctx context.Context, d time.Duration) error
}

func (o *Options) normalize() {
	if o.Rounds <= 0 {
		o.Rounds = 1
	}
	if o.PayloadBytes <= 0 {
		o.PayloadBytes = 1
	}
	if o.RoundsPerSec < 0 {
		o.RoundsPerSec = 0
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = time.Second
	}
	if o.Progress == nil {
		o.Progress = io.Discard
	}
	if o.LimiterFactory == nil {
		o.LimiterFactory = func(rps int) *rate.Limiter {
			if rps <= 0 {
				return rate.NewLimiter(rate.Inf, 0)
			}
			// Burst of one keeps rounds evenly spaced.
			return rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
	if o.sleep == nil {
		o.sleep = sleepCtx
	}
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
