package bench

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/vsocklat/vsocklat/internal/transport"
)

// Result captures a completed run.
type Result struct {
	RunID    string
	Rounds   int // measured rounds recorded
	Duration time.Duration
}

// Runner drives the warm-up-then-measure protocol over one connection.
//
// Each round sends the full write buffer and then receives the same
// number of bytes back, timing the pair as one sample. The first half of
// the 2x Rounds iterations primes the transport's ramp-up behavior and
// is discarded; only the second half reaches the Recorder.
type Runner struct {
	opt     Options
	limiter *rate.Limiter
	wbuf    []byte
	rbuf    []byte
}

func New(opt Options) *Runner {
	opt.normalize()
	return &Runner{
		opt:     opt,
		limiter: opt.LimiterFactory(opt.RoundsPerSec),
		wbuf:    make([]byte, opt.PayloadBytes),
		rbuf:    make([]byte, opt.PayloadBytes),
	}
}

// Run connects and measures. Inability to reach the peer is recoverable:
// an exhausted connect cycle is narrated and retried after RetryDelay,
// indefinitely, until the context fires. A transfer failure mid-run is
// fatal; the error names the failing round and carries the cause, and no
// partial result is returned.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	runID := ulid.Make().String()
	log := r.opt.Logger.With().Str("run_id", runID).Logger()

	for {
		conn, err := r.opt.Dialer.Dial(ctx)
		if err != nil {
			var exhausted *transport.ExhaustedError
			if errors.As(err, &exhausted) {
				log.Warn().Err(exhausted.Last).Int("attempts", exhausted.Attempts).
					Msg("could not reach peer, retrying")
				if err := r.opt.sleep(ctx, r.opt.RetryDelay); err != nil {
					return Result{}, err
				}
				continue
			}
			return Result{}, err
		}

		log.Info().Int("rounds", r.opt.Rounds).Int("payload_bytes", r.opt.PayloadBytes).
			Msg("connection established, ready to send")

		res, runErr := r.measure(ctx, conn)
		closeErr := conn.Close()
		if runErr != nil {
			return Result{}, runErr
		}
		if closeErr != nil {
			log.Warn().Err(closeErr).Msg("connection teardown failed")
		}
		res.RunID = runID
		log.Info().Dur("elapsed", res.Duration).Msg("run complete")
		return res, nil
	}
}

func (r *Runner) measure(ctx context.Context, conn Conn) (Result, error) {
	total := 2 * r.opt.Rounds
	// Progress granularity; zero disables reporting rather than dividing
	// by it for tiny round counts.
	progressEvery := total / 100

	start := time.Now()
	for i := 0; i < total; i++ {
		if err := r.limiter.Wait(ctx); err != nil {
			return Result{}, err
		}

		roundStart := time.Now()
		if err := transport.SendFull(conn, r.wbuf); err != nil {
			return Result{}, fmt.Errorf("round %d: %w", i, err)
		}
		if err := transport.RecvFull(conn, r.rbuf); err != nil {
			return Result{}, fmt.Errorf("round %d: %w", i, err)
		}
		elapsed := time.Since(roundStart)

		if i >= r.opt.Rounds {
			r.opt.Recorder.Record(elapsed)
		}
		if progressEvery > 0 && i%progressEvery == 0 {
			fmt.Fprintf(r.opt.Progress, "%d%% completed\n", i/progressEvery)
		}
	}

	return Result{Rounds: r.opt.Rounds, Duration: time.Since(start)}, nil
}
