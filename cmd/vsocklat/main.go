package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/vsocklat/vsocklat/internal/bench"
	"github.com/vsocklat/vsocklat/internal/config"
	"github.com/vsocklat/vsocklat/internal/echo"
	"github.com/vsocklat/vsocklat/internal/metrics"
	"github.com/vsocklat/vsocklat/internal/output"
	"github.com/vsocklat/vsocklat/internal/transport"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg.Verbose)
	addr := toTransportAddr(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.Listen {
		return runServer(ctx, cfg, addr, logger)
	}
	return runClient(ctx, cfg, addr, logger)
}

func runClient(ctx context.Context, cfg *config.Config, addr transport.Addr, logger zerolog.Logger) error {
	collector := metrics.NewCollector()
	dialer := &transport.Dialer{
		Addr:        addr,
		MaxAttempts: cfg.ConnectAttempts,
		Logger:      logger,
	}

	runner := bench.New(bench.Options{
		Rounds:       cfg.Rounds,
		PayloadBytes: cfg.PayloadBytes,
		Dialer:       dialerAdapter{dialer},
		Recorder:     collector,
		Logger:       logger,
		RoundsPerSec: cfg.Rate,
		Progress:     os.Stdout,
	})

	logger.Info().Stringer("peer", addr).Msg("connecting to the server")
	result, err := runner.Run(ctx)
	if err != nil {
		// Fatal mid-run failure: no summary is emitted.
		return err
	}

	rep := output.Report{
		RunID:        result.RunID,
		Transport:    string(cfg.Transport),
		Peer:         addr.String(),
		Rounds:       result.Rounds,
		PayloadBytes: cfg.PayloadBytes,
		Stats:        collector.Stats(result.Duration),
	}

	if cfg.JSONOutput {
		if err := output.PrintJSONReport(os.Stdout, rep); err != nil {
			return err
		}
	} else {
		output.PrintReport(os.Stdout, rep)
	}
	if cfg.OutputFile != "" {
		if err := output.AppendReportFile(cfg.OutputFile, rep); err != nil {
			return err
		}
	}
	return nil
}

func runServer(ctx context.Context, cfg *config.Config, addr transport.Addr, logger zerolog.Logger) error {
	listener, err := transport.Listen(addr)
	if err != nil {
		return err
	}
	defer listener.Close()

	// Unblock the accept loop on shutdown by closing the listener.
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	logger.Info().Stringer("addr", addr).Int("payload_bytes", cfg.PayloadBytes).
		Msg("echo server listening")

	server := &echo.Server{PayloadBytes: cfg.PayloadBytes, Logger: logger}
	err = server.Serve(ctx, listenerAdapter{listener})
	if ctx.Err() != nil {
		logger.Info().Msg("echo server stopped")
		return nil
	}
	return err
}

// dialerAdapter narrows *transport.Conn to the driver's interface.
type dialerAdapter struct {
	d *transport.Dialer
}

func (a dialerAdapter) Dial(ctx context.Context) (bench.Conn, error) {
	return a.d.Dial(ctx)
}

type listenerAdapter struct {
	l *transport.Listener
}

func (a listenerAdapter) Accept() (echo.Conn, error) {
	return a.l.Accept()
}

func toTransportAddr(cfg *config.Config) transport.Addr {
	if cfg.Transport == config.TransportTCP {
		return transport.Addr{Kind: transport.KindTCP, Host: cfg.Host, Port: cfg.Port}
	}
	return transport.Addr{Kind: transport.KindVSock, CID: cfg.CID, Port: cfg.Port}
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}
