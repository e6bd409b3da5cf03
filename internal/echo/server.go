// Package echo implements the peer side of the latency benchmark: it
// accepts one connection at a time and reflects every fixed-size payload
// straight back to the sender.
package echo

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vsocklat/vsocklat/internal/transport"
)

// Conn is the accepted connection the server echoes over.
type Conn interface {
	transport.Socket
	Close() error
}

// Listener yields accepted connections.
type Listener interface {
	Accept() (Conn, error)
}

// Server answers the client's ping-pong protocol. PayloadBytes must match
// the client's payload size, otherwise the two sides desynchronize and
// the client aborts.
type Server struct {
	PayloadBytes int
	Logger       zerolog.Logger
}

// Serve accepts and echoes until the context is cancelled or accepting
// fails. A peer disconnecting is the normal end of a session, not an
// error; the server goes back to accepting.
func (s *Server) Serve(ctx context.Context, l Listener) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, err := l.Accept()
		if err != nil {
			return err
		}
		s.Logger.Info().Msg("peer connected")

		err = s.echoConn(conn)
		if closeErr := conn.Close(); closeErr != nil {
			s.Logger.Warn().Err(closeErr).Msg("connection teardown failed")
		}
		if errors.Is(err, transport.ErrPeerClosed) {
			s.Logger.Info().Msg("peer disconnected")
			continue
		}
		if err != nil {
			s.Logger.Warn().Err(err).Msg("session ended with error")
		}
	}
}

// echoConn runs one session: receive a full payload, send it back, repeat
// until the peer closes the stream or a transfer fails.
func (s *Server) echoConn(conn Conn) error {
	buf := make([]byte, s.PayloadBytes)
	for {
		if err := transport.RecvFull(conn, buf); err != nil {
			return err
		}
		if err := transport.SendFull(conn, buf); err != nil {
			return fmt.Errorf("echo: %w", err)
		}
	}
}
