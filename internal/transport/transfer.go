package transport

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// ErrPeerClosed reports that the remote side closed the stream before the
// requested number of bytes arrived. On a connection-oriented socket a
// zero-byte read is end-of-stream, so the loop fails immediately instead
// of retrying.
var ErrPeerClosed = errors.New("peer closed connection mid-transfer")

// SendFull writes all of buf to s, resuming after partial writes until the
// cumulative count reaches len(buf). A call interrupted by a signal moved
// no bytes and is retried at the same offset. Any other error aborts the
// transfer with the cause wrapped.
func SendFull(s Socket, buf []byte) error {
	sent := 0
	for sent < len(buf) {
		n, err := s.Send(buf[sent:])
		switch {
		case err == nil && n == 0:
			// sendmsg never reports zero for a nonzero buffer; fail
			// rather than spin if an implementation does.
			return fmt.Errorf("send after %d/%d bytes: socket made no progress", sent, len(buf))
		case err == nil:
			sent += n
		case errors.Is(err, unix.EINTR):
			// no progress, same offset
		default:
			return fmt.Errorf("send after %d/%d bytes: %w", sent, len(buf), err)
		}
	}
	return nil
}

// RecvFull reads from s into buf until the buffer is full, with the same
// partial-transfer and interruption handling as SendFull. A zero-byte read
// with no error fails with ErrPeerClosed.
func RecvFull(s Socket, buf []byte) error {
	recvd := 0
	for recvd < len(buf) {
		n, err := s.Recv(buf[recvd:])
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case err != nil:
			return fmt.Errorf("recv after %d/%d bytes: %w", recvd, len(buf), err)
		case n == 0:
			return fmt.Errorf("recv after %d/%d bytes: %w", recvd, len(buf), ErrPeerClosed)
		}
		recvd += n
	}
	return nil
}
