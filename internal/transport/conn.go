package transport

import (
	"errors"
	"sync"

	"golang.org/x/sys/unix"
)

// Conn owns exactly one established descriptor. No other component closes
// the descriptor; Close shuts the stream down in both directions and then
// releases it, exactly once, no matter how many exit paths call it.
type Conn struct {
	fdSocket

	once     sync.Once
	closeErr error
}

func newConn(fd int) *Conn {
	return &Conn{fdSocket: fdSocket{fd: fd}}
}

// Close performs shutdown-both then close. Safe to call repeatedly;
// subsequent calls return the first result.
func (c *Conn) Close() error {
	c.once.Do(func() {
		// ENOTCONN just means the peer tore the stream down first.
		if err := unix.Shutdown(c.fd, unix.SHUT_RDWR); err != nil && !errors.Is(err, unix.ENOTCONN) {
			c.closeErr = err
		}
		if err := unix.Close(c.fd); err != nil && c.closeErr == nil {
			c.closeErr = err
		}
	})
	return c.closeErr
}
