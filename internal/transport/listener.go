package transport

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

const listenBacklog = 16

// Listener accepts stream connections for serve mode.
type Listener struct {
	fd   int
	addr Addr

	once     sync.Once
	closeErr error
}

// Listen binds a wildcard socket for the address and starts listening.
func Listen(addr Addr) (*Listener, error) {
	family, err := addr.family()
	if err != nil {
		return nil, err
	}
	sa, err := addr.listenSockaddr()
	if err != nil {
		return nil, err
	}
	fd, err := unix.Socket(family, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, fmt.Errorf("create socket: %w", err)
	}
	if addr.Kind == KindTCP {
		if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
			_ = unix.Close(fd)
			return nil, fmt.Errorf("set SO_REUSEADDR: %w", err)
		}
	}
	if err := unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("bind %s: %w", addr, err)
	}
	if err := unix.Listen(fd, listenBacklog); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return &Listener{fd: fd, addr: addr}, nil
}

// Accept blocks until a peer connects and hands ownership of the accepted
// descriptor to the returned Conn.
func (l *Listener) Accept() (*Conn, error) {
	for {
		fd, _, err := unix.Accept(l.fd)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("accept %s: %w", l.addr, err)
		}
		return newConn(fd), nil
	}
}

// Addr returns the address the listener was bound with.
func (l *Listener) Addr() Addr { return l.addr }

// Close releases the listening descriptor. Safe to call repeatedly.
// Shutdown comes first because closing the fd alone does not wake a
// thread blocked in accept(2); shutdown makes it return EINVAL.
func (l *Listener) Close() error {
	l.once.Do(func() {
		_ = unix.Shutdown(l.fd, unix.SHUT_RDWR)
		l.closeErr = unix.Close(l.fd)
	})
	return l.closeErr
}
