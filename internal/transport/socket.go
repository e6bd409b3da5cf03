package transport

import (
	"golang.org/x/sys/unix"
)

// Socket is the byte-stream primitive the transfer loops run on. Send and
// Recv map to single kernel calls: either may move fewer bytes than asked,
// and either may fail with unix.EINTR, which means nothing was transferred.
type Socket interface {
	Send(p []byte) (int, error)
	Recv(p []byte) (int, error)
}

// fdSocket adapts a raw descriptor to the Socket interface.
type fdSocket struct {
	fd int
}

func (s fdSocket) Send(p []byte) (int, error) {
	n, err := unix.SendmsgN(s.fd, p, nil, nil, 0)
	if n < 0 {
		n = 0
	}
	return n, err
}

func (s fdSocket) Recv(p []byte) (int, error) {
	n, _, err := unix.Recvfrom(s.fd, p, 0)
	if n < 0 {
		n = 0
	}
	return n, err
}
