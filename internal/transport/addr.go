package transport

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// Kind selects the socket address family.
type Kind string

const (
	KindTCP   Kind = "tcp"
	KindVSock Kind = "vsock"
)

// Addr identifies a peer on one of the supported stream transports.
// Host is used for TCP, CID for VSOCK; Port applies to both.
type Addr struct {
	Kind Kind
	Host string
	CID  uint32
	Port uint32
}

func (a Addr) String() string {
	if a.Kind == KindVSock {
		return fmt.Sprintf("vsock://%d:%d", a.CID, a.Port)
	}
	return fmt.Sprintf("tcp://%s:%d", a.Host, a.Port)
}

func (a Addr) family() (int, error) {
	switch a.Kind {
	case KindTCP:
		return unix.AF_INET, nil
	case KindVSock:
		return unix.AF_VSOCK, nil
	default:
		return 0, fmt.Errorf("unsupported transport kind %q", a.Kind)
	}
}

// sockaddr resolves the address into the form Connect expects.
func (a Addr) sockaddr() (unix.Sockaddr, error) {
	switch a.Kind {
	case KindVSock:
		return &unix.SockaddrVM{CID: a.CID, Port: a.Port}, nil
	case KindTCP:
		ip, err := resolveIPv4(a.Host)
		if err != nil {
			return nil, err
		}
		sa := &unix.SockaddrInet4{Port: int(a.Port)}
		copy(sa.Addr[:], ip)
		return sa, nil
	default:
		return nil, fmt.Errorf("unsupported transport kind %q", a.Kind)
	}
}

// listenSockaddr is the wildcard form used by Listen: any CID for VSOCK,
// INADDR_ANY for TCP unless a host was given.
func (a Addr) listenSockaddr() (unix.Sockaddr, error) {
	switch a.Kind {
	case KindVSock:
		return &unix.SockaddrVM{CID: unix.VMADDR_CID_ANY, Port: a.Port}, nil
	case KindTCP:
		sa := &unix.SockaddrInet4{Port: int(a.Port)}
		if a.Host != "" {
			ip, err := resolveIPv4(a.Host)
			if err != nil {
				return nil, err
			}
			copy(sa.Addr[:], ip)
		}
		return sa, nil
	default:
		return nil, fmt.Errorf("unsupported transport kind %q", a.Kind)
	}
}

func resolveIPv4(host string) (net.IP, error) {
	ips, err := net.LookupIP(host)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", host, err)
	}
	for _, ip := range ips {
		if v4 := ip.To4(); v4 != nil {
			return v4, nil
		}
	}
	return nil, fmt.Errorf("resolve %q: no IPv4 address", host)
}
