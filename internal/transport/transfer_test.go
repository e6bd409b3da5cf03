package transport

import (
	"bytes"
	"errors"
	"testing"

	"golang.org/x/sys/unix"
)

// scriptedSocket replays a fixed sequence of per-call outcomes. A step
// with n > 0 transfers that many bytes; err short-circuits the transfer
// count like the kernel call would.
type step struct {
	n   int
	err error
}

type scriptedSocket struct {
	steps []step
	calls int
	sent  []byte
	fill  byte
}

func (s *scriptedSocket) next(p []byte) (int, error) {
	if s.calls >= len(s.steps) {
		return 0, errors.New("script exhausted")
	}
	st := s.steps[s.calls]
	s.calls++
	if st.err != nil {
		return 0, st.err
	}
	n := st.n
	if n > len(p) {
		n = len(p)
	}
	return n, nil
}

func (s *scriptedSocket) Send(p []byte) (int, error) {
	n, err := s.next(p)
	if err == nil {
		s.sent = append(s.sent, p[:n]...)
	}
	return n, err
}

func (s *scriptedSocket) Recv(p []byte) (int, error) {
	n, err := s.next(p)
	for i := 0; i < n; i++ {
		p[i] = s.fill
	}
	return n, err
}

func TestSendFullResumesPartialWrites(t *testing.T) {
	buf := []byte("exact-length-transfer")
	sock := &scriptedSocket{steps: []step{{n: 5}, {n: 1}, {n: 10}, {n: 5}}}

	if err := SendFull(sock, buf); err != nil {
		t.Fatalf("SendFull: %v", err)
	}
	if !bytes.Equal(sock.sent, buf) {
		t.Errorf("sent %q, want %q", sock.sent, buf)
	}
	if sock.calls != 4 {
		t.Errorf("expected 4 calls, got %d", sock.calls)
	}
}

func TestSendFullRetriesInterruptedCalls(t *testing.T) {
	buf := make([]byte, 8)
	// Interrupted on every other call: same byte count, at most 2x calls.
	sock := &scriptedSocket{steps: []step{
		{err: unix.EINTR}, {n: 3}, {err: unix.EINTR}, {n: 3}, {err: unix.EINTR}, {n: 2},
	}}

	if err := SendFull(sock, buf); err != nil {
		t.Fatalf("SendFull: %v", err)
	}
	if len(sock.sent) != len(buf) {
		t.Errorf("sent %d bytes, want %d", len(sock.sent), len(buf))
	}
	if sock.calls != 6 {
		t.Errorf("expected 6 calls, got %d", sock.calls)
	}
}

func TestSendFullFailsOnStalledSocket(t *testing.T) {
	// Zero bytes with no error must abort the loop, never spin.
	sock := &scriptedSocket{steps: []step{{n: 3}, {n: 0}}}

	err := SendFull(sock, make([]byte, 8))
	if err == nil {
		t.Fatal("expected error for a zero-progress send")
	}
	if sock.calls != 2 {
		t.Errorf("expected 2 calls, got %d", sock.calls)
	}
}

func TestSendFullSurfacesTransportError(t *testing.T) {
	sock := &scriptedSocket{steps: []step{{n: 2}, {err: unix.EPIPE}}}

	err := SendFull(sock, make([]byte, 8))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, unix.EPIPE) {
		t.Errorf("expected EPIPE cause, got %v", err)
	}
}

func TestRecvFullReachesExactLength(t *testing.T) {
	buf := make([]byte, 16)
	sock := &scriptedSocket{fill: 0xab, steps: []step{{n: 7}, {err: unix.EINTR}, {n: 7}, {n: 2}}}

	if err := RecvFull(sock, buf); err != nil {
		t.Fatalf("RecvFull: %v", err)
	}
	for i, b := range buf {
		if b != 0xab {
			t.Fatalf("buf[%d] = %#x, want 0xab", i, b)
		}
	}
}

func TestRecvFullDetectsPeerClose(t *testing.T) {
	// Zero bytes with no error before the target length must fail, not spin.
	sock := &scriptedSocket{fill: 1, steps: []step{{n: 4}, {n: 0}}}

	err := RecvFull(sock, make([]byte, 16))
	if !errors.Is(err, ErrPeerClosed) {
		t.Fatalf("expected ErrPeerClosed, got %v", err)
	}
	if sock.calls != 2 {
		t.Errorf("expected 2 calls, got %d", sock.calls)
	}
}

func TestRecvFullSurfacesTransportError(t *testing.T) {
	sock := &scriptedSocket{steps: []step{{err: unix.ECONNRESET}}}

	err := RecvFull(sock, make([]byte, 4))
	if !errors.Is(err, unix.ECONNRESET) {
		t.Fatalf("expected ECONNRESET cause, got %v", err)
	}
}

func TestTransferNoopOnEmptyBuffer(t *testing.T) {
	sock := &scriptedSocket{}
	if err := SendFull(sock, nil); err != nil {
		t.Errorf("SendFull(nil): %v", err)
	}
	if err := RecvFull(sock, nil); err != nil {
		t.Errorf("RecvFull(nil): %v", err)
	}
	if sock.calls != 0 {
		t.Errorf("expected no calls, got %d", sock.calls)
	}
}
