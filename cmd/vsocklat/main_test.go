package main

import (
	"strings"
	"testing"

	"github.com/vsocklat/vsocklat/internal/config"
	"github.com/vsocklat/vsocklat/internal/transport"
)

func TestRunHelpIsNotAnError(t *testing.T) {
	if err := run([]string{"--help"}); err != nil {
		t.Fatalf("run --help: %v", err)
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	err := run([]string{"--rounds", "0"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "rounds must be >= 1") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRunRejectsUnknownFlag(t *testing.T) {
	if err := run([]string{"--no-such-flag"}); err == nil {
		t.Fatal("expected flag parse error")
	}
}

func TestToTransportAddr(t *testing.T) {
	vsock := toTransportAddr(&config.Config{Transport: config.TransportVSock, CID: 3, Port: 5001})
	if vsock.Kind != transport.KindVSock || vsock.CID != 3 || vsock.Port != 5001 {
		t.Errorf("vsock addr = %+v", vsock)
	}

	tcp := toTransportAddr(&config.Config{Transport: config.TransportTCP, Host: "peer", Port: 9000})
	if tcp.Kind != transport.KindTCP || tcp.Host != "peer" || tcp.Port != 9000 {
		t.Errorf("tcp addr = %+v", tcp)
	}
}
