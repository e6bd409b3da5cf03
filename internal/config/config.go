package config

import (
	"fmt"
	"math"
	"strings"
)

// Transport selects the socket family used to reach the peer.
type Transport string

const (
	TransportTCP   Transport = "tcp"
	TransportVSock Transport = "vsock"
)

// MaxPayloadBytes caps the per-round payload so buffers stay well inside
// the platform's native length representation.
const MaxPayloadBytes = 1 << 30

// maxRounds keeps 2x rounds (warm-up plus measured) representable.
const maxRounds = math.MaxInt / 2

// Config holds one invocation's settings. It is immutable once loaded;
// the benchmark core only reads it.
type Config struct {
	Transport       Transport `mapstructure:"transport"`
	Host            string    `mapstructure:"host"`
	CID             uint32    `mapstructure:"cid"`
	Port            uint32    `mapstructure:"port"`
	Rounds          int       `mapstructure:"rounds"`
	PayloadBytes    int       `mapstructure:"payload_bytes"`
	Rate            int       `mapstructure:"rate"`
	ConnectAttempts int       `mapstructure:"connect_attempts"`
	Listen          bool      `mapstructure:"listen"`
	JSONOutput      bool      `mapstructure:"json_output"`
	OutputFile      string    `mapstructure:"output_file"`
	Verbose         bool      `mapstructure:"verbose"`
	ConfigFile      string    `mapstructure:"-"`
}

// ValidationError accumulates every problem found in one pass.
type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (c Config) Validate() error {
	var issues []string

	switch c.Transport {
	case TransportTCP:
		if strings.TrimSpace(c.Host) == "" && !c.Listen {
			issues = append(issues, "host is required for tcp")
		}
		if c.Port == 0 || c.Port > 65535 {
			issues = append(issues, fmt.Sprintf("port %d is outside the tcp range 1-65535", c.Port))
		}
	case TransportVSock:
		if c.Port == 0 {
			issues = append(issues, "port must be >= 1")
		}
	default:
		issues = append(issues, fmt.Sprintf("transport must be 'tcp' or 'vsock', got %q", c.Transport))
	}

	if c.Rounds < 1 {
		issues = append(issues, "rounds must be >= 1")
	} else if c.Rounds > maxRounds {
		issues = append(issues, fmt.Sprintf("rounds must be <= %d", maxRounds))
	}
	if c.PayloadBytes < 1 {
		issues = append(issues, "payload-bytes must be >= 1")
	} else if c.PayloadBytes > MaxPayloadBytes {
		issues = append(issues, fmt.Sprintf("payload-bytes must be <= %d", MaxPayloadBytes))
	}
	if c.Rate < 0 {
		issues = append(issues, "rate must be >= 0")
	}
	if c.ConnectAttempts < 1 {
		issues = append(issues, "connect-attempts must be >= 1")
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}
