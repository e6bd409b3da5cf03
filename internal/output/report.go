package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/gofrs/flock"

	"github.com/vsocklat/vsocklat/internal/metrics"
)

// Report wraps a run's statistics with its identity.
type Report struct {
	RunID        string `json:"run_id"`
	Transport    string `json:"transport"`
	Peer         string `json:"peer"`
	Rounds       int    `json:"rounds"`
	PayloadBytes int    `json:"payload_bytes"`

	metrics.Stats
}

// PrintReport outputs a human-readable summary report.
func PrintReport(w io.Writer, rep Report) {
	fmt.Fprintln(w, "\n--- Round-Trip Latency ---")
	fmt.Fprintf(w, "Run ID:            %s\n", rep.RunID)
	fmt.Fprintf(w, "Peer:              %s\n", rep.Peer)
	fmt.Fprintf(w, "Payload:           %d bytes\n", rep.PayloadBytes)
	fmt.Fprintf(w, "Measured Rounds:   %d\n", rep.Rounds)
	fmt.Fprintf(w, "Duration:          %s\n", rep.Duration)
	fmt.Fprintf(w, "Rounds/sec:        %.2f\n", rep.RoundsPerSec)
	fmt.Fprintln(w, "\nLatency:")
	fmt.Fprintf(w, "  Min:             %s\n", rep.Min)
	fmt.Fprintf(w, "  Max:             %s\n", rep.Max)
	fmt.Fprintf(w, "  Mean:            %s\n", rep.Mean)
	fmt.Fprintf(w, "  P50:             %s\n", rep.P50)
	fmt.Fprintf(w, "  P90:             %s\n", rep.P90)
	fmt.Fprintf(w, "  P99:             %s\n", rep.P99)
	fmt.Fprintf(w, "  P99.9:           %s\n", rep.P999)
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, rep Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// AppendReportFile appends the report as a single JSON line to path,
// holding an advisory lock so runs writing to a shared results file
// don't interleave.
func AppendReportFile(path string, rep Report) error {
	line, err := json.Marshal(rep)
	if err != nil {
		return err
	}

	lock := flock.New(path)
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", path, err)
	}
	defer func() { _ = lock.Unlock() }()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
