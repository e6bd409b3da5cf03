package output_test

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vsocklat/vsocklat/internal/metrics"
	"github.com/vsocklat/vsocklat/internal/output"
)

func sampleReport() output.Report {
	c := metrics.NewCollector()
	c.Record(10 * time.Microsecond)
	c.Record(30 * time.Microsecond)
	return output.Report{
		RunID:        "01JTESTRUNID",
		Transport:    "vsock",
		Peer:         "vsock://16:5001",
		Rounds:       2,
		PayloadBytes: 64,
		Stats:        c.Stats(time.Second),
	}
}

func TestPrintReportContents(t *testing.T) {
	var sb strings.Builder
	output.PrintReport(&sb, sampleReport())
	got := sb.String()

	for _, want := range []string{
		"Round-Trip Latency",
		"01JTESTRUNID",
		"vsock://16:5001",
		"Payload:           64 bytes",
		"Measured Rounds:   2",
		"P99",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("report missing %q:\n%s", want, got)
		}
	}
}

func TestJSONReportSchema(t *testing.T) {
	var sb strings.Builder
	if err := output.PrintJSONReport(&sb, sampleReport()); err != nil {
		t.Fatalf("PrintJSONReport: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(sb.String()), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	for _, key := range []string{"run_id", "transport", "peer", "rounds", "payload_bytes", "samples", "p99_us", "rounds_per_sec"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("JSON report missing key %q", key)
		}
	}
	if decoded["samples"].(float64) != 2 {
		t.Errorf("samples = %v, want 2", decoded["samples"])
	}
}

func TestAppendReportFileAccumulatesLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.jsonl")

	if err := output.AppendReportFile(path, sampleReport()); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := output.AppendReportFile(path, sampleReport()); err != nil {
		t.Fatalf("second append: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open results: %v", err)
	}
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rep output.Report
		if err := json.Unmarshal(scanner.Bytes(), &rep); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", lines+1, err)
		}
		if rep.RunID != "01JTESTRUNID" {
			t.Errorf("line %d run_id = %q", lines+1, rep.RunID)
		}
		lines++
	}
	if lines != 2 {
		t.Errorf("expected 2 result lines, got %d", lines)
	}
}
