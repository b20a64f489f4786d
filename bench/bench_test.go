package bench

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Hannyel0/shaderbench/metrics"
)

func sampleResult() *Result {
	s := metrics.NewSampler()
	for i := 0; i < 40; i++ {
		s.RecordFrame(float64(i) * 16.67)
	}
	final := s.Snapshot(640, 360)
	return &Result{
		Shader:     "plasma",
		Width:      640,
		Height:     360,
		Frames:     40,
		StartedAt:  time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		ElapsedSec: 0.67,
		Samples:    []metrics.Report{final},
		Final:      final,
	}
}

func TestSummaryContents(t *testing.T) {
	sum := sampleResult().Summary()
	for _, want := range []string{"plasma", "640x360", "fps:", "dropped:"} {
		if !strings.Contains(sum, want) {
			t.Errorf("summary missing %q:\n%s", want, sum)
		}
	}
}

func TestJSONRoundTrip(t *testing.T) {
	res := sampleResult()
	path := filepath.Join(t.TempDir(), "bench.json")
	if err := res.WriteJSON(path); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	got, err := ReadJSON(path)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if got.Shader != res.Shader || got.Frames != res.Frames || got.Final != res.Final {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, res)
	}
	if len(got.Samples) != len(res.Samples) {
		t.Errorf("samples length %d, want %d", len(got.Samples), len(res.Samples))
	}
}

func TestReadJSONMissingFile(t *testing.T) {
	if _, err := ReadJSON(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
