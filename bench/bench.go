// Package bench holds benchmark result aggregation and export. It is GL-free
// so results can be built, inspected, and serialized without a context.
package bench

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Hannyel0/shaderbench/metrics"
)

// Options configures a benchmark run.
type Options struct {
	Width        int
	Height       int
	Frames       int
	WarmupFrames int
}

// Result is the outcome of one benchmark run: the decimated series of reports
// collected during the run plus the final whole-window report.
type Result struct {
	Shader     string           `json:"shader"`
	Width      int              `json:"width"`
	Height     int              `json:"height"`
	Frames     int              `json:"frames"`
	StartedAt  time.Time        `json:"startedAt"`
	ElapsedSec float64          `json:"elapsedSec"`
	Samples    []metrics.Report `json:"samples"`
	Final      metrics.Report   `json:"final"`
}

// Summary renders a short human-readable digest for terminal output.
func (r *Result) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "shader:       %s\n", r.Shader)
	fmt.Fprintf(&b, "resolution:   %dx%d (%d pixels)\n", r.Width, r.Height, r.Final.PixelCount)
	fmt.Fprintf(&b, "frames:       %d in %.2fs\n", r.Frames, r.ElapsedSec)
	fmt.Fprintf(&b, "fps:          %.2f\n", r.Final.FPS)
	fmt.Fprintf(&b, "frame time:   %.2fms avg, %.2fms min, %.2fms max\n",
		r.Final.AvgFrameTime, r.Final.MinFrameTime, r.Final.MaxFrameTime)
	fmt.Fprintf(&b, "dropped:      %d (window of %d)\n", r.Final.DroppedFrames, metrics.WindowCapacity)
	return b.String()
}

// WriteJSON exports the result for offline comparison.
func (r *Result) WriteJSON(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal benchmark result: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write benchmark result to %s: %w", path, err)
	}
	return nil
}

// ReadJSON loads a previously exported result.
func ReadJSON(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read benchmark result %s: %w", path, err)
	}
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode benchmark result %s: %w", path, err)
	}
	return &r, nil
}
