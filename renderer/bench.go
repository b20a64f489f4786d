package renderer

import (
	"fmt"
	"log"
	"time"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Hannyel0/shaderbench/bench"
	"github.com/Hannyel0/shaderbench/metrics"
)

// Bench renders a fixed number of frames offscreen and collects rolling
// performance reports. gl.Finish drains the pipeline each frame so the
// measured durations reflect shader cost instead of driver buffering.
func (r *Renderer) Bench(name, source string, opts bench.Options) (*bench.Result, error) {
	if opts.Frames <= 0 {
		return nil, fmt.Errorf("benchmark frame count must be positive, got %d", opts.Frames)
	}
	if err := r.loadValidated(source); err != nil {
		return nil, err
	}

	offscreen, err := NewOffscreen(opts.Width, opts.Height)
	if err != nil {
		return nil, fmt.Errorf("failed to create offscreen target: %w", err)
	}
	defer offscreen.Destroy()
	offscreen.Bind()
	defer offscreen.Unbind()

	log.Printf("Benchmarking %s at %dx%d for %d frames (%d warmup)",
		name, opts.Width, opts.Height, opts.Frames, opts.WarmupFrames)

	startTime := r.context.Time()
	lastTime := startTime
	for i := 0; i < opts.WarmupFrames; i++ {
		now := r.context.Time()
		r.renderFrame(opts.Width, opts.Height, frameState{
			time:      now - startTime,
			timeDelta: now - lastTime,
			frame:     int32(i),
		})
		gl.Finish()
		lastTime = now
	}

	result := &bench.Result{
		Shader:    name,
		Width:     opts.Width,
		Height:    opts.Height,
		Frames:    opts.Frames,
		StartedAt: time.Now(),
	}

	sampler := metrics.NewSampler()
	benchStart := r.context.Time()
	lastTime = benchStart
	for i := 0; i < opts.Frames; i++ {
		now := r.context.Time()
		r.renderFrame(opts.Width, opts.Height, frameState{
			time:      now - startTime,
			timeDelta: now - lastTime,
			frame:     int32(opts.WarmupFrames + i),
		})
		gl.Finish()
		lastTime = now

		sampler.RecordFrame(r.context.Time() * 1000)
		if (i+1)%reportInterval == 0 {
			result.Samples = append(result.Samples, sampler.Snapshot(opts.Width, opts.Height))
		}
	}

	result.ElapsedSec = r.context.Time() - benchStart
	result.Final = sampler.Snapshot(opts.Width, opts.Height)
	return result, nil
}
