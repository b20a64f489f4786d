// Package metrics converts a stream of per-frame timestamps into rolling
// performance statistics for HUD display and benchmarking.
package metrics

import "math"

// WindowCapacity is the number of frame samples kept for rolling statistics.
const WindowCapacity = 120

// Frames slower than 1.5x the 60fps budget count as dropped.
const droppedFrameThresholdMS = 16.67 * 1.5

// Report is a point-in-time snapshot of the rolling window. All durations are
// in milliseconds, rounded to two decimals for display stability.
type Report struct {
	FPS           float64 `json:"fps"`
	FrameTime     float64 `json:"frameTime"`
	AvgFrameTime  float64 `json:"avgFrameTime"`
	MinFrameTime  float64 `json:"minFrameTime"`
	MaxFrameTime  float64 `json:"maxFrameTime"`
	DroppedFrames int     `json:"droppedFrames"`
	TotalFrames   int64   `json:"totalFrames"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	PixelCount    int     `json:"pixelCount"`
}

// Sampler accumulates frame durations in a fixed-capacity FIFO window. Each
// render loop owns exactly one Sampler; it is not safe for concurrent use and
// does not need to be.
type Sampler struct {
	samples [WindowCapacity]float64
	next    int
	count   int
	total   int64
	lastMS  float64
	started bool
}

func NewSampler() *Sampler {
	return &Sampler{}
}

// RecordFrame appends the duration since the previous call, evicting the
// oldest sample once the window is full. The first call seeds the window with
// a zero-length frame so no nonsense delta is ever recorded. Timestamps must
// be monotonic and finite.
func (s *Sampler) RecordFrame(nowMS float64) {
	if !s.started {
		s.started = true
		s.lastMS = nowMS
	}
	s.samples[s.next] = nowMS - s.lastMS
	s.next = (s.next + 1) % WindowCapacity
	if s.count < WindowCapacity {
		s.count++
	}
	s.total++
	s.lastMS = nowMS
}

// Len reports how many samples the window currently holds.
func (s *Sampler) Len() int {
	return s.count
}

// TotalFrames reports the cumulative frame count since creation.
func (s *Sampler) TotalFrames() int64 {
	return s.total
}

// Snapshot derives a Report from the current window without mutating it. An
// empty window yields zero values rather than NaN or infinity; callers treat
// that as "no data yet".
func (s *Sampler) Snapshot(width, height int) Report {
	r := Report{
		TotalFrames: s.total,
		Width:       width,
		Height:      height,
		PixelCount:  width * height,
	}
	if s.count == 0 {
		return r
	}

	sum := 0.0
	minFT := math.MaxFloat64
	maxFT := 0.0
	dropped := 0
	for i := 0; i < s.count; i++ {
		ft := s.samples[(s.next-s.count+i+WindowCapacity)%WindowCapacity]
		sum += ft
		if ft < minFT {
			minFT = ft
		}
		if ft > maxFT {
			maxFT = ft
		}
		if ft > droppedFrameThresholdMS {
			dropped++
		}
	}

	avg := sum / float64(s.count)
	fps := 0.0
	if avg > 0 {
		fps = 1000.0 / avg
	}

	r.FPS = round2(fps)
	r.FrameTime = round2(s.samples[(s.next-1+WindowCapacity)%WindowCapacity])
	r.AvgFrameTime = round2(avg)
	r.MinFrameTime = round2(minFT)
	r.MaxFrameTime = round2(maxFT)
	r.DroppedFrames = dropped
	return r
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
