package renderer

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Hannyel0/shaderbench/metrics"
	"github.com/Hannyel0/shaderbench/shadercompat"
)

// ReportFunc receives decimated performance reports from a render loop.
type ReportFunc func(metrics.Report)

// Snapshots are emitted every reportInterval frames so consumers are not
// flooded with updates.
const reportInterval = 10

// The shader file is polled for edits every reloadPollFrames frames.
const reloadPollFrames = 30

// Run drives the interactive preview loop. The shader file is watched for
// edits; a changed file is re-validated and recompiled in place, and a broken
// edit keeps the previous program running. prelude is prepended to the file
// content on every (re)load; onReport may be nil.
func (r *Renderer) Run(shaderPath, prelude string, onReport ReportFunc) error {
	source, modTime, err := readShaderFile(shaderPath)
	if err != nil {
		return err
	}
	if err := r.loadValidated(prelude + source); err != nil {
		return err
	}

	sampler := metrics.NewSampler()
	startTime := r.context.Time()
	lastTime := startTime
	var frameCount int32

	for !r.context.ShouldClose() {
		now := r.context.Time()

		if frameCount%reloadPollFrames == 0 && frameCount > 0 {
			modTime = r.maybeReload(shaderPath, prelude, modTime)
		}

		width, height := r.context.GetFramebufferSize()
		r.renderFrame(width, height, frameState{
			time:      now - startTime,
			timeDelta: now - lastTime,
			frame:     frameCount,
			mouse:     r.context.GetMouseInput(),
		})
		r.context.EndFrame()

		sampler.RecordFrame(now * 1000)
		if frameCount%reportInterval == 0 {
			rep := sampler.Snapshot(width, height)
			r.context.SetTitle(fmt.Sprintf("shaderbench | %.2f fps | %.2f ms avg | %d dropped",
				rep.FPS, rep.AvgFrameTime, rep.DroppedFrames))
			if onReport != nil {
				onReport(rep)
			}
		}

		lastTime = now
		frameCount++
	}

	final := sampler.Snapshot(r.width, r.height)
	log.Printf("Session: %d frames, %.2f fps avg, %d dropped", final.TotalFrames, final.FPS, final.DroppedFrames)
	return nil
}

// loadValidated runs the validation step before conversion, mirroring what
// the editor UI does on every edit.
func (r *Renderer) loadValidated(source string) error {
	res := shadercompat.Validate(source)
	for _, w := range res.Warnings {
		log.Printf("Warning: %s", w)
	}
	if !res.Valid {
		return fmt.Errorf("shader validation failed: %s", res.Error)
	}
	return r.LoadSource(source)
}

// maybeReload recompiles the shader if the file changed on disk. Validation
// or compile failures are logged and the running program is kept.
func (r *Renderer) maybeReload(shaderPath, prelude string, lastMod time.Time) time.Time {
	info, err := os.Stat(shaderPath)
	if err != nil || !info.ModTime().After(lastMod) {
		return lastMod
	}

	source, modTime, err := readShaderFile(shaderPath)
	if err != nil {
		log.Printf("Reload failed: %v", err)
		return info.ModTime()
	}
	if err := r.loadValidated(prelude + source); err != nil {
		log.Printf("Reload rejected: %v", err)
		return modTime
	}
	log.Printf("Reloaded %s", shaderPath)
	return modTime
}

func readShaderFile(path string) (string, time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to stat shader file: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to read shader file: %w", err)
	}
	return string(data), info.ModTime(), nil
}
