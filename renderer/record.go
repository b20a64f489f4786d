package renderer

import (
	"fmt"
	"io"
	"log"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// RecordOptions configures an mp4 export of a shader preview.
type RecordOptions struct {
	FPS        int
	Duration   float64
	OutputFile string
	FFmpegPath string
}

// Record renders the shader offscreen at a fixed timestep and pipes raw RGBA
// frames to ffmpeg. Simulation time advances by exactly 1/fps per frame, so
// the export is deterministic regardless of render speed.
func (r *Renderer) Record(source string, opts RecordOptions) error {
	if opts.FPS <= 0 || opts.Duration <= 0 {
		return fmt.Errorf("record requires a positive fps and duration")
	}
	if err := r.loadValidated(source); err != nil {
		return err
	}

	offscreen, err := NewOffscreen(r.width, r.height)
	if err != nil {
		return fmt.Errorf("failed to create offscreen target: %w", err)
	}
	defer offscreen.Destroy()

	pipeReader, pipeWriter := io.Pipe()

	inputArgs := ffmpeg.KwArgs{
		"f":         "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", r.width, r.height),
		"framerate": opts.FPS,
	}
	outputArgs := ffmpeg.KwArgs{
		"c:v":     "libx264",
		"pix_fmt": "yuv420p",
		// GL reads rows bottom-up.
		"vf":  "vflip",
		"b:v": "10M",
	}

	ffmpegCmd := ffmpeg.Input("pipe:", inputArgs).
		Output(opts.OutputFile, outputArgs).
		OverWriteOutput().WithInput(pipeReader).ErrorToStdOut()
	if opts.FFmpegPath != "" {
		ffmpegCmd = ffmpegCmd.SetFfmpegPath(opts.FFmpegPath)
	}

	errc := make(chan error, 1)
	go func() {
		err := ffmpegCmd.Run()
		// Close the read end so a pending frame write fails instead of
		// blocking forever if the encoder exits early.
		pipeReader.CloseWithError(err)
		errc <- err
	}()

	totalFrames := int(opts.Duration * float64(opts.FPS))
	timeStep := 1.0 / float64(opts.FPS)
	log.Printf("Recording %d frames at %dx%d to %s", totalFrames, r.width, r.height, opts.OutputFile)

	offscreen.Bind()
	writeErr := streamFrames(pipeWriter, totalFrames, func(frame int) ([]byte, error) {
		r.renderFrame(r.width, r.height, frameState{
			time:      float64(frame) * timeStep,
			timeDelta: timeStep,
			frame:     int32(frame),
		})
		return offscreen.ReadPixels()
	})
	offscreen.Unbind()

	pipeWriter.Close()
	encodeErr := <-errc
	if encodeErr != nil {
		return fmt.Errorf("ffmpeg encoding failed: %w", encodeErr)
	}
	if writeErr != nil {
		return writeErr
	}
	log.Printf("Wrote %s", opts.OutputFile)
	return nil
}

// streamFrames renders each frame and writes it to the encoder. A failed
// write (typically the consumer closing its end of the pipe) aborts the run
// with the underlying error.
func streamFrames(w io.Writer, totalFrames int, render func(frame int) ([]byte, error)) error {
	for i := 0; i < totalFrames; i++ {
		pixels, err := render(i)
		if err != nil {
			return fmt.Errorf("failed to read pixels on frame %d: %w", i, err)
		}
		if _, err := w.Write(pixels); err != nil {
			return fmt.Errorf("failed to write frame %d to encoder: %w", i, err)
		}
	}
	return nil
}
