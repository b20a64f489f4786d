package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"

	api "github.com/Hannyel0/shaderbench/api"
	bench "github.com/Hannyel0/shaderbench/bench"
	"github.com/Hannyel0/shaderbench/glfwcontext"
	"github.com/Hannyel0/shaderbench/noise"
	renderer "github.com/Hannyel0/shaderbench/renderer"
	"github.com/Hannyel0/shaderbench/shadercompat"
	"github.com/Hannyel0/shaderbench/store"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	var mode = flag.String("mode", "view", "Mode: view, validate, bench, record, fetch, list, delete, export, import, list-noise")
	var shaderPath = flag.String("shader", "", "Path to a fragment shader file")
	var name = flag.String("name", "", "Shader name in the local library")
	var libDir = flag.String("library", "", "Library directory (defaults to the OS data dir)")
	var noiseNames = flag.String("noise", "", "Comma-separated noise snippets to prepend (list with -mode list-noise)")
	var width = flag.Int("width", 1280, "Render width")
	var height = flag.Int("height", 720, "Render height")
	var frames = flag.Int("frames", 600, "Benchmark frame count")
	var warmup = flag.Int("warmup", 60, "Benchmark warmup frames")
	var fps = flag.Int("fps", 60, "Frames per second for recording")
	var duration = flag.Float64("duration", 10.0, "Duration to record in seconds")
	var output = flag.String("output", "", "Output file (benchmark JSON or mp4)")
	var file = flag.String("file", "shaderbench-library.json", "Library export/import file")
	var shaderID = flag.String("id", "", "Shadertoy shader ID or URL to fetch")
	var apikey = flag.String("apikey", "", "Shadertoy API key (SHADERTOY_KEY env var if not set)")
	var ffmpegPath = flag.String("ffmpeg", "", "Path to ffmpeg executable")
	var help = flag.Bool("help", false, "Show help message")

	flag.Parse()

	if *help {
		fmt.Println("shaderbench: preview, validate, and benchmark Shadertoy-style shaders")
		flag.PrintDefaults()
		return
	}

	lib, err := store.Open(*libDir)
	if err != nil {
		log.Fatalf("Failed to open shader library: %v", err)
	}

	prelude := ""
	if *noiseNames != "" {
		prelude, err = noise.Prelude(strings.Split(*noiseNames, ",")...)
		if err != nil {
			log.Fatalf("Invalid -noise list: %v", err)
		}
	}

	switch *mode {
	case "validate":
		runValidate(lib, *shaderPath, *name, prelude)
	case "view":
		runView(*shaderPath, *width, *height, prelude)
	case "bench":
		runBench(lib, *shaderPath, *name, prelude, *width, *height, *frames, *warmup, *output)
	case "record":
		runRecord(lib, *shaderPath, *name, prelude, *width, *height, *fps, *duration, *output, *ffmpegPath)
	case "fetch":
		runFetch(lib, *apikey, *shaderID, *name)
	case "list":
		runList(lib)
	case "delete":
		if *name == "" {
			log.Fatalf("-mode delete requires -name")
		}
		if err := lib.Delete(*name); err != nil {
			log.Fatalf("Delete failed: %v", err)
		}
		log.Printf("Deleted %q", *name)
	case "export":
		if err := lib.Export(*file); err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		log.Printf("Exported library to %s", *file)
	case "import":
		n, err := lib.Import(*file)
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		log.Printf("Imported %d shader(s) from %s", n, *file)
	case "list-noise":
		fmt.Println(strings.Join(noise.Names(), "\n"))
	default:
		log.Fatalf("Unknown mode %q", *mode)
	}
}

// loadBody resolves the shader body from a file or the library, with the
// noise prelude prepended.
func loadBody(lib *store.Library, shaderPath, name, prelude string) (body, label string) {
	switch {
	case shaderPath != "":
		data, err := os.ReadFile(shaderPath)
		if err != nil {
			log.Fatalf("Failed to read shader file: %v", err)
		}
		return prelude + string(data), shaderPath
	case name != "":
		rec, err := lib.Load(name)
		if err != nil {
			log.Fatalf("Failed to load shader from library: %v", err)
		}
		return prelude + rec.FragmentShader, name
	default:
		log.Fatalf("Supply a shader with -shader <file> or -name <library entry>")
		return "", ""
	}
}

func runValidate(lib *store.Library, shaderPath, name, prelude string) {
	body, label := loadBody(lib, shaderPath, name, prelude)
	res := shadercompat.Validate(body)
	for _, w := range res.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	if !res.Valid {
		fmt.Printf("error: %s\n", res.Error)
		os.Exit(1)
	}
	fmt.Printf("%s: valid\n", label)
}

func runView(shaderPath string, width, height int, prelude string) {
	if shaderPath == "" {
		log.Fatalf("-mode view requires -shader <file> (the file is watched for edits)")
	}
	if err := glfwcontext.InitGraphics(); err != nil {
		log.Fatalf("Failed to initialize graphics: %v", err)
	}
	defer glfwcontext.TerminateGraphics()

	r, err := renderer.New(width, height, "shaderbench", true)
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}
	defer r.Shutdown()

	if err := r.Run(shaderPath, prelude, nil); err != nil {
		log.Fatalf("Render loop failed: %v", err)
	}
}

func runBench(lib *store.Library, shaderPath, name, prelude string, width, height, frames, warmup int, output string) {
	body, label := loadBody(lib, shaderPath, name, prelude)

	if err := glfwcontext.InitGraphics(); err != nil {
		log.Fatalf("Failed to initialize graphics: %v", err)
	}
	defer glfwcontext.TerminateGraphics()

	r, err := renderer.New(width, height, "shaderbench (bench)", false)
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}
	defer r.Shutdown()

	result, err := r.Bench(label, body, bench.Options{
		Width:        width,
		Height:       height,
		Frames:       frames,
		WarmupFrames: warmup,
	})
	if err != nil {
		log.Fatalf("Benchmark failed: %v", err)
	}

	fmt.Print(result.Summary())
	if output != "" {
		if err := result.WriteJSON(output); err != nil {
			log.Fatalf("Failed to export result: %v", err)
		}
		log.Printf("Wrote benchmark result to %s", output)
	}
}

func runRecord(lib *store.Library, shaderPath, name, prelude string, width, height, fps int, duration float64, output, ffmpegPath string) {
	body, _ := loadBody(lib, shaderPath, name, prelude)
	if output == "" {
		output = "output.mp4"
	}

	if err := glfwcontext.InitGraphics(); err != nil {
		log.Fatalf("Failed to initialize graphics: %v", err)
	}
	defer glfwcontext.TerminateGraphics()

	r, err := renderer.New(width, height, "shaderbench (record)", false)
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}
	defer r.Shutdown()

	if err := r.Record(body, renderer.RecordOptions{
		FPS:        fps,
		Duration:   duration,
		OutputFile: output,
		FFmpegPath: ffmpegPath,
	}); err != nil {
		log.Fatalf("Recording failed: %v", err)
	}
}

func runFetch(lib *store.Library, apikey, shaderID, name string) {
	if shaderID == "" {
		log.Fatalf("-mode fetch requires -id <shadertoy id or url>")
	}

	log.Printf("Fetching shader %s", shaderID)
	resp, err := api.ShaderFromID(apikey, shaderID, true)
	if err != nil {
		log.Fatalf("Fetch failed: %v", err)
	}
	code, err := api.CodeFromResponse(resp)
	if err != nil {
		log.Fatalf("Failed to process shader: %v", err)
	}
	log.Printf("Fetched %s", code.Title)
	if !code.Complete {
		log.Println("Warning: shader uses unsupported passes or inputs; the preview may be incomplete.")
	}

	body := code.Body()
	res := shadercompat.Validate(body)
	for _, w := range res.Warnings {
		log.Printf("Warning: %s", w)
	}
	if !res.Valid {
		log.Printf("Warning: shader failed validation (%s); saving anyway", res.Error)
	}

	if name == "" {
		name = code.ID
	}
	if err := lib.Save(store.Record{Name: name, FragmentShader: body}); err != nil {
		log.Fatalf("Failed to save shader: %v", err)
	}
	log.Printf("Saved as %q in %s", name, lib.Dir())
}

func runList(lib *store.Library) {
	records, err := lib.List()
	if err != nil {
		log.Fatalf("Failed to list library: %v", err)
	}
	if len(records) == 0 {
		fmt.Printf("Library at %s is empty.\n", lib.Dir())
		return
	}
	for _, rec := range records {
		fmt.Printf("%-24s %6d bytes  updated %s\n",
			rec.Name, len(rec.FragmentShader), rec.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
}
