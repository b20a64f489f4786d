// Package renderer compiles converted shader programs and drives the render
// loops for preview, benchmark, and record modes.
package renderer

import (
	"fmt"
	"strings"
	"sync"
	"time"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	gst "github.com/richinsley/goshadertranslator"

	"github.com/Hannyel0/shaderbench/glfwcontext"
	"github.com/Hannyel0/shaderbench/shadercompat"
	"github.com/Hannyel0/shaderbench/translator"
)

var glInitOnce sync.Once

// imagePass is a linked fragment program plus the uniform locations of the
// standard Shadertoy set, resolved through the translator's name mapping.
type imagePass struct {
	program       uint32
	resolutionLoc int32
	timeLoc       int32
	timeDeltaLoc  int32
	frameLoc      int32
	mouseLoc      int32
	dateLoc       int32
}

// frameState carries the per-frame uniform values.
type frameState struct {
	time      float64
	timeDelta float64
	frame     int32
	mouse     [4]float32
}

// Renderer owns the GL context, the fullscreen quad, and the currently loaded
// shader program. One Renderer serves one window or offscreen target.
type Renderer struct {
	context *glfwcontext.Context
	quadVAO uint32
	quadVBO uint32
	pass    *imagePass
	width   int
	height  int
}

var quadVertices = []float32{
	-1.0, 1.0, -1.0, -1.0, 1.0, -1.0,
	-1.0, 1.0, 1.0, -1.0, 1.0, 1.0,
}

// New creates a renderer with its own window context. Pass visible=false for
// benchmark and record modes.
func New(width, height int, title string, visible bool) (*Renderer, error) {
	r := &Renderer{width: width, height: height}

	var err error
	r.context, err = glfwcontext.New(width, height, title, visible)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize glfw context: %w", err)
	}
	r.context.MakeCurrent()

	var initErr error
	glInitOnce.Do(func() {
		initErr = gl.Init()
	})
	if initErr != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", initErr)
	}

	gl.GenVertexArrays(1, &r.quadVAO)
	gl.GenBuffers(1, &r.quadVBO)
	gl.BindVertexArray(r.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	return r, nil
}

// LoadSource converts a raw shader body into a full program, translates it to
// desktop GLSL, and links it. On success the previous program is replaced and
// deleted; on failure the previous program stays active.
func (r *Renderer) LoadSource(source string) error {
	fullSource := shadercompat.Convert(source)

	xl, err := translator.Shared()
	if err != nil {
		return fmt.Errorf("shader translator unavailable: %w", err)
	}
	fsShader, err := xl.TranslateShader(fullSource, "fragment", gst.ShaderSpecWebGL2, gst.OutputFormatGLSL410)
	if err != nil {
		return fmt.Errorf("fragment shader translation failed: %w", err)
	}

	program, err := newProgram(shadercompat.VertexShader(), fsShader.Code)
	if err != nil {
		return fmt.Errorf("failed to create shader program: %w", err)
	}

	pass := &imagePass{program: program}
	uniformMap := fsShader.Variables
	gl.UseProgram(program)
	pass.resolutionLoc = uniformLocation(uniformMap, program, "iResolution")
	pass.timeLoc = uniformLocation(uniformMap, program, "iTime")
	pass.timeDeltaLoc = uniformLocation(uniformMap, program, "iTimeDelta")
	pass.frameLoc = uniformLocation(uniformMap, program, "iFrame")
	pass.mouseLoc = uniformLocation(uniformMap, program, "iMouse")
	pass.dateLoc = uniformLocation(uniformMap, program, "iDate")

	if r.pass != nil {
		gl.DeleteProgram(r.pass.program)
	}
	r.pass = pass
	return nil
}

// uniformLocation resolves a uniform through the translator's mapped names.
// Unreferenced uniforms are compiled out and report -1.
func uniformLocation(vars map[string]gst.ShaderVariable, program uint32, name string) int32 {
	if v, ok := vars[name]; ok {
		return gl.GetUniformLocation(program, gl.Str(v.MappedName+"\x00"))
	}
	return -1
}

// renderFrame draws the fullscreen quad with the current program into whatever
// framebuffer is bound.
func (r *Renderer) renderFrame(width, height int, st frameState) {
	pass := r.pass
	gl.UseProgram(pass.program)

	if pass.resolutionLoc != -1 {
		gl.Uniform3f(pass.resolutionLoc, float32(width), float32(height), 1.0)
	}
	if pass.timeLoc != -1 {
		gl.Uniform1f(pass.timeLoc, float32(st.time))
	}
	if pass.timeDeltaLoc != -1 {
		gl.Uniform1f(pass.timeDeltaLoc, float32(st.timeDelta))
	}
	if pass.frameLoc != -1 {
		gl.Uniform1i(pass.frameLoc, st.frame)
	}
	if pass.mouseLoc != -1 {
		gl.Uniform4f(pass.mouseLoc, st.mouse[0], st.mouse[1], st.mouse[2], st.mouse[3])
	}
	if pass.dateLoc != -1 {
		now := time.Now()
		secs := float64(now.Hour()*3600+now.Minute()*60+now.Second()) + float64(now.Nanosecond())/1e9
		gl.Uniform4f(pass.dateLoc, float32(now.Year()), float32(int(now.Month())-1), float32(now.Day()), float32(secs))
	}

	gl.Viewport(0, 0, int32(width), int32(height))
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.BindVertexArray(r.quadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
}

// Shutdown releases all GL resources and the window.
func (r *Renderer) Shutdown() {
	if r.pass != nil {
		gl.DeleteProgram(r.pass.program)
		r.pass = nil
	}
	gl.DeleteBuffers(1, &r.quadVBO)
	gl.DeleteVertexArrays(1, &r.quadVAO)
	r.context.Shutdown()
}

func newProgram(vertexShaderSource, fragmentShaderSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		infoLog := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(infoLog))
		return 0, fmt.Errorf("failed to link program: %v", infoLog)
	}

	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
		return 0, fmt.Errorf("failed to compile shader: %v", logText)
	}
	return shader, nil
}
