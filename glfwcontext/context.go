// Package glfwcontext owns the GLFW window and input state for a render loop.
package glfwcontext

import (
	"log"
	"runtime"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
)

// Context wraps a GLFW window and tracks mouse state for Shadertoy-style
// iMouse reporting.
type Context struct {
	window          *glfw.Window
	lastMouseClickX float64
	lastMouseClickY float64
	mouseWasDown    bool
	keyCallbacks    map[glfw.Key]func()
}

// New creates a window with a 4.1 core profile context. Benchmark and record
// modes pass visible=false to render headless.
func New(width, height int, title string, visible bool) (*Context, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	if visible {
		glfw.WindowHint(glfw.Resizable, glfw.True)
	} else {
		glfw.WindowHint(glfw.Visible, glfw.False)
	}

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, err
	}

	c := &Context{
		window:       win,
		keyCallbacks: make(map[glfw.Key]func()),
	}
	win.SetKeyCallback(c.glfwKeyCallback)
	return c, nil
}

// RegisterKeyCallback registers a function to run when a key is pressed.
func (c *Context) RegisterKeyCallback(key glfw.Key, f func()) {
	c.keyCallbacks[key] = f
}

func (c *Context) glfwKeyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if key == glfw.KeyEscape && action == glfw.Press {
		w.SetShouldClose(true)
	}
	if action == glfw.Press {
		if callback, ok := c.keyCallbacks[key]; ok {
			callback()
		}
	}
}

// GetMouseInput returns the current mouse state in Shadertoy iMouse layout:
// xy is the cursor position in framebuffer pixels (bottom-left origin), zw is
// the last click position, negated while the button is up.
func (c *Context) GetMouseInput() [4]float32 {
	var mouseData [4]float32
	if c.window == nil {
		return mouseData
	}

	fbWidth, fbHeight := c.GetFramebufferSize()
	winWidth, winHeight := c.window.GetSize()
	var scaleX, scaleY float64 = 1.0, 1.0
	if winWidth > 0 && winHeight > 0 {
		scaleX = float64(fbWidth) / float64(winWidth)
		scaleY = float64(fbHeight) / float64(winHeight)
	}

	cursorX, cursorY := c.window.GetCursorPos()
	pixelX := cursorX * scaleX
	pixelY := cursorY * scaleY

	mouseX := float32(pixelX)
	mouseY := float32(fbHeight) - float32(pixelY)

	isMouseDown := c.window.GetMouseButton(glfw.MouseButtonLeft) == glfw.Press
	if isMouseDown && !c.mouseWasDown {
		c.lastMouseClickX = pixelX
		c.lastMouseClickY = pixelY
	}
	c.mouseWasDown = isMouseDown

	clickX := float32(c.lastMouseClickX)
	clickY := float32(fbHeight) - float32(c.lastMouseClickY)
	if !isMouseDown {
		clickX = -clickX
		clickY = -clickY
	}

	mouseData = [4]float32{mouseX, mouseY, clickX, clickY}
	return mouseData
}

// SetTitle updates the window title; the renderer uses it as a lightweight HUD.
func (c *Context) SetTitle(title string) {
	c.window.SetTitle(title)
}

// MakeCurrent makes the GL context current on the calling thread.
func (c *Context) MakeCurrent() {
	c.window.MakeContextCurrent()
}

func (c *Context) ShouldClose() bool {
	return c.window.ShouldClose()
}

// EndFrame presents the frame and pumps the event queue.
func (c *Context) EndFrame() {
	c.window.SwapBuffers()
	glfw.PollEvents()
}

func (c *Context) GetFramebufferSize() (int, int) {
	return c.window.GetFramebufferSize()
}

// Time returns seconds since GLFW was initialized.
func (c *Context) Time() float64 {
	return glfw.GetTime()
}

// Shutdown destroys the window.
func (c *Context) Shutdown() {
	c.window.Destroy()
}

// InitGraphics initializes GLFW. Must be called from the main thread.
func InitGraphics() error {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return err
	}
	log.Printf("GLFW Initialized")
	return nil
}

// TerminateGraphics shuts GLFW down. Must be called from the main thread.
func TerminateGraphics() {
	glfw.Terminate()
	log.Printf("GLFW Terminated")
}
