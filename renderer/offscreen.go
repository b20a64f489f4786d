package renderer

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// Offscreen is an RGBA8 framebuffer target with a PBO readback path, used by
// benchmark and record modes.
type Offscreen struct {
	fbo               uint32
	textureID         uint32
	depthRenderbuffer uint32
	pbo               uint32
	width             int
	height            int
}

func NewOffscreen(width, height int) (*Offscreen, error) {
	o := &Offscreen{width: width, height: height}

	gl.GenFramebuffers(1, &o.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, o.fbo)
	gl.GenTextures(1, &o.textureID)
	gl.BindTexture(gl.TEXTURE_2D, o.textureID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, o.textureID, 0)
	gl.GenRenderbuffers(1, &o.depthRenderbuffer)
	gl.BindRenderbuffer(gl.RENDERBUFFER, o.depthRenderbuffer)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, int32(width), int32(height))
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, o.depthRenderbuffer)
	if gl.CheckFramebufferStatus(gl.FRAMEBUFFER) != gl.FRAMEBUFFER_COMPLETE {
		return nil, fmt.Errorf("offscreen fbo is not complete")
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	gl.GenBuffers(1, &o.pbo)
	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, o.pbo)
	gl.BufferData(gl.PIXEL_PACK_BUFFER, width*height*4, nil, gl.STREAM_READ)
	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, 0)

	return o, nil
}

// Bind routes subsequent draws into the offscreen framebuffer.
func (o *Offscreen) Bind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, o.fbo)
}

func (o *Offscreen) Unbind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// ReadPixels copies the current framebuffer content through the PBO and
// returns tightly packed RGBA rows, bottom-up as GL delivers them. The map
// call synchronizes with the GPU, which is acceptable for record mode.
func (o *Offscreen) ReadPixels() ([]byte, error) {
	bufferSize := o.width * o.height * 4
	pixels := make([]byte, bufferSize)

	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, o.fbo)
	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, o.pbo)
	gl.ReadPixels(0, 0, int32(o.width), int32(o.height), gl.RGBA, gl.UNSIGNED_BYTE, nil)

	ptr := gl.MapBufferRange(gl.PIXEL_PACK_BUFFER, 0, bufferSize, gl.MAP_READ_BIT)
	if ptr == nil {
		gl.BindBuffer(gl.PIXEL_PACK_BUFFER, 0)
		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
		return nil, fmt.Errorf("failed to map readback pbo")
	}
	data := (*[1 << 30]byte)(ptr)[:bufferSize:bufferSize]
	copy(pixels, data)
	gl.UnmapBuffer(gl.PIXEL_PACK_BUFFER)

	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, 0)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	return pixels, nil
}

func (o *Offscreen) Destroy() {
	gl.DeleteBuffers(1, &o.pbo)
	gl.DeleteRenderbuffers(1, &o.depthRenderbuffer)
	gl.DeleteTextures(1, &o.textureID)
	gl.DeleteFramebuffers(1, &o.fbo)
}
