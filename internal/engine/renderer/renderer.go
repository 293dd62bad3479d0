// Package renderer draws map frames with OpenGL by batching textured quads.
package renderer

import (
	"fmt"
	"image"
	"image/color"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/isomap/internal/engine/shader"
	"github.com/Faultbox/isomap/internal/engine/surface"
)

const (
	floatsPerVertex = 4 // x, y, u, v
	verticesPerQuad = 6
	maxQuads        = 4096
)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	Background color.NRGBA
	Logger     *zap.Logger
}

// Renderer is a surface backed by the current OpenGL context.
// Draws are queued and flushed whenever the texture changes, the batch is
// full or the frame ends.
type Renderer struct {
	width, height int
	background    color.NRGBA
	log           *zap.Logger

	program *shader.Program
	vao     uint32
	vbo     uint32

	textures map[*image.NRGBA]uint32
	batch    []float32
	bound    uint32

	draws   int
	flushes int
}

var (
	_ surface.Surface  = (*Renderer)(nil)
	_ surface.Releaser = (*Renderer)(nil)
)

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	r := &Renderer{
		width:      cfg.Width,
		height:     cfg.Height,
		background: cfg.Background,
		log:        log,
		textures:   make(map[*image.NRGBA]uint32),
		batch:      make([]float32, 0, maxQuads*verticesPerQuad*floatsPerVertex),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	var err error
	r.program, err = shader.Compile(shader.SpriteVertex, shader.SpriteFragment)
	if err != nil {
		return nil, fmt.Errorf("failed to create sprite program: %w", err)
	}

	r.createBuffers()
	r.Resize(cfg.Width, cfg.Height)
	return r, nil
}

func (r *Renderer) createBuffers() {
	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)

	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, cap(r.batch)*4, nil, gl.DYNAMIC_DRAW)

	stride := int32(floatsPerVertex * 4)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, stride, nil)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, stride, unsafe.Pointer(uintptr(2*4)))
	gl.EnableVertexAttribArray(1)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	r.log.Debug("sprite batch created",
		zap.Uint32("vao", r.vao),
		zap.Uint32("vbo", r.vbo),
		zap.Int("quads", maxQuads),
	)
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer", zap.Int("textures", len(r.textures)))
	for img := range r.textures {
		r.Release(img)
	}
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
	}
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
	}
	if r.program != nil {
		r.program.Delete()
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.width, r.height = width, height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Size returns the framebuffer size.
func (r *Renderer) Size() (int, int) {
	return r.width, r.height
}

// SetBackground changes the clear colour.
func (r *Renderer) SetBackground(c color.NRGBA) {
	r.background = c
}

// Clear starts a new frame.
func (r *Renderer) Clear() {
	r.batch = r.batch[:0]
	r.bound = 0
	r.draws, r.flushes = 0, 0

	c := r.background
	gl.ClearColor(float32(c.R)/255, float32(c.G)/255, float32(c.B)/255, float32(c.A)/255)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	r.program.Use()
	gl.Uniform2f(r.program.Uniform("uScreen"), float32(r.width), float32(r.height))
	gl.Uniform1i(r.program.Uniform("uTexture"), 0)
}

// DrawImage queues img with its top-left corner at (x, y).
func (r *Renderer) DrawImage(img *image.NRGBA, x, y float64) {
	if img == nil {
		return
	}
	b := img.Bounds()
	if !onScreen(x, y, b.Dx(), b.Dy(), r.width, r.height) {
		return
	}

	tex := r.texture(img)
	if tex != r.bound || len(r.batch) == cap(r.batch) {
		r.flush()
		r.bound = tex
	}
	r.batch = appendQuad(r.batch, float32(x), float32(y), float32(b.Dx()), float32(b.Dy()))
	r.draws++
}

// End flushes queued draws. Call before swapping buffers.
func (r *Renderer) End() {
	r.flush()
}

// Stats returns draws and batch flushes of the current frame.
func (r *Renderer) Stats() (draws, flushes int) {
	return r.draws, r.flushes
}

func (r *Renderer) flush() {
	if len(r.batch) == 0 {
		return
	}
	r.program.Use()
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.bound)
	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(r.batch)*4, unsafe.Pointer(&r.batch[0]))
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(r.batch)/floatsPerVertex))
	gl.BindVertexArray(0)

	r.batch = r.batch[:0]
	r.flushes++
}

// texture returns the GL texture for img, uploading it on first use.
func (r *Renderer) texture(img *image.NRGBA) uint32 {
	if tex, ok := r.textures[img]; ok {
		return tex
	}

	pix := packedPixels(img)
	b := img.Bounds()

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(b.Dx()), int32(b.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pix[0]))

	// restore the batch texture
	gl.BindTexture(gl.TEXTURE_2D, r.bound)

	r.textures[img] = tex
	return tex
}

// Release frees the texture uploaded for img, if any.
func (r *Renderer) Release(img *image.NRGBA) {
	tex, ok := r.textures[img]
	if !ok {
		return
	}
	if tex == r.bound {
		r.flush()
		r.bound = 0
	}
	gl.DeleteTextures(1, &tex)
	delete(r.textures, img)
}

// Textures returns the number of resident textures.
func (r *Renderer) Textures() int {
	return len(r.textures)
}

// ReadPixels copies the back buffer into an image, top row first.
func (r *Renderer) ReadPixels() *image.NRGBA {
	r.flush()
	pix := make([]byte, r.width*r.height*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(r.width), int32(r.height), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pix[0]))
	return FlipRows(pix, r.width, r.height)
}

// appendQuad appends two triangles covering (x, y, w, h) with full texture
// coordinates.
func appendQuad(buf []float32, x, y, w, h float32) []float32 {
	x1, y1 := x+w, y+h
	return append(buf,
		x, y, 0, 0,
		x1, y, 1, 0,
		x, y1, 0, 1,

		x1, y, 1, 0,
		x1, y1, 1, 1,
		x, y1, 0, 1,
	)
}

func onScreen(x, y float64, w, h, sw, sh int) bool {
	return x+float64(w) > 0 && y+float64(h) > 0 && x < float64(sw) && y < float64(sh)
}

// packedPixels returns img's pixels without row padding.
func packedPixels(img *image.NRGBA) []byte {
	b := img.Bounds()
	row := b.Dx() * 4
	if img.Stride == row && len(img.Pix) == row*b.Dy() {
		return img.Pix
	}
	out := make([]byte, row*b.Dy())
	for y := 0; y < b.Dy(); y++ {
		start := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(out[y*row:], img.Pix[start:start+row])
	}
	return out
}

// FlipRows converts bottom-up RGBA rows, as returned by glReadPixels, into
// a top-down image.
func FlipRows(pixels []byte, width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	row := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * row
		copy(img.Pix[y*img.Stride:y*img.Stride+row], pixels[src:src+row])
	}
	return img
}
