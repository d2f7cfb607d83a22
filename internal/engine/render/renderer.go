// Package render draws the face mesh and the comparison overlay with OpenGL.
package render

import (
	"fmt"
	gomath "math"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/facemorph/internal/engine/render/shaders"
	"github.com/Faultbox/facemorph/internal/engine/shader"
	"github.com/Faultbox/facemorph/internal/logger"
	"github.com/Faultbox/facemorph/internal/sim"
	"github.com/Faultbox/facemorph/pkg/math"
)

// floatsPerVertex is position + normal, interleaved.
const floatsPerVertex = 6

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
	FovY   float32 // radians
}

// Colors of the two passes.
var (
	faceColor    = [3]float32{0.85, 0.68, 0.6}
	overlayColor = [3]float32{0.55, 0.7, 0.9}
	lightDir     = [3]float32{-0.3, -0.4, -1}
)

const overlayAlpha = 0.55

// Renderer is the OpenGL render sink for sim frames.
// IMPORTANT: Must be created AFTER the OpenGL context exists.
type Renderer struct {
	config  Config
	program *shader.Program

	face    meshBuffers
	overlay meshBuffers

	scratch []float32
}

var _ sim.RenderSink = (*Renderer)(nil)

// meshBuffers is one VAO with an interleaved vertex buffer and an index buffer.
type meshBuffers struct {
	vao, vbo, ebo uint32
	vertexCount   int
	indexCount    int32
	generation    uint64
	uploaded      bool
}

// New initializes OpenGL and creates the face program.
func New(cfg Config) (*Renderer, error) {
	if cfg.FovY <= 0 {
		cfg.FovY = 30 * gomath.Pi / 180
	}
	r := &Renderer{config: cfg}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.ClearColor(0.1, 0.1, 0.15, 1.0)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	var err error
	r.program, err = shader.New(shaders.FaceVertexShader, shaders.FaceFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("face shader: %w", err)
	}

	r.face.create()
	r.overlay.create()
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))
	return r, nil
}

// Close releases GL resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	r.face.delete()
	r.overlay.delete()
	if r.program != nil {
		r.program.Delete()
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// ReadPixels reads the default framebuffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() (pixels []byte, width, height int) {
	width, height = r.config.Width, r.config.Height
	pixels = make([]byte, width*height*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, width, height
}

// FovY returns the vertical field of view in radians.
func (r *Renderer) FovY() float32 {
	return r.config.FovY
}

// Projection returns the projection matrix for the current viewport, with
// near and far planes placed around a subject at distance dist.
func (r *Renderer) Projection(dist float32) math.Mat4 {
	aspect := float32(r.config.Width) / float32(max(r.config.Height, 1))
	near, far := clipRange(dist)
	return math.Perspective(r.config.FovY, aspect, near, far)
}

// Draw renders one frame: the working mesh, then the clipped translucent
// original when the comparison is on.
func (r *Renderer) Draw(f *sim.Frame) error {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	if len(f.Positions) == 0 || len(f.Indices) == 0 {
		return nil
	}

	r.scratch = r.face.upload(f.Positions, f.Normals, f.Indices, f.Generation, r.scratch)

	view := f.View
	proj := r.Projection(f.Eye.Distance(f.Target))

	r.program.Use()
	gl.UniformMatrix4fv(r.program.Uniform("uView"), 1, false, view.Ptr())
	gl.UniformMatrix4fv(r.program.Uniform("uProjection"), 1, false, proj.Ptr())
	gl.Uniform3fv(r.program.Uniform("uLightDir"), 1, &lightDir[0])

	gl.Uniform1i(r.program.Uniform("uClip"), 0)
	gl.Uniform3fv(r.program.Uniform("uColor"), 1, &faceColor[0])
	gl.Uniform1f(r.program.Uniform("uAlpha"), 1)
	r.face.draw()

	if f.Overlay.Enabled && len(f.Overlay.Positions) == len(f.Positions) {
		r.scratch = r.overlay.upload(f.Overlay.Positions, f.Overlay.Normals, f.Indices, f.Overlay.Generation, r.scratch)

		plane := f.Overlay.Plane.Vec4()
		gl.Enable(gl.CLIP_DISTANCE0)
		gl.Enable(gl.BLEND)
		gl.Enable(gl.POLYGON_OFFSET_FILL)
		gl.PolygonOffset(-1, -1)

		gl.Uniform1i(r.program.Uniform("uClip"), 1)
		gl.Uniform4fv(r.program.Uniform("uClipPlane"), 1, &plane[0])
		gl.Uniform3fv(r.program.Uniform("uColor"), 1, &overlayColor[0])
		gl.Uniform1f(r.program.Uniform("uAlpha"), overlayAlpha)
		r.overlay.draw()

		gl.Disable(gl.POLYGON_OFFSET_FILL)
		gl.Disable(gl.BLEND)
		gl.Disable(gl.CLIP_DISTANCE0)
	}

	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("GL error 0x%x", code)
	}
	return nil
}

func (m *meshBuffers) create() {
	gl.GenVertexArrays(1, &m.vao)
	gl.GenBuffers(1, &m.vbo)
	gl.GenBuffers(1, &m.ebo)

	gl.BindVertexArray(m.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)

	stride := int32(floatsPerVertex * 4)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)

	gl.BindVertexArray(0)
}

// upload copies the buffers to the GPU when the generation changed. Topology
// is re-sent only when the vertex count changes.
func (m *meshBuffers) upload(positions, normals []math.Vec3, indices []uint32, gen uint64, scratch []float32) []float32 {
	if m.uploaded && m.generation == gen && m.vertexCount == len(positions) {
		return scratch
	}
	scratch = interleave(positions, normals, scratch)

	gl.BindVertexArray(m.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	if m.vertexCount != len(positions) || !m.uploaded {
		gl.BufferData(gl.ARRAY_BUFFER, len(scratch)*4, unsafe.Pointer(&scratch[0]), gl.DYNAMIC_DRAW)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, unsafe.Pointer(&indices[0]), gl.STATIC_DRAW)
		m.indexCount = int32(len(indices))
	} else {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(scratch)*4, unsafe.Pointer(&scratch[0]))
	}
	gl.BindVertexArray(0)

	m.vertexCount = len(positions)
	m.generation = gen
	m.uploaded = true
	return scratch
}

func (m *meshBuffers) draw() {
	if m.indexCount == 0 {
		return
	}
	gl.BindVertexArray(m.vao)
	gl.DrawElementsWithOffset(gl.TRIANGLES, m.indexCount, gl.UNSIGNED_INT, 0)
	gl.BindVertexArray(0)
}

func (m *meshBuffers) delete() {
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
	}
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
	}
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
	}
	*m = meshBuffers{}
}

// interleave packs positions and normals as x y z nx ny nz per vertex into
// dst, growing it when needed. Missing normals are written as zero.
func interleave(positions, normals []math.Vec3, dst []float32) []float32 {
	n := len(positions) * floatsPerVertex
	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]
	for i, p := range positions {
		o := i * floatsPerVertex
		dst[o], dst[o+1], dst[o+2] = p.X, p.Y, p.Z
		var nv math.Vec3
		if i < len(normals) {
			nv = normals[i]
		}
		dst[o+3], dst[o+4], dst[o+5] = nv.X, nv.Y, nv.Z
	}
	return dst
}

// clipRange returns near and far planes bracketing a subject at dist.
func clipRange(dist float32) (near, far float32) {
	if dist <= 0 {
		dist = 1
	}
	return dist * 0.01, dist * 100
}
