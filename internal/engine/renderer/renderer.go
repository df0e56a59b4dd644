// Package renderer draws the network as instanced node quads and indexed
// edge lines, into the default framebuffer or an offscreen target.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/netviz/internal/engine/camera"
	"github.com/Faultbox/netviz/internal/engine/picking"
	"github.com/Faultbox/netviz/internal/engine/shader"
	"github.com/Faultbox/netviz/internal/engine/shaders"
	"github.com/Faultbox/netviz/internal/logger"
	"github.com/Faultbox/netviz/internal/network"
)

// Config holds renderer configuration.
type Config struct {
	Use2D            bool
	Background       [4]float32
	EdgesIntensity   float32
	AdditiveBlending bool
	FastEdges        bool
}

// Target is an offscreen surface a pass can be drawn into.
type Target interface {
	// Bind makes the target current and sets the viewport.
	Bind()
	Size() (width, height int32)
	// Background returns a clear color override for visible passes.
	Background() ([4]float32, bool)
}

// node billboard corners, drawn as a triangle strip
var quadVertices = []float32{
	-1, -1,
	1, -1,
	-1, 1,
	1, 1,
}

// Renderer owns the GL programs and buffers for one network.
type Renderer struct {
	cfg   Config
	model *network.Model

	nodeProgram    *shader.Program
	pickingProgram *shader.Program
	edgeProgram    *shader.Program

	nodeVAO uint32
	edgeVAO uint32

	quadVBO         uint32
	positionVBO     uint32
	colorVBO        uint32
	intensityVBO    uint32
	sizeVBO         uint32
	outlineWidthVBO uint32
	outlineColorVBO uint32
	encodedIndexVBO uint32
	edgeEBO         uint32

	nodeCount  int32
	indexCount int32

	drawableW, drawableH int32
	gestureActive        bool
}

// New creates the programs and uploads the model. Must be called with a
// current GL context.
func New(cfg Config, model *network.Model) (*Renderer, error) {
	r := &Renderer{
		cfg:   cfg,
		model: model,
	}

	var err error
	if r.nodeProgram, err = shader.Link("nodes", shaders.NodesVertexShader, shaders.NodesFragmentShader); err != nil {
		return nil, err
	}
	if r.pickingProgram, err = shader.Link("picking", shaders.NodesVertexShader, shaders.NodesPickingFragmentShader); err != nil {
		r.Destroy()
		return nil, err
	}
	if r.edgeProgram, err = shader.Link("edges", shaders.EdgesVertexShader, shaders.EdgesFragmentShader); err != nil {
		r.Destroy()
		return nil, err
	}

	r.createBuffers()
	r.UpdateGeometry()

	if glErr := gl.GetError(); glErr != gl.NO_ERROR {
		r.Destroy()
		return nil, fmt.Errorf("creating buffers: GL error 0x%x", glErr)
	}

	logger.Info("renderer ready",
		zap.Int("nodes", model.Len()),
		zap.Int("edges", model.EdgeCount()),
		zap.Bool("2d", cfg.Use2D),
	)
	return r, nil
}

func (r *Renderer) createBuffers() {
	buffers := []*uint32{
		&r.quadVBO, &r.positionVBO, &r.colorVBO, &r.intensityVBO, &r.sizeVBO,
		&r.outlineWidthVBO, &r.outlineColorVBO, &r.encodedIndexVBO, &r.edgeEBO,
	}
	for _, b := range buffers {
		gl.GenBuffers(1, b)
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, r.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)

	// Node VAO: one quad, instanced attributes advance per node
	gl.GenVertexArrays(1, &r.nodeVAO)
	gl.BindVertexArray(r.nodeVAO)
	attribute(r.quadVBO, shaders.AttribVertex, 2, 0)
	attribute(r.positionVBO, shaders.AttribPosition, 3, 1)
	attribute(r.colorVBO, shaders.AttribColor, 3, 1)
	attribute(r.intensityVBO, shaders.AttribIntensity, 1, 1)
	attribute(r.sizeVBO, shaders.AttribSize, 1, 1)
	attribute(r.outlineWidthVBO, shaders.AttribOutlineWidth, 1, 1)
	attribute(r.outlineColorVBO, shaders.AttribOutlineColor, 3, 1)
	attribute(r.encodedIndexVBO, shaders.AttribEncodedIndex, 4, 1)

	// Edge VAO: positions and colors indexed by endpoint
	gl.GenVertexArrays(1, &r.edgeVAO)
	gl.BindVertexArray(r.edgeVAO)
	attribute(r.positionVBO, shaders.AttribPosition, 3, 0)
	attribute(r.colorVBO, shaders.AttribColor, 3, 0)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.edgeEBO)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func attribute(vbo uint32, location uint32, size int32, divisor uint32) {
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.EnableVertexAttribArray(location)
	gl.VertexAttribPointerWithOffset(location, size, gl.FLOAT, false, 0, 0)
	gl.VertexAttribDivisor(location, divisor)
}

// UpdateGeometry re-uploads every node attribute buffer and the edge index
// buffer from the model.
func (r *Renderer) UpdateGeometry() {
	m := r.model
	upload(r.positionVBO, m.Positions)
	upload(r.colorVBO, m.Colors)
	upload(r.intensityVBO, m.Intensities)
	upload(r.sizeVBO, m.Sizes)
	upload(r.outlineWidthVBO, m.OutlineWidths)
	upload(r.outlineColorVBO, m.OutlineColors)

	if int32(m.Len()) != r.nodeCount {
		upload(r.encodedIndexVBO, picking.EncodeAll(m.Len()))
	}

	// The element binding is edge VAO state; unbinding it would detach it
	gl.BindVertexArray(r.edgeVAO)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.edgeEBO)
	if len(m.IndexedEdges) > 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.IndexedEdges)*4, gl.Ptr(m.IndexedEdges), gl.DYNAMIC_DRAW)
	} else {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, 0, nil, gl.DYNAMIC_DRAW)
	}
	gl.BindVertexArray(0)

	r.nodeCount = int32(m.Len())
	r.indexCount = int32(len(m.IndexedEdges))
}

func upload(vbo uint32, data []float32) {
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	if len(data) == 0 {
		gl.BufferData(gl.ARRAY_BUFFER, 0, nil, gl.DYNAMIC_DRAW)
	} else {
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.DYNAMIC_DRAW)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// Resize records the drawable size of the default framebuffer.
func (r *Renderer) Resize(width, height int) {
	r.drawableW = int32(width)
	r.drawableH = int32(height)
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Draw renders one pass. A nil target draws to the default framebuffer.
// Picking passes clear to transparent zero and write encoded indices.
func (r *Renderer) Draw(target Target, pickingPass bool, cam *camera.Camera) {
	width, height := r.bind(target, pickingPass)
	if width <= 0 || height <= 0 {
		return
	}

	proj := cam.ProjectionMatrix(float32(width) / float32(height))
	view := cam.ViewMatrix()

	for _, step := range Plan(r.cfg.Use2D, pickingPass, r.skipEdges(pickingPass)) {
		switch step {
		case StepDepthTest:
			gl.Enable(gl.DEPTH_TEST)
			gl.DepthFunc(gl.LEQUAL)
		case StepNoDepthTest:
			gl.Disable(gl.DEPTH_TEST)
		case StepDepthWrite:
			gl.DepthMask(true)
		case StepNoDepthWrite:
			gl.DepthMask(false)
		case StepNodes:
			r.drawNodes(pickingPass, view, proj, cam)
		case StepEdges:
			r.drawEdges(view, proj)
		}
	}
	gl.BindVertexArray(0)
}

func (r *Renderer) bind(target Target, pickingPass bool) (int32, int32) {
	var width, height int32
	background := r.cfg.Background
	if target == nil {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		width, height = r.drawableW, r.drawableH
		gl.Viewport(0, 0, width, height)
	} else {
		target.Bind()
		width, height = target.Size()
		if bg, ok := target.Background(); ok {
			background = bg
		}
	}

	if pickingPass {
		background = [4]float32{}
	}
	gl.ClearColor(background[0], background[1], background[2], background[3])
	gl.DepthMask(true)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	return width, height
}

func (r *Renderer) drawNodes(pickingPass bool, view, proj mgl32.Mat4, cam *camera.Camera) {
	if r.nodeCount == 0 {
		return
	}

	program := r.nodeProgram
	if pickingPass {
		program = r.pickingProgram
		gl.Disable(gl.BLEND)
	} else {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	}

	program.Use()
	program.SetMat4("viewMatrix", view)
	program.SetMat4("projectionMatrix", proj)
	program.SetMat3("normalMatrix", cam.NormalMatrix())

	gl.BindVertexArray(r.nodeVAO)
	gl.DrawArraysInstanced(gl.TRIANGLE_STRIP, 0, 4, r.nodeCount)
}

func (r *Renderer) drawEdges(view, proj mgl32.Mat4) {
	if r.indexCount == 0 {
		return
	}

	gl.Enable(gl.BLEND)
	if r.cfg.AdditiveBlending {
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE)
	} else {
		gl.BlendFuncSeparate(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA, gl.ONE, gl.ONE)
	}

	r.edgeProgram.Use()
	r.edgeProgram.SetMat4("projectionViewMatrix", proj.Mul4(view))
	r.edgeProgram.SetFloat("linesIntensity", r.cfg.EdgesIntensity)

	gl.BindVertexArray(r.edgeVAO)
	gl.DrawElementsWithOffset(gl.LINES, r.indexCount, gl.UNSIGNED_INT, 0)
}

func (r *Renderer) skipEdges(pickingPass bool) bool {
	return !pickingPass && r.cfg.FastEdges && r.gestureActive
}

// SetGestureActive marks a drag or wheel gesture in progress.
func (r *Renderer) SetGestureActive(active bool) { r.gestureActive = active }

// Background returns the clear color of the visible pass.
func (r *Renderer) Background() [4]float32 { return r.cfg.Background }

// SetBackground sets the clear color of the visible pass.
func (r *Renderer) SetBackground(c [4]float32) { r.cfg.Background = c }

// EdgesIntensity returns the edge alpha multiplier.
func (r *Renderer) EdgesIntensity() float32 { return r.cfg.EdgesIntensity }

// SetEdgesIntensity sets the edge alpha multiplier.
func (r *Renderer) SetEdgesIntensity(v float32) { r.cfg.EdgesIntensity = v }

// AdditiveBlending reports whether edges blend additively.
func (r *Renderer) AdditiveBlending() bool { return r.cfg.AdditiveBlending }

// SetAdditiveBlending switches edge blending mode.
func (r *Renderer) SetAdditiveBlending(v bool) { r.cfg.AdditiveBlending = v }

// FastEdges reports whether edges are hidden during gestures.
func (r *Renderer) FastEdges() bool { return r.cfg.FastEdges }

// SetFastEdges hides edges during gestures when enabled.
func (r *Renderer) SetFastEdges(v bool) { r.cfg.FastEdges = v }

// Destroy releases all GL resources.
func (r *Renderer) Destroy() {
	logger.Info("closing renderer")
	for _, p := range []*shader.Program{r.nodeProgram, r.pickingProgram, r.edgeProgram} {
		if p != nil {
			p.Delete()
		}
	}
	for _, vao := range []*uint32{&r.nodeVAO, &r.edgeVAO} {
		if *vao != 0 {
			gl.DeleteVertexArrays(1, vao)
			*vao = 0
		}
	}
	buffers := []*uint32{
		&r.quadVBO, &r.positionVBO, &r.colorVBO, &r.intensityVBO, &r.sizeVBO,
		&r.outlineWidthVBO, &r.outlineColorVBO, &r.encodedIndexVBO, &r.edgeEBO,
	}
	for _, b := range buffers {
		if *b != 0 {
			gl.DeleteBuffers(1, b)
			*b = 0
		}
	}
}
