package renderer

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spaghettifunk/preview/engine/core"
	"github.com/spaghettifunk/preview/engine/renderer/metadata"
	"github.com/spaghettifunk/preview/engine/renderer/webgpu"
	"github.com/spaghettifunk/preview/engine/systems"
)

// Renderer is the front-end the engine draws through. It uploads geometry
// to the backend when its generation changes and builds one FramePacket per
// draw.
type Renderer struct {
	backend     RendererBackend
	pipeline    *Pipeline
	frameNumber uint64
	// generation of every geometry the backend holds.
	uploaded map[uuid.UUID]uint16
}

func New(backend RendererBackend) *Renderer {
	return &Renderer{
		backend:  backend,
		uploaded: make(map[uuid.UUID]uint16),
	}
}

func (r *Renderer) Initialize(pipeline *Pipeline) error {
	if pipeline == nil {
		return fmt.Errorf("renderer initialize: %w", core.ErrNotInitialized)
	}
	if err := r.backend.Initialize(pipeline); err != nil {
		core.LogError("renderer backend failed to initialize: %s", err.Error())
		return err
	}
	r.pipeline = pipeline
	return nil
}

// Pipeline returns the pipeline the renderer was initialized with.
func (r *Renderer) Pipeline() *Pipeline {
	return r.pipeline
}

func (r *Renderer) FrameNumber() uint64 {
	return r.frameNumber
}

// checkGeometry verifies the geometry bytes were built for the pipeline
// layout and hold the counts they claim.
func (r *Renderer) checkGeometry(g *systems.Geometry) error {
	layout := r.pipeline.VertexLayout
	if g.Layout.Stride != layout.Stride || g.Layout.Binding != layout.Binding {
		return fmt.Errorf("geometry '%s' uses stride %d binding %d, pipeline expects stride %d binding %d: %w",
			g.Name, g.Layout.Stride, g.Layout.Binding, layout.Stride, layout.Binding, core.ErrLayoutMismatch)
	}
	if err := checkSize("vertex", g, len(g.VertexData), int(g.VertexCount)*int(layout.Stride)); err != nil {
		return err
	}
	return checkSize("index", g, len(g.IndexData), int(g.IndexCount)*metadata.IndexSize)
}

func checkSize(kind string, g *systems.Geometry, have, want int) error {
	switch {
	case have < want:
		return fmt.Errorf("geometry '%s' %s data is %d bytes, want %d: %w", g.Name, kind, have, want, core.ErrBufferTooSmall)
	case have > want:
		return fmt.Errorf("geometry '%s' %s data is %d bytes, want %d: %w", g.Name, kind, have, want, core.ErrBufferTooLarge)
	}
	return nil
}

func (r *Renderer) upload(g *systems.Geometry) error {
	if gen, ok := r.uploaded[g.ID]; ok && gen == g.Generation {
		return nil
	}
	if err := r.checkGeometry(g); err != nil {
		return err
	}
	if err := r.backend.CreateGeometry(g); err != nil {
		return err
	}
	r.uploaded[g.ID] = g.Generation
	return nil
}

/**
 * @brief Draws the geometry with the given transform as the next frame.
 */
func (r *Renderer) DrawFrame(g *systems.Geometry, mvp metadata.Matrix, deltaTime float64) error {
	if r.pipeline == nil {
		return fmt.Errorf("draw frame: %w", core.ErrNotInitialized)
	}
	if g == nil {
		return fmt.Errorf("draw frame without geometry: %w", core.ErrGeometryNotFound)
	}
	if err := r.upload(g); err != nil {
		core.LogError("%s", err)
		return err
	}

	packet := &FramePacket{
		FrameNumber: r.frameNumber,
		DeltaTime:   deltaTime,
		Geometry:    g,
		Uniform:     metadata.AppendMatrix(make([]byte, 0, metadata.MatrixSize), mvp),
		IndexFormat: webgpu.IndexFormat,
	}
	if err := r.backend.DrawFrame(packet); err != nil {
		core.LogError("frame %d failed: %s", r.frameNumber, err.Error())
		return err
	}
	r.frameNumber++
	return nil
}

// ReleaseGeometry drops the backend copy of a geometry.
func (r *Renderer) ReleaseGeometry(g *systems.Geometry) error {
	if _, ok := r.uploaded[g.ID]; !ok {
		return nil
	}
	delete(r.uploaded, g.ID)
	return r.backend.DestroyGeometry(g)
}

func (r *Renderer) Shutdown() error {
	r.uploaded = make(map[uuid.UUID]uint16)
	return r.backend.Shutdown()
}
