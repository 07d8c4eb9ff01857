package renderer

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/spaghettifunk/preview/engine/containers"
	"github.com/spaghettifunk/preview/engine/core"
	"github.com/spaghettifunk/preview/engine/renderer/metadata"
	"github.com/spaghettifunk/preview/engine/systems"
)

// CapturedGeometry is the backend copy of an uploaded geometry.
type CapturedGeometry struct {
	Name       string
	Generation uint16
	Stride     uint32
	VertexData []byte
	IndexData  []byte
}

// CapturedFrame is one drawn frame with its uniform decoded.
type CapturedFrame struct {
	FrameNumber uint64
	DeltaTime   float64
	GeometryID  uuid.UUID
	Generation  uint16
	IndexCount  uint32
	Uniform     metadata.Matrix
}

// CaptureBackend keeps everything it is given in memory. It stands in for
// a GPU in tests and in dry runs.
type CaptureBackend struct {
	mu          sync.Mutex
	pipeline    *Pipeline
	geometries  map[uuid.UUID]CapturedGeometry
	frames      *containers.RingQueue[CapturedFrame]
	totalFrames uint64
}

// NewCaptureBackend keeps the last maxFrames frames.
func NewCaptureBackend(maxFrames int) *CaptureBackend {
	return &CaptureBackend{
		geometries: make(map[uuid.UUID]CapturedGeometry),
		frames:     containers.NewRingQueue[CapturedFrame](maxFrames),
	}
}

func (cb *CaptureBackend) Initialize(pipeline *Pipeline) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.pipeline = pipeline
	return nil
}

func (cb *CaptureBackend) CreateGeometry(g *systems.Geometry) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.pipeline == nil {
		return fmt.Errorf("create geometry: %w", core.ErrNotInitialized)
	}
	cb.geometries[g.ID] = CapturedGeometry{
		Name:       g.Name,
		Generation: g.Generation,
		Stride:     g.Layout.Stride,
		VertexData: append([]byte(nil), g.VertexData...),
		IndexData:  append([]byte(nil), g.IndexData...),
	}
	return nil
}

func (cb *CaptureBackend) DestroyGeometry(g *systems.Geometry) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	delete(cb.geometries, g.ID)
	return nil
}

func (cb *CaptureBackend) DrawFrame(packet *FramePacket) error {
	mvp, err := metadata.DecodeMatrix(packet.Uniform)
	if err != nil {
		return err
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.pipeline == nil {
		return fmt.Errorf("draw frame: %w", core.ErrNotInitialized)
	}
	if _, ok := cb.geometries[packet.Geometry.ID]; !ok {
		return fmt.Errorf("geometry '%s' was never uploaded: %w", packet.Geometry.Name, core.ErrGeometryNotFound)
	}
	cb.frames.Push(CapturedFrame{
		FrameNumber: packet.FrameNumber,
		DeltaTime:   packet.DeltaTime,
		GeometryID:  packet.Geometry.ID,
		Generation:  packet.Geometry.Generation,
		IndexCount:  packet.Geometry.IndexCount,
		Uniform:     mvp,
	})
	cb.totalFrames++
	return nil
}

func (cb *CaptureBackend) Shutdown() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.geometries = make(map[uuid.UUID]CapturedGeometry)
	return nil
}

// Pipeline returns the pipeline passed to Initialize.
func (cb *CaptureBackend) Pipeline() *Pipeline {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.pipeline
}

// Frames returns the kept frames, oldest first.
func (cb *CaptureBackend) Frames() []CapturedFrame {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.frames.Items()
}

// FrameCount is the number of frames drawn, including dropped ones.
func (cb *CaptureBackend) FrameCount() uint64 {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.totalFrames
}

func (cb *CaptureBackend) Geometry(id uuid.UUID) (CapturedGeometry, bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	g, ok := cb.geometries[id]
	return g, ok
}
