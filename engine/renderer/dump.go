package renderer

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/preview/engine/core"
	"github.com/spaghettifunk/preview/engine/renderer/metadata"
	"github.com/spaghettifunk/preview/engine/renderer/shaders"
	"github.com/spaghettifunk/preview/engine/renderer/webgpu"
	"github.com/spaghettifunk/preview/engine/systems"
)

const (
	DumpShaderSourceFile = "preview.wgsl"
	DumpShaderBinaryFile = "preview.spv"
	DumpPipelineFile     = "pipeline.toml"
)

type dumpAttribute struct {
	Name     string `toml:"name"`
	Location uint32 `toml:"location"`
	Offset   uint32 `toml:"offset"`
	Vulkan   string `toml:"vulkan_format"`
	WebGPU   string `toml:"webgpu_format"`
}

type dumpPipeline struct {
	Stride         uint32          `toml:"stride"`
	Binding        uint32          `toml:"vertex_buffer_binding"`
	UniformGroup   uint32          `toml:"uniform_group"`
	UniformBinding uint32          `toml:"uniform_binding"`
	UniformSize    uint32          `toml:"uniform_size"`
	IndexSize      int             `toml:"index_size"`
	VertexEntry    string          `toml:"vertex_entry_point"`
	FragmentEntry  string          `toml:"fragment_entry_point"`
	SPIRVWords     int             `toml:"spirv_words"`
	UniformSlots   []uint64        `toml:"vulkan_uniform_slots"`
	CullMode       string          `toml:"webgpu_cull_mode"`
	Attributes     []dumpAttribute `toml:"attributes"`
}

// DumpBackend writes what a GPU backend would upload to files: the shader
// program, a pipeline summary, the vertex and index buffers and the uniform
// block of every frame. Files are written by a JobSystem and are complete
// once Shutdown returns.
type DumpBackend struct {
	outputDir string
	jobs      *systems.JobSystem

	mu       sync.Mutex
	pipeline *Pipeline
}

func NewDumpBackend(outputDir string) (*DumpBackend, error) {
	if outputDir == "" {
		return nil, fmt.Errorf("dump backend needs an output directory")
	}
	jobs, err := systems.NewJobSystem(runtime.NumCPU(), 16)
	if err != nil {
		return nil, err
	}
	return &DumpBackend{outputDir: outputDir, jobs: jobs}, nil
}

func (db *DumpBackend) OutputDir() string {
	return db.outputDir
}

func (db *DumpBackend) write(name string, data []byte) error {
	path := filepath.Join(db.outputDir, name)
	return db.jobs.Submit(metadata.JobTask{
		Name: "write " + name,
		OnStart: func() error {
			return os.WriteFile(path, data, 0o644)
		},
		OnComplete: func() {
			core.LogDebug("wrote %s (%d bytes)", path, len(data))
		},
	})
}

func summarize(p *Pipeline) dumpPipeline {
	s := dumpPipeline{
		Stride:         p.VertexLayout.Stride,
		Binding:        p.VertexLayout.Binding,
		UniformGroup:   p.UniformLayout.Group,
		UniformBinding: p.UniformLayout.Binding,
		UniformSize:    p.UniformLayout.Size,
		IndexSize:      metadata.IndexSize,
		VertexEntry:    shaders.VertexEntryPoint,
		FragmentEntry:  shaders.FragmentEntryPoint,
		SPIRVWords:     len(p.Program.SPIRV),
		CullMode:       p.WebGPU.Primitive.CullMode.String(),
	}
	for _, slot := range p.Vulkan.UniformSlots() {
		s.UniformSlots = append(s.UniformSlots, slot.Offset)
	}
	for i, a := range p.VertexLayout.Attributes {
		s.Attributes = append(s.Attributes, dumpAttribute{
			Name:     a.Name,
			Location: a.Location,
			Offset:   a.Offset,
			Vulkan:   fmt.Sprint(p.Vulkan.Attributes[i].Format),
			WebGPU:   fmt.Sprint(p.WebGPU.VertexBuffer.Attributes[i].Format),
		})
	}
	return s
}

func (db *DumpBackend) Initialize(pipeline *Pipeline) error {
	if err := os.MkdirAll(db.outputDir, 0o755); err != nil {
		return err
	}
	summary, err := toml.Marshal(summarize(pipeline))
	if err != nil {
		return err
	}

	db.mu.Lock()
	db.pipeline = pipeline
	db.mu.Unlock()

	if err := db.write(DumpShaderSourceFile, []byte(pipeline.Program.Source)); err != nil {
		return err
	}
	if err := db.write(DumpShaderBinaryFile, pipeline.Program.Bytes()); err != nil {
		return err
	}
	return db.write(DumpPipelineFile, summary)
}

// VertexFile is the name the vertex buffer of a geometry is written to.
func VertexFile(name string) string {
	return name + ".vertices.bin"
}

// IndexFile is the name the index buffer of a geometry is written to.
func IndexFile(name string) string {
	return name + ".indices.bin"
}

// UniformFile is the name the uniform block of a frame is written to.
func UniformFile(frame uint64) string {
	return fmt.Sprintf("uniform_%06d.bin", frame)
}

func (db *DumpBackend) CreateGeometry(g *systems.Geometry) error {
	db.mu.Lock()
	initialized := db.pipeline != nil
	db.mu.Unlock()
	if !initialized {
		return fmt.Errorf("create geometry: %w", core.ErrNotInitialized)
	}

	// Queue writes are padded to 4 bytes, the dump keeps the same size.
	indices := make([]byte, webgpu.BufferSize(len(g.IndexData)))
	copy(indices, g.IndexData)

	if err := db.write(VertexFile(g.Name), append([]byte(nil), g.VertexData...)); err != nil {
		return err
	}
	return db.write(IndexFile(g.Name), indices)
}

func (db *DumpBackend) DestroyGeometry(g *systems.Geometry) error {
	return nil
}

func (db *DumpBackend) DrawFrame(packet *FramePacket) error {
	if n := len(packet.Uniform); n < metadata.MatrixSize {
		return fmt.Errorf("uniform block is %d bytes: %w", n, core.ErrBufferTooSmall)
	} else if n > metadata.MatrixSize {
		return fmt.Errorf("uniform block is %d bytes: %w", n, core.ErrBufferTooLarge)
	}
	return db.write(UniformFile(packet.FrameNumber), append([]byte(nil), packet.Uniform...))
}

// Shutdown waits for every pending write.
func (db *DumpBackend) Shutdown() error {
	return db.jobs.Shutdown()
}
