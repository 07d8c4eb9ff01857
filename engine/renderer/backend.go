package renderer

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/spaghettifunk/preview/engine/core"
	"github.com/spaghettifunk/preview/engine/renderer/metadata"
	"github.com/spaghettifunk/preview/engine/renderer/shaders"
	"github.com/spaghettifunk/preview/engine/renderer/vulkan"
	"github.com/spaghettifunk/preview/engine/renderer/webgpu"
	"github.com/spaghettifunk/preview/engine/systems"
)

// RendererBackend consumes the bytes and pipeline descriptions the
// preview builds.
type RendererBackend interface {
	Initialize(pipeline *Pipeline) error
	CreateGeometry(geometry *systems.Geometry) error
	DestroyGeometry(geometry *systems.Geometry) error
	DrawFrame(packet *FramePacket) error
	Shutdown() error
}

/**
 * @brief The preview pipeline: the compiled program and the layouts it
 * reads, described for each graphics API.
 */
type Pipeline struct {
	Program       *shaders.Program
	VertexLayout  metadata.VertexLayout
	UniformLayout metadata.UniformLayout
	Vulkan        *vulkan.PipelineInput
	WebGPU        *webgpu.PipelineInput
}

// NewPipeline describes program and layouts for every supported API.
func NewPipeline(program *shaders.Program, layout metadata.VertexLayout, uniform metadata.UniformLayout) (*Pipeline, error) {
	if program == nil {
		return nil, fmt.Errorf("pipeline without a shader program: %w", core.ErrNotInitialized)
	}
	vkInput, err := vulkan.NewPipelineInput(layout, uniform)
	if err != nil {
		return nil, err
	}
	wgpuInput, err := webgpu.NewPipelineInput(layout, uniform)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		Program:       program,
		VertexLayout:  layout,
		UniformLayout: uniform,
		Vulkan:        vkInput,
		WebGPU:        wgpuInput,
	}, nil
}

/**
 * @brief Everything needed to draw one frame: one geometry and the
 * bytes of its Matrix uniform.
 */
type FramePacket struct {
	FrameNumber uint64
	DeltaTime   float64
	Geometry    *systems.Geometry
	/** @brief The Matrix uniform, metadata.MatrixSize bytes. */
	Uniform     []byte
	IndexFormat gputypes.IndexFormat
}
