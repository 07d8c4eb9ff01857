package webgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/spaghettifunk/preview/engine/core"
	"github.com/spaghettifunk/preview/engine/renderer/metadata"
)

// IndexFormat is the index format of every preview draw.
const IndexFormat = gputypes.IndexFormatUint16

// Buffer usages of the three preview buffers. All of them are written from
// the host through queue writes.
const (
	VertexBufferUsage  = gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst
	IndexBufferUsage   = gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst
	UniformBufferUsage = gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst
)

// VertexFormat maps an attribute type to a WebGPU vertex format. Only the
// 32-bit float types have one.
func VertexFormat(t metadata.ShaderAttributeType) (gputypes.VertexFormat, error) {
	switch t {
	case metadata.ShaderAttribTypeFloat32:
		return gputypes.VertexFormatFloat32, nil
	case metadata.ShaderAttribTypeFloat32_2:
		return gputypes.VertexFormatFloat32x2, nil
	case metadata.ShaderAttribTypeFloat32_3:
		return gputypes.VertexFormatFloat32x3, nil
	case metadata.ShaderAttribTypeFloat32_4:
		return gputypes.VertexFormatFloat32x4, nil
	}
	return 0, fmt.Errorf("attribute type %s has no vertex format: %w", t, core.ErrLayoutMismatch)
}

// PipelineInput holds the WebGPU descriptions of the vertex buffer and the
// MVP uniform of the preview pipeline.
type PipelineInput struct {
	// Slot is the vertex buffer slot passed to SetVertexBuffer.
	Slot         uint32
	VertexBuffer gputypes.VertexBufferLayout
	// Group is the bind group index of the uniform entry.
	Group     uint32
	Uniform   gputypes.BindGroupLayoutEntry
	Primitive gputypes.PrimitiveState
}

// NewPipelineInput describes the vertex and uniform layouts for a WebGPU
// render pipeline.
func NewPipelineInput(layout metadata.VertexLayout, uniform metadata.UniformLayout) (*PipelineInput, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	attributes := make([]gputypes.VertexAttribute, 0, len(layout.Attributes))
	for _, a := range layout.Attributes {
		format, err := VertexFormat(a.Type)
		if err != nil {
			return nil, err
		}
		attributes = append(attributes, gputypes.VertexAttribute{
			Format:         format,
			Offset:         uint64(a.Offset),
			ShaderLocation: a.Location,
		})
	}

	return &PipelineInput{
		Slot: layout.Binding,
		VertexBuffer: gputypes.VertexBufferLayout{
			ArrayStride: uint64(layout.Stride),
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes:  attributes,
		},
		Group: uniform.Group,
		Uniform: gputypes.BindGroupLayoutEntry{
			Binding:    uniform.Binding,
			Visibility: Visibility(uniform.Stages),
			Buffer: &gputypes.BufferBindingLayout{
				Type:           gputypes.BufferBindingTypeUniform,
				MinBindingSize: uint64(uniform.Size), // sizeof(Matrix)
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  gputypes.PrimitiveTopologyTriangleList,
			FrontFace: gputypes.FrontFaceCCW,
			CullMode:  CullMode(metadata.PreviewCullMode),
		},
	}, nil
}

// BufferSize rounds a buffer size up to the 4-byte multiple queue writes
// require. Six 16-bit indices fill 12 bytes, but three would need padding.
func BufferSize(n int) uint64 {
	return metadata.GetAligned(uint64(n), 4)
}

// Visibility maps shader stages to the stages a binding is visible to.
func Visibility(stages metadata.ShaderStage) gputypes.ShaderStages {
	var v gputypes.ShaderStages
	if stages.Has(metadata.ShaderStageVertex) {
		v |= gputypes.ShaderStageVertex
	}
	if stages.Has(metadata.ShaderStageFragment) {
		v |= gputypes.ShaderStageFragment
	}
	return v
}

// CullMode maps a face cull mode to WebGPU. WebGPU cannot cull both faces,
// that mode culls back faces only.
func CullMode(m metadata.FaceCullMode) gputypes.CullMode {
	switch m {
	case metadata.FaceCullModeFront:
		return gputypes.CullModeFront
	case metadata.FaceCullModeBack, metadata.FaceCullModeFrontAndBack:
		return gputypes.CullModeBack
	}
	return gputypes.CullModeNone
}
