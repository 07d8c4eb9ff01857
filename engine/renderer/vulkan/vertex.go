package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/preview/engine/core"
	"github.com/spaghettifunk/preview/engine/renderer/metadata"
)

/** @brief The index type every preview draw is recorded with. */
const IndexType = vk.IndexTypeUint16

var attributeFormats = map[metadata.ShaderAttributeType]vk.Format{
	metadata.ShaderAttribTypeFloat32:   vk.FormatR32Sfloat,
	metadata.ShaderAttribTypeFloat32_2: vk.FormatR32g32Sfloat,
	metadata.ShaderAttribTypeFloat32_3: vk.FormatR32g32b32Sfloat,
	metadata.ShaderAttribTypeFloat32_4: vk.FormatR32g32b32a32Sfloat,
	metadata.ShaderAttribTypeInt8:      vk.FormatR8Sint,
	metadata.ShaderAttribTypeUint8:     vk.FormatR8Uint,
	metadata.ShaderAttribTypeInt16:     vk.FormatR16Sint,
	metadata.ShaderAttribTypeUint16:    vk.FormatR16Uint,
	metadata.ShaderAttribTypeInt32:     vk.FormatR32Sint,
	metadata.ShaderAttribTypeUint32:    vk.FormatR32Uint,
}

// StageFlags maps shader stages to Vulkan stage flags.
func StageFlags(stages metadata.ShaderStage) vk.ShaderStageFlags {
	var flags vk.ShaderStageFlagBits
	if stages.Has(metadata.ShaderStageVertex) {
		flags |= vk.ShaderStageVertexBit
	}
	if stages.Has(metadata.ShaderStageFragment) {
		flags |= vk.ShaderStageFragmentBit
	}
	return vk.ShaderStageFlags(flags)
}

// CullMode maps a face cull mode to its Vulkan flags.
func CullMode(m metadata.FaceCullMode) vk.CullModeFlags {
	switch m {
	case metadata.FaceCullModeFront:
		return vk.CullModeFlags(vk.CullModeFrontBit)
	case metadata.FaceCullModeBack:
		return vk.CullModeFlags(vk.CullModeBackBit)
	case metadata.FaceCullModeFrontAndBack:
		return vk.CullModeFlags(vk.CullModeFrontAndBack)
	}
	return vk.CullModeFlags(vk.CullModeNone)
}

// AttributeFormat maps an attribute type to its vertex input format.
// Matrices are not valid vertex inputs.
func AttributeFormat(t metadata.ShaderAttributeType) (vk.Format, error) {
	f, ok := attributeFormats[t]
	if !ok {
		return vk.FormatUndefined, fmt.Errorf("attribute type %s has no vertex format: %w", t, core.ErrLayoutMismatch)
	}
	return f, nil
}

/**
 * @brief Everything a Vulkan graphics pipeline needs to read the shared
 * vertex layout and the MVP uniform block.
 */
type PipelineInput struct {
	/** @brief The vertex buffer binding, one Vertex per Stride bytes. */
	Binding vk.VertexInputBindingDescription
	/** @brief Position and texture coordinate, ordered by offset. */
	Attributes []vk.VertexInputAttributeDescription
	/** @brief The descriptor set the uniform binding belongs to. */
	DescriptorSet uint32
	/** @brief The MVP uniform buffer binding, visible to the vertex stage. */
	UniformBinding vk.DescriptorSetLayoutBinding
	/** @brief Size of the uniform buffer range to bind. */
	UniformRange vk.DeviceSize
	IndexType    vk.IndexType
	CullMode     vk.CullModeFlags
}

/**
 * @brief Builds the Vulkan descriptions of the given vertex and uniform
 * layouts.
 */
func NewPipelineInput(layout metadata.VertexLayout, uniform metadata.UniformLayout) (*PipelineInput, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	in := &PipelineInput{
		Binding: vk.VertexInputBindingDescription{
			Binding:   layout.Binding,
			Stride:    layout.Stride,
			InputRate: vk.VertexInputRateVertex, // Move to next data entry for each vertex.
		},
		Attributes:    make([]vk.VertexInputAttributeDescription, 0, len(layout.Attributes)),
		DescriptorSet: uniform.Group,
		UniformBinding: vk.DescriptorSetLayoutBinding{
			Binding:         uniform.Binding,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			StageFlags:      StageFlags(uniform.Stages),
		},
		UniformRange: vk.DeviceSize(uniform.Size),
		IndexType:    IndexType,
		CullMode:     CullMode(metadata.PreviewCullMode),
	}

	for _, a := range layout.Attributes {
		format, err := AttributeFormat(a.Type)
		if err != nil {
			return nil, err
		}
		in.Attributes = append(in.Attributes, vk.VertexInputAttributeDescription{
			Binding:  layout.Binding,
			Location: a.Location,
			Format:   format,
			Offset:   a.Offset,
		})
	}
	return in, nil
}

/**
 * @brief The vertex input state for vkCreateGraphicsPipelines.
 */
func (in *PipelineInput) VertexInputState() vk.PipelineVertexInputStateCreateInfo {
	state := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   1,
		PVertexBindingDescriptions:      []vk.VertexInputBindingDescription{in.Binding},
		VertexAttributeDescriptionCount: uint32(len(in.Attributes)),
		PVertexAttributeDescriptions:    in.Attributes,
	}
	return state
}

/**
 * @brief The descriptor set layout holding the MVP uniform.
 */
func (in *PipelineInput) DescriptorSetLayout() vk.DescriptorSetLayoutCreateInfo {
	return vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: 1,
		PBindings:    []vk.DescriptorSetLayoutBinding{in.UniformBinding},
	}
}

/**
 * @brief The index buffer size in bytes for indexCount indices.
 */
func IndexBufferSize(indexCount uint32) vk.DeviceSize {
	return vk.DeviceSize(indexCount) * metadata.IndexSize
}

/**
 * @brief The uniform buffer slots of the frames in flight, each aligned so
 * it can be bound with a dynamic offset on any device.
 */
func (in *PipelineInput) UniformSlots() []metadata.MemoryRange {
	return metadata.UniformRanges(VULKAN_MAX_FRAMES_IN_FLIGHT, VULKAN_UNIFORM_BUFFER_ALIGNMENT)
}

/**
 * @brief The rasterization state for vkCreateGraphicsPipelines.
 */
func (in *PipelineInput) RasterizationState() vk.PipelineRasterizationStateCreateInfo {
	return vk.PipelineRasterizationStateCreateInfo{
		SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
		PolygonMode: vk.PolygonModeFill,
		LineWidth:   1.0,
		CullMode:    in.CullMode,
		FrontFace:   vk.FrontFaceCounterClockwise,
	}
}
