package vulkan

import (
	"errors"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/preview/engine/core"
	"github.com/spaghettifunk/preview/engine/renderer/metadata"
)

var testBindings = metadata.Bindings{
	VertexBuffer:              1,
	PositionLocation:          2,
	TextureCoordinateLocation: 5,
	UniformGroup:              0,
	UniformBinding:            3,
}

func TestNewPipelineInput(t *testing.T) {
	for _, stride := range []uint32{metadata.VertexSize, metadata.VertexAlignedStride} {
		layout, err := metadata.NewVertexLayout(testBindings, stride)
		if err != nil {
			t.Fatalf("NewVertexLayout: %v", err)
		}
		in, err := NewPipelineInput(layout, metadata.NewUniformLayout(testBindings))
		if err != nil {
			t.Fatalf("NewPipelineInput: %v", err)
		}

		if in.Binding.Binding != 1 || in.Binding.Stride != stride || in.Binding.InputRate != vk.VertexInputRateVertex {
			t.Errorf("binding = %+v", in.Binding)
		}

		want := []vk.VertexInputAttributeDescription{
			{Binding: 1, Location: 2, Format: vk.FormatR32g32b32a32Sfloat, Offset: 0},
			{Binding: 1, Location: 5, Format: vk.FormatR32g32Sfloat, Offset: 16},
		}
		if len(in.Attributes) != len(want) {
			t.Fatalf("got %d attributes, want %d", len(in.Attributes), len(want))
		}
		for i := range want {
			got := in.Attributes[i]
			if got.Binding != want[i].Binding || got.Location != want[i].Location ||
				got.Format != want[i].Format || got.Offset != want[i].Offset {
				t.Errorf("attribute %d = %+v, want %+v", i, got, want[i])
			}
		}

		if in.DescriptorSet != 0 || in.UniformBinding.Binding != 3 {
			t.Errorf("uniform slot = set %d binding %d", in.DescriptorSet, in.UniformBinding.Binding)
		}
		if in.UniformBinding.DescriptorType != vk.DescriptorTypeUniformBuffer || in.UniformBinding.DescriptorCount != 1 {
			t.Errorf("uniform binding = %+v", in.UniformBinding)
		}
		if in.UniformBinding.StageFlags != vk.ShaderStageFlags(vk.ShaderStageVertexBit) {
			t.Errorf("uniform stage flags = %v", in.UniformBinding.StageFlags)
		}
		if in.UniformRange != metadata.MatrixSize {
			t.Errorf("uniform range = %d", in.UniformRange)
		}
		if in.IndexType != vk.IndexTypeUint16 {
			t.Errorf("index type = %v", in.IndexType)
		}

		state := in.VertexInputState()
		if state.VertexBindingDescriptionCount != 1 || state.VertexAttributeDescriptionCount != 2 {
			t.Errorf("vertex input state counts = %d/%d", state.VertexBindingDescriptionCount, state.VertexAttributeDescriptionCount)
		}
		if set := in.DescriptorSetLayout(); set.BindingCount != 1 || set.PBindings[0].Binding != 3 {
			t.Errorf("descriptor set layout = %+v", set)
		}
	}
}

func TestNewPipelineInputRejectsInvalidLayout(t *testing.T) {
	layout := metadata.VertexLayout{
		Stride: 16,
		Attributes: []metadata.VertexAttribute{
			{Name: "position", Type: metadata.ShaderAttribTypeFloat32_4},
		},
	}
	if _, err := NewPipelineInput(layout, metadata.UniformLayout{}); !errors.Is(err, core.ErrInvalidStride) {
		t.Errorf("error = %v, want ErrInvalidStride", err)
	}

	layout = metadata.VertexLayout{
		Stride: 64,
		Attributes: []metadata.VertexAttribute{
			{Name: "mvp", Type: metadata.ShaderAttribTypeMatrix4},
		},
	}
	if _, err := NewPipelineInput(layout, metadata.UniformLayout{}); !errors.Is(err, core.ErrLayoutMismatch) {
		t.Errorf("error = %v, want ErrLayoutMismatch", err)
	}
}

func TestIndexBufferSize(t *testing.T) {
	if got := IndexBufferSize(6); got != 12 {
		t.Errorf("IndexBufferSize(6) = %d, want 12", got)
	}
}

func TestCullMode(t *testing.T) {
	tests := map[metadata.FaceCullMode]vk.CullModeFlagBits{
		metadata.FaceCullModeNone:         vk.CullModeNone,
		metadata.FaceCullModeFront:        vk.CullModeFrontBit,
		metadata.FaceCullModeBack:         vk.CullModeBackBit,
		metadata.FaceCullModeFrontAndBack: vk.CullModeFrontAndBack,
	}
	for mode, want := range tests {
		if got := CullMode(mode); got != vk.CullModeFlags(want) {
			t.Errorf("CullMode(%d) = %v, want %v", mode, got, want)
		}
	}
}

func TestUniformSlots(t *testing.T) {
	layout, err := metadata.NewVertexLayout(testBindings, metadata.VertexSize)
	if err != nil {
		t.Fatal(err)
	}
	in, err := NewPipelineInput(layout, metadata.NewUniformLayout(testBindings))
	if err != nil {
		t.Fatal(err)
	}
	if rs := in.RasterizationState(); rs.CullMode != vk.CullModeFlags(vk.CullModeNone) {
		t.Errorf("the spinning quad must not be culled, got %v", rs.CullMode)
	}

	slots := in.UniformSlots()
	if len(slots) != VULKAN_MAX_FRAMES_IN_FLIGHT {
		t.Fatalf("%d slots, want %d", len(slots), VULKAN_MAX_FRAMES_IN_FLIGHT)
	}
	for i, s := range slots {
		if s.Offset != uint64(i)*VULKAN_UNIFORM_BUFFER_ALIGNMENT || s.Size != metadata.MatrixSize {
			t.Errorf("slot %d = %+v", i, s)
		}
	}
}

func TestStageFlags(t *testing.T) {
	both := metadata.ShaderStageVertex | metadata.ShaderStageFragment
	want := vk.ShaderStageFlags(vk.ShaderStageVertexBit | vk.ShaderStageFragmentBit)
	if got := StageFlags(both); got != want {
		t.Errorf("StageFlags(vertex|fragment) = %v, want %v", got, want)
	}
}
