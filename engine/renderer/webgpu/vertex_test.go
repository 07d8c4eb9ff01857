package webgpu

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/spaghettifunk/preview/engine/core"
	"github.com/spaghettifunk/preview/engine/renderer/metadata"
)

func TestNewPipelineInput(t *testing.T) {
	b := metadata.Bindings{
		VertexBuffer:              0,
		PositionLocation:          0,
		TextureCoordinateLocation: 1,
		UniformGroup:              2,
		UniformBinding:            0,
	}
	layout, err := metadata.NewVertexLayout(b, metadata.VertexAlignedStride)
	if err != nil {
		t.Fatalf("NewVertexLayout: %v", err)
	}
	in, err := NewPipelineInput(layout, metadata.NewUniformLayout(b))
	if err != nil {
		t.Fatalf("NewPipelineInput: %v", err)
	}

	vb := in.VertexBuffer
	if vb.ArrayStride != metadata.VertexAlignedStride || vb.StepMode != gputypes.VertexStepModeVertex {
		t.Errorf("vertex buffer layout = %+v", vb)
	}
	want := []gputypes.VertexAttribute{
		{Format: gputypes.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 0},
		{Format: gputypes.VertexFormatFloat32x2, Offset: 16, ShaderLocation: 1},
	}
	if len(vb.Attributes) != len(want) {
		t.Fatalf("got %d attributes, want %d", len(vb.Attributes), len(want))
	}
	for i := range want {
		if vb.Attributes[i] != want[i] {
			t.Errorf("attribute %d = %+v, want %+v", i, vb.Attributes[i], want[i])
		}
	}

	if in.Group != 2 || in.Uniform.Binding != 0 || in.Uniform.Visibility != gputypes.ShaderStageVertex {
		t.Errorf("uniform entry = group %d %+v", in.Group, in.Uniform)
	}
	if in.Uniform.Buffer == nil || in.Uniform.Buffer.Type != gputypes.BufferBindingTypeUniform || in.Uniform.Buffer.MinBindingSize != 64 {
		t.Errorf("uniform buffer binding = %+v", in.Uniform.Buffer)
	}
	if in.Primitive.Topology != gputypes.PrimitiveTopologyTriangleList {
		t.Errorf("topology = %v", in.Primitive.Topology)
	}
}

func TestVertexFormat(t *testing.T) {
	if _, err := VertexFormat(metadata.ShaderAttribTypeMatrix4); !errors.Is(err, core.ErrLayoutMismatch) {
		t.Errorf("mat4 error = %v, want ErrLayoutMismatch", err)
	}
	if f, err := VertexFormat(metadata.ShaderAttribTypeFloat32_3); err != nil || f != gputypes.VertexFormatFloat32x3 {
		t.Errorf("vec3 = %v, %v", f, err)
	}
}

func TestBufferUsages(t *testing.T) {
	if VertexBufferUsage&gputypes.BufferUsageVertex == 0 || IndexBufferUsage&gputypes.BufferUsageIndex == 0 {
		t.Error("vertex/index usages are missing their binding flag")
	}
	if UniformBufferUsage&gputypes.BufferUsageCopyDst == 0 {
		t.Error("uniform buffer must accept queue writes")
	}
	if IndexFormat != gputypes.IndexFormatUint16 {
		t.Errorf("IndexFormat = %v", IndexFormat)
	}
}

func TestBufferSize(t *testing.T) {
	tests := map[int]uint64{0: 0, 6: 8, 12: 12, 24 * 4: 96, 13: 16}
	for n, want := range tests {
		if got := BufferSize(n); got != want {
			t.Errorf("BufferSize(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestCullMode(t *testing.T) {
	tests := map[metadata.FaceCullMode]gputypes.CullMode{
		metadata.FaceCullModeNone:         gputypes.CullModeNone,
		metadata.FaceCullModeFront:        gputypes.CullModeFront,
		metadata.FaceCullModeBack:         gputypes.CullModeBack,
		metadata.FaceCullModeFrontAndBack: gputypes.CullModeBack,
	}
	for mode, want := range tests {
		if got := CullMode(mode); got != want {
			t.Errorf("CullMode(%d) = %v, want %v", mode, got, want)
		}
	}
}

func TestVisibility(t *testing.T) {
	both := metadata.ShaderStageVertex | metadata.ShaderStageFragment
	if got := Visibility(both); got != gputypes.ShaderStagesVertexFragment {
		t.Errorf("Visibility(vertex|fragment) = %v", got)
	}
	if got := Visibility(0); got != gputypes.ShaderStageNone {
		t.Errorf("Visibility(0) = %v", got)
	}
}
