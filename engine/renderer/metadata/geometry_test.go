package metadata

import (
	"errors"
	"io"
	"testing"

	"github.com/spaghettifunk/preview/engine/core"
	"github.com/spaghettifunk/preview/engine/math"
)

func TestQuadReconstructsTwoTriangles(t *testing.T) {
	cfg, err := GenerateQuadConfig(1, 1, "quad")
	if err != nil {
		t.Fatalf("GenerateQuadConfig: %v", err)
	}
	if len(cfg.Vertices) != 4 {
		t.Fatalf("quad has %d vertices, want 4", len(cfg.Vertices))
	}
	wantIndices := []Index{0, 1, 2, 2, 3, 0}
	for i, idx := range wantIndices {
		if cfg.Indices[i] != idx {
			t.Fatalf("indices = %v, want %v", cfg.Indices, wantIndices)
		}
	}

	// Send the sequences through their byte buffers first, the way a
	// consumer reading GPU memory would see them.
	vb, err := EncodeVertices(cfg.Vertices, VertexSize)
	if err != nil {
		t.Fatalf("EncodeVertices: %v", err)
	}
	vertices, err := DecodeVertices(vb, VertexSize)
	if err != nil {
		t.Fatalf("DecodeVertices: %v", err)
	}
	indices, err := DecodeIndices(EncodeIndices(cfg.Indices))
	if err != nil {
		t.Fatalf("DecodeIndices: %v", err)
	}

	decoded := GeometryConfig{Name: "decoded", Vertices: vertices, Indices: indices}
	tris, err := decoded.Triangles()
	if err != nil {
		t.Fatalf("Triangles: %v", err)
	}
	if len(tris) != 2 {
		t.Fatalf("got %d triangles, want 2", len(tris))
	}

	bl := Vertex{Position: math.NewVec4(-0.5, -0.5, 0, 1), TextureCoordinate: math.NewVec2(0, 1)}
	br := Vertex{Position: math.NewVec4(0.5, -0.5, 0, 1), TextureCoordinate: math.NewVec2(1, 1)}
	tr := Vertex{Position: math.NewVec4(0.5, 0.5, 0, 1), TextureCoordinate: math.NewVec2(1, 0)}
	tl := Vertex{Position: math.NewVec4(-0.5, 0.5, 0, 1), TextureCoordinate: math.NewVec2(0, 0)}
	want := [][3]Vertex{{bl, br, tr}, {tr, tl, bl}}
	for i := range want {
		if tris[i] != want[i] {
			t.Errorf("triangle %d = %v, want %v", i, tris[i], want[i])
		}
	}

	for _, v := range cfg.Vertices {
		uv := v.TextureCoordinate
		if uv.X < 0 || uv.X > 1 || uv.Y < 0 || uv.Y > 1 {
			t.Errorf("texture coordinate %v outside 0..1", uv)
		}
	}
}

func TestQuadWindingIsCounterClockwise(t *testing.T) {
	cfg, _ := GenerateQuadConfig(2, 1, "quad")
	tris, err := cfg.Triangles()
	if err != nil {
		t.Fatalf("Triangles: %v", err)
	}
	for i, tri := range tris {
		a := tri[1].Position.ToVec3().Sub(tri[0].Position.ToVec3())
		b := tri[2].Position.ToVec3().Sub(tri[0].Position.ToVec3())
		if n := a.Cross(b); n.Z <= 0 {
			t.Errorf("triangle %d normal %v does not face +Z", i, n)
		}
	}
}

func TestValidateIndicesBoundary(t *testing.T) {
	vertices := make([]Vertex, 4)
	tests := []struct {
		name    string
		indices []Index
		wantErr error
	}{
		{"last vertex", []Index{0, 1, 3}, nil},
		{"vertex count", []Index{0, 1, 4}, core.ErrIndexOutOfRange},
		{"max index", []Index{MaxIndex}, core.ErrIndexOutOfRange},
		{"empty", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GeometryConfig{Name: tt.name, Vertices: vertices, Indices: tt.indices}
			err := cfg.ValidateIndices()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateIndices() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateIndicesFullRange(t *testing.T) {
	// The layout imposes no limit below 65535.
	cfg := GeometryConfig{
		Name:     "full",
		Vertices: make([]Vertex, MaxVertexCount),
		Indices:  []Index{0, MaxIndex},
	}
	if err := cfg.ValidateIndices(); err != nil {
		t.Errorf("ValidateIndices() = %v, want nil", err)
	}

	cfg.Vertices = make([]Vertex, MaxVertexCount+1)
	if err := cfg.ValidateIndices(); !errors.Is(err, core.ErrTooManyVertices) {
		t.Errorf("ValidateIndices() = %v, want ErrTooManyVertices", err)
	}
}

func TestTrianglesRejectsPartialTriangle(t *testing.T) {
	cfg := GeometryConfig{Name: "partial", Vertices: make([]Vertex, 3), Indices: []Index{0, 1}}
	if _, err := cfg.Triangles(); !errors.Is(err, core.ErrPartialTriangle) {
		t.Errorf("Triangles() with 2 indices = %v, want ErrPartialTriangle", err)
	}
}

func TestCalculateExtents(t *testing.T) {
	cfg, _ := GenerateQuadConfig(4, 2, "quad")
	if !cfg.MinExtents.Compare(math.NewVec3(-2, -1, 0), 1e-6) {
		t.Errorf("MinExtents = %v", cfg.MinExtents)
	}
	if !cfg.MaxExtents.Compare(math.NewVec3(2, 1, 0), 1e-6) {
		t.Errorf("MaxExtents = %v", cfg.MaxExtents)
	}
	if !cfg.Center.Compare(math.NewVec3Zero(), 1e-6) {
		t.Errorf("Center = %v", cfg.Center)
	}
}

func TestGeneratePlaneConfig(t *testing.T) {
	core.SetLogOutput(io.Discard)

	cfg, err := GeneratePlaneConfig(2, 2, 2, 3, 2, 1, "plane")
	if err != nil {
		t.Fatalf("GeneratePlaneConfig: %v", err)
	}
	if len(cfg.Vertices) != 3*4 {
		t.Errorf("vertex count = %d, want 12", len(cfg.Vertices))
	}
	if len(cfg.Indices) != 2*3*6 {
		t.Errorf("index count = %d, want 36", len(cfg.Indices))
	}
	if err := cfg.ValidateIndices(); err != nil {
		t.Errorf("ValidateIndices: %v", err)
	}
	// Bottom right corner is tiled twice horizontally.
	if uv := cfg.Vertices[2].TextureCoordinate; !uv.Compare(math.NewVec2(2, 1), 1e-6) {
		t.Errorf("bottom right uv = %v, want (2,1)", uv)
	}

	// Zero segments default to one.
	one, err := GeneratePlaneConfig(1, 1, 0, 0, 0, 0, "one")
	if err != nil {
		t.Fatalf("GeneratePlaneConfig: %v", err)
	}
	if len(one.Vertices) != 4 || len(one.Indices) != 6 {
		t.Errorf("1x1 plane has %d vertices and %d indices", len(one.Vertices), len(one.Indices))
	}

	// 255x255 segments need exactly 65536 vertices; one more column does not fit.
	if _, err := GeneratePlaneConfig(1, 1, 255, 255, 1, 1, "max"); err != nil {
		t.Errorf("255x255 plane: %v", err)
	}
	if _, err := GeneratePlaneConfig(1, 1, 256, 255, 1, 1, "too big"); !errors.Is(err, core.ErrTooManyVertices) {
		t.Errorf("256x255 plane error = %v, want ErrTooManyVertices", err)
	}
}

func TestGenerateQuadConfigRejectsEmpty(t *testing.T) {
	if _, err := GenerateQuadConfig(0, 1, "flat"); err == nil {
		t.Error("zero width quad should fail")
	}
}
