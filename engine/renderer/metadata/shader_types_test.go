package metadata

import (
	"testing"
	"unsafe"
)

func TestSharedLayoutSizes(t *testing.T) {
	tests := []struct {
		name string
		got  uintptr
		want uintptr
	}{
		{"vertex", unsafe.Sizeof(Vertex{}), 6 * unsafe.Sizeof(float32(0))},
		{"vertex position offset", unsafe.Offsetof(Vertex{}.Position), 0},
		{"vertex texture coordinate offset", unsafe.Offsetof(Vertex{}.TextureCoordinate), 4 * unsafe.Sizeof(float32(0))},
		{"matrix", unsafe.Sizeof(Matrix{}), 16 * unsafe.Sizeof(float32(0))},
		{"index", unsafe.Sizeof(Index(0)), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %d bytes, want %d", tt.got, tt.want)
			}
		})
	}
}

func TestVertexArrayHasNoPadding(t *testing.T) {
	vs := make([]Vertex, 3)
	first := uintptr(unsafe.Pointer(&vs[0]))
	third := uintptr(unsafe.Pointer(&vs[2]))
	if third-first != 2*VertexSize {
		t.Errorf("vertex array stride = %d, want %d", (third-first)/2, VertexSize)
	}
}

func TestIndexRange(t *testing.T) {
	top := Index(MaxIndex)
	if uint32(top) != 65535 {
		t.Fatalf("MaxIndex = %d, want 65535", top)
	}
	// Unsigned: wrapping past the maximum returns to zero.
	if top+1 != 0 {
		t.Errorf("Index(65535)+1 = %d, want 0", top+1)
	}
	if MaxVertexCount != 65536 {
		t.Errorf("MaxVertexCount = %d, want 65536", MaxVertexCount)
	}
}
