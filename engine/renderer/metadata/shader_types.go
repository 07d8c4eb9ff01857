package metadata

import (
	"unsafe"

	"github.com/spaghettifunk/preview/engine/math"
)

// The three records below are shared with the GPU preview shader. Field
// order, field count and component widths are part of that contract: the
// vertex stage reads Vertex through the attribute layout built in layout.go
// and the uniform block reads Matrix as 16 contiguous float32.

// Vertex is one point of renderable geometry.
type Vertex struct {
	// Position is a homogeneous (x, y, z, w) coordinate.
	Position math.Vec4
	// TextureCoordinate is the (u, v) used to sample the preview texture.
	TextureCoordinate math.Vec2
}

// Matrix is the per-draw transform uniform.
type Matrix struct {
	// MVP is the model-view-projection matrix. Its row-major row-vector
	// data is the column-major form of the matrix the shader applies as
	// mvp * position.
	MVP math.Mat4
}

// Index addresses one Vertex in a vertex sequence. The pipeline reads the
// index stream as 16-bit unsigned integers.
type Index uint16

const (
	// FloatSize is the width of every floating-point component.
	FloatSize = 4

	// VertexSize is the packed byte size of a Vertex: 4 + 2 float32.
	VertexSize = 6 * FloatSize
	// VertexPositionOffset is the byte offset of Vertex.Position.
	VertexPositionOffset = 0
	// VertexTextureCoordinateOffset is the byte offset of Vertex.TextureCoordinate.
	VertexTextureCoordinateOffset = 4 * FloatSize
	// VertexAlignedStride is the stride of a Vertex array when the consumer
	// aligns 4-component vectors to 16 bytes (Metal simd types, std140).
	VertexAlignedStride = 32

	// MatrixSize is the byte size of a Matrix: 16 float32.
	MatrixSize = 16 * FloatSize

	// IndexSize is the byte width of an Index.
	IndexSize = 2
	// MaxIndex is the largest value an Index can hold.
	MaxIndex = 1<<(8*IndexSize) - 1
	// MaxVertexCount is the longest vertex sequence an Index can address.
	MaxVertexCount = MaxIndex + 1
)

// Compile-time layout checks. Each line fails to build when the Go layout
// drifts from the shader layout: a larger size leaves a non-empty array
// type, a smaller one overflows uintptr.
var (
	_ [0]struct{} = [unsafe.Sizeof(Vertex{}) - VertexSize]struct{}{}
	_ [0]struct{} = [VertexSize - unsafe.Sizeof(Vertex{})]struct{}{}
	_ [0]struct{} = [unsafe.Offsetof(Vertex{}.Position) - VertexPositionOffset]struct{}{}
	_ [0]struct{} = [unsafe.Offsetof(Vertex{}.TextureCoordinate) - VertexTextureCoordinateOffset]struct{}{}
	_ [0]struct{} = [VertexTextureCoordinateOffset - unsafe.Offsetof(Vertex{}.TextureCoordinate)]struct{}{}
	_ [0]struct{} = [unsafe.Alignof(Vertex{}) - FloatSize]struct{}{}

	_ [0]struct{} = [unsafe.Sizeof(Matrix{}) - MatrixSize]struct{}{}
	_ [0]struct{} = [MatrixSize - unsafe.Sizeof(Matrix{})]struct{}{}
	_ [0]struct{} = [unsafe.Alignof(Matrix{}) - FloatSize]struct{}{}

	_ [0]struct{} = [unsafe.Sizeof(Index(0)) - IndexSize]struct{}{}
	_ [0]struct{} = [IndexSize - unsafe.Sizeof(Index(0))]struct{}{}
)
