package metadata

import (
	"encoding/binary"
	"fmt"
	m "math"
	"unsafe"

	"github.com/spaghettifunk/preview/engine/core"
	"github.com/spaghettifunk/preview/engine/math"
)

// Buffers hold the raw little-endian layout, the byte order of every GPU
// the preview targets. There is no header and no version field.

func appendFloat32(dst []byte, f float32) []byte {
	return binary.LittleEndian.AppendUint32(dst, m.Float32bits(f))
}

func readFloat32(b []byte) float32 {
	return m.Float32frombits(binary.LittleEndian.Uint32(b))
}

// AppendVertex appends the packed VertexSize bytes of v to dst.
func AppendVertex(dst []byte, v Vertex) []byte {
	dst = appendFloat32(dst, v.Position.X)
	dst = appendFloat32(dst, v.Position.Y)
	dst = appendFloat32(dst, v.Position.Z)
	dst = appendFloat32(dst, v.Position.W)
	dst = appendFloat32(dst, v.TextureCoordinate.X)
	dst = appendFloat32(dst, v.TextureCoordinate.Y)
	return dst
}

// PutVertex writes v at the start of dst.
func PutVertex(dst []byte, v Vertex) error {
	if len(dst) < VertexSize {
		return fmt.Errorf("vertex needs %d bytes, have %d: %w", VertexSize, len(dst), core.ErrBufferTooSmall)
	}
	AppendVertex(dst[:0], v)
	return nil
}

// DecodeVertex reads one Vertex from the start of b.
func DecodeVertex(b []byte) (Vertex, error) {
	if len(b) < VertexSize {
		return Vertex{}, fmt.Errorf("vertex needs %d bytes, have %d: %w", VertexSize, len(b), core.ErrBufferTooSmall)
	}
	return Vertex{
		Position: math.Vec4{
			X: readFloat32(b[0:]),
			Y: readFloat32(b[4:]),
			Z: readFloat32(b[8:]),
			W: readFloat32(b[12:]),
		},
		TextureCoordinate: math.Vec2{
			X: readFloat32(b[16:]),
			Y: readFloat32(b[20:]),
		},
	}, nil
}

// EncodeVertices lays vs out with the given stride. Bytes between the end
// of a vertex and the next stride boundary are zero.
func EncodeVertices(vs []Vertex, stride uint32) ([]byte, error) {
	if err := ValidateStride(stride); err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(vs)*int(stride))
	pad := make([]byte, stride-VertexSize)
	for _, v := range vs {
		out = AppendVertex(out, v)
		out = append(out, pad...)
	}
	return out, nil
}

// DecodeVertices reads a vertex buffer written with the given stride.
func DecodeVertices(b []byte, stride uint32) ([]Vertex, error) {
	if err := ValidateStride(stride); err != nil {
		return nil, err
	}
	if len(b)%int(stride) != 0 {
		return nil, fmt.Errorf("%d bytes with stride %d: %w", len(b), stride, core.ErrTrailingBytes)
	}
	vs := make([]Vertex, 0, len(b)/int(stride))
	for off := 0; off < len(b); off += int(stride) {
		v, err := DecodeVertex(b[off:])
		if err != nil {
			return nil, err
		}
		vs = append(vs, v)
	}
	return vs, nil
}

// AppendMatrix appends the 16 floats of mat in storage order.
func AppendMatrix(dst []byte, mat Matrix) []byte {
	for _, f := range mat.MVP.Data {
		dst = appendFloat32(dst, f)
	}
	return dst
}

// DecodeMatrix reads one Matrix from the start of b.
func DecodeMatrix(b []byte) (Matrix, error) {
	if len(b) < MatrixSize {
		return Matrix{}, fmt.Errorf("matrix needs %d bytes, have %d: %w", MatrixSize, len(b), core.ErrBufferTooSmall)
	}
	var mat Matrix
	for i := range mat.MVP.Data {
		mat.MVP.Data[i] = readFloat32(b[i*FloatSize:])
	}
	return mat, nil
}

// AppendIndex appends one 16-bit index.
func AppendIndex(dst []byte, i Index) []byte {
	return binary.LittleEndian.AppendUint16(dst, uint16(i))
}

// DecodeIndex reads one Index from the start of b.
func DecodeIndex(b []byte) (Index, error) {
	if len(b) < IndexSize {
		return 0, fmt.Errorf("index needs %d bytes, have %d: %w", IndexSize, len(b), core.ErrBufferTooSmall)
	}
	return Index(binary.LittleEndian.Uint16(b)), nil
}

// EncodeIndices packs is into an index buffer.
func EncodeIndices(is []Index) []byte {
	out := make([]byte, 0, len(is)*IndexSize)
	for _, i := range is {
		out = AppendIndex(out, i)
	}
	return out
}

// DecodeIndices reads a whole index buffer.
func DecodeIndices(b []byte) ([]Index, error) {
	if len(b)%IndexSize != 0 {
		return nil, fmt.Errorf("%d bytes of %d-byte indices: %w", len(b), IndexSize, core.ErrTrailingBytes)
	}
	is := make([]Index, len(b)/IndexSize)
	for n := range is {
		is[n] = Index(binary.LittleEndian.Uint16(b[n*IndexSize:]))
	}
	return is, nil
}

// VertexBytes returns the memory of vs without copying. The layout checks
// in shader_types.go guarantee this equals EncodeVertices(vs, VertexSize)
// on little-endian hosts. The result aliases vs.
func VertexBytes(vs []Vertex) []byte {
	if len(vs) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&vs[0])), len(vs)*VertexSize)
}

// IndexBytes returns the memory of is without copying. The result aliases is.
func IndexBytes(is []Index) []byte {
	if len(is) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&is[0])), len(is)*IndexSize)
}

// MatrixBytes returns the memory of mat without copying. The result aliases mat.
func MatrixBytes(mat *Matrix) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(mat)), MatrixSize)
}
