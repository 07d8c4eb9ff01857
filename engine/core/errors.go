package core

import (
	"errors"
)

var (
	ErrIndexOutOfRange  = errors.New("index out of range of the vertex sequence")
	ErrTooManyVertices  = errors.New("vertex count exceeds what a 16-bit index can address")
	ErrBufferTooSmall   = errors.New("buffer too small for the layout")
	ErrTrailingBytes    = errors.New("buffer length is not a whole number of elements")
	ErrBufferTooLarge   = errors.New("buffer larger than the layout")
	ErrPartialTriangle  = errors.New("index count is not a multiple of three")
	ErrInvalidStride    = errors.New("invalid vertex stride")
	ErrLayoutMismatch   = errors.New("declared layout does not match the shared vertex layout")
	ErrGeometryNotFound = errors.New("geometry not found")
	ErrNoFreeSlot       = errors.New("no free geometry slot")
	ErrShaderCompile    = errors.New("shader compilation failed")
	ErrNotInitialized   = errors.New("not initialized")
	ErrUnknown          = errors.New("unknown")
)
