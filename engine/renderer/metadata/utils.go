package metadata

/** @brief A range of bytes inside a buffer. */
type MemoryRange struct {
	/** @brief The Offset in bytes. */
	Offset uint64
	/** @brief The size in bytes. */
	Size uint64
}

func GetAlignedRange(offset, size, granularity uint64) *MemoryRange {
	m := &MemoryRange{
		Offset: GetAligned(offset, granularity),
		Size:   GetAligned(size, granularity),
	}
	return m
}

// GetAligned rounds operand up to a multiple of granularity, which must be a
// power of two.
func GetAligned(operand, granularity uint64) uint64 {
	val := (operand + (granularity - 1)) &^ (granularity - 1)
	return val
}

/**
 * @brief Lays out count Matrix uniforms back to back in one buffer, each
 * starting on an alignment boundary, so every frame in flight owns a slot.
 */
func UniformRanges(count int, alignment uint64) []MemoryRange {
	ranges := make([]MemoryRange, 0, count)
	var offset uint64
	for i := 0; i < count; i++ {
		r := GetAlignedRange(offset, MatrixSize, alignment)
		ranges = append(ranges, MemoryRange{Offset: r.Offset, Size: MatrixSize})
		offset = r.Offset + r.Size
	}
	return ranges
}
