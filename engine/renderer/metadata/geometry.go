package metadata

import (
	"fmt"

	"github.com/spaghettifunk/preview/engine/core"
	"github.com/spaghettifunk/preview/engine/math"
)

/** @brief The name of the default geometry. */
const DefaultGeometryName string = "default"

/**
 * @brief Represents the configuration for a geometry: the vertex sequence
 * and the index sequence that references it.
 */
type GeometryConfig struct {
	/** @brief The Name of the geometry. */
	Name string
	/** @brief An array of Vertices. */
	Vertices []Vertex
	/** @brief An array of Indices into Vertices. */
	Indices []Index

	Center     math.Vec3
	MinExtents math.Vec3
	MaxExtents math.Vec3
}

// ValidateIndices checks that the vertex sequence is addressable by 16-bit
// indices and that every index is a valid position in it. The error names
// the first offending index.
func (c *GeometryConfig) ValidateIndices() error {
	count := len(c.Vertices)
	if count > MaxVertexCount {
		return fmt.Errorf("geometry %q has %d vertices, max %d: %w", c.Name, count, MaxVertexCount, core.ErrTooManyVertices)
	}
	for pos, idx := range c.Indices {
		if int(idx) >= count {
			return fmt.Errorf("geometry %q: index %d at position %d, vertex count %d: %w", c.Name, idx, pos, count, core.ErrIndexOutOfRange)
		}
	}
	return nil
}

// Triangles resolves the index list as a triangle list.
func (c *GeometryConfig) Triangles() ([][3]Vertex, error) {
	if len(c.Indices)%3 != 0 {
		return nil, fmt.Errorf("geometry %q: %d indices is not a triangle list: %w", c.Name, len(c.Indices), core.ErrPartialTriangle)
	}
	if err := c.ValidateIndices(); err != nil {
		return nil, err
	}
	tris := make([][3]Vertex, 0, len(c.Indices)/3)
	for i := 0; i < len(c.Indices); i += 3 {
		tris = append(tris, [3]Vertex{
			c.Vertices[c.Indices[i]],
			c.Vertices[c.Indices[i+1]],
			c.Vertices[c.Indices[i+2]],
		})
	}
	return tris, nil
}

// CalculateExtents updates Center, MinExtents and MaxExtents from the
// vertex positions.
func (c *GeometryConfig) CalculateExtents() {
	if len(c.Vertices) == 0 {
		c.Center, c.MinExtents, c.MaxExtents = math.Vec3{}, math.Vec3{}, math.Vec3{}
		return
	}
	lo := c.Vertices[0].Position.ToVec3()
	hi := lo
	for _, v := range c.Vertices[1:] {
		p := v.Position.ToVec3()
		lo = math.Vec3{X: min(lo.X, p.X), Y: min(lo.Y, p.Y), Z: min(lo.Z, p.Z)}
		hi = math.Vec3{X: max(hi.X, p.X), Y: max(hi.Y, p.Y), Z: max(hi.Z, p.Z)}
	}
	c.MinExtents = lo
	c.MaxExtents = hi
	c.Center = lo.Add(hi).MulScalar(0.5)
}

/**
 * @brief Generates the configuration for a quad centered on the origin in
 * the XY plane, facing +Z. Vertices run counter-clockwise from the bottom
 * left corner and the indices are {0, 1, 2, 2, 3, 0}. V is flipped so the
 * top row of a texture appears at the top of the quad.
 */
func GenerateQuadConfig(width, height float32, name string) (*GeometryConfig, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("quad %q: width and height must be > 0, got %fx%f", name, width, height)
	}
	hw, hh := width*0.5, height*0.5
	cfg := &GeometryConfig{
		Name: name,
		Vertices: []Vertex{
			{Position: math.NewVec4(-hw, -hh, 0, 1), TextureCoordinate: math.NewVec2(0, 1)},
			{Position: math.NewVec4(hw, -hh, 0, 1), TextureCoordinate: math.NewVec2(1, 1)},
			{Position: math.NewVec4(hw, hh, 0, 1), TextureCoordinate: math.NewVec2(1, 0)},
			{Position: math.NewVec4(-hw, hh, 0, 1), TextureCoordinate: math.NewVec2(0, 0)},
		},
		Indices: []Index{0, 1, 2, 2, 3, 0},
	}
	cfg.CalculateExtents()
	return cfg, nil
}

/**
 * @brief Generates the configuration for a segmented plane in the XY plane.
 * Vertices are shared between neighbouring segments, row by row from the
 * bottom. Texture coordinates repeat tileX/tileY times.
 */
func GeneratePlaneConfig(width, height float32, xSegmentCount, ySegmentCount uint32, tileX, tileY float32, name string) (*GeometryConfig, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("plane %q: width and height must be > 0, got %fx%f", name, width, height)
	}
	if xSegmentCount < 1 {
		core.LogWarn("xSegmentCount must be a positive number. Defaulting to one.")
		xSegmentCount = 1
	}
	if ySegmentCount < 1 {
		core.LogWarn("ySegmentCount must be a positive number. Defaulting to one.")
		ySegmentCount = 1
	}
	if tileX == 0 {
		core.LogWarn("tileX must be nonzero. Defaulting to one.")
		tileX = 1.0
	}
	if tileY == 0 {
		core.LogWarn("tileY must be nonzero. Defaulting to one.")
		tileY = 1.0
	}

	cols, rows := uint64(xSegmentCount)+1, uint64(ySegmentCount)+1
	if cols*rows > MaxVertexCount {
		return nil, fmt.Errorf("plane %q: %dx%d segments need %d vertices, max %d: %w",
			name, xSegmentCount, ySegmentCount, cols*rows, MaxVertexCount, core.ErrTooManyVertices)
	}

	cfg := &GeometryConfig{
		Name:     name,
		Vertices: make([]Vertex, 0, cols*rows),
		Indices:  make([]Index, 0, uint64(xSegmentCount)*uint64(ySegmentCount)*6),
	}

	segW := width / float32(xSegmentCount)
	segH := height / float32(ySegmentCount)
	hw, hh := width*0.5, height*0.5
	for y := uint64(0); y < rows; y++ {
		for x := uint64(0); x < cols; x++ {
			u := float32(x) / float32(xSegmentCount) * tileX
			v := (1 - float32(y)/float32(ySegmentCount)) * tileY
			cfg.Vertices = append(cfg.Vertices, Vertex{
				Position:          math.NewVec4(float32(x)*segW-hw, float32(y)*segH-hh, 0, 1),
				TextureCoordinate: math.NewVec2(u, v),
			})
		}
	}

	for y := uint64(0); y < uint64(ySegmentCount); y++ {
		for x := uint64(0); x < uint64(xSegmentCount); x++ {
			bl := Index(y*cols + x)
			br := bl + 1
			tl := Index((y+1)*cols + x)
			tr := tl + 1
			cfg.Indices = append(cfg.Indices, bl, br, tr, tr, tl, bl)
		}
	}

	cfg.CalculateExtents()
	return cfg, nil
}
