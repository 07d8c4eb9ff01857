package metadata

import (
	"fmt"
	"sort"

	"github.com/spaghettifunk/preview/engine/core"
)

const (
	AttributeNamePosition          = "position"
	AttributeNameTextureCoordinate = "texcoord"
)

/**
 * @brief The binding slots the paired shader program reads from. They are
 * supplied by configuration; the layout never guesses them.
 */
type Bindings struct {
	/** @brief The vertex buffer binding (Vulkan binding, WebGPU buffer slot). */
	VertexBuffer uint32
	/** @brief The shader location of Vertex.Position. */
	PositionLocation uint32
	/** @brief The shader location of Vertex.TextureCoordinate. */
	TextureCoordinateLocation uint32
	/** @brief The descriptor set / bind group holding the Matrix uniform. */
	UniformGroup uint32
	/** @brief The binding of the Matrix uniform inside its group. */
	UniformBinding uint32
}

/**
 * @brief Represents a single attribute of the per-vertex input stage.
 */
type VertexAttribute struct {
	/** @brief The attribute Name. */
	Name string
	/** @brief The attribute type. */
	Type ShaderAttributeType
	/** @brief The shader Location. */
	Location uint32
	/** @brief The byte Offset inside one vertex. */
	Offset uint32
}

/**
 * @brief Describes how a vertex buffer of Vertex records is read.
 */
type VertexLayout struct {
	/** @brief The vertex buffer Binding. */
	Binding uint32
	/** @brief The distance in bytes between two consecutive vertices. */
	Stride uint32
	/** @brief The Attributes, ordered by offset. */
	Attributes []VertexAttribute
}

/**
 * @brief Describes where the Matrix uniform lives.
 */
type UniformLayout struct {
	Group   uint32
	Binding uint32
	/** @brief Size of the uniform block in bytes. */
	Size uint32
	/** @brief The shader stages reading the block. */
	Stages ShaderStage
}

/**
 * @brief An attribute as declared by configuration or by a shader.
 */
type AttributeDeclaration struct {
	Name     string
	Type     ShaderAttributeType
	Location uint32
}

// NewVertexLayout describes Vertex for the given bindings and stride. Use
// VertexSize for tightly packed buffers or VertexAlignedStride for consumers
// that align 4-component vectors to 16 bytes.
func NewVertexLayout(b Bindings, stride uint32) (VertexLayout, error) {
	l := VertexLayout{
		Binding: b.VertexBuffer,
		Stride:  stride,
		Attributes: []VertexAttribute{
			{
				Name:     AttributeNamePosition,
				Type:     ShaderAttribTypeFloat32_4,
				Location: b.PositionLocation,
				Offset:   VertexPositionOffset,
			},
			{
				Name:     AttributeNameTextureCoordinate,
				Type:     ShaderAttribTypeFloat32_2,
				Location: b.TextureCoordinateLocation,
				Offset:   VertexTextureCoordinateOffset,
			},
		},
	}
	if err := l.Validate(); err != nil {
		return VertexLayout{}, err
	}
	return l, nil
}

// NewUniformLayout describes the Matrix uniform slot.
func NewUniformLayout(b Bindings) UniformLayout {
	return UniformLayout{
		Group:   b.UniformGroup,
		Binding: b.UniformBinding,
		Size:    MatrixSize,
		Stages:  ShaderStageVertex,
	}
}

// ValidateStride reports whether stride can hold one Vertex and keeps every
// float component 4-byte aligned.
func ValidateStride(stride uint32) error {
	if stride < VertexSize {
		return fmt.Errorf("stride %d is smaller than a vertex (%d bytes): %w", stride, VertexSize, core.ErrInvalidStride)
	}
	if stride%FloatSize != 0 {
		return fmt.Errorf("stride %d is not a multiple of %d: %w", stride, FloatSize, core.ErrInvalidStride)
	}
	return nil
}

// Validate checks the stride, that locations are unique and that attributes
// neither overlap nor run past the stride.
func (l VertexLayout) Validate() error {
	if err := ValidateStride(l.Stride); err != nil {
		return err
	}

	attrs := make([]VertexAttribute, len(l.Attributes))
	copy(attrs, l.Attributes)
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].Offset < attrs[j].Offset })

	locations := make(map[uint32]string, len(attrs))
	var end uint32
	for _, a := range attrs {
		if other, ok := locations[a.Location]; ok {
			return fmt.Errorf("attributes %q and %q share location %d: %w", other, a.Name, a.Location, core.ErrLayoutMismatch)
		}
		locations[a.Location] = a.Name

		if a.Offset < end {
			return fmt.Errorf("attribute %q at offset %d overlaps the previous attribute: %w", a.Name, a.Offset, core.ErrLayoutMismatch)
		}
		end = a.Offset + a.Type.Size()
		if end > l.Stride {
			return fmt.Errorf("attribute %q ends at byte %d past stride %d: %w", a.Name, end, l.Stride, core.ErrLayoutMismatch)
		}
	}
	return nil
}

// Attribute looks an attribute up by name.
func (l VertexLayout) Attribute(name string) (VertexAttribute, bool) {
	for _, a := range l.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return VertexAttribute{}, false
}

// Matches checks a declared attribute list against the layout. Both sides
// must name the same attributes with the same type and location; order
// does not matter.
func (l VertexLayout) Matches(decls []AttributeDeclaration) error {
	if len(decls) != len(l.Attributes) {
		return fmt.Errorf("declared %d attributes, vertex has %d: %w", len(decls), len(l.Attributes), core.ErrLayoutMismatch)
	}
	seen := make(map[string]bool, len(decls))
	for _, d := range decls {
		if seen[d.Name] {
			return fmt.Errorf("attribute %q declared twice: %w", d.Name, core.ErrLayoutMismatch)
		}
		seen[d.Name] = true

		a, ok := l.Attribute(d.Name)
		if !ok {
			return fmt.Errorf("attribute %q is not part of the vertex: %w", d.Name, core.ErrLayoutMismatch)
		}
		if a.Type != d.Type {
			return fmt.Errorf("attribute %q declared as %s, vertex has %s: %w", d.Name, d.Type, a.Type, core.ErrLayoutMismatch)
		}
		if a.Location != d.Location {
			return fmt.Errorf("attribute %q declared at location %d, layout uses %d: %w", d.Name, d.Location, a.Location, core.ErrLayoutMismatch)
		}
	}
	return nil
}
