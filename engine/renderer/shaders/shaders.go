// Package shaders holds the WGSL program paired with the shared vertex
// layout and compiles it to SPIR-V.
package shaders

import (
	"bytes"
	_ "embed"
	"encoding/binary"
	"fmt"
	"text/template"

	"github.com/gogpu/naga"
	"github.com/spaghettifunk/preview/engine/core"
	"github.com/spaghettifunk/preview/engine/renderer/metadata"
)

const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"

	// SPIRVMagic is the first word of every SPIR-V module.
	SPIRVMagic = 0x07230203
)

//go:embed preview.wgsl.tmpl
var previewTemplateSource string

var previewTemplate = template.Must(template.New("preview.wgsl").Funcs(template.FuncMap{
	"wgslType": wgslType,
}).Parse(previewTemplateSource))

// Program is the preview shader in source and compiled form.
type Program struct {
	Source string
	SPIRV  []uint32
}

// Bytes returns the SPIR-V words as a little-endian byte stream, the
// format of a .spv file.
func (p *Program) Bytes() []byte {
	out := make([]byte, 0, len(p.SPIRV)*4)
	for _, w := range p.SPIRV {
		out = binary.LittleEndian.AppendUint32(out, w)
	}
	return out
}

func wgslType(t metadata.ShaderAttributeType) (string, error) {
	switch t {
	case metadata.ShaderAttribTypeFloat32:
		return "f32", nil
	case metadata.ShaderAttribTypeFloat32_2:
		return "vec2<f32>", nil
	case metadata.ShaderAttribTypeFloat32_3:
		return "vec3<f32>", nil
	case metadata.ShaderAttribTypeFloat32_4:
		return "vec4<f32>", nil
	case metadata.ShaderAttribTypeInt32:
		return "i32", nil
	case metadata.ShaderAttribTypeUint32:
		return "u32", nil
	}
	return "", fmt.Errorf("attribute type %s cannot be a WGSL vertex input: %w", t, core.ErrLayoutMismatch)
}

// Source renders the preview program for the given layouts, so the
// locations and uniform slot the shader declares are the ones the
// pipeline binds.
func Source(layout metadata.VertexLayout, uniform metadata.UniformLayout) (string, error) {
	if err := layout.Validate(); err != nil {
		return "", err
	}
	for _, name := range []string{metadata.AttributeNamePosition, metadata.AttributeNameTextureCoordinate} {
		if _, ok := layout.Attribute(name); !ok {
			return "", fmt.Errorf("layout has no %q attribute: %w", name, core.ErrLayoutMismatch)
		}
	}
	if uniform.Size != metadata.MatrixSize {
		return "", fmt.Errorf("uniform block is %d bytes, the shader reads %d: %w", uniform.Size, metadata.MatrixSize, core.ErrLayoutMismatch)
	}

	var buf bytes.Buffer
	data := struct {
		Attributes []metadata.VertexAttribute
		Uniform    metadata.UniformLayout
	}{
		Attributes: layout.Attributes,
		Uniform:    uniform,
	}
	if err := previewTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Compile compiles WGSL source to SPIR-V words.
func Compile(src string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrShaderCompile, err)
	}
	if len(spirvBytes) < 4 || len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("%w: SPIR-V output is %d bytes", core.ErrShaderCompile, len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words
	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	if spirvCode[0] != SPIRVMagic {
		return nil, fmt.Errorf("%w: bad SPIR-V magic %#08x", core.ErrShaderCompile, spirvCode[0])
	}
	return spirvCode, nil
}

// Build renders and compiles the preview program.
func Build(layout metadata.VertexLayout, uniform metadata.UniformLayout) (*Program, error) {
	src, err := Source(layout, uniform)
	if err != nil {
		return nil, err
	}
	code, err := Compile(src)
	if err != nil {
		return nil, err
	}
	core.LogDebug("preview shader compiled: %d SPIR-V words", len(code))
	return &Program{Source: src, SPIRV: code}, nil
}
