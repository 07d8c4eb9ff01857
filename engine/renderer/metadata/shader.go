package metadata

import (
	"fmt"
	"strings"
)

/** @brief Shader stages available in the system, usable as a bit set. */
type ShaderStage int

const (
	ShaderStageVertex   ShaderStage = 0x00000001
	ShaderStageFragment ShaderStage = 0x00000004
)

func (s ShaderStage) Has(stage ShaderStage) bool {
	return s&stage != 0
}

/** @brief Available attribute types. */
type ShaderAttributeType uint

const (
	ShaderAttribTypeFloat32   ShaderAttributeType = 0
	ShaderAttribTypeFloat32_2 ShaderAttributeType = 1
	ShaderAttribTypeFloat32_3 ShaderAttributeType = 2
	ShaderAttribTypeFloat32_4 ShaderAttributeType = 3
	ShaderAttribTypeMatrix4   ShaderAttributeType = 4
	ShaderAttribTypeInt8      ShaderAttributeType = 5
	ShaderAttribTypeUint8     ShaderAttributeType = 6
	ShaderAttribTypeInt16     ShaderAttributeType = 7
	ShaderAttribTypeUint16    ShaderAttributeType = 8
	ShaderAttribTypeInt32     ShaderAttributeType = 9
	ShaderAttribTypeUint32    ShaderAttributeType = 10
)

var shaderAttributeTypeNames = map[ShaderAttributeType]string{
	ShaderAttribTypeFloat32:   "f32",
	ShaderAttribTypeFloat32_2: "vec2",
	ShaderAttribTypeFloat32_3: "vec3",
	ShaderAttribTypeFloat32_4: "vec4",
	ShaderAttribTypeMatrix4:   "mat4",
	ShaderAttribTypeInt8:      "i8",
	ShaderAttribTypeUint8:     "u8",
	ShaderAttribTypeInt16:     "i16",
	ShaderAttribTypeUint16:    "u16",
	ShaderAttribTypeInt32:     "i32",
	ShaderAttribTypeUint32:    "u32",
}

// ShaderAttributeTypeFromString parses the type names used in the preview
// config file. A few common aliases are accepted as well.
func ShaderAttributeTypeFromString(s string) (ShaderAttributeType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "f32", "float", "float32":
		return ShaderAttribTypeFloat32, nil
	case "vec2", "vec2f", "float2", "float32x2":
		return ShaderAttribTypeFloat32_2, nil
	case "vec3", "vec3f", "float3", "float32x3":
		return ShaderAttribTypeFloat32_3, nil
	case "vec4", "vec4f", "float4", "float32x4":
		return ShaderAttribTypeFloat32_4, nil
	case "mat4", "mat4x4f", "float4x4":
		return ShaderAttribTypeMatrix4, nil
	case "i8", "int8":
		return ShaderAttribTypeInt8, nil
	case "u8", "uint8":
		return ShaderAttribTypeUint8, nil
	case "i16", "int16":
		return ShaderAttribTypeInt16, nil
	case "u16", "uint16":
		return ShaderAttribTypeUint16, nil
	case "i32", "int32":
		return ShaderAttribTypeInt32, nil
	case "u32", "uint32":
		return ShaderAttribTypeUint32, nil
	}
	return 0, fmt.Errorf("string %s is not a valid ShaderAttributeType", s)
}

func (t ShaderAttributeType) String() string {
	if name, ok := shaderAttributeTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ShaderAttributeType(%d)", uint(t))
}

// Size returns the attribute size in bytes.
func (t ShaderAttributeType) Size() uint32 {
	switch t {
	case ShaderAttribTypeInt8, ShaderAttribTypeUint8:
		return 1
	case ShaderAttribTypeInt16, ShaderAttribTypeUint16:
		return 2
	case ShaderAttribTypeFloat32, ShaderAttribTypeInt32, ShaderAttribTypeUint32:
		return 4
	case ShaderAttribTypeFloat32_2:
		return 8
	case ShaderAttribTypeFloat32_3:
		return 12
	case ShaderAttribTypeFloat32_4:
		return 16
	case ShaderAttribTypeMatrix4:
		return 64
	}
	return 0
}
