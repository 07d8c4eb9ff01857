package metadata

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	/** @brief Not a resource the preview loads. */
	ResourceTypeNone ResourceType = iota
	/** @brief Image resource type, decoded into RGBA8 pixels. */
	ResourceTypeImage
	/** @brief The preview configuration file. */
	ResourceTypeConfig
	/** @brief WGSL shader source. */
	ResourceTypeShader
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeImage:
		return "image"
	case ResourceTypeConfig:
		return "config"
	case ResourceTypeShader:
		return "shader"
	}
	return "none"
}

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	Type     ResourceType
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The resource data. */
	Data interface{}
}

/** @brief Parameters for loading an image. */
type ImageResourceParams struct {
	/** @brief Flip the image vertically so row 0 is the bottom row. */
	FlipY bool
	/** @brief Downscale images whose larger side exceeds this many pixels. 0 keeps the size. */
	MaxDimension uint32
}

/**
 * @brief Pixel data of a decoded image, always 4 channels of 8 bits,
 * rows top to bottom unless loaded with FlipY.
 */
type ImageResourceData struct {
	ChannelCount uint8
	Width        uint32
	Height       uint32
	/** @brief Indicates if any pixel is not fully opaque. */
	HasTransparency bool
	Pixels          []uint8
}

// AspectRatio is width over height, 1 for an empty image.
func (d *ImageResourceData) AspectRatio() float32 {
	if d == nil || d.Width == 0 || d.Height == 0 {
		return 1
	}
	return float32(d.Width) / float32(d.Height)
}
