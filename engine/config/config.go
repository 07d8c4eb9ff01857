package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/preview/engine/core"
	"github.com/spaghettifunk/preview/engine/math"
	"github.com/spaghettifunk/preview/engine/renderer/metadata"
)

// Config is the preview configuration, read from a TOML file.
type Config struct {
	Log     LogConfig     `toml:"log"`
	Layout  LayoutConfig  `toml:"layout"`
	Uniform UniformConfig `toml:"uniform"`
	Camera  CameraConfig  `toml:"camera"`
	Preview PreviewConfig `toml:"preview"`

	// path the configuration was loaded from, empty for parsed data.
	path string
}

type LogConfig struct {
	Level string `toml:"level"`
}

/**
 * @brief The vertex buffer the shader reads. Every binding and location is
 * declared here, the library has no built-in numbers for them.
 */
type LayoutConfig struct {
	/** @brief Bytes between consecutive vertices, 24 packed or 32 for 16-byte aligned consumers. */
	Stride              uint32            `toml:"stride"`
	VertexBufferBinding *uint32           `toml:"vertex_buffer_binding"`
	Attributes          []AttributeConfig `toml:"attributes"`
}

type AttributeConfig struct {
	Name     string  `toml:"name"`
	Type     string  `toml:"type"`
	Location *uint32 `toml:"location"`
}

/** @brief The slot of the MVP uniform block. */
type UniformConfig struct {
	Group   *uint32 `toml:"group"`
	Binding *uint32 `toml:"binding"`
}

type CameraConfig struct {
	FovDegrees float32    `toml:"fov_degrees"`
	Near       float32    `toml:"near"`
	Far        float32    `toml:"far"`
	Position   [3]float32 `toml:"position"`
	Target     [3]float32 `toml:"target"`
}

type PreviewConfig struct {
	/** @brief Image mapped onto the quad, relative to the config file. Empty uses a square quad. */
	Texture string `toml:"texture"`
	/** @brief Number of frames to build, 0 runs until cancelled. */
	Frames               uint64  `toml:"frames"`
	FrameRate            float64 `toml:"frame_rate"`
	SpinDegreesPerSecond float32 `toml:"spin_degrees_per_second"`
	OutputDir            string  `toml:"output_dir"`
}

const (
	defaultLogLevel   = "info"
	defaultFovDegrees = 45.0
	defaultNear       = 0.1
	defaultFar        = 100.0
	defaultFrameRate  = 60.0
	defaultSpin       = 90.0
	defaultOutputDir  = "out"
)

// Default returns the values used for everything a file leaves out. The
// layout and uniform sections have no defaults.
func Default() *Config {
	return &Config{
		Log:    LogConfig{Level: defaultLogLevel},
		Layout: LayoutConfig{Stride: metadata.VertexSize},
		Camera: CameraConfig{
			FovDegrees: defaultFovDegrees,
			Near:       defaultNear,
			Far:        defaultFar,
			Position:   [3]float32{0, 0, 2},
		},
		Preview: PreviewConfig{
			FrameRate:            defaultFrameRate,
			SpinDegreesPerSecond: defaultSpin,
			OutputDir:            defaultOutputDir,
		},
	}
}

// Load reads and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.path = path
	return cfg, nil
}

// Parse decodes TOML data over the defaults and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every binding is declared and that the declared
// attributes describe the shared vertex layout.
func (c *Config) Validate() error {
	if _, err := core.ParseLogLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	if c.Layout.VertexBufferBinding == nil {
		return fmt.Errorf("layout.vertex_buffer_binding is not set: %w", core.ErrLayoutMismatch)
	}
	if c.Uniform.Group == nil || c.Uniform.Binding == nil {
		return fmt.Errorf("uniform.group and uniform.binding must both be set: %w", core.ErrLayoutMismatch)
	}
	decls, err := c.Declarations()
	if err != nil {
		return err
	}
	layout, err := c.VertexLayout()
	if err != nil {
		return err
	}
	if err := layout.Matches(decls); err != nil {
		return err
	}

	if c.Camera.FovDegrees <= 0 || c.Camera.FovDegrees >= 180 {
		return fmt.Errorf("camera.fov_degrees %.2f must be between 0 and 180", c.Camera.FovDegrees)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("camera clip planes near=%.3f far=%.3f are invalid", c.Camera.Near, c.Camera.Far)
	}
	if c.Camera.Position == c.Camera.Target {
		return fmt.Errorf("camera.position and camera.target must differ")
	}
	if c.Preview.FrameRate <= 0 {
		return fmt.Errorf("preview.frame_rate must be > 0")
	}
	return nil
}

// Declarations converts the [[layout.attributes]] tables.
func (c *Config) Declarations() ([]metadata.AttributeDeclaration, error) {
	decls := make([]metadata.AttributeDeclaration, 0, len(c.Layout.Attributes))
	for i, a := range c.Layout.Attributes {
		if a.Location == nil {
			return nil, fmt.Errorf("layout.attributes[%d] '%s' has no location: %w", i, a.Name, core.ErrLayoutMismatch)
		}
		t, err := metadata.ShaderAttributeTypeFromString(a.Type)
		if err != nil {
			return nil, fmt.Errorf("layout.attributes[%d] '%s': %w", i, a.Name, err)
		}
		decls = append(decls, metadata.AttributeDeclaration{Name: a.Name, Type: t, Location: *a.Location})
	}
	return decls, nil
}

// Bindings collects the declared binding indices. Call it on a validated
// configuration.
func (c *Config) Bindings() metadata.Bindings {
	b := metadata.Bindings{}
	if c.Layout.VertexBufferBinding != nil {
		b.VertexBuffer = *c.Layout.VertexBufferBinding
	}
	if c.Uniform.Group != nil {
		b.UniformGroup = *c.Uniform.Group
	}
	if c.Uniform.Binding != nil {
		b.UniformBinding = *c.Uniform.Binding
	}
	for _, a := range c.Layout.Attributes {
		if a.Location == nil {
			continue
		}
		switch a.Name {
		case metadata.AttributeNamePosition:
			b.PositionLocation = *a.Location
		case metadata.AttributeNameTextureCoordinate:
			b.TextureCoordinateLocation = *a.Location
		}
	}
	return b
}

func (c *Config) VertexLayout() (metadata.VertexLayout, error) {
	return metadata.NewVertexLayout(c.Bindings(), c.Layout.Stride)
}

func (c *Config) UniformLayout() metadata.UniformLayout {
	return metadata.NewUniformLayout(c.Bindings())
}

func (c *Config) CameraPosition() math.Vec3 {
	return math.NewVec3(c.Camera.Position[0], c.Camera.Position[1], c.Camera.Position[2])
}

func (c *Config) CameraTarget() math.Vec3 {
	return math.NewVec3(c.Camera.Target[0], c.Camera.Target[1], c.Camera.Target[2])
}

// Path is the file the configuration came from.
func (c *Config) Path() string {
	return c.path
}

// Resolve makes a path from the configuration relative to the directory of
// the configuration file.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.path == "" {
		return p
	}
	return filepath.Join(filepath.Dir(c.path), p)
}

// TexturePath is the resolved preview texture, empty when none is set.
func (c *Config) TexturePath() string {
	return c.Resolve(c.Preview.Texture)
}
