package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spaghettifunk/preview/engine/core"
	"github.com/spaghettifunk/preview/engine/renderer/metadata"
)

const validConfig = `
[log]
level = "debug"

[layout]
stride = 32
vertex_buffer_binding = 2

[[layout.attributes]]
name = "position"
type = "vec4"
location = 0

[[layout.attributes]]
name = "texcoord"
type = "vec2"
location = 3

[uniform]
group = 1
binding = 4

[camera]
fov_degrees = 60.0
position = [0.0, 1.0, 3.0]

[preview]
texture = "textures/checker.png"
frames = 10
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(validConfig))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := metadata.Bindings{
		VertexBuffer:              2,
		PositionLocation:          0,
		TextureCoordinateLocation: 3,
		UniformGroup:              1,
		UniformBinding:            4,
	}
	if got := cfg.Bindings(); got != want {
		t.Errorf("Bindings() = %+v, want %+v", got, want)
	}

	layout, err := cfg.VertexLayout()
	if err != nil {
		t.Fatalf("VertexLayout: %v", err)
	}
	if layout.Stride != metadata.VertexAlignedStride || layout.Binding != 2 {
		t.Errorf("layout = %+v", layout)
	}
	if u := cfg.UniformLayout(); u.Group != 1 || u.Binding != 4 || u.Size != metadata.MatrixSize {
		t.Errorf("UniformLayout() = %+v", u)
	}

	// Values the file leaves out come from Default.
	if cfg.Camera.Near != defaultNear || cfg.Camera.Far != defaultFar {
		t.Errorf("clip planes = %v..%v", cfg.Camera.Near, cfg.Camera.Far)
	}
	if cfg.Camera.FovDegrees != 60 || cfg.Preview.Frames != 10 {
		t.Errorf("camera/preview = %+v %+v", cfg.Camera, cfg.Preview)
	}
	if cfg.Preview.OutputDir != defaultOutputDir || cfg.Preview.FrameRate != defaultFrameRate {
		t.Errorf("preview defaults = %+v", cfg.Preview)
	}
}

func TestParseRejectsBadLayouts(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		wantErr error
	}{
		{"wrong position type", `type = "vec4"`, `type = "vec3"`, core.ErrLayoutMismatch},
		{"missing binding", "vertex_buffer_binding = 2\n", "\n", core.ErrLayoutMismatch},
		{"missing uniform", "binding = 4\n", "\n", core.ErrLayoutMismatch},
		{"missing location", "location = 3\n", "\n", core.ErrLayoutMismatch},
		{"shared location", "location = 3", "location = 0", core.ErrLayoutMismatch},
		{"short stride", "stride = 32", "stride = 20", core.ErrInvalidStride},
		{"renamed attribute", `name = "texcoord"`, `name = "uv"`, core.ErrLayoutMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := strings.Replace(validConfig, tt.from, tt.to, 1)
			if data == validConfig {
				t.Fatalf("replacement %q did not apply", tt.from)
			}
			if _, err := Parse([]byte(data)); !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"unknown table": validConfig + "\n[extra]\nspeed = 3\n",
		"log level":     strings.Replace(validConfig, `level = "debug"`, `level = "loud"`, 1),
		"fov":           strings.Replace(validConfig, "fov_degrees = 60.0", "fov_degrees = 180.0", 1),
		"same position": strings.Replace(validConfig, "position = [0.0, 1.0, 3.0]", "position = [0.0, 0.0, 0.0]", 1),
		"not toml":      validConfig + "\n[layout\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(data)); err == nil {
				t.Error("Parse() succeeded, want error")
			}
		})
	}
}

func TestDefaultHasNoBindings(t *testing.T) {
	if err := Default().Validate(); !errors.Is(err, core.ErrLayoutMismatch) {
		t.Errorf("Default().Validate() = %v, want ErrLayoutMismatch", err)
	}
}

func TestLoadResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "preview.toml")
	if err := os.WriteFile(path, []byte(validConfig), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q", cfg.Path())
	}
	if want := filepath.Join(dir, "textures", "checker.png"); cfg.TexturePath() != want {
		t.Errorf("TexturePath() = %q, want %q", cfg.TexturePath(), want)
	}
	if abs := filepath.Join(dir, "abs"); cfg.Resolve(abs) != abs {
		t.Errorf("absolute paths are kept as they are")
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) = %v", err)
	}
}
