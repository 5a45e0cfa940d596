// Package config loads the YAML scene description used by the example programs.
//
// A scene file only needs the keys it changes; Load decodes on top of Default, which
// reproduces the basic scene: a camera at (0, 5, -10) looking at the origin, a hemispheric
// light pointing up at 0.7 intensity, one sphere of diameter 2 resting on a 6x6 ground.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid scene config")

// Config is the root of a scene file.
type Config struct {
	Window  WindowConfig `yaml:"window"`
	Render  RenderConfig `yaml:"render"`
	Camera  CameraConfig `yaml:"camera"`
	Light   LightConfig  `yaml:"light"`
	Ground  GroundConfig `yaml:"ground"`
	Spheres SphereConfig `yaml:"spheres"`
	Shaders ShaderConfig `yaml:"shaders"`
}

// WindowConfig sizes and titles the native window.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// RenderConfig controls surface presentation.
type RenderConfig struct {
	VSync      bool       `yaml:"vsync"`
	MSAA       int        `yaml:"msaa"`
	ClearColor [4]float64 `yaml:"clear_color"`
}

// CameraConfig positions the orbit camera. Fov is in radians.
type CameraConfig struct {
	Position         [3]float32 `yaml:"position"`
	Target           [3]float32 `yaml:"target"`
	Fov              float32    `yaml:"fov"`
	Near             float32    `yaml:"near"`
	Far              float32    `yaml:"far"`
	MouseSensitivity float32    `yaml:"mouse_sensitivity"`
	ZoomSpeed        float32    `yaml:"zoom_speed"`
}

// LightConfig describes the hemispheric light.
type LightConfig struct {
	Direction [3]float32 `yaml:"direction"`
	Intensity float32    `yaml:"intensity"`
	Diffuse   [3]float32 `yaml:"diffuse"`
	Ground    [3]float32 `yaml:"ground"`
}

// GroundConfig describes the ground plane.
type GroundConfig struct {
	Width  float32    `yaml:"width"`
	Height float32    `yaml:"height"`
	Color  [4]float32 `yaml:"color"`
}

// SphereConfig describes the sphere mesh and where its instances sit. Placements are
// positions along Axis measured from Origin.
type SphereConfig struct {
	Diameter   float32    `yaml:"diameter"`
	Segments   int        `yaml:"segments"`
	Color      [4]float32 `yaml:"color"`
	Origin     [3]float32 `yaml:"origin"`
	Axis       [3]float32 `yaml:"axis"`
	Placements []float32  `yaml:"placements"`
}

// ShaderConfig holds WGSL source paths.
type ShaderConfig struct {
	Vertex   string `yaml:"vertex"`
	Fragment string `yaml:"fragment"`
}

// Default returns the basic scene.
//
// Returns:
//   - *Config: a fully populated config
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "Oxy Canvas",
			Width:  1280,
			Height: 720,
		},
		Render: RenderConfig{
			VSync:      true,
			MSAA:       4,
			ClearColor: [4]float64{0.2, 0.2, 0.3, 1.0},
		},
		Camera: CameraConfig{
			Position:         [3]float32{0, 5, -10},
			Target:           [3]float32{0, 0, 0},
			Fov:              0.8,
			Near:             0.1,
			Far:              1000,
			MouseSensitivity: 0.005,
			ZoomSpeed:        0.5,
		},
		Light: LightConfig{
			Direction: [3]float32{0, 1, 0},
			Intensity: 0.7,
			Diffuse:   [3]float32{1, 1, 1},
			Ground:    [3]float32{0, 0, 0},
		},
		Ground: GroundConfig{
			Width:  6,
			Height: 6,
			Color:  [4]float32{1, 1, 1, 1},
		},
		Spheres: SphereConfig{
			Diameter:   2,
			Segments:   32,
			Color:      [4]float32{1, 1, 1, 1},
			Origin:     [3]float32{0, 1, 0},
			Axis:       [3]float32{1, 0, 0},
			Placements: []float32{0},
		},
		Shaders: ShaderConfig{
			Vertex:   "examples/assets/shaders/lit-vert.wgsl",
			Fragment: "examples/assets/shaders/lit-frag.wgsl",
		},
	}
}

// Load reads a scene file on top of Default and validates the result.
//
// Parameters:
//   - path: the YAML file path
//
// Returns:
//   - *Config: the merged config
//   - error: a read, decode or validation error
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %q: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of Default and validates the result. Unknown keys are rejected.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - *Config: the merged config
//   - error: a decode or validation error
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if len(bytes.TrimSpace(data)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// a list in the file replaces the default list instead of merging into it
		cfg.Spheres.Placements = nil
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to decode: %w", err)
		}
		if cfg.Spheres.Placements == nil {
			cfg.Spheres.Placements = Default().Spheres.Placements
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges that would otherwise fail deep inside GPU setup.
//
// Returns:
//   - error: an error wrapping ErrInvalid, or nil
func (c *Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	case c.Render.MSAA != 1 && c.Render.MSAA != 4:
		return fmt.Errorf("%w: msaa must be 1 or 4, got %d", ErrInvalid, c.Render.MSAA)
	case c.Camera.Fov <= 0 || c.Camera.Fov >= 3.14:
		return fmt.Errorf("%w: camera fov %v out of range", ErrInvalid, c.Camera.Fov)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("%w: camera near/far %v/%v", ErrInvalid, c.Camera.Near, c.Camera.Far)
	case c.Camera.Position == c.Camera.Target:
		return fmt.Errorf("%w: camera position equals target", ErrInvalid)
	case c.Light.Intensity < 0:
		return fmt.Errorf("%w: light intensity %v", ErrInvalid, c.Light.Intensity)
	case c.Ground.Width <= 0 || c.Ground.Height <= 0:
		return fmt.Errorf("%w: ground size %vx%v", ErrInvalid, c.Ground.Width, c.Ground.Height)
	case c.Spheres.Diameter <= 0:
		return fmt.Errorf("%w: sphere diameter %v", ErrInvalid, c.Spheres.Diameter)
	case c.Spheres.Segments < 3:
		return fmt.Errorf("%w: sphere segments %d", ErrInvalid, c.Spheres.Segments)
	case len(c.Spheres.Placements) == 0:
		return fmt.Errorf("%w: at least one sphere placement is required", ErrInvalid)
	case c.Spheres.Axis == [3]float32{}:
		return fmt.Errorf("%w: sphere axis must be non-zero", ErrInvalid)
	case c.Shaders.Vertex == "" || c.Shaders.Fragment == "":
		return fmt.Errorf("%w: vertex and fragment shader paths are required", ErrInvalid)
	}
	return nil
}
