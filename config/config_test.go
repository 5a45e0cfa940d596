package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, [3]float32{0, 5, -10}, cfg.Camera.Position)
	assert.Equal(t, float32(0.7), cfg.Light.Intensity)
	assert.Equal(t, float32(2), cfg.Spheres.Diameter)
	assert.Equal(t, 32, cfg.Spheres.Segments)
	assert.Equal(t, float32(6), cfg.Ground.Width)
}

func TestParseOverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
window:
  title: Instanced
spheres:
  diameter: 1
  placements: [-2, 0, 2]
`))
	require.NoError(t, err)
	assert.Equal(t, "Instanced", cfg.Window.Title)
	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, []float32{-2, 0, 2}, cfg.Spheres.Placements)
	assert.Equal(t, float32(1), cfg.Spheres.Diameter)
	assert.Equal(t, 32, cfg.Spheres.Segments)
}

func TestParseKeepsDefaultPlacementsWhenOmitted(t *testing.T) {
	cfg, err := Parse([]byte("window:\n  width: 640\n"))
	require.NoError(t, err)
	assert.Equal(t, []float32{0}, cfg.Spheres.Placements)
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("camera:\n  zoom: 3\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"msaa":       func(c *Config) { c.Render.MSAA = 2 },
		"near":       func(c *Config) { c.Camera.Near = 0 },
		"far":        func(c *Config) { c.Camera.Far = c.Camera.Near },
		"eye":        func(c *Config) { c.Camera.Position = c.Camera.Target },
		"diameter":   func(c *Config) { c.Spheres.Diameter = 0 },
		"segments":   func(c *Config) { c.Spheres.Segments = 2 },
		"placements": func(c *Config) { c.Spheres.Placements = nil },
		"axis":       func(c *Config) { c.Spheres.Axis = [3]float32{} },
		"shader":     func(c *Config) { c.Shaders.Fragment = "" },
		"window":     func(c *Config) { c.Window.Width = 0 },
		"ground":     func(c *Config) { c.Ground.Height = -1 },
		"intensity":  func(c *Config) { c.Light.Intensity = -0.1 },
		"fov":        func(c *Config) { c.Camera.Fov = 4 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte("spheres:\n  placements: [1, 2]\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, cfg.Spheres.Placements)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestWatchDeliversReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte("spheres:\n  placements: [0]\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := Watch(ctx, path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("spheres:\n  placements: [3, 4]\n"), 0o644))

	select {
	case cfg := <-ch:
		require.NotNil(t, cfg)
		assert.Equal(t, []float32{3, 4}, cfg.Spheres.Placements)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload delivered")
	}

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
}

func TestDeliverLatestReplacesPending(t *testing.T) {
	ch := make(chan *Config, 1)
	first, second := Default(), Default()
	second.Window.Title = "second"

	deliverLatest(ch, first)
	deliverLatest(ch, second)
	assert.Same(t, second, <-ch)
}
