package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-canvas/engine/renderer/attribute"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDenseGroupIndices(t *testing.T) {
	groups, err := denseGroupIndices(map[int]wgpu.BindGroupLayoutDescriptor{1: {}, 0: {}})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, groups)

	_, err = denseGroupIndices(map[int]wgpu.BindGroupLayoutDescriptor{0: {}, 2: {}})
	assert.ErrorContains(t, err, "missing group 1")

	groups, err = denseGroupIndices(nil)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestCheckInstanceData(t *testing.T) {
	assert.NoError(t, checkInstanceData(attribute.SlotMatrix, make([]float32, 48), 3))
	assert.NoError(t, checkInstanceData(attribute.SlotHovered, []float32{0, 1, 0}, 3))

	assert.ErrorContains(t, checkInstanceData(attribute.SlotHovered, []float32{0, 1}, 3), "want 3")
	assert.ErrorContains(t, checkInstanceData(attribute.SlotMatrix, nil, 0), "must be positive")
	assert.ErrorContains(t, checkInstanceData(attribute.Slot(9), nil, 1), "invalid instance slot")
}

func TestBuilderOptionsFillSettings(t *testing.T) {
	r := &renderer{opts: defaultSettings()}
	assert.Equal(t, MSAA4x, r.opts.msaa)
	assert.Nil(t, r.opts.presentMode)

	for _, opt := range []RendererBuilderOption{
		WithMSAA(MSAAOff),
		WithPresentMode(PresentModeUncapped),
		WithClearColor(0.1, 0.2, 0.3, 1),
		WithForceSoftwareRenderer(true),
	} {
		opt(r)
	}
	assert.Equal(t, MSAAOff, r.opts.msaa)
	require.NotNil(t, r.opts.presentMode)
	assert.Equal(t, PresentModeUncapped, *r.opts.presentMode)
	assert.Equal(t, wgpu.Color{R: 0.1, G: 0.2, B: 0.3, A: 1}, r.opts.clear)
	assert.True(t, r.opts.fallback)
}
