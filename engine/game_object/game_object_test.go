package game_object

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-canvas/engine/model"
	"github.com/Carmen-Shannon/oxy-canvas/engine/renderer/attribute"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	meshes []string
	frames int
}

func (s *recordingSink) SetInstanceBuffer(mesh string, _ attribute.Slot, _ []float32, _ int) error {
	s.meshes = append(s.meshes, mesh)
	return nil
}

func (s *recordingSink) RequestFrame() {
	s.frames++
}

func TestDefaults(t *testing.T) {
	ground := model.NewGround("ground", 6, 6, [4]float32{0.5, 0.5, 0.5, 1})
	obj := NewGameObject(ground, "lit")

	assert.Equal(t, "ground", obj.Name())
	assert.Equal(t, "lit", obj.PipelineKey())
	assert.True(t, obj.Enabled())
	assert.False(t, obj.Pickable())
	assert.Zero(t, obj.ID())
	assert.Nil(t, obj.Synchronizer())

	sync, err := obj.Bind(&recordingSink{})
	require.NoError(t, err)
	assert.Equal(t, []float32{0}, sync.Placements())
	assert.Equal(t, mgl32.Vec3{}, sync.Center(0))
}

func TestBindUsesLayout(t *testing.T) {
	sphere := model.NewSphere("sphere", 1, 8, [4]float32{1, 1, 1, 1})
	placements := []float32{-2, 0, 2}
	obj := NewGameObject(sphere, "lit",
		WithID(7),
		WithPickable(true),
		WithPlacements(placements...),
		WithOrigin(0, 1, 0),
		WithAxis(0, 0, 2),
	)
	placements[0] = 99

	sink := &recordingSink{}
	sync, err := obj.Bind(sink)
	require.NoError(t, err)
	assert.Same(t, sync, obj.Synchronizer())
	assert.Equal(t, uint64(7), obj.ID())
	assert.True(t, obj.Pickable())
	assert.Equal(t, []float32{-2, 0, 2}, sync.Placements())
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, sync.Axis())
	assert.Equal(t, mgl32.Vec3{0, 1, 2}, sync.Center(2))
	assert.Equal(t, "sphere", sync.Mesh())

	_, err = obj.Bind(sink)
	assert.ErrorContains(t, err, "already bound")
}

func TestEnabledToggle(t *testing.T) {
	obj := NewGameObject(model.NewGround("g", 1, 1, [4]float32{}), "lit", WithEnabled(false))
	assert.False(t, obj.Enabled())
	obj.SetEnabled(true)
	assert.True(t, obj.Enabled())
}

func TestRequiresModel(t *testing.T) {
	assert.Panics(t, func() { NewGameObject(nil, "lit") })
}
