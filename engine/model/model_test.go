package model

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var white = [4]float32{1, 1, 1, 1}

// facesOutward reports whether every non-degenerate triangle winds counter-clockwise when seen
// from the side its normal points to.
func facesOutward(t *testing.T, m Model) {
	t.Helper()
	v, idx := m.Vertices(), m.Indices()
	require.Zero(t, len(idx)%3)
	for i := 0; i < len(idx); i += 3 {
		a := mgl32.Vec3(v[idx[i]].Position)
		b := mgl32.Vec3(v[idx[i+1]].Position)
		c := mgl32.Vec3(v[idx[i+2]].Position)
		n := b.Sub(a).Cross(c.Sub(a))
		if n.Len() < 1e-7 {
			continue
		}
		avg := mgl32.Vec3(v[idx[i]].Normal).Add(mgl32.Vec3(v[idx[i+1]].Normal)).Add(mgl32.Vec3(v[idx[i+2]].Normal))
		assert.Greater(t, n.Dot(avg), float32(0), "triangle %d", i/3)
	}
}

func TestSphere(t *testing.T) {
	m := NewSphere("sphere", 2, 32, white)

	assert.Equal(t, "sphere", m.Name())
	assert.Len(t, m.Vertices(), 33*65)
	assert.Equal(t, 32*64*6, m.IndexCount())
	assert.InDelta(t, 1, m.BoundingRadius(), 1e-5)
	for _, v := range m.Vertices() {
		assert.InDelta(t, 1, mgl32.Vec3(v.Normal).Len(), 1e-5)
	}
	for _, i := range m.Indices() {
		require.Less(t, int(i), len(m.Vertices()))
	}
	facesOutward(t, m)
}

func TestSphereMinimumSegments(t *testing.T) {
	m := NewSphere("s", 1, 0, white)
	assert.Equal(t, 3*6*6, m.IndexCount())
}

func TestGround(t *testing.T) {
	m := NewGround("ground", 6, 4, white)

	assert.Len(t, m.Vertices(), 4)
	assert.Equal(t, 6, m.IndexCount())
	assert.InDelta(t, mgl32.Vec3{3, 0, 2}.Len(), m.BoundingRadius(), 1e-5)
	facesOutward(t, m)
}

func TestByteViews(t *testing.T) {
	m := NewGround("ground", 1, 1, white)
	var v GPUVertex

	assert.Equal(t, 48, v.Size())
	assert.Len(t, m.VertexData(), 4*v.Size())
	assert.Len(t, m.IndexData(), 6*4)
}

func TestDefaultMeshProvider(t *testing.T) {
	m := NewSphere("ball", 1, 8, white)
	require.NotNil(t, m.MeshProvider())
	assert.Equal(t, "ball_mesh", m.MeshProvider().Label())
}
