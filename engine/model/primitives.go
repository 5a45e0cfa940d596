package model

import (
	"github.com/chewxy/math32"
)

// NewSphere builds a UV sphere centered on the model origin. segments is the number of rings
// from pole to pole; each ring has twice as many sectors. Fewer than 3 segments is raised to 3.
//
// Parameters:
//   - name: the model name
//   - diameter: the sphere diameter
//   - segments: the ring count
//   - color: the RGBA vertex color
//
// Returns:
//   - Model: the sphere model
func NewSphere(name string, diameter float32, segments int, color [4]float32) Model {
	rings := max(segments, 3)
	sectors := 2 * rings
	radius := diameter / 2

	vertices := make([]GPUVertex, 0, (rings+1)*(sectors+1))
	for i := 0; i <= rings; i++ {
		phi := math32.Pi * float32(i) / float32(rings)
		y, sr := math32.Cos(phi), math32.Sin(phi)
		for j := 0; j <= sectors; j++ {
			theta := 2 * math32.Pi * float32(j) / float32(sectors)
			n := [3]float32{sr * math32.Cos(theta), y, sr * math32.Sin(theta)}
			vertices = append(vertices, GPUVertex{
				Position: [3]float32{n[0] * radius, n[1] * radius, n[2] * radius},
				Normal:   n,
				UV:       [2]float32{float32(j) / float32(sectors), float32(i) / float32(rings)},
				Color:    color,
			})
		}
	}

	indices := make([]uint32, 0, rings*sectors*6)
	stride := uint32(sectors + 1)
	for i := 0; i < rings; i++ {
		for j := 0; j < sectors; j++ {
			a := uint32(i)*stride + uint32(j)
			b := a + stride
			indices = append(indices, a, a+1, b, a+1, b+1, b)
		}
	}

	return NewModel(WithName(name), WithMesh(vertices, indices))
}

// NewGround builds a flat rectangle in the XZ plane facing +Y, centered on the model origin.
//
// Parameters:
//   - name: the model name
//   - width: the size along X
//   - height: the size along Z
//   - color: the RGBA vertex color
//
// Returns:
//   - Model: the ground model
func NewGround(name string, width, height float32, color [4]float32) Model {
	hw, hh := width/2, height/2
	up := [3]float32{0, 1, 0}
	vertices := []GPUVertex{
		{Position: [3]float32{-hw, 0, -hh}, Normal: up, UV: [2]float32{0, 0}, Color: color},
		{Position: [3]float32{hw, 0, -hh}, Normal: up, UV: [2]float32{1, 0}, Color: color},
		{Position: [3]float32{hw, 0, hh}, Normal: up, UV: [2]float32{1, 1}, Color: color},
		{Position: [3]float32{-hw, 0, hh}, Normal: up, UV: [2]float32{0, 1}, Color: color},
	}
	indices := []uint32{0, 2, 1, 0, 3, 2}
	return NewModel(WithName(name), WithMesh(vertices, indices))
}
