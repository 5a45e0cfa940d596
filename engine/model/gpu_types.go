package model

import (
	_ "embed"
	"unsafe"
)

// GPUVertexSource is the WGSL definition of the VertexInput struct, injected by
// //@oxy:include vertex.
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// GPUVertex mirrors the WGSL VertexInput struct. Fields are tightly packed (48 bytes), which is
// the layout the shader parser derives for vertex buffers.
type GPUVertex struct {
	Position [3]float32 // offset  0, location 0
	Normal   [3]float32 // offset 12, location 1
	UV       [2]float32 // offset 24, location 2
	Color    [4]float32 // offset 32, location 3
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the vertex stride in bytes (48)
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}
