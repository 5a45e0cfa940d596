package camera

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// GPUCameraUniformSource is the WGSL definition of the CameraUniform struct, injected by
// //@oxy:include camera.
//
//go:embed assets/camera_uniform.wgsl
var GPUCameraUniformSource string

// GPUCameraUniform mirrors the WGSL CameraUniform struct (80 bytes).
type GPUCameraUniform struct {
	ViewProj       [16]float32 // offset  0: mat4x4<f32>, column-major
	CameraPosition [3]float32  // offset 64: world-space eye position
	_pad           float32     // offset 76
}

// NewGPUCameraUniform packs a view-projection matrix and eye position.
//
// Parameters:
//   - viewProj: the combined view-projection matrix
//   - eye: the world-space camera position
//
// Returns:
//   - GPUCameraUniform: the uniform block
func NewGPUCameraUniform(viewProj mgl32.Mat4, eye mgl32.Vec3) GPUCameraUniform {
	return GPUCameraUniform{ViewProj: viewProj, CameraPosition: eye}
}

// Size returns the size of the GPUCameraUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (80)
func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the uniform little-endian for upload.
//
// Returns:
//   - []byte: the serialized uniform
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, 0, g.Size())
	for _, v := range g.ViewProj {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	for _, v := range g.CameraPosition {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	return binary.LittleEndian.AppendUint32(buf, 0)
}
