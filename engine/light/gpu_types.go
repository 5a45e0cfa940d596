package light

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUHemisphericLightSource is the WGSL definition of the HemisphericLight struct, injected by
// //@oxy:include light.
//
//go:embed assets/hemispheric_light.wgsl
var GPUHemisphericLightSource string

// GPUHemisphericLight mirrors the WGSL HemisphericLight struct (48 bytes).
type GPUHemisphericLight struct {
	Direction [3]float32 // offset  0: unit vector toward the sky color
	Intensity float32    // offset 12
	Diffuse   [3]float32 // offset 16: sky color
	_pad0     float32    // offset 28
	Ground    [3]float32 // offset 32: ground color
	_pad1     float32    // offset 44
}

// Size returns the size of the GPUHemisphericLight struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (48)
func (g *GPUHemisphericLight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the light little-endian for upload.
//
// Returns:
//   - []byte: the 48-byte uniform
func (g *GPUHemisphericLight) Marshal() []byte {
	words := [12]float32{
		g.Direction[0], g.Direction[1], g.Direction[2], g.Intensity,
		g.Diffuse[0], g.Diffuse[1], g.Diffuse[2], 0,
		g.Ground[0], g.Ground[1], g.Ground[2], 0,
	}
	buf := make([]byte, 0, g.Size())
	for _, w := range words {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(w))
	}
	return buf
}
