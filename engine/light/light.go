// Package light provides the hemispheric light used by the lit shaders: a sky color along a
// direction blended into a ground color on the opposite side, scaled by an intensity.
package light

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-canvas/engine/renderer/bind_group_provider"
	"github.com/go-gl/mathgl/mgl32"
)

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	mu *sync.Mutex

	direction mgl32.Vec3
	intensity float32
	diffuse   mgl32.Vec3
	ground    mgl32.Vec3

	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Light is a hemispheric light. Surfaces facing Direction receive Diffuse, surfaces facing
// away receive Ground, with a linear blend in between.
type Light interface {
	// Direction returns the unit direction toward the sky.
	//
	// Returns:
	//   - mgl32.Vec3: the normalized direction
	Direction() mgl32.Vec3

	// Intensity returns the scalar multiplier applied to both colors.
	//
	// Returns:
	//   - float32: the intensity
	Intensity() float32

	Diffuse() mgl32.Vec3
	GroundColor() mgl32.Vec3

	// Irradiance evaluates the light for a surface normal the same way the lit fragment shader does.
	//
	// Parameters:
	//   - normal: the surface normal, any non-zero length
	//
	// Returns:
	//   - mgl32.Vec3: the RGB light reaching the surface
	Irradiance(normal mgl32.Vec3) mgl32.Vec3

	// Uniform returns the GPU uniform block for the light.
	//
	// Returns:
	//   - GPUHemisphericLight: the packed light
	Uniform() GPUHemisphericLight

	// BindGroupProvider returns the provider that owns the light uniform buffer.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the light provider
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// SetDirection sets the sky direction. A zero vector is ignored.
	//
	// Parameters:
	//   - x, y, z: the direction, any non-zero length
	SetDirection(x, y, z float32)

	SetIntensity(intensity float32)
	SetDiffuse(r, g, b float32)
	SetGroundColor(r, g, b float32)
}

var _ Light = &lightImpl{}

// NewHemisphericLight creates a white light pointing up (0, 1, 0) at intensity 1 with a black ground.
//
// Parameters:
//   - opts: functional options to configure the light
//
// Returns:
//   - Light: the new light
func NewHemisphericLight(opts ...LightBuilderOption) Light {
	l := &lightImpl{
		mu:                &sync.Mutex{},
		direction:         mgl32.Vec3{0, 1, 0},
		intensity:         1,
		diffuse:           mgl32.Vec3{1, 1, 1},
		bindGroupProvider: bind_group_provider.NewBindGroupProvider("light"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Direction() mgl32.Vec3 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.direction
}

func (l *lightImpl) Intensity() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.intensity
}

func (l *lightImpl) Diffuse() mgl32.Vec3 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.diffuse
}

func (l *lightImpl) GroundColor() mgl32.Vec3 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ground
}

func (l *lightImpl) Irradiance(normal mgl32.Vec3) mgl32.Vec3 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if normal.Len() == 0 {
		return l.ground.Mul(l.intensity)
	}
	w := 0.5*normal.Normalize().Dot(l.direction) + 0.5
	return l.ground.Mul(1 - w).Add(l.diffuse.Mul(w)).Mul(l.intensity)
}

func (l *lightImpl) Uniform() GPUHemisphericLight {
	l.mu.Lock()
	defer l.mu.Unlock()
	return GPUHemisphericLight{
		Direction: l.direction,
		Intensity: l.intensity,
		Diffuse:   l.diffuse,
		Ground:    l.ground,
	}
}

func (l *lightImpl) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return l.bindGroupProvider
}

func (l *lightImpl) SetDirection(x, y, z float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if d, ok := normalize3(x, y, z); ok {
		l.direction = d
	}
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.intensity = intensity
}

func (l *lightImpl) SetDiffuse(r, g, b float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.diffuse = mgl32.Vec3{r, g, b}
}

func (l *lightImpl) SetGroundColor(r, g, b float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ground = mgl32.Vec3{r, g, b}
}
