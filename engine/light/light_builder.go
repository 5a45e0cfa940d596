package light

import "github.com/go-gl/mathgl/mgl32"

// LightBuilderOption is a functional option for configuring a Light.
type LightBuilderOption func(*lightImpl)

// WithDirection sets the sky direction. It is normalized; a zero vector keeps the default.
//
// Parameters:
//   - x, y, z: the direction components
//
// Returns:
//   - LightBuilderOption: a function that sets the direction
func WithDirection(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		if d, ok := normalize3(x, y, z); ok {
			l.direction = d
		}
	}
}

// WithIntensity sets the intensity multiplier.
//
// Parameters:
//   - intensity: the scalar applied to both colors
//
// Returns:
//   - LightBuilderOption: a function that sets the intensity
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.intensity = intensity
	}
}

// WithDiffuse sets the sky color.
func WithDiffuse(r, g, b float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.diffuse = mgl32.Vec3{r, g, b}
	}
}

// WithGroundColor sets the color received by surfaces facing away from the direction.
func WithGroundColor(r, g, b float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.ground = mgl32.Vec3{r, g, b}
	}
}

// normalize3 returns the unit vector of (x, y, z), or false for the zero vector.
func normalize3(x, y, z float32) (mgl32.Vec3, bool) {
	v := mgl32.Vec3{x, y, z}
	if v.Len() == 0 {
		return mgl32.Vec3{}, false
	}
	return v.Normalize(), true
}
