package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-canvas/common"
	"github.com/Carmen-Shannon/oxy-canvas/engine/picking"
	"github.com/Carmen-Shannon/oxy-canvas/engine/renderer/bind_group_provider"
	"github.com/go-gl/mathgl/mgl32"
)

type cameraImpl struct {
	mu *sync.Mutex

	up mgl32.Vec3

	fov    float32
	near   float32
	far    float32
	width  float32
	height float32

	view                  mgl32.Mat4
	projection            mgl32.Mat4
	viewProjection        mgl32.Mat4
	inverseViewProjection mgl32.Mat4

	controller        CameraController
	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Camera holds the perspective settings and viewport and derives the view and projection
// matrices from an attached CameraController. It is also the scene's pick ray source and
// orbit target for pointer input.
type Camera interface {
	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns the viewport aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	Near() float32
	Far() float32

	// Viewport returns the viewport size in pixels.
	//
	// Returns:
	//   - width, height: the viewport size
	Viewport() (width, height float32)

	// ViewMatrix returns the current view matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the column-major view matrix
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the current projection matrix with WebGPU [0, 1] depth.
	//
	// Returns:
	//   - mgl32.Mat4: the column-major projection matrix
	ProjectionMatrix() mgl32.Mat4

	// ViewProjectionMatrix returns projection * view.
	//
	// Returns:
	//   - mgl32.Mat4: the combined matrix
	ViewProjectionMatrix() mgl32.Mat4

	// InverseViewProjectionMatrix returns the inverse of ViewProjectionMatrix, used to unproject
	// pointer positions.
	//
	// Returns:
	//   - mgl32.Mat4: the inverse view-projection matrix
	InverseViewProjectionMatrix() mgl32.Mat4

	// Controller returns the attached controller, or nil.
	//
	// Returns:
	//   - CameraController: the attached controller
	Controller() CameraController

	// BindGroupProvider returns the provider that owns the camera uniform buffer.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the camera provider
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// Uniform returns the GPU uniform block for the current matrices.
	//
	// Returns:
	//   - GPUCameraUniform: the view-projection matrix and eye position
	Uniform() GPUCameraUniform

	// Update re-reads the controller and recomputes every matrix. Call it after moving the
	// controller directly.
	Update()

	// Ray returns the world-space pick ray through a pointer position.
	//
	// Parameters:
	//   - px, py: pointer position in pixels, origin top-left
	//
	// Returns:
	//   - picking.Ray: the ray from the near plane through the pointer
	Ray(px, py float32) picking.Ray

	// Orbit rotates the controller by a pointer delta and recomputes the matrices.
	//
	// Parameters:
	//   - dx, dy: pointer movement in pixels
	Orbit(dx, dy float32)

	// SetViewport sets the viewport size and the aspect ratio derived from it. Zero sizes
	// (a minimized window) are ignored.
	//
	// Parameters:
	//   - width, height: the viewport size in pixels
	SetViewport(width, height int)

	SetFov(fov float32)
	SetClip(near, far float32)
	SetController(ctrl CameraController)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a camera with a 0.8 radian field of view and a 1x1 viewport.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the new camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:                    &sync.Mutex{},
		up:                    mgl32.Vec3{0, 1, 0},
		fov:                   0.8,
		near:                  0.1,
		far:                   1000,
		width:                 1,
		height:                1,
		view:                  mgl32.Ident4(),
		projection:            mgl32.Ident4(),
		viewProjection:        mgl32.Ident4(),
		inverseViewProjection: mgl32.Ident4(),
		bindGroupProvider:     bind_group_provider.NewBindGroupProvider("camera"),
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width / c.height
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) Viewport() (float32, float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjection
}

func (c *cameraImpl) InverseViewProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inverseViewProjection
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) BindGroupProvider() bind_group_provider.BindGroupProvider {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bindGroupProvider
}

func (c *cameraImpl) Uniform() GPUCameraUniform {
	c.mu.Lock()
	defer c.mu.Unlock()
	var eye mgl32.Vec3
	if c.controller != nil {
		eye = c.controller.Position()
	}
	return NewGPUCameraUniform(c.viewProjection, eye)
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateMatrices()
}

func (c *cameraImpl) Ray(px, py float32) picking.Ray {
	c.mu.Lock()
	defer c.mu.Unlock()
	return picking.ScreenRay(c.inverseViewProjection, px, py, c.width, c.height)
}

func (c *cameraImpl) Orbit(dx, dy float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.controller == nil {
		return
	}
	c.controller.Orbit(dx, dy)
	c.updateMatrices()
}

func (c *cameraImpl) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width, c.height = float32(width), float32(height)
	c.updateMatrices()
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.updateMatrices()
}

func (c *cameraImpl) SetClip(near, far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near, c.far = near, far
	c.updateMatrices()
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
	c.updateMatrices()
}

// updateMatrices recalculates every matrix from the controller. The view stays at identity
// while no controller is attached. Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	c.projection = common.Perspective(c.fov, c.width/c.height, c.near, c.far)
	if c.controller != nil {
		c.view = mgl32.LookAtV(c.controller.Position(), c.controller.Target(), c.up)
	}
	c.viewProjection = c.projection.Mul4(c.view)
	c.inverseViewProjection = c.viewProjection.Inv()
}
