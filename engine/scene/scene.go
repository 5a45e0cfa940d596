package scene

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-canvas/engine/camera"
	"github.com/Carmen-Shannon/oxy-canvas/engine/game_object"
	"github.com/Carmen-Shannon/oxy-canvas/engine/instancing"
	"github.com/Carmen-Shannon/oxy-canvas/engine/light"
	"github.com/Carmen-Shannon/oxy-canvas/engine/renderer"
	"github.com/Carmen-Shannon/oxy-canvas/engine/renderer/attribute"
	"github.com/Carmen-Shannon/oxy-canvas/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-canvas/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-canvas/engine/renderer/shader"
)

// Scene holds the drawable GameObjects of one view together with the camera and light that
// fill their uniforms. It is the instancing.Sink of every object it holds: instance buffers
// are uploaded through the scene's Renderer, and frame requests set a single pending flag
// that the engine consumes once per drawn frame.
type Scene interface {
	instancing.Sink

	// Name returns the scene's identifier.
	Name() string

	// Active returns whether this scene is currently drawn.
	Active() bool

	// SetActive sets whether this scene is drawn.
	//
	// Parameters:
	//   - active: true to draw the scene
	SetActive(active bool)

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// Light returns the scene's hemispheric light.
	Light() light.Light

	// Renderer returns the scene's renderer.
	Renderer() renderer.Renderer

	// Add registers a GameObject and uploads its mesh. The object's pipeline must already be
	// registered with the Renderer, and its mesh name must be unique within the scene. Add
	// binds the object to the scene, synchronizes its instance buffers once, and initializes
	// the camera and light bind groups the pipeline declares.
	//
	// Parameters:
	//   - obj: the object to add
	//
	// Returns:
	//   - uint64: the object's ID
	//   - error: an error if the pipeline is unknown, the name is taken, or a GPU upload fails
	Add(obj game_object.GameObject) (uint64, error)

	// Get returns the object with the given ID, or nil.
	//
	// Parameters:
	//   - id: the object ID
	//
	// Returns:
	//   - game_object.GameObject: the object or nil
	Get(id uint64) game_object.GameObject

	// Object returns the object whose mesh has the given name, or nil.
	//
	// Parameters:
	//   - mesh: the mesh name
	//
	// Returns:
	//   - game_object.GameObject: the object or nil
	Object(mesh string) game_object.GameObject

	// Pickable returns the first pickable object in insertion order, or nil.
	//
	// Returns:
	//   - game_object.GameObject: the pickable object or nil
	Pickable() game_object.GameObject

	// Count returns the number of objects in the scene.
	Count() int

	// Remove drops an object and releases its mesh resources.
	//
	// Parameters:
	//   - id: the object ID
	Remove(id uint64)

	// SetRequestHook replaces the function called on every RequestFrame.
	//
	// Parameters:
	//   - fn: the hook (or nil to remove it)
	SetRequestHook(fn func())

	// FrameRequested reports whether a frame has been requested and not yet taken.
	FrameRequested() bool

	// TakeFrameRequest clears the pending frame request.
	//
	// Returns:
	//   - bool: true if a frame was pending
	TakeFrameRequest() bool

	// Render writes the camera and light uniforms and draws every enabled object in one frame.
	//
	// Returns:
	//   - error: an error if the frame could not be acquired or a draw call fails
	Render() error

	// DrawCalls encodes one draw per enabled object inside a frame begun by the caller.
	//
	// Returns:
	//   - error: the first draw call error
	DrawCalls() error
}

type scene struct {
	mu *sync.RWMutex

	name   string
	active bool

	cam camera.Camera
	lgt light.Light
	r   renderer.Renderer

	registry map[uint64]game_object.GameObject
	byMesh   map[string]game_object.GameObject
	order    []uint64
	nextID   uint64

	frameRequested atomic.Bool
	onRequest      func()

	// Pre-allocated slices reused each frame to avoid per-frame allocations.
	writePool          []bind_group_provider.BufferWrite
	drawBindGroupsPool []bind_group_provider.BindGroupProvider
}

var _ Scene = &scene{}

// NewScene creates an active Scene. Camera, light and renderer are required and NewScene panics
// if any of them is nil.
//
// Parameters:
//   - name: the name of the scene
//   - cam: the camera
//   - lgt: the hemispheric light
//   - r: the renderer used for uploads and draws
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, cam camera.Camera, lgt light.Light, r renderer.Renderer, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}
	if lgt == nil {
		panic("scene: NewScene requires a non-nil Light")
	}
	if r == nil {
		panic("scene: NewScene requires a non-nil Renderer")
	}

	s := &scene{
		mu:                 &sync.RWMutex{},
		name:               name,
		active:             true,
		cam:                cam,
		lgt:                lgt,
		r:                  r,
		registry:           make(map[uint64]game_object.GameObject),
		byMesh:             make(map[string]game_object.GameObject),
		nextID:             1,
		writePool:          make([]bind_group_provider.BufferWrite, 0, 2),
		drawBindGroupsPool: make([]bind_group_provider.BindGroupProvider, 0, 2),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	s.active = active
	s.mu.Unlock()
	if active {
		s.RequestFrame()
	}
}

func (s *scene) Camera() camera.Camera {
	return s.cam
}

func (s *scene) Light() light.Light {
	return s.lgt
}

func (s *scene) Renderer() renderer.Renderer {
	return s.r
}

func (s *scene) Add(obj game_object.GameObject) (uint64, error) {
	if obj == nil {
		return 0, fmt.Errorf("scene %q: cannot add a nil object", s.name)
	}
	id, err := s.register(obj)
	if err != nil {
		return 0, err
	}

	syncer, err := obj.Bind(s)
	if err == nil {
		err = syncer.Synchronize()
	}
	if err != nil {
		s.Remove(id)
		return 0, fmt.Errorf("scene %q: failed to bind %q: %w", s.name, obj.Name(), err)
	}
	return id, nil
}

// register uploads the object's mesh and uniforms and records it. Synchronizing happens after
// the lock is released since it re-enters the scene through SetInstanceBuffer.
func (s *scene) register(obj game_object.GameObject) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.r.Pipeline(obj.PipelineKey())
	if p == nil {
		return 0, fmt.Errorf("scene %q: pipeline %q for %q is not registered", s.name, obj.PipelineKey(), obj.Name())
	}
	if _, taken := s.byMesh[obj.Name()]; taken {
		return 0, fmt.Errorf("scene %q: mesh name %q is already in use", s.name, obj.Name())
	}

	mdl := obj.Model()
	mesh := mdl.MeshProvider()
	if mesh.VertexBuffer() == nil {
		if err := s.r.InitMeshBuffers(mesh, mdl.VertexData(), mdl.IndexData(), mdl.IndexCount()); err != nil {
			return 0, fmt.Errorf("scene %q: failed to upload mesh %q: %w", s.name, obj.Name(), err)
		}
	}
	if err := s.initUniforms(p); err != nil {
		return 0, err
	}

	if obj.ID() == 0 {
		obj.SetID(s.nextID)
		s.nextID++
	} else if _, taken := s.registry[obj.ID()]; taken {
		return 0, fmt.Errorf("scene %q: object ID %d is already in use", s.name, obj.ID())
	} else if obj.ID() >= s.nextID {
		s.nextID = obj.ID() + 1
	}
	s.registry[obj.ID()] = obj
	s.byMesh[obj.Name()] = obj
	s.order = append(s.order, obj.ID())
	return obj.ID(), nil
}

// initUniforms creates the bind group of every uniform provider the pipeline declares, using the
// pipeline's merged layout so the bind group matches the pipeline layout.
func (s *scene) initUniforms(p pipeline.Pipeline) error {
	layouts := p.BindGroupLayouts()
	for g, decl := range s.declarations(p) {
		provider := s.provider(decl)
		if provider == nil {
			return fmt.Errorf("scene %q: no provider for @group(%d) in pipeline %q", s.name, g, p.PipelineKey())
		}
		if provider.BindGroup() != nil {
			continue
		}
		if err := s.r.InitBindGroup(provider, layouts[g]); err != nil {
			return fmt.Errorf("scene %q: failed to init %s bind group: %w", s.name, provider.Label(), err)
		}
	}
	return nil
}

// declarations returns the first group annotation per group index across both shaders.
func (s *scene) declarations(p pipeline.Pipeline) map[int]shader.Annotation {
	out := make(map[int]shader.Annotation)
	for _, sh := range []shader.Shader{p.VertexShader(), p.FragmentShader()} {
		if sh == nil {
			continue
		}
		for _, d := range sh.Declarations() {
			if d.Type != shader.AnnotationTypeBindingGroup || d.Group == nil {
				continue
			}
			if _, seen := out[*d.Group]; !seen {
				out[*d.Group] = d
			}
		}
	}
	return out
}

func (s *scene) provider(decl shader.Annotation) bind_group_provider.BindGroupProvider {
	switch decl.Args[1] {
	case shader.AnnotationArgCamera:
		return s.cam.BindGroupProvider()
	case shader.AnnotationArgLight:
		return s.lgt.BindGroupProvider()
	}
	return nil
}

func (s *scene) Get(id uint64) game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry[id]
}

func (s *scene) Object(mesh string) game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byMesh[mesh]
}

func (s *scene) Pickable() game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		if obj := s.registry[id]; obj.Pickable() {
			return obj
		}
	}
	return nil
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry)
}

func (s *scene) Remove(id uint64) {
	s.mu.Lock()
	obj, ok := s.registry[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.registry, id)
	delete(s.byMesh, obj.Name())
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	obj.Model().MeshProvider().Release()
	s.RequestFrame()
}

func (s *scene) SetInstanceBuffer(mesh string, slot attribute.Slot, data []float32, componentsPerInstance int) error {
	s.mu.RLock()
	obj, ok := s.byMesh[mesh]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("scene %q: unknown mesh %q", s.name, mesh)
	}
	if componentsPerInstance != slot.Components() {
		return fmt.Errorf("scene %q: %s buffer for %q has %d components per instance, want %d", s.name, slot, mesh, componentsPerInstance, slot.Components())
	}

	provider := obj.Model().MeshProvider()
	if len(data) == 0 {
		provider.SetInstanceCount(0)
		return nil
	}
	return s.r.SetInstanceData(provider, slot, data, len(data)/componentsPerInstance)
}

func (s *scene) SetRequestHook(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRequest = fn
}

func (s *scene) RequestFrame() {
	s.frameRequested.Store(true)
	s.mu.RLock()
	hook := s.onRequest
	s.mu.RUnlock()
	if hook != nil {
		hook()
	}
}

func (s *scene) FrameRequested() bool {
	return s.frameRequested.Load()
}

func (s *scene) TakeFrameRequest() bool {
	return s.frameRequested.Swap(false)
}

func (s *scene) Render() error {
	s.mu.Lock()
	cu := s.cam.Uniform()
	lu := s.lgt.Uniform()
	writes := append(s.writePool[:0],
		bind_group_provider.UniformWrite(s.cam.BindGroupProvider(), 0, cu.Marshal()),
		bind_group_provider.UniformWrite(s.lgt.BindGroupProvider(), 0, lu.Marshal()),
	)
	s.writePool = writes
	s.mu.Unlock()

	s.r.WriteBuffers(writes)
	if err := s.r.BeginFrame(); err != nil {
		return fmt.Errorf("scene %q: failed to begin frame: %w", s.name, err)
	}
	err := s.DrawCalls()
	s.r.EndFrame()
	s.r.Present()
	return err
}

func (s *scene) DrawCalls() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.order {
		obj := s.registry[id]
		if !obj.Enabled() {
			continue
		}
		mesh := obj.Model().MeshProvider()
		if mesh.InstanceCount() == 0 {
			continue
		}
		p := s.r.Pipeline(obj.PipelineKey())
		if p == nil {
			return fmt.Errorf("scene %q: pipeline %q is not registered", s.name, obj.PipelineKey())
		}

		decls := s.declarations(p)
		groups := make([]int, 0, len(decls))
		for g := range decls {
			groups = append(groups, g)
		}
		sort.Ints(groups)

		bindGroups := s.drawBindGroupsPool[:0]
		for _, g := range groups {
			bindGroups = append(bindGroups, s.provider(decls[g]))
		}
		s.drawBindGroupsPool = bindGroups

		if err := s.r.DrawCall(obj.PipelineKey(), mesh, bindGroups); err != nil {
			return fmt.Errorf("draw call failed for %q in scene %q: %w", obj.Name(), s.name, err)
		}
	}
	return nil
}
