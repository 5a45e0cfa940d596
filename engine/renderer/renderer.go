package renderer

import (
	"fmt"
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-canvas/common"
	"github.com/Carmen-Shannon/oxy-canvas/engine/renderer/attribute"
	"github.com/Carmen-Shannon/oxy-canvas/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-canvas/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-canvas/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// settings is what the builder options collect before the backend exists.
type settings struct {
	pipelines   []pipeline.Pipeline
	presentMode *PresentMode
	msaa        MSAASampleCount
	fallback    bool
	clear       wgpu.Color
}

func defaultSettings() settings {
	return settings{msaa: MSAA4x}
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu        sync.RWMutex
	pipelines map[string]pipeline.Pipeline

	kind    RendererBackendType
	backend RendererBackend
	opts    settings
}

// Renderer defines the interface for the rendering system.
//
// The Renderer caches render pipelines by key, owns the GPU resources behind every
// BindGroupProvider it initializes, and encodes one render pass per frame. Per-instance data
// lives in one vertex buffer per attribute slot; DrawCall binds those buffers in the order the
// pipeline's vertex shader declares them.
type Renderer interface {
	// Pipeline looks up a registered pipeline.
	//
	// Parameters:
	//   - key: the pipeline key
	//
	// Returns:
	//   - pipeline.Pipeline: the registered pipeline, or nil
	Pipeline(key string) pipeline.Pipeline

	// RegisterPipelines validates each pipeline, creates its GPU object via the backend and caches
	// it by PipelineKey. Pipelines whose keys are already registered are skipped.
	//
	// Parameters:
	//   - pipelines: the pipelines to register
	//
	// Returns:
	//   - error: an error if validation or pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Resize reconfigures the surface and its attachments for a new size.
	//
	// Parameters:
	//   - width, height: the framebuffer size in pixels; non-positive sizes are ignored
	Resize(width, height int)

	// SetPresentMode sets the surface present mode. A call to Resize is required for it to take effect.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// InitMeshBuffers uploads a mesh and hands the vertex and index buffers to provider.
	//
	// Parameters:
	//   - provider: the mesh provider
	//   - vertexData, indexData: packed vertices and uint32 indices
	//   - indexCount: indices drawn per instance
	//
	// Returns:
	//   - error: a buffer creation error
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup creates the uniform buffers and the bind group described by a layout
	// descriptor and stores them on the given BindGroupProvider.
	//
	// Parameters:
	//   - provider: the uniform provider
	//   - descriptor: the group layout from the merged pipeline layouts
	//
	// Returns:
	//   - error: a buffer or bind group creation error
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error

	// SetInstanceData uploads the per-instance components of one attribute slot. The slot's
	// vertex buffer is created on first use and re-created only when its size changes.
	//
	// Parameters:
	//   - provider: the mesh provider that owns the instance buffers
	//   - slot: the attribute slot being written
	//   - data: packed components, slot.Components() per instance
	//   - instanceCount: the number of instances in data
	//
	// Returns:
	//   - error: an error if data does not match the slot layout or buffer creation fails
	SetInstanceData(provider bind_group_provider.BindGroupProvider, slot attribute.Slot, data []float32, instanceCount int) error

	// WriteBuffers queues uniform writes. They land before the next submit.
	//
	// Parameters:
	//   - writes: the staged writes
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the next surface texture and opens the frame's render pass. Every
	// successful BeginFrame is closed by EndFrame.
	//
	// Returns:
	//   - error: a surface acquisition error, or an error if a frame is already open
	BeginFrame() error

	// DrawCall encodes a single instanced draw command within the current render pass. The
	// instance count comes from the mesh provider.
	//
	// Parameters:
	//   - pipelineKey: a registered pipeline key
	//   - meshProvider: the BindGroupProvider holding vertex, index and instance buffers
	//   - bindGroups: BindGroupProviders set at group index 0..n-1
	//
	// Returns:
	//   - error: an error if the pipeline is not found or an instance slot has no buffer
	DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndFrame closes the render pass and submits it. Present shows the result.
	EndFrame()

	// Present shows the submitted frame and releases its surface texture.
	Present()
}

var _ Renderer = &renderer{}

// NewRenderer opens a GPU device on the window's surface and registers the pipelines given
// with WithPipeline. It panics if no adapter or device is available, or if a pipeline fails
// to register.
//
// Parameters:
//   - kind: the backend; only BackendTypeWGPU exists
//   - win: the window whose surface is rendered to
//   - options: RendererBuilderOption functions
//
// Returns:
//   - Renderer: the ready renderer
func NewRenderer(kind RendererBackendType, win window.Window, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		pipelines: make(map[string]pipeline.Pipeline),
		kind:      kind,
		opts:      defaultSettings(),
	}
	// The adapter request reads the options, so they go first.
	for _, opt := range options {
		opt(r)
	}

	r.backend = newBackend(kind, win.SurfaceDescriptor(), r.opts)
	if r.opts.presentMode != nil {
		r.backend.SetPresentMode(*r.opts.presentMode)
	}
	r.backend.ConfigureSurface(win.Width(), win.Height())

	if err := r.RegisterPipelines(r.opts.pipelines...); err != nil {
		panic(err)
	}
	r.opts.pipelines = nil
	return r
}

func newBackend(kind RendererBackendType, surface *wgpu.SurfaceDescriptor, opts settings) RendererBackend {
	switch kind {
	case BackendTypeWGPU:
	default:
		log.Printf("[Renderer] Unknown backend %v, using WGPU", kind)
	}
	return newWGPURendererBackend(surface, opts.fallback, opts.msaa, common.Coalesce(opts.clear, DefaultClearColor))
}

func (r *renderer) Resize(width, height int) {
	if width > 0 && height > 0 {
		r.backend.ConfigureSurface(width, height)
	}
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pipelines[key]
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		if _, done := r.pipelines[p.PipelineKey()]; done {
			continue
		}
		if err := p.Validate(); err != nil {
			return err
		}
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			return fmt.Errorf("renderer: failed to register pipeline %q: %w", p.PipelineKey(), err)
		}
		r.pipelines[p.PipelineKey()] = p
	}
	return nil
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	return r.backend.InitMeshBuffers(provider, vertexData, indexData, indexCount)
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error {
	return r.backend.InitBindGroup(provider, descriptor)
}

func (r *renderer) SetInstanceData(provider bind_group_provider.BindGroupProvider, slot attribute.Slot, data []float32, instanceCount int) error {
	if err := checkInstanceData(slot, data, instanceCount); err != nil {
		return err
	}
	return r.backend.SetInstanceData(provider, slot, common.SliceToBytes(data), instanceCount)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.backend.WriteBuffers(writes)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) error {
	p := r.Pipeline(pipelineKey)
	if p == nil {
		return fmt.Errorf("renderer: pipeline %q is not registered", pipelineKey)
	}
	for _, slot := range p.InstanceSlots() {
		if meshProvider.InstanceBuffer(slot) == nil {
			return fmt.Errorf("renderer: %s has no %s instance buffer for pipeline %q", meshProvider.Label(), slot, pipelineKey)
		}
	}

	r.backend.DrawCall(p, meshProvider, bindGroups)
	return nil
}

func (r *renderer) EndFrame() {
	r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

// checkInstanceData verifies that data holds exactly slot.Components() floats per instance.
func checkInstanceData(slot attribute.Slot, data []float32, instanceCount int) error {
	if !slot.Valid() {
		return fmt.Errorf("renderer: invalid instance slot %d", int(slot))
	}
	if instanceCount <= 0 {
		return fmt.Errorf("renderer: %s instance count must be positive, got %d", slot, instanceCount)
	}
	if want := instanceCount * slot.Components(); len(data) != want {
		return fmt.Errorf("renderer: %s buffer holds %d floats, want %d for %d instances", slot, len(data), want, instanceCount)
	}
	return nil
}
