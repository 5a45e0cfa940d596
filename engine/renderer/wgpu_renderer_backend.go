package renderer

import (
	"errors"
	"fmt"
	"maps"
	"runtime"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-canvas/engine/renderer/attribute"
	"github.com/Carmen-Shannon/oxy-canvas/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-canvas/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-canvas/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// depthFormat is the format of the depth attachment and of every pipeline's depth state.
const depthFormat = wgpu.TextureFormatDepth24Plus

// errFrameInFlight is returned by BeginFrame while the previous surface texture is unpresented.
var errFrameInFlight = errors.New("previous frame surface not yet presented")

// attachment is a size-dependent render target recreated on every surface configure.
type attachment struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

func (a *attachment) release() {
	if a.view != nil {
		a.view.Release()
	}
	if a.texture != nil {
		a.texture.Release()
	}
	*a = attachment{}
}

// frame holds what BeginFrame acquired until EndFrame and Present hand it back.
type frame struct {
	surface *wgpu.Texture
	view    *wgpu.TextureView
	encoder *wgpu.CommandEncoder
	pass    *wgpu.RenderPassEncoder
}

// releaseEncoder drops the command encoder once its commands were submitted or abandoned.
func (f *frame) releaseEncoder() {
	if f.encoder != nil {
		f.encoder.Release()
		f.encoder = nil
	}
	f.pass = nil
}

// releaseSurface drops the surface texture and its view.
func (f *frame) releaseSurface() {
	if f.view != nil {
		f.view.Release()
	}
	if f.surface != nil {
		f.surface.Release()
	}
	f.surface, f.view = nil, nil
}

type wgpuRendererBackendImpl struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode
	sampleCount   MSAASampleCount
	clearColor    wgpu.Color

	msaa  attachment
	depth attachment

	// byte size of every live instance buffer
	instanceAlloc map[*wgpu.Buffer]uint64

	frame frame
}

type wgpuRendererBackend interface {
	// ConfigureSurface (re)configures the swapchain at the given pixel size and recreates the
	// MSAA and depth attachments to match.
	//
	// Parameters:
	//   - width: the surface width in pixels
	//   - height: the surface height in pixels
	ConfigureSurface(width, height int)

	// SetPresentMode selects vsync or uncapped presentation. It applies on the next
	// ConfigureSurface.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// RegisterRenderPipeline compiles both shader stages of p, builds its pipeline layout and
	// stores the GPU render pipeline on p.
	//
	// Parameters:
	//   - p: the validated pipeline description
	//
	// Returns:
	//   - error: an error if any GPU object could not be created
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// InitMeshBuffers uploads the vertex and index data of a mesh and stores the buffers on the
	// provider. Empty data leaves the corresponding buffer unset.
	//
	// Parameters:
	//   - provider: the mesh provider receiving the buffers
	//   - vertexData: packed vertex bytes
	//   - indexData: packed uint32 indices
	//   - indexCount: the number of indices in indexData
	//
	// Returns:
	//   - error: an error if a buffer could not be created
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup creates the uniform buffers a layout descriptor names, unless the provider
	// already holds them, and the bind group referencing them.
	//
	// Parameters:
	//   - provider: the provider receiving the buffers and bind group
	//   - descriptor: the layout of the group; every entry must be a uniform buffer
	//
	// Returns:
	//   - error: an error if an entry is not a uniform buffer or a GPU object failed
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error

	// SetInstanceData writes one slot's instance bytes. The slot buffer is reallocated only when
	// the byte size changes.
	//
	// Parameters:
	//   - provider: the mesh provider owning the instance buffers
	//   - slot: the attribute slot
	//   - data: the packed instance bytes
	//   - instanceCount: the number of instances in data
	//
	// Returns:
	//   - error: an error if the buffer could not be created
	SetInstanceData(provider bind_group_provider.BindGroupProvider, slot attribute.Slot, data []byte, instanceCount int) error

	// WriteBuffers queues staged uniform writes. Writes to a provider binding without a buffer
	// are skipped.
	//
	// Parameters:
	//   - writes: the staged writes
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the next surface texture and opens the render pass.
	//
	// Returns:
	//   - error: an error if the texture could not be acquired or the last frame is unpresented
	BeginFrame() error

	// DrawCall encodes one instanced draw in the open render pass. Instance buffers are bound
	// at vertex buffer slot i+1 for the i-th entry of p.InstanceSlots().
	//
	// Parameters:
	//   - p: the registered pipeline
	//   - meshProvider: the mesh provider
	//   - bindGroups: bind groups set at index 0..n-1
	DrawCall(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider)

	// EndFrame closes the render pass and submits the recorded commands.
	EndFrame()

	// Present shows the frame acquired by BeginFrame.
	Present()
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

// newWGPURendererBackend requests an adapter compatible with the window surface and a device
// with default limits. It panics when either request fails since nothing can be drawn.
func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount, clearColor wgpu.Color) wgpuRendererBackend {
	runtime.LockOSThread()
	b := &wgpuRendererBackendImpl{
		mu:            &sync.Mutex{},
		instance:      wgpu.CreateInstance(nil),
		presentMode:   wgpu.PresentModeFifo,
		sampleCount:   sampleCount,
		clearColor:    clearColor,
		instanceAlloc: make(map[*wgpu.Buffer]uint64),
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	adapter, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		panic(fmt.Sprintf("renderer: no compatible adapter: %v", err))
	}
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label:          "oxy-canvas device",
		RequiredLimits: &wgpu.RequiredLimits{Limits: wgpu.DefaultLimits()},
	})
	if err != nil {
		panic(fmt.Sprintf("renderer: device request failed: %v", err))
	}
	b.adapter, b.device, b.queue = adapter, device, device.GetQueue()
	return b
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	caps := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = caps.Formats[0]
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   caps.AlphaModes[0],
	})

	b.msaa.release()
	b.depth.release()
	size := wgpu.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1}
	if b.sampleCount > 1 {
		b.msaa = b.newAttachment("MSAA Color", size, b.surfaceFormat)
	}
	// The depth sample count has to match the color target.
	b.depth = b.newAttachment("Depth", size, depthFormat)
}

// newAttachment creates a render target texture at the current sample count. Failure means the
// device is lost, so it panics like the other surface setup paths.
func (b *wgpuRendererBackendImpl) newAttachment(label string, size wgpu.Extent3D, format wgpu.TextureFormat) attachment {
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   uint32(b.sampleCount),
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(fmt.Sprintf("renderer: %s texture: %v", label, err))
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		panic(fmt.Sprintf("renderer: %s view: %v", label, err))
	}
	return attachment{texture: tex, view: view}
}

var wgpuPresentModes = map[PresentMode]wgpu.PresentMode{
	PresentModeVSync:    wgpu.PresentModeFifo,
	PresentModeUncapped: wgpu.PresentModeImmediate,
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	pm, ok := wgpuPresentModes[mode]
	if !ok {
		pm = wgpu.PresentModeFifo
	}
	b.presentMode = pm
}

// shaderModule compiles the WGSL source of s.
func (b *wgpuRendererBackendImpl) shaderModule(s shader.Shader) (*wgpu.ShaderModule, error) {
	return b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          s.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: s.Source()},
	})
}

func (b *wgpuRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	vs, err := b.shaderModule(p.VertexShader())
	if err != nil {
		return fmt.Errorf("%s: vertex module: %w", p.PipelineKey(), err)
	}
	fs, err := b.shaderModule(p.FragmentShader())
	if err != nil {
		return fmt.Errorf("%s: fragment module: %w", p.PipelineKey(), err)
	}

	descriptors := p.BindGroupLayouts()
	groups, err := denseGroupIndices(descriptors)
	if err != nil {
		return fmt.Errorf("%s: %w", p.PipelineKey(), err)
	}
	layouts := make([]*wgpu.BindGroupLayout, len(groups))
	for _, g := range groups {
		desc := descriptors[g]
		if layouts[g], err = b.device.CreateBindGroupLayout(&desc); err != nil {
			return fmt.Errorf("%s: bind group layout %d: %w", p.PipelineKey(), g, err)
		}
	}
	layout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return fmt.Errorf("%s: pipeline layout: %w", p.PipelineKey(), err)
	}

	target := wgpu.ColorTargetState{Format: b.surfaceFormat, WriteMask: p.WriteMask()}
	if p.BlendEnabled() {
		target.Blend = p.BlendState()
	}
	compare := wgpu.CompareFunctionAlways
	if p.DepthTestEnabled() {
		compare = wgpu.CompareFunctionLess
	}
	stencil := wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways}

	rp, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: p.VertexShader().EntryPoint(),
			Buffers:    p.VertexLayouts(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: p.FragmentShader().EntryPoint(),
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{Count: uint32(b.sampleCount), Mask: 0xFFFFFFFF},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: p.DepthWriteEnabled(),
			DepthCompare:      compare,
			StencilFront:      stencil,
			StencilBack:       stencil,
		},
	})
	if err != nil {
		return fmt.Errorf("%s: render pipeline: %w", p.PipelineKey(), err)
	}
	p.SetRenderPipeline(rp)
	return nil
}

// uploadBuffer creates a buffer sized to data and queues data into it.
func (b *wgpuRendererBackendImpl) uploadBuffer(label string, usage wgpu.BufferUsage, data []byte) (*wgpu.Buffer, error) {
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	b.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

func (b *wgpuRendererBackendImpl) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(vertexData) > 0 {
		buf, err := b.uploadBuffer(provider.Label()+" Vertex Buffer", wgpu.BufferUsageVertex, vertexData)
		if err != nil {
			return err
		}
		provider.SetVertexBuffer(buf)
	}
	if len(indexData) > 0 {
		buf, err := b.uploadBuffer(provider.Label()+" Index Buffer", wgpu.BufferUsageIndex, indexData)
		if err != nil {
			return err
		}
		provider.SetIndexBuffer(buf)
	}
	provider.SetIndexCount(indexCount)
	return nil
}

func (b *wgpuRendererBackendImpl) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(descriptor.Entries) == 0 {
		return nil
	}
	layout := provider.BindGroupLayout()
	if layout == nil {
		var err error
		if layout, err = b.device.CreateBindGroupLayout(&descriptor); err != nil {
			return fmt.Errorf("%s: bind group layout: %w", provider.Label(), err)
		}
		provider.SetBindGroupLayout(layout)
	}

	entries := make([]wgpu.BindGroupEntry, 0, len(descriptor.Entries))
	for _, e := range descriptor.Entries {
		binding := int(e.Binding)
		if e.Buffer.Type != wgpu.BufferBindingTypeUniform {
			return fmt.Errorf("%s: binding %d is not a uniform buffer", provider.Label(), binding)
		}
		buf := provider.Buffer(binding)
		if buf == nil {
			var err error
			buf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
				Label: fmt.Sprintf("%s Uniform %d", provider.Label(), binding),
				Size:  e.Buffer.MinBindingSize,
				Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
			})
			if err != nil {
				return fmt.Errorf("%s: uniform %d: %w", provider.Label(), binding, err)
			}
			provider.SetBuffer(binding, buf)
		}
		entries = append(entries, wgpu.BindGroupEntry{Binding: e.Binding, Buffer: buf, Size: wgpu.WholeSize})
	}

	group, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("%s: bind group: %w", provider.Label(), err)
	}
	provider.SetBindGroup(group)
	return nil
}

func (b *wgpuRendererBackendImpl) SetInstanceData(provider bind_group_provider.BindGroupProvider, slot attribute.Slot, data []byte, instanceCount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf := provider.InstanceBuffer(slot)
	if buf != nil && b.instanceAlloc[buf] == uint64(len(data)) {
		b.queue.WriteBuffer(buf, 0, data)
	} else {
		created, err := b.uploadBuffer(fmt.Sprintf("%s %s Instance Buffer", provider.Label(), slot), wgpu.BufferUsageVertex, data)
		if err != nil {
			return err
		}
		delete(b.instanceAlloc, buf)
		b.instanceAlloc[created] = uint64(len(data))
		// the provider releases the buffer it replaces
		provider.SetInstanceBuffer(slot, created)
	}
	provider.SetInstanceCount(instanceCount)
	return nil
}

func (b *wgpuRendererBackendImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		if buf := w.Provider.Buffer(w.Binding); buf != nil {
			b.queue.WriteBuffer(buf, w.Offset, w.Data)
		}
	}
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frame.surface != nil {
		return errFrameInFlight
	}
	surface, err := b.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("acquire surface texture: %w", err)
	}
	b.frame.surface = surface
	if b.frame.view, err = surface.CreateView(nil); err != nil {
		b.frame.releaseSurface()
		return fmt.Errorf("surface view: %w", err)
	}
	if b.frame.encoder, err = b.device.CreateCommandEncoder(nil); err != nil {
		b.frame.releaseSurface()
		return fmt.Errorf("command encoder: %w", err)
	}
	b.frame.pass = b.frame.encoder.BeginRenderPass(b.passDescriptor(b.frame.view))
	return nil
}

// passDescriptor describes the main pass into target. With MSAA the pass draws into the
// multisampled texture and resolves into target, and the samples themselves are discarded.
func (b *wgpuRendererBackendImpl) passDescriptor(target *wgpu.TextureView) *wgpu.RenderPassDescriptor {
	color := wgpu.RenderPassColorAttachment{
		View:       target,
		LoadOp:     wgpu.LoadOpClear,
		StoreOp:    wgpu.StoreOpStore,
		ClearValue: b.clearColor,
	}
	if b.msaa.view != nil {
		color.View = b.msaa.view
		color.ResolveTarget = target
		color.StoreOp = wgpu.StoreOpDiscard
	}
	return &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{color},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depth.view,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
}

func (b *wgpuRendererBackendImpl) DrawCall(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) {
	b.mu.Lock()
	defer b.mu.Unlock()

	pass := b.frame.pass
	if pass == nil {
		return
	}
	pass.SetPipeline(p.RenderPipeline())
	for i, bg := range bindGroups {
		pass.SetBindGroup(uint32(i), bg.BindGroup(), nil)
	}
	pass.SetVertexBuffer(0, meshProvider.VertexBuffer(), 0, wgpu.WholeSize)
	for i, slot := range p.InstanceSlots() {
		pass.SetVertexBuffer(uint32(i+1), meshProvider.InstanceBuffer(slot), 0, wgpu.WholeSize)
	}
	pass.SetIndexBuffer(meshProvider.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	pass.DrawIndexed(uint32(meshProvider.IndexCount()), uint32(meshProvider.InstanceCount()), 0, 0, 0)
}

func (b *wgpuRendererBackendImpl) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frame.pass == nil {
		return
	}
	b.frame.pass.End()
	commands, err := b.frame.encoder.Finish(nil)
	b.frame.releaseEncoder()
	if err != nil {
		// nothing to present
		b.frame.releaseSurface()
		return
	}
	b.queue.Submit(commands)
	commands.Release()
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frame.surface == nil {
		return
	}
	b.surface.Present()
	b.frame.releaseSurface()
}

// denseGroupIndices returns the sorted group indices of merged, which must be exactly 0..n-1.
// A pipeline layout cannot hold a nil bind group layout, so gaps are rejected.
func denseGroupIndices(merged map[int]wgpu.BindGroupLayoutDescriptor) ([]int, error) {
	groups := slices.Sorted(maps.Keys(merged))
	for i, g := range groups {
		if g != i {
			return nil, fmt.Errorf("bind groups must be numbered from 0 without gaps, missing group %d", i)
		}
	}
	return groups, nil
}
