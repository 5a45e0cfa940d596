package bind_group_provider

import (
	"github.com/Carmen-Shannon/oxy-canvas/engine/renderer/attribute"
	"github.com/cogentcore/webgpu/wgpu"
)

// bindGroupProvider is the implementation of the BindGroupProvider interface.
type bindGroupProvider struct {
	label           string
	bindGroup       *wgpu.BindGroup
	bindGroupLayout *wgpu.BindGroupLayout
	buffers         map[int]*wgpu.Buffer

	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	indexCount   int

	instanceBuffers map[attribute.Slot]*wgpu.Buffer
	instanceCount   int
}

// BindGroupProvider owns the GPU resources of one drawable or one uniform block: a bind group
// with its uniform buffers, the mesh vertex and index buffers, and one vertex buffer per
// per-instance attribute slot.
type BindGroupProvider interface {
	// Release frees every GPU resource held by the provider.
	Release()

	// Label returns the debug label used for GPU resources created for this provider.
	//
	// Returns:
	//   - string: the label
	Label() string

	// BindGroup returns the bind group, or nil before InitBindGroup.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group
	BindGroup() *wgpu.BindGroup

	// BindGroupLayout returns the bind group layout, or nil before InitBindGroup.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the bind group layout
	BindGroupLayout() *wgpu.BindGroupLayout

	// Buffer returns the uniform buffer at a binding index.
	//
	// Parameters:
	//   - binding: the binding index within the bind group
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer, or nil if none is set
	Buffer(binding int) *wgpu.Buffer

	// VertexBuffer returns the per-vertex mesh buffer.
	//
	// Returns:
	//   - *wgpu.Buffer: the vertex buffer
	VertexBuffer() *wgpu.Buffer

	// IndexBuffer returns the mesh index buffer.
	//
	// Returns:
	//   - *wgpu.Buffer: the index buffer
	IndexBuffer() *wgpu.Buffer

	// IndexCount returns the number of indices to draw.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// InstanceBuffer returns the vertex buffer backing a per-instance attribute slot.
	//
	// Parameters:
	//   - slot: the attribute slot
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer, or nil if the slot has not been written yet
	InstanceBuffer(slot attribute.Slot) *wgpu.Buffer

	// InstanceCount returns the number of instances described by the instance buffers.
	//
	// Returns:
	//   - int: the instance count
	InstanceCount() int

	SetBindGroup(bg *wgpu.BindGroup)
	SetBindGroupLayout(bgl *wgpu.BindGroupLayout)
	SetBuffer(binding int, buf *wgpu.Buffer)
	SetVertexBuffer(buf *wgpu.Buffer)
	SetIndexBuffer(buf *wgpu.Buffer)
	SetIndexCount(count int)

	// SetInstanceBuffer replaces the buffer of a slot, releasing the previous one if it differs.
	//
	// Parameters:
	//   - slot: the attribute slot
	//   - buf: the new buffer
	SetInstanceBuffer(slot attribute.Slot, buf *wgpu.Buffer)

	SetInstanceCount(count int)
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates an empty BindGroupProvider.
//
// Parameters:
//   - label: the debug label for GPU resources created for this provider
//   - options: optional configuration
//
// Returns:
//   - BindGroupProvider: the new provider
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:           label,
		buffers:         make(map[int]*wgpu.Buffer),
		instanceBuffers: make(map[attribute.Slot]*wgpu.Buffer),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout {
	return p.bindGroupLayout
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) VertexBuffer() *wgpu.Buffer {
	return p.vertexBuffer
}

func (p *bindGroupProvider) IndexBuffer() *wgpu.Buffer {
	return p.indexBuffer
}

func (p *bindGroupProvider) IndexCount() int {
	return p.indexCount
}

func (p *bindGroupProvider) InstanceBuffer(slot attribute.Slot) *wgpu.Buffer {
	return p.instanceBuffers[slot]
}

func (p *bindGroupProvider) InstanceCount() int {
	return p.instanceCount
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBindGroupLayout(bgl *wgpu.BindGroupLayout) {
	p.bindGroupLayout = bgl
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) SetVertexBuffer(buf *wgpu.Buffer) {
	p.vertexBuffer = buf
}

func (p *bindGroupProvider) SetIndexBuffer(buf *wgpu.Buffer) {
	p.indexBuffer = buf
}

func (p *bindGroupProvider) SetIndexCount(count int) {
	p.indexCount = count
}

func (p *bindGroupProvider) SetInstanceBuffer(slot attribute.Slot, buf *wgpu.Buffer) {
	if old := p.instanceBuffers[slot]; old != nil && old != buf {
		old.Release()
	}
	p.instanceBuffers[slot] = buf
}

func (p *bindGroupProvider) SetInstanceCount(count int) {
	p.instanceCount = count
}

func (p *bindGroupProvider) Release() {
	for _, buf := range p.buffers {
		drop(&buf)
	}
	clear(p.buffers)
	for _, buf := range p.instanceBuffers {
		drop(&buf)
	}
	clear(p.instanceBuffers)
	p.instanceCount = 0

	drop(&p.vertexBuffer)
	drop(&p.indexBuffer)
	drop(&p.bindGroup)
	drop(&p.bindGroupLayout)
}

// drop releases *ref if it is set and clears it.
func drop[T any, PT interface {
	*T
	Release()
}](ref *PT) {
	if *ref != nil {
		(*ref).Release()
		*ref = nil
	}
}
