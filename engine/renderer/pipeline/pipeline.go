package pipeline

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/Carmen-Shannon/oxy-canvas/engine/renderer/attribute"
	"github.com/Carmen-Shannon/oxy-canvas/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrIncomplete is wrapped when a pipeline is missing a shader or has them in the wrong stage.
var ErrIncomplete = errors.New("pipeline: incomplete render pipeline")

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	pipelineKey string

	vertexShader, fragmentShader shader.Shader

	renderPipeline *wgpu.RenderPipeline

	depthTestEnabled  bool
	depthWriteEnabled bool
	blendEnabled      bool
	cullMode          wgpu.CullMode
	topology          wgpu.PrimitiveTopology
	frontFace         wgpu.FrontFace
	writeMask         wgpu.ColorWriteMask
	blendState        *wgpu.BlendState
}

// Pipeline describes a render pipeline: its vertex and fragment shaders plus the fixed-function
// state used when the renderer creates the GPU object. The vertex buffer layout, including the
// per-instance slots, comes from the vertex shader.
type Pipeline interface {
	// PipelineKey returns the unique key used to look the pipeline up at draw time.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	VertexShader() shader.Shader
	FragmentShader() shader.Shader

	// VertexLayouts returns the vertex shader's buffer layouts: the mesh buffer followed by one
	// buffer per instance slot.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the ordered layouts
	VertexLayouts() []wgpu.VertexBufferLayout

	// InstanceSlots returns the attribute slots bound at vertex buffer i+1, in order.
	//
	// Returns:
	//   - []attribute.Slot: the per-instance slots read by the vertex shader
	InstanceSlots() []attribute.Slot

	// BindGroupLayouts merges the bind group layouts of both shaders. A binding used by both stages
	// is visible to both. Bind groups created for this pipeline must use these descriptors.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: the merged descriptors keyed by group index
	BindGroupLayouts() map[int]wgpu.BindGroupLayoutDescriptor

	// Validate checks that both shaders are set and match their stage.
	//
	// Returns:
	//   - error: an error wrapping ErrIncomplete, or nil
	Validate() error

	// RenderPipeline returns the GPU pipeline, or nil before the renderer registers it.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the GPU pipeline
	RenderPipeline() *wgpu.RenderPipeline

	DepthTestEnabled() bool
	DepthWriteEnabled() bool
	BlendEnabled() bool
	CullMode() wgpu.CullMode
	Topology() wgpu.PrimitiveTopology
	FrontFace() wgpu.FrontFace
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the blend state applied when blending is enabled.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state
	BlendState() *wgpu.BlendState

	// SetRenderPipeline stores the GPU pipeline created by the renderer.
	//
	// Parameters:
	//   - p: the WebGPU render pipeline to set
	SetRenderPipeline(p *wgpu.RenderPipeline)
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a render pipeline description with depth test and write on, back-face
// culling of counter-clockwise triangles, and blending off.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: the new pipeline description
func NewPipeline(pipelineKey string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:       pipelineKey,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		cullMode:          wgpu.CullModeBack,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) VertexShader() shader.Shader {
	return p.vertexShader
}

func (p *pipeline) FragmentShader() shader.Shader {
	return p.fragmentShader
}

func (p *pipeline) VertexLayouts() []wgpu.VertexBufferLayout {
	if p.vertexShader == nil {
		return nil
	}
	return p.vertexShader.VertexLayouts()
}

func (p *pipeline) InstanceSlots() []attribute.Slot {
	if p.vertexShader == nil {
		return nil
	}
	return p.vertexShader.InstanceSlots()
}

func (p *pipeline) BindGroupLayouts() map[int]wgpu.BindGroupLayoutDescriptor {
	var vertex, fragment map[int]wgpu.BindGroupLayoutDescriptor
	if p.vertexShader != nil {
		vertex = p.vertexShader.BindGroupLayoutDescriptors()
	}
	if p.fragmentShader != nil {
		fragment = p.fragmentShader.BindGroupLayoutDescriptors()
	}
	return mergeBindGroupLayouts(vertex, fragment)
}

func (p *pipeline) Validate() error {
	switch {
	case p.vertexShader == nil:
		return fmt.Errorf("%w: %s has no vertex shader", ErrIncomplete, p.pipelineKey)
	case p.fragmentShader == nil:
		return fmt.Errorf("%w: %s has no fragment shader", ErrIncomplete, p.pipelineKey)
	case p.vertexShader.ShaderType() != shader.ShaderTypeVertex:
		return fmt.Errorf("%w: %s: %s is a %s shader", ErrIncomplete, p.pipelineKey, p.vertexShader.Key(), p.vertexShader.ShaderType())
	case p.fragmentShader.ShaderType() != shader.ShaderTypeFragment:
		return fmt.Errorf("%w: %s: %s is a %s shader", ErrIncomplete, p.pipelineKey, p.fragmentShader.Key(), p.fragmentShader.ShaderType())
	case len(p.vertexShader.VertexLayouts()) == 0:
		return fmt.Errorf("%w: %s: vertex shader %s declares no vertex input", ErrIncomplete, p.pipelineKey, p.vertexShader.Key())
	}
	return nil
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

// mergeBindGroupLayouts folds the fragment stage's bind groups into the vertex stage's. A binding
// declared by both stages keeps one entry whose visibility covers both; the vertex label wins.
func mergeBindGroupLayouts(vertexLayouts, fragmentLayouts map[int]wgpu.BindGroupLayoutDescriptor) map[int]wgpu.BindGroupLayoutDescriptor {
	merged := maps.Clone(vertexLayouts)
	if merged == nil {
		merged = make(map[int]wgpu.BindGroupLayoutDescriptor, len(fragmentLayouts))
	}

	for g, frag := range fragmentLayouts {
		desc, shared := merged[g]
		if !shared {
			merged[g] = frag
			continue
		}

		entries := slices.Clone(desc.Entries)
		for _, e := range frag.Entries {
			if i := slices.IndexFunc(entries, func(v wgpu.BindGroupLayoutEntry) bool { return v.Binding == e.Binding }); i >= 0 {
				entries[i].Visibility |= e.Visibility
			} else {
				entries = append(entries, e)
			}
		}
		slices.SortFunc(entries, func(a, b wgpu.BindGroupLayoutEntry) int { return cmp.Compare(a.Binding, b.Binding) })
		merged[g] = wgpu.BindGroupLayoutDescriptor{Label: desc.Label, Entries: entries}
	}
	return merged
}
