package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-canvas/engine/renderer/attribute"
	"github.com/Carmen-Shannon/oxy-canvas/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	vertexSource = `
//@oxy:include vertex
//@oxy:instance hovered
struct Highlight {
    @location(8) hovered: f32,
}
@vertex
fn vs(v: VertexInput, h: Highlight) -> @builtin(position) vec4<f32> {
    return vec4<f32>(v.position, h.hovered);
}
`
	fragmentSource = `
@fragment
fn fs() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0);
}
`
)

func shaders(t *testing.T) (shader.Shader, shader.Shader) {
	t.Helper()
	vs, err := shader.ParseShader("vs", shader.ShaderTypeVertex, vertexSource)
	require.NoError(t, err)
	fs, err := shader.ParseShader("fs", shader.ShaderTypeFragment, fragmentSource)
	require.NoError(t, err)
	return vs, fs
}

func TestDefaults(t *testing.T) {
	p := NewPipeline("lit")

	assert.Equal(t, "lit", p.PipelineKey())
	assert.True(t, p.DepthTestEnabled())
	assert.True(t, p.DepthWriteEnabled())
	assert.False(t, p.BlendEnabled())
	assert.Equal(t, wgpu.CullModeBack, p.CullMode())
	assert.Equal(t, wgpu.FrontFaceCCW, p.FrontFace())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, p.Topology())
	assert.Nil(t, p.RenderPipeline())
	assert.Nil(t, p.InstanceSlots())
}

func TestOptions(t *testing.T) {
	p := NewPipeline("overlay",
		WithDepth(true, false),
		WithBlendEnabled(true),
		WithCullMode(wgpu.CullModeNone),
		WithFrontFace(wgpu.FrontFaceCW),
		WithTopology(wgpu.PrimitiveTopologyLineList),
	)

	assert.True(t, p.DepthTestEnabled())
	assert.False(t, p.DepthWriteEnabled())
	assert.True(t, p.BlendEnabled())
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	assert.Equal(t, wgpu.FrontFaceCW, p.FrontFace())
	assert.Equal(t, wgpu.PrimitiveTopologyLineList, p.Topology())
}

func TestInstanceSlotsFromVertexShader(t *testing.T) {
	vs, fs := shaders(t)
	p := NewPipeline("lit", WithVertexShader(vs), WithFragmentShader(fs))

	require.NoError(t, p.Validate())
	assert.Equal(t, []attribute.Slot{attribute.SlotHovered}, p.InstanceSlots())
	assert.Len(t, p.VertexLayouts(), 2)
}

func TestValidate(t *testing.T) {
	vs, fs := shaders(t)
	cases := map[string]Pipeline{
		"no vertex":     NewPipeline("p", WithFragmentShader(fs)),
		"no fragment":   NewPipeline("p", WithVertexShader(vs)),
		"swapped":       NewPipeline("p", WithVertexShader(fs), WithFragmentShader(vs)),
		"fragment only": NewPipeline("p", WithVertexShader(fs), WithFragmentShader(fs)),
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, p.Validate(), ErrIncomplete)
		})
	}
}

func uniformEntry(binding uint32, stage wgpu.ShaderStage) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: stage,
		Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform, MinBindingSize: 16},
	}
}

func TestMergeBindGroupLayouts(t *testing.T) {
	vertex := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Label: "camera", Entries: []wgpu.BindGroupLayoutEntry{uniformEntry(0, wgpu.ShaderStageVertex)}},
	}
	fragment := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{uniformEntry(1, wgpu.ShaderStageFragment), uniformEntry(0, wgpu.ShaderStageFragment)}},
		1: {Label: "light", Entries: []wgpu.BindGroupLayoutEntry{uniformEntry(0, wgpu.ShaderStageFragment)}},
	}

	merged := mergeBindGroupLayouts(vertex, fragment)
	require.Len(t, merged, 2)

	shared := merged[0]
	assert.Equal(t, "camera", shared.Label)
	require.Len(t, shared.Entries, 2)
	assert.Equal(t, uint32(0), shared.Entries[0].Binding)
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, shared.Entries[0].Visibility)
	assert.Equal(t, uint32(1), shared.Entries[1].Binding)
	assert.Equal(t, wgpu.ShaderStageFragment, shared.Entries[1].Visibility)

	assert.Equal(t, "light", merged[1].Label)
}

func TestBindGroupLayoutsFromShaders(t *testing.T) {
	vs, err := shader.ParseShader("vs", shader.ShaderTypeVertex, "//@oxy:include camera\n//@oxy:include vertex\n//@oxy:group 0 0 camera camera\n@vertex\nfn vs(v: VertexInput) -> @builtin(position) vec4<f32> {\n    return camera.view_proj * vec4<f32>(v.position, 1.0);\n}\n")
	require.NoError(t, err)
	fs, err := shader.ParseShader("fs", shader.ShaderTypeFragment, "//@oxy:include camera\n//@oxy:include light\n//@oxy:group 0 0 camera camera\n//@oxy:group 1 0 light light\n@fragment\nfn fs() -> @location(0) vec4<f32> {\n    return vec4<f32>(camera.position * light.intensity, 1.0);\n}\n")
	require.NoError(t, err)

	layouts := NewPipeline("lit", WithVertexShader(vs), WithFragmentShader(fs)).BindGroupLayouts()
	require.Len(t, layouts, 2)
	require.Len(t, layouts[0].Entries, 1)
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, layouts[0].Entries[0].Visibility)
	assert.Equal(t, wgpu.ShaderStageFragment, layouts[1].Entries[0].Visibility)

	assert.Empty(t, NewPipeline("empty").BindGroupLayouts())
}
