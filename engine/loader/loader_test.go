package loader

import (
	"io/fs"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/Carmen-Shannon/oxy-canvas/engine/renderer/attribute"
	"github.com/Carmen-Shannon/oxy-canvas/engine/renderer/shader"
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

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"shaders/hover-vert.wgsl": {Data: []byte(vertexSource)},
		"shaders/flat-frag.wgsl":  {Data: []byte(fragmentSource)},
		"shaders/broken.wgsl":     {Data: []byte("fn nothing() {}")},
	}
}

// countingBackend wraps another backend and counts loads.
type countingBackend struct {
	next  loaderBackend
	loads atomic.Int32
}

func (b *countingBackend) Load(req ShaderRequest) (shader.Shader, error) {
	b.loads.Add(1)
	return b.next.Load(req)
}

func TestLoadShadersInParallel(t *testing.T) {
	l := NewLoader(WithFS(testFS()), WithWorkers(2))
	shaders, err := l.LoadShaders(
		ShaderRequest{Key: "hover_vs", Type: shader.ShaderTypeVertex, Path: "shaders/hover-vert.wgsl"},
		ShaderRequest{Key: "flat_fs", Type: shader.ShaderTypeFragment, Path: "shaders/flat-frag.wgsl"},
	)
	require.NoError(t, err)
	require.Len(t, shaders, 2)
	assert.Equal(t, "vs", shaders["hover_vs"].EntryPoint())
	assert.Equal(t, "fs", shaders["flat_fs"].EntryPoint())
	assert.Same(t, shaders["hover_vs"], l.Shader("hover_vs"))
	assert.Len(t, l.Shaders(), 2)
}

func TestLoadShadersUsesCache(t *testing.T) {
	l := NewLoader(WithFS(testFS())).(*loader)
	counter := &countingBackend{next: l.backend}
	l.backend = counter

	req := ShaderRequest{Key: "flat_fs", Type: shader.ShaderTypeFragment, Path: "shaders/flat-frag.wgsl"}
	first, err := l.LoadShaders(req)
	require.NoError(t, err)
	second, err := l.LoadShaders(req)
	require.NoError(t, err)

	assert.Equal(t, int32(1), counter.loads.Load())
	assert.Same(t, first["flat_fs"], second["flat_fs"])
}

func TestLoadShadersErrors(t *testing.T) {
	l := NewLoader(WithFS(testFS()))

	_, err := l.LoadShaders(
		ShaderRequest{Key: "a", Type: shader.ShaderTypeFragment, Path: "shaders/flat-frag.wgsl"},
		ShaderRequest{Key: "a", Type: shader.ShaderTypeFragment, Path: "shaders/flat-frag.wgsl"},
	)
	assert.ErrorContains(t, err, "requested twice")

	_, err = l.LoadShaders(
		ShaderRequest{Key: "ok", Type: shader.ShaderTypeFragment, Path: "shaders/flat-frag.wgsl"},
		ShaderRequest{Key: "missing", Type: shader.ShaderTypeVertex, Path: "shaders/missing.wgsl"},
		ShaderRequest{Key: "broken", Type: shader.ShaderTypeVertex, Path: "shaders/broken.wgsl"},
	)
	assert.ErrorContains(t, err, `"missing"`)
	assert.Nil(t, l.Shader("ok"))
	assert.Nil(t, l.Shader("broken"))
}

func TestLoadPipeline(t *testing.T) {
	l := NewLoader(WithFS(testFS()))
	p, err := l.LoadPipeline("hover", "shaders/hover-vert.wgsl", "shaders/flat-frag.wgsl")
	require.NoError(t, err)

	assert.Equal(t, "hover", p.PipelineKey())
	assert.Equal(t, []attribute.Slot{attribute.SlotHovered}, p.InstanceSlots())
	assert.NotNil(t, l.Shader("hover_vs"))
	assert.NotNil(t, l.Shader("hover_fs"))

	_, err = l.LoadPipeline("bad", "shaders/hover-vert.wgsl", "shaders/missing.wgsl")
	assert.Error(t, err)
}

func TestWithShaderPrepopulates(t *testing.T) {
	frag, err := shader.ParseShader("flat_fs", shader.ShaderTypeFragment, fragmentSource)
	require.NoError(t, err)

	l := NewLoader(WithShader(frag)).(*loader)
	l.backend = &countingBackend{next: fsLoaderBackend{fsys: fstest.MapFS{}}}
	shaders, err := l.LoadShaders(ShaderRequest{Key: "flat_fs", Type: shader.ShaderTypeFragment, Path: "unused"})
	require.NoError(t, err)
	assert.Same(t, frag, shaders["flat_fs"])
}

func TestFileBackendReportsMissingFile(t *testing.T) {
	_, err := fileLoaderBackend{}.Load(ShaderRequest{Key: "x", Type: shader.ShaderTypeVertex, Path: "does/not/exist.wgsl"})
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
