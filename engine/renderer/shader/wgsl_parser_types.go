package shader

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// vertexFormatInfo holds the wgpu vertex format and its byte size for offset calculation
type vertexFormatInfo struct {
	format wgpu.VertexFormat
	size   uint64
	float  bool
}

// wgslTypeLayout holds the byte size and alignment for a WGSL type.
// Used to compute MinBindingSize for buffer bindings.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

// parsedField represents a single field extracted from a WGSL struct during parsing
type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

// parsedStruct represents a WGSL struct block extracted during parsing
type parsedStruct struct {
	name   string
	fields []parsedField
}

// wgslScalar describes one 32-bit scalar kind and the vertex formats of its 1 to 4 wide vectors.
type wgslScalar struct {
	name    string
	suffix  string
	float   bool
	formats [4]wgpu.VertexFormat
}

var wgslScalars = []wgslScalar{
	{"f32", "f", true, [4]wgpu.VertexFormat{wgpu.VertexFormatFloat32, wgpu.VertexFormatFloat32x2, wgpu.VertexFormatFloat32x3, wgpu.VertexFormatFloat32x4}},
	{"i32", "i", false, [4]wgpu.VertexFormat{wgpu.VertexFormatSint32, wgpu.VertexFormatSint32x2, wgpu.VertexFormatSint32x3, wgpu.VertexFormatSint32x4}},
	{"u32", "u", false, [4]wgpu.VertexFormat{wgpu.VertexFormatUint32, wgpu.VertexFormatUint32x2, wgpu.VertexFormatUint32x3, wgpu.VertexFormatUint32x4}},
}

var (
	// wgslVertexFormatMap maps scalar and vector type names, in both the vecN<T> and the vecNx
	// spelling, to a vertex format.
	wgslVertexFormatMap = map[string]vertexFormatInfo{}

	// wgslPrimitiveLayoutMap maps scalar, vector and f32 matrix type names to their uniform
	// buffer size and alignment (https://www.w3.org/TR/WGSL/#alignment-and-size).
	wgslPrimitiveLayoutMap = map[string]wgslTypeLayout{"bool": {4, 4}}
)

// vecAlign is the alignment of a 32-bit vector with n components: vec3 aligns like vec4.
func vecAlign(n int) uint64 {
	if n == 2 {
		return 8
	}
	return 16
}

func init() {
	for _, sc := range wgslScalars {
		wgslVertexFormatMap[sc.name] = vertexFormatInfo{sc.formats[0], 4, sc.float}
		wgslPrimitiveLayoutMap[sc.name] = wgslTypeLayout{4, 4}
		for n := 2; n <= 4; n++ {
			info := vertexFormatInfo{sc.formats[n-1], uint64(4 * n), sc.float}
			layout := wgslTypeLayout{uint64(4 * n), vecAlign(n)}
			for _, name := range []string{fmt.Sprintf("vec%d<%s>", n, sc.name), fmt.Sprintf("vec%d%s", n, sc.suffix)} {
				wgslVertexFormatMap[name] = info
				wgslPrimitiveLayoutMap[name] = layout
			}
		}
	}
	// matCxR<f32> is C columns of vecR<f32>, each padded to the column alignment.
	for c := 2; c <= 4; c++ {
		for r := 2; r <= 4; r++ {
			align := vecAlign(r)
			wgslPrimitiveLayoutMap[fmt.Sprintf("mat%dx%d<f32>", c, r)] = wgslTypeLayout{uint64(c) * align, align}
		}
	}
}
