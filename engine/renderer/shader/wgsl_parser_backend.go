package shader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-canvas/engine/renderer/attribute"
	"github.com/cogentcore/webgpu/wgpu"
)

// roundUpAlign rounds value up to a multiple of the power-of-two alignment. A zero alignment
// leaves value unchanged.
func roundUpAlign(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// resolveTypeLayout returns the size and alignment of a primitive, an already resolved struct or
// a fixed-size array array<T, N>. Runtime-sized arrays only appear in storage buffers, which the
// renderer never binds, so they resolve as unknown.
//
// Parameters:
//   - typeName: the WGSL type name, e.g. "f32", "CameraUniform" or "array<vec4<f32>, 4>"
//   - knownTypes: struct layouts resolved so far
//
// Returns:
//   - wgslTypeLayout: the resolved layout
//   - bool: false if the type is unknown or runtime-sized
func resolveTypeLayout(typeName string, knownTypes map[string]wgslTypeLayout) (wgslTypeLayout, bool) {
	if layout, ok := wgslPrimitiveLayoutMap[typeName]; ok {
		return layout, true
	}
	if layout, ok := knownTypes[typeName]; ok {
		return layout, true
	}

	inner, ok := strings.CutPrefix(typeName, "array<")
	if !ok || !strings.HasSuffix(inner, ">") {
		return wgslTypeLayout{}, false
	}
	elem, count, sized := strings.Cut(inner[:len(inner)-1], ",")
	if !sized {
		return wgslTypeLayout{}, false
	}
	n, err := strconv.ParseUint(strings.TrimSpace(count), 10, 64)
	if err != nil {
		return wgslTypeLayout{}, false
	}
	el, ok := resolveTypeLayout(strings.TrimSpace(elem), knownTypes)
	if !ok {
		return wgslTypeLayout{}, false
	}
	return wgslTypeLayout{n * roundUpAlign(el.align, el.size), el.align}, true
}

// computeStructLayout lays out the fields of ps at their aligned offsets and rounds the total
// up to the widest field alignment. @builtin fields take no buffer space.
//
// Parameters:
//   - ps: the parsed struct
//   - knownTypes: struct layouts resolved so far
//
// Returns:
//   - wgslTypeLayout: the struct layout
//   - bool: false if any field type is not yet resolvable
func computeStructLayout(ps parsedStruct, knownTypes map[string]wgslTypeLayout) (wgslTypeLayout, bool) {
	var offset uint64
	align := uint64(1)
	for _, field := range ps.fields {
		if field.isBuiltin {
			continue
		}
		fl, ok := resolveTypeLayout(field.typeName, knownTypes)
		if !ok {
			return wgslTypeLayout{}, false
		}
		offset = roundUpAlign(fl.align, offset) + fl.size
		align = max(align, fl.align)
	}
	return wgslTypeLayout{roundUpAlign(align, offset), align}, true
}

// computeStructSizes lays out every parsed struct. Structs that embed other structs resolve on
// a later pass; anything still unresolved when a pass makes no progress is left out.
//
// Parameters:
//   - structs: all struct blocks in the source
//
// Returns:
//   - map[string]wgslTypeLayout: layouts by struct name
func computeStructSizes(structs []parsedStruct) map[string]wgslTypeLayout {
	resolved := make(map[string]wgslTypeLayout, len(structs))
	pending := append([]parsedStruct(nil), structs...)
	for len(pending) > 0 {
		var left []parsedStruct
		for _, ps := range pending {
			if layout, ok := computeStructLayout(ps, resolved); ok {
				resolved[ps.name] = layout
			} else {
				left = append(left, ps)
			}
		}
		if len(left) == len(pending) {
			break
		}
		pending = left
	}
	return resolved
}

// classifyResource builds the layout entry of a var<addressSpace> declaration. Only buffers get a
// binding type; textures and samplers are not bound by this renderer.
func classifyResource(binding uint32, visibility wgpu.ShaderStage, addressSpace string) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{Binding: binding, Visibility: visibility}
	space, access, _ := strings.Cut(addressSpace, ",")
	switch strings.TrimSpace(space) {
	case "uniform":
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
	case "storage":
		entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
		if strings.TrimSpace(access) == "read_write" {
			entry.Buffer.Type = wgpu.BufferBindingTypeStorage
		}
	}
	return entry
}

// stripComments drops // line comments and nested /* */ block comments from WGSL source in a
// single pass. Newlines ending a line comment are kept so line structure survives.
//
// Parameters:
//   - source: raw WGSL source
//
// Returns:
//   - string: the source without comments
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		two := ""
		if i+1 < len(source) {
			two = source[i : i+2]
		}
		switch {
		case two == "/*":
			depth++
			i++
		case two == "*/" && depth > 0:
			depth--
			i++
		case depth > 0:
		case two == "//":
			nl := strings.IndexByte(source[i:], '\n')
			if nl < 0 {
				return sb.String()
			}
			i += nl - 1
		default:
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}

// isVertexInputStruct reports whether ps only carries @location fields. Vertex outputs also hold
// @builtin(position), which rules them out.
func isVertexInputStruct(ps parsedStruct) bool {
	located := false
	for _, f := range ps.fields {
		if f.isBuiltin {
			return false
		}
		located = located || f.location >= 0
	}
	return located
}

// buildVertexBufferLayout packs the fields of ps back to back into a per-vertex layout.
//
// Parameters:
//   - ps: a vertex input struct
//
// Returns:
//   - wgpu.VertexBufferLayout: the layout, stride equal to the packed size
//   - bool: false if a field has no vertex format
func buildVertexBufferLayout(ps parsedStruct) (wgpu.VertexBufferLayout, bool) {
	layout := wgpu.VertexBufferLayout{
		StepMode:   wgpu.VertexStepModeVertex,
		Attributes: make([]wgpu.VertexAttribute, len(ps.fields)),
	}
	for i, f := range ps.fields {
		info, ok := wgslVertexFormatMap[f.typeName]
		if !ok {
			return wgpu.VertexBufferLayout{}, false
		}
		layout.Attributes[i] = wgpu.VertexAttribute{
			Format:         info.format,
			Offset:         layout.ArrayStride,
			ShaderLocation: uint32(f.location),
		}
		layout.ArrayStride += info.size
	}
	return layout, true
}

// buildInstanceBufferLayout converts a struct bound to an attribute slot into an instance-stepped
// vertex buffer layout. Every field must be a float type and the packed size must equal the
// slot stride, so the buffers written by the instancing package can be bound unchanged.
//
// Parameters:
//   - ps: the parsed instance struct
//   - slot: the attribute slot named by the struct's annotation
//
// Returns:
//   - wgpu.VertexBufferLayout: the per-instance layout
//   - error: an error wrapping ErrInstanceLayout on a mismatch
func buildInstanceBufferLayout(ps parsedStruct, slot attribute.Slot) (wgpu.VertexBufferLayout, error) {
	for _, f := range ps.fields {
		info, ok := wgslVertexFormatMap[f.typeName]
		if !ok || !info.float {
			return wgpu.VertexBufferLayout{}, fmt.Errorf("%w: %s.%s has type %s, slot %s needs f32 components", ErrInstanceLayout, ps.name, f.name, f.typeName, slot)
		}
	}
	layout, _ := buildVertexBufferLayout(ps)
	if layout.ArrayStride != slot.Stride() {
		return wgpu.VertexBufferLayout{}, fmt.Errorf("%w: %s is %d bytes, slot %s has a %d byte stride", ErrInstanceLayout, ps.name, layout.ArrayStride, slot, slot.Stride())
	}
	layout.StepMode = wgpu.VertexStepModeInstance
	return layout, nil
}

// splitAtTopLevelCommas splits a struct body at the commas that separate fields, skipping the
// ones inside a type parameter list such as array<T, N>.
func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	for {
		i := strings.IndexFunc(s, func(r rune) bool {
			switch r {
			case '<':
				depth++
			case '>':
				depth = max(depth-1, 0)
			case ',':
				return depth == 0
			}
			return false
		})
		if i < 0 {
			return append(parts, s)
		}
		parts = append(parts, s[:i])
		s = s[i+1:]
	}
}
