package shader

import (
	"cmp"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-canvas/engine/renderer/attribute"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrInstanceLayout is wrapped when an instance struct does not match its attribute slot.
	ErrInstanceLayout = errors.New("shader: instance struct does not match attribute slot")

	// ErrVertexLayout is wrapped when the vertex inputs of a shader cannot be turned into buffer layouts.
	ErrVertexLayout = errors.New("shader: invalid vertex input layout")
)

var (
	// structBlockRegex matches struct declarations and captures the name and body
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// locationRegex matches @location(N) attributes
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)

	// builtinRegex matches @builtin(...) attributes
	builtinRegex = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex matches a struct field line: optional attributes, name, colon, type.
	// The type capture (.+) is greedy to handle parameterized types like array<T, N>.
	fieldRegex = regexp.MustCompile(`(?:(?:@\w+\([^)]*\)\s*)*)*\s*(\w+)\s*:\s*(.+)`)

	// vertexEntryRegex matches @vertex functions and captures the entry point name
	vertexEntryRegex = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)

	// fragmentEntryRegex matches @fragment functions and captures the entry point name
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// bindGroupDeclRegex captures group, binding, optional address space, variable name, and type
	// from declarations like: @group(0) @binding(0) var<uniform> camera: CameraUniform;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// parseVertexLayouts builds the vertex buffer layouts of a vertex shader. A pure vertex input
// struct (only @location fields) that is not bound to an instance slot becomes buffer 0 with
// per-vertex stepping. Every struct named in instances becomes a per-instance buffer; those
// follow in slot order. Instance structs must consist of float fields whose packed size equals
// the slot stride.
//
// Parameters:
//   - source: the pre-processed WGSL source
//   - instances: struct name to attribute slot, from the instance annotations
//
// Returns:
//   - []wgpu.VertexBufferLayout: mesh layout first, then one layout per instance slot
//   - []attribute.Slot: the instance slots, in the same order as layouts[1:]
//   - error: an error wrapping ErrVertexLayout or ErrInstanceLayout
func parseVertexLayouts(source string, instances map[string]attribute.Slot) ([]wgpu.VertexBufferLayout, []attribute.Slot, error) {
	structs := parseStructBlocks(stripComments(source))

	var mesh *wgpu.VertexBufferLayout
	type instanceLayout struct {
		slot   attribute.Slot
		layout wgpu.VertexBufferLayout
	}
	var inst []instanceLayout
	found := make(map[string]bool, len(instances))

	for _, ps := range structs {
		slot, isInstance := instances[ps.name]
		if !isVertexInputStruct(ps) {
			if isInstance {
				return nil, nil, fmt.Errorf("%w: struct %s bound to slot %s has non-location fields", ErrInstanceLayout, ps.name, slot)
			}
			continue
		}
		if isInstance {
			layout, err := buildInstanceBufferLayout(ps, slot)
			if err != nil {
				return nil, nil, err
			}
			inst = append(inst, instanceLayout{slot: slot, layout: layout})
			found[ps.name] = true
			continue
		}
		layout, ok := buildVertexBufferLayout(ps)
		if !ok {
			return nil, nil, fmt.Errorf("%w: struct %s has an unsupported field type", ErrVertexLayout, ps.name)
		}
		if mesh != nil {
			return nil, nil, fmt.Errorf("%w: more than one per-vertex input struct (%s)", ErrVertexLayout, ps.name)
		}
		mesh = &layout
	}

	for name, slot := range instances {
		if !found[name] {
			return nil, nil, fmt.Errorf("%w: struct %s bound to slot %s was not found", ErrInstanceLayout, name, slot)
		}
	}
	if mesh == nil {
		if len(inst) > 0 {
			return nil, nil, fmt.Errorf("%w: instance buffers need a per-vertex input struct", ErrVertexLayout)
		}
		return nil, nil, nil
	}

	slices.SortFunc(inst, func(a, b instanceLayout) int { return cmp.Compare(a.slot, b.slot) })
	layouts := make([]wgpu.VertexBufferLayout, 0, 1+len(inst))
	slots := make([]attribute.Slot, 0, len(inst))
	layouts = append(layouts, *mesh)
	for _, il := range inst {
		layouts = append(layouts, il.layout)
		slots = append(slots, il.slot)
	}
	return layouts, slots, nil
}

// parseBindGroupLayouts collects the @group(N) @binding(M) declarations of source into one
// layout descriptor per group, entries ordered by binding. Uniform and storage buffers get a
// MinBindingSize when their type resolves. Every entry gets the same visibility.
//
// Parameters:
//   - source: the pre-processed WGSL source
//   - visibility: the stage the source belongs to
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors by group
//   - map[int]map[int]string: variable names by group and binding
func parseBindGroupLayouts(source string, visibility wgpu.ShaderStage) (map[int]wgpu.BindGroupLayoutDescriptor, map[int]map[int]string) {
	cleaned := stripComments(source)
	sizes := computeStructSizes(parseStructBlocks(cleaned))

	entries := make(map[int][]wgpu.BindGroupLayoutEntry)
	names := make(map[int]map[int]string)
	for _, m := range bindGroupDeclRegex.FindAllStringSubmatch(cleaned, -1) {
		group, _ := strconv.Atoi(m[1])
		binding, _ := strconv.Atoi(m[2])

		entry := classifyResource(uint32(binding), visibility, strings.TrimSpace(m[3]))
		if entry.Buffer.Type != wgpu.BufferBindingTypeUndefined {
			if l, ok := resolveTypeLayout(strings.TrimSpace(m[5]), sizes); ok {
				entry.Buffer.MinBindingSize = l.size
			}
		}
		entries[group] = append(entries[group], entry)

		if names[group] == nil {
			names[group] = make(map[int]string)
		}
		names[group][binding] = strings.TrimSpace(m[4])
	}

	descriptors := make(map[int]wgpu.BindGroupLayoutDescriptor, len(entries))
	for g, es := range entries {
		slices.SortFunc(es, func(a, b wgpu.BindGroupLayoutEntry) int {
			return cmp.Compare(a.Binding, b.Binding)
		})
		descriptors[g] = wgpu.BindGroupLayoutDescriptor{Entries: es}
	}
	return descriptors, names
}

// entryRegexes finds the entry point function of each stage.
var entryRegexes = map[ShaderType]*regexp.Regexp{
	ShaderTypeVertex:   vertexEntryRegex,
	ShaderTypeFragment: fragmentEntryRegex,
}

// parseEntryPoint returns the name of the first entry point of shaderType in source, or "".
func parseEntryPoint(source string, shaderType ShaderType) string {
	re, ok := entryRegexes[shaderType]
	if !ok {
		return ""
	}
	if m := re.FindStringSubmatch(stripComments(source)); m != nil {
		return m[1]
	}
	return ""
}

// parseStructBlocks parses every struct declaration in comment-free source.
func parseStructBlocks(source string) []parsedStruct {
	var structs []parsedStruct
	for _, m := range structBlockRegex.FindAllStringSubmatch(source, -1) {
		structs = append(structs, parsedStruct{name: m[1], fields: parseStructFields(m[2])})
	}
	return structs
}

// parseStructFields parses a struct body into its fields. A field without @location keeps
// location -1.
func parseStructFields(body string) []parsedField {
	var fields []parsedField
	for _, decl := range splitAtTopLevelCommas(body) {
		fm := fieldRegex.FindStringSubmatch(strings.TrimSpace(decl))
		if fm == nil {
			continue
		}
		f := parsedField{
			name:      fm[1],
			typeName:  strings.TrimSpace(fm[2]),
			location:  -1,
			isBuiltin: builtinRegex.MatchString(decl),
		}
		if lm := locationRegex.FindStringSubmatch(decl); lm != nil {
			f.location, _ = strconv.Atoi(lm[1])
		}
		fields = append(fields, f)
	}
	return fields
}
