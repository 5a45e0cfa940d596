package shader

import (
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-canvas/engine/renderer/attribute"
	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies the pipeline stage a shader is written for.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex stage. Its input structs define the pipeline's vertex buffers.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment stage, paired with a vertex shader.
	ShaderTypeFragment
)

// String returns the stage name.
func (t ShaderType) String() string {
	switch t {
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	default:
		return fmt.Sprintf("ShaderType(%d)", int(t))
	}
}

// shader is the implementation of the Shader interface.
type shader struct {
	key                        string
	source                     string
	shaderType                 ShaderType
	entryPoint                 string
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	vertexLayouts              []wgpu.VertexBufferLayout
	instanceSlots              []attribute.Slot
	declarations               []Annotation
	module                     *wgpu.ShaderModuleDescriptor
}

// Shader is a pre-processed and parsed WGSL shader. It exposes everything the renderer needs to
// build a pipeline: the module, entry point, bind group layouts and, for vertex shaders, the
// vertex buffer layouts with the instance slots they consume.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the pre-processed WGSL source.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// ShaderType returns the stage this shader was parsed for.
	//
	// Returns:
	//   - ShaderType: ShaderTypeVertex or ShaderTypeFragment
	ShaderType() ShaderType

	// EntryPoint returns the entry point name for this shader.
	//
	// Returns:
	//   - string: the entry point name (e.g. "vs_main")
	EntryPoint() string

	// BindGroupLayoutDescriptors retrieves all parsed bind group layout descriptors, keyed by
	// group index.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName retrieves the variable name declared at a group and binding.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name, or an empty string if not found
	BindGroupVarName(group, binding int) string

	// BindGroupFromVarName retrieves the binding index of a variable within a group.
	//
	// Parameters:
	//   - group: the bind group index
	//   - varName: the variable name within the group
	//
	// Returns:
	//   - int: the binding index, or -1 if not found
	//   - bool: true if the variable name was found
	BindGroupFromVarName(group int, varName string) (int, bool)

	// VertexLayouts returns the vertex buffer layouts in buffer slot order. Layout 0 is the
	// mesh; layout i+1 belongs to InstanceSlots()[i]. Nil for fragment shaders.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the ordered vertex buffer layouts
	VertexLayouts() []wgpu.VertexBufferLayout

	// InstanceSlots returns the attribute slots this shader reads per instance, in slot order.
	//
	// Returns:
	//   - []attribute.Slot: the instance slots
	InstanceSlots() []attribute.Slot

	// Declarations returns the group and instance annotations found during pre-processing.
	//
	// Returns:
	//   - []Annotation: declarations in source order
	Declarations() []Annotation

	// Module returns the shader module descriptor built from the pre-processed source.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the WGSL module descriptor
	Module() *wgpu.ShaderModuleDescriptor
}

var _ Shader = &shader{}

// NewShader loads and parses a shader from disk, panicking on failure. Use LoadShader when
// the error should be handled.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the stage the shader is written for
//   - sourcePath: the file path to read WGSL source from
//
// Returns:
//   - Shader: the parsed shader
func NewShader(key string, shaderType ShaderType, sourcePath string) Shader {
	s, err := LoadShader(key, shaderType, sourcePath)
	if err != nil {
		panic(err.Error())
	}
	return s
}

// LoadShader reads a WGSL file and parses it with ParseShader.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the stage the shader is written for
//   - sourcePath: the file path to read WGSL source from
//
// Returns:
//   - Shader: the parsed shader
//   - error: a read, pre-processing or layout error
func LoadShader(key string, shaderType ShaderType, sourcePath string) (Shader, error) {
	if sourcePath == "" {
		return nil, fmt.Errorf("shader: %s has no source path", key)
	}
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("shader: failed to read source file %q: %w", sourcePath, err)
	}
	return ParseShader(key, shaderType, string(data))
}

// ParseShader pre-processes WGSL source and extracts the entry point, bind group layouts and,
// for vertex shaders, the vertex buffer layouts. Instance structs are checked against their
// attribute slot here, so a shader that disagrees with the instance buffers never reaches the GPU.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the stage the shader is written for
//   - source: the raw WGSL source
//
// Returns:
//   - Shader: the parsed shader
//   - error: a pre-processing or layout error
func ParseShader(key string, shaderType ShaderType, source string) (Shader, error) {
	pp := NewPreProcessor()
	processed, err := pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("shader: failed to pre-process %s: %w", key, err)
	}

	s := &shader{
		key:          key,
		source:       processed,
		shaderType:   shaderType,
		declarations: append([]Annotation(nil), pp.Declarations()...),
		module: &wgpu.ShaderModuleDescriptor{
			Label: key,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
				Code: processed,
			},
		},
	}

	s.entryPoint = parseEntryPoint(processed, shaderType)
	if s.entryPoint == "" {
		return nil, fmt.Errorf("shader: %s has no @%s entry point", key, shaderType)
	}

	instances := make(map[string]attribute.Slot)
	seen := make(map[attribute.Slot]bool)
	for _, d := range s.declarations {
		if d.Type != AnnotationTypeInstance {
			continue
		}
		if seen[d.Slot] {
			return nil, fmt.Errorf("shader: %s: %w: slot %s is bound twice", key, ErrInstanceLayout, d.Slot)
		}
		seen[d.Slot] = true
		instances[d.Struct] = d.Slot
	}

	var visibility wgpu.ShaderStage
	switch shaderType {
	case ShaderTypeVertex:
		visibility = wgpu.ShaderStageVertex
		s.vertexLayouts, s.instanceSlots, err = parseVertexLayouts(processed, instances)
		if err != nil {
			return nil, fmt.Errorf("shader: %s: %w", key, err)
		}
	case ShaderTypeFragment:
		visibility = wgpu.ShaderStageFragment
		if len(instances) > 0 {
			return nil, fmt.Errorf("shader: %s: %w: instance structs belong in the vertex stage", key, ErrInstanceLayout)
		}
	}
	s.bindGroupLayoutDescriptors, s.bindingVarNames = parseBindGroupLayouts(processed, visibility)
	return s, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindGroupVarName(group, binding int) string {
	if s.bindingVarNames[group] == nil {
		return ""
	}
	return s.bindingVarNames[group][binding]
}

func (s *shader) BindGroupFromVarName(group int, varName string) (int, bool) {
	for binding, name := range s.bindingVarNames[group] {
		if name == varName {
			return binding, true
		}
	}
	return -1, false
}

func (s *shader) VertexLayouts() []wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) InstanceSlots() []attribute.Slot {
	return s.instanceSlots
}

func (s *shader) Declarations() []Annotation {
	return s.declarations
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}
