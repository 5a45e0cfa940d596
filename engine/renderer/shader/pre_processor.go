// pre_processor.go expands @oxy: annotations in WGSL source. Includes are replaced with the
// embedded struct source of the matching engine GPU type, group annotations become uniform
// binding declarations, and instance annotations are recorded against the struct that follows.
package shader

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Carmen-Shannon/oxy-canvas/engine/camera"
	"github.com/Carmen-Shannon/oxy-canvas/engine/light"
	"github.com/Carmen-Shannon/oxy-canvas/engine/model"
)

// structDeclRegex matches the start of a struct declaration and captures its name.
var structDeclRegex = regexp.MustCompile(`^\s*struct\s+(\w+)`)

// registryEntry pairs an embedded WGSL struct source with its WGSL type name.
type registryEntry struct {
	Source string
	Type   string
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	structRegistry map[AnnotationArg]registryEntry

	// declarations holds group and instance annotations from the last Process call.
	declarations []Annotation
}

// PreProcessor expands @oxy: annotations in WGSL source and collects the declarations the
// renderer and scene need to wire resources.
type PreProcessor interface {
	// Process expands every annotation in source. The declarations list is reset first.
	//
	// Parameters:
	//   - source: the raw WGSL shader source
	//
	// Returns:
	//   - string: the expanded WGSL source
	//   - error: an error if an annotation is malformed, unknown or dangling
	Process(source string) (string, error)

	// Declarations returns the group and instance annotations from the last Process call, in
	// source order.
	//
	// Returns:
	//   - []Annotation: the collected declarations
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with the engine's GPU struct sources registered.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		structRegistry: map[AnnotationArg]registryEntry{
			AnnotationArgCamera: {Source: camera.GPUCameraUniformSource, Type: "CameraUniform"},
			AnnotationArgLight:  {Source: light.GPUHemisphericLightSource, Type: "HemisphericLight"},
			annotationArgVertex: {Source: model.GPUVertexSource, Type: "VertexInput"},
		},
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	var pending *Annotation

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			if m := structDeclRegex.FindStringSubmatch(line); m != nil && pending != nil {
				pending.Struct = m[1]
				p.declarations = append(p.declarations, *pending)
				pending = nil
			}
			out = append(out, line)
			continue
		}
		if pending != nil {
			return "", fmt.Errorf("line %d: @oxy instance annotation is not followed by a struct", pending.Line)
		}

		switch a.Type {
		case annotationTypeInclude:
			entry, ok := p.structRegistry[a.Args[0]]
			if !ok {
				return "", fmt.Errorf("line %d: unknown @oxy:include argument %q", i+1, a.Args[0])
			}
			out = append(out, entry.Source)
		case AnnotationTypeBindingGroup:
			entry := p.structRegistry[a.Args[1]]
			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) var<uniform> %s: %s;", *a.Group, *a.Binding, a.Args[0], entry.Type))
			p.declarations = append(p.declarations, *a)
		case AnnotationTypeInstance:
			pending = a
		default:
			return "", fmt.Errorf("line %d: unknown annotation type %q", i+1, a.Type)
		}
	}
	if pending != nil {
		return "", fmt.Errorf("line %d: @oxy instance annotation is not followed by a struct", pending.Line)
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
