// annotations.go defines the @oxy: annotations understood by the WGSL pre-processor.
// Annotations are single-line WGSL comments. They inject shared struct definitions, generate
// uniform bindings the scene knows how to fill, and tie per-instance vertex structs to an
// attribute slot.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-canvas/engine/renderer/attribute"
)

// annotationPrefix marks an annotation inside a WGSL line comment.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude injects the WGSL source of a registered struct at the annotation site.
	//
	// Syntax: //@oxy:include <struct_type>
	//
	// Example: //@oxy:include camera
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a uniform @group/@binding declaration for a registered
	// struct and records it so the scene can bind the matching provider.
	//
	// Syntax: //@oxy:group <group> <binding> <var_name> <struct_type>
	//
	// Example: //@oxy:group 0 0 camera camera
	AnnotationTypeBindingGroup AnnotationType = "group"

	// AnnotationTypeInstance binds the next struct declaration to a per-instance attribute slot.
	// The struct becomes an instance-stepped vertex buffer whose size must equal the slot stride.
	//
	// Syntax: //@oxy:instance <slot>
	//
	// Example: //@oxy:instance hovered
	AnnotationTypeInstance AnnotationType = "instance"
)

// Annotation is one parsed @oxy: annotation.
type Annotation struct {
	// Type identifies which annotation was parsed.
	Type AnnotationType

	// Args holds the annotation's arguments. The contents depend on Type:
	//   - include:  [0] = struct type key
	//   - group:    [0] = var name, [1] = struct type key
	//   - instance: [0] = slot name
	Args []AnnotationArg

	// Line is the 1-based source line of the annotation.
	Line int

	// Group is the @group index for group annotations. Nil otherwise.
	Group *int

	// Binding is the @binding index for group annotations. Nil otherwise.
	Binding *int

	// Slot is the attribute slot of an instance annotation.
	Slot attribute.Slot

	// Struct is the name of the struct an instance annotation applies to, filled in by the pre-processor.
	Struct string
}

// AnnotationArg is a typed annotation argument.
type AnnotationArg string

const (
	// AnnotationArgCamera identifies the CameraUniform struct.
	// Source: engine/camera/assets/camera_uniform.wgsl
	AnnotationArgCamera AnnotationArg = "camera"

	// AnnotationArgLight identifies the HemisphericLight struct.
	// Source: engine/light/assets/hemispheric_light.wgsl
	AnnotationArgLight AnnotationArg = "light"

	// annotationArgVertex identifies the VertexInput struct for mesh vertices.
	// Source: engine/model/assets/vertex.wgsl
	annotationArgVertex AnnotationArg = "vertex"
)

// validStructTypes lists the struct keys accepted by include.
var validStructTypes = []AnnotationArg{
	AnnotationArgCamera,
	AnnotationArgLight,
	annotationArgVertex,
}

// validUniformTypes lists the struct keys accepted by group. Each has a scene-side provider.
var validUniformTypes = []AnnotationArg{
	AnnotationArgCamera,
	AnnotationArgLight,
}

// annotationForm describes the arguments one annotation type takes.
type annotationForm struct {
	usage string
	arity int
	build func(args []string) (Annotation, error)
}

var annotationForms = map[AnnotationType]annotationForm{
	annotationTypeInclude: {
		usage: "include <struct_type>",
		arity: 1,
		build: func(args []string) (Annotation, error) {
			key := AnnotationArg(args[0])
			if !slices.Contains(validStructTypes, key) {
				return Annotation{}, fmt.Errorf("unknown struct type %q", args[0])
			}
			return Annotation{Args: []AnnotationArg{key}}, nil
		},
	},
	AnnotationTypeBindingGroup: {
		usage: "group <group> <binding> <var_name> <struct_type>",
		arity: 4,
		build: func(args []string) (Annotation, error) {
			group, err := strconv.Atoi(args[0])
			if err != nil {
				return Annotation{}, fmt.Errorf("invalid group number %q: %w", args[0], err)
			}
			binding, err := strconv.Atoi(args[1])
			if err != nil {
				return Annotation{}, fmt.Errorf("invalid binding number %q: %w", args[1], err)
			}
			key := AnnotationArg(args[3])
			if !slices.Contains(validUniformTypes, key) {
				return Annotation{}, fmt.Errorf("unknown uniform type %q", args[3])
			}
			return Annotation{
				Args:    []AnnotationArg{AnnotationArg(args[2]), key},
				Group:   &group,
				Binding: &binding,
			}, nil
		},
	},
	AnnotationTypeInstance: {
		usage: "instance <slot>",
		arity: 1,
		build: func(args []string) (Annotation, error) {
			slot, err := attribute.ParseSlot(args[0])
			if err != nil {
				return Annotation{}, err
			}
			return Annotation{Args: []AnnotationArg{AnnotationArg(args[0])}, Slot: slot}, nil
		},
	},
}

// parseAnnotation reads one WGSL source line. Lines that are not @oxy: comments return nil
// and no error.
//
// Parameters:
//   - line: the raw source line
//   - lineNum: its 1-based line number, used in errors
//
// Returns:
//   - *Annotation: the annotation, or nil
//   - error: a malformed or unknown annotation
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	comment, ok := strings.CutPrefix(strings.TrimSpace(line), "//")
	if !ok {
		return nil, nil
	}
	_, body, ok := strings.Cut(comment, annotationPrefix)
	if !ok {
		return nil, nil
	}

	fields := strings.Fields(body)
	if len(fields) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}
	kind := AnnotationType(fields[0])
	form, known := annotationForms[kind]
	if !known {
		return nil, fmt.Errorf("line %d: unknown @oxy annotation type %q", lineNum, fields[0])
	}
	if len(fields)-1 != form.arity {
		return nil, fmt.Errorf("line %d: expected //@oxy:%s", lineNum, form.usage)
	}

	a, err := form.build(fields[1:])
	if err != nil {
		return nil, fmt.Errorf("line %d: @oxy %s annotation: %w", lineNum, kind, err)
	}
	a.Type, a.Line = kind, lineNum
	return &a, nil
}
