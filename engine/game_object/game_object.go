package game_object

import (
	"fmt"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-canvas/engine/instancing"
	"github.com/Carmen-Shannon/oxy-canvas/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

type gameObject struct {
	id          uint64
	enabled     atomic.Bool
	pickable    bool
	mdl         model.Model
	pipelineKey string
	sync        instancing.Synchronizer

	// layout used when the synchronizer is created on Bind
	placements []float32
	origin     mgl32.Vec3
	axis       mgl32.Vec3
}

// GameObject is a thin-instanced drawable: one Model drawn once per placement, with its instance
// buffers kept current by a Synchronizer. The Synchronizer exists once the object has been bound
// to a Sink, which the Scene does when the object is added.
type GameObject interface {
	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uint64: the object ID, or 0 before it is added to a Scene
	ID() uint64

	// Name returns the mesh name, which is the Model name.
	//
	// Returns:
	//   - string: the mesh name
	Name() string

	// Enabled returns whether this object is drawn.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Pickable returns whether pointer picking and dragging apply to this object.
	//
	// Returns:
	//   - bool: true if pickable
	Pickable() bool

	// Model returns the Model drawn for each instance.
	//
	// Returns:
	//   - model.Model: the model
	Model() model.Model

	// PipelineKey returns the key of the render pipeline used to draw the object.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// Synchronizer returns the object's Synchronizer, or nil before Bind.
	//
	// Returns:
	//   - instancing.Synchronizer: the synchronizer
	Synchronizer() instancing.Synchronizer

	// Bind creates the object's Synchronizer writing to sink. An object can be bound only once.
	//
	// Parameters:
	//   - sink: the receiver of instance buffers and frame requests
	//
	// Returns:
	//   - instancing.Synchronizer: the new synchronizer
	//   - error: an error if the object is already bound
	Bind(sink instancing.Sink) (instancing.Synchronizer, error)

	SetID(id uint64)
	SetEnabled(enabled bool)
}

var _ GameObject = &gameObject{}

// NewGameObject creates an enabled GameObject for a Model. Without WithPlacements the object has
// a single instance at placement 0, which is how static meshes such as the ground are drawn.
// It panics if m is nil.
//
// Parameters:
//   - m: the Model to draw
//   - pipelineKey: the render pipeline key
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the new object
func NewGameObject(m model.Model, pipelineKey string, options ...GameObjectBuilderOption) GameObject {
	if m == nil {
		panic("game_object: NewGameObject requires a Model")
	}
	obj := &gameObject{
		mdl:         m,
		pipelineKey: pipelineKey,
		placements:  []float32{0},
		axis:        mgl32.Vec3{1, 0, 0},
	}
	obj.enabled.Store(true)
	for _, opt := range options {
		opt(obj)
	}
	return obj
}

func (g *gameObject) ID() uint64 {
	return g.id
}

func (g *gameObject) Name() string {
	return g.mdl.Name()
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) Pickable() bool {
	return g.pickable
}

func (g *gameObject) Model() model.Model {
	return g.mdl
}

func (g *gameObject) PipelineKey() string {
	return g.pipelineKey
}

func (g *gameObject) Synchronizer() instancing.Synchronizer {
	return g.sync
}

func (g *gameObject) Bind(sink instancing.Sink) (instancing.Synchronizer, error) {
	if g.sync != nil {
		return nil, fmt.Errorf("game_object: %q is already bound", g.Name())
	}
	g.sync = instancing.NewSynchronizer(g.Name(), sink, g.placements,
		instancing.WithOrigin(g.origin.X(), g.origin.Y(), g.origin.Z()),
		instancing.WithAxis(g.axis.X(), g.axis.Y(), g.axis.Z()),
	)
	return g.sync, nil
}

func (g *gameObject) SetID(id uint64) {
	g.id = id
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}
