package loader

import (
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-canvas/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-canvas/engine/renderer/shader"
)

const (
	loaderQueueSize   = 64
	loaderIdleTimeout = time.Second
)

// ShaderRequest names one shader source to load.
type ShaderRequest struct {
	Key  string
	Type shader.ShaderType
	Path string
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	shaderCache map[string]shader.Shader

	backend loaderBackend
	workers int
	pool    worker.DynamicWorkerPool
}

// Loader reads and parses WGSL shaders in parallel on a worker pool and caches them by key.
// Parsing derives vertex, instance and bind group layouts, so preloading every shader up front
// moves that work off the first frame.
type Loader interface {
	// LoadShaders loads every request not already cached. Requests are parsed in parallel and
	// the call returns once all of them finished.
	//
	// Parameters:
	//   - requests: the shaders to load; keys must be unique within the call
	//
	// Returns:
	//   - map[string]shader.Shader: the requested shaders by key, cached ones included
	//   - error: the first failure in request order, or a duplicate key error
	LoadShaders(requests ...ShaderRequest) (map[string]shader.Shader, error)

	// LoadPipeline loads a vertex and fragment shader pair and builds a pipeline from them. The
	// shaders are cached as key+"_vs" and key+"_fs".
	//
	// Parameters:
	//   - key: the pipeline key
	//   - vertexPath: the vertex shader source path
	//   - fragmentPath: the fragment shader source path
	//   - options: pipeline state options applied after the shaders
	//
	// Returns:
	//   - pipeline.Pipeline: the unregistered pipeline
	//   - error: a load error or a validation error from the pipeline
	LoadPipeline(key, vertexPath, fragmentPath string, options ...pipeline.PipelineBuilderOption) (pipeline.Pipeline, error)

	// Shader retrieves a cached shader by key. Returns nil if not found.
	//
	// Parameters:
	//   - key: the cache key to look up
	//
	// Returns:
	//   - shader.Shader: the cached shader or nil
	Shader(key string) shader.Shader

	// Shaders returns a copy of the shader cache.
	//
	// Returns:
	//   - map[string]shader.Shader: all cached shaders keyed by key
	Shaders() map[string]shader.Shader
}

var _ Loader = &loader{}

// NewLoader creates a Loader that reads from the host file system with one worker per CPU.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided options
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		shaderCache: make(map[string]shader.Shader),
		backend:     fileLoaderBackend{},
		workers:     runtime.NumCPU(),
	}
	for _, option := range options {
		option(l)
	}
	l.pool = worker.NewDynamicWorkerPool(l.workers, loaderQueueSize, loaderIdleTimeout)
	return l
}

func (l *loader) LoadShaders(requests ...ShaderRequest) (map[string]shader.Shader, error) {
	out := make(map[string]shader.Shader, len(requests))
	var pending []ShaderRequest

	l.mu.RLock()
	for _, req := range requests {
		if _, dup := out[req.Key]; dup {
			l.mu.RUnlock()
			return nil, fmt.Errorf("loader: shader key %q requested twice", req.Key)
		}
		if cached, ok := l.shaderCache[req.Key]; ok {
			out[req.Key] = cached
			continue
		}
		out[req.Key] = nil
		pending = append(pending, req)
	}
	l.mu.RUnlock()

	if len(pending) == 0 {
		return out, nil
	}

	start := time.Now()
	results := make([]shader.Shader, len(pending))
	errs := make([]error, len(pending))

	// The pool has no per-batch barrier, so a WaitGroup marks the end of this batch.
	var wg sync.WaitGroup
	for i, req := range pending {
		wg.Add(1)
		l.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				results[i], errs[i] = l.backend.Load(req)
				return results[i], errs[i]
			},
		})
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("loader: failed to load %s shader %q: %w", pending[i].Type, pending[i].Key, err)
		}
	}

	l.mu.Lock()
	for i, req := range pending {
		l.shaderCache[req.Key] = results[i]
		out[req.Key] = results[i]
	}
	l.mu.Unlock()

	log.Printf("[Loader] Loaded %d shader(s) in %s", len(pending), time.Since(start).Round(time.Microsecond))
	return out, nil
}

func (l *loader) LoadPipeline(key, vertexPath, fragmentPath string, options ...pipeline.PipelineBuilderOption) (pipeline.Pipeline, error) {
	vsKey, fsKey := key+"_vs", key+"_fs"
	shaders, err := l.LoadShaders(
		ShaderRequest{Key: vsKey, Type: shader.ShaderTypeVertex, Path: vertexPath},
		ShaderRequest{Key: fsKey, Type: shader.ShaderTypeFragment, Path: fragmentPath},
	)
	if err != nil {
		return nil, err
	}

	opts := append([]pipeline.PipelineBuilderOption{
		pipeline.WithVertexShader(shaders[vsKey]),
		pipeline.WithFragmentShader(shaders[fsKey]),
	}, options...)
	p := pipeline.NewPipeline(key, opts...)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (l *loader) Shader(key string) shader.Shader {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.shaderCache[key]
}

func (l *loader) Shaders() map[string]shader.Shader {
	l.mu.RLock()
	defer l.mu.RUnlock()
	cp := make(map[string]shader.Shader, len(l.shaderCache))
	for k, v := range l.shaderCache {
		cp[k] = v
	}
	return cp
}
