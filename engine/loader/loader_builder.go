package loader

import (
	"io/fs"

	"github.com/Carmen-Shannon/oxy-canvas/engine/renderer/shader"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithFS is an option builder that makes the Loader read shader sources from fsys instead of
// the host file system.
//
// Parameters:
//   - fsys: the file system holding the shader sources
//
// Returns:
//   - LoaderBuilderOption: a function that applies the file system option to a loader
func WithFS(fsys fs.FS) LoaderBuilderOption {
	return func(l *loader) {
		l.backend = fsLoaderBackend{fsys: fsys}
	}
}

// WithWorkers is an option builder that sets the maximum number of shaders parsed in parallel.
// Values <= 0 keep the default.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker option to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithShader is an option builder that pre-populates the shader cache.
//
// Parameters:
//   - s: the shader to cache under its key
//
// Returns:
//   - LoaderBuilderOption: a function that applies the shader option to a loader
func WithShader(s shader.Shader) LoaderBuilderOption {
	return func(l *loader) {
		l.shaderCache[s.Key()] = s
	}
}
