package loader

import (
	"fmt"
	"io/fs"

	"github.com/Carmen-Shannon/oxy-canvas/engine/renderer/shader"
)

// loaderBackend reads and parses one shader source. Implementations must be safe for concurrent
// use since the Loader calls them from pool workers.
type loaderBackend interface {
	// Load reads the source named by the request and parses it.
	//
	// Parameters:
	//   - req: the shader to load
	//
	// Returns:
	//   - shader.Shader: the parsed shader
	//   - error: a read or parse error
	Load(req ShaderRequest) (shader.Shader, error)
}

// fileLoaderBackend reads shader sources from the host file system.
type fileLoaderBackend struct{}

func (fileLoaderBackend) Load(req ShaderRequest) (shader.Shader, error) {
	return shader.LoadShader(req.Key, req.Type, req.Path)
}

// fsLoaderBackend reads shader sources from an fs.FS such as an embed.FS.
type fsLoaderBackend struct {
	fsys fs.FS
}

func (b fsLoaderBackend) Load(req ShaderRequest) (shader.Shader, error) {
	data, err := fs.ReadFile(b.fsys, req.Path)
	if err != nil {
		return nil, fmt.Errorf("loader: failed to read %q: %w", req.Path, err)
	}
	return shader.ParseShader(req.Key, req.Type, string(data))
}
