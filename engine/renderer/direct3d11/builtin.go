package direct3d11

import (
	"fmt"
	"path/filepath"

	"github.com/spaghettifunk/prism/engine/assets/loaders"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/d3d11"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// DefaultShaderDir holds the fxc output of assets/shaders/d3d11/*.hlsl.
const DefaultShaderDir = "assets/shaders/d3d11"

// Compiled built-in shaders, pixel stage first.
var builtinFiles = []struct {
	name   string
	pixel  string
	vertex string
}{
	{metadata.ShaderTextureName, "texture_ps.cso", "texture_vs.cso"},
	{metadata.ShaderColorName, "color_ps.cso", "color_vs.cso"},
}

// inputElements describes metadata.Vertex.
var inputElements = []d3d11.InputElementDesc{
	{SemanticName: "POSITION", Format: d3d11.DXGI_FORMAT_R32G32B32_FLOAT, AlignedByteOffset: metadata.VertexPositionOffset, InputSlotClass: d3d11.INPUT_PER_VERTEX_DATA},
	{SemanticName: "COLOR", Format: d3d11.DXGI_FORMAT_R8G8B8A8_UNORM, AlignedByteOffset: metadata.VertexColorOffset, InputSlotClass: d3d11.INPUT_PER_VERTEX_DATA},
	{SemanticName: "TEXCOORD", Format: d3d11.DXGI_FORMAT_R32G32_FLOAT, AlignedByteOffset: metadata.VertexTexCoordOffset, InputSlotClass: d3d11.INPUT_PER_VERTEX_DATA},
}

// Byte offsets of the constants declared by the built-in shaders' cbuffers.
var builtinVertexConstants = map[string]int{
	metadata.TransformConstantName: 0,
}

func loadBuiltins(config renderer.BackendConfig) ([]renderer.BuiltinShader, error) {
	dir := config.ShaderDir
	if dir == "" {
		dir = DefaultShaderDir
	}
	read := config.ReadFile
	if read == nil {
		read = (&loaders.BinaryLoader{}).Load
	}

	shaders := make([]renderer.BuiltinShader, 0, len(builtinFiles))
	for _, f := range builtinFiles {
		pixel, err := read(filepath.Join(dir, f.pixel))
		if err != nil {
			return nil, fmt.Errorf("built-in shader %s: %w", f.name, err)
		}
		vertex, err := read(filepath.Join(dir, f.vertex))
		if err != nil {
			return nil, fmt.Errorf("built-in shader %s: %w", f.name, err)
		}
		shaders = append(shaders, renderer.BuiltinShader{Name: f.name, Fragment: pixel, Vertex: vertex})
		core.LogDebug("loaded built-in shader %s from %s", f.name, dir)
	}
	return shaders, nil
}
