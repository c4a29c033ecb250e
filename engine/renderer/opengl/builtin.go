package opengl

import (
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// Attribute locations bound before linking. They follow the Vertex layout.
const (
	attribPosition uint32 = 0
	attribColor    uint32 = 1
	attribTexCoord uint32 = 2
)

var attribNames = [...]string{
	attribPosition: "position",
	attribColor:    "color",
	attribTexCoord: "texCoord",
}

const colorVertexShader = `#version 410 core
uniform mat4 modelViewProj;

in vec3 position;
in vec4 color;

out vec4 exColor;

void main()
{
    gl_Position = modelViewProj * vec4(position, 1.0);
    exColor = color;
}
`

const colorFragmentShader = `#version 410 core
in vec4 exColor;

out vec4 outColor;

void main()
{
    outColor = exColor;
}
`

const textureVertexShader = `#version 410 core
uniform mat4 modelViewProj;

in vec3 position;
in vec4 color;
in vec2 texCoord;

out vec4 exColor;
out vec2 exTexCoord;

void main()
{
    gl_Position = modelViewProj * vec4(position, 1.0);
    exColor = color;
    exTexCoord = texCoord;
}
`

const textureFragmentShader = `#version 410 core
uniform sampler2D texture0;

in vec4 exColor;
in vec2 exTexCoord;

out vec4 outColor;

void main()
{
    outColor = texture(texture0, exTexCoord) * exColor;
}
`

func builtinShaders() []renderer.BuiltinShader {
	return []renderer.BuiltinShader{
		{
			Name:     metadata.ShaderTextureName,
			Fragment: []byte(textureFragmentShader),
			Vertex:   []byte(textureVertexShader),
		},
		{
			Name:     metadata.ShaderColorName,
			Fragment: []byte(colorFragmentShader),
			Vertex:   []byte(colorVertexShader),
		},
	}
}
