package opengl

// GL enums used by the backend. They mirror the values in the go-gl bindings
// so this package does not need cgo.
const (
	glNoError                     uint32 = 0
	glInvalidEnum                 uint32 = 0x0500
	glInvalidValue                uint32 = 0x0501
	glInvalidOperation            uint32 = 0x0502
	glOutOfMemory                 uint32 = 0x0505
	glInvalidFramebufferOperation uint32 = 0x0506

	glColorBufferBit   uint32 = 0x4000
	glBlend            uint32 = 0x0BE2
	glSrcAlpha         uint32 = 0x0302
	glOneMinusSrcAlpha uint32 = 0x0303

	glLineStrip uint32 = 0x0003
	glTriangles uint32 = 0x0004

	glUnsignedByte  uint32 = 0x1401
	glUnsignedShort uint32 = 0x1403
	glFloat         uint32 = 0x1406

	glTexture2D        uint32 = 0x0DE1
	glTexture0         uint32 = 0x84C0
	glTextureMinFilter uint32 = 0x2801
	glTextureMagFilter uint32 = 0x2800
	glTextureWrapS     uint32 = 0x2802
	glTextureWrapT     uint32 = 0x2803
	glLinear           int32  = 0x2601
	glRepeat           int32  = 0x2901
	glRGBA             uint32 = 0x1908
	glRGBA8            int32  = 0x8058

	glFragmentShader uint32 = 0x8B30
	glVertexShader   uint32 = 0x8B31
	glCompileStatus  uint32 = 0x8B81
	glLinkStatus     uint32 = 0x8B82

	glArrayBuffer        uint32 = 0x8892
	glElementArrayBuffer uint32 = 0x8893
	glDynamicDraw        uint32 = 0x88E8
)

func errorName(code uint32) string {
	switch code {
	case glInvalidEnum:
		return "GL_INVALID_ENUM"
	case glInvalidValue:
		return "GL_INVALID_VALUE"
	case glInvalidOperation:
		return "GL_INVALID_OPERATION"
	case glOutOfMemory:
		return "GL_OUT_OF_MEMORY"
	case glInvalidFramebufferOperation:
		return "GL_INVALID_FRAMEBUFFER_OPERATION"
	}
	return "unknown GL error"
}
