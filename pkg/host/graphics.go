// Package host defines what a host application provides to a source: a
// graphics surface to allocate and draw textures on, opaque settings, and a
// module registry that drives source lifecycles.
package host

import "fmt"

// PixelFormat identifies the layout of texture pixel data.
type PixelFormat int

const (
	// FormatRGBA is tightly packed 8-bit R, G, B, A with straight alpha.
	FormatRGBA PixelFormat = iota
)

func (f PixelFormat) String() string {
	switch f {
	case FormatRGBA:
		return "RGBA8"
	default:
		return fmt.Sprintf("PixelFormat(%d)", int(f))
	}
}

// BytesPerPixel returns the pixel size in bytes.
func (f PixelFormat) BytesPerPixel() int {
	return 4
}

// Texture is a host-managed, fixed-size pixel buffer that can be drawn.
type Texture interface {
	// Upload replaces the whole texture contents. stride is the byte
	// length of one row in pix.
	Upload(pix []byte, stride int)
	// Draw draws whatever is currently resident at the given position.
	Draw(x, y, width, height int, flip bool)
	// Release frees the texture. It must not be used afterwards.
	Release()
}

// Graphics allocates textures on the host surface.
type Graphics interface {
	Allocate(width, height int, format PixelFormat) (Texture, error)
}
