package avatar

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	"golang.org/x/image/draw"

	// Decoders for the source artwork
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// ErrInvalidDimensions is returned for non-positive target sizes.
var ErrInvalidDimensions = errors.New("avatar: invalid dimensions")

// Default bank parameters.
const (
	DefaultWidth   = 512
	DefaultHeight  = 512
	DefaultIdleDim = 50
)

// Bank holds the idle and speaking frames as tightly packed RGBA8 rows.
// Both buffers are built once and never modified.
type Bank struct {
	width    int
	height   int
	idle     []byte
	speaking []byte
}

// DecodeImage decodes PNG, JPEG, GIF, BMP or WebP artwork.
func DecodeImage(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("avatar: decode image: %w", err)
	}
	return img, nil
}

// LoadBank decodes the artwork at path and builds a bank from it.
func LoadBank(path string, width, height, idleDim int) (*Bank, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from source settings
	if err != nil {
		return nil, fmt.Errorf("avatar: open image: %w", err)
	}
	defer f.Close()

	img, err := DecodeImage(f)
	if err != nil {
		return nil, err
	}
	return NewBank(img, width, height, idleDim)
}

// NewBank resizes src to width x height with nearest-neighbour sampling.
// The speaking frame is the resized image; the idle frame is the same
// image with idleDim subtracted from every colour channel, clamped at 0.
// Alpha is left untouched.
func NewBank(src image.Image, width, height, idleDim int) (*Bank, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}

	resized := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.NearestNeighbor.Scale(resized, resized.Bounds(), src, src.Bounds(), draw.Src, nil)

	speaking := packRows(resized)
	idle := make([]byte, len(speaking))
	copy(idle, speaking)
	brighten(idle, -idleDim)

	return &Bank{
		width:    width,
		height:   height,
		idle:     idle,
		speaking: speaking,
	}, nil
}

// packRows copies img into a buffer with stride width*4.
func packRows(img *image.NRGBA) []byte {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	rowLen := w * 4
	if img.Stride == rowLen {
		out := make([]byte, rowLen*h)
		copy(out, img.Pix)
		return out
	}
	out := make([]byte, rowLen*h)
	for y := 0; y < h; y++ {
		copy(out[y*rowLen:(y+1)*rowLen], img.Pix[y*img.Stride:y*img.Stride+rowLen])
	}
	return out
}

// brighten adds delta to R, G and B of every pixel, clamped to 0..255.
func brighten(pix []byte, delta int) {
	for i := 0; i+3 < len(pix); i += 4 {
		for c := 0; c < 3; c++ {
			v := int(pix[i+c]) + delta
			if v < 0 {
				v = 0
			} else if v > 255 {
				v = 255
			}
			pix[i+c] = byte(v)
		}
	}
}

// Width returns the frame width in pixels.
func (b *Bank) Width() int { return b.width }

// Height returns the frame height in pixels.
func (b *Bank) Height() int { return b.height }

// Stride returns the byte length of one row.
func (b *Bank) Stride() int { return b.width * 4 }

// Idle returns the idle frame. Callers must not modify it.
func (b *Bank) Idle() []byte { return b.idle }

// Speaking returns the speaking frame. Callers must not modify it.
func (b *Bank) Speaking() []byte { return b.speaking }
