package ui

import (
	"fmt"
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"

	"github.com/NicolasHaas/pngtuber/pkg/host"
)

// graphics implements host.Graphics on top of a single Fyne canvas image.
// All methods must run on the Fyne main goroutine.
type graphics struct {
	target *canvas.Image
}

func (g *graphics) Allocate(width, height int, format host.PixelFormat) (host.Texture, error) {
	if format != host.FormatRGBA {
		return nil, fmt.Errorf("ui: unsupported pixel format %s", format)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("ui: invalid texture size %dx%d", width, height)
	}
	return &texture{
		img:    image.NewNRGBA(image.Rect(0, 0, width, height)),
		target: g.target,
	}, nil
}

// texture keeps its own pixel copy; Draw points the canvas image at it.
type texture struct {
	img      *image.NRGBA
	target   *canvas.Image
	released bool
}

func (t *texture) Upload(pix []byte, stride int) {
	if t.released {
		return
	}
	rowLen := t.img.Rect.Dx() * 4
	for y := 0; y < t.img.Rect.Dy(); y++ {
		src := y * stride
		if src+rowLen > len(pix) {
			break
		}
		copy(t.img.Pix[y*t.img.Stride:y*t.img.Stride+rowLen], pix[src:src+rowLen])
	}
}

// Draw shows the texture. The preview never flips, so flip is ignored.
func (t *texture) Draw(x, y, width, height int, _ bool) {
	if t.released {
		return
	}
	t.target.Image = t.img
	t.target.Move(fyne.NewPos(float32(x), float32(y)))
	t.target.Resize(fyne.NewSize(float32(width), float32(height)))
	t.target.Refresh()
}

func (t *texture) Release() {
	t.released = true
	t.target.Image = nil
	t.target.Refresh()
}
