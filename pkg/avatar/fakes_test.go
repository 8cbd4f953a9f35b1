package avatar

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/NicolasHaas/pngtuber/pkg/audio"
	"github.com/NicolasHaas/pngtuber/pkg/host"
	"github.com/NicolasHaas/pngtuber/pkg/metrics"
)

// events records the order of lifecycle calls across fakes.
type events struct {
	mu  sync.Mutex
	log []string
}

func (e *events) add(s string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.log = append(e.log, s)
}

func (e *events) list() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.log...)
}

type fakeTexture struct {
	ev       *events
	width    int
	height   int
	uploads  [][]byte
	strides  []int
	draws    int
	released bool
}

func (t *fakeTexture) Upload(pix []byte, stride int) {
	t.uploads = append(t.uploads, pix)
	t.strides = append(t.strides, stride)
}

func (t *fakeTexture) Draw(_, _, _, _ int, _ bool) { t.draws++ }

func (t *fakeTexture) Release() {
	t.released = true
	if t.ev != nil {
		t.ev.add("texture.release")
	}
}

type fakeGraphics struct {
	ev      *events
	err     error
	texture *fakeTexture
}

func (g *fakeGraphics) Allocate(width, height int, _ host.PixelFormat) (host.Texture, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.texture = &fakeTexture{ev: g.ev, width: width, height: height}
	return g.texture, nil
}

type fakeInput struct {
	ev       *events
	startErr error

	mu      sync.Mutex
	onBlock audio.BlockFunc
	running bool
	closed  bool
}

func (in *fakeInput) Start(onBlock audio.BlockFunc) error {
	if in.startErr != nil {
		return in.startErr
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	in.onBlock = onBlock
	in.running = true
	return nil
}

func (in *fakeInput) Stop() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.running = false
	in.ev.add("audio.stop")
	return nil
}

func (in *fakeInput) Running() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.running
}

func (in *fakeInput) Close() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.closed = true
	in.ev.add("audio.close")
	return nil
}

// feed delivers a block the way the capture thread would, unless stopped.
func (in *fakeInput) feed(samples []float32) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	if !in.running || in.onBlock == nil {
		return false
	}
	in.onBlock(samples)
	return true
}

func block(n int, v float32) []float32 {
	b := make([]float32, n)
	for i := range b {
		b[i] = v
	}
	return b
}

type harness struct {
	ev      *events
	gfx     *fakeGraphics
	input   *fakeInput
	metrics *metrics.Metrics
	opts    Options
}

func newHarness() *harness {
	ev := &events{}
	h := &harness{
		ev:      ev,
		gfx:     &fakeGraphics{ev: ev},
		input:   &fakeInput{ev: ev},
		metrics: metrics.New(),
	}
	h.opts = Options{
		NewInput: func(_ *metrics.Metrics) AudioInput { return h.input },
		Metrics:  h.metrics,
	}
	return h
}

// writePNG writes a solid-colour w x h PNG and returns its path.
func writePNG(t *testing.T, w, h int, c color.NRGBA) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	path := filepath.Join(t.TempDir(), "avatar.png")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

var errBoom = errors.New("boom")
