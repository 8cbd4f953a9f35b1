package avatar

import (
	"fmt"

	"github.com/NicolasHaas/pngtuber/pkg/host"
	"github.com/NicolasHaas/pngtuber/pkg/metrics"
)

// BufferState records which bank frame is resident in the texture.
type BufferState int

const (
	// Unset holds only before the first tick.
	Unset BufferState = iota
	Idle
	Speaking
)

func (s BufferState) String() string {
	switch s {
	case Unset:
		return "unset"
	case Idle:
		return "idle"
	case Speaking:
		return "speaking"
	default:
		return fmt.Sprintf("BufferState(%d)", int(s))
	}
}

// Presenter owns the texture and uploads a bank frame only when the
// speaking flag disagrees with what is resident. Tick and Render must be
// called from the same host thread.
type Presenter struct {
	tex     host.Texture
	bank    *Bank
	flag    *SpeakingFlag
	metrics *metrics.Metrics

	current BufferState
}

// NewPresenter creates a presenter in the Unset state.
func NewPresenter(tex host.Texture, bank *Bank, flag *SpeakingFlag, m *metrics.Metrics) *Presenter {
	if m == nil {
		m = metrics.New()
	}
	return &Presenter{
		tex:     tex,
		bank:    bank,
		flag:    flag,
		metrics: m,
	}
}

// Current returns the frame currently resident in the texture.
func (p *Presenter) Current() BufferState { return p.current }

// Tick reads the flag and uploads the matching frame if it changed.
// The elapsed time is ignored.
func (p *Presenter) Tick(_ float32) {
	p.metrics.Ticks.Add(1)

	want := Idle
	if p.flag.Load() {
		want = Speaking
	}
	if want == p.current {
		return
	}

	pix := p.bank.Idle()
	if want == Speaking {
		pix = p.bank.Speaking()
	}
	p.tex.Upload(pix, p.bank.Stride())
	p.metrics.Uploads.Add(1)
	if p.current != Unset {
		p.metrics.Transitions.Add(1)
	}
	p.current = want
}

// Render draws the texture at the origin at its full size. It never reads
// the flag or uploads.
func (p *Presenter) Render() {
	p.tex.Draw(0, 0, p.bank.Width(), p.bank.Height(), false)
	p.metrics.Renders.Add(1)
}
