package avatar

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"golang.org/x/image/draw"

	"github.com/NicolasHaas/pngtuber/pkg/audio"
	"github.com/NicolasHaas/pngtuber/pkg/host"
	"github.com/NicolasHaas/pngtuber/pkg/metrics"
)

// Identity reported to the host.
const (
	SourceID    = "tuber_source"
	DisplayName = "Ping-Tuber Source"

	ModuleName        = "Ping-tub"
	ModuleDescription = "Png-tuber OBS integration"
	ModuleAuthor      = "Jacobtread"
)

// Settings keys read at creation.
const (
	KeyImagePath = "image_path"
	KeyWidth     = "width"
	KeyHeight    = "height"
	KeyThreshold = "threshold"
	KeyIdleDim   = "idle_dim"
)

// AudioInput is a live capture stream feeding sample blocks to a callback.
type AudioInput interface {
	Start(onBlock audio.BlockFunc) error
	// Stop must not return until no further callback can fire.
	Stop() error
	Running() bool
	Close() error
}

// Options carries the collaborators a Source is built with.
type Options struct {
	// NewInput returns a fresh, unstarted input per source. Defaults to a
	// PortAudio capture stream on the default input device.
	NewInput func(m *metrics.Metrics) AudioInput
	// Metrics receives counters; a private instance is used when nil.
	Metrics *metrics.Metrics
}

// DefaultInput opens the system default microphone and counts stream
// status flags into m.
func DefaultInput(m *metrics.Metrics) AudioInput {
	return audio.NewCaptureStream(func(overflow, underflow bool) {
		if overflow {
			m.InputOverflows.Add(1)
		}
		if underflow {
			m.InputUnderflows.Add(1)
		}
	})
}

// Source is one visible avatar.
type Source struct {
	width     int
	height    int
	tex       host.Texture
	bank      *Bank
	flag      *SpeakingFlag
	detector  *audio.Detector
	presenter *Presenter
	input     AudioInput
	metrics   *metrics.Metrics
}

// New builds a source: it derives the frame bank from the configured
// artwork, allocates the texture and starts audio capture. Any failure
// releases what was already acquired and returns no source.
func New(settings host.Settings, gfx host.Graphics, opts Options) (*Source, error) {
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}
	newInput := opts.NewInput
	if newInput == nil {
		newInput = DefaultInput
	}

	width := settings.Int(KeyWidth, DefaultWidth)
	height := settings.Int(KeyHeight, DefaultHeight)
	idleDim := settings.Int(KeyIdleDim, DefaultIdleDim)

	bank, err := loadBank(settings.String(KeyImagePath, ""), width, height, idleDim)
	if err != nil {
		return nil, err
	}

	tex, err := gfx.Allocate(width, height, host.FormatRGBA)
	if err != nil {
		return nil, fmt.Errorf("avatar: allocate texture: %w", err)
	}

	s := &Source{
		width:    width,
		height:   height,
		tex:      tex,
		bank:     bank,
		flag:     &SpeakingFlag{},
		detector: audio.NewDetector(settings.Float(KeyThreshold, audio.DefaultThreshold)),
		metrics:  m,
	}
	s.presenter = NewPresenter(tex, bank, s.flag, m)

	input := newInput(m)
	if err := input.Start(s.onBlock); err != nil {
		_ = input.Close()
		tex.Release()
		return nil, fmt.Errorf("avatar: start audio: %w", err)
	}
	s.input = input

	m.SourcesCreated.Add(1)
	slog.Info("avatar source created",
		"width", width, "height", height,
		"threshold", s.detector.Threshold(), "idle_dim", idleDim)
	return s, nil
}

// loadBank builds the bank from path, or from a plain white frame when no
// artwork is configured.
func loadBank(path string, width, height, idleDim int) (*Bank, error) {
	if path != "" {
		return LoadBank(path, width, height, idleDim)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	blank := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(blank, blank.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return NewBank(blank, width, height, idleDim)
}

// onBlock runs on the capture thread: classify and overwrite the flag.
func (s *Source) onBlock(samples []float32) {
	speaking := s.detector.IsSpeaking(samples)
	s.flag.Store(speaking)

	s.metrics.BlocksProcessed.Add(1)
	s.metrics.SamplesIn.Add(int64(len(samples)))
	if speaking {
		s.metrics.SpeakingBlocks.Add(1)
	}
}

// Name returns the display name. It does not use the receiver.
func (*Source) Name() string { return DisplayName }

// Width returns the fixed texture width.
func (s *Source) Width() uint32 { return uint32(s.width) } //nolint:gosec // validated positive

// Height returns the fixed texture height.
func (s *Source) Height() uint32 { return uint32(s.height) } //nolint:gosec // validated positive

// Tick uploads the frame matching the current speaking state if needed.
func (s *Source) Tick(seconds float32) { s.presenter.Tick(seconds) }

// Render draws the resident frame.
func (s *Source) Render() { s.presenter.Render() }

// Update accepts new settings. Nothing is applied yet; threshold and device
// changes take effect only on re-creation.
func (s *Source) Update(settings host.Settings) {
	slog.Debug("avatar settings update ignored", "keys", len(settings))
}

// Speaking reports the latest classification.
func (s *Source) Speaking() bool { return s.flag.Load() }

// Current returns the frame resident in the texture.
func (s *Source) Current() BufferState { return s.presenter.Current() }

// Destroy stops audio capture first, so no callback can touch the flag,
// then releases the texture and frame buffers.
func (s *Source) Destroy() error {
	var errs []error
	if err := s.input.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("avatar: stop audio: %w", err))
	}
	if s.input.Running() {
		errs = append(errs, fmt.Errorf("avatar: audio still running after stop"))
	}

	s.tex.Release()
	s.presenter = nil
	s.bank = nil

	if err := s.input.Close(); err != nil {
		errs = append(errs, fmt.Errorf("avatar: close audio: %w", err))
	}
	s.metrics.SourcesDestroyed.Add(1)
	slog.Info("avatar source destroyed")
	return errors.Join(errs...)
}

// Register adds the avatar source to mod with every capability it
// implements enabled.
func Register(mod *host.Module, opts Options) error {
	info, err := host.NewSourceBuilder(SourceID, host.SourceInput,
		func(settings host.Settings, gfx host.Graphics) (*Source, error) {
			return New(settings, gfx, opts)
		}).
		EnableGetName().
		EnableUpdate().
		EnableVideoRender().
		EnableVideoTick().
		EnableGetWidth().
		EnableGetHeight().
		Build()
	if err != nil {
		return err
	}
	return mod.RegisterSource(info)
}

// NewModule returns the plugin module with the avatar source registered.
func NewModule(opts Options) (*host.Module, error) {
	mod := host.NewModule(ModuleName, ModuleDescription, ModuleAuthor)
	if err := Register(mod, opts); err != nil {
		return nil, err
	}
	return mod, nil
}
