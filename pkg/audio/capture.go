// Package audio provides microphone capture and amplitude-based voice activity detection.
package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// ErrNotStarted is returned by Stop when the stream was never started.
var ErrNotStarted = errors.New("audio: stream not started")

// BlockFunc receives one block of interleaved samples in [-1.0, 1.0].
// It runs on the PortAudio callback thread and must not block.
type BlockFunc func(samples []float32)

// StatusFunc is told about per-block stream problems (input overflow or
// underflow). Like BlockFunc it runs on the callback thread.
type StatusFunc func(overflow, underflow bool)

// CaptureStream owns a callback-mode PortAudio input stream on the system
// default input device, using the device's own sample rate and channel count.
type CaptureStream struct {
	mu       sync.Mutex
	stream   *portaudio.Stream
	onStatus StatusFunc
	running  bool
	closed   bool
	device   string
	rate     float64
	channels int
}

// NewCaptureStream creates an idle capture stream. onStatus may be nil.
func NewCaptureStream(onStatus StatusFunc) *CaptureStream {
	return &CaptureStream{onStatus: onStatus}
}

// Start opens the default input device with its default configuration and
// starts delivering blocks to onBlock. Any failure is returned; nothing is
// left open on error.
func (c *CaptureStream) Start(onBlock BlockFunc) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stream != nil {
		return fmt.Errorf("audio: capture already started")
	}
	if err := acquire(); err != nil {
		return fmt.Errorf("audio: initialize: %w", err)
	}
	ok := false
	defer func() {
		if !ok {
			_ = release()
		}
	}()

	input, err := portaudio.DefaultInputDevice()
	if err != nil {
		return fmt.Errorf("audio: no input device: %w", err)
	}
	if input == nil || input.MaxInputChannels <= 0 {
		return fmt.Errorf("audio: default input device has no input channels")
	}

	// Input-only parameters straight from the device defaults
	params := portaudio.LowLatencyParameters(input, nil)
	params.Output.Device = nil
	params.Output.Channels = 0

	onStatus := c.onStatus
	callback := func(in []float32, _ portaudio.StreamCallbackTimeInfo, flags portaudio.StreamCallbackFlags) {
		if onStatus != nil && flags&(portaudio.InputOverflow|portaudio.InputUnderflow) != 0 {
			onStatus(flags&portaudio.InputOverflow != 0, flags&portaudio.InputUnderflow != 0)
		}
		onBlock(in)
	}

	stream, err := portaudio.OpenStream(params, callback)
	if err != nil {
		return fmt.Errorf("audio: open capture stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return fmt.Errorf("audio: start capture: %w", err)
	}

	ok = true
	c.stream = stream
	c.running = true
	c.device = input.Name
	c.rate = params.SampleRate
	c.channels = params.Input.Channels
	slog.Info("audio capture started", "device", c.device, "rate", c.rate, "channels", c.channels)
	return nil
}

// Stop stops the stream and waits until no further callback can fire.
func (c *CaptureStream) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stream == nil {
		return ErrNotStarted
	}
	if !c.running {
		return nil
	}
	c.running = false

	// Pa_StopStream returns only after pending callbacks have completed.
	if err := c.stream.Stop(); err != nil {
		slog.Warn("audio capture stop", "err", err)
	}
	if err := c.stream.Close(); err != nil {
		slog.Warn("audio capture close", "err", err)
	}
	slog.Debug("audio capture stopped", "device", c.device)
	return nil
}

// Running reports whether the stream is currently delivering blocks.
func (c *CaptureStream) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Device returns the name of the device in use, or "" before Start.
func (c *CaptureStream) Device() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.device
}

// Close stops capture and drops this stream's PortAudio reference.
func (c *CaptureStream) Close() error {
	err := c.Stop()
	if errors.Is(err, ErrNotStarted) {
		return nil
	}
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return release()
}
