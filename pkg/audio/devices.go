package audio

import (
	"log/slog"
	"sync"

	"github.com/gordonklaus/portaudio"
)

var (
	preInitOnce sync.Once
	preInitDone = make(chan struct{})
	preInitErr  error
)

// PreInitAudio starts PortAudio initialization in the background.
// Call this early (e.g. at host startup) so the slow device enumeration
// happens before the first source is created. The reference taken here is
// held for the life of the process.
func PreInitAudio() {
	preInitOnce.Do(func() {
		go func() {
			slog.Debug("pre-initializing PortAudio...")
			if err := portaudio.Initialize(); err != nil {
				slog.Error("pre-init portaudio failed", "err", err)
				preInitErr = err
			}
			slog.Debug("PortAudio pre-init complete")
			close(preInitDone)
		}()
	})
}

// WaitPreInit blocks until the background PreInitAudio completes.
// If PreInitAudio was never called, it triggers it now (blocking).
func WaitPreInit() error {
	PreInitAudio() // ensure the init goroutine has been launched
	<-preInitDone
	return preInitErr
}

// acquire takes a PortAudio reference for one stream. PortAudio counts
// Initialize/Terminate pairs, so every acquire needs a matching release.
func acquire() error {
	if err := WaitPreInit(); err != nil {
		return err
	}
	return portaudio.Initialize()
}

func release() error {
	return portaudio.Terminate()
}

// DeviceEntry holds basic info about an audio input device.
type DeviceEntry struct {
	Name        string
	MaxInputs   int
	SampleRate  float64
	HostAPIName string
	IsDefault   bool
}

// ListInputDevices returns all available audio input devices.
func ListInputDevices() ([]DeviceEntry, error) {
	if err := acquire(); err != nil {
		return nil, err
	}
	defer func() { _ = release() }()

	defaultIn, _ := portaudio.DefaultInputDevice()
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}

	var result []DeviceEntry
	for _, d := range devices {
		if d.MaxInputChannels > 0 {
			entry := DeviceEntry{
				Name:       d.Name,
				MaxInputs:  d.MaxInputChannels,
				SampleRate: d.DefaultSampleRate,
			}
			if d.HostApi != nil {
				entry.HostAPIName = d.HostApi.Name
			}
			if defaultIn != nil && d.Name == defaultIn.Name {
				entry.IsDefault = true
			}
			result = append(result, entry)
		}
	}
	return result, nil
}
