// Package metrics tracks avatar runtime statistics.
package metrics

import (
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"
)

// Metrics tracks audio and presentation counters.
// All counters use atomic operations so the capture callback can bump
// them without locking.
type Metrics struct {
	startTime time.Time

	// Audio counters (written from the capture callback)
	BlocksProcessed atomic.Int64 // sample blocks classified
	SpeakingBlocks  atomic.Int64 // blocks classified as speaking
	SamplesIn       atomic.Int64 // total samples seen
	InputOverflows  atomic.Int64 // blocks flagged with input overflow
	InputUnderflows atomic.Int64 // blocks flagged with input underflow

	// Presentation counters (written from the tick/render thread)
	Ticks       atomic.Int64 // tick calls
	Uploads     atomic.Int64 // texture uploads
	Renders     atomic.Int64 // draw calls
	Transitions atomic.Int64 // idle<->speaking buffer switches after the first upload

	// Lifecycle counters
	SourcesCreated   atomic.Int64
	SourcesDestroyed atomic.Int64
}

// New creates a new Metrics instance with the start time set to now.
func New() *Metrics {
	return &Metrics{
		startTime: time.Now(),
	}
}

// Snapshot is a point-in-time view of all metrics as a serializable struct.
type Snapshot struct {
	Uptime        string `json:"uptime"`
	UptimeSeconds int64  `json:"uptime_seconds"`

	BlocksProcessed int64 `json:"blocks_processed"`
	SpeakingBlocks  int64 `json:"speaking_blocks"`
	SamplesIn       int64 `json:"samples_in"`
	InputOverflows  int64 `json:"input_overflows"`
	InputUnderflows int64 `json:"input_underflows"`

	Ticks       int64 `json:"ticks"`
	Uploads     int64 `json:"uploads"`
	Renders     int64 `json:"renders"`
	Transitions int64 `json:"transitions"`

	SourcesCreated   int64 `json:"sources_created"`
	SourcesDestroyed int64 `json:"sources_destroyed"`
}

// Snapshot returns a read-consistent snapshot of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	uptime := time.Since(m.startTime)
	return Snapshot{
		Uptime:           uptime.Truncate(time.Second).String(),
		UptimeSeconds:    int64(uptime.Seconds()),
		BlocksProcessed:  m.BlocksProcessed.Load(),
		SpeakingBlocks:   m.SpeakingBlocks.Load(),
		SamplesIn:        m.SamplesIn.Load(),
		InputOverflows:   m.InputOverflows.Load(),
		InputUnderflows:  m.InputUnderflows.Load(),
		Ticks:            m.Ticks.Load(),
		Uploads:          m.Uploads.Load(),
		Renders:          m.Renders.Load(),
		Transitions:      m.Transitions.Load(),
		SourcesCreated:   m.SourcesCreated.Load(),
		SourcesDestroyed: m.SourcesDestroyed.Load(),
	}
}

// JSON returns the metrics snapshot as a JSON string.
func (m *Metrics) JSON() string {
	data, err := json.MarshalIndent(m.Snapshot(), "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// LogSummary writes a metrics summary to the logger.
func (m *Metrics) LogSummary() {
	s := m.Snapshot()
	slog.Info("metrics",
		"uptime", s.Uptime,
		"blocks", s.BlocksProcessed,
		"speaking_blocks", s.SpeakingBlocks,
		"overflows", s.InputOverflows,
		"underflows", s.InputUnderflows,
		"uploads", s.Uploads,
		"transitions", s.Transitions,
	)
}

// StartPeriodicLog starts a goroutine that logs metrics every interval.
// It stops when the done channel is closed.
func (m *Metrics) StartPeriodicLog(interval time.Duration, done <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				m.LogSummary()
			}
		}
	}()
}
