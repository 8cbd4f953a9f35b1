// Package avatar implements the two-frame, voice-driven avatar source:
// a speaking flag written by the audio callback, an immutable bank of idle
// and speaking pixel buffers, and a presenter that uploads the right buffer
// to the host texture when the flag changes.
package avatar

import "sync/atomic"

// SpeakingFlag holds the latest voice classification. It has one writer
// (the capture callback) and one reader (the tick thread). Go atomics are
// sequentially consistent, and only the last write is ever observed.
type SpeakingFlag struct {
	v atomic.Bool
}

// Store overwrites the flag.
func (f *SpeakingFlag) Store(speaking bool) { f.v.Store(speaking) }

// Load returns the latest stored value without blocking.
func (f *SpeakingFlag) Load() bool { return f.v.Load() }
