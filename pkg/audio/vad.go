package audio

import (
	"math"
)

// DefaultThreshold is the RMS level, on a [-1, 1] sample scale, above which a
// block counts as speech.
const DefaultThreshold = 0.1

// Detector classifies sample blocks as speaking or silent by RMS amplitude.
// Classification is memoryless: no smoothing, hold time or hysteresis, so a
// level hovering around the threshold flickers block by block.
type Detector struct {
	threshold float64
}

// NewDetector creates a detector. A threshold <= 0 selects DefaultThreshold.
func NewDetector(threshold float64) *Detector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Detector{threshold: threshold}
}

// Threshold returns the RMS level the detector compares against.
func (d *Detector) Threshold() float64 {
	return d.threshold
}

// IsSpeaking reports whether the block's RMS is strictly above the threshold.
// It does not allocate and is safe to call from the capture callback.
func (d *Detector) IsSpeaking(samples []float32) bool {
	return RMS(samples) > d.threshold
}

// RMS computes the Root Mean Square of a block. An empty block has RMS 0.
func RMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		f := float64(s)
		sum += f * f
	}
	return math.Sqrt(sum / float64(len(samples)))
}
