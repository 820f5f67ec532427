package audio

import (
	"fmt"
	"math"
)

// GainFactor converts a decibel value to a linear sample multiplier
func GainFactor(db float64) float64 {
	return math.Pow(10, db/20)
}

// ApplyGain returns a copy of the clip with every sample scaled by factor,
// clamped to the int16 range.
func ApplyGain(c *Clip, factor float64) *Clip {
	out := make([]int16, len(c.Samples))
	for i, s := range c.Samples {
		out[i] = clampSample(float64(s) * factor)
	}
	return &Clip{SampleRate: c.SampleRate, Samples: out}
}

// MixUnder overlays a looped, attenuated bed beneath the voice clip.
// The bed is repeated or trimmed to exactly cover the voice duration and
// summed sample-wise with a clipping guard. The voice clip's length is
// always the output length.
func MixUnder(voice, bed *Clip, bedGainDB float64) (*Clip, error) {
	if bed == nil || len(bed.Samples) == 0 {
		return &Clip{SampleRate: voice.SampleRate, Samples: append([]int16(nil), voice.Samples...)}, nil
	}
	if bed.SampleRate != voice.SampleRate {
		return nil, fmt.Errorf("%w: voice %d vs bed %d", ErrSampleRateMismatch, voice.SampleRate, bed.SampleRate)
	}

	factor := GainFactor(bedGainDB)
	out := make([]int16, len(voice.Samples))
	for i := range voice.Samples {
		bedSample := float64(bed.Samples[i%len(bed.Samples)]) * factor
		out[i] = clampSample(float64(voice.Samples[i]) + bedSample)
	}
	return &Clip{SampleRate: voice.SampleRate, Samples: out}, nil
}

func clampSample(v float64) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
