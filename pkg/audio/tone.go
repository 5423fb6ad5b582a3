// ABOUTME: Sine tone generator
// ABOUTME: Builds test buffers used to check device routing
package audio

import "math"

// Sine returns a buffer holding a sine wave at frequency Hz, written to
// every channel at the given amplitude (0-1).
func Sine(format Format, frequency float64, frames int, amplitude float32) *Buffer {
	buf := NewBuffer(format, frames)

	for i := 0; i < frames; i++ {
		t := float64(i) / float64(format.SampleRate)
		sample := float32(math.Sin(2*math.Pi*frequency*t)) * amplitude

		for ch := 0; ch < format.Channels; ch++ {
			buf.Samples[i*format.Channels+ch] = sample
		}
	}

	return buf
}
