// ABOUTME: Audio type definitions
// ABOUTME: Defines audio formats, decoded buffers and sample conversions
package audio

const (
	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23
)

// Format describes a decoded audio stream
type Format struct {
	Codec      string
	SampleRate int
	Channels   int
	BitDepth   int // Bit depth of the source file, informational only
}

// Buffer holds a whole decoded file as interleaved float32 samples in [-1, 1].
// Frame i occupies Samples[i*Channels : (i+1)*Channels].
type Buffer struct {
	Samples []float32
	Format  Format
}

// NewBuffer allocates a silent buffer with room for frames frames
func NewBuffer(format Format, frames int) *Buffer {
	return &Buffer{
		Samples: make([]float32, frames*format.Channels),
		Format:  format,
	}
}

// Frames returns the number of frames in the buffer
func (b *Buffer) Frames() int {
	if b == nil || b.Format.Channels <= 0 {
		return 0
	}
	return len(b.Samples) / b.Format.Channels
}

// Frame returns the samples of frame i, one per channel
func (b *Buffer) Frame(i int) []float32 {
	ch := b.Format.Channels
	return b.Samples[i*ch : (i+1)*ch]
}

// SampleFromInt16 converts a 16-bit sample to float32
func SampleFromInt16(sample int16) float32 {
	return float32(sample) / 32768.0
}

// SampleToInt16 converts a float32 sample to 16-bit with clipping
func SampleToInt16(sample float32) int16 {
	return int16(clip(sample) * 32767.0)
}

// SampleFromInt converts a signed integer sample of the given bit depth to float32
func SampleFromInt(sample int32, bitDepth int) float32 {
	if bitDepth <= 0 || bitDepth > 32 {
		return 0
	}
	return float32(float64(sample) / float64(int64(1)<<(bitDepth-1)))
}

// SampleFrom24Bit converts 24-bit packed bytes (little-endian) to float32
func SampleFrom24Bit(b [3]byte) float32 {
	// Reconstruct 24-bit value and sign-extend to 32-bit
	val := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	if val&0x800000 != 0 {
		val |= ^0xFFFFFF
	}
	return SampleFromInt(val, 24)
}

func clip(sample float32) float32 {
	if sample > 1 {
		return 1
	}
	if sample < -1 {
		return -1
	}
	return sample
}
