// ABOUTME: MP3 audio decoder
// ABOUTME: Decodes MP3 files to float32 samples
package decode

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
	"github.com/multiplay-audio/multiplay/pkg/audio"
)

// MP3Decoder decodes MP3 audio
type MP3Decoder struct{}

// NewMP3 creates a new MP3 decoder
func NewMP3() *MP3Decoder {
	return &MP3Decoder{}
}

// Decode converts an MP3 stream to a buffer
func (d *MP3Decoder) Decode(r io.Reader) (*audio.Buffer, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	// go-mp3 always outputs 16-bit little-endian stereo
	data, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("mp3 decode error: %w", err)
	}

	return pcm16ToBuffer(data, audio.Format{
		Codec:      "mp3",
		SampleRate: decoder.SampleRate(),
		Channels:   2,
		BitDepth:   16,
	}), nil
}

// CanDecode reports whether filename is an MP3 file
func (d *MP3Decoder) CanDecode(filename string) bool {
	return hasExt(filename, ".mp3")
}

// FormatName returns the format name
func (d *MP3Decoder) FormatName() string {
	return "mp3"
}

// pcm16ToBuffer converts interleaved 16-bit little-endian PCM bytes
func pcm16ToBuffer(data []byte, format audio.Format) *audio.Buffer {
	frameBytes := 2 * format.Channels
	numSamples := (len(data) / frameBytes) * format.Channels

	samples := make([]float32, numSamples)
	for i := 0; i < numSamples; i++ {
		sample16 := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = audio.SampleFromInt16(sample16)
	}

	return &audio.Buffer{Samples: samples, Format: format}
}
