// ABOUTME: WAV decoder backed by go-audio/wav
// ABOUTME: Decodes integer PCM files with every channel the header declares
package decode

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/wav"
	"github.com/multiplay-audio/multiplay/pkg/audio"
)

// wavFormatFloat is the WAVE format tag for IEEE float samples
const wavFormatFloat = 3

// WAVDecoder decodes RIFF/WAVE PCM files
type WAVDecoder struct{}

// NewWAV creates a new WAV decoder
func NewWAV() *WAVDecoder {
	return &WAVDecoder{}
}

// Decode converts a WAV stream to a buffer
func (d *WAVDecoder) Decode(r io.Reader) (*audio.Buffer, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read WAV: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	decoder := wav.NewDecoder(rs)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("failed to decode WAV: invalid or unsupported header")
	}
	if decoder.WavAudioFormat == wavFormatFloat {
		return nil, fmt.Errorf("failed to decode WAV: IEEE float samples are not supported")
	}

	channels := int(decoder.NumChans)
	bitDepth := int(decoder.BitDepth)
	if channels <= 0 {
		return nil, fmt.Errorf("failed to decode WAV: header declares %d channels", channels)
	}

	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode WAV: %w", err)
	}

	samples := make([]float32, len(pcm.Data)-len(pcm.Data)%channels)
	for i := range samples {
		samples[i] = pcmSample(pcm.Data[i], bitDepth)
	}

	return &audio.Buffer{
		Samples: samples,
		Format: audio.Format{
			Codec:      "pcm",
			SampleRate: int(decoder.SampleRate),
			Channels:   channels,
			BitDepth:   bitDepth,
		},
	}, nil
}

// CanDecode reports whether filename is a WAV file
func (d *WAVDecoder) CanDecode(filename string) bool {
	return hasExt(filename, ".wav", ".wave")
}

// FormatName returns the format name
func (d *WAVDecoder) FormatName() string {
	return "wav"
}

// pcmSample scales one integer sample to [-1, 1]. 8-bit WAV is unsigned.
func pcmSample(v, bitDepth int) float32 {
	if bitDepth == 8 {
		return float32(v-128) / 128
	}
	return audio.SampleFromInt(int32(v), bitDepth)
}
