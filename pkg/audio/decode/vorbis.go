// ABOUTME: Ogg Vorbis audio decoder
// ABOUTME: Decodes whole Vorbis streams keeping every channel
package decode

import (
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"
	"github.com/multiplay-audio/multiplay/pkg/audio"
)

// VorbisDecoder decodes Ogg Vorbis files
type VorbisDecoder struct{}

// NewVorbis creates a new Ogg Vorbis decoder
func NewVorbis() *VorbisDecoder {
	return &VorbisDecoder{}
}

// Decode converts an Ogg Vorbis stream to a buffer
func (d *VorbisDecoder) Decode(r io.Reader) (*audio.Buffer, error) {
	samples, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode Ogg Vorbis: %w", err)
	}

	return &audio.Buffer{
		Samples: samples,
		Format: audio.Format{
			Codec:      "vorbis",
			SampleRate: format.SampleRate,
			Channels:   format.Channels,
		},
	}, nil
}

// CanDecode reports whether filename is an Ogg Vorbis file
func (d *VorbisDecoder) CanDecode(filename string) bool {
	return hasExt(filename, ".ogg", ".oga")
}

// FormatName returns the format name
func (d *VorbisDecoder) FormatName() string {
	return "vorbis"
}
