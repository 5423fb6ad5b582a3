// ABOUTME: Decoder interface definition and file dispatch
// ABOUTME: Picks a decoder by file extension and decodes whole files into buffers
package decode

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/multiplay-audio/multiplay/pkg/audio"
)

// Decoder decodes a complete audio stream into an in-memory buffer
type Decoder interface {
	// Decode reads the whole stream and returns its interleaved samples
	Decode(r io.Reader) (*audio.Buffer, error)

	// CanDecode reports whether this decoder handles the given filename
	CanDecode(filename string) bool

	// FormatName returns the name of the format this decoder handles
	FormatName() string
}

// Decoders returns every registered decoder
func Decoders() []Decoder {
	return []Decoder{
		NewWAV(),
		NewMP3(),
		NewFLAC(),
		NewVorbis(),
	}
}

// ForFile returns the decoder that handles filename
func ForFile(filename string) (Decoder, error) {
	for _, d := range Decoders() {
		if d.CanDecode(filename) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("unsupported audio format: %s (supported: %s)",
		filepath.Ext(filename), strings.Join(SupportedExtensions(), ", "))
}

// SupportedExtensions lists the file extensions with a registered decoder
func SupportedExtensions() []string {
	return []string{".wav", ".mp3", ".flac", ".ogg"}
}

// DecodeFile reads and decodes the audio file at path
func DecodeFile(path string) (*audio.Buffer, error) {
	decoder, err := ForFile(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer func() { _ = f.Close() }()

	buf, err := decoder.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if buf.Format.Channels <= 0 || buf.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("failed to decode %s: invalid format %dHz/%dch",
			path, buf.Format.SampleRate, buf.Format.Channels)
	}

	return buf, nil
}

func hasExt(filename string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
