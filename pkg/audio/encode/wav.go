// ABOUTME: WAV encoder backed by beep
// ABOUTME: Streams an in-memory buffer into a RIFF/WAVE PCM file
package encode

import (
	"fmt"
	"io"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"github.com/multiplay-audio/multiplay/pkg/audio"
)

// WAV writes buf as PCM WAV with the given bit depth (8, 16 or 24).
// beep handles mono and stereo only.
func WAV(w io.WriteSeeker, buf *audio.Buffer, bitDepth int) error {
	if buf.Format.Channels != 1 && buf.Format.Channels != 2 {
		return fmt.Errorf("unsupported channel count: %d (supported: 1, 2)", buf.Format.Channels)
	}

	switch bitDepth {
	case 8, 16, 24:
	default:
		return fmt.Errorf("unsupported bit depth: %d (supported: 8, 16, 24)", bitDepth)
	}

	format := beep.Format{
		SampleRate:  beep.SampleRate(buf.Format.SampleRate),
		NumChannels: buf.Format.Channels,
		Precision:   bitDepth / 8,
	}

	if err := wav.Encode(w, &bufferStreamer{buf: buf}, format); err != nil {
		return fmt.Errorf("failed to encode WAV: %w", err)
	}
	return nil
}

// bufferStreamer adapts a Buffer to beep's stereo streamer interface
type bufferStreamer struct {
	buf *audio.Buffer
	pos int
}

func (s *bufferStreamer) Stream(samples [][2]float64) (int, bool) {
	frames := s.buf.Frames()
	if s.pos >= frames {
		return 0, false
	}

	n := 0
	for n < len(samples) && s.pos < frames {
		frame := s.buf.Frame(s.pos)
		left := float64(frame[0])
		right := left
		if len(frame) > 1 {
			right = float64(frame[1])
		}
		samples[n] = [2]float64{left, right}
		n++
		s.pos++
	}
	return n, true
}

func (s *bufferStreamer) Err() error {
	return nil
}
