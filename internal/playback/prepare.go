// ABOUTME: Builds playback jobs from config entries
// ABOUTME: Decodes every file and resolves every device before anything plays
package playback

import (
	"fmt"
	"log"

	"github.com/multiplay-audio/multiplay/internal/config"
	"github.com/multiplay-audio/multiplay/pkg/audio"
	"github.com/multiplay-audio/multiplay/pkg/audio/decode"
	"github.com/multiplay-audio/multiplay/pkg/audio/output"
	"github.com/multiplay-audio/multiplay/pkg/audio/resample"
)

// PrepareOptions controls job construction
type PrepareOptions struct {
	// ResampleRate converts every buffer to this rate when non-zero
	ResampleRate int

	// Decode overrides the file decoder (default decode.DecodeFile)
	Decode func(path string) (*audio.Buffer, error)
}

// Prepare resolves and decodes every entry. Any failure aborts the whole
// batch so no job starts on a partially valid config.
func Prepare(backend output.Backend, entries []config.Entry, opts PrepareOptions) ([]*Job, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("config has no entries")
	}

	decodeFile := opts.Decode
	if decodeFile == nil {
		decodeFile = decode.DecodeFile
	}

	jobs := make([]*Job, 0, len(entries))
	for _, e := range entries {
		device, err := output.ResolveDevice(backend, e.Device)
		if err != nil {
			return nil, fmt.Errorf("line %d (%s): failed to resolve device: %w", e.Line, e.Filename, err)
		}

		buf, err := decodeFile(e.Path)
		if err != nil {
			return nil, fmt.Errorf("line %d (%s): %w", e.Line, e.Filename, err)
		}

		if opts.ResampleRate > 0 && buf.Format.SampleRate != opts.ResampleRate {
			log.Printf("Resampling %s: %dHz -> %dHz", e.Filename, buf.Format.SampleRate, opts.ResampleRate)
			buf = resample.Buffer(buf, opts.ResampleRate)
		}

		if buf.Format.Channels > device.MaxOutputChannels {
			return nil, fmt.Errorf("line %d (%s): file has %d channels but %s supports %d",
				e.Line, e.Filename, buf.Format.Channels, device.Label(), device.MaxOutputChannels)
		}

		job := NewJob(e.Filename, device, buf)
		log.Printf("[%s] Loaded %s: %dHz, %d channels, %d frames (%s) -> %s",
			job.ShortID(), e.Filename, buf.Format.SampleRate, buf.Format.Channels,
			buf.Frames(), buf.Format.Codec, device.Label())

		jobs = append(jobs, job)
	}

	return jobs, nil
}
