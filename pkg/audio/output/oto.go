// ABOUTME: Oto-based audio output implementation
// ABOUTME: Plays to the system default device; the callback is pulled through an io.Reader
package output

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/multiplay-audio/multiplay/pkg/audio"
)

// otoPollInterval is how often a finished oto player is checked for drain
const otoPollInterval = 20 * time.Millisecond

// Oto output implementation using oto library.
// oto allows one context per process, so every stream shares its format.
type Oto struct {
	mu     sync.Mutex
	otoCtx *oto.Context
	format audio.Format
}

type otoDefault struct{}

// NewOto creates a new Oto backend
func NewOto() *Oto {
	return &Oto{}
}

// Name returns the backend name
func (o *Oto) Name() string {
	return "oto"
}

// Devices returns the single system default device
func (o *Oto) Devices() ([]Device, error) {
	return []Device{{
		Index:             0,
		Name:              "default",
		HostAPI:           "oto",
		MaxOutputChannels: 2,
		DefaultSampleRate: 48000,
		ref:               otoDefault{},
	}}, nil
}

// Open creates a player on the shared oto context
func (o *Oto) Open(dev Device, format audio.Format, cb Callback) (Stream, error) {
	if _, ok := dev.ref.(otoDefault); !ok {
		return nil, fmt.Errorf("device %s does not belong to the oto backend", dev.Label())
	}
	if format.Channels < 1 || format.Channels > 2 {
		return nil, fmt.Errorf("oto supports 1 or 2 channels, got %d", format.Channels)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.otoCtx == nil {
		op := &oto.NewContextOptions{
			SampleRate:   format.SampleRate,
			ChannelCount: format.Channels,
			Format:       oto.FormatFloat32LE,
		}

		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			return nil, fmt.Errorf("failed to create oto context: %w", err)
		}
		<-readyChan

		o.otoCtx = ctx
		o.format = format
		log.Printf("Audio output initialized: %dHz, %d channels (oto)", format.SampleRate, format.Channels)
	} else if o.format.SampleRate != format.SampleRate || o.format.Channels != format.Channels {
		// oto cannot reinitialize its context
		return nil, fmt.Errorf("oto context is fixed at %dHz %dch, got %dHz %dch (use -resample)",
			o.format.SampleRate, o.format.Channels, format.SampleRate, format.Channels)
	}

	reader := &callbackReader{cb: cb, channels: format.Channels}
	return &otoStream{
		player: o.otoCtx.NewPlayer(reader),
		reader: reader,
		done:   newDoneSignal(),
		stop:   make(chan struct{}),
	}, nil
}

// Close suspends the shared context
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.otoCtx != nil {
		return o.otoCtx.Suspend()
	}
	return nil
}

// callbackReader turns pull-callback invocations into float32 LE bytes
type callbackReader struct {
	cb       Callback
	channels int
	scratch  []float32
	finished atomic.Bool
}

func (r *callbackReader) Read(p []byte) (int, error) {
	if r.finished.Load() {
		return 0, io.EOF
	}

	frames := len(p) / (4 * r.channels)
	if frames == 0 {
		return 0, nil
	}

	if cap(r.scratch) < frames*r.channels {
		r.scratch = make([]float32, frames*r.channels)
	}
	buf := r.scratch[:frames*r.channels]

	status := r.cb(buf, frames)
	for i, v := range buf {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(v))
	}

	if status == Complete {
		r.finished.Store(true)
	}
	return len(buf) * 4, nil
}

type otoStream struct {
	player *oto.Player
	reader *callbackReader
	done   *doneSignal

	closeOnce sync.Once
	stop      chan struct{}
	wg        sync.WaitGroup
}

func (s *otoStream) Start() error {
	s.player.Play()

	s.wg.Add(1)
	go s.watch()
	return nil
}

// watch closes done once the reader hit the end and the player drained
func (s *otoStream) watch() {
	defer s.wg.Done()

	ticker := time.NewTicker(otoPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if s.reader.finished.Load() && !s.player.IsPlaying() {
				s.done.close()
				return
			}
		}
	}
}

func (s *otoStream) Done() <-chan struct{} {
	return s.done.done()
}

func (s *otoStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stop)
		s.wg.Wait()
		s.player.Pause()
		err = s.player.Close()
	})
	return err
}
