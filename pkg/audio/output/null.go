// ABOUTME: Null audio output that discards samples
// ABOUTME: Drives callbacks from a ticker for dry runs and tests
package output

import (
	"fmt"
	"sync"
	"time"

	"github.com/multiplay-audio/multiplay/pkg/audio"
)

// DefaultFramesPerBuffer is the callback size used when a backend lets us pick
const DefaultFramesPerBuffer = 512

// NullConfig configures the null backend
type NullConfig struct {
	// Devices is the catalog to report (default: two stereo devices)
	Devices []Device

	// FramesPerBuffer is the frame count requested per callback
	FramesPerBuffer int

	// Period overrides the callback cadence (default: real time for the format)
	Period time.Duration
}

// Null output implementation that plays to nowhere
type Null struct {
	config NullConfig
}

// NewNull creates a null backend
func NewNull(config NullConfig) *Null {
	if len(config.Devices) == 0 {
		config.Devices = []Device{
			{Index: 0, Name: "Null Output 0", HostAPI: "null", MaxOutputChannels: 2, DefaultSampleRate: 48000},
			{Index: 1, Name: "Null Output 1", HostAPI: "null", MaxOutputChannels: 2, DefaultSampleRate: 48000},
		}
	}
	if config.FramesPerBuffer <= 0 {
		config.FramesPerBuffer = DefaultFramesPerBuffer
	}
	return &Null{config: config}
}

// Name returns the backend name
func (n *Null) Name() string {
	return "null"
}

// Devices returns the configured catalog
func (n *Null) Devices() ([]Device, error) {
	devices := make([]Device, len(n.config.Devices))
	copy(devices, n.config.Devices)
	return devices, nil
}

// Open creates a ticker-driven stream
func (n *Null) Open(dev Device, format audio.Format, cb Callback) (Stream, error) {
	if format.Channels <= 0 || format.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid format: %dHz, %d channels", format.SampleRate, format.Channels)
	}
	if format.Channels > dev.MaxOutputChannels {
		return nil, fmt.Errorf("device %s supports %d channels, need %d",
			dev.Label(), dev.MaxOutputChannels, format.Channels)
	}

	period := n.config.Period
	if period <= 0 {
		period = time.Duration(n.config.FramesPerBuffer) * time.Second / time.Duration(format.SampleRate)
	}

	return &nullStream{
		cb:     cb,
		frames: n.config.FramesPerBuffer,
		buffer: make([]float32, n.config.FramesPerBuffer*format.Channels),
		period: period,
		done:   newDoneSignal(),
		stop:   make(chan struct{}),
	}, nil
}

// Close releases backend resources
func (n *Null) Close() error {
	return nil
}

type nullStream struct {
	cb     Callback
	frames int
	buffer []float32
	period time.Duration
	done   *doneSignal

	mu      sync.Mutex
	started bool
	closed  bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

func (s *nullStream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("stream closed")
	}
	if s.started {
		return fmt.Errorf("stream already started")
	}
	s.started = true

	s.wg.Add(1)
	go s.loop()
	return nil
}

func (s *nullStream) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if s.cb(s.buffer, s.frames) == Complete {
				s.done.close()
				return
			}
		}
	}
}

func (s *nullStream) Done() <-chan struct{} {
	return s.done.done()
}

func (s *nullStream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.stop)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}
