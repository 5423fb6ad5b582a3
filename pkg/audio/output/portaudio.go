//go:build portaudio

// ABOUTME: PortAudio output implementation
// ABOUTME: Cross-platform device catalog and callback streams using PortAudio
package output

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
	"github.com/multiplay-audio/multiplay/pkg/audio"
)

// PortAudio output implementation
type PortAudio struct {
	mu          sync.Mutex
	initialized bool
}

// NewPortAudio creates a new PortAudio backend
func NewPortAudio() Backend {
	return &PortAudio{}
}

// Name returns the backend name
func (p *PortAudio) Name() string {
	return "portaudio"
}

func (p *PortAudio) init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize portaudio: %w", err)
	}
	p.initialized = true
	return nil
}

// Devices returns every PortAudio device with its host API
func (p *PortAudio) Devices() ([]Device, error) {
	if err := p.init(); err != nil {
		return nil, err
	}

	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	devices := make([]Device, 0, len(infos))
	for _, info := range infos {
		hostAPI := ""
		if info.HostApi != nil {
			hostAPI = info.HostApi.Name
		}
		devices = append(devices, Device{
			Index:             info.Index,
			Name:              info.Name,
			HostAPI:           hostAPI,
			MaxOutputChannels: info.MaxOutputChannels,
			DefaultSampleRate: info.DefaultSampleRate,
			ref:               info,
		})
	}
	return devices, nil
}

// Open opens a float32 output stream on dev driven by cb
func (p *PortAudio) Open(dev Device, format audio.Format, cb Callback) (Stream, error) {
	info, ok := dev.ref.(*portaudio.DeviceInfo)
	if !ok {
		return nil, fmt.Errorf("device %s does not belong to the portaudio backend", dev.Label())
	}
	if err := p.init(); err != nil {
		return nil, err
	}

	s := &paStream{
		cb:       cb,
		channels: format.Channels,
		done:     newDoneSignal(),
	}

	params := portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Device:   info,
			Channels: format.Channels,
			Latency:  info.DefaultHighOutputLatency,
		},
		SampleRate:      float64(format.SampleRate),
		FramesPerBuffer: portaudio.FramesPerBufferUnspecified,
	}

	stream, err := portaudio.OpenStream(params, s.onSamples)
	if err != nil {
		return nil, fmt.Errorf("failed to open stream on %s: %w", dev.Label(), err)
	}
	s.stream = stream

	log.Printf("Audio output initialized: %s, %dHz, %d channels (portaudio)",
		dev.Label(), format.SampleRate, format.Channels)

	return s, nil
}

// Close terminates PortAudio
func (p *PortAudio) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return nil
	}
	p.initialized = false
	return portaudio.Terminate()
}

type paStream struct {
	stream   *portaudio.Stream
	cb       Callback
	channels int
	finished atomic.Bool
	done     *doneSignal
}

// onSamples fills the interleaved PortAudio buffer
func (s *paStream) onSamples(out []float32) {
	if s.finished.Load() {
		clear(out)
		s.done.close()
		return
	}

	if s.cb(out, len(out)/s.channels) == Complete {
		s.finished.Store(true)
	}
}

func (s *paStream) Start() error {
	return s.stream.Start()
}

func (s *paStream) Done() <-chan struct{} {
	return s.done.done()
}

func (s *paStream) Close() error {
	if s.stream == nil {
		return nil
	}
	if err := s.stream.Stop(); err != nil {
		log.Printf("Warning: stream stop error: %v", err)
	}
	err := s.stream.Close()
	s.stream = nil
	return err
}
