// ABOUTME: Malgo-based audio output implementation
// ABOUTME: Uses miniaudio via malgo for device enumeration and callback playback
package output

import (
	"encoding/binary"
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
	"github.com/multiplay-audio/multiplay/pkg/audio"
)

// malgoScratchFrames bounds the frames converted per callback pass
const malgoScratchFrames = 4096

// Malgo output implementation using malgo/miniaudio library.
// Every miniaudio host API that initialises on this platform contributes
// its playback devices to one catalog.
type Malgo struct {
	backends []malgo.Backend

	mu       sync.Mutex
	contexts map[malgo.Backend]*malgo.AllocatedContext
	catalog  []Device
	loaded   bool
}

type malgoRef struct {
	backend malgo.Backend
	id      malgo.DeviceID
}

// NewMalgo creates a malgo backend probing the given host APIs
// (nil probes every platform host API)
func NewMalgo(backends []malgo.Backend) *Malgo {
	if len(backends) == 0 {
		backends = defaultMalgoBackends()
	}
	return &Malgo{
		backends: backends,
		contexts: make(map[malgo.Backend]*malgo.AllocatedContext),
	}
}

// Name returns the backend name
func (m *Malgo) Name() string {
	return "malgo"
}

// Devices enumerates playback devices across every available host API
func (m *Malgo) Devices() ([]Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loaded {
		return append([]Device(nil), m.catalog...), nil
	}

	var devices []Device
	var lastErr error
	for _, b := range m.backends {
		ctx, err := m.context(b)
		if err != nil {
			log.Printf("Warning: %s unavailable: %v", malgoBackendName(b), err)
			lastErr = err
			continue
		}

		infos, err := ctx.Devices(malgo.Playback)
		if err != nil {
			log.Printf("Warning: %s device enumeration failed: %v", malgoBackendName(b), err)
			continue
		}

		for _, info := range infos {
			if full, err := ctx.DeviceInfo(malgo.Playback, info.ID, malgo.Shared); err == nil {
				info = full
			}
			channels, rate := malgoNativeFormat(info)

			devices = append(devices, Device{
				Index:             len(devices),
				Name:              info.Name(),
				HostAPI:           malgoBackendName(b),
				MaxOutputChannels: channels,
				DefaultSampleRate: rate,
				ref:               malgoRef{backend: b, id: info.ID},
			})
		}
	}

	if len(m.contexts) == 0 {
		return nil, fmt.Errorf("no audio host API available: %w", lastErr)
	}

	m.catalog = devices
	m.loaded = true
	return append([]Device(nil), devices...), nil
}

// context returns the initialised context for a host API (must hold m.mu)
func (m *Malgo) context(b malgo.Backend) (*malgo.AllocatedContext, error) {
	if ctx, ok := m.contexts[b]; ok {
		return ctx, nil
	}

	ctx, err := malgo.InitContext([]malgo.Backend{b}, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	m.contexts[b] = ctx
	return ctx, nil
}

// Open initializes a float32 playback device driven by cb
func (m *Malgo) Open(dev Device, format audio.Format, cb Callback) (Stream, error) {
	ref, ok := dev.ref.(malgoRef)
	if !ok {
		return nil, fmt.Errorf("device %s does not belong to the malgo backend", dev.Label())
	}

	m.mu.Lock()
	ctx, err := m.context(ref.backend)
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = uint32(format.Channels)
	deviceConfig.SampleRate = uint32(format.SampleRate)
	deviceConfig.Alsa.NoMMap = 1

	id := ref.id
	deviceConfig.Playback.DeviceID = id.Pointer()

	s := &malgoStream{
		cb:       cb,
		channels: format.Channels,
		scratch:  make([]float32, malgoScratchFrames*format.Channels),
		done:     newDoneSignal(),
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: s.onSamples,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize playback device %s: %w", dev.Label(), err)
	}
	s.device = device

	log.Printf("Audio output initialized: %s, %dHz, %d channels (malgo/F32)",
		dev.Label(), format.SampleRate, format.Channels)

	return s, nil
}

// Close releases every malgo context
func (m *Malgo) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for b, ctx := range m.contexts {
		if err := ctx.Uninit(); err != nil {
			log.Printf("Warning: malgo context uninit error: %v", err)
		}
		ctx.Free()
		delete(m.contexts, b)
	}
	m.loaded = false
	m.catalog = nil
	return nil
}

type malgoStream struct {
	device   *malgo.Device
	cb       Callback
	channels int
	scratch  []float32
	finished atomic.Bool
	done     *doneSignal
}

// onSamples is called by malgo to fill the device buffer
func (s *malgoStream) onSamples(pOutput, _ []byte, frameCount uint32) {
	if s.finished.Load() {
		// The previous buffer was the last one and has been consumed
		clear(pOutput)
		s.done.close()
		return
	}

	remaining := int(frameCount)
	pos := 0
	for remaining > 0 {
		n := min(remaining, malgoScratchFrames)
		buf := s.scratch[:n*s.channels]

		status := s.cb(buf, n)
		for i, v := range buf {
			binary.LittleEndian.PutUint32(pOutput[(pos+i)*4:], math.Float32bits(v))
		}
		pos += len(buf)
		remaining -= n

		if status == Complete {
			clear(pOutput[pos*4:])
			s.finished.Store(true)
			return
		}
	}
}

func (s *malgoStream) Start() error {
	if err := s.device.Start(); err != nil {
		return fmt.Errorf("failed to start device: %w", err)
	}
	return nil
}

func (s *malgoStream) Done() <-chan struct{} {
	return s.done.done()
}

func (s *malgoStream) Close() error {
	if s.device == nil {
		return nil
	}
	if err := s.device.Stop(); err != nil {
		log.Printf("Warning: device stop error: %v", err)
	}
	s.device.Uninit()
	s.device = nil
	return nil
}

// malgoNativeFormat returns the widest native channel count and the first
// native sample rate. miniaudio reports 0 for "any", which maps to stereo.
func malgoNativeFormat(info malgo.DeviceInfo) (int, float64) {
	channels := 0
	rate := 0.0
	for i := 0; i < int(info.FormatCount) && i < len(info.Formats); i++ {
		f := info.Formats[i]
		if int(f.Channels) > channels {
			channels = int(f.Channels)
		}
		if rate == 0 && f.SampleRate > 0 {
			rate = float64(f.SampleRate)
		}
	}
	if channels == 0 {
		channels = 2
	}
	return channels, rate
}

func defaultMalgoBackends() []malgo.Backend {
	return []malgo.Backend{
		malgo.BackendWasapi,
		malgo.BackendDsound,
		malgo.BackendWinmm,
		malgo.BackendCoreaudio,
		malgo.BackendSndio,
		malgo.BackendAudio4,
		malgo.BackendOss,
		malgo.BackendPulseaudio,
		malgo.BackendAlsa,
		malgo.BackendJack,
		malgo.BackendAaudio,
		malgo.BackendOpensl,
	}
}

// malgoBackendName returns the host-API name shown in device listings
func malgoBackendName(b malgo.Backend) string {
	switch b {
	case malgo.BackendWasapi:
		return "WASAPI"
	case malgo.BackendDsound:
		return "DirectSound"
	case malgo.BackendWinmm:
		return "WinMM"
	case malgo.BackendCoreaudio:
		return "Core Audio"
	case malgo.BackendSndio:
		return "sndio"
	case malgo.BackendAudio4:
		return "audio(4)"
	case malgo.BackendOss:
		return "OSS"
	case malgo.BackendPulseaudio:
		return "PulseAudio"
	case malgo.BackendAlsa:
		return "ALSA"
	case malgo.BackendJack:
		return "JACK"
	case malgo.BackendAaudio:
		return "AAudio"
	case malgo.BackendOpensl:
		return "OpenSL|ES"
	case malgo.BackendNull:
		return "Null"
	default:
		return fmt.Sprintf("Unknown(%d)", b)
	}
}
