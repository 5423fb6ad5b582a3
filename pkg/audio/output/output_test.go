// ABOUTME: Audio output interface tests
// ABOUTME: Verifies backend conformance, selection and the null stream
package output

import (
	"bytes"
	"encoding/binary"
	"io"
	"log"
	"math"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gen2brain/malgo"
	"github.com/multiplay-audio/multiplay/pkg/audio"
)

func TestBackendsImplementBackend(t *testing.T) {
	var _ Backend = (*Malgo)(nil)
	var _ Backend = (*PortAudio)(nil)
	var _ Backend = (*Oto)(nil)
	var _ Backend = (*Null)(nil)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"", "malgo"},
		{"malgo", "malgo"},
		{"PortAudio", "portaudio"},
		{"oto", "oto"},
		{"null", "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := New(tt.name)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if b.Name() != tt.expected {
				t.Errorf("expected backend %s, got %s", tt.expected, b.Name())
			}
		})
	}
}

func TestNew_Unknown(t *testing.T) {
	b, err := New("asio")
	if err == nil {
		t.Fatal("expected error for unknown backend, got nil")
	}
	if b != nil {
		t.Fatal("expected backend to be nil for unknown name")
	}
	if !strings.Contains(err.Error(), "unknown audio backend: asio") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestStatusString(t *testing.T) {
	if Continue.String() != "continue" {
		t.Errorf("expected continue, got %s", Continue.String())
	}
	if Complete.String() != "complete" {
		t.Errorf("expected complete, got %s", Complete.String())
	}
	if Status(7).String() != "Status(7)" {
		t.Errorf("unexpected string for unknown status: %s", Status(7).String())
	}
}

func TestDeviceLabel(t *testing.T) {
	d := Device{Name: "Speakers (USB Audio)", HostAPI: "WASAPI"}
	if d.Label() != "Speakers (USB Audio), WASAPI" {
		t.Errorf("unexpected label: %s", d.Label())
	}
}

func TestNullStreamRunsUntilComplete(t *testing.T) {
	b := NewNull(NullConfig{FramesPerBuffer: 4, Period: time.Millisecond})
	devices, _ := b.Devices()

	var calls atomic.Int32
	cb := func(out []float32, frames int) Status {
		if frames != 4 || len(out) != 8 {
			t.Errorf("expected 4 frames in 8 samples, got %d in %d", frames, len(out))
		}
		if calls.Add(1) == 3 {
			return Complete
		}
		return Continue
	}

	stream, err := b.Open(devices[0], audio.Format{SampleRate: 48000, Channels: 2}, cb)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := stream.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	select {
	case <-stream.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not finish")
	}

	if err := stream.Close(); err != nil {
		t.Errorf("close failed: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 callbacks, got %d", calls.Load())
	}
}

func TestNullStreamCloseStopsCallbacks(t *testing.T) {
	b := NewNull(NullConfig{Period: time.Millisecond})
	devices, _ := b.Devices()

	var calls atomic.Int32
	stream, err := b.Open(devices[1], audio.Format{SampleRate: 48000, Channels: 1}, func(out []float32, frames int) Status {
		calls.Add(1)
		return Continue
	})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := stream.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	time.Sleep(10 * time.Millisecond)
	if err := stream.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	after := calls.Load()
	time.Sleep(10 * time.Millisecond)

	if calls.Load() != after {
		t.Error("callbacks continued after Close")
	}

	select {
	case <-stream.Done():
		t.Error("done should not be closed when the callback never completed")
	default:
	}

	if err := stream.Start(); err == nil {
		t.Error("expected error starting a closed stream")
	}
}

func TestNullOpenRejectsTooManyChannels(t *testing.T) {
	b := NewNull(NullConfig{})
	devices, _ := b.Devices()

	_, err := b.Open(devices[0], audio.Format{SampleRate: 48000, Channels: 6}, func([]float32, int) Status { return Complete })
	if err == nil {
		t.Fatal("expected error for 6 channels on a stereo device")
	}
}

func TestCallbackReader(t *testing.T) {
	calls := 0
	r := &callbackReader{
		channels: 2,
		cb: func(out []float32, frames int) Status {
			calls++
			for i := range out {
				out[i] = 0.5
			}
			if calls == 2 {
				return Complete
			}
			return Continue
		},
	}

	p := make([]byte, 4*2*3+1)
	n, err := r.Read(p)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if n != 24 {
		t.Fatalf("expected 24 bytes, got %d", n)
	}
	if v := math.Float32frombits(binary.LittleEndian.Uint32(p[20:])); v != 0.5 {
		t.Errorf("expected 0.5, got %f", v)
	}

	if _, err := r.Read(p); err != nil {
		t.Fatalf("second read failed: %v", err)
	}
	if _, err := r.Read(p); err != io.EOF {
		t.Errorf("expected io.EOF after Complete, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 callbacks, got %d", calls)
	}
}

func TestMalgoNativeFormat(t *testing.T) {
	var info malgo.DeviceInfo
	info.FormatCount = 2
	info.Formats[0] = malgo.DataFormat{Format: malgo.FormatF32, Channels: 2, SampleRate: 44100}
	info.Formats[1] = malgo.DataFormat{Format: malgo.FormatS16, Channels: 8, SampleRate: 48000}

	channels, rate := malgoNativeFormat(info)
	if channels != 8 {
		t.Errorf("expected 8 channels, got %d", channels)
	}
	if rate != 44100 {
		t.Errorf("expected rate 44100, got %f", rate)
	}

	channels, rate = malgoNativeFormat(malgo.DeviceInfo{})
	if channels != 2 || rate != 0 {
		t.Errorf("expected stereo/unknown rate for empty info, got %d/%f", channels, rate)
	}
}

func TestMalgoBackendName(t *testing.T) {
	if malgoBackendName(malgo.BackendAlsa) != "ALSA" {
		t.Errorf("unexpected name: %s", malgoBackendName(malgo.BackendAlsa))
	}
	if malgoBackendName(malgo.BackendWasapi) != "WASAPI" {
		t.Errorf("unexpected name: %s", malgoBackendName(malgo.BackendWasapi))
	}
}

func TestMalgoOpenRejectsForeignDevice(t *testing.T) {
	m := NewMalgo(nil)
	_, err := m.Open(Device{Name: "Null Output 0", HostAPI: "null"}, audio.Format{SampleRate: 48000, Channels: 2}, nil)
	if err == nil {
		t.Fatal("expected error for a device from another backend")
	}
}

func TestMalgoDevicesReportsHostAPIFailures(t *testing.T) {
	var logs bytes.Buffer
	log.SetOutput(&logs)
	defer log.SetOutput(os.Stderr)

	// No miniaudio backend has this id, so context init always fails
	m := NewMalgo([]malgo.Backend{malgo.Backend(250)})
	defer m.Close()

	_, err := m.Devices()
	if err == nil {
		t.Fatal("expected error when no host API initializes")
	}
	if !strings.Contains(err.Error(), "no audio host API available") ||
		!strings.Contains(err.Error(), "failed to initialize malgo context") {
		t.Errorf("expected init failure in error, got: %v", err)
	}
	if !strings.Contains(logs.String(), "Warning: Unknown(250) unavailable") {
		t.Errorf("expected warning in log, got: %q", logs.String())
	}
}

func TestDoneSignalClosesOnce(t *testing.T) {
	s := newDoneSignal()
	s.close()
	s.close()

	select {
	case <-s.done():
	default:
		t.Fatal("expected done to be closed")
	}
}
