//go:build !portaudio

// ABOUTME: PortAudio stub when library not available
// ABOUTME: Provides compile-time placeholder when PortAudio not installed
package output

import (
	"fmt"

	"github.com/multiplay-audio/multiplay/pkg/audio"
)

var errPortAudioDisabled = fmt.Errorf("PortAudio support not enabled (build with -tags portaudio)")

// PortAudio output implementation (stub)
type PortAudio struct{}

// NewPortAudio creates a new PortAudio backend
func NewPortAudio() Backend {
	return &PortAudio{}
}

// Name returns the backend name
func (p *PortAudio) Name() string {
	return "portaudio"
}

// Devices returns an error explaining how to enable PortAudio
func (p *PortAudio) Devices() ([]Device, error) {
	return nil, errPortAudioDisabled
}

// Open returns an error explaining how to enable PortAudio
func (p *PortAudio) Open(Device, audio.Format, Callback) (Stream, error) {
	return nil, errPortAudioDisabled
}

// Close releases resources
func (p *PortAudio) Close() error {
	return nil
}
