// ABOUTME: Audio output interface definitions
// ABOUTME: Pull-callback contract, device descriptors and backend selection
package output

import (
	"fmt"
	"strings"
	"sync"

	"github.com/multiplay-audio/multiplay/pkg/audio"
)

// Status is returned by a Callback to tell the backend whether more data follows
type Status int

const (
	// Continue means the callback will have more data on the next invocation
	Continue Status = iota
	// Complete means the buffer just filled is the last one; the stream should finish
	Complete
)

func (s Status) String() string {
	switch s {
	case Continue:
		return "continue"
	case Complete:
		return "complete"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Callback fills out with frames interleaved frames. It runs on the
// backend's audio thread and must not block or allocate.
type Callback func(out []float32, frames int) Status

// Device describes one output device from a backend's catalog
type Device struct {
	Index             int
	Name              string
	HostAPI           string
	MaxOutputChannels int
	DefaultSampleRate float64

	// ref is the backend-specific handle used to open the device
	ref any
}

// Label renders the device the way the catalog listing prints it
func (d Device) Label() string {
	return d.Name + ", " + d.HostAPI
}

// Stream is an open playback stream driven by a Callback
type Stream interface {
	// Start begins invoking the callback
	Start() error

	// Done is closed once the callback returned Complete and the final
	// buffer has been handed to the device
	Done() <-chan struct{}

	// Close stops the stream and releases its resources
	Close() error
}

// Backend is an audio subsystem offering a device catalog and callback streams
type Backend interface {
	// Name returns the backend name used on the command line
	Name() string

	// Devices returns the full device catalog in enumeration order
	Devices() ([]Device, error)

	// Open creates a stream on dev for the given format
	Open(dev Device, format audio.Format, cb Callback) (Stream, error)

	// Close releases backend resources
	Close() error
}

// Backends lists the names accepted by New
func Backends() []string {
	return []string{"malgo", "portaudio", "oto", "null"}
}

// New creates the named backend
func New(name string) (Backend, error) {
	switch strings.ToLower(name) {
	case "", "malgo":
		return NewMalgo(nil), nil
	case "portaudio":
		return NewPortAudio(), nil
	case "oto":
		return NewOto(), nil
	case "null":
		return NewNull(NullConfig{}), nil
	default:
		return nil, fmt.Errorf("unknown audio backend: %s (supported: %s)",
			name, strings.Join(Backends(), ", "))
	}
}

// doneSignal closes a channel at most once
type doneSignal struct {
	ch   chan struct{}
	once sync.Once
}

func newDoneSignal() *doneSignal {
	return &doneSignal{ch: make(chan struct{})}
}

func (s *doneSignal) close() {
	s.once.Do(func() { close(s.ch) })
}

func (s *doneSignal) done() <-chan struct{} {
	return s.ch
}
