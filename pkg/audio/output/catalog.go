// ABOUTME: Device catalog queries over a backend
// ABOUTME: Lists, filters and resolves output-capable devices
package output

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrDeviceNotFound is returned when no output device matches a device string
	ErrDeviceNotFound = errors.New("output device not found")
	// ErrAmbiguousDevice is returned when a device string matches more than one output device
	ErrAmbiguousDevice = errors.New("ambiguous output device")
)

// ListOutputDevices returns every device with at least one output channel,
// in catalog order
func ListOutputDevices(b Backend) ([]Device, error) {
	devices, err := b.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to query %s devices: %w", b.Name(), err)
	}

	outputs := make([]Device, 0, len(devices))
	for _, d := range devices {
		if d.MaxOutputChannels > 0 {
			outputs = append(outputs, d)
		}
	}
	return outputs, nil
}

// FindOutputDevices returns the output devices whose name contains substr
// (case-sensitive)
func FindOutputDevices(b Backend, substr string) ([]Device, error) {
	outputs, err := ListOutputDevices(b)
	if err != nil {
		return nil, err
	}

	var matches []Device
	for _, d := range outputs {
		if strings.Contains(d.Name, substr) {
			matches = append(matches, d)
		}
	}
	return matches, nil
}

// ResolveDevice maps a config device string to exactly one output device.
// A number selects by catalog index; anything else matches the device name
// or label, exact matches taking precedence over substring matches.
func ResolveDevice(b Backend, spec string) (Device, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Device{}, fmt.Errorf("%w: empty device name", ErrDeviceNotFound)
	}

	if index, err := strconv.Atoi(spec); err == nil {
		return resolveIndex(b, index)
	}

	outputs, err := ListOutputDevices(b)
	if err != nil {
		return Device{}, err
	}

	var exact, partial []Device
	for _, d := range outputs {
		switch {
		case d.Name == spec || d.Label() == spec:
			exact = append(exact, d)
		case strings.Contains(d.Name, spec) || strings.Contains(d.Label(), spec):
			partial = append(partial, d)
		}
	}

	if len(exact) == 1 {
		return exact[0], nil
	}
	if len(exact) > 1 {
		return Device{}, ambiguous(spec, exact)
	}

	switch len(partial) {
	case 0:
		return Device{}, fmt.Errorf("%w: no output device matches %q", ErrDeviceNotFound, spec)
	case 1:
		return partial[0], nil
	default:
		return Device{}, ambiguous(spec, partial)
	}
}

func resolveIndex(b Backend, index int) (Device, error) {
	devices, err := b.Devices()
	if err != nil {
		return Device{}, fmt.Errorf("failed to query %s devices: %w", b.Name(), err)
	}

	for _, d := range devices {
		if d.Index != index {
			continue
		}
		if d.MaxOutputChannels <= 0 {
			return Device{}, fmt.Errorf("%w: device %d (%s) has no output channels",
				ErrDeviceNotFound, index, d.Label())
		}
		return d, nil
	}

	return Device{}, fmt.Errorf("%w: no device with index %d", ErrDeviceNotFound, index)
}

func ambiguous(spec string, candidates []Device) error {
	labels := make([]string, len(candidates))
	for i, d := range candidates {
		labels[i] = fmt.Sprintf("[%d] %s", d.Index, d.Label())
	}
	return fmt.Errorf("%w: %q matches %d devices: %s",
		ErrAmbiguousDevice, spec, len(candidates), strings.Join(labels, "; "))
}
