// ABOUTME: Tests for the sine tone generator
// ABOUTME: Checks buffer geometry, amplitude and channel duplication
package audio

import (
	"math"
	"testing"
)

func TestSine(t *testing.T) {
	format := Format{SampleRate: 8000, Channels: 2}
	buf := Sine(format, 1000, 80, 0.5)

	if buf.Frames() != 80 {
		t.Fatalf("expected 80 frames, got %d", buf.Frames())
	}

	if buf.Samples[0] != 0 {
		t.Errorf("expected sine to start at 0, got %f", buf.Samples[0])
	}

	// 1kHz at 8kHz peaks on frame 2
	peak := buf.Frame(2)
	if math.Abs(float64(peak[0])-0.5) > 1e-6 {
		t.Errorf("expected peak 0.5, got %f", peak[0])
	}
	if peak[0] != peak[1] {
		t.Errorf("expected channels to match, got %f and %f", peak[0], peak[1])
	}

	for i, s := range buf.Samples {
		if s > 0.5+1e-6 || s < -0.5-1e-6 {
			t.Fatalf("sample %d out of amplitude range: %f", i, s)
		}
	}
}
