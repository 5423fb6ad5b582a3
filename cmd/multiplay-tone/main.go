// ABOUTME: Writes sine-tone WAV files and a matching multiplay config
// ABOUTME: Each device gets its own pitch so routing can be checked by ear
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/multiplay-audio/multiplay/pkg/audio"
	"github.com/multiplay-audio/multiplay/pkg/audio/encode"
)

const (
	baseFrequency = 440.0 // A4
	amplitude     = 0.5
	configName    = "multiplay.conf"
)

var (
	outDir   = flag.String("out", ".", "Output directory")
	count    = flag.Int("n", 2, "Number of tones (one per device index)")
	rate     = flag.Int("rate", 48000, "Sample rate in Hz")
	seconds  = flag.Float64("seconds", 5, "Tone length in seconds")
	channels = flag.Int("channels", 2, "Channels per file (1 or 2)")
	bitDepth = flag.Int("bit-depth", 16, "WAV bit depth (8, 16 or 24)")
)

// toneConfig describes one generation run
type toneConfig struct {
	Dir      string
	Count    int
	Rate     int
	Seconds  float64
	Channels int
	BitDepth int
}

func main() {
	flag.Parse()

	cfg := toneConfig{
		Dir:      *outDir,
		Count:    *count,
		Rate:     *rate,
		Seconds:  *seconds,
		Channels: *channels,
		BitDepth: *bitDepth,
	}

	configPath, err := writeTones(cfg)
	if err != nil {
		log.Fatalf("Failed to write tones: %v", err)
	}

	fmt.Printf("Wrote %d tones and %s\n", cfg.Count, configPath)
	fmt.Printf("Play them with: multiplay %s\n", configPath)
}

// frequencyFor spaces tones a minor third apart starting at A4
func frequencyFor(i int) float64 {
	return baseFrequency * math.Pow(2, float64(3*i)/12)
}

func toneName(i int) string {
	return fmt.Sprintf("tone-%d.wav", i)
}

// writeTones writes cfg.Count WAV files plus a config mapping tone-<i>.wav
// to device index i. Returns the config path.
func writeTones(cfg toneConfig) (string, error) {
	if cfg.Count <= 0 {
		return "", fmt.Errorf("tone count must be positive, got %d", cfg.Count)
	}
	if cfg.Rate <= 0 || cfg.Seconds <= 0 {
		return "", fmt.Errorf("invalid tone format: %dHz for %.2fs", cfg.Rate, cfg.Seconds)
	}

	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	format := audio.Format{
		Codec:      "pcm",
		SampleRate: cfg.Rate,
		Channels:   cfg.Channels,
		BitDepth:   cfg.BitDepth,
	}
	frames := int(float64(cfg.Rate) * cfg.Seconds)

	var conf strings.Builder
	for i := 0; i < cfg.Count; i++ {
		name := toneName(i)
		freq := frequencyFor(i)

		if err := writeTone(filepath.Join(cfg.Dir, name), audio.Sine(format, freq, frames, amplitude), cfg.BitDepth); err != nil {
			return "", err
		}
		log.Printf("Wrote %s: %.1fHz, %d frames", name, freq, frames)

		fmt.Fprintf(&conf, "%s=%d\n", name, i)
	}

	configPath := filepath.Join(cfg.Dir, configName)
	if err := os.WriteFile(configPath, []byte(conf.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}

	return configPath, nil
}

func writeTone(path string, buf *audio.Buffer, bitDepth int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := encode.WAV(f, buf, bitDepth); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	return f.Close()
}
