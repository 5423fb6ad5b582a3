// ABOUTME: End-to-end tests for the multiplay application
// ABOUTME: Plays generated WAV files through the null backend
package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/multiplay-audio/multiplay/internal/playback"
	"github.com/multiplay-audio/multiplay/pkg/audio"
	"github.com/multiplay-audio/multiplay/pkg/audio/encode"
	"github.com/multiplay-audio/multiplay/pkg/audio/output"
)

func writeTone(t *testing.T, path string, frequency float64, frames int) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()

	format := audio.Format{SampleRate: 48000, Channels: 2}
	if err := encode.WAV(f, audio.Sine(format, frequency, frames, 0.5), 16); err != nil {
		t.Fatalf("failed to encode %s: %v", path, err)
	}
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, "multiplay.conf")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func fastNull() output.Backend {
	return output.NewNull(output.NullConfig{Period: time.Millisecond})
}

func TestNew(t *testing.T) {
	a := New(Config{ConfigPath: "x.conf"})

	if a.config.Out != os.Stdout {
		t.Error("expected stdout as default output")
	}
	if a.config.PollInterval != playback.DefaultPollInterval {
		t.Errorf("expected default poll interval, got %v", a.config.PollInterval)
	}
	if a.Player() != nil {
		t.Error("expected no player before Load")
	}
}

func TestRunPlaysEveryFile(t *testing.T) {
	dir := t.TempDir()
	writeTone(t, filepath.Join(dir, "a.wav"), 440, 4800)
	writeTone(t, filepath.Join(dir, "b file.wav"), 660, 2400)
	configPath := writeConfig(t, dir, "a.wav=0\nb\\ file.wav=Null Output 1\n")

	var out bytes.Buffer
	a := New(Config{
		ConfigPath:   configPath,
		Backend:      fastNull(),
		PollInterval: 5 * time.Millisecond,
		Out:          &out,
	})

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	expected := "Playing files\n" +
		"Play a.wav to Null Output 0\n" +
		"Play b file.wav to Null Output 1\n" +
		"Finish\n"
	if out.String() != expected {
		t.Errorf("unexpected output:\n%s", out.String())
	}

	for _, job := range a.Player().Jobs() {
		if job.State() != playback.Finished {
			t.Errorf("%s: expected Finished, got %s", job.Filename, job.State())
		}
		if job.Offset() != job.Frames() {
			t.Errorf("%s: expected %d frames played, got %d", job.Filename, job.Frames(), job.Offset())
		}
	}
}

func TestRunResamples(t *testing.T) {
	dir := t.TempDir()
	writeTone(t, filepath.Join(dir, "a.wav"), 440, 4800)
	configPath := writeConfig(t, dir, "a.wav=0\n")

	a := New(Config{
		ConfigPath:   configPath,
		Backend:      fastNull(),
		PollInterval: 5 * time.Millisecond,
		ResampleRate: 24000,
		Out:          &bytes.Buffer{},
	})

	if err := a.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	job := a.Player().Jobs()[0]
	if job.Buffer.Format.SampleRate != 24000 {
		t.Errorf("expected 24000Hz, got %d", job.Buffer.Format.SampleRate)
	}

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
}

func TestRunInterrupted(t *testing.T) {
	dir := t.TempDir()
	// Several hundred callbacks at one per millisecond outlasts the timeout
	writeTone(t, filepath.Join(dir, "long.wav"), 440, 48000*5)
	configPath := writeConfig(t, dir, "long.wav=0\n")

	var out bytes.Buffer
	a := New(Config{
		ConfigPath:   configPath,
		Backend:      fastNull(),
		PollInterval: 5 * time.Millisecond,
		Out:          &out,
	})
	if err := a.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	if err := a.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	text := out.String()
	for _, want := range []string{"Playing files", "Stopping threads", "Threads stopped", "Finish"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in output:\n%s", want, text)
		}
	}
	if !strings.HasSuffix(text, "Threads stopped\nFinish\n") {
		t.Errorf("expected Finish after Threads stopped:\n%s", text)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	writeTone(t, filepath.Join(dir, "a.wav"), 440, 480)

	tests := []struct {
		name     string
		config   string
		backend  output.Backend
		expected string
	}{
		{"no backend", "a.wav=0\n", nil, "no output backend"},
		{"malformed line", "a.wav\n", fastNull(), "failed to load config"},
		{"unknown device", "a.wav=Studio Monitor\n", fastNull(), "failed to resolve device"},
		{"missing file", "missing.wav=0\n", fastNull(), "missing.wav"},
		{"empty config", "# nothing here\n", fastNull(), "no entries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			a := New(Config{
				ConfigPath: writeConfig(t, dir, tt.config),
				Backend:    tt.backend,
				Out:        &out,
			})

			err := a.Load()
			if err == nil || !strings.Contains(err.Error(), tt.expected) {
				t.Fatalf("expected error containing %q, got %v", tt.expected, err)
			}
			if a.Player() != nil {
				t.Error("expected no player after a failed load")
			}

			if err := a.Run(context.Background()); err == nil {
				t.Error("expected Run to fail as well")
			}
			if out.Len() != 0 {
				t.Errorf("expected nothing printed before a failed start, got %q", out.String())
			}
		})
	}
}

func TestMissingConfigFile(t *testing.T) {
	a := New(Config{
		ConfigPath: filepath.Join(t.TempDir(), "absent.conf"),
		Backend:    fastNull(),
		Out:        &bytes.Buffer{},
	})

	if err := a.Load(); err == nil {
		t.Error("expected error for missing config file")
	}
}
