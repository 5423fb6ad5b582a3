// ABOUTME: Tests for TUI model and state management
// ABOUTME: Tests progress refresh, key handling and rendering helpers
package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/multiplay-audio/multiplay/internal/playback"
)

func sampleProgress() []playback.JobProgress {
	return []playback.JobProgress{
		{Filename: "a.wav", Device: "Speakers, CoreAudio", State: playback.Running, Offset: 50, Frames: 100},
		{Filename: "b.wav", Device: "Headphones, CoreAudio", State: playback.Finished, Offset: 100, Frames: 100},
	}
}

func TestNewModel(t *testing.T) {
	model := NewModel(nil, nil)

	if model.stopping {
		t.Error("expected stopping to be false initially")
	}
	if model.done {
		t.Error("expected done to be false initially")
	}
	if model.interval != RefreshInterval {
		t.Errorf("expected interval %v, got %v", RefreshInterval, model.interval)
	}
	if model.Init() == nil {
		t.Error("expected Init to schedule a tick")
	}
}

func TestTickRefreshesProgress(t *testing.T) {
	calls := 0
	model := NewModel(func() []playback.JobProgress {
		calls++
		return sampleProgress()
	}, nil)

	updated, cmd := model.Update(tickMsg{})
	m := updated.(Model)

	if calls != 1 {
		t.Errorf("expected one progress call, got %d", calls)
	}
	if len(m.jobs) != 2 {
		t.Errorf("expected 2 jobs, got %d", len(m.jobs))
	}
	if cmd == nil {
		t.Error("expected tick to reschedule itself")
	}
}

func TestQuitKeyRequestsStop(t *testing.T) {
	ctrl := NewControl()
	model := NewModel(sampleProgress, ctrl)

	updated, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	m := updated.(Model)

	if !m.stopping {
		t.Error("expected stopping after q")
	}
	if cmd != nil {
		t.Error("expected the view to stay open after the first q")
	}

	select {
	case <-ctrl.Quit:
	default:
		t.Fatal("expected a stop request on the control channel")
	}

	// Second press leaves the view without another request
	updated, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Error("expected quit command on second press")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}

	select {
	case <-ctrl.Quit:
		t.Error("expected only one stop request")
	default:
	}
	_ = updated
}

func TestQuitWithoutControl(t *testing.T) {
	model := NewModel(nil, nil)

	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if !updated.(Model).stopping {
		t.Error("expected stopping after q")
	}
}

func TestDoneMsgQuits(t *testing.T) {
	model := NewModel(sampleProgress, nil)

	updated, cmd := model.Update(DoneMsg{})
	m := updated.(Model)

	if !m.done {
		t.Error("expected done after DoneMsg")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if !strings.Contains(m.View(), "Finish") {
		t.Error("expected Finish in final view")
	}
}

func TestWindowSize(t *testing.T) {
	model := NewModel(nil, nil)

	updated, _ := model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m := updated.(Model)

	if m.width != 80 || m.height != 24 {
		t.Errorf("expected 80x24, got %dx%d", m.width, m.height)
	}
}

func TestView(t *testing.T) {
	model := NewModel(sampleProgress, nil)
	model.refresh()

	view := model.View()

	for _, want := range []string{"a.wav", "b.wav", "Speakers, CoreAudio", " 50%", "100%", "1/2 playing"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestViewWithoutJobs(t *testing.T) {
	if !strings.Contains(NewModel(nil, nil).View(), "Waiting for jobs") {
		t.Error("expected waiting message")
	}
}

func TestRenderBar(t *testing.T) {
	tests := []struct {
		value, total, width int
		filled              int
	}{
		{0, 100, 10, 0},
		{50, 100, 10, 5},
		{100, 100, 10, 10},
		{150, 100, 10, 10},
		{0, 0, 10, 10},
	}

	for _, tt := range tests {
		bar := renderBar(tt.value, tt.total, tt.width)
		if got := strings.Count(bar, "█"); got != tt.filled {
			t.Errorf("renderBar(%d, %d, %d): expected %d filled, got %d", tt.value, tt.total, tt.width, tt.filled, got)
		}
		if got := strings.Count(bar, "█") + strings.Count(bar, "░"); got != tt.width {
			t.Errorf("renderBar(%d, %d, %d): expected width %d, got %d", tt.value, tt.total, tt.width, tt.width, got)
		}
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		value, total, expected int
	}{
		{0, 100, 0},
		{25, 100, 25},
		{100, 100, 100},
		{0, 0, 100},
	}

	for _, tt := range tests {
		if got := percent(tt.value, tt.total); got != tt.expected {
			t.Errorf("percent(%d, %d): expected %d, got %d", tt.value, tt.total, tt.expected, got)
		}
	}
}

func TestTruncate(t *testing.T) {
	if truncate("short.wav", 40) != "short.wav" {
		t.Error("expected short string unchanged")
	}
	got := truncate(strings.Repeat("x", 50), 10)
	if len(got) != 10 || !strings.HasSuffix(got, "...") {
		t.Errorf("expected 10 chars ending in ..., got %q", got)
	}
}
