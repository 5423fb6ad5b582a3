// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program for the playback progress view
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/multiplay-audio/multiplay/internal/playback"
)

// RefreshInterval is how often the view samples job progress
const RefreshInterval = 100 * time.Millisecond

// ProgressFunc returns a snapshot of every job
type ProgressFunc func() []playback.JobProgress

// Control holds channels between the TUI and the application
type Control struct {
	// Quit receives one value when the user asks to stop playback
	Quit chan struct{}

	// Closed is closed by the application once playback has ended
	Closed chan struct{}
}

// NewControl creates a new control handler
func NewControl() *Control {
	return &Control{
		Quit:   make(chan struct{}, 1),
		Closed: make(chan struct{}),
	}
}

// NewModel creates a new TUI model
func NewModel(progress ProgressFunc, ctrl *Control) Model {
	return Model{
		progress: progress,
		control:  ctrl,
		interval: RefreshInterval,
	}
}

// Run creates the TUI program
func Run(progress ProgressFunc, ctrl *Control) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(progress, ctrl), tea.WithAltScreen())
	return p, nil
}
