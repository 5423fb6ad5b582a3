// ABOUTME: Bubbletea model for the playback progress view
// ABOUTME: Renders one progress bar per job and forwards stop requests
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/multiplay-audio/multiplay/internal/playback"
	"github.com/multiplay-audio/multiplay/internal/version"
)

const barWidth = 30

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	fileStyle     = lipgloss.NewStyle().Bold(true)
	deviceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	runningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	finishedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	stoppingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Model represents the TUI state
type Model struct {
	progress ProgressFunc
	control  *Control
	interval time.Duration

	jobs     []playback.JobProgress
	stopping bool
	done     bool

	width  int
	height int
}

type tickMsg time.Time

// DoneMsg tells the view that playback has ended
type DoneMsg struct{}

// Init starts the refresh ticker
func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tickMsg:
		m.refresh()
		return m, m.tick()
	case DoneMsg:
		m.refresh()
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) refresh() {
	if m.progress != nil {
		m.jobs = m.progress()
	}
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		if m.stopping {
			// Second press leaves the view; workers keep winding down
			return m, tea.Quit
		}
		m.stopping = true
		m.requestStop()
	}

	return m, nil
}

func (m Model) requestStop() {
	if m.control == nil {
		return
	}
	select {
	case m.control.Quit <- struct{}{}:
	default:
	}
}

// View renders the TUI
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("%s %s", version.Product, version.Version)))
	b.WriteString("\n\n")

	if len(m.jobs) == 0 {
		b.WriteString("Waiting for jobs...\n")
	}
	for _, job := range m.jobs {
		b.WriteString(renderJob(job))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.done:
		b.WriteString(finishedStyle.Render("Finish"))
	case m.stopping:
		b.WriteString(stoppingStyle.Render("Stopping threads... (q again to leave)"))
	default:
		b.WriteString(helpStyle.Render(fmt.Sprintf("%d/%d playing  q:Stop", countRunning(m.jobs), len(m.jobs))))
	}

	return boxStyle.Render(b.String()) + "\n"
}

func renderJob(job playback.JobProgress) string {
	state := job.State.String()
	switch job.State {
	case playback.Running:
		state = runningStyle.Render(state)
	case playback.Finished:
		state = finishedStyle.Render(state)
	}

	return fmt.Sprintf("%s -> %s\n  [%s] %3d%% %s",
		fileStyle.Render(truncate(job.Filename, 40)),
		deviceStyle.Render(job.Device),
		renderBar(job.Offset, job.Frames, barWidth),
		percent(job.Offset, job.Frames),
		state)
}

func countRunning(jobs []playback.JobProgress) int {
	n := 0
	for _, job := range jobs {
		if job.State == playback.Running {
			n++
		}
	}
	return n
}

// Utility functions
func percent(value, total int) int {
	if total <= 0 {
		return 100
	}
	return value * 100 / total
}

func renderBar(value, total, width int) string {
	filled := width
	if total > 0 {
		filled = value * width / total
	}
	filled = min(max(filled, 0), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}
