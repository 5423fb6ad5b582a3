// ABOUTME: Multiplay application orchestration
// ABOUTME: Coordinates config loading, job preparation, playback and the optional TUI
package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/multiplay-audio/multiplay/internal/config"
	"github.com/multiplay-audio/multiplay/internal/playback"
	"github.com/multiplay-audio/multiplay/internal/ui"
	"github.com/multiplay-audio/multiplay/pkg/audio/output"
)

// Config holds application configuration
type Config struct {
	ConfigPath   string
	Backend      output.Backend
	PollInterval time.Duration
	ResampleRate int
	UseTUI       bool

	// Out receives the user-facing lines (default os.Stdout)
	Out io.Writer
}

// App plays every file named in a config file to its device
type App struct {
	config  Config
	player  *playback.Player
	tuiProg *tea.Program
	tuiDone chan struct{}
	control *ui.Control
}

// New creates a new application
func New(config Config) *App {
	if config.Out == nil {
		config.Out = os.Stdout
		if config.UseTUI {
			// The TUI owns the terminal; user-facing lines go to the log
			config.Out = log.Writer()
		}
	}
	if config.PollInterval <= 0 {
		config.PollInterval = playback.DefaultPollInterval
	}
	return &App{config: config}
}

// Load parses the config file, decodes every file and resolves every
// device. Nothing plays until Load succeeds for every entry.
func (a *App) Load() error {
	if a.config.Backend == nil {
		return fmt.Errorf("no output backend")
	}

	entries, err := config.Load(a.config.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log.Printf("Loaded %d entries from %s", len(entries), a.config.ConfigPath)

	jobs, err := playback.Prepare(a.config.Backend, entries, playback.PrepareOptions{
		ResampleRate: a.config.ResampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to prepare playback: %w", err)
	}

	a.player = playback.New(playback.Config{
		Backend: a.config.Backend,
		Out:     a.config.Out,
	}, jobs)
	return nil
}

// Player returns the loaded player, or nil before Load
func (a *App) Player() *playback.Player {
	return a.player
}

// Run plays every job and blocks until all have finished. Cancelling ctx
// stops playback early.
func (a *App) Run(ctx context.Context) error {
	if a.player == nil {
		if err := a.Load(); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.config.UseTUI {
		if err := a.startTUI(cancel); err != nil {
			return err
		}
		defer a.stopTUI()
	}

	fmt.Fprintln(a.config.Out, "Playing files")
	a.player.StartAll()

	err := a.player.WaitAll(ctx, a.config.PollInterval)
	if err != nil {
		log.Printf("Playback errors: %v", err)
	}

	fmt.Fprintln(a.config.Out, "Finish")
	return err
}

func (a *App) startTUI(cancel context.CancelFunc) error {
	a.control = ui.NewControl()

	prog, err := ui.Run(a.player.Progress, a.control)
	if err != nil {
		return fmt.Errorf("failed to start TUI: %w", err)
	}
	a.tuiProg = prog
	a.tuiDone = make(chan struct{})

	go func() {
		defer close(a.tuiDone)
		if _, err := a.tuiProg.Run(); err != nil {
			log.Printf("TUI error: %v", err)
		}
	}()

	go func() {
		select {
		case <-a.control.Quit:
			log.Printf("Stop requested from TUI")
			cancel()
		case <-a.control.Closed:
		case <-a.tuiDone:
		}
	}()

	return nil
}

func (a *App) stopTUI() {
	close(a.control.Closed)
	a.tuiProg.Send(ui.DoneMsg{})
	<-a.tuiDone
}
