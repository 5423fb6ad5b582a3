// ABOUTME: Multi-device playback orchestration
// ABOUTME: Starts one worker per job, polls the wait set and fans out stop requests
package playback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/multiplay-audio/multiplay/pkg/audio/output"
)

// DefaultPollInterval is how often WaitAll checks worker liveness
const DefaultPollInterval = time.Second

// Config holds player configuration
type Config struct {
	// Backend opens the output streams
	Backend output.Backend

	// Out receives user-facing progress lines (default os.Stdout)
	Out io.Writer
}

// Player runs a fixed set of jobs concurrently
type Player struct {
	config Config
	jobs   []*Job

	// waitSet is only touched by the goroutine calling WaitAll
	waitSet []*Job

	mu      sync.Mutex
	started bool
	wg      sync.WaitGroup
}

// JobProgress is a point-in-time view of one job
type JobProgress struct {
	ID       string
	Filename string
	Device   string
	State    State
	Offset   int
	Frames   int
}

// New creates a player for jobs
func New(config Config, jobs []*Job) *Player {
	if config.Out == nil {
		config.Out = os.Stdout
	}
	return &Player{
		config: config,
		jobs:   jobs,
	}
}

// Jobs returns the player's jobs in config order
func (p *Player) Jobs() []*Job {
	return p.jobs
}

// StartAll starts one worker per job, in config order
func (p *Player) StartAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return
	}
	p.started = true

	p.waitSet = append([]*Job(nil), p.jobs...)
	for _, job := range p.jobs {
		fmt.Fprintf(p.config.Out, "Play %s to %s\n", job.Filename, job.Device.Name)
		p.wg.Add(1)
		go p.run(job)
	}
}

// WaitAll blocks until every job has finished, checking every pollInterval.
// Cancelling ctx requests stop on every job; WaitAll still waits for the
// workers to wind down. Returns the errors of jobs that failed.
func (p *Player) WaitAll(ctx context.Context, pollInterval time.Duration) error {
	p.mu.Lock()
	started := p.started
	p.mu.Unlock()
	if !started {
		return fmt.Errorf("player not started")
	}

	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	cancelled := ctx.Done()
	stopping := false

	for {
		p.compactWaitSet()
		if len(p.waitSet) == 0 {
			break
		}

		select {
		case <-cancelled:
			// A nil channel never fires, so stop is requested once
			cancelled = nil
			stopping = true
			fmt.Fprintln(p.config.Out, "Stopping threads")
			p.RequestStop()
		case <-ticker.C:
		}
	}

	p.wg.Wait()
	if stopping {
		fmt.Fprintln(p.config.Out, "Threads stopped")
	}

	var errs []error
	for _, job := range p.jobs {
		if err := job.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// compactWaitSet drops finished jobs after scanning the whole set
func (p *Player) compactWaitSet() {
	alive := p.waitSet[:0]
	for _, job := range p.waitSet {
		if job.Alive() {
			alive = append(alive, job)
		}
	}
	clear(p.waitSet[len(alive):])
	p.waitSet = alive
}

// RequestStop signals every job to finish
func (p *Player) RequestStop() {
	for _, job := range p.jobs {
		job.Stop()
	}
}

// Progress returns a snapshot of every job
func (p *Player) Progress() []JobProgress {
	progress := make([]JobProgress, len(p.jobs))
	for i, job := range p.jobs {
		progress[i] = JobProgress{
			ID:       job.ID,
			Filename: job.Filename,
			Device:   job.Device.Label(),
			State:    job.State(),
			Offset:   job.Offset(),
			Frames:   job.Frames(),
		}
	}
	return progress
}

// run is the worker: it owns the job's stream until playback ends or stop
// is requested
func (p *Player) run(job *Job) {
	defer p.wg.Done()

	job.start()

	select {
	case <-job.stop:
		log.Printf("[%s] Stopped before playback: %s", job.ShortID(), job.Filename)
		job.finish(nil)
		return
	default:
	}

	stream, err := p.config.Backend.Open(job.Device, job.Buffer.Format, job.Fill)
	if err != nil {
		log.Printf("[%s] Failed to open %s: %v", job.ShortID(), job.Device.Label(), err)
		job.finish(fmt.Errorf("%s: failed to open stream: %w", job.Filename, err))
		return
	}

	if err := stream.Start(); err != nil {
		log.Printf("[%s] Failed to start %s: %v", job.ShortID(), job.Device.Label(), err)
		closeStream(job, stream)
		job.finish(fmt.Errorf("%s: failed to start stream: %w", job.Filename, err))
		return
	}

	log.Printf("[%s] Playing %s on %s", job.ShortID(), job.Filename, job.Device.Label())

	select {
	case <-stream.Done():
		log.Printf("[%s] Finished %s (%d frames)", job.ShortID(), job.Filename, job.Offset())
	case <-job.stop:
		log.Printf("[%s] Stopped %s at frame %d/%d", job.ShortID(), job.Filename, job.Offset(), job.Frames())
	}

	closeStream(job, stream)
	job.finish(nil)
}

func closeStream(job *Job, stream output.Stream) {
	if err := stream.Close(); err != nil {
		log.Printf("[%s] Warning: stream close error: %v", job.ShortID(), err)
	}
}
