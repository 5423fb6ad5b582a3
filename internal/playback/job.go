// ABOUTME: Playback job state machine and pull-callback
// ABOUTME: One decoded file bound to one output device, streamed chunk by chunk
package playback

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/multiplay-audio/multiplay/pkg/audio"
	"github.com/multiplay-audio/multiplay/pkg/audio/output"
)

// State is the lifecycle state of a Job
type State int32

const (
	// Created means the file is decoded and the device resolved
	Created State = iota
	// Running means the worker has started and owns the stream
	Running
	// Finished means every sample was consumed or stop was requested
	Finished
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Running:
		return "running"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Job plays one decoded buffer to one output device.
// Every Job owns its buffer, offset and signals; nothing is shared between jobs.
type Job struct {
	ID       string
	Filename string
	Device   output.Device
	Buffer   *audio.Buffer

	offset  atomic.Int64 // frames consumed
	state   atomic.Int32
	stopped atomic.Bool

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	doneOnce sync.Once
	err      error // set before done is closed
}

// NewJob creates a job in the Created state
func NewJob(filename string, device output.Device, buf *audio.Buffer) *Job {
	return &Job{
		ID:       uuid.New().String(),
		Filename: filename,
		Device:   device,
		Buffer:   buf,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Fill is the pull-callback. It copies up to frames frames from the read
// offset into out, zero-fills whatever is left, and reports Complete once
// the buffer is exhausted or stop was requested.
func (j *Job) Fill(out []float32, frames int) output.Status {
	if j.stopped.Load() {
		clear(out)
		return output.Complete
	}

	ch := j.Buffer.Format.Channels
	total := j.Buffer.Frames()
	off := int(j.offset.Load())

	n := min(total-off, frames)
	if n < 0 {
		n = 0
	}

	copy(out[:n*ch], j.Buffer.Samples[off*ch:(off+n)*ch])
	clear(out[n*ch:])
	j.offset.Store(int64(off + n))

	if n < frames || off+n == total {
		return output.Complete
	}
	return output.Continue
}

// Stop signals the job to finish. Safe to call more than once.
func (j *Job) Stop() {
	j.stopOnce.Do(func() {
		j.stopped.Store(true)
		close(j.stop)
	})
}

// State returns the current lifecycle state
func (j *Job) State() State {
	return State(j.state.Load())
}

// Alive reports whether the job has not finished yet
func (j *Job) Alive() bool {
	return j.State() != Finished
}

// Offset returns the number of frames consumed so far
func (j *Job) Offset() int {
	return int(j.offset.Load())
}

// Frames returns the total number of frames in the job's buffer
func (j *Job) Frames() int {
	return j.Buffer.Frames()
}

// Done is closed when the job reaches Finished
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Err returns the error that ended the job, if any. Valid once Done is closed.
func (j *Job) Err() error {
	select {
	case <-j.done:
		return j.err
	default:
		return nil
	}
}

// ShortID returns the first block of the job ID for log lines
func (j *Job) ShortID() string {
	if len(j.ID) >= 8 {
		return j.ID[:8]
	}
	return j.ID
}

func (j *Job) start() {
	j.state.CompareAndSwap(int32(Created), int32(Running))
}

func (j *Job) finish(err error) {
	j.doneOnce.Do(func() {
		j.err = err
		j.state.Store(int32(Finished))
		close(j.done)
	})
}
