package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ivlev/promptreel/internal/surface"
)

// Errors surfaced by a capture session. Callers match with errors.Is.
var (
	// ErrCaptureUnavailable means the surface or the encoder could not be
	// opened. Fatal to the session attempt; no fallback codec is tried.
	ErrCaptureUnavailable = errors.New("capture unavailable")

	// ErrEncoderFault means the encoder failed mid-session. The partial
	// fragment set may be unplayable, so the artifact is discarded.
	ErrEncoderFault = errors.New("encoder fault")
)

// State of a capture session. Transitions are monotonic:
// Idle -> Recording -> Stopping -> Stopped.
type State int

const (
	Idle State = iota
	Recording
	Stopping
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Session captures a drawable surface into an encoded WebM artifact. It
// snapshots the surface on its own fixed-rate ticker (the capture stream),
// feeds the frames to the encoder, and accumulates the encoder's fragments
// in emission order. Stop finalizes the fragments into a single artifact.
//
// The session only ever reads the surface; painting stays with the
// animation side.
type Session struct {
	enc      Encoder
	fps      int
	interval time.Duration

	mu        sync.Mutex
	state     State
	surf      *surface.Surface
	fragments [][]byte
	total     int64
	maxBytes  int64
	artifact  []byte
	fault     error

	stopFeed  chan struct{}
	feedWG    sync.WaitGroup
	collectWG sync.WaitGroup
}

// NewSession creates an idle session around an encoder.
func NewSession(enc Encoder, fps int) *Session {
	if fps <= 0 {
		fps = 30
	}
	return &Session{
		enc:      enc,
		fps:      fps,
		interval: time.Second / time.Duration(fps),
		stopFeed: make(chan struct{}),
	}
}

// SetFragmentBudget caps the accumulated fragment bytes. Exceeding the
// budget is treated as an encoder fault. Zero means unlimited.
func (s *Session) SetFragmentBudget(n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxBytes = n
}

// Start opens the encoder against the surface and transitions to Recording.
// Fails with ErrCaptureUnavailable when the surface is missing or the
// encoder cannot be created.
func (s *Session) Start(ctx context.Context, surf *surface.Surface) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Idle {
		return fmt.Errorf("capture session already started (state %s)", s.state)
	}
	if surf == nil {
		return fmt.Errorf("%w: no drawable surface", ErrCaptureUnavailable)
	}

	bounds := surf.Bounds()
	if err := s.enc.Start(ctx, bounds.Dx(), bounds.Dy(), s.fps); err != nil {
		return fmt.Errorf("%w: %v", ErrCaptureUnavailable, err)
	}

	s.surf = surf
	s.state = Recording

	s.feedWG.Add(1)
	go s.feedFrames()

	s.collectWG.Add(1)
	go s.collectFragments()

	return nil
}

// feedFrames snapshots the surface at the configured frame rate and pushes
// the raw frames to the encoder. One frame is written immediately so even
// the shortest session produces output.
func (s *Session) feedFrames() {
	defer s.feedWG.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var buf []byte
	writeOne := func() bool {
		buf = s.surf.Snapshot(buf)
		if err := s.enc.WriteFrame(buf); err != nil {
			s.recordFault(fmt.Errorf("%w: %v", ErrEncoderFault, err))
			return false
		}
		return true
	}

	if !writeOne() {
		return
	}

	for {
		select {
		case <-s.stopFeed:
			return
		case <-ticker.C:
			if !writeOne() {
				return
			}
		}
	}
}

// collectFragments appends encoder output in emission order, which matches
// the temporal order of the encoded frames. Empty fragments are discarded so
// zero-length segments never corrupt the artifact. After a budget fault the
// loop keeps draining the channel: the encoder's flush must never block on a
// full channel while Stop waits for it to finish.
func (s *Session) collectFragments() {
	defer s.collectWG.Done()

	faulted := false
	for frag := range s.enc.Fragments() {
		if faulted || len(frag) == 0 {
			continue
		}

		s.mu.Lock()
		s.fragments = append(s.fragments, frag)
		s.total += int64(len(frag))
		over := s.maxBytes > 0 && s.total > s.maxBytes
		s.mu.Unlock()

		if over {
			s.recordFault(fmt.Errorf("%w: fragment budget exceeded", ErrEncoderFault))
			faulted = true
		}
	}
}

// recordFault marks the session as failed and forces it to stop. Faults
// observed during a normal shutdown are ignored.
func (s *Session) recordFault(err error) {
	s.mu.Lock()
	if s.state != Recording {
		s.mu.Unlock()
		return
	}
	if s.fault == nil {
		s.fault = err
	}
	s.mu.Unlock()

	go s.Stop() //nolint:errcheck // fault already recorded
}

// Stop finalizes the session: the frame feed halts, the encoder flushes, and
// the accumulated fragments are merged into the artifact. Manual stop, the
// recording deadline and fault handling all funnel through here. Calling
// Stop on an Idle, Stopping or Stopped session is a no-op.
func (s *Session) Stop() error {
	s.mu.Lock()
	if s.state != Recording {
		s.mu.Unlock()
		return nil
	}
	s.state = Stopping
	s.mu.Unlock()

	close(s.stopFeed)
	s.feedWG.Wait()

	finErr := s.enc.Finish()
	s.collectWG.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fault == nil && finErr != nil {
		s.fault = fmt.Errorf("%w: %v", ErrEncoderFault, finErr)
	}
	if s.fault != nil {
		// A partial fragment set may be unplayable: discard, expose nothing.
		s.fragments = nil
		s.artifact = nil
		s.state = Stopped
		return s.fault
	}

	merged := make([]byte, 0, s.total)
	for _, frag := range s.fragments {
		merged = append(merged, frag...)
	}
	s.artifact = merged
	s.fragments = nil
	s.state = Stopped
	return nil
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Artifact returns the finalized video blob, or nil before Stop completes
// or after a fault.
func (s *Session) Artifact() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.artifact
}

// Err returns the fault that terminated the session, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fault
}
