package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/ivlev/promptreel/internal/capture"
	"github.com/ivlev/promptreel/internal/compositor"
	"github.com/ivlev/promptreel/internal/config"
	"github.com/ivlev/promptreel/internal/scheduler"
	"github.com/ivlev/promptreel/internal/surface"
	"github.com/ivlev/promptreel/internal/system"
)

var (
	// ErrImageUnavailable means recording was requested before the source
	// image finished loading. Callers disable the start action instead of
	// treating this as a hard failure.
	ErrImageUnavailable = errors.New("source image unavailable")

	// ErrSessionActive means a capture session is already recording.
	ErrSessionActive = errors.New("capture session already active")
)

// Controller ties the animation scheduler and the capture session to one
// lifetime. It owns the drawable surface, the deadline timer and the source
// image; nothing in the pipeline holds ambient references to them. Manual
// stop, the recording deadline and teardown all run the same stop path.
type Controller struct {
	cfg   *config.Config
	surf  *surface.Surface
	comp  *compositor.Compositor
	sched *scheduler.Scheduler

	// newEncoder builds the encoder for each session; tests substitute a
	// fake so no ffmpeg process is required.
	newEncoder func() capture.Encoder
	afterFunc  func(d time.Duration, fn func()) *time.Timer

	mu       sync.Mutex
	img      image.Image
	cap      *capture.Session
	deadline *time.Timer
	done     chan struct{}
}

// NewController builds a controller for the configured frame geometry.
func NewController(cfg *config.Config, comp *compositor.Compositor) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	surf, err := surface.New(cfg.Width, cfg.Height)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		cfg:       cfg,
		surf:      surf,
		comp:      comp,
		sched:     scheduler.New(time.Second / time.Duration(cfg.FPS)),
		afterFunc: time.AfterFunc,
	}
	c.newEncoder = func() capture.Encoder {
		return &capture.FFmpegEncoder{
			Codec:   cfg.VideoEncoder,
			Quality: cfg.Quality,
			Threads: system.EncoderThreads(),
		}
	}
	return c, nil
}

// SetImage installs the source image. It arrives asynchronously from the
// generation backend; recording cannot start until it is set.
func (c *Controller) SetImage(img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.img = img
}

// Start begins one recording session: capture first, then the animation
// loop against the same surface, then the deadline timer. If the capture
// session cannot be opened the animation loop is never started.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.img == nil {
		return ErrImageUnavailable
	}
	if c.cap != nil && c.cap.State() == capture.Recording {
		return ErrSessionActive
	}

	// Each session starts fresh; the previous session's fragments and
	// artifact are discarded with it.
	sess := capture.NewSession(c.newEncoder(), c.cfg.FPS)
	sess.SetFragmentBudget(system.FragmentBudget())

	if err := sess.Start(ctx, c.surf); err != nil {
		return err
	}

	img := c.img
	render := func(elapsed float64) {
		c.surf.Paint(func(dst *image.RGBA) {
			c.comp.RenderFrame(dst, elapsed, img)
		})
	}
	if err := c.sched.Start(render); err != nil {
		sess.Stop() //nolint:errcheck // session discarded on scheduler failure
		return fmt.Errorf("animation start failed: %w", err)
	}

	c.cap = sess
	c.done = make(chan struct{})
	c.deadline = c.afterFunc(time.Duration(c.cfg.MaxDuration*float64(time.Second)), func() {
		c.Stop() //nolint:errcheck // deadline stop reports through Err
	})

	return nil
}

// Stop finalizes the capture session and cancels the animation loop, in
// that order. Idempotent; the deadline timer, manual stop and teardown all
// call it.
func (c *Controller) Stop() error {
	c.mu.Lock()
	sess := c.cap
	timer := c.deadline
	c.deadline = nil
	c.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	if sess == nil {
		return nil
	}

	err := sess.Stop()
	c.sched.Cancel()

	c.mu.Lock()
	if c.done != nil {
		close(c.done)
		c.done = nil
	}
	c.mu.Unlock()

	return err
}

// Close tears the controller down. Identical to Stop, invoked even when
// the deadline never fired, so no timer or scheduled frame leaks.
func (c *Controller) Close() error {
	return c.Stop()
}

// Done returns a channel closed when the current session has fully stopped,
// or nil when no session ran. The deadline path closes it too.
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Artifact returns the finalized video of the most recent session.
func (c *Controller) Artifact() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cap == nil {
		return nil
	}
	return c.cap.Artifact()
}

// Err returns the fault that terminated the most recent session, if any.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cap == nil {
		return nil
	}
	return c.cap.Err()
}
