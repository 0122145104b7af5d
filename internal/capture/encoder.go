package capture

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// Encoder turns a stream of raw RGBA frames into encoded video fragments.
// Fragments arrive in encode order on the Fragments channel, which is closed
// once the encoder has flushed everything after Finish.
type Encoder interface {
	// Start opens the encoder for the given frame geometry and rate.
	Start(ctx context.Context, width, height, fps int) error

	// WriteFrame submits one raw RGBA frame (width*height*4 bytes).
	WriteFrame(pix []byte) error

	// Fragments returns the channel delivering encoded fragments. Valid
	// only after a successful Start.
	Fragments() <-chan []byte

	// Finish closes the frame input and waits for the encoder to flush.
	Finish() error
}

// FFmpegEncoder pipes raw RGBA frames into an ffmpeg process and reads the
// fragmented WebM stream back from its stdout.
type FFmpegEncoder struct {
	Codec   string // e.g. "libvpx-vp9"; resolved by the caller, never guessed here
	Quality int    // CRF value, 0 selects the codec default
	Threads int

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	frags  chan []byte
	stderr bytes.Buffer

	readDone sync.WaitGroup
}

// Start launches ffmpeg. A missing binary or unsupported codec surfaces
// here, before any frame is written.
func (e *FFmpegEncoder) Start(ctx context.Context, width, height, fps int) error {
	if e.Codec == "" {
		return fmt.Errorf("no codec configured")
	}

	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", width, height),
		"-framerate", fmt.Sprintf("%d", fps),
		"-i", "-",
		"-c:v", e.Codec,
		"-deadline", "realtime",
		"-pix_fmt", "yuv420p",
	}
	if e.Quality > 0 {
		args = append(args, "-crf", fmt.Sprintf("%d", e.Quality), "-b:v", "0")
	}
	if e.Threads > 0 {
		args = append(args, "-threads", fmt.Sprintf("%d", e.Threads))
	}
	args = append(args, "-f", "webm", "-")

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	cmd.Stderr = &e.stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe error: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe error: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start error: %w", err)
	}

	e.cmd = cmd
	e.stdin = stdin
	e.frags = make(chan []byte, 16)

	e.readDone.Add(1)
	go e.readFragments(stdout)

	return nil
}

// readFragments forwards encoder output chunk by chunk. Each emitted
// fragment is an owned copy; the read buffer is reused.
func (e *FFmpegEncoder) readFragments(r io.Reader) {
	defer e.readDone.Done()
	defer close(e.frags)

	buf := make([]byte, 64*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			frag := make([]byte, n)
			copy(frag, buf[:n])
			e.frags <- frag
		}
		if err != nil {
			return
		}
	}
}

// WriteFrame feeds one raw frame to the encoder.
func (e *FFmpegEncoder) WriteFrame(pix []byte) error {
	if _, err := e.stdin.Write(pix); err != nil {
		return fmt.Errorf("frame write error: %w", err)
	}
	return nil
}

// Fragments returns the encoded fragment channel.
func (e *FFmpegEncoder) Fragments() <-chan []byte {
	return e.frags
}

// Finish closes the frame input and waits for ffmpeg to flush and exit.
func (e *FFmpegEncoder) Finish() error {
	e.stdin.Close()
	err := e.cmd.Wait()
	e.readDone.Wait()
	if err != nil {
		return fmt.Errorf("ffmpeg exit error: %w (log: %s)", err, e.stderr.String())
	}
	return nil
}
