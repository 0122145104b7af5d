package surface

import (
	"image"
	"image/color"
	"sync"
	"testing"
)

func TestNewValidation(t *testing.T) {
	if _, err := New(0, 720); err == nil {
		t.Error("expected error for zero width")
	}
	if _, err := New(1280, -1); err == nil {
		t.Error("expected error for negative height")
	}

	s, err := New(64, 48)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if got := s.Bounds(); got != image.Rect(0, 0, 64, 48) {
		t.Errorf("unexpected bounds %v", got)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s, _ := New(4, 4)

	s.Paint(func(img *image.RGBA) {
		img.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	})

	snap := s.Snapshot(nil)
	if snap[0] != 255 {
		t.Fatalf("snapshot missed painted pixel: %d", snap[0])
	}

	// Later paints must not alter an already-taken snapshot.
	s.Paint(func(img *image.RGBA) {
		img.SetRGBA(0, 0, color.RGBA{G: 255, A: 255})
	})
	if snap[0] != 255 || snap[1] != 0 {
		t.Error("snapshot changed after a subsequent paint")
	}
}

func TestSnapshotReusesBuffer(t *testing.T) {
	s, _ := New(8, 8)

	buf := make([]byte, 0, 8*8*4)
	out := s.Snapshot(buf)
	if len(out) != 8*8*4 {
		t.Fatalf("snapshot length %d, want %d", len(out), 8*8*4)
	}
	if &out[0] != &buf[:1][0] {
		t.Error("expected snapshot to reuse the provided buffer")
	}
}

func TestConcurrentPaintAndSnapshot(t *testing.T) {
	s, _ := New(32, 32)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			s.Paint(func(img *image.RGBA) {
				img.SetRGBA(i%32, i%32, color.RGBA{B: uint8(i), A: 255})
			})
		}
	}()
	go func() {
		defer wg.Done()
		var buf []byte
		for i := 0; i < 200; i++ {
			buf = s.Snapshot(buf)
		}
	}()
	wg.Wait()
}
