package surface

import (
	"fmt"
	"image"
	"sync"
)

// Surface is a raster target with a single-writer/single-reader discipline:
// the compositor repaints it through Paint while the capture session pulls
// pixel copies through Snapshot. The mutex sequences the two sides, nothing
// else ever touches the backing image.
type Surface struct {
	mu  sync.Mutex
	img *image.RGBA
}

// New allocates a surface with the given dimensions.
func New(width, height int) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid surface size %dx%d", width, height)
	}
	return &Surface{img: image.NewRGBA(image.Rect(0, 0, width, height))}, nil
}

// Bounds returns the pixel bounds of the surface.
func (s *Surface) Bounds() image.Rectangle {
	return s.img.Bounds()
}

// Paint runs fn with exclusive access to the backing image. fn must not
// retain the image past its return.
func (s *Surface) Paint(fn func(*image.RGBA)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.img)
}

// Snapshot copies the current raw RGBA pixel data into dst and returns it.
// dst is reused when it has sufficient capacity, so a feed loop can snapshot
// every frame without allocating.
func (s *Surface) Snapshot(dst []byte) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.img.Pix)
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]
	copy(dst, s.img.Pix)
	return dst
}
