package compositor

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/ivlev/promptreel/internal/scenario"
)

func renderToBuffer(c *Compositor, elapsed float64, src image.Image) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, 320, 180))
	c.RenderFrame(dst, elapsed, src)
	return dst
}

func solidImage(w, h int, col color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, col)
		}
	}
	return img
}

func TestRenderFrameWithoutImage(t *testing.T) {
	c := New(Options{})

	// Must tolerate a missing source image by skipping the composite step.
	dst := renderToBuffer(c, 2.0, nil)

	// Baseline is opaque black with a sprinkling of stars.
	var stars int
	for i := 0; i < len(dst.Pix); i += 4 {
		if dst.Pix[i+3] != 255 {
			t.Fatal("frame must be fully opaque")
		}
		if dst.Pix[i] != 0 {
			stars++
		}
	}
	if stars == 0 {
		t.Error("expected starfield sprites on the baseline")
	}
}

func TestRenderFrameIsFullRepaint(t *testing.T) {
	c := New(Options{Caption: "caption"})
	src := solidImage(100, 50, color.RGBA{R: 200, G: 10, B: 10, A: 255})

	first := renderToBuffer(c, 1.0, src)

	// Render other times in between, then the same time again: the output
	// must be identical, proving nothing accumulates between calls.
	renderToBuffer(c, 7.5, src)
	renderToBuffer(c, 42.0, src)
	again := renderToBuffer(c, 1.0, src)

	if !bytes.Equal(first.Pix, again.Pix) {
		t.Error("repeated render at the same elapsed time produced different pixels")
	}
}

func TestRenderFrameCompositesImage(t *testing.T) {
	c := New(Options{})
	src := solidImage(100, 50, color.RGBA{R: 0, G: 255, B: 0, A: 255})

	dst := renderToBuffer(c, 2.0, src)

	// The zoomed image covers the frame center, so the center pixel must
	// carry the source color.
	center := dst.RGBAAt(160, 90)
	if center.G < 200 {
		t.Errorf("expected green source at frame center, got %+v", center)
	}
}

func TestRenderFrameCaption(t *testing.T) {
	plain := New(Options{})
	titled := New(Options{Caption: "Starship over Europa"})
	src := solidImage(100, 50, color.RGBA{A: 255}) // opaque black image

	a := renderToBuffer(plain, 3.0, src)
	b := renderToBuffer(titled, 3.0, src)

	if bytes.Equal(a.Pix, b.Pix) {
		t.Error("caption overlay had no visible effect")
	}
}

func TestRenderFrameQRBadge(t *testing.T) {
	plain := New(Options{})
	badged := New(Options{QRLink: "https://example.com/reel/1"})

	a := renderToBuffer(plain, 0.0, nil)
	b := renderToBuffer(badged, 0.0, nil)

	if bytes.Equal(a.Pix, b.Pix) {
		t.Error("QR badge had no visible effect")
	}
}

func TestRenderFrameScenarioOverridesDrift(t *testing.T) {
	keyframes := []scenario.Keyframe{
		{Time: 0.0, Rect: scenario.Rectangle{X: 0, Y: 0, W: 320, H: 180}, Zoom: 1.0},
		{Time: 10.0, Rect: scenario.Rectangle{X: 200, Y: 100, W: 100, H: 60}, Zoom: 1.8},
	}
	drift := New(Options{})
	scripted := New(Options{Keyframes: keyframes})
	src := solidImage(100, 50, color.RGBA{B: 255, A: 255})

	a := renderToBuffer(drift, 5.0, src)
	b := renderToBuffer(scripted, 5.0, src)

	if bytes.Equal(a.Pix, b.Pix) {
		t.Error("scenario keyframes did not change the camera path")
	}
}
