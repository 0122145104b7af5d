package compositor

import (
	"image"
	"image/color"
	"image/draw"
	"log"

	qrcode "github.com/skip2/go-qrcode"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ivlev/promptreel/internal/camera"
	"github.com/ivlev/promptreel/internal/scenario"
	"github.com/ivlev/promptreel/internal/starfield"
)

const (
	captionSize   = 28.0
	captionMargin = 40
	qrSize        = 96
	qrMargin      = 24
)

// Options configure a Compositor.
type Options struct {
	Caption   string              // Overlay text, drawn semi-transparent near the bottom edge
	QRLink    string              // Optional link rendered as a QR badge in the bottom-right corner
	Keyframes []scenario.Keyframe // Optional camera path overriding the default drift
}

// Compositor paints complete frames onto an RGBA surface: black baseline,
// starfield, the pan/zoomed source image, caption and optional QR badge.
// Every call fully repaints, so frames never accumulate artifacts and any
// elapsed time can be rendered out of order.
type Compositor struct {
	caption   string
	face      font.Face
	qr        image.Image
	keyframes []scenario.Keyframe
}

// New creates a compositor. Font selection is a preference list: the
// embedded Go Regular face first, the fixed 7x13 bitmap face as a last
// resort so the overlay renders on any host.
func New(opts Options) *Compositor {
	c := &Compositor{
		caption:   opts.Caption,
		face:      loadFace(),
		keyframes: opts.Keyframes,
	}

	if opts.QRLink != "" {
		qr, err := qrcode.New(opts.QRLink, qrcode.Medium)
		if err != nil {
			log.Printf("[!] QR badge disabled: %v", err)
		} else {
			c.qr = qr.Image(qrSize)
		}
	}

	return c
}

func loadFace() font.Face {
	ft, err := opentype.Parse(goregular.TTF)
	if err == nil {
		face, ferr := opentype.NewFace(ft, &opentype.FaceOptions{
			Size:    captionSize,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if ferr == nil {
			return face
		}
		err = ferr
	}
	log.Printf("[!] opentype face unavailable, falling back to bitmap font: %v", err)
	return basicfont.Face7x13
}

// RenderFrame paints one frame for the given elapsed time. src may be nil,
// in which case the image composite step is skipped and only the starfield
// and overlays are drawn.
func (c *Compositor) RenderFrame(dst *image.RGBA, elapsed float64, src image.Image) {
	bounds := dst.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	// Opaque black baseline
	draw.Draw(dst, bounds, image.NewUniform(color.Black), image.Point{}, draw.Src)

	// Starfield: 2x2 px squares with per-star alpha
	for _, star := range starfield.Field(elapsed, width, height) {
		rect := image.Rect(star.X, star.Y, star.X+2, star.Y+2).Add(bounds.Min).Intersect(bounds)
		white := color.NRGBA{R: 255, G: 255, B: 255, A: uint8(star.Alpha * 255)}
		draw.Draw(dst, rect, image.NewUniform(white), image.Point{}, draw.Over)
	}

	if src != nil {
		c.drawImage(dst, elapsed, src)
	}

	if c.caption != "" {
		c.drawCaption(dst)
	}

	if c.qr != nil {
		qrBounds := c.qr.Bounds()
		target := image.Rect(0, 0, qrBounds.Dx(), qrBounds.Dy()).
			Add(image.Pt(bounds.Max.X-qrBounds.Dx()-qrMargin, bounds.Max.Y-qrBounds.Dy()-qrMargin))
		draw.Draw(dst, target, c.qr, qrBounds.Min, draw.Over)
	}
}

// drawImage stretches the source image into a destination rectangle centered
// on the frame and scaled/panned by the camera state. The aspect ratio is
// intentionally not preserved: the source stretches to fill the rectangle.
func (c *Compositor) drawImage(dst *image.RGBA, elapsed float64, src image.Image) {
	bounds := dst.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	state := c.motionAt(elapsed, width, height)

	w := int(float64(width) * state.Zoom)
	h := int(float64(height) * state.Zoom)
	x0 := bounds.Min.X + (width-w)/2 + int(state.PanX)
	y0 := bounds.Min.Y + (height-h)/2 + int(state.PanY)

	target := image.Rect(x0, y0, x0+w, y0+h)
	xdraw.ApproxBiLinear.Scale(dst, target, src, src.Bounds(), xdraw.Over, nil)
}

func (c *Compositor) motionAt(elapsed float64, width, height int) camera.State {
	if len(c.keyframes) > 0 {
		return camera.Interpolate(c.keyframes, elapsed, width, height)
	}
	return camera.Motion(elapsed)
}

func (c *Compositor) drawCaption(dst *image.RGBA) {
	bounds := dst.Bounds()
	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: 200}),
		Face: c.face,
		Dot:  fixed.P(bounds.Min.X+captionMargin, bounds.Max.Y-captionMargin),
	}
	drawer.DrawString(c.caption)
}
