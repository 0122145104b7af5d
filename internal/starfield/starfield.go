package starfield

import "math"

// Count is the fixed number of stars in every generated field.
const Count = 200

// Multiplicative constants spreading star positions across the frame.
// Changing these changes the visual pattern of every video ever rendered,
// so they are deliberately not configurable.
const (
	xSeedStep  = 97
	xIndexStep = 13
	ySeedStep  = 71
	yIndexStep = 29
)

// Star is a single background point sprite.
type Star struct {
	X     int
	Y     int
	Alpha float64 // 0.2..0.8, one of 5 discrete levels
}

// Field generates the deterministic star set for a given elapsed time and
// frame size. The same (elapsed, width, height) triple always yields an
// identical set, which keeps the background reproducible in tests and makes
// the twinkle cycle loop smoothly. The seed advances 10 times per second.
func Field(elapsed float64, width, height int) []Star {
	if width <= 0 || height <= 0 {
		return nil
	}

	seed := int(math.Floor(elapsed * 10))
	if seed < 0 {
		seed = 0
	}

	stars := make([]Star, Count)
	for i := range stars {
		stars[i] = Star{
			X:     (seed*xSeedStep + i*xIndexStep) % width,
			Y:     (seed*ySeedStep + i*yIndexStep) % height,
			Alpha: levelAlpha(i % 5),
		}
	}
	return stars
}

// levelAlpha maps one of the 5 brightness levels onto [0.2, 0.8].
func levelAlpha(level int) float64 {
	return 0.2 + 0.15*float64(level)
}
