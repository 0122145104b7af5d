package camera

import "math"

// Motion amplitude and frequency constants for the default drift. The
// resulting zoom stays inside [0.90, 1.20] and the pan inside
// [-50, 50] x [-30, 30] pixels, so the composited image always covers the
// frame for sources at least as wide as the viewport.
const (
	zoomBase = 1.05
	zoomAmp  = 0.15
	zoomFreq = 0.5
	panXAmp  = 50.0
	panXFreq = 0.3
	panYAmp  = 30.0
	panYFreq = 0.25
)

// State represents the camera position and zoom at a specific moment.
type State struct {
	Zoom float64 // Scale factor applied to the source image (1.0 = no zoom)
	PanX float64 // Horizontal offset of the image center in pixels
	PanY float64 // Vertical offset of the image center in pixels
}

// Motion returns the default Ken Burns drift for a given elapsed time.
// It is a pure function: the same elapsed time always yields the same state.
func Motion(elapsed float64) State {
	return State{
		Zoom: zoomBase + zoomAmp*math.Sin(zoomFreq*elapsed),
		PanX: panXAmp * math.Sin(panXFreq*elapsed),
		PanY: panYAmp * math.Cos(panYFreq*elapsed),
	}
}
