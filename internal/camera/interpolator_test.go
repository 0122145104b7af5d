package camera

import (
	"math"
	"testing"

	"github.com/ivlev/promptreel/internal/scenario"
)

func TestInterpolate(t *testing.T) {
	keyframes := []scenario.Keyframe{
		{Time: 0.0, Rect: scenario.Rectangle{X: 0, Y: 0, W: 1280, H: 720}, Zoom: 1.0},
		{Time: 2.0, Rect: scenario.Rectangle{X: 100, Y: 100, W: 800, H: 600}, Zoom: 1.5},
		{Time: 4.0, Rect: scenario.Rectangle{X: 200, Y: 200, W: 400, H: 300}, Zoom: 2.0},
	}

	tests := []struct {
		time         float64
		expectedZoom float64
	}{
		{0.0, 1.0},  // First keyframe
		{1.0, 1.25}, // Midpoint between first and second (approximately)
		{2.0, 1.5},  // Second keyframe
		{3.0, 1.75}, // Midpoint between second and third (approximately)
		{4.0, 2.0},  // Third keyframe
		{5.0, 2.0},  // After last keyframe
	}

	for _, tt := range tests {
		state := Interpolate(keyframes, tt.time, 1280, 720)

		// Allow some tolerance due to easing
		tolerance := 0.3
		if math.Abs(state.Zoom-tt.expectedZoom) > tolerance {
			t.Errorf("At time %.1f: expected zoom ~%.2f, got %.2f", tt.time, tt.expectedZoom, state.Zoom)
		}
	}
}

func TestInterpolatePanCentersFocusRegion(t *testing.T) {
	// A keyframe focused on the top-left quadrant should pan the image
	// down and to the right.
	keyframes := []scenario.Keyframe{
		{Time: 0.0, Rect: scenario.Rectangle{X: 0, Y: 0, W: 320, H: 180}, Zoom: 1.5},
	}

	state := Interpolate(keyframes, 0.0, 1280, 720)
	if state.PanX <= 0 || state.PanY <= 0 {
		t.Errorf("expected positive pan toward the region, got panX=%.1f panY=%.1f", state.PanX, state.PanY)
	}
	if state.Zoom != 1.5 {
		t.Errorf("expected zoom 1.5, got %.2f", state.Zoom)
	}
}

func TestInterpolateEmptyKeyframes(t *testing.T) {
	state := Interpolate(nil, 1.0, 1280, 720)
	if state.Zoom != 1.0 || state.PanX != 0 || state.PanY != 0 {
		t.Errorf("expected identity state for empty keyframes, got %+v", state)
	}
}

func TestInterpolateZeroZoomKeyframe(t *testing.T) {
	keyframes := []scenario.Keyframe{
		{Time: 0.0, Rect: scenario.Rectangle{X: 0, Y: 0, W: 1280, H: 720}},
	}
	state := Interpolate(keyframes, 0.0, 1280, 720)
	if state.Zoom != 1.0 {
		t.Errorf("zero keyframe zoom should default to 1.0, got %.2f", state.Zoom)
	}
}
