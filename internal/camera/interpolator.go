package camera

import (
	"math"

	"github.com/ivlev/promptreel/internal/scenario"
)

// Interpolate calculates the camera state at a given time by interpolating
// between scenario keyframes. The pan offsets shift the focus region of the
// active keyframe toward the viewport center.
func Interpolate(keyframes []scenario.Keyframe, currentTime float64, width, height int) State {
	if len(keyframes) == 0 {
		return State{Zoom: 1.0}
	}

	// Before the first keyframe, hold the first keyframe
	if currentTime <= keyframes[0].Time {
		return keyframeState(keyframes[0], width, height)
	}

	// After the last keyframe, hold the last keyframe
	last := keyframes[len(keyframes)-1]
	if currentTime >= last.Time {
		return keyframeState(last, width, height)
	}

	// Find surrounding keyframes
	var prevKf, nextKf scenario.Keyframe
	for i := 0; i < len(keyframes)-1; i++ {
		if currentTime >= keyframes[i].Time && currentTime < keyframes[i+1].Time {
			prevKf = keyframes[i]
			nextKf = keyframes[i+1]
			break
		}
	}

	timeDelta := nextKf.Time - prevKf.Time
	if timeDelta == 0 {
		timeDelta = 0.001 // Avoid division by zero
	}
	t := (currentTime - prevKf.Time) / timeDelta

	// Smooth in-out easing
	t = easeInOutCubic(t)

	prev := keyframeState(prevKf, width, height)
	next := keyframeState(nextKf, width, height)

	return State{
		Zoom: lerp(prev.Zoom, next.Zoom, t),
		PanX: lerp(prev.PanX, next.PanX, t),
		PanY: lerp(prev.PanY, next.PanY, t),
	}
}

// keyframeState converts a keyframe into a camera state: the pan moves the
// center of the focus rectangle to the center of the viewport.
func keyframeState(kf scenario.Keyframe, width, height int) State {
	zoom := kf.Zoom
	if zoom <= 0 {
		zoom = 1.0
	}
	return State{
		Zoom: zoom,
		PanX: float64(width)/2 - float64(kf.Rect.X+kf.Rect.W/2),
		PanY: float64(height)/2 - float64(kf.Rect.Y+kf.Rect.H/2),
	}
}

// lerp performs linear interpolation between a and b.
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// easeInOutCubic applies a smooth easing function.
func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}
