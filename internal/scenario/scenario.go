package scenario

// Scenario describes a hand-authored camera path for one reel. When no
// scenario is supplied the camera follows the built-in sinusoidal drift.
type Scenario struct {
	Version   string     `yaml:"version"`
	Duration  float64    `yaml:"duration"` // Intended playback length in seconds
	Keyframes []Keyframe `yaml:"keyframes"`
}

// Keyframe pins the camera to a focus region at a specific time offset.
type Keyframe struct {
	Time  float64   `yaml:"time"`  // Time offset in seconds
	Focus string    `yaml:"focus"` // Description of focus region
	Rect  Rectangle `yaml:"rect"`  // Target rectangle in frame coordinates
	Zoom  float64   `yaml:"zoom"`  // Zoom level (1.0 = no zoom)
}

// Rectangle represents a bounding box.
type Rectangle struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"`
	H int `yaml:"h"`
}
