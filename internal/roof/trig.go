package roof

import "math"

// DefaultPitch is the pitch in degrees used when none is given.
const DefaultPitch = 35.0

// Pitch describes a symmetric pitched roof across a span.
type Pitch struct {
	Height      float64 `json:"height"`
	SlopeLength float64 `json:"slope_length"`
	PitchDeg    float64 `json:"pitch_deg"`
}

// Trig returns the rise and rafter length of a roof spanning width at pitchDeg.
// A non-positive pitch means DefaultPitch.
func Trig(width, pitchDeg float64) Pitch {
	if pitchDeg <= 0 {
		pitchDeg = DefaultPitch
	}
	rad := pitchDeg * math.Pi / 180
	half := width / 2
	return Pitch{
		Height:      half * math.Tan(rad),
		SlopeLength: half / math.Cos(rad),
		PitchDeg:    pitchDeg,
	}
}

// HeightForPitch is the ridge height above the eaves for width at pitchDeg.
func HeightForPitch(width, pitchDeg float64) float64 {
	return Trig(width, pitchDeg).Height
}
