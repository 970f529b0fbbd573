package logic

// Band is the per-axis acceptance window for a stationary reading.
// Both bounds are exclusive.
type Band struct {
	Min uint16
	Max uint16
}

// DefaultBand is the resting window of the joystick-style position sensor.
var DefaultBand = Band{Min: 1940, Max: 2200}

// Contains reports whether v lies strictly between Min and Max.
func (b Band) Contains(v uint16) bool {
	return v > b.Min && v < b.Max
}

// Stationary reports whether both axes of s are inside the band.
// Anything else counts as movement, so a disconnected or saturated sensor
// (reading 0 or SampleMax) is never mistaken for a parked motor.
func (b Band) Stationary(s Sample) bool {
	return b.Contains(s.X) && b.Contains(s.Y)
}
