package heli

import "math"

// Swashplate maps the three virtual swash axes to physical servo positions.
// Implementations own the plate geometry. Inputs are roll and pitch in
// [-1, 1] and collective in [0, 1]; outputs are servo commands in [-1, 1].
type Swashplate interface {
	Solve(roll, pitch, collective float64) [3]float64
}

// CCPM120 is a three-servo 120 degree CCPM swashplate. Servo arms sit at
// the configured azimuths measured from the aircraft nose.
type CCPM120 struct {
	// CyclicScale scales roll/pitch authority relative to collective travel.
	CyclicScale float64
	// PhaseDeg rotates the servo azimuths for mechanical phasing.
	PhaseDeg float64
}

// NewCCPM120 returns a solver with conventional H3-120 geometry.
func NewCCPM120() *CCPM120 {
	return &CCPM120{CyclicScale: 0.45}
}

var ccpm120Azimuths = [3]float64{60, 180, 300}

// Solve computes the three servo positions. Collective raises all servos
// together; cyclic tilts the plate about the roll and pitch axes.
func (s *CCPM120) Solve(roll, pitch, collective float64) [3]float64 {
	coll := 2*collective - 1 // map [0,1] onto servo travel
	scale := s.CyclicScale
	if scale == 0 {
		scale = 0.45
	}
	var out [3]float64
	for i, az := range ccpm120Azimuths {
		rad := (az + s.PhaseDeg) * math.Pi / 180
		out[i] = clamp(coll+scale*(roll*math.Sin(rad)+pitch*math.Cos(rad)), -1, 1)
	}
	return out
}
