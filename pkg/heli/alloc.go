package heli

// Allocator is the fixed feedforward control allocation for this airframe
// class: a constant linear map from the 3-dimensional virtual command
// space onto the 4 actuator channels, with its exact left pseudo-inverse
// for recovering the realized virtual command from actuator feedback.
// Both matrices are fixed at compile time; the type carries no state and
// is safe for concurrent use.
type Allocator struct{}

// bn maps virtual commands to actuator commands.
var bn = [4][3]float64{
	{1, -1, 0},
	{0, 1, -1},
	{0, 0, 1},
	{-1, 0, 0},
}

// bnPinv is (bnᵀ·bn)⁻¹·bnᵀ, the exact left inverse of bn. bn has full
// column rank, so Estimate(Allocate(v)) recovers v exactly up to float
// rounding.
var bnPinv = [3][4]float64{
	{0.25, 0.25, 0.25, -0.75},
	{-0.5, 0.5, 0.5, -0.5},
	{-0.25, -0.25, 0.75, -0.25},
}

// bvInv is the thrust direction pseudo-inverse: the uniform weighting that
// maps the four actuator commands to a single collective thrust estimate.
var bvInv = [4]float64{0.25, 0.25, 0.25, 0.25}

// Allocate maps a virtual command vector to the four actuator commands.
func (Allocator) Allocate(virtual [3]float64) [4]float64 {
	var out [4]float64
	for i := range bn {
		for j, v := range virtual {
			out[i] += bn[i][j] * v
		}
	}
	return out
}

// Estimate maps actuator feedback back to the realized virtual command.
func (Allocator) Estimate(actuator [4]float64) [3]float64 {
	var out [3]float64
	for i := range bnPinv {
		for j, a := range actuator {
			out[i] += bnPinv[i][j] * a
		}
	}
	return out
}

// ThrustEstimate collapses actuator feedback to a scalar collective
// thrust estimate along the bvInv direction.
func (Allocator) ThrustEstimate(actuator [4]float64) float64 {
	var out float64
	for i, a := range actuator {
		out += bvInv[i] * a
	}
	return out
}
