package heli

// Physical output channel assignments. Channels 0-2 carry the swashplate
// servos, channel 3 the tail servo or fixed-pitch tail motor, channel 6 the
// external gyro gain or tail speed controller, channel 7 the main rotor
// speed controller.
const (
	ChanSwash1 = 0
	ChanSwash2 = 1
	ChanSwash3 = 2
	ChanTail   = 3
	ChanAux    = 6 // external gyro gain or tail RSC, tail type dependent
	ChanRotor  = 7

	NumChannels = 8
)

// Outputs is the actuator command vector produced each cycle. Servo values
// are normalized to [-1, 1]; motor and gyro gain values to [0, 1]. A Has*
// flag false means the channel is not claimed by the current configuration.
type Outputs struct {
	Swash [3]float64 `json:"swash"`

	TailServo    float64 `json:"tail_servo"`
	HasTailServo bool    `json:"has_tail_servo"`

	TailMotor    float64 `json:"tail_motor"`
	HasTailMotor bool    `json:"has_tail_motor"`

	ExtGyro    float64 `json:"ext_gyro"`
	HasExtGyro bool    `json:"has_ext_gyro"`

	MainRotor float64 `json:"main_rotor"`
}

// Vector flattens the outputs onto the physical channel map. Unclaimed
// channels read zero.
func (o Outputs) Vector() [NumChannels]float64 {
	var v [NumChannels]float64
	v[ChanSwash1] = o.Swash[0]
	v[ChanSwash2] = o.Swash[1]
	v[ChanSwash3] = o.Swash[2]
	switch {
	case o.HasTailServo:
		v[ChanTail] = o.TailServo
	case o.HasTailMotor:
		v[ChanTail] = o.TailMotor
	}
	switch {
	case o.HasExtGyro:
		v[ChanAux] = o.ExtGyro
	case o.HasTailMotor && o.HasTailServo:
		// variable pitch direct drive: servo on ChanTail, motor on ChanAux
		v[ChanAux] = o.TailMotor
	}
	v[ChanRotor] = o.MainRotor
	return v
}

// Mask returns the bitmask of channels claimed by this output set.
func (o Outputs) Mask() uint32 {
	mask := uint32(1<<ChanSwash1 | 1<<ChanSwash2 | 1<<ChanSwash3 | 1<<ChanRotor)
	if o.HasTailServo || o.HasTailMotor {
		mask |= 1 << ChanTail
	}
	if o.HasExtGyro || (o.HasTailMotor && o.HasTailServo) {
		mask |= 1 << ChanAux
	}
	return mask
}

// clamp restricts v to the range [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clamp01 restricts v to [0, 1].
func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}
