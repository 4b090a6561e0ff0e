package heli

// TailOutput is what a tail strategy produces for one yaw command.
// MotorTarget is a speed target in [0, 1] for the tail drive; for governed
// tails it feeds the tail speed controller rather than the output directly.
type TailOutput struct {
	Servo       float64
	HasServo    bool
	MotorTarget float64
	HasMotor    bool
	GyroGain    float64
	HasGyro     bool
}

// TailStrategy maps the yaw command to tail actuator output for one tail
// drive topology. Strategies are stateless; one is constructed whenever a
// validated parameter set is applied.
type TailStrategy interface {
	Kind() TailType
	// Output computes the tail command. acro selects the acrobatic external
	// gyro gain where that applies.
	Output(yaw float64, acro bool) TailOutput
	// SupportsYawPassthrough reports whether software yaw damping should be
	// bypassed because an external device handles it.
	SupportsYawPassthrough() bool
	// UsesCollectiveYaw reports whether collective-to-yaw feed-forward
	// coupling applies to this topology.
	UsesCollectiveYaw() bool
	// Channels returns the output channel mask claimed beyond the swash
	// and main rotor channels.
	Channels() uint32
}

// newTailStrategy selects the strategy for a validated parameter set.
func newTailStrategy(p Params) TailStrategy {
	switch p.TailType {
	case TailServoExtGyro:
		return &servoExtGyroTail{gain: p.GyroGain, gainAcro: p.GyroGainAcro}
	case TailDDVarPitch:
		return &ddVarPitchTail{speed: p.DDVPSpeed / 1000}
	case TailDDFixedPitchCW:
		return &ddFixedPitchTail{base: p.DDVPSpeed / 1000, dir: 1}
	case TailDDFixedPitchCCW:
		return &ddFixedPitchTail{base: p.DDVPSpeed / 1000, dir: -1}
	case TailDDVarPitchExtGov:
		return &ddVarPitchExtGovTail{speed: p.DDVPSpeed / 1000}
	default:
		return servoTail{}
	}
}

// servoTail: yaw drives the tail pitch servo directly.
type servoTail struct{}

func (servoTail) Kind() TailType { return TailServo }

func (servoTail) Output(yaw float64, _ bool) TailOutput {
	return TailOutput{Servo: clamp(yaw, -1, 1), HasServo: true}
}

func (servoTail) SupportsYawPassthrough() bool { return false }
func (servoTail) UsesCollectiveYaw() bool      { return true }
func (servoTail) Channels() uint32             { return 1 << ChanTail }

// servoExtGyroTail: yaw drives the servo, an outboard gyro does the rate
// damping. The gyro gain channel carries the selected gain.
type servoExtGyroTail struct {
	gain     float64 // 0..1000
	gainAcro float64
}

func (s *servoExtGyroTail) Kind() TailType { return TailServoExtGyro }

func (s *servoExtGyroTail) Output(yaw float64, acro bool) TailOutput {
	gain := s.gain
	if acro {
		gain = s.gainAcro
	}
	return TailOutput{
		Servo:    clamp(yaw, -1, 1),
		HasServo: true,
		GyroGain: clamp01(gain / 1000),
		HasGyro:  true,
	}
}

func (s *servoExtGyroTail) SupportsYawPassthrough() bool { return true }
func (s *servoExtGyroTail) UsesCollectiveYaw() bool      { return true }
func (s *servoExtGyroTail) Channels() uint32             { return 1<<ChanTail | 1<<ChanAux }

// ddVarPitchTail: yaw drives the blade pitch servo, the tail motor holds a
// fixed configured speed through its own ESC.
type ddVarPitchTail struct {
	speed float64 // 0..1
}

func (d *ddVarPitchTail) Kind() TailType { return TailDDVarPitch }

func (d *ddVarPitchTail) Output(yaw float64, _ bool) TailOutput {
	return TailOutput{
		Servo:       clamp(yaw, -1, 1),
		HasServo:    true,
		MotorTarget: clamp01(d.speed),
		HasMotor:    true,
	}
}

func (d *ddVarPitchTail) SupportsYawPassthrough() bool { return false }
func (d *ddVarPitchTail) UsesCollectiveYaw() bool      { return true }
func (d *ddVarPitchTail) Channels() uint32             { return 1<<ChanTail | 1<<ChanAux }

// ddFixedPitchTail: yaw modulates tail motor speed around the base speed.
// dir fixes the sign by rotation direction.
type ddFixedPitchTail struct {
	base float64
	dir  float64 // +1 CW, -1 CCW
}

func (d *ddFixedPitchTail) Kind() TailType {
	if d.dir < 0 {
		return TailDDFixedPitchCCW
	}
	return TailDDFixedPitchCW
}

func (d *ddFixedPitchTail) Output(yaw float64, _ bool) TailOutput {
	return TailOutput{
		MotorTarget: clamp01(d.base + d.dir*clamp(yaw, -1, 1)),
		HasMotor:    true,
	}
}

func (d *ddFixedPitchTail) SupportsYawPassthrough() bool { return false }
func (d *ddFixedPitchTail) UsesCollectiveYaw() bool      { return false }
func (d *ddFixedPitchTail) Channels() uint32             { return 1 << ChanTail }

// ddVarPitchExtGovTail: yaw drives blade pitch; the speed target is handed
// to the external governor through the tail speed controller.
type ddVarPitchExtGovTail struct {
	speed float64
}

func (d *ddVarPitchExtGovTail) Kind() TailType { return TailDDVarPitchExtGov }

func (d *ddVarPitchExtGovTail) Output(yaw float64, _ bool) TailOutput {
	return TailOutput{
		Servo:       clamp(yaw, -1, 1),
		HasServo:    true,
		MotorTarget: clamp01(d.speed),
		HasMotor:    true,
	}
}

func (d *ddVarPitchExtGovTail) SupportsYawPassthrough() bool { return false }
func (d *ddVarPitchExtGovTail) UsesCollectiveYaw() bool      { return true }
func (d *ddVarPitchExtGovTail) Channels() uint32             { return 1<<ChanTail | 1<<ChanAux }
