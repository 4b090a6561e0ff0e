package heli

import "testing"

func paramsWithTail(tt TailType) Params {
	p := DefaultParams()
	p.TailType = tt
	return p
}

func TestTailStrategy_Selection(t *testing.T) {
	for tt := TailServo; tt < numTailTypes; tt++ {
		s := newTailStrategy(paramsWithTail(tt))
		if s.Kind() != tt {
			t.Errorf("tail type %v: strategy kind %v", tt, s.Kind())
		}
	}
}

func TestTailStrategy_Table(t *testing.T) {
	cases := []struct {
		tt            TailType
		passthrough   bool
		collectiveYaw bool
		wantServo     bool
		wantMotor     bool
		wantGyro      bool
	}{
		{TailServo, false, true, true, false, false},
		{TailServoExtGyro, true, true, true, false, true},
		{TailDDVarPitch, false, true, true, true, false},
		{TailDDFixedPitchCW, false, false, false, true, false},
		{TailDDFixedPitchCCW, false, false, false, true, false},
		{TailDDVarPitchExtGov, false, true, true, true, false},
	}
	for _, c := range cases {
		s := newTailStrategy(paramsWithTail(c.tt))
		if s.SupportsYawPassthrough() != c.passthrough {
			t.Errorf("%v passthrough: got %v", c.tt, s.SupportsYawPassthrough())
		}
		if s.UsesCollectiveYaw() != c.collectiveYaw {
			t.Errorf("%v collective-yaw: got %v", c.tt, s.UsesCollectiveYaw())
		}
		out := s.Output(0.2, false)
		if out.HasServo != c.wantServo {
			t.Errorf("%v servo claim: got %v", c.tt, out.HasServo)
		}
		if out.HasMotor != c.wantMotor {
			t.Errorf("%v motor claim: got %v", c.tt, out.HasMotor)
		}
		if out.HasGyro != c.wantGyro {
			t.Errorf("%v gyro claim: got %v", c.tt, out.HasGyro)
		}
	}
}

func TestServoTail_Proportional(t *testing.T) {
	s := newTailStrategy(paramsWithTail(TailServo))
	for _, yaw := range []float64{-1, -0.5, 0, 0.5, 1} {
		if out := s.Output(yaw, false); !floatEquals(out.Servo, yaw) {
			t.Errorf("yaw %v: servo %v", yaw, out.Servo)
		}
	}
}

func TestServoExtGyro_AcroGainSwitch(t *testing.T) {
	p := paramsWithTail(TailServoExtGyro)
	p.GyroGain = 350
	p.GyroGainAcro = 600
	s := newTailStrategy(p)

	if out := s.Output(0, false); !floatEquals(out.GyroGain, 0.35) {
		t.Errorf("standard gain: got %v, want 0.35", out.GyroGain)
	}
	if out := s.Output(0, true); !floatEquals(out.GyroGain, 0.6) {
		t.Errorf("acro gain: got %v, want 0.6", out.GyroGain)
	}
}

func TestDDFixedPitch_DirectionSign(t *testing.T) {
	p := paramsWithTail(TailDDFixedPitchCW)
	p.DDVPSpeed = 500
	cw := newTailStrategy(p)
	p.TailType = TailDDFixedPitchCCW
	ccw := newTailStrategy(p)

	if out := cw.Output(0.2, false); !floatEquals(out.MotorTarget, 0.7) {
		t.Errorf("CW yaw +0.2: got %v, want 0.7", out.MotorTarget)
	}
	if out := ccw.Output(0.2, false); !floatEquals(out.MotorTarget, 0.3) {
		t.Errorf("CCW yaw +0.2: got %v, want 0.3", out.MotorTarget)
	}

	// Speed target saturates rather than wrapping.
	if out := cw.Output(1, false); !floatEquals(out.MotorTarget, 1) {
		t.Errorf("CW full yaw: got %v, want 1", out.MotorTarget)
	}
	if out := ccw.Output(1, false); out.MotorTarget != 0 {
		t.Errorf("CCW full yaw: got %v, want 0", out.MotorTarget)
	}
}

func TestDDVarPitch_FixedMotorSpeed(t *testing.T) {
	p := paramsWithTail(TailDDVarPitch)
	p.DDVPSpeed = 500
	s := newTailStrategy(p)

	for _, yaw := range []float64{-1, 0, 1} {
		out := s.Output(yaw, false)
		if !floatEquals(out.MotorTarget, 0.5) {
			t.Errorf("yaw %v moved the motor target: %v", yaw, out.MotorTarget)
		}
		if !floatEquals(out.Servo, yaw) {
			t.Errorf("yaw %v: blade pitch servo %v", yaw, out.Servo)
		}
	}
}
