package heli

import (
	"testing"
	"time"
)

func testGovernor() GovernorParams {
	return GovernorParams{P: 0.5, I: 0.1, D: 0.02}
}

func TestRSC_StartsStopped(t *testing.T) {
	r := NewRSC(0.5, 10, 0.05, testGovernor())
	r.Update(time.Second)

	if r.State() != RotorStop {
		t.Errorf("state: got %v, want stop", r.State())
	}
	if !floatEquals(r.ControlOutput(), 0.05) {
		t.Errorf("stopped output: got %v, want idle 0.05", r.ControlOutput())
	}
}

func TestRSC_SpoolUpToActive(t *testing.T) {
	r := NewRSC(0.5, 10, 0, testGovernor())
	r.SetDesiredSpeed(0.8)

	// 10s full-range ramp: 0.1 per second.
	r.Update(time.Second)
	if r.State() != RotorSpoolUp {
		t.Fatalf("state after 1s: got %v, want spool_up", r.State())
	}
	if !floatEquals(r.Speed(), 0.1) {
		t.Errorf("speed after 1s: got %v, want 0.1", r.Speed())
	}

	prev := r.Speed()
	for i := 0; i < 10; i++ {
		r.Update(time.Second)
		if r.Speed() < prev {
			t.Fatalf("spool-up speed decreased: %v -> %v", prev, r.Speed())
		}
		prev = r.Speed()
	}

	if r.State() != RotorActive {
		t.Errorf("state at speed: got %v, want active", r.State())
	}
	if !r.SpeedAboveCritical() {
		t.Error("rotor at speed should be above critical")
	}
	if out := r.ControlOutput(); out < 0 || out > 1 {
		t.Errorf("governed output out of range: %v", out)
	}
}

func TestRSC_GovernorTracksSetpoint(t *testing.T) {
	r := NewRSC(0.3, 5, 0, testGovernor())
	r.SetDesiredSpeed(0.7)
	for i := 0; i < 50; i++ {
		r.Update(100 * time.Millisecond)
	}

	// With the rotor below the setpoint the governor must push upward.
	r.SetMeasuredSpeed(0.6)
	r.Update(100 * time.Millisecond)
	if r.GovernorOutput() <= 0 {
		t.Errorf("governor output with low rotor: got %v, want > 0", r.GovernorOutput())
	}
	if r.ControlOutput() <= 0.7 {
		t.Errorf("control output with low rotor: got %v, want > desired 0.7", r.ControlOutput())
	}
}

func TestRSC_ShutdownDecays(t *testing.T) {
	r := NewRSC(0.5, 10, 0, testGovernor())
	r.SetDesiredSpeed(0.8)
	for i := 0; i < 10; i++ {
		r.Update(time.Second)
	}

	r.SetDesiredSpeed(0)
	r.Update(time.Second)
	if r.State() != RotorStop {
		t.Errorf("state after shutdown: got %v, want stop", r.State())
	}
	if r.ControlOutput() != 0 {
		t.Errorf("shutdown output: got %v, want idle 0", r.ControlOutput())
	}

	speed := r.Speed()
	r.Update(time.Second)
	if r.Speed() >= speed {
		t.Errorf("speed should decay after shutdown: %v -> %v", speed, r.Speed())
	}
}

func TestRSC_Autorotation(t *testing.T) {
	r := NewRSC(0.5, 10, 0.02, testGovernor())
	r.SetDesiredSpeed(0.8)
	for i := 0; i < 10; i++ {
		r.Update(time.Second)
	}

	r.SetAutorotation(true)
	r.Update(time.Second)
	if r.State() != RotorAutorotation {
		t.Errorf("state: got %v, want autorotation", r.State())
	}
	if !floatEquals(r.ControlOutput(), 0.02) {
		t.Errorf("autorotation output: got %v, want idle 0.02", r.ControlOutput())
	}
	if !floatEquals(r.GovernorOutput(), 0) {
		t.Errorf("governor must be suspended in autorotation, got %v", r.GovernorOutput())
	}

	// Recovery resumes powered operation from the held estimate.
	r.SetAutorotation(false)
	r.Update(time.Second)
	if r.State() != RotorActive {
		t.Errorf("state after recovery: got %v, want active", r.State())
	}
}

func TestRSC_MeasuredSpeedPreferred(t *testing.T) {
	r := NewRSC(0.5, 10, 0, testGovernor())
	r.SetDesiredSpeed(0.8)
	r.Update(time.Second)

	r.SetMeasuredSpeed(0.9)
	if !floatEquals(r.Speed(), 0.9) {
		t.Errorf("speed with sensor: got %v, want 0.9", r.Speed())
	}
	r.SetMeasuredSpeed(-1)
	if r.Speed() > 0.2 {
		t.Errorf("speed without sensor should fall back to estimate, got %v", r.Speed())
	}
}
