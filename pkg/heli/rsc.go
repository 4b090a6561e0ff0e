package heli

import (
	"time"

	"github.com/felixge/pidctrl"
)

// RotorState is the lifecycle of a rotor drive.
type RotorState int

const (
	// RotorStop: drive commanded off, output at the safe idle value.
	RotorStop RotorState = iota
	// RotorSpoolUp: ramping toward the desired speed, below critical.
	RotorSpoolUp
	// RotorActive: at speed, closed-loop governed.
	RotorActive
	// RotorAutorotation: unpowered descent, governor suspended.
	RotorAutorotation
)

func (s RotorState) String() string {
	switch s {
	case RotorStop:
		return "stop"
	case RotorSpoolUp:
		return "spool_up"
	case RotorActive:
		return "active"
	case RotorAutorotation:
		return "autorotation"
	}
	return "unknown"
}

// governorAuthority bounds how much the governor may trim the open-loop
// throttle in either direction.
const governorAuthority = 0.25

// RSC is a rotor speed controller: it ramps a rotor toward its desired
// speed, tracks the rotor state machine, and closes the speed loop with a
// PID governor once above critical speed. One instance drives the main
// rotor; direct-drive tails use a second instance.
type RSC struct {
	desired   float64 // commanded speed, 0..1
	estimated float64 // open-loop speed estimate, 0..1
	measured  float64 // sensor feedback, negative when absent
	critical  float64 // minimum speed for flight
	rampTime  float64 // seconds for a full 0..1 ramp
	idle      float64 // safe idle output

	state        RotorState
	autorotating bool

	governor    *pidctrl.PIDController
	governorOut float64
	controlOut  float64
}

// NewRSC builds a speed controller. critical and idle are normalized;
// rampTime is the full-range spool-up time in seconds.
func NewRSC(critical, rampTime, idle float64, gov GovernorParams) *RSC {
	g := pidctrl.NewPIDController(gov.P, gov.I, gov.D)
	g.SetOutputLimits(-governorAuthority, governorAuthority)
	return &RSC{
		critical: clamp01(critical),
		rampTime: rampTime,
		idle:     clamp01(idle),
		measured: -1,
		governor: g,
	}
}

// SetDesiredSpeed sets the target rotor speed, clamped to [0, 1].
func (r *RSC) SetDesiredSpeed(speed float64) {
	r.desired = clamp01(speed)
	r.governor.Set(r.desired)
}

// SetMeasuredSpeed supplies rotor speed sensor feedback. Pass a negative
// value to indicate no sensor; the open-loop estimate is used instead.
func (r *RSC) SetMeasuredSpeed(speed float64) {
	if speed < 0 {
		r.measured = -1
		return
	}
	r.measured = clamp01(speed)
}

// SetAutorotation flags an unpowered descent. While set, the governor is
// suspended and the drive output drops to idle; on recovery the spool-up
// resumes from the current speed estimate.
func (r *RSC) SetAutorotation(on bool) {
	r.autorotating = on
}

// Update advances the speed estimate and state machine by dt seconds.
// Called once per control cycle from the same loop as the mixer.
func (r *RSC) Update(dt time.Duration) {
	step := dt.Seconds() / r.rampTime

	switch {
	case r.autorotating && r.desired > 0:
		r.state = RotorAutorotation
		// Rotor speed is sustained aerodynamically; hold the estimate and
		// keep the drive at idle so recovery does not step the output.
		r.governorOut = 0
		r.controlOut = r.idle
		return
	case r.desired <= 0:
		r.state = RotorStop
		r.estimated = clamp01(r.estimated - step)
		r.governorOut = 0
		r.controlOut = r.idle
		return
	}

	// Powered: ramp the estimate toward the desired speed.
	if r.estimated < r.desired {
		r.estimated = clamp01(r.estimated + step)
		if r.estimated > r.desired {
			r.estimated = r.desired
		}
	} else if r.estimated > r.desired {
		r.estimated -= step
		if r.estimated < r.desired {
			r.estimated = r.desired
		}
	}

	if r.Speed() < r.critical {
		r.state = RotorSpoolUp
		r.governorOut = 0
		r.controlOut = clamp01(r.estimated)
		return
	}

	r.state = RotorActive
	r.governorOut = r.governor.UpdateDuration(r.Speed(), dt)
	r.controlOut = clamp01(r.desired + r.governorOut)
}

// Speed returns the best known rotor speed: measured when a sensor is
// present, the open-loop estimate otherwise.
func (r *RSC) Speed() float64 {
	if r.measured >= 0 {
		return r.measured
	}
	return r.estimated
}

// DesiredSpeed returns the commanded rotor speed.
func (r *RSC) DesiredSpeed() float64 { return r.desired }

// CriticalSpeed returns the minimum speed for flight.
func (r *RSC) CriticalSpeed() float64 { return r.critical }

// SpeedAboveCritical reports whether the rotor is fast enough for flight.
func (r *RSC) SpeedAboveCritical() bool { return r.Speed() > r.critical }

// State returns the current rotor state.
func (r *RSC) State() RotorState { return r.state }

// GovernorOutput returns the last closed-loop speed correction.
func (r *RSC) GovernorOutput() float64 { return r.governorOut }

// ControlOutput returns the drive command for this cycle, 0..1.
func (r *RSC) ControlOutput() float64 { return r.controlOut }
