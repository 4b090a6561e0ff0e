package heli

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// Mixer converts attitude/throttle commands into actuator commands. It
// orchestrates the swashplate solver, the active tail strategy, both rotor
// speed controllers, and the signal injector bank. All computation is
// bounded-time arithmetic; the hot path performs no I/O or allocation.
//
// The mixer assumes a validated configuration. Residual invalid numeric
// input is clamped defensively rather than propagated.
type Mixer struct {
	mu     sync.RWMutex
	params Params

	tail      TailStrategy
	swash     Swashplate
	mainRotor *RSC
	tailRotor *RSC
	bank      *Bank
	alloc     Allocator
	clock     Clock

	acroTail bool

	// servo test script state
	testTime     float64
	servoTesting bool
}

// NewMixer builds a mixer for a validated parameter set. A nil clock
// selects the wall clock. The default swashplate is H3-120 CCPM; replace
// it with SetSwashplate before the loop starts if the geometry differs.
func NewMixer(p Params, clock Clock) (*Mixer, error) {
	if ok, reason := p.Check(); !ok {
		return nil, fmt.Errorf("invalid parameters: %s", reason)
	}
	if clock == nil {
		clock = realClock{}
	}
	m := &Mixer{
		params:    p,
		tail:      newTailStrategy(p),
		swash:     NewCCPM120(),
		mainRotor: NewRSC(p.RotorCriticalSpeed, p.RotorRampTime, p.RotorIdleOutput, p.Governor),
		tailRotor: NewRSC(0, tailRampTime(p.RotorRampTime), p.RotorIdleOutput, p.Governor),
		bank:      NewBank(p, clock),
		clock:     clock,
	}
	return m, nil
}

// tailRampTime derives the tail drive spool-up time from the main rotor
// ramp. The tail rotor has far less inertia.
func tailRampTime(mainRamp float64) float64 {
	t := mainRamp / 3
	if t < 1 {
		t = 1
	}
	return t
}

// SetParams applies a new validated configuration. The swap is atomic with
// respect to MoveActuators; injectors that stay enabled keep their time
// origin so a parameter edit never restarts the slow-start ramp.
func (m *Mixer) SetParams(p Params) error {
	if ok, reason := p.Check(); !ok {
		return fmt.Errorf("invalid parameters: %s", reason)
	}
	bank := NewBank(p, m.clock)

	m.mu.Lock()
	defer m.mu.Unlock()
	bank.inheritFrom(m.bank)
	m.params = p
	m.tail = newTailStrategy(p)
	m.bank = bank
	return nil
}

// Params returns a copy of the active configuration.
func (m *Mixer) Params() Params {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.params
}

// SetSwashplate replaces the swashplate solver. Not safe to call while the
// control loop is running.
func (m *Mixer) SetSwashplate(s Swashplate) {
	if s != nil {
		m.swash = s
	}
}

// sanitize clamps v to [lo, hi], mapping non-finite input to the midpoint
// of the legal range. Invalid input here is a programming defect upstream;
// in flight we degrade to a neutral command instead of crashing.
func sanitize(v, lo, hi float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return (lo + hi) / 2
	}
	return clamp(v, lo, hi)
}

// MoveActuators runs one mixing cycle: roll/pitch/collective through the
// swashplate solver, yaw through the active tail strategy with collective
// feed-forward where the topology couples them, then injector offsets and
// endpoint clamps. Roll, pitch and yaw are in [-1, 1]; collective in [0, 1].
func (m *Mixer) MoveActuators(roll, pitch, collective, yaw float64) Outputs {
	// Full lock: the tail speed controller target moves with the yaw
	// command inside the cycle.
	m.mu.Lock()
	defer m.mu.Unlock()

	roll = sanitize(roll, -1, 1)
	pitch = sanitize(pitch, -1, 1)
	collective = sanitize(collective, 0, 1)
	yaw = sanitize(yaw, -1, 1)

	var out Outputs
	out.Swash = m.swash.Solve(roll, pitch, collective)

	// Collective-yaw feed-forward compensates the reactive torque change
	// that comes with collective pitch, applied before the tail strategy.
	if m.tail.UsesCollectiveYaw() {
		yaw += m.params.CollectiveYawScale * collective
	}

	t := m.tail.Output(yaw, m.acroTail)
	out.TailServo, out.HasTailServo = t.Servo, t.HasServo
	out.ExtGyro, out.HasExtGyro = t.GyroGain, t.HasGyro
	if t.HasMotor {
		out.HasTailMotor = true
		out.TailMotor = m.tailMotorOutput(t.MotorTarget)
	}

	out.MainRotor = m.mainRotor.ControlOutput()

	m.applyInjectors(&out)
	m.applyIdlePolicy(&out)
	return out
}

// tailMotorOutput resolves the tail motor command for the active topology.
// Variable pitch tails command their ESC target directly; fixed pitch and
// externally governed tails go through the tail speed controller.
func (m *Mixer) tailMotorOutput(target float64) float64 {
	switch m.params.TailType {
	case TailDDVarPitch:
		return clamp01(target)
	default:
		m.tailRotor.SetDesiredSpeed(target)
		return m.tailRotor.ControlOutput()
	}
}

// applyInjectors perturbs the bank's designated channel, then re-clamps it
// to the channel's legal range.
func (m *Mixer) applyInjectors(o *Outputs) {
	ch := m.bank.Channel()
	switch ch {
	case ChanSwash1, ChanSwash2, ChanSwash3:
		o.Swash[ch] = clamp(m.bank.Apply(ch, o.Swash[ch]), -1, 1)
	case ChanTail:
		if o.HasTailServo {
			o.TailServo = clamp(m.bank.Apply(ch, o.TailServo), -1, 1)
		} else if o.HasTailMotor {
			o.TailMotor = clamp01(m.bank.Apply(ch, o.TailMotor))
		}
	case ChanAux:
		if o.HasTailMotor && o.HasTailServo {
			o.TailMotor = clamp01(m.bank.Apply(ch, o.TailMotor))
		}
	case ChanRotor:
		o.MainRotor = clamp01(m.bank.Apply(ch, o.MainRotor))
	}
}

// applyIdlePolicy gates drive outputs when the main rotor is shut down:
// swashplate and tail servo commands pass through for ground handling, but
// every rotor drive is forced to the configured safe idle value.
func (m *Mixer) applyIdlePolicy(o *Outputs) {
	if m.mainRotor.State() != RotorStop {
		return
	}
	idle := m.params.RotorIdleOutput
	o.MainRotor = idle
	if o.HasTailMotor {
		o.TailMotor = idle
	}
}

// UpdateMotorControl advances both rotor speed controllers by dt. Called
// once per cycle from the same loop that calls MoveActuators.
func (m *Mixer) UpdateMotorControl(dt time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mainRotor.Update(dt)
	m.tailRotor.Update(dt)
}

// SetDesiredRotorSpeed sets the main rotor speed target, 0..1.
func (m *Mixer) SetDesiredRotorSpeed(speed float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mainRotor.SetDesiredSpeed(sanitize(speed, 0, 1))
}

// SetMeasuredRotorSpeed supplies main rotor speed sensor feedback.
// Negative means no sensor.
func (m *Mixer) SetMeasuredRotorSpeed(speed float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mainRotor.SetMeasuredSpeed(speed)
}

// SetAutorotation flags an unpowered descent to the main rotor controller.
func (m *Mixer) SetAutorotation(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mainRotor.SetAutorotation(on)
}

// DesiredRotorSpeed returns the main rotor speed target.
func (m *Mixer) DesiredRotorSpeed() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mainRotor.DesiredSpeed()
}

// RotorSpeed returns the estimated or measured main rotor speed.
func (m *Mixer) RotorSpeed() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mainRotor.Speed()
}

// RotorState returns the main rotor lifecycle state.
func (m *Mixer) RotorState() RotorState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mainRotor.State()
}

// RotorSpeedAboveCritical reports whether the main rotor is fast enough
// for flight.
func (m *Mixer) RotorSpeedAboveCritical() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mainRotor.SpeedAboveCritical()
}

// GovernorOutput returns the main rotor governor correction.
func (m *Mixer) GovernorOutput() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mainRotor.GovernorOutput()
}

// ControlOutput returns the main rotor drive command.
func (m *Mixer) ControlOutput() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mainRotor.ControlOutput()
}

// SetAcroTail selects the acrobatic external gyro gain. Only meaningful
// for the servo-with-external-gyro tail type.
func (m *Mixer) SetAcroTail(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acroTail = on
}

// SupportsYawPassthrough reports whether software yaw damping should be
// bypassed for the active tail type.
func (m *Mixer) SupportsYawPassthrough() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tail.SupportsYawPassthrough()
}

// HasFlybar reports whether a mechanical flybar is configured.
func (m *Mixer) HasFlybar() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.params.Flybar
}

// ExtGyroGain sets the standard external gyro gain, 0..1000. Values
// outside the range are silently ignored.
func (m *Mixer) ExtGyroGain(gain float64) {
	if gain < 0 || gain > 1000 || math.IsNaN(gain) {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.params.GyroGain = gain
	m.tail = newTailStrategy(m.params)
}

// ParameterCheck validates the active configuration for the pre-arm layer.
func (m *Mixer) ParameterCheck() (bool, string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.params.Check()
}

// MotorMask returns the bitmask of output channels this configuration
// claims, so other subsystems avoid conflicting writes.
func (m *Mixer) MotorMask() uint32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return uint32(1<<ChanSwash1|1<<ChanSwash2|1<<ChanSwash3|1<<ChanRotor) | m.tail.Channels()
}

// SetInjectorEnabled switches one signal injector. Enabling resets the
// injector's time origin; disabling clears its progress.
func (m *Mixer) SetInjectorEnabled(name string, on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bank.SetEnabled(name, on)
}

// InjectorEnabled reports whether the named injector is active.
func (m *Mixer) InjectorEnabled(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bank.Enabled(name)
}

// Alloc exposes the feedforward allocator.
func (m *Mixer) Alloc() Allocator { return m.alloc }

// servoTestPeriod is the length of one scripted oscillation cycle.
const servoTestPeriod = 6.0

// ServoTest advances the scripted ground-test oscillation by dt and mixes
// the scripted commands. The six second cycle sweeps collective, then
// circles the cyclic, then sweeps yaw, and repeats until reset.
func (m *Mixer) ServoTest(dt time.Duration) Outputs {
	m.mu.Lock()
	m.servoTesting = true
	m.testTime += dt.Seconds()
	t := math.Mod(m.testTime, servoTestPeriod)
	m.mu.Unlock()

	var roll, pitch, collective, yaw float64
	switch {
	case t < 2:
		// collective triangle sweep, low to high and back
		if t < 1 {
			collective = t
		} else {
			collective = 2 - t
		}
	case t < 4:
		// cyclic circle at half travel
		phase := 2 * math.Pi * (t - 2) / 2
		roll = 0.5 * math.Sin(phase)
		pitch = 0.5 * math.Cos(phase)
		collective = 0.5
	default:
		// yaw sweep
		yaw = math.Sin(2 * math.Pi * (t - 4) / 2)
		collective = 0.5
	}
	return m.MoveActuators(roll, pitch, collective, yaw)
}

// ResetServoTest clears the scripted oscillation state.
func (m *Mixer) ResetServoTest() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.servoTesting = false
	m.testTime = 0
}

// OutputTestSeq resolves a bench-test request: motor sequence numbers 1-3
// address the swashplate servos, 4 the tail channel, 5 the auxiliary
// channel, 6 the main rotor. The value is clamped to the channel's legal
// range and returned with the physical channel to drive.
func (m *Mixer) OutputTestSeq(seq int, value float64) (channel int, out float64, err error) {
	switch seq {
	case 1, 2, 3:
		return seq - 1, sanitize(value, -1, 1), nil
	case 4:
		return ChanTail, sanitize(value, -1, 1), nil
	case 5:
		return ChanAux, sanitize(value, 0, 1), nil
	case 6:
		return ChanRotor, sanitize(value, 0, 1), nil
	default:
		return 0, 0, fmt.Errorf("motor sequence %d outside 1..6", seq)
	}
}
