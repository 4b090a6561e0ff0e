// Package heli implements the actuator mixing and rotor governing core for
// a single main-rotor helicopter.
//
// The package converts attitude/throttle commands (roll, pitch, collective,
// yaw, desired rotor speed) into physical actuator commands every control
// cycle. It covers the swashplate/tail mixing path, the rotor speed
// controller state machine, tail-drive-type dispatch, pre-arm parameter
// validation, and a bank of diagnostic signal injectors used for system
// identification experiments.
package heli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TailType selects how the anti-torque drive is mixed.
type TailType int

const (
	// TailServo is a plain tail pitch servo driven by the yaw command.
	TailServo TailType = iota
	// TailServoExtGyro is a tail servo with an outboard gyro performing
	// yaw-rate damping. The gyro gain channel is driven by this core.
	TailServoExtGyro
	// TailDDVarPitch is a direct-drive variable pitch tail: yaw moves the
	// blade pitch servo while the tail motor runs at a fixed speed target.
	TailDDVarPitch
	// TailDDFixedPitchCW is a direct-drive fixed pitch tail rotating
	// clockwise: yaw modulates motor speed around the base speed.
	TailDDFixedPitchCW
	// TailDDFixedPitchCCW is the counter-clockwise fixed pitch variant.
	TailDDFixedPitchCCW
	// TailDDVarPitchExtGov is direct-drive variable pitch with the motor
	// speed target delegated to an external governor.
	TailDDVarPitchExtGov

	numTailTypes
)

var tailTypeNames = map[TailType]string{
	TailServo:            "servo",
	TailServoExtGyro:     "servo_ext_gyro",
	TailDDVarPitch:       "dd_var_pitch",
	TailDDFixedPitchCW:   "dd_fixed_pitch_cw",
	TailDDFixedPitchCCW:  "dd_fixed_pitch_ccw",
	TailDDVarPitchExtGov: "dd_var_pitch_ext_gov",
}

// String returns the configuration name of the tail type.
func (t TailType) String() string {
	if name, ok := tailTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tail_type(%d)", int(t))
}

// Valid reports whether t is one of the enumerated tail types.
func (t TailType) Valid() bool {
	return t >= TailServo && t < numTailTypes
}

// UsesExtGyro reports whether the tail type drives an external gyro gain channel.
func (t TailType) UsesExtGyro() bool {
	return t == TailServoExtGyro
}

// DirectDrive reports whether the tail rotor is motor driven.
func (t TailType) DirectDrive() bool {
	switch t {
	case TailDDVarPitch, TailDDFixedPitchCW, TailDDFixedPitchCCW, TailDDVarPitchExtGov:
		return true
	}
	return false
}

// FixedPitch reports whether yaw authority comes from motor speed alone.
func (t TailType) FixedPitch() bool {
	return t == TailDDFixedPitchCW || t == TailDDFixedPitchCCW
}

// UnmarshalYAML accepts either the configuration name or the numeric code.
func (t *TailType) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err == nil {
		for tt, n := range tailTypeNames {
			if n == name {
				*t = tt
				return nil
			}
		}
		return fmt.Errorf("unknown tail type %q", name)
	}
	var code int
	if err := node.Decode(&code); err != nil {
		return fmt.Errorf("tail type: %w", err)
	}
	*t = TailType(code)
	return nil
}

// MarshalYAML emits the configuration name.
func (t TailType) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

// GovernorParams are the PID gains for the rotor speed governor.
type GovernorParams struct {
	P float64 `yaml:"p"`
	I float64 `yaml:"i"`
	D float64 `yaml:"d"`
}

// SlowStartParams shape the power-up ramp injector.
type SlowStartParams struct {
	Enabled   bool    `yaml:"enabled"`
	Amplitude float64 `yaml:"amplitude"` // full offset reached at Time (normalized)
	Time      float64 `yaml:"time_s"`    // seconds from floor to full amplitude
}

// ExcitationParams shape the sinusoidal excitation injector.
type ExcitationParams struct {
	Enabled   bool    `yaml:"enabled"`
	Amplitude float64 `yaml:"amplitude"`
	Period    float64 `yaml:"period_s"`
}

// ChirpParams shape the swept-frequency identification injector.
type ChirpParams struct {
	Enabled   bool    `yaml:"enabled"`
	Amplitude float64 `yaml:"amplitude"`
	StartFreq float64 `yaml:"start_freq_hz"`
	SweepRate float64 `yaml:"sweep_rate_hz_s"` // frequency slope, may be negative
}

// FaultParams shape the actuator fault injector.
type FaultParams struct {
	Enabled bool    `yaml:"enabled"`
	Percent float64 `yaml:"percent"` // loss of effectiveness, 0..100
}

// Params is the full operator-set configuration for the mixing core.
// It is loaded once at startup and may be hot-edited, but every edit is
// re-validated by Check before it reaches the control loop.
type Params struct {
	TailType TailType `yaml:"tail_type"`

	// External gyro gains, 0..1000. Only meaningful for TailServoExtGyro.
	GyroGain     float64 `yaml:"gyro_gain"`
	GyroGainAcro float64 `yaml:"gyro_gain_acro"`

	// CollectiveYawScale is the feed-forward coupling from collective to
	// yaw. Signed; mechanical direction dependent.
	CollectiveYawScale float64 `yaml:"collective_yaw_scale"`

	// Flybar indicates a mechanical stabilizer bar is fitted.
	Flybar bool `yaml:"flybar"`

	// DDVPSpeed is the direct-drive tail motor speed target, 0..1000.
	DDVPSpeed float64 `yaml:"ddvp_speed"`

	// Main rotor speed controller.
	RotorCriticalSpeed float64        `yaml:"rotor_critical_speed"` // 0..1, minimum for flight
	RotorRampTime      float64        `yaml:"rotor_ramp_time_s"`
	RotorIdleOutput    float64        `yaml:"rotor_idle_output"` // 0..1 safe idle command
	Governor           GovernorParams `yaml:"governor"`

	// Research/diagnostic signal injectors.
	SlowStart  SlowStartParams  `yaml:"slow_start"`
	Excitation ExcitationParams `yaml:"excitation"`
	Chirp      ChirpParams      `yaml:"chirp"`
	Fault      FaultParams      `yaml:"fault"`

	// InjectOrder is the explicit injector pipeline order. Offsets are
	// applied in this order to InjectChannel each cycle.
	InjectOrder   []string `yaml:"inject_order"`
	InjectChannel int      `yaml:"inject_channel"`

	// UpdateRateHz is the control loop rate. Takes effect on the next
	// full reconfiguration, never mid-cycle.
	UpdateRateHz int `yaml:"update_rate_hz"`
}

// Defaults matching the traditional single-rotor setup.
const (
	DefaultGyroGain     = 350
	DefaultDDVPSpeed    = 500
	DefaultUpdateRateHz = 125

	// CollectiveYawRange bounds the feed-forward coupling coefficient.
	CollectiveYawRange = 10.0
)

// DefaultParams returns a minimal valid configuration.
func DefaultParams() Params {
	return Params{
		TailType:           TailServo,
		GyroGain:           DefaultGyroGain,
		GyroGainAcro:       DefaultGyroGain,
		CollectiveYawScale: 0,
		DDVPSpeed:          DefaultDDVPSpeed,
		RotorCriticalSpeed: 0.5,
		RotorRampTime:      10,
		RotorIdleOutput:    0,
		Governor:           GovernorParams{P: 0.5, I: 0.1, D: 0.02},
		SlowStart:          SlowStartParams{Amplitude: 0.1, Time: 5},
		Excitation:         ExcitationParams{Amplitude: 0.05, Period: 2},
		Chirp:              ChirpParams{Amplitude: 0.05, StartFreq: 0.5, SweepRate: 0.25},
		Fault:              FaultParams{Percent: 0},
		InjectOrder:        []string{"slowstart", "excitation", "chirp", "fault"},
		InjectChannel:      ChanTail,
		UpdateRateHz:       DefaultUpdateRateHz,
	}
}

// LoadParams reads a parameter file, applying defaults for absent fields.
func LoadParams(path string) (Params, error) {
	p := DefaultParams()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read params: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse params: %w", err)
	}
	return p, nil
}
