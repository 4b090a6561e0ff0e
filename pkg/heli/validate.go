package heli

import (
	"fmt"
	"math"
)

// Check validates the full parameter set before arming. It returns false
// with a displayable reason on the first failed check. The caller decides
// whether to block arming; nothing here is silently corrected.
func (p Params) Check() (bool, string) {
	if !p.TailType.Valid() {
		return false, fmt.Sprintf("unrecognized tail type %d", int(p.TailType))
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"gyro_gain", p.GyroGain},
		{"gyro_gain_acro", p.GyroGainAcro},
		{"collective_yaw_scale", p.CollectiveYawScale},
		{"ddvp_speed", p.DDVPSpeed},
		{"rotor_critical_speed", p.RotorCriticalSpeed},
		{"rotor_ramp_time_s", p.RotorRampTime},
		{"rotor_idle_output", p.RotorIdleOutput},
		{"slow_start.amplitude", p.SlowStart.Amplitude},
		{"slow_start.time_s", p.SlowStart.Time},
		{"excitation.amplitude", p.Excitation.Amplitude},
		{"excitation.period_s", p.Excitation.Period},
		{"chirp.amplitude", p.Chirp.Amplitude},
		{"chirp.start_freq_hz", p.Chirp.StartFreq},
		{"chirp.sweep_rate_hz_s", p.Chirp.SweepRate},
		{"fault.percent", p.Fault.Percent},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return false, fmt.Sprintf("%s is not a finite number", f.name)
		}
	}
	if p.TailType.UsesExtGyro() {
		if p.GyroGain < 0 || p.GyroGain > 1000 {
			return false, fmt.Sprintf("gyro_gain %.0f outside 0..1000", p.GyroGain)
		}
		if p.GyroGainAcro < 0 || p.GyroGainAcro > 1000 {
			return false, fmt.Sprintf("gyro_gain_acro %.0f outside 0..1000", p.GyroGainAcro)
		}
	}
	if p.DDVPSpeed < 0 || p.DDVPSpeed > 1000 {
		return false, fmt.Sprintf("ddvp_speed %.0f outside 0..1000", p.DDVPSpeed)
	}
	if p.CollectiveYawScale < -CollectiveYawRange || p.CollectiveYawScale > CollectiveYawRange {
		return false, fmt.Sprintf("collective_yaw_scale %.1f outside ±%.0f", p.CollectiveYawScale, CollectiveYawRange)
	}
	if p.Flybar && p.TailType.FixedPitch() {
		return false, "flybar mode is incompatible with a fixed pitch direct-drive tail"
	}
	if p.RotorCriticalSpeed < 0 || p.RotorCriticalSpeed > 1 {
		return false, fmt.Sprintf("rotor_critical_speed %.2f outside 0..1", p.RotorCriticalSpeed)
	}
	if p.RotorRampTime <= 0 {
		return false, "rotor_ramp_time_s must be positive"
	}
	if p.RotorIdleOutput < 0 || p.RotorIdleOutput > 1 {
		return false, fmt.Sprintf("rotor_idle_output %.2f outside 0..1", p.RotorIdleOutput)
	}
	if p.Excitation.Enabled && p.Excitation.Period <= 0 {
		return false, "excitation.period_s must be positive when excitation is enabled"
	}
	if p.SlowStart.Enabled && p.SlowStart.Time <= 0 {
		return false, "slow_start.time_s must be positive when slow start is enabled"
	}
	if p.Fault.Percent < 0 || p.Fault.Percent > 100 {
		return false, fmt.Sprintf("fault.percent %.1f outside 0..100", p.Fault.Percent)
	}
	for _, name := range p.InjectOrder {
		switch name {
		case "slowstart", "excitation", "chirp", "fault":
		default:
			return false, fmt.Sprintf("unknown injector %q in inject_order", name)
		}
	}
	if p.InjectChannel < 0 || p.InjectChannel >= NumChannels {
		return false, fmt.Sprintf("inject_channel %d outside 0..%d", p.InjectChannel, NumChannels-1)
	}
	if p.UpdateRateHz <= 0 {
		return false, "update_rate_hz must be positive"
	}
	return true, ""
}
