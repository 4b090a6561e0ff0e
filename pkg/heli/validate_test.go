package heli

import (
	"math"
	"strings"
	"testing"
)

func TestCheck_AcceptsDefaults(t *testing.T) {
	ok, reason := DefaultParams().Check()
	if !ok {
		t.Fatalf("default parameters rejected: %s", reason)
	}
}

func TestCheck_AcceptsEveryTailType(t *testing.T) {
	for tt := TailServo; tt < numTailTypes; tt++ {
		p := DefaultParams()
		p.TailType = tt
		if ok, reason := p.Check(); !ok {
			t.Errorf("tail type %v rejected: %s", tt, reason)
		}
	}
}

func TestCheck_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Params)
		want   string
	}{
		{
			"gyro gain too high",
			func(p *Params) { p.TailType = TailServoExtGyro; p.GyroGain = 1200 },
			"gyro_gain",
		},
		{
			"unrecognized tail type",
			func(p *Params) { p.TailType = TailType(99) },
			"tail type",
		},
		{
			"flybar with fixed pitch tail",
			func(p *Params) { p.Flybar = true; p.TailType = TailDDFixedPitchCW },
			"flybar",
		},
		{
			"ddvp speed out of range",
			func(p *Params) { p.DDVPSpeed = 1500 },
			"ddvp_speed",
		},
		{
			"collective yaw out of range",
			func(p *Params) { p.CollectiveYawScale = 12 },
			"collective_yaw_scale",
		},
		{
			"NaN gain",
			func(p *Params) { p.GyroGain = math.NaN() },
			"finite",
		},
		{
			"infinite coupling",
			func(p *Params) { p.CollectiveYawScale = math.Inf(1) },
			"finite",
		},
		{
			"fault percent above 100",
			func(p *Params) { p.Fault.Percent = 150 },
			"fault.percent",
		},
		{
			"unknown injector in order",
			func(p *Params) { p.InjectOrder = []string{"slowstart", "noise"} },
			"injector",
		},
		{
			"zero update rate",
			func(p *Params) { p.UpdateRateHz = 0 },
			"update_rate_hz",
		},
		{
			"slow start without duration",
			func(p *Params) { p.SlowStart.Enabled = true; p.SlowStart.Time = 0 },
			"slow_start",
		},
	}
	for _, c := range cases {
		p := DefaultParams()
		c.mutate(&p)
		ok, reason := p.Check()
		if ok {
			t.Errorf("%s: accepted, want rejection", c.name)
			continue
		}
		if !strings.Contains(reason, c.want) {
			t.Errorf("%s: reason %q does not mention %q", c.name, reason, c.want)
		}
	}
}

func TestCheck_GyroGainIgnoredForServoTail(t *testing.T) {
	// Gyro gains are only meaningful with an external gyro; a plain servo
	// tail must not be blocked by them.
	p := DefaultParams()
	p.TailType = TailServo
	p.GyroGain = 1200
	if ok, reason := p.Check(); !ok {
		t.Errorf("servo tail rejected on gyro gain: %s", reason)
	}
}
