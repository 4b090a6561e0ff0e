package heli

import (
	"math"
	"time"
)

// Clock supplies the time base for the signal injectors. Injecting it
// keeps elapsed-time behavior reproducible in tests.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Injector names, also the tokens accepted by Params.InjectOrder.
const (
	InjectSlowStart  = "slowstart"
	InjectExcitation = "excitation"
	InjectChirp      = "chirp"
	InjectFault      = "fault"
)

// Injector produces a scalar perturbation of one actuator channel.
// baseline is the channel value accumulated so far in the pipeline, which
// lets the fault injector scale it; additive injectors ignore it.
type Injector interface {
	Name() string
	Offset(elapsed time.Duration, baseline float64) float64
}

// slowStartFloorFrac is the fraction of the configured amplitude produced
// at the moment the ramp is enabled. A non-zero floor avoids a dead band
// at power-up while keeping the first command small.
const slowStartFloorFrac = 0.1

// SlowStart ramps linearly from a small floor to the full amplitude over
// the configured duration, then holds. It never restarts on its own; the
// bank resets it on a disable/enable transition.
type SlowStart struct {
	Amplitude float64
	Time      float64 // seconds to reach full amplitude
}

func (s SlowStart) Name() string { return InjectSlowStart }

func (s SlowStart) Offset(elapsed time.Duration, _ float64) float64 {
	floor := slowStartFloorFrac * s.Amplitude
	if s.Time <= 0 {
		return s.Amplitude
	}
	frac := clamp01(elapsed.Seconds() / s.Time)
	return floor + (s.Amplitude-floor)*frac
}

// Excitation adds a fixed-frequency sinusoid for system identification.
type Excitation struct {
	Amplitude float64
	Period    float64 // seconds
}

func (e Excitation) Name() string { return InjectExcitation }

func (e Excitation) Offset(elapsed time.Duration, _ float64) float64 {
	if e.Period <= 0 {
		return 0
	}
	return e.Amplitude * math.Sin(2*math.Pi*elapsed.Seconds()/e.Period)
}

// Chirp adds a linearly swept-frequency sinusoid for frequency-response
// identification. Instantaneous frequency is StartFreq + SweepRate*t.
type Chirp struct {
	Amplitude float64
	StartFreq float64 // Hz at enable
	SweepRate float64 // Hz per second, may be negative
}

func (c Chirp) Name() string { return InjectChirp }

func (c Chirp) Offset(elapsed time.Duration, _ float64) float64 {
	t := elapsed.Seconds()
	phase := 2 * math.Pi * (c.StartFreq*t + 0.5*c.SweepRate*t*t)
	return c.Amplitude * math.Sin(phase)
}

// Fault models a proportional loss of actuator effectiveness: the channel
// is degraded by Percent of its current value. Deterministic for a given
// configuration and baseline, so experiments replay exactly.
type Fault struct {
	Percent float64 // 0..100
}

func (f Fault) Name() string { return InjectFault }

func (f Fault) Offset(_ time.Duration, baseline float64) float64 {
	return -baseline * f.Percent / 100
}

// Bank owns the injectors and their enable state. Each injector tracks the
// instant it was last enabled; disabling clears that progress so a
// re-enable restarts the signal from its initial condition.
type Bank struct {
	clock   Clock
	order   []string
	channel int

	injectors map[string]Injector
	enabled   map[string]bool
	since     map[string]time.Time
}

// NewBank builds the injector bank for a validated parameter set. A nil
// clock selects the wall clock.
func NewBank(p Params, clock Clock) *Bank {
	if clock == nil {
		clock = realClock{}
	}
	order := p.InjectOrder
	if len(order) == 0 {
		order = []string{InjectSlowStart, InjectExcitation, InjectChirp, InjectFault}
	}
	b := &Bank{
		clock:   clock,
		order:   append([]string(nil), order...),
		channel: p.InjectChannel,
		injectors: map[string]Injector{
			InjectSlowStart:  SlowStart{Amplitude: p.SlowStart.Amplitude, Time: p.SlowStart.Time},
			InjectExcitation: Excitation{Amplitude: p.Excitation.Amplitude, Period: p.Excitation.Period},
			InjectChirp:      Chirp{Amplitude: p.Chirp.Amplitude, StartFreq: p.Chirp.StartFreq, SweepRate: p.Chirp.SweepRate},
			InjectFault:      Fault{Percent: p.Fault.Percent},
		},
		enabled: make(map[string]bool),
		since:   make(map[string]time.Time),
	}
	b.SetEnabled(InjectSlowStart, p.SlowStart.Enabled)
	b.SetEnabled(InjectExcitation, p.Excitation.Enabled)
	b.SetEnabled(InjectChirp, p.Chirp.Enabled)
	b.SetEnabled(InjectFault, p.Fault.Enabled)
	return b
}

// SetEnabled switches one injector. Enabling records the time origin;
// disabling discards it.
func (b *Bank) SetEnabled(name string, on bool) {
	if _, ok := b.injectors[name]; !ok {
		return
	}
	if on && !b.enabled[name] {
		b.since[name] = b.clock.Now()
	}
	if !on {
		delete(b.since, name)
	}
	b.enabled[name] = on
}

// Enabled reports whether the named injector is active.
func (b *Bank) Enabled(name string) bool { return b.enabled[name] }

// Channel returns the output channel the bank perturbs.
func (b *Bank) Channel() int { return b.channel }

// inheritFrom carries enable timestamps over from a previous bank so a
// parameter edit does not restart injectors that stayed enabled. The
// slow-start ramp in particular must never restart implicitly.
func (b *Bank) inheritFrom(old *Bank) {
	if old == nil {
		return
	}
	for name := range b.injectors {
		if b.enabled[name] && old.enabled[name] {
			if t, ok := old.since[name]; ok {
				b.since[name] = t
			}
		}
	}
}

// Apply runs the enabled injectors over the given channel value in the
// configured pipeline order and returns the perturbed value. Channels
// other than the bank's target pass through untouched.
func (b *Bank) Apply(channel int, value float64) float64 {
	if channel != b.channel {
		return value
	}
	now := b.clock.Now()
	for _, name := range b.order {
		if !b.enabled[name] {
			continue
		}
		inj := b.injectors[name]
		value += inj.Offset(now.Sub(b.since[name]), value)
	}
	return value
}
