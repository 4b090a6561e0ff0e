package heli

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/JH-ESCL/helimix/internal/log"
	"github.com/JH-ESCL/helimix/pkg/debug"
)

// Output accepts a normalized command for one logical output channel and
// performs the hardware write. Implementations own PWM scaling and
// endpoint management.
type Output interface {
	WriteChannel(ch int, value float64) error
}

// LogOutput is an Output that traces writes at debug level. Used by the
// daemon when no hardware backend is wired, and by bench tools.
type LogOutput struct{}

// WriteChannel logs the channel write.
func (LogOutput) WriteChannel(ch int, value float64) error {
	debug.TraceLog("ch%d=%.4f ", ch, value)
	return nil
}

// maxStepPerTick bounds the per-cycle change of any output channel so a
// discontinuous command cannot step an actuator. At 125Hz this still
// allows full travel in under a quarter second.
const maxStepPerTick = 0.07

// LoopStatus is a diagnostics snapshot of the control loop.
type LoopStatus struct {
	Roll       float64 `json:"roll"`
	Pitch      float64 `json:"pitch"`
	Collective float64 `json:"collective"`
	Yaw        float64 `json:"yaw"`

	Outputs Outputs `json:"outputs"`

	RotorState   string  `json:"rotor_state"`
	RotorSpeed   float64 `json:"rotor_speed"`
	RotorDesired float64 `json:"rotor_desired"`
	GovernorOut  float64 `json:"governor_out"`

	MotorMask uint32 `json:"motor_mask"`

	TickCount  uint64 `json:"tick_count"`
	ErrorCount uint64 `json:"error_count"`
	ClampCount uint64 `json:"clamp_count"`
}

// Loop runs the mixer at a fixed rate. The flight controller sets the
// latest command vector; each tick mixes it, slew-limits the result
// against the previous cycle, and writes the claimed channels to the
// output abstraction. All movement flows through here.
type Loop struct {
	mixer *Mixer
	out   Output

	mu         sync.RWMutex
	roll       float64
	pitch      float64
	collective float64
	yaw        float64
	rate       time.Duration

	// last and lastValid are touched only by tick, on the loop goroutine.
	// lastOut is shared with Snapshot and guarded by mu.
	last      [NumChannels]float64
	lastValid bool
	lastOut   Outputs

	stop chan struct{}

	// Diagnostics. Atomic so Snapshot can read them from the telemetry
	// goroutine while the loop goroutine updates them.
	tickCount  atomic.Uint64
	errorCount atomic.Uint64
	clampCount atomic.Uint64

	// OnTick, when set before Run, receives a status snapshot each cycle.
	// Used to feed telemetry and metrics without coupling them here.
	OnTick func(LoopStatus)
}

// NewLoop builds the control loop around a mixer and an output backend.
// The rate comes from the mixer's configured update rate.
func NewLoop(mixer *Mixer, out Output) *Loop {
	return &Loop{
		mixer: mixer,
		out:   out,
		rate:  time.Second / time.Duration(mixer.Params().UpdateRateHz),
		stop:  make(chan struct{}),
	}
}

// SetCommand stores the latest attitude/throttle command vector. The next
// tick picks it up; commands are never applied mid-cycle.
func (l *Loop) SetCommand(roll, pitch, collective, yaw float64) {
	l.mu.Lock()
	l.roll, l.pitch, l.collective, l.yaw = roll, pitch, collective, yaw
	l.mu.Unlock()
}

// SetParams applies a new configuration between cycles. The loop rate
// follows the new update rate from the next Run; a running loop keeps its
// rate until restarted.
func (l *Loop) SetParams(p Params) error {
	if err := l.mixer.SetParams(p); err != nil {
		return err
	}
	l.mu.Lock()
	l.rate = time.Second / time.Duration(p.UpdateRateHz)
	l.mu.Unlock()
	return nil
}

// Rate returns the configured cycle period.
func (l *Loop) Rate() time.Duration {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.rate
}

// Run starts the control loop. Blocks until Stop is called.
func (l *Loop) Run() {
	l.mu.RLock()
	rate := l.rate
	l.mu.RUnlock()

	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	log.Info("control loop started", "rate_hz", float64(time.Second)/float64(rate))

	for {
		select {
		case <-l.stop:
			log.Info("control loop stopped", "ticks", l.tickCount.Load())
			return
		case <-ticker.C:
			l.tick(rate)
		}
	}
}

// Stop halts the control loop.
func (l *Loop) Stop() {
	close(l.stop)
}

// tick executes one control cycle: advance the rotor controllers, mix the
// latest commands, slew-limit against the previous outputs, and write the
// claimed channels.
func (l *Loop) tick(dt time.Duration) {
	l.mu.RLock()
	roll, pitch, collective, yaw := l.roll, l.pitch, l.collective, l.yaw
	l.mu.RUnlock()

	l.mixer.UpdateMotorControl(dt)
	outs := l.mixer.MoveActuators(roll, pitch, collective, yaw)
	vec := outs.Vector()
	mask := outs.Mask()

	if l.lastValid {
		for ch := 0; ch < NumChannels; ch++ {
			if mask&(1<<ch) == 0 {
				continue
			}
			delta := vec[ch] - l.last[ch]
			if delta > maxStepPerTick {
				vec[ch] = l.last[ch] + maxStepPerTick
				l.clampCount.Add(1)
			} else if delta < -maxStepPerTick {
				vec[ch] = l.last[ch] - maxStepPerTick
				l.clampCount.Add(1)
			}
		}
	}

	l.tickCount.Add(1)
	for ch := 0; ch < NumChannels; ch++ {
		if mask&(1<<ch) == 0 {
			continue
		}
		if err := l.out.WriteChannel(ch, vec[ch]); err != nil {
			if n := l.errorCount.Add(1); n%100 == 1 {
				log.Warn("output write failed", "channel", ch, "err", err, "total", n)
			}
			continue
		}
		l.last[ch] = vec[ch]
	}
	l.lastValid = true

	l.mu.Lock()
	l.lastOut = outs
	l.mu.Unlock()

	if l.OnTick != nil {
		l.OnTick(l.snapshotLocked(roll, pitch, collective, yaw, outs))
	}
}

// Snapshot returns the latest diagnostics for the telemetry layer.
func (l *Loop) Snapshot() LoopStatus {
	l.mu.RLock()
	roll, pitch, collective, yaw := l.roll, l.pitch, l.collective, l.yaw
	outs := l.lastOut
	l.mu.RUnlock()
	return l.snapshotLocked(roll, pitch, collective, yaw, outs)
}

func (l *Loop) snapshotLocked(roll, pitch, collective, yaw float64, outs Outputs) LoopStatus {
	return LoopStatus{
		Roll:         roll,
		Pitch:        pitch,
		Collective:   collective,
		Yaw:          yaw,
		Outputs:      outs,
		RotorState:   l.mixer.RotorState().String(),
		RotorSpeed:   l.mixer.RotorSpeed(),
		RotorDesired: l.mixer.DesiredRotorSpeed(),
		GovernorOut:  l.mixer.GovernorOutput(),
		MotorMask:    l.mixer.MotorMask(),
		TickCount:    l.tickCount.Load(),
		ErrorCount:   l.errorCount.Load(),
		ClampCount:   l.clampCount.Load(),
	}
}

// Mixer returns the loop's mixer for the pre-arm and diagnostic layers.
func (l *Loop) Mixer() *Mixer { return l.mixer }
