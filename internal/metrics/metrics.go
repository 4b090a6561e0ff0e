// Package metrics registers prometheus instrumentation for the control
// loop and serves it on a dedicated listener.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JH-ESCL/helimix/pkg/heli"
)

var (
	rotorSpeed = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "helimix_rotor_speed",
		Help: "Estimated or measured main rotor speed (0-1).",
	})

	rotorDesired = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "helimix_rotor_desired_speed",
		Help: "Commanded main rotor speed (0-1).",
	})

	governorOut = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "helimix_governor_output",
		Help: "Closed-loop rotor speed correction.",
	})

	channelOutput = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "helimix_channel_output",
			Help: "Normalized actuator command per output channel.",
		},
		[]string{"channel"},
	)

	totalTicks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "helimix_loop_ticks_total",
		Help: "Control loop cycles executed.",
	})

	totalClamps = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "helimix_slew_clamps_total",
		Help: "Output slew-limit engagements.",
	})

	totalErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "helimix_output_errors_total",
		Help: "Failed output channel writes.",
	})
)

var lastTicks, lastClamps, lastErrors uint64

// Register installs the collectors into the default registry.
func Register() {
	prometheus.MustRegister(rotorSpeed)
	prometheus.MustRegister(rotorDesired)
	prometheus.MustRegister(governorOut)
	prometheus.MustRegister(channelOutput)
	prometheus.MustRegister(totalTicks)
	prometheus.MustRegister(totalClamps)
	prometheus.MustRegister(totalErrors)
}

// Update pushes a loop snapshot into the collectors. Called from the
// control loop's OnTick hook; counter deltas are derived from the
// snapshot's monotonic counts.
func Update(s heli.LoopStatus) {
	rotorSpeed.Set(s.RotorSpeed)
	rotorDesired.Set(s.RotorDesired)
	governorOut.Set(s.GovernorOut)

	vec := s.Outputs.Vector()
	for ch := 0; ch < heli.NumChannels; ch++ {
		if s.MotorMask&(1<<ch) == 0 {
			continue
		}
		channelOutput.WithLabelValues(strconv.Itoa(ch)).Set(vec[ch])
	}

	if s.TickCount > lastTicks {
		totalTicks.Add(float64(s.TickCount - lastTicks))
		lastTicks = s.TickCount
	}
	if s.ClampCount > lastClamps {
		totalClamps.Add(float64(s.ClampCount - lastClamps))
		lastClamps = s.ClampCount
	}
	if s.ErrorCount > lastErrors {
		totalErrors.Add(float64(s.ErrorCount - lastErrors))
		lastErrors = s.ErrorCount
	}
}

// Serve exposes /metrics on its own listener. Blocks.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
