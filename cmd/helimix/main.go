// Command helimix runs the actuator mixing core as a daemon: it loads and
// validates the parameter file, starts the control loop against the
// configured output backend, and serves telemetry and metrics.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/JH-ESCL/helimix/internal/config"
	"github.com/JH-ESCL/helimix/internal/log"
	"github.com/JH-ESCL/helimix/internal/metrics"
	"github.com/JH-ESCL/helimix/pkg/debug"
	"github.com/JH-ESCL/helimix/pkg/heli"
	"github.com/JH-ESCL/helimix/pkg/telemetry"
)

func main() {
	paramsPath := flag.String("params", config.ParamsPath(""), "parameter file (YAML)")
	port := flag.String("port", config.TelemetryPort(), "telemetry HTTP port")
	metricsAddr := flag.String("metrics", config.MetricsAddr(), "prometheus listen address")
	rotorSpeed := flag.Float64("rotor-speed", 0, "initial desired rotor speed (0-1)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	debugTrace := flag.Bool("debug-trace", false, "print per-cycle actuator traces")
	flag.Parse()

	log.Init(*logLevel)
	debug.Trace = *debugTrace

	params, err := heli.LoadParams(*paramsPath)
	if err != nil {
		log.Warn("parameter file not loaded, using defaults", "path", *paramsPath, "err", err)
		params = heli.DefaultParams()
	}

	// Pre-arm gate: refuse to start the loop on an invalid configuration.
	if ok, reason := params.Check(); !ok {
		fmt.Fprintf(os.Stderr, "parameter check failed: %s\n", reason)
		os.Exit(1)
	}

	mixer, err := heli.NewMixer(params, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mixer init failed: %v\n", err)
		os.Exit(1)
	}
	mixer.SetDesiredRotorSpeed(*rotorSpeed)

	loop := heli.NewLoop(mixer, heli.LogOutput{})
	server := telemetry.NewServer(loop, *port)

	metrics.Register()
	go func() {
		if err := metrics.Serve(*metricsAddr); err != nil {
			log.Error("metrics listener failed", "err", err)
		}
	}()

	// Feed telemetry and metrics from the loop without coupling the core
	// to either. Websocket publishing is throttled to ~10Hz.
	rate := loop.Rate()
	publishEvery := uint64(1)
	if perSec := int(1 / rate.Seconds()); perSec > 10 {
		publishEvery = uint64(perSec / 10)
	}
	loop.OnTick = func(s heli.LoopStatus) {
		metrics.Update(s)
		if s.TickCount%publishEvery == 0 {
			server.PublishStatus(s)
		}
	}

	server.StartAsync()
	go loop.Run()

	log.Info("helimix started",
		"tail_type", params.TailType.String(),
		"update_rate_hz", params.UpdateRateHz,
		"motor_mask", fmt.Sprintf("0x%02x", mixer.MotorMask()))

	// Set up channel on which to send signal notifications. Buffered so a
	// signal arriving before we are ready is not lost.
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM)
	sig := <-interrupt

	log.Info("shutting down", "signal", sig.String())
	loop.Stop()
	if err := server.Shutdown(); err != nil {
		log.Warn("telemetry shutdown failed", "err", err)
	}
}
