// Command servotest cycles the swashplate and tail outputs through the
// scripted ground-test oscillation and prints the resulting channel
// values. Run with the airframe's parameter file and watch the linkages.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/JH-ESCL/helimix/internal/config"
	"github.com/JH-ESCL/helimix/internal/log"
	"github.com/JH-ESCL/helimix/pkg/heli"
)

func main() {
	paramsPath := flag.String("params", config.ParamsPath(""), "parameter file (YAML)")
	seconds := flag.Float64("seconds", 12, "test duration")
	flag.Parse()

	log.Init("info")

	params, err := heli.LoadParams(*paramsPath)
	if err != nil {
		log.Warn("parameter file not loaded, using defaults", "path", *paramsPath, "err", err)
		params = heli.DefaultParams()
	}
	if ok, reason := params.Check(); !ok {
		fmt.Fprintf(os.Stderr, "parameter check failed: %s\n", reason)
		os.Exit(1)
	}

	mixer, err := heli.NewMixer(params, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mixer init failed: %v\n", err)
		os.Exit(1)
	}

	dt := time.Second / time.Duration(params.UpdateRateHz)
	ticker := time.NewTicker(dt)
	defer ticker.Stop()

	deadline := time.Now().Add(time.Duration(*seconds * float64(time.Second)))
	var cycle int
	for now := range ticker.C {
		if now.After(deadline) {
			break
		}
		outs := mixer.ServoTest(dt)
		cycle++
		// Print at ~5Hz so the output stays readable.
		if cycle%(params.UpdateRateHz/5+1) == 0 {
			fmt.Printf("swash=[%+.3f %+.3f %+.3f] tail=%+.3f\n",
				outs.Swash[0], outs.Swash[1], outs.Swash[2], outs.TailServo)
		}
	}
	mixer.ResetServoTest()
	fmt.Println("servo test complete")
}
