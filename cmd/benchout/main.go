// Command benchout drives a single output channel to an explicit command
// for bench testing. Motor sequence numbers follow the airframe layout:
// 1-3 swashplate servos, 4 tail, 5 auxiliary, 6 main rotor.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/JH-ESCL/helimix/internal/config"
	"github.com/JH-ESCL/helimix/internal/log"
	"github.com/JH-ESCL/helimix/pkg/debug"
	"github.com/JH-ESCL/helimix/pkg/heli"
)

func main() {
	paramsPath := flag.String("params", config.ParamsPath(""), "parameter file (YAML)")
	seq := flag.Int("seq", 0, "motor sequence number, 1-6")
	value := flag.Float64("value", 0, "normalized command to drive")
	seconds := flag.Float64("seconds", 2, "hold duration")
	flag.Parse()

	log.Init("info")
	debug.Trace = true

	params, err := heli.LoadParams(*paramsPath)
	if err != nil {
		params = heli.DefaultParams()
	}
	mixer, err := heli.NewMixer(params, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mixer init failed: %v\n", err)
		os.Exit(1)
	}

	channel, out, err := mixer.OutputTestSeq(*seq, *value)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	writer := heli.LogOutput{}
	dt := time.Second / time.Duration(params.UpdateRateHz)
	fmt.Printf("driving channel %d to %+.3f for %.1fs\n", channel, out, *seconds)
	for end := time.Now().Add(time.Duration(*seconds * float64(time.Second))); time.Now().Before(end); {
		if err := writer.WriteChannel(channel, out); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		time.Sleep(dt)
	}
	fmt.Println("\nbench output complete")
}
