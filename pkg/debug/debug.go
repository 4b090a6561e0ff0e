// Package debug provides global debug logging flags
package debug

import "fmt"

// Enabled controls whether debug logging is active
var Enabled bool

// Trace controls whether per-cycle actuator traces are shown.
// Use --debug-trace to enable these very verbose logs.
var Trace bool

// Log prints a message only if debug mode is enabled
func Log(format string, args ...interface{}) {
	if Enabled {
		fmt.Printf(format, args...)
	}
}

// Logln prints a message with newline only if debug mode is enabled
func Logln(msg string) {
	if Enabled {
		fmt.Println(msg)
	}
}

// TraceLog prints a message only if per-cycle tracing is enabled
func TraceLog(format string, args ...interface{}) {
	if Trace {
		fmt.Printf(format, args...)
	}
}
