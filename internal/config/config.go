package config

import (
	"math"
	"time"
)

const (
	// Estimation
	HistoryCapacity = 6 // Samples retained for the deceleration estimate
	RecencyOffset   = 1 // Compare the head against the previous sample

	// Tick cadence: the loop runs every TicksPerUpdate host ticks of a
	// HostTickRate Hz host, 1/6 s by default.
	HostTickRate       = 60
	TicksPerUpdate     = 10
	DefaultTickPeriod  = time.Second * TicksPerUpdate / HostTickRate
	DefaultTickSeconds = float64(TicksPerUpdate) / HostTickRate

	// Sensors
	SensorStaleAfter   = 2 * time.Second // Readings older than this are rejected
	WheelCircumference = 2.105           // Metres, 700x25c road wheel
	BLEScanTimeout     = 10 * time.Second
	DefaultBaudRate    = 19200

	// Demo mode
	DemoCruiseSpeed = 30.0 // m/s
	DemoBrakeDecel  = 6.0  // m/s²

	// Terminal UI
	TargetFPS        = 30
	SpeedTraceLength = 120 // Samples drawn in the speed sparkline

	// Diagnostics log, used while the terminal UI owns stdout
	DefaultLogFile = "brake-hud.log"
	LogMaxSizeMB   = 5
	LogMaxBackups  = 3

	// App
	AppName    = "BRAKE-HUD"
	AppVersion = "1.0"
)

// TickSeconds converts a tick period to seconds for the estimator. A period
// that is a whole number of host ticks, as time.Duration truncates it, maps to
// the exact fraction n/HostTickRate so the default 1/6 s gives a factor of 6.
func TickSeconds(d time.Duration) float64 {
	n := int64(math.Round(d.Seconds() * HostTickRate))
	if n > 0 && time.Duration(n)*time.Second/HostTickRate == d {
		return float64(n) / HostTickRate
	}
	return d.Seconds()
}
