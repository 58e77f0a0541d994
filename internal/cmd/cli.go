// Package cmd holds the jaylinkctl command implementations, wired together
// by kong in cmd/jaylinkctl.
package cmd

import "time"

// CLI is the root command structure parsed by kong.
type CLI struct {
	Log   LogConfig   `embed:"" prefix:"log."`
	Probe ProbeConfig `embed:"" prefix:"probe."`

	ConfigFile string `name:"config" help:"Path to a configuration file" type:"path"`

	List   List          `cmd:"" help:"List attached probes"`
	Info   Info          `cmd:"" help:"Show firmware, hardware and capability information"`
	Status Status        `cmd:"" help:"Show target pin states and reference voltage"`
	Power  Power         `cmd:"" help:"Switch the target power supply on or off"`
	Reset  Reset         `cmd:"" help:"Drive the target reset signal"`
	Speed  Speed         `cmd:"" help:"Set the target interface speed"`
	Config ConfigCommand `cmd:"" help:"Probe configuration data and tool config templates"`
}

// LogConfig represents the logging configuration shared by all commands.
type LogConfig struct {
	Level     string `help:"Log level (trace|debug|info|warn|error)" default:"info" env:"JAYLINK_LOG_LEVEL"`
	File      string `help:"Write logs to this file instead of the console" env:"JAYLINK_LOG_FILE"`
	TraceFile string `help:"Write a hex dump of all USB transfers to this file" env:"JAYLINK_TRACE_FILE"`
}

// ProbeConfig represents the probe selection and transport configuration
// shared by all commands that open a device.
type ProbeConfig struct {
	Serial        string        `help:"Serial number of the probe to open" env:"JAYLINK_SERIAL"`
	Timeout       time.Duration `help:"Per-transfer timeout" default:"1s" env:"JAYLINK_TIMEOUT"`
	Retries       int           `help:"Consecutive timeouts tolerated per transfer" default:"2"`
	StrictFraming bool          `help:"Treat transport framing misuse as an error instead of a warning"`
}
