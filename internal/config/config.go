// Copyright 2026 The corekernel Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config holds the boot-time configuration of the kernelctl
// harness: scheduler tuning, the logging sink, and the flag/TOML
// plumbing that populates them.
package config

import (
	"flag"
	"fmt"

	"github.com/BurntSushi/toml"
)

// Reused flag names, kept as constants and registered in one place.
const (
	flagPriMin     = "pri-min"
	flagPriMax     = "pri-max"
	flagTimeSlice  = "time-slice"
	flagScheduler  = "o"
	flagLogFormat  = "log-format"
	flagDebug      = "debug"
	flagConfigFile = "config"
)

// Config is the resolved boot configuration, populated from flags and
// optionally overlaid from a TOML file named by -config.
type Config struct {
	// PriMin and PriMax bound the priority range threads may be created
	// or set at.
	PriMin int `toml:"pri_min"`
	PriMax int `toml:"pri_max"`

	// TimeSlice is the number of ticks a thread runs before the tick
	// handler arms a deferred yield.
	TimeSlice int `toml:"time_slice"`

	// Scheduler selects the scheduling policy. Only "priority" is
	// implemented; "mlfqs" is recognized so existing boot scripts that
	// pass it do not fail flag parsing, but is rejected at Validate time
	// since the 4.4BSD scheduler is out of scope for this core.
	Scheduler string `toml:"scheduler"`

	// LogFormat selects klog's output encoding: "text" or "json".
	LogFormat string `toml:"log_format"`

	// Debug enables debug-level log output.
	Debug bool `toml:"debug"`
}

// Default returns a Config populated with the core's built-in defaults,
// matching scheduler.go's DefaultPriMin/DefaultPriMax/DefaultTimeSlice.
func Default() *Config {
	return &Config{
		PriMin:    0,
		PriMax:    63,
		TimeSlice: 4,
		Scheduler: "priority",
		LogFormat: "text",
	}
}

// RegisterFlags registers the flags that populate c on a flag.FlagSet.
func (c *Config) RegisterFlags(flagSet *flag.FlagSet) {
	flagSet.IntVar(&c.PriMin, flagPriMin, c.PriMin, "minimum thread priority")
	flagSet.IntVar(&c.PriMax, flagPriMax, c.PriMax, "maximum thread priority")
	flagSet.IntVar(&c.TimeSlice, flagTimeSlice, c.TimeSlice, "ticks a thread runs before a yield is armed")
	flagSet.StringVar(&c.Scheduler, flagScheduler, c.Scheduler, `scheduling policy: "priority" (default) or "mlfqs" (recognized, not implemented)`)
	flagSet.StringVar(&c.LogFormat, flagLogFormat, c.LogFormat, "log format: text (default) or json")
	flagSet.BoolVar(&c.Debug, flagDebug, c.Debug, "enable debug logging")
}

// LoadFile overlays c with the contents of a TOML file. Only fields
// present in the file are overwritten.
func (c *Config) LoadFile(path string) error {
	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("config: decoding %s: %w", path, err)
	}
	return nil
}

// Validate rejects configurations the core cannot actually run,
// including the recognized-but-unimplemented "mlfqs" scheduler.
func (c *Config) Validate() error {
	if c.PriMin >= c.PriMax {
		return fmt.Errorf("config: pri-min (%d) must be less than pri-max (%d)", c.PriMin, c.PriMax)
	}
	if c.TimeSlice <= 0 {
		return fmt.Errorf("config: time-slice must be positive, got %d", c.TimeSlice)
	}
	switch c.Scheduler {
	case "priority":
	case "mlfqs":
		return fmt.Errorf("config: scheduler %q is recognized but not implemented by this core", c.Scheduler)
	default:
		return fmt.Errorf("config: unknown scheduler %q", c.Scheduler)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log-format %q", c.LogFormat)
	}
	return nil
}

// ConfigFlagName returns the name of the -config flag, which RegisterFlags
// does not register; kernelctl's boot command registers it on the same
// flag set and reads it after parsing.
func ConfigFlagName() string {
	return flagConfigFile
}
