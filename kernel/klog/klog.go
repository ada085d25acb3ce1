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

// Package klog provides the package-level logging surface used throughout
// the core: Debugf for scheduler/donation tracing, Infof for lifecycle
// events, and Warningf for contract violations observed just before the
// owning assertion panics. It is backed by logrus so that callers can
// switch between the kernel's human-readable text format and JSON without
// touching call sites.
package klog

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Format selects the rendering of log entries.
type Format int

const (
	// Text renders entries as "level msg key=val ...", the default.
	Text Format = iota
	// JSON renders entries as one JSON object per line.
	JSON
)

var std = logrus.New()

func init() {
	std.SetOutput(os.Stderr)
	std.SetLevel(logrus.InfoLevel)
}

// SetFormat switches the default logger's formatter.
func SetFormat(f Format) {
	switch f {
	case JSON:
		std.SetFormatter(&logrus.JSONFormatter{})
	default:
		std.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// SetOutput redirects the default logger's output.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

// SetDebug toggles Debugf visibility.
func SetDebug(on bool) {
	if on {
		std.SetLevel(logrus.DebugLevel)
		return
	}
	std.SetLevel(logrus.InfoLevel)
}

// Debugf logs scheduler-internal tracing: picks, preemptions, donation
// boosts, reaps. Silent unless SetDebug(true).
func Debugf(format string, args ...any) {
	std.Debugf(format, args...)
}

// Infof logs lifecycle events: thread creation, exit, boot milestones.
func Infof(format string, args ...any) {
	std.Infof(format, args...)
}

// Warningf logs a contract violation immediately before the caller panics,
// so the panic is never the sole record of what went wrong.
func Warningf(format string, args ...any) {
	std.Warningf(format, args...)
}

// Entry is a structured logger bound to fixed fields, such as a thread's
// tid and name, so every event logged through it carries that context
// without repeating it at each call site.
type Entry struct {
	e *logrus.Entry
}

// With returns an Entry carrying the given structured fields for every
// subsequent call.
func With(fields map[string]any) Entry {
	return Entry{e: std.WithFields(logrus.Fields(fields))}
}

// Debugf logs at debug level with the bound fields.
func (l Entry) Debugf(format string, args ...any) { l.e.Debugf(format, args...) }

// Infof logs at info level with the bound fields.
func (l Entry) Infof(format string, args ...any) { l.e.Infof(format, args...) }

// Warningf logs at warning level with the bound fields.
func (l Entry) Warningf(format string, args ...any) { l.e.Warningf(format, args...) }
