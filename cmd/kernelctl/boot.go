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

package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"

	"corekernel.dev/corekernel/internal/config"
	"corekernel.dev/corekernel/kernel"
	"corekernel.dev/corekernel/kernel/klog"
	"corekernel.dev/corekernel/kernel/ksync"
)

// bootCommand implements subcommands.Command for "boot": it brings up a
// Kernel, runs a small demo workload that contends on a lock (to exercise
// the donation engine under real scheduling), and drives the tick source
// for a fixed duration before reporting the tick counters.
type bootCommand struct {
	cfg        config.Config
	configPath string
	runFor     time.Duration
}

// Name implements subcommands.Command.Name.
func (*bootCommand) Name() string { return "boot" }

// Synopsis implements subcommands.Command.Synopsis.
func (*bootCommand) Synopsis() string { return "boot the thread core and run the demo workload" }

// Usage implements subcommands.Command.Usage.
func (*bootCommand) Usage() string { return "boot [flags]\n" }

// SetFlags implements subcommands.Command.SetFlags.
func (b *bootCommand) SetFlags(f *flag.FlagSet) {
	*b.cfgPtr() = *config.Default()
	b.cfg.RegisterFlags(f)
	f.StringVar(&b.configPath, config.ConfigFlagName(), "", "path to a TOML config file overlaying the flags above")
	f.DurationVar(&b.runFor, "run-for", 2*time.Second, "how long to drive the simulated tick source")
}

func (b *bootCommand) cfgPtr() *config.Config { return &b.cfg }

// Execute implements subcommands.Command.Execute.
func (b *bootCommand) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if err := loadConfig(&b.cfg, b.configPath); err != nil {
		fmt.Println(err)
		return subcommands.ExitUsageError
	}

	switch b.cfg.LogFormat {
	case "json":
		klog.SetFormat(klog.JSON)
	default:
		klog.SetFormat(klog.Text)
	}
	klog.SetDebug(b.cfg.Debug)

	k := kernel.NewKernel(kernel.Config{
		PriMin:    b.cfg.PriMin,
		PriMax:    b.cfg.PriMax,
		TimeSlice: b.cfg.TimeSlice,
		Pages:     &kernel.PagePool{Limit: 64},
	})
	k.Init((b.cfg.PriMin + b.cfg.PriMax) / 2)

	lock := ksync.NewLock()
	shared := 0

	worker := func(aux any) {
		name := aux.(string)
		for i := 0; i < 5; i++ {
			lock.Acquire(k)
			shared++
			klog.Infof("%s: shared=%d", name, shared)
			lock.Release(k)
			k.Yield()
		}
	}

	k.Create("low", b.cfg.PriMin+1, worker, "low")
	k.Create("mid", (b.cfg.PriMin+b.cfg.PriMax)/2, worker, "mid")
	k.Create("high", b.cfg.PriMax-1, worker, "high")

	deadline := time.Now().Add(b.runFor)
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	var tick int64
	for now := range ticker.C {
		tick++
		k.Tick(tick)
		k.TickReturn()
		if now.After(deadline) {
			break
		}
	}

	idle, user, kernelT := k.Ticks()
	fmt.Printf("kernelctl: ran %d ticks (idle=%d user=%d kernel=%d), shared=%d\n", tick, idle, user, kernelT, shared)
	return subcommands.ExitSuccess
}
