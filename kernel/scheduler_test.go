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

package kernel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestIdleRunsWhenReadyListIsEmpty drives the sole thread to sleep with
// nothing else runnable, forcing the scheduler to dispatch into idle. A
// concurrent goroutine plays the tick source, waking the sleeper after a
// short real delay. This exercises idle's loop across more than one
// iteration without anything else ready, which is exactly the path where
// idle must keep re-enabling interrupts rather than wedge the kernel.
func TestIdleRunsWhenReadyListIsEmpty(t *testing.T) {
	k := newTestKernel(t, 10)

	awakened := make(chan struct{})
	go func() {
		time.Sleep(20 * time.Millisecond)
		k.Awake(100)
		close(awakened)
	}()

	k.Sleep(100)

	select {
	case <-awakened:
	case <-time.After(2 * time.Second):
		t.Fatal("tick-source goroutine never completed")
	}
}

// TestTickAdvancesCountersAndArmsYield checks that Tick classifies the
// running thread and arms a deferred yield once the time slice is
// exhausted, without switching threads itself.
func TestTickAdvancesCountersAndArmsYield(t *testing.T) {
	k := NewKernel(Config{TimeSlice: 2, Pages: &PagePool{Limit: 8}})
	k.Init(10)

	k.Tick(1)
	idle, _, kernelT := k.Ticks()
	require.Equal(t, int64(0), idle)
	require.Equal(t, int64(1), kernelT, "the initial thread is not user-memory-backed")

	before := k.Current()
	k.Tick(2) // time slice exhausted: must arm a yield, not perform one
	require.Same(t, before, k.Current(), "Tick must never itself switch threads")

	k.TickReturn() // now the armed yield takes effect
}
