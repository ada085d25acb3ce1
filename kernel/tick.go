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

import "sync/atomic"

// Tick is the timer tick handler. It is driven by the boot harness's
// timer source, one call per simulated timer interrupt,
// and must not itself switch threads — it only classifies the current
// thread, wakes due sleepers, and arms a deferred yield at the slice
// boundary for the interrupt-return path (TickReturn) to honor.
//
// Unlike the rest of the core's public API, Tick acquires mu directly
// rather than through IntrDisable/IntrSetLevel: it represents the
// hardware forcibly interrupting whatever is running, not kernel code
// choosing to mask itself, so it must not participate in the saved-level
// bookkeeping that the disable/restore pairs rely on.
func (k *Kernel) Tick(now int64) {
	k.mu.Lock()
	atomic.StoreInt32(&k.inTickHandler, 1)
	defer func() {
		atomic.StoreInt32(&k.inTickHandler, 0)
		k.mu.Unlock()
	}()

	switch {
	case k.current == k.idle:
		k.idleTicks++
	case k.current.pmlv:
		k.userTicks++
	default:
		k.kernelTicks++
	}

	k.awakeLocked(now)

	k.threadTicks++
	if k.threadTicks >= k.timeSlice {
		k.IntrYieldOnReturn()
	}
}

// TickReturn is the interrupt-return path: it must be called once after
// every Tick, outside of interrupt context, and performs the deferred
// yield Tick armed, if any. Splitting this from Tick keeps the handler
// itself free of any thread switch.
func (k *Kernel) TickReturn() {
	if k.consumeYieldOnReturn() {
		k.Yield()
	}
}

// Ticks returns the idle/user/kernel tick counters accumulated since boot,
// for diagnostics and tests.
func (k *Kernel) Ticks() (idle, user, kernelT int64) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.idleTicks, k.userTicks, k.kernelTicks
}
