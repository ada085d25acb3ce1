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

// Package ksync supplies the minimal synchronization primitives needed to
// drive and test the core's priority donation engine: a counting
// semaphore and a donating mutex. The holder/waiter contract the core
// relies on for donation cannot be exercised in isolation, so this
// package is the thin boundary layer that actually wires it up. Neither
// primitive here touches the standard library's sync.Mutex; both are
// built strictly on the core's own Block/Unblock so that blocking a
// thread always goes through the scheduler that knows how to donate its
// priority.
//
// The waiter-queue bookkeeping follows the gate pattern used by
// golang.org/x/sync/semaphore (a FIFO of waiters, each woken explicitly
// by the releaser rather than by a broadcast), adapted here to wake the
// highest-priority waiter first, since this core is a strict-priority
// scheduler rather than FIFO-fair.
package ksync

import (
	"sort"

	"corekernel.dev/corekernel/kernel"
)

// Semaphore is a counting semaphore whose waiters block via the core's
// scheduler rather than a native channel or sync.Mutex.
type Semaphore struct {
	value   int
	waiters []*kernel.Thread
}

// NewSemaphore returns a semaphore initialized to value.
func NewSemaphore(value int) *Semaphore {
	if value < 0 {
		panic("ksync: NewSemaphore: negative initial value")
	}
	return &Semaphore{value: value}
}

// Down decrements the semaphore, blocking the calling kernel's current
// thread while the value is zero.
func (s *Semaphore) Down(k *kernel.Kernel) {
	for {
		old := k.IntrDisable()
		if s.value > 0 {
			s.value--
			k.IntrSetLevel(old)
			return
		}
		s.waiters = append(s.waiters, k.Current())
		k.Block()
		k.IntrSetLevel(old)
	}
}

// Up increments the semaphore and, if any thread is waiting, wakes the
// highest-priority waiter (ties broken by wait order). Up does not itself
// preempt the caller beyond the core's usual "unblock never preempts"
// rule, but it does run the max-priority preemption test afterward, the
// way a lock release should.
func (s *Semaphore) Up(k *kernel.Kernel) {
	old := k.IntrDisable()
	s.value++
	var woken *kernel.Thread
	if len(s.waiters) > 0 {
		sort.SliceStable(s.waiters, func(i, j int) bool {
			return s.waiters[i].Priority() > s.waiters[j].Priority()
		})
		woken, s.waiters = s.waiters[0], s.waiters[1:]
	}
	if woken != nil {
		k.Unblock(woken)
	}
	k.IntrSetLevel(old)
	k.TestMaxPriority()
}
