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

package ksync

import "corekernel.dev/corekernel/kernel"

// Lock is a mutual-exclusion lock layered on a binary Semaphore. Unlike a
// bare semaphore, Lock participates in the core's donation engine: a
// thread blocking on a held Lock donates its effective priority to the
// holder (and transitively up the wait chain), and the holder's priority
// reverts on release.
type Lock struct {
	sema   *Semaphore
	holder *kernel.Thread
}

// NewLock returns an unheld lock.
func NewLock() *Lock {
	return &Lock{sema: NewSemaphore(1)}
}

// Holder implements kernel.Lock, satisfying the holder/waiter contract
// the donation engine walks.
func (l *Lock) Holder() *kernel.Thread {
	return l.holder
}

// Acquire blocks until the lock is free, donating the caller's priority
// to the current holder (and transitively beyond) if it is already held.
func (l *Lock) Acquire(k *kernel.Kernel) {
	self := k.Current()
	if l.holder != nil {
		k.AddDonation(l.holder, self, l)
		k.DonatePriority()
	}
	l.sema.Down(k)
	l.holder = self
	k.ClearWait(self)
}

// Release gives up the lock, strips any donations attributable to it
// from the holder's donor set, recomputes the holder's effective
// priority (likely reverting it toward its own floor priority), and
// wakes the next waiter.
func (l *Lock) Release(k *kernel.Kernel) {
	holder := l.holder
	if holder == nil || holder != k.Current() {
		panic("ksync: Release: caller does not hold the lock")
	}
	l.holder = nil
	k.RemoveWithLock(holder, l)
	k.RefreshPriority(holder)
	l.sema.Up(k)
}

// IsHeld reports whether the lock is currently held by anyone.
func (l *Lock) IsHeld() bool {
	return l.holder != nil
}
