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

import (
	"testing"

	"github.com/stretchr/testify/require"

	"corekernel.dev/corekernel/kernel"
)

func newTestKernel(t *testing.T, initialPriority int) *kernel.Kernel {
	t.Helper()
	k := kernel.NewKernel(kernel.Config{Pages: &kernel.PagePool{Limit: 64}})
	k.Init(initialPriority)
	return k
}

// TestSemaphoreWakesHighestPriorityWaiter checks that Up wakes the
// highest-priority waiter rather than the first to have called Down.
func TestSemaphoreWakesHighestPriorityWaiter(t *testing.T) {
	k := newTestKernel(t, 5)
	sem := NewSemaphore(0)

	var order []string
	k.Create("low", 10, func(any) {
		sem.Down(k)
		order = append(order, "low")
	}, nil)
	k.Create("high", 20, func(any) {
		sem.Down(k)
		order = append(order, "high")
	}, nil)
	require.Equal(t, 0, k.ReadyLen(), "both waiters block inside Down before anyone posts")

	sem.Up(k)
	k.Yield()
	require.Equal(t, []string{"high"}, order)

	sem.Up(k)
	k.Yield()
	require.Equal(t, []string{"high", "low"}, order)
}

// TestLockSingleDonation covers the basic single-donation scenario: a
// low-priority holder blocks a high-priority acquirer and is boosted to
// the acquirer's priority for as long as it holds the lock, reverting on
// release.
func TestLockSingleDonation(t *testing.T) {
	k := newTestKernel(t, 5)
	lock := NewLock()

	var observedWhileHeld int
	holderDone := make(chan struct{})

	k.Create("holder", 20, func(any) {
		lock.Acquire(k)
		k.Sleep(1) // give up the CPU while still holding the lock
		observedWhileHeld = k.GetPriority()
		lock.Release(k)
		close(holderDone)
	}, nil)

	// holder ran to the Sleep call and parked; the lock is held, un-donated.
	require.True(t, lock.IsHeld())
	require.Equal(t, 20, lock.Holder().Priority())

	k.Create("acquirer", 30, func(any) {
		lock.Acquire(k)
		lock.Release(k)
	}, nil)

	// acquirer blocked on the held lock, donating up to holder even though
	// holder is asleep and cannot run yet.
	require.Equal(t, 30, lock.Holder().Priority())

	k.Awake(1)
	k.Yield()

	select {
	case <-holderDone:
	default:
		t.Fatal("holder did not run to completion")
	}
	require.Equal(t, 30, observedWhileHeld, "holder must run boosted while still holding the lock")
	require.Equal(t, 5, k.GetPriority(), "main must be unaffected by another thread's donation")
}

// TestLockNestedDonation covers nested donation: low holds lockA and is
// blocked on by mid; mid holds lockB and is blocked on by high. High's
// priority must propagate through mid all the way to low.
func TestLockNestedDonation(t *testing.T) {
	k := newTestKernel(t, 5)
	lockA := NewLock()
	lockB := NewLock()

	var order []string

	k.Create("low", 10, func(any) {
		lockA.Acquire(k)
		k.Sleep(1)
		order = append(order, "low")
		lockA.Release(k)
	}, nil)
	require.Equal(t, 10, lockA.Holder().Priority())

	k.Create("mid", 20, func(any) {
		lockB.Acquire(k)
		lockA.Acquire(k) // blocks on low, donates 20
		order = append(order, "mid")
		lockA.Release(k)
		lockB.Release(k)
	}, nil)
	require.Equal(t, 20, lockA.Holder().Priority(), "mid's priority must reach low directly")

	k.Create("high", 30, func(any) {
		lockB.Acquire(k) // blocks on mid, donates 30; must propagate to low via mid's own wait
		order = append(order, "high")
		lockB.Release(k)
	}, nil)
	require.Equal(t, 30, lockA.Holder().Priority(), "high's donation must propagate through mid to low")
	require.Equal(t, 30, lockB.Holder().Priority(), "mid itself must be boosted too")

	k.Awake(1)
	k.Yield()

	require.Equal(t, []string{"low", "mid", "high"}, order)
	require.Equal(t, 5, k.GetPriority())
}

// TestLockMultipleDonationsRevertsToHighestRemaining covers the
// multiple-donor scenario: a thread holding two locks, each contended by
// a different higher-priority waiter, keeps the higher of the two
// donated priorities until it releases the lock that donor was waiting
// on, reverting progressively rather than all at once.
func TestLockMultipleDonationsRevertsToHighestRemaining(t *testing.T) {
	k := newTestKernel(t, 5)
	lockA := NewLock()
	lockB := NewLock()

	var priWithBoth, priAfterB, priAfterA int
	done := make(chan struct{})

	k.Create("holder", 10, func(any) {
		lockA.Acquire(k)
		lockB.Acquire(k)
		k.Sleep(1)
		priWithBoth = k.GetPriority()
		lockB.Release(k)
		priAfterB = k.GetPriority()
		lockA.Release(k)
		priAfterA = k.GetPriority()
		close(done)
	}, nil)

	k.Create("donor-a", 20, func(any) {
		lockA.Acquire(k)
		lockA.Release(k)
	}, nil)
	require.Equal(t, 20, lockA.Holder().Priority())

	k.Create("donor-b", 30, func(any) {
		lockB.Acquire(k)
		lockB.Release(k)
	}, nil)
	require.Equal(t, 30, lockA.Holder().Priority(), "holder must reflect the higher of its two donors")

	k.Awake(1)
	k.Yield()

	select {
	case <-done:
	default:
		t.Fatal("holder did not run to completion")
	}
	require.Equal(t, 30, priWithBoth, "both locks held: effective priority is the max of both donors")
	require.Equal(t, 20, priAfterB, "dropping lockB must revert to the remaining donor-a's priority")
	require.Equal(t, 10, priAfterA, "dropping lockA must revert to holder's own init priority")
}
