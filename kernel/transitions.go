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

// Block parks the current thread: the calling thread must not be in
// interrupt context, and the caller must have already disabled interrupts
// (Block itself neither disables nor restores them). It sets the current
// thread BLOCKED and invokes the scheduler.
func (k *Kernel) Block() {
	k.assertNotIntrContext("Block")
	k.assertIntrOff("Block")
	k.current.status = Blocked
	k.scheduleLocked()
}

// Unblock moves t from BLOCKED to READY: t must be BLOCKED. It is
// priority-inserted into the ready list and marked READY. Unblock never
// preempts the caller — callers that want preemption call
// TestMaxPriority afterward.
func (k *Kernel) Unblock(t *Thread) {
	old := k.IntrDisable()
	defer k.IntrSetLevel(old)
	k.unblockLocked(t)
}

func (k *Kernel) unblockLocked(t *Thread) {
	if t.status != Blocked {
		panic("kernel: Unblock: thread " + t.name + " is not BLOCKED")
	}
	t.seq = k.nextSeq()
	k.ready.insert(t)
	t.status = Ready
}

// Yield gives up the CPU without blocking: the caller must not be in
// interrupt context. Unless the current thread is idle, it is
// priority-inserted back into the ready list; the thread transitions
// RUNNING to READY via the scheduler.
func (k *Kernel) Yield() {
	k.assertNotIntrContext("Yield")
	old := k.IntrDisable()
	if k.current != k.idle {
		k.current.seq = k.nextSeq()
		k.ready.insert(k.current)
	}
	k.current.status = Ready
	k.scheduleLocked()
	k.IntrSetLevel(old)
}

// Sleep parks the current thread (which must not be idle) until the given
// tick: it records wakeupTick, is appended to the sleep list, and blocks.
func (k *Kernel) Sleep(wakeTick int64) {
	if k.current == k.idle {
		panic("kernel: Sleep: idle thread cannot sleep")
	}
	old := k.IntrDisable()
	k.current.wakeupTick = wakeTick
	k.sleeping.insert(k.current)
	k.Block()
	k.IntrSetLevel(old)
}

// Awake wakes every sleeper with wakeupTick <= now: each is removed from
// the sleep list and unblocked.
func (k *Kernel) Awake(now int64) {
	old := k.IntrDisable()
	k.awakeLocked(now)
	k.IntrSetLevel(old)
}

func (k *Kernel) awakeLocked(now int64) {
	for _, t := range k.sleeping.awake(now) {
		k.unblockLocked(t)
		t.log().Debugf("woke at tick %d", now)
	}
}

// TestMaxPriority yields the current thread if a higher-priority thread
// is ready: if the ready list is non-empty and its front outranks the
// current thread, yield. Must not be called from interrupt context.
func (k *Kernel) TestMaxPriority() {
	k.assertNotIntrContext("TestMaxPriority")
	old := k.IntrDisable()
	front := k.ready.front()
	shouldYield := front != nil && front.priority > k.current.priority
	k.IntrSetLevel(old)
	if shouldYield {
		k.Yield()
	}
}
