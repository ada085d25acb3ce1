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
	"corekernel.dev/corekernel/kernel/archsim"
	"corekernel.dev/corekernel/kernel/klog"
)

// Create allocates a page, builds the new thread's initial dispatch
// state, allocates a TID, unblocks the thread onto the ready list, and
// tests whether the new thread should preempt the caller. It returns
// TIDError if the page allocator is exhausted, leaving no partial state
// behind.
func (k *Kernel) Create(name string, priority int, fn func(aux any), aux any) TID {
	if priority < k.priMin || priority > k.priMax {
		panic("kernel: Create: priority out of range")
	}

	page, ok := k.pages.Alloc()
	if !ok {
		klog.Warningf("kernel: Create(%q): page allocator exhausted", name)
		return TIDError
	}

	t := &Thread{
		magic:        threadMagic,
		name:         name,
		status:       Blocked,
		frame:        archsim.NewFrame(),
		priority:     priority,
		initPriority: priority,
		donations:    make(map[*Thread]struct{}),
		page:         page,
	}

	old := k.IntrDisable()
	t.id = k.tids.allocate()
	t.seq = k.nextSeq()
	k.IntrSetLevel(old)

	go k.runTrampoline(t, fn, aux)

	k.Unblock(t)
	t.log().Infof("created, priority=%d", t.priority)

	k.TestMaxPriority()
	return t.id
}

// runTrampoline is the kernel-thread trampoline: enable interrupts, call
// function(aux), then exit. It returns only once the thread has been
// reaped, when Kill releases its frame and the goroutine unwinds.
func (k *Kernel) runTrampoline(t *Thread, fn func(aux any), aux any) {
	t.frame.Enter()
	k.IntrSetLevel(IntrOn)
	fn(aux)
	k.Exit()
}

// runIdle is the idle thread's body: forever, disable interrupts, block,
// and on resume unconditionally re-enable interrupts before looping back
// to block again. This does NOT restore a saved level: idle is always
// entered with interrupts already off (whoever scheduled it away had
// disabled them), so restoring "the old level" would just restore Off
// forever and wedge the kernel. Unconditionally enabling is what lets the
// tick source and other threads make progress while nothing is ready.
// "Halt" is simulated by immediately looping back to block, since this
// port has no real hardware HLT instruction to wait on.
func (k *Kernel) runIdle(self *Thread) {
	self.frame.Enter()
	for {
		k.IntrDisable()
		self.status = Blocked
		k.scheduleLocked()
		k.IntrEnable()
	}
}

// Exit disables interrupts and transitions the current thread from
// RUNNING to DYING via the scheduler. It does not return to its caller in
// practice; the calling goroutine is parked inside the scheduler's
// architectural switch until the next scheduler invocation reaps it.
func (k *Kernel) Exit() {
	k.IntrDisable()
	k.current.status = Dying
	k.current.log().Infof("exiting")
	k.scheduleLocked()
}
