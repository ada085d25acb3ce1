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

// Package archsim is the architecture boundary: the one place in the core
// that performs a raw context switch. On real x86-64 this is an asm leaf
// that saves general registers, segment selectors, flags, and the stack
// pointer into the current TCB's interrupt frame, then restores the
// successor's frame via iret. Go gives no portable access to the stack
// pointer or instruction pointer of a running goroutine, so this package
// realizes the same contract with a rendezvous channel per thread: each
// thread owns a dedicated goroutine parked on its Frame, and Launch hands
// control to the successor's goroutine exactly where a real iret would
// resume it, then parks the caller exactly where a real asm leaf would
// block waiting to be resumed in turn.
//
// Do not "simplify" this into a goroutine pool, a channel of closures, or
// anything that lets more than one Frame run concurrently: the core above
// this package relies on the invariant that at most one thread's logic is
// ever executing, which is what lets it treat kernel-wide interrupt
// disable/enable as its only synchronization primitive. That invariant is
// the entire contract of this leaf.
package archsim

// Frame is the simulated architectural register file for one thread. It
// stands in for the saved general registers, segment selectors,
// instruction pointer, stack pointer, and flags that a real interrupt
// frame holds; here, "resuming" a thread is delivering on resume instead
// of restoring a program counter.
type Frame struct {
	resume chan struct{}
	killed chan struct{}
}

// NewFrame allocates a Frame for a thread that has not yet run. The
// caller is responsible for starting the thread's dedicated goroutine and
// calling Enter from it before any Launch targets this Frame — except
// for the bootstrap thread's Frame, on which Enter is never called: its
// "goroutine" is whichever one is already running when it is created, and
// a later Launch resumes it inside the Launch that first switched it out.
func NewFrame() *Frame {
	return &Frame{
		resume: make(chan struct{}),
		killed: make(chan struct{}),
	}
}

// Enter blocks the calling goroutine until it is dispatched, either by the
// first Launch that targets this Frame (the kernel-thread trampoline path)
// or by a later one (the out_iret path, resuming exactly where a prior
// Launch parked it).
func (f *Frame) Enter() {
	<-f.resume
}

// Launch performs the architectural switch from the current thread's
// Frame to the successor's Frame: it hands control to "to" and blocks the
// caller until it is either resumed in turn or reaped via Kill. Callers
// hold the kernel's interrupt-disable lock across Launch; Go's scheduler,
// not this package, is trusted to actually run the successor goroutine.
func Launch(from, to *Frame) {
	to.resume <- struct{}{}
	select {
	case <-from.resume:
	case <-from.killed:
	}
}

// Kill releases a Frame that will never be resumed again, letting its
// goroutine unwind and terminate. This is called exactly once, by the
// scheduler's destruction-queue reap step, strictly after the owning
// thread has transitioned to DYING and been swapped out by Launch — never
// by the thread itself, which cannot free the stack it is still
// executing on.
func Kill(f *Frame) {
	close(f.killed)
}
