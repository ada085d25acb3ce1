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
	"sync"

	"corekernel.dev/corekernel/kernel/archsim"
	"corekernel.dev/corekernel/kernel/klog"
)

// Default priority bounds and time slice.
const (
	DefaultPriMin     = 0
	DefaultPriMax     = 63
	DefaultTimeSlice  = 4
	maxDonationHops   = 8
	initialThreadName = "main"
	idleThreadName    = "idle"
)

// Config carries the boot-time tunables for a Kernel. A zero Config is
// not valid; use NewKernel, which applies the defaults above for any
// unset field.
type Config struct {
	PriMin    int
	PriMax    int
	TimeSlice int
	Pages     *PagePool
}

// Kernel holds every piece of process-wide singleton state: the ready,
// sleep, and destruction queues, the idle and initial thread references,
// and the tick counters. It is initialized exactly once by NewKernel+Init
// before any tick is ever delivered, and never torn down.
type Kernel struct {
	mu sync.Mutex

	intrLevel     int32
	inTickHandler int32
	yieldOnReturn int32

	priMin, priMax, timeSlice int

	tids tidAllocator
	seq  uint64

	ready    *readyQueue
	sleeping *sleepQueue

	// destruction is the FIFO of TCBs awaiting the next scheduler
	// invocation's reap step.
	destruction []*Thread

	idle    *Thread
	initial *Thread
	current *Thread

	pages *PagePool

	threadTicks int
	idleTicks   int64
	userTicks   int64
	kernelTicks int64
}

// NewKernel constructs a Kernel with the given configuration, filling in
// defaults for a zero TimeSlice, a nil Pages, and a priority range whose
// PriMin and PriMax are both zero. Call Init before scheduling anything.
func NewKernel(cfg Config) *Kernel {
	k := &Kernel{
		priMin:    cfg.PriMin,
		priMax:    cfg.PriMax,
		timeSlice: cfg.TimeSlice,
		pages:     cfg.Pages,
		intrLevel: int32(IntrOn),
	}
	if k.priMin == 0 && k.priMax == 0 {
		k.priMin, k.priMax = DefaultPriMin, DefaultPriMax
	}
	if k.timeSlice == 0 {
		k.timeSlice = DefaultTimeSlice
	}
	if k.pages == nil {
		k.pages = &PagePool{}
	}
	k.ready = newReadyQueue()
	k.sleeping = &sleepQueue{}
	return k
}

// PriMin returns the lowest legal priority.
func (k *Kernel) PriMin() int { return k.priMin }

// PriMax returns the highest legal priority.
func (k *Kernel) PriMax() int { return k.priMax }

// Current returns the thread that is presently RUNNING.
func (k *Kernel) Current() *Thread {
	return k.current
}

// Idle returns the singleton idle thread.
func (k *Kernel) Idle() *Thread { return k.idle }

// ReadyLen reports how many threads are currently READY, for tests
// checking invariant 2 (ready list membership) without reaching into
// package internals.
func (k *Kernel) ReadyLen() int {
	old := k.IntrDisable()
	defer k.IntrSetLevel(old)
	return k.ready.len()
}

// SleepingLen reports how many threads are currently on the sleep queue.
func (k *Kernel) SleepingLen() int {
	old := k.IntrDisable()
	defer k.IntrSetLevel(old)
	return k.sleeping.len()
}

func (k *Kernel) nextSeq() uint64 {
	k.seq++
	return k.seq
}

// Init bootstraps the kernel: it adopts the calling goroutine as the
// initial ("main") thread — a bootstrap thread that is never reaped, even
// once DYING — and creates the singleton idle thread. Init must be called
// exactly once, before any call to Tick.
func (k *Kernel) Init(initialPriority int) {
	boot := archsim.NewFrame()
	k.initial = &Thread{
		magic:        threadMagic,
		id:           k.tids.allocate(),
		name:         initialThreadName,
		status:       Running,
		frame:        boot,
		priority:     initialPriority,
		initPriority: initialPriority,
		donations:    make(map[*Thread]struct{}),
	}
	k.current = k.initial

	// Unlike every other thread, initial is never dispatched into via
	// Launch: it is already running, on whichever goroutine called Init.
	// That calling goroutine continues straight through as initial's logic
	// and only parks inside Launch's select the first time initial is
	// scheduled out — so boot must NOT have its own dedicated
	// "go boot.Enter()" goroutine, or two goroutines would race to receive
	// the one dispatch meant for whichever one is parked at the time.

	idleTID := k.tids.allocate()
	idlePage, ok := k.pages.Alloc()
	if !ok {
		panic("kernel: page allocator exhausted creating idle thread")
	}
	idleFrame := archsim.NewFrame()
	k.idle = &Thread{
		magic:        threadMagic,
		id:           idleTID,
		name:         idleThreadName,
		status:       Blocked,
		frame:        idleFrame,
		priority:     k.priMin,
		initPriority: k.priMin,
		donations:    make(map[*Thread]struct{}),
		page:         idlePage,
	}
	go k.runIdle(k.idle)
	klog.Infof("kernel: booted, initial=%d idle=%d", k.initial.id, k.idle.id)
}

// scheduleLocked is the scheduler core: pick the next thread to run,
// switch to it, and reap anything left over from the previous switch. The
// caller must hold mu (interrupts disabled) and must already have set the
// outgoing thread's status to its post-switch value.
func (k *Kernel) scheduleLocked() {
	k.reapLocked()

	successor := k.ready.popFront()
	if successor == nil {
		successor = k.idle
	}
	successor.status = Running
	k.threadTicks = 0

	if successor == k.current {
		return
	}

	outgoing := k.current
	if outgoing.status == Dying && outgoing != k.initial {
		k.destruction = append(k.destruction, outgoing)
	}
	k.current = successor
	klog.Debugf("schedule: %s(%d/%s) -> %s(%d)", outgoing.name, outgoing.id, outgoing.status, successor.name, successor.id)
	archsim.Launch(outgoing.frame, successor.frame)
}

// reapLocked frees every TCB queued for destruction since the prior
// scheduler invocation: a dying thread cannot free its own stack because
// it is still executing on it, so the *next* scheduler invocation reaps
// it before picking a successor.
func (k *Kernel) reapLocked() {
	if len(k.destruction) == 0 {
		return
	}
	for _, victim := range k.destruction {
		archsim.Kill(victim.frame)
		if victim.page != nil {
			k.pages.Free(victim.page)
		}
		victim.log().Debugf("reaped")
	}
	k.destruction = k.destruction[:0]
}
