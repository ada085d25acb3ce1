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

import "corekernel.dev/corekernel/kernel/klog"

// SetPriority mutates only the current thread's floor priority,
// recomputes its effective priority, and tests whether it should now
// yield to a higher-priority ready thread. A thread that lowers its own
// priority below a donor's immediately observes the preemption check.
func (k *Kernel) SetPriority(p int) {
	if p < k.priMin || p > k.priMax {
		panic("kernel: SetPriority: priority out of range")
	}
	old := k.IntrDisable()
	k.current.initPriority = p
	k.refreshPriorityLocked(k.current)
	k.IntrSetLevel(old)
	k.TestMaxPriority()
}

// GetPriority returns the current thread's effective priority.
func (k *Kernel) GetPriority() int {
	old := k.IntrDisable()
	defer k.IntrSetLevel(old)
	return k.current.priority
}

// RefreshPriority recomputes t's effective priority from its floor
// priority and donor set, correcting t's ready-list position if it
// changed while t was READY.
func (k *Kernel) RefreshPriority(t *Thread) {
	old := k.IntrDisable()
	defer k.IntrSetLevel(old)
	k.refreshPriorityLocked(t)
}

func (k *Kernel) refreshPriorityLocked(t *Thread) {
	next := t.initPriority
	if len(t.donations) > 0 {
		top := t.donationSnapshot()[0]
		if top.priority > next {
			next = top.priority
		}
	}
	if next == t.priority {
		return
	}
	t.priority = next
	if t.status == Ready {
		k.ready.reinsert(t)
	}
}

// DonatePriority is called by the current thread just before it blocks on
// a lock held by another thread. It walks the chain
// current -> waitOnLock.holder -> holder.waitOnLock.holder -> ...,
// raising each visited holder's effective priority to the current
// thread's, for at most maxDonationHops hops. The bound guards against
// locking-bug cycles without hanging the scheduler; it is not itself
// cycle detection.
func (k *Kernel) DonatePriority() {
	old := k.IntrDisable()
	defer k.IntrSetLevel(old)
	k.donatePriorityLocked()
}

func (k *Kernel) donatePriorityLocked() {
	donor := k.current
	walker := donor
	for hop := 0; hop < maxDonationHops; hop++ {
		lock := walker.waitOnLock
		if lock == nil {
			return
		}
		holder := lock.Holder()
		if holder == nil {
			return
		}
		if donor.priority <= holder.priority {
			return
		}
		holder.priority = donor.priority
		if holder.status == Ready {
			k.ready.reinsert(holder)
		}
		klog.Debugf("donate: %s(%d) boosts %s(%d) to %d", donor.name, donor.id, holder.name, holder.id, holder.priority)
		walker = holder
	}
}

// RemoveWithLock is called when t releases lock: it removes every donor
// from t.donations whose waitOnLock is lock. The caller is responsible
// for calling RefreshPriority(t) afterward.
func (k *Kernel) RemoveWithLock(t *Thread, lock Lock) {
	old := k.IntrDisable()
	defer k.IntrSetLevel(old)
	k.removeWithLockLocked(t, lock)
}

func (k *Kernel) removeWithLockLocked(t *Thread, lock Lock) {
	for d := range t.donations {
		if d.waitOnLock == lock {
			delete(t.donations, d)
		}
	}
}

// AddDonation records that donor is now waiting on a lock held by t: donor
// joins t.donations and donor.waitOnLock is set to lock, so that any
// donor always appears in exactly the donations set of the thread
// currently holding the lock it is waiting on. Package ksync calls this
// immediately before calling DonatePriority and Block.
func (k *Kernel) AddDonation(t *Thread, donor *Thread, lock Lock) {
	old := k.IntrDisable()
	defer k.IntrSetLevel(old)
	donor.waitOnLock = lock
	t.donations[donor] = struct{}{}
}

// ClearWait clears donor's wait_on_lock once it has acquired the lock it
// was waiting on (or given up waiting).
func (k *Kernel) ClearWait(donor *Thread) {
	old := k.IntrDisable()
	defer k.IntrSetLevel(old)
	donor.waitOnLock = nil
}
