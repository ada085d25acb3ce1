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

import "github.com/google/btree"

// readyListDegree is the B-tree branching factor for the ready list. The
// ready list is small by kernel standards (tens of threads at most), so
// this is chosen for cache-friendly node sizes rather than tuned against
// a workload.
const readyListDegree = 8

// readyItem orders threads by descending effective priority with
// insertion-order ("seq") tiebreaking: the ready list is sorted by
// effective priority, descending, ties broken by insertion order.
// btree.Less defines a strict weak ordering where smaller sorts first, so
// higher priority (and, among equal priorities, lower seq) is defined as
// "less".
type readyItem struct {
	t *Thread
}

func (a readyItem) Less(than btree.Item) bool {
	b := than.(readyItem)
	if a.t.priority != b.t.priority {
		return a.t.priority > b.t.priority
	}
	return a.t.seq < b.t.seq
}

// readyQueue is the priority-ordered ready list, backed by an ordered tree
// so that removing a thread whose priority just changed and reinserting
// it (required whenever a READY thread's effective priority is mutated)
// is logarithmic rather than a linear re-sort.
type readyQueue struct {
	tree *btree.BTree
}

func newReadyQueue() *readyQueue {
	return &readyQueue{tree: btree.New(readyListDegree)}
}

func (q *readyQueue) insert(t *Thread) {
	q.tree.ReplaceOrInsert(readyItem{t})
}

// remove takes t out of the ready list. It is a no-op if t is not a
// member, which happens when remove is used defensively before a
// priority-change reinsert.
func (q *readyQueue) remove(t *Thread) {
	if q.tree.Delete(readyItem{t}) != nil {
		return
	}
	// A keyed search can miss t once its priority has changed in place;
	// rebuild the tree from every other member instead.
	rebuilt := btree.New(readyListDegree)
	q.tree.Ascend(func(it btree.Item) bool {
		if it.(readyItem).t != t {
			rebuilt.ReplaceOrInsert(it)
		}
		return true
	})
	q.tree = rebuilt
}

// reinsert corrects t's position after its effective priority changed
// while it remained READY: a priority mutation on a queued thread must
// always be followed by a position correction.
func (q *readyQueue) reinsert(t *Thread) {
	q.remove(t)
	q.insert(t)
}

func (q *readyQueue) empty() bool {
	return q.tree.Len() == 0
}

func (q *readyQueue) len() int {
	return q.tree.Len()
}

// front returns the highest-priority, earliest-inserted thread without
// removing it, or nil if the list is empty.
func (q *readyQueue) front() *Thread {
	item := q.tree.Min()
	if item == nil {
		return nil
	}
	return item.(readyItem).t
}

// popFront removes and returns the highest-priority, earliest-inserted
// thread, or nil if the list is empty.
func (q *readyQueue) popFront() *Thread {
	item := q.tree.DeleteMin()
	if item == nil {
		return nil
	}
	return item.(readyItem).t
}

// contains reports whether t is currently a member of the ready list.
func (q *readyQueue) contains(t *Thread) bool {
	return q.tree.Has(readyItem{t})
}

// sleepQueue is the unordered collection of blocked threads waiting for
// an absolute wake tick. A linear scan on each tick is fine at the scale
// this core runs at; an ordered variant is an optional optimization not
// needed here.
type sleepQueue struct {
	members []*Thread
}

func (q *sleepQueue) insert(t *Thread) {
	q.members = append(q.members, t)
}

// awake removes and returns every thread whose wakeupTick is at most now,
// in no particular order; the caller (Kernel.awake) is responsible for
// unblocking each one.
func (q *sleepQueue) awake(now int64) []*Thread {
	var woken []*Thread
	remaining := q.members[:0]
	for _, t := range q.members {
		if t.wakeupTick <= now {
			woken = append(woken, t)
		} else {
			remaining = append(remaining, t)
		}
	}
	q.members = remaining
	return woken
}

func (q *sleepQueue) len() int {
	return len(q.members)
}
