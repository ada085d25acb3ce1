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
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestThread(name string, priority int, seq uint64) *Thread {
	return &Thread{
		magic:        threadMagic,
		name:         name,
		priority:     priority,
		initPriority: priority,
		seq:          seq,
		donations:    make(map[*Thread]struct{}),
	}
}

func TestReadyQueueOrdersByPriorityThenSeq(t *testing.T) {
	q := newReadyQueue()
	low := newTestThread("low", 10, 1)
	high := newTestThread("high", 30, 2)
	midFirst := newTestThread("mid-first", 20, 3)
	midSecond := newTestThread("mid-second", 20, 4)

	q.insert(low)
	q.insert(high)
	q.insert(midFirst)
	q.insert(midSecond)

	require.Equal(t, 4, q.len())
	require.Same(t, high, q.popFront())
	require.Same(t, midFirst, q.popFront())
	require.Same(t, midSecond, q.popFront())
	require.Same(t, low, q.popFront())
	require.True(t, q.empty())
}

func TestReadyQueueReinsertCorrectsPosition(t *testing.T) {
	q := newReadyQueue()
	a := newTestThread("a", 10, 1)
	b := newTestThread("b", 20, 2)
	q.insert(a)
	q.insert(b)

	a.priority = 30
	q.reinsert(a)

	require.Same(t, a, q.front())
	require.True(t, q.contains(a))
	require.True(t, q.contains(b))
}

func TestSleepQueueAwakeOnlyDueSleepers(t *testing.T) {
	q := &sleepQueue{}
	early := newTestThread("early", 0, 1)
	early.wakeupTick = 10
	late := newTestThread("late", 0, 2)
	late.wakeupTick = 100

	q.insert(early)
	q.insert(late)

	woken := q.awake(10)
	require.Len(t, woken, 1)
	require.Same(t, early, woken[0])
	require.Equal(t, 1, q.len())

	woken = q.awake(100)
	require.Len(t, woken, 1)
	require.Same(t, late, woken[0])
	require.Equal(t, 0, q.len())
}
