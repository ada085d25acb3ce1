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

package archsim

import (
	"testing"
	"time"
)

// TestLaunchHandsOffAndResumes drives two frames through a round trip:
// A launches into B, B launches back into A, and both goroutines observe
// the expected order of execution.
func TestLaunchHandsOffAndResumes(t *testing.T) {
	fa := NewFrame()
	fb := NewFrame()

	var order []string
	done := make(chan struct{})

	go func() {
		fa.Enter()
		order = append(order, "a1")
		Launch(fa, fb)
		order = append(order, "a2")
		close(done)
	}()

	go func() {
		fb.Enter()
		order = append(order, "b1")
		Launch(fb, fa)
	}()

	// Bootstrap: launch from a synthetic "boot" frame into A. Launch parks
	// its caller until the boot frame is resumed, which never happens here,
	// so it runs on its own goroutine rather than the test's.
	boot := NewFrame()
	go Launch(boot, fa)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for handoff round trip")
	}

	want := []string{"a1", "b1", "a2"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

// TestKillReleasesParkedFrame verifies that a frame parked inside Launch
// (simulating a DYING thread still occupying its stack) is released by
// Kill rather than by itself.
func TestKillReleasesParkedFrame(t *testing.T) {
	dying := NewFrame()
	successor := NewFrame()

	launchReturned := make(chan struct{})
	go func() {
		dying.Enter()
		Launch(dying, successor)
		close(launchReturned)
	}()

	go func() {
		successor.Enter()
	}()

	boot := NewFrame()
	go Launch(boot, dying)

	select {
	case <-launchReturned:
		t.Fatal("Launch returned before Kill; dying thread reaped itself")
	case <-time.After(50 * time.Millisecond):
	}

	Kill(dying)

	select {
	case <-launchReturned:
	case <-time.After(time.Second):
		t.Fatal("Kill did not release the parked frame")
	}
}
