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

// Page stands in for a page-sized, page-aligned allocation that would, on
// real hardware, hold a TCB at its base and the thread's stack above it.
// The real page allocator is out of scope here; PagePool supplies just
// enough of the external contract (allocate zeroed, free) to drive thread
// creation and destruction-queue reaping.
type Page struct {
	id int64
}

// PagePool is the external page allocator collaborator. A zero PagePool
// allocates pages without bound; set Limit to simulate exhaustion for
// TIDError testing.
type PagePool struct {
	// Limit caps the number of simultaneously outstanding pages. Zero
	// means unbounded.
	Limit int

	nextID    int64
	allocated map[int64]struct{}
}

// Alloc returns a zeroed page, or false if the pool is at its Limit.
func (p *PagePool) Alloc() (*Page, bool) {
	if p.allocated == nil {
		p.allocated = make(map[int64]struct{})
	}
	if p.Limit > 0 && len(p.allocated) >= p.Limit {
		return nil, false
	}
	p.nextID++
	pg := &Page{id: p.nextID}
	p.allocated[pg.id] = struct{}{}
	return pg, true
}

// Free returns a page to the pool. Freeing a page twice, or a page not
// obtained from this pool, is a contract violation.
func (p *PagePool) Free(pg *Page) {
	if _, ok := p.allocated[pg.id]; !ok {
		panic("kernel: double free or foreign page")
	}
	delete(p.allocated, pg.id)
}

// Outstanding reports how many pages are currently allocated, letting
// tests check that every reaped page is returned to the pool exactly
// once.
func (p *PagePool) Outstanding() int {
	return len(p.allocated)
}
