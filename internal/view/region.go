package view

import "sync"

// Ticket identifies one render pass against a Region.
type Ticket uint64

// Region is a display area owned by exactly one controller. Loads take a
// ticket before fetching and commit with it afterwards; only the newest
// ticket may commit, so an earlier load that finishes late is dropped.
type Region struct {
	name string

	mu      sync.Mutex
	issued  Ticket
	content Fragment
	commits int
}

// NewRegion returns an empty region.
func NewRegion(name string) *Region {
	return &Region{name: name}
}

func (r *Region) Name() string { return r.name }

// Begin issues a ticket newer than every previous one.
func (r *Region) Begin() Ticket {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.issued++
	return r.issued
}

// Commit replaces the content if t is still the newest ticket and reports
// whether it did.
func (r *Region) Commit(t Ticket, f Fragment) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t != r.issued {
		return false
	}
	r.content = f
	r.commits++
	return true
}

// Set renders f immediately, superseding any load in flight.
func (r *Region) Set(f Fragment) {
	r.Commit(r.Begin(), f)
}

// Content returns the last committed fragment.
func (r *Region) Content() Fragment {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.content
}

// Commits counts successful commits.
func (r *Region) Commits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.commits
}
