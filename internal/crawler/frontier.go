package crawler

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// VisitedSet tracks URLs for which a fetch has already been attempted in
// the current run. It grows monotonically for the lifetime of one
// traversal and is discarded when the run ends.
//
// The set stores URLs exactly as they were discovered after absolute
// resolution. Two textually different spellings of the same resource are
// distinct entries: there is no canonicalization beyond resolution, which
// is a documented limitation rather than an oversight.
//
// Design decision: We back this with a concurrency-safe set even though
// the baseline traversal is single-threaded, because MarkVisited's
// atomic check-and-mark is what makes parallel fetching a safe extension
// without touching the traversal invariants.
type VisitedSet struct {
	set mapset.Set[string]
}

// NewVisitedSet creates an empty visited set.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{set: mapset.NewSet[string]()}
}

// MarkVisited records the URL as visited. It returns true if the URL was
// not previously in the set, i.e. the caller won the right to fetch it.
func (v *VisitedSet) MarkVisited(url string) bool {
	return v.set.Add(url)
}

// Contains reports whether the URL has been visited.
func (v *VisitedSet) Contains(url string) bool {
	return v.set.Contains(url)
}

// Len returns the number of visited URLs.
func (v *VisitedSet) Len() int {
	return v.set.Cardinality()
}

// Frontier is the FIFO queue of URLs awaiting visitation in breadth-first
// mode. Entries may duplicate URLs that later turn out to be visited; the
// dequeue site re-checks the visited set, so deduplication here is lazy by
// design.
type Frontier struct {
	queue []string
}

// NewFrontier creates a frontier seeded with the given URLs.
func NewFrontier(seeds ...string) *Frontier {
	f := &Frontier{}
	f.queue = append(f.queue, seeds...)
	return f
}

// Enqueue appends a URL to the frontier.
func (f *Frontier) Enqueue(url string) {
	f.queue = append(f.queue, url)
}

// Dequeue removes and returns the oldest URL. The second return value is
// false when the frontier is empty.
func (f *Frontier) Dequeue() (string, bool) {
	if len(f.queue) == 0 {
		return "", false
	}
	url := f.queue[0]
	f.queue = f.queue[1:]
	return url, true
}

// Len returns the number of queued URLs, counting duplicates.
func (f *Frontier) Len() int {
	return len(f.queue)
}

// workStack is the explicit LIFO stack used by the unconditional
// depth-first traversal. Using an explicit stack instead of recursion
// bounds goroutine stack usage on deep link graphs and keeps the whole
// walk cancellable from one loop.
type workStack struct {
	items []string
}

// push adds a URL to the top of the stack.
func (s *workStack) push(url string) {
	s.items = append(s.items, url)
}

// pop removes and returns the most recently pushed URL.
func (s *workStack) pop() (string, bool) {
	if len(s.items) == 0 {
		return "", false
	}
	url := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return url, true
}
