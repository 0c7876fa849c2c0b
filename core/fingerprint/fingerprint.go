// ABOUTME: Fast content fingerprinting for duplicate detection within a scan session
// ABOUTME: Session-scoped seen-set and id-to-node reference table, cleared on navigation reset

package fingerprint

import (
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// prefixLen is how many characters of normalized text feed the hash.
// Two blocks sharing this prefix collapse to one fingerprint; false-positive
// dedup on near-duplicate short prefixes is an accepted tradeoff.
const prefixLen = 100

// Compute returns the fingerprint of the given normalized text
func Compute(text string) string {
	runes := []rune(text)
	if len(runes) > prefixLen {
		runes = runes[:prefixLen]
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(string(runes)))
}

// Set tracks fingerprints already seen within one scan session
type Set struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewSet creates an empty session fingerprint set
func NewSet() *Set {
	return &Set{seen: make(map[string]struct{})}
}

// Contains reports whether the fingerprint was already registered
func (s *Set) Contains(fp string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[fp]
	return ok
}

// Add registers a fingerprint. Returns false if it was already present.
func (s *Set) Add(fp string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[fp]; ok {
		return false
	}
	s.seen[fp] = struct{}{}
	return true
}

// Len returns the number of registered fingerprints
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

// Reset clears the set for a new page-view session
func (s *Set) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = make(map[string]struct{})
}

// RefTable maps block ids to opaque source-node handles for later
// highlight/blur operations. It carries no ownership semantics; the
// analysis core never dereferences the handles.
type RefTable struct {
	mu   sync.Mutex
	refs map[string]string
}

// NewRefTable creates an empty reference table
func NewRefTable() *RefTable {
	return &RefTable{refs: make(map[string]string)}
}

// Register stores the handle for a block id
func (t *RefTable) Register(id, ref string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.refs[id] = ref
}

// Lookup returns the handle for a block id, if present
func (t *RefTable) Lookup(id string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ref, ok := t.refs[id]
	return ref, ok
}

// Len returns the number of registered references
func (t *RefTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.refs)
}

// Reset clears the table for a new page-view session
func (t *RefTable) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.refs = make(map[string]string)
}
