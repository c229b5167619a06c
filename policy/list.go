// Package policy implements the allow/deny evaluation described in
// spec.md §4.2: a pure, I/O-free predicate over Multiaddr values, built
// from two independent pattern lists.
package policy

import (
	"strings"
	"sync"

	"github.com/cobwebnet/cobweb/address"
)

// List is a mutable set of Multiaddr patterns matched by prefix or exact
// equality against a candidate address's textual form. A pattern matches a
// candidate when the candidate's canonical string is equal to, or has as a
// "/"-bounded prefix, the pattern's canonical string.
type List struct {
	mu       sync.RWMutex
	patterns map[string]struct{}
}

// NewList returns an empty List.
func NewList() *List {
	return &List{patterns: make(map[string]struct{})}
}

// Add inserts pattern into the list. Re-adding an existing pattern is a
// no-op.
func (l *List) Add(pattern address.Multiaddr) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.patterns[pattern.String()] = struct{}{}
}

// Remove deletes pattern from the list, if present.
func (l *List) Remove(pattern address.Multiaddr) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.patterns, pattern.String())
}

// Clear removes every pattern from the list.
func (l *List) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.patterns = make(map[string]struct{})
}

// Len reports how many patterns the list currently holds.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.patterns)
}

// Matches reports whether any pattern in the list matches candidate by
// prefix or exact equality.
func (l *List) Matches(candidate address.Multiaddr) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	c := candidate.String()
	for p := range l.patterns {
		if c == p || strings.HasPrefix(c, p+"/") {
			return true
		}
	}
	return false
}
