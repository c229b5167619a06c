package policy

import "github.com/cobwebnet/cobweb/address"

// Policy combines an independent deny-list and allow-list into the single
// conjunctive predicate described in spec.md §4.2:
//
//	allowed(addr) = deny.allowed(addr) && allow.allowed(addr)
//
// The deny-list is subtractive: an address is allowed unless some deny
// pattern matches it. The allow-list is additive but vacuous when empty: an
// empty allow-list allows everything, a non-empty one allows only matches.
type Policy struct {
	Deny  *List
	Allow *List
}

// New returns a Policy with empty deny and allow lists, which allows every
// address.
func New() *Policy {
	return &Policy{Deny: NewList(), Allow: NewList()}
}

// Allowed reports whether addr passes both lists.
func (p *Policy) Allowed(addr address.Multiaddr) bool {
	if p.Deny.Matches(addr) {
		return false
	}
	if p.Allow.Len() == 0 {
		return true
	}
	return p.Allow.Matches(addr)
}

// NotAllowed is the negation of Allowed, provided for call sites that read
// more naturally as a rejection check.
func (p *Policy) NotAllowed(addr address.Multiaddr) bool {
	return !p.Allowed(addr)
}

// Reset clears both lists, restoring allow-all-by-default. Used by Swarm's
// stop() per spec.md §4.5.
func (p *Policy) Reset() {
	p.Deny.Clear()
	p.Allow.Clear()
}
