package swarm

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/cobwebnet/cobweb/address"
)

var (
	// ErrMissingIdentity is returned when an address lacks the trailing
	// "/p2p/<id>" terminator an operation requires.
	ErrMissingIdentity = errors.New("swarm: address lacks identity segment")

	// ErrSelfRegistration is returned when an address's identity equals
	// the local peer.
	ErrSelfRegistration = errors.New("swarm: address identifies the local peer")

	// ErrPolicyDenied is returned when the allow/deny evaluation rejects
	// an address.
	ErrPolicyDenied = errors.New("swarm: address rejected by policy")

	// ErrMissingTransport is returned when no protocol segment of an
	// address names a registered transport.
	ErrMissingTransport = errors.New("swarm: no registered transport for address")

	// ErrAlreadyListening is returned by startListening when a listener
	// is already registered under the given address.
	ErrAlreadyListening = errors.New("swarm: already listening on address")

	// ErrNotStarted is returned by mutating operations when the Swarm's
	// lifecycle phase is not Started.
	ErrNotStarted = errors.New("swarm: not started")

	// ErrCancelled is returned when a cooperative cancellation signal
	// fires during an in-flight operation.
	ErrCancelled = errors.New("swarm: cancelled")
)

// connectFailure records one per-address dial failure accumulated during
// connect, per spec.md §4.5.2 step 5.
type connectFailure struct {
	Addr  address.Multiaddr
	Cause error
}

func (f connectFailure) Error() string {
	return fmt.Sprintf("%s: %v", f.Addr.String(), f.Cause)
}

func (f connectFailure) Unwrap() error {
	return f.Cause
}

// UnreachableError aggregates every per-address failure recorded while
// dialing a peer, returned once every concrete address has been tried
// without success.
type UnreachableError struct {
	PeerID   address.PeerID
	Attempts []connectFailure
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("swarm: peer %s unreachable after %d attempt(s): %v", e.PeerID, len(e.Attempts), e.causes())
}

// Unwrap combines every attempt's cause with multierr so errors.Is/As can
// match against any of them, not just the first.
func (e *UnreachableError) Unwrap() error {
	return e.causes()
}

func (e *UnreachableError) causes() error {
	errs := make([]error, len(e.Attempts))
	for i, a := range e.Attempts {
		errs[i] = a
	}
	return multierr.Combine(errs...)
}
