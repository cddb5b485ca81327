package transport

import (
	"errors"
	"fmt"
)

// ErrHostUnresolved is wrapped by HostUnresolvedError
var ErrHostUnresolved = errors.New("host unresolved")

// HostUnresolvedError reports a target that could not be turned into an IPv4
// destination. No packet was sent when this error is returned.
type HostUnresolvedError struct {
	Target string
	Err    error
}

func (e *HostUnresolvedError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("could not resolve %q", e.Target)
	}
	return fmt.Sprintf("could not resolve %q: %v", e.Target, e.Err)
}

func (e *HostUnresolvedError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrHostUnresolved}
	}
	return []error{ErrHostUnresolved, e.Err}
}
