package addr

import (
	"errors"
	"fmt"
)

var (
	// ErrAddressFormat is returned (wrapped) for any malformed address input
	ErrAddressFormat = errors.New("invalid address format")
	// ErrInvalidRange is returned (wrapped) for a range spec that matches no supported syntax
	ErrInvalidRange = errors.New("invalid address range")
)

// AddressFormatError describes why an address could not be built
type AddressFormatError struct {
	Kind   string // "mac" or "ipv4"
	Input  string
	Reason string
}

func (e *AddressFormatError) Error() string {
	return fmt.Sprintf("invalid %s address %q: %s", e.Kind, e.Input, e.Reason)
}

func (e *AddressFormatError) Unwrap() error {
	return ErrAddressFormat
}

// InvalidRangeError describes a rejected range specification
type InvalidRangeError struct {
	Spec   string
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range %q: %s", e.Spec, e.Reason)
}

func (e *InvalidRangeError) Unwrap() error {
	return ErrInvalidRange
}
