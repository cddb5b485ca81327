package iface

import (
	"errors"
	"fmt"
)

var (
	// ErrInterfaceNotFound is wrapped by InterfaceNotFoundError
	ErrInterfaceNotFound = errors.New("interface not found")
	// ErrUnsupportedFamily is returned for default route queries on anything but IPv4
	ErrUnsupportedFamily = errors.New("unsupported address family")
)

// InterfaceNotFoundError is returned when no system interface satisfies a selector
type InterfaceNotFoundError struct {
	By       string // "name", "ipv4" or "mac"
	Selector string
}

func (e *InterfaceNotFoundError) Error() string {
	return fmt.Sprintf("no interface with %s %q", e.By, e.Selector)
}

func (e *InterfaceNotFoundError) Unwrap() error {
	return ErrInterfaceNotFound
}
