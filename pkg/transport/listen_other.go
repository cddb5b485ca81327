//go:build !linux

package transport

import "syscall"

// bindToDevice is a no-op where SO_BINDTODEVICE does not exist; the socket
// is still bound to the interface address.
func bindToDevice(string) func(network, address string, c syscall.RawConn) error {
	return nil
}
