//go:build linux

package transport

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// bindToDevice pins the socket to a single interface with SO_BINDTODEVICE
func bindToDevice(device string) func(network, address string, c syscall.RawConn) error {
	if device == "" {
		return nil
	}
	return func(network, address string, c syscall.RawConn) error {
		var sockErr error
		err := c.Control(func(fd uintptr) {
			sockErr = unix.SetsockoptString(int(fd), unix.SOL_SOCKET, unix.SO_BINDTODEVICE, device)
		})
		if err != nil {
			return err
		}
		return sockErr
	}
}
