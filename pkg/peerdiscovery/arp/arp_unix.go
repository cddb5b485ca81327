//go:build !windows

package arp

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"

	osutils "github.com/projectdiscovery/utils/os"
)

// readLocalARPTable reads the local ARP table (Linux and macOS)
func readLocalARPTable() ([]Entry, error) {
	if osutils.IsLinux() {
		return readLinuxARPTable()
	} else if osutils.IsOSX() {
		return readDarwinARPTable()
	}
	return nil, fmt.Errorf("unsupported OS")
}

// readLinuxARPTable reads ARP table from /proc/net/arp
func readLinuxARPTable() ([]Entry, error) {
	f, err := os.Open("/proc/net/arp")
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	return parseLinux(f)
}

// readDarwinARPTable reads ARP table using 'arp -an' on macOS
func readDarwinARPTable() ([]Entry, error) {
	output, err := exec.Command("arp", "-an").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to execute arp -an: %w", err)
	}
	return parseDarwin(bytes.NewReader(output))
}
