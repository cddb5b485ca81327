package arp

import (
	"bufio"
	"io"
	"strings"

	"github.com/projectdiscovery/interceptor/pkg/addr"
)

func newEntry(ipStr, macStr, device string) (Entry, bool) {
	ip, err := addr.ParseIPv4(ipStr)
	if err != nil {
		return Entry{}, false
	}
	mac, err := addr.ParseMAC(normalizeMAC(macStr))
	if err != nil || mac.IsZero() || mac == addr.Broadcast {
		return Entry{}, false
	}
	return Entry{IP: ip, MAC: mac, Device: device}, true
}

// normalizeMAC pads single-digit groups, as printed by BSD arp ("0:1b:2c:...")
func normalizeMAC(s string) string {
	sep := ":"
	if strings.Contains(s, "-") {
		sep = "-"
	}
	groups := strings.Split(s, sep)
	if len(groups) != 6 {
		return s
	}
	for i, g := range groups {
		if len(g) == 1 {
			groups[i] = "0" + g
		}
	}
	return strings.Join(groups, sep)
}

// parseLinux reads the /proc/net/arp format:
//
//	IP address       HW type     Flags       HW address            Mask     Device
//	192.168.1.1      0x1         0x2         aa:bb:cc:dd:ee:ff     *        eth0
func parseLinux(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)

	// Skip header line
	if !scanner.Scan() {
		return entries, scanner.Err()
	}

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 6 {
			continue
		}
		// flags 0x0 marks an incomplete entry
		if fields[2] == "0x0" {
			continue
		}
		if e, ok := newEntry(fields[0], fields[3], fields[5]); ok {
			entries = append(entries, e)
		}
	}
	return entries, scanner.Err()
}

// parseDarwin reads BSD "arp -a" output:
//
//	? (192.168.1.1) at aa:bb:cc:dd:ee:ff on en0 ifscope [ethernet]
//	host.lan (192.168.1.7) at (incomplete) on en0 ifscope [ethernet]
func parseDarwin(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		ipStart := strings.Index(line, "(")
		ipEnd := strings.Index(line, ")")
		if ipStart == -1 || ipEnd == -1 || ipStart >= ipEnd {
			continue
		}
		rest := strings.Fields(line[ipEnd+1:])
		if len(rest) < 2 || rest[0] != "at" {
			continue
		}
		device := ""
		for i := 2; i+1 < len(rest); i++ {
			if rest[i] == "on" {
				device = rest[i+1]
				break
			}
		}
		if e, ok := newEntry(line[ipStart+1:ipEnd], rest[1], device); ok {
			entries = append(entries, e)
		}
	}
	return entries, scanner.Err()
}

// parseWindows reads Windows "arp -a" output:
//
//	Interface: 192.168.1.100 --- 0xa
//	  Internet Address      Physical Address      Type
//	  192.168.1.1           aa-bb-cc-dd-ee-ff     dynamic
func parseWindows(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)

	inARPTable := false
	device := ""
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "Interface:") {
			inARPTable = false
			if fields := strings.Fields(line); len(fields) > 1 {
				device = fields[1]
			}
			continue
		}
		if strings.Contains(line, "Internet Address") && strings.Contains(line, "Physical Address") {
			inARPTable = true
			continue
		}
		if !inARPTable {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if e, ok := newEntry(fields[0], fields[1], device); ok {
			entries = append(entries, e)
		}
	}
	return entries, scanner.Err()
}
