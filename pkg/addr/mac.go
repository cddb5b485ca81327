package addr

import (
	"encoding/hex"
	"fmt"
	"net"
	"strings"
)

// MAC is a 48-bit hardware address.
//
// MAC is an immutable value type: it can be compared with == and used as a
// map key. The zero value is 00:00:00:00:00:00.
type MAC struct {
	b [6]byte
}

// Broadcast is the Ethernet broadcast address ff:ff:ff:ff:ff:ff
var Broadcast = MAC{b: [6]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}}

const maxMAC = 1<<48 - 1

// ParseMAC parses six two-digit hex groups separated by ':' or '-'.
func ParseMAC(s string) (MAC, error) {
	if len(s) != 17 {
		return MAC{}, macErr(s, "expected 17 characters")
	}

	var m MAC
	for i := 0; i < 6; i++ {
		if i > 0 {
			sep := s[i*3-1]
			if sep != ':' && sep != '-' {
				return MAC{}, macErr(s, fmt.Sprintf("unexpected separator %q", sep))
			}
		}
		group := s[i*3 : i*3+2]
		if _, err := hex.Decode(m.b[i:i+1], []byte(group)); err != nil {
			return MAC{}, macErr(s, fmt.Sprintf("invalid hex group %q", group))
		}
	}
	return m, nil
}

// MustParseMAC is like ParseMAC but panics on error
func MustParseMAC(s string) MAC {
	m, err := ParseMAC(s)
	if err != nil {
		panic(err)
	}
	return m
}

// MACFromUint64 builds a MAC from the low 48 bits of v.
func MACFromUint64(v uint64) (MAC, error) {
	if v > maxMAC {
		return MAC{}, macErr(fmt.Sprintf("%#x", v), "value exceeds 48 bits")
	}
	var m MAC
	for i := 5; i >= 0; i-- {
		m.b[i] = byte(v)
		v >>= 8
	}
	return m, nil
}

// MACFromBytes copies a 6-byte slice into a MAC.
func MACFromBytes(b []byte) (MAC, error) {
	if len(b) != 6 {
		return MAC{}, macErr(hex.EncodeToString(b), fmt.Sprintf("expected 6 bytes, got %d", len(b)))
	}
	var m MAC
	copy(m.b[:], b)
	return m, nil
}

// MACFromInts builds a MAC from six integers in the range 0..255.
func MACFromInts(v []int) (MAC, error) {
	if len(v) != 6 {
		return MAC{}, macErr(fmt.Sprint(v), fmt.Sprintf("expected 6 octets, got %d", len(v)))
	}
	var m MAC
	for i, o := range v {
		if o < 0 || o > 0xff {
			return MAC{}, macErr(fmt.Sprint(v), fmt.Sprintf("octet %d out of range", o))
		}
		m.b[i] = byte(o)
	}
	return m, nil
}

// MACFromHardwareAddr converts a net.HardwareAddr, which must be 6 bytes long.
func MACFromHardwareAddr(hw net.HardwareAddr) (MAC, error) {
	return MACFromBytes(hw)
}

// String returns the lowercase colon-separated form
func (m MAC) String() string {
	var sb strings.Builder
	sb.Grow(17)
	for i, o := range m.b {
		if i > 0 {
			sb.WriteByte(':')
		}
		sb.WriteString(hex.EncodeToString([]byte{o}))
	}
	return sb.String()
}

// Bytes returns a copy of the 6 raw bytes
func (m MAC) Bytes() []byte {
	out := make([]byte, 6)
	copy(out, m.b[:])
	return out
}

// Array returns the raw bytes as an array
func (m MAC) Array() [6]byte {
	return m.b
}

// Uint64 returns the address as a 48-bit integer
func (m MAC) Uint64() uint64 {
	var v uint64
	for _, o := range m.b {
		v = v<<8 | uint64(o)
	}
	return v
}

// HardwareAddr returns the address as a net.HardwareAddr
func (m MAC) HardwareAddr() net.HardwareAddr {
	return net.HardwareAddr(m.Bytes())
}

// IsZero reports whether m is 00:00:00:00:00:00
func (m MAC) IsZero() bool {
	return m == MAC{}
}

// Compare returns -1, 0 or 1 comparing the addresses byte by byte.
func (m MAC) Compare(o MAC) int {
	for i := range m.b {
		switch {
		case m.b[i] < o.b[i]:
			return -1
		case m.b[i] > o.b[i]:
			return 1
		}
	}
	return 0
}

func macErr(input, reason string) error {
	return &AddressFormatError{Kind: "mac", Input: input, Reason: reason}
}
