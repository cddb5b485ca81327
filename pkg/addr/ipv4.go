package addr

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"strings"
)

// IPv4 is a 32-bit internet address.
//
// Like MAC it is an immutable value type. Ordering is numeric, which is the
// same as comparing the dotted-quad octets left to right.
type IPv4 struct {
	b [4]byte
}

// ParseIPv4 parses a dotted-quad string such as "192.168.1.10".
func ParseIPv4(s string) (IPv4, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return IPv4{}, ipErr(s, "expected 4 dot-separated octets")
	}
	var ip IPv4
	for i, p := range parts {
		if p == "" || len(p) > 3 {
			return IPv4{}, ipErr(s, fmt.Sprintf("invalid octet %q", p))
		}
		for _, c := range p {
			if c < '0' || c > '9' {
				return IPv4{}, ipErr(s, fmt.Sprintf("invalid octet %q", p))
			}
		}
		v, err := strconv.Atoi(p)
		if err != nil || v > 0xff {
			return IPv4{}, ipErr(s, fmt.Sprintf("octet %q out of range", p))
		}
		ip.b[i] = byte(v)
	}
	return ip, nil
}

// MustParseIPv4 is like ParseIPv4 but panics on error
func MustParseIPv4(s string) IPv4 {
	ip, err := ParseIPv4(s)
	if err != nil {
		panic(err)
	}
	return ip
}

// IPv4FromUint32 builds an address from its big-endian integer value
func IPv4FromUint32(v uint32) IPv4 {
	var ip IPv4
	binary.BigEndian.PutUint32(ip.b[:], v)
	return ip
}

// IPv4FromBytes copies a 4-byte slice into an address.
func IPv4FromBytes(b []byte) (IPv4, error) {
	if len(b) != 4 {
		return IPv4{}, ipErr(hex.EncodeToString(b), fmt.Sprintf("expected 4 bytes, got %d", len(b)))
	}
	var ip IPv4
	copy(ip.b[:], b)
	return ip, nil
}

// IPv4FromNetIP converts a net.IP holding an IPv4 (or IPv4-mapped) address.
func IPv4FromNetIP(ip net.IP) (IPv4, error) {
	ip4 := ip.To4()
	if ip4 == nil {
		return IPv4{}, ipErr(ip.String(), "not an IPv4 address")
	}
	return IPv4FromBytes(ip4)
}

// IPv4FromAddr converts a netip.Addr holding an IPv4 (or IPv4-mapped) address.
func IPv4FromAddr(a netip.Addr) (IPv4, error) {
	a = a.Unmap()
	if !a.Is4() {
		return IPv4{}, ipErr(a.String(), "not an IPv4 address")
	}
	return IPv4{b: a.As4()}, nil
}

// String returns the dotted-quad form
func (ip IPv4) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", ip.b[0], ip.b[1], ip.b[2], ip.b[3])
}

// Bytes returns a copy of the 4 raw bytes in network order
func (ip IPv4) Bytes() []byte {
	out := make([]byte, 4)
	copy(out, ip.b[:])
	return out
}

// Uint32 returns the address as a big-endian integer
func (ip IPv4) Uint32() uint32 {
	return binary.BigEndian.Uint32(ip.b[:])
}

// Addr returns the address as a netip.Addr
func (ip IPv4) Addr() netip.Addr {
	return netip.AddrFrom4(ip.b)
}

// IP returns the address as a 4-byte net.IP
func (ip IPv4) IP() net.IP {
	return net.IP(ip.Bytes())
}

// Compare returns -1, 0 or 1 comparing the numeric values
func (ip IPv4) Compare(o IPv4) int {
	a, b := ip.Uint32(), o.Uint32()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Less reports whether ip sorts before o
func (ip IPv4) Less(o IPv4) bool {
	return ip.Uint32() < o.Uint32()
}

// And returns the bitwise AND of ip and mask
func (ip IPv4) And(mask IPv4) IPv4 {
	return IPv4FromUint32(ip.Uint32() & mask.Uint32())
}

// Or returns the bitwise OR of ip and mask
func (ip IPv4) Or(mask IPv4) IPv4 {
	return IPv4FromUint32(ip.Uint32() | mask.Uint32())
}

// Not returns the bitwise complement of ip
func (ip IPv4) Not() IPv4 {
	return IPv4FromUint32(^ip.Uint32())
}

// Next returns the numerically following address, wrapping at 255.255.255.255
func (ip IPv4) Next() IPv4 {
	return IPv4FromUint32(ip.Uint32() + 1)
}

// IsZero reports whether ip is 0.0.0.0
func (ip IPv4) IsZero() bool {
	return ip == IPv4{}
}

// MaskFromPrefix returns the netmask for a prefix length between 0 and 32
func MaskFromPrefix(bits int) IPv4 {
	if bits <= 0 {
		return IPv4{}
	}
	if bits >= 32 {
		return IPv4FromUint32(^uint32(0))
	}
	return IPv4FromUint32(^uint32(0) << (32 - bits))
}

func ipErr(input, reason string) error {
	return &AddressFormatError{Kind: "ipv4", Input: input, Reason: reason}
}
