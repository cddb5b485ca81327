package addr

import (
	"fmt"
	"iter"
	"net"
	"strings"

	"github.com/projectdiscovery/mapcidr"
)

// Range is a finite, ascending run of IPv4 addresses.
//
// A Range only stores its bounds; addresses are produced lazily by All and
// every call to All starts a fresh walk, so a Range can be iterated any
// number of times and from several goroutines at once.
type Range struct {
	first, last IPv4
	empty       bool
	spec        string
}

// NewRange returns the inclusive range first..last. If first > last the
// range is empty.
func NewRange(first, last IPv4) Range {
	return Range{first: first, last: last, empty: first.Compare(last) > 0, spec: first.String() + "-" + last.String()}
}

// CIDRRange returns the host addresses of the block "A.B.C.D/n".
//
// For prefixes up to /30 the network and broadcast addresses are skipped.
// A /31 yields both of its addresses (point-to-point links, RFC 3021) and a
// /32 yields the single address. Host bits in the input are ignored.
func CIDRRange(cidr string) (Range, error) {
	cidr = strings.TrimSpace(cidr)
	ip, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return Range{}, &InvalidRangeError{Spec: cidr, Reason: err.Error()}
	}
	if ip.To4() == nil || network.IP.To4() == nil || len(network.Mask) != net.IPv4len {
		return Range{}, &InvalidRangeError{Spec: cidr, Reason: "only IPv4 blocks are supported"}
	}

	firstIP, lastIP, err := mapcidr.AddressRange(network)
	if err != nil {
		return Range{}, &InvalidRangeError{Spec: cidr, Reason: err.Error()}
	}
	first, err := IPv4FromNetIP(firstIP)
	if err != nil {
		return Range{}, &InvalidRangeError{Spec: cidr, Reason: err.Error()}
	}
	last, err := IPv4FromNetIP(lastIP)
	if err != nil {
		return Range{}, &InvalidRangeError{Spec: cidr, Reason: err.Error()}
	}

	if ones, _ := network.Mask.Size(); ones <= 30 {
		first = first.Next()
		last = IPv4FromUint32(last.Uint32() - 1)
	}

	r := NewRange(first, last)
	r.spec = network.String()
	return r, nil
}

// IPRange parses "start-end" (two dotted quads) into an inclusive range.
func IPRange(spec string) (Range, error) {
	parts := strings.Split(spec, "-")
	if len(parts) != 2 {
		return Range{}, &InvalidRangeError{Spec: spec, Reason: "expected start-end"}
	}
	start, err := ParseIPv4(strings.TrimSpace(parts[0]))
	if err != nil {
		return Range{}, &InvalidRangeError{Spec: spec, Reason: err.Error()}
	}
	end, err := ParseIPv4(strings.TrimSpace(parts[1]))
	if err != nil {
		return Range{}, &InvalidRangeError{Spec: spec, Reason: err.Error()}
	}
	if start.Compare(end) > 0 {
		return Range{}, &InvalidRangeError{Spec: spec, Reason: "start address is greater than end address"}
	}
	return NewRange(start, end), nil
}

// ParseRange selects the CIDR form when spec contains '/' and the start-end
// form when it contains '-'. Anything else, including text that contains
// both characters, is rejected.
func ParseRange(spec string) (Range, error) {
	hasSlash := strings.Contains(spec, "/")
	hasDash := strings.Contains(spec, "-")
	switch {
	case hasSlash && hasDash:
		return Range{}, &InvalidRangeError{Spec: spec, Reason: "ambiguous range: contains both '/' and '-'"}
	case hasSlash:
		return CIDRRange(spec)
	case hasDash:
		return IPRange(spec)
	}
	return Range{}, &InvalidRangeError{Spec: spec, Reason: "expected CIDR (a.b.c.d/n) or start-end"}
}

// All yields every address of the range in ascending order.
func (r Range) All() iter.Seq[IPv4] {
	return func(yield func(IPv4) bool) {
		if r.empty {
			return
		}
		last := r.last.Uint32()
		for v := r.first.Uint32(); ; v++ {
			if !yield(IPv4FromUint32(v)) {
				return
			}
			if v == last {
				return
			}
		}
	}
}

// Len returns the number of addresses in the range
func (r Range) Len() uint64 {
	if r.empty {
		return 0
	}
	return uint64(r.last.Uint32()-r.first.Uint32()) + 1
}

// First returns the lowest address; ok is false for an empty range
func (r Range) First() (IPv4, bool) {
	return r.first, !r.empty
}

// Last returns the highest address; ok is false for an empty range
func (r Range) Last() (IPv4, bool) {
	return r.last, !r.empty
}

// Contains reports whether ip lies inside the range
func (r Range) Contains(ip IPv4) bool {
	return !r.empty && r.first.Compare(ip) <= 0 && ip.Compare(r.last) <= 0
}

func (r Range) String() string {
	if r.spec != "" {
		return r.spec
	}
	return fmt.Sprintf("%s-%s", r.first, r.last)
}

// IsNetworkOrBroadcast checks if ip is the network or broadcast address of network.
func IsNetworkOrBroadcast(ip IPv4, network *net.IPNet) bool {
	if network == nil {
		return false
	}
	base, err := IPv4FromNetIP(network.IP)
	if err != nil {
		return false
	}
	mask, err := IPv4FromBytes(net.IP(network.Mask).To4())
	if err != nil {
		return false
	}
	base = base.And(mask)
	return ip == base || ip == base.Or(mask.Not())
}
