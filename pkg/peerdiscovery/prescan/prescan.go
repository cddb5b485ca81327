package prescan

import (
	"slices"

	"github.com/projectdiscovery/interceptor/pkg/addr"
)

// Priority returns the 0-100 likelihood score of ip being online, based on
// the last octet.
func Priority(ip addr.IPv4) int {
	last := int(ip.Bytes()[3])
	for _, p := range patterns {
		if last >= p.RangeStart && last <= p.RangeEnd {
			return p.Priority
		}
	}
	return PriorityTier6
}

// Order returns every address of r, highest priority first. Addresses of
// equal priority keep ascending order.
func Order(r addr.Range) []addr.IPv4 {
	ips := make([]addr.IPv4, 0, r.Len())
	for ip := range r.All() {
		ips = append(ips, ip)
	}
	slices.SortStableFunc(ips, func(a, b addr.IPv4) int {
		return Priority(b) - Priority(a)
	})
	return ips
}
