package iface

import (
	"fmt"
	"math/bits"
	"net"
	"strings"

	"github.com/projectdiscovery/interceptor/pkg/addr"
)

// Interface is a read-only snapshot of one local network interface.
//
// The optional fields are reported through (value, ok) accessors. A snapshot
// is never refreshed; query the Resolver again to observe changes.
type Interface struct {
	name  string
	index int
	flags net.Flags

	mac    addr.MAC
	hasMAC bool

	ip           addr.IPv4
	netmask      addr.IPv4
	hasIP        bool
	hasNetmask   bool
	broadcast    addr.IPv4
	hasBroadcast bool
}

// FromNet builds a snapshot from an OS interface entry and its addresses.
//
// The first IPv4 entry populates the address and netmask. The broadcast
// address is only derived when the interface carries the broadcast flag.
func FromNet(ifi net.Interface, addrs []net.Addr) *Interface {
	out := &Interface{
		name:  ifi.Name,
		index: ifi.Index,
		flags: ifi.Flags,
	}
	if mac, err := addr.MACFromHardwareAddr(ifi.HardwareAddr); err == nil {
		out.mac = mac
		out.hasMAC = true
	}

	for _, a := range addrs {
		var (
			ip   net.IP
			mask net.IPMask
		)
		switch v := a.(type) {
		case *net.IPNet:
			ip, mask = v.IP, v.Mask
		case *net.IPAddr:
			ip = v.IP
		default:
			continue
		}
		ip4, err := addr.IPv4FromNetIP(ip)
		if err != nil {
			continue
		}
		out.ip = ip4
		out.hasIP = true
		if ones, size := mask.Size(); size == 32 || (size == 128 && ones >= 96) {
			if size == 128 {
				ones -= 96
			}
			out.netmask = addr.MaskFromPrefix(ones)
			out.hasNetmask = true
			if ifi.Flags&net.FlagBroadcast != 0 {
				out.broadcast = ip4.And(out.netmask).Or(out.netmask.Not())
				out.hasBroadcast = true
			}
		}
		break
	}
	return out
}

// Name returns the OS interface name
func (i *Interface) Name() string { return i.name }

// Index returns the OS interface index
func (i *Interface) Index() int { return i.index }

// Flags returns the interface flags captured at query time
func (i *Interface) Flags() net.Flags { return i.flags }

// MAC returns the link-layer address, if any
func (i *Interface) MAC() (addr.MAC, bool) { return i.mac, i.hasMAC }

// IPv4 returns the first IPv4 address of the interface, if any
func (i *Interface) IPv4() (addr.IPv4, bool) { return i.ip, i.hasIP }

// Netmask returns the netmask that goes with IPv4, if known
func (i *Interface) Netmask() (addr.IPv4, bool) { return i.netmask, i.hasNetmask }

// Broadcast returns the IPv4 broadcast address, if the interface supports broadcast
func (i *Interface) Broadcast() (addr.IPv4, bool) { return i.broadcast, i.hasBroadcast }

// IsUp reports whether the interface was administratively up
func (i *Interface) IsUp() bool { return i.flags&net.FlagUp != 0 }

// IsLoopback reports whether the interface is a loopback device
func (i *Interface) IsLoopback() bool { return i.flags&net.FlagLoopback != 0 }

// Network returns the CIDR block of the interface IPv4 subnet, e.g. "192.168.1.0/24".
func (i *Interface) Network() (string, bool) {
	if !i.hasIP || !i.hasNetmask {
		return "", false
	}
	return fmt.Sprintf("%s/%d", i.ip.And(i.netmask), bits.OnesCount32(i.netmask.Uint32())), true
}

func (i *Interface) String() string {
	var sb strings.Builder
	sb.WriteString(i.name)
	if i.hasMAC {
		sb.WriteString(" mac=")
		sb.WriteString(i.mac.String())
	}
	if i.hasIP {
		sb.WriteString(" ipv4=")
		sb.WriteString(i.ip.String())
	}
	if i.hasNetmask {
		sb.WriteString(" netmask=")
		sb.WriteString(i.netmask.String())
	}
	if i.hasBroadcast {
		sb.WriteString(" broadcast=")
		sb.WriteString(i.broadcast.String())
	}
	return sb.String()
}
