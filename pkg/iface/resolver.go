package iface

import (
	"fmt"
	"net"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/interceptor/pkg/addr"
)

// Family selects the address family of a default route query
type Family int

const (
	FamilyIPv4 Family = 4
	FamilyIPv6 Family = 6
)

func (f Family) String() string {
	switch f {
	case FamilyIPv4:
		return "ipv4"
	case FamilyIPv6:
		return "ipv6"
	}
	return fmt.Sprintf("family(%d)", int(f))
}

// Resolver maps names, IPv4 and MAC addresses to local interfaces.
//
// Nothing is cached: every call re-reads the System tables, so results
// follow link and address changes. A Resolver is safe for concurrent use.
type Resolver struct {
	sys System
}

// NewResolver returns a resolver over sys, or over the live host when sys is nil
func NewResolver(sys System) *Resolver {
	if sys == nil {
		sys = Live
	}
	return &Resolver{sys: sys}
}

// Interfaces lists every system interface in OS order
func (r *Resolver) Interfaces() ([]*Interface, error) {
	ifis, err := r.sys.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to list interfaces: %w", err)
	}
	out := make([]*Interface, 0, len(ifis))
	for _, ifi := range ifis {
		out = append(out, r.snapshot(ifi))
	}
	return out, nil
}

// ByName returns the interface with exactly this name
func (r *Resolver) ByName(name string) (*Interface, error) {
	return r.find("name", name, func(i *Interface) bool {
		return i.Name() == name
	})
}

// ByIPv4 returns the first interface, in OS order, that owns ip
func (r *Resolver) ByIPv4(ip addr.IPv4) (*Interface, error) {
	ifis, err := r.sys.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to list interfaces: %w", err)
	}
	for _, ifi := range ifis {
		addrs, err := r.sys.Addrs(ifi)
		if err != nil {
			continue
		}
		// any IPv4 entry counts, not only the first one
		for _, a := range addrs {
			var candidate net.IP
			switch v := a.(type) {
			case *net.IPNet:
				candidate = v.IP
			case *net.IPAddr:
				candidate = v.IP
			}
			if owned, err := addr.IPv4FromNetIP(candidate); err == nil && owned == ip {
				return FromNet(ifi, addrs), nil
			}
		}
	}
	return nil, &InterfaceNotFoundError{By: "ipv4", Selector: ip.String()}
}

// ByMAC returns the first interface, in OS order, whose hardware address is mac
func (r *Resolver) ByMAC(mac addr.MAC) (*Interface, error) {
	return r.find("mac", mac.String(), func(i *Interface) bool {
		m, ok := i.MAC()
		return ok && m == mac
	})
}

// Resolve classifies selector as a dotted quad, a MAC address or an
// interface name, in that order, and looks it up accordingly.
func (r *Resolver) Resolve(selector string) (*Interface, error) {
	if ip, err := addr.ParseIPv4(selector); err == nil {
		return r.ByIPv4(ip)
	}
	if mac, err := addr.ParseMAC(selector); err == nil {
		return r.ByMAC(mac)
	}
	return r.ByName(selector)
}

// DefaultInterface returns the interface that carries the default route.
// It returns nil, nil when the host has no default route for family.
func (r *Resolver) DefaultInterface(family Family) (*Interface, error) {
	if family != FamilyIPv4 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFamily, family)
	}
	_, local, ok := r.defaultRoute()
	if !ok {
		return nil, nil
	}
	ip, err := addr.IPv4FromNetIP(local)
	if err != nil {
		return nil, nil
	}
	return r.ByIPv4(ip)
}

// DefaultGateway returns the next hop of the default route.
// It returns nil, nil when the host has no default route for family.
func (r *Resolver) DefaultGateway(family Family) (*addr.IPv4, error) {
	if family != FamilyIPv4 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFamily, family)
	}
	gw, _, ok := r.defaultRoute()
	if !ok {
		return nil, nil
	}
	ip, err := addr.IPv4FromNetIP(gw)
	if err != nil {
		return nil, nil
	}
	return &ip, nil
}

// LocalNet is a sweepable subnet and the interface attached to it
type LocalNet struct {
	Network   string
	Interface *Interface
}

// LocalNetworks returns the private IPv4 subnets of every up, non-loopback
// interface. Subnets wider than /24 are narrowed to the /24 around the
// interface address so that autodiscovery stays a bounded sweep. A subnet
// reachable through several interfaces is listed once, with the first.
func (r *Resolver) LocalNetworks() ([]LocalNet, error) {
	ifaces, err := r.Interfaces()
	if err != nil {
		return nil, err
	}

	var networks []LocalNet
	seen := make(map[string]struct{})
	for _, ifc := range ifaces {
		if !ifc.IsUp() || ifc.IsLoopback() {
			continue
		}
		network, ok := LocalNetwork(ifc)
		if !ok {
			continue
		}
		if _, exists := seen[network]; exists {
			continue
		}
		seen[network] = struct{}{}
		networks = append(networks, LocalNet{Network: network, Interface: ifc})
	}
	return networks, nil
}

// LocalNetwork returns the sweepable subnet of a single interface, using the
// same /24 narrowing as LocalNetworks. Only private addresses qualify.
func LocalNetwork(ifc *Interface) (string, bool) {
	if ifc == nil {
		return "", false
	}
	ip, ok := ifc.IPv4()
	if !ok || !ip.IP().IsPrivate() {
		return "", false
	}
	if mask, ok := ifc.Netmask(); ok && mask.Uint32() >= addr.MaskFromPrefix(24).Uint32() {
		return ifc.Network()
	}
	return fmt.Sprintf("%s/24", ip.And(addr.MaskFromPrefix(24))), true
}

func (r *Resolver) find(by, selector string, match func(*Interface) bool) (*Interface, error) {
	ifis, err := r.sys.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to list interfaces: %w", err)
	}
	for _, ifi := range ifis {
		if i := r.snapshot(ifi); match(i) {
			return i, nil
		}
	}
	return nil, &InterfaceNotFoundError{By: by, Selector: selector}
}

func (r *Resolver) snapshot(ifi net.Interface) *Interface {
	addrs, err := r.sys.Addrs(ifi)
	if err != nil {
		gologger.Debug().Msgf("could not read addresses of %s: %v", ifi.Name, err)
	}
	return FromNet(ifi, addrs)
}

// defaultRoute treats any routing table error as the absence of a default route
func (r *Resolver) defaultRoute() (gw, local net.IP, ok bool) {
	gw, local, err := r.sys.DefaultRoute()
	if err != nil {
		gologger.Debug().Msgf("no default route: %v", err)
		return nil, nil, false
	}
	return gw, local, true
}
