package iface

import (
	"net"

	"github.com/jackpal/gateway"
)

// System is the read-only view of the OS interface and routing tables
// the Resolver needs.
type System interface {
	Interfaces() ([]net.Interface, error)
	Addrs(ifi net.Interface) ([]net.Addr, error)
	// DefaultRoute returns the IPv4 default gateway and the local address of
	// the interface that reaches it.
	DefaultRoute() (gw net.IP, local net.IP, err error)
}

// Live queries the running host
var Live System = liveSystem{}

type liveSystem struct{}

func (liveSystem) Interfaces() ([]net.Interface, error) {
	return net.Interfaces()
}

func (liveSystem) Addrs(ifi net.Interface) ([]net.Addr, error) {
	return ifi.Addrs()
}

func (liveSystem) DefaultRoute() (net.IP, net.IP, error) {
	gw, err := gateway.DiscoverGateway()
	if err != nil {
		return nil, nil, err
	}
	local, err := gateway.DiscoverInterface()
	if err != nil {
		return nil, nil, err
	}
	return gw, local, nil
}
