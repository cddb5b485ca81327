package transport

import (
	"context"
	"fmt"
	"net"

	"github.com/projectdiscovery/interceptor/pkg/iface"
	"golang.org/x/net/icmp"
)

// ListenFunc opens the socket a single exchange is performed on
type ListenFunc func(ctx context.Context, ifc *iface.Interface, privileged bool) (net.PacketConn, error)

// ListenICMP opens an ICMPv4 socket. In privileged mode this is a raw
// "ip4:icmp" socket bound to ifc's device and address; otherwise it is an
// unprivileged "udp4" datagram socket bound to ifc's address only.
func ListenICMP(ctx context.Context, ifc *iface.Interface, privileged bool) (net.PacketConn, error) {
	local := "0.0.0.0"
	device := ""
	if ifc != nil {
		if ip, ok := ifc.IPv4(); ok {
			local = ip.String()
		}
		device = ifc.Name()
	}

	if !privileged {
		conn, err := icmp.ListenPacket("udp4", local)
		if err != nil {
			return nil, fmt.Errorf("failed to open unprivileged icmp socket on %s: %w", local, err)
		}
		return conn, nil
	}

	lc := net.ListenConfig{Control: bindToDevice(device)}
	conn, err := lc.ListenPacket(ctx, "ip4:icmp", local)
	if err != nil {
		return nil, fmt.Errorf("failed to open raw icmp socket on %s: %w", local, err)
	}
	return conn, nil
}
