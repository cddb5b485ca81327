package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"time"

	"github.com/projectdiscovery/gcache"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/interceptor/pkg/addr"
	"github.com/projectdiscovery/interceptor/pkg/iface"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultCacheSize = 1024
	DefaultCacheTTL  = 5 * time.Minute
	// maxPacketSize covers any ICMP message that fits in a standard MTU
	maxPacketSize = 1500
)

// Matcher reports whether an inbound packet answers the outstanding request
type Matcher func(reply []byte, peer netip.Addr) bool

// Request describes one send-and-wait exchange
type Request struct {
	// Target is a dotted quad or a hostname
	Target    string
	Payload   []byte
	Interface *iface.Interface
	Timeout   time.Duration
	// Match filters inbound traffic. When nil any packet from the resolved
	// target is accepted.
	Match Matcher
}

// Options configures a Transport
type Options struct {
	// Privileged selects raw sockets; otherwise unprivileged ICMP datagram
	// sockets are used.
	Privileged bool
	// Resolver performs hostname lookups, net.DefaultResolver when nil
	Resolver  *net.Resolver
	CacheSize int
	CacheTTL  time.Duration
	// Listen opens the per-exchange socket, ListenICMP when nil
	Listen ListenFunc
}

// Transport resolves targets and performs bounded request/reply exchanges.
// It is safe for concurrent use; each exchange opens and closes its own socket.
type Transport struct {
	options  Options
	dnsCache gcache.Cache[string, netip.Addr]
	lookups  singleflight.Group
}

// New returns a Transport, filling unset options with defaults
func New(options Options) *Transport {
	if options.Resolver == nil {
		options.Resolver = net.DefaultResolver
	}
	if options.CacheSize <= 0 {
		options.CacheSize = DefaultCacheSize
	}
	if options.CacheTTL <= 0 {
		options.CacheTTL = DefaultCacheTTL
	}
	if options.Listen == nil {
		options.Listen = ListenICMP
	}
	return &Transport{
		options: options,
		dnsCache: gcache.New[string, netip.Addr](options.CacheSize).
			LRU().
			Expiration(options.CacheTTL).
			Build(),
	}
}

// Privileged reports whether raw sockets are in use
func (t *Transport) Privileged() bool {
	return t.options.Privileged
}

// Resolve turns target into an IPv4 destination. Hostname answers are cached.
func (t *Transport) Resolve(ctx context.Context, target string) (netip.Addr, error) {
	if ip, err := addr.ParseIPv4(target); err == nil {
		return ip.Addr(), nil
	}
	if literal, err := netip.ParseAddr(target); err == nil {
		return netip.Addr{}, &HostUnresolvedError{Target: target, Err: fmt.Errorf("%s is not an IPv4 address", literal)}
	}
	if target == "" {
		return netip.Addr{}, &HostUnresolvedError{Target: target, Err: errors.New("empty target")}
	}

	if cached, err := t.dnsCache.Get(target); err == nil {
		return cached, nil
	}

	v, err, _ := t.lookups.Do(target, func() (any, error) {
		addrs, err := t.options.Resolver.LookupNetIP(ctx, "ip4", target)
		if err != nil {
			return netip.Addr{}, err
		}
		for _, a := range addrs {
			if a = a.Unmap(); a.Is4() {
				_ = t.dnsCache.Set(target, a)
				return a, nil
			}
		}
		return netip.Addr{}, errors.New("no IPv4 address")
	})
	if err != nil {
		return netip.Addr{}, &HostUnresolvedError{Target: target, Err: err}
	}
	return v.(netip.Addr), nil
}

// SendAndReceive resolves the target, sends the payload and waits for the
// first inbound packet accepted by the request matcher.
//
// It returns nil, nil when the timeout expires without a match. Unmatched
// packets are dropped and the wait goes on until the deadline. A
// HostUnresolvedError means nothing was sent.
func (t *Transport) SendAndReceive(ctx context.Context, req Request) ([]byte, error) {
	dst, err := t.Resolve(ctx, req.Target)
	if err != nil {
		return nil, err
	}

	conn, err := t.options.Listen(ctx, req.Interface, t.options.Privileged)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = conn.Close()
	}()

	deadline := time.Now().Add(req.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("failed to set deadline: %w", err)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	if _, err := conn.WriteTo(req.Payload, t.destination(dst)); err != nil {
		return nil, fmt.Errorf("failed to send to %s: %w", dst, err)
	}

	match := req.Match
	if match == nil {
		match = func(_ []byte, peer netip.Addr) bool { return peer == dst }
	}

	buf := make([]byte, maxPacketSize)
	for {
		n, from, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if isTimeout(err) {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to read reply from %s: %w", dst, err)
		}
		peer := peerAddr(from)
		if !match(buf[:n], peer) {
			gologger.Debug().Msgf("discarding %d bytes from %s while waiting for %s", n, peer, dst)
			continue
		}
		reply := make([]byte, n)
		copy(reply, buf[:n])
		return reply, nil
	}
}

func (t *Transport) destination(dst netip.Addr) net.Addr {
	if t.options.Privileged {
		return &net.IPAddr{IP: dst.AsSlice()}
	}
	return &net.UDPAddr{IP: dst.AsSlice()}
}

func peerAddr(a net.Addr) netip.Addr {
	var ip net.IP
	switch v := a.(type) {
	case *net.IPAddr:
		ip = v.IP
	case *net.UDPAddr:
		ip = v.IP
	default:
		return netip.Addr{}
	}
	out, _ := netip.AddrFromSlice(ip)
	return out.Unmap()
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
