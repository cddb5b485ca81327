package icmpecho

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/projectdiscovery/interceptor/pkg/iface"
	"github.com/projectdiscovery/interceptor/pkg/transport"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

type inbound struct {
	data []byte
	from net.Addr
}

// echoConn answers Echo Requests for the addresses in up, after first
// delivering a few packets that must not match.
type echoConn struct {
	up map[string]bool

	mu       sync.Mutex
	deadline time.Time
	sent     int
	inbox    chan inbound
	wake     chan struct{}
}

func newEchoConn(up ...string) *echoConn {
	c := &echoConn{
		up:    map[string]bool{},
		inbox: make(chan inbound, 16),
		wake:  make(chan struct{}, 1),
	}
	for _, ip := range up {
		c.up[ip] = true
	}
	return c
}

func echoReply(t icmp.Type, id, seq int, data []byte) []byte {
	b, err := (&icmp.Message{Type: t, Body: &icmp.Echo{ID: id, Seq: seq, Data: data}}).Marshal(nil)
	if err != nil {
		panic(err)
	}
	return b
}

func (c *echoConn) WriteTo(b []byte, dst net.Addr) (int, error) {
	c.mu.Lock()
	c.sent++
	c.mu.Unlock()

	ip := dst.(*net.IPAddr).IP
	msg, err := icmp.ParseMessage(protocolICMP, b)
	if err != nil {
		return 0, err
	}
	echo := msg.Body.(*icmp.Echo)

	// unrelated traffic arrives first
	c.inbox <- inbound{data: echoReply(ipv4.ICMPTypeEchoReply, echo.ID, echo.Seq, echo.Data), from: &net.IPAddr{IP: net.IPv4(203, 0, 113, 7)}}
	c.inbox <- inbound{data: echoReply(ipv4.ICMPTypeEchoReply, echo.ID, echo.Seq+1, echo.Data), from: &net.IPAddr{IP: ip}}
	c.inbox <- inbound{data: echoReply(ipv4.ICMPTypeEcho, echo.ID, echo.Seq, echo.Data), from: &net.IPAddr{IP: ip}}
	corrupt := echoReply(ipv4.ICMPTypeEchoReply, echo.ID, echo.Seq, echo.Data)
	corrupt[2] ^= 0xff
	c.inbox <- inbound{data: corrupt, from: &net.IPAddr{IP: ip}}

	if c.up[ip.String()] {
		c.inbox <- inbound{data: echoReply(ipv4.ICMPTypeEchoReply, echo.ID, echo.Seq, echo.Data), from: &net.IPAddr{IP: ip}}
	}
	return len(b), nil
}

func (c *echoConn) ReadFrom(b []byte) (int, net.Addr, error) {
	for {
		c.mu.Lock()
		deadline := c.deadline
		c.mu.Unlock()
		wait := time.Until(deadline)
		if wait <= 0 {
			return 0, nil, os.ErrDeadlineExceeded
		}
		select {
		case p := <-c.inbox:
			return copy(b, p.data), p.from, nil
		case <-time.After(wait):
			return 0, nil, os.ErrDeadlineExceeded
		case <-c.wake:
		}
	}
}

func (c *echoConn) SetDeadline(t time.Time) error {
	c.mu.Lock()
	c.deadline = t
	c.mu.Unlock()
	select {
	case c.wake <- struct{}{}:
	default:
	}
	return nil
}

func (c *echoConn) Close() error                       { return nil }
func (c *echoConn) LocalAddr() net.Addr                { return &net.IPAddr{IP: net.IPv4zero} }
func (c *echoConn) SetReadDeadline(t time.Time) error  { return c.SetDeadline(t) }
func (c *echoConn) SetWriteDeadline(t time.Time) error { return nil }

func newEngine(conn *echoConn) *Engine {
	tr := transport.New(transport.Options{
		Privileged: true,
		Resolver: &net.Resolver{
			PreferGo: true,
			Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
				return nil, errors.New("dns disabled in tests")
			},
		},
		Listen: func(ctx context.Context, ifc *iface.Interface, privileged bool) (net.PacketConn, error) {
			return conn, nil
		},
	})
	return New(tr, Options{Privileged: true})
}

func TestProbeUp(t *testing.T) {
	conn := newEchoConn("10.0.0.1")
	engine := newEngine(conn)

	reply, err := engine.Probe(context.Background(), "10.0.0.1", nil, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if reply.Result != ResultUp {
		t.Fatalf("Result = %s, want up", reply.Result)
	}
	if reply.Addr != netip.MustParseAddr("10.0.0.1") {
		t.Errorf("Addr = %s", reply.Addr)
	}
	if reply.RTT <= 0 {
		t.Errorf("RTT = %s", reply.RTT)
	}
}

func TestProbeNoReply(t *testing.T) {
	conn := newEchoConn()
	engine := newEngine(conn)

	timeout := 150 * time.Millisecond
	start := time.Now()
	reply, err := engine.Probe(context.Background(), "10.0.0.2", nil, timeout)
	elapsed := time.Since(start)
	if err != nil {
		t.Fatal(err)
	}
	if reply.Result != ResultNoReply {
		t.Fatalf("Result = %s, want no-reply", reply.Result)
	}
	if elapsed > timeout+time.Second {
		t.Errorf("probe took %s with a %s timeout", elapsed, timeout)
	}
}

func TestProbeUnresolved(t *testing.T) {
	conn := newEchoConn()
	engine := newEngine(conn)

	reply, err := engine.Probe(context.Background(), "host.invalid", nil, time.Second)
	if err != nil {
		t.Fatalf("unresolved must not be an error, got %v", err)
	}
	if reply.Result != ResultUnresolved {
		t.Errorf("Result = %s, want unresolved", reply.Result)
	}
	if conn.sent != 0 {
		t.Errorf("%d packets sent for an unresolved target", conn.sent)
	}
}

func TestProbeIdentifiersAreUnique(t *testing.T) {
	engine := newEngine(newEchoConn("10.0.0.1"))
	seen := map[[2]uint16]bool{}
	for i := 0; i < 32; i++ {
		reply, err := engine.Probe(context.Background(), "10.0.0.1", nil, time.Second)
		if err != nil {
			t.Fatal(err)
		}
		key := [2]uint16{reply.ID, reply.Seq}
		if seen[key] {
			t.Fatalf("identifier/sequence %v reused", key)
		}
		seen[key] = true
	}
}

func TestEchoRequestMarshal(t *testing.T) {
	b, err := EchoRequest{ID: 0x1234, Seq: 7, Data: DefaultPayload}.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != 8+len(DefaultPayload) {
		t.Fatalf("len = %d", len(b))
	}
	if b[0] != 8 || b[1] != 0 {
		t.Errorf("type/code = %d/%d, want 8/0", b[0], b[1])
	}
	if b[4] != 0x12 || b[5] != 0x34 || b[6] != 0 || b[7] != 7 {
		t.Errorf("id/seq bytes = % x", b[4:8])
	}
	if Checksum(b) != 0 {
		t.Errorf("checksum does not verify: %#x", Checksum(b))
	}
}

func TestChecksum(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want uint16
	}{
		// RFC 1071 section 3 example
		{name: "rfc1071", in: []byte{0x00, 0x01, 0xf2, 0x03, 0xf4, 0xf5, 0xf6, 0xf7}, want: ^uint16(0xddf2)},
		{name: "odd length", in: []byte{0x01}, want: ^uint16(0x0100)},
		{name: "empty", in: nil, want: 0xffff},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Checksum(tt.in); got != tt.want {
				t.Errorf("Checksum = %#04x, want %#04x", got, tt.want)
			}
		})
	}
}

func TestParseEchoReply(t *testing.T) {
	good := echoReply(ipv4.ICMPTypeEchoReply, 1, 2, []byte("abc"))
	reply, ok := ParseEchoReply(good)
	if !ok || reply.ID != 1 || reply.Seq != 2 || string(reply.Data) != "abc" {
		t.Errorf("ParseEchoReply = %+v, %v", reply, ok)
	}
	if _, ok := ParseEchoReply(echoReply(ipv4.ICMPTypeEcho, 1, 2, nil)); ok {
		t.Error("echo request accepted as reply")
	}
	bad := append([]byte(nil), good...)
	bad[len(bad)-1] ^= 0x01
	if _, ok := ParseEchoReply(bad); ok {
		t.Error("corrupt checksum accepted")
	}
	if _, ok := ParseEchoReply(good[:4]); ok {
		t.Error("truncated message accepted")
	}
}
