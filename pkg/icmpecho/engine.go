package icmpecho

import (
	"bytes"
	"context"
	"errors"
	"net/netip"
	"os"
	"sync/atomic"
	"time"

	"github.com/projectdiscovery/interceptor/pkg/iface"
	"github.com/projectdiscovery/interceptor/pkg/transport"
)

// Result is the outcome of a single probe
type Result int

const (
	// ResultNoReply means the deadline passed without a matching reply
	ResultNoReply Result = iota
	// ResultUp means a matching Echo Reply arrived in time
	ResultUp
	// ResultUnresolved means the target never resolved and nothing was sent
	ResultUnresolved
)

func (r Result) String() string {
	switch r {
	case ResultUp:
		return "up"
	case ResultNoReply:
		return "no-reply"
	case ResultUnresolved:
		return "unresolved"
	}
	return "unknown"
}

// Sender is the part of the transport the engine relies on
type Sender interface {
	Resolve(ctx context.Context, target string) (netip.Addr, error)
	SendAndReceive(ctx context.Context, req transport.Request) ([]byte, error)
}

// Options configures an Engine
type Options struct {
	// Payload is the echo data, DefaultPayload when empty
	Payload []byte
	// Privileged must match the transport mode. Unprivileged ICMP sockets
	// have their identifier rewritten by the kernel so replies are not
	// matched on it.
	Privileged bool
}

// Reply describes how a probe ended
type Reply struct {
	Target string
	Addr   netip.Addr
	Result Result
	RTT    time.Duration
	ID     uint16
	Seq    uint16
}

// Engine sends one Echo Request per Probe call. It does not retry.
type Engine struct {
	sender  Sender
	options Options
	counter atomic.Uint32
	base    uint16
}

// New returns an Engine that sends through sender
func New(sender Sender, options Options) *Engine {
	if len(options.Payload) == 0 {
		options.Payload = DefaultPayload
	}
	return &Engine{
		sender:  sender,
		options: options,
		base:    uint16(os.Getpid()),
	}
}

// nextIDs hands out an identifier and sequence number pair that is unique
// among the last 65536 probes of this engine
func (e *Engine) nextIDs() (id, seq uint16) {
	n := e.counter.Add(1)
	return e.base + uint16(n), uint16(n)
}

// Probe sends one Echo Request to target and waits up to timeout for the
// matching reply. Unresolved targets and missing replies are reported
// through Reply.Result; only socket failures are returned as errors.
func (e *Engine) Probe(ctx context.Context, target string, ifc *iface.Interface, timeout time.Duration) (Reply, error) {
	out := Reply{Target: target, Result: ResultNoReply}

	dst, err := e.sender.Resolve(ctx, target)
	if err != nil {
		if errors.Is(err, transport.ErrHostUnresolved) {
			out.Result = ResultUnresolved
			return out, nil
		}
		return out, err
	}
	out.Addr = dst
	out.ID, out.Seq = e.nextIDs()

	payload, err := EchoRequest{ID: out.ID, Seq: out.Seq, Data: e.options.Payload}.Marshal()
	if err != nil {
		return out, err
	}

	start := time.Now()
	reply, err := e.sender.SendAndReceive(ctx, transport.Request{
		Target:    dst.String(),
		Payload:   payload,
		Interface: ifc,
		Timeout:   timeout,
		Match:     e.matcher(dst, out.ID, out.Seq),
	})
	switch {
	case errors.Is(err, transport.ErrHostUnresolved):
		out.Result = ResultUnresolved
		return out, nil
	case err != nil:
		return out, err
	case reply == nil:
		return out, nil
	}
	out.RTT = time.Since(start)
	out.Result = ResultUp
	return out, nil
}

func (e *Engine) matcher(dst netip.Addr, id, seq uint16) transport.Matcher {
	return func(b []byte, peer netip.Addr) bool {
		if peer != dst {
			return false
		}
		reply, ok := ParseEchoReply(b)
		if !ok || reply.Seq != seq {
			return false
		}
		if e.options.Privileged && reply.ID != id {
			return false
		}
		return bytes.Equal(reply.Data, e.options.Payload)
	}
}
