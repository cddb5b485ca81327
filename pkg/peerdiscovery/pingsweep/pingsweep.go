package pingsweep

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"sync/atomic"
	"time"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/interceptor/pkg/addr"
	"github.com/projectdiscovery/interceptor/pkg/icmpecho"
	"github.com/projectdiscovery/interceptor/pkg/iface"
	"github.com/projectdiscovery/interceptor/pkg/peerdiscovery/prescan"
	"github.com/projectdiscovery/interceptor/pkg/store"
	mapsutil "github.com/projectdiscovery/utils/maps"
	syncutil "github.com/projectdiscovery/utils/sync"
	"github.com/rs/xid"
)

// DefaultConcurrency bounds the number of probes in flight
const DefaultConcurrency = 256

// MaxPrioritized is the largest range that is reordered by likelihood.
// Larger ranges are probed in ascending order.
const MaxPrioritized = 1 << 16

// ErrNoInterface is returned by Autodiscover without an interface
var ErrNoInterface = errors.New("no interface to autodiscover on")

// Prober sends one echo probe and reports its outcome
type Prober interface {
	Probe(ctx context.Context, target string, ifc *iface.Interface, timeout time.Duration) (icmpecho.Reply, error)
}

// Session is the part of a store session a probe writes through
type Session interface {
	EnsureHost(ctx context.Context, q store.HostQuery) (id int64, created bool, err error)
	Close() error
}

// Opener opens one store session; every probe that finds a live host
// opens its own
type Opener func(ctx context.Context) (Session, error)

// FromStore adapts a host store to an Opener
func FromStore(s *store.Store) Opener {
	return func(ctx context.Context) (Session, error) {
		sess, err := s.Session(ctx)
		if err != nil {
			return nil, err
		}
		return sess, nil
	}
}

// Neighbours looks up hardware addresses of hosts on the local link
type Neighbours interface {
	LookupMAC(ip addr.IPv4) (addr.MAC, bool)
}

// Options configures a Sweeper
type Options struct {
	// Concurrency is the maximum number of probes in flight, DefaultConcurrency when zero
	Concurrency int
	// Notifier receives progress events, gologger output when nil
	Notifier Notifier
	// Neighbours, when set, supplies MACs for the hosts that answer
	Neighbours Neighbours
	// Prioritize starts probes for likely hosts (gateways, early DHCP
	// leases) first instead of in ascending order
	Prioritize bool
}

// Peer is a host that answered during a sweep
type Peer struct {
	IP      addr.IPv4
	MAC     addr.MAC // zero when unknown
	RTT     time.Duration
	HostID  int64
	Created bool
}

// Summary describes a finished sweep
type Summary struct {
	ID         string
	Range      addr.Range
	Probed     int
	Up         int
	NoReply    int
	Unresolved int
	Failed     int
	// Peers is sorted by address
	Peers []Peer
}

// Sweeper probes every address of a range and records live hosts
type Sweeper struct {
	prober  Prober
	open    Opener
	options Options
}

// New returns a Sweeper that probes with prober and writes through open
func New(prober Prober, open Opener, options Options) *Sweeper {
	if options.Concurrency <= 0 {
		options.Concurrency = DefaultConcurrency
	}
	if options.Notifier == nil {
		options.Notifier = LogNotifier{}
	}
	return &Sweeper{prober: prober, open: open, options: options}
}

// Run sweeps rangeSpec and returns true once every probe has finished.
// A malformed range returns false with an InvalidRangeError and sends
// nothing; failures of individual probes do not fail the sweep.
func (s *Sweeper) Run(ctx context.Context, rangeSpec string, timeout time.Duration, ifc *iface.Interface) (bool, error) {
	if _, err := s.Sweep(ctx, rangeSpec, timeout, ifc); err != nil {
		return false, err
	}
	return true, nil
}

// Sweep is Run with the per-sweep results
func (s *Sweeper) Sweep(ctx context.Context, rangeSpec string, timeout time.Duration, ifc *iface.Interface) (*Summary, error) {
	r, err := addr.ParseRange(rangeSpec)
	if err != nil {
		return nil, err
	}
	return s.SweepRange(ctx, r, timeout, ifc)
}

// SweepRange probes every address of r. Once ctx is done no further probes
// are started; probes already in flight run to their own end.
func (s *Sweeper) SweepRange(ctx context.Context, r addr.Range, timeout time.Duration, ifc *iface.Interface) (*Summary, error) {
	awg, err := syncutil.New(syncutil.WithSize(s.options.Concurrency))
	if err != nil {
		return nil, err
	}

	sum := &Summary{ID: xid.New().String(), Range: r}
	gologger.Debug().Msgf("sweep %s: probing %d addresses of %s", sum.ID, r.Len(), r)

	peers := mapsutil.NewSyncLockMap[addr.IPv4, Peer]()
	var probed, noReply, unresolved, failed atomic.Int64

	for ip := range s.addresses(r) {
		if ctx.Err() != nil {
			gologger.Debug().Msgf("sweep %s: cancelled, not starting further probes", sum.ID)
			break
		}
		awg.Add()
		go func(ip addr.IPv4) {
			defer awg.Done()
			probed.Add(1)

			peer, result, err := s.probe(ctx, ip, timeout, ifc)
			switch {
			case err != nil:
				failed.Add(1)
				gologger.Debug().Msgf("sweep %s: probe of %s failed: %v", sum.ID, ip, err)
			case result == icmpecho.ResultUp:
				_ = peers.Set(ip, peer)
			case result == icmpecho.ResultNoReply:
				noReply.Add(1)
			case result == icmpecho.ResultUnresolved:
				unresolved.Add(1)
			}
		}(ip)
	}
	awg.Wait()

	_ = peers.Iterate(func(_ addr.IPv4, p Peer) error {
		sum.Peers = append(sum.Peers, p)
		return nil
	})
	slices.SortFunc(sum.Peers, func(a, b Peer) int { return a.IP.Compare(b.IP) })

	sum.Probed = int(probed.Load())
	sum.Up = len(sum.Peers)
	sum.NoReply = int(noReply.Load())
	sum.Unresolved = int(unresolved.Load())
	sum.Failed = int(failed.Load())
	return sum, nil
}

func (s *Sweeper) addresses(r addr.Range) iter.Seq[addr.IPv4] {
	if s.options.Prioritize {
		if r.Len() <= MaxPrioritized {
			return slices.Values(prescan.Order(r))
		}
		gologger.Debug().Msgf("%s has more than %d addresses, probing in ascending order", r, MaxPrioritized)
	}
	return r.All()
}

func (s *Sweeper) probe(ctx context.Context, ip addr.IPv4, timeout time.Duration, ifc *iface.Interface) (Peer, icmpecho.Result, error) {
	target := ip.String()
	s.options.Notifier.Notify(Event{Kind: EventProbeSent, Target: target})

	reply, err := s.prober.Probe(ctx, target, ifc, timeout)
	if err != nil {
		return Peer{}, reply.Result, err
	}
	switch reply.Result {
	case icmpecho.ResultNoReply:
		s.options.Notifier.Notify(Event{Kind: EventNoReply, Target: target, Reply: reply})
		return Peer{}, reply.Result, nil
	case icmpecho.ResultUnresolved:
		s.options.Notifier.Notify(Event{Kind: EventUnresolved, Target: target, Reply: reply})
		return Peer{}, reply.Result, nil
	}

	peer := Peer{IP: ip, RTT: reply.RTT}
	if s.options.Neighbours != nil {
		if mac, ok := s.options.Neighbours.LookupMAC(ip); ok {
			peer.MAC = mac
		}
	}
	if err := s.record(ctx, &peer); err != nil {
		return Peer{}, reply.Result, err
	}
	s.options.Notifier.Notify(Event{Kind: EventReply, Target: target, Reply: reply, Peer: peer})
	return peer, reply.Result, nil
}

// record makes sure a host exists for peer. Existing records are only ever
// added to.
func (s *Sweeper) record(ctx context.Context, peer *Peer) error {
	sess, err := s.open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open store session: %w", err)
	}
	defer func() {
		_ = sess.Close()
	}()

	q := store.HostQuery{IPv4: peer.IP.String()}
	if !peer.MAC.IsZero() {
		q.MAC = peer.MAC.String()
	}
	peer.HostID, peer.Created, err = sess.EnsureHost(ctx, q)
	if err != nil {
		return fmt.Errorf("failed to record host %s: %w", peer.IP, err)
	}
	return nil
}

// Autodiscover sweeps the private subnet ifc is attached to, narrowed to a /24
func (s *Sweeper) Autodiscover(ctx context.Context, ifc *iface.Interface, timeout time.Duration) (*Summary, error) {
	if ifc == nil {
		return nil, ErrNoInterface
	}
	network, ok := iface.LocalNetwork(ifc)
	if !ok {
		return nil, fmt.Errorf("interface %s has no private IPv4 network", ifc.Name())
	}
	return s.Sweep(ctx, network, timeout, ifc)
}

// AutodiscoverAll sweeps every network in turn, each through its own
// interface
func (s *Sweeper) AutodiscoverAll(ctx context.Context, networks []iface.LocalNet, timeout time.Duration) ([]*Summary, error) {
	summaries := make([]*Summary, 0, len(networks))
	for _, n := range networks {
		if ctx.Err() != nil {
			break
		}
		sum, err := s.Sweep(ctx, n.Network, timeout, n.Interface)
		if err != nil {
			return summaries, err
		}
		gologger.Info().Msgf("Swept %s on %s: %d of %d up", n.Network, n.Interface.Name(), sum.Up, sum.Probed)
		summaries = append(summaries, sum)
	}
	return summaries, nil
}
