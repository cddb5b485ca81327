package pingsweep

import (
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/interceptor/pkg/icmpecho"
)

// EventKind identifies a progress notification
type EventKind int

const (
	EventProbeSent EventKind = iota
	EventReply
	EventNoReply
	EventUnresolved
)

func (k EventKind) String() string {
	switch k {
	case EventProbeSent:
		return "probe-sent"
	case EventReply:
		return "reply"
	case EventNoReply:
		return "no-reply"
	case EventUnresolved:
		return "unresolved"
	}
	return "unknown"
}

// Event is one progress notification of a sweep. Reply and Peer are set
// for the kinds they apply to.
type Event struct {
	Kind   EventKind
	Target string
	Reply  icmpecho.Reply
	Peer   Peer
}

// Notifier receives sweep progress. Notify is called from many probes at
// once and must be safe for concurrent use.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(Event)

func (f NotifierFunc) Notify(e Event) { f(e) }

// LogNotifier writes events through gologger
type LogNotifier struct{}

func (LogNotifier) Notify(e Event) {
	switch e.Kind {
	case EventProbeSent:
		gologger.Debug().Msgf("Sending ICMP echo request to %s", e.Target)
	case EventReply:
		if e.Peer.MAC.IsZero() {
			gologger.Info().Msgf("Reply from %s (%s)", e.Target, e.Reply.RTT)
		} else {
			gologger.Info().Msgf("Reply from %s [%s] (%s)", e.Target, e.Peer.MAC, e.Reply.RTT)
		}
	case EventNoReply:
		gologger.Verbose().Msgf("No reply from %s", e.Target)
	case EventUnresolved:
		gologger.Warning().Msgf("Could not resolve %s", e.Target)
	}
}
