// Package pingsweep discovers live hosts on an IPv4 range with ICMP echo.
//
// A range is either a CIDR block ("192.168.1.0/24") or an inclusive
// start-end pair ("10.0.0.1-10.0.0.20"). Every address gets one probe;
// probes run concurrently up to Options.Concurrency.
//
// Hosts that answer are recorded in the host store, one session per probe.
// Hosts that stay silent are never removed from the store.
//
// Example usage:
//
//	engine := icmpecho.New(tr, icmpecho.Options{Privileged: tr.Privileged()})
//	sweeper := pingsweep.New(engine, pingsweep.FromStore(db), pingsweep.Options{
//		Neighbours: arp.NewCache(time.Second),
//	})
//	ok, err := sweeper.Run(ctx, "192.168.1.0/24", 5*time.Second, ifc)
//
// Privilege Requirements:
// - Raw ICMP sockets require root/admin privileges on most systems
// - Unprivileged mode uses datagram ICMP sockets (Linux ping_group_range, macOS)
//
// Limitations:
// - Hosts with ICMP disabled or firewalled will not respond
// - Some networks may rate-limit ICMP traffic
package pingsweep
