// Package iface resolves local network interfaces by name, IPv4 address or
// MAC address and reports the host's IPv4 default route.
//
// Lookups go through a System, which is the live host by default and a
// fake in tests. Results are snapshots: the resolver keeps no state between
// calls.
package iface
