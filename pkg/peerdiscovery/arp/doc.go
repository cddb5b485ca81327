// Package arp reads the operating system neighbour (ARP) table.
//
// Entries come from /proc/net/arp on Linux and from "arp -a" on macOS and
// Windows. Incomplete, zero and broadcast entries are skipped.
//
// The table is consulted after an ICMP sweep: for hosts on the local link
// the kernel has just resolved their hardware address, so the sweep can
// record a MAC next to the IPv4 address without sending any ARP itself.
//
// Example usage:
//
//	neighbours := arp.NewCache(time.Second)
//	if mac, ok := neighbours.LookupMAC(ip); ok {
//		fmt.Println(ip, "is at", mac)
//	}
package arp
