// Package ethernet builds and parses Ethernet II frames.
//
// Serialization is the exact header layout with no padding or FCS, so that
// frames round-trip byte for byte. Payloads are opaque here; Frame.Packet
// hands a frame to gopacket when higher layers need to be decoded.
package ethernet
