package icmpecho

import (
	"fmt"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

// DefaultPayload is the echo data sent when no payload is configured
var DefaultPayload = []byte("1234567890")

// protocolICMP is the IANA protocol number of ICMPv4
const protocolICMP = 1

// EchoRequest is an ICMPv4 Echo Request (type 8, code 0)
type EchoRequest struct {
	ID   uint16
	Seq  uint16
	Data []byte
}

// Marshal encodes the request with its checksum computed over the whole message
func (r EchoRequest) Marshal() ([]byte, error) {
	msg := &icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   int(r.ID),
			Seq:  int(r.Seq),
			Data: r.Data,
		},
	}
	b, err := msg.Marshal(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ICMP echo request: %w", err)
	}
	return b, nil
}

// EchoReply is a decoded ICMPv4 Echo Reply
type EchoReply struct {
	ID   uint16
	Seq  uint16
	Data []byte
}

// ParseEchoReply decodes b as an Echo Reply. ok is false for any other
// message type or when the checksum does not verify.
func ParseEchoReply(b []byte) (EchoReply, bool) {
	if len(b) < 8 || Checksum(b) != 0 {
		return EchoReply{}, false
	}
	msg, err := icmp.ParseMessage(protocolICMP, b)
	if err != nil || msg.Type != ipv4.ICMPTypeEchoReply {
		return EchoReply{}, false
	}
	echo, ok := msg.Body.(*icmp.Echo)
	if !ok {
		return EchoReply{}, false
	}
	return EchoReply{ID: uint16(echo.ID), Seq: uint16(echo.Seq), Data: echo.Data}, true
}

// Checksum is the RFC 1071 internet checksum. Over a message that already
// carries a valid checksum it returns 0.
func Checksum(b []byte) uint16 {
	var sum uint32
	for i := 0; i+1 < len(b); i += 2 {
		sum += uint32(b[i])<<8 | uint32(b[i+1])
	}
	if len(b)%2 == 1 {
		sum += uint32(b[len(b)-1]) << 8
	}
	for sum>>16 != 0 {
		sum = sum&0xffff + sum>>16
	}
	return ^uint16(sum)
}
