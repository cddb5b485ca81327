package ethernet

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/projectdiscovery/interceptor/pkg/addr"
	"github.com/projectdiscovery/interceptor/pkg/iface"
)

// HeaderLen is the size of an Ethernet II header: dst(6) + src(6) + type(2)
const HeaderLen = 14

var (
	// ErrTruncatedFrame is returned when a buffer is shorter than HeaderLen
	ErrTruncatedFrame = errors.New("truncated ethernet frame")
	// ErrNoDefaultInterface is returned when a source MAC is required but no interface provides one
	ErrNoDefaultInterface = errors.New("no default interface with a hardware address")
)

// EtherType identifies the protocol carried in the frame payload
type EtherType uint16

const (
	EtherTypeIPv4 EtherType = 0x0800
	EtherTypeARP  EtherType = 0x0806
	EtherTypeVLAN EtherType = 0x8100
	EtherTypeIPv6 EtherType = 0x86dd
)

func (e EtherType) String() string {
	return fmt.Sprintf("%04x %s", uint16(e), layers.EthernetType(e).String())
}

// Frame is an Ethernet II frame. The payload is opaque at this layer.
type Frame struct {
	Dst     addr.MAC
	Src     addr.MAC
	Proto   EtherType
	Payload []byte
}

// New builds a frame with an explicit source address
func New(proto EtherType, dst, src addr.MAC, payload []byte) *Frame {
	return &Frame{Dst: dst, Src: src, Proto: proto, Payload: payload}
}

// SourceMAC returns the hardware address of ifc. Callers usually pass the
// result of Resolver.DefaultInterface, which is nil when the host has no
// default route.
func SourceMAC(ifc *iface.Interface) (addr.MAC, error) {
	if ifc == nil {
		return addr.MAC{}, ErrNoDefaultInterface
	}
	mac, ok := ifc.MAC()
	if !ok {
		return addr.MAC{}, fmt.Errorf("%w: %s", ErrNoDefaultInterface, ifc.Name())
	}
	return mac, nil
}

// NewFromInterface builds a frame whose source is the hardware address of ifc
func NewFromInterface(proto EtherType, dst addr.MAC, ifc *iface.Interface, payload []byte) (*Frame, error) {
	src, err := SourceMAC(ifc)
	if err != nil {
		return nil, err
	}
	return New(proto, dst, src, payload), nil
}

// Marshal returns dst, src, the big-endian EtherType and the payload,
// with no padding or frame check sequence.
func (f *Frame) Marshal() []byte {
	buf := make([]byte, HeaderLen+len(f.Payload))
	dst, src := f.Dst.Array(), f.Src.Array()
	copy(buf[0:6], dst[:])
	copy(buf[6:12], src[:])
	binary.BigEndian.PutUint16(buf[12:14], uint16(f.Proto))
	copy(buf[HeaderLen:], f.Payload)
	return buf
}

// Parse decodes an Ethernet II header. Anything after the header is kept
// verbatim as payload and the EtherType is not validated.
func Parse(b []byte) (*Frame, error) {
	if len(b) < HeaderLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncatedFrame, len(b))
	}
	dst, _ := addr.MACFromBytes(b[0:6])
	src, _ := addr.MACFromBytes(b[6:12])
	payload := make([]byte, len(b)-HeaderLen)
	copy(payload, b[HeaderLen:])
	return &Frame{
		Dst:     dst,
		Src:     src,
		Proto:   EtherType(binary.BigEndian.Uint16(b[12:14])),
		Payload: payload,
	}, nil
}

// Equal reports whether both frames have the same header and payload
func (f *Frame) Equal(o *Frame) bool {
	if f == nil || o == nil {
		return f == o
	}
	return f.Dst == o.Dst && f.Src == o.Src && f.Proto == o.Proto && bytes.Equal(f.Payload, o.Payload)
}

// Packet decodes the serialized frame with gopacket so higher layers can be
// inspected. Decoding errors are reported through the packet's ErrorLayer.
func (f *Frame) Packet() gopacket.Packet {
	return gopacket.NewPacket(f.Marshal(), layers.LayerTypeEthernet, gopacket.Default)
}

func (f *Frame) String() string {
	return fmt.Sprintf("%s -> %s (%s) %d bytes", f.Src, f.Dst, f.Proto, len(f.Payload))
}
