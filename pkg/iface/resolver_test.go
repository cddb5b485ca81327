package iface

import (
	"errors"
	"net"
	"testing"

	"github.com/projectdiscovery/interceptor/pkg/addr"
)

type fakeSystem struct {
	ifaces []net.Interface
	addrs  map[string][]net.Addr
	gw     net.IP
	local  net.IP
	err    error
}

func (f *fakeSystem) Interfaces() ([]net.Interface, error) {
	return f.ifaces, nil
}

func (f *fakeSystem) Addrs(ifi net.Interface) ([]net.Addr, error) {
	return f.addrs[ifi.Name], nil
}

func (f *fakeSystem) DefaultRoute() (net.IP, net.IP, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.gw, f.local, nil
}

func ipNet(cidr string) *net.IPNet {
	ip, n, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(err)
	}
	n.IP = ip
	return n
}

func newFakeSystem() *fakeSystem {
	eth0MAC, _ := net.ParseMAC("02:42:ac:11:00:02")
	wlanMAC, _ := net.ParseMAC("3c:22:fb:01:02:03")
	return &fakeSystem{
		ifaces: []net.Interface{
			{Index: 1, Name: "lo", Flags: net.FlagUp | net.FlagLoopback},
			{Index: 2, Name: "eth0", HardwareAddr: eth0MAC, Flags: net.FlagUp | net.FlagBroadcast},
			{Index: 3, Name: "wlan0", HardwareAddr: wlanMAC, Flags: net.FlagUp | net.FlagBroadcast},
			{Index: 4, Name: "tun0", Flags: net.FlagUp | net.FlagPointToPoint},
		},
		addrs: map[string][]net.Addr{
			"lo":    {ipNet("127.0.0.1/8")},
			"eth0":  {ipNet("fe80::42:acff:fe11:2/64"), ipNet("172.17.0.2/16"), ipNet("172.17.5.5/16")},
			"wlan0": {ipNet("192.168.1.23/24")},
			"tun0":  {ipNet("10.8.0.6/32")},
		},
		gw:    net.ParseIP("192.168.1.1"),
		local: net.ParseIP("192.168.1.23"),
	}
}

func TestResolveByName(t *testing.T) {
	r := NewResolver(newFakeSystem())

	ifc, err := r.ByName("eth0")
	if err != nil {
		t.Fatal(err)
	}
	if ifc.Name() != "eth0" || ifc.Index() != 2 {
		t.Errorf("got %s", ifc)
	}
	ip, ok := ifc.IPv4()
	if !ok || ip.String() != "172.17.0.2" {
		t.Errorf("IPv4() = %s, %v; want first IPv4 entry", ip, ok)
	}
	mask, ok := ifc.Netmask()
	if !ok || mask.String() != "255.255.0.0" {
		t.Errorf("Netmask() = %s, %v", mask, ok)
	}
	bc, ok := ifc.Broadcast()
	if !ok || bc.String() != "172.17.255.255" {
		t.Errorf("Broadcast() = %s, %v", bc, ok)
	}
	if network, ok := ifc.Network(); !ok || network != "172.17.0.0/16" {
		t.Errorf("Network() = %s, %v", network, ok)
	}

	_, err = r.ByName("does-not-exist0")
	if !errors.Is(err, ErrInterfaceNotFound) {
		t.Fatalf("expected ErrInterfaceNotFound, got %v", err)
	}
	var notFound *InterfaceNotFoundError
	if !errors.As(err, &notFound) || notFound.By != "name" {
		t.Errorf("unexpected error detail %#v", err)
	}
}

func TestBroadcastRequiresFlag(t *testing.T) {
	r := NewResolver(newFakeSystem())
	ifc, err := r.ByName("tun0")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := ifc.Broadcast(); ok {
		t.Error("point-to-point interface must not report a broadcast address")
	}
	if _, ok := ifc.MAC(); ok {
		t.Error("tun0 has no hardware address")
	}
}

func TestResolveByIPv4(t *testing.T) {
	r := NewResolver(newFakeSystem())

	tests := []struct {
		ip   string
		want string
	}{
		{ip: "192.168.1.23", want: "wlan0"},
		{ip: "172.17.0.2", want: "eth0"},
		// a secondary address still identifies the interface
		{ip: "172.17.5.5", want: "eth0"},
		{ip: "127.0.0.1", want: "lo"},
	}
	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			ifc, err := r.ByIPv4(addr.MustParseIPv4(tt.ip))
			if err != nil {
				t.Fatal(err)
			}
			if ifc.Name() != tt.want {
				t.Errorf("ByIPv4(%s).Name() = %s, want %s", tt.ip, ifc.Name(), tt.want)
			}
		})
	}

	if _, err := r.ByIPv4(addr.MustParseIPv4("8.8.8.8")); !errors.Is(err, ErrInterfaceNotFound) {
		t.Errorf("expected ErrInterfaceNotFound, got %v", err)
	}
}

func TestResolveSelector(t *testing.T) {
	r := NewResolver(newFakeSystem())

	tests := []struct {
		selector string
		want     string
		wantErr  bool
	}{
		{selector: "wlan0", want: "wlan0"},
		{selector: "192.168.1.23", want: "wlan0"},
		{selector: "02:42:ac:11:00:02", want: "eth0"},
		{selector: "3C-22-FB-01-02-03", want: "wlan0"},
		{selector: "aa:bb:cc:dd:ee:ff", wantErr: true},
		{selector: "10.10.10.10", wantErr: true},
		{selector: "eth9", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			ifc, err := r.Resolve(tt.selector)
			if tt.wantErr {
				if !errors.Is(err, ErrInterfaceNotFound) {
					t.Fatalf("Resolve(%q) error = %v, want ErrInterfaceNotFound", tt.selector, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if ifc.Name() != tt.want {
				t.Errorf("Resolve(%q) = %s, want %s", tt.selector, ifc.Name(), tt.want)
			}
		})
	}
}

func TestDefaultRoute(t *testing.T) {
	sys := newFakeSystem()
	r := NewResolver(sys)

	ifc, err := r.DefaultInterface(FamilyIPv4)
	if err != nil {
		t.Fatal(err)
	}
	if ifc == nil || ifc.Name() != "wlan0" {
		t.Fatalf("DefaultInterface = %v, want wlan0", ifc)
	}
	gw, err := r.DefaultGateway(FamilyIPv4)
	if err != nil {
		t.Fatal(err)
	}
	if gw == nil || gw.String() != "192.168.1.1" {
		t.Errorf("DefaultGateway = %v", gw)
	}

	if _, err := r.DefaultInterface(FamilyIPv6); !errors.Is(err, ErrUnsupportedFamily) {
		t.Errorf("expected ErrUnsupportedFamily, got %v", err)
	}

	sys.err = errors.New("no gateway found")
	ifc, err = r.DefaultInterface(FamilyIPv4)
	if err != nil || ifc != nil {
		t.Errorf("without default route: got %v, %v; want nil, nil", ifc, err)
	}
	gw, err = r.DefaultGateway(FamilyIPv4)
	if err != nil || gw != nil {
		t.Errorf("without default route: got %v, %v; want nil, nil", gw, err)
	}
}

func TestNoCaching(t *testing.T) {
	sys := newFakeSystem()
	r := NewResolver(sys)

	if _, err := r.ByName("wlan0"); err != nil {
		t.Fatal(err)
	}
	sys.addrs["wlan0"] = []net.Addr{ipNet("192.168.7.9/24")}

	ifc, err := r.ByName("wlan0")
	if err != nil {
		t.Fatal(err)
	}
	if ip, _ := ifc.IPv4(); ip.String() != "192.168.7.9" {
		t.Errorf("resolver returned stale address %s", ip)
	}
}

func TestLocalNetworks(t *testing.T) {
	r := NewResolver(newFakeSystem())
	networks, err := r.LocalNetworks()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"172.17.0.0/24", "192.168.1.0/24", "10.8.0.6/32"}
	if len(networks) != len(want) {
		t.Fatalf("LocalNetworks() = %v, want %v", networks, want)
	}
	for i := range want {
		if networks[i].Network != want[i] {
			t.Errorf("LocalNetworks()[%d] = %s, want %s", i, networks[i].Network, want[i])
		}
		if networks[i].Interface == nil {
			t.Errorf("LocalNetworks()[%d] has no interface", i)
		} else if got, _ := LocalNetwork(networks[i].Interface); got != want[i] {
			t.Errorf("LocalNetworks()[%d] interface %s is on %s", i, networks[i].Interface.Name(), got)
		}
	}
}

func TestLocalNetworkNil(t *testing.T) {
	if network, ok := LocalNetwork(nil); ok || network != "" {
		t.Errorf("LocalNetwork(nil) = %q, %v", network, ok)
	}
}
