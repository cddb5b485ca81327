package pingsweep

import (
	"context"
	"errors"
	"fmt"

	"github.com/projectdiscovery/interceptor/pkg/iface"
	"github.com/projectdiscovery/interceptor/pkg/module"
)

// ModuleName is the registry name of the sweep module
const ModuleName = "discover/icmp/pingsweep"

// TypeInterface is the parameter type of a local interface selector
const TypeInterface module.Type = "interface"

// DefaultTimeout is the per-probe timeout in seconds
const DefaultTimeout = 5.0

var errNoDefaultInterface = errors.New("no default interface, set the interface option")

// Module exposes a Sweeper through the module facade
type Module struct {
	sweeper *Sweeper
	params  *module.ParamSet
}

// NewModule wraps sweeper. Interface selectors and the default interface
// are looked up through resolver at the time they are used.
func NewModule(sweeper *Sweeper, resolver *iface.Resolver) *Module {
	return &Module{
		sweeper: sweeper,
		params: module.NewParamSet(
			module.Param{
				Name:        "range",
				Type:        module.TypeString,
				Description: "CIDR block or start-end range to sweep",
			},
			module.Param{
				Name:        "timeout",
				Type:        module.TypeFloat,
				Description: "seconds to wait for each reply",
				Default:     DefaultTimeout,
			},
			module.Param{
				Name:        "interface",
				Type:        TypeInterface,
				Description: "interface name, IPv4 or MAC address to send from",
				DefaultText: "<default interface>",
				DefaultFunc: func() (any, error) {
					ifc, err := resolver.DefaultInterface(iface.FamilyIPv4)
					if err != nil {
						return nil, err
					}
					if ifc == nil {
						return nil, errNoDefaultInterface
					}
					return ifc, nil
				},
				Parse: func(s string) (any, error) {
					return resolver.Resolve(s)
				},
			},
		),
	}
}

func (m *Module) Name() string { return ModuleName }

func (m *Module) Description() string {
	return "Sends an ICMP echo request to every address of a range and records the hosts that reply."
}

func (m *Module) Params() *module.ParamSet { return m.params }

// Run sweeps the configured range
func (m *Module) Run(ctx context.Context) (bool, error) {
	rangeSpec, err := m.params.String("range")
	if err != nil {
		return false, err
	}
	timeout, err := m.params.Seconds("timeout")
	if err != nil {
		return false, err
	}
	v, err := m.params.Value("interface")
	if err != nil {
		return false, err
	}
	ifc, ok := v.(*iface.Interface)
	if !ok {
		return false, fmt.Errorf("interface option holds %T", v)
	}
	return m.sweeper.Run(ctx, rangeSpec, timeout, ifc)
}

// AutodiscoverModuleName is the registry name of the local network sweep
const AutodiscoverModuleName = "discover/icmp/autodiscover"

var errNoLocalNetworks = errors.New("no up interface has a private IPv4 network")

// AutodiscoverModule sweeps every private network the host is attached to
type AutodiscoverModule struct {
	sweeper  *Sweeper
	resolver *iface.Resolver
	params   *module.ParamSet
}

// NewAutodiscoverModule wraps sweeper; local networks are read through
// resolver when the module runs
func NewAutodiscoverModule(sweeper *Sweeper, resolver *iface.Resolver) *AutodiscoverModule {
	return &AutodiscoverModule{
		sweeper:  sweeper,
		resolver: resolver,
		params: module.NewParamSet(
			module.Param{
				Name:        "timeout",
				Type:        module.TypeFloat,
				Description: "seconds to wait for each reply",
				Default:     DefaultTimeout,
			},
		),
	}
}

func (m *AutodiscoverModule) Name() string { return AutodiscoverModuleName }

func (m *AutodiscoverModule) Description() string {
	return "Sweeps the private subnet of every up interface, narrowed to a /24."
}

func (m *AutodiscoverModule) Params() *module.ParamSet { return m.params }

// Run sweeps the local networks one after another
func (m *AutodiscoverModule) Run(ctx context.Context) (bool, error) {
	timeout, err := m.params.Seconds("timeout")
	if err != nil {
		return false, err
	}
	networks, err := m.resolver.LocalNetworks()
	if err != nil {
		return false, err
	}
	if len(networks) == 0 {
		return false, errNoLocalNetworks
	}
	if _, err := m.sweeper.AutodiscoverAll(ctx, networks, timeout); err != nil {
		return false, err
	}
	return true, nil
}
