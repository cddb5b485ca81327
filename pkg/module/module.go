package module

import (
	"context"
	"fmt"
	"slices"

	mapsutil "github.com/projectdiscovery/utils/maps"
)

// Module is an invocable discovery routine with named parameters
type Module interface {
	// Name is the path-like identifier, e.g. "discover/icmp/pingsweep"
	Name() string
	Description() string
	Params() *ParamSet
	// Run executes the module with the bound parameters
	Run(ctx context.Context) (bool, error)
}

// Info returns the help text of m
func Info(m Module) string {
	return m.Params().Info(m.Name(), m.Description())
}

// Invoke checks that every required parameter is set and runs m. A missing
// parameter is reported as false with a MissingParamError and m is not run.
func Invoke(ctx context.Context, m Module) (bool, error) {
	if err := m.Params().Validate(); err != nil {
		return false, err
	}
	return m.Run(ctx)
}

// Registry maps module names to modules. It is safe for concurrent use.
type Registry struct {
	modules *mapsutil.SyncLockMap[string, Module]
}

// NewRegistry returns a registry holding modules
func NewRegistry(modules ...Module) (*Registry, error) {
	r := &Registry{modules: mapsutil.NewSyncLockMap[string, Module]()}
	for _, m := range modules {
		if err := r.Register(m); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds m; names must be unique
func (r *Registry) Register(m Module) error {
	if r.modules.Has(m.Name()) {
		return fmt.Errorf("module %s already registered", m.Name())
	}
	return r.modules.Set(m.Name(), m)
}

// Get returns the module called name
func (r *Registry) Get(name string) (Module, error) {
	m, ok := r.modules.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModule, name)
	}
	return m, nil
}

// Names lists registered module names in sorted order
func (r *Registry) Names() []string {
	var names []string
	_ = r.modules.Iterate(func(name string, _ Module) error {
		names = append(names, name)
		return nil
	})
	slices.Sort(names)
	return names
}
