package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/interceptor/pkg/icmpecho"
	"github.com/projectdiscovery/interceptor/pkg/iface"
	"github.com/projectdiscovery/interceptor/pkg/module"
	"github.com/projectdiscovery/interceptor/pkg/peerdiscovery/arp"
	"github.com/projectdiscovery/interceptor/pkg/peerdiscovery/pingsweep"
	"github.com/projectdiscovery/interceptor/pkg/store"
	"github.com/projectdiscovery/interceptor/pkg/transport"
	errorutil "github.com/projectdiscovery/utils/errors"
)

// neighbourTTL is how long a neighbour table snapshot serves MAC lookups
const neighbourTTL = time.Second

// Runner contains the internal logic of the program
type Runner struct {
	options  *Options
	db       *store.Store
	resolver *iface.Resolver
	registry *module.Registry
}

// NewRunner opens the store and wires the modules
func NewRunner(options *Options) (*Runner, error) {
	db, err := store.Open(options.DBPath)
	if err != nil {
		return nil, errorutil.NewWithErr(err).Msgf("could not open database %s", options.DBPath)
	}

	resolver := iface.NewResolver(nil)
	tr := transport.New(transport.Options{Privileged: !options.Unprivileged})
	engine := icmpecho.New(tr, icmpecho.Options{Privileged: tr.Privileged()})
	sweeper := pingsweep.New(engine, pingsweep.FromStore(db), pingsweep.Options{
		Concurrency: options.Concurrency,
		Neighbours:  arp.NewCache(neighbourTTL),
		Prioritize:  options.Prioritize,
	})

	registry, err := module.NewRegistry(
		pingsweep.NewModule(sweeper, resolver),
		pingsweep.NewAutodiscoverModule(sweeper, resolver),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Runner{options: options, db: db, resolver: resolver, registry: registry}, nil
}

// Close releases the store
func (r *Runner) Close() error {
	return r.db.Close()
}

// Run the instance
func (r *Runner) Run(ctx context.Context) error {
	if err := r.db.InitSchema(ctx); err != nil {
		return errorutil.NewWithErr(err).Msgf("could not initialize database %s", r.db.Path())
	}
	if r.options.InitDB {
		if err := r.clear(ctx); err != nil {
			return err
		}
		gologger.Info().Msgf("Initialized database %s", r.db.Path())
	}

	if r.options.ListModules {
		for _, name := range r.registry.Names() {
			gologger.Silent().Msg(name)
		}
	}
	if r.options.Interfaces {
		if err := r.listInterfaces(); err != nil {
			return err
		}
	}
	if r.options.Module != "" {
		if err := r.runModule(ctx); err != nil {
			return err
		}
	}
	if r.options.Hosts || r.options.Services || r.options.Credentials {
		if err := r.listRecords(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) clear(ctx context.Context) error {
	sess, err := r.db.Session(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = sess.Close()
	}()
	if err := sess.Clear(ctx); err != nil {
		return errorutil.NewWithErr(err).Msgf("could not clear database %s", r.db.Path())
	}
	return nil
}

func (r *Runner) runModule(ctx context.Context) error {
	m, err := r.registry.Get(r.options.Module)
	if err != nil {
		return err
	}
	for _, kv := range r.options.Set {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("option %q is not in name=value form", kv)
		}
		if err := m.Params().Set(strings.TrimSpace(name), strings.TrimSpace(value)); err != nil {
			return err
		}
	}

	if r.options.Info {
		gologger.Silent().Msg(module.Info(m))
		return nil
	}

	ok, err := module.Invoke(ctx, m)
	var missing *module.MissingParamError
	if errors.As(err, &missing) {
		gologger.Error().Msgf("%s\n\n%s", err, module.Info(m))
		return nil
	}
	if err != nil {
		return errorutil.NewWithErr(err).Msgf("module %s failed", m.Name())
	}
	if ok {
		gologger.Info().Msgf("Module %s completed", m.Name())
	}
	return nil
}

func (r *Runner) listInterfaces() error {
	ifaces, err := r.resolver.Interfaces()
	if err != nil {
		return err
	}
	def, _ := r.resolver.DefaultInterface(iface.FamilyIPv4)
	gw, _ := r.resolver.DefaultGateway(iface.FamilyIPv4)
	for _, ifc := range ifaces {
		line := ifc.String()
		if def != nil && def.Name() == ifc.Name() {
			line += " (default"
			if gw != nil {
				line += " via " + gw.String()
			}
			line += ")"
		}
		gologger.Silent().Msg(line)
	}
	return nil
}

func (r *Runner) listRecords(ctx context.Context) error {
	sess, err := r.db.Session(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = sess.Close()
	}()

	if r.options.Hosts {
		hosts, err := sess.ListHosts(ctx)
		if err != nil {
			return err
		}
		for _, h := range hosts {
			gologger.Silent().Msg(h.String())
		}
	}
	if r.options.Services {
		services, err := sess.ListServices(ctx)
		if err != nil {
			return err
		}
		for _, s := range services {
			gologger.Silent().Msg(s.String())
		}
	}
	if r.options.Credentials {
		creds, err := sess.ListCredentials(ctx)
		if err != nil {
			return err
		}
		for _, c := range creds {
			gologger.Silent().Msg(c.String())
		}
	}
	return nil
}
