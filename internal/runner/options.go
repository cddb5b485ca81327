package runner

import (
	"os"

	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/formatter"
	"github.com/projectdiscovery/gologger/levels"
	"github.com/projectdiscovery/interceptor/pkg/peerdiscovery/pingsweep"
	"github.com/projectdiscovery/interceptor/pkg/store"
	"github.com/projectdiscovery/interceptor/pkg/version"
	envutil "github.com/projectdiscovery/utils/env"
	"github.com/spf13/cast"
)

var (
	DBPathEnv       = envutil.GetEnvOrDefault("INTERCEPTOR_DB", store.DefaultPath)
	ConcurrencyEnv  = cast.ToInt(envutil.GetEnvOrDefault("INTERCEPTOR_CONCURRENCY", cast.ToString(pingsweep.DefaultConcurrency)))
	UnprivilegedEnv = cast.ToBool(envutil.GetEnvOrDefault("INTERCEPTOR_UNPRIVILEGED", "false"))
)

// Options contains the configuration options of the command line
type Options struct {
	DBPath string
	InitDB bool

	ListModules bool
	Module      string
	Set         goflags.StringSlice
	Info        bool

	Hosts       bool
	Services    bool
	Credentials bool
	Interfaces  bool

	Concurrency  int
	Unprivileged bool
	Prioritize   bool

	Verbose bool
	Silent  bool
	NoColor bool
	Version bool
}

// ParseOptions parses the command line flags provided by a user
func ParseOptions() *Options {
	options := &Options{}
	flagSet := goflags.NewFlagSet()

	flagSet.SetDescription(`interceptor discovers hosts on local networks and records them in a sqlite database`)

	flagSet.CreateGroup("store", "Store",
		flagSet.StringVar(&options.DBPath, "db", DBPathEnv, "sqlite database file"),
		flagSet.BoolVar(&options.InitDB, "init-db", false, "create the schema and remove all stored records"),
	)

	flagSet.CreateGroup("module", "Module",
		flagSet.BoolVarP(&options.ListModules, "list-modules", "lm", false, "list available modules"),
		flagSet.StringVarP(&options.Module, "module", "m", "", "module to run (e.g. discover/icmp/pingsweep)"),
		flagSet.StringSliceVarP(&options.Set, "set", "s", nil, "set a module option as name=value", goflags.StringSliceOptions),
		flagSet.BoolVar(&options.Info, "info", false, "show module options instead of running it"),
	)

	flagSet.CreateGroup("list", "List",
		flagSet.BoolVar(&options.Hosts, "hosts", false, "list stored hosts"),
		flagSet.BoolVar(&options.Services, "services", false, "list stored services"),
		flagSet.BoolVar(&options.Credentials, "credentials", false, "list stored credentials"),
		flagSet.BoolVar(&options.Interfaces, "interfaces", false, "list local network interfaces"),
	)

	flagSet.CreateGroup("probe", "Probe",
		flagSet.IntVarP(&options.Concurrency, "concurrency", "c", ConcurrencyEnv, "maximum number of probes in flight"),
		flagSet.BoolVarP(&options.Unprivileged, "unprivileged", "up", UnprivilegedEnv, "use ICMP datagram sockets instead of raw sockets"),
		flagSet.BoolVarP(&options.Prioritize, "prioritize", "pr", false, "probe likely hosts (gateways, early DHCP leases) first"),
	)

	flagSet.CreateGroup("debug", "Debug",
		flagSet.BoolVar(&options.Version, "version", false, "show version of the project"),
		flagSet.BoolVarP(&options.Verbose, "verbose", "v", false, "show verbose output"),
		flagSet.BoolVar(&options.Silent, "silent", false, "show only results in output"),
		flagSet.BoolVarP(&options.NoColor, "no-color", "nc", false, "disable output content coloring (ANSI escape codes)"),
	)

	if err := flagSet.Parse(); err != nil {
		gologger.Fatal().Msgf("%s\n", err)
	}

	options.configureOutput()

	showBanner()

	if options.Version {
		gologger.Info().Msgf("Current Version: %s\n", version.GetVersion())
		os.Exit(0)
	}

	return options
}

// configureOutput configures the output on the screen
func (options *Options) configureOutput() {
	if options.Verbose {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelVerbose)
	}
	if options.NoColor {
		gologger.DefaultLogger.SetFormatter(formatter.NewCLI(true))
	}
	if options.Silent {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelSilent)
	}
}
