// Command bonjour-repeater listens for Bonjour (mDNS/DNS-SD) services and
// repeats each one it finds with a new service type, a modified TXT record
// and a prefixed instance name. The original services are never touched.
//
// A service is not repeated if any of the appended TXT fields already exists
// or if its name already starts with the prefix. This prevents infinitely
// recursive repeater behavior.
//
// Usage:
//
//	bonjour-repeater [flags]
//
// Flags:
//
//	-s type       Bonjour type for which to browse (required)
//	-r type       Bonjour type to use when repeating services (required)
//	-f key=value  Add the key=value field to the TXT record (repeatable, at least one required)
//	-x key=value  Replace the existing key field in the TXT record (repeatable)
//	-p prefix     String to prepend to service names (default "Repeated")
//	-t seconds    Timeout in seconds for resolve and register waits (default 5)
//	-a            Repeat services from any host, not just this machine
//	-i name       Network interface to use (default: all interfaces)
//	-config file  YAML configuration file (flags override it)
//	-log file     Write CBOR event log to file
//	-v            Verbose output on stderr (also shows skipped services)
//
// Examples:
//
//	# Expose IPP printers on this machine as AirPrint-capable
//	bonjour-repeater -s _ipp._tcp -r _ipp._tcp,_universal \
//	    -f URF=W8,CP1,RS600-600 -p AirPrint
//
//	# Repeat everyone's printers, overwriting the queue path
//	bonjour-repeater -s _ipp._tcp -r _printer._tcp -a \
//	    -f repeated=yes -x rp=printers/mirror
//
// The repeater runs until interrupted; on SIGINT or SIGTERM all repeated
// services are removed before exit.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ahesford/bonjour-repeater/pkg/discovery"
	rlog "github.com/ahesford/bonjour-repeater/pkg/log"
	"github.com/ahesford/bonjour-repeater/pkg/repeater"
)

// fieldList collects repeatable key=value flags.
type fieldList []string

func (f *fieldList) String() string { return strings.Join(*f, ",") }

func (f *fieldList) Set(v string) error {
	*f = append(*f, v)
	return nil
}

var (
	browseType    string
	repeatType    string
	appendFields  fieldList
	replaceFields fieldList
	prefix        string
	timeoutSecs   int
	anyHost       bool
	ifaceName     string
	configFile    string
	eventLogFile  string
	verbose       bool
)

func init() {
	flag.StringVar(&browseType, "s", "", "Bonjour type for which to browse")
	flag.StringVar(&repeatType, "r", "", "Bonjour type to use when repeating services")
	flag.Var(&appendFields, "f", "add the key=value field to the TXT record (repeatable)")
	flag.Var(&replaceFields, "x", "replace the existing key field in the TXT record (repeatable)")
	flag.StringVar(&prefix, "p", repeater.DefaultPrefix, "string to prepend to service names")
	flag.IntVar(&timeoutSecs, "t", int(repeater.DefaultTimeout/time.Second), "timeout in seconds for Bonjour requests")
	flag.BoolVar(&anyHost, "a", false, "repeat services from any host, not just this machine")
	flag.StringVar(&ifaceName, "i", "", "network interface to use (default: all)")
	flag.StringVar(&configFile, "config", "", "YAML configuration file")
	flag.StringVar(&eventLogFile, "log", "", "write CBOR event log to file")
	flag.BoolVar(&verbose, "v", false, "verbose output on stderr (also shows skipped services)")
}

func main() {
	flag.Parse()

	cfg, err := buildConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n\n", os.Args[0], err)
		flag.Usage()
		os.Exit(2)
	}

	logger, closeLog, err := buildLogger()
	if err != nil {
		log.Fatalf("Failed to open event log: %v", err)
	}
	defer closeLog()

	transport, err := discovery.NewMDNSTransport(discovery.TransportConfig{
		Service:   cfg.BrowseType,
		Domain:    cfg.Domain,
		Interface: cfg.Interface,
	})
	if err != nil {
		log.Fatalf("Failed to create mDNS transport: %v", err)
	}

	rpt, err := repeater.New(cfg, transport, logger)
	if err != nil {
		log.Fatalf("Failed to create repeater: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.SetFlags(log.Ltime)
	log.Println("Starting Bonjour repeater")
	log.Printf("Browsing %s, repeating as %s (prefix %q)", cfg.BrowseType, cfg.RepeatType, cfg.Prefix)
	if cfg.RequireHost != "" {
		log.Printf("Restricted to services on %s", cfg.RequireHost)
	}

	if err := rpt.Run(ctx); err != nil {
		log.Fatalf("Repeater failed: %v", err)
	}

	log.Println("All repeated Bonjour services removed")
}

// buildConfig assembles the repeater configuration from the optional config
// file and the command line, flags taking precedence.
func buildConfig() (repeater.Config, error) {
	cfg := repeater.DefaultConfig()

	if configFile != "" {
		loaded, err := repeater.LoadConfig(configFile)
		if err != nil {
			return repeater.Config{}, err
		}
		cfg = loaded
	}

	if browseType != "" {
		cfg.BrowseType = browseType
	}
	if repeatType != "" {
		cfg.RepeatType = repeatType
	}
	if len(appendFields) > 0 {
		fields, err := repeater.ParseFields(appendFields)
		if err != nil {
			return repeater.Config{}, err
		}
		cfg.Append = fields
	}
	if len(replaceFields) > 0 {
		fields, err := repeater.ParseFields(replaceFields)
		if err != nil {
			return repeater.Config{}, err
		}
		cfg.Replace = fields
	}
	if prefix != repeater.DefaultPrefix {
		cfg.Prefix = prefix
	}
	if d := time.Duration(timeoutSecs) * time.Second; d != repeater.DefaultTimeout {
		cfg.Timeout = d
	}
	if ifaceName != "" {
		cfg.Interface = ifaceName
	}

	// Unless -a is given, only services resolving to this machine's own
	// mDNS host name are repeated.
	if anyHost {
		cfg.RequireHost = ""
	} else if cfg.RequireHost == "" {
		host, err := localMDNSHost()
		if err != nil {
			return repeater.Config{}, fmt.Errorf("determining local host name: %w", err)
		}
		cfg.RequireHost = host
	}

	if err := cfg.Validate(); err != nil {
		return repeater.Config{}, err
	}
	return cfg, nil
}

// localMDNSHost returns this machine's mDNS target name, e.g. "ares.local.".
func localMDNSHost() (string, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return "", err
	}
	short, _, _ := strings.Cut(hostname, ".")
	return short + "." + discovery.DefaultDomain + ".", nil
}

// buildLogger assembles the event logger from the -log and -v flags.
func buildLogger() (rlog.Logger, func(), error) {
	var loggers []rlog.Logger

	closeLog := func() {}
	if eventLogFile != "" {
		fl, err := rlog.NewFileLogger(eventLogFile)
		if err != nil {
			return nil, nil, err
		}
		loggers = append(loggers, fl)
		closeLog = func() { _ = fl.Close() }
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	console := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	loggers = append(loggers, rlog.NewSlogAdapter(console))

	if len(loggers) == 1 {
		return loggers[0], closeLog, nil
	}
	return rlog.NewMultiLogger(loggers...), closeLog, nil
}
