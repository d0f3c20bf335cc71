package discovery

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/enbility/zeroconf/v3"
)

// MDNSTransport implements Browser, Resolver and Registrar using zeroconf.
type MDNSTransport struct {
	config TransportConfig
}

// NewMDNSTransport creates a transport for the configured service type.
func NewMDNSTransport(config TransportConfig) (*MDNSTransport, error) {
	if config.Service == "" {
		return nil, ErrMissingService
	}
	if config.Domain == "" {
		config.Domain = DefaultDomain
	}
	return &MDNSTransport{config: config}, nil
}

// interfaces returns the network interfaces to use for registration.
// Returns nil to use all interfaces.
func (t *MDNSTransport) interfaces() []net.Interface {
	if t.config.Interface == "" {
		return nil
	}

	iface, err := net.InterfaceByName(t.config.Interface)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}

// ifIndex returns the index of the selected interface, or zero for all.
func (t *MDNSTransport) ifIndex() int {
	if t.config.Interface == "" {
		return 0
	}
	iface, err := net.InterfaceByName(t.config.Interface)
	if err != nil {
		return 0
	}
	return iface.Index
}

// clientOptions returns zeroconf client options based on config.
func (t *MDNSTransport) clientOptions() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption
	if ifaces := t.interfaces(); ifaces != nil {
		opts = append(opts, zeroconf.SelectIfaces(ifaces))
	}
	return opts
}

// Browse watches the configured service type. Instance arrivals and removals
// from the zeroconf entry channels are merged into one ordered event stream.
func (t *MDNSTransport) Browse(ctx context.Context) (<-chan BrowseEvent, error) {
	events := make(chan BrowseEvent)

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	go func() {
		defer close(events)

		// Shadowed so disabling the closed channel does not race with the
		// Browse call below.
		removed := removed

		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				select {
				case events <- BrowseEvent{Identity: t.identityFor(entry), Added: true}:
				case <-ctx.Done():
					return
				}

			case entry, ok := <-removed:
				if !ok {
					removed = nil
					continue
				}
				select {
				case events <- BrowseEvent{Identity: t.identityFor(entry), Added: false}:
				case <-ctx.Done():
					return
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		_ = zeroconf.Browse(ctx, t.config.Service, t.config.Domain, entries, removed, t.clientOptions()...)
	}()

	return events, nil
}

// Resolve resolves one instance through a browse filtered to its name.
// Browse entries arrive with SRV and TXT data already resolved, so the first
// matching entry is the terminal result. The underlying browse is released
// when the context is cancelled.
func (t *MDNSTransport) Resolve(ctx context.Context, id ServiceIdentity) (<-chan ResolveResult, error) {
	if id.Instance == "" {
		return nil, ErrMissingInstance
	}

	results := make(chan ResolveResult, 1)

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	go func() {
		defer close(results)

		// Shadowed so disabling the closed channel does not race with the
		// Browse call below.
		removed := removed

		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				if entry.Instance != id.Instance {
					continue
				}
				addrs := make([]net.IP, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
				addrs = append(addrs, entry.AddrIPv4...)
				addrs = append(addrs, entry.AddrIPv6...)
				results <- ResolveResult{Service: &ResolvedService{
					Host:  entry.HostName,
					Port:  uint16(entry.Port),
					Addrs: addrs,
					TXT:   TXTFromStrings(entry.Text),
				}}
				return

			case _, ok := <-removed:
				if !ok {
					removed = nil
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		_ = zeroconf.Browse(ctx, id.Service, id.Domain, entries, removed, t.clientOptions()...)
	}()

	return results, nil
}

// Register advertises the described instance. When the spec carries a target
// host and its addresses, the advertisement points there; otherwise it points
// at this machine. zeroconf registration is synchronous, so the result is
// deposited as soon as the call returns. If the context is already cancelled
// by then, the advertisement is withdrawn instead of handed over.
func (t *MDNSTransport) Register(ctx context.Context, spec PublicationSpec) (<-chan RegisterResult, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	results := make(chan RegisterResult, 1)

	go func() {
		defer close(results)

		domain := spec.Domain
		if domain == "" {
			domain = t.config.Domain
		}

		var opts []zeroconf.ServerOption
		if t.config.TTL > 0 {
			opts = append(opts, zeroconf.TTL(uint32(t.config.TTL.Seconds())))
		}

		var server *zeroconf.Server
		var err error
		if spec.Host != "" && len(spec.Addrs) > 0 {
			// Publish on behalf of the resolved target, not this machine
			ips := make([]string, len(spec.Addrs))
			for i, ip := range spec.Addrs {
				ips[i] = ip.String()
			}
			server, err = zeroconf.RegisterProxy(
				spec.Instance,
				spec.Service,
				domain,
				int(spec.Port),
				spec.Host,
				ips,
				spec.TXT.Strings(),
				t.interfaces(),
				opts...,
			)
		} else {
			server, err = zeroconf.Register(
				spec.Instance,
				spec.Service,
				domain,
				int(spec.Port),
				spec.TXT.Strings(),
				t.interfaces(),
				opts...,
			)
		}
		if err != nil {
			results <- RegisterResult{Err: fmt.Errorf("%w: %v", ErrRegisterFailed, err)}
			return
		}

		pub := &mdnsPublication{server: server}
		select {
		case <-ctx.Done():
			pub.Close()
			results <- RegisterResult{Err: ctx.Err()}
		default:
			results <- RegisterResult{Publication: pub}
		}
	}()

	return results, nil
}

// identityFor builds the identity key for a browse entry. The service type
// and domain are taken from the configuration rather than the entry, so the
// key shape is stable across zeroconf versions.
func (t *MDNSTransport) identityFor(entry *zeroconf.ServiceEntry) ServiceIdentity {
	return ServiceIdentity{
		Instance: entry.Instance,
		Service:  t.config.Service,
		Domain:   t.config.Domain,
		IfIndex:  t.ifIndex(),
	}
}

// mdnsPublication wraps a zeroconf server as an owned publication handle.
type mdnsPublication struct {
	server *zeroconf.Server
	once   sync.Once
}

// Close withdraws the advertisement. Safe to call more than once.
func (p *mdnsPublication) Close() {
	p.once.Do(func() {
		p.server.Shutdown()
	})
}

// Ensure MDNSTransport implements the full transport capability.
var _ Transport = (*MDNSTransport)(nil)
