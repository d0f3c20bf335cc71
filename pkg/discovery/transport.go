package discovery

import (
	"context"
	"time"
)

// Browser watches one service type for instances appearing and disappearing.
type Browser interface {
	// Browse starts watching and returns a channel of events. The channel is
	// closed when the context is cancelled or the underlying browse fails.
	Browse(ctx context.Context) (<-chan BrowseEvent, error)
}

// Resolver turns a discovered instance into a concrete network target.
type Resolver interface {
	// Resolve starts resolution of the given identity and returns a one-shot
	// channel carrying the terminal result. The channel is closed without a
	// result if resolution is abandoned before completing.
	Resolve(ctx context.Context, id ServiceIdentity) (<-chan ResolveResult, error)
}

// Registrar advertises new service instances.
type Registrar interface {
	// Register starts advertising the described instance and returns a
	// one-shot channel carrying the terminal result. On success the result
	// holds a live Publication owned by the caller.
	Register(ctx context.Context, spec PublicationSpec) (<-chan RegisterResult, error)
}

// Transport is the full discovery capability the repeater consumes.
type Transport interface {
	Browser
	Resolver
	Registrar
}

// Publication is an owned handle to one live advertisement. Closing it
// withdraws the advertisement. Close is idempotent.
type Publication interface {
	Close()
}

// TransportConfig configures an MDNSTransport.
type TransportConfig struct {
	// Service is the DNS-SD service type to browse (e.g. "_ipp._tcp").
	Service string

	// Domain is the browse and registration domain. Empty means
	// DefaultDomain.
	Domain string

	// Interface selects a single network interface by name. Empty means all
	// multicast-capable interfaces.
	Interface string

	// TTL is the DNS record TTL for registrations. Zero keeps the zeroconf
	// default.
	TTL time.Duration
}

// DefaultTransportConfig returns a TransportConfig with defaults applied.
func DefaultTransportConfig(service string) TransportConfig {
	return TransportConfig{
		Service: service,
		Domain:  DefaultDomain,
	}
}
