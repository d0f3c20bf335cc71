package discovery

import (
	"errors"
	"fmt"
	"net"
	"time"
)

// mDNS defaults.
const (
	// DefaultDomain is the mDNS domain used when none is configured.
	DefaultDomain = "local"

	// DefaultTimeout bounds a single resolve or register operation.
	DefaultTimeout = 5 * time.Second

	// MaxInstanceNameLen is the DNS label limit.
	MaxInstanceNameLen = 63

	// MaxTXTRecordSize is the maximum total TXT record size in wire form.
	MaxTXTRecordSize = 8900
)

// Discovery errors.
var (
	ErrInvalidTXTRecord = errors.New("invalid TXT record format")
	ErrDuplicateTXTKey  = errors.New("duplicate TXT record key")
	ErrTXTKeyNotFound   = errors.New("TXT record key not found")
	ErrMissingInstance  = errors.New("missing instance name")
	ErrMissingService   = errors.New("missing service type")
	ErrRegisterFailed   = errors.New("service registration failed")
	ErrResolveFailed    = errors.New("service resolution failed")
	ErrBrowseFailed     = errors.New("service browse failed")
)

// ServiceIdentity uniquely identifies one discovered instance for its
// lifetime on a given interface. Two browse events carrying equal identities
// refer to the same logical instance.
type ServiceIdentity struct {
	// Instance is the service instance name (e.g. "Office Printer").
	Instance string

	// Service is the DNS-SD service type (e.g. "_ipp._tcp").
	Service string

	// Domain is the browse domain (usually "local").
	Domain string

	// IfIndex is the network interface index the instance was seen on.
	// Zero means all interfaces.
	IfIndex int
}

// String returns the identity in a compact loggable form.
func (id ServiceIdentity) String() string {
	return fmt.Sprintf("%s.%s.%s#%d", id.Instance, id.Service, id.Domain, id.IfIndex)
}

// BrowseEvent reports one instance appearing or disappearing. Events for the
// same identity are delivered in the order the network reported them.
type BrowseEvent struct {
	// Identity names the instance the event is about.
	Identity ServiceIdentity

	// Added is true when the instance is present, false when it was removed.
	Added bool
}

// ResolvedService is the concrete target of one resolved instance. It is
// ephemeral: the repeater consumes it in the publish call that follows
// resolution and does not retain it.
type ResolvedService struct {
	// Host is the target hostname (e.g. "printer.local.").
	Host string

	// Port is the service port.
	Port uint16

	// Addrs are the target's addresses, when the resolver learned them.
	Addrs []net.IP

	// TXT is the attribute set carried by the advertisement.
	TXT TXTRecord
}

// ResolveResult is the terminal outcome of one resolve operation.
// Exactly one of Service and Err is set.
type ResolveResult struct {
	Service *ResolvedService
	Err     error
}

// RegisterResult is the terminal outcome of one register operation.
// On success Publication is the live, caller-owned advertisement.
type RegisterResult struct {
	Publication Publication
	Err         error
}

// PublicationSpec describes a service instance to advertise.
type PublicationSpec struct {
	// Instance is the instance name to publish under.
	Instance string

	// Service is the DNS-SD service type to publish under.
	Service string

	// Domain is the registration domain.
	Domain string

	// Host is the target hostname the advertisement points at. When set,
	// the publication redirects to that host instead of this machine.
	Host string

	// Addrs are the addresses published for Host. Required when Host names
	// another machine, since multicast registration cannot look them up.
	Addrs []net.IP

	// Port is the advertised port.
	Port uint16

	// TXT is the attribute set to advertise.
	TXT TXTRecord
}

// Validate checks that the spec can be registered.
func (p *PublicationSpec) Validate() error {
	if p.Instance == "" {
		return ErrMissingInstance
	}
	if len(p.Instance) > MaxInstanceNameLen {
		return fmt.Errorf("%w: instance name %q exceeds %d bytes",
			ErrRegisterFailed, p.Instance, MaxInstanceNameLen)
	}
	if p.Service == "" {
		return ErrMissingService
	}
	return nil
}
