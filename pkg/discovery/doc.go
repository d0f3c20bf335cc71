// Package discovery provides the mDNS/DNS-SD transport used by the repeater.
//
// It defines the data model for discovered service instances and three small
// capabilities the repeating engine consumes:
//
//   - Browser: watch a service type and report instances appearing and
//     disappearing, in the order the network delivers them.
//   - Resolver: turn one discovered instance into a concrete host, port and
//     TXT record.
//   - Registrar: advertise a new service instance and hand back an owned
//     publication handle.
//
// Resolve and Register complete through one-shot result channels so callers
// can bound the wait with a timeout without blocking on the multicast stack.
//
// # TXT records
//
// TXT records are modelled as an ordered list of unique key/value pairs
// (TXTRecord). Two serializations are supported: the "key=value" string slice
// used by the zeroconf library, and the length-prefixed DNS wire form
// (RFC 6763 section 6.1) used when copying records between advertisements.
//
// # Implementation
//
// MDNSTransport implements all three capabilities on top of
// github.com/enbility/zeroconf/v3. Browse entries arrive fully resolved, so
// Resolve is a short browse filtered to a single instance name.
package discovery
