// Package repeater implements the service mirroring engine.
//
// The engine browses one DNS-SD service type and re-advertises every
// discovered instance under a modified identity: a prefixed instance name, a
// possibly different service type, and a transformed TXT record. The original
// services are never touched; the mirror exists so that discovery clients
// looking for the repeated type/TXT signature can find them.
//
// # Lifecycle
//
// Run drives a single-goroutine event loop over browse notifications. Per
// added instance it resolves the concrete target, applies the transform
// policy, registers the mirror and records the publication handle keyed by
// the instance identity. A removal (or a re-announcement of a known identity)
// tears the old mirror down first. When Run returns, every remaining
// publication has been withdrawn.
//
// Resolution and registration complete through one-shot result channels;
// the engine waits on each with the configured timeout, so a single slow
// operation never wedges the loop for longer than that. At most one resolve
// or register is in flight at any time: mirroring trades throughput for a
// lifecycle that is trivial to reason about, which fits the low churn of
// discovered instances.
//
// # Eligibility
//
// A discovered instance is not mirrored when its name already carries the
// mirror prefix, when any configured append field is already present in its
// TXT record (both guards prevent mirroring a mirror), when a configured
// replace field is missing, or when a host restriction is set and the
// resolved target host differs. These outcomes are reported but are not
// errors; resolve and register failures abandon the one notification and the
// instance is picked up again on its next periodic re-announcement.
package repeater
