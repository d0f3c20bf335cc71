package repeater

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ahesford/bonjour-repeater/pkg/discovery"
)

// ErrIneligible marks an instance the transform policy refuses to mirror.
// It is an expected outcome, not a failure; callers log it and move on.
var ErrIneligible = errors.New("service not eligible for repeating")

// Policy decides whether a resolved instance may be mirrored and produces
// the transformed TXT record for the mirror.
type Policy struct {
	appendFields  []Field
	replaceFields []Field
	requireHost   string
	prefix        string
}

// NewPolicy builds the transform policy from a validated Config.
func NewPolicy(cfg Config) *Policy {
	return &Policy{
		appendFields:  cfg.Append,
		replaceFields: cfg.Replace,
		requireHost:   cfg.RequireHost,
		prefix:        cfg.Prefix,
	}
}

// SkipName reports whether the instance name already carries the mirror
// prefix. Such names are never mirrored; this is the first anti-recursion
// guard, applied before resolution is even attempted.
func (p *Policy) SkipName(instance string) bool {
	return strings.HasPrefix(instance, p.prefix)
}

// MirrorName returns the instance name a mirror is published under.
func (p *Policy) MirrorName(instance string) string {
	return p.prefix + " " + instance
}

// Apply transforms the original TXT record for mirroring, or returns an
// error wrapping ErrIneligible when the instance does not qualify.
//
// The checks run in a fixed order: the host restriction first, then the
// append-field presence check (the second anti-recursion guard, before any
// mutation is staged), then the replace-field preconditions. Only when all
// pass is a copy of the original written to.
func (p *Policy) Apply(txt discovery.TXTRecord, host string) (discovery.TXTRecord, error) {
	if p.requireHost != "" && host != p.requireHost {
		return discovery.TXTRecord{}, fmt.Errorf("%w: host %q is not %q",
			ErrIneligible, host, p.requireHost)
	}

	for _, f := range p.appendFields {
		if txt.Has(f.Key) {
			return discovery.TXTRecord{}, fmt.Errorf("%w: field %q already present",
				ErrIneligible, f.Key)
		}
	}

	for _, f := range p.replaceFields {
		if !txt.Has(f.Key) {
			return discovery.TXTRecord{}, fmt.Errorf("%w: field %q missing",
				ErrIneligible, f.Key)
		}
	}

	out := txt.Clone()
	for _, f := range p.appendFields {
		if err := out.Add(f.Key, f.Value); err != nil {
			return discovery.TXTRecord{}, err
		}
	}
	for _, f := range p.replaceFields {
		if err := out.Set(f.Key, f.Value); err != nil {
			return discovery.TXTRecord{}, err
		}
	}
	return out, nil
}
