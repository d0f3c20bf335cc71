package repeater_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahesford/bonjour-repeater/pkg/discovery"
	"github.com/ahesford/bonjour-repeater/pkg/repeater"
)

func policyConfig() repeater.Config {
	cfg := repeater.DefaultConfig()
	cfg.BrowseType = "_ipp._tcp"
	cfg.RepeatType = "_ipp._tcp,_universal"
	cfg.Append = []repeater.Field{{Key: "URF", Value: "W8,CP1,RS600-600"}}
	return cfg
}

func txtRecord(t *testing.T, pairs ...discovery.TXTPair) discovery.TXTRecord {
	t.Helper()
	rec, err := discovery.NewTXTRecord(pairs...)
	require.NoError(t, err)
	return rec
}

func TestPolicyAppendsFields(t *testing.T) {
	policy := repeater.NewPolicy(policyConfig())

	orig := txtRecord(t, discovery.TXTPair{Key: "key1", Value: "v1"})
	out, err := policy.Apply(orig, "printhost.local.")
	require.NoError(t, err)

	v, ok := out.Get("URF")
	assert.True(t, ok)
	assert.Equal(t, "W8,CP1,RS600-600", v)

	v, ok = out.Get("key1")
	assert.True(t, ok)
	assert.Equal(t, "v1", v)

	// The original record is untouched
	assert.False(t, orig.Has("URF"))
}

func TestPolicyAntiRecursion(t *testing.T) {
	policy := repeater.NewPolicy(policyConfig())

	orig := txtRecord(t,
		discovery.TXTPair{Key: "key1", Value: "v1"},
		discovery.TXTPair{Key: "URF", Value: "already here"},
	)
	_, err := policy.Apply(orig, "printhost.local.")
	require.ErrorIs(t, err, repeater.ErrIneligible)
}

func TestPolicyReplacePrecondition(t *testing.T) {
	cfg := policyConfig()
	cfg.Replace = []repeater.Field{{Key: "rp", Value: "printers/mirror"}}
	policy := repeater.NewPolicy(cfg)

	// Replace key present: overwritten in place
	orig := txtRecord(t, discovery.TXTPair{Key: "rp", Value: "printers/original"})
	out, err := policy.Apply(orig, "printhost.local.")
	require.NoError(t, err)
	v, _ := out.Get("rp")
	assert.Equal(t, "printers/mirror", v)

	// Replace key absent: ineligible
	orig = txtRecord(t, discovery.TXTPair{Key: "other", Value: "x"})
	_, err = policy.Apply(orig, "printhost.local.")
	require.ErrorIs(t, err, repeater.ErrIneligible)
}

func TestPolicyHostRestriction(t *testing.T) {
	cfg := policyConfig()
	cfg.RequireHost = "printer.local."
	policy := repeater.NewPolicy(cfg)

	_, err := policy.Apply(txtRecord(t), "other.local.")
	require.ErrorIs(t, err, repeater.ErrIneligible)

	_, err = policy.Apply(txtRecord(t), "printer.local.")
	require.NoError(t, err)
}

func TestPolicyHostCheckedBeforeFields(t *testing.T) {
	cfg := policyConfig()
	cfg.RequireHost = "printer.local."
	policy := repeater.NewPolicy(cfg)

	// Both the host and the append guard would reject; the host restriction
	// runs first.
	orig := txtRecord(t, discovery.TXTPair{Key: "URF", Value: "x"})
	_, err := policy.Apply(orig, "other.local.")
	require.ErrorIs(t, err, repeater.ErrIneligible)
	assert.Contains(t, err.Error(), "host")
}

func TestPolicySkipName(t *testing.T) {
	policy := repeater.NewPolicy(policyConfig())

	assert.True(t, policy.SkipName("Repeated Office Printer"))
	assert.False(t, policy.SkipName("Office Printer"))
	// Prefix must match at the start, not anywhere
	assert.False(t, policy.SkipName("Office Repeated Printer"))
}

func TestPolicyMirrorName(t *testing.T) {
	policy := repeater.NewPolicy(policyConfig())
	assert.Equal(t, "Repeated Office Printer", policy.MirrorName("Office Printer"))
}
