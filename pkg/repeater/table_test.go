package repeater

import (
	"testing"

	"github.com/ahesford/bonjour-repeater/pkg/discovery"
)

// countingPublication counts Close calls to detect double-close and leaks.
type countingPublication struct {
	closes int
}

func (p *countingPublication) Close() { p.closes++ }

func testIdentity(instance string) discovery.ServiceIdentity {
	return discovery.ServiceIdentity{
		Instance: instance,
		Service:  "_ipp._tcp",
		Domain:   "local",
	}
}

func TestTableEvictClosesHandle(t *testing.T) {
	tbl := newTable()
	pub := &countingPublication{}
	id := testIdentity("A")

	tbl.insert(id, pub)
	if tbl.len() != 1 {
		t.Fatalf("len() = %d, want 1", tbl.len())
	}

	if !tbl.evict(id) {
		t.Error("evict() = false for a present identity")
	}
	if pub.closes != 1 {
		t.Errorf("publication closed %d times, want 1", pub.closes)
	}
	if tbl.len() != 0 {
		t.Errorf("len() = %d after evict, want 0", tbl.len())
	}
}

func TestTableEvictAbsentIsNoop(t *testing.T) {
	tbl := newTable()
	if tbl.evict(testIdentity("missing")) {
		t.Error("evict() = true for an absent identity")
	}
}

func TestTableAtMostOnePerIdentity(t *testing.T) {
	tbl := newTable()
	id := testIdentity("A")

	first := &countingPublication{}
	tbl.insert(id, first)

	// The engine evicts before re-inserting; the sequence must close the
	// old handle exactly once and leave one live entry.
	tbl.evict(id)
	second := &countingPublication{}
	tbl.insert(id, second)

	if tbl.len() != 1 {
		t.Errorf("len() = %d, want 1", tbl.len())
	}
	if first.closes != 1 {
		t.Errorf("first publication closed %d times, want 1", first.closes)
	}
	if second.closes != 0 {
		t.Errorf("second publication closed %d times, want 0", second.closes)
	}
}

func TestTableDrainClosesEverythingOnce(t *testing.T) {
	tbl := newTable()
	pubs := []*countingPublication{{}, {}, {}}
	for i, pub := range pubs {
		tbl.insert(testIdentity(string(rune('A'+i))), pub)
	}

	if n := tbl.drain(); n != 3 {
		t.Errorf("drain() = %d, want 3", n)
	}
	if tbl.len() != 0 {
		t.Errorf("len() = %d after drain, want 0", tbl.len())
	}
	for i, pub := range pubs {
		if pub.closes != 1 {
			t.Errorf("publication %d closed %d times, want 1", i, pub.closes)
		}
	}

	// Draining an empty table is a no-op
	if n := tbl.drain(); n != 0 {
		t.Errorf("second drain() = %d, want 0", n)
	}
}
