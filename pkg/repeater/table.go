package repeater

import (
	"github.com/ahesford/bonjour-repeater/pkg/discovery"
)

// table maps each tracked original identity to its live mirrored
// publication. It owns every handle it holds: an entry leaves the table only
// after its publication has been closed. The table is mutated exclusively
// from the event loop goroutine, so it carries no lock.
type table struct {
	entries map[discovery.ServiceIdentity]discovery.Publication
}

func newTable() *table {
	return &table{
		entries: make(map[discovery.ServiceIdentity]discovery.Publication),
	}
}

// insert records a live publication for an identity. The caller must have
// evicted any prior entry first; at most one handle is live per identity.
func (t *table) insert(id discovery.ServiceIdentity, pub discovery.Publication) {
	t.entries[id] = pub
}

// evict closes and removes the entry for an identity, reporting whether one
// existed. Evicting an absent identity is a no-op.
func (t *table) evict(id discovery.ServiceIdentity) bool {
	pub, ok := t.entries[id]
	if !ok {
		return false
	}
	pub.Close()
	delete(t.entries, id)
	return true
}

// drain closes every remaining publication and clears the table, returning
// the number of publications withdrawn. No publication outlives the engine.
func (t *table) drain() int {
	n := len(t.entries)
	for id, pub := range t.entries {
		pub.Close()
		delete(t.entries, id)
	}
	return n
}

func (t *table) len() int { return len(t.entries) }
