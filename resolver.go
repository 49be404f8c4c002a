package asnranger

import "net/netip"

// Resolver answers address lookups against whatever table a Store currently
// serves.
type Resolver struct {
	store *Store
}

// NewResolver returns a Resolver reading from store.
func NewResolver(store *Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the record announcing addr, if any.
func (r *Resolver) Resolve(addr netip.Addr) (Record, bool) {
	return r.store.Acquire().Lookup(addr)
}

// ResolveWithVersion is like Resolve and also reports the table version the
// answer was taken from.
func (r *Resolver) ResolveWithVersion(addr netip.Addr) (Record, bool, uint64) {
	snapshot := r.store.Acquire()
	record, found := snapshot.Lookup(addr)
	return record, found, snapshot.Version
}
