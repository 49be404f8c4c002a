package asnranger

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot is one published version of the range table. A Snapshot never
// changes after it has been published.
type Snapshot struct {
	*Table
	Version     uint64
	PublishedAt time.Time
}

// Store holds the range table currently being served. Readers take the
// current snapshot with a single atomic load and never wait for a publish;
// a publish never waits for readers. Superseded tables stay valid for as long
// as any reader still holds their snapshot and are collected afterwards.
type Store struct {
	current atomic.Pointer[Snapshot]

	// publishMu serialises writers only.
	publishMu sync.Mutex
}

// NewStore returns a Store serving initial as version 0. A nil initial table
// is replaced by an empty one.
func NewStore(initial *Table) *Store {
	if initial == nil {
		initial = EmptyTable()
	}
	s := &Store{}
	s.current.Store(&Snapshot{Table: initial, PublishedAt: time.Now()})
	return s
}

// Acquire returns the current snapshot. The result is stable: later publishes
// do not affect it. Callers should not hold on to it beyond a single request.
func (s *Store) Acquire() *Snapshot {
	return s.current.Load()
}

// Publish makes t the table returned by subsequent Acquire calls and returns
// its version. Snapshots acquired earlier keep observing their own table. A
// nil table is published as an empty one.
func (s *Store) Publish(t *Table) uint64 {
	if t == nil {
		t = EmptyTable()
	}
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	next := &Snapshot{
		Table:       t,
		Version:     s.current.Load().Version + 1,
		PublishedAt: time.Now(),
	}
	s.current.Store(next)
	return next.Version
}

// Version returns the version of the current snapshot.
func (s *Store) Version() uint64 {
	return s.Acquire().Version
}
