package collection

// Op names a patch operation.
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Outcome describes what a patch did to the targeted collection.
type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomeNoop    Outcome = "noop" // key cached, record not part of the page
	OutcomeMiss    Outcome = "miss" // key not cached
)

// Observer is notified after every patch.
type Observer interface {
	Observe(op Op, key Key, outcome Outcome)
}

type options struct {
	observer Observer
}

type Option func(*options)

// WithObserver reports every patch outcome to o.
func WithObserver(o Observer) Option {
	return func(opts *options) { opts.observer = o }
}

// Synchronizer applies server-confirmed mutations to the cached collections
// of a Store. Each patch runs to completion under the store lock, so
// completions of independent writes may interleave freely.
type Synchronizer[T any] struct {
	store    *Store[T]
	idOf     func(T) string
	observer Observer
}

// NewSynchronizer patches collections in store, identifying records by idOf.
func NewSynchronizer[T any](store *Store[T], idOf func(T) string, opts ...Option) *Synchronizer[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Synchronizer[T]{store: store, idOf: idOf, observer: o.observer}
}

// Store returns the store this synchronizer patches.
func (s *Synchronizer[T]) Store() *Store[T] { return s.store }

// ApplyInsert appends record to the end of the collection cached for key and
// bumps its total count. Page info is left as fetched. If the record is
// already present it is replaced in place instead, without touching the count.
// Returns a *CacheMissError when key was never fetched.
func (s *Synchronizer[T]) ApplyInsert(key Key, record T) error {
	id := s.idOf(record)
	found := s.store.modify(key, func(c *Collection[T]) {
		if i := c.Index(id); i >= 0 {
			c.Edges[i].Node = record
			return
		}
		c.Edges = append(c.Edges, Edge[T]{ID: id, Node: record})
		c.TotalCount++
	})
	if !found {
		s.observe(OpInsert, key, OutcomeMiss)
		return &CacheMissError{Key: key}
	}
	s.observe(OpInsert, key, OutcomeApplied)
	return nil
}

// ApplyUpdate replaces the record with the same id in place, keeping its
// position. Records outside the cached page are ignored. Reports whether an
// edge was replaced.
func (s *Synchronizer[T]) ApplyUpdate(key Key, record T) bool {
	id := s.idOf(record)
	replaced := false
	found := s.store.modify(key, func(c *Collection[T]) {
		if i := c.Index(id); i >= 0 {
			c.Edges[i].Node = record
			replaced = true
		}
	})
	s.observe(OpUpdate, key, outcome(found, replaced))
	return replaced
}

// ApplyDelete removes the edge with the given id and decrements the total
// count. Absent ids are ignored. Reports whether an edge was removed.
func (s *Synchronizer[T]) ApplyDelete(key Key, id string) bool {
	removed := false
	found := s.store.modify(key, func(c *Collection[T]) {
		i := c.Index(id)
		if i < 0 {
			return
		}
		c.Edges = append(c.Edges[:i], c.Edges[i+1:]...)
		if c.TotalCount > 0 {
			c.TotalCount--
		}
		removed = true
	})
	s.observe(OpDelete, key, outcome(found, removed))
	return removed
}

// ApplyDeleteRecord is ApplyDelete keyed by the record's own id.
func (s *Synchronizer[T]) ApplyDeleteRecord(key Key, record T) bool {
	return s.ApplyDelete(key, s.idOf(record))
}

// ApplyUpdateAll applies an update to every cached collection and returns how
// many of them contained the record.
func (s *Synchronizer[T]) ApplyUpdateAll(record T) int {
	n := 0
	for _, key := range s.store.Keys() {
		if s.ApplyUpdate(key, record) {
			n++
		}
	}
	return n
}

// ApplyDeleteAll removes id from every cached collection and returns how many
// of them contained it.
func (s *Synchronizer[T]) ApplyDeleteAll(id string) int {
	n := 0
	for _, key := range s.store.Keys() {
		if s.ApplyDelete(key, id) {
			n++
		}
	}
	return n
}

func (s *Synchronizer[T]) observe(op Op, key Key, o Outcome) {
	if s.observer != nil {
		s.observer.Observe(op, key, o)
	}
}

func outcome(found, changed bool) Outcome {
	switch {
	case !found:
		return OutcomeMiss
	case changed:
		return OutcomeApplied
	default:
		return OutcomeNoop
	}
}
