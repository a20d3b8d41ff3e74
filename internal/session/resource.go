// Package session keeps one user's cached collections in step with the
// server. Writes go to the server first; only the server's canonical answer
// is patched into the cache, so a failed write leaves the cache untouched.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/gosuda/rentdesk/internal/collection"
	"github.com/gosuda/rentdesk/internal/domain"
)

// Remote is the server side of one collection.
// *client.Endpoint satisfies this interface.
type Remote[T any] interface {
	Name() string
	List(ctx context.Context, params domain.ListParams) (*collection.Collection[T], error)
	Create(ctx context.Context, body any) (*T, error)
	Update(ctx context.Context, id string, body any) (*T, error)
	Delete(ctx context.Context, id string) (*T, error)
}

// Resource binds a remote collection to its local cache.
type Resource[T any] struct {
	remote Remote[T]
	syncer *collection.Synchronizer[T]
	idOf   func(T) string
	logger zerolog.Logger

	mu     sync.Mutex
	params map[collection.Key]domain.ListParams // how each cached key was fetched
}

// NewResource caches remote's pages, identifying records by idOf.
func NewResource[T any](remote Remote[T], idOf func(T) string, logger zerolog.Logger, opts ...collection.Option) *Resource[T] {
	store := collection.NewStore[T]()
	return &Resource[T]{
		remote: remote,
		syncer: collection.NewSynchronizer(store, idOf, opts...),
		idOf:   idOf,
		logger: logger.With().Str("collection", remote.Name()).Logger(),
		params: make(map[collection.Key]domain.ListParams),
	}
}

// Name returns the collection name, which is also the query name of every
// key the resource caches.
func (r *Resource[T]) Name() string { return r.remote.Name() }

// Key identifies the page selected by params.
func (r *Resource[T]) Key(params domain.ListParams) collection.Key {
	vars := map[string]any{}
	if params.First > 0 {
		vars["first"] = params.First
	}
	if params.Offset > 0 {
		vars["offset"] = params.Offset
	}
	if params.Search != "" {
		vars["search"] = params.Search
	}
	return collection.NewKey(r.remote.Name(), vars)
}

// Cached returns the cached page for key.
func (r *Resource[T]) Cached(key collection.Key) (*collection.Collection[T], bool) {
	return r.syncer.Store().Get(key)
}

// Fetch loads one page from the server and caches it, replacing whatever the
// key held before.
func (r *Resource[T]) Fetch(ctx context.Context, params domain.ListParams) (collection.Key, *collection.Collection[T], error) {
	key := r.Key(params)

	page, err := r.remote.List(ctx, params)
	if err != nil {
		return key, nil, fmt.Errorf("session.Fetch %s: %w", r.remote.Name(), err)
	}

	r.syncer.Store().Put(key, page)
	r.mu.Lock()
	r.params[key] = params
	r.mu.Unlock()

	c, _ := r.syncer.Store().Get(key)
	return key, c, nil
}

// Create writes body to the server and appends the created record to the
// page cached for key. When key was never fetched the record is still
// returned, together with a *collection.CacheMissError; callers refetch.
func (r *Resource[T]) Create(ctx context.Context, key collection.Key, body any) (*T, error) {
	rec, err := r.remote.Create(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("session.Create %s: %w", r.remote.Name(), err)
	}

	if err = r.syncer.ApplyInsert(key, *rec); err != nil {
		r.logger.Warn().Str("key", key.String()).Str("id", r.idOf(*rec)).Msg("created record not cached, refetch needed")
		return rec, err
	}

	r.logger.Debug().Str("key", key.String()).Str("id", r.idOf(*rec)).Msg("cache insert")
	return rec, nil
}

// Update writes body to the server and replaces the record in every cached
// page that holds it.
func (r *Resource[T]) Update(ctx context.Context, id string, body any) (*T, error) {
	rec, err := r.remote.Update(ctx, id, body)
	if err != nil {
		return nil, fmt.Errorf("session.Update %s: %w", r.remote.Name(), err)
	}

	n := r.syncer.ApplyUpdateAll(*rec)
	r.logger.Debug().Str("id", id).Int("pages", n).Msg("cache update")
	return rec, nil
}

// Delete removes the record on the server and from every cached page.
func (r *Resource[T]) Delete(ctx context.Context, id string) (*T, error) {
	rec, err := r.remote.Delete(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("session.Delete %s: %w", r.remote.Name(), err)
	}

	n := r.syncer.ApplyDeleteAll(id)
	r.logger.Debug().Str("id", id).Int("pages", n).Msg("cache delete")
	return rec, nil
}

// ApplyEvent patches the cache with a mutation committed elsewhere. Updates
// and deletes touch only pages holding the record. Replaying an event is
// harmless.
//
// A new record lands at the end of the collection, so an insert is appended
// only to the last page of an unfiltered listing that still has room. Pages
// already holding the record are updated in place. Search pages, and a last
// page that is already full, cannot be patched correctly and are evicted so
// the next read refetches them. Earlier unfiltered pages are left as fetched.
func (r *Resource[T]) ApplyEvent(ev collection.MutationEvent) error {
	if ev.Collection != r.remote.Name() {
		return fmt.Errorf("session.ApplyEvent: event for %q applied to %q", ev.Collection, r.remote.Name())
	}

	switch ev.Op {
	case collection.OpInsert:
		rec, err := collection.Decode[T](ev)
		if err != nil {
			return fmt.Errorf("session.ApplyEvent: %w", err)
		}
		if err = r.applyRemoteInsert(rec); err != nil {
			return err
		}
	case collection.OpUpdate:
		rec, err := collection.Decode[T](ev)
		if err != nil {
			return fmt.Errorf("session.ApplyEvent: %w", err)
		}
		r.syncer.ApplyUpdateAll(rec)
	case collection.OpDelete:
		r.syncer.ApplyDeleteAll(ev.ID)
	default:
		return fmt.Errorf("session.ApplyEvent: unknown op %q", ev.Op)
	}

	r.logger.Debug().Str("op", string(ev.Op)).Str("id", ev.ID).Msg("remote event applied")
	return nil
}

func (r *Resource[T]) applyRemoteInsert(rec T) error {
	id := r.idOf(rec)
	store := r.syncer.Store()

	for _, key := range store.KeysFor(r.remote.Name()) {
		c, ok := store.Get(key)
		if !ok {
			continue
		}

		switch r.insertTarget(key, c, id) {
		case targetReplace:
			r.syncer.ApplyUpdate(key, rec)
		case targetAppend:
			if err := r.syncer.ApplyInsert(key, rec); err != nil && !errors.Is(err, collection.ErrCacheMiss) {
				return err
			}
		case targetEvict:
			store.Evict(key)
			r.forget(key)
			r.logger.Debug().Str("key", key.String()).Str("id", id).Msg("page evicted, refetch needed")
		case targetKeep:
		}
	}
	return nil
}

type insertTarget int

const (
	targetKeep insertTarget = iota
	targetReplace
	targetAppend
	targetEvict
)

// insertTarget decides what a remote insert of id does to the page cached
// for key.
func (r *Resource[T]) insertTarget(key collection.Key, c *collection.Collection[T], id string) insertTarget {
	if c.Index(id) >= 0 {
		return targetReplace
	}

	r.mu.Lock()
	params, known := r.params[key]
	r.mu.Unlock()

	switch {
	case !known || params.Search != "":
		return targetEvict
	case c.PageInfo.HasNextPage:
		return targetKeep
	case params.First > 0 && len(c.Edges) >= params.First:
		return targetEvict
	default:
		return targetAppend
	}
}

func (r *Resource[T]) forget(key collection.Key) {
	r.mu.Lock()
	delete(r.params, key)
	r.mu.Unlock()
}
