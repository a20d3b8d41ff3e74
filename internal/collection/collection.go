// Package collection keeps locally cached pages of remote collections in
// step with server-confirmed mutations, without refetching.
//
// A cached page is identified by a Key (query name plus the variables that
// selected it) and holds identity-keyed edges in server order. Patches replace
// whole records: the server always returns the canonical post-mutation record.
package collection

import (
	"encoding/json"
)

// Key identifies one cached result set: the query shape plus the scalar
// arguments that selected it. Keys are comparable and usable as map keys.
type Key struct {
	query string
	vars  string
}

// NewKey builds a key from a query name and its variables. Variables are
// canonicalised, so maps with equal contents produce equal keys regardless of
// construction order.
//
// Variable values must be JSON-encodable scalars such as strings, numbers and
// booleans. NewKey panics on a value json cannot encode, since no stable key
// exists for it.
func NewKey(query string, vars map[string]any) Key {
	if len(vars) == 0 {
		return Key{query: query}
	}
	b, err := json.Marshal(vars) // map keys are emitted sorted
	if err != nil {
		panic("collection.NewKey: " + query + ": " + err.Error())
	}
	return Key{query: query, vars: string(b)}
}

// Query returns the query name the key was built from.
func (k Key) Query() string { return k.query }

func (k Key) String() string {
	if k.vars == "" {
		return k.query
	}
	return k.query + k.vars
}

// Edge is one identity-keyed record within a cached collection.
type Edge[T any] struct {
	ID   string `json:"id"`
	Node T      `json:"node"`
}

// PageInfo is pagination metadata from the original fetch. Patches copy it
// through untouched.
type PageInfo struct {
	HasNextPage     bool    `json:"hasNextPage"`
	HasPreviousPage bool    `json:"hasPreviousPage"`
	StartCursor     *string `json:"startCursor,omitempty"`
	EndCursor       *string `json:"endCursor,omitempty"`
}

// Collection is one fetched page of a remote collection.
// Edge IDs are unique within a collection.
type Collection[T any] struct {
	Edges      []Edge[T] `json:"edges"`
	TotalCount int       `json:"totalCount"`
	PageInfo   PageInfo  `json:"pageInfo"`
}

// Nodes returns the records in edge order.
func (c *Collection[T]) Nodes() []T {
	out := make([]T, len(c.Edges))
	for i := range c.Edges {
		out[i] = c.Edges[i].Node
	}
	return out
}

// Index returns the position of the edge with the given id, or -1.
func (c *Collection[T]) Index(id string) int {
	for i := range c.Edges {
		if c.Edges[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a copy whose edge slice can be modified independently.
func (c *Collection[T]) Clone() *Collection[T] {
	cp := *c
	cp.Edges = make([]Edge[T], len(c.Edges))
	copy(cp.Edges, c.Edges)
	return &cp
}

// dedupe drops repeated edge IDs, keeping the first occurrence.
func (c *Collection[T]) dedupe() {
	seen := make(map[string]struct{}, len(c.Edges))
	kept := c.Edges[:0]
	for _, e := range c.Edges {
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		kept = append(kept, e)
	}
	clear(c.Edges[len(kept):])
	c.Edges = kept
}
