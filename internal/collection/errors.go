package collection

import (
	"errors"
	"fmt"
)

// ErrCacheMiss matches any *CacheMissError via errors.Is.
var ErrCacheMiss = errors.New("collection: cache miss")

// CacheMissError is returned when an insert targets a key that was never
// fetched. Callers usually respond with a full refetch of that key.
type CacheMissError struct {
	Key Key
}

func (e *CacheMissError) Error() string {
	return fmt.Sprintf("collection: cache miss for %s", e.Key)
}

func (e *CacheMissError) Is(target error) bool {
	return target == ErrCacheMiss
}
