package ports

import (
	"context"
	"time"
)

// LookupCache memoizes read-only reference data. Get reports whether the key was present.
type LookupCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}
