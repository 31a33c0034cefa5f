// Package metadata keeps the client's local key/value records (the session
// token and the username that last signed in) in sqlite.
package metadata

import (
	"context"
)

// Repository reads and writes metadata records. Get returns "" for a key
// that was never set or has been deleted.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
