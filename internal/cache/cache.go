package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a small string key/value store with expiry. Get returns "" and a
// nil error on a miss.
type Cache interface {
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	GenerateKey(operation, key string) string
}

func generateKey(service, operation, key string) string {
	return fmt.Sprintf("%s:%s:%s", service, operation, key)
}
