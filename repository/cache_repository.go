package repository

import "context"

// CacheRepository is a string key/value store shared between processes.
type CacheRepository interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string) error
}
