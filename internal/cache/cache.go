package cache

import "time"

// Cache holds recent autocomplete results keyed by prefix, so retyping
// the same prefix within the TTL does not re-hit the network.
type Cache interface {
	Get(key string) ([]string, bool)
	Set(key string, words []string, ttl time.Duration)
	Delete(key string)
	Stop()
}
