package config

import (
	"strings"
	"time"
)

// CacheConfig defines settings for the catalog response cache.
// When Enabled is false or no Redis client is configured, caching is
// disabled. Methods lists the HTTP methods to cache. KeyStrategy selects
// which parts of the request form the key: route, route_query or
// method_route_query.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	KeyStrategy  string
	Prefix       string
	MaxBodyBytes int
}

func loadCacheConfig(e env) CacheConfig {
	methods := map[string]bool{}
	for _, m := range e.list("CACHE_METHODS") {
		methods[strings.ToUpper(m)] = true
	}
	if len(methods) == 0 {
		methods["GET"] = true
	}
	return CacheConfig{
		Enabled:      e.flag("CACHE_ENABLED", true),
		Methods:      methods,
		TTL:          e.dur("CACHE_TTL", 30*time.Second),
		KeyStrategy:  e.str("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       e.str("CACHE_PREFIX", "cache:products"),
		MaxBodyBytes: e.num("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}
