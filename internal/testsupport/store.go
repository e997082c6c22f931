package testsupport

import (
	"testing"

	"pagewright/internal/config"
	"pagewright/internal/keycache"
)

// MustOpenKeyCache opens the config's key-table cache and registers cleanup.
func MustOpenKeyCache(t testing.TB, cfg *config.Config) *keycache.Cache {
	t.Helper()

	cache, err := keycache.Open(cfg.KeyCachePath())
	if err != nil {
		t.Fatalf("keycache.Open: %v", err)
	}
	t.Cleanup(func() {
		cache.Close()
	})
	return cache
}
