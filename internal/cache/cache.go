package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/ppiankov/crisisverify/internal/model"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key builds a cache key from its parts (store fingerprint, normalized query, ...)
func Key(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "crisisverify:v1:" + hex.EncodeToString(hash[:])
}

// New builds the cache described by cfg, or nil when caching is disabled
func New(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Disk {
		return NewLayeredCache(cfg.TTL, cfg.Dir, cfg.TTL)
	}
	return NewMemoryCache(cfg.TTL, 2*cfg.TTL)
}

// Verdicts stores verdicts as JSON in an underlying Cache
type Verdicts struct {
	cache Cache
	ttl   time.Duration
}

// NewVerdicts wraps c; a nil c yields a cache that never hits
func NewVerdicts(c Cache, ttl time.Duration) *Verdicts {
	return &Verdicts{cache: c, ttl: ttl}
}

// Get returns the cached verdict for key
func (v *Verdicts) Get(key string) (model.Verdict, bool) {
	if v == nil || v.cache == nil {
		return model.Verdict{}, false
	}

	data, found := v.cache.Get(key)
	if !found {
		return model.Verdict{}, false
	}

	var verdict model.Verdict
	if err := json.Unmarshal(data, &verdict); err != nil {
		_ = v.cache.Delete(key)
		return model.Verdict{}, false
	}
	return verdict, true
}

// Put stores a verdict under key
func (v *Verdicts) Put(key string, verdict model.Verdict) error {
	if v == nil || v.cache == nil {
		return nil
	}

	data, err := json.Marshal(verdict)
	if err != nil {
		return err
	}
	return v.cache.Set(key, data, v.ttl)
}
