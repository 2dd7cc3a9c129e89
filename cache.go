package main

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"myreboot/internal/action"
)

// Cache prefixes for different types of cached items
const (
	PrefixState  = "state:"
	PrefixScript = "script:"
)

// Default expiration times
const (
	DefaultStateExpiration  = 10 * time.Second
	DefaultScriptExpiration = 5 * time.Minute
	CleanupInterval         = 1 * time.Minute
)

// StateCache keeps recently read boot states so the tray status line does not
// reread the environment block on every menu refresh.
type StateCache struct {
	c *cache.Cache
}

// CachedScriptResult is the last result of a pre-action script
type CachedScriptResult struct {
	Err   string
	RanAt time.Time
}

var stateCache *StateCache

// InitCache initializes the application cache
func InitCache() {
	stateCache = NewStateCache(DefaultStateExpiration)
}

// NewStateCache creates a cache whose states expire after ttl
func NewStateCache(ttl time.Duration) *StateCache {
	return &StateCache{c: cache.New(ttl, CleanupInterval)}
}

// GetCache returns the application cache instance
func GetCache() *StateCache {
	if stateCache == nil {
		InitCache()
	}
	return stateCache
}

// State returns the boot state for the config, reading the block on a miss.
// Failed reads are not cached.
func (sc *StateCache) State(cfg *Config) (action.BootState, error) {
	key := PrefixState + cfg.Grubenv()
	if val, found := sc.c.Get(key); found {
		if st, ok := val.(action.BootState); ok {
			return st, nil
		}
	}
	st, err := action.ReadBootState(cfg.Grubenv(), cfg.EntryKey(), hostOS, cfg.GrubEntries)
	if err != nil {
		return st, err
	}
	sc.c.SetDefault(key, st)
	return st, nil
}

// Invalidate drops the cached state for a block path
func (sc *StateCache) Invalidate(path string) {
	sc.c.Delete(PrefixState + path)
}

// SetScriptResult records the outcome of a script run
func (sc *StateCache) SetScriptResult(script string, err error) {
	r := &CachedScriptResult{RanAt: time.Now()}
	if err != nil {
		r.Err = err.Error()
	}
	sc.c.Set(PrefixScript+script, r, DefaultScriptExpiration)
}

// ScriptResult returns the last outcome of a script, if still cached
func (sc *StateCache) ScriptResult(script string) (*CachedScriptResult, bool) {
	if val, found := sc.c.Get(PrefixScript + script); found {
		if r, ok := val.(*CachedScriptResult); ok {
			return r, true
		}
	}
	return nil, false
}

// Clear removes all items from the cache
func (sc *StateCache) Clear() {
	sc.c.Flush()
}

// Stats returns cache statistics as a formatted string
func (sc *StateCache) Stats() string {
	return fmt.Sprintf("Cache items: %d", sc.c.ItemCount())
}
