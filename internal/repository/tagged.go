package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

const tagSetPrefix = "tag:"

// TaggedCache wraps a Store with compute-on-miss semantics and tag-based
// invalidation. Keys are derived from a logical function name plus the
// ordered argument tuple, so identical calls share one entry.
//
// There is no stampede protection: concurrent misses on the same key may
// each run compute; the last writer wins and every caller still gets a
// correct result.
type TaggedCache struct {
	store      Store
	defaultTTL time.Duration
}

// NewTaggedCache creates a TaggedCache with the given freshness window
func NewTaggedCache(store Store, defaultTTL time.Duration) *TaggedCache {
	return &TaggedCache{store: store, defaultTTL: defaultTTL}
}

// DefaultTTL returns the configured freshness window
func (c *TaggedCache) DefaultTTL() time.Duration {
	return c.defaultTTL
}

// Key builds the deterministic cache key for a name and argument tuple
func Key(name string, args ...interface{}) string {
	if len(args) == 0 {
		return name
	}
	serialized, err := json.Marshal(args)
	if err != nil {
		// Arguments are plain ints and strings; marshal cannot realistically
		// fail, but fall back to the bare name rather than panic.
		return name
	}
	return fmt.Sprintf("%s:%s", name, serialized)
}

// GetOrCompute returns the cached value for (name, args) into dest when it
// is still fresh, otherwise runs compute exactly once for this caller,
// stores the result under every tag, and unmarshals it into dest. The
// returned bool reports a cache hit. A compute error is propagated and
// nothing is stored.
func (c *TaggedCache) GetOrCompute(
	ctx context.Context,
	name string,
	args []interface{},
	dest interface{},
	compute func(context.Context) (interface{}, error),
	tags ...string,
) (bool, error) {
	key := Key(name, args...)

	if err := c.store.Get(ctx, key, dest); err == nil {
		return true, nil
	} else if !IsCacheMiss(err) {
		// A broken cache backend must not take reads down; fall through to
		// the underlying query.
		log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}

	value, err := compute(ctx)
	if err != nil {
		return false, err
	}

	if err := c.store.Set(ctx, key, value, c.defaultTTL); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	} else {
		for _, tag := range tags {
			if err := c.store.AddToSet(ctx, tagSetPrefix+tag, key); err != nil {
				log.Warn().Err(err).Str("tag", tag).Msg("tag index write failed")
			}
		}
	}

	// Round-trip through JSON so hit and miss paths hand back identical
	// shapes.
	data, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("failed to marshal computed value: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal computed value: %w", err)
	}

	return false, nil
}

// Invalidate drops every entry registered under the tag, forcing the next
// access to recompute regardless of remaining freshness.
func (c *TaggedCache) Invalidate(ctx context.Context, tag string) error {
	set := tagSetPrefix + tag

	keys, err := c.store.SetMembers(ctx, set)
	if err != nil {
		return err
	}

	if err := c.store.Delete(ctx, append(keys, set)...); err != nil {
		return err
	}

	log.Info().Str("tag", tag).Int("keys", len(keys)).Msg("🧹 cache tag invalidated")
	return nil
}
