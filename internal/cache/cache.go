// Package cache owns the Redis key scheme of the public page cache and
// purges entries when workflow changes make a page stale.
package cache

import (
	"context"
	"crypto/sha1"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Revalidator drops cached renderings of a path.  Revalidation is
// advisory; callers schedule it as a best-effort side effect.
type Revalidator interface {
	Revalidate(ctx context.Context, path string) error
}

// PageKey returns the cache key for a path and raw query.  All variants
// of one path share the "<prefix>:page:<path>:" prefix.
func PageKey(prefix, path, rawQuery string) string {
	sum := sha1.Sum([]byte(rawQuery))
	return fmt.Sprintf("%s%x", pathPrefix(prefix, path), sum[:])
}

func pathPrefix(prefix, path string) string {
	return prefix + ":page:" + normalizePath(path) + ":"
}

func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}

// RedisRevalidator deletes every cached variant of a path.
type RedisRevalidator struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisRevalidator returns a revalidator over rdb.  A nil client
// yields Noop.
func NewRedisRevalidator(rdb *redis.Client, prefix string) Revalidator {
	if rdb == nil {
		return Noop{}
	}
	return &RedisRevalidator{rdb: rdb, prefix: prefix}
}

// Revalidate scans for the path's keys and deletes them in batches.
func (r *RedisRevalidator) Revalidate(ctx context.Context, path string) error {
	match := escapeGlob(pathPrefix(r.prefix, path)) + "*"
	var cursor uint64
	for {
		keys, next, err := r.rdb.Scan(ctx, cursor, match, 100).Result()
		if err != nil {
			return fmt.Errorf("scan %s: %w", match, err)
		}
		if len(keys) > 0 {
			if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("del: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// escapeGlob quotes Redis MATCH metacharacters in a literal prefix.
func escapeGlob(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
	return r.Replace(s)
}

// Noop ignores revalidation requests.
type Noop struct{}

func (Noop) Revalidate(context.Context, string) error { return nil }

// EventPaths lists the public pages that render an event.
func EventPaths(eventID uint64, slug string) []string {
	paths := []string{"/v1/public/events", fmt.Sprintf("/v1/public/events/%d", eventID)}
	if slug != "" {
		paths = append(paths, "/v1/public/events/slug/"+slug)
	}
	return paths
}
